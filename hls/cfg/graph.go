// Package cfg builds the control-flow graph over a lowered gear body's
// IR and schedules it into clock-cycle states, breaking
// every loop across a state boundary.
package cfg

import "github.com/sarchlab/gearsim/hls/ir"

// NodeID indexes into a Graph's node arena.
type NodeID int

const invalidNode NodeID = -1

// Node wraps one IR element. Block-opening statements (BaseBlock,
// HDLBlock, LoopBlock, ContainerBlock, IntfBlock, IntfLoop) get a
// matching sink node once their children have been walked; Source on a
// sink node points back at the node that opened it, and that opening
// node's sink field names the sink in turn — a sink's Prev always
// includes the last node of the children it closes.
type Node struct {
	Stmt   ir.Statement
	Prev   []NodeID
	Next   []NodeID
	Source NodeID // the opening node, for a sink; invalidNode otherwise
	sink   NodeID // the matching sink, for an opening node; invalidNode otherwise
}

// Graph is the arena of Nodes produced by Build.
type Graph struct {
	Nodes []Node
}

func (g *Graph) add(n Node) NodeID {
	g.Nodes = append(g.Nodes, n)
	return NodeID(len(g.Nodes) - 1)
}

func (g *Graph) link(from, to NodeID) {
	g.Nodes[from].Next = append(g.Nodes[from].Next, to)
	g.Nodes[to].Prev = append(g.Nodes[to].Prev, from)
}

// Build walks stmts in order and produces their CFG, recursing into
// every block-shaped statement so nested control flow gets its own
// sub-chain and sink.
func Build(stmts []ir.Statement) *Graph {
	g := &Graph{}
	g.buildSeq(stmts, invalidNode)
	return g
}

// buildSeq appends the chain for stmts, linking from prevTail (if any)
// to the first node, and returns the id of the last node appended.
func (g *Graph) buildSeq(stmts []ir.Statement, prevTail NodeID) NodeID {
	tail := prevTail
	for _, s := range stmts {
		tail = g.buildOne(s, tail)
	}
	return tail
}

func (g *Graph) buildOne(s ir.Statement, prevTail NodeID) NodeID {
	id := g.add(Node{Stmt: s, Source: invalidNode, sink: invalidNode})
	if prevTail != invalidNode {
		g.link(prevTail, id)
	}

	switch b := s.(type) {
	case *ir.BaseBlock:
		childTail := g.buildSeq(b.Stmts, invalidNode)
		return g.closeSink(id, &ir.BaseBlockSink{}, childTail)
	case *ir.HDLBlock:
		var lastChildTail NodeID = invalidNode
		for _, br := range b.Branches {
			ct := g.buildSeq(br.Stmts, id)
			if ct != invalidNode {
				lastChildTail = ct
			}
		}
		return g.closeSink(id, &ir.HDLBlockSink{}, lastChildTail)
	case *ir.LoopBlock:
		childTail := g.buildSeq(b.Stmts, id)
		sink := g.closeSink(id, &ir.LoopBlockSink{}, childTail)
		// the loop's back-edge: the sink returns control to the opening
		// test.
		g.link(sink, id)
		return sink
	case *ir.ContainerBlock:
		var lastChildTail NodeID = invalidNode
		for _, br := range b.Branches {
			ct := g.buildSeq(br.Stmts, id)
			if ct != invalidNode {
				lastChildTail = ct
			}
		}
		return g.closeSink(id, &ir.HDLBlockSink{}, lastChildTail)
	case *ir.IntfBlock:
		childTail := g.buildSeq(b.Stmts, id)
		return g.closeSink(id, &ir.BaseBlockSink{}, childTail)
	case *ir.IntfLoop:
		childTail := g.buildSeq(b.Stmts, id)
		sink := g.closeSink(id, &ir.LoopBlockSink{}, childTail)
		g.link(sink, id)
		return sink
	default:
		return id
	}
}

func (g *Graph) closeSink(opener NodeID, sinkStmt ir.Statement, childTail NodeID) NodeID {
	sink := g.add(Node{Stmt: sinkStmt, Source: opener})
	g.Nodes[opener].sink = sink
	if childTail != invalidNode {
		g.link(childTail, sink)
	} else {
		g.link(opener, sink)
	}
	return sink
}

// Sink returns the matching sink node id for an opening block node, or
// invalidNode if n does not open a block.
func (g *Graph) Sink(n NodeID) NodeID { return g.Nodes[n].sink }
