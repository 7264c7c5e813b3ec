// Package hier implements the hierarchy and port model: a named tree of
// gear instances, each owning input/output ports connected through
// single-producer/multi-consumer interfaces. Nodes, ports and interfaces
// are arena-allocated and referenced by integer id, so the
// producer/consumer graph's cyclic links never need reference cycles in
// Go.
package hier

import (
	"fmt"

	"github.com/rs/xid"
	"github.com/sarchlab/gearsim/typing"
)

// NodeID, PortID and InterfaceID index into a Graph's arenas.
type NodeID int
type PortID int
type InterfaceID int

const invalidID = -1

// Node is a named tree node: a root or a gear instance. Parent/child
// links and port lists are stored as ids into the owning Graph.
type Node struct {
	Name     string
	Parent   NodeID
	Children []NodeID
	InPorts  []PortID
	OutPorts []PortID
	Params   map[string]any
	removed  bool

	// UID is a globally unique, creation-ordered identifier external
	// tooling (debug traces, cosim reports) can key on instead of a
	// NodeID, which is only meaningful within one Graph's arena.
	UID xid.ID
}

// Port is either an InPort or an OutPort; it belongs to exactly one node
// and references at most one Interface.
type Port struct {
	Node      NodeID
	Name      string
	Dir       Direction
	Interface InterfaceID
}

// Direction distinguishes InPort from OutPort.
type Direction int

const (
	DirIn Direction = iota
	DirOut
)

// Interface is a typed stream with exactly one producer port and zero or
// more consumer ports.
type Interface struct {
	DType    *typing.Type
	Producer PortID
	Consumers []PortID
}

// Graph owns all Nodes, Ports and Interfaces of one elaboration.
type Graph struct {
	nodes      []Node
	ports      []Port
	interfaces []Interface
	root       NodeID
}

// NewGraph creates a Graph with an unnamed root node (empty Name).
func NewGraph() *Graph {
	g := &Graph{}
	g.root = g.newNode("", invalidID)
	return g
}

// Root returns the id of the graph's root node.
func (g *Graph) Root() NodeID { return g.root }

func (g *Graph) newNode(name string, parent NodeID) NodeID {
	g.nodes = append(g.nodes, Node{Name: name, Parent: parent, Params: map[string]any{}, UID: xid.New()})
	return NodeID(len(g.nodes) - 1)
}

// Node returns a pointer to the node identified by id.
func (g *Graph) Node(id NodeID) *Node { return &g.nodes[id] }

// Interface returns a pointer to the interface identified by id.
func (g *Graph) Interface(id InterfaceID) *Interface { return &g.interfaces[id] }

// Port returns a pointer to the port identified by id.
func (g *Graph) Port(id PortID) *Port { return &g.ports[id] }

// AddChild creates a new named node under parent and returns its id.
func (g *Graph) AddChild(parent NodeID, name string) NodeID {
	id := g.newNode(name, parent)
	g.nodes[parent].Children = append(g.nodes[parent].Children, id)
	return id
}

// Path returns the full "/"-joined path of a node from the root.
func (g *Graph) Path(id NodeID) string {
	if id == g.root {
		return ""
	}
	n := g.Node(id)
	parent := g.Path(n.Parent)
	if parent == "" {
		return n.Name
	}
	return parent + "/" + n.Name
}

// AddInPort creates and attaches a new unconnected InPort on node.
func (g *Graph) AddInPort(node NodeID, name string) PortID {
	g.ports = append(g.ports, Port{Node: node, Name: name, Dir: DirIn, Interface: invalidID})
	id := PortID(len(g.ports) - 1)
	g.nodes[node].InPorts = append(g.nodes[node].InPorts, id)
	return id
}

// AddOutPort creates and attaches a new unconnected OutPort on node.
func (g *Graph) AddOutPort(node NodeID, name string) PortID {
	g.ports = append(g.ports, Port{Node: node, Name: name, Dir: DirOut, Interface: invalidID})
	id := PortID(len(g.ports) - 1)
	g.nodes[node].OutPorts = append(g.nodes[node].OutPorts, id)
	return id
}

// NewInterface creates a disconnected Interface of the given type.
func (g *Graph) NewInterface(dtype *typing.Type) InterfaceID {
	g.interfaces = append(g.interfaces, Interface{DType: dtype, Producer: invalidID})
	return InterfaceID(len(g.interfaces) - 1)
}

// Connect attaches port to iface: an OutPort becomes the (sole) producer,
// an InPort becomes one of possibly several consumers. Connecting an
// OutPort that already has a producer-side interface, or an already
// produced Interface to a second producer, is an error.
func (g *Graph) Connect(port PortID, iface InterfaceID) error {
	p := g.Port(port)
	i := g.Interface(iface)

	if p.Interface != invalidID {
		return fmt.Errorf("hier: port %q already connected", p.Name)
	}

	if p.Dir == DirOut {
		if i.Producer != invalidID {
			return fmt.Errorf("hier: interface already has a producer")
		}
		i.Producer = port
	} else {
		i.Consumers = append(i.Consumers, port)
	}
	p.Interface = iface
	return nil
}

// Disconnect removes port from its Interface, symmetric and idempotent:
// calling it twice, or on an already-disconnected port, is a no-op.
func (g *Graph) Disconnect(port PortID) {
	p := g.Port(port)
	if p.Interface == invalidID {
		return
	}
	i := g.Interface(p.Interface)

	if p.Dir == DirOut {
		if i.Producer == port {
			i.Producer = invalidID
		}
	} else {
		for idx, c := range i.Consumers {
			if c == port {
				i.Consumers = append(i.Consumers[:idx], i.Consumers[idx+1:]...)
				break
			}
		}
	}
	p.Interface = invalidID
}

// Remove disconnects every port of node (and recursively, of its
// children) and detaches node from its parent's child list. It leaves
// zero dangling port references in the parent or in any connected
// interface.
func (g *Graph) Remove(node NodeID) {
	n := g.Node(node)
	if n.removed {
		return
	}
	for _, child := range append([]NodeID{}, n.Children...) {
		g.Remove(child)
	}
	for _, pid := range n.InPorts {
		g.Disconnect(pid)
	}
	for _, pid := range n.OutPorts {
		g.Disconnect(pid)
	}
	n.removed = true

	if n.Parent != invalidID {
		parent := g.Node(n.Parent)
		for idx, c := range parent.Children {
			if c == node {
				parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
				break
			}
		}
	}
}

// Valid reports whether every InPort of node has exactly one producer and
// every OutPort has exactly one connected interface whose producer is
// that port — the post-elaboration invariant a completed hierarchy must
// satisfy.
func (g *Graph) Valid(node NodeID) error {
	n := g.Node(node)
	for _, pid := range n.InPorts {
		p := g.Port(pid)
		if p.Interface == invalidID {
			return fmt.Errorf("hier: in-port %q has no producer", p.Name)
		}
		iface := g.Interface(p.Interface)
		if iface.Producer == invalidID {
			return fmt.Errorf("hier: in-port %q's interface has no producer", p.Name)
		}
	}
	for _, pid := range n.OutPorts {
		p := g.Port(pid)
		if p.Interface == invalidID {
			return fmt.Errorf("hier: out-port %q has no interface", p.Name)
		}
		iface := g.Interface(p.Interface)
		if iface.Producer != pid {
			return fmt.Errorf("hier: out-port %q is not the producer of its interface", p.Name)
		}
	}
	return nil
}
