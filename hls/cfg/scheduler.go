package cfg

import (
	"github.com/sarchlab/gearsim/hls/ir"
	"github.com/sarchlab/gearsim/typing"
)

// StateVarName is the name of the scheduler's state register.
const StateVarName = "_state"

// State is one cycle's worth of statements: the entry state (index 0)
// is the original body with every LoopBlock rewritten into its
// state-transition idiom and every run of more than one suspension
// point broken at each yield; each further state is one broken loop's
// body or one split-off continuation of a multi-yield run.
type State struct {
	Stmts []ir.Statement
}

// Scheduled is the result of breaking every loop and every multi-yield
// suspension run in a gear body across clock-cycle states.
type Scheduled struct {
	States    []*State
	StateType *typing.Type // Uint[bitw(len(States)-1)], or nil when len(States) == 1
}

// Schedule rewrites body's loops and multi-yield suspension runs into
// states. Loops are discovered by a deterministic pre-order walk and
// allocated state indices 1..len(loops) in that order; a run of two or
// more sibling Yield statements within the same statement list (e.g. the
// body of one `async with`) is itself a suspension point between each
// pair of yields and gets the remaining indices, assigned in the order
// encountered during rewriting. State 0 is always the entry state.
//
// DESIGN NOTE: state 0 always keeps the complete original sequence
// (pre-loop statements, the loop-enter idiom, and whatever follows the
// loop), so re-entering state 0 after an exited loop, or after the last
// segment of a split multi-yield run, re-walks the prelude. That is
// safe because the prelude is a sequence of pure combinational
// assignments, so re-evaluating it on re-entry is harmless (see
// DESIGN.md).
func Schedule(body []ir.Statement) *Scheduled {
	loops := collectLoops(body)
	yieldExtra := countYieldExtra(body)
	total := 1 + len(loops) + yieldExtra
	if total == 1 {
		return &Scheduled{States: []*State{{Stmts: body}}}
	}

	stateType := typing.Mk(typing.KindUint, typing.IntArg(typing.Bitw(total-1)))
	loopIndex := make(map[*ir.LoopBlock]int, len(loops))
	for i, lp := range loops {
		loopIndex[lp] = i + 1
	}

	sp := &splitter{
		loopIndex: loopIndex,
		stateType: stateType,
		next:      len(loops) + 1,
		bodyCache: map[*ir.LoopBlock][]ir.Statement{},
	}

	states := make([]*State, total)
	states[0] = &State{Stmts: sp.rewriteLoops(body)}
	for _, lp := range loops {
		k := loopIndex[lp]
		states[k] = sp.buildLoopState(lp, k)
	}
	for i, extra := range sp.extra {
		states[len(loops)+1+i] = extra
	}
	return &Scheduled{States: states, StateType: stateType}
}

// collectLoops walks stmts in deterministic pre-order, recursing into
// every nested block, and returns every *ir.LoopBlock reachable, in the
// order first encountered.
func collectLoops(stmts []ir.Statement) []*ir.LoopBlock {
	var out []*ir.LoopBlock
	var walk func([]ir.Statement)
	walk = func(ss []ir.Statement) {
		for _, s := range ss {
			switch b := s.(type) {
			case *ir.LoopBlock:
				out = append(out, b)
				walk(b.Stmts)
			case *ir.HDLBlock:
				for _, br := range b.Branches {
					walk(br.Stmts)
				}
			case *ir.ContainerBlock:
				for _, br := range b.Branches {
					walk(br.Stmts)
				}
			case *ir.IntfBlock:
				walk(b.Stmts)
			case *ir.IntfLoop:
				walk(b.Stmts)
			case *ir.BaseBlock:
				walk(b.Stmts)
			}
		}
	}
	walk(stmts)
	return out
}

// countYieldExtra walks stmts the same way collectLoops does and sums,
// over every statement list found at any depth, one extra state per
// suspension boundary between sibling Yield statements directly in that
// list (a list with n >= 2 direct yields needs n-1 extra states). A
// LoopBlock's body is only counted once here, matching splitter's
// memoised rewrite of that body.
func countYieldExtra(stmts []ir.Statement) int {
	total := 0
	direct := 0
	for _, s := range stmts {
		switch b := s.(type) {
		case *ir.Yield:
			direct++
		case *ir.LoopBlock:
			total += countYieldExtra(b.Stmts)
		case *ir.HDLBlock:
			for _, br := range b.Branches {
				total += countYieldExtra(br.Stmts)
			}
		case *ir.ContainerBlock:
			for _, br := range b.Branches {
				total += countYieldExtra(br.Stmts)
			}
		case *ir.IntfBlock:
			total += countYieldExtra(b.Stmts)
		case *ir.IntfLoop:
			total += countYieldExtra(b.Stmts)
		case *ir.BaseBlock:
			total += countYieldExtra(b.Stmts)
		}
	}
	if direct > 1 {
		total += direct - 1
	}
	return total
}

// splitter carries the mutable state threaded through one Schedule
// call's rewrite pass: the next free state index for a multi-yield
// split, the extra states it produces (in index order), and a cache
// keyed by LoopBlock so a loop body reachable from two call sites (the
// enter-loop idiom and the loop's own repeating state) is only rewritten
// and split once.
type splitter struct {
	loopIndex map[*ir.LoopBlock]int
	stateType *typing.Type
	next      int
	extra     []*State
	bodyCache map[*ir.LoopBlock][]ir.Statement
}

// rewriteLoops replaces every *ir.LoopBlock reachable in stmts (at any
// depth) with its state-transition idiom, then splits the resulting
// list at any remaining run of sibling yields.
func (sp *splitter) rewriteLoops(stmts []ir.Statement) []ir.Statement {
	out := make([]ir.Statement, len(stmts))
	for i, s := range stmts {
		out[i] = sp.rewriteOne(s)
	}
	return sp.splitYields(out)
}

func (sp *splitter) rewriteOne(s ir.Statement) ir.Statement {
	switch b := s.(type) {
	case *ir.LoopBlock:
		k := sp.loopIndex[b]
		body := sp.loopBody(b)
		body = append(append([]ir.Statement{}, body...), enterStateStmts(k, sp.stateType)...)
		return &ir.HDLBlock{Branches: []*ir.Branch{{Tests: []ir.Expr{b.Test}, Stmts: body}}}
	case *ir.HDLBlock:
		out := &ir.HDLBlock{}
		for _, br := range b.Branches {
			out.AddBranch(&ir.Branch{Tests: br.Tests, Stmts: sp.rewriteLoops(br.Stmts)})
		}
		return out
	case *ir.ContainerBlock:
		out := &ir.ContainerBlock{}
		for _, br := range b.Branches {
			out.Branches = append(out.Branches, &ir.Branch{Tests: br.Tests, Stmts: sp.rewriteLoops(br.Stmts)})
		}
		return out
	case *ir.IntfBlock:
		return &ir.IntfBlock{Intf: b.Intf, Bind: b.Bind, Stmts: sp.rewriteLoops(b.Stmts)}
	case *ir.IntfLoop:
		return &ir.IntfLoop{Intf: b.Intf, Bind: b.Bind, Stmts: sp.rewriteLoops(b.Stmts)}
	case *ir.BaseBlock:
		out := &ir.BaseBlock{}
		out.Stmts = sp.rewriteLoops(b.Stmts)
		return out
	default:
		return s
	}
}

// loopBody returns lp's rewritten-and-split body, rewriting it once and
// caching the result so the second call site (buildLoopState) reuses it
// instead of re-splitting the same yields into a second set of states.
func (sp *splitter) loopBody(lp *ir.LoopBlock) []ir.Statement {
	if cached, ok := sp.bodyCache[lp]; ok {
		return cached
	}
	body := sp.rewriteLoops(lp.Stmts)
	sp.bodyCache[lp] = body
	return body
}

// splitYields breaks stmts at every sibling *ir.Yield boundary once
// stmts contains two or more of them: the first segment (up to and
// including the first yield) stays in place and transitions to a new
// state holding the next segment; each subsequent segment transitions
// to the one after it, and the final segment transitions back to state
// 0. A list with fewer than two direct yields is returned unchanged.
func (sp *splitter) splitYields(stmts []ir.Statement) []ir.Statement {
	segments := splitAtYields(stmts)
	if len(segments) < 2 {
		return stmts
	}

	indices := make([]int, len(segments))
	for i := 1; i < len(segments); i++ {
		indices[i] = sp.next
		sp.next++
	}

	out := append(append([]ir.Statement{}, segments[0]...), enterStateStmts(indices[1], sp.stateType)...)
	for i := 1; i < len(segments); i++ {
		target := 0
		if i < len(segments)-1 {
			target = indices[i+1]
		}
		segStmts := append(append([]ir.Statement{}, segments[i]...), enterStateStmts(target, sp.stateType)...)
		sp.extra = append(sp.extra, &State{Stmts: segStmts})
	}
	return out
}

// splitAtYields splits stmts into segments ending at each direct
// *ir.Yield, with any statements trailing the last yield joining the
// final segment. It returns a single segment (stmts unsplit) when fewer
// than two yields are found.
func splitAtYields(stmts []ir.Statement) [][]ir.Statement {
	var segments [][]ir.Statement
	var current []ir.Statement
	yields := 0
	for _, s := range stmts {
		current = append(current, s)
		if _, ok := s.(*ir.Yield); ok {
			yields++
			segments = append(segments, current)
			current = nil
		}
	}
	if yields < 2 {
		return [][]ir.Statement{stmts}
	}
	if len(current) > 0 {
		segments[len(segments)-1] = append(segments[len(segments)-1], current...)
	}
	return segments
}

// buildLoopState builds state k for loop lp: a ContainerBlock with two
// branches — the test holds (run the body again, stay in state k) and
// the test fails (exit: transition to state 0).
func (sp *splitter) buildLoopState(lp *ir.LoopBlock, k int) *State {
	body := sp.loopBody(lp)
	continueBranch := &ir.Branch{
		Tests: []ir.Expr{lp.Test},
		Stmts: append(append([]ir.Statement{}, body...), enterStateStmts(k, sp.stateType)...),
	}
	exitBranch := &ir.Branch{
		Stmts: enterStateStmts(0, sp.stateType),
	}
	return &State{Stmts: []ir.Statement{&ir.ContainerBlock{Branches: []*ir.Branch{continueBranch, exitBranch}}}}
}

func enterStateStmts(k int, stateType *typing.Type) []ir.Statement {
	return []ir.Statement{
		&ir.AssignValue{
			Target: ir.NewName(StateVarName, stateType, ir.CtxStore),
			Value:  ir.NewResExpr(k, stateType),
		},
		&ir.Await{Cond: nil},
	}
}
