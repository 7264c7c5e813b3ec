package cfg

import (
	"testing"

	"github.com/sarchlab/gearsim/hls/ir"
	"github.com/sarchlab/gearsim/typing"
)

func TestBuildEverySinkReachableFromItsSource(t *testing.T) {
	u1 := typing.Mk(typing.KindUint, typing.IntArg(1))
	loop := &ir.LoopBlock{
		Test:  ir.NewResExpr(1, u1),
		Stmts: []ir.Statement{&ir.AssignValue{Target: ir.NewName("x", u1, ir.CtxStore), Value: ir.NewResExpr(0, u1)}},
	}
	g := Build([]ir.Statement{loop})

	found := false
	for id, n := range g.Nodes {
		if n.Source == invalidNode {
			continue
		}
		found = true
		if len(n.Prev) == 0 {
			t.Fatalf("sink node %d has no incoming edge", id)
		}
	}
	if !found {
		t.Fatalf("expected at least one sink node")
	}
}

func TestScheduleNoLoopsSingleState(t *testing.T) {
	u1 := typing.Mk(typing.KindUint, typing.IntArg(1))
	stmts := []ir.Statement{&ir.AssignValue{Target: ir.NewName("x", u1, ir.CtxStore), Value: ir.NewResExpr(1, u1)}}
	sched := Schedule(stmts)
	if len(sched.States) != 1 {
		t.Fatalf("want 1 state, got %d", len(sched.States))
	}
}

func TestScheduleAsyncWithTwoYieldsProducesTwoStates(t *testing.T) {
	u4 := typing.Mk(typing.KindUint, typing.IntArg(4))
	u1 := typing.Mk(typing.KindUint, typing.IntArg(1))
	c := ir.NewName("c", u4, ir.CtxLoad)
	body := []ir.Statement{&ir.IntfBlock{Intf: "din", Bind: "c", Stmts: []ir.Statement{
		&ir.Yield{Values: []ir.Expr{c}},
		&ir.Yield{Values: []ir.Expr{ir.NewBinOpExpr("+", c, ir.NewResExpr(1, u1), u4)}},
	}}}

	sched := Schedule(body)
	if len(sched.States) != 2 {
		t.Fatalf("want 2 states (one suspension boundary between the two yields), got %d", len(sched.States))
	}

	intf, ok := sched.States[0].Stmts[0].(*ir.IntfBlock)
	if !ok {
		t.Fatalf("want state 0 to still open with the IntfBlock, got %T", sched.States[0].Stmts[0])
	}
	if len(intf.Stmts) != 3 {
		t.Fatalf("want yield + state-transition pair inside state 0's IntfBlock, got %d stmts", len(intf.Stmts))
	}
	if _, ok := intf.Stmts[0].(*ir.Yield); !ok {
		t.Fatalf("want first stmt of state 0's IntfBlock to be the first yield, got %T", intf.Stmts[0])
	}
}

func TestScheduleLoopWithTwoYieldsSplitsLoopBodyToo(t *testing.T) {
	u4 := typing.Mk(typing.KindUint, typing.IntArg(4))
	u1 := typing.Mk(typing.KindUint, typing.IntArg(1))
	c := ir.NewName("c", u4, ir.CtxLoad)
	loopBody := []ir.Statement{
		&ir.Yield{Values: []ir.Expr{c}},
		&ir.Yield{Values: []ir.Expr{ir.NewBinOpExpr("+", c, ir.NewResExpr(1, u1), u4)}},
	}
	loop := &ir.LoopBlock{Test: ir.NewResExpr(1, u1), Stmts: loopBody}
	body := []ir.Statement{&ir.IntfBlock{Intf: "din", Bind: "c", Stmts: []ir.Statement{loop}}}

	sched := Schedule(body)
	// state 0 (entry), the loop's own repeating state, and one extra
	// state for the suspension boundary between the loop body's two
	// yields.
	if len(sched.States) != 3 {
		t.Fatalf("want 3 states (entry + loop + 1 yield split), got %d", len(sched.States))
	}
}
