package hdlgen

import (
	"testing"

	"github.com/sarchlab/gearsim/hls/cfg"
	"github.com/sarchlab/gearsim/hls/front"
	"github.com/sarchlab/gearsim/hls/ir"
	"github.com/sarchlab/gearsim/typing"
)

func TestGenerateBranchCountMatchesStateCount(t *testing.T) {
	u4 := typing.Mk(typing.KindUint, typing.IntArg(4))
	u1 := typing.Mk(typing.KindUint, typing.IntArg(1))
	c := ir.NewName("c", u4, ir.CtxLoad)
	loopBody := []ir.Statement{
		&ir.Yield{Values: []ir.Expr{c}},
		&ir.Yield{Values: []ir.Expr{ir.NewBinOpExpr("+", c, ir.NewResExpr(1, u1), u4)}},
	}
	loop := &ir.LoopBlock{Test: ir.NewResExpr(1, u1), Stmts: loopBody}
	body := []ir.Statement{&ir.IntfBlock{Intf: "din", Bind: "c", Stmts: []ir.Statement{loop}}}

	sched := cfg.Schedule(body)
	top, _ := Generate(sched, []string{"dout"}, nil)

	if len(top.Children) != 1 {
		t.Fatalf("want 1 top child (the state HDLBlock), got %d", len(top.Children))
	}
	hdl, ok := top.Children[0].(*ir.HDLBlock)
	if !ok {
		t.Fatalf("want *ir.HDLBlock, got %T", top.Children[0])
	}
	if len(hdl.Branches) != len(sched.States) {
		t.Fatalf("want %d branches (one per state), got %d", len(sched.States), len(hdl.Branches))
	}
	for k, br := range hdl.Branches {
		bo, ok := br.Tests[0].(*ir.BinOpExpr)
		if !ok || bo.Op != "==" {
			t.Fatalf("branch %d guard is not an == comparison: %#v", k, br.Tests[0])
		}
	}
}

func TestGenerateSingleStateHasNoStateGuard(t *testing.T) {
	u1 := typing.Mk(typing.KindUint, typing.IntArg(1))
	stmts := []ir.Statement{&ir.AssignValue{Target: ir.NewName("x", u1, ir.CtxStore), Value: ir.NewResExpr(1, u1)}}
	sched := cfg.Schedule(stmts)
	top, _ := Generate(sched, nil, nil)
	if len(top.Children) != 1 {
		t.Fatalf("want 1 child, got %d", len(top.Children))
	}
	if _, ok := top.Children[0].(*ir.HDLBlock); ok {
		t.Fatalf("single-state output should not wrap in an HDLBlock state guard")
	}
}

func TestGenerateRegisterWriteUnderConditionGetsConditionalExpr(t *testing.T) {
	u4 := typing.Mk(typing.KindUint, typing.IntArg(4))
	u1 := typing.Mk(typing.KindUint, typing.IntArg(1))
	inner := &ir.AssignValue{Target: ir.NewName("acc", u4, ir.CtxStore), Value: ir.NewResExpr(0, u4)}
	branch := &ir.ContainerBlock{Branches: []*ir.Branch{{Tests: []ir.Expr{ir.NewResExpr(1, u1)}, Stmts: []ir.Statement{inner}}}}
	sched := cfg.Schedule([]ir.Statement{branch})
	top, _ := Generate(sched, nil, map[string]bool{"acc": true})

	cb := top.Children[0].(*ir.ContainerBlock)
	assign := cb.Branches[0].Stmts[0].(*ir.AssignValue)
	if _, ok := assign.Value.(*ir.ConditionalExpr); !ok {
		t.Fatalf("want register write under a branch wrapped in ConditionalExpr, got %T", assign.Value)
	}
}

// findAssignComponent searches stmts (recursing into every nested block
// shape) for the first AssignComponent targeting intf/field, returning
// its Value.
func findAssignComponent(stmts []ir.Statement, intf string, field ir.ComponentField) ir.Expr {
	for _, s := range stmts {
		switch b := s.(type) {
		case *ir.AssignComponent:
			if b.Target.Intf == intf && b.Target.Field == field {
				return b.Value
			}
		case *ir.HDLBlock:
			for _, br := range b.Branches {
				if v := findAssignComponent(br.Stmts, intf, field); v != nil {
					return v
				}
			}
		case *ir.ContainerBlock:
			for _, br := range b.Branches {
				if v := findAssignComponent(br.Stmts, intf, field); v != nil {
					return v
				}
			}
		}
	}
	return nil
}

// findAssignValue searches stmts (recursing into every nested block
// shape) for the first AssignValue targeting the named identifier.
func findAssignValue(stmts []ir.Statement, ident string) *ir.AssignValue {
	for _, s := range stmts {
		switch b := s.(type) {
		case *ir.AssignValue:
			if b.Target.Ident == ident {
				return b
			}
		case *ir.HDLBlock:
			for _, br := range b.Branches {
				if v := findAssignValue(br.Stmts, ident); v != nil {
					return v
				}
			}
		case *ir.ContainerBlock:
			for _, br := range b.Branches {
				if v := findAssignValue(br.Stmts, ident); v != nil {
					return v
				}
			}
		}
	}
	return nil
}

// TestAsyncWithTwoYieldsEndToEnd runs `async with din as c: yield c;
// yield c + 1` through the real front->scheduler->hdlgen pipeline and
// checks the 2-state shape: state 0 asserts din.ready and writes
// dout := c, state 1 writes dout := c+1 and returns to state 0.
func TestAsyncWithTwoYieldsEndToEnd(t *testing.T) {
	u4 := typing.Mk(typing.KindUint, typing.IntArg(4))
	body := "async with din as c:\n    yield c\n    yield c + 1\n"
	stmts, bodyCtx, err := front.LowerGearBody(body, map[string]*typing.Type{"din": u4}, nil)
	if err != nil {
		t.Fatal(err)
	}

	regs := bodyCtx.Registers()
	if !regs["c"] {
		t.Fatalf("c is read in state 1 and must be a register, got %v", regs)
	}

	sched := cfg.Schedule(stmts)
	if len(sched.States) != 2 {
		t.Fatalf("want 2 states, got %d", len(sched.States))
	}

	top, _ := Generate(sched, []string{"dout"}, regs)
	hdl, ok := top.Children[0].(*ir.HDLBlock)
	if !ok || len(hdl.Branches) != 2 {
		t.Fatalf("want one top-level HDLBlock with 2 state branches, got %#v", top.Children[0])
	}

	state0 := hdl.Branches[0].Stmts
	if v := findAssignComponent(state0, "din", ir.FieldReady); v == nil {
		t.Fatalf("state 0 does not assert din.ready")
	}
	capture := findAssignValue(state0, "c")
	if capture == nil {
		t.Fatalf("state 0 does not drive the c register")
	}
	if _, ok := capture.Value.(*ir.ConditionalExpr); !ok {
		t.Fatalf("register write under din.valid must be conditional, got %T", capture.Value)
	}
	doutState0 := findAssignComponent(state0, "dout", ir.FieldData)
	if doutState0 == nil {
		t.Fatalf("state 0 does not write dout.data")
	}
	if n, ok := doutState0.(*ir.Name); !ok || n.Ident != "c" {
		t.Fatalf("state 0 want dout := c, got %#v", doutState0)
	}

	state1 := hdl.Branches[1].Stmts
	doutState1 := findAssignComponent(state1, "dout", ir.FieldData)
	if doutState1 == nil {
		t.Fatalf("state 1 does not write dout.data")
	}
	bo, ok := doutState1.(*ir.BinOpExpr)
	if !ok || bo.Op != "+" {
		t.Fatalf("state 1 want dout := c + 1, got %#v", doutState1)
	}
	if n, ok := bo.X.(*ir.Name); !ok || n.Ident != "c" {
		t.Fatalf("state 1 addend want Name(c), got %#v", bo.X)
	}

	var backToZero *ir.AssignValue
	for _, s := range state1 {
		if av, ok := s.(*ir.AssignValue); ok && av.Target.Ident == cfg.StateVarName {
			backToZero = av
		}
	}
	if backToZero == nil {
		t.Fatalf("state 1 does not assign %s", cfg.StateVarName)
	}
	res, ok := backToZero.Value.(*ir.ResExpr)
	if !ok || res.Value != 0 {
		t.Fatalf("state 1 want to transition back to state 0, got %#v", backToZero.Value)
	}
}
