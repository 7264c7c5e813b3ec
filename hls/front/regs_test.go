package front

import (
	"testing"

	"github.com/sarchlab/gearsim/typing"
)

func TestPromoteStateCarriedLoopAssignments(t *testing.T) {
	body := "x = 1\nfor i in range(4):\n    x = x + i\n"
	stmts, ctx, err := LowerGearBody(body, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(stmts) != 2 {
		t.Fatalf("want assign + loop, got %d statements", len(stmts))
	}

	b, ok := ctx.Lookup("x")
	if !ok {
		t.Fatalf("x not in scope")
	}
	if !b.IsReg {
		t.Fatalf("x is assigned inside the loop body and must be a register")
	}

	regs := ctx.Registers()
	if !regs["x"] {
		t.Fatalf("Registers() must include x, got %v", regs)
	}
}

func TestVariableOutsideLoopStaysVariable(t *testing.T) {
	body := "x = 1\ny = x + 2\n"
	_, ctx, err := LowerGearBody(body, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"x", "y"} {
		b, ok := ctx.Lookup(name)
		if !ok {
			t.Fatalf("%s not in scope", name)
		}
		if b.IsReg {
			t.Fatalf("%s never crosses a loop boundary and must stay a plain variable", name)
		}
	}
	if len(ctx.Registers()) != 0 {
		t.Fatalf("no registers expected, got %v", ctx.Registers())
	}
}

func TestAsyncWithBindReadAcrossYieldSplitPromoted(t *testing.T) {
	u4 := typing.Mk(typing.KindUint, typing.IntArg(4))
	body := "async with din as c:\n    yield c\n    yield c + 1\n"
	_, ctx, err := LowerGearBody(body, map[string]*typing.Type{"din": u4}, nil)
	if err != nil {
		t.Fatal(err)
	}

	b, ok := ctx.Lookup("c")
	if !ok {
		t.Fatalf("c not in scope")
	}
	if !b.IsReg {
		t.Fatalf("c is read in a later split state and must be a register")
	}
	if !ctx.Registers()["c"] {
		t.Fatalf("Registers() must include c, got %v", ctx.Registers())
	}
}

func TestAsyncWithSingleYieldBindStaysVariable(t *testing.T) {
	u4 := typing.Mk(typing.KindUint, typing.IntArg(4))
	body := "async with din as c:\n    yield c\n"
	_, ctx, err := LowerGearBody(body, map[string]*typing.Type{"din": u4}, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := ctx.Lookup("c")
	if b.IsReg {
		t.Fatalf("a bind never read across a state boundary must stay a variable")
	}
}

func TestInterfaceBindingNotPromoted(t *testing.T) {
	u4 := typing.Mk(typing.KindUint, typing.IntArg(4))
	body := "async for c in din:\n    yield c\n"
	_, ctx, err := LowerGearBody(body, map[string]*typing.Type{"din": u4}, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := ctx.Lookup("din")
	if b.IsReg {
		t.Fatalf("an interface binding must never become a register")
	}
}
