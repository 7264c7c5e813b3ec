package front

import (
	"fmt"
	"strings"

	"github.com/sarchlab/gearsim/hls/ir"
	"github.com/sarchlab/gearsim/typing"
)

// LowerGearBody parses bodySrc with Parse and lowers it against a fresh
// gear context seeded with the named input interfaces (in->dtype) and
// pure-function definitions available for inlining, returning the
// resulting statement list plus the context (for its Submodules and
// final Scope). Promotion of state-carried assignments to registers is
// done here, before returning.
func LowerGearBody(bodySrc string, inputs map[string]*typing.Type, funcs map[string]*FuncDef) ([]ir.Statement, *Context, error) {
	syntax, err := Parse(bodySrc)
	if err != nil {
		return nil, nil, err
	}
	ctx := NewGearContext(funcs)
	for name, t := range inputs {
		ctx.BindInterface(name, t)
	}
	stmts, err := LowerBody(ctx, syntax)
	if err != nil {
		return nil, nil, err
	}
	PromoteStateCarried(ctx, stmts)
	return stmts, ctx, nil
}

// LowerBody lowers a block of parsed Syntax nodes into IR statements
// against ctx's current scope, mutating ctx's scope as assignments are
// encountered.
func LowerBody(ctx *Context, nodes []*Syntax) ([]ir.Statement, error) {
	var out []ir.Statement
	for _, s := range nodes {
		stmt, err := lowerStmt(ctx, s)
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			out = append(out, stmt)
		}
	}
	return out, nil
}

func lowerStmt(ctx *Context, s *Syntax) (ir.Statement, error) {
	switch s.Kind {
	case KindAssign:
		val, err := LowerExpr(ctx, s.Text)
		if err != nil {
			return nil, err
		}
		name := s.Extra
		existing, hadBinding := ctx.Scope[name]
		if hadBinding && existing.IsReg {
			return &ir.AssignValue{Target: ir.NewName(name, existing.Register, ir.CtxStore), Value: val}, nil
		}
		ctx.Bind(name, val.DType(), false, 0)
		return &ir.AssignValue{Target: ir.NewName(name, val.DType(), ir.CtxStore), Value: val}, nil

	case KindAsyncWith:
		intf := s.Text
		bind := s.Extra
		b, ok := ctx.Lookup(intf)
		if !ok || !b.IsIntf {
			return nil, &SyntaxError{Reason: fmt.Sprintf("%q is not a connected interface", intf)}
		}
		ctx.Bind(bind, b.Interface, false, 0)
		capture := captureBind(intf, bind, b.Interface)
		stmts, err := LowerBody(ctx, s.Children)
		if err != nil {
			return nil, err
		}
		return &ir.IntfBlock{Intf: intf, Bind: bind, Stmts: append([]ir.Statement{capture}, stmts...)}, nil

	case KindAsyncFor:
		intf := s.Text
		bind := s.Extra
		b, ok := ctx.Lookup(intf)
		if !ok || !b.IsIntf {
			return nil, &SyntaxError{Reason: fmt.Sprintf("%q is not a connected interface", intf)}
		}
		ctx.Bind(bind, b.Interface, false, 0)
		capture := captureBind(intf, bind, b.Interface)
		stmts, err := LowerBody(ctx, s.Children)
		if err != nil {
			return nil, err
		}
		return &ir.IntfLoop{Intf: intf, Bind: bind, Stmts: append([]ir.Statement{capture}, stmts...)}, nil

	case KindYield:
		values, err := lowerCommaList(ctx, s.Text)
		if err != nil {
			return nil, err
		}
		return &ir.Yield{Values: values}, nil

	case KindIf:
		cond, err := LowerExpr(ctx, s.Text)
		if err != nil {
			return nil, err
		}
		var thenChildren, elseChildren []*Syntax
		for _, c := range s.Children {
			if c.Kind == "else" {
				elseChildren = c.Children
				continue
			}
			thenChildren = append(thenChildren, c)
		}
		thenStmts, err := LowerBody(ctx, thenChildren)
		if err != nil {
			return nil, err
		}
		branches := []*ir.Branch{{Tests: []ir.Expr{cond}, Stmts: thenStmts}}
		if elseChildren != nil {
			elseStmts, err := LowerBody(ctx, elseChildren)
			if err != nil {
				return nil, err
			}
			branches = append(branches, &ir.Branch{Stmts: elseStmts})
		}
		return &ir.ContainerBlock{Branches: branches}, nil

	case KindFor:
		return lowerFor(ctx, s)

	case KindReturn:
		val, err := LowerExpr(ctx, s.Text)
		if err != nil {
			return nil, err
		}
		return &ir.FuncReturn{Value: val}, nil

	case KindExprStmt:
		e, err := LowerExpr(ctx, s.Text)
		if err != nil {
			return nil, err
		}
		// A bare expression statement is only meaningful for its
		// side-effects (a gear call synthesising a submodule); discard
		// the resulting value with a throwaway assignment so the
		// statement still has a place in the IR sequence.
		return &ir.AssignValue{Target: ir.NewName("_", e.DType(), ir.CtxStore), Value: e}, nil

	default:
		return nil, &SyntaxError{Reason: fmt.Sprintf("unsupported statement kind %q", s.Kind)}
	}
}

// captureBind realises an `async with`/`async for` binding as an
// explicit assignment of the interface's data component to the bound
// name. This is what lets the bound value outlive its defining state:
// once the name is promoted to a register, this assignment is the
// register's driver in the state that consumed the interface.
func captureBind(intf, bind string, dataType *typing.Type) ir.Statement {
	return &ir.AssignValue{
		Target: ir.NewName(bind, dataType, ir.CtxStore),
		Value:  ir.NewComponent(intf, ir.FieldData, dataType),
	}
}

// lowerCommaList splits a top-level comma-separated expression list
// (respecting nested parens/brackets) and lowers each element; used for
// `yield a, b, c`.
func lowerCommaList(ctx *Context, src string) ([]ir.Expr, error) {
	parts := splitTopLevelComma(src)
	out := make([]ir.Expr, len(parts))
	for i, p := range parts {
		e, err := LowerExpr(ctx, strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func splitTopLevelComma(src string) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, src[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, src[last:])
	return parts
}

// lowerFor supports the restricted form `for NAME in range(N):`, the
// only host-language loop shape the front end accepts. It lowers to a
// LoopBlock driven by a fresh state register counting up to N.
func lowerFor(ctx *Context, s *Syntax) (ir.Statement, error) {
	bind := s.Extra
	seq := strings.TrimSpace(s.Text)
	if !strings.HasPrefix(seq, "range(") || !strings.HasSuffix(seq, ")") {
		return nil, &SyntaxError{Reason: fmt.Sprintf("unsupported for-loop sequence %q (only range(N) is accepted)", seq)}
	}
	boundSrc := strings.TrimSuffix(strings.TrimPrefix(seq, "range("), ")")
	bound, err := LowerExpr(ctx, boundSrc)
	if err != nil {
		return nil, err
	}
	boundRes, ok := bound.(*ir.ResExpr)
	if !ok {
		return nil, &SyntaxError{Reason: "for-loop bound must be a literal constant"}
	}
	n := boundRes.Value
	counterType := typing.Mk(typing.KindUint, typing.IntArg(typing.Bitw(n)))
	counterName := "_" + bind + "_i"
	ctx.Bind(counterName, counterType, true, 0)
	ctx.Bind(bind, counterType, false, 0)

	body, err := LowerBody(ctx, s.Children)
	if err != nil {
		return nil, err
	}
	aliasAssign := &ir.AssignValue{
		Target: ir.NewName(bind, counterType, ir.CtxStore),
		Value:  ir.NewName(counterName, counterType, ir.CtxLoad),
	}
	increment := &ir.AssignValue{
		Target: ir.NewName(counterName, counterType, ir.CtxStore),
		Value: ir.NewBinOpExpr("+",
			ir.NewName(counterName, counterType, ir.CtxLoad),
			ir.NewResExpr(1, typing.Mk(typing.KindUint, typing.IntArg(1))),
			counterType),
	}
	stmts := append([]ir.Statement{aliasAssign}, body...)
	stmts = append(stmts, increment)

	test := ir.NewBinOpExpr("<",
		ir.NewName(counterName, counterType, ir.CtxLoad),
		ir.NewResExpr(n, counterType),
		typing.Mk(typing.KindUint, typing.IntArg(1)))

	return &ir.LoopBlock{Test: test, Stmts: stmts}, nil
}
