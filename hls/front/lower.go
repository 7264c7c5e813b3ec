package front

import (
	"fmt"
	"strings"

	"github.com/sarchlab/gearsim/hls/ir"
	"github.com/sarchlab/gearsim/typing"
)

// FuncDef is a small pure function available for inlining/caching inside
// a gear body: a parameter name
// list and a body consisting of a single `return <expr>` statement,
// which is all the inlining heuristic below ever considers.
type FuncDef struct {
	Params []string
	Return string // the expression text of the sole return statement
}

// shouldInline implements a tunable inlining heuristic: a function
// inlines when its body is a single return whose expression has at
// most 2 operators and no more name references than it has
// parameters.
func shouldInline(f *FuncDef) bool {
	n, err := ParseExpr(f.Return)
	if err != nil {
		return false
	}
	ops, names := countOpsAndNames(n)
	return ops <= 2 && names <= len(f.Params)
}

func countOpsAndNames(n *exprNode) (ops, names int) {
	if n == nil {
		return 0, 0
	}
	switch n.kind {
	case nName:
		return 0, 1
	case nInt:
		return 0, 0
	case nUnaryOp:
		o, nm := countOpsAndNames(n.x)
		return o + 1, nm
	case nBinOp:
		lo, ln := countOpsAndNames(n.x)
		ro, rn := countOpsAndNames(n.y)
		return lo + ro + 1, ln + rn
	case nAttr:
		o, nm := countOpsAndNames(n.x)
		return o, nm
	case nIndex:
		o1, n1 := countOpsAndNames(n.x)
		o2, n2 := countOpsAndNames(n.y)
		return o1 + o2, n1 + n2
	default:
		var o, nm int
		for _, a := range n.args {
			ao, an := countOpsAndNames(a)
			o += ao
			nm += an
		}
		return o, nm
	}
}

// LowerExpr parses and lowers one expression-syntax string against ctx's
// current scope.
func LowerExpr(ctx *Context, src string) (ir.Expr, error) {
	n, err := ParseExpr(src)
	if err != nil {
		return nil, err
	}
	return lowerNode(ctx, n)
}

func lowerNode(ctx *Context, n *exprNode) (ir.Expr, error) {
	switch n.kind {
	case nInt:
		return ir.NewResExpr(n.ival, typing.LiteralType(n.ival)), nil

	case nName:
		b, ok := ctx.Lookup(n.name)
		if !ok {
			return nil, &SyntaxError{Reason: fmt.Sprintf("undefined name %q", n.name)}
		}
		switch {
		case b.IsIntf:
			return ir.NewComponent(n.name, ir.FieldData, b.Interface), nil
		case b.IsReg:
			return ir.NewName(n.name, b.Register, ir.CtxLoad), nil
		default:
			return ir.NewName(n.name, b.Variable, ir.CtxLoad), nil
		}

	case nAttr:
		inner := n.x
		if inner.kind == nName {
			if b, found := ctx.Lookup(inner.name); found && b.IsIntf {
				field, err := componentField(n.field)
				if err != nil {
					return nil, err
				}
				dtype := b.Interface
				if field != ir.FieldData {
					dtype = typing.Mk(typing.KindUint, typing.IntArg(1))
				}
				return ir.NewComponent(inner.name, field, dtype), nil
			}
		}
		return nil, &SyntaxError{Reason: "attribute access on non-interface name"}

	case nUnaryOp:
		x, err := lowerNode(ctx, n.x)
		if err != nil {
			return nil, err
		}
		t := x.DType()
		if n.op == "!" {
			t = typing.Mk(typing.KindUint, typing.IntArg(1))
		}
		return ir.NewUnaryOpExpr(n.op, x, t), nil

	case nBinOp:
		return lowerBinOp(ctx, n)

	case nIndex:
		x, err := lowerNode(ctx, n.x)
		if err != nil {
			return nil, err
		}
		idx, err := lowerNode(ctx, n.y)
		if err != nil {
			return nil, err
		}
		var sub *typing.Type
		if n.y.kind == nName {
			sub, err = typing.IndexByName(x.DType(), n.y.name)
		} else {
			sub, err = typing.Index(x.DType(), n.y.ival)
		}
		if err != nil {
			return nil, err
		}
		return ir.NewSubscriptExpr(x, idx, nil, sub), nil

	case nSlice:
		x, err := lowerNode(ctx, n.x)
		if err != nil {
			return nil, err
		}
		lo, err := lowerNode(ctx, n.y)
		if err != nil {
			return nil, err
		}
		hi, err := lowerNode(ctx, n.z)
		if err != nil {
			return nil, err
		}
		var sliceT *typing.Type
		if n.y.kind == nInt && n.z.kind == nInt {
			sliceT, err = typing.Slice(x.DType(), n.y.ival, n.z.ival)
			if err != nil {
				return nil, err
			}
		} else {
			sliceT = x.DType()
		}
		return ir.NewSubscriptExpr(x, lo, hi, sliceT), nil

	case nConcat:
		ops := make([]ir.Expr, len(n.args))
		width := 0
		for i, a := range n.args {
			e, err := lowerNode(ctx, a)
			if err != nil {
				return nil, err
			}
			ops[i] = e
			w, err := typing.Bitwidth(e.DType())
			if err == nil {
				width += w
			}
		}
		return ir.NewConcatExpr(ops, typing.Mk(typing.KindUint, typing.IntArg(width))), nil

	case nTuple:
		// A bare parenthesised list outside of a yield is only legal as
		// a tuple-construction used by the aggregate-name binding of a
		// variadic argument; represent it the same way a
		// concatenation is represented, since no bitwidth-level packing
		// decision differs for this front end's purposes.
		return lowerNode(ctx, &exprNode{kind: nConcat, args: n.args})

	case nCall:
		return ctx.lowerCall(n)

	default:
		return nil, &SyntaxError{Reason: "unsupported expression node"}
	}
}

func componentField(name string) (ir.ComponentField, error) {
	switch name {
	case "data":
		return ir.FieldData, nil
	case "valid":
		return ir.FieldValid, nil
	case "ready":
		return ir.FieldReady, nil
	case "eot":
		return ir.FieldEOT, nil
	default:
		return 0, &SyntaxError{Reason: fmt.Sprintf("unknown interface component %q", name)}
	}
}

func lowerBinOp(ctx *Context, n *exprNode) (ir.Expr, error) {
	x, err := lowerNode(ctx, n.x)
	if err != nil {
		return nil, err
	}
	y, err := lowerNode(ctx, n.y)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
		return ir.NewBinOpExpr(n.op, x, y, typing.Mk(typing.KindUint, typing.IntArg(1))), nil
	}

	t, err := typing.BinOpType(x.DType(), y.DType())
	if err != nil {
		return nil, err
	}

	// Mixing signed and unsigned operands explicitly widens
	// the unsigned operand to the result's signed type.
	if t.Kind == typing.KindInt {
		if x.DType().Kind == typing.KindUint {
			x = ir.NewCastExpr(x, t)
		}
		if y.DType().Kind == typing.KindUint {
			y = ir.NewCastExpr(y, t)
		}
	}
	return ir.NewBinOpExpr(n.op, x, y, t), nil
}

// lowerCall resolves a call node either to an inlined expression
// substitution, a cached FunctionCall, or a gear-call submodule.
func (c *Context) lowerCall(n *exprNode) (ir.Expr, error) {
	root := c.root()

	if def, ok := root.Funcs[n.name]; ok {
		args := make([]ir.Expr, len(n.args))
		for i, a := range n.args {
			e, err := lowerNode(c, a)
			if err != nil {
				return nil, err
			}
			args[i] = e
		}
		if shouldInline(def) {
			return inlineCall(def, args)
		}
		key := funcCallKey(n.name, args)
		if cached, ok := root.FuncCache[key]; ok {
			return cached, nil
		}
		rt, err := def.returnType(args)
		if err != nil {
			return nil, err
		}
		call := ir.NewFunctionCall(n.name, args, rt)
		if root.FuncCache == nil {
			root.FuncCache = map[string]*ir.FunctionCall{}
		}
		root.FuncCache[key] = call
		return call, nil
	}

	// Not a known pure function: treat as a gear call. Each positional
	// argument is lowered as an expression and recorded on the submodule
	// as is; an argument that is not already an interface's Component is
	// not assigned to a new interface name. The submodule's single output
	// interface is exposed as `<name>_dout`.
	args := make([]ir.Expr, len(n.args))
	for i, a := range n.args {
		e, err := lowerNode(c, a)
		if err != nil {
			return nil, err
		}
		args[i] = e
	}
	out := n.name + "_dout"
	root.AddSubmodule(n.name, args, []string{out})
	return ir.NewComponent(out, ir.FieldData, typing.Mk(typing.KindAny)), nil
}

// root walks up to the outermost GearContext, since submodules and the
// function cache are recorded once per gear body rather than per nested
// FuncContext.
func (c *Context) root() *Context {
	for c.parent != nil {
		c = c.parent
	}
	return c
}

func funcCallKey(name string, args []ir.Expr) string {
	var b strings.Builder
	b.WriteString(name)
	for _, a := range args {
		b.WriteString("|")
		b.WriteString(a.DType().String())
	}
	return b.String()
}

func (f *FuncDef) returnType(args []ir.Expr) (*typing.Type, error) {
	n, err := ParseExpr(f.Return)
	if err != nil {
		return nil, err
	}
	fc := &Context{Scope: map[string]*Binding{}}
	for i, p := range f.Params {
		if i < len(args) {
			fc.Scope[p] = &Binding{Variable: args[i].DType()}
		}
	}
	e, err := lowerNode(fc, n)
	if err != nil {
		return nil, err
	}
	return e.DType(), nil
}

// inlineCall lowers an inlined function's return expression directly
// against the caller's argument values, substituting each parameter
// name with the argument expression in-place (no FunctionCall node is
// emitted).
func inlineCall(def *FuncDef, args []ir.Expr) (ir.Expr, error) {
	fc := &Context{Scope: map[string]*Binding{}}
	for i, p := range def.Params {
		if i < len(args) {
			fc.Scope[p] = &Binding{Variable: args[i].DType()}
		}
	}
	n, err := ParseExpr(def.Return)
	if err != nil {
		return nil, err
	}
	return substituteInline(fc, n, def.Params, args)
}

// substituteInline lowers n but replaces each bare-name leaf matching a
// parameter with the caller's actual argument expression, so the
// inlined body carries the caller's real operands instead of re-binding
// fresh Names.
func substituteInline(fc *Context, n *exprNode, params []string, args []ir.Expr) (ir.Expr, error) {
	if n.kind == nName {
		for i, p := range params {
			if p == n.name && i < len(args) {
				return args[i], nil
			}
		}
	}
	switch n.kind {
	case nBinOp:
		x, err := substituteInline(fc, n.x, params, args)
		if err != nil {
			return nil, err
		}
		y, err := substituteInline(fc, n.y, params, args)
		if err != nil {
			return nil, err
		}
		return lowerBinOpVals(n.op, x, y)
	case nUnaryOp:
		x, err := substituteInline(fc, n.x, params, args)
		if err != nil {
			return nil, err
		}
		t := x.DType()
		if n.op == "!" {
			t = typing.Mk(typing.KindUint, typing.IntArg(1))
		}
		return ir.NewUnaryOpExpr(n.op, x, t), nil
	default:
		return lowerNode(fc, n)
	}
}

func lowerBinOpVals(op string, x, y ir.Expr) (ir.Expr, error) {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
		return ir.NewBinOpExpr(op, x, y, typing.Mk(typing.KindUint, typing.IntArg(1))), nil
	}
	t, err := typing.BinOpType(x.DType(), y.DType())
	if err != nil {
		return nil, err
	}
	if t.Kind == typing.KindInt {
		if x.DType().Kind == typing.KindUint {
			x = ir.NewCastExpr(x, t)
		}
		if y.DType().Kind == typing.KindUint {
			y = ir.NewCastExpr(y, t)
		}
	}
	return ir.NewBinOpExpr(op, x, y, t), nil
}
