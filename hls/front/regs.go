package front

import "github.com/sarchlab/gearsim/hls/ir"

// PromoteStateCarried promotes every scope binding whose value must
// survive a state boundary from a Variable to a Register. Two shapes
// need storage:
//
//   - a name assigned inside a loop body (a LoopBlock or IntfLoop, at
//     any nesting depth): the scheduler breaks the loop across states,
//     so a value written in one iteration must persist to the next;
//   - a name read after the first of two or more sibling Yields in the
//     same statement list: the scheduler splits that list at each yield
//     boundary, so a value defined in the first segment is read from a
//     later state than the one that computed it.
//
// Interface bindings and already-promoted registers are left alone.
func PromoteStateCarried(ctx *Context, stmts []ir.Statement) {
	promoteWalk(ctx, stmts, false)
	promoteYieldSplit(ctx, stmts)
}

func promoteWalk(ctx *Context, stmts []ir.Statement, inLoop bool) {
	for _, s := range stmts {
		switch b := s.(type) {
		case *ir.AssignValue:
			if !inLoop || b.Target.Ident == "_" {
				continue
			}
			promote(ctx, b.Target.Ident)
		case *ir.LoopBlock:
			promoteWalk(ctx, b.Stmts, true)
		case *ir.IntfLoop:
			promoteWalk(ctx, b.Stmts, true)
		case *ir.IntfBlock:
			promoteWalk(ctx, b.Stmts, inLoop)
		case *ir.HDLBlock:
			for _, br := range b.Branches {
				promoteWalk(ctx, br.Stmts, inLoop)
			}
		case *ir.ContainerBlock:
			for _, br := range b.Branches {
				promoteWalk(ctx, br.Stmts, inLoop)
			}
		case *ir.BaseBlock:
			promoteWalk(ctx, b.Stmts, inLoop)
		}
	}
}

// promoteYieldSplit finds every statement list that the scheduler will
// split (two or more direct sibling Yields) and promotes every name
// read after the first yield, since those reads land in a later state
// than the list's head segment.
func promoteYieldSplit(ctx *Context, stmts []ir.Statement) {
	firstYield := -1
	yields := 0
	for i, s := range stmts {
		switch b := s.(type) {
		case *ir.Yield:
			yields++
			if firstYield < 0 {
				firstYield = i
			}
		case *ir.LoopBlock:
			promoteYieldSplit(ctx, b.Stmts)
		case *ir.IntfLoop:
			promoteYieldSplit(ctx, b.Stmts)
		case *ir.IntfBlock:
			promoteYieldSplit(ctx, b.Stmts)
		case *ir.BaseBlock:
			promoteYieldSplit(ctx, b.Stmts)
		case *ir.HDLBlock:
			for _, br := range b.Branches {
				promoteYieldSplit(ctx, br.Stmts)
			}
		case *ir.ContainerBlock:
			for _, br := range b.Branches {
				promoteYieldSplit(ctx, br.Stmts)
			}
		}
	}
	if yields < 2 {
		return
	}
	for _, s := range stmts[firstYield+1:] {
		promoteStmtReads(ctx, s)
	}
}

func promoteStmtReads(ctx *Context, s ir.Statement) {
	switch b := s.(type) {
	case *ir.AssignValue:
		promoteExprReads(ctx, b.Value)
	case *ir.AssignComponent:
		promoteExprReads(ctx, b.Value)
	case *ir.Yield:
		for _, v := range b.Values {
			promoteExprReads(ctx, v)
		}
	case *ir.Await:
		promoteExprReads(ctx, b.Cond)
	case *ir.FuncReturn:
		promoteExprReads(ctx, b.Value)
	case *ir.LoopBlock:
		promoteExprReads(ctx, b.Test)
		for _, st := range b.Stmts {
			promoteStmtReads(ctx, st)
		}
	case *ir.IntfBlock:
		for _, st := range b.Stmts {
			promoteStmtReads(ctx, st)
		}
	case *ir.IntfLoop:
		for _, st := range b.Stmts {
			promoteStmtReads(ctx, st)
		}
	case *ir.BaseBlock:
		for _, st := range b.Stmts {
			promoteStmtReads(ctx, st)
		}
	case *ir.HDLBlock:
		for _, br := range b.Branches {
			for _, t := range br.Tests {
				promoteExprReads(ctx, t)
			}
			for _, st := range br.Stmts {
				promoteStmtReads(ctx, st)
			}
		}
	case *ir.ContainerBlock:
		for _, br := range b.Branches {
			for _, t := range br.Tests {
				promoteExprReads(ctx, t)
			}
			for _, st := range br.Stmts {
				promoteStmtReads(ctx, st)
			}
		}
	}
}

func promoteExprReads(ctx *Context, e ir.Expr) {
	switch x := e.(type) {
	case nil:
	case *ir.Name:
		promote(ctx, x.Ident)
	case *ir.BinOpExpr:
		promoteExprReads(ctx, x.X)
		promoteExprReads(ctx, x.Y)
	case *ir.UnaryOpExpr:
		promoteExprReads(ctx, x.X)
	case *ir.ConditionalExpr:
		promoteExprReads(ctx, x.Cond)
		promoteExprReads(ctx, x.Then)
		promoteExprReads(ctx, x.Else)
	case *ir.CastExpr:
		promoteExprReads(ctx, x.X)
	case *ir.ConcatExpr:
		for _, op := range x.Operands {
			promoteExprReads(ctx, op)
		}
	case *ir.SubscriptExpr:
		promoteExprReads(ctx, x.X)
		promoteExprReads(ctx, x.Index)
		promoteExprReads(ctx, x.High)
	case *ir.FunctionCall:
		for _, a := range x.Args {
			promoteExprReads(ctx, a)
		}
	}
}

func promote(ctx *Context, name string) {
	if b, ok := ctx.Lookup(name); ok && !b.IsIntf && !b.IsReg {
		b.Register = b.Variable
		b.IsReg = true
	}
}

// Registers returns the names currently bound as Registers in ctx's
// scope, in the shape hdlgen.Generate's regs parameter expects.
func (c *Context) Registers() map[string]bool {
	out := map[string]bool{}
	for name, b := range c.Scope {
		if b.IsReg {
			out[name] = true
		}
	}
	return out
}
