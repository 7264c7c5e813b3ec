// Package hdlgen is the HDL code-shape generator: it consumes the
// scheduler's (package hls/cfg) per-state IR and lowers it into a
// single CombBlock whose children are AssignValues and nested HDLBlocks
// guarded by entry/exit conditions, ready for an HDL emitter to
// textualise.
package hdlgen

import (
	"github.com/sarchlab/gearsim/hls/cfg"
	"github.com/sarchlab/gearsim/hls/ir"
	"github.com/sarchlab/gearsim/typing"
)

// Finding is one observation from the final dead-code/unreachable-branch
// elimination pass, returned instead of silently dropped so callers can
// log what was pruned.
type Finding struct {
	Kind   string // "dead-branch"
	Detail string
}

// Generate lowers a Scheduled program into its top-level CombBlock.
// regs is the set of names that are registers (state-holding across a
// suspension) rather than plain combinational Variables — register
// writes that occur under a conditional path are rewritten to
// ConditionalExpr(new, old, cond) so unconditional register semantics
// hold.
func Generate(sched *cfg.Scheduled, outputs []string, regs map[string]bool) (*ir.CombBlock, []Finding) {
	g := &generator{regs: regs, outputs: outputs}

	top := &ir.CombBlock{}
	if len(sched.States) == 1 {
		top.Children = g.lowerStmts(sched.States[0].Stmts, nil)
		return finalize(top)
	}

	stateHDL := &ir.HDLBlock{}
	for k, state := range sched.States {
		guard := ir.NewBinOpExpr("==",
			ir.NewName(cfg.StateVarName, sched.StateType, ir.CtxLoad),
			ir.NewResExpr(k, sched.StateType),
			typing.Mk(typing.KindUint, typing.IntArg(1)))
		stateHDL.AddBranch(&ir.Branch{
			Tests: []ir.Expr{guard},
			Stmts: g.lowerStmts(state.Stmts, nil),
		})
	}
	top.Children = []ir.Statement{stateHDL}
	return finalize(top)
}

type generator struct {
	regs    map[string]bool
	outputs []string
}

// lowerStmts lowers one state's statement list under the accumulated
// path condition cond (the conjunction of every branch test enclosing
// the current position), recursively handling every IR block shape.
func (g *generator) lowerStmts(stmts []ir.Statement, cond []ir.Expr) []ir.Statement {
	var out []ir.Statement
	for _, s := range stmts {
		lowered := g.lowerOne(s, cond)
		out = append(out, lowered...)
	}
	return out
}

func (g *generator) lowerOne(s ir.Statement, cond []ir.Expr) []ir.Statement {
	switch b := s.(type) {
	case *ir.AssignValue:
		if len(cond) > 0 && g.regs[b.Target.Ident] {
			old := ir.NewName(b.Target.Ident, b.Target.DType(), ir.CtxLoad)
			wrapped := ir.NewConditionalExpr(conj(cond), b.Value, old, b.Target.DType())
			return []ir.Statement{&ir.AssignValue{Target: b.Target, Value: wrapped}}
		}
		return []ir.Statement{b}

	case *ir.AssignComponent:
		return []ir.Statement{b}

	case *ir.Yield:
		return []ir.Statement{g.lowerYield(b)}

	case *ir.Await:
		// Await is a scheduler-only suspension marker; the
		// state boundary it names is already realised as a clock-cycle
		// state split, so it contributes no hardware of its own.
		return nil

	case *ir.FuncReturn:
		// A FuncReturn only has meaning inside an inlined/cached pure
		// function body, already substituted away by the
		// time a gear body reaches the scheduler; at this stage it is
		// dead.
		return nil

	case *ir.IntfBlock:
		entry := ir.NewComponent(b.Intf, ir.FieldValid, typing.Mk(typing.KindUint, typing.IntArg(1)))
		inner := g.lowerStmts(b.Stmts, appendCond(cond, entry))
		inner = append(inner, &ir.AssignComponent{
			Target: ir.NewComponent(b.Intf, ir.FieldReady, typing.Mk(typing.KindUint, typing.IntArg(1))),
			Value:  ir.NewResExpr(1, typing.Mk(typing.KindUint, typing.IntArg(1))),
		})
		return []ir.Statement{&ir.HDLBlock{Branches: []*ir.Branch{{Tests: []ir.Expr{entry}, Stmts: inner}}}}

	case *ir.IntfLoop:
		entry := ir.NewComponent(b.Intf, ir.FieldValid, typing.Mk(typing.KindUint, typing.IntArg(1)))
		inner := g.lowerStmts(b.Stmts, appendCond(cond, entry))
		inner = append(inner, &ir.AssignComponent{
			Target: ir.NewComponent(b.Intf, ir.FieldReady, typing.Mk(typing.KindUint, typing.IntArg(1))),
			Value:  ir.NewResExpr(1, typing.Mk(typing.KindUint, typing.IntArg(1))),
		})
		return []ir.Statement{&ir.HDLBlock{Branches: []*ir.Branch{{Tests: []ir.Expr{entry}, Stmts: inner}}}}

	case *ir.HDLBlock:
		out := &ir.HDLBlock{}
		for _, br := range b.Branches {
			out.AddBranch(&ir.Branch{Tests: br.Tests, Stmts: g.lowerStmts(br.Stmts, appendCond(cond, br.Tests...))})
		}
		return []ir.Statement{out}

	case *ir.ContainerBlock:
		out := &ir.ContainerBlock{}
		for _, br := range b.Branches {
			out.Branches = append(out.Branches, &ir.Branch{Tests: br.Tests, Stmts: g.lowerStmts(br.Stmts, appendCond(cond, br.Tests...))})
		}
		return []ir.Statement{out}

	case *ir.BaseBlock:
		return g.lowerStmts(b.Stmts, cond)

	case *ir.LoopBlock:
		// Unreachable once package hls/cfg has run: every LoopBlock is
		// rewritten into states before hdlgen ever sees the tree.
		return nil

	default:
		return []ir.Statement{s}
	}
}

// lowerYield emits, for each yielded value, a guarded data/valid
// assignment to the corresponding output port by position.
func (g *generator) lowerYield(y *ir.Yield) ir.Statement {
	block := &ir.HDLBlock{}
	u1 := typing.Mk(typing.KindUint, typing.IntArg(1))
	for i, val := range y.Values {
		if i >= len(g.outputs) {
			break
		}
		name := g.outputs[i]
		readyCond := ir.NewComponent(name, ir.FieldReady, u1)
		block.AddBranch(&ir.Branch{
			Tests: []ir.Expr{readyCond},
			Stmts: []ir.Statement{
				&ir.AssignComponent{Target: ir.NewComponent(name, ir.FieldData, val.DType()), Value: val},
				&ir.AssignComponent{Target: ir.NewComponent(name, ir.FieldValid, u1), Value: ir.NewResExpr(1, u1)},
			},
		})
	}
	return block
}

// appendCond returns cond with more appended, never aliasing cond's
// backing array — each recursive branch needs its own condition slice
// since siblings must not see each other's guards.
func appendCond(cond []ir.Expr, more ...ir.Expr) []ir.Expr {
	out := make([]ir.Expr, 0, len(cond)+len(more))
	out = append(out, cond...)
	out = append(out, more...)
	return out
}

func conj(cond []ir.Expr) ir.Expr {
	u1 := typing.Mk(typing.KindUint, typing.IntArg(1))
	if len(cond) == 0 {
		return ir.NewResExpr(1, u1)
	}
	out := cond[0]
	for _, c := range cond[1:] {
		out = ir.NewBinOpExpr("&&", out, c, u1)
	}
	return out
}

// finalize runs the dead-code/unreachable-branch elimination pass over
// top and returns the findings it produced instead of emitting HDL
// text, since HDL text emission is out of scope for this generator.
func finalize(top *ir.CombBlock) (*ir.CombBlock, []Finding) {
	var findings []Finding
	top.Children, findings = pruneDead(top.Children)
	return top, findings
}

// pruneDead drops any branch whose test list contains a literal-false
// ResExpr(0), reporting each drop, and recurses into nested blocks.
func pruneDead(stmts []ir.Statement) ([]ir.Statement, []Finding) {
	var findings []Finding
	var out []ir.Statement
	for _, s := range stmts {
		switch b := s.(type) {
		case *ir.HDLBlock:
			nb := &ir.HDLBlock{}
			for _, br := range b.Branches {
				if isLiteralFalse(br.Tests) {
					findings = append(findings, Finding{Kind: "dead-branch", Detail: "HDLBlock branch with always-false guard"})
					continue
				}
				childStmts, cf := pruneDead(br.Stmts)
				findings = append(findings, cf...)
				nb.AddBranch(&ir.Branch{Tests: br.Tests, Stmts: childStmts})
			}
			out = append(out, nb)
		case *ir.ContainerBlock:
			nb := &ir.ContainerBlock{}
			for _, br := range b.Branches {
				if isLiteralFalse(br.Tests) {
					findings = append(findings, Finding{Kind: "dead-branch", Detail: "ContainerBlock branch with always-false guard"})
					continue
				}
				childStmts, cf := pruneDead(br.Stmts)
				findings = append(findings, cf...)
				nb.Branches = append(nb.Branches, &ir.Branch{Tests: br.Tests, Stmts: childStmts})
			}
			out = append(out, nb)
		default:
			out = append(out, s)
		}
	}
	return out, findings
}

func isLiteralFalse(tests []ir.Expr) bool {
	for _, t := range tests {
		if r, ok := t.(*ir.ResExpr); ok && r.Value == 0 {
			return true
		}
	}
	return false
}
