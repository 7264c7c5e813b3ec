package hdlgen

import (
	"github.com/sarchlab/gearsim/hier"
	"github.com/sarchlab/gearsim/hls/cfg"
	"github.com/sarchlab/gearsim/hls/ir"
	"github.com/sarchlab/gearsim/typing"
)

// PortConfig describes one port of the emitted module: its direction
// ("in" or "out"), its name, and its stream data type.
type PortConfig struct {
	Dir   string
	Name  string
	DType *typing.Type
}

// RegInfo carries what Emittable needs to declare one register: its
// type and power-on initial value.
type RegInfo struct {
	DType   *typing.Type
	Initial int
}

// RegDecl is one register declaration of the emitted module, in the
// order registers must be declared.
type RegDecl struct {
	Name    string
	DType   *typing.Type
	Initial int
}

// Emittable is the contract handed to the HDL emitter for one scheduled
// leaf: the mangled module name and file basename, the port
// configurations, the register declarations in first-definition order
// (state register last), and the renderable top-level CombBlock.
type Emittable struct {
	ModuleName   string
	FileBasename string
	PortConfigs  []PortConfig
	Regs         []RegDecl
	Top          *ir.CombBlock
}

// NewEmittable assembles an Emittable for the node at hierPath.
// Register declarations are ordered deterministically: each register
// appears at its first definition, found by walking the scheduled
// states in state order and each state's statements in pre-order; the
// scheduler's state register comes last.
func NewEmittable(hierPath, lang string, ports []PortConfig, sched *cfg.Scheduled, top *ir.CombBlock, regs map[string]RegInfo) *Emittable {
	name := hier.PathName(hierPath)
	e := &Emittable{
		ModuleName:   name,
		FileBasename: name + "." + lang,
		PortConfigs:  ports,
		Top:          top,
	}

	seen := map[string]bool{}
	for _, state := range sched.States {
		collectRegDecls(state.Stmts, regs, seen, &e.Regs)
	}
	if sched.StateType != nil {
		e.Regs = append(e.Regs, RegDecl{Name: cfg.StateVarName, DType: sched.StateType, Initial: 0})
	}
	return e
}

func collectRegDecls(stmts []ir.Statement, regs map[string]RegInfo, seen map[string]bool, out *[]RegDecl) {
	for _, s := range stmts {
		switch b := s.(type) {
		case *ir.AssignValue:
			name := b.Target.Ident
			if name == cfg.StateVarName || seen[name] {
				continue
			}
			info, isReg := regs[name]
			if !isReg {
				continue
			}
			seen[name] = true
			dtype := info.DType
			if dtype == nil {
				dtype = b.Target.DType()
			}
			*out = append(*out, RegDecl{Name: name, DType: dtype, Initial: info.Initial})
		case *ir.HDLBlock:
			for _, br := range b.Branches {
				collectRegDecls(br.Stmts, regs, seen, out)
			}
		case *ir.ContainerBlock:
			for _, br := range b.Branches {
				collectRegDecls(br.Stmts, regs, seen, out)
			}
		case *ir.IntfBlock:
			collectRegDecls(b.Stmts, regs, seen, out)
		case *ir.IntfLoop:
			collectRegDecls(b.Stmts, regs, seen, out)
		case *ir.LoopBlock:
			collectRegDecls(b.Stmts, regs, seen, out)
		case *ir.BaseBlock:
			collectRegDecls(b.Stmts, regs, seen, out)
		}
	}
}
