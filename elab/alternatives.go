package elab

import (
	"fmt"

	"github.com/sarchlab/gearsim/dispatch"
	"github.com/sarchlab/gearsim/hier"
)

// InstantiateAlternatives dispatches one gear call across its registered
// overloads: candidates are tried in declaration order (primary first),
// each behind a dispatch.Func whose arity is the candidate's
// positional-argument count. A candidate that fails to elaborate
// (unification, enablement false, unresolved outputs) has its error
// accumulated; the first success wins. When every candidate has
// definitively failed the aggregate *dispatch.MultiAlternativeError is
// returned; when no candidate is yet arity-complete the returned
// *dispatch.Partial remembers the supplied arguments so the caller can
// supply more.
func InstantiateAlternatives(ctx *Context, parent hier.NodeID, specs []GearSpec, args []Arg) (hier.NodeID, *dispatch.Partial, error) {
	if len(specs) == 0 {
		return hier.NodeID(-1), nil, fmt.Errorf("elab: no overloads registered")
	}

	funcs := make([]dispatch.Func, len(specs))
	for i := range specs {
		spec := specs[i]
		funcs[i] = dispatch.NewBuilder(spec.Name).
			WithArity(len(spec.ArgNames)).
			WithCall(func(dargs []dispatch.Arg) (any, error) {
				eargs := make([]Arg, len(dargs))
				for j, da := range dargs {
					ea, ok := da.Value.(Arg)
					if !ok {
						return nil, fmt.Errorf("elab: overload %q: argument %d is not an elab.Arg", spec.Name, j)
					}
					if da.Name != "" {
						ea.Name = da.Name
					}
					eargs[j] = ea
				}
				return Instantiate(ctx, parent, spec, eargs)
			}).
			Build()
	}

	p := dispatch.NewPartial(funcs[0], funcs[1:]...)
	dargs := make([]dispatch.Arg, len(args))
	for i, a := range args {
		dargs[i] = dispatch.Arg{Name: a.Name, Value: a}
	}

	result, next, err := p.Call(dargs...)
	if err != nil {
		return hier.NodeID(-1), nil, err
	}
	if next != nil {
		return hier.NodeID(-1), next, nil
	}
	return result.(hier.NodeID), nil, nil
}
