package elab

import (
	"fmt"

	"github.com/sarchlab/gearsim/hier"
	"github.com/sarchlab/gearsim/typing"
)

// ConstGearName is the name Instantiate looks up (and auto-builds a
// GearSpec for) when wrapping a literal positional argument.
const ConstGearName = "const"

// GearSpec describes one gear signature for instantiation: its
// positional argument names (each typed by the connected interface),
// its parameter map, and the return-type template that produces its
// outputs.
type GearSpec struct {
	Name           string
	ArgNames       []string
	Params         map[string]Param
	ReturnTemplate string
	Enablement     string
	Body           func(ctx *Context, node hier.NodeID) error // non-leaf: registers children
}

// Arg is one argument supplied to Instantiate: either an already-
// connected interface, or a bare literal value that Instantiate wraps
// as a freshly instantiated "const" gear producing an interface of the
// literal's type.
type Arg struct {
	Name      string
	Interface hier.InterfaceID
	Literal   *int
}

// Instantiate runs the nine-step gear-node construction sequence:
//
//  1. push the node onto the current-hier stack (so children created by
//     Body register under it);
//  2. check arity against the signature;
//  3. wrap every non-stream positional arg as a const-gear producing an
//     interface of the literal's type;
//  3-iv. wrap every already-connected argument: build InPorts and
//     connect each argument interface to one;
//  5. infer parameters (elab.Infer);
//  6. if Body is non-nil, run it so child gears register;
//  7-8. derive output types, create OutPorts and interfaces;
//  9. pop the hier stack.
//
// Any failure during these steps triggers Remove() on the partially
// built node before the error is returned, via Context.WithHier.
func Instantiate(ctx *Context, parent hier.NodeID, spec GearSpec, args []Arg) (hier.NodeID, error) {
	args, err := resolveLiteralArgs(ctx, parent, args)
	if err != nil {
		return hier.NodeID(-1), err
	}

	node := ctx.Graph.AddChild(parent, spec.Name)

	err = ctx.WithHier(node, func() error {
		if len(args) > len(spec.ArgNames) {
			return &TooManyArguments{Gear: spec.Name, Got: len(args), Expected: len(spec.ArgNames)}
		}

		argTypes := make(map[string]*typing.Type, len(args))
		for i, a := range args {
			name, err := spec.argName(i, a)
			if err != nil {
				return err
			}
			iface := ctx.Graph.Interface(a.Interface)
			if iface.DType == nil || !typing.Specified(iface.DType) {
				return &GearArgsNotSpecified{Gear: spec.Name, Name: name}
			}
			argTypes[name] = iface.DType

			port := ctx.Graph.AddInPort(node, name)
			if err := ctx.Graph.Connect(port, a.Interface); err != nil {
				return err
			}
		}

		result, err := Infer(spec.Params, argTypes, spec.ReturnTemplate, true)
		if err != nil {
			return err
		}

		if err := Enablement(result.Env, spec.Enablement); err != nil {
			return err
		}

		if spec.Body != nil {
			if err := spec.Body(ctx, node); err != nil {
				return err
			}
		}

		if len(result.OutTypes) == 0 {
			return &GearTypeNotSpecified{Gear: spec.Name, Name: "dout"}
		}
		for i, t := range result.OutTypes {
			if !typing.Specified(t) {
				return &GearTypeNotSpecified{Gear: spec.Name, Name: result.OutNames[i]}
			}
			outPort := ctx.Graph.AddOutPort(node, result.OutNames[i])
			outIface := ctx.Graph.NewInterface(t)
			if err := ctx.Graph.Connect(outPort, outIface); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return hier.NodeID(-1), err
	}
	return node, nil
}

// argName resolves the binding name for the i-th supplied argument: an
// unnamed argument binds to the signature's positional name ArgNames[i],
// and a named argument must name one of the signature's parameters,
// otherwise the candidate is rejected with a TypeMatchError so overload
// dispatch can try the next alternative.
func (s GearSpec) argName(i int, a Arg) (string, error) {
	if a.Name == "" {
		if i < len(s.ArgNames) {
			return s.ArgNames[i], nil
		}
		return "", &GearArgsNotSpecified{Gear: s.Name, Name: fmt.Sprintf("arg%d", i)}
	}
	for _, n := range s.ArgNames {
		if n == a.Name {
			return a.Name, nil
		}
	}
	return "", &typing.TypeMatchError{Reason: fmt.Sprintf("gear %q has no parameter %q", s.Name, a.Name)}
}

// resolveLiteralArgs returns args with every Literal-bearing entry
// replaced by an Interface connected to a freshly instantiated "const"
// gear, leaving already-connected entries untouched.
func resolveLiteralArgs(ctx *Context, parent hier.NodeID, args []Arg) ([]Arg, error) {
	hasLiteral := false
	for _, a := range args {
		if a.Literal != nil {
			hasLiteral = true
			break
		}
	}
	if !hasLiteral {
		return args, nil
	}

	out := make([]Arg, len(args))
	for i, a := range args {
		if a.Literal == nil {
			out[i] = a
			continue
		}
		iface, err := instantiateConst(ctx, parent, *a.Literal)
		if err != nil {
			return nil, err
		}
		out[i] = Arg{Name: a.Name, Interface: iface}
	}
	return out, nil
}

// instantiateConst builds a leaf "const" gear producing v, returning the
// interface of its sole output.
func instantiateConst(ctx *Context, parent hier.NodeID, v int) (hier.InterfaceID, error) {
	spec := GearSpec{Name: ConstGearName, ReturnTemplate: constReturnTemplate(v)}
	node, err := Instantiate(ctx, parent, spec, nil)
	if err != nil {
		return hier.InterfaceID(-1), err
	}
	outPort := ctx.Graph.Node(node).OutPorts[0]
	return ctx.Graph.Port(outPort).Interface, nil
}

// constReturnTemplate renders v as a return-type template following
// typing.LiteralType's assignment rule: 0 -> Uint[1]; positive ->
// Uint[bitw(v)]; negative -> Int[bitw(-v)].
func constReturnTemplate(v int) string {
	switch {
	case v == 0:
		return "Uint(1)"
	case v > 0:
		return fmt.Sprintf("Uint(bitw(%d))", v)
	default:
		return fmt.Sprintf("Int(bitw(%d))", -v)
	}
}
