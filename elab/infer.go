package elab

import (
	"fmt"
	"strings"

	"github.com/sarchlab/gearsim/typing"
)

// Param is one entry of a gear's parameter map: a concrete type/value,
// a template string awaiting substitution, or an unresolved keyword
// default.
type Param struct {
	Concrete *typing.Type
	Template string
}

// InferenceResult is the outcome of running the fixed-point substitution
// pass: the resolved environment and, if the return annotation was a
// mapping, the per-output types in declaration order.
type InferenceResult struct {
	Env        typing.Env
	OutNames   []string
	OutTypes   []*typing.Type
	Unresolved []string
}

// Infer runs the elaboration algorithm:
//  1. seed env with the observed argument types and the concrete
//     entries of params;
//  2. fixed-point pass: repeatedly substitute template-string entries of
//     params against the current env, unifying a newly-resolved value
//     against any existing annotation for that name;
//  3. if allowIncomplete is false and anything remains unresolved, return
//     a *TypeMatchError naming the offender;
//  4. compute the return annotation (returnTemplate) under the final
//     env, splitting a resolved Tuple into outNames/outTypes.
func Infer(params map[string]Param, argTypes map[string]*typing.Type, returnTemplate string, allowIncomplete bool) (*InferenceResult, error) {
	env := make(typing.Env, len(params)+len(argTypes))
	for name, t := range argTypes {
		env[name] = typing.Value{Type: t}
	}
	for name, p := range params {
		if p.Concrete != nil {
			env[name] = typing.Value{Type: p.Concrete}
		}
	}

	unresolved := make(map[string]string, len(params))
	for name, p := range params {
		if p.Template != "" {
			unresolved[name] = p.Template
		}
	}

	for {
		progressed := false
		for name, src := range unresolved {
			expr, err := typing.ParseTemplate(src)
			if err != nil {
				continue
			}
			v, ok := expr.Eval(env)
			if !ok {
				continue
			}
			if existing, has := env[name]; has {
				if err := unifyValue(existing, v); err != nil {
					return nil, err
				}
			}
			env[name] = v
			delete(unresolved, name)
			progressed = true
		}
		if !progressed {
			break
		}
	}

	if !allowIncomplete && len(unresolved) > 0 {
		for name := range unresolved {
			return nil, &typing.TypeMatchError{Reason: fmt.Sprintf("parameter %q unresolved", name)}
		}
	}

	unresolvedNames := make([]string, 0, len(unresolved))
	for name := range unresolved {
		unresolvedNames = append(unresolvedNames, name)
	}

	result := &InferenceResult{Env: env, Unresolved: unresolvedNames}

	if returnTemplate != "" {
		expr, err := typing.ParseTemplate(returnTemplate)
		if err == nil {
			if v, ok := expr.Eval(env); ok && v.Type != nil {
				if v.Type.Kind == typing.KindTuple {
					result.OutNames = typing.Fields(v.Type)
					for i := range v.Type.Args {
						result.OutTypes = append(result.OutTypes, v.Type.Args[i].Type)
					}
				} else {
					result.OutNames = []string{"dout"}
					result.OutTypes = []*typing.Type{v.Type}
				}
			}
		}
	}

	return result, nil
}

func unifyValue(existing, newVal typing.Value) error {
	if existing.IsInt != newVal.IsInt {
		return &typing.TypeMatchError{Reason: "int/type mismatch during inference"}
	}
	if existing.IsInt {
		if existing.Int != newVal.Int {
			return &typing.TypeMatchError{Reason: "conflicting integer bindings"}
		}
		return nil
	}
	if !typing.Equal(existing.Type, newVal.Type) {
		return &typing.TypeMatchError{Reason: "conflicting type bindings"}
	}
	return nil
}

// ExpandVariadic expands `*din: T` into per-instance names din0, din1, …
// each typed with T (or T.format(i), approximated here by substituting
// the literal index into any "{}" placeholder in a template source),
// plus the aggregate `din` name bound to a Tuple of the per-instance
// types.
func ExpandVariadic(name string, count int, elemTemplate string) (map[string]Param, *typing.Type) {
	out := make(map[string]Param, count)
	fields := make([]string, count)
	args := make([]typing.Arg, count)
	for i := 0; i < count; i++ {
		instName := fmt.Sprintf("%s%d", name, i)
		fields[i] = instName
		out[instName] = Param{Template: strings.ReplaceAll(elemTemplate, "{}", fmt.Sprint(i))}
		a := typing.TemplateArg(instName)
		a.Name = instName
		args[i] = a
	}
	aggregate := typing.MkNamed(typing.KindTuple, fields, args)
	return out, aggregate
}

// Enablement evaluates the `enablement` parameter (default true) after
// inference; a false result maps to a *typing.TypeMatchError so the
// caller can try the next overload. An enablement expression that cannot
// be parsed or evaluated against env also rejects: a condition that
// cannot be shown true must not enable its overload.
func Enablement(env typing.Env, template string) error {
	if template == "" {
		return nil
	}
	expr, err := typing.ParseTemplate(template)
	if err != nil {
		return &typing.TypeMatchError{Reason: "enablement unparsable: " + template}
	}
	v, ok := expr.Eval(env)
	if !ok {
		return &typing.TypeMatchError{Reason: "enablement unresolvable: " + template}
	}
	if v.IsInt && v.Int == 0 {
		return &typing.TypeMatchError{Reason: "enablement evaluated false"}
	}
	return nil
}
