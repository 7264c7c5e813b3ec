package typing

// Unify binds fresh template variables found in `template` against the
// corresponding structural position in `concrete`, extending env. It
// fails with a *TypeMatchError when the two types' shapes disagree or a
// variable would need two different bindings.
func Unify(template, concrete *Type, env Env) (Env, error) {
	if template == nil || concrete == nil {
		return nil, &TypeMatchError{Template: template, Concrete: concrete, Reason: "nil type"}
	}

	out := make(Env, len(env))
	for k, v := range env {
		out[k] = v
	}

	if template.Kind == KindAny {
		return out, nil
	}

	if template.Kind != concrete.Kind {
		return nil, &TypeMatchError{Template: template, Concrete: concrete, Reason: "kind mismatch"}
	}
	if len(template.Args) != len(concrete.Args) {
		return nil, &TypeMatchError{Template: template, Concrete: concrete, Reason: "arity mismatch"}
	}

	for i := range template.Args {
		ta := template.Args[i]
		ca := concrete.Args[i]

		switch {
		case ta.IsTmpl:
			name := ta.Expr.String()
			v, ok := out[name]
			if !ok {
				if ca.IsInt {
					out[name] = intVal(ca.Int)
				} else {
					out[name] = typeVal(ca.Type)
				}
				continue
			}
			if ca.IsInt {
				if !v.IsInt || v.Int != ca.Int {
					return nil, &TypeMatchError{Template: template, Concrete: concrete, Reason: "conflicting binding for " + name}
				}
			} else {
				if v.Type == nil || !Equal(v.Type, ca.Type) {
					return nil, &TypeMatchError{Template: template, Concrete: concrete, Reason: "conflicting binding for " + name}
				}
			}
		case ta.IsInt:
			if !ca.IsInt || ta.Int != ca.Int {
				return nil, &TypeMatchError{Template: template, Concrete: concrete, Reason: "int mismatch"}
			}
		case ta.Type != nil:
			var err error
			out, err = Unify(ta.Type, ca.Type, out)
			if err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}
