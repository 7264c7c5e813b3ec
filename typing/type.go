// Package typing implements the parametric hardware type algebra: a fixed
// variant set of generic types (unsigned/signed integers, fixed-point,
// tuples, queues, unions, arrays) with template-string parameters,
// structural equality, bitwidth and indexing semantics.
package typing

import (
	"fmt"
	"strings"
)

// Kind is the base variant of a Type.
type Kind int

const (
	KindAny Kind = iota
	KindUint
	KindInt
	KindUfixp
	KindFixp
	KindTuple
	KindQueue
	KindUnion
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "Any"
	case KindUint:
		return "Uint"
	case KindInt:
		return "Int"
	case KindUfixp:
		return "Ufixp"
	case KindFixp:
		return "Fixp"
	case KindTuple:
		return "Tuple"
	case KindQueue:
		return "Queue"
	case KindUnion:
		return "Union"
	case KindArray:
		return "Array"
	default:
		return "Unknown"
	}
}

// Arg is one generic argument of a Type: either a concrete sub-type, an
// integer literal, or an unresolved template variable (a bare name or a
// parsed template expression awaiting substitution).
type Arg struct {
	Type    *Type
	Int     int
	IsInt   bool
	Expr    *TemplateExpr
	IsTmpl  bool
	Name    string // field name for Tuple/Union args; "" for positional
}

// IntArg builds a concrete integer argument.
func IntArg(v int) Arg { return Arg{Int: v, IsInt: true} }

// TypeArg builds a concrete sub-type argument.
func TypeArg(t *Type) Arg { return Arg{Type: t} }

// TemplateArg builds an unresolved template-expression argument from its
// textual source; a parse failure still yields a usable Arg (falls back to
// an opaque name so resolution can be retried later — substitution never
// raises).
func TemplateArg(src string) Arg {
	expr, err := ParseTemplate(src)
	if err != nil {
		return Arg{IsTmpl: true, Expr: &TemplateExpr{kind: exprName, name: src}}
	}
	return Arg{IsTmpl: true, Expr: expr}
}

func (a Arg) specified() bool {
	switch {
	case a.IsInt:
		return true
	case a.Type != nil:
		return Specified(a.Type)
	case a.IsTmpl:
		return false
	default:
		return true
	}
}

func (a Arg) equal(b Arg) bool {
	if a.Name != b.Name {
		return false
	}
	if a.IsInt != b.IsInt || a.IsTmpl != b.IsTmpl {
		return false
	}
	if a.IsInt {
		return a.Int == b.Int
	}
	if a.IsTmpl {
		return a.Expr.String() == b.Expr.String()
	}
	return Equal(a.Type, b.Type)
}

func (a Arg) String() string {
	switch {
	case a.IsInt:
		return fmt.Sprintf("%d", a.Int)
	case a.IsTmpl:
		return a.Expr.String()
	case a.Type != nil:
		return a.Type.String()
	default:
		return "<nil>"
	}
}

// Type is a parametric hardware type descriptor: a base Kind plus an
// ordered vector of arguments. Equality and hashing are structural over
// (Kind, Args).
type Type struct {
	Kind Kind
	Args []Arg
}

// Mk constructs a type descriptor from a base kind and an ordered argument
// list.
func Mk(kind Kind, args ...Arg) *Type {
	return &Type{Kind: kind, Args: args}
}

// MkNamed constructs a Tuple/Union from an ordered name->Arg mapping,
// auto-naming positional fields f0, f1, ... when names are empty.
func MkNamed(kind Kind, fields []string, args []Arg) *Type {
	out := make([]Arg, len(args))
	for i, a := range args {
		name := ""
		if i < len(fields) {
			name = fields[i]
		}
		if name == "" {
			name = fmt.Sprintf("f%d", i)
		}
		a.Name = name
		out[i] = a
	}
	return &Type{Kind: kind, Args: out}
}

// Specified reports whether every argument of t is concrete (recursively).
func Specified(t *Type) bool {
	if t == nil {
		return false
	}
	if t.Kind == KindAny {
		return true
	}
	for _, a := range t.Args {
		if !a.specified() {
			return false
		}
	}
	return true
}

// Equal reports structural equality over (Kind, Args).
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	if len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if !a.Args[i].equal(b.Args[i]) {
			return false
		}
	}
	return true
}

// Hash returns a value that agrees with Equal: equal types hash equal.
func Hash(t *Type) uint64 {
	return fnv64(t.String())
}

func fnv64(s string) uint64 {
	const prime = 1099511628211
	h := uint64(14695981039346656037)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}

// Copy returns a deep, structurally equal copy of t.
func Copy(t *Type) *Type {
	if t == nil {
		return nil
	}
	args := make([]Arg, len(t.Args))
	for i, a := range t.Args {
		cp := a
		if a.Type != nil {
			cp.Type = Copy(a.Type)
		}
		args[i] = cp
	}
	return &Type{Kind: t.Kind, Args: args}
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	if len(t.Args) == 0 {
		return t.Kind.String()
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s[%s]", t.Kind, strings.Join(parts, ", "))
}

// Keys returns the indexable keys of an enumerable type (Tuple, Union,
// Array, Queue): the field names in declaration order, or integer-string
// indices for unnamed kinds.
func Keys(t *Type) []string {
	switch t.Kind {
	case KindTuple, KindUnion:
		out := make([]string, len(t.Args))
		for i, a := range t.Args {
			out[i] = a.Name
		}
		return out
	case KindArray:
		n := 0
		if len(t.Args) == 2 && t.Args[1].IsInt {
			n = t.Args[1].Int
		}
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("%d", i)
		}
		return out
	case KindQueue:
		return []string{"0", "1"}
	default:
		return nil
	}
}
