// Package front is the expression/statement AST front-end: it consumes
// a parsed syntactic tree of a gear body and produces the hls/ir
// representation, via a registry of per-syntax-kind visitors and a
// scoped context carrying variable/register/interface bindings.
package front

import (
	"github.com/sarchlab/gearsim/hls/ir"
	"github.com/sarchlab/gearsim/typing"
)

// Binding is whatever a scope name currently refers to.
type Binding struct {
	Variable  *typing.Type // plain combinational value
	Register  *typing.Type // state-holding across a suspension
	Interface *typing.Type // connected stream
	Initial   int          // Register's initial value
	IsReg     bool
	IsIntf    bool
}

// Submodule records a gear instantiated from inside another gear's
// body: the callee name, the argument expressions it was given, and
// its output interface names for later code emission.
type Submodule struct {
	Name    string
	Args    []ir.Expr
	Outputs []string
}

// Context is the shared state a body lowering walks with: GearContext
// for a whole gear body, FuncContext for an inlined/cached function call
// nested within one. Both carry a scope, the accumulated submodule list,
// and a pointer to the block currently receiving new statements.
type Context struct {
	Scope      map[string]*Binding
	Submodules []*Submodule
	Block      *ir.BaseBlock
	parent     *Context

	// Funcs and FuncCache are only ever populated/consulted on the
	// outermost (root) GearContext — see Context.root in lower.go — so
	// that an inlined/cached function keeps a single identity across
	// nested FuncContexts of the same gear body.
	Funcs     map[string]*FuncDef
	FuncCache map[string]*ir.FunctionCall
}

// NewGearContext starts a fresh top-level context for one gear body.
// funcs is the set of small pure functions available for inlining or
// call-caching inside the body; it may be nil.
func NewGearContext(funcs map[string]*FuncDef) *Context {
	return &Context{Scope: map[string]*Binding{}, Block: &ir.BaseBlock{}, Funcs: funcs}
}

// BindInterface records name as a connected stream of the given data
// dtype: reading the bare name yields its `data` component, and
// `.valid`/`.ready`/`.eot` access its other fields.
func (c *Context) BindInterface(name string, dataType *typing.Type) *Binding {
	b := &Binding{Interface: dataType, IsIntf: true}
	c.Scope[name] = b
	return b
}

// NewFuncContext starts a nested context for an inlined/cached function
// call, inheriting the caller's submodule list (calls inside an inlined
// function still register submodules against the same gear) but with a
// fresh scope and statement target.
func NewFuncContext(parent *Context) *Context {
	return &Context{Scope: map[string]*Binding{}, Block: &ir.BaseBlock{}, parent: parent}
}

// Lookup resolves a name in this context's scope, falling back to the
// parent context for a nested FuncContext.
func (c *Context) Lookup(name string) (*Binding, bool) {
	if b, ok := c.Scope[name]; ok {
		return b, true
	}
	if c.parent != nil {
		return c.parent.Lookup(name)
	}
	return nil, false
}

// Bind records name -> binding in the current scope. An assignment that
// survives a loop body is later promoted to a Register by
// PromoteStateCarried (regs.go); Bind itself just records a Variable
// unless asReg is set.
func (c *Context) Bind(name string, t *typing.Type, asReg bool, initial int) *Binding {
	b := &Binding{Variable: t}
	if asReg {
		b = &Binding{Register: t, IsReg: true, Initial: initial}
	}
	c.Scope[name] = b
	return b
}

// Append adds a statement to the block currently receiving output.
func (c *Context) Append(s ir.Statement) {
	c.Block.Append(s)
}

// AddSubmodule records a gear call made from inside this body.
func (c *Context) AddSubmodule(name string, args []ir.Expr, outputs []string) *Submodule {
	sm := &Submodule{Name: name, Args: args, Outputs: outputs}
	c.Submodules = append(c.Submodules, sm)
	return sm
}
