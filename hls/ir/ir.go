// Package ir defines the typed expression/statement intermediate
// representation that a leaf gear's body is lowered into: the front end
// (package hls/front) produces it from parsed syntax, the scheduler
// (package hls/cfg) walks and rewrites it into states, and the code-shape
// generator (package hdlgen) lowers it into a combinational block.
package ir

import "github.com/sarchlab/gearsim/typing"

// Expr is any typed expression node. Every variant carries its inferred
// dtype.
type Expr interface {
	exprNode()
	DType() *typing.Type
}

type exprBase struct {
	dtype *typing.Type
}

func (exprBase) exprNode()            {}
func (e exprBase) DType() *typing.Type { return e.dtype }

// ResExpr is a literal value.
type ResExpr struct {
	exprBase
	Value int
}

func NewResExpr(v int, t *typing.Type) *ResExpr {
	return &ResExpr{exprBase: exprBase{dtype: t}, Value: v}
}

// NameCtx distinguishes how a Name reference is used.
type NameCtx int

const (
	CtxLoad NameCtx = iota
	CtxStore
	CtxEnable
)

// Name is a reference to a Variable, Register or Interface.
type Name struct {
	exprBase
	Ident string
	Ctx   NameCtx
}

func NewName(ident string, t *typing.Type, ctx NameCtx) *Name {
	return &Name{exprBase: exprBase{dtype: t}, Ident: ident, Ctx: ctx}
}

// BinOpExpr is a binary operation; its dtype follows typing.BinOpType.
type BinOpExpr struct {
	exprBase
	Op       string
	X, Y     Expr
}

func NewBinOpExpr(op string, x, y Expr, t *typing.Type) *BinOpExpr {
	return &BinOpExpr{exprBase: exprBase{dtype: t}, Op: op, X: x, Y: y}
}

// UnaryOpExpr is a unary operation (-, ~, !).
type UnaryOpExpr struct {
	exprBase
	Op string
	X  Expr
}

func NewUnaryOpExpr(op string, x Expr, t *typing.Type) *UnaryOpExpr {
	return &UnaryOpExpr{exprBase: exprBase{dtype: t}, Op: op, X: x}
}

// ConditionalExpr is a ternary `cond ? then : otherwise`.
type ConditionalExpr struct {
	exprBase
	Cond, Then, Else Expr
}

func NewConditionalExpr(cond, then, els Expr, t *typing.Type) *ConditionalExpr {
	return &ConditionalExpr{exprBase: exprBase{dtype: t}, Cond: cond, Then: then, Else: els}
}

// CastExpr re-interprets X at a new dtype.
type CastExpr struct {
	exprBase
	X Expr
}

func NewCastExpr(x Expr, t *typing.Type) *CastExpr {
	return &CastExpr{exprBase: exprBase{dtype: t}, X: x}
}

// ConcatExpr concatenates operands MSB-first.
type ConcatExpr struct {
	exprBase
	Operands []Expr
}

func NewConcatExpr(ops []Expr, t *typing.Type) *ConcatExpr {
	return &ConcatExpr{exprBase: exprBase{dtype: t}, Operands: ops}
}

// SubscriptExpr indexes or slices X.
type SubscriptExpr struct {
	exprBase
	X     Expr
	Index Expr
	High  Expr // non-nil for a slice
}

func NewSubscriptExpr(x, index, high Expr, t *typing.Type) *SubscriptExpr {
	return &SubscriptExpr{exprBase: exprBase{dtype: t}, X: x, Index: index, High: high}
}

// Component is one interface sub-field: data, valid, ready or eot.
type ComponentField int

const (
	FieldData ComponentField = iota
	FieldValid
	FieldReady
	FieldEOT
)

type Component struct {
	exprBase
	Intf  string
	Field ComponentField
}

func NewComponent(intf string, field ComponentField, t *typing.Type) *Component {
	return &Component{exprBase: exprBase{dtype: t}, Intf: intf, Field: field}
}

// FunctionCall is a call to a cached, non-inlined pure function.
type FunctionCall struct {
	exprBase
	Name string
	Args []Expr
}

func NewFunctionCall(name string, args []Expr, t *typing.Type) *FunctionCall {
	return &FunctionCall{exprBase: exprBase{dtype: t}, Name: name, Args: args}
}

// InterfacePull reads the next data item from a stream interface.
type InterfacePull struct {
	exprBase
	Intf string
}

func NewInterfacePull(intf string, t *typing.Type) *InterfacePull {
	return &InterfacePull{exprBase: exprBase{dtype: t}, Intf: intf}
}

// Statement is any IR statement node.
type Statement interface {
	stmtNode()
}

type stmtBase struct{}

func (stmtBase) stmtNode() {}

// AssignValue assigns Value to Target.
type AssignValue struct {
	stmtBase
	Target *Name
	Value  Expr
}

// AssignComponent assigns Value to one sub-field of an interface (its
// `data`, `valid` or `ready` line), the shape the code-shape generator
// emits for `i.ready := true` and `dout.data := expr`.
type AssignComponent struct {
	stmtBase
	Target *Component
	Value  Expr
}

// FuncReturn returns Value from an inlined/cached function body.
type FuncReturn struct {
	stmtBase
	Value Expr
}

// Await suspends the current state; Cond == nil means "false" (stop here
// unconditionally, resume in the next state).
type Await struct {
	stmtBase
	Cond Expr
}

// Yield emits a tuple of output expressions on a suspension boundary.
type Yield struct {
	stmtBase
	Values []Expr
}

// Branch is one guarded arm of an HDLBlock: Tests guard Stmts.
type Branch struct {
	stmtBase
	Tests []Expr
	Stmts []Statement
}

// HDLBlock is an ordered list of guarded Branches (first matching test
// wins, like an if/elif chain lowered to hardware).
type HDLBlock struct {
	stmtBase
	Branches []*Branch
}

func (b *HDLBlock) AddBranch(br *Branch) { b.Branches = append(b.Branches, br) }

// LoopBlock is a `while Test: Stmts` loop, broken across states by the
// scheduler (package hls/cfg).
type LoopBlock struct {
	stmtBase
	Test  Expr
	Stmts []Statement
}

// IntfBlock is `async with Intf as Bind: Stmts`.
type IntfBlock struct {
	stmtBase
	Intf  string
	Bind  string
	Stmts []Statement
}

// IntfLoop is `async for Bind in Intf: Stmts`.
type IntfLoop struct {
	stmtBase
	Intf  string
	Bind  string
	Stmts []Statement
}

// ContainerBlock is an if/elif/else chain evaluated combinationally
// within a single state (as opposed to HDLBlock, which guards separate
// scheduler states).
type ContainerBlock struct {
	stmtBase
	Branches []*Branch
}

// BaseBlock is a plain sequential list of statements.
type BaseBlock struct {
	stmtBase
	Stmts []Statement
}

func (b *BaseBlock) Append(s Statement) { b.Stmts = append(b.Stmts, s) }

// CombBlock is the final lowered shape of a leaf gear's body: a combinational block whose children are AssignValues and
// nested HDLBlocks guarded by entry/exit conditions. It is what the
// (out-of-scope) HDL emitter ultimately textualises.
type CombBlock struct {
	stmtBase
	Children []Statement
}

func (b *CombBlock) Append(s Statement) { b.Children = append(b.Children, s) }

// Sink markers close a structured-control block during CFG construction;
// they carry no data of their own beyond identifying which opener they
// close.
type BaseBlockSink struct{ stmtBase }
type HDLBlockSink struct{ stmtBase }
type LoopBlockSink struct{ stmtBase }
type BranchSink struct{ stmtBase }
