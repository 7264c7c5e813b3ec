package front

// Syntax is one node of the parsed syntactic tree handed to the visitor
// registry: a kind tag (statement or expression form), its literal
// textual head (e.g. the expression source, the loop-variable name),
// and nested child statements for blocks.
type Syntax struct {
	Kind     string
	Text     string
	Extra    string // secondary textual field (e.g. bound name in "async with")
	Children []*Syntax
}

// Accepted statement kinds.
const (
	KindAssign    = "assign"
	KindAsyncWith = "async_with"
	KindAsyncFor  = "async_for"
	KindYield     = "yield"
	KindIf        = "if"
	KindFor       = "for"
	KindReturn    = "return"
	KindExprStmt  = "expr_stmt"
)
