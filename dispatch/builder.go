package dispatch

// Builder constructs a Func by accumulating fluent With* calls before a
// final Build(). Builder is a value receiver throughout so each With*
// call returns an independent, immutable snapshot.
type Builder struct {
	name        string
	arity       int
	keywordOnly map[string]bool
	call        func(args []Arg) (any, error)
}

// NewBuilder starts a Func builder for the given overload name.
func NewBuilder(name string) Builder {
	return Builder{name: name}
}

// WithArity sets the number of required positional arguments.
func (b Builder) WithArity(n int) Builder {
	b.arity = n
	return b
}

// WithKeywordOnly marks names as keyword-only parameters (not counted as
// positional slots).
func (b Builder) WithKeywordOnly(names ...string) Builder {
	m := make(map[string]bool, len(names))
	for k, v := range b.keywordOnly {
		m[k] = v
	}
	for _, n := range names {
		m[n] = true
	}
	b.keywordOnly = m
	return b
}

// WithCall sets the underlying callable.
func (b Builder) WithCall(call func(args []Arg) (any, error)) Builder {
	b.call = call
	return b
}

// Build produces the Func.
func (b Builder) Build() Func {
	return Func{
		Name:        b.name,
		Arity:       b.arity,
		KeywordOnly: b.keywordOnly,
		Call:        b.call,
	}
}
