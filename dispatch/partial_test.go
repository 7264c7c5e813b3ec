package dispatch

import "testing"

func add2(args []Arg) (any, error) {
	return args[0].Value.(int) + args[1].Value.(int), nil
}

func TestPartialAccumulatesUntilArity(t *testing.T) {
	f := NewBuilder("add2").WithArity(2).WithCall(add2).Build()
	p := NewPartial(f)

	result, next, err := p.Call(Arg{Value: 3})
	if err != nil {
		t.Fatal(err)
	}
	if result != nil {
		t.Fatalf("expected no result yet, got %v", result)
	}
	if next == nil {
		t.Fatalf("expected a partial to continue accumulating")
	}

	result, next, err = next.Call(Arg{Value: 4})
	if err != nil {
		t.Fatal(err)
	}
	if next != nil {
		t.Fatalf("expected dispatch to complete")
	}
	if result.(int) != 7 {
		t.Fatalf("want 7 got %v", result)
	}
}

func TestPartialEquivalence(t *testing.T) {
	f := NewBuilder("add2").WithArity(2).WithCall(add2).Build()

	// Partial(f)(a)(b) == f(a,b) == Partial(f)(a,b)
	direct, _, _ := NewPartial(f).Call(Arg{Value: 1}, Arg{Value: 2})

	_, step1, _ := NewPartial(f).Call(Arg{Value: 1})
	chained, _, _ := step1.Call(Arg{Value: 2})

	if direct.(int) != chained.(int) {
		t.Fatalf("direct=%v chained=%v", direct, chained)
	}
}

func TestMultiAlternativeErrorWhenAllFail(t *testing.T) {
	failing := func(msg string) func([]Arg) (any, error) {
		return func(args []Arg) (any, error) { return nil, errString(msg) }
	}
	a := NewBuilder("a").WithArity(1).WithCall(failing("bad a")).Build()
	b := NewBuilder("b").WithArity(1).WithCall(failing("bad b")).Build()

	p := NewPartial(a, b)
	_, _, err := p.Call(Arg{Value: 1})
	if err == nil {
		t.Fatalf("expected an aggregate error")
	}
	multi, ok := err.(*MultiAlternativeError)
	if !ok || len(multi.Errors) != 2 {
		t.Fatalf("expected MultiAlternativeError with 2 entries, got %#v", err)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
