package typing

import "testing"

func TestCopyPreservesEqualityAndHash(t *testing.T) {
	u := Mk(KindUint, IntArg(4))
	cp := Copy(u)
	if !Equal(u, cp) {
		t.Fatalf("copy not equal: %s vs %s", u, cp)
	}
	if Hash(u) != Hash(cp) {
		t.Fatalf("hash mismatch after copy")
	}
}

func TestBitwidthSumsFields(t *testing.T) {
	tup := MkNamed(KindTuple, []string{"a", "b"}, []Arg{
		TypeArg(Mk(KindUint, IntArg(1))),
		TypeArg(Mk(KindUint, IntArg(2))),
	})
	w, err := Bitwidth(tup)
	if err != nil {
		t.Fatal(err)
	}
	if w != 3 {
		t.Fatalf("want 3, got %d", w)
	}
}

func TestBinOpTypeUnsignedPlusUnsigned(t *testing.T) {
	r, err := BinOpType(Mk(KindUint, IntArg(2)), Mk(KindUint, IntArg(3)))
	if err != nil {
		t.Fatal(err)
	}
	want := Mk(KindUint, IntArg(4))
	if !Equal(r, want) {
		t.Fatalf("got %s want %s", r, want)
	}
}

func TestBinOpTypeSignedWins(t *testing.T) {
	r, err := BinOpType(Mk(KindInt, IntArg(2)), Mk(KindUint, IntArg(3)))
	if err != nil {
		t.Fatal(err)
	}
	want := Mk(KindInt, IntArg(5))
	if !Equal(r, want) {
		t.Fatalf("got %s want %s", r, want)
	}
}

func TestQueueBitwidthAndIndex(t *testing.T) {
	q := Mk(KindQueue, TypeArg(Mk(KindUint, IntArg(4))), IntArg(2))
	w, err := Bitwidth(q)
	if err != nil {
		t.Fatal(err)
	}
	if w != 6 {
		t.Fatalf("want 6, got %d", w)
	}

	data, err := Index(q, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(data, Mk(KindUint, IntArg(4))) {
		t.Fatalf("data subtype wrong: %s", data)
	}

	eot, err := Index(q, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(eot, Mk(KindUint, IntArg(2))) {
		t.Fatalf("eot subtype wrong: %s", eot)
	}
}

func TestTupleRename(t *testing.T) {
	tup := MkNamed(KindTuple, []string{"a", "b"}, []Arg{
		TypeArg(Mk(KindUint, IntArg(1))),
		TypeArg(Mk(KindUint, IntArg(2))),
	})
	renamed := Rename(tup, map[string]string{"a": "x"})
	fields := Fields(renamed)
	if len(fields) != 2 || fields[0] != "x" || fields[1] != "b" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestLiteralType(t *testing.T) {
	cases := []struct {
		v    int
		kind Kind
		w    int
	}{
		{0, KindUint, 1},
		{5, KindUint, 3},
		{-5, KindInt, 3},
	}
	for _, c := range cases {
		got := LiteralType(c.v)
		if got.Kind != c.kind {
			t.Fatalf("%d: kind got %s want %s", c.v, got.Kind, c.kind)
		}
		w, _ := Bitwidth(got)
		if w != c.w {
			t.Fatalf("%d: width got %d want %d", c.v, w, c.w)
		}
	}
}

func TestTemplateSubstFixedPoint(t *testing.T) {
	// Queue[Uint['w'], 'l'] substituted with w=4, l=2.
	q := Mk(KindQueue, Arg{Type: Mk(KindUint, TemplateArg("w"))}, TemplateArg("l"))
	env := Env{"w": intVal(4), "l": intVal(2)}
	resolved := Subst(q, env)
	if !Specified(resolved) {
		t.Fatalf("expected fully specified after subst, got %s", resolved)
	}
	w, err := Bitwidth(resolved)
	if err != nil {
		t.Fatal(err)
	}
	if w != 6 {
		t.Fatalf("want 6 got %d", w)
	}
}

func TestTemplateSubstBitw(t *testing.T) {
	// Uint[bitw(din)] substituted with din=7 -> bitw(7)=3.
	a := TemplateArg("bitw(din)")
	ty := Mk(KindUint, a)
	env := Env{"din": intVal(7)}
	resolved := Subst(ty, env)
	if !Specified(resolved) {
		t.Fatalf("expected specified, got %s", resolved)
	}
	if resolved.Args[0].Int != 3 {
		t.Fatalf("want 3 got %d", resolved.Args[0].Int)
	}
}

func TestTemplateQueueConstructor(t *testing.T) {
	ty := Mk(KindAny, TemplateArg("Queue(din, 2)"))
	env := Env{"din": typeVal(Mk(KindUint, IntArg(4)))}
	resolved := Subst(ty, env)
	want := Mk(KindQueue, TypeArg(Mk(KindUint, IntArg(4))), IntArg(2))
	if !Equal(resolved.Args[0].Type, want) {
		t.Fatalf("got %s want %s", resolved.Args[0], want)
	}
}

func TestTemplateQueueConstructorDefaultsLevel(t *testing.T) {
	expr, err := ParseTemplate("Queue(din)")
	if err != nil {
		t.Fatal(err)
	}
	v, ok := expr.Eval(Env{"din": typeVal(Mk(KindUint, IntArg(4)))})
	if !ok || v.Type == nil {
		t.Fatalf("evaluation failed")
	}
	w, err := Bitwidth(v.Type)
	if err != nil {
		t.Fatal(err)
	}
	if w != 5 {
		t.Fatalf("Queue[Uint[4]] should default to one eot bit, width got %d", w)
	}
}

func TestTemplateArrayConstructor(t *testing.T) {
	expr, err := ParseTemplate("Array(elem, 3)")
	if err != nil {
		t.Fatal(err)
	}
	v, ok := expr.Eval(Env{"elem": typeVal(Mk(KindUint, IntArg(2)))})
	if !ok || v.Type == nil {
		t.Fatalf("evaluation failed")
	}
	w, err := Bitwidth(v.Type)
	if err != nil {
		t.Fatal(err)
	}
	if w != 6 {
		t.Fatalf("Array[Uint[2], 3] width got %d want 6", w)
	}
}

func TestUnifyBindsFreshVariable(t *testing.T) {
	template := Mk(KindUint, TemplateArg("n"))
	concrete := Mk(KindUint, IntArg(8))
	env, err := Unify(template, concrete, Env{})
	if err != nil {
		t.Fatal(err)
	}
	v, ok := env["n"]
	if !ok || !v.IsInt || v.Int != 8 {
		t.Fatalf("expected n=8, got %+v", env)
	}
}

func TestUnifyConflictingBindingFails(t *testing.T) {
	template := MkNamed(KindTuple, []string{"a", "b"}, []Arg{
		{IsTmpl: true, Expr: &TemplateExpr{kind: exprName, name: "n"}},
		{IsTmpl: true, Expr: &TemplateExpr{kind: exprName, name: "n"}},
	})
	concrete := MkNamed(KindTuple, []string{"a", "b"}, []Arg{
		IntArg(4), IntArg(5),
	})
	if _, err := Unify(template, concrete, Env{}); err == nil {
		t.Fatalf("expected conflicting-binding error")
	}
}

func TestIndexNegativeNormalises(t *testing.T) {
	tup := MkNamed(KindTuple, []string{"a", "b", "c"}, []Arg{
		TypeArg(Mk(KindUint, IntArg(1))),
		TypeArg(Mk(KindUint, IntArg(2))),
		TypeArg(Mk(KindUint, IntArg(3))),
	})
	got, err := Index(tup, -1)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(got, Mk(KindUint, IntArg(3))) {
		t.Fatalf("got %s", got)
	}
}

func TestIndexOutOfRangeErrors(t *testing.T) {
	u := Mk(KindUint, IntArg(4))
	if _, err := Index(u, 0); err == nil {
		t.Fatalf("expected error indexing non-enumerable type")
	}
}
