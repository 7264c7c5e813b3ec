package typing

import "fmt"

// Bitw computes ceil(log2(x+1)) for x > 0, the minimal number of bits
// needed to represent the unsigned literal x. Bitw(0) is defined as 1 to
// match integer-literal typing (0 -> Uint[1]).
func Bitw(x int) int {
	if x <= 0 {
		return 1
	}
	// ceil(log2(x+1)) is the bit length of x for x > 0.
	n := 0
	v := x
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}

// Bitwidth returns the bit width of t. It is only defined when Specified(t)
// holds; callers must check first or accept the returned error.
func Bitwidth(t *Type) (int, error) {
	if !Specified(t) {
		return 0, &TemplatedTypeUnspecified{Type: t}
	}
	switch t.Kind {
	case KindAny:
		return 0, nil
	case KindUint, KindInt:
		return t.Args[0].Int, nil
	case KindUfixp:
		return t.Args[1].Int, nil
	case KindFixp:
		return t.Args[1].Int, nil
	case KindTuple, KindUnion:
		sum := 0
		width := 0
		for _, a := range t.Args {
			w, err := Bitwidth(a.Type)
			if err != nil {
				return 0, err
			}
			if t.Kind == KindUnion {
				if w > width {
					width = w
				}
			} else {
				sum += w
			}
		}
		if t.Kind == KindUnion {
			ctrl := Bitw(len(t.Args) - 1)
			return width + ctrl, nil
		}
		return sum, nil
	case KindArray:
		elemW, err := Bitwidth(t.Args[0].Type)
		if err != nil {
			return 0, err
		}
		return elemW * t.Args[1].Int, nil
	case KindQueue:
		dataW, err := Bitwidth(t.Args[0].Type)
		if err != nil {
			return 0, err
		}
		lvl := 1
		if len(t.Args) > 1 {
			lvl = t.Args[1].Int
		}
		return dataW + lvl, nil
	default:
		return 0, fmt.Errorf("typing: bitwidth undefined for kind %s", t.Kind)
	}
}

// MustBitwidth panics if bitwidth cannot be computed; for use only in tests
// and call sites that have already checked Specified.
func MustBitwidth(t *Type) int {
	w, err := Bitwidth(t)
	if err != nil {
		panic(err)
	}
	return w
}
