package typing

// BinOpType computes the result type of a binary arithmetic operation
// between two specified integer types, per the rules table:
// unsigned+unsigned = unsigned of max(w)+1; any signed operand makes the
// result signed, with the unsigned operand first widened by one bit to
// its signed representation, then max(w)+1 over the widened widths.
func BinOpType(a, b *Type) (*Type, error) {
	aw, err := Bitwidth(a)
	if err != nil {
		return nil, err
	}
	bw, err := Bitwidth(b)
	if err != nil {
		return nil, err
	}

	aSigned := a.Kind == KindInt
	bSigned := b.Kind == KindInt
	if aSigned != bSigned {
		if aSigned {
			bw++
		} else {
			aw++
		}
	}

	w := aw
	if bw > w {
		w = bw
	}
	w++

	if aSigned || bSigned {
		return Mk(KindInt, IntArg(w)), nil
	}
	return Mk(KindUint, IntArg(w)), nil
}

// LiteralType returns the type an integer literal is assigned:
// 0 -> Uint[1]; positive -> Uint[bitw(v)]; negative -> Int[bitw(-v)].
func LiteralType(v int) *Type {
	if v == 0 {
		return Mk(KindUint, IntArg(1))
	}
	if v > 0 {
		return Mk(KindUint, IntArg(Bitw(v)))
	}
	return Mk(KindInt, IntArg(Bitw(-v)))
}
