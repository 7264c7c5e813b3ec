package runtime

import "testing"

func TestEncodeDecodeWireRoundTrips(t *testing.T) {
	data := EncodeWire(6, []uint32{42})
	bw, value, err := DecodeWire(data)
	if err != nil {
		t.Fatal(err)
	}
	if bw != 6 {
		t.Fatalf("want bitwidth 6, got %d", bw)
	}
	if len(value) != 1 || value[0] != 42 {
		t.Fatalf("want [42], got %v", value)
	}
}

func TestWordsForBitwidth(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 32: 1, 33: 2, 64: 2}
	for bw, want := range cases {
		if got := WordsForBitwidth(bw); got != want {
			t.Fatalf("WordsForBitwidth(%d) = %d, want %d", bw, got, want)
		}
	}
}

func TestNextStateRoundTrip(t *testing.T) {
	if nextState(0, 1) != 0 {
		t.Fatalf("single-state program should stay at 0")
	}
	if nextState(0, 3) != 1 {
		t.Fatalf("state 0 should advance to 1 with more than one state")
	}
	if nextState(2, 3) != 0 {
		t.Fatalf("non-zero state should return to 0")
	}
}
