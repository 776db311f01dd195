package types_test

import (
	"bytes"
	"testing"

	"github.com/blockberries/txcodec/types"
)

func TestNewCompactBitArray(t *testing.T) {
	tests := []struct {
		bits      int
		wantExtra uint32
		wantBytes int
	}{
		{bits: 1, wantExtra: 1, wantBytes: 1},
		{bits: 8, wantExtra: 8, wantBytes: 1},
		{bits: 9, wantExtra: 1, wantBytes: 2},
		{bits: 16, wantExtra: 8, wantBytes: 2},
		{bits: 17, wantExtra: 1, wantBytes: 3},
		{bits: 0, wantExtra: 0, wantBytes: 0},
		{bits: -3, wantExtra: 0, wantBytes: 0},
	}
	for _, tt := range tests {
		a := types.NewCompactBitArray(tt.bits)
		if a.ExtraBitsStored != tt.wantExtra {
			t.Fatalf("NewCompactBitArray(%d).ExtraBitsStored = %d, want %d", tt.bits, a.ExtraBitsStored, tt.wantExtra)
		}
		if len(a.Elems) != tt.wantBytes {
			t.Fatalf("NewCompactBitArray(%d) has %d bytes, want %d", tt.bits, len(a.Elems), tt.wantBytes)
		}
		if !bytes.Equal(a.Elems, make([]byte, tt.wantBytes)) {
			t.Fatalf("NewCompactBitArray(%d) not all zero: %x", tt.bits, a.Elems)
		}
		want := tt.bits
		if want < 0 {
			want = 0
		}
		if a.Count() != want {
			t.Fatalf("NewCompactBitArray(%d).Count() = %d", tt.bits, a.Count())
		}
	}
}

func TestCompactBitArray_CountZeroExtra(t *testing.T) {
	// Other encoders store 0 for a full final byte.
	a := types.CompactBitArray{ExtraBitsStored: 0, Elems: []byte{0, 0}}
	if a.Count() != 16 {
		t.Fatalf("Count = %d, want 16", a.Count())
	}
}

func TestCompactBitArray_With(t *testing.T) {
	a := types.NewCompactBitArray(10)
	b := a.With(0, true).With(9, true).With(3, true).With(3, false)

	if a.GetIndex(0) {
		t.Fatal("With mutated the receiver")
	}
	if !b.GetIndex(0) || !b.GetIndex(9) || b.GetIndex(3) {
		t.Fatalf("unexpected bits %s", b)
	}
	if b.Elems[0] != 0x80 || b.Elems[1] != 0x40 {
		t.Fatalf("bit layout = %x, want 8040", b.Elems)
	}
	if got := b.String(); got != "x________x" {
		t.Fatalf("String = %q", got)
	}
	if got := b.NumTrueBitsBefore(9); got != 1 {
		t.Fatalf("NumTrueBitsBefore(9) = %d, want 1", got)
	}
	if b.GetIndex(10) || b.GetIndex(-1) {
		t.Fatal("out-of-range index read as set")
	}
	if c := b.With(42, true); c.String() != b.String() {
		t.Fatal("out-of-range With changed bits")
	}
}

func TestCompactBitArray_RoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 8, 9, 17} {
		a := types.NewCompactBitArray(n)
		if n > 0 {
			a = a.With(n-1, true)
		}
		doc, err := a.ToDocument()
		if err != nil {
			t.Fatalf("ToDocument: %v", err)
		}
		got, err := types.CompactBitArrayFromDocument(doc)
		if err != nil {
			t.Fatalf("CompactBitArrayFromDocument: %v", err)
		}
		if got.ExtraBitsStored != a.ExtraBitsStored || !bytes.Equal(got.Elems, a.Elems) {
			t.Fatalf("document round-trip(%d): got %+v, want %+v", n, got, a)
		}

		bz, err := a.ToWire()
		if err != nil {
			t.Fatalf("ToWire: %v", err)
		}
		got, err = types.CompactBitArrayFromWire(bz)
		if err != nil {
			t.Fatalf("CompactBitArrayFromWire: %v", err)
		}
		if got.ExtraBitsStored != a.ExtraBitsStored || !bytes.Equal(got.Elems, a.Elems) {
			t.Fatalf("wire round-trip(%d): got %+v, want %+v", n, got, a)
		}
	}
}

func TestCompactBitArray_WireGolden(t *testing.T) {
	bz, err := types.NewCompactBitArray(9).ToWire()
	if err != nil {
		t.Fatalf("ToWire: %v", err)
	}
	want := []byte{0x08, 0x01, 0x12, 0x02, 0x00, 0x00}
	if !bytes.Equal(bz, want) {
		t.Fatalf("wire = %x, want %x", bz, want)
	}
}
