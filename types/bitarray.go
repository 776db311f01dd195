package types

import (
	"strings"

	"github.com/blockberries/txcodec"
)

// CompactBitArray is a fixed-length bit vector used to mark which keys
// of a multisig signed. Bit i lives in Elems[i/8] at mask 1<<(7-i%8).
type CompactBitArray struct {
	ExtraBitsStored uint32
	Elems           []byte
}

// NewCompactBitArray returns an all-false array of n bits. A positive
// multiple of 8 stores 8 extra bits, marking the final byte full; n <= 0
// yields the empty array.
func NewCompactBitArray(n int) CompactBitArray {
	if n <= 0 {
		return CompactBitArray{}
	}
	extra := uint32(n % 8)
	if extra == 0 {
		extra = 8
	}
	return CompactBitArray{
		ExtraBitsStored: extra,
		Elems:           make([]byte, (n+7)/8),
	}
}

// Count returns the number of bits. A stored extra count of 0 (emitted
// by other encoders for multiples of 8) is read as a full final byte.
func (a CompactBitArray) Count() int {
	if len(a.Elems) == 0 {
		return 0
	}
	extra := int(a.ExtraBitsStored)
	if extra == 0 || extra > 8 {
		extra = 8
	}
	return (len(a.Elems)-1)*8 + extra
}

// GetIndex reports bit i. Out-of-range indices read as false.
func (a CompactBitArray) GetIndex(i int) bool {
	if i < 0 || i >= a.Count() {
		return false
	}
	return a.Elems[i/8]&(1<<(7-uint(i%8))) != 0
}

// With returns a copy with bit i set to v. Out-of-range indices leave
// the copy unchanged.
func (a CompactBitArray) With(i int, v bool) CompactBitArray {
	out := CompactBitArray{ExtraBitsStored: a.ExtraBitsStored, Elems: append([]byte(nil), a.Elems...)}
	if i < 0 || i >= a.Count() {
		return out
	}
	mask := byte(1) << (7 - uint(i%8))
	if v {
		out.Elems[i/8] |= mask
	} else {
		out.Elems[i/8] &^= mask
	}
	return out
}

// NumTrueBitsBefore counts the set bits at positions below i. It maps a
// key's index to its position in the multisig's signature list.
func (a CompactBitArray) NumTrueBitsBefore(i int) int {
	n := 0
	for j := 0; j < i && j < a.Count(); j++ {
		if a.GetIndex(j) {
			n++
		}
	}
	return n
}

// String renders the bits as x and _, e.g. "x_x".
func (a CompactBitArray) String() string {
	var sb strings.Builder
	for i := 0; i < a.Count(); i++ {
		if a.GetIndex(i) {
			sb.WriteByte('x')
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func (a CompactBitArray) ToDocument() (txcodec.Document, error) {
	return txcodec.Document{
		"extra_bits_stored": int64(a.ExtraBitsStored),
		"elems":             encodeBytes(a.Elems),
	}, nil
}

func CompactBitArrayFromDocument(doc txcodec.Document) (CompactBitArray, error) {
	r := readDocument("CompactBitArray", doc)
	a := CompactBitArray{
		ExtraBitsStored: r.uint32("extra_bits_stored", true),
		Elems:           r.bytes("elems", false),
	}
	return a, r.Err()
}

func (a CompactBitArray) ToWire() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, uint64(a.ExtraBitsStored))
	b = appendBytesField(b, 2, a.Elems)
	return b, nil
}

func CompactBitArrayFromWire(bz []byte) (CompactBitArray, error) {
	var a CompactBitArray
	r := newWireReader("CompactBitArray", bz)
	for r.next() {
		switch r.field() {
		case 1:
			a.ExtraBitsStored = r.uint32("extra_bits_stored")
		case 2:
			a.Elems = cloneBytes(r.bytes("elems"))
		default:
			r.skip()
		}
	}
	return a, r.Err()
}
