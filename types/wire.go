package types

import (
	"math"

	"github.com/blockberries/txcodec"
	"google.golang.org/protobuf/encoding/protowire"
)

// Append helpers for the protobuf wire format. Scalars at their zero
// value are omitted, as proto3 does; embedded messages and repeated
// elements are always written.

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// appendPresentVarint writes v even when zero. Used for optional
// scalars whose presence carries meaning.
func appendPresentVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarintField(b, num, 1)
}

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// appendPresentString writes s even when empty.
func appendPresentString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	return appendBytesElem(b, num, v)
}

// appendBytesElem writes one element of a repeated bytes field or an
// embedded message; it is written even when v is empty.
func appendBytesElem(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// cloneBytes copies b so decoded values never alias the input buffer.
// Empty input yields nil, which keeps round trips comparable.
func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return append([]byte(nil), b...)
}

// wireReader walks the fields of one wire message. The first error is
// sticky: once set, every accessor returns a zero value and next
// returns false.
type wireReader struct {
	msg string
	buf []byte
	num protowire.Number
	typ protowire.Type
	err error
}

func newWireReader(msg string, bz []byte) *wireReader {
	return &wireReader{msg: msg, buf: bz}
}

// next advances to the next field tag. It returns false at the end of
// input or after an error.
func (r *wireReader) next() bool {
	if r.err != nil || len(r.buf) == 0 {
		return false
	}
	num, typ, n := protowire.ConsumeTag(r.buf)
	if n < 0 {
		r.err = &txcodec.DecodeError{Field: r.msg, Reason: "invalid field tag", Err: protowire.ParseError(n)}
		return false
	}
	r.buf = r.buf[n:]
	r.num, r.typ = num, typ
	return true
}

func (r *wireReader) field() protowire.Number { return r.num }

func (r *wireReader) expect(name string, typ protowire.Type) bool {
	if r.err != nil {
		return false
	}
	if r.typ != typ {
		r.err = txcodec.NewDecodeError(r.msg+"."+name, "unexpected wire type")
		return false
	}
	return true
}

func (r *wireReader) bytes(name string) []byte {
	if !r.expect(name, protowire.BytesType) {
		return nil
	}
	v, n := protowire.ConsumeBytes(r.buf)
	if n < 0 {
		r.err = &txcodec.DecodeError{Field: r.msg + "." + name, Reason: "truncated", Err: protowire.ParseError(n)}
		return nil
	}
	r.buf = r.buf[n:]
	return v
}

func (r *wireReader) string(name string) string {
	return string(r.bytes(name))
}

func (r *wireReader) varint(name string) uint64 {
	if !r.expect(name, protowire.VarintType) {
		return 0
	}
	v, n := protowire.ConsumeVarint(r.buf)
	if n < 0 {
		r.err = &txcodec.DecodeError{Field: r.msg + "." + name, Reason: "truncated", Err: protowire.ParseError(n)}
		return 0
	}
	r.buf = r.buf[n:]
	return v
}

func (r *wireReader) uint32(name string) uint32 {
	v := r.varint(name)
	if v > math.MaxUint32 {
		if r.err == nil {
			r.err = txcodec.NewDecodeError(r.msg+"."+name, "overflows uint32")
		}
		return 0
	}
	return uint32(v)
}

func (r *wireReader) bool(name string) bool {
	return r.varint(name) != 0
}

// skip discards the value of an unknown field.
func (r *wireReader) skip() {
	if r.err != nil {
		return
	}
	n := protowire.ConsumeFieldValue(r.num, r.typ, r.buf)
	if n < 0 {
		r.err = &txcodec.DecodeError{Field: r.msg, Reason: "malformed unknown field", Err: protowire.ParseError(n)}
		return
	}
	r.buf = r.buf[n:]
}

// fail records an error from decoding a nested value of field name.
// The nested error stays reachable through errors.As.
func (r *wireReader) fail(name string, err error) {
	if r.err != nil || err == nil {
		return
	}
	r.err = &txcodec.DecodeError{Field: r.msg + "." + name, Reason: "invalid", Err: err}
}

func (r *wireReader) Err() error { return r.err }
