package bank

import (
	"github.com/blockberries/txcodec"
	"github.com/blockberries/txcodec/types"
	"google.golang.org/protobuf/encoding/protowire"
)

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendCoins(b []byte, num protowire.Number, coins types.Coins) ([]byte, error) {
	for _, c := range coins {
		bz, err := c.ToWire()
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, num, bz)
	}
	return b, nil
}

// walkFields calls fn with the payload of every length-delimited field
// of msg. Bank messages hold only strings and embedded messages, so any
// other wire type is skipped.
func walkFields(msg string, bz []byte, fn func(num protowire.Number, v []byte) error) error {
	for len(bz) > 0 {
		num, typ, n := protowire.ConsumeTag(bz)
		if n < 0 {
			return &txcodec.DecodeError{Field: msg, Reason: "invalid field tag", Err: protowire.ParseError(n)}
		}
		bz = bz[n:]
		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, bz)
			if n < 0 {
				return &txcodec.DecodeError{Field: msg, Reason: "malformed unknown field", Err: protowire.ParseError(n)}
			}
			bz = bz[n:]
			continue
		}
		v, n := protowire.ConsumeBytes(bz)
		if n < 0 {
			return &txcodec.DecodeError{Field: msg, Reason: "truncated", Err: protowire.ParseError(n)}
		}
		bz = bz[n:]
		if err := fn(num, v); err != nil {
			return &txcodec.DecodeError{Field: msg, Reason: "invalid", Err: err}
		}
	}
	return nil
}
