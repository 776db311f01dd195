package types

import (
	"fmt"

	"github.com/blockberries/txcodec"
)

// TypedPayload is a type-erased payload: the registered type URL of a
// variant plus that variant's own wire encoding. On the wire it is a
// google.protobuf.Any.
type TypedPayload struct {
	TypeURL string
	Value   []byte
}

// NewTypedPayload wraps v without consulting a registry. Use
// Registry.Pack to also reject unregistered variants.
func NewTypedPayload(v txcodec.Packable) (TypedPayload, error) {
	if v == nil {
		return TypedPayload{}, txcodec.NewInvariantError("TypedPayload", "nil value")
	}
	bz, err := v.ToWire()
	if err != nil {
		return TypedPayload{}, fmt.Errorf("pack %s: %w", v.TypeURL(), err)
	}
	return TypedPayload{TypeURL: v.TypeURL(), Value: cloneBytes(bz)}, nil
}

func (p TypedPayload) ToWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, p.TypeURL)
	b = appendBytesField(b, 2, p.Value)
	return b, nil
}

// TypedPayloadFromWire decodes a google.protobuf.Any.
func TypedPayloadFromWire(bz []byte) (TypedPayload, error) {
	var p TypedPayload
	r := newWireReader("Any", bz)
	for r.next() {
		switch r.field() {
		case 1:
			p.TypeURL = r.string("type_url")
		case 2:
			p.Value = cloneBytes(r.bytes("value"))
		default:
			r.skip()
		}
	}
	return p, r.Err()
}

// ToDocument renders the payload opaquely, for display of values whose
// type is not registered.
func (p TypedPayload) ToDocument() (txcodec.Document, error) {
	return txcodec.Document{
		"type_url": p.TypeURL,
		"value":    encodeBytes(p.Value),
	}, nil
}

// TypedPayloadFromDocument is the inverse of TypedPayload.ToDocument.
func TypedPayloadFromDocument(doc txcodec.Document) (TypedPayload, error) {
	r := readDocument("Any", doc)
	p := TypedPayload{
		TypeURL: r.str("type_url", true),
		Value:   r.bytes("value", false),
	}
	return p, r.Err()
}
