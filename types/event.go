package types

import (
	"fmt"

	"github.com/blockberries/txcodec"
)

// EventAttribute is a single key-value tag within an event.
type EventAttribute struct {
	Key   string
	Value string
	Index bool // Whether indexers should pick this up.
}

// Event is an application-emitted event, as reported in TxResponse.events.
type Event struct {
	Type       string
	Attributes []EventAttribute
}

func (a EventAttribute) ToDocument() (txcodec.Document, error) {
	return txcodec.Document{"key": a.Key, "value": a.Value, "index": a.Index}, nil
}

func EventAttributeFromDocument(doc txcodec.Document) (EventAttribute, error) {
	r := readDocument("EventAttribute", doc)
	a := EventAttribute{
		Key:   r.str("key", true),
		Value: r.str("value", false),
		Index: r.bool("index"),
	}
	return a, r.Err()
}

func (a EventAttribute) ToWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, a.Key)
	b = appendStringField(b, 2, a.Value)
	b = appendBoolField(b, 3, a.Index)
	return b, nil
}

func EventAttributeFromWire(bz []byte) (EventAttribute, error) {
	var a EventAttribute
	r := newWireReader("EventAttribute", bz)
	for r.next() {
		switch r.field() {
		case 1:
			a.Key = r.string("key")
		case 2:
			a.Value = r.string("value")
		case 3:
			a.Index = r.bool("index")
		default:
			r.skip()
		}
	}
	return a, r.Err()
}

func (e Event) ToDocument() (txcodec.Document, error) {
	attrs, err := documentList(e.Attributes, EventAttribute.ToDocument)
	if err != nil {
		return nil, err
	}
	return txcodec.Document{"type": e.Type, "attributes": attrs}, nil
}

func EventFromDocument(doc txcodec.Document) (Event, error) {
	var e Event
	r := readDocument("Event", doc)
	e.Type = r.str("type", true)
	r.docs("attributes", false, func(_ int, d txcodec.Document) error {
		a, err := EventAttributeFromDocument(d)
		if err != nil {
			return err
		}
		e.Attributes = append(e.Attributes, a)
		return nil
	})
	return e, r.Err()
}

func (e Event) ToWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, e.Type)
	for _, a := range e.Attributes {
		bz, _ := a.ToWire()
		b = appendBytesElem(b, 2, bz)
	}
	return b, nil
}

// EventFromWire decodes a tendermint.abci.Event.
func EventFromWire(bz []byte) (Event, error) {
	var e Event
	r := newWireReader("Event", bz)
	for r.next() {
		switch r.field() {
		case 1:
			e.Type = r.string("type")
		case 2:
			a, err := EventAttributeFromWire(r.bytes("attributes"))
			if err != nil {
				r.fail(fmt.Sprintf("attributes[%d]", len(e.Attributes)), err)
				continue
			}
			e.Attributes = append(e.Attributes, a)
		default:
			r.skip()
		}
	}
	return e, r.Err()
}
