package types

import (
	"fmt"

	"github.com/blockberries/txcodec"
)

// TxBody is the signed content of a transaction.
type TxBody struct {
	Messages []txcodec.Msg
	Memo     string
	// TimeoutHeight is the block height after which the transaction is
	// no longer valid. 0 means unset.
	TimeoutHeight uint64
}

func (b TxBody) ToDocument() (txcodec.Document, error) {
	msgs, err := documentList(b.Messages, msgDocument)
	if err != nil {
		return nil, err
	}
	return txcodec.Document{
		"messages":       msgs,
		"memo":           b.Memo,
		"timeout_height": formatUint64(b.TimeoutHeight),
	}, nil
}

func msgDocument(m txcodec.Msg) (txcodec.Document, error) {
	if m == nil {
		return nil, txcodec.NewInvariantError("TxBody", "nil message")
	}
	return m.ToDocument()
}

func TxBodyFromDocument(u txcodec.Unpacker, doc txcodec.Document) (TxBody, error) {
	var b TxBody
	r := readDocument("TxBody", doc)
	r.docs("messages", true, func(_ int, d txcodec.Document) error {
		m, err := u.MsgFromDocument(d)
		if err != nil {
			return err
		}
		b.Messages = append(b.Messages, m)
		return nil
	})
	b.Memo = r.str("memo", false)
	b.TimeoutHeight = r.uint64("timeout_height", false)
	return b, r.Err()
}

func (b TxBody) ToWire() ([]byte, error) {
	var out []byte
	for _, m := range b.Messages {
		if m == nil {
			return nil, txcodec.NewInvariantError("TxBody", "nil message")
		}
		p, err := NewTypedPayload(m)
		if err != nil {
			return nil, err
		}
		bz, _ := p.ToWire()
		out = appendBytesElem(out, 1, bz)
	}
	out = appendStringField(out, 2, b.Memo)
	out = appendVarintField(out, 3, b.TimeoutHeight)
	return out, nil
}

func TxBodyFromWire(u txcodec.Unpacker, bz []byte) (TxBody, error) {
	var b TxBody
	r := newWireReader("TxBody", bz)
	for r.next() {
		switch r.field() {
		case 1:
			name := fmt.Sprintf("messages[%d]", len(b.Messages))
			p, err := TypedPayloadFromWire(r.bytes("messages"))
			if err != nil {
				r.fail(name, err)
				continue
			}
			m, err := u.UnpackMsg(p.TypeURL, p.Value)
			if err != nil {
				r.fail(name, err)
				continue
			}
			b.Messages = append(b.Messages, m)
		case 2:
			b.Memo = r.string("memo")
		case 3:
			b.TimeoutHeight = r.varint("timeout_height")
		default:
			r.skip()
		}
	}
	return b, r.Err()
}
