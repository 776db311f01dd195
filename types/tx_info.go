package types

import (
	"fmt"

	"github.com/blockberries/txcodec"
)

// TxInfo is a transaction included in a block, together with its
// execution result.
type TxInfo struct {
	Height int64
	TxHash string
	RawLog string
	// Logs is nil when the transaction produced no logs, as when it
	// failed before execution.
	Logs      []TxLog
	GasWanted int64
	GasUsed   int64
	Tx        Tx
	Timestamp string
	// Code and Codespace are set when the transaction failed at
	// execution.
	Code      *uint32
	Codespace *string
	Data      string
	Info      string
	Events    []Event
}

// Failed reports whether the transaction failed at execution.
func (t TxInfo) Failed() bool { return t.Code != nil && *t.Code != 0 }

func (t TxInfo) ToDocument() (txcodec.Document, error) {
	tx, err := t.Tx.ToDocument()
	if err != nil {
		return nil, err
	}
	tx["@type"] = TxTypeURL
	doc := txcodec.Document{
		"height":     formatInt64(t.Height),
		"txhash":     t.TxHash,
		"raw_log":    t.RawLog,
		"gas_wanted": formatInt64(t.GasWanted),
		"gas_used":   formatInt64(t.GasUsed),
		"tx":         tx,
		"timestamp":  t.Timestamp,
	}
	if t.Logs != nil {
		logs, err := documentList(t.Logs, TxLog.ToDocument)
		if err != nil {
			return nil, err
		}
		doc["logs"] = logs
	}
	if t.Code != nil {
		doc["code"] = int64(*t.Code)
	}
	if t.Codespace != nil {
		doc["codespace"] = *t.Codespace
	}
	if t.Data != "" {
		doc["data"] = t.Data
	}
	if t.Info != "" {
		doc["info"] = t.Info
	}
	if len(t.Events) > 0 {
		events, err := documentList(t.Events, Event.ToDocument)
		if err != nil {
			return nil, err
		}
		doc["events"] = events
	}
	return doc, nil
}

// TxInfoFromDocument decodes a tx response document. Logs are read like
// ParseTxLogs, except that a record's msg_index is kept when present: if
// some log records are malformed, the returned TxInfo holds the others
// and the error is a DecodeError for TxInfo.logs.
func TxInfoFromDocument(u txcodec.Unpacker, doc txcodec.Document) (TxInfo, error) {
	var t TxInfo
	r := readDocument("TxInfo", doc)
	t.Height = r.int64("height", true)
	t.TxHash = r.str("txhash", true)
	t.RawLog = r.str("raw_log", true)
	t.GasWanted = r.int64("gas_wanted", true)
	t.GasUsed = r.int64("gas_used", true)
	if tx, ok := r.sub("tx", true); ok {
		v, err := TxFromDocument(u, tx)
		r.fail("tx", err)
		t.Tx = v
	}
	t.Timestamp = r.str("timestamp", true)
	if _, ok := r.lookup("code", false); ok {
		code := r.uint32("code", false)
		t.Code = &code
	}
	if _, ok := r.lookup("codespace", false); ok {
		codespace := r.str("codespace", false)
		t.Codespace = &codespace
	}
	t.Data = r.str("data", false)
	t.Info = r.str("info", false)
	r.docs("events", false, func(_ int, d txcodec.Document) error {
		e, err := EventFromDocument(d)
		if err != nil {
			return err
		}
		t.Events = append(t.Events, e)
		return nil
	})
	if err := r.Err(); err != nil {
		return TxInfo{}, err
	}

	raw, ok := r.list("logs", false)
	if err := r.Err(); err != nil {
		return TxInfo{}, err
	}
	if ok {
		logs, err := parseTxLogs(raw, true)
		t.Logs = logs
		if err != nil {
			return t, &txcodec.DecodeError{Field: "TxInfo.logs", Reason: "malformed records skipped", Err: err}
		}
	}
	return t, nil
}

func (t TxInfo) ToWire() ([]byte, error) {
	tx, err := t.Tx.ToWire()
	if err != nil {
		return nil, err
	}
	txAny, _ := TypedPayload{TypeURL: TxTypeURL, Value: tx}.ToWire()

	var b []byte
	b = appendVarintField(b, 1, uint64(t.Height))
	b = appendStringField(b, 2, t.TxHash)
	if t.Codespace != nil {
		b = appendPresentString(b, 3, *t.Codespace)
	}
	if t.Code != nil {
		b = appendPresentVarint(b, 4, uint64(*t.Code))
	}
	b = appendStringField(b, 5, t.Data)
	b = appendStringField(b, 6, t.RawLog)
	for _, l := range t.Logs {
		bz, _ := l.ToWire()
		b = appendBytesElem(b, 7, bz)
	}
	b = appendStringField(b, 8, t.Info)
	b = appendVarintField(b, 9, uint64(t.GasWanted))
	b = appendVarintField(b, 10, uint64(t.GasUsed))
	b = appendBytesElem(b, 11, txAny)
	b = appendStringField(b, 12, t.Timestamp)
	for _, e := range t.Events {
		bz, _ := e.ToWire()
		b = appendBytesElem(b, 13, bz)
	}
	return b, nil
}

// TxInfoFromWire decodes a cosmos.base.abci.v1beta1.TxResponse. An
// empty log list cannot be told apart from none on the wire and decodes
// as nil.
func TxInfoFromWire(u txcodec.Unpacker, bz []byte) (TxInfo, error) {
	var t TxInfo
	r := newWireReader("TxResponse", bz)
	for r.next() {
		switch r.field() {
		case 1:
			t.Height = int64(r.varint("height"))
		case 2:
			t.TxHash = r.string("txhash")
		case 3:
			codespace := r.string("codespace")
			t.Codespace = &codespace
		case 4:
			code := r.uint32("code")
			t.Code = &code
		case 5:
			t.Data = r.string("data")
		case 6:
			t.RawLog = r.string("raw_log")
		case 7:
			l, err := TxLogFromWire(r.bytes("logs"))
			if err != nil {
				r.fail(fmt.Sprintf("logs[%d]", len(t.Logs)), err)
				continue
			}
			t.Logs = append(t.Logs, l)
		case 8:
			t.Info = r.string("info")
		case 9:
			t.GasWanted = int64(r.varint("gas_wanted"))
		case 10:
			t.GasUsed = int64(r.varint("gas_used"))
		case 11:
			p, err := TypedPayloadFromWire(r.bytes("tx"))
			if err != nil {
				r.fail("tx", err)
				continue
			}
			if p.TypeURL != TxTypeURL {
				r.fail("tx", txcodec.NewUnrecognizedTypeError("Tx", p.TypeURL))
				continue
			}
			tx, err := TxFromWire(u, p.Value)
			r.fail("tx", err)
			t.Tx = tx
		case 12:
			t.Timestamp = r.string("timestamp")
		case 13:
			e, err := EventFromWire(r.bytes("events"))
			if err != nil {
				r.fail(fmt.Sprintf("events[%d]", len(t.Events)), err)
				continue
			}
			t.Events = append(t.Events, e)
		default:
			r.skip()
		}
	}
	return t, r.Err()
}
