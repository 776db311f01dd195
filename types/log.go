package types

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/blockberries/txcodec"
	jsoniter "github.com/json-iterator/go"
)

// Attribute is one key-value pair of a logged event.
type Attribute struct {
	Key   string
	Value string
}

// StringEvent is one event of a message log, with attributes in
// emission order.
type StringEvent struct {
	Type       string
	Attributes []Attribute
}

// TxLog is the execution log of one message of a transaction.
// EventsByType is derived from Events when the log is built and cannot
// be set independently.
type TxLog struct {
	msgIndex     uint32
	log          string
	events       []StringEvent
	eventsByType map[string]map[string][]string
}

// NewTxLog builds a log and indexes its events by type and attribute
// key. Repeated keys accumulate their values in order.
func NewTxLog(msgIndex uint32, log string, events []StringEvent) TxLog {
	l := TxLog{
		msgIndex:     msgIndex,
		log:          log,
		eventsByType: make(map[string]map[string][]string),
	}
	for _, ev := range events {
		l.events = append(l.events, StringEvent{Type: ev.Type, Attributes: slices.Clone(ev.Attributes)})
		for _, attr := range ev.Attributes {
			byKey, ok := l.eventsByType[ev.Type]
			if !ok {
				byKey = make(map[string][]string)
				l.eventsByType[ev.Type] = byKey
			}
			byKey[attr.Key] = append(byKey[attr.Key], attr.Value)
		}
	}
	return l
}

// MsgIndex is the position of the message within its transaction.
func (l TxLog) MsgIndex() uint32 { return l.msgIndex }

// Log holds the message's error detail, if any.
func (l TxLog) Log() string { return l.log }

// Events returns a copy of the raw events.
func (l TxLog) Events() []StringEvent {
	out := make([]StringEvent, len(l.events))
	for i, ev := range l.events {
		out[i] = StringEvent{Type: ev.Type, Attributes: slices.Clone(ev.Attributes)}
	}
	return out
}

// EventsByType returns a copy of the type → key → values index.
func (l TxLog) EventsByType() map[string]map[string][]string {
	out := make(map[string]map[string][]string, len(l.eventsByType))
	for typ, byKey := range l.eventsByType {
		c := make(map[string][]string, len(byKey))
		for k, vs := range byKey {
			c[k] = slices.Clone(vs)
		}
		out[typ] = c
	}
	return out
}

// Values returns the values logged for key under events of type
// eventType, in order.
func (l TxLog) Values(eventType, key string) []string {
	return slices.Clone(l.eventsByType[eventType][key])
}

// EventTypes returns the indexed event types in sorted order.
func (l TxLog) EventTypes() []string {
	return slices.Sorted(maps.Keys(l.eventsByType))
}

func (a Attribute) ToDocument() (txcodec.Document, error) {
	return txcodec.Document{"key": a.Key, "value": a.Value}, nil
}

func AttributeFromDocument(doc txcodec.Document) (Attribute, error) {
	r := readDocument("Attribute", doc)
	a := Attribute{
		Key:   r.str("key", true),
		Value: r.str("value", false),
	}
	return a, r.Err()
}

func (a Attribute) ToWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, a.Key)
	b = appendStringField(b, 2, a.Value)
	return b, nil
}

func AttributeFromWire(bz []byte) (Attribute, error) {
	var a Attribute
	r := newWireReader("Attribute", bz)
	for r.next() {
		switch r.field() {
		case 1:
			a.Key = r.string("key")
		case 2:
			a.Value = r.string("value")
		default:
			r.skip()
		}
	}
	return a, r.Err()
}

func (e StringEvent) ToDocument() (txcodec.Document, error) {
	attrs, err := documentList(e.Attributes, Attribute.ToDocument)
	if err != nil {
		return nil, err
	}
	return txcodec.Document{"type": e.Type, "attributes": attrs}, nil
}

func StringEventFromDocument(doc txcodec.Document) (StringEvent, error) {
	var e StringEvent
	r := readDocument("StringEvent", doc)
	e.Type = r.str("type", true)
	r.docs("attributes", false, func(_ int, d txcodec.Document) error {
		a, err := AttributeFromDocument(d)
		if err != nil {
			return err
		}
		e.Attributes = append(e.Attributes, a)
		return nil
	})
	return e, r.Err()
}

func (e StringEvent) ToWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, e.Type)
	for _, a := range e.Attributes {
		bz, _ := a.ToWire()
		b = appendBytesElem(b, 2, bz)
	}
	return b, nil
}

func StringEventFromWire(bz []byte) (StringEvent, error) {
	var e StringEvent
	r := newWireReader("StringEvent", bz)
	for r.next() {
		switch r.field() {
		case 1:
			e.Type = r.string("type")
		case 2:
			a, err := AttributeFromWire(r.bytes("attributes"))
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

func (l TxLog) ToDocument() (txcodec.Document, error) {
	events, err := documentList(l.events, StringEvent.ToDocument)
	if err != nil {
		return nil, err
	}
	return txcodec.Document{
		"msg_index": int64(l.msgIndex),
		"log":       l.log,
		"events":    events,
	}, nil
}

// TxLogFromDocument decodes a log document, taking msg_index from the
// document. ParseTxLogs assigns indices by position instead.
func TxLogFromDocument(doc txcodec.Document) (TxLog, error) {
	r := readDocument("TxLog", doc)
	msgIndex := r.uint32("msg_index", false)
	log, events := readLogRecord(r)
	if err := r.Err(); err != nil {
		return TxLog{}, err
	}
	return NewTxLog(msgIndex, log, events), nil
}

func readLogRecord(r *docReader) (string, []StringEvent) {
	log := r.str("log", false)
	var events []StringEvent
	r.docs("events", false, func(_ int, d txcodec.Document) error {
		e, err := StringEventFromDocument(d)
		if err != nil {
			return err
		}
		events = append(events, e)
		return nil
	})
	return log, events
}

func (l TxLog) ToWire() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, uint64(l.msgIndex))
	b = appendStringField(b, 2, l.log)
	for _, e := range l.events {
		bz, _ := e.ToWire()
		b = appendBytesElem(b, 3, bz)
	}
	return b, nil
}

// TxLogFromWire decodes a cosmos.base.abci.v1beta1.ABCIMessageLog.
func TxLogFromWire(bz []byte) (TxLog, error) {
	var (
		msgIndex uint32
		log      string
		events   []StringEvent
	)
	r := newWireReader("ABCIMessageLog", bz)
	for r.next() {
		switch r.field() {
		case 1:
			msgIndex = r.uint32("msg_index")
		case 2:
			log = r.string("log")
		case 3:
			e, err := StringEventFromWire(r.bytes("events"))
			if err != nil {
				r.fail(fmt.Sprintf("events[%d]", len(events)), err)
				continue
			}
			events = append(events, e)
		default:
			r.skip()
		}
	}
	if err := r.Err(); err != nil {
		return TxLog{}, err
	}
	return NewTxLog(msgIndex, log, events), nil
}

// ParseTxLogs builds one TxLog per raw record, with the record's
// position as its message index.
//
// A nil input means the transaction produced no logs and yields nil; an
// empty input yields an empty, non-nil slice. A malformed record is
// skipped and the remaining records are still parsed; the returned
// error joins the failure of every skipped record.
func ParseTxLogs(raw []any) ([]TxLog, error) {
	return parseTxLogs(raw, false)
}

// parseTxLogs is ParseTxLogs; with storedIndex set, a record's own
// msg_index wins over its position.
func parseTxLogs(raw []any, storedIndex bool) ([]TxLog, error) {
	if raw == nil {
		return nil, nil
	}
	logs := make([]TxLog, 0, len(raw))
	var errs []error
	for i, rec := range raw {
		field := fmt.Sprintf("logs[%d]", i)
		doc, ok := asDocument(rec)
		if !ok {
			errs = append(errs, txcodec.NewDecodeError(field, "not an object"))
			continue
		}
		r := readDocument(field, doc)
		msgIndex := uint32(i)
		if v, ok := doc["msg_index"]; ok && v != nil && storedIndex {
			msgIndex = r.uint32("msg_index", false)
		}
		log, events := readLogRecord(r)
		if err := r.Err(); err != nil {
			errs = append(errs, err)
			continue
		}
		logs = append(logs, NewTxLog(msgIndex, log, events))
	}
	return logs, errors.Join(errs...)
}

// ParseRawLog parses the raw_log string the chain reports. A failed
// transaction's raw_log is a plain error message, not JSON; it yields no
// logs and no error. A raw_log that opens a JSON array but does not
// parse is a DecodeError.
func ParseRawLog(rawLog string) ([]TxLog, error) {
	trimmed := strings.TrimSpace(rawLog)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, nil
	}
	var raw []any
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(trimmed, &raw); err != nil {
		return nil, &txcodec.DecodeError{Field: "raw_log", Reason: "invalid json", Err: err}
	}
	if raw == nil {
		raw = []any{}
	}
	return ParseTxLogs(raw)
}
