package types_test

import (
	"reflect"
	"testing"

	"github.com/blockberries/txcodec"
	"github.com/blockberries/txcodec/types"
)

func transferRecord() map[string]any {
	return map[string]any{
		"log": "",
		"events": []any{
			map[string]any{
				"type": "transfer",
				"attributes": []any{
					map[string]any{"key": "amount", "value": "10"},
					map[string]any{"key": "amount", "value": "20"},
				},
			},
		},
	}
}

func TestParseTxLogs_NilVersusEmpty(t *testing.T) {
	logs, err := types.ParseTxLogs(nil)
	if err != nil || logs != nil {
		t.Fatalf("ParseTxLogs(nil) = %v, %v; want nil, nil", logs, err)
	}
	logs, err = types.ParseTxLogs([]any{})
	if err != nil {
		t.Fatalf("ParseTxLogs([]): %v", err)
	}
	if logs == nil || len(logs) != 0 {
		t.Fatalf("ParseTxLogs([]) = %#v; want empty non-nil", logs)
	}
}

func TestParseTxLogs_EventsByType(t *testing.T) {
	logs, err := types.ParseTxLogs([]any{transferRecord()})
	if err != nil {
		t.Fatalf("ParseTxLogs: %v", err)
	}
	want := map[string]map[string][]string{
		"transfer": {"amount": {"10", "20"}},
	}
	if got := logs[0].EventsByType(); !reflect.DeepEqual(got, want) {
		t.Fatalf("EventsByType = %v, want %v", got, want)
	}
	if got := logs[0].Values("transfer", "amount"); !reflect.DeepEqual(got, []string{"10", "20"}) {
		t.Fatalf("Values = %v", got)
	}
	if got := logs[0].Values("message", "sender"); got != nil {
		t.Fatalf("Values of absent key = %v", got)
	}
}

func TestTxLog_EventsByTypeIsACopy(t *testing.T) {
	l := types.NewTxLog(0, "", []types.StringEvent{{
		Type:       "message",
		Attributes: []types.Attribute{{Key: "sender", Value: "terra1a"}},
	}})
	idx := l.EventsByType()
	idx["message"]["sender"][0] = "mutated"
	delete(idx, "message")
	if got := l.Values("message", "sender"); !reflect.DeepEqual(got, []string{"terra1a"}) {
		t.Fatalf("index changed through copy: %v", got)
	}
	events := l.Events()
	events[0].Attributes[0].Value = "mutated"
	if l.Events()[0].Attributes[0].Value != "terra1a" {
		t.Fatal("events changed through copy")
	}
}

func TestTxLog_MultipleEventsSameType(t *testing.T) {
	l := types.NewTxLog(0, "", []types.StringEvent{
		{Type: "transfer", Attributes: []types.Attribute{{Key: "recipient", Value: "a"}}},
		{Type: "message", Attributes: []types.Attribute{{Key: "action", Value: "send"}}},
		{Type: "transfer", Attributes: []types.Attribute{{Key: "recipient", Value: "b"}}},
		{Type: "empty"},
	})
	if got := l.Values("transfer", "recipient"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Values = %v", got)
	}
	if got := l.EventTypes(); !reflect.DeepEqual(got, []string{"message", "transfer"}) {
		t.Fatalf("EventTypes = %v", got)
	}
}

func TestParseTxLogs_PositionalIndex(t *testing.T) {
	rec := transferRecord()
	rec["msg_index"] = 7
	logs, err := types.ParseTxLogs([]any{map[string]any{}, rec})
	if err != nil {
		t.Fatalf("ParseTxLogs: %v", err)
	}
	for i, l := range logs {
		if l.MsgIndex() != uint32(i) {
			t.Fatalf("logs[%d].MsgIndex() = %d", i, l.MsgIndex())
		}
	}
}

func TestParseTxLogs_SkipsMalformedRecords(t *testing.T) {
	bad := map[string]any{
		"events": []any{map[string]any{"attributes": []any{}}},
	}
	logs, err := types.ParseTxLogs([]any{
		transferRecord(),
		"not a record",
		bad,
		map[string]any{"log": "failed to execute message", "events": []any{}},
	})
	if err == nil {
		t.Fatal("expected an error for the malformed records")
	}
	if _, ok := txcodec.IsDecodeError(err); !ok {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("got %d logs, want 2", len(logs))
	}
	if logs[0].MsgIndex() != 0 || logs[1].MsgIndex() != 3 {
		t.Fatalf("msg indices = %d, %d", logs[0].MsgIndex(), logs[1].MsgIndex())
	}
	if logs[1].Log() != "failed to execute message" {
		t.Fatalf("Log = %q", logs[1].Log())
	}
}

func TestParseRawLog(t *testing.T) {
	logs, err := types.ParseRawLog(`[{"msg_index":0,"log":"","events":[{"type":"transfer","attributes":[{"key":"amount","value":"10uluna"}]}]}]`)
	if err != nil {
		t.Fatalf("ParseRawLog: %v", err)
	}
	if len(logs) != 1 || !reflect.DeepEqual(logs[0].Values("transfer", "amount"), []string{"10uluna"}) {
		t.Fatalf("unexpected logs %+v", logs)
	}

	logs, err = types.ParseRawLog("out of gas in location: WriteFlat; gasWanted: 100, gasUsed: 200")
	if err != nil || logs != nil {
		t.Fatalf("failure raw log = %v, %v; want nil, nil", logs, err)
	}

	logs, err = types.ParseRawLog("[]")
	if err != nil || logs == nil || len(logs) != 0 {
		t.Fatalf("empty raw log = %#v, %v", logs, err)
	}

	logs, err = types.ParseRawLog(`[{"msg_index":0,"log":"","events":[{"type":"transfer"`)
	de, ok := txcodec.IsDecodeError(err)
	if !ok || de.Field != "raw_log" {
		t.Fatalf("truncated raw log: expected raw_log DecodeError, got %v", err)
	}
	if logs != nil {
		t.Fatalf("truncated raw log yielded logs %+v", logs)
	}
}

func TestTxLog_RoundTrip(t *testing.T) {
	l := types.NewTxLog(2, "note", []types.StringEvent{
		{Type: "transfer", Attributes: []types.Attribute{{Key: "amount", Value: "1"}, {Key: "amount", Value: "2"}}},
		{Type: "message", Attributes: []types.Attribute{{Key: "module"}}},
	})
	doc, err := l.ToDocument()
	if err != nil {
		t.Fatalf("ToDocument: %v", err)
	}
	got, err := types.TxLogFromDocument(doc)
	if err != nil {
		t.Fatalf("TxLogFromDocument: %v", err)
	}
	if !reflect.DeepEqual(got, l) {
		t.Fatalf("document round-trip: got %+v, want %+v", got, l)
	}

	bz, err := l.ToWire()
	if err != nil {
		t.Fatalf("ToWire: %v", err)
	}
	got, err = types.TxLogFromWire(bz)
	if err != nil {
		t.Fatalf("TxLogFromWire: %v", err)
	}
	if !reflect.DeepEqual(got, l) {
		t.Fatalf("wire round-trip: got %+v, want %+v", got, l)
	}
}
