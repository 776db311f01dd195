package types_test

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/blockberries/txcodec"
	"github.com/blockberries/txcodec/types"
)

func ptr[T any](v T) *T { return &v }

func sampleTxInfo() types.TxInfo {
	return types.TxInfo{
		Height: 7302141,
		TxHash: "0D5A1CB5BEB2B3AEC5E00C1C7D0D2B0DB0F21D9C3A28C0ED4D5A60B4B0E7C3F1",
		RawLog: `[{"events":[{"type":"transfer","attributes":[{"key":"amount","value":"100uluna"}]}]}]`,
		Logs: []types.TxLog{types.NewTxLog(0, "", []types.StringEvent{{
			Type:       "transfer",
			Attributes: []types.Attribute{{Key: "amount", Value: "100uluna"}},
		}})},
		GasWanted: 200000,
		GasUsed:   81234,
		Tx:        sampleTx(),
		Timestamp: "2022-05-01T12:00:00Z",
		Events: []types.Event{{
			Type:       "tx",
			Attributes: []types.EventAttribute{{Key: "fee", Value: "3000uluna", Index: true}},
		}},
	}
}

func TestTxInfo_DocumentOmitsAbsentFields(t *testing.T) {
	info := sampleTxInfo()
	info.Logs = nil
	info.Events = nil
	doc, err := info.ToDocument()
	if err != nil {
		t.Fatalf("ToDocument: %v", err)
	}
	for _, key := range []string{"logs", "code", "codespace", "data", "info", "events"} {
		if _, ok := doc[key]; ok {
			t.Fatalf("document has %q for a value that is absent", key)
		}
	}
	if doc["height"] != "7302141" || doc["gas_used"] != "81234" {
		t.Fatalf("64-bit fields not decimal strings: %v, %v", doc["height"], doc["gas_used"])
	}
	tx := doc["tx"].(txcodec.Document)
	if tx["@type"] != types.TxTypeURL {
		t.Fatalf("tx @type = %v", tx["@type"])
	}
}

func TestTxInfo_DocumentKeepsFailure(t *testing.T) {
	info := sampleTxInfo()
	info.Logs = nil
	info.Code = ptr(uint32(11))
	info.Codespace = ptr("sdk")
	if !info.Failed() {
		t.Fatal("Failed() = false for code 11")
	}
	doc, err := info.ToDocument()
	if err != nil {
		t.Fatalf("ToDocument: %v", err)
	}
	if doc["code"] != int64(11) || doc["codespace"] != "sdk" {
		t.Fatalf("code = %v, codespace = %v", doc["code"], doc["codespace"])
	}
	if _, ok := doc["logs"]; ok {
		t.Fatal("failed tx document has logs")
	}
}

func TestTxInfo_EmptyLogsKept(t *testing.T) {
	info := sampleTxInfo()
	info.Logs = []types.TxLog{}
	doc, err := info.ToDocument()
	if err != nil {
		t.Fatalf("ToDocument: %v", err)
	}
	logs, ok := doc["logs"].([]any)
	if !ok || len(logs) != 0 {
		t.Fatalf("logs = %#v; want empty list", doc["logs"])
	}
	got, err := types.TxInfoFromDocument(newRegistry(t), doc)
	if err != nil {
		t.Fatalf("TxInfoFromDocument: %v", err)
	}
	if got.Logs == nil || len(got.Logs) != 0 {
		t.Fatalf("decoded logs = %#v; want empty non-nil", got.Logs)
	}
}

func TestTxInfo_RoundTrip(t *testing.T) {
	reg := newRegistry(t)
	cases := map[string]func() types.TxInfo{
		"success": sampleTxInfo,
		"failed": func() types.TxInfo {
			info := sampleTxInfo()
			info.Logs = nil
			info.Code = ptr(uint32(5))
			info.Codespace = ptr("sdk")
			info.RawLog = "insufficient funds"
			return info
		},
		"zero code present": func() types.TxInfo {
			info := sampleTxInfo()
			info.Code = ptr(uint32(0))
			info.Codespace = ptr("")
			return info
		},
		"stored message index": func() types.TxInfo {
			info := sampleTxInfo()
			info.Logs = []types.TxLog{
				types.NewTxLog(0, "", nil),
				types.NewTxLog(3, "partial", []types.StringEvent{{
					Type:       "message",
					Attributes: []types.Attribute{{Key: "action", Value: "send"}},
				}}),
			}
			return info
		},
		"data and info": func() types.TxInfo {
			info := sampleTxInfo()
			info.Data = "0A1E0A1C2F636F736D6F732E62616E6B2E763162657461312E4D736753656E64"
			info.Info = "extra"
			return info
		},
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			info := build()
			doc, err := info.ToDocument()
			if err != nil {
				t.Fatalf("ToDocument: %v", err)
			}
			got, err := types.TxInfoFromDocument(reg, doc)
			if err != nil {
				t.Fatalf("TxInfoFromDocument: %v", err)
			}
			if !reflect.DeepEqual(got, info) {
				t.Fatalf("document round-trip:\n got %+v\nwant %+v", got, info)
			}

			bz, err := info.ToWire()
			if err != nil {
				t.Fatalf("ToWire: %v", err)
			}
			got, err = types.TxInfoFromWire(reg, bz)
			if err != nil {
				t.Fatalf("TxInfoFromWire: %v", err)
			}
			if !reflect.DeepEqual(got, info) {
				t.Fatalf("wire round-trip:\n got %+v\nwant %+v", got, info)
			}
		})
	}
}

func TestTxInfo_MalformedLogRecord(t *testing.T) {
	doc, err := sampleTxInfo().ToDocument()
	if err != nil {
		t.Fatalf("ToDocument: %v", err)
	}
	doc["logs"] = append(doc["logs"].([]any), 42)
	got, err := types.TxInfoFromDocument(newRegistry(t), doc)
	de, ok := txcodec.IsDecodeError(err)
	if !ok || de.Field != "TxInfo.logs" {
		t.Fatalf("expected TxInfo.logs DecodeError, got %v", err)
	}
	if len(got.Logs) != 1 || got.TxHash == "" {
		t.Fatalf("partial result = %+v", got)
	}
}

func TestTxInfo_LogsNotAList(t *testing.T) {
	doc, err := sampleTxInfo().ToDocument()
	if err != nil {
		t.Fatalf("ToDocument: %v", err)
	}
	doc["logs"] = "not a list"
	got, err := types.TxInfoFromDocument(newRegistry(t), doc)
	de, ok := txcodec.IsDecodeError(err)
	if !ok || de.Field != "TxInfo.logs" {
		t.Fatalf("expected TxInfo.logs DecodeError, got %v", err)
	}
	if !reflect.DeepEqual(got, types.TxInfo{}) {
		t.Fatalf("expected zero TxInfo, got %+v", got)
	}
}

func TestTxInfo_MissingRequired(t *testing.T) {
	doc, err := sampleTxInfo().ToDocument()
	if err != nil {
		t.Fatalf("ToDocument: %v", err)
	}
	delete(doc, "txhash")
	_, err = types.TxInfoFromDocument(newRegistry(t), doc)
	de, ok := txcodec.IsDecodeError(err)
	if !ok || de.Field != "TxInfo.txhash" || de.Reason != "missing" {
		t.Fatalf("expected missing txhash, got %v", err)
	}
}

func TestTxInfo_WrongTxType(t *testing.T) {
	info := sampleTxInfo()
	bz, err := info.ToWire()
	if err != nil {
		t.Fatalf("ToWire: %v", err)
	}
	// Swap the packed tx type URL for another one of the same length.
	i := bytes.Index(bz, []byte(types.TxTypeURL))
	if i < 0 {
		t.Fatal("tx type URL not found in encoding")
	}
	copy(bz[i:], "/cosmos.tx.v1beta1.Xx")
	_, err = types.TxInfoFromWire(newRegistry(t), bz)
	if _, ok := txcodec.IsUnrecognizedType(err); !ok {
		t.Fatalf("expected UnrecognizedTypeError, got %v", err)
	}
}
