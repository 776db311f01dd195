package txcodec_test

import (
	"reflect"
	"testing"

	"github.com/blockberries/txcodec"

	"github.com/blockberries/cramberry/pkg/cramberry"
)

// roundTrip marshals v, unmarshals into a new T, and returns it.
func roundTrip[T any](t *testing.T, v T) T {
	t.Helper()
	data, err := cramberry.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var out T
	if err := cramberry.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	return out
}

func TestEncodeTx_RoundTrip(t *testing.T) {
	req := txcodec.EncodeTxRequest{Document: []byte(`{"body":{}}`)}
	if got := roundTrip(t, req); !reflect.DeepEqual(got, req) {
		t.Fatalf("EncodeTxRequest round-trip failed: got %+v, want %+v", got, req)
	}
	resp := txcodec.EncodeTxResponse{TxBytes: []byte{0x0a, 0x00, 0x12, 0x00}, TxHash: "ABCD"}
	if got := roundTrip(t, resp); !reflect.DeepEqual(got, resp) {
		t.Fatalf("EncodeTxResponse round-trip failed: got %+v, want %+v", got, resp)
	}
}

func TestDecodeTx_RoundTrip(t *testing.T) {
	req := txcodec.DecodeTxRequest{TxBytes: []byte{0x0a, 0x00}}
	if got := roundTrip(t, req); !reflect.DeepEqual(got, req) {
		t.Fatalf("DecodeTxRequest round-trip failed: got %+v", got)
	}
	resp := txcodec.DecodeTxResponse{Document: []byte(`{}`), TxHash: "FF"}
	if got := roundTrip(t, resp); !reflect.DeepEqual(got, resp) {
		t.Fatalf("DecodeTxResponse round-trip failed: got %+v", got)
	}
}

func TestDecodeTxInfo_RoundTrip(t *testing.T) {
	resp := txcodec.DecodeTxInfoResponse{Document: []byte(`{"code":5}`), Failed: true}
	if got := roundTrip(t, resp); !reflect.DeepEqual(got, resp) {
		t.Fatalf("DecodeTxInfoResponse round-trip failed: got %+v", got)
	}
}

func TestParseLogs_RoundTrip(t *testing.T) {
	resp := txcodec.ParseLogsResponse{
		HasLogs: true,
		Logs: []txcodec.IndexedLog{{
			MsgIndex: 1,
			Log:      "",
			Index: []txcodec.IndexEntry{
				{Type: "transfer", Key: "amount", Values: []string{"10", "20"}},
			},
		}},
		Errors: []string{"decode logs[0]: not an object"},
	}
	got := roundTrip(t, resp)
	if !got.HasLogs || len(got.Logs) != 1 || len(got.Errors) != 1 {
		t.Fatalf("ParseLogsResponse round-trip failed: got %+v", got)
	}
	entry := got.Logs[0].Index[0]
	if entry.Type != "transfer" || entry.Key != "amount" || !reflect.DeepEqual(entry.Values, []string{"10", "20"}) {
		t.Fatalf("IndexEntry mismatch: %+v", entry)
	}
	if got.Logs[0].MsgIndex != 1 {
		t.Fatalf("MsgIndex = %d", got.Logs[0].MsgIndex)
	}
}
