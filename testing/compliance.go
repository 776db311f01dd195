package txcodectest

import (
	"bytes"
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/blockberries/txcodec"
	"github.com/blockberries/txcodec/docfmt"
	"github.com/blockberries/txcodec/types"
	"google.golang.org/protobuf/encoding/protowire"
)

// RunVariantCompliance checks that a message or public key variant
// honors the payload contract: a stable type URL, a tagged document,
// lossless document (through JSON) and wire round trips, tolerance of
// unknown wire fields, and errors rather than panics on garbage.
//
// The factory must return a fresh, empty pointer value of the variant.
// u must be able to decode any payload nested in the samples.
func RunVariantCompliance(t *testing.T, u txcodec.Unpacker, factory func() txcodec.Packable, samples ...txcodec.Packable) {
	t.Helper()
	if len(samples) == 0 {
		samples = []txcodec.Packable{factory()}
	}
	typeURL := factory().TypeURL()

	t.Run("type_url", func(t *testing.T) {
		if typeURL == "" {
			t.Fatal("empty type URL")
		}
		for i, s := range samples {
			if s.TypeURL() != typeURL {
				t.Errorf("sample %d: TypeURL = %q, want %q", i, s.TypeURL(), typeURL)
			}
		}
	})

	t.Run("document_tagged", func(t *testing.T) {
		for i, s := range samples {
			doc, err := s.ToDocument()
			if err != nil {
				t.Fatalf("sample %d: ToDocument: %v", i, err)
			}
			if doc["@type"] != typeURL {
				t.Errorf("sample %d: @type = %v, want %q", i, doc["@type"], typeURL)
			}
		}
	})

	t.Run("document_roundtrip", func(t *testing.T) {
		for i, s := range samples {
			doc, err := s.ToDocument()
			if err != nil {
				t.Fatalf("sample %d: ToDocument: %v", i, err)
			}
			data, err := docfmt.Marshal(docfmt.JSON, doc)
			if err != nil {
				t.Fatalf("sample %d: Marshal: %v", i, err)
			}
			parsed, err := docfmt.Unmarshal(docfmt.JSON, data)
			if err != nil {
				t.Fatalf("sample %d: Unmarshal: %v", i, err)
			}
			got := factory()
			if err := got.FromDocument(u, parsed); err != nil {
				t.Fatalf("sample %d: FromDocument: %v", i, err)
			}
			assertSameWire(t, i, got, s)
		}
	})

	t.Run("wire_roundtrip", func(t *testing.T) {
		for i, s := range samples {
			bz, err := s.ToWire()
			if err != nil {
				t.Fatalf("sample %d: ToWire: %v", i, err)
			}
			got := factory()
			if err := got.FromWire(u, bz); err != nil {
				t.Fatalf("sample %d: FromWire: %v", i, err)
			}
			assertSameWire(t, i, got, s)
		}
	})

	t.Run("payload_roundtrip", func(t *testing.T) {
		for i, s := range samples {
			p, err := types.NewTypedPayload(s)
			if err != nil {
				t.Fatalf("sample %d: NewTypedPayload: %v", i, err)
			}
			if p.TypeURL != typeURL {
				t.Fatalf("sample %d: payload type URL = %q", i, p.TypeURL)
			}
			got := factory()
			if err := got.FromWire(u, p.Value); err != nil {
				t.Fatalf("sample %d: FromWire: %v", i, err)
			}
			assertSameWire(t, i, got, s)
		}
	})

	t.Run("unknown_fields_skipped", func(t *testing.T) {
		for i, s := range samples {
			bz, err := s.ToWire()
			if err != nil {
				t.Fatalf("sample %d: ToWire: %v", i, err)
			}
			extended := protowire.AppendTag(bytes.Clone(bz), 999, protowire.VarintType)
			extended = protowire.AppendVarint(extended, 1)
			got := factory()
			if err := got.FromWire(u, extended); err != nil {
				t.Fatalf("sample %d: FromWire with unknown field: %v", i, err)
			}
			assertSameWire(t, i, got, s)
		}
	})

	t.Run("garbage_rejected", func(t *testing.T) {
		for _, bz := range [][]byte{{0xff}, {0x0a, 0x05, 0x01}} {
			if err := factory().FromWire(u, bz); err == nil {
				t.Errorf("FromWire(%x) succeeded", bz)
			}
		}
	})
}

func assertSameWire(t *testing.T, i int, got, want txcodec.Packable) {
	t.Helper()
	gotBz, err := got.ToWire()
	if err != nil {
		t.Fatalf("sample %d: re-encode: %v", i, err)
	}
	wantBz, err := want.ToWire()
	if err != nil {
		t.Fatalf("sample %d: ToWire: %v", i, err)
	}
	if !bytes.Equal(gotBz, wantBz) {
		t.Fatalf("sample %d: round trip changed the value:\n got %x\nwant %x", i, gotBz, wantBz)
	}
}

// RunConnectionCompliance runs the standard suite against a codec
// connection. The factory must return a fresh connection for each
// test, decoding against a registry at least as large as NewRegistry.
func RunConnectionCompliance(t *testing.T, factory func() txcodec.Connection) {
	t.Helper()

	t.Run("encode_decode_roundtrip", func(t *testing.T) {
		h := NewHarness(t, factory())
		tx := SampleTx()
		want, err := tx.ToWire()
		if err != nil {
			t.Fatalf("ToWire: %v", err)
		}

		resp := h.EncodeTx(tx)
		if !bytes.Equal(resp.TxBytes, want) {
			t.Fatalf("EncodeTx bytes differ:\n got %x\nwant %x", resp.TxBytes, want)
		}
		if resp.TxHash != types.TxHash(want) {
			t.Fatalf("EncodeTx hash = %s, want %s", resp.TxHash, types.TxHash(want))
		}

		got, hash := h.DecodeTx(resp.TxBytes)
		if hash != resp.TxHash {
			t.Fatalf("DecodeTx hash = %s, want %s", hash, resp.TxHash)
		}
		again, err := got.ToWire()
		if err != nil {
			t.Fatalf("ToWire: %v", err)
		}
		if !bytes.Equal(again, want) {
			t.Fatal("decoded transaction re-encodes differently")
		}
	})

	t.Run("encode_rejects_malformed_document", func(t *testing.T) {
		h := NewHarness(t, factory())
		for _, doc := range []string{`{"body":{}}`, `[1,2]`, `not json`} {
			_, err := h.Conn().EncodeTx(context.Background(), txcodec.EncodeTxRequest{Document: []byte(doc)})
			if err == nil {
				t.Errorf("EncodeTx(%s) succeeded", doc)
			}
		}
	})

	t.Run("decode_rejects_garbage", func(t *testing.T) {
		h := NewHarness(t, factory())
		_, err := h.Conn().DecodeTx(context.Background(), txcodec.DecodeTxRequest{TxBytes: []byte{0xff}})
		if err == nil {
			t.Fatal("DecodeTx of garbage succeeded")
		}
	})

	t.Run("decode_tx_info", func(t *testing.T) {
		h := NewHarness(t, factory())
		want := SampleTxInfo()
		got, failed := h.DecodeTxInfo(want)
		if failed {
			t.Fatal("successful receipt reported as failed")
		}
		if got.TxHash != want.TxHash || got.Height != want.Height || got.GasUsed != want.GasUsed {
			t.Fatalf("receipt header differs: got %s@%d, want %s@%d", got.TxHash, got.Height, want.TxHash, want.Height)
		}
		if !reflect.DeepEqual(got.Logs, want.Logs) {
			t.Fatalf("logs differ:\n got %+v\nwant %+v", got.Logs, want.Logs)
		}
	})

	t.Run("decode_failed_tx_info", func(t *testing.T) {
		h := NewHarness(t, factory())
		got, failed := h.DecodeTxInfo(FailedTxInfo())
		if !failed {
			t.Fatal("failed receipt not reported as failed")
		}
		if got.Code == nil || *got.Code != 5 {
			t.Fatalf("Code = %v, want 5", got.Code)
		}
		if got.Logs != nil {
			t.Fatalf("Logs = %v, want nil", got.Logs)
		}
	})

	t.Run("parse_logs", func(t *testing.T) {
		h := NewHarness(t, factory())
		resp := h.ParseLogs(SampleRawLog)
		if !resp.HasLogs || len(resp.Logs) != 2 {
			t.Fatalf("got HasLogs=%v with %d logs, want 2 logs", resp.HasLogs, len(resp.Logs))
		}
		var found bool
		for _, e := range resp.Logs[0].Index {
			if e.Type == "transfer" && e.Key == "amount" {
				found = len(e.Values) == 1 && e.Values[0] == "1000000uluna"
			}
		}
		if !found {
			t.Fatalf("transfer.amount missing from index %+v", resp.Logs[0].Index)
		}
		if resp.Logs[1].MsgIndex != 1 {
			t.Fatalf("second log MsgIndex = %d", resp.Logs[1].MsgIndex)
		}
	})

	t.Run("parse_logs_absent_vs_empty", func(t *testing.T) {
		h := NewHarness(t, factory())
		if resp := h.ParseLogs("out of gas"); resp.HasLogs {
			t.Fatal("plain error message reported as logs")
		}
		resp := h.ParseLogs("[]")
		if !resp.HasLogs || len(resp.Logs) != 0 {
			t.Fatalf("empty log list: HasLogs=%v, %d logs", resp.HasLogs, len(resp.Logs))
		}
	})

	t.Run("parse_logs_rejects_corrupt_json", func(t *testing.T) {
		h := NewHarness(t, factory())
		_, err := h.Conn().ParseLogs(context.Background(), txcodec.ParseLogsRequest{RawLog: `[{"events":[`})
		if _, ok := txcodec.IsDecodeError(err); !ok {
			t.Fatalf("expected DecodeError for corrupt raw log, got %v", err)
		}
	})

	t.Run("parse_logs_skips_malformed", func(t *testing.T) {
		h := NewHarness(t, factory())
		resp := h.ParseLogs(`[1,{"events":[]}]`)
		if len(resp.Logs) != 1 || len(resp.Errors) != 1 {
			t.Fatalf("got %d logs and %d errors, want 1 and 1", len(resp.Logs), len(resp.Errors))
		}
	})

	t.Run("concurrent_calls", func(t *testing.T) {
		h := NewHarness(t, factory())
		bz, err := SampleTx().ToWire()
		if err != nil {
			t.Fatalf("ToWire: %v", err)
		}
		var wg sync.WaitGroup
		errs := make(chan error, 16)
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := h.Conn().DecodeTx(context.Background(), txcodec.DecodeTxRequest{TxBytes: bz}); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Errorf("concurrent DecodeTx: %v", err)
		}
	})

	t.Run("calls_after_close_fail", func(t *testing.T) {
		conn := factory()
		if err := conn.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if _, err := conn.ParseLogs(context.Background(), txcodec.ParseLogsRequest{RawLog: "[]"}); err == nil {
			t.Fatal("ParseLogs after Close succeeded")
		}
	})
}
