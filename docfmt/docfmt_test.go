package docfmt_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/blockberries/txcodec"
	"github.com/blockberries/txcodec/docfmt"
	"github.com/blockberries/txcodec/types"
	"github.com/blockberries/txcodec/x/bank"
)

func sampleTx(t *testing.T) (*types.InterfaceRegistry, types.Tx) {
	t.Helper()
	reg := types.NewInterfaceRegistry()
	if err := types.RegisterPublicKeys(reg); err != nil {
		t.Fatalf("RegisterPublicKeys: %v", err)
	}
	if err := bank.RegisterInterfaces(reg); err != nil {
		t.Fatalf("RegisterInterfaces: %v", err)
	}
	tx := types.NewTx(
		[]txcodec.Msg{bank.NewMsgSend("terra1from", "terra1to", types.Coins{types.NewCoin("100", "uluna")})},
		"memo",
		types.NewFee(18446744073709551615, nil),
	)
	tx.AppendEmptySignatures([]types.SignerData{
		{Sequence: 1},
		{Sequence: 2, PublicKey: &types.LegacyAminoPubKey{
			Threshold:  1,
			PublicKeys: []txcodec.PublicKey{&types.SimplePublicKey{Key: []byte{2, 3}}},
		}},
	})
	return reg, tx
}

func TestFormats_TxRoundTrip(t *testing.T) {
	reg, tx := sampleTx(t)
	doc, err := tx.ToDocument()
	if err != nil {
		t.Fatalf("ToDocument: %v", err)
	}
	for _, f := range docfmt.Formats {
		t.Run(string(f), func(t *testing.T) {
			data, err := docfmt.Marshal(f, doc)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			parsed, err := docfmt.Unmarshal(f, data)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			got, err := types.TxFromDocument(reg, parsed)
			if err != nil {
				t.Fatalf("TxFromDocument: %v", err)
			}
			if !reflect.DeepEqual(got, tx) {
				t.Fatalf("round-trip mismatch:\n got %+v\nwant %+v", got, tx)
			}
		})
	}
}

func TestJSON_SortedKeys(t *testing.T) {
	data, err := docfmt.Marshal(docfmt.JSON, txcodec.Document{"b": 1, "a": "<x>"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"a":"<x>","b":1}` {
		t.Fatalf("Marshal = %s", data)
	}
}

func TestJSON_PreservesLargeIntegers(t *testing.T) {
	doc, err := docfmt.Unmarshal(docfmt.JSON, []byte(`{"gas_limit": 18446744073709551615}`))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	fee, err := types.FeeFromDocument(doc)
	if err != nil {
		t.Fatalf("FeeFromDocument: %v", err)
	}
	if fee.GasLimit != 18446744073709551615 {
		t.Fatalf("GasLimit = %d", fee.GasLimit)
	}
}

func TestUnmarshal_RejectsNonObject(t *testing.T) {
	if _, err := docfmt.Unmarshal(docfmt.JSON, []byte(`[1,2]`)); err == nil {
		t.Fatal("accepted a list as a document")
	}
	if _, err := docfmt.Unmarshal(docfmt.JSON, []byte(`{`)); err == nil {
		t.Fatal("accepted truncated JSON")
	} else if _, ok := txcodec.IsDecodeError(err); !ok {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestUnmarshalList(t *testing.T) {
	l, err := docfmt.UnmarshalList(docfmt.YAML, []byte("- log: \"\"\n  events: []\n"))
	if err != nil {
		t.Fatalf("UnmarshalList: %v", err)
	}
	logs, err := types.ParseTxLogs(l)
	if err != nil || len(logs) != 1 {
		t.Fatalf("ParseTxLogs = %v, %v", logs, err)
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range docfmt.Formats {
		got, err := docfmt.ParseFormat(string(f))
		if err != nil || got != f {
			t.Fatalf("ParseFormat(%q) = %q, %v", f, got, err)
		}
	}
	if _, err := docfmt.ParseFormat("xml"); err == nil || !strings.Contains(err.Error(), "xml") {
		t.Fatalf("ParseFormat(xml) error = %v", err)
	}
}
