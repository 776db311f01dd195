package bank_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/blockberries/txcodec"
	txcodectest "github.com/blockberries/txcodec/testing"
	"github.com/blockberries/txcodec/types"
	"github.com/blockberries/txcodec/x/bank"
)

func newRegistry(t *testing.T) *types.InterfaceRegistry {
	t.Helper()
	reg := types.NewInterfaceRegistry()
	if err := types.RegisterPublicKeys(reg); err != nil {
		t.Fatalf("RegisterPublicKeys: %v", err)
	}
	if err := bank.RegisterInterfaces(reg); err != nil {
		t.Fatalf("RegisterInterfaces: %v", err)
	}
	return reg
}

func sampleMsgs() []txcodec.Msg {
	return []txcodec.Msg{
		bank.NewMsgSend("terra1from", "terra1to", types.Coins{types.NewCoin("100", "uluna")}),
		&bank.MsgSend{FromAddress: "terra1from", ToAddress: "terra1to"},
		&bank.MsgMultiSend{
			Inputs: []bank.Input{{Address: "terra1a", Coins: types.Coins{types.NewCoin("30", "uluna")}}},
			Outputs: []bank.Output{
				{Address: "terra1b", Coins: types.Coins{types.NewCoin("10", "uluna")}},
				{Address: "terra1c", Coins: types.Coins{types.NewCoin("20", "uluna")}},
			},
		},
	}
}

func TestMsgs_PackUnpack(t *testing.T) {
	reg := newRegistry(t)
	for _, msg := range sampleMsgs() {
		p, err := reg.Msgs.Pack(msg)
		if err != nil {
			t.Fatalf("Pack %s: %v", msg.TypeURL(), err)
		}
		if p.TypeURL != msg.TypeURL() {
			t.Fatalf("TypeURL = %q, want %q", p.TypeURL, msg.TypeURL())
		}
		got, err := reg.Msgs.Unpack(reg, p)
		if err != nil {
			t.Fatalf("Unpack %s: %v", msg.TypeURL(), err)
		}
		if !reflect.DeepEqual(got, msg) {
			t.Fatalf("pack/unpack mismatch: got %+v, want %+v", got, msg)
		}
	}
}

func TestMsgs_DocumentRoundTrip(t *testing.T) {
	reg := newRegistry(t)
	for _, msg := range sampleMsgs() {
		doc, err := msg.ToDocument()
		if err != nil {
			t.Fatalf("ToDocument: %v", err)
		}
		if doc["@type"] != msg.TypeURL() {
			t.Fatalf("@type = %v, want %s", doc["@type"], msg.TypeURL())
		}
		got, err := reg.MsgFromDocument(doc)
		if err != nil {
			t.Fatalf("MsgFromDocument: %v", err)
		}
		if !reflect.DeepEqual(got, msg) {
			t.Fatalf("document mismatch: got %+v, want %+v", got, msg)
		}
	}
}

func TestMsgSend_MissingAddress(t *testing.T) {
	reg := newRegistry(t)
	_, err := reg.MsgFromDocument(txcodec.Document{
		"@type":      bank.MsgSendTypeURL,
		"to_address": "terra1to",
	})
	var de *txcodec.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if de.Field != "MsgSend.from_address" {
		t.Fatalf("Field = %q", de.Field)
	}
}

func TestMsgSend_TruncatedWire(t *testing.T) {
	bz, err := bank.NewMsgSend("terra1from", "terra1to", nil).ToWire()
	if err != nil {
		t.Fatalf("ToWire: %v", err)
	}
	var m bank.MsgSend
	if _, ok := txcodec.IsDecodeError(m.FromWire(nil, bz[:len(bz)-2])); !ok {
		t.Fatal("expected DecodeError for truncated input")
	}
}

func TestRegisterInterfaces_Twice(t *testing.T) {
	reg := newRegistry(t)
	if err := bank.RegisterInterfaces(reg); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestMsgSend_Compliance(t *testing.T) {
	msgs := sampleMsgs()
	txcodectest.RunVariantCompliance(t, newRegistry(t),
		func() txcodec.Packable { return &bank.MsgSend{} },
		msgs[0], msgs[1])
}

func TestMsgMultiSend_Compliance(t *testing.T) {
	txcodectest.RunVariantCompliance(t, newRegistry(t),
		func() txcodec.Packable { return &bank.MsgMultiSend{} },
		sampleMsgs()[2])
}
