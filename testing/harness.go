package txcodectest

import (
	"context"
	"testing"

	"github.com/blockberries/txcodec"
	"github.com/blockberries/txcodec/docfmt"
	"github.com/blockberries/txcodec/server"
	"github.com/blockberries/txcodec/types"
	"github.com/blockberries/txcodec/x/bank"
)

// Harness drives a codec connection from a test, failing the test on
// any transport or codec error.
type Harness struct {
	t    *testing.T
	conn txcodec.Connection
}

// NewHarness creates a harness over conn. The connection is closed
// when the test ends.
func NewHarness(t *testing.T, conn txcodec.Connection) *Harness {
	t.Helper()
	t.Cleanup(func() { _ = conn.Close() })
	return &Harness{t: t, conn: conn}
}

// NewServiceHarness creates a harness over an in-process service
// decoding against NewRegistry.
func NewServiceHarness(t *testing.T, opts ...server.Option) *Harness {
	t.Helper()
	return NewHarness(t, server.New(NewRegistry(), opts...))
}

// Conn returns the underlying connection for direct access.
func (h *Harness) Conn() txcodec.Connection {
	return h.conn
}

// EncodeTx encodes tx through the connection and returns the wire
// bytes and hash.
func (h *Harness) EncodeTx(tx types.Tx) txcodec.EncodeTxResponse {
	h.t.Helper()
	doc, err := tx.ToDocument()
	if err != nil {
		h.t.Fatalf("ToDocument failed: %v", err)
	}
	data, err := docfmt.Marshal(docfmt.JSON, doc)
	if err != nil {
		h.t.Fatalf("Marshal failed: %v", err)
	}
	resp, err := h.conn.EncodeTx(context.Background(), txcodec.EncodeTxRequest{Document: data})
	if err != nil {
		h.t.Fatalf("EncodeTx failed: %v", err)
	}
	return resp
}

// DecodeTx decodes wire bytes through the connection and parses the
// returned document against NewRegistry.
func (h *Harness) DecodeTx(bz []byte) (types.Tx, string) {
	h.t.Helper()
	resp, err := h.conn.DecodeTx(context.Background(), txcodec.DecodeTxRequest{TxBytes: bz})
	if err != nil {
		h.t.Fatalf("DecodeTx failed: %v", err)
	}
	doc, err := docfmt.Unmarshal(docfmt.JSON, resp.Document)
	if err != nil {
		h.t.Fatalf("Unmarshal failed: %v", err)
	}
	tx, err := types.TxFromDocument(NewRegistry(), doc)
	if err != nil {
		h.t.Fatalf("TxFromDocument failed: %v", err)
	}
	return tx, resp.TxHash
}

// DecodeTxInfo decodes a binary receipt through the connection.
func (h *Harness) DecodeTxInfo(info types.TxInfo) (types.TxInfo, bool) {
	h.t.Helper()
	bz, err := info.ToWire()
	if err != nil {
		h.t.Fatalf("ToWire failed: %v", err)
	}
	resp, err := h.conn.DecodeTxInfo(context.Background(), txcodec.DecodeTxInfoRequest{Response: bz})
	if err != nil {
		h.t.Fatalf("DecodeTxInfo (txhash=%s) failed: %v", info.TxHash, err)
	}
	doc, err := docfmt.Unmarshal(docfmt.JSON, resp.Document)
	if err != nil {
		h.t.Fatalf("Unmarshal failed: %v", err)
	}
	got, err := types.TxInfoFromDocument(NewRegistry(), doc)
	if err != nil {
		h.t.Fatalf("TxInfoFromDocument failed: %v", err)
	}
	return got, resp.Failed
}

// ParseLogs parses rawLog through the connection.
func (h *Harness) ParseLogs(rawLog string) txcodec.ParseLogsResponse {
	h.t.Helper()
	resp, err := h.conn.ParseLogs(context.Background(), txcodec.ParseLogsRequest{RawLog: rawLog})
	if err != nil {
		h.t.Fatalf("ParseLogs failed: %v", err)
	}
	return resp
}

// --- Fixtures ---

// NewRegistry returns a registry with the public keys, the bank
// messages and MockMsg registered.
func NewRegistry() *types.InterfaceRegistry {
	reg := types.NewInterfaceRegistry()
	for _, register := range []func(*types.InterfaceRegistry) error{
		types.RegisterPublicKeys,
		bank.RegisterInterfaces,
		RegisterMock,
	} {
		if err := register(reg); err != nil {
			panic(err)
		}
	}
	return reg
}

// SampleSigners returns a single-key signer, a keyless signer and a
// 2-of-3 multisig signer.
func SampleSigners() []types.SignerData {
	multi := &types.LegacyAminoPubKey{Threshold: 2}
	for i := byte(1); i <= 3; i++ {
		multi.PublicKeys = append(multi.PublicKeys, &types.SimplePublicKey{Key: []byte{0x02, i, i, i}})
	}
	return []types.SignerData{
		{Sequence: 7, PublicKey: &types.SimplePublicKey{Key: []byte{0x03, 0xaa, 0xbb, 0xcc}}},
		{Sequence: 0},
		{Sequence: 42, PublicKey: multi},
	}
}

// SampleTx returns a transaction with a bank send, a mock message and
// placeholder signatures for SampleSigners.
func SampleTx() types.Tx {
	tx := types.NewTx(
		[]txcodec.Msg{
			bank.NewMsgSend("terra1sender", "terra1recipient", types.Coins{types.NewCoin("1000000", "uluna")}),
			&MockMsg{Payload: "mock", Count: 18446744073709551615},
		},
		"sample memo",
		types.NewFee(250000, types.Coins{types.NewCoin("37500", "uluna")}),
	)
	tx.Body.TimeoutHeight = 9000000
	tx.AppendEmptySignatures(SampleSigners())
	return tx
}

// SampleRawLog is a raw_log with two message logs.
const SampleRawLog = `[{"msg_index":0,"log":"","events":[{"type":"transfer","attributes":[` +
	`{"key":"recipient","value":"terra1recipient"},{"key":"sender","value":"terra1sender"},` +
	`{"key":"amount","value":"1000000uluna"}]},{"type":"message","attributes":[` +
	`{"key":"action","value":"send"},{"key":"module","value":"bank"}]}]},` +
	`{"msg_index":1,"log":"","events":[{"type":"message","attributes":[{"key":"action","value":"mock"}]}]}]`

// SampleTxInfo returns a successful receipt of SampleTx whose logs
// match SampleRawLog.
func SampleTxInfo() types.TxInfo {
	logs, err := types.ParseRawLog(SampleRawLog)
	if err != nil {
		panic(err)
	}
	tx := SampleTx()
	bz, err := tx.ToWire()
	if err != nil {
		panic(err)
	}
	return types.TxInfo{
		Height:    7302141,
		TxHash:    types.TxHash(bz),
		RawLog:    SampleRawLog,
		Logs:      logs,
		GasWanted: 250000,
		GasUsed:   98765,
		Tx:        tx,
		Timestamp: "2022-05-01T12:00:00Z",
		Events: []types.Event{{
			Type:       "tx",
			Attributes: []types.EventAttribute{{Key: "fee", Value: "37500uluna", Index: true}},
		}},
	}
}

// FailedTxInfo returns a receipt that failed before execution: it has
// an error code and no logs.
func FailedTxInfo() types.TxInfo {
	info := SampleTxInfo()
	code, space := uint32(5), "sdk"
	info.Code, info.Codespace = &code, &space
	info.Logs = nil
	info.RawLog = "insufficient funds"
	info.Events = nil
	return info
}
