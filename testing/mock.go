// Package txcodectest provides test utilities for the codec: a mock
// message variant, a configurable mock connection, a harness with
// sample fixtures, and compliance suites for message variants and
// connections.
package txcodectest

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/blockberries/txcodec"
	"github.com/blockberries/txcodec/types"
	"google.golang.org/protobuf/encoding/protowire"
)

// MockMsgTypeURL is the registered name of MockMsg.
const MockMsgTypeURL = "/txcodec.testing.MockMsg"

// Compile-time interface checks.
var (
	_ txcodec.Msg        = (*MockMsg)(nil)
	_ txcodec.Connection = (*MockConnection)(nil)
)

// MockMsg is a minimal message variant carrying a string and a 64-bit
// counter.
type MockMsg struct {
	Payload string
	Count   uint64
}

// RegisterMock registers MockMsg on reg.
func RegisterMock(reg *types.InterfaceRegistry) error {
	return reg.Msgs.Register(func() txcodec.Msg { return &MockMsg{} })
}

func (MockMsg) TypeURL() string { return MockMsgTypeURL }

func (m MockMsg) ToDocument() (txcodec.Document, error) {
	return txcodec.Document{
		"@type":   MockMsgTypeURL,
		"payload": m.Payload,
		"count":   strconv.FormatUint(m.Count, 10),
	}, nil
}

func (m *MockMsg) FromDocument(_ txcodec.Unpacker, doc txcodec.Document) error {
	payload, ok := doc["payload"].(string)
	if !ok {
		return txcodec.NewDecodeError("MockMsg.payload", "missing")
	}
	count, err := strconv.ParseUint(fmt.Sprint(doc["count"]), 10, 64)
	if err != nil {
		return &txcodec.DecodeError{Field: "MockMsg.count", Reason: "not an unsigned integer", Err: err}
	}
	*m = MockMsg{Payload: payload, Count: count}
	return nil
}

func (m MockMsg) ToWire() ([]byte, error) {
	var b []byte
	if m.Payload != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, m.Payload)
	}
	if m.Count != 0 {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, m.Count)
	}
	return b, nil
}

func (m *MockMsg) FromWire(_ txcodec.Unpacker, bz []byte) error {
	*m = MockMsg{}
	for len(bz) > 0 {
		num, typ, n := protowire.ConsumeTag(bz)
		if n < 0 {
			return &txcodec.DecodeError{Field: "MockMsg", Reason: "invalid field tag", Err: protowire.ParseError(n)}
		}
		bz = bz[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(bz)
			if n < 0 {
				return &txcodec.DecodeError{Field: "MockMsg.payload", Reason: "truncated", Err: protowire.ParseError(n)}
			}
			m.Payload, bz = v, bz[n:]
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(bz)
			if n < 0 {
				return &txcodec.DecodeError{Field: "MockMsg.count", Reason: "truncated", Err: protowire.ParseError(n)}
			}
			m.Count, bz = v, bz[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, bz)
			if n < 0 {
				return &txcodec.DecodeError{Field: "MockMsg", Reason: "malformed unknown field", Err: protowire.ParseError(n)}
			}
			bz = bz[n:]
		}
	}
	return nil
}

// MockConnection is a configurable mock connection. Unconfigured
// methods return zero-value responses.
type MockConnection struct {
	EncodeTxFn     func(context.Context, txcodec.EncodeTxRequest) (txcodec.EncodeTxResponse, error)
	DecodeTxFn     func(context.Context, txcodec.DecodeTxRequest) (txcodec.DecodeTxResponse, error)
	DecodeTxInfoFn func(context.Context, txcodec.DecodeTxInfoRequest) (txcodec.DecodeTxInfoResponse, error)
	ParseLogsFn    func(context.Context, txcodec.ParseLogsRequest) (txcodec.ParseLogsResponse, error)

	// Call counters (atomic for concurrent access).
	EncodeTxCalls     atomic.Int64
	DecodeTxCalls     atomic.Int64
	DecodeTxInfoCalls atomic.Int64
	ParseLogsCalls    atomic.Int64
	CloseCalls        atomic.Int64
}

func (m *MockConnection) EncodeTx(ctx context.Context, req txcodec.EncodeTxRequest) (txcodec.EncodeTxResponse, error) {
	m.EncodeTxCalls.Add(1)
	if m.EncodeTxFn != nil {
		return m.EncodeTxFn(ctx, req)
	}
	return txcodec.EncodeTxResponse{}, nil
}

func (m *MockConnection) DecodeTx(ctx context.Context, req txcodec.DecodeTxRequest) (txcodec.DecodeTxResponse, error) {
	m.DecodeTxCalls.Add(1)
	if m.DecodeTxFn != nil {
		return m.DecodeTxFn(ctx, req)
	}
	return txcodec.DecodeTxResponse{}, nil
}

func (m *MockConnection) DecodeTxInfo(ctx context.Context, req txcodec.DecodeTxInfoRequest) (txcodec.DecodeTxInfoResponse, error) {
	m.DecodeTxInfoCalls.Add(1)
	if m.DecodeTxInfoFn != nil {
		return m.DecodeTxInfoFn(ctx, req)
	}
	return txcodec.DecodeTxInfoResponse{}, nil
}

func (m *MockConnection) ParseLogs(ctx context.Context, req txcodec.ParseLogsRequest) (txcodec.ParseLogsResponse, error) {
	m.ParseLogsCalls.Add(1)
	if m.ParseLogsFn != nil {
		return m.ParseLogsFn(ctx, req)
	}
	return txcodec.ParseLogsResponse{}, nil
}

func (m *MockConnection) Close() error {
	m.CloseCalls.Add(1)
	return nil
}
