// Package local provides an in-process codec connection.
//
// For callers compiled into the same binary as the codec, this adapter
// wraps a server.Service with no transport in between. Besides the
// document-level Connection methods it offers typed shortcuts that skip
// the JSON step entirely.
package local

import (
	"context"

	"github.com/blockberries/txcodec"
	"github.com/blockberries/txcodec/server"
	"github.com/blockberries/txcodec/types"
)

// Compile-time interface check.
var _ txcodec.Connection = (*Connection)(nil)

// Connection wraps a codec service decoding against one registry.
type Connection struct {
	svc *server.Service
}

// NewConnection creates an in-process connection decoding against reg.
func NewConnection(reg *types.InterfaceRegistry, opts ...server.Option) *Connection {
	return &Connection{svc: server.New(reg, opts...)}
}

func (c *Connection) EncodeTx(ctx context.Context, req txcodec.EncodeTxRequest) (txcodec.EncodeTxResponse, error) {
	return c.svc.EncodeTx(ctx, req)
}

func (c *Connection) DecodeTx(ctx context.Context, req txcodec.DecodeTxRequest) (txcodec.DecodeTxResponse, error) {
	return c.svc.DecodeTx(ctx, req)
}

func (c *Connection) DecodeTxInfo(ctx context.Context, req txcodec.DecodeTxInfoRequest) (txcodec.DecodeTxInfoResponse, error) {
	return c.svc.DecodeTxInfo(ctx, req)
}

func (c *Connection) ParseLogs(ctx context.Context, req txcodec.ParseLogsRequest) (txcodec.ParseLogsResponse, error) {
	return c.svc.ParseLogs(ctx, req)
}

// Encode converts tx to wire bytes and returns them with their hash.
func (c *Connection) Encode(ctx context.Context, tx types.Tx) ([]byte, string, error) {
	if err := c.ready(ctx); err != nil {
		return nil, "", err
	}
	bz, err := tx.ToWire()
	if err != nil {
		return nil, "", err
	}
	return bz, types.TxHash(bz), nil
}

// Decode converts wire bytes to a transaction.
func (c *Connection) Decode(ctx context.Context, bz []byte) (types.Tx, error) {
	if err := c.ready(ctx); err != nil {
		return types.Tx{}, err
	}
	return types.TxFromWire(c.svc.Registry(), bz)
}

func (c *Connection) ready(ctx context.Context) error {
	if c.svc.IsClosed() {
		return txcodec.ErrClosed
	}
	return ctx.Err()
}

// Close closes the underlying service.
func (c *Connection) Close() error { return c.svc.Close() }

// Service returns the underlying service for advanced use cases.
func (c *Connection) Service() *server.Service {
	return c.svc
}
