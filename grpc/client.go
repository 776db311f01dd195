package txgrpc

import (
	"context"
	"fmt"
	"sync"

	"github.com/blockberries/txcodec"
	"github.com/blockberries/txcodec/server"
	"google.golang.org/grpc"
)

// Compile-time interface check.
var _ txcodec.Connection = (*Client)(nil)

// Client implements txcodec.Connection for a remote codec service over
// gRPC using cramberry serialization.
type Client struct {
	cc    *grpc.ClientConn
	guard *server.LifecycleGuard

	closeOnce sync.Once
	closeErr  error
}

// Dial connects to a remote codec service.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(EnvelopeCodec{}),
	))
	cc, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("txcodec client: dial %s: %w", addr, err)
	}
	return &Client{
		cc:    cc,
		guard: server.NewLifecycleGuard(),
	}, nil
}

// Close stops admitting calls, waits for the ones in flight, and closes
// the underlying connection.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.guard.Close()
		c.closeErr = c.cc.Close()
	})
	return c.closeErr
}

func (c *Client) EncodeTx(ctx context.Context, req txcodec.EncodeTxRequest) (txcodec.EncodeTxResponse, error) {
	resp := new(txcodec.EncodeTxResponse)
	if err := c.invoke(ctx, "EncodeTx", &req, resp); err != nil {
		return txcodec.EncodeTxResponse{}, err
	}
	return *resp, nil
}

func (c *Client) DecodeTx(ctx context.Context, req txcodec.DecodeTxRequest) (txcodec.DecodeTxResponse, error) {
	resp := new(txcodec.DecodeTxResponse)
	if err := c.invoke(ctx, "DecodeTx", &req, resp); err != nil {
		return txcodec.DecodeTxResponse{}, err
	}
	return *resp, nil
}

func (c *Client) DecodeTxInfo(ctx context.Context, req txcodec.DecodeTxInfoRequest) (txcodec.DecodeTxInfoResponse, error) {
	resp := new(txcodec.DecodeTxInfoResponse)
	if err := c.invoke(ctx, "DecodeTxInfo", &req, resp); err != nil {
		return txcodec.DecodeTxInfoResponse{}, err
	}
	return *resp, nil
}

func (c *Client) ParseLogs(ctx context.Context, req txcodec.ParseLogsRequest) (txcodec.ParseLogsResponse, error) {
	resp := new(txcodec.ParseLogsResponse)
	if err := c.invoke(ctx, "ParseLogs", &req, resp); err != nil {
		return txcodec.ParseLogsResponse{}, err
	}
	return *resp, nil
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	if err := c.guard.Enter(); err != nil {
		return err
	}
	defer c.guard.Exit()
	return fromStatus(c.cc.Invoke(ctx, fullMethod(method), req, resp))
}
