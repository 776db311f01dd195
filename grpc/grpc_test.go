package txgrpc_test

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/blockberries/txcodec"
	txgrpc "github.com/blockberries/txcodec/grpc"
	"github.com/blockberries/txcodec/server"
	txcodectest "github.com/blockberries/txcodec/testing"
	"github.com/rs/zerolog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"
)

// startServer starts a gRPC server over conn on a random port and
// returns the listener address. The server stops when the test ends.
func startServer(t *testing.T, conn txcodec.Connection, opts ...grpc.ServerOption) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := grpc.NewServer(opts...)
	txgrpc.NewGRPCServer(conn).Register(s)

	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.GracefulStop)

	return lis.Addr().String()
}

func dial(t *testing.T, addr string) *txgrpc.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := txgrpc.Dial(ctx, addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	return client
}

func TestGRPC_Compliance(t *testing.T) {
	addr := startServer(t, server.New(txcodectest.NewRegistry()))
	txcodectest.RunConnectionCompliance(t, func() txcodec.Connection { return dial(t, addr) })
}

func TestGRPC_TypedErrorsSurviveTransport(t *testing.T) {
	addr := startServer(t, server.New(txcodectest.NewRegistry(), server.WithMaxMessageBytes(1024)))
	client := dial(t, addr)
	defer client.Close()
	ctx := context.Background()

	_, err := client.DecodeTx(ctx, txcodec.DecodeTxRequest{TxBytes: []byte{0xff}})
	if d, ok := txcodec.IsDecodeError(err); !ok || d.Field == "" {
		t.Fatalf("expected DecodeError with a field, got %v", err)
	}

	doc := `{"body":{"messages":[{"@type":"/cosmos.gov.v1beta1.MsgVote"}]},` +
		`"auth_info":{"signer_infos":[],"fee":{"amount":[],"gas_limit":"1"}},"signatures":[]}`
	_, err = client.EncodeTx(ctx, txcodec.EncodeTxRequest{Document: []byte(doc)})
	if u, ok := txcodec.IsUnrecognizedType(err); !ok || u.TypeURL != "/cosmos.gov.v1beta1.MsgVote" {
		t.Fatalf("expected UnrecognizedTypeError, got %v", err)
	}

	_, err = client.ParseLogs(ctx, txcodec.ParseLogsRequest{RawLog: strings.Repeat("x", 2048)})
	if !errors.Is(err, txcodec.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestGRPC_ServerClosed(t *testing.T) {
	svc := server.New(txcodectest.NewRegistry())
	addr := startServer(t, svc)
	client := dial(t, addr)
	defer client.Close()

	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	_, err := client.ParseLogs(context.Background(), txcodec.ParseLogsRequest{RawLog: "[]"})
	if !errors.Is(err, txcodec.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestGRPCServer_StatusCodes(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"decode", txcodec.NewDecodeError("Tx.body", "missing"), codes.InvalidArgument},
		{"invariant", txcodec.NewInvariantError("Tx", "2 signatures for 1 signers"), codes.InvalidArgument},
		{"unrecognized", txcodec.NewUnrecognizedTypeError("Msg", "/x.Y"), codes.NotFound},
		{"wrapped_unrecognized", &txcodec.DecodeError{Field: "TxBody.messages[0]", Reason: "invalid",
			Err: txcodec.NewUnrecognizedTypeError("Msg", "/x.Y")}, codes.NotFound},
		{"too_large", txcodec.ErrTooLarge, codes.ResourceExhausted},
		{"closed", txcodec.ErrClosed, codes.Unavailable},
		{"cancelled", context.Canceled, codes.Canceled},
		{"other", boom, codes.Internal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := &txcodectest.MockConnection{
				DecodeTxFn: func(context.Context, txcodec.DecodeTxRequest) (txcodec.DecodeTxResponse, error) {
					return txcodec.DecodeTxResponse{}, tc.err
				},
			}
			_, err := txgrpc.NewGRPCServer(mock).DecodeTx(context.Background(), &txcodec.DecodeTxRequest{})
			if got := status.Code(err); got != tc.want {
				t.Fatalf("code = %s, want %s (err %v)", got, tc.want, err)
			}
			if mock.DecodeTxCalls.Load() != 1 {
				t.Fatalf("DecodeTx called %d times", mock.DecodeTxCalls.Load())
			}
		})
	}
}

func TestGRPC_MockPassthrough(t *testing.T) {
	mock := &txcodectest.MockConnection{
		EncodeTxFn: func(_ context.Context, req txcodec.EncodeTxRequest) (txcodec.EncodeTxResponse, error) {
			return txcodec.EncodeTxResponse{TxBytes: req.Document, TxHash: "ABC"}, nil
		},
	}
	addr := startServer(t, mock, grpc.UnaryInterceptor(txgrpc.LoggingInterceptor(zerolog.Nop())))
	client := dial(t, addr)
	defer client.Close()

	resp, err := client.EncodeTx(context.Background(), txcodec.EncodeTxRequest{Document: []byte("{}")})
	if err != nil {
		t.Fatalf("EncodeTx: %v", err)
	}
	if string(resp.TxBytes) != "{}" || resp.TxHash != "ABC" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if mock.EncodeTxCalls.Load() != 1 {
		t.Fatalf("EncodeTx called %d times", mock.EncodeTxCalls.Load())
	}
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	addr := startServer(t, server.New(txcodectest.NewRegistry()))
	client := dial(t, addr)
	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	_, err := client.DecodeTx(context.Background(), txcodec.DecodeTxRequest{})
	if !errors.Is(err, txcodec.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestEnvelopeCodec(t *testing.T) {
	var codec txgrpc.EnvelopeCodec
	if encoding.GetCodec(txgrpc.EnvelopeCodecName) == nil {
		t.Fatalf("codec %q not registered", txgrpc.EnvelopeCodecName)
	}

	in := &txcodec.ParseLogsResponse{
		HasLogs: true,
		Logs:    []txcodec.IndexedLog{{MsgIndex: 3, Index: []txcodec.IndexEntry{{Type: "transfer", Key: "amount", Values: []string{"1uluna"}}}}},
		Errors:  []string{"logs[1]: not an object"},
	}
	bz, err := codec.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out := new(txcodec.ParseLogsResponse)
	if err := codec.Unmarshal(bz, out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !out.HasLogs || len(out.Logs) != 1 || out.Logs[0].MsgIndex != 3 || len(out.Errors) != 1 {
		t.Fatalf("round trip = %+v", out)
	}

	if _, err := codec.Marshal(&struct{ X int }{1}); err == nil {
		t.Fatal("Marshal accepted a non-envelope value")
	}
	if err := codec.Unmarshal(bz, new(string)); err == nil {
		t.Fatal("Unmarshal accepted a non-envelope target")
	}
}
