package txgrpc

import (
	"context"
	"net"
	"time"

	"github.com/blockberries/txcodec"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Compile-time interface check.
var _ TxCodecServiceServer = (*GRPCServer)(nil)

// GRPCServer exposes a codec connection, usually a server.Service, as
// a gRPC service. Envelopes pass through unchanged; errors are mapped
// to status codes.
type GRPCServer struct {
	conn txcodec.Connection
}

// NewGRPCServer creates a gRPC server over conn.
func NewGRPCServer(conn txcodec.Connection) *GRPCServer {
	return &GRPCServer{conn: conn}
}

// Register adds the codec service to a gRPC server.
func (s *GRPCServer) Register(gs *grpc.Server) {
	RegisterTxCodecServiceServer(gs, s)
}

// Serve starts a gRPC server on the given listener. It blocks until
// the server stops.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	return gs.Serve(lis)
}

// Conn returns the underlying connection for advanced use.
func (s *GRPCServer) Conn() txcodec.Connection {
	return s.conn
}

func (s *GRPCServer) EncodeTx(ctx context.Context, req *txcodec.EncodeTxRequest) (*txcodec.EncodeTxResponse, error) {
	resp, err := s.conn.EncodeTx(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

func (s *GRPCServer) DecodeTx(ctx context.Context, req *txcodec.DecodeTxRequest) (*txcodec.DecodeTxResponse, error) {
	resp, err := s.conn.DecodeTx(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

func (s *GRPCServer) DecodeTxInfo(ctx context.Context, req *txcodec.DecodeTxInfoRequest) (*txcodec.DecodeTxInfoResponse, error) {
	resp, err := s.conn.DecodeTxInfo(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

func (s *GRPCServer) ParseLogs(ctx context.Context, req *txcodec.ParseLogsRequest) (*txcodec.ParseLogsResponse, error) {
	resp, err := s.conn.ParseLogs(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

// LoggingInterceptor logs every unary call with its method, status
// code and duration.
func LoggingInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		ev := log.Debug()
		if err != nil {
			ev = log.Warn().Err(err)
		}
		ev.Str("method", info.FullMethod).
			Str("code", status.Code(err).String()).
			Dur("elapsed", time.Since(start)).
			Msg("grpc call")
		return resp, err
	}
}
