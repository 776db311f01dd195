package txgrpc

import (
	"context"
	"fmt"

	"github.com/blockberries/txcodec"
	"google.golang.org/grpc"
)

const serviceName = "github.com/blockberries/txcodec.v1.TxCodecService"

// TxCodecServiceServer is the server-side interface of the codec
// service.
type TxCodecServiceServer interface {
	EncodeTx(context.Context, *txcodec.EncodeTxRequest) (*txcodec.EncodeTxResponse, error)
	DecodeTx(context.Context, *txcodec.DecodeTxRequest) (*txcodec.DecodeTxResponse, error)
	DecodeTxInfo(context.Context, *txcodec.DecodeTxInfoRequest) (*txcodec.DecodeTxInfoResponse, error)
	ParseLogs(context.Context, *txcodec.ParseLogsRequest) (*txcodec.ParseLogsResponse, error)
}

// RegisterTxCodecServiceServer registers srv on a gRPC server.
func RegisterTxCodecServiceServer(s *grpc.Server, srv TxCodecServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// --- Handler functions ---

func handlerEncodeTx(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(txcodec.EncodeTxRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return unary(ctx, req, "EncodeTx", interceptor, func(ctx context.Context, req any) (any, error) {
		return srv.(TxCodecServiceServer).EncodeTx(ctx, req.(*txcodec.EncodeTxRequest))
	})
}

func handlerDecodeTx(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(txcodec.DecodeTxRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return unary(ctx, req, "DecodeTx", interceptor, func(ctx context.Context, req any) (any, error) {
		return srv.(TxCodecServiceServer).DecodeTx(ctx, req.(*txcodec.DecodeTxRequest))
	})
}

func handlerDecodeTxInfo(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(txcodec.DecodeTxInfoRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return unary(ctx, req, "DecodeTxInfo", interceptor, func(ctx context.Context, req any) (any, error) {
		return srv.(TxCodecServiceServer).DecodeTxInfo(ctx, req.(*txcodec.DecodeTxInfoRequest))
	})
}

func handlerParseLogs(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(txcodec.ParseLogsRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return unary(ctx, req, "ParseLogs", interceptor, func(ctx context.Context, req any) (any, error) {
		return srv.(TxCodecServiceServer).ParseLogs(ctx, req.(*txcodec.ParseLogsRequest))
	})
}

// unary runs handler through the server's interceptor chain, if any.
func unary(ctx context.Context, req any, method string, interceptor grpc.UnaryServerInterceptor, handler grpc.UnaryHandler) (any, error) {
	if interceptor == nil {
		return handler(ctx, req)
	}
	info := &grpc.UnaryServerInfo{FullMethod: fullMethod(method)}
	return interceptor(ctx, req, info, handler)
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// serviceDesc is the manual gRPC service descriptor of the codec.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*TxCodecServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "EncodeTx", Handler: handlerEncodeTx},
		{MethodName: "DecodeTx", Handler: handlerDecodeTx},
		{MethodName: "DecodeTxInfo", Handler: handlerDecodeTxInfo},
		{MethodName: "ParseLogs", Handler: handlerParseLogs},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "github.com/blockberries/txcodec/v1/service.cram",
}
