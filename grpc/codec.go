// Package txgrpc provides the gRPC transport for the codec service,
// using cramberry for deterministic binary serialization of the
// request envelopes.
//
// No protobuf code generation is required: the envelopes in package
// txcodec carry cramberry struct tags and cross the wire as is.
// Codec errors travel as gRPC status details and are rebuilt into the
// typed txcodec errors on the client side.
package txgrpc

import (
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"
	"github.com/blockberries/txcodec"
	"google.golang.org/grpc/encoding"
)

// EnvelopeCodecName is the gRPC content subtype of the codec service.
const EnvelopeCodecName = "txcodec-cramberry"

// EnvelopeCodec is the grpc/encoding.Codec of the codec service. It
// serializes the txcodec request and response envelopes with cramberry
// and refuses any other message.
type EnvelopeCodec struct{}

func (EnvelopeCodec) Marshal(v any) ([]byte, error) {
	if !isEnvelope(v) {
		return nil, fmt.Errorf("txgrpc: %T is not a codec envelope", v)
	}
	data, err := cramberry.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("txgrpc: marshal %T: %w", v, err)
	}
	return data, nil
}

func (EnvelopeCodec) Unmarshal(data []byte, v any) error {
	if !isEnvelope(v) {
		return fmt.Errorf("txgrpc: %T is not a codec envelope", v)
	}
	if err := cramberry.Unmarshal(data, v); err != nil {
		return fmt.Errorf("txgrpc: unmarshal %T: %w", v, err)
	}
	return nil
}

func (EnvelopeCodec) Name() string { return EnvelopeCodecName }

func isEnvelope(v any) bool {
	switch v.(type) {
	case *txcodec.EncodeTxRequest, *txcodec.EncodeTxResponse,
		*txcodec.DecodeTxRequest, *txcodec.DecodeTxResponse,
		*txcodec.DecodeTxInfoRequest, *txcodec.DecodeTxInfoResponse,
		*txcodec.ParseLogsRequest, *txcodec.ParseLogsResponse:
		return true
	}
	return false
}

func init() {
	encoding.RegisterCodec(EnvelopeCodec{})
}
