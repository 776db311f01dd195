// Package txcodec defines the contracts of a dual-representation
// transaction codec for Cosmos-family chains.
//
// Every model entity converts to and from two encodings: a
// string-keyed structured [Document] (RPC JSON, human display, signing
// payloads) and a field-tagged binary wire message compatible with the
// cosmos.tx.v1beta1 protobuf schema. The concrete model lives in
// package types; this package holds only the contracts shared by the
// model, the message modules, and the transports.
//
// Polymorphic payloads (messages and public keys) travel inside a
// type-URL tagged slot and are recovered through an [Unpacker].
package txcodec

import "context"

// Document is the structured, string-keyed form of an entity.
//
// Lists are []any, 64-bit integers are decimal strings, 32-bit
// integers are numbers and byte strings are standard base64.
type Document = map[string]any

// DocumentMarshaler converts an entity to its structured form.
type DocumentMarshaler interface {
	ToDocument() (Document, error)
}

// WireMarshaler converts an entity to its binary wire form.
type WireMarshaler interface {
	ToWire() ([]byte, error)
}

// Packable is the capability set of a variant that can be embedded in
// a type-erased payload slot.
//
// The decode methods are implemented on pointer receivers and fill the
// receiver in place. The [Unpacker] lets a variant decode nested
// payloads of its own (for example the constituent keys of a multisig
// key) without reaching for global state.
type Packable interface {
	// TypeURL returns the canonical registered name of the variant,
	// e.g. "/cosmos.bank.v1beta1.MsgSend".
	TypeURL() string

	DocumentMarshaler
	WireMarshaler

	FromDocument(u Unpacker, doc Document) error
	FromWire(u Unpacker, bz []byte) error
}

// Msg is an opaque transaction message.
type Msg interface {
	Packable
}

// PublicKey is an opaque public key. Cryptographic validation is the
// concern of the key implementation, not of the codec.
type PublicKey interface {
	Packable
}

// Unpacker recovers polymorphic values from their type-erased forms.
// Implemented by types.InterfaceRegistry.
type Unpacker interface {
	UnpackMsg(typeURL string, value []byte) (Msg, error)
	UnpackPublicKey(typeURL string, value []byte) (PublicKey, error)
	MsgFromDocument(doc Document) (Msg, error)
	PublicKeyFromDocument(doc Document) (PublicKey, error)
}

// Connection is a transport-agnostic connection to a codec service.
// Both the gRPC client and the in-process adapter implement it.
//
// Documents cross the connection as JSON bytes.
type Connection interface {
	// EncodeTx converts a transaction document to wire bytes.
	EncodeTx(ctx context.Context, req EncodeTxRequest) (EncodeTxResponse, error)

	// DecodeTx converts transaction wire bytes to a document.
	DecodeTx(ctx context.Context, req DecodeTxRequest) (DecodeTxResponse, error)

	// DecodeTxInfo converts a binary transaction receipt to a document.
	DecodeTxInfo(ctx context.Context, req DecodeTxInfoRequest) (DecodeTxInfoResponse, error)

	// ParseLogs parses a raw log and returns its event index.
	ParseLogs(ctx context.Context, req ParseLogsRequest) (ParseLogsResponse, error)

	// Close terminates the connection.
	Close() error
}
