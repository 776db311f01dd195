package txcodec

import (
	"errors"
	"fmt"
)

// DecodeError signals malformed or incomplete document or wire input.
// Field names the offending field, qualified by its message
// (e.g. "TxBody.messages[2]").
type DecodeError struct {
	Field  string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Field, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NewDecodeError creates a new DecodeError.
func NewDecodeError(field, reason string) *DecodeError {
	return &DecodeError{Field: field, Reason: reason}
}

// IsDecodeError checks whether an error is a DecodeError and returns it.
func IsDecodeError(err error) (*DecodeError, bool) {
	var d *DecodeError
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// UnrecognizedTypeError signals a type URL that is not in the
// registry consulted. It is recoverable: callers may skip the payload
// or surface the error.
type UnrecognizedTypeError struct {
	// Kind is the registry family, "Msg" or "PublicKey".
	Kind    string
	TypeURL string
}

func (e *UnrecognizedTypeError) Error() string {
	return fmt.Sprintf("unrecognized %s type %q", e.Kind, e.TypeURL)
}

// NewUnrecognizedTypeError creates a new UnrecognizedTypeError.
func NewUnrecognizedTypeError(kind, typeURL string) *UnrecognizedTypeError {
	return &UnrecognizedTypeError{Kind: kind, TypeURL: typeURL}
}

// IsUnrecognizedType checks whether an error is an
// UnrecognizedTypeError and returns it.
func IsUnrecognizedType(err error) (*UnrecognizedTypeError, bool) {
	var u *UnrecognizedTypeError
	if errors.As(err, &u) {
		return u, true
	}
	return nil, false
}

// InvariantError signals a structurally impossible value, such as a
// transaction whose signature count differs from its signer count.
type InvariantError struct {
	Entity string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Entity, e.Reason)
}

// NewInvariantError creates a new InvariantError.
func NewInvariantError(entity, reason string) *InvariantError {
	return &InvariantError{Entity: entity, Reason: reason}
}

// IsInvariantViolation checks whether an error is an InvariantError
// and returns it.
func IsInvariantViolation(err error) (*InvariantError, bool) {
	var i *InvariantError
	if errors.As(err, &i) {
		return i, true
	}
	return nil, false
}

// ErrClosed is returned by calls on a closed service or connection.
var ErrClosed = errors.New("txcodec: closed")

// ErrTooLarge is returned for inputs above the configured size limit.
var ErrTooLarge = errors.New("txcodec: input too large")
