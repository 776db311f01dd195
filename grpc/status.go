package txgrpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/blockberries/txcodec"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errorDomain tags the ErrorInfo details this package attaches.
const errorDomain = "txcodec"

// Error reasons carried in ErrorInfo.Reason.
const (
	reasonDecode       = "DECODE"
	reasonUnrecognized = "UNRECOGNIZED_TYPE"
	reasonInvariant    = "INVARIANT"
	reasonTooLarge     = "TOO_LARGE"
	reasonClosed       = "CLOSED"
)

// toStatus converts a codec error to a gRPC status error. The typed
// error travels as an ErrorInfo detail so the client can rebuild it.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}

	var (
		code codes.Code
		info = &errdetails.ErrorInfo{Domain: errorDomain, Metadata: map[string]string{}}
	)
	if d, ok := txcodec.IsDecodeError(err); ok {
		// A decode error may wrap an unrecognized type; the type is the
		// more useful of the two to the caller.
		if u, ok := txcodec.IsUnrecognizedType(err); ok {
			code, info.Reason = codes.NotFound, reasonUnrecognized
			info.Metadata["kind"], info.Metadata["type_url"] = u.Kind, u.TypeURL
		} else {
			code, info.Reason = codes.InvalidArgument, reasonDecode
			info.Metadata["field"], info.Metadata["reason"] = d.Field, d.Reason
		}
	} else if u, ok := txcodec.IsUnrecognizedType(err); ok {
		code, info.Reason = codes.NotFound, reasonUnrecognized
		info.Metadata["kind"], info.Metadata["type_url"] = u.Kind, u.TypeURL
	} else if i, ok := txcodec.IsInvariantViolation(err); ok {
		code, info.Reason = codes.InvalidArgument, reasonInvariant
		info.Metadata["entity"], info.Metadata["reason"] = i.Entity, i.Reason
	} else if errors.Is(err, txcodec.ErrTooLarge) {
		code, info.Reason = codes.ResourceExhausted, reasonTooLarge
	} else if errors.Is(err, txcodec.ErrClosed) {
		code, info.Reason = codes.Unavailable, reasonClosed
	} else {
		return status.Error(codes.Internal, err.Error())
	}

	st, derr := status.New(code, err.Error()).WithDetails(info)
	if derr != nil {
		return status.Error(code, err.Error())
	}
	return st.Err()
}

// fromStatus rebuilds the typed codec error carried by a status error.
// Errors without codec details are returned unchanged.
func fromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != errorDomain {
			continue
		}
		md := info.GetMetadata()
		switch info.GetReason() {
		case reasonDecode:
			return txcodec.NewDecodeError(md["field"], md["reason"])
		case reasonUnrecognized:
			return txcodec.NewUnrecognizedTypeError(md["kind"], md["type_url"])
		case reasonInvariant:
			return txcodec.NewInvariantError(md["entity"], md["reason"])
		case reasonTooLarge:
			return fmt.Errorf("%w: %s", txcodec.ErrTooLarge, st.Message())
		case reasonClosed:
			return fmt.Errorf("%w: remote service", txcodec.ErrClosed)
		}
	}
	return err
}
