package server

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/blockberries/txcodec"
	"github.com/blockberries/txcodec/docfmt"
	"github.com/blockberries/txcodec/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultMaxMessageBytes bounds the size of a single request payload.
const DefaultMaxMessageBytes = 4 << 20

// Compile-time interface check.
var _ txcodec.Connection = (*Service)(nil)

// Service implements the codec operations over one interface registry.
// Safe for concurrent use.
type Service struct {
	reg      *types.InterfaceRegistry
	log      zerolog.Logger
	guard    *LifecycleGuard
	maxBytes int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards all output.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMaxMessageBytes bounds request payloads. Values <= 0 select
// DefaultMaxMessageBytes.
func WithMaxMessageBytes(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// New creates a service decoding against reg.
func New(reg *types.InterfaceRegistry, opts ...Option) *Service {
	s := &Service{
		reg:      reg,
		log:      zerolog.Nop(),
		guard:    NewLifecycleGuard(),
		maxBytes: DefaultMaxMessageBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the registry the service decodes against.
func (s *Service) Registry() *types.InterfaceRegistry { return s.reg }

// call admits one request, logs it, and logs its failure.
func (s *Service) call(ctx context.Context, method string, size int, fn func(log zerolog.Logger) error) error {
	if err := s.guard.Enter(); err != nil {
		return err
	}
	defer s.guard.Exit()

	log := s.log.With().Str("request_id", uuid.NewString()).Str("method", method).Logger()
	if err := ctx.Err(); err != nil {
		return err
	}
	if size > s.maxBytes {
		err := fmt.Errorf("%w: %d bytes exceeds limit of %d", txcodec.ErrTooLarge, size, s.maxBytes)
		log.Warn().Err(err).Msg("request rejected")
		return err
	}

	start := time.Now()
	log.Debug().Int("bytes", size).Msg("request")
	if err := fn(log); err != nil {
		ev := log.Error()
		if IsClientError(err) {
			ev = log.Warn()
		}
		ev.Err(err).Dur("elapsed", time.Since(start)).Msg("request failed")
		return err
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("request done")
	return nil
}

// EncodeTx converts a JSON transaction document to wire bytes.
func (s *Service) EncodeTx(ctx context.Context, req txcodec.EncodeTxRequest) (txcodec.EncodeTxResponse, error) {
	var resp txcodec.EncodeTxResponse
	err := s.call(ctx, "EncodeTx", len(req.Document), func(zerolog.Logger) error {
		doc, err := docfmt.Unmarshal(docfmt.JSON, req.Document)
		if err != nil {
			return err
		}
		tx, err := types.TxFromDocument(s.reg, doc)
		if err != nil {
			return err
		}
		bz, err := tx.ToWire()
		if err != nil {
			return err
		}
		resp = txcodec.EncodeTxResponse{TxBytes: bz, TxHash: types.TxHash(bz)}
		return nil
	})
	return resp, err
}

// DecodeTx converts transaction wire bytes to a JSON document.
func (s *Service) DecodeTx(ctx context.Context, req txcodec.DecodeTxRequest) (txcodec.DecodeTxResponse, error) {
	var resp txcodec.DecodeTxResponse
	err := s.call(ctx, "DecodeTx", len(req.TxBytes), func(zerolog.Logger) error {
		tx, err := types.TxFromWire(s.reg, req.TxBytes)
		if err != nil {
			return err
		}
		doc, err := tx.ToDocument()
		if err != nil {
			return err
		}
		data, err := docfmt.Marshal(docfmt.JSON, doc)
		if err != nil {
			return err
		}
		resp = txcodec.DecodeTxResponse{Document: data, TxHash: types.TxHash(req.TxBytes)}
		return nil
	})
	return resp, err
}

// DecodeTxInfo converts a binary TxResponse to a JSON document.
func (s *Service) DecodeTxInfo(ctx context.Context, req txcodec.DecodeTxInfoRequest) (txcodec.DecodeTxInfoResponse, error) {
	var resp txcodec.DecodeTxInfoResponse
	err := s.call(ctx, "DecodeTxInfo", len(req.Response), func(log zerolog.Logger) error {
		info, err := types.TxInfoFromWire(s.reg, req.Response)
		if err != nil {
			return err
		}
		doc, err := info.ToDocument()
		if err != nil {
			return err
		}
		data, err := docfmt.Marshal(docfmt.JSON, doc)
		if err != nil {
			return err
		}
		if info.Failed() {
			log.Debug().Uint32("code", *info.Code).Str("txhash", info.TxHash).Msg("receipt of failed transaction")
		}
		resp = txcodec.DecodeTxInfoResponse{Document: data, Failed: info.Failed()}
		return nil
	})
	return resp, err
}

// ParseLogs parses a raw_log string and indexes each message's events.
// Malformed records are skipped and reported in the response rather
// than failing the call.
func (s *Service) ParseLogs(ctx context.Context, req txcodec.ParseLogsRequest) (txcodec.ParseLogsResponse, error) {
	var resp txcodec.ParseLogsResponse
	err := s.call(ctx, "ParseLogs", len(req.RawLog), func(log zerolog.Logger) error {
		logs, err := types.ParseRawLog(req.RawLog)
		if err != nil && logs == nil {
			return err
		}
		if err != nil {
			errs := splitErrors(err)
			log.Warn().Int("skipped", len(errs)).Err(err).Msg("malformed log records")
			for _, e := range errs {
				resp.Errors = append(resp.Errors, e.Error())
			}
		}
		resp.HasLogs = logs != nil
		for _, l := range logs {
			resp.Logs = append(resp.Logs, IndexLog(l))
		}
		return nil
	})
	return resp, err
}

// IndexLog flattens a log's event index into entries ordered by event
// type, then attribute key.
func IndexLog(l types.TxLog) txcodec.IndexedLog {
	out := txcodec.IndexedLog{MsgIndex: l.MsgIndex(), Log: l.Log()}
	byType := l.EventsByType()
	for _, typ := range l.EventTypes() {
		keys := make([]string, 0, len(byType[typ]))
		for k := range byType[typ] {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			out.Index = append(out.Index, txcodec.IndexEntry{Type: typ, Key: k, Values: byType[typ][k]})
		}
	}
	return out
}

func splitErrors(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// Close stops admitting calls and waits for the ones in flight.
func (s *Service) Close() error {
	s.guard.Close()
	return nil
}

// IsClosed reports whether Close has been called.
func (s *Service) IsClosed() bool { return !s.guard.IsServing() }

// IsClientError reports whether err was caused by the request rather
// than by the service.
func IsClientError(err error) bool {
	var (
		de *txcodec.DecodeError
		ut *txcodec.UnrecognizedTypeError
		ie *txcodec.InvariantError
	)
	return errors.As(err, &de) || errors.As(err, &ut) || errors.As(err, &ie) || errors.Is(err, txcodec.ErrTooLarge)
}
