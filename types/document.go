package types

import (
	"encoding/base64"
	"math"
	"reflect"
	"strconv"

	"github.com/blockberries/txcodec"
	"github.com/spf13/cast"
)

// docReader reads the fields of one document. Like wireReader the
// first error is sticky and later accessors return zero values.
type docReader struct {
	entity string
	doc    txcodec.Document
	err    error
}

func readDocument(entity string, doc txcodec.Document) *docReader {
	return &docReader{entity: entity, doc: doc}
}

func (r *docReader) path(key string) string { return r.entity + "." + key }

func (r *docReader) lookup(key string, required bool) (any, bool) {
	if r.err != nil {
		return nil, false
	}
	v, ok := r.doc[key]
	if !ok || v == nil {
		if required {
			r.err = txcodec.NewDecodeError(r.path(key), "missing")
		}
		return nil, false
	}
	return v, true
}

func (r *docReader) invalid(key, reason string, err error) {
	if r.err == nil {
		r.err = &txcodec.DecodeError{Field: r.path(key), Reason: reason, Err: err}
	}
}

// fail records an error from decoding the nested value at key. The
// nested error stays reachable through errors.As.
func (r *docReader) fail(key string, err error) {
	if err != nil {
		r.invalid(key, "invalid", err)
	}
}

func (r *docReader) str(key string, required bool) string {
	v, ok := r.lookup(key, required)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.invalid(key, "not a string", nil)
		return ""
	}
	return s
}

func (r *docReader) uint64(key string, required bool) uint64 {
	v, ok := r.lookup(key, required)
	if !ok {
		return 0
	}
	n, err := toUint64(v)
	if err != nil {
		r.invalid(key, "not an unsigned integer", err)
	}
	return n
}

func (r *docReader) int64(key string, required bool) int64 {
	v, ok := r.lookup(key, required)
	if !ok {
		return 0
	}
	n, err := toInt64(v)
	if err != nil {
		r.invalid(key, "not an integer", err)
	}
	return n
}

func (r *docReader) uint32(key string, required bool) uint32 {
	v, ok := r.lookup(key, required)
	if !ok {
		return 0
	}
	n, err := toUint64(v)
	if err == nil && n > math.MaxUint32 {
		err = strconv.ErrRange
	}
	if err != nil {
		r.invalid(key, "not a 32-bit unsigned integer", err)
		return 0
	}
	return uint32(n)
}

func (r *docReader) bool(key string) bool {
	v, ok := r.lookup(key, false)
	if !ok {
		return false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		r.invalid(key, "not a boolean", err)
	}
	return b
}

// bytes reads a standard base64 string. Empty decodes to nil.
func (r *docReader) bytes(key string, required bool) []byte {
	s := r.str(key, required)
	if s == "" {
		return nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		r.invalid(key, "not base64", err)
		return nil
	}
	return b
}

func (r *docReader) sub(key string, required bool) (txcodec.Document, bool) {
	v, ok := r.lookup(key, required)
	if !ok {
		return nil, false
	}
	d, ok := asDocument(v)
	if !ok {
		r.invalid(key, "not an object", nil)
		return nil, false
	}
	return d, true
}

func (r *docReader) list(key string, required bool) ([]any, bool) {
	v, ok := r.lookup(key, required)
	if !ok {
		return nil, false
	}
	l, ok := asList(v)
	if !ok {
		r.invalid(key, "not a list", nil)
		return nil, false
	}
	return l, true
}

// docs reads a list of objects, calling fn for each element. The
// element path is key[i].
func (r *docReader) docs(key string, required bool, fn func(i int, d txcodec.Document) error) bool {
	l, ok := r.list(key, required)
	if !ok {
		return false
	}
	for i, item := range l {
		d, ok := asDocument(item)
		if !ok {
			r.invalid(key+"["+strconv.Itoa(i)+"]", "not an object", nil)
			return true
		}
		if err := fn(i, d); err != nil {
			r.fail(key+"["+strconv.Itoa(i)+"]", err)
			return true
		}
	}
	return true
}

func (r *docReader) Err() error { return r.err }

func asDocument(v any) (txcodec.Document, bool) {
	switch d := v.(type) {
	case map[string]any:
		return d, true
	case map[any]any:
		out := make(txcodec.Document, len(d))
		for k, val := range d {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}

func asList(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// toUint64 accepts decimal strings (including json.Number and other
// string-kinded values) and native numerics.
func toUint64(v any) (uint64, error) {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return strconv.ParseUint(rv.String(), 10, 64)
	}
	return cast.ToUint64E(v)
}

func toInt64(v any) (int64, error) {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return strconv.ParseInt(rv.String(), 10, 64)
	}
	return cast.ToInt64E(v)
}

func encodeBytes(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func formatUint64(v uint64) string { return strconv.FormatUint(v, 10) }

func formatInt64(v int64) string { return strconv.FormatInt(v, 10) }

// documentList maps items to a document list, stopping at the first
// error.
func documentList[T any](items []T, fn func(T) (txcodec.Document, error)) ([]any, error) {
	out := make([]any, 0, len(items))
	for _, item := range items {
		d, err := fn(item)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// unwrapAmino strips a legacy amino JSON envelope {"type": ..., "value": {...}}.
// Other documents are returned unchanged.
func unwrapAmino(doc txcodec.Document) txcodec.Document {
	if len(doc) != 2 {
		return doc
	}
	if _, ok := doc["type"].(string); !ok {
		return doc
	}
	if inner, ok := asDocument(doc["value"]); ok {
		return inner
	}
	return doc
}
