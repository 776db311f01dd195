// Package docfmt serializes transaction documents as JSON, YAML, or
// CBOR.
//
// Decoding normalizes every format to the shapes the model decoders
// accept: objects become map[string]any, lists []any, and JSON numbers
// json.Number so 64-bit integers keep their precision.
package docfmt

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/blockberries/txcodec"
	"github.com/fxamacker/cbor/v2"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// Format names a document serialization.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CBOR Format = "cbor"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, YAML, CBOR}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown document format %q", s)
}

var jsonAPI = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("docfmt: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("docfmt: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal serializes v, a document or a list of documents. JSON output
// has sorted keys; CBOR output uses core deterministic encoding.
func Marshal(f Format, v any) ([]byte, error) {
	switch f {
	case JSON:
		return jsonAPI.Marshal(v)
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case CBOR:
		return cborEnc.Marshal(v)
	}
	return nil, fmt.Errorf("unknown document format %q", f)
}

// MarshalIndent is Marshal with indented JSON. Other formats are
// unaffected.
func MarshalIndent(f Format, v any) ([]byte, error) {
	if f == JSON {
		return jsonAPI.MarshalIndent(v, "", "  ")
	}
	return Marshal(f, v)
}

// Unmarshal parses a single document.
func Unmarshal(f Format, data []byte) (txcodec.Document, error) {
	v, err := decode(f, data)
	if err != nil {
		return nil, err
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, txcodec.NewDecodeError("document", fmt.Sprintf("%s input is not an object", f))
	}
	return doc, nil
}

// UnmarshalList parses a list of documents, such as a raw log.
func UnmarshalList(f Format, data []byte) ([]any, error) {
	v, err := decode(f, data)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	l, ok := v.([]any)
	if !ok {
		return nil, txcodec.NewDecodeError("document", fmt.Sprintf("%s input is not a list", f))
	}
	return l, nil
}

func decode(f Format, data []byte) (any, error) {
	var v any
	switch f {
	case JSON:
		if err := jsonAPI.Unmarshal(data, &v); err != nil {
			return nil, &txcodec.DecodeError{Field: "document", Reason: "invalid json", Err: err}
		}
	case YAML:
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, &txcodec.DecodeError{Field: "document", Reason: "invalid yaml", Err: err}
		}
	case CBOR:
		if err := cborDec.Unmarshal(data, &v); err != nil {
			return nil, &txcodec.DecodeError{Field: "document", Reason: "invalid cbor", Err: err}
		}
	default:
		return nil, fmt.Errorf("unknown document format %q", f)
	}
	return v, nil
}
