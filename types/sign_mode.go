package types

import (
	"fmt"
	"math"
	"strconv"
)

// SignMode selects how a signer produced its signature.
type SignMode int32

const (
	SignModeUnspecified     SignMode = 0
	SignModeDirect          SignMode = 1
	SignModeTextual         SignMode = 2
	SignModeDirectAux       SignMode = 3
	SignModeLegacyAminoJSON SignMode = 127
	SignModeEIP191          SignMode = 191
)

var signModeNames = map[SignMode]string{
	SignModeUnspecified:     "SIGN_MODE_UNSPECIFIED",
	SignModeDirect:          "SIGN_MODE_DIRECT",
	SignModeTextual:         "SIGN_MODE_TEXTUAL",
	SignModeDirectAux:       "SIGN_MODE_DIRECT_AUX",
	SignModeLegacyAminoJSON: "SIGN_MODE_LEGACY_AMINO_JSON",
	SignModeEIP191:          "SIGN_MODE_EIP_191",
}

var signModeValues = func() map[string]SignMode {
	m := make(map[string]SignMode, len(signModeNames))
	for k, v := range signModeNames {
		m[v] = k
	}
	return m
}()

// String returns the enum name, or the number for values this package
// does not know.
func (m SignMode) String() string {
	if s, ok := signModeNames[m]; ok {
		return s
	}
	return strconv.FormatInt(int64(m), 10)
}

// Known reports whether m is one of the named sign modes.
func (m SignMode) Known() bool {
	_, ok := signModeNames[m]
	return ok
}

// documentValue is the enum name for known modes and the bare number
// otherwise, so unknown values survive a round trip.
func (m SignMode) documentValue() any {
	if s, ok := signModeNames[m]; ok {
		return s
	}
	return int64(m)
}

// ParseSignMode accepts an enum name or a number.
func ParseSignMode(v any) (SignMode, error) {
	if s, ok := v.(string); ok {
		if m, ok := signModeValues[s]; ok {
			return m, nil
		}
	}
	n, err := toInt64(v)
	if err != nil || n < math.MinInt32 || n > math.MaxInt32 {
		return 0, fmt.Errorf("unknown sign mode %v", v)
	}
	return SignMode(n), nil
}
