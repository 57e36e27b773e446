package pipeline

import (
	"fmt"
	"strings"

	encerrors "github.com/yourusername/encdec/pkg/errors"
)

// Mode selects the pipeline direction. The zero value is not a valid mode.
type Mode int

const (
	// Encode compresses (optionally) and then base64-encodes.
	Encode Mode = iota + 1
	// Decode base64-decodes and then decompresses (optionally).
	Decode
)

// String returns "encode" or "decode".
func (m Mode) String() string {
	switch m {
	case Encode:
		return "encode"
	case Decode:
		return "decode"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m is Encode or Decode.
func (m Mode) Valid() bool {
	return m == Encode || m == Decode
}

// ParseMode converts "encode" or "decode" (any case, surrounding space
// ignored) into a Mode. Anything else fails with InvalidMode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "encode":
		return Encode, nil
	case "decode":
		return Decode, nil
	default:
		return 0, encerrors.New(encerrors.KindInvalidMode, "pipeline.mode",
			fmt.Sprintf("unknown mode %q, expected \"encode\" or \"decode\"", s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, encerrors.New(encerrors.KindInvalidMode, "pipeline.mode", m.String())
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
