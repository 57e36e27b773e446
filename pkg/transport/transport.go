// Package transport converts arbitrary bytes to and from padded standard
// base64 text (RFC 4648 section 4), the representation encdec uses to carry
// binary data inside forms and markup.
//
// Input text is validated strictly before decoding: whitespace, line breaks,
// characters outside the 64-symbol alphabet and misplaced padding are all
// rejected with a MalformedTransportInput error.
package transport

import (
	"fmt"
	"unicode/utf8"

	"github.com/cloudwego/base64x"

	encerrors "github.com/yourusername/encdec/pkg/errors"
)

// Padding is the marker appended to a final group of one or two bytes.
const Padding = '='

// Alphabet lists the 64 symbols in index order.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

const (
	opDecode   = "transport.decode"
	opValidate = "transport.validate"
)

var symbols = func() (table [256]bool) {
	for i := 0; i < len(Alphabet); i++ {
		table[Alphabet[i]] = true
	}
	return table
}()

// Encode returns the padded base64 form of raw. It never fails; empty input
// yields an empty string.
func Encode(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	return base64x.StdEncoding.EncodeToString(raw)
}

// EncodedLen returns the length of Encode's output for n input bytes.
func EncodedLen(n int) int {
	return base64x.StdEncoding.EncodedLen(n)
}

// Decode reverses Encode. It fails with MalformedTransportInput when text is
// not a well-formed padded base64 string.
func Decode(text string) ([]byte, error) {
	if err := validate(opDecode, text); err != nil {
		return nil, err
	}
	if text == "" {
		return []byte{}, nil
	}

	raw, err := base64x.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, encerrors.Wrap(encerrors.KindMalformedTransportInput, opDecode,
			fmt.Sprintf("invalid base64 input: %v", err), err)
	}
	return raw, nil
}

// Validate checks that text is structurally valid padded base64 without
// decoding it.
func Validate(text string) error {
	return validate(opValidate, text)
}

func validate(op, text string) error {
	n := len(text)
	if n%4 != 0 {
		return encerrors.New(encerrors.KindMalformedTransportInput, op,
			fmt.Sprintf("input length %d is not a multiple of 4", n))
	}

	padded := false
	for i := 0; i < n; i++ {
		c := text[i]
		if c == Padding {
			// Only the last two positions of the final group may hold padding.
			if i < n-2 {
				return encerrors.New(encerrors.KindMalformedTransportInput, op,
					fmt.Sprintf("padding at offset %d is not at the end of the input", i))
			}
			padded = true
			continue
		}
		if padded {
			return encerrors.New(encerrors.KindMalformedTransportInput, op,
				fmt.Sprintf("data character after padding at offset %d", i))
		}
		if !symbols[c] {
			r, _ := utf8.DecodeRuneInString(text[i:])
			return encerrors.New(encerrors.KindMalformedTransportInput, op,
				fmt.Sprintf("illegal character %q at offset %d", r, i))
		}
	}
	return nil
}
