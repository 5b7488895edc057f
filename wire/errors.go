// Package wire implements the MQTT 3.1.1 control packet codec: byte-exact
// encoding and decoding with no I/O and no session state.
package wire

import "errors"

var (
	// ErrTooLarge indicates a Remaining Length value above 268,435,455,
	// the largest value four Variable Byte Integer bytes can encode.
	ErrTooLarge = errors.New("wire: remaining length exceeds 268,435,455")

	// ErrMalformed indicates the input can never become valid regardless
	// of how many more bytes arrive (e.g. a fifth continuation byte).
	ErrMalformed = errors.New("wire: malformed packet")

	// ErrOverflow indicates a serializer's output would not fit in the
	// caller-supplied buffer.
	ErrOverflow = errors.New("wire: output exceeds buffer capacity")
)
