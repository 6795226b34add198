package mqstream

import (
	"errors"
	"fmt"

	"github.com/gonzalop/mqstream/internal/packets"
)

// Errors reported by the decoder
var (
	// ErrEndOfStream means a frame is not complete yet. The decoder handles it
	// by waiting for more bytes; it is exported for custom Packet
	// implementations, whose Read must return it (possibly wrapped) when the
	// buffer runs out.
	ErrEndOfStream = packets.ErrEndOfStream

	// ErrMalformedPacket is wrapped by every error caused by invalid bytes in a
	// frame of a known type.
	ErrMalformedPacket = packets.ErrMalformedPacket

	// ErrPacketTooLarge is reported when a fixed header announces more bytes
	// than the configured maximum. It also matches ErrMalformedPacket.
	ErrPacketTooLarge = packets.ErrPacketTooLarge

	// ErrUnknownPacketType is reported for a type code with no registered
	// constructor.
	ErrUnknownPacketType = errors.New("unknown packet type")

	// ErrStreamCorrupt is returned by Decode once an unknown packet type was
	// seen under FailUnknown. The decoder stays in this state until Reset.
	ErrStreamCorrupt = errors.New("stream corrupt")

	// ErrNoErrorHandler is returned by NewDecoder without WithErrorHandler.
	ErrNoErrorHandler = errors.New("no error handler configured")
)

// DecodeError describes a frame the decoder could not decode.
type DecodeError struct {
	// PacketType is the type code of the first byte of the frame.
	PacketType uint8
	// Offset is the absolute stream offset of that byte.
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s (type %d) at offset %d: %v", PacketName(e.PacketType), e.PacketType, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives the decode errors of a Decoder. HandleDecodeError is
// called synchronously from Decode, with the decoder lock held; it must not
// call back into the same Decoder.
type ErrorHandler interface {
	HandleDecodeError(err *DecodeError)
}

// ErrorHandlerFunc adapts a function to the ErrorHandler interface.
type ErrorHandlerFunc func(err *DecodeError)

// HandleDecodeError calls f(err).
func (f ErrorHandlerFunc) HandleDecodeError(err *DecodeError) {
	f(err)
}
