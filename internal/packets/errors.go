package packets

import (
	"errors"
	"fmt"
)

var (
	// ErrEndOfStream is returned by every read primitive when the bytes it needs
	// have not arrived yet. It means "try again with more data", never that the
	// input is wrong.
	ErrEndOfStream = errors.New("end of stream")

	// ErrMalformedPacket is wrapped by every error caused by invalid bytes.
	ErrMalformedPacket = errors.New("malformed packet")

	// ErrPacketTooLarge is returned when a fixed header announces a remaining
	// length above the buffer's frame limit. It also matches ErrMalformedPacket.
	ErrPacketTooLarge = fmt.Errorf("packet too large: %w", ErrMalformedPacket)
)

// malformed builds an error wrapping ErrMalformedPacket.
func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedPacket, fmt.Sprintf(format, args...))
}
