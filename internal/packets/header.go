package packets

import "fmt"

// FixedHeader represents the fixed header present in all MQTT control packets.
// Format: [PacketType + Flags (1 byte)][Remaining Length (1-4 bytes)]
type FixedHeader struct {
	PacketType      uint8
	Flags           uint8
	RemainingLength int
}

// appendBytes appends the encoded header to dst.
func (h *FixedHeader) appendBytes(dst []byte) ([]byte, error) {
	if h.RemainingLength < 0 || h.RemainingLength > MaxRemainingLength {
		return dst, fmt.Errorf("%s remaining length %d out of range", PacketNames[h.PacketType], h.RemainingLength)
	}
	dst = append(dst, (h.PacketType<<4)|(h.Flags&0x0F))
	return appendVarInt(dst, h.RemainingLength), nil
}

// validateFlags enforces the reserved flag values of MQTT v3.1.1 section 2.2.2.
func (h *FixedHeader) validateFlags() error {
	switch h.PacketType {
	case PUBLISH:
		if (h.Flags>>1)&0x03 == 0x03 {
			return malformed("PUBLISH with QoS 3")
		}
		return nil
	case PUBREL, SUBSCRIBE, UNSUBSCRIBE:
		if h.Flags != 0x02 {
			return malformed("%s fixed header flags 0x%X, want 0x2", PacketNames[h.PacketType], h.Flags)
		}
		return nil
	default:
		if h.Flags != 0 {
			return malformed("%s fixed header flags 0x%X, want 0x0", PacketNames[h.PacketType], h.Flags)
		}
		return nil
	}
}

// ReadFixedHeader reads a fixed header at the cursor of b.
// It returns ErrEndOfStream if the header is incomplete and ErrPacketTooLarge
// if the remaining length is above b.MaxFrame().
func ReadFixedHeader(b *Buffer) (FixedHeader, error) {
	first, err := b.ReadByte()
	if err != nil {
		return FixedHeader{}, err
	}

	remainingLength, err := b.ReadVarInt()
	if err != nil {
		return FixedHeader{}, fmt.Errorf("failed to decode remaining length: %w", err)
	}

	h := FixedHeader{
		PacketType:      first >> 4,
		Flags:           first & 0x0F,
		RemainingLength: remainingLength,
	}

	if limit := b.MaxFrame(); remainingLength > limit {
		return h, fmt.Errorf("%w: remaining length %d exceeds maximum %d", ErrPacketTooLarge, remainingLength, limit)
	}

	return h, nil
}
