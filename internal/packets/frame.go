package packets

import (
	"errors"
)

// bodyDecoder decodes a frame body. r holds exactly the remaining length bytes.
type bodyDecoder func(r *Buffer, h FixedHeader) error

// readFrame reads a fixed header and the complete body behind it, checks the
// header against packetType, then hands the body to decode.
//
// The body is decoded from its own bounded Buffer: once the frame is complete,
// a body that runs out of bytes is malformed instead of incomplete, and a bad
// body never consumes bytes of the next frame.
func readFrame(b *Buffer, packetType uint8, decode bodyDecoder) error {
	h, err := ReadFixedHeader(b)
	if err != nil {
		return err
	}

	// The header is only judged once the whole frame is buffered, so a
	// rejected frame is dropped in one piece.
	data, err := b.ReadBytes(h.RemainingLength)
	if err != nil {
		return err
	}
	if h.PacketType != packetType {
		return malformed("packet type %d, want %s", h.PacketType, PacketNames[packetType])
	}
	if err := h.validateFlags(); err != nil {
		return err
	}

	body := NewBuffer(data)
	if err := decode(body, h); err != nil {
		if errors.Is(err, ErrEndOfStream) {
			return malformed("%s body truncated: %v", PacketNames[packetType], err)
		}
		return err
	}
	if body.Remaining() > 0 {
		return malformed("%d unexpected trailing bytes in %s", body.Remaining(), PacketNames[packetType])
	}
	return nil
}

// writePacket encodes p into a pooled scratch buffer and appends it to b.
func writePacket(b *Buffer, p Encoder) error {
	bufPtr := GetBuffer(4096)
	defer PutBuffer(bufPtr)

	data, err := p.Encode((*bufPtr)[:0])
	if err != nil {
		return err
	}
	_, err = b.Write(data)
	return err
}

// readPacketID reads a non-zero packet identifier.
func readPacketID(r *Buffer) (uint16, error) {
	id, err := r.ReadUint16()
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, malformed("packet identifier 0")
	}
	return id, nil
}

// encodeEmpty encodes a packet that has no variable header or payload.
func encodeEmpty(dst []byte, packetType uint8) ([]byte, error) {
	header := FixedHeader{PacketType: packetType}
	return header.appendBytes(dst)
}

// encodeAck encodes a packet whose only field is a packet identifier.
func encodeAck(dst []byte, packetType, flags uint8, packetID uint16) ([]byte, error) {
	header := FixedHeader{
		PacketType:      packetType,
		Flags:           flags,
		RemainingLength: 2,
	}
	dst, err := header.appendBytes(dst)
	if err != nil {
		return dst, err
	}
	return append(dst, byte(packetID>>8), byte(packetID)), nil
}
