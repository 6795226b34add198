package packets

import (
	"encoding/binary"
	"fmt"
)

// SubackPacket represents an MQTT SUBACK control packet.
type SubackPacket struct {
	PacketID    uint16
	ReturnCodes []uint8
}

// Type returns the packet type.
func (p *SubackPacket) Type() uint8 {
	return SUBACK
}

// Encode serializes the SUBACK packet into dst.
func (p *SubackPacket) Encode(dst []byte) ([]byte, error) {
	header := FixedHeader{
		PacketType:      SUBACK,
		RemainingLength: 2 + len(p.ReturnCodes),
	}
	dst, err := header.appendBytes(dst)
	if err != nil {
		return dst, err
	}

	dst = binary.BigEndian.AppendUint16(dst, p.PacketID)
	return append(dst, p.ReturnCodes...), nil
}

// Write appends the SUBACK frame to b.
func (p *SubackPacket) Write(b *Buffer) error {
	return writePacket(b, p)
}

// Read decodes a SUBACK frame from b.
func (p *SubackPacket) Read(b *Buffer) error {
	return readFrame(b, SUBACK, p.decode)
}

func (p *SubackPacket) decode(r *Buffer, _ FixedHeader) error {
	id, err := readPacketID(r)
	if err != nil {
		return fmt.Errorf("failed to decode packet ID: %w", err)
	}
	p.PacketID = id

	// Return codes (rest of the frame)
	if r.Remaining() == 0 {
		return malformed("SUBACK without return codes")
	}
	codes, _ := r.ReadBytes(r.Remaining())
	for _, code := range codes {
		switch code {
		case SubackQoS0, SubackQoS1, SubackQoS2, SubackFailure:
		default:
			return malformed("SUBACK return code 0x%X", code)
		}
	}
	p.ReturnCodes = make([]uint8, len(codes))
	copy(p.ReturnCodes, codes)

	return nil
}
