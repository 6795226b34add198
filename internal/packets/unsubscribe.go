package packets

import (
	"encoding/binary"
	"fmt"
)

// UnsubscribePacket represents an MQTT UNSUBSCRIBE control packet.
type UnsubscribePacket struct {
	PacketID uint16
	Topics   []string
}

// Type returns the packet type.
func (p *UnsubscribePacket) Type() uint8 {
	return UNSUBSCRIBE
}

// Encode serializes the UNSUBSCRIBE packet into dst.
func (p *UnsubscribePacket) Encode(dst []byte) ([]byte, error) {
	payloadLen := 0
	for _, topic := range p.Topics {
		if err := checkFieldLength("topic filter", len(topic)); err != nil {
			return dst, err
		}
		payloadLen += 2 + len(topic)
	}

	// UNSUBSCRIBE has fixed header flags = 0x02 (bit 1 set)
	header := FixedHeader{
		PacketType:      UNSUBSCRIBE,
		Flags:           0x02,
		RemainingLength: 2 + payloadLen,
	}
	dst, err := header.appendBytes(dst)
	if err != nil {
		return dst, err
	}

	dst = binary.BigEndian.AppendUint16(dst, p.PacketID)
	for _, topic := range p.Topics {
		dst = appendString(dst, topic)
	}

	return dst, nil
}

// Write appends the UNSUBSCRIBE frame to b.
func (p *UnsubscribePacket) Write(b *Buffer) error {
	return writePacket(b, p)
}

// Read decodes an UNSUBSCRIBE frame from b.
func (p *UnsubscribePacket) Read(b *Buffer) error {
	return readFrame(b, UNSUBSCRIBE, p.decode)
}

func (p *UnsubscribePacket) decode(r *Buffer, _ FixedHeader) error {
	id, err := readPacketID(r)
	if err != nil {
		return fmt.Errorf("failed to decode packet ID: %w", err)
	}
	p.PacketID = id

	// Topic filters
	for r.Remaining() > 0 {
		topic, err := r.ReadString()
		if err != nil {
			return fmt.Errorf("failed to decode topic filter: %w", err)
		}
		p.Topics = append(p.Topics, topic)
	}

	if len(p.Topics) == 0 {
		return malformed("UNSUBSCRIBE without topic filters")
	}
	return nil
}
