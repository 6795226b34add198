package packets

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// PublishPacket represents an MQTT PUBLISH control packet.
type PublishPacket struct {
	// Fixed header flags
	Dup    bool
	QoS    uint8
	Retain bool

	// Variable header
	Topic    string
	PacketID uint16 // Only present if QoS > 0

	// Payload
	Payload []byte
}

// Type returns the packet type.
func (p *PublishPacket) Type() uint8 {
	return PUBLISH
}

// Encode serializes the PUBLISH packet into dst.
func (p *PublishPacket) Encode(dst []byte) ([]byte, error) {
	if p.QoS > QoS2 {
		return dst, fmt.Errorf("invalid QoS %d", p.QoS)
	}
	if err := checkFieldLength("topic", len(p.Topic)); err != nil {
		return dst, err
	}

	// 1. Calculate variable header length
	variableHeaderLen := 2 + len(p.Topic)
	if p.QoS > 0 {
		variableHeaderLen += 2
	}

	// 2. Write fixed header
	var flags uint8
	if p.Dup {
		flags |= 0x08
	}
	flags |= (p.QoS & 0x03) << 1
	if p.Retain {
		flags |= 0x01
	}

	header := FixedHeader{
		PacketType:      PUBLISH,
		Flags:           flags,
		RemainingLength: variableHeaderLen + len(p.Payload),
	}
	dst, err := header.appendBytes(dst)
	if err != nil {
		return dst, err
	}

	// 3. Write variable header
	dst = appendString(dst, p.Topic)
	if p.QoS > 0 {
		dst = binary.BigEndian.AppendUint16(dst, p.PacketID)
	}

	// 4. Write payload
	return append(dst, p.Payload...), nil
}

// Write appends the PUBLISH frame to b.
func (p *PublishPacket) Write(b *Buffer) error {
	return writePacket(b, p)
}

// Read decodes a PUBLISH frame from b.
func (p *PublishPacket) Read(b *Buffer) error {
	return readFrame(b, PUBLISH, p.decode)
}

func (p *PublishPacket) decode(r *Buffer, h FixedHeader) error {
	// Extract flags from fixed header
	p.Dup = (h.Flags & 0x08) != 0
	p.QoS = (h.Flags >> 1) & 0x03
	p.Retain = (h.Flags & 0x01) != 0

	if p.Dup && p.QoS == QoS0 {
		return malformed("DUP flag set on QoS 0 PUBLISH")
	}

	// Topic name
	topic, err := r.ReadString()
	if err != nil {
		return fmt.Errorf("failed to decode topic: %w", err)
	}
	if strings.ContainsAny(topic, "+#") {
		return malformed("topic name %q contains wildcard", topic)
	}
	p.Topic = topic

	// Packet ID (only for QoS > 0)
	if p.QoS > 0 {
		if p.PacketID, err = readPacketID(r); err != nil {
			return fmt.Errorf("failed to decode packet ID: %w", err)
		}
	}

	// Payload (rest of the frame). Copy because the buffer storage is reused.
	rest, _ := r.ReadBytes(r.Remaining())
	p.Payload = make([]byte, len(rest))
	copy(p.Payload, rest)

	return nil
}
