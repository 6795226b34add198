package packets

import (
	"encoding/binary"
	"fmt"
)

// SubscribePacket represents an MQTT SUBSCRIBE control packet.
type SubscribePacket struct {
	PacketID uint16
	Topics   []string
	QoS      []uint8 // QoS level for each topic
}

// Type returns the packet type.
func (p *SubscribePacket) Type() uint8 {
	return SUBSCRIBE
}

// Encode serializes the SUBSCRIBE packet into dst.
func (p *SubscribePacket) Encode(dst []byte) ([]byte, error) {
	// 1. Calculate Payload Length
	payloadLen := 0
	for i, topic := range p.Topics {
		if err := checkFieldLength("topic filter", len(topic)); err != nil {
			return dst, err
		}
		if i < len(p.QoS) && p.QoS[i] > QoS2 {
			return dst, fmt.Errorf("invalid QoS %d for %q", p.QoS[i], topic)
		}
		payloadLen += 2 + len(topic) + 1 // Topic + Requested QoS
	}

	// 2. Write Fixed Header
	// SUBSCRIBE has fixed header flags = 0x02 (bit 1 set)
	header := FixedHeader{
		PacketType:      SUBSCRIBE,
		Flags:           0x02,
		RemainingLength: 2 + payloadLen,
	}
	dst, err := header.appendBytes(dst)
	if err != nil {
		return dst, err
	}

	// 3. Write Variable Header
	dst = binary.BigEndian.AppendUint16(dst, p.PacketID)

	// 4. Write Payload
	for i, topic := range p.Topics {
		qos := uint8(QoS0)
		if i < len(p.QoS) {
			qos = p.QoS[i]
		}
		dst = appendString(dst, topic)
		dst = append(dst, qos)
	}

	return dst, nil
}

// Write appends the SUBSCRIBE frame to b.
func (p *SubscribePacket) Write(b *Buffer) error {
	return writePacket(b, p)
}

// Read decodes a SUBSCRIBE frame from b.
func (p *SubscribePacket) Read(b *Buffer) error {
	return readFrame(b, SUBSCRIBE, p.decode)
}

func (p *SubscribePacket) decode(r *Buffer, _ FixedHeader) error {
	id, err := readPacketID(r)
	if err != nil {
		return fmt.Errorf("failed to decode packet ID: %w", err)
	}
	p.PacketID = id

	// Topic filters with requested QoS
	for r.Remaining() > 0 {
		topic, err := r.ReadString()
		if err != nil {
			return fmt.Errorf("failed to decode topic filter: %w", err)
		}

		qos, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("failed to decode requested QoS: %w", err)
		}
		if qos&0xFC != 0 || qos > QoS2 {
			return malformed("requested QoS byte 0x%X for %q", qos, topic)
		}

		p.Topics = append(p.Topics, topic)
		p.QoS = append(p.QoS, qos)
	}

	if len(p.Topics) == 0 {
		return malformed("SUBSCRIBE without topic filters")
	}
	return nil
}
