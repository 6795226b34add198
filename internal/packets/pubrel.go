package packets

import "fmt"

// PubrelPacket represents an MQTT PUBREL control packet (QoS 2, step 2).
type PubrelPacket struct {
	PacketID uint16
}

// Type returns the packet type.
func (p *PubrelPacket) Type() uint8 {
	return PUBREL
}

// Encode serializes the PUBREL packet into dst.
func (p *PubrelPacket) Encode(dst []byte) ([]byte, error) {
	// PUBREL has fixed header flags = 0x02 (bit 1 set)
	return encodeAck(dst, PUBREL, 0x02, p.PacketID)
}

// Write appends the PUBREL frame to b.
func (p *PubrelPacket) Write(b *Buffer) error {
	return writePacket(b, p)
}

// Read decodes a PUBREL frame from b.
func (p *PubrelPacket) Read(b *Buffer) error {
	return readFrame(b, PUBREL, p.decode)
}

func (p *PubrelPacket) decode(r *Buffer, _ FixedHeader) error {
	id, err := readPacketID(r)
	if err != nil {
		return fmt.Errorf("failed to decode packet ID: %w", err)
	}
	p.PacketID = id
	return nil
}
