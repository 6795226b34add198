package packets

import "fmt"

// PubrecPacket represents an MQTT PUBREC control packet (QoS 2, step 1).
type PubrecPacket struct {
	PacketID uint16
}

// Type returns the packet type.
func (p *PubrecPacket) Type() uint8 {
	return PUBREC
}

// Encode serializes the PUBREC packet into dst.
func (p *PubrecPacket) Encode(dst []byte) ([]byte, error) {
	return encodeAck(dst, PUBREC, 0, p.PacketID)
}

// Write appends the PUBREC frame to b.
func (p *PubrecPacket) Write(b *Buffer) error {
	return writePacket(b, p)
}

// Read decodes a PUBREC frame from b.
func (p *PubrecPacket) Read(b *Buffer) error {
	return readFrame(b, PUBREC, p.decode)
}

func (p *PubrecPacket) decode(r *Buffer, _ FixedHeader) error {
	id, err := readPacketID(r)
	if err != nil {
		return fmt.Errorf("failed to decode packet ID: %w", err)
	}
	p.PacketID = id
	return nil
}
