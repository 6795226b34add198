package packets

import "fmt"

// PubcompPacket represents an MQTT PUBCOMP control packet (QoS 2, step 3).
type PubcompPacket struct {
	PacketID uint16
}

// Type returns the packet type.
func (p *PubcompPacket) Type() uint8 {
	return PUBCOMP
}

// Encode serializes the PUBCOMP packet into dst.
func (p *PubcompPacket) Encode(dst []byte) ([]byte, error) {
	return encodeAck(dst, PUBCOMP, 0, p.PacketID)
}

// Write appends the PUBCOMP frame to b.
func (p *PubcompPacket) Write(b *Buffer) error {
	return writePacket(b, p)
}

// Read decodes a PUBCOMP frame from b.
func (p *PubcompPacket) Read(b *Buffer) error {
	return readFrame(b, PUBCOMP, p.decode)
}

func (p *PubcompPacket) decode(r *Buffer, _ FixedHeader) error {
	id, err := readPacketID(r)
	if err != nil {
		return fmt.Errorf("failed to decode packet ID: %w", err)
	}
	p.PacketID = id
	return nil
}
