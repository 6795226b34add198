package packets

import "fmt"

// PubackPacket represents an MQTT PUBACK control packet (QoS 1 acknowledgment).
type PubackPacket struct {
	PacketID uint16
}

// Type returns the packet type.
func (p *PubackPacket) Type() uint8 {
	return PUBACK
}

// Encode serializes the PUBACK packet into dst.
func (p *PubackPacket) Encode(dst []byte) ([]byte, error) {
	return encodeAck(dst, PUBACK, 0, p.PacketID)
}

// Write appends the PUBACK frame to b.
func (p *PubackPacket) Write(b *Buffer) error {
	return writePacket(b, p)
}

// Read decodes a PUBACK frame from b.
func (p *PubackPacket) Read(b *Buffer) error {
	return readFrame(b, PUBACK, p.decode)
}

func (p *PubackPacket) decode(r *Buffer, _ FixedHeader) error {
	id, err := readPacketID(r)
	if err != nil {
		return fmt.Errorf("failed to decode packet ID: %w", err)
	}
	p.PacketID = id
	return nil
}
