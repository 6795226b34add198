package packets

import "fmt"

// UnsubackPacket represents an MQTT UNSUBACK control packet (unsubscribe acknowledgment).
type UnsubackPacket struct {
	PacketID uint16
}

// Type returns the packet type.
func (p *UnsubackPacket) Type() uint8 {
	return UNSUBACK
}

// Encode serializes the UNSUBACK packet into dst.
func (p *UnsubackPacket) Encode(dst []byte) ([]byte, error) {
	return encodeAck(dst, UNSUBACK, 0, p.PacketID)
}

// Write appends the UNSUBACK frame to b.
func (p *UnsubackPacket) Write(b *Buffer) error {
	return writePacket(b, p)
}

// Read decodes a UNSUBACK frame from b.
func (p *UnsubackPacket) Read(b *Buffer) error {
	return readFrame(b, UNSUBACK, p.decode)
}

func (p *UnsubackPacket) decode(r *Buffer, _ FixedHeader) error {
	id, err := readPacketID(r)
	if err != nil {
		return fmt.Errorf("failed to decode packet ID: %w", err)
	}
	p.PacketID = id
	return nil
}
