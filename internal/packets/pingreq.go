package packets

// PingreqPacket represents an MQTT PINGREQ control packet.
type PingreqPacket struct{}

// Type returns the packet type.
func (p *PingreqPacket) Type() uint8 {
	return PINGREQ
}

// Encode serializes the PINGREQ packet into dst.
func (p *PingreqPacket) Encode(dst []byte) ([]byte, error) {
	return encodeEmpty(dst, PINGREQ)
}

// Write appends the PINGREQ frame to b.
func (p *PingreqPacket) Write(b *Buffer) error {
	return writePacket(b, p)
}

// Read decodes a PINGREQ packet (no payload).
func (p *PingreqPacket) Read(b *Buffer) error {
	return readFrame(b, PINGREQ, func(*Buffer, FixedHeader) error { return nil })
}
