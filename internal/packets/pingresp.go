package packets

// PingrespPacket represents an MQTT PINGRESP control packet.
type PingrespPacket struct{}

// Type returns the packet type.
func (p *PingrespPacket) Type() uint8 {
	return PINGRESP
}

// Encode serializes the PINGRESP packet into dst.
func (p *PingrespPacket) Encode(dst []byte) ([]byte, error) {
	return encodeEmpty(dst, PINGRESP)
}

// Write appends the PINGRESP frame to b.
func (p *PingrespPacket) Write(b *Buffer) error {
	return writePacket(b, p)
}

// Read decodes a PINGRESP packet (no payload).
func (p *PingrespPacket) Read(b *Buffer) error {
	return readFrame(b, PINGRESP, func(*Buffer, FixedHeader) error { return nil })
}
