package packets

// DisconnectPacket represents an MQTT DISCONNECT control packet.
type DisconnectPacket struct{}

// Type returns the packet type.
func (p *DisconnectPacket) Type() uint8 {
	return DISCONNECT
}

// Encode serializes the DISCONNECT packet into dst.
func (p *DisconnectPacket) Encode(dst []byte) ([]byte, error) {
	return encodeEmpty(dst, DISCONNECT)
}

// Write appends the DISCONNECT frame to b.
func (p *DisconnectPacket) Write(b *Buffer) error {
	return writePacket(b, p)
}

// Read decodes a DISCONNECT packet (no payload).
func (p *DisconnectPacket) Read(b *Buffer) error {
	return readFrame(b, DISCONNECT, func(*Buffer, FixedHeader) error { return nil })
}
