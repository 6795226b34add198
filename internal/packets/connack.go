package packets

import "fmt"

// ConnackPacket represents an MQTT CONNACK control packet.
type ConnackPacket struct {
	// Session present flag (v3.1.1+)
	SessionPresent bool

	// Return code
	ReturnCode uint8
}

// Type returns the packet type.
func (p *ConnackPacket) Type() uint8 {
	return CONNACK
}

// Encode serializes the CONNACK packet into dst.
func (p *ConnackPacket) Encode(dst []byte) ([]byte, error) {
	header := FixedHeader{
		PacketType:      CONNACK,
		RemainingLength: 2, // Ack Flags + Return Code
	}
	dst, err := header.appendBytes(dst)
	if err != nil {
		return dst, err
	}

	var ackFlags uint8
	if p.SessionPresent {
		ackFlags |= 0x01
	}
	return append(dst, ackFlags, p.ReturnCode), nil
}

// Write appends the CONNACK frame to b.
func (p *ConnackPacket) Write(b *Buffer) error {
	return writePacket(b, p)
}

// Read decodes a CONNACK frame from b.
func (p *ConnackPacket) Read(b *Buffer) error {
	return readFrame(b, CONNACK, p.decode)
}

func (p *ConnackPacket) decode(r *Buffer, _ FixedHeader) error {
	// Connect acknowledge flags
	ackFlags, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("failed to decode acknowledge flags: %w", err)
	}
	if ackFlags&0xFE != 0 {
		return malformed("reserved acknowledge flags 0x%X", ackFlags&0xFE)
	}
	p.SessionPresent = (ackFlags & 0x01) != 0

	// Return code
	if p.ReturnCode, err = r.ReadByte(); err != nil {
		return fmt.Errorf("failed to decode return code: %w", err)
	}
	if p.ReturnCode > ConnRefusedNotAuthorized {
		return malformed("reserved return code %d", p.ReturnCode)
	}
	if p.ReturnCode != ConnAccepted && p.SessionPresent {
		return malformed("session present with return code %d", p.ReturnCode)
	}

	return nil
}

// Accepted reports whether the server accepted the connection.
func (p *ConnackPacket) Accepted() bool {
	return p.ReturnCode == ConnAccepted
}
