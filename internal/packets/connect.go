package packets

import (
	"encoding/binary"
	"fmt"
)

// ConnectPacket represents an MQTT CONNECT control packet.
type ConnectPacket struct {
	// Protocol name ("MQTT" for v3.1.1, "MQIsdp" for v3.1)
	ProtocolName string

	// Protocol level (4 for v3.1.1, 3 for v3.1)
	ProtocolLevel uint8

	// Connect flags
	CleanSession bool
	WillFlag     bool
	WillQoS      uint8
	WillRetain   bool
	PasswordFlag bool
	UsernameFlag bool

	// Keep alive timer in seconds
	KeepAlive uint16

	// Payload
	ClientID string

	// Will fields (only used if WillFlag is true)
	WillTopic   string
	WillMessage []byte

	// Credentials (only used if respective flags are true)
	Username string
	Password []byte
}

// Type returns the packet type.
func (p *ConnectPacket) Type() uint8 {
	return CONNECT
}

func (p *ConnectPacket) flags() uint8 {
	var connectFlags uint8
	if p.CleanSession {
		connectFlags |= 0x02
	}
	if p.WillFlag {
		connectFlags |= 0x04
		connectFlags |= (p.WillQoS & 0x03) << 3
		if p.WillRetain {
			connectFlags |= 0x20
		}
	}
	if p.PasswordFlag {
		connectFlags |= 0x40
	}
	if p.UsernameFlag {
		connectFlags |= 0x80
	}
	return connectFlags
}

// Encode serializes the CONNECT packet into dst.
func (p *ConnectPacket) Encode(dst []byte) ([]byte, error) {
	// 1. Variable header: Name + Level + Flags + KeepAlive
	variableHeaderLen := 2 + len(p.ProtocolName) + 1 + 1 + 2

	// 2. Payload
	payloadLen := 2 + len(p.ClientID)
	if p.WillFlag {
		payloadLen += 2 + len(p.WillTopic) + 2 + len(p.WillMessage)
	}
	if p.UsernameFlag {
		payloadLen += 2 + len(p.Username)
	}
	if p.PasswordFlag {
		payloadLen += 2 + len(p.Password)
	}

	for _, f := range []struct {
		name string
		n    int
	}{
		{"protocol name", len(p.ProtocolName)},
		{"client ID", len(p.ClientID)},
		{"will topic", len(p.WillTopic)},
		{"will message", len(p.WillMessage)},
		{"username", len(p.Username)},
		{"password", len(p.Password)},
	} {
		if err := checkFieldLength(f.name, f.n); err != nil {
			return dst, err
		}
	}

	// 3. Fixed header
	header := FixedHeader{
		PacketType:      CONNECT,
		RemainingLength: variableHeaderLen + payloadLen,
	}
	dst, err := header.appendBytes(dst)
	if err != nil {
		return dst, err
	}

	// 4. Variable header
	dst = appendString(dst, p.ProtocolName)
	dst = append(dst, p.ProtocolLevel, p.flags())
	dst = binary.BigEndian.AppendUint16(dst, p.KeepAlive)

	// 5. Payload
	dst = appendString(dst, p.ClientID)
	if p.WillFlag {
		dst = appendString(dst, p.WillTopic)
		dst = appendBinary(dst, p.WillMessage)
	}
	if p.UsernameFlag {
		dst = appendString(dst, p.Username)
	}
	if p.PasswordFlag {
		dst = appendBinary(dst, p.Password)
	}

	return dst, nil
}

// Write appends the CONNECT frame to b.
func (p *ConnectPacket) Write(b *Buffer) error {
	return writePacket(b, p)
}

// Read decodes a CONNECT frame from b.
func (p *ConnectPacket) Read(b *Buffer) error {
	return readFrame(b, CONNECT, p.decode)
}

func (p *ConnectPacket) decode(r *Buffer, _ FixedHeader) error {
	// Protocol name
	protocolName, err := r.ReadString()
	if err != nil {
		return fmt.Errorf("failed to decode protocol name: %w", err)
	}
	if protocolName != "MQTT" && protocolName != "MQIsdp" {
		return malformed("unsupported protocol name %q", protocolName)
	}
	p.ProtocolName = protocolName

	// Protocol level
	if p.ProtocolLevel, err = r.ReadByte(); err != nil {
		return fmt.Errorf("failed to decode protocol level: %w", err)
	}

	// Connect flags
	connectFlags, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("failed to decode connect flags: %w", err)
	}
	if connectFlags&0x01 != 0 {
		return malformed("reserved connect flag is set")
	}

	p.CleanSession = (connectFlags & 0x02) != 0
	p.WillFlag = (connectFlags & 0x04) != 0
	p.WillQoS = (connectFlags >> 3) & 0x03
	p.WillRetain = (connectFlags & 0x20) != 0
	p.PasswordFlag = (connectFlags & 0x40) != 0
	p.UsernameFlag = (connectFlags & 0x80) != 0

	if p.WillQoS > QoS2 {
		return malformed("will QoS %d", p.WillQoS)
	}
	if !p.WillFlag && (p.WillQoS != 0 || p.WillRetain) {
		return malformed("will QoS or retain set without will flag")
	}
	if p.PasswordFlag && !p.UsernameFlag {
		return malformed("password flag set without username flag")
	}

	// Keep alive
	if p.KeepAlive, err = r.ReadUint16(); err != nil {
		return fmt.Errorf("failed to decode keep alive: %w", err)
	}

	// Client ID
	if p.ClientID, err = r.ReadString(); err != nil {
		return fmt.Errorf("failed to decode client ID: %w", err)
	}

	// Will topic and message
	if p.WillFlag {
		if p.WillTopic, err = r.ReadString(); err != nil {
			return fmt.Errorf("failed to decode will topic: %w", err)
		}
		if p.WillMessage, err = r.ReadBinary(); err != nil {
			return fmt.Errorf("failed to decode will message: %w", err)
		}
	}

	// Username
	if p.UsernameFlag {
		if p.Username, err = r.ReadString(); err != nil {
			return fmt.Errorf("failed to decode username: %w", err)
		}
	}

	// Password
	if p.PasswordFlag {
		if p.Password, err = r.ReadBinary(); err != nil {
			return fmt.Errorf("failed to decode password: %w", err)
		}
	}

	return nil
}
