package packets

// Packet is the interface that all MQTT control packets must implement.
type Packet interface {
	// Type returns the MQTT control packet type.
	Type() uint8

	// Read decodes one complete frame starting at the cursor of b and leaves
	// the cursor after it. It returns ErrEndOfStream when b does not hold the
	// whole frame yet; any other error means the bytes are invalid.
	Read(b *Buffer) error

	// Write appends the encoded frame to b.
	Write(b *Buffer) error
}

// Encoder is implemented by packets that serialize into a caller supplied slice.
type Encoder interface {
	// Encode appends the serialized packet bytes to dst and returns the resulting slice.
	Encode(dst []byte) ([]byte, error)
}

// constructors maps packet types to a function returning an empty packet.
var constructors = [16]func() Packet{
	CONNECT:     func() Packet { return &ConnectPacket{} },
	CONNACK:     func() Packet { return &ConnackPacket{} },
	PUBLISH:     func() Packet { return &PublishPacket{} },
	PUBACK:      func() Packet { return &PubackPacket{} },
	PUBREC:      func() Packet { return &PubrecPacket{} },
	PUBREL:      func() Packet { return &PubrelPacket{} },
	PUBCOMP:     func() Packet { return &PubcompPacket{} },
	SUBSCRIBE:   func() Packet { return &SubscribePacket{} },
	SUBACK:      func() Packet { return &SubackPacket{} },
	UNSUBSCRIBE: func() Packet { return &UnsubscribePacket{} },
	UNSUBACK:    func() Packet { return &UnsubackPacket{} },
	PINGREQ:     func() Packet { return &PingreqPacket{} },
	PINGRESP:    func() Packet { return &PingrespPacket{} },
	DISCONNECT:  func() Packet { return &DisconnectPacket{} },
}

// Constructor returns the constructor for a v3.1.1 packet type, or nil if the
// type has no v3.1.1 packet (RESERVED, AUTH, or anything above 15).
func Constructor(packetType uint8) func() Packet {
	if int(packetType) >= len(constructors) {
		return nil
	}
	return constructors[packetType]
}
