package mqstream

import (
	"fmt"

	"github.com/gonzalop/mqstream/internal/packets"
)

// Packet is a decoded MQTT control packet. Custom packet types registered in a
// Registry must implement it.
type Packet = packets.Packet

// Buffer is the framing buffer packets read from and write to.
type Buffer = packets.Buffer

// Mark is a checkpoint into a Buffer.
type Mark = packets.Mark

// FixedHeader is the first part of every MQTT frame.
type FixedHeader = packets.FixedHeader

// MQTT 3.1.1 control packets.
type (
	ConnectPacket     = packets.ConnectPacket
	ConnackPacket     = packets.ConnackPacket
	PublishPacket     = packets.PublishPacket
	PubackPacket      = packets.PubackPacket
	PubrecPacket      = packets.PubrecPacket
	PubrelPacket      = packets.PubrelPacket
	PubcompPacket     = packets.PubcompPacket
	SubscribePacket   = packets.SubscribePacket
	SubackPacket      = packets.SubackPacket
	UnsubscribePacket = packets.UnsubscribePacket
	UnsubackPacket    = packets.UnsubackPacket
	PingreqPacket     = packets.PingreqPacket
	PingrespPacket    = packets.PingrespPacket
	DisconnectPacket  = packets.DisconnectPacket
)

// Packet type codes.
const (
	CONNECT     uint8 = packets.CONNECT
	CONNACK     uint8 = packets.CONNACK
	PUBLISH     uint8 = packets.PUBLISH
	PUBACK      uint8 = packets.PUBACK
	PUBREC      uint8 = packets.PUBREC
	PUBREL      uint8 = packets.PUBREL
	PUBCOMP     uint8 = packets.PUBCOMP
	SUBSCRIBE   uint8 = packets.SUBSCRIBE
	SUBACK      uint8 = packets.SUBACK
	UNSUBSCRIBE uint8 = packets.UNSUBSCRIBE
	UNSUBACK    uint8 = packets.UNSUBACK
	PINGREQ     uint8 = packets.PINGREQ
	PINGRESP    uint8 = packets.PINGRESP
	DISCONNECT  uint8 = packets.DISCONNECT
)

// QoS levels
const (
	AtMostOnce  uint8 = packets.QoS0
	AtLeastOnce uint8 = packets.QoS1
	ExactlyOnce uint8 = packets.QoS2
)

// MaxPacketSize is the largest remaining length an MQTT frame can announce.
const MaxPacketSize = packets.MaxRemainingLength

// NewBuffer returns a Buffer holding data with the cursor at its start.
func NewBuffer(data []byte) *Buffer {
	return packets.NewBuffer(data)
}

// ReadFixedHeader reads a fixed header at the cursor of b. Custom packet types
// use it to frame their own bodies.
func ReadFixedHeader(b *Buffer) (FixedHeader, error) {
	return packets.ReadFixedHeader(b)
}

// PacketName returns the MQTT name of a packet type code, or "UNKNOWN".
func PacketName(packetType uint8) string {
	if name, ok := packets.PacketNames[packetType]; ok {
		return name
	}
	return "UNKNOWN"
}

// Encode returns the wire bytes of p.
func Encode(p Packet) ([]byte, error) {
	b := packets.NewBuffer(nil)
	if err := p.Write(b); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", PacketName(p.Type()), err)
	}
	return b.Bytes(), nil
}
