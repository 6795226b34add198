package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gonzalop/mqstream"
)

const payloadPreview = 64

// printer writes one line per packet. It is shared by every stream, so
// lines from concurrent connections never interleave.
type printer struct {
	mu     sync.Mutex
	out    io.Writer
	filter string
}

func newPrinter(out io.Writer, topicFilter string) *printer {
	return &printer{out: out, filter: topicFilter}
}

// Print writes p unless the topic filter excludes it. Packets without topics
// are always printed.
func (pr *printer) Print(stream string, p mqstream.Packet) error {
	if !pr.matches(p) {
		return nil
	}

	line := formatPacket(p)
	pr.mu.Lock()
	defer pr.mu.Unlock()
	_, err := fmt.Fprintf(pr.out, "%s %s\n", stream, line)
	return err
}

func (pr *printer) matches(p mqstream.Packet) bool {
	topics := mqstream.Topics(p)
	if pr.filter == "" || len(topics) == 0 {
		return true
	}
	for _, topic := range topics {
		if mqstream.MatchTopic(pr.filter, topic) {
			return true
		}
	}
	return false
}

func formatPacket(p mqstream.Packet) string {
	switch pkt := p.(type) {
	case *mqstream.ConnectPacket:
		var b strings.Builder
		fmt.Fprintf(&b, "CONNECT client_id=%q protocol=%s/%d clean_session=%t keep_alive=%d",
			pkt.ClientID, pkt.ProtocolName, pkt.ProtocolLevel, pkt.CleanSession, pkt.KeepAlive)
		if pkt.WillFlag {
			fmt.Fprintf(&b, " will_topic=%q will_qos=%d will_retain=%t", pkt.WillTopic, pkt.WillQoS, pkt.WillRetain)
		}
		if pkt.UsernameFlag {
			fmt.Fprintf(&b, " username=%q", pkt.Username)
		}
		if pkt.PasswordFlag {
			b.WriteString(" password=<redacted>")
		}
		return b.String()

	case *mqstream.ConnackPacket:
		return fmt.Sprintf("CONNACK session_present=%t return_code=%d", pkt.SessionPresent, pkt.ReturnCode)

	case *mqstream.PublishPacket:
		var b strings.Builder
		fmt.Fprintf(&b, "PUBLISH topic=%q qos=%d", pkt.Topic, pkt.QoS)
		if pkt.QoS > 0 {
			fmt.Fprintf(&b, " id=%d", pkt.PacketID)
		}
		fmt.Fprintf(&b, " retain=%t dup=%t payload=%dB %q", pkt.Retain, pkt.Dup, len(pkt.Payload), preview(pkt.Payload))
		return b.String()

	case *mqstream.PubackPacket:
		return fmt.Sprintf("PUBACK id=%d", pkt.PacketID)
	case *mqstream.PubrecPacket:
		return fmt.Sprintf("PUBREC id=%d", pkt.PacketID)
	case *mqstream.PubrelPacket:
		return fmt.Sprintf("PUBREL id=%d", pkt.PacketID)
	case *mqstream.PubcompPacket:
		return fmt.Sprintf("PUBCOMP id=%d", pkt.PacketID)
	case *mqstream.UnsubackPacket:
		return fmt.Sprintf("UNSUBACK id=%d", pkt.PacketID)

	case *mqstream.SubscribePacket:
		filters := make([]string, len(pkt.Topics))
		for i, topic := range pkt.Topics {
			var qos uint8
			if i < len(pkt.QoS) {
				qos = pkt.QoS[i]
			}
			filters[i] = fmt.Sprintf("%s:%d", topic, qos)
		}
		return fmt.Sprintf("SUBSCRIBE id=%d filters=[%s]", pkt.PacketID, strings.Join(filters, " "))

	case *mqstream.SubackPacket:
		return fmt.Sprintf("SUBACK id=%d return_codes=%v", pkt.PacketID, pkt.ReturnCodes)

	case *mqstream.UnsubscribePacket:
		return fmt.Sprintf("UNSUBSCRIBE id=%d filters=[%s]", pkt.PacketID, strings.Join(pkt.Topics, " "))

	default:
		return mqstream.PacketName(p.Type())
	}
}

func preview(payload []byte) string {
	if len(payload) <= payloadPreview {
		return string(payload)
	}
	return string(payload[:payloadPreview]) + "..."
}
