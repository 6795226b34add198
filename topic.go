package mqstream

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MatchTopic checks if a topic matches a topic filter with MQTT wildcards.
// Supports:
// - '+' matches a single level
// - '#' matches multiple levels (must be last character)
//
// Filters starting with a wildcard never match topics starting with '$'
// (MQTT-4.7.2-1).
func MatchTopic(filter, topic string) bool {
	if len(topic) > 0 && topic[0] == '$' {
		if len(filter) > 0 && (filter[0] == '+' || filter[0] == '#') {
			return false
		}
	}

	fIdx := 0
	tIdx := 0
	fLen := len(filter)
	tLen := len(topic)

	for fIdx <= fLen {
		fLevel, fNext := nextLevel(filter, fIdx)

		if fLevel == "#" {
			// Matches everything remaining, including nothing
			return true
		}

		// Out of topic levels
		if tIdx > tLen {
			return false
		}

		tLevel, tNext := nextLevel(topic, tIdx)
		if fLevel != "+" && fLevel != tLevel {
			return false
		}

		fIdx = fNext + 1
		tIdx = tNext + 1
	}

	return tIdx > tLen
}

// nextLevel returns the level of s starting at i and the index of the '/'
// that ends it (len(s) for the last level).
func nextLevel(s string, i int) (string, int) {
	if idx := strings.IndexByte(s[i:], '/'); idx >= 0 {
		return s[i : i+idx], i + idx
	}
	return s[i:], len(s)
}

// ValidateTopicFilter validates a topic filter.
// Filters may contain wildcards but must follow MQTT rules.
func ValidateTopicFilter(filter string) error {
	if filter == "" {
		return fmt.Errorf("topic filter cannot be empty")
	}

	if len(filter) > 65535 {
		return fmt.Errorf("topic filter length %d exceeds maximum 65535", len(filter))
	}

	if strings.Contains(filter, "\x00") {
		return fmt.Errorf("topic filter contains null byte which is not allowed")
	}

	if !utf8.ValidString(filter) {
		return fmt.Errorf("topic filter is not valid UTF-8")
	}

	parts := strings.Split(filter, "/")
	for i, part := range parts {
		// Single-level wildcard must be alone in the level
		if strings.Contains(part, "+") && part != "+" {
			return fmt.Errorf("single-level wildcard '+' must occupy entire topic level")
		}

		// Multi-level wildcard must be last and alone
		if strings.Contains(part, "#") {
			if part != "#" {
				return fmt.Errorf("multi-level wildcard '#' must occupy entire topic level")
			}
			if i != len(parts)-1 {
				return fmt.Errorf("multi-level wildcard '#' must be the last character")
			}
		}
	}

	return nil
}

// Topics returns the topic names and filters carried by p: the topic of a
// PUBLISH, the will topic of a CONNECT, the filters of a SUBSCRIBE or
// UNSUBSCRIBE. Other packets carry none.
func Topics(p Packet) []string {
	switch pkt := p.(type) {
	case *PublishPacket:
		return []string{pkt.Topic}
	case *ConnectPacket:
		if pkt.WillFlag {
			return []string{pkt.WillTopic}
		}
	case *SubscribePacket:
		return pkt.Topics
	case *UnsubscribePacket:
		return pkt.Topics
	}
	return nil
}
