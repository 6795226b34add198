package mqstream

import (
	"testing"
)

// mqdump runs MatchTopic once per decoded PUBLISH when a topic filter is set.

func BenchmarkMatchTopic_Exact(b *testing.B) {
	filter := "sensors/building-a/floor-3/room-42/temperature"
	topic := "sensors/building-a/floor-3/room-42/temperature"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		MatchTopic(filter, topic)
	}
}

func BenchmarkMatchTopic_WildcardPlus(b *testing.B) {
	filter := "sensors/+/floor-3/+/temperature"
	topic := "sensors/building-a/floor-3/room-42/temperature"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		MatchTopic(filter, topic)
	}
}

func BenchmarkMatchTopic_WildcardHash(b *testing.B) {
	filter := "sensors/building-a/#"
	topic := "sensors/building-a/floor-3/room-42/temperature"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		MatchTopic(filter, topic)
	}
}

func BenchmarkMatchTopic_NoMatch_Late(b *testing.B) {
	filter := "sensors/building-a/floor-3/room-42/humidity"
	topic := "sensors/building-a/floor-3/room-42/temperature"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		MatchTopic(filter, topic)
	}
}

func BenchmarkTopics_Subscribe(b *testing.B) {
	pkt := &SubscribePacket{
		PacketID: 1,
		Topics:   []string{"a/#", "b/+/c", "d"},
		QoS:      []uint8{0, 1, 2},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Topics(pkt)
	}
}
