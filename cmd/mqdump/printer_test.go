package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonzalop/mqstream"
)

func TestFormatPacket(t *testing.T) {
	tests := []struct {
		name string
		pkt  mqstream.Packet
		want string
	}{
		{
			name: "connect with will and credentials",
			pkt: &mqstream.ConnectPacket{
				ProtocolName:  "MQTT",
				ProtocolLevel: 4,
				KeepAlive:     60,
				ClientID:      "c1",
				WillFlag:      true,
				WillQoS:       1,
				WillTopic:     "c1/status",
				WillMessage:   []byte("gone"),
				UsernameFlag:  true,
				Username:      "user",
				PasswordFlag:  true,
				Password:      []byte("secret"),
			},
			want: `CONNECT client_id="c1" protocol=MQTT/4 clean_session=false keep_alive=60 will_topic="c1/status" will_qos=1 will_retain=false username="user" password=<redacted>`,
		},
		{
			name: "connack",
			pkt:  &mqstream.ConnackPacket{SessionPresent: true, ReturnCode: 5},
			want: "CONNACK session_present=true return_code=5",
		},
		{
			name: "publish qos0",
			pkt:  &mqstream.PublishPacket{Topic: "t", Retain: true, Payload: []byte("x")},
			want: `PUBLISH topic="t" qos=0 retain=true dup=false payload=1B "x"`,
		},
		{
			name: "publish qos2",
			pkt:  &mqstream.PublishPacket{Topic: "t", QoS: 2, PacketID: 9, Dup: true},
			want: `PUBLISH topic="t" qos=2 id=9 retain=false dup=true payload=0B ""`,
		},
		{"puback", &mqstream.PubackPacket{PacketID: 1}, "PUBACK id=1"},
		{"pubrec", &mqstream.PubrecPacket{PacketID: 2}, "PUBREC id=2"},
		{"pubrel", &mqstream.PubrelPacket{PacketID: 3}, "PUBREL id=3"},
		{"pubcomp", &mqstream.PubcompPacket{PacketID: 4}, "PUBCOMP id=4"},
		{
			name: "subscribe",
			pkt:  &mqstream.SubscribePacket{PacketID: 5, Topics: []string{"a/#", "b"}, QoS: []uint8{1, 0}},
			want: "SUBSCRIBE id=5 filters=[a/#:1 b:0]",
		},
		{
			name: "suback",
			pkt:  &mqstream.SubackPacket{PacketID: 5, ReturnCodes: []uint8{1, 0x80}},
			want: "SUBACK id=5 return_codes=[1 128]",
		},
		{
			name: "unsubscribe",
			pkt:  &mqstream.UnsubscribePacket{PacketID: 6, Topics: []string{"a/#"}},
			want: "UNSUBSCRIBE id=6 filters=[a/#]",
		},
		{"unsuback", &mqstream.UnsubackPacket{PacketID: 6}, "UNSUBACK id=6"},
		{"pingreq", &mqstream.PingreqPacket{}, "PINGREQ"},
		{"pingresp", &mqstream.PingrespPacket{}, "PINGRESP"},
		{"disconnect", &mqstream.DisconnectPacket{}, "DISCONNECT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatPacket(tt.pkt))
		})
	}
}

func TestFormatPacketPreview(t *testing.T) {
	payload := bytes.Repeat([]byte("a"), payloadPreview+10)
	got := formatPacket(&mqstream.PublishPacket{Topic: "big", Payload: payload})

	assert.Contains(t, got, "payload=74B")
	assert.Contains(t, got, strings.Repeat("a", payloadPreview)+"...")
	assert.NotContains(t, got, strings.Repeat("a", payloadPreview+1))
}

func TestPrinterTopicFilter(t *testing.T) {
	var out bytes.Buffer
	pr := newPrinter(&out, "home/+/temp")

	pkts := []mqstream.Packet{
		&mqstream.PublishPacket{Topic: "home/kitchen/temp"},
		&mqstream.PublishPacket{Topic: "home/kitchen/humidity"},
		&mqstream.SubscribePacket{PacketID: 1, Topics: []string{"other", "home/hall/temp"}, QoS: []uint8{0, 0}},
		&mqstream.UnsubscribePacket{PacketID: 2, Topics: []string{"other"}},
		&mqstream.ConnectPacket{ProtocolName: "MQTT", ProtocolLevel: 4, ClientID: "x"},
		&mqstream.ConnectPacket{ProtocolName: "MQTT", ProtocolLevel: 4, ClientID: "y", WillFlag: true, WillTopic: "lwt"},
		&mqstream.PubackPacket{PacketID: 1},
	}
	for _, p := range pkts {
		require.NoError(t, pr.Print("s", p))
	}

	lines := outputLines(out.String())
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], `topic="home/kitchen/temp"`)
	assert.True(t, strings.HasPrefix(lines[1], "s SUBSCRIBE id=1"))
	assert.Contains(t, lines[2], `client_id="x"`)
	assert.Equal(t, "s PUBACK id=1", lines[3])
}

func TestPrinterNoFilter(t *testing.T) {
	var out bytes.Buffer
	pr := newPrinter(&out, "")
	require.NoError(t, pr.Print("s", &mqstream.PublishPacket{Topic: "anything"}))
	assert.Len(t, outputLines(out.String()), 1)
}
