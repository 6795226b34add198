package main

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonzalop/mqstream"
)

var (
	clientIP = net.IPv4(10, 0, 0, 1).To4()
	brokerIP = net.IPv4(10, 0, 0, 2).To4()
)

const (
	clientStream = "10.0.0.1:50000>10.0.0.2:1883"
	brokerStream = "10.0.0.2:1883>10.0.0.1:50000"
)

type segment struct {
	fromClient bool
	dstPort    layers.TCPPort // broker side port, 1883 if zero
	seq        uint32
	syn, fin   bool
	payload    []byte
}

// buildCapture serializes segs into an Ethernet pcap file.
func buildCapture(t *testing.T, segs []segment) []byte {
	t.Helper()

	var capture bytes.Buffer
	w := pcapgo.NewWriter(&capture)
	require.NoError(t, w.WriteFileHeader(65536, layers.LinkTypeEthernet))

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, seg := range segs {
		brokerPort := seg.dstPort
		if brokerPort == 0 {
			brokerPort = 1883
		}

		ip := &layers.IPv4{
			Version:  4,
			IHL:      5,
			TTL:      64,
			Protocol: layers.IPProtocolTCP,
		}
		tcp := &layers.TCP{
			Seq:    seg.seq,
			SYN:    seg.syn,
			FIN:    seg.fin,
			ACK:    !seg.syn,
			PSH:    len(seg.payload) > 0,
			Window: 65535,
		}
		if seg.fromClient {
			ip.SrcIP, ip.DstIP = clientIP, brokerIP
			tcp.SrcPort, tcp.DstPort = 50000, brokerPort
		} else {
			ip.SrcIP, ip.DstIP = brokerIP, clientIP
			tcp.SrcPort, tcp.DstPort = brokerPort, 50000
		}
		require.NoError(t, tcp.SetNetworkLayerForChecksum(ip))

		eth := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
			DstMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 2},
			EthernetType: layers.EthernetTypeIPv4,
		}

		buf := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
		require.NoError(t, gopacket.SerializeLayers(buf, opts, eth, ip, tcp, gopacket.Payload(seg.payload)))

		data := buf.Bytes()
		ci := gopacket.CaptureInfo{
			Timestamp:     ts.Add(time.Duration(i) * time.Millisecond),
			CaptureLength: len(data),
			Length:        len(data),
		}
		require.NoError(t, w.WritePacket(ci, data))
	}
	return capture.Bytes()
}

func dumpCapture(t *testing.T, cfg Config, capture []byte) ([]string, error) {
	t.Helper()

	var out bytes.Buffer
	d := newTestDumper(t, cfg, &out)
	err := d.dumpPcap(context.Background(), bytes.NewReader(capture))
	return outputLines(out.String()), err
}

func encode(t *testing.T, p mqstream.Packet) []byte {
	t.Helper()
	data, err := mqstream.Encode(p)
	require.NoError(t, err)
	return data
}

func TestDumpPcapReassemblesFlows(t *testing.T) {
	connect := encode(t, &mqstream.ConnectPacket{
		ProtocolName:  "MQTT",
		ProtocolLevel: 4,
		CleanSession:  true,
		KeepAlive:     30,
		ClientID:      "pcap",
	})
	publish := encode(t, &mqstream.PublishPacket{Topic: "a/b", Payload: []byte("hi")})
	connack := encode(t, &mqstream.ConnackPacket{})

	second := append(append([]byte{}, connect[5:]...), publish...)
	capture := buildCapture(t, []segment{
		{fromClient: true, seq: 1000, syn: true},
		{seq: 5000, syn: true},
		{fromClient: true, seq: 1001, payload: connect[:5]},
		{fromClient: true, seq: 1001, payload: connect[:5]}, // retransmission
		{fromClient: true, seq: 1006, payload: second},
		{seq: 5001, payload: connack},
		{fromClient: true, dstPort: 80, seq: 1, payload: connack}, // not MQTT
		{fromClient: true, seq: 1006 + uint32(len(second)), fin: true},
	})

	cfg := defaultConfig()
	cfg.Format = formatPcap
	lines, err := dumpCapture(t, cfg, capture)
	require.NoError(t, err)

	require.Len(t, lines, 3)
	assert.Equal(t, clientStream+` CONNECT client_id="pcap" protocol=MQTT/4 clean_session=true keep_alive=30`, lines[0])
	assert.Equal(t, clientStream+` PUBLISH topic="a/b" qos=0 retain=false dup=false payload=2B "hi"`, lines[1])
	assert.Equal(t, brokerStream+` CONNACK session_present=false return_code=0`, lines[2])
}

func TestDumpPcapOverlappingRetransmission(t *testing.T) {
	first := encode(t, &mqstream.PublishPacket{Topic: "one", Payload: []byte("1")})
	second := encode(t, &mqstream.PublishPacket{Topic: "two", Payload: []byte("2")})
	stream := append(append([]byte{}, first...), second...)

	// The resent segment carries the first 4 bytes again plus the rest.
	capture := buildCapture(t, []segment{
		{fromClient: true, seq: 100, payload: stream[:4]},
		{fromClient: true, seq: 100, payload: stream},
	})

	cfg := defaultConfig()
	cfg.Format = formatPcap
	lines, err := dumpCapture(t, cfg, capture)
	require.NoError(t, err)

	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `topic="one"`)
	assert.Contains(t, lines[1], `topic="two"`)
}

func TestDumpPcapGapResynchronizes(t *testing.T) {
	lost := encode(t, &mqstream.PublishPacket{Topic: "lost", Payload: []byte("xxxx")})
	kept := encode(t, &mqstream.PublishPacket{Topic: "kept"})

	capture := buildCapture(t, []segment{
		{fromClient: true, seq: 1, payload: lost[:3]},
		// The rest of lost never made it into the capture.
		{fromClient: true, seq: 1 + uint32(len(lost)), payload: kept},
	})

	cfg := defaultConfig()
	cfg.Format = formatPcap
	lines, err := dumpCapture(t, cfg, capture)
	require.NoError(t, err)

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `topic="kept"`)
}

func TestDumpPcapCustomPortAndTopicFilter(t *testing.T) {
	stream := append(
		encode(t, &mqstream.PublishPacket{Topic: "sensors/temp"}),
		encode(t, &mqstream.PublishPacket{Topic: "status"})...,
	)
	stream = append(stream, encode(t, &mqstream.PingreqPacket{})...)

	capture := buildCapture(t, []segment{
		{fromClient: true, dstPort: 8883, seq: 1, payload: stream},
	})

	cfg := defaultConfig()
	cfg.Format = formatPcap
	cfg.Port = 8883
	cfg.Topic = "sensors/#"
	lines, err := dumpCapture(t, cfg, capture)
	require.NoError(t, err)

	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "10.0.0.1:50000>10.0.0.2:8883 PUBLISH"))
	assert.Contains(t, lines[0], `topic="sensors/temp"`)
	assert.Equal(t, "10.0.0.1:50000>10.0.0.2:8883 PINGREQ", lines[1])
}

func TestDumpPcapFailOnUnknownType(t *testing.T) {
	capture := buildCapture(t, []segment{
		{fromClient: true, seq: 1, payload: []byte{0xC0, 0x00, 0x00, 0xC0, 0x00}},
	})

	cfg := defaultConfig()
	cfg.Format = formatPcap
	cfg.UnknownTypes = "fail"
	lines, err := dumpCapture(t, cfg, capture)
	require.ErrorIs(t, err, mqstream.ErrStreamCorrupt)
	assert.Equal(t, []string{clientStream + " PINGREQ"}, lines)
}

func TestDumpPcapBadHeader(t *testing.T) {
	cfg := defaultConfig()
	cfg.Format = formatPcap
	_, err := dumpCapture(t, cfg, []byte("not a capture file"))
	require.Error(t, err)
}

func TestDumpPcapClosedFlowReleasesBufferedBytes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := mqstream.NewMetrics(reg, "mqdump")
	require.NoError(t, err)

	capture := buildCapture(t, []segment{
		{fromClient: true, seq: 1, payload: []byte{0xC0, 0x00, 0x30, 0x05, 0x00}},
		{fromClient: true, seq: 6, fin: true},
	})

	cfg := defaultConfig()
	cfg.Format = formatPcap
	var out bytes.Buffer
	d := newTestDumper(t, cfg, &out)
	d.metrics = metrics

	require.NoError(t, d.dumpPcap(context.Background(), bytes.NewReader(capture)))
	assert.Equal(t, []string{clientStream + " PINGREQ"}, outputLines(out.String()))

	expected := `
# HELP mqdump_decoder_buffered_bytes Bytes held for incomplete frames.
# TYPE mqdump_decoder_buffered_bytes gauge
mqdump_decoder_buffered_bytes 0
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "mqdump_decoder_buffered_bytes"))
}
