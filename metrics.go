package mqstream

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by decoders created with
// WithMetrics. One Metrics value may be shared by many decoders.
type Metrics struct {
	packets  *prometheus.CounterVec
	errors   *prometheus.CounterVec
	bytes    prometheus.Counter
	buffered prometheus.Gauge
}

// Error kinds used as the "kind" label of the decode error counter.
const (
	ErrorKindUnknownType = "unknown_type"
	ErrorKindTooLarge    = "too_large"
	ErrorKindMalformed   = "malformed"
)

// NewMetrics creates the decoder collectors and registers them with reg
// (prometheus.DefaultRegisterer if nil). Metric names are prefixed with
// namespace and the "decoder" subsystem.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		packets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "decoder",
				Name:      "packets_total",
				Help:      "Decoded MQTT control packets.",
			},
			[]string{"type"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "decoder",
				Name:      "errors_total",
				Help:      "Frames reported to the error handler.",
			},
			[]string{"kind"},
		),
		bytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "decoder",
				Name:      "received_bytes_total",
				Help:      "Bytes passed to Decode.",
			},
		),
		buffered: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "decoder",
				Name:      "buffered_bytes",
				Help:      "Bytes held for incomplete frames.",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.packets, m.errors, m.bytes, m.buffered} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register decoder metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) packetDecoded(packetType uint8) {
	if m == nil {
		return
	}
	m.packets.WithLabelValues(PacketName(packetType)).Inc()
}

func (m *Metrics) decodeError(err error) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(errorKind(err)).Inc()
}

func (m *Metrics) bytesReceived(n int) {
	if m == nil || n == 0 {
		return
	}
	m.bytes.Add(float64(n))
}

func (m *Metrics) bufferedDelta(n int) {
	if m == nil || n == 0 {
		return
	}
	m.buffered.Add(float64(n))
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrUnknownPacketType):
		return ErrorKindUnknownType
	case errors.Is(err, ErrPacketTooLarge):
		return ErrorKindTooLarge
	default:
		return ErrorKindMalformed
	}
}
