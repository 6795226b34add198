package mqstream

import (
	"io"
	"log/slog"
)

// UnknownTypePolicy selects what the decoder does with a type code that has
// no registered constructor.
type UnknownTypePolicy int

const (
	// SkipUnknown reports the byte, skips it and keeps decoding.
	SkipUnknown UnknownTypePolicy = iota

	// FailUnknown reports the byte, drops everything buffered and makes
	// Decode return ErrStreamCorrupt until Reset is called.
	FailUnknown
)

func (p UnknownTypePolicy) String() string {
	switch p {
	case SkipUnknown:
		return "skip"
	case FailUnknown:
		return "fail"
	default:
		return "unknown"
	}
}

// DefaultReadBufferSize is the chunk size Consume reads with by default.
const DefaultReadBufferSize = 4096

// decoderOptions holds configuration for a Decoder.
type decoderOptions struct {
	// Receives every decode error (required)
	ErrorHandler ErrorHandler

	// Logger for decoder events (optional, defaults to discarding logs)
	Logger *slog.Logger

	// Packet constructors (default: the MQTT 3.1.1 packets)
	Registry *Registry

	// Maximum remaining length of an incoming frame (0 = protocol maximum)
	MaxIncomingPacket int

	UnknownTypePolicy UnknownTypePolicy

	// Chunk size used by Consume
	ReadBufferSize int

	// Prometheus collectors (optional)
	Metrics *Metrics
}

// Option is a functional option for configuring a Decoder.
type Option func(*decoderOptions)

func defaultOptions() *decoderOptions {
	return &decoderOptions{
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		UnknownTypePolicy: SkipUnknown,
		ReadBufferSize:    DefaultReadBufferSize,
	}
}

// WithErrorHandler sets the handler that receives decode errors.
// It is required: NewDecoder fails with ErrNoErrorHandler without it.
//
// Example:
//
//	dec, err := mqstream.NewDecoder(
//	    mqstream.WithErrorHandler(mqstream.ErrorHandlerFunc(func(e *mqstream.DecodeError) {
//	        log.Printf("dropped frame: %v", e)
//	    })))
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *decoderOptions) {
		o.ErrorHandler = h
	}
}

// WithLogger sets a structured logger for decoder events.
//
// The decoder logs at Debug level only: reported errors, skipped bytes and
// frames waiting for more data. By default logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(o *decoderOptions) {
		o.Logger = logger
	}
}

// WithRegistry sets the packet constructors. The decoder copies r, so later
// changes to r do not affect it.
func WithRegistry(r *Registry) Option {
	return func(o *decoderOptions) {
		o.Registry = r
	}
}

// WithMaxIncomingPacket limits the remaining length of incoming frames.
//
// A fixed header announcing more is reported as ErrPacketTooLarge and its
// header bytes are skipped. 0 means the protocol maximum (256MB).
func WithMaxIncomingPacket(max int) Option {
	return func(o *decoderOptions) {
		o.MaxIncomingPacket = max
	}
}

// WithUnknownTypePolicy sets the handling of unregistered type codes.
// The default is SkipUnknown.
func WithUnknownTypePolicy(p UnknownTypePolicy) Option {
	return func(o *decoderOptions) {
		o.UnknownTypePolicy = p
	}
}

// WithReadBufferSize sets the chunk size used by Consume (default 4096).
func WithReadBufferSize(size int) Option {
	return func(o *decoderOptions) {
		o.ReadBufferSize = size
	}
}

// WithMetrics makes the decoder update m.
func WithMetrics(m *Metrics) Option {
	return func(o *decoderOptions) {
		o.Metrics = m
	}
}
