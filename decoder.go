package mqstream

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gonzalop/mqstream/internal/packets"
)

// Decoder turns a stream of bytes, delivered in chunks of any size, into MQTT
// control packets.
//
// Bytes that do not form a complete frame yet are kept until the next call to
// Decode. Invalid frames are reported to the ErrorHandler and skipped, so one
// bad frame never stalls the stream.
//
// A Decoder is safe for concurrent use, but it models a single stream: calls
// are serialized and see the bytes in the order the calls acquire the lock.
type Decoder struct {
	opts     *decoderOptions
	logger   *slog.Logger
	registry *Registry
	metrics  *Metrics

	mu       sync.Mutex
	buf      *packets.Buffer
	offset   int64 // stream offset of buf's first byte
	buffered int   // last value added to the buffered gauge
	skip     int   // body bytes of an oversized frame still to discard
	corrupt  bool
}

// NewDecoder creates a Decoder. WithErrorHandler is required.
//
// Example:
//
//	dec, err := mqstream.NewDecoder(
//	    mqstream.WithErrorHandler(mqstream.ErrorHandlerFunc(func(e *mqstream.DecodeError) {
//	        log.Println(e)
//	    })),
//	    mqstream.WithMaxIncomingPacket(1<<20))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pkts, err := dec.Decode(chunk)
func NewDecoder(opts ...Option) (*Decoder, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	if err := checkOptions(options); err != nil {
		return nil, err
	}

	logger := options.Logger
	if logger == nil {
		logger = defaultOptions().Logger
	}

	registry := options.Registry
	if registry == nil {
		registry = DefaultRegistry()
	} else {
		registry = registry.Clone()
	}

	buf := packets.NewBuffer(nil)
	buf.SetMaxFrame(options.MaxIncomingPacket)

	return &Decoder{
		opts:     options,
		logger:   logger.With("lib", "mqstream"),
		registry: registry,
		metrics:  options.Metrics,
		buf:      buf,
	}, nil
}

func checkOptions(o *decoderOptions) error {
	if o.ErrorHandler == nil {
		return ErrNoErrorHandler
	}
	if o.MaxIncomingPacket < 0 || o.MaxIncomingPacket > MaxPacketSize {
		return fmt.Errorf("max incoming packet %d out of range 0-%d", o.MaxIncomingPacket, MaxPacketSize)
	}
	if o.ReadBufferSize <= 0 {
		return fmt.Errorf("read buffer size %d must be positive", o.ReadBufferSize)
	}
	if o.UnknownTypePolicy != SkipUnknown && o.UnknownTypePolicy != FailUnknown {
		return fmt.Errorf("invalid unknown type policy %d", o.UnknownTypePolicy)
	}
	return nil
}

// Decode appends data to the buffered bytes and decodes every complete frame.
//
// Packets are returned in stream order. An incomplete trailing frame is kept
// for the next call, so Decode(nil) after a pause returns nothing new. Invalid
// frames go to the ErrorHandler once and do not stop decoding. The body of a
// frame above the size limit is discarded as it arrives, never decoded.
//
// The only error Decode returns is ErrStreamCorrupt, after an unknown packet
// type under FailUnknown. Packets decoded before that point are still
// returned.
func (d *Decoder) Decode(data []byte) ([]Packet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.corrupt {
		return nil, ErrStreamCorrupt
	}
	d.metrics.bytesReceived(len(data))
	defer d.updateBuffered()

	commit := d.buf.Mark()
	_, _ = d.buf.Write(data)
	d.buf.ResetTo(commit)

	var result []Packet
	for d.buf.Remaining() > 0 {
		if d.skip > 0 {
			n := min(d.skip, d.buf.Remaining())
			d.buf.Seek(n)
			d.skip -= n
			d.commit()
			continue
		}

		start := d.buf.Mark()

		// Peek the type code; the packet reads its own fixed header.
		first, _ := d.buf.ReadByte()
		d.buf.Seek(-1)
		code := first >> 4

		ctor := d.registry.Lookup(code)
		if ctor == nil {
			d.report(code, start, fmt.Errorf("%w %d (first byte 0x%02X)", ErrUnknownPacketType, code, first))
			if d.opts.UnknownTypePolicy == FailUnknown {
				d.offset += int64(d.buf.Len())
				d.buf.Reset()
				d.corrupt = true
				return result, ErrStreamCorrupt
			}
			d.buf.Seek(1)
			d.commit()
			continue
		}

		pkt := ctor()
		err := pkt.Read(d.buf)
		switch {
		case err == nil:
			result = append(result, pkt)
			d.metrics.packetDecoded(pkt.Type())
			d.commit()

		case errors.Is(err, ErrEndOfStream):
			d.buf.ResetTo(start)
			d.logger.Debug("waiting for more data",
				"type", PacketName(code),
				"buffered", d.buf.Remaining())
			return result, nil

		case errors.Is(err, ErrPacketTooLarge):
			d.report(code, start, err)
			// Discard the announced body, even if it spans later calls.
			d.buf.ResetTo(start)
			h, _ := packets.ReadFixedHeader(d.buf)
			d.skip = h.RemainingLength
			d.logger.Debug("skipping oversized frame",
				"type", PacketName(code),
				"remaining_length", h.RemainingLength)
			d.commit()

		default:
			d.report(code, start, err)
			// Drop what the attempt consumed, and at least the first byte.
			if d.buf.Position() <= int(start) {
				d.buf.ResetTo(start)
				d.buf.Seek(1)
			}
			d.commit()
		}
	}

	return result, nil
}

// commit drops every byte before the cursor.
func (d *Decoder) commit() {
	m := d.buf.Mark()
	d.offset += int64(m)
	d.buf.Commit(m)
}

func (d *Decoder) report(code uint8, at Mark, err error) {
	decErr := &DecodeError{
		PacketType: code,
		Offset:     d.offset + int64(at),
		Err:        err,
	}
	d.logger.Debug("decode error",
		"type", PacketName(code),
		"offset", decErr.Offset,
		"error", err)
	d.metrics.decodeError(err)
	d.opts.ErrorHandler.HandleDecodeError(decErr)
}

func (d *Decoder) updateBuffered() {
	n := d.buf.Len()
	d.metrics.bufferedDelta(n - d.buffered)
	d.buffered = n
}

// Buffered returns the number of bytes held for the next call to Decode.
func (d *Decoder) Buffered() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Len()
}

// Offset returns the stream offset of the first byte not yet consumed.
func (d *Decoder) Offset() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.offset
}

// Reset drops the buffered bytes and clears ErrStreamCorrupt. The decoder then
// behaves as if newly created; offsets restart at 0.
func (d *Decoder) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.buf.Reset()
	d.offset = 0
	d.skip = 0
	d.corrupt = false
	d.updateBuffered()
}
