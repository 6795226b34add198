package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rs/zerolog"

	"github.com/gonzalop/mqstream"
)

// dumper decodes MQTT streams and prints their packets.
type dumper struct {
	cfg     Config
	log     zerolog.Logger
	slog    *slog.Logger // decoder debug output, nil unless log_level is debug
	metrics *mqstream.Metrics
	out     *printer
}

func (d *dumper) newDecoder(stream string) (*mqstream.Decoder, error) {
	policy, err := d.cfg.unknownTypePolicy()
	if err != nil {
		return nil, err
	}

	return mqstream.NewDecoder(
		mqstream.WithErrorHandler(mqstream.ErrorHandlerFunc(func(e *mqstream.DecodeError) {
			d.log.Warn().
				Str("stream", stream).
				Str("type", mqstream.PacketName(e.PacketType)).
				Int64("offset", e.Offset).
				Err(e.Err).
				Msg("undecodable frame")
		})),
		mqstream.WithLogger(d.slog),
		mqstream.WithMaxIncomingPacket(d.cfg.MaxPacketSize),
		mqstream.WithUnknownTypePolicy(policy),
		mqstream.WithReadBufferSize(d.cfg.ChunkSize),
		mqstream.WithMetrics(d.metrics),
	)
}

// run dumps the input selected by the config: a listener, a pcap capture, or
// a raw or hex byte stream read from path (stdin if path is empty or "-").
func (d *dumper) run(ctx context.Context, path string, stdin io.Reader) error {
	if d.cfg.Listen != "" {
		return d.listen(ctx, d.cfg.Listen)
	}

	name := path
	var r io.Reader = stdin
	if path == "" || path == "-" {
		name = "stdin"
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	switch d.cfg.Format {
	case formatPcap:
		return d.dumpPcap(ctx, r)
	case formatHex:
		return d.dumpStream(ctx, name, newHexReader(r))
	default:
		return d.dumpStream(ctx, name, r)
	}
}

// dumpStream decodes r as a single MQTT byte stream.
func (d *dumper) dumpStream(ctx context.Context, stream string, r io.Reader) error {
	dec, err := d.newDecoder(stream)
	if err != nil {
		return err
	}

	err = dec.Consume(ctx, r, func(p mqstream.Packet) error {
		return d.out.Print(stream, p)
	})
	if n := dec.Buffered(); n > 0 {
		d.log.Warn().Str("stream", stream).Int("bytes", n).Msg("stream ended inside a frame")
	}
	if err != nil {
		return fmt.Errorf("%s: %w", stream, err)
	}
	return nil
}
