// Package mqstream provides a streaming decoder for MQTT 3.1.1 control packets.
//
// Bytes arrive from a transport in chunks whose boundaries have nothing to do
// with frame boundaries. A Decoder buffers them, decodes every complete frame
// and keeps the incomplete tail for the next chunk. Frames it cannot decode are
// reported to an ErrorHandler and skipped, so one bad frame never stalls or
// desynchronizes the rest of the stream.
//
// # Quick Start
//
// Decode chunks as they arrive:
//
//	dec, err := mqstream.NewDecoder(
//	    mqstream.WithErrorHandler(mqstream.ErrorHandlerFunc(func(e *mqstream.DecodeError) {
//	        log.Printf("skipped frame: %v", e)
//	    })))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for chunk := range chunks {
//	    pkts, _ := dec.Decode(chunk)
//	    for _, p := range pkts {
//	        fmt.Println(mqstream.PacketName(p.Type()))
//	    }
//	}
//
// Or let the decoder pump an io.Reader:
//
//	err = dec.Consume(ctx, conn, func(p mqstream.Packet) error {
//	    if pub, ok := p.(*mqstream.PublishPacket); ok {
//	        fmt.Printf("%s: %s\n", pub.Topic, pub.Payload)
//	    }
//	    return nil
//	})
//
// # Decoding Rules
//
//   - Packets are returned in stream order and never partially.
//   - A frame split across chunks is decoded once its last byte arrives.
//   - A frame of a known type whose bytes are invalid is reported as
//     ErrMalformedPacket and its bytes are dropped.
//   - A frame announcing more than WithMaxIncomingPacket bytes is reported as
//     ErrPacketTooLarge; its fixed header is dropped and decoding resumes right
//     after it.
//   - A type code without a constructor is reported as ErrUnknownPacketType.
//     With SkipUnknown (default) one byte is skipped; with FailUnknown the
//     buffered bytes are dropped and Decode returns ErrStreamCorrupt until
//     Reset.
//
// # Custom Packet Types
//
// The dispatch table is a Registry indexed by the 4-bit type code. Codes 0
// and 15 (AUTH in MQTT 5.0) are free by default:
//
//	reg := mqstream.DefaultRegistry()
//	_ = reg.Register(15, func() mqstream.Packet { return &AuthPacket{} })
//	dec, _ := mqstream.NewDecoder(
//	    mqstream.WithRegistry(reg),
//	    mqstream.WithErrorHandler(handler))
//
// A custom Packet must read exactly its own frame in Read and return
// ErrEndOfStream when the buffer ends before the frame does.
//
// # Logging and Metrics
//
// WithLogger takes a *slog.Logger; the decoder only logs at Debug level.
// NewMetrics registers Prometheus collectors that WithMetrics wires into one
// or more decoders.
//
// # Thread Safety
//
// A Decoder serializes its calls with a mutex. The ErrorHandler runs inside
// Decode and must not call back into the same Decoder.
package mqstream
