package mqstream

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/gonzalop/mqstream/internal/packets"
)

// PacketHandler is called by Consume for every decoded packet, in stream order.
// Returning an error stops Consume with that error.
type PacketHandler func(Packet) error

// Consume reads r until io.EOF and passes every decoded packet to handle.
//
// Reading and decoding run on two goroutines, so a slow handler does not
// delay the next Read by more than one chunk. Chunks are WithReadBufferSize
// bytes (4096 by default) and come from a pool.
//
// Consume returns nil at io.EOF, ctx.Err() when ctx is cancelled, the
// handler's error, ErrStreamCorrupt, or the read error. When it stops before
// EOF and r implements io.Closer, r is closed to unblock the pending Read;
// otherwise Consume waits for that Read to return.
//
// Bytes of an incomplete frame left at EOF stay buffered (see Buffered).
func (d *Decoder) Consume(ctx context.Context, r io.Reader, handle PacketHandler) error {
	chunks := make(chan *[]byte, 1)
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(chunks)
		return d.readChunks(gctx, r, chunks)
	})

	var drainErr error
	group.Go(func() error {
		drainErr = d.drain(ctx, chunks, handle)
		if drainErr != nil {
			if c, ok := r.(io.Closer); ok {
				_ = c.Close()
			}
		}
		return drainErr
	})

	err := group.Wait()
	if drainErr != nil {
		// The reader may fail first because r was closed under it.
		return drainErr
	}
	if err != nil {
		return err
	}

	if n := d.Buffered(); n > 0 {
		d.logger.Debug("stream ended inside a frame", "buffered", n)
	}
	return nil
}

func (d *Decoder) readChunks(ctx context.Context, r io.Reader, chunks chan<- *[]byte) error {
	size := d.opts.ReadBufferSize
	for {
		bufPtr := packets.GetBuffer(size)
		n, err := r.Read((*bufPtr)[:size])
		if n > 0 {
			*bufPtr = (*bufPtr)[:n]
			select {
			case chunks <- bufPtr:
			case <-ctx.Done():
				packets.PutBuffer(bufPtr)
				return ctx.Err()
			}
		} else {
			packets.PutBuffer(bufPtr)
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read stream: %w", err)
		}
	}
}

// drain decodes chunks until the reader closes the channel, so chunks read
// before a read error are still delivered.
func (d *Decoder) drain(ctx context.Context, chunks <-chan *[]byte, handle PacketHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case bufPtr, ok := <-chunks:
			if !ok {
				return nil
			}
			pkts, err := d.Decode(*bufPtr)
			packets.PutBuffer(bufPtr)

			for _, pkt := range pkts {
				if herr := handle(pkt); herr != nil {
					return herr
				}
			}
			if err != nil {
				return err
			}
		}
	}
}
