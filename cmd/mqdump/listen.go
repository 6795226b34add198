package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// listen accepts TCP connections on addr and dumps each one as its own stream
// until ctx is cancelled.
func (d *dumper) listen(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	d.log.Info().Str("addr", ln.Addr().String()).Msg("listening")
	return d.serve(ctx, ln)
}

func (d *dumper) serve(ctx context.Context, ln net.Listener) error {
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		<-gctx.Done()
		return ln.Close()
	})

	group.Go(func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("accept: %w", err)
			}
			group.Go(func() error {
				d.handleConn(gctx, conn)
				return nil
			})
		}
	})

	return group.Wait()
}

func (d *dumper) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	stream := conn.RemoteAddr().String()
	d.log.Info().Str("stream", stream).Msg("connection accepted")

	err := d.dumpStream(ctx, stream, conn)
	switch {
	case err == nil:
		d.log.Info().Str("stream", stream).Msg("connection closed")
	case errors.Is(err, context.Canceled), errors.Is(err, net.ErrClosed):
		d.log.Debug().Str("stream", stream).Msg("connection stopped")
	default:
		d.log.Warn().Str("stream", stream).Err(err).Msg("connection closed with error")
	}
}

// serveMetrics exposes reg on addr at /metrics until ctx is cancelled.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
