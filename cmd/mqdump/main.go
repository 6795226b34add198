// Command mqdump prints the MQTT 3.1.1 packets found in a byte stream.
//
// It reads a raw or hex dump of one direction of an MQTT connection, the TCP
// connections in a pcap capture, or live connections accepted on -listen.
//
//	mqdump session.bin
//	xxd -p session.bin | mqdump -format hex
//	mqdump -format pcap -port 1883 -topic 'sensors/#' capture.pcap
//	mqdump -listen :11883 -metrics :9100
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gonzalop/mqstream"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "mqdump: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("mqdump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: mqdump [flags] [file]")
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "config file (.toml, .yaml or .yml)")
	format := fs.String("format", formatRaw, "input format: raw, hex or pcap")
	port := fs.Int("port", 1883, "MQTT TCP port in pcap captures")
	listen := fs.String("listen", "", "accept raw MQTT streams on this address")
	metricsAddr := fs.String("metrics", "", "serve Prometheus metrics on this address")
	topic := fs.String("topic", "", "only print packets matching this topic filter")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn or error")
	unknown := fs.String("unknown-types", mqstream.SkipUnknown.String(), "unknown packet types: skip or fail")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return fmt.Errorf("expected at most one input file, got %d", fs.NArg())
	}

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadConfig(*configPath); err != nil {
			return err
		}
	}

	// Flags given on the command line win over the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Format = *format
		case "port":
			cfg.Port = *port
		case "listen":
			cfg.Listen = *listen
		case "metrics":
			cfg.MetricsAddr = *metricsAddr
		case "topic":
			cfg.Topic = *topic
		case "log-level":
			cfg.LogLevel = *logLevel
		case "unknown-types":
			cfg.UnknownTypes = *unknown
		}
	})
	if err := cfg.validate(); err != nil {
		return err
	}

	logger := newLogger(stderr, cfg.LogLevel)

	reg := prometheus.NewRegistry()
	metrics, err := mqstream.NewMetrics(reg, "mqdump")
	if err != nil {
		return err
	}

	d := &dumper{
		cfg:     cfg,
		log:     logger,
		slog:    decoderLogger(stderr, logger.GetLevel()),
		metrics: metrics,
		out:     newPrinter(stdout, cfg.Topic),
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, gctx := errgroup.WithContext(ctx)
	if cfg.MetricsAddr != "" {
		group.Go(func() error {
			return serveMetrics(gctx, cfg.MetricsAddr, reg, logger)
		})
	}
	group.Go(func() error {
		// Finishing the input also stops the metrics server.
		defer cancel()
		return d.run(gctx, fs.Arg(0), stdin)
	})

	err = group.Wait()
	if errors.Is(err, context.Canceled) {
		logger.Info().Msg("interrupted")
		return nil
	}
	return err
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(lvl).With().Timestamp().Str("app", "mqdump").Logger()
}

// decoderLogger returns the slog logger handed to the decoders. Their
// per-chunk tracing is only wanted at debug level.
func decoderLogger(w io.Writer, level zerolog.Level) *slog.Logger {
	if level > zerolog.DebugLevel {
		return nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
