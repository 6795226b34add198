package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"

	"github.com/gonzalop/mqstream"
)

// Input formats
const (
	formatRaw  = "raw"
	formatHex  = "hex"
	formatPcap = "pcap"
)

// Config holds the mqdump settings. Keys are shared by the TOML and YAML
// config files.
type Config struct {
	// Input format of the file argument: raw, hex or pcap
	Format string `toml:"format" yaml:"format"`

	// TCP port of the MQTT side in pcap captures
	Port int `toml:"port" yaml:"port"`

	// Accept raw MQTT streams on this address instead of reading a file
	Listen string `toml:"listen" yaml:"listen"`

	// Serve Prometheus metrics on this address (optional)
	MetricsAddr string `toml:"metrics_addr" yaml:"metrics_addr"`

	// Largest accepted remaining length (0 = protocol maximum)
	MaxPacketSize int `toml:"max_packet_size" yaml:"max_packet_size"`

	// What to do with unknown packet types: skip or fail
	UnknownTypes string `toml:"unknown_types" yaml:"unknown_types"`

	// Read chunk size
	ChunkSize int `toml:"chunk_size" yaml:"chunk_size"`

	LogLevel string `toml:"log_level" yaml:"log_level"`

	// Only print packets whose topics match this filter (optional)
	Topic string `toml:"topic" yaml:"topic"`
}

func defaultConfig() Config {
	return Config{
		Format:       formatRaw,
		Port:         1883,
		UnknownTypes: mqstream.SkipUnknown.String(),
		ChunkSize:    mqstream.DefaultReadBufferSize,
		LogLevel:     "info",
	}
}

// loadConfig reads path over the defaults. Files ending in .yaml or .yml are
// YAML, anything else is TOML.
func loadConfig(path string) (Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAMLConfig(path)
	default:
		return loadTOMLConfig(path)
	}
}

func loadYAMLConfig(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load mqdump config: %w", err)
	}
	// Keys missing from the file keep their defaults.
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("load mqdump config: %w", err)
	}
	return cfg, nil
}

func loadTOMLConfig(path string) (Config, error) {
	cfg := defaultConfig()

	var raw Config
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load mqdump config: %w", err)
	}

	if meta.IsDefined("format") {
		cfg.Format = strings.TrimSpace(raw.Format)
	}
	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}
	if meta.IsDefined("listen") {
		cfg.Listen = strings.TrimSpace(raw.Listen)
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("max_packet_size") {
		cfg.MaxPacketSize = raw.MaxPacketSize
	}
	if meta.IsDefined("unknown_types") {
		cfg.UnknownTypes = strings.TrimSpace(raw.UnknownTypes)
	}
	if meta.IsDefined("chunk_size") {
		cfg.ChunkSize = raw.ChunkSize
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("topic") {
		cfg.Topic = strings.TrimSpace(raw.Topic)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load mqdump config: unknown key %q", undecoded[0].String())
	}
	return cfg, nil
}

// validate checks the settings and normalizes their case.
func (c *Config) validate() error {
	c.Format = strings.ToLower(c.Format)
	switch c.Format {
	case formatRaw, formatHex, formatPcap:
	default:
		return fmt.Errorf("unsupported format %q (expected raw, hex or pcap)", c.Format)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.MaxPacketSize < 0 || c.MaxPacketSize > mqstream.MaxPacketSize {
		return fmt.Errorf("max_packet_size %d out of range 0-%d", c.MaxPacketSize, mqstream.MaxPacketSize)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size %d must be positive", c.ChunkSize)
	}
	if _, err := c.unknownTypePolicy(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	if c.Topic != "" {
		if err := mqstream.ValidateTopicFilter(c.Topic); err != nil {
			return fmt.Errorf("invalid topic: %w", err)
		}
	}
	if c.Listen != "" && c.Format != formatRaw {
		return fmt.Errorf("listen mode reads raw streams, format %q not supported", c.Format)
	}
	return nil
}

func (c *Config) unknownTypePolicy() (mqstream.UnknownTypePolicy, error) {
	switch strings.ToLower(c.UnknownTypes) {
	case mqstream.SkipUnknown.String():
		return mqstream.SkipUnknown, nil
	case mqstream.FailUnknown.String():
		return mqstream.FailUnknown, nil
	default:
		return 0, fmt.Errorf("unsupported unknown_types %q (expected skip or fail)", c.UnknownTypes)
	}
}
