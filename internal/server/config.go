package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds server configuration.
type Config struct {
	// Network settings
	HTTPAddr string `json:"http_addr" yaml:"http_addr"`
	QUICAddr string `json:"quic_addr" yaml:"quic_addr"` // empty disables the QUIC feed

	// Simulation settings
	TickRate      int   `json:"tick_rate" yaml:"tick_rate"`           // sim steps per second
	BroadcastRate int   `json:"broadcast_rate" yaml:"broadcast_rate"` // frames per second
	Seed          int64 `json:"seed" yaml:"seed"`                     // 0 derives a seed from the wall clock
	Parallelism   int   `json:"parallelism" yaml:"parallelism"`       // agent update workers, 0 = serial

	// Trace settings
	TraceBuffer int  `json:"trace_buffer" yaml:"trace_buffer"` // recorder ring capacity
	TraceNodes  bool `json:"trace_nodes" yaml:"trace_nodes"`   // per-node status events

	// Logging settings
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:      "127.0.0.1:8080",
		QUICAddr:      "127.0.0.1:8443",
		TickRate:      60,
		BroadcastRate: 20,
		TraceBuffer:   4096,
		LogLevel:      "info",
	}
}

// LoadConfig reads a YAML config file, layering it over the defaults.
// An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("%w: http_addr is required", ErrInvalidConfig)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: tick_rate must be positive, got %d", ErrInvalidConfig, c.TickRate)
	}
	if c.BroadcastRate <= 0 {
		return fmt.Errorf("%w: broadcast_rate must be positive, got %d", ErrInvalidConfig, c.BroadcastRate)
	}
	if c.BroadcastRate > c.TickRate {
		return fmt.Errorf("%w: broadcast_rate %d exceeds tick_rate %d", ErrInvalidConfig, c.BroadcastRate, c.TickRate)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("%w: parallelism must not be negative, got %d", ErrInvalidConfig, c.Parallelism)
	}
	return nil
}
