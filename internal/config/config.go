// Package config provides configuration loading for depthbudget.
//
// Configuration is layered: hardcoded defaults, then an optional YAML file,
// then DEPTHBUDGET_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/depthbudget/internal/budget"
)

// Config holds the complete depthbudget configuration.
type Config struct {
	Sweep     SweepConfig     `koanf:"sweep"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// SweepConfig holds defaults for budget sweeps.
type SweepConfig struct {
	Policies    []string `koanf:"policies"`
	Branching   uint64   `koanf:"branching"`
	From        uint64   `koanf:"from"`
	To          uint64   `koanf:"to"` // exclusive
	Parallelism int      `koanf:"parallelism"`
	NodeLimit   uint64   `koanf:"node_limit"` // per run, 0 = unlimited
	Format      string   `koanf:"format"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
	RequestTimeout  Duration `koanf:"request_timeout"`
	RateLimit       float64  `koanf:"rate_limit"` // requests per second per client
	RateBurst       int      `koanf:"rate_burst"`
	MaxSweepWidth   uint64   `koanf:"max_sweep_width"`
	NodeLimit       uint64   `koanf:"node_limit"`
}

// LoggingConfig holds the subset of logging settings exposed to users.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	OTEL   bool   `koanf:"otel"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled        bool     `koanf:"enabled"`
	Endpoint       string   `koanf:"endpoint"`
	Protocol       string   `koanf:"protocol"` // "grpc" or "http/protobuf"
	ServiceName    string   `koanf:"service_name"`
	Insecure       bool     `koanf:"insecure"`
	SampleRate     float64  `koanf:"sample_rate"`
	ExportInterval Duration `koanf:"export_interval"`
}

// Default values.
const (
	DefaultBranching     = 3
	DefaultSweepTo       = 512
	DefaultFormat        = "text"
	DefaultHost          = "localhost"
	DefaultPort          = 9191
	DefaultRateLimit     = 10
	DefaultRateBurst     = 20
	DefaultMaxSweepWidth = 1024
	DefaultNodeLimit     = 50_000_000
	DefaultServiceName   = "depthbudget"
	DefaultOTLPEndpoint  = "localhost:4317"
)

// NewDefaultConfig returns a configuration with every default applied.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	// Sweep defaults mirror the classic comparison: n=3, budgets 0..511.
	if len(cfg.Sweep.Policies) == 0 {
		cfg.Sweep.Policies = []string{string(budget.PolicyLegacy), string(budget.PolicySeverity)}
	}
	if cfg.Sweep.Branching == 0 {
		cfg.Sweep.Branching = DefaultBranching
	}
	if cfg.Sweep.To == 0 {
		cfg.Sweep.To = DefaultSweepTo
	}
	if cfg.Sweep.Parallelism == 0 {
		cfg.Sweep.Parallelism = len(cfg.Sweep.Policies)
	}
	if cfg.Sweep.Format == "" {
		cfg.Sweep.Format = DefaultFormat
	}

	// Server defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = Duration(30 * time.Second)
	}
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = DefaultRateLimit
	}
	if cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = DefaultRateBurst
	}
	if cfg.Server.MaxSweepWidth == 0 {
		cfg.Server.MaxSweepWidth = DefaultMaxSweepWidth
	}
	if cfg.Server.NodeLimit == 0 {
		cfg.Server.NodeLimit = DefaultNodeLimit
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	// Telemetry defaults (disabled unless configured)
	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = DefaultOTLPEndpoint
	}
	if cfg.Telemetry.Protocol == "" {
		cfg.Telemetry.Protocol = "grpc"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = DefaultServiceName
	}
	if cfg.Telemetry.SampleRate == 0 {
		cfg.Telemetry.SampleRate = 1.0
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = Duration(15 * time.Second)
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Sweep.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sweep: %w", err))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit cannot be negative"))
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("server.rate_burst must be >= 1 when rate limiting is enabled"))
	}
	if c.Server.MaxSweepWidth == 0 {
		errs = append(errs, fmt.Errorf("server.max_sweep_width must be positive"))
	}

	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be one of trace, debug, info, warn, error; got %q", c.Logging.Level))
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		errs = append(errs, fmt.Errorf("logging.format must be 'json' or 'console', got %q", c.Logging.Format))
	}

	if c.Telemetry.Protocol != "grpc" && c.Telemetry.Protocol != "http/protobuf" {
		errs = append(errs, fmt.Errorf("telemetry.protocol must be 'grpc' or 'http/protobuf', got %q", c.Telemetry.Protocol))
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sample_rate must be between 0 and 1, got %f", c.Telemetry.SampleRate))
	}

	return errors.Join(errs...)
}

// Validate checks a sweep definition.
func (s *SweepConfig) Validate() error {
	if len(s.Policies) == 0 {
		return fmt.Errorf("at least one policy is required")
	}
	for _, name := range s.Policies {
		if _, err := budget.ParsePolicy(name); err != nil {
			return err
		}
	}
	if s.From >= s.To {
		return fmt.Errorf("from (%d) must be less than to (%d)", s.From, s.To)
	}
	if s.Parallelism < 0 {
		return fmt.Errorf("parallelism cannot be negative")
	}
	switch s.Format {
	case "text", "table", "json", "yaml", "toml":
	default:
		return fmt.Errorf("unknown format %q", s.Format)
	}
	return nil
}
