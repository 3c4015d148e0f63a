package http

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/depthbudget/internal/config"
)

// Config holds HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	RateLimit       float64 // requests per second per client, 0 disables
	RateBurst       int
	MaxSweepWidth   uint64
	NodeLimit       uint64 // per run, 0 = unlimited
}

// NewDefaultConfig returns the server defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Host:            config.DefaultHost,
		Port:            config.DefaultPort,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RateLimit:       config.DefaultRateLimit,
		RateBurst:       config.DefaultRateBurst,
		MaxSweepWidth:   config.DefaultMaxSweepWidth,
		NodeLimit:       config.DefaultNodeLimit,
	}
}

// FromSettings builds a Config from the server section of the application
// configuration.
func FromSettings(s config.ServerConfig) *Config {
	return &Config{
		Host:            s.Host,
		Port:            s.Port,
		RequestTimeout:  s.RequestTimeout.Duration(),
		ShutdownTimeout: s.ShutdownTimeout.Duration(),
		RateLimit:       s.RateLimit,
		RateBurst:       s.RateBurst,
		MaxSweepWidth:   s.MaxSweepWidth,
		NodeLimit:       s.NodeLimit,
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
