// Package config loads runtime options from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Options are the tunables of the bridge and dispatcher.
type Options struct {
	// ListenAddr is the bridge's HTTP listen address.
	ListenAddr string `env:"GALDR_LISTEN_ADDR" envDefault:"127.0.0.1:8920"`

	// RateLimit caps dispatched calls per second; 0 disables limiting.
	RateLimit float64 `env:"GALDR_RATE_LIMIT" envDefault:"0"`
	RateBurst int     `env:"GALDR_RATE_BURST" envDefault:"0"`

	// LenientEnvelope drops malformed wire calls instead of answering
	// with an Error envelope.
	LenientEnvelope bool `env:"GALDR_LENIENT_ENVELOPE" envDefault:"false"`

	// ShutdownTimeout bounds the wait for in-flight calls on Close.
	ShutdownTimeout time.Duration `env:"GALDR_SHUTDOWN_TIMEOUT" envDefault:"5s"`

	LogLevel string `env:"GALDR_LOG_LEVEL" envDefault:"info"`
}

// Load parses Options from the environment.
func Load() (Options, error) {
	var opts Options
	if err := env.Parse(&opts); err != nil {
		return Options{}, fmt.Errorf("parse env: %w", err)
	}
	return opts, nil
}
