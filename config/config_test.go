package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	opts, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if opts.ListenAddr != "127.0.0.1:8920" {
		t.Errorf("unexpected default addr: %s", opts.ListenAddr)
	}
	if opts.RateLimit != 0 || opts.LenientEnvelope {
		t.Errorf("unexpected defaults: %+v", opts)
	}
	if opts.ShutdownTimeout != 5*time.Second {
		t.Errorf("unexpected shutdown timeout: %s", opts.ShutdownTimeout)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GALDR_LISTEN_ADDR", "127.0.0.1:9100")
	t.Setenv("GALDR_RATE_LIMIT", "25.5")
	t.Setenv("GALDR_LENIENT_ENVELOPE", "true")
	t.Setenv("GALDR_SHUTDOWN_TIMEOUT", "250ms")

	opts, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if opts.ListenAddr != "127.0.0.1:9100" {
		t.Errorf("addr override ignored: %s", opts.ListenAddr)
	}
	if opts.RateLimit != 25.5 {
		t.Errorf("rate override ignored: %v", opts.RateLimit)
	}
	if !opts.LenientEnvelope {
		t.Error("lenient override ignored")
	}
	if opts.ShutdownTimeout != 250*time.Millisecond {
		t.Errorf("timeout override ignored: %s", opts.ShutdownTimeout)
	}
}
