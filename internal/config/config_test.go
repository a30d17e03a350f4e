package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Aggregator.Interval != 30*time.Second {
		t.Errorf("expected 30s aggregation interval, got %v", cfg.Aggregator.Interval)
	}
	if cfg.Aggregator.FetchTimeout != 10*time.Second {
		t.Errorf("expected 10s fetch timeout, got %v", cfg.Aggregator.FetchTimeout)
	}
	if cfg.Hub.PushInterval != 10*time.Second {
		t.Errorf("expected 10s push interval, got %v", cfg.Hub.PushInterval)
	}
	if !cfg.Sources.WeatherEnabled || !cfg.Sources.SeismicEnabled {
		t.Error("expected real sources enabled by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected info level, got %q", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("AGGREGATION_INTERVAL", "45s")
	t.Setenv("SEISMIC_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Aggregator.Interval != 45*time.Second {
		t.Errorf("expected 45s interval, got %v", cfg.Aggregator.Interval)
	}
	if cfg.Sources.SeismicEnabled {
		t.Error("expected seismic disabled")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug, got %q", cfg.Logging.Level)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("AGGREGATION_INTERVAL", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected fallback port, got %d", cfg.Server.Port)
	}
	if cfg.Aggregator.Interval != 30*time.Second {
		t.Errorf("expected fallback interval, got %v", cfg.Aggregator.Interval)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("SERVER_PORT", "70000")
	if _, err := Load(); err == nil {
		t.Error("expected error for out-of-range port")
	}

	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("LOG_LEVEL", "verbose")
	if _, err := Load(); err == nil {
		t.Error("expected error for unknown log level")
	}

	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("AGGREGATION_INTERVAL", "500ms")
	if _, err := Load(); err == nil {
		t.Error("expected error for sub-second aggregation interval")
	}

	t.Setenv("AGGREGATION_INTERVAL", "30s")
	t.Setenv("HUB_PUSH_INTERVAL", "100ms")
	if _, err := Load(); err == nil {
		t.Error("expected error for sub-second push interval")
	}
}
