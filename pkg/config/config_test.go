package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `environment: test

server:
  port: 8080
  read_timeout: 10s
  write_timeout: 10s
  shutdown_timeout: 10s

chart:
  default_frame: western
  cache_ttl: 24h

transit:
  enabled: true
  interval: 1m
  ping_interval: 45s
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeConfig(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Environment != "test" {
		t.Fatalf("unexpected environment %q", c.Environment)
	}
	if c.Server.Port != 8080 {
		t.Fatalf("unexpected port %d", c.Server.Port)
	}
	if c.Transit.PingInterval != 45*time.Second {
		t.Fatalf("unexpected ping interval %v", c.Transit.PingInterval)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CHART_DEFAULT_FRAME", "vedic")

	c, err := LoadWithEnv(writeConfig(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 9090 {
		t.Fatalf("expected port override, got %d", c.Server.Port)
	}
	if c.Chart.DefaultFrame != "vedic" {
		t.Fatalf("expected frame override, got %q", c.Chart.DefaultFrame)
	}
}

func TestLoadWithEnvBadPortKeepsFile(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	c, err := LoadWithEnv(writeConfig(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 8080 {
		t.Fatalf("expected file port to survive, got %d", c.Server.Port)
	}
}
