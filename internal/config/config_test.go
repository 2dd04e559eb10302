package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
device:
  enable: true
  server: "vector.example.com"
  device_id: "dev1"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Device.Namespace != "vector-api" {
		t.Fatalf("namespace = %q, want vector-api", cfg.Device.Namespace)
	}
	if cfg.Device.SyncIntervalSeconds != 0 {
		t.Fatalf("sync interval = %d, want 0", cfg.Device.SyncIntervalSeconds)
	}
	if cfg.Transport.Kind != "mqtt" {
		t.Fatalf("transport kind = %q, want mqtt", cfg.Transport.Kind)
	}
	if cfg.Transport.QoS != 1 {
		t.Fatalf("qos = %d, want 1", cfg.Transport.QoS)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("log level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadConfigClampsValues(t *testing.T) {
	path := writeConfig(t, `
device:
  sync_interval_seconds: -5
transport:
  qos: 7
probe:
  interval_seconds: 0
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Device.SyncIntervalSeconds != 0 {
		t.Fatalf("sync interval = %d, want clamped to 0", cfg.Device.SyncIntervalSeconds)
	}
	if cfg.Transport.QoS != 1 {
		t.Fatalf("qos = %d, want clamped to 1", cfg.Transport.QoS)
	}
	if cfg.Probe.IntervalSeconds != 30 {
		t.Fatalf("probe interval = %d, want 30", cfg.Probe.IntervalSeconds)
	}
}

func TestLoadConfigRejectsUnknownTransport(t *testing.T) {
	path := writeConfig(t, `
transport:
  kind: carrier-pigeon
`)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for unknown transport kind")
	}
}
