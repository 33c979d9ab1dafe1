// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	// Run in an empty directory so no stray config.yaml is picked up.
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			t.Fatal(err)
		}
	})

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.SampleRate != DefaultSampleRate {
		t.Errorf("SampleRate = %v, want %v", cfg.SampleRate, DefaultSampleRate)
	}
	if cfg.Channels != DefaultChannels {
		t.Errorf("Channels = %d, want %d", cfg.Channels, DefaultChannels)
	}
	if cfg.DeviceID != DefaultDeviceID {
		t.Errorf("DeviceID = %d, want %d", cfg.DeviceID, DefaultDeviceID)
	}
	if cfg.UDPTarget != DefaultUDPTarget {
		t.Errorf("UDPTarget = %q, want %q", cfg.UDPTarget, DefaultUDPTarget)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for an explicit path that does not exist")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeTempConfig(t, "sample_rate: [not a number\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("error = %v, want parse failure", err)
	}
}

func TestLoadValues(t *testing.T) {
	path := writeTempConfig(t, `
sample_rate: 48000
channels: 2
device_id: 3
low_latency: true
websocket_port: "8080"
udp_enabled: true
udp_target: "10.0.0.1:9999"
udp_interval_ms: 25
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.SampleRate != 48000 {
		t.Errorf("SampleRate = %v, want 48000", cfg.SampleRate)
	}
	if cfg.Channels != 2 {
		t.Errorf("Channels = %d, want 2", cfg.Channels)
	}
	if cfg.DeviceID != 3 {
		t.Errorf("DeviceID = %d, want 3", cfg.DeviceID)
	}
	if !cfg.LowLatency {
		t.Error("LowLatency = false, want true")
	}
	if cfg.WebSocketPort != "8080" {
		t.Errorf("WebSocketPort = %q, want 8080", cfg.WebSocketPort)
	}
	if !cfg.UDPEnabled || cfg.UDPTarget != "10.0.0.1:9999" || cfg.UDPIntervalMS != 25 {
		t.Errorf("UDP settings = %v %q %d, want true 10.0.0.1:9999 25",
			cfg.UDPEnabled, cfg.UDPTarget, cfg.UDPIntervalMS)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeTempConfig(t, "sample_rate: 48000\ndevice_id: 3\n")

	t.Setenv("TUNER_DEVICE_ID", "7")
	t.Setenv("TUNER_SAMPLE_RATE", "96000")
	t.Setenv("TUNER_WEBSOCKET_PORT", "9001")
	t.Setenv("TUNER_VERBOSE", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DeviceID != 7 {
		t.Errorf("DeviceID = %d, want env override 7", cfg.DeviceID)
	}
	if cfg.SampleRate != 96000 {
		t.Errorf("SampleRate = %v, want env override 96000", cfg.SampleRate)
	}
	if cfg.WebSocketPort != "9001" {
		t.Errorf("WebSocketPort = %q, want env override 9001", cfg.WebSocketPort)
	}
	if !cfg.Verbose {
		t.Error("Verbose = false, want env override true")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"sample rate too low", func(c *Config) { c.SampleRate = 4000 }, true},
		{"sample rate too high", func(c *Config) { c.SampleRate = 400000 }, true},
		{"zero channels", func(c *Config) { c.Channels = 0 }, true},
		{"device below default sentinel", func(c *Config) { c.DeviceID = -2 }, true},
		{"zero frames per buffer", func(c *Config) { c.FramesPerBuffer = 0 }, true},
		{"udp without target", func(c *Config) { c.UDPEnabled = true; c.UDPTarget = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNormalizesFramesPerBuffer(t *testing.T) {
	cfg := NewConfig()
	cfg.FramesPerBuffer = 1000

	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.FramesPerBuffer != 1024 {
		t.Errorf("FramesPerBuffer = %d, want rounded up to 1024", cfg.FramesPerBuffer)
	}
}

func TestValidateDefaultsUDPInterval(t *testing.T) {
	cfg := NewConfig()
	cfg.UDPIntervalMS = 0

	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.UDPIntervalMS != DefaultUDPIntervalMS {
		t.Errorf("UDPIntervalMS = %d, want %d", cfg.UDPIntervalMS, DefaultUDPIntervalMS)
	}
}
