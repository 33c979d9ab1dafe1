// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"tuner/pkg/bitint"
)

// defaultConfigFile is searched when no explicit path is given.
const defaultConfigFile = "config.yaml"

// Load builds a Config from defaults, an optional YAML file, and
// environment variable overrides, then validates the result.
//
// If path is empty, defaultConfigFile is used when present; a missing
// default file is not an error. An explicit path that cannot be read is.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case explicit:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		// No default config file; run on built-in defaults.
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets a few settings be overridden without touching the
// config file, mainly for containerized or scripted runs.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TUNER_DEVICE_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			cfg.DeviceID = id
		}
	}
	if v := os.Getenv("TUNER_SAMPLE_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SampleRate = rate
		}
	}
	if v := os.Getenv("TUNER_WEBSOCKET_PORT"); v != "" {
		cfg.WebSocketPort = v
	}
	if v := os.Getenv("TUNER_VERBOSE"); v != "" {
		if verbose, err := strconv.ParseBool(v); err == nil {
			cfg.Verbose = verbose
		}
	}
}

// Validate checks the capture-side settings and normalizes the buffer size
// up to the next power of 2.
func (c *Config) Validate() error {
	if c.SampleRate < MinSampleRate || c.SampleRate > MaxSampleRate {
		return fmt.Errorf("sample rate %.0f Hz outside supported range %d-%d", c.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Channels < 1 {
		return fmt.Errorf("channels must be at least 1, got %d", c.Channels)
	}
	if c.DeviceID < MinDeviceID {
		return fmt.Errorf("invalid device ID: %d", c.DeviceID)
	}
	if c.FramesPerBuffer < 1 {
		return fmt.Errorf("frames per buffer must be at least 1, got %d", c.FramesPerBuffer)
	}
	if !bitint.IsPowerOfTwo(c.FramesPerBuffer) {
		c.FramesPerBuffer = bitint.NextPowerOfTwo(c.FramesPerBuffer)
	}
	if c.UDPEnabled && c.UDPTarget == "" {
		return fmt.Errorf("udp_target is required when udp_enabled is set")
	}
	if c.UDPIntervalMS < 1 {
		c.UDPIntervalMS = DefaultUDPIntervalMS
	}
	return nil
}
