package printer

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Family selects which protocol state machine the Facade drives (§4.6).
type Family string

const (
	FamilyKodak Family = "kodak"
	FamilyCanon Family = "canon"
)

// Config is the construction-time configuration recognized by the Facade
// (§4.6): `{address, channel=1, family, is_slim=false, min_battery=30,
// command_timeout_ms=5000, chunk_delay_ms=20, auto_disconnect_s=30}`.
type Config struct {
	Address          string `yaml:"address"`
	Channel          int    `yaml:"channel"`
	Family           Family `yaml:"family"`
	IsSlim           bool   `yaml:"is_slim"`
	MinBattery       int    `yaml:"min_battery"`
	CommandTimeoutMs int    `yaml:"command_timeout_ms"`
	ChunkDelayMs     int    `yaml:"chunk_delay_ms"`
	AutoDisconnectS  int    `yaml:"auto_disconnect_s"`
}

// defaults applies the spec's §4.6 default values for any zero-valued
// optional field.
func (c *Config) defaults() {
	if c.Channel == 0 {
		c.Channel = 1
	}
	if c.MinBattery == 0 {
		c.MinBattery = 30
	}
	if c.CommandTimeoutMs == 0 {
		c.CommandTimeoutMs = 5000
	}
	if c.ChunkDelayMs == 0 {
		c.ChunkDelayMs = 20
	}
	if c.AutoDisconnectS == 0 {
		c.AutoDisconnectS = 30
	}
}

// Validate rejects out-of-range configuration, returning a plain error
// that names the first offending field; the error is not a *zerr.Error
// and carries no InvalidArgument kind.
func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("printer: config.address is required")
	}
	if c.Family != FamilyKodak && c.Family != FamilyCanon {
		return fmt.Errorf("printer: config.family must be %q or %q", FamilyKodak, FamilyCanon)
	}
	if c.Channel <= 0 {
		return fmt.Errorf("printer: config.channel must be > 0")
	}
	if c.MinBattery < 0 || c.MinBattery > 100 {
		return fmt.Errorf("printer: config.min_battery must be 0..100")
	}
	if c.CommandTimeoutMs <= 0 {
		return fmt.Errorf("printer: config.command_timeout_ms must be > 0")
	}
	if c.ChunkDelayMs < 0 {
		return fmt.Errorf("printer: config.chunk_delay_ms must be >= 0")
	}
	if c.AutoDisconnectS <= 0 {
		return fmt.Errorf("printer: config.auto_disconnect_s must be > 0")
	}
	return nil
}

// LoadConfig reads path as YAML, applies §4.6 defaults, and validates the
// result.
func LoadConfig(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("printer: read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("printer: parse config yaml: %w", err)
	}
	cfg.defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
