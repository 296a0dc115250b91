// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"code.hybscloud.com/csp/internal/logging"
)

// Delivery modes.
const (
	ModeDirect   = "direct"
	ModeDeferred = "deferred"
)

const (
	DefaultLogLevel       = "info"
	DefaultMode           = ModeDirect
	DefaultOutboxCapacity = 64
)

// ErrInvalid reports a configuration that failed validation.
var ErrInvalid = errors.New("invalid config")

// Config is the cspctl configuration file.
type Config struct {
	LogLevel       string `toml:"log_level"`
	Mode           string `toml:"mode"`
	OutboxCapacity int    `toml:"outbox_capacity"`
	// FlowToken pins the scenario run token; empty means a fresh UUIDv7.
	FlowToken string `toml:"flow_token"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

// Load reads path, fills defaults and validates the result.
func Load(path string) (Config, error) {
	var cfg Config
	if err := loadToml(path, &cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if strings.TrimSpace(cfg.Mode) == "" {
		cfg.Mode = DefaultMode
	}
	if cfg.OutboxCapacity == 0 {
		cfg.OutboxCapacity = DefaultOutboxCapacity
	}
}

// Validate checks cfg. Failures wrap ErrInvalid.
func Validate(cfg Config) error {
	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalid, cfg.LogLevel)
	}
	switch cfg.Mode {
	case ModeDirect, ModeDeferred:
	default:
		return fmt.Errorf("%w: mode must be %q or %q, got %q", ErrInvalid, ModeDirect, ModeDeferred, cfg.Mode)
	}
	if cfg.OutboxCapacity < 0 {
		return fmt.Errorf("%w: outbox_capacity must not be negative", ErrInvalid)
	}
	return nil
}
