// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads dispatcher, transport and logging settings.
//
// Settings are layered with increasing priority: built-in defaults, an
// optional YAML file, then environment variables prefixed with HTTPQ_.
// An environment variable name maps to a key by dropping the prefix,
// lowering the case and turning underscores into dots, so
// HTTPQ_DISPATCHER_RATE_LIMIT sets dispatcher.rate.limit.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "HTTPQ_"

// Config holds every setting.
type Config struct {
	Dispatcher DispatcherConfig `koanf:"dispatcher"`
	Transport  TransportConfig  `koanf:"transport"`
	Log        LogConfig        `koanf:"log"`
}

// DispatcherConfig sizes the worker pool.
type DispatcherConfig struct {
	Workers int        `koanf:"workers" validate:"min=1,max=4096"`
	Queue   int        `koanf:"queue" validate:"min=0,max=1048576"`
	Rate    RateConfig `koanf:"rate"`
}

// RateConfig limits how fast attempts start. A zero limit disables
// rate limiting.
type RateConfig struct {
	Limit float64 `koanf:"limit" validate:"min=0"`
	Burst int     `koanf:"burst" validate:"min=0"`
}

// TransportConfig configures the default transport.
type TransportConfig struct {
	Timeout TimeoutConfig `koanf:"timeout"`
	Proxy   string        `koanf:"proxy" validate:"omitempty,oneof=none environment"`
}

// TimeoutConfig holds transport timeouts. Zero means no limit.
type TimeoutConfig struct {
	Connect time.Duration `koanf:"connect" validate:"min=0"`
	Read    time.Duration `koanf:"read" validate:"min=0"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Pretty bool   `koanf:"pretty"`
}

// Defaults returns the built-in settings as koanf keys.
func Defaults() map[string]any {
	return map[string]any{
		"dispatcher.workers":    8,
		"dispatcher.queue":      64,
		"dispatcher.rate.limit": 0,
		"dispatcher.rate.burst": 0,

		"transport.timeout.connect": "10s",
		"transport.timeout.read":    "30s",
		"transport.proxy":           "none",

		"log.level":  "info",
		"log.pretty": false,
	}
}

// Load reads the configuration. The YAML file at path is skipped if
// path is empty.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := k.Load(envprovider.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
}

var validate = validator.New()

// Validate checks cfg against its constraints.
func Validate(cfg *Config) error {
	return validate.Struct(cfg)
}
