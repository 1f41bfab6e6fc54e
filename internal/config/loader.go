package config

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ATSR_CONFIG is set
//  3. env (prefix ATSR_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("ATSR_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: ATSR_ADDR, ATSR_STORE_PATH, ...
	// Map env keys like ATSR_STORE_PATH -> store_path (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("ATSR_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "atsr_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.StorePath == "" {
		return nil, errors.New("store_path must not be empty")
	}
	if len(cfg.Criteria) == 0 {
		return nil, errors.New("criteria must not be empty")
	}
	if len(cfg.Subgroups) == 0 {
		return nil, errors.New("subgroups must not be empty")
	}
	return &cfg, nil
}
