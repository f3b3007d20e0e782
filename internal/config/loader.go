package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/haydennng/badminton-matchups/internal/domain/valuation"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if MATCHUPS_CONFIG is set
//  3. env (prefix MATCHUPS_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("MATCHUPS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: MATCHUPS_ADDR, MATCHUPS_BASE_VALUE, ...
	// Map env keys like MATCHUPS_BASE_VALUE -> base_value (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("MATCHUPS_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "matchups_")
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
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, err := valuation.ParseStrategy(cfg.PricingStrategy); err != nil {
		return nil, fmt.Errorf("%w: pricing_strategy %q: %w", ErrInvalidConfig, cfg.PricingStrategy, err)
	}
	if cfg.BaseValue <= 0 {
		return nil, fmt.Errorf("%w: base_value must be positive", ErrInvalidConfig)
	}
	if cfg.PoolScope != "session" && cfg.PoolScope != "alltime" {
		return nil, fmt.Errorf("%w: pool_scope %q must be session or alltime", ErrInvalidConfig, cfg.PoolScope)
	}
	return &cfg, nil
}
