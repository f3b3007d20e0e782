// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// PricingStrategy selects how game values are computed:
	// fixed, escalating, winner_takes_all, per_point.
	PricingStrategy string `koanf:"pricing_strategy"`

	// BaseValue is the base dollar amount fed into the pricing strategy.
	BaseValue float64 `koanf:"base_value"`

	// PoolScope selects the settled-game pool for winner_takes_all:
	// session or alltime.
	PoolScope string `koanf:"pool_scope"`

	// MaxRecentLimit caps GET /api/matches?limit.
	MaxRecentLimit int `koanf:"max_recent_limit"`

	// MinutesPerGame is the planning estimate for one doubles game.
	MinutesPerGame int `koanf:"minutes_per_game"`
}

// New creates a Config using provided options. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use (e.g.,
// loading from env/files) and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:        "info",
		Addr:            ":8080",
		PricingStrategy: "fixed",
		BaseValue:       5.0,
		PoolScope:       "session",
		MaxRecentLimit:  10,
		MinutesPerGame:  15,
	}
	return c
}
