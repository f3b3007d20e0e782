// Package valuation prices individual games in dollars under a selectable
// strategy. Pricing is pure computation; the strategy is part of the
// session configuration and does not change mid-session.
package valuation

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Default valuation configuration constants.
const (
	defaultBaseValue = 5.0

	// escalationRate is the per-game compounding factor for the
	// escalating strategy: each game is priced 10% above the previous.
	escalationRate = 1.10
)

// Strategy selects how games are priced.
type Strategy string

// Available pricing strategies.
const (
	Fixed          Strategy = "fixed"
	Escalating     Strategy = "escalating"
	WinnerTakesAll Strategy = "winner_takes_all"
	PerPoint       Strategy = "per_point"
)

// Sentinel kinds for valuation errors.
var (
	ErrUnknownStrategy = errors.New("unknown pricing strategy")
	ErrInvalidBase     = errors.New("base value must be positive")
	ErrInvalidGame     = errors.New("game number must be at least 1")
)

// ParseStrategy maps a configuration string onto a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case Fixed:
		return Fixed, nil
	case Escalating:
		return Escalating, nil
	case WinnerTakesAll:
		return WinnerTakesAll, nil
	case PerPoint:
		return PerPoint, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Scores carries the final score of a game for strategies that price on it.
type Scores struct {
	Team1 int
	Team2 int
}

// Input describes the game being priced.
type Input struct {
	// GameNumber is the monotonic per-session game index, starting at 1.
	GameNumber int
	// PoolGames is the accumulated pool size for WinnerTakesAll: the
	// number of games settled in scope including this one. Values below 1
	// are treated as 1 so the first game always pays the base value.
	PoolGames int
	// Scores is optional; PerPoint falls back to the base value without it.
	Scores *Scores
}

// Option applies a configuration option to the Valuer.
type Option func(*Valuer)

// WithStrategy sets the pricing strategy.
func WithStrategy(s Strategy) Option {
	return func(v *Valuer) {
		if s != "" {
			v.strategy = s
		}
	}
}

// WithBaseValue sets the base dollar value per game.
func WithBaseValue(base float64) Option {
	return func(v *Valuer) {
		if base > 0 {
			v.base = base
		}
	}
}

// Valuer prices games under one fixed strategy.
type Valuer struct {
	strategy Strategy
	base     float64
}

// New creates a Valuer with default configuration.
func New(opts ...Option) *Valuer {
	v := &Valuer{
		strategy: Fixed,
		base:     defaultBaseValue,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Strategy returns the configured pricing strategy.
func (v *Valuer) Strategy() Strategy {
	return v.strategy
}

// BaseValue returns the configured base dollar value.
func (v *Valuer) BaseValue() float64 {
	return v.base
}

// Value computes the dollar value of one game. The result is rounded to
// cents and is never negative.
func (v *Valuer) Value(in Input) (float64, error) {
	if v.base <= 0 {
		return 0, ErrInvalidBase
	}
	if in.GameNumber < 1 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidGame, in.GameNumber)
	}

	switch v.strategy {
	case Fixed:
		return roundCents(v.base), nil
	case Escalating:
		return roundCents(v.base * math.Pow(escalationRate, float64(in.GameNumber-1))), nil
	case WinnerTakesAll:
		pool := in.PoolGames
		if pool < 1 {
			pool = 1
		}
		return roundCents(v.base * float64(pool)), nil
	case PerPoint:
		if in.Scores == nil {
			return roundCents(v.base), nil
		}
		diff := in.Scores.Team1 - in.Scores.Team2
		if diff < 0 {
			diff = -diff
		}
		if diff < 1 {
			diff = 1
		}
		return roundCents(v.base * float64(diff)), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, v.strategy)
	}
}

// SessionTotal estimates the total dollar amount across numGames games.
// Strategies priced on scores are approximated at the base value per game.
func (v *Valuer) SessionTotal(numGames int) float64 {
	if numGames < 1 || v.base <= 0 {
		return 0
	}
	if v.strategy == Escalating {
		total := 0.0
		for i := 1; i <= numGames; i++ {
			total += v.base * math.Pow(escalationRate, float64(i-1))
		}
		return roundCents(total)
	}
	return roundCents(v.base * float64(numGames))
}

// roundCents rounds a dollar amount to two decimal places, half away from
// zero. Amounts are clamped at zero so rounding can never go negative.
func roundCents(x float64) float64 {
	if x < 0 {
		return 0
	}
	return math.Round(x*100) / 100
}
