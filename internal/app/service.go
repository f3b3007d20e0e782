// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/haydennng/badminton-matchups/internal/adapters/repository"
	"github.com/haydennng/badminton-matchups/internal/domain/history"
	"github.com/haydennng/badminton-matchups/internal/domain/matchup"
	"github.com/haydennng/badminton-matchups/internal/domain/model"
	"github.com/haydennng/badminton-matchups/internal/domain/valuation"
	"github.com/haydennng/badminton-matchups/pkg/logger"
	"github.com/haydennng/badminton-matchups/pkg/metrics"
)

// Service configuration constants.
const (
	maxPlayerNameLen      = 50
	defaultRecentLimit    = 10
	defaultMinutesPerGame = 15
	minutesPerHour        = 60.0
)

// PoolScope selects how the Winner-Takes-All pool accumulates.
type PoolScope string

// Available pool scopes.
const (
	// PoolScopeSession resets the pool every session.
	PoolScopeSession PoolScope = "session"
	// PoolScopeAllTime never resets the pool.
	PoolScopeAllTime PoolScope = "alltime"
)

// ParsePoolScope maps a configuration string onto a PoolScope.
func ParsePoolScope(s string) (PoolScope, error) {
	switch PoolScope(strings.ToLower(strings.TrimSpace(s))) {
	case PoolScopeSession, "":
		return PoolScopeSession, nil
	case PoolScopeAllTime:
		return PoolScopeAllTime, nil
	default:
		return "", fmt.Errorf("unknown pool scope: %q", s)
	}
}

// Service implements the API dependencies for the matchup system. It owns
// the store lock: every operation runs to completion under a single mutex,
// so the domain engines below stay lock-free.
type Service struct {
	mu sync.Mutex

	// Core components
	store     repository.Store
	valuer    *valuation.Valuer
	generator *matchup.Generator

	// Configuration
	strategy    valuation.Strategy
	baseValue   float64
	poolScope   PoolScope
	recentLimit int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets a custom store implementation.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPricingStrategy sets the session pricing strategy.
func WithPricingStrategy(strategy valuation.Strategy) Option {
	return func(s *Service) {
		if strategy != "" {
			s.strategy = strategy
		}
	}
}

// WithBaseValue sets the base dollar value per game.
func WithBaseValue(base float64) Option {
	return func(s *Service) {
		if base > 0 {
			s.baseValue = base
		}
	}
}

// WithPoolScope sets the Winner-Takes-All pool scope.
func WithPoolScope(scope PoolScope) Option {
	return func(s *Service) {
		if scope != "" {
			s.poolScope = scope
		}
	}
}

// WithRecentLimit sets the default size of recent-match queries.
func WithRecentLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.recentLimit = limit
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		strategy:    valuation.Fixed,
		baseValue:   5.0,
		poolScope:   PoolScopeSession,
		recentLimit: defaultRecentLimit,
		logger:      nil, // Will be replaced when the service starts
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting matchup service...")

	if s.store == nil {
		s.store = repository.NewMemStore()
		s.logger.Info(ctx, "using in-memory store")
	}
	s.valuer = valuation.New(
		valuation.WithStrategy(s.strategy),
		valuation.WithBaseValue(s.baseValue),
	)
	s.generator = matchup.New()

	s.started = true
	s.logger.Info(ctx, "matchup service started",
		logger.String("strategy", string(s.strategy)),
		logger.Float64("baseValue", s.baseValue),
		logger.String("poolScope", string(s.poolScope)),
	)
	return nil
}

// Stop shuts the service down. The store is in-memory, so there is nothing
// to flush; the flag just blocks further operations.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "matchup service stopped")
}

// Players returns the full roster.
func (s *Service) Players(ctx context.Context) []model.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	return s.store.ListPlayers(ctx)
}

// AddPlayer adds a new roster entry, active by default.
func (s *Service) AddPlayer(ctx context.Context, name string) (model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return model.Player{}, ErrNotStarted
	}

	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxPlayerNameLen {
		metrics.RecordValidationError("player_name")
		return model.Player{}, ErrInvalidPlayerName
	}
	p, err := s.store.AddPlayer(ctx, name)
	if err != nil {
		return model.Player{}, err
	}
	s.logger.Info(ctx, "player added", logger.String("player", p.Name))
	s.updateRosterGauges(ctx)
	return p, nil
}

// SetPlayerActive flips a player's active flag.
func (s *Service) SetPlayerActive(ctx context.Context, name string, active bool) (model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return model.Player{}, ErrNotStarted
	}
	p, err := s.store.SetPlayerActive(ctx, name, active)
	if err != nil {
		return model.Player{}, err
	}
	s.updateRosterGauges(ctx)
	return p, nil
}

// RemovePlayer removes a player from the roster. History referencing the
// name is untouched.
func (s *Service) RemovePlayer(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	if err := s.store.RemovePlayer(ctx, name); err != nil {
		return err
	}
	s.logger.Info(ctx, "player removed", logger.String("player", name))
	s.updateRosterGauges(ctx)
	return nil
}

// RecordMatchInput carries the fields of a match being recorded.
type RecordMatchInput struct {
	Team1      model.Team
	Team2      model.Team
	Team1Score int
	Team2Score int
	// Date optionally pins the match to a calendar day (YYYY-MM-DD);
	// empty records against today's session.
	Date string
}

// RecordMatch validates and persists one match result. Rejections leave
// the store untouched: validation happens in full before any write.
func (s *Service) RecordMatch(ctx context.Context, in RecordMatchInput) (model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return model.Match{}, ErrNotStarted
	}

	if err := s.validateTeams(ctx, in.Team1, in.Team2); err != nil {
		return model.Match{}, err
	}
	if err := validateScores(in.Team1Score, in.Team2Score); err != nil {
		metrics.RecordValidationError("score")
		return model.Match{}, err
	}

	ts := time.Time{}
	if in.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", in.Date, time.Local)
		if err != nil {
			return model.Match{}, fmt.Errorf("%w: %s", repository.ErrInvalidDate, in.Date)
		}
		ts = parsed
	}

	sess, err := s.sessionFor(ctx, in.Date)
	if err != nil {
		return model.Match{}, err
	}
	sessionMatches := s.store.ListMatches(ctx, sess.ID)

	gameNumber := 1
	for _, m := range sessionMatches {
		if m.GameNumber >= gameNumber {
			gameNumber = m.GameNumber + 1
		}
	}

	value, err := s.valuer.Value(valuation.Input{
		GameNumber: gameNumber,
		PoolGames:  s.poolGames(ctx, len(sessionMatches)),
		Scores:     &valuation.Scores{Team1: in.Team1Score, Team2: in.Team2Score},
	})
	if err != nil {
		return model.Match{}, err
	}

	winner := model.WinnerTeam1
	if in.Team2Score > in.Team1Score {
		winner = model.WinnerTeam2
	}

	m, err := s.store.AppendMatch(ctx, model.Match{
		Timestamp:  ts,
		Team1:      in.Team1,
		Team2:      in.Team2,
		Team1Score: in.Team1Score,
		Team2Score: in.Team2Score,
		GameValue:  value,
		GameNumber: gameNumber,
		Winner:     winner,
	})
	if err != nil {
		return model.Match{}, err
	}

	s.logger.Info(ctx, "match recorded",
		logger.String("matchID", m.ID),
		logger.Int("gameNumber", m.GameNumber),
		logger.Float64("gameValue", m.GameValue),
	)
	metrics.RecordMatchRecorded(m.GameValue)
	s.updateStoreGauges(ctx)
	return m, nil
}

// UpdateMatchInput carries the editable fields of a stored match.
type UpdateMatchInput struct {
	Team1Score *int
	Team2Score *int
	GameValue  *float64
}

// UpdateMatch applies an admin edit to a stored match and recomputes the
// winner. Edits that would produce a tie or a negative value are rejected.
func (s *Service) UpdateMatch(ctx context.Context, id string, in UpdateMatchInput) (model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return model.Match{}, ErrNotStarted
	}

	m, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return model.Match{}, err
	}
	if in.Team1Score != nil {
		m.Team1Score = *in.Team1Score
	}
	if in.Team2Score != nil {
		m.Team2Score = *in.Team2Score
	}
	if err := validateScores(m.Team1Score, m.Team2Score); err != nil {
		metrics.RecordValidationError("score")
		return model.Match{}, err
	}
	if in.GameValue != nil {
		if *in.GameValue < 0 {
			return model.Match{}, fmt.Errorf("%w: negative game value", ErrInvalidScore)
		}
		m.GameValue = *in.GameValue
	}
	m.Winner = model.WinnerTeam1
	if m.Team2Score > m.Team1Score {
		m.Winner = model.WinnerTeam2
	}
	if err := s.store.UpdateMatch(ctx, m); err != nil {
		return model.Match{}, err
	}
	return m, nil
}

// DeleteMatch removes a stored match.
func (s *Service) DeleteMatch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	if err := s.store.DeleteMatch(ctx, id); err != nil {
		return err
	}
	s.updateStoreGauges(ctx)
	return nil
}

// Matches returns matches in recording order, scoped to sessionID when
// non-empty.
func (s *Service) Matches(ctx context.Context, sessionID string) []model.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	return s.store.ListMatches(ctx, sessionID)
}

// RecentMatches returns the newest matches, oldest first. A non-positive
// limit falls back to the configured default.
func (s *Service) RecentMatches(ctx context.Context, limit int) []model.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	if limit <= 0 {
		limit = s.recentLimit
	}
	return s.store.RecentMatches(ctx, limit)
}

// Recommend generates the next matchup recommendation against the current
// session's pairing history. A nil cursor returns the primary candidate;
// passing back the returned cursor cycles to the next alternative.
func (s *Service) Recommend(ctx context.Context, cur *matchup.Cursor) (model.Recommendation, matchup.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return model.Recommendation{}, matchup.Cursor{}, ErrNotStarted
	}

	start := time.Now()

	sess, err := s.store.CurrentSession(ctx)
	if err != nil {
		return model.Recommendation{}, matchup.Cursor{}, err
	}
	stats := history.Aggregate(s.store.ListMatches(ctx, sess.ID))

	req := matchup.Request{
		Players: s.store.ListPlayers(ctx),
		Stats:   stats,
	}
	if last, ok := s.store.LastMatch(ctx, sess.ID); ok {
		req.LastMatch = &last
	}

	rec, next, err := s.generator.Generate(req, cur)
	if err != nil {
		return model.Recommendation{}, matchup.Cursor{}, err
	}

	metrics.RecordRecommendation(float64(time.Since(start).Milliseconds()))
	if cur != nil {
		metrics.RecordRecommendationCycle()
	}
	return rec, next, nil
}

// EstimateGames returns how many games fit into a session of the given
// duration. Non-positive minutes per game fall back to the default pace.
func (s *Service) EstimateGames(durationHours float64, minutesPerGame int) int {
	if durationHours <= 0 {
		return 0
	}
	if minutesPerGame <= 0 {
		minutesPerGame = defaultMinutesPerGame
	}
	return int(durationHours * minutesPerHour / float64(minutesPerGame))
}

// SessionTotal estimates the total dollar amount across numGames games
// under the configured strategy.
func (s *Service) SessionTotal(numGames int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return 0
	}
	return s.valuer.SessionTotal(numGames)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":   s.started,
		"strategy":  string(s.strategy),
		"baseValue": s.baseValue,
		"poolScope": string(s.poolScope),
	}
	if s.started {
		players, matches, sessions := s.store.Counts(ctx)
		stats["players"] = players
		stats["matches"] = matches
		stats["sessions"] = sessions
	}
	return stats
}

// sessionFor resolves the session a match belongs to: today's by default,
// or the one for an explicit date.
func (s *Service) sessionFor(ctx context.Context, date string) (model.Session, error) {
	if date == "" {
		return s.store.CurrentSession(ctx)
	}
	return s.store.GetOrCreateSession(ctx, date)
}

// poolGames returns the Winner-Takes-All pool size for the game being
// priced: settled games in scope plus this one.
func (s *Service) poolGames(ctx context.Context, sessionSettled int) int {
	if s.poolScope == PoolScopeAllTime {
		return len(s.store.ListMatches(ctx, "")) + 1
	}
	return sessionSettled + 1
}

// validateTeams checks roster membership and the 4-distinct-players shape.
func (s *Service) validateTeams(ctx context.Context, team1, team2 model.Team) error {
	names := [4]string{team1[0], team1[1], team2[0], team2[1]}
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			metrics.RecordValidationError("teams")
			return ErrInvalidTeams
		}
		if _, err := s.store.GetPlayer(ctx, n); err != nil {
			metrics.RecordValidationError("unknown_player")
			return fmt.Errorf("%w: %s", ErrUnknownPlayer, n)
		}
	}
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			metrics.RecordValidationError("teams")
			return fmt.Errorf("%w: %s appears twice", ErrInvalidTeams, n)
		}
		seen[n] = true
	}
	return nil
}

// validateScores rejects negative scores and ties.
func validateScores(s1, s2 int) error {
	if s1 < 0 || s2 < 0 {
		return fmt.Errorf("%w: scores must be non-negative", ErrInvalidScore)
	}
	if s1 == s2 {
		return fmt.Errorf("%w: tied scores are not allowed", ErrInvalidScore)
	}
	return nil
}

func (s *Service) updateRosterGauges(ctx context.Context) {
	metrics.UpdateRosterGauges(len(s.store.ListActivePlayers(ctx)), len(s.store.ListPlayers(ctx)))
}

func (s *Service) updateStoreGauges(ctx context.Context) {
	players, matches, sessions := s.store.Counts(ctx)
	metrics.UpdateStoreGauges(players, matches, sessions)
}
