package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/haydennng/badminton-matchups/internal/domain/model"
	"github.com/haydennng/badminton-matchups/pkg/logger"
)

// PlayerStats aggregates one player's all-time or session record.
type PlayerStats struct {
	Player        string   `json:"player"`
	TotalMatches  int      `json:"total_matches"`
	Wins          int      `json:"wins"`
	Losses        int      `json:"losses"`
	WinRate       float64  `json:"win_rate"`
	NetEarnings   float64  `json:"net_earnings"`
	TotalWinnings float64  `json:"total_winnings"`
	TotalLosses   float64  `json:"total_losses"`
	Partners      []string `json:"partners"`
	Opponents     []string `json:"opponents"`
}

// PartnershipStats aggregates the record of one recurring team.
type PartnershipStats struct {
	Players  [2]string `json:"players"`
	Key      string    `json:"key"`
	Games    int       `json:"games"`
	Wins     int       `json:"wins"`
	Losses   int       `json:"losses"`
	WinRate  float64   `json:"win_rate"`
	Earnings float64   `json:"earnings"`
}

// SessionSummary describes one session without its match bodies.
type SessionSummary struct {
	SessionID  string   `json:"session_id"`
	Date       string   `json:"date"`
	MatchCount int      `json:"match_count"`
	Players    []string `json:"players"`
}

// SessionDetail is a summary plus the session's matches.
type SessionDetail struct {
	SessionSummary
	Matches []model.Match `json:"matches"`
}

// PlayerStats computes one player's all-time record. Players absent from
// history report all-zero stats.
func (s *Service) PlayerStats(ctx context.Context, name string) (PlayerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return PlayerStats{}, ErrNotStarted
	}
	return playerStatsFrom(name, s.store.ListMatches(ctx, "")), nil
}

// AllPlayerStats computes stats for every player on the roster or in
// history, most active first.
func (s *Service) AllPlayerStats(ctx context.Context) []PlayerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}

	matches := s.store.ListMatches(ctx, "")
	names := map[string]bool{}
	for _, p := range s.store.ListPlayers(ctx) {
		names[p.Name] = true
	}
	for _, m := range matches {
		for _, n := range m.Players() {
			names[n] = true
		}
	}

	out := make([]PlayerStats, 0, len(names))
	for n := range names {
		out = append(out, playerStatsFrom(n, matches))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalMatches != out[j].TotalMatches {
			return out[i].TotalMatches > out[j].TotalMatches
		}
		return out[i].Player < out[j].Player
	})
	return out
}

// Earnings returns every player's net position across all matches, winners
// first.
func (s *Service) Earnings(ctx context.Context) []PlayerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	return earningsTable(s.store.ListMatches(ctx, ""))
}

// SessionEarnings returns per-player net positions within one session.
func (s *Service) SessionEarnings(ctx context.Context, sessionID string) ([]PlayerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return earningsTable(s.store.ListMatches(ctx, sessionID)), nil
}

// PartnershipStats aggregates every recurring team across all matches,
// filtered to teams with at least minGames games. Best win rate first.
func (s *Service) PartnershipStats(ctx context.Context, minGames int) []PartnershipStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	return partnershipTable(s.store.ListMatches(ctx, ""), minGames)
}

// SessionStats returns per-player and per-partnership win rates within one
// session.
func (s *Service) SessionStats(ctx context.Context, sessionID string) ([]PlayerStats, []PartnershipStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, nil, err
	}
	matches := s.store.ListMatches(ctx, sessionID)

	names := map[string]bool{}
	for _, m := range matches {
		for _, n := range m.Players() {
			names[n] = true
		}
	}
	players := make([]PlayerStats, 0, len(names))
	for n := range names {
		players = append(players, playerStatsFrom(n, matches))
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].WinRate != players[j].WinRate {
			return players[i].WinRate > players[j].WinRate
		}
		if players[i].TotalMatches != players[j].TotalMatches {
			return players[i].TotalMatches > players[j].TotalMatches
		}
		return players[i].Player < players[j].Player
	})
	return players, partnershipTable(matches, 0), nil
}

// Sessions returns summaries for every session, ordered by date.
func (s *Service) Sessions(ctx context.Context) []SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	sessions := s.store.ListSessions(ctx)
	out := make([]SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, s.summarize(ctx, sess))
	}
	return out
}

// SessionByID returns one session with its matches.
func (s *Service) SessionByID(ctx context.Context, id string) (SessionDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return SessionDetail{}, ErrNotStarted
	}
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return SessionDetail{}, err
	}
	return SessionDetail{
		SessionSummary: s.summarize(ctx, sess),
		Matches:        s.store.ListMatches(ctx, sess.ID),
	}, nil
}

// CreateSession gets or creates the session for a date; empty means today.
func (s *Service) CreateSession(ctx context.Context, date string) (SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return SessionSummary{}, ErrNotStarted
	}
	var (
		sess model.Session
		err  error
	)
	if date == "" {
		sess, err = s.store.CurrentSession(ctx)
	} else {
		sess, err = s.store.GetOrCreateSession(ctx, date)
	}
	if err != nil {
		return SessionSummary{}, err
	}
	s.updateStoreGauges(ctx)
	return s.summarize(ctx, sess), nil
}

// CurrentSession returns today's session summary, creating the session if
// needed.
func (s *Service) CurrentSession(ctx context.Context) (SessionSummary, error) {
	return s.CreateSession(ctx, "")
}

// DeleteSession removes a session and its matches, returning how many
// matches were deleted.
func (s *Service) DeleteSession(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return 0, ErrNotStarted
	}
	deleted, err := s.store.DeleteSession(ctx, id)
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "session deleted",
		logger.String("sessionID", id),
		logger.Int("deletedMatches", deleted),
	)
	s.updateStoreGauges(ctx)
	return deleted, nil
}

// ExportCSV writes the full match history as CSV.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}

	cw := csv.NewWriter(w)
	header := []string{"match_id", "timestamp", "team1", "team2", "team1_score", "team2_score", "game_value"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csv export: %w", err)
	}
	for _, m := range s.store.ListMatches(ctx, "") {
		row := []string{
			m.ID,
			m.Timestamp.Format("2006-01-02T15:04:05"),
			m.Team1[0] + " & " + m.Team1[1],
			m.Team2[0] + " & " + m.Team2[1],
			strconv.Itoa(m.Team1Score),
			strconv.Itoa(m.Team2Score),
			strconv.FormatFloat(m.GameValue, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv export: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv export: %w", err)
	}
	return nil
}

func (s *Service) summarize(ctx context.Context, sess model.Session) SessionSummary {
	matches := s.store.ListMatches(ctx, sess.ID)
	names := map[string]bool{}
	for _, m := range matches {
		for _, n := range m.Players() {
			names[n] = true
		}
	}
	players := make([]string, 0, len(names))
	for n := range names {
		players = append(players, n)
	}
	sort.Strings(players)
	return SessionSummary{
		SessionID:  sess.ID,
		Date:       sess.Date,
		MatchCount: len(matches),
		Players:    players,
	}
}

// playerStatsFrom replays matches into one player's record. Winners split
// the game value evenly; losers are debited symmetrically.
func playerStatsFrom(name string, matches []model.Match) PlayerStats {
	stats := PlayerStats{Player: name, Partners: []string{}, Opponents: []string{}}
	partners := map[string]bool{}
	opponents := map[string]bool{}

	for _, m := range matches {
		if !m.Has(name) {
			continue
		}
		stats.TotalMatches++

		own, other := m.Team1, m.Team2
		won := m.Winner == model.WinnerTeam1
		if m.Team2.Has(name) {
			own, other = m.Team2, m.Team1
			won = m.Winner == model.WinnerTeam2
		}
		for _, p := range own {
			if p != name {
				partners[p] = true
			}
		}
		for _, p := range other {
			opponents[p] = true
		}

		share := m.GameValue / 2
		if won {
			stats.Wins++
			stats.TotalWinnings += share
		} else {
			stats.Losses++
			stats.TotalLosses += share
		}
	}

	stats.TotalWinnings = roundCents(stats.TotalWinnings)
	stats.TotalLosses = roundCents(stats.TotalLosses)
	stats.NetEarnings = roundCents(stats.TotalWinnings - stats.TotalLosses)
	if stats.TotalMatches > 0 {
		stats.WinRate = roundRate(float64(stats.Wins) / float64(stats.TotalMatches) * 100)
	}
	for p := range partners {
		stats.Partners = append(stats.Partners, p)
	}
	for p := range opponents {
		stats.Opponents = append(stats.Opponents, p)
	}
	sort.Strings(stats.Partners)
	sort.Strings(stats.Opponents)
	return stats
}

// earningsTable computes per-player stats for the given matches, sorted by
// net earnings, winners first.
func earningsTable(matches []model.Match) []PlayerStats {
	names := map[string]bool{}
	for _, m := range matches {
		for _, n := range m.Players() {
			names[n] = true
		}
	}
	out := make([]PlayerStats, 0, len(names))
	for n := range names {
		out = append(out, playerStatsFrom(n, matches))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NetEarnings != out[j].NetEarnings {
			return out[i].NetEarnings > out[j].NetEarnings
		}
		return out[i].Player < out[j].Player
	})
	return out
}

// partnershipTable aggregates recurring teams. A team's earnings move by
// the full game value per game, won or lost.
func partnershipTable(matches []model.Match, minGames int) []PartnershipStats {
	type agg struct {
		team     model.Team
		games    int
		wins     int
		losses   int
		earnings float64
	}
	table := map[model.PairKey]*agg{}

	add := func(t model.Team, won bool, value float64) {
		k := t.Key()
		a, ok := table[k]
		if !ok {
			a = &agg{team: model.NewTeam(t[0], t[1])}
			table[k] = a
		}
		a.games++
		if won {
			a.wins++
			a.earnings += value
		} else {
			a.losses++
			a.earnings -= value
		}
	}

	for _, m := range matches {
		add(m.Team1, m.Winner == model.WinnerTeam1, m.GameValue)
		add(m.Team2, m.Winner == model.WinnerTeam2, m.GameValue)
	}

	out := make([]PartnershipStats, 0, len(table))
	for _, a := range table {
		if a.games < minGames {
			continue
		}
		out = append(out, PartnershipStats{
			Players:  [2]string{a.team[0], a.team[1]},
			Key:      a.team[0] + " & " + a.team[1],
			Games:    a.games,
			Wins:     a.wins,
			Losses:   a.losses,
			WinRate:  roundRate(float64(a.wins) / float64(a.games) * 100),
			Earnings: roundCents(a.earnings),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate > out[j].WinRate
		}
		if out[i].Games != out[j].Games {
			return out[i].Games > out[j].Games
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func roundCents(x float64) float64 {
	return math.Round(x*100) / 100
}

func roundRate(x float64) float64 {
	return math.Round(x*10) / 10
}
