// Package history derives pairing and opponent frequency counts from
// recorded matches. Aggregation is a pure function: it never touches
// storage and the same match set always yields the same stats, regardless
// of input order.
package history

import "github.com/haydennng/badminton-matchups/internal/domain/model"

// PairCounts holds the derived counters for one unordered pair of players.
type PairCounts struct {
	Partnered      int `json:"partnered"`
	Opposed        int `json:"opposed"`
	WinsTogether   int `json:"wins_together"`
	LossesTogether int `json:"losses_together"`
}

// PairingStats maps player pairs to their derived counters. Pairs that
// never appeared report zero counts rather than an error, so callers can
// query any combination of names.
type PairingStats struct {
	pairs map[model.PairKey]PairCounts
	games map[string]int
}

// Aggregate replays matches into pairing statistics. The input may be in
// any order; only occurrence counts matter.
func Aggregate(matches []model.Match) PairingStats {
	s := PairingStats{
		pairs: make(map[model.PairKey]PairCounts),
		games: make(map[string]int),
	}

	for _, m := range matches {
		s.addTeam(m.Team1, m.Team1Score > m.Team2Score)
		s.addTeam(m.Team2, m.Team2Score > m.Team1Score)

		for _, p := range m.Team1 {
			for _, q := range m.Team2 {
				k := model.NewPairKey(p, q)
				c := s.pairs[k]
				c.Opposed++
				s.pairs[k] = c
			}
		}
	}

	return s
}

func (s PairingStats) addTeam(t model.Team, won bool) {
	k := t.Key()
	c := s.pairs[k]
	c.Partnered++
	if won {
		c.WinsTogether++
	} else {
		c.LossesTogether++
	}
	s.pairs[k] = c

	for _, p := range t {
		s.games[p]++
	}
}

// Pair returns the counters for two players, zero-valued if they never met.
func (s PairingStats) Pair(a, b string) PairCounts {
	if s.pairs == nil {
		return PairCounts{}
	}
	return s.pairs[model.NewPairKey(a, b)]
}

// Partnered returns how often a and b played on the same team.
func (s PairingStats) Partnered(a, b string) int {
	return s.Pair(a, b).Partnered
}

// Opposed returns how often a and b played on opposing teams.
func (s PairingStats) Opposed(a, b string) int {
	return s.Pair(a, b).Opposed
}

// GamesPlayed returns the total number of matches name appeared in.
func (s PairingStats) GamesPlayed(name string) int {
	if s.games == nil {
		return 0
	}
	return s.games[name]
}

// Pairs returns the number of distinct pairs with at least one counter.
func (s PairingStats) Pairs() int {
	return len(s.pairs)
}
