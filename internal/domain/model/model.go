// Package model contains domain records passed between layers.
package model

import "time"

// Winner labels for a recorded match.
const (
	WinnerTeam1 = "team1"
	WinnerTeam2 = "team2"
)

// Player is a roster entry. Inactive players stay on the roster but are
// excluded from matchup generation.
type Player struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
	Order  int    `json:"order"`
}

// Team is an ordered pair of player names.
type Team [2]string

// NewTeam returns a team with the lexicographically smaller name first.
func NewTeam(a, b string) Team {
	if b < a {
		a, b = b, a
	}
	return Team{a, b}
}

// Has reports whether name plays on this team.
func (t Team) Has(name string) bool {
	return t[0] == name || t[1] == name
}

// Key returns the unordered pair key for the two teammates.
func (t Team) Key() PairKey {
	return NewPairKey(t[0], t[1])
}

// Match is an immutable record of one completed 2v2 game.
type Match struct {
	ID         string    `json:"match_id"`
	SessionID  string    `json:"session_id"`
	Timestamp  time.Time `json:"timestamp"`
	Team1      Team      `json:"team1"`
	Team2      Team      `json:"team2"`
	Team1Score int       `json:"team1_score"`
	Team2Score int       `json:"team2_score"`
	GameValue  float64   `json:"game_value"`
	GameNumber int       `json:"game_number"`
	Winner     string    `json:"winner"`
}

// Players returns all four participants, team1 first.
func (m Match) Players() [4]string {
	return [4]string{m.Team1[0], m.Team1[1], m.Team2[0], m.Team2[1]}
}

// Has reports whether name played in this match.
func (m Match) Has(name string) bool {
	return m.Team1.Has(name) || m.Team2.Has(name)
}

// WinningTeam returns the team that won. Ties are rejected at recording
// time, so every stored match has a winner.
func (m Match) WinningTeam() Team {
	if m.Team1Score > m.Team2Score {
		return m.Team1
	}
	return m.Team2
}

// SameTeams reports whether m and other involve the same two team
// compositions, in either court orientation.
func (m Match) SameTeams(teamA, teamB Team) bool {
	a, b := teamA.Key(), teamB.Key()
	t1, t2 := m.Team1.Key(), m.Team2.Key()
	return (a == t1 && b == t2) || (a == t2 && b == t1)
}

// Session groups the matches recorded on one calendar date.
type Session struct {
	ID       string   `json:"session_id"`
	Date     string   `json:"date"`
	MatchIDs []string `json:"match_ids"`
}

// PairKey identifies an unordered pair of players. A is always the
// lexicographically smaller name so that (x,y) and (y,x) collide.
type PairKey struct {
	A string
	B string
}

// NewPairKey builds the canonical key for two player names.
func NewPairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{A: a, B: b}
}

// Court is one proposed 2v2 pairing inside a recommendation.
type Court struct {
	TeamA       Team   `json:"team_a"`
	TeamB       Team   `json:"team_b"`
	Explanation string `json:"explanation"`
}

// Recommendation is a transient proposal for the next game or games. It is
// never persisted; callers regenerate or cycle it on demand.
type Recommendation struct {
	DualCourt bool    `json:"dual_court"`
	Courts    []Court `json:"courts"`
}
