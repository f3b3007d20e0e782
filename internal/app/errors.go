package service

import "errors"

// Sentinel kinds for recording and roster validation errors. The service
// returns these without logging or retrying; the HTTP layer translates
// them into user-facing responses.
var (
	// ErrInvalidScore covers tied scores, negative scores, and score
	// updates that would produce a tie.
	ErrInvalidScore = errors.New("invalid score")
	// ErrUnknownPlayer means a match or selection references a name not on
	// the roster.
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrInvalidTeams means the two teams do not form four distinct players.
	ErrInvalidTeams = errors.New("teams must contain 4 distinct players")
	// ErrInvalidPlayerName rejects empty or oversized player names.
	ErrInvalidPlayerName = errors.New("invalid player name")
	// ErrNotStarted guards operations called before Start.
	ErrNotStarted = errors.New("service not started")
)
