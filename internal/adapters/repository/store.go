// Package repository defines the roster, match, and session store
// interface and errors.
package repository

import (
	"context"

	"github.com/haydennng/badminton-matchups/internal/domain/model"
)

// Store provides read/write access to persisted roster, match, and session
// state. Implementations serialize read-modify-write internally; the
// domain engine above never locks.
type Store interface {
	// AddPlayer appends a new roster entry, active by default.
	// Returns ErrPlayerExists if the name is already taken.
	AddPlayer(ctx context.Context, name string) (model.Player, error)
	// GetPlayer looks a player up by name.
	GetPlayer(ctx context.Context, name string) (model.Player, error)
	// ListPlayers returns the full roster in insertion order.
	ListPlayers(ctx context.Context) []model.Player
	// ListActivePlayers returns only the active roster entries.
	ListActivePlayers(ctx context.Context) []model.Player
	// SetPlayerActive flips a player's active flag.
	SetPlayerActive(ctx context.Context, name string, active bool) (model.Player, error)
	// RemovePlayer deletes a player from the roster. Historical matches
	// referencing the name are left untouched.
	RemovePlayer(ctx context.Context, name string) error

	// AppendMatch persists a new match, assigning its id and linking it to
	// its session. The session is created lazily from the match date.
	AppendMatch(ctx context.Context, m model.Match) (model.Match, error)
	// GetMatch looks a match up by id.
	GetMatch(ctx context.Context, id string) (model.Match, error)
	// ListMatches returns matches in recording order; sessionID scopes the
	// result, empty means all-time.
	ListMatches(ctx context.Context, sessionID string) []model.Match
	// RecentMatches returns up to limit of the most recently recorded
	// matches, oldest first.
	RecentMatches(ctx context.Context, limit int) []model.Match
	// LastMatch returns the most recently recorded match in a session
	// (empty sessionID means all-time) and whether one exists.
	LastMatch(ctx context.Context, sessionID string) (model.Match, bool)
	// UpdateMatch replaces a stored match record by id.
	UpdateMatch(ctx context.Context, m model.Match) error
	// DeleteMatch removes a match and unlinks it from its session.
	DeleteMatch(ctx context.Context, id string) error

	// GetOrCreateSession returns the session for a calendar date
	// (YYYY-MM-DD), creating it if absent.
	GetOrCreateSession(ctx context.Context, date string) (model.Session, error)
	// GetSession looks a session up by id.
	GetSession(ctx context.Context, id string) (model.Session, error)
	// CurrentSession returns the session for today's date, creating it if
	// absent.
	CurrentSession(ctx context.Context) (model.Session, error)
	// ListSessions returns all sessions ordered by date.
	ListSessions(ctx context.Context) []model.Session
	// DeleteSession removes a session and cascades to its matches,
	// returning how many matches were deleted.
	DeleteSession(ctx context.Context, id string) (int, error)

	// Counts reports totals for monitoring.
	Counts(ctx context.Context) (players, matches, sessions int)
}
