package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haydennng/badminton-matchups/internal/domain/model"
)

// dateLayout is the calendar-date format that identifies sessions.
const dateLayout = "2006-01-02"

// MemStore is an in-memory Store implementation. A single RWMutex
// serializes every read-modify-write; matches keep recording order
// globally and per session.
type MemStore struct {
	mu sync.RWMutex

	players []model.Player

	matches    map[string]model.Match
	matchOrder []string

	sessions map[string]model.Session // keyed by session id
	byDate   map[string]string        // date -> session id

	now   func() time.Time
	newID func() string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		matches:  make(map[string]model.Match),
		sessions: make(map[string]model.Session),
		byDate:   make(map[string]string),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddPlayer appends name to the roster, active by default.
func (s *MemStore) AddPlayer(_ context.Context, name string) (model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.players {
		if p.Name == name {
			return model.Player{}, fmt.Errorf("%w: %s", ErrPlayerExists, name)
		}
	}
	p := model.Player{Name: name, Active: true, Order: len(s.players)}
	s.players = append(s.players, p)
	return p, nil
}

// GetPlayer looks a player up by name.
func (s *MemStore) GetPlayer(_ context.Context, name string) (model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.players {
		if p.Name == name {
			return p, nil
		}
	}
	return model.Player{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
}

// ListPlayers returns the roster in insertion order.
func (s *MemStore) ListPlayers(_ context.Context) []model.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Player, len(s.players))
	copy(out, s.players)
	return out
}

// ListActivePlayers returns only active roster entries.
func (s *MemStore) ListActivePlayers(_ context.Context) []model.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Player, 0, len(s.players))
	for _, p := range s.players {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}

// SetPlayerActive flips a player's active flag.
func (s *MemStore) SetPlayerActive(_ context.Context, name string, active bool) (model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.players {
		if p.Name == name {
			s.players[i].Active = active
			return s.players[i], nil
		}
	}
	return model.Player{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
}

// RemovePlayer deletes name from the roster only; recorded history keeps
// referencing the name.
func (s *MemStore) RemovePlayer(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.players {
		if p.Name == name {
			s.players = append(s.players[:i], s.players[i+1:]...)
			for j := i; j < len(s.players); j++ {
				s.players[j].Order = j
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
}

// AppendMatch persists m, assigning its id, timestamp, and session link.
// The session for the match date is created lazily.
func (s *MemStore) AppendMatch(_ context.Context, m model.Match) (model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.Timestamp.IsZero() {
		m.Timestamp = s.now()
	}
	date := m.Timestamp.Format(dateLayout)
	sess, err := s.getOrCreateSessionLocked(date)
	if err != nil {
		return model.Match{}, err
	}

	m.ID = s.newID()
	m.SessionID = sess.ID

	s.matches[m.ID] = m
	s.matchOrder = append(s.matchOrder, m.ID)

	sess.MatchIDs = append(sess.MatchIDs, m.ID)
	s.sessions[sess.ID] = sess

	return m, nil
}

// GetMatch looks a match up by id.
func (s *MemStore) GetMatch(_ context.Context, id string) (model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return model.Match{}, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	return m, nil
}

// ListMatches returns matches in recording order, scoped to sessionID when
// non-empty.
func (s *MemStore) ListMatches(_ context.Context, sessionID string) []model.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listMatchesLocked(sessionID)
}

func (s *MemStore) listMatchesLocked(sessionID string) []model.Match {
	out := make([]model.Match, 0, len(s.matchOrder))
	for _, id := range s.matchOrder {
		m := s.matches[id]
		if sessionID == "" || m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out
}

// RecentMatches returns up to limit of the newest matches, oldest first.
func (s *MemStore) RecentMatches(_ context.Context, limit int) []model.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.listMatchesLocked("")
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all
}

// LastMatch returns the newest match in scope and whether one exists.
func (s *MemStore) LastMatch(_ context.Context, sessionID string) (model.Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.matchOrder) - 1; i >= 0; i-- {
		m := s.matches[s.matchOrder[i]]
		if sessionID == "" || m.SessionID == sessionID {
			return m, true
		}
	}
	return model.Match{}, false
}

// UpdateMatch replaces the stored record with the same id. The match keeps
// its position in recording order and its session link.
func (s *MemStore) UpdateMatch(_ context.Context, m model.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.matches[m.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, m.ID)
	}
	m.SessionID = existing.SessionID
	s.matches[m.ID] = m
	return nil
}

// DeleteMatch removes a match and unlinks it from its session.
func (s *MemStore) DeleteMatch(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	delete(s.matches, id)
	for i, mid := range s.matchOrder {
		if mid == id {
			s.matchOrder = append(s.matchOrder[:i], s.matchOrder[i+1:]...)
			break
		}
	}
	if sess, ok := s.sessions[m.SessionID]; ok {
		for i, mid := range sess.MatchIDs {
			if mid == id {
				sess.MatchIDs = append(sess.MatchIDs[:i], sess.MatchIDs[i+1:]...)
				break
			}
		}
		s.sessions[m.SessionID] = sess
	}
	return nil
}

// GetOrCreateSession returns the session for a calendar date, creating it
// when absent.
func (s *MemStore) GetOrCreateSession(_ context.Context, date string) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateSessionLocked(date)
}

func (s *MemStore) getOrCreateSessionLocked(date string) (model.Session, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return model.Session{}, fmt.Errorf("%w: %s", ErrInvalidDate, date)
	}
	if id, ok := s.byDate[date]; ok {
		return s.sessions[id], nil
	}
	sess := model.Session{
		ID:   "session_" + date,
		Date: date,
	}
	s.sessions[sess.ID] = sess
	s.byDate[date] = sess.ID
	return sess, nil
}

// GetSession looks a session up by id.
func (s *MemStore) GetSession(_ context.Context, id string) (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return model.Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// CurrentSession returns the session for today's date, creating it when
// absent.
func (s *MemStore) CurrentSession(_ context.Context) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateSessionLocked(s.now().Format(dateLayout))
}

// ListSessions returns sessions ordered by date.
func (s *MemStore) ListSessions(_ context.Context) []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// DeleteSession removes a session and all its matches, returning the
// number of matches deleted.
func (s *MemStore) DeleteSession(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	deleted := 0
	for _, mid := range sess.MatchIDs {
		if _, ok := s.matches[mid]; ok {
			delete(s.matches, mid)
			deleted++
		}
	}
	if deleted > 0 {
		kept := s.matchOrder[:0]
		for _, mid := range s.matchOrder {
			if _, ok := s.matches[mid]; ok {
				kept = append(kept, mid)
			}
		}
		s.matchOrder = kept
	}
	delete(s.sessions, id)
	delete(s.byDate, sess.Date)
	return deleted, nil
}

// Counts reports totals for monitoring.
func (s *MemStore) Counts(_ context.Context) (players, matches, sessions int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players), len(s.matches), len(s.sessions)
}
