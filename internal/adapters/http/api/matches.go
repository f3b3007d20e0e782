// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	service "github.com/haydennng/badminton-matchups/internal/app"
	"github.com/haydennng/badminton-matchups/internal/domain/model"
)

// MatchDependencies defines the interface for match recording and history.
type MatchDependencies interface {
	RecordMatch(ctx context.Context, in service.RecordMatchInput) (model.Match, error)
	UpdateMatch(ctx context.Context, id string, in service.UpdateMatchInput) (model.Match, error)
	DeleteMatch(ctx context.Context, id string) error
	Matches(ctx context.Context, sessionID string) []model.Match
	RecentMatches(ctx context.Context, limit int) []model.Match
	ExportCSV(ctx context.Context, w io.Writer) error
}

// MatchesHandler handles match requests.
type MatchesHandler struct {
	deps MatchDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

// matchRequest mirrors the request schema for POST /api/matches.
type matchRequest struct {
	Team1      []string `json:"team1"`
	Team2      []string `json:"team2"`
	Team1Score int      `json:"team1_score"`
	Team2Score int      `json:"team2_score"`
	Date       string   `json:"date"`
}

func (m matchRequest) validate() error {
	switch {
	case len(m.Team1) != 2:
		return errors.New("team1 must name exactly two players")
	case len(m.Team2) != 2:
		return errors.New("team2 must name exactly two players")
	}
	if m.Date != "" {
		if _, err := time.Parse("2006-01-02", m.Date); err != nil {
			return errors.New("invalid date; must be YYYY-MM-DD")
		}
	}
	return nil
}

// matchUpdateRequest mirrors the request schema for PATCH /api/matches/{id}.
type matchUpdateRequest struct {
	Team1Score *int     `json:"team1_score"`
	Team2Score *int     `json:"team2_score"`
	GameValue  *float64 `json:"game_value"`
}

// HandleMatches handles GET and POST /api/matches requests. GET accepts
// session_id to scope history and limit to fetch the newest matches only.
func (h *MatchesHandler) HandleMatches(w http.ResponseWriter, r *http.Request) {
	const op = "api.matches"
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		var matches []model.Match
		if raw := q.Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 0 {
				writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("invalid limit")))
				return
			}
			matches = h.deps.RecentMatches(r.Context(), limit)
		} else {
			matches = h.deps.Matches(r.Context(), q.Get("session_id"))
		}
		if matches == nil {
			matches = []model.Match{}
		}
		writeJSON(w, http.StatusOK, matches)
	case http.MethodPost:
		var req matchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		m, err := h.deps.RecordMatch(r.Context(), service.RecordMatchInput{
			Team1:      model.Team{req.Team1[0], req.Team1[1]},
			Team2:      model.Team{req.Team2[0], req.Team2[1]},
			Team1Score: req.Team1Score,
			Team2Score: req.Team2Score,
			Date:       req.Date,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	default:
		http.NotFound(w, r)
	}
}

// HandleMatch handles PATCH and DELETE /api/matches/{id} requests.
func (h *MatchesHandler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.match"
	id := strings.TrimPrefix(r.URL.Path, "/api/matches/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	switch r.Method {
	case http.MethodPatch:
		var req matchUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		m, err := h.deps.UpdateMatch(r.Context(), id, service.UpdateMatchInput{
			Team1Score: req.Team1Score,
			Team2Score: req.Team2Score,
			GameValue:  req.GameValue,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	case http.MethodDelete:
		if err := h.deps.DeleteMatch(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "match_id": id})
	default:
		http.NotFound(w, r)
	}
}

// HandleExport handles GET /api/matches/export requests and streams the
// match history as CSV.
func (h *MatchesHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="matches.csv"`)
	if err := h.deps.ExportCSV(r.Context(), w); err != nil {
		// Headers are already out; the truncated body is the best signal left.
		return
	}
}
