// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	service "github.com/haydennng/badminton-matchups/internal/app"
)

// SessionDependencies defines the interface for session operations.
type SessionDependencies interface {
	Sessions(ctx context.Context) []service.SessionSummary
	SessionByID(ctx context.Context, id string) (service.SessionDetail, error)
	CreateSession(ctx context.Context, date string) (service.SessionSummary, error)
	CurrentSession(ctx context.Context) (service.SessionSummary, error)
	DeleteSession(ctx context.Context, id string) (int, error)
	SessionEarnings(ctx context.Context, sessionID string) ([]service.PlayerStats, error)
	SessionStats(ctx context.Context, sessionID string) ([]service.PlayerStats, []service.PartnershipStats, error)
}

// SessionsHandler handles session requests.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// sessionRequest mirrors the request schema for POST /api/sessions.
type sessionRequest struct {
	Date string `json:"date"`
}

// sessionStatsResponse bundles the per-session breakdown.
type sessionStatsResponse struct {
	Players      []service.PlayerStats      `json:"players"`
	Partnerships []service.PartnershipStats `json:"partnerships"`
}

// HandleSessions handles GET and POST /api/sessions requests.
func (h *SessionsHandler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	const op = "api.sessions"
	switch r.Method {
	case http.MethodGet:
		sessions := h.deps.Sessions(r.Context())
		if sessions == nil {
			sessions = []service.SessionSummary{}
		}
		writeJSON(w, http.StatusOK, sessions)
	case http.MethodPost:
		var req sessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		sess, err := h.deps.CreateSession(r.Context(), req.Date)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sess)
	default:
		http.NotFound(w, r)
	}
}

// HandleCurrentSession handles GET /api/sessions/current requests.
func (h *SessionsHandler) HandleCurrentSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	sess, err := h.deps.CurrentSession(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// HandleSession handles /api/sessions/{id} requests plus the /earnings and
// /stats sub-resources.
func (h *SessionsHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.session"
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")

	if id, ok := strings.CutSuffix(path, "/earnings"); ok {
		h.handleEarnings(w, r, id)
		return
	}
	if id, ok := strings.CutSuffix(path, "/stats"); ok {
		h.handleStats(w, r, id)
		return
	}
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	switch r.Method {
	case http.MethodGet:
		detail, err := h.deps.SessionByID(r.Context(), path)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	case http.MethodDelete:
		deleted, err := h.deps.DeleteSession(r.Context(), path)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":          "deleted",
			"session_id":      path,
			"deleted_matches": deleted,
		})
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionsHandler) handleEarnings(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.session_earnings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	earnings, err := h.deps.SessionEarnings(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if earnings == nil {
		earnings = []service.PlayerStats{}
	}
	writeJSON(w, http.StatusOK, earnings)
}

func (h *SessionsHandler) handleStats(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.session_stats"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	players, partnerships, err := h.deps.SessionStats(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if players == nil {
		players = []service.PlayerStats{}
	}
	if partnerships == nil {
		partnerships = []service.PartnershipStats{}
	}
	writeJSON(w, http.StatusOK, sessionStatsResponse{Players: players, Partnerships: partnerships})
}
