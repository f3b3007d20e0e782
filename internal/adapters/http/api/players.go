// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/haydennng/badminton-matchups/internal/domain/model"
)

// PlayerDependencies defines the interface for roster operations.
type PlayerDependencies interface {
	Players(ctx context.Context) []model.Player
	AddPlayer(ctx context.Context, name string) (model.Player, error)
	SetPlayerActive(ctx context.Context, name string, active bool) (model.Player, error)
	RemovePlayer(ctx context.Context, name string) error
}

// PlayersHandler handles roster requests.
type PlayersHandler struct {
	deps PlayerDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayerDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// playerRequest mirrors the request schema for POST /api/players.
type playerRequest struct {
	Name string `json:"name"`
}

// activeRequest mirrors the request schema for PATCH /api/players/{name}/active.
type activeRequest struct {
	Active *bool `json:"active"`
}

// HandlePlayers handles GET and POST /api/players requests.
func (h *PlayersHandler) HandlePlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.players"
	switch r.Method {
	case http.MethodGet:
		players := h.deps.Players(r.Context())
		if players == nil {
			players = []model.Player{}
		}
		writeJSON(w, http.StatusOK, players)
	case http.MethodPost:
		var req playerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		p, err := h.deps.AddPlayer(r.Context(), req.Name)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	default:
		http.NotFound(w, r)
	}
}

// HandlePlayer handles DELETE /api/players/{name} and
// PATCH /api/players/{name}/active requests.
func (h *PlayersHandler) HandlePlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.player"
	path := strings.TrimPrefix(r.URL.Path, "/api/players/")

	if name, ok := strings.CutSuffix(path, "/active"); ok {
		if r.Method != http.MethodPatch {
			http.NotFound(w, r)
			return
		}
		h.handleSetActive(w, r, name)
		return
	}

	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if err := h.deps.RemovePlayer(r.Context(), path); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed", "player": path})
}

func (h *PlayersHandler) handleSetActive(w http.ResponseWriter, r *http.Request, name string) {
	const op = "api.player_active"
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	var req activeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Active == nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing active")))
		return
	}
	p, err := h.deps.SetPlayerActive(r.Context(), name, *req.Active)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
