// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	service "github.com/haydennng/badminton-matchups/internal/app"
)

// ReportDependencies defines the interface for player and partnership
// reporting.
type ReportDependencies interface {
	PlayerStats(ctx context.Context, name string) (service.PlayerStats, error)
	AllPlayerStats(ctx context.Context) []service.PlayerStats
	Earnings(ctx context.Context) []service.PlayerStats
	PartnershipStats(ctx context.Context, minGames int) []service.PartnershipStats
}

// ReportsHandler handles reporting requests.
type ReportsHandler struct {
	deps ReportDependencies
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(deps ReportDependencies) *ReportsHandler {
	return &ReportsHandler{deps: deps}
}

// HandlePlayerStats handles GET /api/player-stats requests.
func (h *ReportsHandler) HandlePlayerStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	stats := h.deps.AllPlayerStats(r.Context())
	if stats == nil {
		stats = []service.PlayerStats{}
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandlePlayerStat handles GET /api/player-stats/{name} requests.
func (h *ReportsHandler) HandlePlayerStat(w http.ResponseWriter, r *http.Request) {
	const op = "api.player_stats"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/api/player-stats/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	stats, err := h.deps.PlayerStats(r.Context(), name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleEarnings handles GET /api/earnings requests.
func (h *ReportsHandler) HandleEarnings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	earnings := h.deps.Earnings(r.Context())
	if earnings == nil {
		earnings = []service.PlayerStats{}
	}
	writeJSON(w, http.StatusOK, earnings)
}

// HandlePartnerships handles GET /api/partnerships requests. The min_games
// query parameter filters out one-off teams.
func (h *ReportsHandler) HandlePartnerships(w http.ResponseWriter, r *http.Request) {
	const op = "api.partnerships"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	minGames := 0
	if raw := r.URL.Query().Get("min_games"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("invalid min_games")))
			return
		}
		minGames = parsed
	}
	partnerships := h.deps.PartnershipStats(r.Context(), minGames)
	if partnerships == nil {
		partnerships = []service.PartnershipStats{}
	}
	writeJSON(w, http.StatusOK, partnerships)
}
