// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strconv"
)

// PlanningDependencies defines the interface for session planning.
type PlanningDependencies interface {
	EstimateGames(durationHours float64, minutesPerGame int) int
	SessionTotal(numGames int) float64
}

// PlanningHandler handles session planning requests.
type PlanningHandler struct {
	deps PlanningDependencies
}

// NewPlanningHandler creates a new planning handler.
func NewPlanningHandler(deps PlanningDependencies) *PlanningHandler {
	return &PlanningHandler{deps: deps}
}

// estimateResponse mirrors the response schema for GET /api/estimate.
type estimateResponse struct {
	Games          int     `json:"games"`
	EstimatedTotal float64 `json:"estimated_total"`
}

// HandleEstimate handles GET /api/estimate requests. The hours query
// parameter is required; minutes_per_game falls back to the default pace.
func (h *PlanningHandler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	const op = "api.estimate"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	hours, err := strconv.ParseFloat(q.Get("hours"), 64)
	if err != nil || hours <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("invalid hours")))
		return
	}
	minutesPerGame := 0
	if raw := q.Get("minutes_per_game"); raw != "" {
		parsed, perr := strconv.Atoi(raw)
		if perr != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("invalid minutes_per_game")))
			return
		}
		minutesPerGame = parsed
	}

	games := h.deps.EstimateGames(hours, minutesPerGame)
	writeJSON(w, http.StatusOK, estimateResponse{
		Games:          games,
		EstimatedTotal: h.deps.SessionTotal(games),
	})
}
