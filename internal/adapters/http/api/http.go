// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/haydennng/badminton-matchups/internal/adapters/repository"
	service "github.com/haydennng/badminton-matchups/internal/app"
	"github.com/haydennng/badminton-matchups/internal/domain/matchup"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PlayerDependencies
	MatchDependencies
	SessionDependencies
	RecommendationDependencies
	ReportDependencies
	PlanningDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler         *HealthHandler
	statsHandler          *StatsHandler
	playersHandler        *PlayersHandler
	matchesHandler        *MatchesHandler
	sessionsHandler       *SessionsHandler
	recommendationHandler *RecommendationHandler
	reportsHandler        *ReportsHandler
	planningHandler       *PlanningHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:         NewHealthHandler(),
		statsHandler:          NewStatsHandler(statsProvider),
		playersHandler:        NewPlayersHandler(deps),
		matchesHandler:        NewMatchesHandler(deps),
		sessionsHandler:       NewSessionsHandler(deps),
		recommendationHandler: NewRecommendationHandler(deps),
		reportsHandler:        NewReportsHandler(deps),
		planningHandler:       NewPlanningHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/players", MetricsMiddleware(s.playersHandler.HandlePlayers, "players"))
	mux.HandleFunc("/api/players/", MetricsMiddleware(s.playersHandler.HandlePlayer, "players"))
	mux.HandleFunc("/api/matches", MetricsMiddleware(s.matchesHandler.HandleMatches, "matches"))
	mux.HandleFunc("/api/matches/export", MetricsMiddleware(s.matchesHandler.HandleExport, "matches_export"))
	mux.HandleFunc("/api/matches/", MetricsMiddleware(s.matchesHandler.HandleMatch, "matches"))
	mux.HandleFunc("/api/sessions", MetricsMiddleware(s.sessionsHandler.HandleSessions, "sessions"))
	mux.HandleFunc("/api/sessions/current", MetricsMiddleware(s.sessionsHandler.HandleCurrentSession, "sessions"))
	mux.HandleFunc("/api/sessions/", MetricsMiddleware(s.sessionsHandler.HandleSession, "sessions"))
	mux.HandleFunc("/api/recommendations", MetricsMiddleware(s.recommendationHandler.HandleGetRecommendation, "recommendations"))
	mux.HandleFunc("/api/player-stats", MetricsMiddleware(s.reportsHandler.HandlePlayerStats, "player_stats"))
	mux.HandleFunc("/api/player-stats/", MetricsMiddleware(s.reportsHandler.HandlePlayerStat, "player_stats"))
	mux.HandleFunc("/api/earnings", MetricsMiddleware(s.reportsHandler.HandleEarnings, "earnings"))
	mux.HandleFunc("/api/partnerships", MetricsMiddleware(s.reportsHandler.HandlePartnerships, "partnerships"))
	mux.HandleFunc("/api/estimate", MetricsMiddleware(s.planningHandler.HandleEstimate, "estimate"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates service and store errors to HTTP responses.
func writeDomainError(w http.ResponseWriter, err error) {
	status, code := statusForError(err)
	writeError(w, status, code, err)
}

// statusForError maps domain sentinel errors onto status codes and stable
// machine-readable error codes.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrPlayerNotFound),
		errors.Is(err, repository.ErrMatchNotFound),
		errors.Is(err, repository.ErrSessionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrPlayerExists):
		return http.StatusConflict, "player_exists"
	case errors.Is(err, service.ErrUnknownPlayer):
		return http.StatusBadRequest, "unknown_player"
	case errors.Is(err, service.ErrInvalidScore):
		return http.StatusBadRequest, "invalid_score"
	case errors.Is(err, service.ErrInvalidTeams):
		return http.StatusBadRequest, "invalid_teams"
	case errors.Is(err, service.ErrInvalidPlayerName):
		return http.StatusBadRequest, "invalid_player_name"
	case errors.Is(err, repository.ErrInvalidDate):
		return http.StatusBadRequest, "invalid_date"
	case errors.Is(err, matchup.ErrInsufficientPlayers):
		return http.StatusConflict, "insufficient_players"
	case errors.Is(err, matchup.ErrNoValidCandidate):
		return http.StatusConflict, "no_valid_candidate"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "not_started"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
