// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/haydennng/badminton-matchups/internal/domain/matchup"
	"github.com/haydennng/badminton-matchups/internal/domain/model"
)

// RecommendationDependencies defines the interface for matchup generation.
type RecommendationDependencies interface {
	Recommend(ctx context.Context, cur *matchup.Cursor) (model.Recommendation, matchup.Cursor, error)
}

// RecommendationHandler handles matchup recommendation requests.
type RecommendationHandler struct {
	deps RecommendationDependencies
}

// NewRecommendationHandler creates a new recommendation handler.
func NewRecommendationHandler(deps RecommendationDependencies) *RecommendationHandler {
	return &RecommendationHandler{deps: deps}
}

// recommendationResponse bundles the proposal with the cursor callers pass
// back to cycle to the next alternative.
type recommendationResponse struct {
	Recommendation model.Recommendation `json:"recommendation"`
	Cursor         matchup.Cursor       `json:"cursor"`
}

// HandleGetRecommendation handles GET /api/recommendations requests. Pass
// the previously returned fingerprint and index query parameters to cycle
// through alternatives; omit both for the primary candidate.
func (h *RecommendationHandler) HandleGetRecommendation(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommendations"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	var cur *matchup.Cursor
	if fp := q.Get("fingerprint"); fp != "" {
		idx, err := strconv.Atoi(q.Get("index"))
		if err != nil || idx < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("invalid index")))
			return
		}
		cur = &matchup.Cursor{Fingerprint: fp, Index: idx}
	}

	rec, next, err := h.deps.Recommend(r.Context(), cur)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recommendationResponse{Recommendation: rec, Cursor: next})
}
