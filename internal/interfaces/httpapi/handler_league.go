package httpapi

import (
	"net/http"
)

// InitializeLeagueOwnership seeds the free-agent market for a league
// season. The route is operator-only and idempotent: drivers that
// already have an ownership row are left untouched.
func (h *Handler) InitializeLeagueOwnership(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.InitializeLeagueOwnership")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req initializeOwnershipRequest
	if err := h.decodeBody(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	seasonYear := req.SeasonYear
	if seasonYear == 0 {
		seasonYear = h.seasonYear
	}

	created, err := h.marketService.InitializeLeagueOwnership(ctx, leagueID, seasonYear)
	if err != nil {
		h.logger.ErrorContext(ctx, "initialize league ownership failed", "league_id", leagueID, "season_year", seasonYear, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "league ownership initialized", "league_id", leagueID, "season_year", seasonYear, "created", created)
	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"league_id":   leagueID,
		"season_year": seasonYear,
		"created":     created,
	})
}
