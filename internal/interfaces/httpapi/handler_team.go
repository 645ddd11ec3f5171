package httpapi

import (
	"fmt"
	"net/http"

	"github.com/davidriba/f1-fantasy-league/internal/usecase"
)

func (h *Handler) InitializeTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.InitializeTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req initializeTeamRequest
	if err := h.decodeBody(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	pack, err := h.teamService.InitializeOnJoin(ctx, usecase.InitializeOnJoinInput{
		UserID:   principal.ID,
		LeagueID: leagueID,
		TeamName: req.TeamName,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "initialize team failed", "user_id", principal.ID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, starterPackToDTO(pack))
}

func (h *Handler) SwapReserve(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SwapReserve")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req swapReserveRequest
	if err := h.decodeBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	roster, err := h.teamService.SwapReserve(ctx, usecase.SwapReserveInput{
		UserID:   principal.ID,
		LeagueID: leagueID,
		DriverID: req.DriverID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "swap reserve failed", "user_id", principal.ID, "driver_id", req.DriverID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rosterToDTO(roster))
}

func (h *Handler) GetMyTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	roster, err := h.teamService.GetMyTeam(ctx, principal.ID, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get my team failed", "user_id", principal.ID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rosterToDTO(roster))
}
