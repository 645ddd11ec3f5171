package httpapi

import (
	"fmt"
	"net/http"

	"github.com/davidriba/f1-fantasy-league/internal/usecase"
)

func (h *Handler) BuyFromMarket(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BuyFromMarket")
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
	driverID, err := pathID(r, "driverID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.marketService.BuyFromMarket(ctx, usecase.BuyFromMarketInput{
		DriverID: driverID,
		BuyerID:  principal.ID,
		LeagueID: leagueID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "buy from market failed", "user_id", principal.ID, "driver_id", driverID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tradeResultToDTO(result))
}

func (h *Handler) BuyFromUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BuyFromUser")
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
	driverID, err := pathID(r, "driverID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req buyFromUserRequest
	if err := h.decodeBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.marketService.BuyFromUser(ctx, usecase.BuyFromUserInput{
		DriverID: driverID,
		BuyerID:  principal.ID,
		SellerID: req.SellerID,
		LeagueID: leagueID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "buy from user failed", "user_id", principal.ID, "driver_id", driverID, "seller_id", req.SellerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tradeResultToDTO(result))
}

func (h *Handler) SellToMarket(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SellToMarket")
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
	driverID, err := pathID(r, "driverID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.marketService.SellToMarket(ctx, usecase.SellToMarketInput{
		DriverID: driverID,
		SellerID: principal.ID,
		LeagueID: leagueID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "sell to market failed", "user_id", principal.ID, "driver_id", driverID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tradeResultToDTO(result))
}

func (h *Handler) ListDriverForSale(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDriverForSale")
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
	driverID, err := pathID(r, "driverID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req listForSaleRequest
	if err := h.decodeBody(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	ownership, err := h.marketService.ListForSale(ctx, usecase.ListForSaleInput{
		DriverID:    driverID,
		OwnerID:     principal.ID,
		LeagueID:    leagueID,
		AskingPrice: req.AskingPrice,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list for sale failed", "user_id", principal.ID, "driver_id", driverID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ownershipToDTO(ownership))
}

func (h *Handler) UnlistDriver(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UnlistDriver")
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
	driverID, err := pathID(r, "driverID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	ownership, err := h.marketService.Unlist(ctx, usecase.UnlistInput{
		DriverID: driverID,
		OwnerID:  principal.ID,
		LeagueID: leagueID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "unlist failed", "user_id", principal.ID, "driver_id", driverID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ownershipToDTO(ownership))
}

func (h *Handler) ExecuteBuyout(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExecuteBuyout")
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
	driverID, err := pathID(r, "driverID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req buyoutRequest
	if err := h.decodeBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.marketService.ExecuteBuyout(ctx, usecase.ExecuteBuyoutInput{
		DriverID: driverID,
		BuyerID:  principal.ID,
		VictimID: req.VictimID,
		LeagueID: leagueID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "buyout failed", "user_id", principal.ID, "driver_id", driverID, "victim_id", req.VictimID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tradeResultToDTO(result))
}
