package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/davidriba/f1-fantasy-league/internal/usecase"
)

const defaultTransactionLimit = 100

// ListDrivers serves the public market catalog for a league. The status
// query narrows the listing: all (default), free, or for_sale. An owner
// filter is available through ?owned_by=<userID>.
func (h *Handler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDrivers")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.ListOwnershipsInput{LeagueID: leagueID, Filter: usecase.FilterAll}

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	switch status {
	case "", "all":
	case "free":
		input.Filter = usecase.FilterFree
	case "for_sale":
		input.Filter = usecase.FilterForSale
	default:
		writeError(ctx, w, fmt.Errorf("%w: unknown status %q", usecase.ErrInvalidInput, status))
		return
	}

	if ownedBy := strings.TrimSpace(r.URL.Query().Get("owned_by")); ownedBy != "" {
		userID, parseErr := strconv.ParseInt(ownedBy, 10, 64)
		if parseErr != nil || userID <= 0 {
			writeError(ctx, w, fmt.Errorf("%w: owned_by must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		input.Filter = usecase.FilterOwnedBy
		input.UserID = userID
	}

	drivers, err := h.ownershipService.ListOwnerships(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "list drivers failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]enrichedDriverDTO, 0, len(drivers))
	for _, item := range drivers {
		items = append(items, enrichedDriverToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListMyDrivers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyDrivers")
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

	drivers, err := h.ownershipService.ListOwnerships(ctx, usecase.ListOwnershipsInput{
		LeagueID: leagueID,
		Filter:   usecase.FilterOwnedBy,
		UserID:   principal.ID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list my drivers failed", "user_id", principal.ID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]enrichedDriverDTO, 0, len(drivers))
	for _, item := range drivers {
		items = append(items, enrichedDriverToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTransactions")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	transactions, err := h.ownershipService.ListTransactions(ctx, leagueID, queryLimit(r, defaultTransactionLimit))
	if err != nil {
		h.logger.WarnContext(ctx, "list transactions failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]transactionDTO, 0, len(transactions))
	for _, item := range transactions {
		items = append(items, transactionToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListMyTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyTransactions")
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

	transactions, err := h.ownershipService.ListUserTransactions(ctx, principal.ID, leagueID, queryLimit(r, defaultTransactionLimit))
	if err != nil {
		h.logger.WarnContext(ctx, "list my transactions failed", "user_id", principal.ID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]transactionDTO, 0, len(transactions))
	for _, item := range transactions {
		items = append(items, transactionToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
