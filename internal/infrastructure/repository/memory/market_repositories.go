package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/davidriba/f1-fantasy-league/internal/domain/market"
)

type ownershipRepository struct {
	state *state
}

func (r *ownershipRepository) Get(_ context.Context, driverID, leagueID int64) (market.Ownership, bool, error) {
	o, ok := r.state.ownerships[ownershipKey{driverID: driverID, leagueID: leagueID}]
	if !ok {
		return market.Ownership{}, false, nil
	}
	return o, true, nil
}

func (r *ownershipRepository) ListAll(_ context.Context, leagueID int64) ([]market.Ownership, error) {
	return r.list(leagueID, func(market.Ownership) bool { return true }), nil
}

func (r *ownershipRepository) ListFree(_ context.Context, leagueID int64) ([]market.Ownership, error) {
	return r.list(leagueID, market.Ownership.IsFreeAgent), nil
}

func (r *ownershipRepository) ListForSale(_ context.Context, leagueID int64) ([]market.Ownership, error) {
	return r.list(leagueID, func(o market.Ownership) bool { return o.IsListedForSale }), nil
}

func (r *ownershipRepository) ListOwnedBy(_ context.Context, userID, leagueID int64) ([]market.Ownership, error) {
	return r.list(leagueID, func(o market.Ownership) bool { return o.IsOwnedBy(userID) }), nil
}

func (r *ownershipRepository) list(leagueID int64, keep func(market.Ownership) bool) []market.Ownership {
	out := make([]market.Ownership, 0)
	for _, o := range r.state.ownerships {
		if o.LeagueID == leagueID && keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DriverID < out[j].DriverID })
	return out
}

func (r *ownershipRepository) Create(_ context.Context, ownership market.Ownership) error {
	key := ownershipKey{driverID: ownership.DriverID, leagueID: ownership.LeagueID}
	if _, exists := r.state.ownerships[key]; exists {
		return fmt.Errorf("ownership for driver %d in league %d already exists", ownership.DriverID, ownership.LeagueID)
	}

	ownership.Version = 1
	r.state.ownerships[key] = ownership
	return nil
}

func (r *ownershipRepository) Update(_ context.Context, ownership market.Ownership) error {
	key := ownershipKey{driverID: ownership.DriverID, leagueID: ownership.LeagueID}
	current, exists := r.state.ownerships[key]
	if !exists {
		return fmt.Errorf("ownership for driver %d in league %d does not exist", ownership.DriverID, ownership.LeagueID)
	}
	if current.Version != ownership.Version {
		return fmt.Errorf("%w: driver %d league %d", market.ErrStaleOwnership, ownership.DriverID, ownership.LeagueID)
	}

	ownership.Version++
	r.state.ownerships[key] = ownership
	return nil
}

type rosterRepository struct {
	state *state
}

func (r *rosterRepository) GetActive(_ context.Context, userID, leagueID int64) (market.Roster, bool, error) {
	for _, roster := range r.state.rosters {
		if roster.UserID == userID && roster.LeagueID == leagueID && roster.IsActive {
			return roster, true, nil
		}
	}
	return market.Roster{}, false, nil
}

func (r *rosterRepository) Create(_ context.Context, roster market.Roster) (int64, error) {
	for _, existing := range r.state.rosters {
		if existing.UserID == roster.UserID && existing.LeagueID == roster.LeagueID && existing.IsActive && roster.IsActive {
			return 0, fmt.Errorf("user %d already has an active roster in league %d", roster.UserID, roster.LeagueID)
		}
	}

	roster.ID = r.state.nextRosterID
	r.state.nextRosterID++
	r.state.rosters[roster.ID] = roster
	return roster.ID, nil
}

func (r *rosterRepository) Update(_ context.Context, roster market.Roster) error {
	if _, exists := r.state.rosters[roster.ID]; !exists {
		return fmt.Errorf("roster %d does not exist", roster.ID)
	}
	r.state.rosters[roster.ID] = roster
	return nil
}

type transactionRepository struct {
	state *state
}

func (r *transactionRepository) Append(_ context.Context, tx market.Transaction) error {
	tx.ID = r.state.nextTransactionID
	r.state.nextTransactionID++
	r.state.transactions = append(r.state.transactions, tx)
	return nil
}

func (r *transactionRepository) ListByLeague(_ context.Context, leagueID int64, limit int) ([]market.Transaction, error) {
	return r.list(limit, func(tx market.Transaction) bool { return tx.LeagueID == leagueID }), nil
}

func (r *transactionRepository) ListByUser(_ context.Context, userID, leagueID int64, limit int) ([]market.Transaction, error) {
	return r.list(limit, func(tx market.Transaction) bool {
		if tx.LeagueID != leagueID {
			return false
		}
		return tx.BuyerID == userID || (tx.SellerID != nil && *tx.SellerID == userID)
	}), nil
}

// list walks the log backwards so callers get newest first.
func (r *transactionRepository) list(limit int, keep func(market.Transaction) bool) []market.Transaction {
	out := make([]market.Transaction, 0, limit)
	for i := len(r.state.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(r.state.transactions[i]) {
			out = append(out, r.state.transactions[i])
		}
	}
	return out
}

type buyoutRepository struct {
	state *state
}

func (r *buyoutRepository) Append(_ context.Context, record market.BuyoutRecord) error {
	record.ID = r.state.nextBuyoutID
	r.state.nextBuyoutID++
	r.state.buyouts = append(r.state.buyouts, record)
	return nil
}

func (r *buyoutRepository) CountBetween(_ context.Context, leagueID, buyerID, victimID int64, seasonYear int) (int, error) {
	count := 0
	for _, b := range r.state.buyouts {
		if b.LeagueID == leagueID && b.BuyerID == buyerID && b.VictimID == victimID && b.SeasonYear == seasonYear {
			count++
		}
	}
	return count, nil
}
