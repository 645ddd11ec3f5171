package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/davidriba/f1-fantasy-league/internal/domain/market"
	"github.com/davidriba/f1-fantasy-league/internal/domain/pricing"
	idgen "github.com/davidriba/f1-fantasy-league/internal/platform/id"
)

// TradeResult is the outcome of a successful trade operation: the settled
// price, both budgets after settlement, the lock expiry if one was started,
// and any automatic roster replacement the trade triggered.
type TradeResult struct {
	DriverID     int64
	LeagueID     int64
	Price        int64
	BuyerBudget  int64
	SellerBudget *int64
	LockedUntil  *time.Time
	Transaction  market.Transaction
	Replacement  *ReplacementInfo
}

// ReplacementInfo describes how a victim's vacated lineup slot was refilled
// after a buyout.
type ReplacementInfo struct {
	Slot     market.RosterSlot
	DriverID int64
	Source   string // "reserve" or "emergency"
}

// MarketService is the trade coordinator. Every mutation runs inside one
// unit of work so precondition checks and writes commit together; the
// ownership row version makes the loser of a racing trade fail with
// ErrConflict instead of overwriting the winner.
type MarketService struct {
	uow     market.UnitOfWork
	results ResultsProvider
	rules   market.Rules
	formula pricing.Formula
	idGen   idgen.Generator
	rng     *rand.Rand
	pricers *ants.Pool
	logger  *slog.Logger
	now     func() time.Time
}

func NewMarketService(
	uow market.UnitOfWork,
	results ResultsProvider,
	rules market.Rules,
	formula pricing.Formula,
	idGen idgen.Generator,
	rng *rand.Rand,
	pricers *ants.Pool,
	logger *slog.Logger,
) *MarketService {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &MarketService{
		uow:     uow,
		results: results,
		rules:   rules,
		formula: formula,
		idGen:   idGen,
		rng:     rng,
		pricers: pricers,
		logger:  logger,
		now:     time.Now,
	}
}

// BuyFromMarketInput identifies a free-agent purchase.
type BuyFromMarketInput struct {
	DriverID int64
	BuyerID  int64
	LeagueID int64
}

func (s *MarketService) BuyFromMarket(ctx context.Context, input BuyFromMarketInput) (TradeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "MarketService.BuyFromMarket")
	defer span.End()

	if input.DriverID <= 0 || input.BuyerID <= 0 || input.LeagueID <= 0 {
		return TradeResult{}, fmt.Errorf("%w: driver, buyer and league ids are required", ErrInvalidInput)
	}

	var result TradeResult
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos market.Repositories) error {
		now := s.now().UTC()

		ownership, found, err := repos.Ownerships().Get(ctx, input.DriverID, input.LeagueID)
		if err != nil {
			return fmt.Errorf("get ownership: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: driver %d has no ownership row in league %d", ErrNotFound, input.DriverID, input.LeagueID)
		}
		if !ownership.IsFreeAgent() {
			return fmt.Errorf("%w: driver %d is not a free agent", ErrConflict, input.DriverID)
		}

		roster, err := s.loadBuyerSide(ctx, repos, input.BuyerID, input.LeagueID)
		if err != nil {
			return err
		}

		price := ownership.AcquisitionPrice
		if roster.BudgetRemaining < price {
			return fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, price, roster.BudgetRemaining)
		}

		slot, err := firstEmptySlot(roster)
		if err != nil {
			return err
		}

		lockUntil := now.Add(s.rules.LockAfterPurchase)
		ownership.Transfer(input.BuyerID, price, &lockUntil, now)
		if err := repos.Ownerships().Update(ctx, ownership); err != nil {
			return conflictOnStale(err, "transfer ownership")
		}

		roster.BudgetRemaining -= price
		driverID := input.DriverID
		if err := roster.SetSlot(slot, &driverID); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		roster.UpdatedAt = now
		if err := repos.Rosters().Update(ctx, roster); err != nil {
			return fmt.Errorf("update buyer roster: %w", err)
		}

		tx, err := s.newTransaction(input.DriverID, input.LeagueID, nil, input.BuyerID, price, market.TransactionBuyFromMarket, now)
		if err != nil {
			return err
		}
		if err := repos.Transactions().Append(ctx, tx); err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}

		result = TradeResult{
			DriverID:    input.DriverID,
			LeagueID:    input.LeagueID,
			Price:       price,
			BuyerBudget: roster.BudgetRemaining,
			LockedUntil: &lockUntil,
			Transaction: tx,
		}

		return nil
	})
	if err != nil {
		return TradeResult{}, err
	}

	s.logger.InfoContext(ctx, "driver bought from market",
		slog.Int64("driver_id", input.DriverID),
		slog.Int64("buyer_id", input.BuyerID),
		slog.Int64("league_id", input.LeagueID),
		slog.Int64("price", result.Price),
	)

	return result, nil
}

// BuyFromUserInput identifies a peer purchase of a listed driver.
type BuyFromUserInput struct {
	DriverID int64
	BuyerID  int64
	SellerID int64
	LeagueID int64
}

func (s *MarketService) BuyFromUser(ctx context.Context, input BuyFromUserInput) (TradeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "MarketService.BuyFromUser")
	defer span.End()

	if input.DriverID <= 0 || input.BuyerID <= 0 || input.SellerID <= 0 || input.LeagueID <= 0 {
		return TradeResult{}, fmt.Errorf("%w: driver, buyer, seller and league ids are required", ErrInvalidInput)
	}
	if input.BuyerID == input.SellerID {
		return TradeResult{}, fmt.Errorf("%w: buyer and seller cannot be the same user", ErrInvalidInput)
	}

	var result TradeResult
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos market.Repositories) error {
		now := s.now().UTC()

		ownership, found, err := repos.Ownerships().Get(ctx, input.DriverID, input.LeagueID)
		if err != nil {
			return fmt.Errorf("get ownership: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: driver %d has no ownership row in league %d", ErrNotFound, input.DriverID, input.LeagueID)
		}
		if !ownership.IsOwnedBy(input.SellerID) {
			return fmt.Errorf("%w: driver %d is not owned by user %d", ErrConflict, input.DriverID, input.SellerID)
		}
		if !ownership.IsListedForSale {
			return fmt.Errorf("%w: driver %d is not listed for sale", ErrConflict, input.DriverID)
		}

		buyerRoster, err := s.loadBuyerSide(ctx, repos, input.BuyerID, input.LeagueID)
		if err != nil {
			return err
		}

		sellerRoster, found, err := repos.Rosters().GetActive(ctx, input.SellerID, input.LeagueID)
		if err != nil {
			return fmt.Errorf("get seller roster: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: user %d has no active team in league %d", ErrNotFound, input.SellerID, input.LeagueID)
		}

		price := ownership.AcquisitionPrice
		if buyerRoster.BudgetRemaining < price {
			return fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, price, buyerRoster.BudgetRemaining)
		}

		slot, err := firstEmptySlot(buyerRoster)
		if err != nil {
			return err
		}

		lockUntil := now.Add(s.rules.LockAfterPurchase)
		ownership.Transfer(input.BuyerID, price, &lockUntil, now)
		if err := repos.Ownerships().Update(ctx, ownership); err != nil {
			return conflictOnStale(err, "transfer ownership")
		}

		sellerRoster.RemoveDriver(input.DriverID)
		sellerRoster.BudgetRemaining += price
		sellerRoster.UpdatedAt = now
		if err := repos.Rosters().Update(ctx, sellerRoster); err != nil {
			return fmt.Errorf("update seller roster: %w", err)
		}

		buyerRoster.BudgetRemaining -= price
		driverID := input.DriverID
		if err := buyerRoster.SetSlot(slot, &driverID); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		buyerRoster.UpdatedAt = now
		if err := repos.Rosters().Update(ctx, buyerRoster); err != nil {
			return fmt.Errorf("update buyer roster: %w", err)
		}

		tx, err := s.newTransaction(input.DriverID, input.LeagueID, &input.SellerID, input.BuyerID, price, market.TransactionBuyFromUser, now)
		if err != nil {
			return err
		}
		if err := repos.Transactions().Append(ctx, tx); err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}

		sellerBudget := sellerRoster.BudgetRemaining
		result = TradeResult{
			DriverID:     input.DriverID,
			LeagueID:     input.LeagueID,
			Price:        price,
			BuyerBudget:  buyerRoster.BudgetRemaining,
			SellerBudget: &sellerBudget,
			LockedUntil:  &lockUntil,
			Transaction:  tx,
		}

		return nil
	})
	if err != nil {
		return TradeResult{}, err
	}

	s.logger.InfoContext(ctx, "driver bought from user",
		slog.Int64("driver_id", input.DriverID),
		slog.Int64("buyer_id", input.BuyerID),
		slog.Int64("seller_id", input.SellerID),
		slog.Int64("league_id", input.LeagueID),
		slog.Int64("price", result.Price),
	)

	return result, nil
}

// SellToMarketInput identifies a quick-sell back to the free-agent pool.
type SellToMarketInput struct {
	DriverID int64
	SellerID int64
	LeagueID int64
}

func (s *MarketService) SellToMarket(ctx context.Context, input SellToMarketInput) (TradeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "MarketService.SellToMarket")
	defer span.End()

	if input.DriverID <= 0 || input.SellerID <= 0 || input.LeagueID <= 0 {
		return TradeResult{}, fmt.Errorf("%w: driver, seller and league ids are required", ErrInvalidInput)
	}

	var result TradeResult
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos market.Repositories) error {
		now := s.now().UTC()

		ownership, found, err := repos.Ownerships().Get(ctx, input.DriverID, input.LeagueID)
		if err != nil {
			return fmt.Errorf("get ownership: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: driver %d has no ownership row in league %d", ErrNotFound, input.DriverID, input.LeagueID)
		}
		if !ownership.IsOwnedBy(input.SellerID) {
			return fmt.Errorf("%w: driver %d is not owned by user %d", ErrForbidden, input.DriverID, input.SellerID)
		}
		if ownership.IsLockedAt(now) {
			return fmt.Errorf("sell to market: %w", &LockedError{LockedUntil: *ownership.LockedUntil})
		}

		owned, err := repos.Ownerships().ListOwnedBy(ctx, input.SellerID, input.LeagueID)
		if err != nil {
			return fmt.Errorf("list owned drivers: %w", err)
		}
		if len(owned) <= s.rules.MinLineupDrivers {
			return fmt.Errorf("%w: selling would drop the lineup below %d drivers", ErrLimitExceeded, s.rules.MinLineupDrivers)
		}

		roster, found, err := repos.Rosters().GetActive(ctx, input.SellerID, input.LeagueID)
		if err != nil {
			return fmt.Errorf("get seller roster: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: user %d has no active team in league %d", ErrNotFound, input.SellerID, input.LeagueID)
		}

		refund := s.rules.SellRefund(ownership.AcquisitionPrice)

		ownership.Release(now)
		if err := repos.Ownerships().Update(ctx, ownership); err != nil {
			return conflictOnStale(err, "release ownership")
		}

		roster.RemoveDriver(input.DriverID)
		roster.BudgetRemaining += refund
		roster.UpdatedAt = now
		if err := repos.Rosters().Update(ctx, roster); err != nil {
			return fmt.Errorf("update seller roster: %w", err)
		}

		sellerID := input.SellerID
		tx, err := s.newTransaction(input.DriverID, input.LeagueID, &sellerID, input.SellerID, refund, market.TransactionSellToMarket, now)
		if err != nil {
			return err
		}
		if err := repos.Transactions().Append(ctx, tx); err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}

		result = TradeResult{
			DriverID:    input.DriverID,
			LeagueID:    input.LeagueID,
			Price:       refund,
			BuyerBudget: roster.BudgetRemaining,
			Transaction: tx,
		}

		return nil
	})
	if err != nil {
		return TradeResult{}, err
	}

	s.logger.InfoContext(ctx, "driver sold to market",
		slog.Int64("driver_id", input.DriverID),
		slog.Int64("seller_id", input.SellerID),
		slog.Int64("league_id", input.LeagueID),
		slog.Int64("refund", result.Price),
	)

	return result, nil
}

// ListForSaleInput toggles a driver onto the transfer list, optionally
// overriding the asking price.
type ListForSaleInput struct {
	DriverID    int64
	OwnerID     int64
	LeagueID    int64
	AskingPrice *int64
}

func (s *MarketService) ListForSale(ctx context.Context, input ListForSaleInput) (market.Ownership, error) {
	ctx, span := startUsecaseSpan(ctx, "MarketService.ListForSale")
	defer span.End()

	if input.DriverID <= 0 || input.OwnerID <= 0 || input.LeagueID <= 0 {
		return market.Ownership{}, fmt.Errorf("%w: driver, owner and league ids are required", ErrInvalidInput)
	}
	if input.AskingPrice != nil && *input.AskingPrice <= 0 {
		return market.Ownership{}, fmt.Errorf("%w: asking price must be positive", ErrInvalidInput)
	}

	var listed market.Ownership
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos market.Repositories) error {
		now := s.now().UTC()

		ownership, found, err := repos.Ownerships().Get(ctx, input.DriverID, input.LeagueID)
		if err != nil {
			return fmt.Errorf("get ownership: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: driver %d has no ownership row in league %d", ErrNotFound, input.DriverID, input.LeagueID)
		}
		if !ownership.IsOwnedBy(input.OwnerID) {
			return fmt.Errorf("%w: driver %d is not owned by user %d", ErrForbidden, input.DriverID, input.OwnerID)
		}
		if ownership.IsListedForSale {
			return fmt.Errorf("%w: driver %d is already listed", ErrConflict, input.DriverID)
		}
		if ownership.IsLockedAt(now) {
			return fmt.Errorf("list for sale: %w", &LockedError{LockedUntil: *ownership.LockedUntil})
		}

		owned, err := repos.Ownerships().ListOwnedBy(ctx, input.OwnerID, input.LeagueID)
		if err != nil {
			return fmt.Errorf("list owned drivers: %w", err)
		}
		if len(owned) <= s.rules.MinLineupDrivers {
			return fmt.Errorf("%w: listing would drop the lineup below %d drivers", ErrLimitExceeded, s.rules.MinLineupDrivers)
		}

		ownership.IsListedForSale = true
		if input.AskingPrice != nil {
			ownership.AcquisitionPrice = *input.AskingPrice
		}
		ownership.UpdatedAt = now
		if err := repos.Ownerships().Update(ctx, ownership); err != nil {
			return conflictOnStale(err, "list ownership")
		}

		listed = ownership
		return nil
	})
	if err != nil {
		return market.Ownership{}, err
	}

	return listed, nil
}

// UnlistInput takes a driver back off the transfer list.
type UnlistInput struct {
	DriverID int64
	OwnerID  int64
	LeagueID int64
}

func (s *MarketService) Unlist(ctx context.Context, input UnlistInput) (market.Ownership, error) {
	ctx, span := startUsecaseSpan(ctx, "MarketService.Unlist")
	defer span.End()

	if input.DriverID <= 0 || input.OwnerID <= 0 || input.LeagueID <= 0 {
		return market.Ownership{}, fmt.Errorf("%w: driver, owner and league ids are required", ErrInvalidInput)
	}

	var unlisted market.Ownership
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos market.Repositories) error {
		now := s.now().UTC()

		ownership, found, err := repos.Ownerships().Get(ctx, input.DriverID, input.LeagueID)
		if err != nil {
			return fmt.Errorf("get ownership: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: driver %d has no ownership row in league %d", ErrNotFound, input.DriverID, input.LeagueID)
		}
		if !ownership.IsOwnedBy(input.OwnerID) {
			return fmt.Errorf("%w: driver %d is not owned by user %d", ErrForbidden, input.DriverID, input.OwnerID)
		}
		if !ownership.IsListedForSale {
			return fmt.Errorf("%w: driver %d is not listed", ErrConflict, input.DriverID)
		}

		ownership.IsListedForSale = false
		ownership.UpdatedAt = now
		if err := repos.Ownerships().Update(ctx, ownership); err != nil {
			return conflictOnStale(err, "unlist ownership")
		}

		unlisted = ownership
		return nil
	})
	if err != nil {
		return market.Ownership{}, err
	}

	return unlisted, nil
}

// ExecuteBuyoutInput identifies a forced purchase of another user's driver.
type ExecuteBuyoutInput struct {
	DriverID int64
	BuyerID  int64
	VictimID int64
	LeagueID int64
}

func (s *MarketService) ExecuteBuyout(ctx context.Context, input ExecuteBuyoutInput) (TradeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "MarketService.ExecuteBuyout")
	defer span.End()

	if input.DriverID <= 0 || input.BuyerID <= 0 || input.VictimID <= 0 || input.LeagueID <= 0 {
		return TradeResult{}, fmt.Errorf("%w: driver, buyer, victim and league ids are required", ErrInvalidInput)
	}
	if input.BuyerID == input.VictimID {
		return TradeResult{}, fmt.Errorf("%w: cannot buy out your own driver", ErrInvalidInput)
	}

	// Season stats are only needed if an emergency replacement has to be
	// picked, but fetching them inside the transaction would stretch the
	// lock window across a network call.
	stats, statsErr := s.results.GetSeasonStats(ctx, s.rules.SeasonYear)

	var result TradeResult
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos market.Repositories) error {
		now := s.now().UTC()

		ownership, found, err := repos.Ownerships().Get(ctx, input.DriverID, input.LeagueID)
		if err != nil {
			return fmt.Errorf("get ownership: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: driver %d has no ownership row in league %d", ErrNotFound, input.DriverID, input.LeagueID)
		}
		if !ownership.IsOwnedBy(input.VictimID) {
			return fmt.Errorf("%w: driver %d is not owned by user %d", ErrConflict, input.DriverID, input.VictimID)
		}
		if ownership.IsLockedAt(now) {
			return fmt.Errorf("execute buyout: %w", &LockedError{LockedUntil: *ownership.LockedUntil})
		}

		buyoutCount, err := repos.Buyouts().CountBetween(ctx, input.LeagueID, input.BuyerID, input.VictimID, s.rules.SeasonYear)
		if err != nil {
			return fmt.Errorf("count buyouts: %w", err)
		}
		if buyoutCount >= s.rules.MaxBuyoutsPerPairPerSeason {
			return fmt.Errorf("%w: only %d buyouts per rival per season", ErrLimitExceeded, s.rules.MaxBuyoutsPerPairPerSeason)
		}

		buyerRoster, err := s.loadBuyerSide(ctx, repos, input.BuyerID, input.LeagueID)
		if err != nil {
			return err
		}

		victimRoster, found, err := repos.Rosters().GetActive(ctx, input.VictimID, input.LeagueID)
		if err != nil {
			return fmt.Errorf("get victim roster: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: user %d has no active team in league %d", ErrNotFound, input.VictimID, input.LeagueID)
		}

		price := s.rules.BuyoutPrice(ownership.AcquisitionPrice)
		if buyerRoster.BudgetRemaining < price {
			return fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, price, buyerRoster.BudgetRemaining)
		}

		buyerSlot, err := firstEmptySlot(buyerRoster)
		if err != nil {
			return err
		}

		vacatedSlot := victimRoster.RemoveDriver(input.DriverID)
		replacement, err := s.refillVacatedSlot(ctx, repos, &victimRoster, vacatedSlot, stats, statsErr, now)
		if err != nil {
			return err
		}

		lockUntil := now.Add(s.rules.LockAfterPurchase)
		ownership.Transfer(input.BuyerID, price, &lockUntil, now)
		if err := repos.Ownerships().Update(ctx, ownership); err != nil {
			return conflictOnStale(err, "transfer ownership")
		}

		victimRoster.BudgetRemaining += price
		victimRoster.UpdatedAt = now
		if err := repos.Rosters().Update(ctx, victimRoster); err != nil {
			return fmt.Errorf("update victim roster: %w", err)
		}

		buyerRoster.BudgetRemaining -= price
		driverID := input.DriverID
		if err := buyerRoster.SetSlot(buyerSlot, &driverID); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		buyerRoster.UpdatedAt = now
		if err := repos.Rosters().Update(ctx, buyerRoster); err != nil {
			return fmt.Errorf("update buyer roster: %w", err)
		}

		tx, err := s.newTransaction(input.DriverID, input.LeagueID, &input.VictimID, input.BuyerID, price, market.TransactionBuyoutClause, now)
		if err != nil {
			return err
		}
		if err := repos.Transactions().Append(ctx, tx); err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}

		record := market.BuyoutRecord{
			LeagueID:    input.LeagueID,
			BuyerID:     input.BuyerID,
			VictimID:    input.VictimID,
			DriverID:    input.DriverID,
			BuyoutPrice: price,
			SeasonYear:  s.rules.SeasonYear,
			OccurredAt:  now,
		}
		if err := record.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if err := repos.Buyouts().Append(ctx, record); err != nil {
			return fmt.Errorf("append buyout record: %w", err)
		}

		victimBudget := victimRoster.BudgetRemaining
		result = TradeResult{
			DriverID:     input.DriverID,
			LeagueID:     input.LeagueID,
			Price:        price,
			BuyerBudget:  buyerRoster.BudgetRemaining,
			SellerBudget: &victimBudget,
			LockedUntil:  &lockUntil,
			Transaction:  tx,
			Replacement:  replacement,
		}

		return nil
	})
	if err != nil {
		return TradeResult{}, err
	}

	s.logger.InfoContext(ctx, "buyout clause executed",
		slog.Int64("driver_id", input.DriverID),
		slog.Int64("buyer_id", input.BuyerID),
		slog.Int64("victim_id", input.VictimID),
		slog.Int64("league_id", input.LeagueID),
		slog.Int64("price", result.Price),
	)

	return result, nil
}

// refillVacatedSlot backfills the lineup slot a buyout just emptied. The
// victim's reserve is promoted when present; otherwise a free low-tier
// driver is granted at zero cost with no lock. A vacated reserve slot stays
// empty.
func (s *MarketService) refillVacatedSlot(
	ctx context.Context,
	repos market.Repositories,
	victimRoster *market.Roster,
	vacatedSlot market.RosterSlot,
	stats pricing.SeasonStats,
	statsErr error,
	now time.Time,
) (*ReplacementInfo, error) {
	if vacatedSlot == market.SlotNone || vacatedSlot == market.SlotReserve {
		return nil, nil
	}

	if victimRoster.ReserveDriverID != nil {
		promoted := *victimRoster.ReserveDriverID
		victimRoster.ReserveDriverID = nil
		if err := victimRoster.SetSlot(vacatedSlot, &promoted); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return &ReplacementInfo{Slot: vacatedSlot, DriverID: promoted, Source: "reserve"}, nil
	}

	if statsErr != nil {
		return nil, fmt.Errorf("%w: season stats needed for emergency assignment: %v", ErrDependencyUnavailable, statsErr)
	}

	free, err := repos.Ownerships().ListFree(ctx, victimRoster.LeagueID)
	if err != nil {
		return nil, fmt.Errorf("list free agents: %w", err)
	}
	pool := make([]market.DriverPoints, 0, len(free))
	for _, o := range free {
		pool = append(pool, market.DriverPoints{
			DriverID: o.DriverID,
			Points:   stats.ByDriver[o.DriverID].Points,
		})
	}

	emergencyID, err := market.PickEmergencyDriver(s.rng, pool)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConflict, err)
	}

	var emergency market.Ownership
	for _, o := range free {
		if o.DriverID == emergencyID {
			emergency = o
			break
		}
	}
	emergency.Transfer(victimRoster.UserID, 0, nil, now)
	if err := repos.Ownerships().Update(ctx, emergency); err != nil {
		return nil, conflictOnStale(err, "assign emergency driver")
	}

	if err := victimRoster.SetSlot(vacatedSlot, &emergencyID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	tx, err := s.newTransaction(emergencyID, victimRoster.LeagueID, nil, victimRoster.UserID, 0, market.TransactionEmergencyAssignment, now)
	if err != nil {
		return nil, err
	}
	if err := repos.Transactions().Append(ctx, tx); err != nil {
		return nil, fmt.Errorf("append emergency transaction: %w", err)
	}

	return &ReplacementInfo{Slot: vacatedSlot, DriverID: emergencyID, Source: "emergency"}, nil
}

// InitializeLeagueOwnership creates a free-agent ownership row, priced from
// real season results, for every driver active in the season's most recent
// completed round. Existing rows are left untouched so the call is safe to
// repeat. Returns how many rows were created.
func (s *MarketService) InitializeLeagueOwnership(ctx context.Context, leagueID int64, seasonYear int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "MarketService.InitializeLeagueOwnership")
	defer span.End()

	if leagueID <= 0 {
		return 0, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if seasonYear <= 0 {
		seasonYear = s.rules.SeasonYear
	}

	activeDrivers, err := s.results.ListActiveDrivers(ctx, seasonYear)
	if err != nil {
		return 0, fmt.Errorf("%w: list active drivers: %v", ErrDependencyUnavailable, err)
	}
	if len(activeDrivers) == 0 {
		return 0, fmt.Errorf("%w: season %d has no active drivers", ErrNotFound, seasonYear)
	}

	stats, err := s.results.GetSeasonStats(ctx, seasonYear)
	if err != nil {
		return 0, fmt.Errorf("%w: get season stats: %v", ErrDependencyUnavailable, err)
	}

	prices := s.priceDrivers(activeDrivers, stats)

	created := 0
	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos market.Repositories) error {
		now := s.now().UTC()

		existing, err := repos.Ownerships().ListAll(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("list ownerships: %w", err)
		}
		seen := make(map[int64]struct{}, len(existing))
		for _, o := range existing {
			seen[o.DriverID] = struct{}{}
		}

		for _, driverID := range activeDrivers {
			if _, ok := seen[driverID]; ok {
				continue
			}
			row := market.Ownership{
				DriverID:         driverID,
				LeagueID:         leagueID,
				AcquisitionPrice: prices[driverID],
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := row.Validate(); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			if err := repos.Ownerships().Create(ctx, row); err != nil {
				return fmt.Errorf("create ownership for driver %d: %w", driverID, err)
			}
			created++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "league ownership initialized",
		slog.Int64("league_id", leagueID),
		slog.Int("season_year", seasonYear),
		slog.Int("rows_created", created),
	)

	return created, nil
}

// priceDrivers runs the pricing formula across the grid on the shared
// worker pool, falling back to inline computation when no pool is wired.
func (s *MarketService) priceDrivers(driverIDs []int64, stats pricing.SeasonStats) map[int64]int64 {
	prices := make([]int64, len(driverIDs))

	if s.pricers == nil {
		for i, driverID := range driverIDs {
			prices[i] = s.formula.Price(stats.ByDriver[driverID].PricingStats())
		}
	} else {
		var wg sync.WaitGroup
		for i, driverID := range driverIDs {
			i, driverID := i, driverID
			wg.Add(1)
			task := func() {
				defer wg.Done()
				prices[i] = s.formula.Price(stats.ByDriver[driverID].PricingStats())
			}
			if err := s.pricers.Submit(task); err != nil {
				task()
			}
		}
		wg.Wait()
	}

	out := make(map[int64]int64, len(driverIDs))
	for i, driverID := range driverIDs {
		out[driverID] = prices[i]
	}
	return out
}

// loadBuyerSide fetches the buyer's roster and enforces the per-user driver
// cap before any budget is touched.
func (s *MarketService) loadBuyerSide(ctx context.Context, repos market.Repositories, buyerID, leagueID int64) (market.Roster, error) {
	owned, err := repos.Ownerships().ListOwnedBy(ctx, buyerID, leagueID)
	if err != nil {
		return market.Roster{}, fmt.Errorf("list owned drivers: %w", err)
	}
	if len(owned) >= s.rules.MaxDriversPerUser {
		return market.Roster{}, fmt.Errorf("%w: cannot own more than %d drivers", ErrLimitExceeded, s.rules.MaxDriversPerUser)
	}

	roster, found, err := repos.Rosters().GetActive(ctx, buyerID, leagueID)
	if err != nil {
		return market.Roster{}, fmt.Errorf("get buyer roster: %w", err)
	}
	if !found {
		return market.Roster{}, fmt.Errorf("%w: user %d has no active team in league %d", ErrNotFound, buyerID, leagueID)
	}

	return roster, nil
}

func (s *MarketService) newTransaction(driverID, leagueID int64, sellerID *int64, buyerID, price int64, txType market.TransactionType, now time.Time) (market.Transaction, error) {
	reference, err := s.idGen.NewID()
	if err != nil {
		return market.Transaction{}, fmt.Errorf("generate transaction reference: %w", err)
	}

	tx := market.Transaction{
		Reference:  reference,
		DriverID:   driverID,
		LeagueID:   leagueID,
		SellerID:   sellerID,
		BuyerID:    buyerID,
		Price:      price,
		Type:       txType,
		OccurredAt: now,
	}
	if err := tx.Validate(); err != nil {
		return market.Transaction{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return tx, nil
}

func firstEmptySlot(roster market.Roster) (market.RosterSlot, error) {
	switch {
	case roster.Driver1ID == nil:
		return market.SlotDriver1, nil
	case roster.Driver2ID == nil:
		return market.SlotDriver2, nil
	case roster.Driver3ID == nil:
		return market.SlotDriver3, nil
	case roster.ReserveDriverID == nil:
		return market.SlotReserve, nil
	default:
		return market.SlotNone, fmt.Errorf("%w: no free roster slot", ErrConflict)
	}
}

// conflictOnStale translates an optimistic-version failure into the
// business conflict the losing side of a racing trade should observe.
func conflictOnStale(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, market.ErrStaleOwnership) {
		return fmt.Errorf("%w: %s lost a concurrent race", ErrConflict, op)
	}
	return fmt.Errorf("%s: %w", op, err)
}
