package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/davidriba/f1-fantasy-league/internal/domain/market"
	"github.com/davidriba/f1-fantasy-league/internal/domain/pricing"
	"github.com/davidriba/f1-fantasy-league/internal/infrastructure/repository/memory"
)

const testLeagueID = int64(1)

type seqIDGenerator struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("tx-%03d", g.n), nil
}

type marketFixture struct {
	store      *memory.MarketStore
	provider   *memory.StaticResultsProvider
	rules      market.Rules
	market     *MarketService
	team       *TeamService
	ownerships *OwnershipService
	now        time.Time
}

func newMarketFixture(t *testing.T) *marketFixture {
	t.Helper()

	store := memory.NewMarketStore()
	provider := memory.NewStaticResultsProvider(memory.SeedSeasonStats())
	drivers := memory.NewDriverRepository(memory.SeedDrivers())
	users := memory.NewUserRepository(memory.SeedUsers())
	rules := market.DefaultRules(2025)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen := &seqIDGenerator{}
	rng := rand.New(rand.NewSource(42))

	f := &marketFixture{
		store:    store,
		provider: provider,
		rules:    rules,
	}
	f.market = NewMarketService(store, provider, rules, pricing.DefaultFormula(), gen, rng, nil, logger)
	f.team = NewTeamService(store, provider, drivers, users, rules, gen, rng, logger)
	f.ownerships = NewOwnershipService(store, drivers, provider, pricing.DefaultFormula(), rules, nil, logger)

	f.setNow(time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC))
	return f
}

func (f *marketFixture) setNow(now time.Time) {
	f.now = now
	f.market.now = func() time.Time { return now }
	f.team.now = func() time.Time { return now }
	f.ownerships.now = func() time.Time { return now }
}

func (f *marketFixture) seed(t *testing.T, fn func(ctx context.Context, repos market.Repositories) error) {
	t.Helper()
	if err := f.store.WithinTx(context.Background(), fn); err != nil {
		t.Fatalf("seed fixture: %v", err)
	}
}

func (f *marketFixture) seedFreeDriver(t *testing.T, driverID, price int64) {
	t.Helper()
	f.seed(t, func(ctx context.Context, repos market.Repositories) error {
		return repos.Ownerships().Create(ctx, market.Ownership{
			DriverID:         driverID,
			LeagueID:         testLeagueID,
			AcquisitionPrice: price,
			CreatedAt:        f.now,
			UpdatedAt:        f.now,
		})
	})
}

func (f *marketFixture) seedOwnedDriver(t *testing.T, driverID, ownerID, price int64, lockedUntil *time.Time, listed bool) {
	t.Helper()
	f.seed(t, func(ctx context.Context, repos market.Repositories) error {
		return repos.Ownerships().Create(ctx, market.Ownership{
			DriverID:         driverID,
			LeagueID:         testLeagueID,
			OwnerID:          &ownerID,
			IsListedForSale:  listed,
			AcquisitionPrice: price,
			LockedUntil:      lockedUntil,
			CreatedAt:        f.now,
			UpdatedAt:        f.now,
		})
	})
}

func (f *marketFixture) seedRoster(t *testing.T, userID, budget int64, d1, d2, d3, reserve *int64) {
	t.Helper()
	f.seed(t, func(ctx context.Context, repos market.Repositories) error {
		_, err := repos.Rosters().Create(ctx, market.Roster{
			UserID:          userID,
			LeagueID:        testLeagueID,
			TeamName:        fmt.Sprintf("Team %d", userID),
			Driver1ID:       d1,
			Driver2ID:       d2,
			Driver3ID:       d3,
			ReserveDriverID: reserve,
			ConstructorID:   memory.ConstructorMcLaren,
			BudgetRemaining: budget,
			IsActive:        true,
			CreatedAt:       f.now,
			UpdatedAt:       f.now,
		})
		return err
	})
}

func (f *marketFixture) getOwnership(t *testing.T, driverID int64) market.Ownership {
	t.Helper()
	var out market.Ownership
	f.seed(t, func(ctx context.Context, repos market.Repositories) error {
		o, found, err := repos.Ownerships().Get(ctx, driverID, testLeagueID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("ownership for driver %d not found", driverID)
		}
		out = o
		return nil
	})
	return out
}

func (f *marketFixture) getRoster(t *testing.T, userID int64) market.Roster {
	t.Helper()
	var out market.Roster
	f.seed(t, func(ctx context.Context, repos market.Repositories) error {
		r, found, err := repos.Rosters().GetActive(ctx, userID, testLeagueID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("roster for user %d not found", userID)
		}
		out = r
		return nil
	})
	return out
}

func (f *marketFixture) updateRoster(t *testing.T, userID int64, mutate func(*market.Roster)) {
	t.Helper()
	f.seed(t, func(ctx context.Context, repos market.Repositories) error {
		roster, found, err := repos.Rosters().GetActive(ctx, userID, testLeagueID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("roster for user %d not found", userID)
		}
		mutate(&roster)
		return repos.Rosters().Update(ctx, roster)
	})
}

func ptrInt64(v int64) *int64 {
	return &v
}

// seedTrader gives userID a three-driver unlocked lineup and a budget.
func (f *marketFixture) seedTrader(t *testing.T, userID int64, driverIDs [3]int64, price, budget int64) {
	t.Helper()
	for _, driverID := range driverIDs {
		f.seedOwnedDriver(t, driverID, userID, price, nil, false)
	}
	f.seedRoster(t, userID, budget, ptrInt64(driverIDs[0]), ptrInt64(driverIDs[1]), ptrInt64(driverIDs[2]), nil)
}

func TestMarketService_BuyFromMarket(t *testing.T) {
	f := newMarketFixture(t)
	f.seedTrader(t, 1, [3]int64{10, 11, 12}, 0, 50_000_000)
	f.seedFreeDriver(t, 20, 10_000_000)

	result, err := f.market.BuyFromMarket(t.Context(), BuyFromMarketInput{
		DriverID: 20,
		BuyerID:  1,
		LeagueID: testLeagueID,
	})
	if err != nil {
		t.Fatalf("buy from market failed: %v", err)
	}

	if result.Price != 10_000_000 {
		t.Fatalf("expected price 10000000, got %d", result.Price)
	}
	if result.BuyerBudget != 40_000_000 {
		t.Fatalf("expected budget 40000000 after purchase, got %d", result.BuyerBudget)
	}
	wantLock := f.now.UTC().Add(7 * 24 * time.Hour)
	if result.LockedUntil == nil || !result.LockedUntil.Equal(wantLock) {
		t.Fatalf("expected lock until %v, got %v", wantLock, result.LockedUntil)
	}
	if result.Transaction.Type != market.TransactionBuyFromMarket {
		t.Fatalf("expected buy_from_market transaction, got %s", result.Transaction.Type)
	}

	ownership := f.getOwnership(t, 20)
	if !ownership.IsOwnedBy(1) {
		t.Fatalf("expected driver 20 owned by user 1, got %+v", ownership)
	}
	if !ownership.IsLockedAt(f.now.Add(6 * 24 * time.Hour)) {
		t.Fatal("expected driver 20 to be locked for seven days")
	}

	roster := f.getRoster(t, 1)
	if roster.ReserveDriverID == nil || *roster.ReserveDriverID != 20 {
		t.Fatalf("expected driver 20 in the reserve slot, got %+v", roster)
	}
}

func TestMarketService_BuyFromMarket_DriverNotFree(t *testing.T) {
	f := newMarketFixture(t)
	f.seedTrader(t, 1, [3]int64{10, 11, 12}, 0, 50_000_000)
	f.seedOwnedDriver(t, 20, 2, 10_000_000, nil, false)

	_, err := f.market.BuyFromMarket(t.Context(), BuyFromMarketInput{
		DriverID: 20,
		BuyerID:  1,
		LeagueID: testLeagueID,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict for owned driver, got %v", err)
	}
}

func TestMarketService_BuyFromMarket_InsufficientFunds(t *testing.T) {
	f := newMarketFixture(t)
	f.seedTrader(t, 1, [3]int64{10, 11, 12}, 0, 5_000_000)
	f.seedFreeDriver(t, 20, 10_000_000)

	_, err := f.market.BuyFromMarket(t.Context(), BuyFromMarketInput{
		DriverID: 20,
		BuyerID:  1,
		LeagueID: testLeagueID,
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	if got := f.getRoster(t, 1).BudgetRemaining; got != 5_000_000 {
		t.Fatalf("budget must be untouched after a failed buy, got %d", got)
	}
	if o := f.getOwnership(t, 20); !o.IsFreeAgent() {
		t.Fatalf("ownership row must be unchanged after a failed buy, got %+v", o)
	}
}

func TestMarketService_BuyFromMarket_DriverCap(t *testing.T) {
	f := newMarketFixture(t)
	f.seedTrader(t, 1, [3]int64{10, 11, 12}, 0, 50_000_000)
	f.seedOwnedDriver(t, 13, 1, 0, nil, false)
	f.updateRoster(t, 1, func(r *market.Roster) {
		r.ReserveDriverID = ptrInt64(13)
	})
	f.seedFreeDriver(t, 20, 10_000_000)

	_, err := f.market.BuyFromMarket(t.Context(), BuyFromMarketInput{
		DriverID: 20,
		BuyerID:  1,
		LeagueID: testLeagueID,
	})
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected limit exceeded at four owned drivers, got %v", err)
	}
	if got := f.getRoster(t, 1).BudgetRemaining; got != 50_000_000 {
		t.Fatalf("budget must be untouched, got %d", got)
	}
}

func TestMarketService_BuyFromMarket_ConcurrentBuyers(t *testing.T) {
	f := newMarketFixture(t)
	f.seedTrader(t, 1, [3]int64{10, 11, 12}, 0, 50_000_000)
	f.seedTrader(t, 2, [3]int64{14, 15, 16}, 0, 50_000_000)
	f.seedFreeDriver(t, 20, 10_000_000)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, buyerID := range []int64{1, 2} {
		i, buyerID := i, buyerID
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.market.BuyFromMarket(context.Background(), BuyFromMarketInput{
				DriverID: 20,
				BuyerID:  buyerID,
				LeagueID: testLeagueID,
			})
		}()
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("losing buyer must observe a conflict, got %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("exactly one buyer must win, got %d", successes)
	}

	ownership := f.getOwnership(t, 20)
	if ownership.OwnerID == nil {
		t.Fatal("driver 20 must have exactly one owner after the race")
	}
}

func TestMarketService_SellToMarket(t *testing.T) {
	f := newMarketFixture(t)
	f.seedTrader(t, 1, [3]int64{10, 11, 12}, 0, 40_000_000)
	f.seedOwnedDriver(t, 13, 1, 10_000_000, nil, false)
	f.updateRoster(t, 1, func(r *market.Roster) {
		r.ReserveDriverID = ptrInt64(13)
	})

	result, err := f.market.SellToMarket(t.Context(), SellToMarketInput{
		DriverID: 13,
		SellerID: 1,
		LeagueID: testLeagueID,
	})
	if err != nil {
		t.Fatalf("sell to market failed: %v", err)
	}

	if result.Price != 8_000_000 {
		t.Fatalf("expected refund 8000000 at 80%%, got %d", result.Price)
	}
	if result.BuyerBudget != 48_000_000 {
		t.Fatalf("expected budget 48000000 after refund, got %d", result.BuyerBudget)
	}

	ownership := f.getOwnership(t, 13)
	if !ownership.IsFreeAgent() || ownership.IsListedForSale || ownership.LockedUntil != nil {
		t.Fatalf("expected driver 13 released to free agency, got %+v", ownership)
	}
	if roster := f.getRoster(t, 1); roster.ReserveDriverID != nil {
		t.Fatalf("expected reserve slot vacated, got %+v", roster)
	}
}

func TestMarketService_SellToMarket_MinimumLineup(t *testing.T) {
	f := newMarketFixture(t)
	f.seedTrader(t, 1, [3]int64{10, 11, 12}, 10_000_000, 40_000_000)

	_, err := f.market.SellToMarket(t.Context(), SellToMarketInput{
		DriverID: 10,
		SellerID: 1,
		LeagueID: testLeagueID,
	})
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected limit exceeded at the three-driver floor, got %v", err)
	}
}

func TestMarketService_SellToMarket_Locked(t *testing.T) {
	f := newMarketFixture(t)
	lockedUntil := time.Date(2025, 8, 5, 10, 0, 0, 0, time.UTC)
	f.seedTrader(t, 1, [3]int64{10, 11, 12}, 0, 40_000_000)
	f.seedOwnedDriver(t, 13, 1, 10_000_000, &lockedUntil, false)

	_, err := f.market.SellToMarket(t.Context(), SellToMarketInput{
		DriverID: 13,
		SellerID: 1,
		LeagueID: testLeagueID,
	})
	if !errors.Is(err, ErrDriverLocked) {
		t.Fatalf("expected driver locked, got %v", err)
	}
	echoed, ok := LockedUntilFromError(err)
	if !ok || !echoed.Equal(lockedUntil) {
		t.Fatalf("expected locked_until %v echoed, got %v (ok=%v)", lockedUntil, echoed, ok)
	}
}

func TestMarketService_ListForSale(t *testing.T) {
	f := newMarketFixture(t)
	f.seedTrader(t, 1, [3]int64{10, 11, 12}, 0, 40_000_000)
	f.seedOwnedDriver(t, 13, 1, 10_000_000, nil, false)

	asking := int64(12_000_000)
	listed, err := f.market.ListForSale(t.Context(), ListForSaleInput{
		DriverID:    13,
		OwnerID:     1,
		LeagueID:    testLeagueID,
		AskingPrice: &asking,
	})
	if err != nil {
		t.Fatalf("list for sale failed: %v", err)
	}
	if !listed.IsListedForSale || listed.AcquisitionPrice != asking {
		t.Fatalf("expected listing at asking price, got %+v", listed)
	}

	// Listing twice is a conflict, not a silent no-op.
	if _, err := f.market.ListForSale(t.Context(), ListForSaleInput{DriverID: 13, OwnerID: 1, LeagueID: testLeagueID}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict on duplicate listing, got %v", err)
	}

	unlisted, err := f.market.Unlist(t.Context(), UnlistInput{DriverID: 13, OwnerID: 1, LeagueID: testLeagueID})
	if err != nil {
		t.Fatalf("unlist failed: %v", err)
	}
	if unlisted.IsListedForSale {
		t.Fatalf("expected listing cleared, got %+v", unlisted)
	}
	if _, err := f.market.Unlist(t.Context(), UnlistInput{DriverID: 13, OwnerID: 1, LeagueID: testLeagueID}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict on duplicate unlist, got %v", err)
	}
}

func TestMarketService_ListForSale_MinimumLineup(t *testing.T) {
	f := newMarketFixture(t)
	f.seedTrader(t, 1, [3]int64{10, 11, 12}, 10_000_000, 40_000_000)

	_, err := f.market.ListForSale(t.Context(), ListForSaleInput{
		DriverID: 10,
		OwnerID:  1,
		LeagueID: testLeagueID,
	})
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected limit exceeded at the three-driver floor, got %v", err)
	}
}

func TestMarketService_ListForSale_Locked(t *testing.T) {
	f := newMarketFixture(t)
	lockedUntil := time.Date(2025, 8, 5, 10, 0, 0, 0, time.UTC)
	f.seedTrader(t, 1, [3]int64{10, 11, 12}, 0, 40_000_000)
	f.seedOwnedDriver(t, 13, 1, 10_000_000, &lockedUntil, false)

	_, err := f.market.ListForSale(t.Context(), ListForSaleInput{
		DriverID: 13,
		OwnerID:  1,
		LeagueID: testLeagueID,
	})
	if !errors.Is(err, ErrDriverLocked) {
		t.Fatalf("expected driver locked, got %v", err)
	}
}

func TestMarketService_BuyFromUser(t *testing.T) {
	f := newMarketFixture(t)
	f.seedTrader(t, 1, [3]int64{10, 11, 12}, 0, 50_000_000)
	f.seedTrader(t, 2, [3]int64{14, 15, 16}, 0, 20_000_000)
	f.seedOwnedDriver(t, 17, 2, 15_000_000, nil, true)
	f.updateRoster(t, 2, func(r *market.Roster) {
		r.ReserveDriverID = ptrInt64(17)
	})

	result, err := f.market.BuyFromUser(t.Context(), BuyFromUserInput{
		DriverID: 17,
		BuyerID:  1,
		SellerID: 2,
		LeagueID: testLeagueID,
	})
	if err != nil {
		t.Fatalf("buy from user failed: %v", err)
	}

	if result.Price != 15_000_000 {
		t.Fatalf("expected price 15000000, got %d", result.Price)
	}
	if result.BuyerBudget != 35_000_000 {
		t.Fatalf("expected buyer budget 35000000, got %d", result.BuyerBudget)
	}
	if result.SellerBudget == nil || *result.SellerBudget != 35_000_000 {
		t.Fatalf("expected seller budget 35000000, got %v", result.SellerBudget)
	}

	ownership := f.getOwnership(t, 17)
	if !ownership.IsOwnedBy(1) || ownership.IsListedForSale {
		t.Fatalf("expected driver 17 transferred and unlisted, got %+v", ownership)
	}
	if !ownership.IsLockedAt(f.now.Add(time.Hour)) {
		t.Fatal("expected a fresh lock after the peer trade")
	}
	if roster := f.getRoster(t, 2); roster.SlotOf(17) != market.SlotNone {
		t.Fatalf("expected driver 17 removed from the seller roster, got %+v", roster)
	}
}

func TestMarketService_BuyFromUser_NotListed(t *testing.T) {
	f := newMarketFixture(t)
	f.seedTrader(t, 1, [3]int64{10, 11, 12}, 0, 50_000_000)
	f.seedTrader(t, 2, [3]int64{14, 15, 16}, 0, 20_000_000)
	f.seedOwnedDriver(t, 17, 2, 15_000_000, nil, false)

	_, err := f.market.BuyFromUser(t.Context(), BuyFromUserInput{
		DriverID: 17,
		BuyerID:  1,
		SellerID: 2,
		LeagueID: testLeagueID,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict for unlisted driver, got %v", err)
	}
}

func TestMarketService_ExecuteBuyout_ReservePromoted(t *testing.T) {
	f := newMarketFixture(t)
	f.seedTrader(t, 1, [3]int64{10, 11, 12}, 0, 50_000_000)
	f.seedOwnedDriver(t, 14, 2, 10_000_000, nil, false)
	f.seedOwnedDriver(t, 15, 2, 0, nil, false)
	f.seedOwnedDriver(t, 16, 2, 0, nil, false)
	f.seedOwnedDriver(t, 17, 2, 0, nil, false)
	f.seedRoster(t, 2, 20_000_000, ptrInt64(14), ptrInt64(15), ptrInt64(16), ptrInt64(17))

	result, err := f.market.ExecuteBuyout(t.Context(), ExecuteBuyoutInput{
		DriverID: 14,
		BuyerID:  1,
		VictimID: 2,
		LeagueID: testLeagueID,
	})
	if err != nil {
		t.Fatalf("execute buyout failed: %v", err)
	}

	if result.Price != 13_000_000 {
		t.Fatalf("expected buyout price 13000000 at 1.3x, got %d", result.Price)
	}
	if result.Replacement == nil || result.Replacement.Source != "reserve" || result.Replacement.DriverID != 17 {
		t.Fatalf("expected reserve driver 17 promoted, got %+v", result.Replacement)
	}

	victim := f.getRoster(t, 2)
	if victim.SlotOf(17) != market.SlotDriver1 {
		t.Fatalf("expected driver 17 in the vacated lineup slot, got %+v", victim)
	}
	if victim.ReserveDriverID != nil {
		t.Fatalf("expected reserve cleared after promotion, got %+v", victim)
	}
	if victim.BudgetRemaining != 33_000_000 {
		t.Fatalf("expected victim budget 33000000 after payout, got %d", victim.BudgetRemaining)
	}
}

func TestMarketService_ExecuteBuyout_EmergencyAssignment(t *testing.T) {
	f := newMarketFixture(t)
	f.seedTrader(t, 1, [3]int64{10, 11, 12}, 0, 50_000_000)
	f.seedTrader(t, 2, [3]int64{14, 15, 16}, 10_000_000, 20_000_000)
	f.seedFreeDriver(t, 20, 10_000_000)
	f.seedFreeDriver(t, 19, 10_140_000)

	result, err := f.market.ExecuteBuyout(t.Context(), ExecuteBuyoutInput{
		DriverID: 14,
		BuyerID:  1,
		VictimID: 2,
		LeagueID: testLeagueID,
	})
	if err != nil {
		t.Fatalf("execute buyout failed: %v", err)
	}

	if result.Price != 13_000_000 {
		t.Fatalf("expected buyout price 13000000 at 1.3x, got %d", result.Price)
	}
	if result.BuyerBudget != 37_000_000 {
		t.Fatalf("expected buyer budget 37000000, got %d", result.BuyerBudget)
	}
	if result.SellerBudget == nil || *result.SellerBudget != 33_000_000 {
		t.Fatalf("expected victim budget 33000000, got %v", result.SellerBudget)
	}
	if result.Replacement == nil || result.Replacement.Source != "emergency" {
		t.Fatalf("expected an emergency replacement, got %+v", result.Replacement)
	}

	emergency := f.getOwnership(t, result.Replacement.DriverID)
	if !emergency.IsOwnedBy(2) {
		t.Fatalf("expected emergency driver owned by the victim, got %+v", emergency)
	}
	if emergency.AcquisitionPrice != 0 || emergency.LockedUntil != nil {
		t.Fatalf("emergency grant must be free and unlocked, got %+v", emergency)
	}

	victim := f.getRoster(t, 2)
	if victim.SlotOf(result.Replacement.DriverID) != market.SlotDriver1 {
		t.Fatalf("expected emergency driver in the vacated slot, got %+v", victim)
	}

	transactions, err := f.ownerships.ListTransactions(t.Context(), testLeagueID, 10)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	types := make(map[market.TransactionType]int, len(transactions))
	for _, tx := range transactions {
		types[tx.Type]++
	}
	if types[market.TransactionBuyoutClause] != 1 || types[market.TransactionEmergencyAssignment] != 1 {
		t.Fatalf("expected one buyout_clause and one emergency_assignment entry, got %v", types)
	}
}

func TestMarketService_ExecuteBuyout_PairCap(t *testing.T) {
	f := newMarketFixture(t)
	f.seedTrader(t, 1, [3]int64{10, 11, 12}, 0, 90_000_000)
	f.seedTrader(t, 2, [3]int64{14, 15, 16}, 10_000_000, 20_000_000)
	f.seedFreeDriver(t, 19, 10_000_000)
	f.seedFreeDriver(t, 20, 10_000_000)

	buyout := func(driverID int64) error {
		_, err := f.market.ExecuteBuyout(context.Background(), ExecuteBuyoutInput{
			DriverID: driverID,
			BuyerID:  1,
			VictimID: 2,
			LeagueID: testLeagueID,
		})
		return err
	}
	sellBack := func(driverID int64) {
		t.Helper()
		f.setNow(f.now.Add(8 * 24 * time.Hour))
		if _, err := f.market.SellToMarket(context.Background(), SellToMarketInput{
			DriverID: driverID,
			SellerID: 1,
			LeagueID: testLeagueID,
		}); err != nil {
			t.Fatalf("sell back driver %d: %v", driverID, err)
		}
	}

	if err := buyout(14); err != nil {
		t.Fatalf("first buyout failed: %v", err)
	}
	sellBack(14)
	if err := buyout(15); err != nil {
		t.Fatalf("second buyout failed: %v", err)
	}
	sellBack(15)

	if err := buyout(16); !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("third buyout against the same rival must hit the cap, got %v", err)
	}
}

func TestMarketService_ExecuteBuyout_Locked(t *testing.T) {
	f := newMarketFixture(t)
	lockedUntil := time.Date(2025, 8, 6, 10, 0, 0, 0, time.UTC)
	f.seedTrader(t, 1, [3]int64{10, 11, 12}, 0, 50_000_000)
	f.seedTrader(t, 2, [3]int64{15, 16, 17}, 0, 20_000_000)
	f.seedOwnedDriver(t, 14, 2, 10_000_000, &lockedUntil, false)

	_, err := f.market.ExecuteBuyout(t.Context(), ExecuteBuyoutInput{
		DriverID: 14,
		BuyerID:  1,
		VictimID: 2,
		LeagueID: testLeagueID,
	})
	if !errors.Is(err, ErrDriverLocked) {
		t.Fatalf("expected driver locked, got %v", err)
	}
	echoed, ok := LockedUntilFromError(err)
	if !ok || !echoed.Equal(lockedUntil) {
		t.Fatalf("expected locked_until %v echoed, got %v (ok=%v)", lockedUntil, echoed, ok)
	}
}

func TestMarketService_InitializeLeagueOwnership(t *testing.T) {
	f := newMarketFixture(t)

	created, err := f.market.InitializeLeagueOwnership(t.Context(), testLeagueID, 2025)
	if err != nil {
		t.Fatalf("initialize league ownership failed: %v", err)
	}
	if created != 20 {
		t.Fatalf("expected 20 ownership rows for the grid, got %d", created)
	}

	again, err := f.market.InitializeLeagueOwnership(t.Context(), testLeagueID, 2025)
	if err != nil {
		t.Fatalf("second initialization failed: %v", err)
	}
	if again != 0 {
		t.Fatalf("second initialization must create zero rows, got %d", again)
	}
}

func TestMarketService_InitializeLeagueOwnership_Prices(t *testing.T) {
	f := newMarketFixture(t)
	f.provider.SetStats(pricing.SeasonStats{
		SeasonYear:      2025,
		CompletedRounds: 20,
		ByDriver: map[int64]pricing.SeasonResults{
			1: {Points: 900, Podiums: 5, Victories: 2},
			2: {},
		},
	})

	created, err := f.market.InitializeLeagueOwnership(t.Context(), testLeagueID, 2025)
	if err != nil {
		t.Fatalf("initialize league ownership failed: %v", err)
	}
	if created != 2 {
		t.Fatalf("expected 2 ownership rows, got %d", created)
	}

	if got := f.getOwnership(t, 1).AcquisitionPrice; got != 19_450_000 {
		t.Fatalf("expected driver 1 priced 19450000, got %d", got)
	}
	if got := f.getOwnership(t, 2).AcquisitionPrice; got != 10_000_000 {
		t.Fatalf("expected driver 2 priced at the 10000000 floor, got %d", got)
	}
}
