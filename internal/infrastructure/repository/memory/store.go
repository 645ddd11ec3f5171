package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/davidriba/f1-fantasy-league/internal/domain/market"
)

type ownershipKey struct {
	driverID int64
	leagueID int64
}

// state is the whole market dataset. The unit of work clones it, applies
// every write to the clone, and swaps it back in on commit, so a failed
// operation leaves nothing behind.
type state struct {
	ownerships   map[ownershipKey]market.Ownership
	rosters      map[int64]market.Roster
	transactions []market.Transaction
	buyouts      []market.BuyoutRecord

	nextRosterID      int64
	nextTransactionID int64
	nextBuyoutID      int64
}

func newState() *state {
	return &state{
		ownerships:        make(map[ownershipKey]market.Ownership),
		rosters:           make(map[int64]market.Roster),
		nextRosterID:      1,
		nextTransactionID: 1,
		nextBuyoutID:      1,
	}
}

func (s *state) clone() *state {
	cp := &state{
		ownerships:        make(map[ownershipKey]market.Ownership, len(s.ownerships)),
		rosters:           make(map[int64]market.Roster, len(s.rosters)),
		transactions:      append([]market.Transaction(nil), s.transactions...),
		buyouts:           append([]market.BuyoutRecord(nil), s.buyouts...),
		nextRosterID:      s.nextRosterID,
		nextTransactionID: s.nextTransactionID,
		nextBuyoutID:      s.nextBuyoutID,
	}
	for k, v := range s.ownerships {
		cp.ownerships[k] = v
	}
	for k, v := range s.rosters {
		cp.rosters[k] = v
	}
	return cp
}

// MarketStore keeps all market state in memory behind one mutex. Holding
// the mutex for the whole unit of work serializes trades the same way row
// locks do in the SQL store.
type MarketStore struct {
	mu    sync.Mutex
	state *state
}

func NewMarketStore() *MarketStore {
	return &MarketStore{state: newState()}
}

// WithinTx implements market.UnitOfWork with copy-on-write semantics: fn
// works against a clone which replaces the live state only when fn returns
// nil.
func (s *MarketStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos market.Repositories) error) error {
	if fn == nil {
		return fmt.Errorf("transaction body is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	staged := s.state.clone()
	if err := fn(ctx, &stagedRepos{state: staged}); err != nil {
		return err
	}

	s.state = staged
	return nil
}

type stagedRepos struct {
	state *state
}

func (r *stagedRepos) Ownerships() market.OwnershipRepository {
	return &ownershipRepository{state: r.state}
}

func (r *stagedRepos) Rosters() market.RosterRepository {
	return &rosterRepository{state: r.state}
}

func (r *stagedRepos) Transactions() market.TransactionRepository {
	return &transactionRepository{state: r.state}
}

func (r *stagedRepos) Buyouts() market.BuyoutRepository {
	return &buyoutRepository{state: r.state}
}
