package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/davidriba/f1-fantasy-league/internal/domain/market"
)

func seedOwnership(t *testing.T, store *MarketStore, driverID, leagueID int64) {
	t.Helper()
	err := store.WithinTx(context.Background(), func(ctx context.Context, repos market.Repositories) error {
		return repos.Ownerships().Create(ctx, market.Ownership{
			DriverID:         driverID,
			LeagueID:         leagueID,
			AcquisitionPrice: 10_000_000,
			CreatedAt:        time.Now(),
			UpdatedAt:        time.Now(),
		})
	})
	if err != nil {
		t.Fatalf("seed ownership: %v", err)
	}
}

func TestMarketStore_WithinTx_RollsBackOnError(t *testing.T) {
	store := NewMarketStore()
	seedOwnership(t, store, 1, 1)

	failure := errors.New("boom")
	err := store.WithinTx(context.Background(), func(ctx context.Context, repos market.Repositories) error {
		o, found, err := repos.Ownerships().Get(ctx, 1, 1)
		if err != nil || !found {
			return fmt.Errorf("get seeded ownership: found=%v err=%v", found, err)
		}
		owner := int64(7)
		o.OwnerID = &owner
		if err := repos.Ownerships().Update(ctx, o); err != nil {
			return err
		}
		if err := repos.Transactions().Append(ctx, market.Transaction{
			Reference: "tx-001",
			DriverID:  1,
			LeagueID:  1,
			BuyerID:   7,
			Type:      market.TransactionBuyFromMarket,
		}); err != nil {
			return err
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("expected the body error surfaced, got %v", err)
	}

	err = store.WithinTx(context.Background(), func(ctx context.Context, repos market.Repositories) error {
		o, _, err := repos.Ownerships().Get(ctx, 1, 1)
		if err != nil {
			return err
		}
		if o.OwnerID != nil {
			return fmt.Errorf("aborted write leaked: %+v", o)
		}
		log, err := repos.Transactions().ListByLeague(ctx, 1, 10)
		if err != nil {
			return err
		}
		if len(log) != 0 {
			return fmt.Errorf("aborted transaction log leaked: %+v", log)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestMarketStore_OwnershipUpdate_StaleVersion(t *testing.T) {
	store := NewMarketStore()
	seedOwnership(t, store, 1, 1)

	var snapshot market.Ownership
	err := store.WithinTx(context.Background(), func(ctx context.Context, repos market.Repositories) error {
		o, _, err := repos.Ownerships().Get(ctx, 1, 1)
		snapshot = o
		return err
	})
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}

	// First writer wins and bumps the version.
	err = store.WithinTx(context.Background(), func(ctx context.Context, repos market.Repositories) error {
		owner := int64(7)
		o := snapshot
		o.OwnerID = &owner
		return repos.Ownerships().Update(ctx, o)
	})
	if err != nil {
		t.Fatalf("first update: %v", err)
	}

	// Second writer still holds the old version and must lose.
	err = store.WithinTx(context.Background(), func(ctx context.Context, repos market.Repositories) error {
		owner := int64(8)
		o := snapshot
		o.OwnerID = &owner
		return repos.Ownerships().Update(ctx, o)
	})
	if !errors.Is(err, market.ErrStaleOwnership) {
		t.Fatalf("expected stale ownership, got %v", err)
	}
}

func TestMarketStore_WithinTx_ContextCancelled(t *testing.T) {
	store := NewMarketStore()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.WithinTx(ctx, func(ctx context.Context, repos market.Repositories) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if called {
		t.Fatal("body must not run once the context is cancelled")
	}
}
