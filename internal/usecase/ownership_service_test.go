package usecase

import (
	"errors"
	"testing"
)

func TestOwnershipService_ListOwnerships(t *testing.T) {
	f := newMarketFixture(t)
	f.seedFreeDriver(t, 20, 10_000_000)
	f.seedFreeDriver(t, 19, 10_140_000)
	f.seedOwnedDriver(t, 1, 1, 14_140_000, nil, false)
	f.seedOwnedDriver(t, 2, 2, 14_000_000, nil, true)

	tests := []struct {
		name    string
		input   ListOwnershipsInput
		drivers []int64
	}{
		{
			name:    "all",
			input:   ListOwnershipsInput{LeagueID: testLeagueID, Filter: FilterAll},
			drivers: []int64{1, 2, 19, 20},
		},
		{
			name:    "free",
			input:   ListOwnershipsInput{LeagueID: testLeagueID, Filter: FilterFree},
			drivers: []int64{19, 20},
		},
		{
			name:    "for sale",
			input:   ListOwnershipsInput{LeagueID: testLeagueID, Filter: FilterForSale},
			drivers: []int64{2},
		},
		{
			name:    "owned by",
			input:   ListOwnershipsInput{LeagueID: testLeagueID, Filter: FilterOwnedBy, UserID: 1},
			drivers: []int64{1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			enriched, err := f.ownerships.ListOwnerships(t.Context(), tc.input)
			if err != nil {
				t.Fatalf("list ownerships failed: %v", err)
			}
			if len(enriched) != len(tc.drivers) {
				t.Fatalf("expected %d records, got %d", len(tc.drivers), len(enriched))
			}

			seen := make(map[int64]bool, len(enriched))
			for _, e := range enriched {
				seen[e.Driver.ID] = true
			}
			for _, want := range tc.drivers {
				if !seen[want] {
					t.Fatalf("driver %d missing from %s listing: %v", want, tc.name, seen)
				}
			}
		})
	}
}

func TestOwnershipService_ListOwnerships_Enrichment(t *testing.T) {
	f := newMarketFixture(t)
	f.seedOwnedDriver(t, 1, 1, 14_140_000, nil, false)
	f.seedFreeDriver(t, 20, 10_000_000)

	enriched, err := f.ownerships.ListOwnerships(t.Context(), ListOwnershipsInput{
		LeagueID: testLeagueID,
		Filter:   FilterAll,
	})
	if err != nil {
		t.Fatalf("list ownerships failed: %v", err)
	}
	if len(enriched) != 2 {
		t.Fatalf("expected 2 records, got %d", len(enriched))
	}

	// Piastri: 10M + 284*10k + 12*50k + 7*100k, and he leads on price.
	leader := enriched[0]
	if leader.Driver.ID != 1 {
		t.Fatalf("expected driver 1 first by current price, got %d", leader.Driver.ID)
	}
	if leader.Driver.FullName() != "Oscar Piastri" {
		t.Fatalf("expected driver metadata joined in, got %q", leader.Driver.FullName())
	}
	if leader.Stats.CurrentPrice != 14_140_000 {
		t.Fatalf("expected current price 14140000, got %d", leader.Stats.CurrentPrice)
	}
	if leader.Stats.LegacyDisplayPrice != 1_414_000 {
		t.Fatalf("expected legacy display price 1414000, got %d", leader.Stats.LegacyDisplayPrice)
	}
	// 284 of the 25*15 + 8*3 = 399 points on offer so far.
	if want := float64(284) / 399; leader.Stats.Availability != want {
		t.Fatalf("expected availability %v, got %v", want, leader.Stats.Availability)
	}
	if leader.IsFreeAgent || leader.OwnerID == nil || *leader.OwnerID != 1 {
		t.Fatalf("expected ownership flags carried over, got %+v", leader)
	}

	tail := enriched[1]
	if tail.Driver.ID != 20 || !tail.IsFreeAgent {
		t.Fatalf("expected free driver 20 last, got %+v", tail)
	}
	if tail.Stats.CurrentPrice != 10_000_000 {
		t.Fatalf("expected floor price for a pointless driver, got %d", tail.Stats.CurrentPrice)
	}
}

func TestOwnershipService_ListTransactions(t *testing.T) {
	f := newMarketFixture(t)
	f.seedOwnedDriver(t, 10, 1, 0, nil, false)
	f.seedOwnedDriver(t, 11, 1, 0, nil, false)
	f.seedRoster(t, 1, 50_000_000, ptrInt64(10), ptrInt64(11), nil, nil)
	f.seedFreeDriver(t, 19, 10_000_000)
	f.seedFreeDriver(t, 20, 10_000_000)

	for _, driverID := range []int64{20, 19} {
		if _, err := f.market.BuyFromMarket(t.Context(), BuyFromMarketInput{
			DriverID: driverID,
			BuyerID:  1,
			LeagueID: testLeagueID,
		}); err != nil {
			t.Fatalf("buy driver %d: %v", driverID, err)
		}
	}

	transactions, err := f.ownerships.ListTransactions(t.Context(), testLeagueID, 10)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(transactions))
	}
	if transactions[0].DriverID != 19 || transactions[1].DriverID != 20 {
		t.Fatalf("expected newest first, got %+v", transactions)
	}

	mine, err := f.ownerships.ListUserTransactions(t.Context(), 1, testLeagueID, 10)
	if err != nil {
		t.Fatalf("list user transactions failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 entries for the buyer, got %d", len(mine))
	}

	theirs, err := f.ownerships.ListUserTransactions(t.Context(), 2, testLeagueID, 10)
	if err != nil {
		t.Fatalf("list user transactions failed: %v", err)
	}
	if len(theirs) != 0 {
		t.Fatalf("expected no entries for a bystander, got %d", len(theirs))
	}
}

func TestOwnershipService_ListOwnerships_InvalidInput(t *testing.T) {
	f := newMarketFixture(t)

	if _, err := f.ownerships.ListOwnerships(t.Context(), ListOwnershipsInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input without a league id, got %v", err)
	}
	if _, err := f.ownerships.ListOwnerships(t.Context(), ListOwnershipsInput{LeagueID: testLeagueID, Filter: FilterOwnedBy}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input without a user id, got %v", err)
	}
}
