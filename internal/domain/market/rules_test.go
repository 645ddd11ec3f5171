package market

import (
	"testing"
	"time"
)

func TestDefaultRulesValid(t *testing.T) {
	rules := DefaultRules(2025)
	if err := rules.Validate(); err != nil {
		t.Fatalf("default rules invalid: %v", err)
	}
	if rules.LockAfterPurchase != 7*24*time.Hour {
		t.Fatalf("unexpected lock duration: %s", rules.LockAfterPurchase)
	}
}

func TestRulesValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Rules)
	}{
		{"multiplier below one", func(r *Rules) { r.BuyoutMultiplier = 0.9 }},
		{"refund over one", func(r *Rules) { r.SellRefundRate = 1.5 }},
		{"zero lock", func(r *Rules) { r.LockAfterPurchase = 0 }},
		{"zero buyout cap", func(r *Rules) { r.MaxBuyoutsPerPairPerSeason = 0 }},
		{"max drivers equals lineup", func(r *Rules) { r.MaxDriversPerUser = r.MinLineupDrivers }},
		{"zero budget", func(r *Rules) { r.InitialBudget = 0 }},
		{"ancient season", func(r *Rules) { r.SeasonYear = 1901 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := DefaultRules(2025)
			tt.mutate(&rules)
			if err := rules.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestBuyoutPriceAndRefund(t *testing.T) {
	rules := DefaultRules(2025)

	if got, want := rules.BuyoutPrice(10_000_000), int64(13_000_000); got != want {
		t.Fatalf("buyout price = %d, want %d", got, want)
	}
	if got, want := rules.SellRefund(10_000_000), int64(8_000_000); got != want {
		t.Fatalf("sell refund = %d, want %d", got, want)
	}
}

func TestOwnershipStateHelpers(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	owner := int64(11)
	lock := now.Add(time.Hour)

	free := Ownership{DriverID: 1, LeagueID: 1, AcquisitionPrice: 10_000_000}
	if !free.IsFreeAgent() {
		t.Fatal("expected free agent")
	}
	if err := free.Validate(); err != nil {
		t.Fatalf("free agent invalid: %v", err)
	}

	owned := Ownership{DriverID: 1, LeagueID: 1, OwnerID: &owner, AcquisitionPrice: 10_000_000, LockedUntil: &lock}
	if !owned.IsOwnedBy(owner) {
		t.Fatal("expected ownership by user 11")
	}
	if !owned.IsLockedAt(now) {
		t.Fatal("expected driver locked before lock expiry")
	}
	if owned.IsLockedAt(lock.Add(time.Second)) {
		t.Fatal("expected driver unlocked after expiry")
	}

	listedFree := Ownership{DriverID: 1, LeagueID: 1, IsListedForSale: true}
	if err := listedFree.Validate(); err == nil {
		t.Fatal("free agent listed for sale must be invalid")
	}
	lockedFree := Ownership{DriverID: 1, LeagueID: 1, LockedUntil: &lock}
	if err := lockedFree.Validate(); err == nil {
		t.Fatal("locked free agent must be invalid")
	}
}

func TestRosterSlots(t *testing.T) {
	d1, d2, d3, reserve := int64(1), int64(2), int64(3), int64(4)
	roster := Roster{
		ID: 1, UserID: 10, LeagueID: 5, TeamName: "Team 10",
		Driver1ID: &d1, Driver2ID: &d2, Driver3ID: &d3, ReserveDriverID: &reserve,
		BudgetRemaining: 100, IsActive: true,
	}

	if err := roster.Validate(); err != nil {
		t.Fatalf("roster invalid: %v", err)
	}
	if got := roster.SlotOf(d2); got != SlotDriver2 {
		t.Fatalf("slot of d2 = %s", got)
	}
	if got := roster.SlotOf(99); got != SlotNone {
		t.Fatalf("slot of unknown driver = %s", got)
	}

	if slot := roster.RemoveDriver(reserve); slot != SlotReserve {
		t.Fatalf("removed from %s, want reserve", slot)
	}
	if roster.ReserveDriverID != nil {
		t.Fatal("reserve slot not vacated")
	}

	dup := roster
	dup.ReserveDriverID = &d1
	if err := dup.Validate(); err == nil {
		t.Fatal("duplicate driver across slots must be invalid")
	}
}
