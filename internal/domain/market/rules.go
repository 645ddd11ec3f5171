package market

import (
	"fmt"
	"time"
)

// Rules stores the market parameters every trade operation is validated
// against. A league always plays under one Rules value for a whole season.
type Rules struct {
	BuyoutMultiplier           float64
	SellRefundRate             float64
	LockAfterPurchase          time.Duration
	MaxBuyoutsPerPairPerSeason int
	MaxDriversPerUser          int
	MinLineupDrivers           int
	InitialBudget              int64
	SeasonYear                 int
}

func DefaultRules(seasonYear int) Rules {
	return Rules{
		BuyoutMultiplier:           1.3,
		SellRefundRate:             0.8,
		LockAfterPurchase:          7 * 24 * time.Hour,
		MaxBuyoutsPerPairPerSeason: 2,
		MaxDriversPerUser:          4,
		MinLineupDrivers:           3,
		InitialBudget:              100_000_000,
		SeasonYear:                 seasonYear,
	}
}

func (r Rules) Validate() error {
	if r.BuyoutMultiplier <= 1 {
		return fmt.Errorf("buyout multiplier must be greater than 1")
	}
	if r.SellRefundRate <= 0 || r.SellRefundRate > 1 {
		return fmt.Errorf("sell refund rate must be in (0, 1]")
	}
	if r.LockAfterPurchase <= 0 {
		return fmt.Errorf("lock duration must be positive")
	}
	if r.MaxBuyoutsPerPairPerSeason < 1 {
		return fmt.Errorf("max buyouts per pair must be at least 1")
	}
	if r.MaxDriversPerUser <= r.MinLineupDrivers {
		return fmt.Errorf("max drivers per user must exceed the minimum lineup size")
	}
	if r.MinLineupDrivers < 1 {
		return fmt.Errorf("minimum lineup size must be at least 1")
	}
	if r.InitialBudget <= 0 {
		return fmt.Errorf("initial budget must be positive")
	}
	if r.SeasonYear < 1950 {
		return fmt.Errorf("season year %d predates the championship", r.SeasonYear)
	}

	return nil
}

// BuyoutPrice is the forced-purchase price for a driver currently held at
// acquisitionPrice. Truncated to an integer, matching trade settlement.
func (r Rules) BuyoutPrice(acquisitionPrice int64) int64 {
	return int64(float64(acquisitionPrice) * r.BuyoutMultiplier)
}

// SellRefund is the quick-sell payout for a driver held at acquisitionPrice.
func (r Rules) SellRefund(acquisitionPrice int64) int64 {
	return int64(float64(acquisitionPrice) * r.SellRefundRate)
}
