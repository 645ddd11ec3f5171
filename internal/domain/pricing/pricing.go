package pricing

import "fmt"

// DriverStats holds the season statistics a driver is priced from.
// Sprint sessions never count toward Podiums or Victories; Points is the
// season total from the results feed, sprints included.
type DriverStats struct {
	Points    int64
	Podiums   int
	Victories int
}

func (s DriverStats) Validate() error {
	if s.Points < 0 {
		return fmt.Errorf("points cannot be negative")
	}
	if s.Podiums < 0 {
		return fmt.Errorf("podiums cannot be negative")
	}
	if s.Victories < 0 {
		return fmt.Errorf("victories cannot be negative")
	}

	return nil
}

// Formula holds the per-component coefficients of the market price formula.
type Formula struct {
	BasePrice        int64
	PointsMultiplier int64
	PodiumBonus      int64
	VictoryBonus     int64
}

// DefaultFormula prices ownership initialization and every trade.
// A driver with no recorded results prices at BasePrice.
func DefaultFormula() Formula {
	return Formula{
		BasePrice:        10_000_000,
		PointsMultiplier: 10_000,
		PodiumBonus:      50_000,
		VictoryBonus:     100_000,
	}
}

// LegacyDisplayFormula is the older, lower-precision formula some display
// surfaces still show. It must never be used to initialize ownership rows
// or to settle trades.
func LegacyDisplayFormula() Formula {
	return Formula{
		BasePrice:        1_000_000,
		PointsMultiplier: 1_000,
		PodiumBonus:      5_000,
		VictoryBonus:     10_000,
	}
}

// Price is pure and deterministic: identical stats always produce the same
// integer price, with no rounding involved.
func (f Formula) Price(stats DriverStats) int64 {
	return f.BasePrice +
		stats.Points*f.PointsMultiplier +
		int64(stats.Podiums)*f.PodiumBonus +
		int64(stats.Victories)*f.VictoryBonus
}
