package market

import (
	"fmt"
	"time"
)

// BuyoutRecord is one executed buyout clause, kept append-only so the
// per-season cap between an ordered (buyer, victim) pair can be counted.
type BuyoutRecord struct {
	ID          int64
	LeagueID    int64
	BuyerID     int64
	VictimID    int64
	DriverID    int64
	BuyoutPrice int64
	SeasonYear  int
	OccurredAt  time.Time
}

func (b BuyoutRecord) Validate() error {
	if b.LeagueID <= 0 {
		return fmt.Errorf("league id is required")
	}
	if b.BuyerID <= 0 || b.VictimID <= 0 {
		return fmt.Errorf("buyer and victim ids are required")
	}
	if b.BuyerID == b.VictimID {
		return fmt.Errorf("buyer and victim cannot be the same user")
	}
	if b.DriverID <= 0 {
		return fmt.Errorf("driver id is required")
	}
	if b.BuyoutPrice < 0 {
		return fmt.Errorf("buyout price cannot be negative")
	}

	return nil
}
