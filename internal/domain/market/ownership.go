package market

import (
	"fmt"
	"time"
)

// Ownership is the per-league market state of one driver: who holds them,
// at what price, whether they are listed, and until when they are locked.
// Exactly one row exists per (driver, league) for the league's lifetime.
//
// The row is the serialization point for every trade touching the driver:
// Version is bumped on each mutation and persistence layers reject stale
// writes, so of two racing operations only one can commit.
type Ownership struct {
	DriverID         int64
	LeagueID         int64
	OwnerID          *int64
	IsListedForSale  bool
	AcquisitionPrice int64
	LockedUntil      *time.Time
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (o Ownership) IsFreeAgent() bool {
	return o.OwnerID == nil
}

func (o Ownership) IsOwnedBy(userID int64) bool {
	return o.OwnerID != nil && *o.OwnerID == userID
}

// IsLockedAt reports whether the post-acquisition lock is still running.
func (o Ownership) IsLockedAt(now time.Time) bool {
	return o.LockedUntil != nil && o.LockedUntil.After(now)
}

// Validate enforces the free-agent invariant: a driver without an owner can
// be neither listed nor locked.
func (o Ownership) Validate() error {
	if o.DriverID <= 0 {
		return fmt.Errorf("driver id is required")
	}
	if o.LeagueID <= 0 {
		return fmt.Errorf("league id is required")
	}
	if o.AcquisitionPrice < 0 {
		return fmt.Errorf("acquisition price cannot be negative")
	}
	if o.OwnerID == nil {
		if o.IsListedForSale {
			return fmt.Errorf("free agent cannot be listed for sale")
		}
		if o.LockedUntil != nil {
			return fmt.Errorf("free agent cannot be locked")
		}
	}

	return nil
}

// Transfer hands the driver to a new owner at the given price and starts a
// fresh lock window. The sale listing is always cleared.
func (o *Ownership) Transfer(newOwnerID int64, price int64, lockUntil *time.Time, now time.Time) {
	o.OwnerID = &newOwnerID
	o.AcquisitionPrice = price
	o.IsListedForSale = false
	o.LockedUntil = lockUntil
	o.UpdatedAt = now
}

// Release returns the driver to the free-agent pool, clearing listing and
// lock state. The acquisition price is kept as the next asking price.
func (o *Ownership) Release(now time.Time) {
	o.OwnerID = nil
	o.IsListedForSale = false
	o.LockedUntil = nil
	o.UpdatedAt = now
}
