package market

import (
	"fmt"
	"time"
)

// RosterSlot identifies where a driver sits in a user's team.
type RosterSlot int

const (
	SlotNone RosterSlot = iota
	SlotDriver1
	SlotDriver2
	SlotDriver3
	SlotReserve
)

func (s RosterSlot) String() string {
	switch s {
	case SlotDriver1:
		return "driver_1"
	case SlotDriver2:
		return "driver_2"
	case SlotDriver3:
		return "driver_3"
	case SlotReserve:
		return "reserve"
	default:
		return "none"
	}
}

// Roster is a user's team within one league: three lineup slots, an
// optional reserve, a constructor, and the remaining transfer budget.
// At most one active roster exists per (user, league).
type Roster struct {
	ID              int64
	UserID          int64
	LeagueID        int64
	TeamName        string
	Driver1ID       *int64
	Driver2ID       *int64
	Driver3ID       *int64
	ReserveDriverID *int64
	ConstructorID   int64
	TotalPoints     int64
	BudgetRemaining int64
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (r Roster) Validate() error {
	if r.UserID <= 0 {
		return fmt.Errorf("user id is required")
	}
	if r.LeagueID <= 0 {
		return fmt.Errorf("league id is required")
	}
	if r.TeamName == "" {
		return fmt.Errorf("team name is required")
	}
	if r.BudgetRemaining < 0 {
		return fmt.Errorf("budget cannot be negative")
	}

	seen := make(map[int64]struct{}, 4)
	for _, id := range []*int64{r.Driver1ID, r.Driver2ID, r.Driver3ID, r.ReserveDriverID} {
		if id == nil {
			continue
		}
		if _, dup := seen[*id]; dup {
			return fmt.Errorf("driver %d occupies more than one slot", *id)
		}
		seen[*id] = struct{}{}
	}

	return nil
}

// SlotOf reports which slot driverID occupies, or SlotNone.
func (r Roster) SlotOf(driverID int64) RosterSlot {
	switch {
	case r.Driver1ID != nil && *r.Driver1ID == driverID:
		return SlotDriver1
	case r.Driver2ID != nil && *r.Driver2ID == driverID:
		return SlotDriver2
	case r.Driver3ID != nil && *r.Driver3ID == driverID:
		return SlotDriver3
	case r.ReserveDriverID != nil && *r.ReserveDriverID == driverID:
		return SlotReserve
	default:
		return SlotNone
	}
}

// SetSlot places driverID (or nil to vacate) into the given slot.
func (r *Roster) SetSlot(slot RosterSlot, driverID *int64) error {
	switch slot {
	case SlotDriver1:
		r.Driver1ID = driverID
	case SlotDriver2:
		r.Driver2ID = driverID
	case SlotDriver3:
		r.Driver3ID = driverID
	case SlotReserve:
		r.ReserveDriverID = driverID
	default:
		return fmt.Errorf("cannot assign slot %q", slot)
	}

	return nil
}

// RemoveDriver vacates whichever slot driverID occupies, returning the slot.
func (r *Roster) RemoveDriver(driverID int64) RosterSlot {
	slot := r.SlotOf(driverID)
	if slot != SlotNone {
		_ = r.SetSlot(slot, nil)
	}
	return slot
}
