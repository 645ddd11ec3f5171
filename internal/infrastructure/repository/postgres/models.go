package postgres

import (
	"database/sql"
	"time"

	"github.com/davidriba/f1-fantasy-league/internal/domain/driver"
	"github.com/davidriba/f1-fantasy-league/internal/domain/market"
	"github.com/davidriba/f1-fantasy-league/internal/domain/user"
)

type driverTableModel struct {
	ID            int64      `db:"id"`
	Code          string     `db:"code"`
	FirstName     string     `db:"first_name"`
	LastName      string     `db:"last_name"`
	CountryCode   string     `db:"country_code"`
	ConstructorID int64      `db:"constructor_id"`
	SeasonYear    int        `db:"season_year"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}

func (m driverTableModel) toDomain() driver.Driver {
	return driver.Driver{
		ID:            m.ID,
		Code:          m.Code,
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		CountryCode:   m.CountryCode,
		ConstructorID: m.ConstructorID,
	}
}

type userTableModel struct {
	ID         int64  `db:"id"`
	ExternalID string `db:"external_id"`
	UserName   string `db:"user_name"`
}

func (m userTableModel) toDomain() user.User {
	return user.User{
		ID:         m.ID,
		ExternalID: m.ExternalID,
		UserName:   m.UserName,
	}
}

type ownershipTableModel struct {
	DriverID         int64         `db:"driver_id"`
	LeagueID         int64         `db:"league_id"`
	OwnerID          sql.NullInt64 `db:"owner_id"`
	IsListedForSale  bool          `db:"is_listed_for_sale"`
	AcquisitionPrice int64         `db:"acquisition_price"`
	LockedUntil      *time.Time    `db:"locked_until"`
	Version          int64         `db:"version"`
	CreatedAt        time.Time     `db:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at"`
}

func (m ownershipTableModel) toDomain() market.Ownership {
	o := market.Ownership{
		DriverID:         m.DriverID,
		LeagueID:         m.LeagueID,
		IsListedForSale:  m.IsListedForSale,
		AcquisitionPrice: m.AcquisitionPrice,
		LockedUntil:      m.LockedUntil,
		Version:          m.Version,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.OwnerID.Valid {
		ownerID := m.OwnerID.Int64
		o.OwnerID = &ownerID
	}
	return o
}

func ownershipArgs(o market.Ownership) map[string]any {
	var ownerID any
	if o.OwnerID != nil {
		ownerID = *o.OwnerID
	}
	return map[string]any{
		"driver_id":          o.DriverID,
		"league_id":          o.LeagueID,
		"owner_id":           ownerID,
		"is_listed_for_sale": o.IsListedForSale,
		"acquisition_price":  o.AcquisitionPrice,
		"locked_until":       o.LockedUntil,
		"version":            o.Version,
		"created_at":         o.CreatedAt,
		"updated_at":         o.UpdatedAt,
	}
}

type rosterTableModel struct {
	ID              int64         `db:"id"`
	UserID          int64         `db:"user_id"`
	LeagueID        int64         `db:"league_id"`
	TeamName        string        `db:"team_name"`
	Driver1ID       sql.NullInt64 `db:"driver_1_id"`
	Driver2ID       sql.NullInt64 `db:"driver_2_id"`
	Driver3ID       sql.NullInt64 `db:"driver_3_id"`
	ReserveDriverID sql.NullInt64 `db:"reserve_driver_id"`
	ConstructorID   int64         `db:"constructor_id"`
	TotalPoints     int64         `db:"total_points"`
	BudgetRemaining int64         `db:"budget_remaining"`
	IsActive        bool          `db:"is_active"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

func nullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

func nullableArg(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func (m rosterTableModel) toDomain() market.Roster {
	return market.Roster{
		ID:              m.ID,
		UserID:          m.UserID,
		LeagueID:        m.LeagueID,
		TeamName:        m.TeamName,
		Driver1ID:       nullableID(m.Driver1ID),
		Driver2ID:       nullableID(m.Driver2ID),
		Driver3ID:       nullableID(m.Driver3ID),
		ReserveDriverID: nullableID(m.ReserveDriverID),
		ConstructorID:   m.ConstructorID,
		TotalPoints:     m.TotalPoints,
		BudgetRemaining: m.BudgetRemaining,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func rosterArgs(r market.Roster) map[string]any {
	return map[string]any{
		"id":                r.ID,
		"user_id":           r.UserID,
		"league_id":         r.LeagueID,
		"team_name":         r.TeamName,
		"driver_1_id":       nullableArg(r.Driver1ID),
		"driver_2_id":       nullableArg(r.Driver2ID),
		"driver_3_id":       nullableArg(r.Driver3ID),
		"reserve_driver_id": nullableArg(r.ReserveDriverID),
		"constructor_id":    r.ConstructorID,
		"total_points":      r.TotalPoints,
		"budget_remaining":  r.BudgetRemaining,
		"is_active":         r.IsActive,
		"created_at":        r.CreatedAt,
		"updated_at":        r.UpdatedAt,
	}
}

type transactionTableModel struct {
	ID         int64         `db:"id"`
	Reference  string        `db:"reference"`
	DriverID   int64         `db:"driver_id"`
	LeagueID   int64         `db:"league_id"`
	SellerID   sql.NullInt64 `db:"seller_id"`
	BuyerID    int64         `db:"buyer_id"`
	Price      int64         `db:"price"`
	Type       string        `db:"transaction_type"`
	OccurredAt time.Time     `db:"occurred_at"`
}

func (m transactionTableModel) toDomain() market.Transaction {
	return market.Transaction{
		ID:         m.ID,
		Reference:  m.Reference,
		DriverID:   m.DriverID,
		LeagueID:   m.LeagueID,
		SellerID:   nullableID(m.SellerID),
		BuyerID:    m.BuyerID,
		Price:      m.Price,
		Type:       market.TransactionType(m.Type),
		OccurredAt: m.OccurredAt,
	}
}

type buyoutTableModel struct {
	ID          int64     `db:"id"`
	LeagueID    int64     `db:"league_id"`
	BuyerID     int64     `db:"buyer_id"`
	VictimID    int64     `db:"victim_id"`
	DriverID    int64     `db:"driver_id"`
	BuyoutPrice int64     `db:"buyout_price"`
	SeasonYear  int       `db:"season_year"`
	OccurredAt  time.Time `db:"occurred_at"`
}

func (m buyoutTableModel) toDomain() market.BuyoutRecord {
	return market.BuyoutRecord{
		ID:          m.ID,
		LeagueID:    m.LeagueID,
		BuyerID:     m.BuyerID,
		VictimID:    m.VictimID,
		DriverID:    m.DriverID,
		BuyoutPrice: m.BuyoutPrice,
		SeasonYear:  m.SeasonYear,
		OccurredAt:  m.OccurredAt,
	}
}
