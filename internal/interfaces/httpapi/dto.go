package httpapi

import (
	"time"

	"github.com/davidriba/f1-fantasy-league/internal/domain/market"
	"github.com/davidriba/f1-fantasy-league/internal/usecase"
)

type listForSaleRequest struct {
	AskingPrice *int64 `json:"asking_price" validate:"omitempty,gt=0"`
}

type buyFromUserRequest struct {
	SellerID int64 `json:"seller_id" validate:"required,gt=0"`
}

type buyoutRequest struct {
	VictimID int64 `json:"victim_id" validate:"required,gt=0"`
}

type initializeTeamRequest struct {
	TeamName string `json:"team_name" validate:"omitempty,max=100"`
}

type swapReserveRequest struct {
	DriverID int64 `json:"driver_id" validate:"required,gt=0"`
}

type initializeOwnershipRequest struct {
	SeasonYear int `json:"season_year" validate:"omitempty,gte=1950"`
}

type seasonResultsDTO struct {
	Points          int64 `json:"points"`
	Poles           int   `json:"poles"`
	Podiums         int   `json:"podiums"`
	FastestLaps     int   `json:"fastest_laps"`
	Victories       int   `json:"victories"`
	SprintPodiums   int   `json:"sprint_podiums"`
	SprintVictories int   `json:"sprint_victories"`
	SprintPoles     int   `json:"sprint_poles"`
}

type fantasyStatsDTO struct {
	CurrentPrice       int64   `json:"current_price"`
	LegacyDisplayPrice int64   `json:"legacy_display_price"`
	PointsPerMillion   float64 `json:"points_per_million"`
	PointsShare        float64 `json:"points_share"`
	Availability       float64 `json:"availability"`
}

type enrichedDriverDTO struct {
	ID            int64            `json:"id"`
	Code          string           `json:"code"`
	FullName      string           `json:"full_name"`
	CountryCode   string           `json:"country_code"`
	ConstructorID int64            `json:"constructor_id"`
	Results       seasonResultsDTO `json:"results"`
	Stats         fantasyStatsDTO  `json:"stats"`
	OwnerID       *int64           `json:"owner_id,omitempty"`
	IsFreeAgent   bool             `json:"is_free_agent"`
	IsListed      bool             `json:"is_listed_for_sale"`
	Price         int64            `json:"price"`
	LockedUntil   *time.Time       `json:"locked_until,omitempty"`
}

func enrichedDriverToDTO(item usecase.EnrichedDriver) enrichedDriverDTO {
	return enrichedDriverDTO{
		ID:            item.Driver.ID,
		Code:          item.Driver.Code,
		FullName:      item.Driver.FullName(),
		CountryCode:   item.Driver.CountryCode,
		ConstructorID: item.Driver.ConstructorID,
		Results: seasonResultsDTO{
			Points:          item.Results.Points,
			Poles:           item.Results.Poles,
			Podiums:         item.Results.Podiums,
			FastestLaps:     item.Results.FastestLaps,
			Victories:       item.Results.Victories,
			SprintPodiums:   item.Results.SprintPodiums,
			SprintVictories: item.Results.SprintVictories,
			SprintPoles:     item.Results.SprintPoles,
		},
		Stats: fantasyStatsDTO{
			CurrentPrice:       item.Stats.CurrentPrice,
			LegacyDisplayPrice: item.Stats.LegacyDisplayPrice,
			PointsPerMillion:   item.Stats.PointsPerMillion,
			PointsShare:        item.Stats.PointsShare,
			Availability:       item.Stats.Availability,
		},
		OwnerID:     item.OwnerID,
		IsFreeAgent: item.IsFreeAgent,
		IsListed:    item.IsListed,
		Price:       item.Price,
		LockedUntil: item.LockedUntil,
	}
}

type ownershipDTO struct {
	DriverID         int64      `json:"driver_id"`
	LeagueID         int64      `json:"league_id"`
	OwnerID          *int64     `json:"owner_id,omitempty"`
	IsListedForSale  bool       `json:"is_listed_for_sale"`
	AcquisitionPrice int64      `json:"acquisition_price"`
	LockedUntil      *time.Time `json:"locked_until,omitempty"`
}

func ownershipToDTO(item market.Ownership) ownershipDTO {
	return ownershipDTO{
		DriverID:         item.DriverID,
		LeagueID:         item.LeagueID,
		OwnerID:          item.OwnerID,
		IsListedForSale:  item.IsListedForSale,
		AcquisitionPrice: item.AcquisitionPrice,
		LockedUntil:      item.LockedUntil,
	}
}

type transactionDTO struct {
	ID         int64     `json:"id"`
	Reference  string    `json:"reference"`
	DriverID   int64     `json:"driver_id"`
	LeagueID   int64     `json:"league_id"`
	SellerID   *int64    `json:"seller_id,omitempty"`
	BuyerID    int64     `json:"buyer_id"`
	Price      int64     `json:"price"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
}

func transactionToDTO(item market.Transaction) transactionDTO {
	return transactionDTO{
		ID:         item.ID,
		Reference:  item.Reference,
		DriverID:   item.DriverID,
		LeagueID:   item.LeagueID,
		SellerID:   item.SellerID,
		BuyerID:    item.BuyerID,
		Price:      item.Price,
		Type:       string(item.Type),
		OccurredAt: item.OccurredAt,
	}
}

type replacementDTO struct {
	Slot     string `json:"slot"`
	DriverID int64  `json:"driver_id"`
	Source   string `json:"source"`
}

type tradeResultDTO struct {
	DriverID     int64           `json:"driver_id"`
	LeagueID     int64           `json:"league_id"`
	Price        int64           `json:"price"`
	BuyerBudget  int64           `json:"buyer_budget"`
	SellerBudget *int64          `json:"seller_budget,omitempty"`
	LockedUntil  *time.Time      `json:"locked_until,omitempty"`
	Transaction  transactionDTO  `json:"transaction"`
	Replacement  *replacementDTO `json:"replacement,omitempty"`
}

func tradeResultToDTO(result usecase.TradeResult) tradeResultDTO {
	dto := tradeResultDTO{
		DriverID:     result.DriverID,
		LeagueID:     result.LeagueID,
		Price:        result.Price,
		BuyerBudget:  result.BuyerBudget,
		SellerBudget: result.SellerBudget,
		LockedUntil:  result.LockedUntil,
		Transaction:  transactionToDTO(result.Transaction),
	}
	if result.Replacement != nil {
		dto.Replacement = &replacementDTO{
			Slot:     result.Replacement.Slot.String(),
			DriverID: result.Replacement.DriverID,
			Source:   result.Replacement.Source,
		}
	}
	return dto
}

type rosterDTO struct {
	ID              int64  `json:"id"`
	UserID          int64  `json:"user_id"`
	LeagueID        int64  `json:"league_id"`
	TeamName        string `json:"team_name"`
	Driver1ID       *int64 `json:"driver_1_id,omitempty"`
	Driver2ID       *int64 `json:"driver_2_id,omitempty"`
	Driver3ID       *int64 `json:"driver_3_id,omitempty"`
	ReserveDriverID *int64 `json:"reserve_driver_id,omitempty"`
	ConstructorID   int64  `json:"constructor_id"`
	TotalPoints     int64  `json:"total_points"`
	BudgetRemaining int64  `json:"budget_remaining"`
}

func rosterToDTO(item market.Roster) rosterDTO {
	return rosterDTO{
		ID:              item.ID,
		UserID:          item.UserID,
		LeagueID:        item.LeagueID,
		TeamName:        item.TeamName,
		Driver1ID:       item.Driver1ID,
		Driver2ID:       item.Driver2ID,
		Driver3ID:       item.Driver3ID,
		ReserveDriverID: item.ReserveDriverID,
		ConstructorID:   item.ConstructorID,
		TotalPoints:     item.TotalPoints,
		BudgetRemaining: item.BudgetRemaining,
	}
}

type starterPackDTO struct {
	TeamID          int64   `json:"team_id"`
	TeamName        string  `json:"team_name"`
	AssignedDrivers []int64 `json:"assigned_drivers"`
	ConstructorID   int64   `json:"constructor_id"`
	BudgetRemaining int64   `json:"budget_remaining"`
}

func starterPackToDTO(pack usecase.StarterPack) starterPackDTO {
	return starterPackDTO{
		TeamID:          pack.TeamID,
		TeamName:        pack.TeamName,
		AssignedDrivers: pack.AssignedDrivers,
		ConstructorID:   pack.ConstructorID,
		BudgetRemaining: pack.BudgetRemaining,
	}
}
