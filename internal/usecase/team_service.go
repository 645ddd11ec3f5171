package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/davidriba/f1-fantasy-league/internal/domain/driver"
	"github.com/davidriba/f1-fantasy-league/internal/domain/market"
	"github.com/davidriba/f1-fantasy-league/internal/domain/user"
	idgen "github.com/davidriba/f1-fantasy-league/internal/platform/id"
)

// StarterPack is the outcome of team initialization on league join.
type StarterPack struct {
	TeamID          int64
	TeamName        string
	AssignedDrivers []int64
	ConstructorID   int64
	BudgetRemaining int64
}

// TeamService manages the per-user roster lifecycle: the starter pack on
// join and reserve swaps afterwards.
type TeamService struct {
	uow        market.UnitOfWork
	results    ResultsProvider
	driverRepo driver.Repository
	userRepo   user.Repository
	rules      market.Rules
	idGen      idgen.Generator
	rng        *rand.Rand
	logger     *slog.Logger
	now        func() time.Time
}

func NewTeamService(
	uow market.UnitOfWork,
	results ResultsProvider,
	driverRepo driver.Repository,
	userRepo user.Repository,
	rules market.Rules,
	idGen idgen.Generator,
	rng *rand.Rand,
	logger *slog.Logger,
) *TeamService {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &TeamService{
		uow:        uow,
		results:    results,
		driverRepo: driverRepo,
		userRepo:   userRepo,
		rules:      rules,
		idGen:      idGen,
		rng:        rng,
		logger:     logger,
		now:        time.Now,
	}
}

// InitializeOnJoinInput creates a starter team for a user entering a league.
// TeamName is optional; when empty a name is derived from the user.
type InitializeOnJoinInput struct {
	UserID   int64
	LeagueID int64
	TeamName string
}

func (s *TeamService) InitializeOnJoin(ctx context.Context, input InitializeOnJoinInput) (StarterPack, error) {
	ctx, span := startUsecaseSpan(ctx, "TeamService.InitializeOnJoin")
	defer span.End()

	input.TeamName = strings.TrimSpace(input.TeamName)
	if input.UserID <= 0 || input.LeagueID <= 0 {
		return StarterPack{}, fmt.Errorf("%w: user and league ids are required", ErrInvalidInput)
	}

	teamName := input.TeamName
	if teamName == "" {
		teamName = s.defaultTeamName(ctx, input.UserID)
	}

	stats, err := s.results.GetSeasonStats(ctx, s.rules.SeasonYear)
	if err != nil {
		return StarterPack{}, fmt.Errorf("%w: get season stats: %v", ErrDependencyUnavailable, err)
	}

	var pack StarterPack
	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos market.Repositories) error {
		now := s.now().UTC()

		_, exists, err := repos.Rosters().GetActive(ctx, input.UserID, input.LeagueID)
		if err != nil {
			return fmt.Errorf("get existing roster: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: user %d already has an active team in league %d", ErrConflict, input.UserID, input.LeagueID)
		}

		free, err := repos.Ownerships().ListFree(ctx, input.LeagueID)
		if err != nil {
			return fmt.Errorf("list free agents: %w", err)
		}
		pool := make([]market.DriverPoints, 0, len(free))
		freeByDriver := make(map[int64]market.Ownership, len(free))
		for _, o := range free {
			pool = append(pool, market.DriverPoints{
				DriverID: o.DriverID,
				Points:   stats.ByDriver[o.DriverID].Points,
			})
			freeByDriver[o.DriverID] = o
		}

		assigned, err := market.SampleStarterPack(s.rng, pool, s.rules.MinLineupDrivers)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}

		constructorID, err := s.defaultConstructor(ctx, assigned)
		if err != nil {
			return err
		}

		roster := market.Roster{
			UserID:          input.UserID,
			LeagueID:        input.LeagueID,
			TeamName:        teamName,
			ConstructorID:   constructorID,
			BudgetRemaining: s.rules.InitialBudget,
			IsActive:        true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		slots := []market.RosterSlot{market.SlotDriver1, market.SlotDriver2, market.SlotDriver3}
		for i, driverID := range assigned {
			driverID := driverID
			if err := roster.SetSlot(slots[i], &driverID); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
		}
		if err := roster.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		teamID, err := repos.Rosters().Create(ctx, roster)
		if err != nil {
			return fmt.Errorf("create roster: %w", err)
		}

		// Starter drivers are granted at zero cost with no lock window,
		// each grant leaving an emergency_assignment row in the log.
		for _, driverID := range assigned {
			ownership := freeByDriver[driverID]
			ownership.Transfer(input.UserID, 0, nil, now)
			if err := repos.Ownerships().Update(ctx, ownership); err != nil {
				return conflictOnStale(err, "assign starter driver")
			}

			tx, err := s.newGrantTransaction(driverID, input.LeagueID, input.UserID, now)
			if err != nil {
				return err
			}
			if err := repos.Transactions().Append(ctx, tx); err != nil {
				return fmt.Errorf("append starter grant transaction: %w", err)
			}
		}

		pack = StarterPack{
			TeamID:          teamID,
			TeamName:        teamName,
			AssignedDrivers: assigned,
			ConstructorID:   constructorID,
			BudgetRemaining: s.rules.InitialBudget,
		}

		return nil
	})
	if err != nil {
		return StarterPack{}, err
	}

	s.logger.InfoContext(ctx, "starter team initialized",
		slog.Int64("user_id", input.UserID),
		slog.Int64("league_id", input.LeagueID),
		slog.Int64("team_id", pack.TeamID),
		slog.Any("assigned_drivers", pack.AssignedDrivers),
	)

	return pack, nil
}

// SwapReserveInput promotes a lineup driver to reserve and vice versa.
type SwapReserveInput struct {
	UserID   int64
	LeagueID int64
	DriverID int64
}

// SwapReserve exchanges the given lineup driver with the current reserve.
// An empty reserve slot is a precondition failure, not a silent vacate.
func (s *TeamService) SwapReserve(ctx context.Context, input SwapReserveInput) (market.Roster, error) {
	ctx, span := startUsecaseSpan(ctx, "TeamService.SwapReserve")
	defer span.End()

	if input.UserID <= 0 || input.LeagueID <= 0 || input.DriverID <= 0 {
		return market.Roster{}, fmt.Errorf("%w: user, league and driver ids are required", ErrInvalidInput)
	}

	var updated market.Roster
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos market.Repositories) error {
		now := s.now().UTC()

		roster, found, err := repos.Rosters().GetActive(ctx, input.UserID, input.LeagueID)
		if err != nil {
			return fmt.Errorf("get roster: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: user %d has no active team in league %d", ErrNotFound, input.UserID, input.LeagueID)
		}

		slot := roster.SlotOf(input.DriverID)
		if slot == market.SlotNone {
			return fmt.Errorf("%w: driver %d is not on the team", ErrNotFound, input.DriverID)
		}
		if slot == market.SlotReserve {
			return fmt.Errorf("%w: driver %d is already the reserve", ErrConflict, input.DriverID)
		}
		if roster.ReserveDriverID == nil {
			return fmt.Errorf("%w: no reserve driver to swap with", ErrConflict)
		}

		promoted := *roster.ReserveDriverID
		demoted := input.DriverID
		if err := roster.SetSlot(slot, &promoted); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		roster.ReserveDriverID = &demoted
		roster.UpdatedAt = now

		if err := repos.Rosters().Update(ctx, roster); err != nil {
			return fmt.Errorf("update roster: %w", err)
		}

		updated = roster
		return nil
	})
	if err != nil {
		return market.Roster{}, err
	}

	return updated, nil
}

// GetMyTeam returns the caller's active roster in the league.
func (s *TeamService) GetMyTeam(ctx context.Context, userID, leagueID int64) (market.Roster, error) {
	ctx, span := startUsecaseSpan(ctx, "TeamService.GetMyTeam")
	defer span.End()

	if userID <= 0 || leagueID <= 0 {
		return market.Roster{}, fmt.Errorf("%w: user and league ids are required", ErrInvalidInput)
	}

	var roster market.Roster
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos market.Repositories) error {
		found := false
		var err error
		roster, found, err = repos.Rosters().GetActive(ctx, userID, leagueID)
		if err != nil {
			return fmt.Errorf("get roster: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: user %d has no active team in league %d", ErrNotFound, userID, leagueID)
		}
		return nil
	})
	if err != nil {
		return market.Roster{}, err
	}

	return roster, nil
}

// defaultTeamName derives "Team <username>" when the caller did not pick a
// name, falling back to the numeric id when the user lookup fails.
func (s *TeamService) defaultTeamName(ctx context.Context, userID int64) string {
	users, err := s.userRepo.GetByIDs(ctx, []int64{userID})
	if err == nil && len(users) == 1 && users[0].UserName != "" {
		return "Team " + users[0].UserName
	}
	return fmt.Sprintf("Team %d", userID)
}

// newGrantTransaction records a zero-cost starter grant in the audit log.
func (s *TeamService) newGrantTransaction(driverID, leagueID, userID int64, now time.Time) (market.Transaction, error) {
	reference, err := s.idGen.NewID()
	if err != nil {
		return market.Transaction{}, fmt.Errorf("generate transaction reference: %w", err)
	}

	tx := market.Transaction{
		Reference:  reference,
		DriverID:   driverID,
		LeagueID:   leagueID,
		BuyerID:    userID,
		Price:      0,
		Type:       market.TransactionEmergencyAssignment,
		OccurredAt: now,
	}
	if err := tx.Validate(); err != nil {
		return market.Transaction{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return tx, nil
}

// defaultConstructor picks the constructor of the first starter driver.
func (s *TeamService) defaultConstructor(ctx context.Context, assigned []int64) (int64, error) {
	drivers, err := s.driverRepo.GetByIDs(ctx, assigned)
	if err != nil {
		return 0, fmt.Errorf("%w: get assigned drivers: %v", ErrDependencyUnavailable, err)
	}
	byID := make(map[int64]driver.Driver, len(drivers))
	for _, d := range drivers {
		byID[d.ID] = d
	}
	for _, id := range assigned {
		if d, ok := byID[id]; ok && d.ConstructorID > 0 {
			return d.ConstructorID, nil
		}
	}
	return 0, fmt.Errorf("%w: no constructor found for assigned drivers", ErrNotFound)
}
