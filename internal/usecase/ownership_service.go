package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/davidriba/f1-fantasy-league/internal/domain/driver"
	"github.com/davidriba/f1-fantasy-league/internal/domain/market"
	"github.com/davidriba/f1-fantasy-league/internal/domain/pricing"
	"github.com/davidriba/f1-fantasy-league/internal/platform/cache"
)

// FantasyStats is the derived display block attached to an enriched driver.
type FantasyStats struct {
	CurrentPrice       int64
	LegacyDisplayPrice int64
	PointsPerMillion   float64
	PointsShare        float64
	// Availability is the share of the theoretical maximum points the
	// driver has actually scored this season.
	Availability float64
}

// EnrichedDriver is the single catalog record every ownership listing
// returns: driver identity, season results, fantasy stats, and market state.
type EnrichedDriver struct {
	Driver      driver.Driver
	Results     pricing.SeasonResults
	Stats       FantasyStats
	OwnerID     *int64
	IsFreeAgent bool
	IsListed    bool
	Price       int64
	LockedUntil *time.Time
}

// OwnershipFilter selects which slice of a league's market a listing covers.
type OwnershipFilter int

const (
	FilterAll OwnershipFilter = iota
	FilterFree
	FilterForSale
	FilterOwnedBy
)

// OwnershipService serves read-only market views. Season stats are cached
// with a TTL since the upstream results feed only changes between rounds.
type OwnershipService struct {
	uow        market.UnitOfWork
	driverRepo driver.Repository
	results    ResultsProvider
	formula    pricing.Formula
	display    pricing.Formula
	rules      market.Rules
	statsCache *cache.Store
	logger     *slog.Logger
	now        func() time.Time
}

func NewOwnershipService(
	uow market.UnitOfWork,
	driverRepo driver.Repository,
	results ResultsProvider,
	formula pricing.Formula,
	rules market.Rules,
	statsCache *cache.Store,
	logger *slog.Logger,
) *OwnershipService {
	if logger == nil {
		logger = slog.Default()
	}

	return &OwnershipService{
		uow:        uow,
		driverRepo: driverRepo,
		results:    results,
		formula:    formula,
		display:    pricing.LegacyDisplayFormula(),
		rules:      rules,
		statsCache: statsCache,
		logger:     logger,
		now:        time.Now,
	}
}

// ListOwnershipsInput selects a market slice. UserID is only consulted for
// FilterOwnedBy.
type ListOwnershipsInput struct {
	LeagueID int64
	Filter   OwnershipFilter
	UserID   int64
}

// ListOwnerships returns the requested slice of the league market as
// enriched catalog records, ordered by current price descending.
func (s *OwnershipService) ListOwnerships(ctx context.Context, input ListOwnershipsInput) ([]EnrichedDriver, error) {
	ctx, span := startUsecaseSpan(ctx, "OwnershipService.ListOwnerships")
	defer span.End()

	if input.LeagueID <= 0 {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if input.Filter == FilterOwnedBy && input.UserID <= 0 {
		return nil, fmt.Errorf("%w: user id is required for owned-by listings", ErrInvalidInput)
	}

	var ownerships []market.Ownership
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos market.Repositories) error {
		var err error
		switch input.Filter {
		case FilterFree:
			ownerships, err = repos.Ownerships().ListFree(ctx, input.LeagueID)
		case FilterForSale:
			ownerships, err = repos.Ownerships().ListForSale(ctx, input.LeagueID)
		case FilterOwnedBy:
			ownerships, err = repos.Ownerships().ListOwnedBy(ctx, input.UserID, input.LeagueID)
		default:
			ownerships, err = repos.Ownerships().ListAll(ctx, input.LeagueID)
		}
		if err != nil {
			return fmt.Errorf("list ownerships: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.enrich(ctx, ownerships)
}

// ListTransactions returns the league's trade log, newest first.
func (s *OwnershipService) ListTransactions(ctx context.Context, leagueID int64, limit int) ([]market.Transaction, error) {
	ctx, span := startUsecaseSpan(ctx, "OwnershipService.ListTransactions")
	defer span.End()

	if leagueID <= 0 {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 100
	}

	var transactions []market.Transaction
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos market.Repositories) error {
		var err error
		transactions, err = repos.Transactions().ListByLeague(ctx, leagueID, limit)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

// ListUserTransactions returns one user's trade log in a league, newest
// first.
func (s *OwnershipService) ListUserTransactions(ctx context.Context, userID, leagueID int64, limit int) ([]market.Transaction, error) {
	ctx, span := startUsecaseSpan(ctx, "OwnershipService.ListUserTransactions")
	defer span.End()

	if userID <= 0 || leagueID <= 0 {
		return nil, fmt.Errorf("%w: user and league ids are required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 100
	}

	var transactions []market.Transaction
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos market.Repositories) error {
		var err error
		transactions, err = repos.Transactions().ListByUser(ctx, userID, leagueID, limit)
		if err != nil {
			return fmt.Errorf("list user transactions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

// enrich joins ownership rows with driver metadata and cached season stats.
// The two upstream fetches are independent, so they run in parallel.
func (s *OwnershipService) enrich(ctx context.Context, ownerships []market.Ownership) ([]EnrichedDriver, error) {
	if len(ownerships) == 0 {
		return []EnrichedDriver{}, nil
	}

	driverIDs := make([]int64, 0, len(ownerships))
	for _, o := range ownerships {
		driverIDs = append(driverIDs, o.DriverID)
	}

	var (
		drivers []driver.Driver
		stats   pricing.SeasonStats
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		var err error
		drivers, err = s.driverRepo.GetByIDs(ctx, driverIDs)
		if err != nil {
			return fmt.Errorf("get drivers: %w", err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		var err error
		stats, err = s.seasonStats(ctx)
		if err != nil {
			return fmt.Errorf("get season stats: %w", err)
		}
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	byID := make(map[int64]driver.Driver, len(drivers))
	for _, d := range drivers {
		byID[d.ID] = d
	}

	var leaderPoints int64
	for _, r := range stats.ByDriver {
		if r.Points > leaderPoints {
			leaderPoints = r.Points
		}
	}
	if leaderPoints <= 0 {
		leaderPoints = 1
	}
	availablePoints := stats.AvailablePoints()

	enriched := make([]EnrichedDriver, 0, len(ownerships))
	for _, o := range ownerships {
		d, ok := byID[o.DriverID]
		if !ok {
			s.logger.WarnContext(ctx, "ownership row references unknown driver",
				slog.Int64("driver_id", o.DriverID),
				slog.Int64("league_id", o.LeagueID),
			)
			continue
		}

		results := stats.ByDriver[o.DriverID]
		currentPrice := s.formula.Price(results.PricingStats())

		var pointsPerMillion float64
		if currentPrice > 0 {
			pointsPerMillion = float64(results.Points) / (float64(currentPrice) / 1_000_000)
		}
		var availability float64
		if availablePoints > 0 {
			availability = float64(results.Points) / float64(availablePoints)
		}

		enriched = append(enriched, EnrichedDriver{
			Driver:  d,
			Results: results,
			Stats: FantasyStats{
				CurrentPrice:       currentPrice,
				LegacyDisplayPrice: s.display.Price(results.PricingStats()),
				PointsPerMillion:   pointsPerMillion,
				PointsShare:        float64(results.Points) / float64(leaderPoints),
				Availability:       availability,
			},
			OwnerID:     o.OwnerID,
			IsFreeAgent: o.IsFreeAgent(),
			IsListed:    o.IsListedForSale,
			Price:       o.AcquisitionPrice,
			LockedUntil: o.LockedUntil,
		})
	}

	sort.Slice(enriched, func(i, j int) bool {
		if enriched[i].Stats.CurrentPrice != enriched[j].Stats.CurrentPrice {
			return enriched[i].Stats.CurrentPrice > enriched[j].Stats.CurrentPrice
		}
		return enriched[i].Driver.ID < enriched[j].Driver.ID
	})

	return enriched, nil
}

func (s *OwnershipService) seasonStats(ctx context.Context) (pricing.SeasonStats, error) {
	if s.statsCache == nil {
		return s.results.GetSeasonStats(ctx, s.rules.SeasonYear)
	}

	key := fmt.Sprintf("season-stats:%d", s.rules.SeasonYear)
	value, err := s.statsCache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return s.results.GetSeasonStats(ctx, s.rules.SeasonYear)
	})
	if err != nil {
		return pricing.SeasonStats{}, err
	}

	stats, ok := value.(pricing.SeasonStats)
	if !ok {
		return pricing.SeasonStats{}, fmt.Errorf("unexpected cached value for %s", key)
	}

	return stats, nil
}
