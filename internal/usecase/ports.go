package usecase

import (
	"context"

	"github.com/davidriba/f1-fantasy-league/internal/domain/pricing"
)

// ResultsProvider feeds real season results into pricing and enrichment.
// Implementations map transport failures to ErrDependencyUnavailable.
type ResultsProvider interface {
	GetSeasonStats(ctx context.Context, seasonYear int) (pricing.SeasonStats, error)
	ListActiveDrivers(ctx context.Context, seasonYear int) ([]int64, error)
}
