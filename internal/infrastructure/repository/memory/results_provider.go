package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/davidriba/f1-fantasy-league/internal/domain/pricing"
)

// StaticResultsProvider serves a fixed season snapshot, used in local mode
// and in tests instead of the live results API.
type StaticResultsProvider struct {
	mu    sync.RWMutex
	stats pricing.SeasonStats
}

func NewStaticResultsProvider(stats pricing.SeasonStats) *StaticResultsProvider {
	return &StaticResultsProvider{stats: stats}
}

func (p *StaticResultsProvider) GetSeasonStats(_ context.Context, _ int) (pricing.SeasonStats, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	cp := p.stats
	cp.ByDriver = make(map[int64]pricing.SeasonResults, len(p.stats.ByDriver))
	for id, r := range p.stats.ByDriver {
		cp.ByDriver[id] = r
	}

	return cp, nil
}

func (p *StaticResultsProvider) ListActiveDrivers(_ context.Context, _ int) ([]int64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]int64, 0, len(p.stats.ByDriver))
	for id := range p.stats.ByDriver {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

// SetStats swaps the snapshot, used by tests that move the season forward.
func (p *StaticResultsProvider) SetStats(stats pricing.SeasonStats) {
	p.mu.Lock()
	p.stats = stats
	p.mu.Unlock()
}

// SeedSeasonStats returns a 2025 mid-season snapshot matching SeedDrivers.
func SeedSeasonStats() pricing.SeasonStats {
	return pricing.SeasonStats{
		SeasonYear:      2025,
		CompletedRounds: 15,
		SprintRounds:    3,
		ByDriver: map[int64]pricing.SeasonResults{
			1:  {Points: 284, Poles: 4, Podiums: 12, Victories: 7},
			2:  {Points: 275, Poles: 5, Podiums: 11, Victories: 5},
			3:  {Points: 187, Poles: 4, Podiums: 6, Victories: 2},
			4:  {Points: 172, Poles: 1, Podiums: 5, Victories: 1},
			5:  {Points: 151, Poles: 1, Podiums: 5},
			6:  {Points: 109, Podiums: 1},
			7:  {Points: 64, Podiums: 1},
			8:  {Points: 54},
			9:  {Points: 37, Podiums: 1},
			10: {Points: 27},
			11: {Points: 26},
			12: {Points: 26},
			13: {Points: 22},
			14: {Points: 20},
			15: {Points: 16},
			16: {Points: 20},
			17: {Points: 10},
			18: {Points: 8},
			19: {Points: 14},
			20: {Points: 0},
		},
	}
}
