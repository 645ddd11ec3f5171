package market

import (
	"fmt"
	"math/rand"
	"sort"
)

// Tier buckets drivers by season points relative to the leader.
type Tier string

const (
	TierA Tier = "A" // >= 70% of the leader's points
	TierB Tier = "B" // 40-69%
	TierC Tier = "C" // < 40%
)

// DriverPoints pairs a driver with their season points total.
type DriverPoints struct {
	DriverID int64
	Points   int64
}

// TierTable holds the classification of a driver pool.
type TierTable struct {
	A []int64
	B []int64
	C []int64
}

// LowTier returns tier C then tier B driver ids, the preferred pool for
// starter packs and emergency assignments.
func (t TierTable) LowTier() []int64 {
	out := make([]int64, 0, len(t.C)+len(t.B))
	out = append(out, t.C...)
	out = append(out, t.B...)
	return out
}

// ClassifyTiers buckets drivers by their percentage of the leader's points.
// Ordering is explicit (points descending, driver id ascending on ties) so
// classification is deterministic for a given pool.
func ClassifyTiers(pool []DriverPoints) TierTable {
	if len(pool) == 0 {
		return TierTable{}
	}

	sorted := append([]DriverPoints(nil), pool...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Points != sorted[j].Points {
			return sorted[i].Points > sorted[j].Points
		}
		return sorted[i].DriverID < sorted[j].DriverID
	})

	leaderPoints := sorted[0].Points
	if leaderPoints <= 0 {
		leaderPoints = 1
	}

	var table TierTable
	for _, dp := range sorted {
		percentage := float64(dp.Points) * 100 / float64(leaderPoints)
		switch {
		case percentage >= 70:
			table.A = append(table.A, dp.DriverID)
		case percentage >= 40:
			table.B = append(table.B, dp.DriverID)
		default:
			table.C = append(table.C, dp.DriverID)
		}
	}

	return table
}

// PickEmergencyDriver draws one driver to backfill a vacated roster slot,
// preferring tier C, then tier B, then anyone free.
func PickEmergencyDriver(rng *rand.Rand, pool []DriverPoints) (int64, error) {
	if len(pool) == 0 {
		return 0, fmt.Errorf("no free drivers available")
	}

	table := ClassifyTiers(pool)
	candidates := table.C
	if len(candidates) == 0 {
		candidates = table.B
	}
	if len(candidates) == 0 {
		candidates = table.A
	}

	return candidates[rng.Intn(len(candidates))], nil
}

// SampleStarterPack draws n distinct drivers for a new team, preferring the
// low tiers and falling back to the whole pool when those run short. The
// random source is injected so tests can seed it.
func SampleStarterPack(rng *rand.Rand, pool []DriverPoints, n int) ([]int64, error) {
	if len(pool) < n {
		return nil, fmt.Errorf("need %d free drivers, only %d available", n, len(pool))
	}

	candidates := ClassifyTiers(pool).LowTier()
	if len(candidates) < n {
		candidates = make([]int64, 0, len(pool))
		for _, dp := range pool {
			candidates = append(candidates, dp.DriverID)
		}
	}

	picked := make([]int64, 0, n)
	perm := rng.Perm(len(candidates))
	for _, idx := range perm[:n] {
		picked = append(picked, candidates[idx])
	}

	return picked, nil
}
