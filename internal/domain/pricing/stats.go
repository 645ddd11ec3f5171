package pricing

// SeasonResults is the full per-driver result line from the results feed,
// a superset of what the pricing formula consumes.
type SeasonResults struct {
	Points          int64
	Poles           int
	Podiums         int
	FastestLaps     int
	Victories       int
	SprintPodiums   int
	SprintVictories int
	SprintPoles     int
}

// PricingStats narrows a result line to the pricing inputs. Sprint podiums
// and victories are deliberately excluded from the tallies.
func (r SeasonResults) PricingStats() DriverStats {
	return DriverStats{
		Points:    r.Points,
		Podiums:   r.Podiums,
		Victories: r.Victories,
	}
}

// SeasonStats is the season snapshot keyed by driver id, taken at the most
// recently completed round.
type SeasonStats struct {
	SeasonYear      int
	CompletedRounds int
	SprintRounds    int
	ByDriver        map[int64]SeasonResults
}

// AvailablePoints is the theoretical maximum a driver could have scored so
// far, used by the enrichment display stats.
func (s SeasonStats) AvailablePoints() int64 {
	return int64(25*s.CompletedRounds + 8*s.SprintRounds)
}
