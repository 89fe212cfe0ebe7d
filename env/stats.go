package env

// CollectorStats are the collection counters of one collector.
type CollectorStats struct {
	TotalPointsCollected  int
	UniquePointsCollected int
	Cheated               int
}

// Stats summarises an episode so far.
type Stats struct {
	Iteration             int
	Agents                []CollectorStats // Indexed by agent
	TotalPointsCollected  int
	UniquePointsCollected int
	Cheated               int
	Points                int
	TotalReward           float64
}

func (e *Env) Stats() Stats {
	stats := Stats{
		Iteration: e.iteration,
		Agents:    make([]CollectorStats, len(e.collectors)),
		Points:    len(e.points),
	}
	for i, c := range e.collectors {
		stats.Agents[i] = CollectorStats{
			TotalPointsCollected:  c.TotalPointsCollected,
			UniquePointsCollected: c.UniquePointsCollected,
			Cheated:               c.CheatedCount,
		}
		stats.TotalPointsCollected += c.TotalPointsCollected
		stats.UniquePointsCollected += c.UniquePointsCollected
		stats.Cheated += c.CheatedCount
	}
	for _, r := range e.records {
		stats.TotalReward += r.CumulativeReward
	}
	return stats
}
