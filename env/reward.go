package env

import (
	"collector/entity"
	"collector/world"
)

// CostModel turns a move into a (negated) cost.
type CostModel struct {
	CheatCost         float64 // Cost of being caught collecting an already collected point
	CaughtProbability float64 // Probability of being caught
}

// ExpectedCheatingCost is the expected penalty for re-collecting point.
func (m CostModel) ExpectedCheatingCost(point *entity.Point) float64 {
	return m.CheatCost * m.CaughtProbability
}

// Reward returns the negated cost of moving collector to target. point is
// the point located at target, or nil. It must be called before the point
// is collected by this move.
func (m CostModel) Reward(topology world.Topology, collector *entity.Collector, target int, point *entity.Point) (float64, error) {
	cost, err := topology.EdgeCost(collector.Label, target)
	if err != nil {
		return 0, err
	}
	if point != nil && point.IsCollected() {
		cost += m.ExpectedCheatingCost(point)
	}
	// Cost based model: rewards are never positive
	return -cost, nil
}
