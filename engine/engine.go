package engine

import (
	"context"

	"collector/experiments/metrics"
)

// Runner plays episodes.
type Runner interface {
	// Run plays one episode from a reset with seed until every agent is done
	// or a max number of steps is reached
	Run(ctx context.Context, seed uint64) (metrics.EpisodeMetric, []metrics.StepMetric, error)
}
