// Package experiments runs batches of episodes and stores their metrics.
package experiments

import (
	"context"
	"fmt"

	"collector/agent"
	"collector/engine"
	"collector/env"
	"collector/experiments/metrics"

	"github.com/rs/zerolog/log"
)

// Batch describes a run of consecutive episodes on one environment.
type Batch struct {
	Name     string
	Driver   agent.Kind
	Episodes int
	Seed     uint64 // Episode i is reset with Seed+i
	MaxSteps int
}

type Results struct {
	Episodes []metrics.EpisodeRecord
	Steps    []metrics.StepRecord
}

// Run plays every episode of batch on e.
func Run(ctx context.Context, e *env.Env, batch Batch) (Results, error) {
	agents := make([]agent.Agent, len(e.PossibleAgents()))
	for i := range agents {
		a, ok := agent.New(batch.Driver, e)
		if !ok {
			return Results{}, fmt.Errorf("unknown driver %q", batch.Driver)
		}
		agents[i] = a
	}
	eng, err := engine.LocalEngine(e, agents, engine.WithMaxSteps(batch.MaxSteps), engine.WithCollector(metrics.NewCollector()))
	if err != nil {
		return Results{}, fmt.Errorf("failed to create engine: %w", err)
	}

	log.Info().Msgf("starting %s batch of %d episodes...", batch.Name, batch.Episodes)

	results := Results{}
	for i := 0; i < batch.Episodes; i++ {
		seed := batch.Seed + uint64(i)
		log.Info().Msgf("starting episode %d of %d with seed %d...", i+1, batch.Episodes, seed)

		episode, steps, err := eng.Run(ctx, seed)
		if err != nil {
			return results, fmt.Errorf("episode %d: %w", i+1, err)
		}
		id := i + 1
		results.Episodes = append(results.Episodes, metrics.EpisodeRecord{
			ID:            id,
			Driver:        string(batch.Driver),
			EpisodeMetric: episode,
		})
		for _, step := range steps {
			results.Steps = append(results.Steps, metrics.StepRecord{
				Episode:    id,
				StepMetric: step,
			})
		}

		log.Info().Msgf("completed episode %d of %d with reward %.2f", id, batch.Episodes, episode.TotalReward)
	}
	log.Info().Msgf("completed %s batch", batch.Name)
	return results, nil
}

// Store writes results into a new timestamped directory under root and
// returns that directory.
func Store(root string, results Results) (string, error) {
	writer, err := metrics.NewWriter(root)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteEpisodeRecords(results.Episodes); err != nil {
		return "", fmt.Errorf("failed to write episode records: %w", err)
	}
	log.Info().Msg("stored episode records")

	if err := writer.WriteStepRecords(results.Steps); err != nil {
		return "", fmt.Errorf("failed to write step records: %w", err)
	}
	log.Info().Msg("stored step records")
	return writer.Dir(), nil
}
