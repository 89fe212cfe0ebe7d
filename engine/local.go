package engine

import (
	"context"

	"collector/agent"
	"collector/env"
	"collector/experiments/metrics"
	"collector/meta"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Option func(e *Engine)

// WithMaxSteps truncates every agent still acting after n steps.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

func WithCollector(c metrics.Collector) Option {
	return func(e *Engine) {
		e.collector = c
	}
}

// Engine drives an environment in-process, one agent per collector.
type Engine struct {
	env       *env.Env
	agents    []agent.Agent
	maxSteps  int
	collector metrics.Collector
}

var _ Runner = (*Engine)(nil)

func LocalEngine(e *env.Env, agents []agent.Agent, options ...Option) (*Engine, error) {
	if e == nil {
		return nil, errors.Wrap(env.ErrInvalidConfig, "environment is nil")
	}
	if len(agents) != len(e.PossibleAgents()) {
		return nil, errors.Wrapf(env.ErrInvalidConfig, "%d agents for %d collectors", len(agents), len(e.PossibleAgents()))
	}
	eng := &Engine{
		env:       e,
		agents:    agents,
		maxSteps:  meta.MAX_STEPS,
		collector: metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(eng)
	}
	return eng, nil
}

func (e *Engine) Env() *env.Env {
	return e.env
}

// Run executes the episode loop until every agent is done or none is left.
func (e *Engine) Run(ctx context.Context, seed uint64) (metrics.EpisodeMetric, []metrics.StepMetric, error) {
	e.env.Reset(seed)
	e.collector.Start(e.env.Episode(), seed)
	log.Info().Str("episode", e.env.Episode()).Uint64("seed", seed).Msg("episode started")

	for !e.env.Terminated() && !e.env.Truncated() {
		if err := ctx.Err(); err != nil {
			return metrics.EpisodeMetric{}, nil, err
		}
		id, ok := e.env.AgentSelection()
		if !ok {
			break
		}

		if e.env.Done(id) {
			if err := e.env.Step(env.NoAction); err != nil {
				return metrics.EpisodeMetric{}, nil, err
			}
			e.collector.AddStep(metrics.StepMetric{Agent: int(id), Action: int(env.NoAction), Dead: true})
			continue
		}

		if e.env.Iteration() >= e.maxSteps {
			e.truncate()
			continue
		}

		action, err := e.act(id)
		if err != nil {
			return metrics.EpisodeMetric{}, nil, err
		}
		if action == nil {
			continue
		}
		c, err := e.env.Collector(id)
		if err != nil {
			return metrics.EpisodeMetric{}, nil, err
		}
		e.collector.AddStep(metrics.StepMetric{
			Step:      e.env.Iteration(),
			Agent:     int(id),
			Action:    int(*action),
			Reward:    e.env.Rewards()[id],
			Collected: c.TotalPointsCollected,
			Cheated:   c.CheatedCount,
		})
	}

	stats := e.env.Stats()
	summary := metrics.Summary{
		Terminated:            e.env.Terminated(),
		Truncated:             e.env.Truncated(),
		Steps:                 stats.Iteration,
		TotalPointsCollected:  stats.TotalPointsCollected,
		UniquePointsCollected: stats.UniquePointsCollected,
		Cheated:               stats.Cheated,
		TotalReward:           stats.TotalReward,
	}
	log.Info().
		Str("episode", e.env.Episode()).
		Int("steps", summary.Steps).
		Bool("terminated", summary.Terminated).
		Bool("truncated", summary.Truncated).
		Float64("reward", summary.TotalReward).
		Msg("episode completed")

	episode, steps := e.collector.Complete(summary)
	return episode, steps, nil
}

// act asks the agent for an action and steps with it. An invalid action
// falls back to a sampled legal one, and an agent without any legal action
// is truncated. It returns the action taken, or nil when none was.
func (e *Engine) act(id env.AgentID) (*env.Action, error) {
	obs, err := e.env.Observe(id)
	if err != nil {
		return nil, err
	}
	action := e.agents[id].FindAction(id, obs)
	err = e.env.Step(action)
	if err == nil {
		return &action, nil
	}
	if !errors.Is(err, env.ErrInvalidAction) {
		return nil, err
	}

	log.Warn().Err(err).Stringer("agent", id).Msg("agent chose an invalid action, sampling a legal one")
	fallback, ok, err := e.env.SampleAction(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := e.env.Truncate(id); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err := e.env.Step(fallback); err != nil {
		return nil, err
	}
	return &fallback, nil
}

func (e *Engine) truncate() {
	log.Info().Str("episode", e.env.Episode()).Int("steps", e.env.Iteration()).Msg("max steps reached, truncating")
	for _, id := range e.env.Agents() {
		if !e.env.Done(id) {
			// Truncate only fails for unknown agents
			_ = e.env.Truncate(id)
		}
	}
}
