package agent

import (
	"collector/env"

	"github.com/rs/zerolog/log"
)

// Random picks a uniformly random legal action from the environment's seeded
// random source, so runs are reproducible per reset seed.
type Random struct {
	env *env.Env
}

func NewRandom(e *env.Env) *Random {
	return &Random{env: e}
}

func (r *Random) FindAction(id env.AgentID, _ env.Observation) env.Action {
	action, ok, err := r.env.SampleAction(id)
	if err != nil {
		log.Warn().Err(err).Stringer("agent", id).Msg("failed to sample action")
		return env.NoAction
	}
	if !ok {
		return env.NoAction
	}
	return action
}
