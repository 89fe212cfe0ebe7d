// Package agent contains drivers that pick actions for collectors.
package agent

import "collector/env"

type Agent interface {
	// FindAction returns the next action of id given its observation.
	// env.NoAction means the agent wants to stay put.
	FindAction(id env.AgentID, obs env.Observation) env.Action
}

// Kind names a driver on the command line and in scenario files.
type Kind string

const (
	KindRandom Kind = "random"
	KindGreedy Kind = "greedy"
)

// New creates a driver of the given kind for environment e.
func New(kind Kind, e *env.Env) (Agent, bool) {
	switch kind {
	case KindRandom:
		return NewRandom(e), true
	case KindGreedy:
		return NewGreedy(e.Topology()), true
	default:
		return nil, false
	}
}
