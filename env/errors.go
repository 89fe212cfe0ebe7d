package env

import (
	"collector/world"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidAction is returned for an action outside the acting agent's action space.
	ErrInvalidAction = errors.New("invalid action")
	// ErrEdgeNotFound is returned when a reward is requested for a missing edge.
	ErrEdgeNotFound = world.ErrEdgeNotFound
	// ErrNotReset is returned when the environment is used before Reset.
	ErrNotReset = errors.New("environment has not been reset, call Reset first")
	// ErrInvalidConfig is returned by the constructors for unusable configurations.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrUnknownAgent is returned for agent identifiers the environment never created.
	ErrUnknownAgent = errors.New("unknown agent")
)
