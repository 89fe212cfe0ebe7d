package env

import "fmt"

// AgentID identifies an agent by its index in the initial placement list.
type AgentID int

func (a AgentID) String() string {
	return fmt.Sprintf("agent_%d", int(a))
}

// Action names the destination node of a move (the point index in the plane
// variant).
type Action int

// NoAction is an explicit "do nothing". It is a zero reward no-op for graph
// topologies and an invalid action for the plane.
const NoAction Action = -1

// AgentRecord holds the per-agent bookkeeping of an episode.
type AgentRecord struct {
	Reward           float64 // Reward of the agent's last step
	CumulativeReward float64 // Sum of all rewards in the episode
	Terminated       bool
	Truncated        bool
}

// Done reports whether the agent can no longer act.
func (r AgentRecord) Done() bool {
	return r.Terminated || r.Truncated
}
