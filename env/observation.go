package env

import "collector/world"

// Observation is a snapshot of the environment. It never aliases internal
// state, so callers may modify it freely.
type Observation struct {
	PointLabels        []int        // Node labels of the points
	PointPositions     []world.Vec2 // Positions of the points
	Collected          []int        // Times each point has been collected
	CollectorLabels    []int        // Node labels of the collectors, indexed by agent
	CollectorPositions []world.Vec2 // Positions of the collectors, indexed by agent
	Graph              [][]float64  // Weighted adjacency matrix, graph topologies only
	ActionMask         []int8       // Legal actions of the observing agent, graph topologies only
}

func (e *Env) snapshot() Observation {
	obs := Observation{
		PointLabels:        make([]int, len(e.points)),
		PointPositions:     make([]world.Vec2, len(e.points)),
		Collected:          make([]int, len(e.points)),
		CollectorLabels:    make([]int, len(e.collectors)),
		CollectorPositions: make([]world.Vec2, len(e.collectors)),
	}
	for i, p := range e.points {
		obs.PointLabels[i] = p.Label
		obs.PointPositions[i] = p.Position
		obs.Collected[i] = p.CollectCount()
	}
	for i, c := range e.collectors {
		obs.CollectorLabels[i] = c.Label
		obs.CollectorPositions[i] = c.Position
	}
	if weighted, ok := e.topology.(world.Weighted); ok {
		obs.Graph = e.adjacency(weighted)
	}
	return obs
}

func (e *Env) adjacency(weighted world.Weighted) [][]float64 {
	if !e.staticGraph {
		return weighted.Adjacency()
	}
	if e.cachedAdjacency == nil {
		e.cachedAdjacency = weighted.Adjacency()
	}
	matrix := make([][]float64, len(e.cachedAdjacency))
	for i, row := range e.cachedAdjacency {
		matrix[i] = append([]float64(nil), row...)
	}
	return matrix
}

// Observe returns what agent currently observes. Observations are identical
// for all agents apart from the action mask.
func (e *Env) Observe(agent AgentID) (Observation, error) {
	if !e.hasReset {
		return Observation{}, ErrNotReset
	}
	if !e.known(agent) {
		return Observation{}, ErrUnknownAgent
	}
	obs := e.snapshot()
	if _, ok := e.topology.(world.Weighted); ok {
		obs.ActionMask = e.ActionMask(agent)
	}
	return obs, nil
}

// State returns the global view of the environment.
func (e *Env) State() (Observation, error) {
	if !e.hasReset {
		return Observation{}, ErrNotReset
	}
	return e.snapshot(), nil
}

// ActionMask returns the legal actions of agent, recomputed from the current
// topology on every call.
func (e *Env) ActionMask(agent AgentID) []int8 {
	if !e.hasReset || !e.known(agent) {
		return nil
	}
	return world.ActionMask(e.topology, e.collectors[agent].Label)
}
