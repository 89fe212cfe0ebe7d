package agent

import (
	"collector/env"
	"collector/world"
)

// Greedy heads for the closest point nobody has collected yet. Once every
// point is taken it settles for the closest point of any kind.
type Greedy struct {
	topology world.Topology
}

func NewGreedy(topology world.Topology) *Greedy {
	return &Greedy{topology: topology}
}

func (g *Greedy) FindAction(id env.AgentID, obs env.Observation) env.Action {
	if int(id) < 0 || int(id) >= len(obs.CollectorLabels) {
		return env.NoAction
	}
	if plane, ok := g.topology.(*world.Plane); ok {
		return g.onPlane(plane, obs.CollectorPositions[id], obs)
	}
	return g.onGraph(obs.CollectorLabels[id], obs)
}

func (g *Greedy) onPlane(plane *world.Plane, from world.Vec2, obs env.Observation) env.Action {
	// Point indices are the point labels on the plane
	if point, ok := plane.Nearest(from, func(point int) bool { return obs.Collected[point] == 0 }); ok {
		return env.Action(point)
	}
	if point, ok := plane.Nearest(from, nil); ok {
		return env.Action(point)
	}
	return env.NoAction
}

func (g *Greedy) onGraph(from int, obs env.Observation) env.Action {
	uncollected := make(map[int]bool, len(obs.PointLabels))
	points := make(map[int]bool, len(obs.PointLabels))
	for i, label := range obs.PointLabels {
		points[label] = true
		if obs.Collected[i] == 0 {
			uncollected[label] = true
		}
	}
	selfLoop := g.topology.HasEdge(from, from)

	if uncollected[from] && selfLoop {
		return env.Action(from)
	}
	if hop, _, ok := world.NextHop(g.topology, from, func(node int) bool { return uncollected[node] }); ok {
		return env.Action(hop)
	}
	if points[from] && selfLoop {
		return env.Action(from)
	}
	if hop, _, ok := world.NextHop(g.topology, from, func(node int) bool { return points[node] }); ok {
		return env.Action(hop)
	}
	return env.NoAction
}
