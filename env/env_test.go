package env

import (
	"testing"

	"collector/world"

	"github.com/stretchr/testify/require"
)

// lineGraph builds 0 -2- 1 -3- 2, optionally with a self loop on node 2.
func lineGraph(t *testing.T, selfLoop bool) *world.Graph {
	t.Helper()
	g := world.NewGraph(3, false)
	require.NoError(t, g.SetEdge(0, 1, 2))
	require.NoError(t, g.SetEdge(1, 2, 3))
	if selfLoop {
		require.NoError(t, g.SetEdge(2, 2, 1))
	}
	return g
}

func newGraphEnv(t *testing.T, g *world.Graph, cfg Config, options ...Option) *Env {
	t.Helper()
	e, err := NewGraphEnv(g, cfg, options...)
	require.NoError(t, err)
	e.Reset(1)
	return e
}

func selected(t *testing.T, e *Env) AgentID {
	t.Helper()
	agent, ok := e.AgentSelection()
	require.True(t, ok, "An agent should be selected")
	return agent
}

func TestGraphScenario(t *testing.T) {
	t.Run("single agent walks to the point", func(t *testing.T) {
		e := newGraphEnv(t, lineGraph(t, false), Config{
			PointLabels: []int{2},
			AgentLabels: []int{0},
			MaxCollect:  []int{1},
		})

		require.NoError(t, e.Step(1))
		record, err := e.Record(0)
		require.NoError(t, err)
		require.Equal(t, -2.0, record.Reward)
		require.False(t, record.Terminated)
		c, err := e.Collector(0)
		require.NoError(t, err)
		require.Equal(t, 1, c.Label)

		require.NoError(t, e.Step(2))
		record, err = e.Record(0)
		require.NoError(t, err)
		require.Equal(t, -3.0, record.Reward)
		require.Equal(t, -5.0, record.CumulativeReward)
		require.True(t, record.Terminated, "Budget of one point is reached")
		c, err = e.Collector(0)
		require.NoError(t, err)
		require.Equal(t, 1, c.UniquePointsCollected)
		require.Zero(t, c.CheatedCount)
		require.Equal(t, []int{0, 1, 2}, c.Path)
		require.True(t, e.Terminated(), "Every agent is terminated")
		require.False(t, e.Truncated())

		state, err := e.State()
		require.NoError(t, err)
		require.Equal(t, []int{1}, state.Collected)
	})

	t.Run("re-collecting through a self loop costs the expected cheating penalty", func(t *testing.T) {
		e := newGraphEnv(t, lineGraph(t, true), Config{
			PointLabels: []int{2},
			AgentLabels: []int{2},
			MaxCollect:  []int{2},
		}, WithCheatCost(500), WithCaughtProbability(0.5))

		require.NoError(t, e.Step(2))
		require.Equal(t, -1.0, e.Rewards()[0], "First collection only pays the edge")

		require.NoError(t, e.Step(2))
		require.Equal(t, -251.0, e.Rewards()[0])

		c, err := e.Collector(0)
		require.NoError(t, err)
		require.Equal(t, 1, c.CheatedCount)
		require.Equal(t, 1, c.UniquePointsCollected)
		require.Equal(t, 2, c.TotalPointsCollected)
		require.True(t, e.Terminations()[0])
	})

	t.Run("two agents share a point", func(t *testing.T) {
		e := newGraphEnv(t, lineGraph(t, true), Config{
			PointLabels: []int{2},
			AgentLabels: []int{0, 2},
			MaxCollect:  []int{1, 2},
		}, WithCheatCost(500), WithCaughtProbability(0.5))

		require.Equal(t, AgentID(0), selected(t, e))
		require.NoError(t, e.Step(1))
		require.Equal(t, AgentID(1), selected(t, e))
		require.NoError(t, e.Step(2))
		require.Equal(t, -1.0, e.Rewards()[1])

		require.NoError(t, e.Step(2))
		require.Equal(t, -253.0, e.Rewards()[0], "Point was already collected by agent_1")
		require.True(t, e.Terminations()[0])
		require.False(t, e.Terminated(), "agent_1 still has budget left")

		require.NoError(t, e.Step(2))
		require.Equal(t, -251.0, e.Rewards()[1])
		require.True(t, e.Terminations()[1])
		require.True(t, e.Terminated())

		stats := e.Stats()
		require.Equal(t, 3, stats.TotalPointsCollected)
		require.Equal(t, 1, stats.UniquePointsCollected)
		require.Equal(t, 2, stats.Cheated)
		require.Equal(t, 4, stats.Iteration)
		require.Equal(t, -2.0-1-253-251, stats.TotalReward)
	})
}

func TestGraphActionPolicy(t *testing.T) {
	cfg := Config{PointLabels: []int{2}, AgentLabels: []int{0}, MaxCollect: []int{1}}

	t.Run("non-neighbor is a zero reward no-op", func(t *testing.T) {
		e := newGraphEnv(t, lineGraph(t, false), cfg)

		require.NoError(t, e.Step(2))
		require.Zero(t, e.Rewards()[0])
		c, err := e.Collector(0)
		require.NoError(t, err)
		require.Equal(t, 0, c.Label, "Collector should not move")
		require.Equal(t, []int{0}, c.Path)
		require.Equal(t, 1, e.Iteration(), "A no-op still counts as a step")
	})

	t.Run("no action is a zero reward no-op", func(t *testing.T) {
		e := newGraphEnv(t, lineGraph(t, false), cfg)

		require.NoError(t, e.Step(NoAction))
		require.Zero(t, e.Rewards()[0])
	})

	t.Run("action outside the action space is an error", func(t *testing.T) {
		e := newGraphEnv(t, lineGraph(t, false), cfg)

		require.ErrorIs(t, e.Step(3), ErrInvalidAction)
		require.ErrorIs(t, e.Step(-2), ErrInvalidAction)
		require.Zero(t, e.Iteration(), "Failed steps have no effect")
		require.Equal(t, AgentID(0), selected(t, e))
	})
}

func TestPlaneScenario(t *testing.T) {
	newPlane := func(t *testing.T) *Env {
		e, err := NewPlaneEnv(
			[]world.Vec2{{X: 3, Y: 4}, {X: 6, Y: 8}},
			[]world.Vec2{{X: 0, Y: 0}},
			[]int{3},
			WithCheatCost(100), WithCaughtProbability(0.25),
		)
		require.NoError(t, err)
		e.Reset()
		return e
	}

	t.Run("Euclidean cost and cheating penalty", func(t *testing.T) {
		e := newPlane(t)

		require.NoError(t, e.Step(0))
		require.InDelta(t, -5.0, e.Rewards()[0], 1e-9)

		require.NoError(t, e.Step(1))
		require.InDelta(t, -5.0, e.Rewards()[0], 1e-9)

		require.NoError(t, e.Step(1))
		require.InDelta(t, -25.0, e.Rewards()[0], 1e-9, "Zero distance plus 100*0.25")

		c, err := e.Collector(0)
		require.NoError(t, err)
		require.Equal(t, world.Vec2{X: 6, Y: 8}, c.Position, "Collector teleports onto the point")
		require.Equal(t, 1, c.CheatedCount)
		require.True(t, e.Terminated())
	})

	t.Run("invalid actions are errors", func(t *testing.T) {
		e := newPlane(t)

		require.ErrorIs(t, e.Step(2), ErrInvalidAction)
		require.ErrorIs(t, e.Step(NoAction), ErrInvalidAction)
		require.Zero(t, e.Iteration())
	})

	t.Run("plane observations have no graph or mask", func(t *testing.T) {
		e := newPlane(t)

		obs, err := e.Observe(0)
		require.NoError(t, err)
		require.Nil(t, obs.Graph)
		require.Nil(t, obs.ActionMask)
		require.Equal(t, []int{0, 1}, obs.PointLabels)
		require.Equal(t, []world.Vec2{{X: 0, Y: 0}}, obs.CollectorPositions)
	})
}

func TestNotReset(t *testing.T) {
	e, err := NewGraphEnv(lineGraph(t, false), Config{PointLabels: []int{2}, AgentLabels: []int{0}, MaxCollect: []int{1}})
	require.NoError(t, err)

	require.ErrorIs(t, e.Step(1), ErrNotReset)
	_, err = e.Observe(0)
	require.ErrorIs(t, err, ErrNotReset)
	_, err = e.State()
	require.ErrorIs(t, err, ErrNotReset)
	_, _, err = e.SampleAction(0)
	require.ErrorIs(t, err, ErrNotReset)
	_, ok := e.AgentSelection()
	require.False(t, ok)
}

func TestTurnOrder(t *testing.T) {
	g, err := world.NewGridGraph(3, 3, 1, nil)
	require.NoError(t, err)

	t.Run("agents act in a fixed cycle", func(t *testing.T) {
		e := newGraphEnv(t, g, Config{AgentLabels: []int{0, 4, 8}, MaxCollect: []int{10, 10, 10}})

		var order []AgentID
		for i := 0; i < 6; i++ {
			order = append(order, selected(t, e))
			require.NoError(t, e.Step(NoAction))
		}
		require.Equal(t, []AgentID{0, 1, 2, 0, 1, 2}, order)
	})

	t.Run("first agent dying is skipped after its dead step", func(t *testing.T) {
		// agent_0 has no budget and terminates on its first step
		e := newGraphEnv(t, g, Config{AgentLabels: []int{0, 4, 8}, MaxCollect: []int{0, 10, 10}})

		require.NoError(t, e.Step(NoAction))
		require.True(t, e.Terminations()[0])
		require.Equal(t, []AgentID{0, 1, 2}, e.Agents(), "Terminated agent stays until its dead step")

		require.NoError(t, e.Step(1))
		require.NoError(t, e.Step(5))

		require.Equal(t, AgentID(0), selected(t, e))
		before := e.CumulativeRewards()
		require.NoError(t, e.Step(3), "Dead step ignores the action")
		require.Equal(t, before, e.CumulativeRewards(), "Dead step has no effect on rewards")
		require.Equal(t, 3, e.Iteration(), "Dead step is not an iteration")
		require.Equal(t, []AgentID{1, 2}, e.Agents())

		var order []AgentID
		for i := 0; i < 4; i++ {
			order = append(order, selected(t, e))
			require.NoError(t, e.Step(NoAction))
		}
		require.Equal(t, []AgentID{1, 2, 1, 2}, order)
	})

	t.Run("middle agent dying", func(t *testing.T) {
		e := newGraphEnv(t, g, Config{AgentLabels: []int{0, 4, 8}, MaxCollect: []int{10, 0, 10}})

		var order []AgentID
		for i := 0; i < 7; i++ {
			order = append(order, selected(t, e))
			require.NoError(t, e.Step(NoAction))
		}
		// agent_1 terminates on its first step and is removed on its second turn
		require.Equal(t, []AgentID{0, 1, 2, 0, 1, 2, 0}, order)
		require.Equal(t, []AgentID{0, 2}, e.Agents())
	})

	t.Run("last agent retired", func(t *testing.T) {
		e := newGraphEnv(t, g, Config{AgentLabels: []int{0}, MaxCollect: []int{0}})

		require.NoError(t, e.Step(NoAction))
		require.True(t, e.Terminated())
		require.NoError(t, e.Step(NoAction), "Dead step of the last agent")
		require.Empty(t, e.Agents())
		_, ok := e.AgentSelection()
		require.False(t, ok)
		require.NoError(t, e.Step(1), "Stepping without agents is a no-op")
	})
}

func TestTruncate(t *testing.T) {
	e := newGraphEnv(t, lineGraph(t, false), Config{PointLabels: []int{2}, AgentLabels: []int{0, 1}, MaxCollect: []int{5, 5}})

	require.NoError(t, e.Truncate(0))
	require.True(t, e.Truncations()[0])
	require.False(t, e.Truncated())
	require.True(t, e.Done(0))

	require.NoError(t, e.Step(NoAction), "Dead step for agent_0")
	require.Equal(t, AgentID(1), selected(t, e))

	require.NoError(t, e.Truncate(1))
	require.True(t, e.Truncated())
	require.ErrorIs(t, e.Truncate(7), ErrUnknownAgent)
}

func TestReset(t *testing.T) {
	cfg := Config{PointLabels: []int{2}, AgentLabels: []int{0, 1}, MaxCollect: []int{1, 1}}

	t.Run("resetting twice yields identical observations", func(t *testing.T) {
		e, err := NewGraphEnv(lineGraph(t, false), cfg)
		require.NoError(t, err)

		first := e.Reset(9)
		second := e.Reset(9)
		require.Equal(t, first, second)
	})

	t.Run("reset restores the initial state", func(t *testing.T) {
		e := newGraphEnv(t, lineGraph(t, false), cfg)
		initial, err := e.State()
		require.NoError(t, err)

		require.NoError(t, e.Step(1))
		require.NoError(t, e.Step(2))
		require.True(t, e.Terminations()[1])
		episode := e.Episode()

		e.Reset()
		state, err := e.State()
		require.NoError(t, err)
		require.Equal(t, initial, state)
		require.Equal(t, map[AgentID]bool{0: false, 1: false}, e.Terminations())
		require.Equal(t, map[AgentID]float64{0: 0, 1: 0}, e.CumulativeRewards())
		require.Equal(t, []AgentID{0, 1}, e.Agents())
		require.Equal(t, AgentID(0), selected(t, e))
		require.Zero(t, e.Iteration())
		require.NotEqual(t, episode, e.Episode(), "Every episode gets a new identifier")
	})

	t.Run("reset returns an observation per agent with its own mask", func(t *testing.T) {
		e, err := NewGraphEnv(lineGraph(t, false), cfg)
		require.NoError(t, err)

		observations := e.Reset()
		require.Len(t, observations, 2)
		require.Equal(t, []int8{0, 1, 0}, observations[0].ActionMask)
		require.Equal(t, []int8{1, 0, 1}, observations[1].ActionMask)
		require.Equal(t, observations[0].Graph, observations[1].Graph)
	})
}

func TestObservation(t *testing.T) {
	cfg := Config{PointLabels: []int{2}, AgentLabels: []int{0}, MaxCollect: []int{5}}

	t.Run("observations are copies", func(t *testing.T) {
		e := newGraphEnv(t, lineGraph(t, false), cfg)

		obs, err := e.Observe(0)
		require.NoError(t, err)
		obs.Collected[0] = 99
		obs.Graph[0][1] = 99
		obs.CollectorLabels[0] = 2

		again, err := e.Observe(0)
		require.NoError(t, err)
		require.Equal(t, []int{0}, again.Collected)
		require.Equal(t, 2.0, again.Graph[0][1])
		require.Equal(t, []int{0}, again.CollectorLabels)
	})

	t.Run("mask follows topology changes of a dynamic graph", func(t *testing.T) {
		g := lineGraph(t, false)
		e := newGraphEnv(t, g, cfg, WithStaticGraph(false))

		require.NoError(t, g.SetEdge(0, 2, 4))
		obs, err := e.Observe(0)
		require.NoError(t, err)
		require.Equal(t, []int8{0, 1, 1}, obs.ActionMask)
		require.Equal(t, 4.0, obs.Graph[0][2])

		require.NoError(t, e.Step(2))
		require.Equal(t, -4.0, e.Rewards()[0])
	})

	t.Run("static graph keeps its adjacency snapshot but not its mask", func(t *testing.T) {
		g := lineGraph(t, false)
		e := newGraphEnv(t, g, cfg, WithStaticGraph(true))
		_, err := e.State()
		require.NoError(t, err)

		require.NoError(t, g.SetEdge(0, 2, 4))
		obs, err := e.Observe(0)
		require.NoError(t, err)
		require.Zero(t, obs.Graph[0][2], "Static adjacency is computed once per episode")
		require.Equal(t, []int8{0, 1, 1}, obs.ActionMask, "Mask is never cached")
	})

	t.Run("unknown agent", func(t *testing.T) {
		e := newGraphEnv(t, lineGraph(t, false), cfg)

		_, err := e.Observe(3)
		require.ErrorIs(t, err, ErrUnknownAgent)
	})
}

func TestSampleAction(t *testing.T) {
	g, err := world.NewGridGraph(4, 4, 1, []int{15})
	require.NoError(t, err)
	cfg := Config{PointLabels: []int{3}, AgentLabels: []int{5, 15}, MaxCollect: []int{2, 2}}

	t.Run("samples neighbors reproducibly", func(t *testing.T) {
		e := newGraphEnv(t, g, cfg)
		var first []Action
		for i := 0; i < 10; i++ {
			action, ok, err := e.SampleAction(0)
			require.NoError(t, err)
			require.True(t, ok)
			require.Contains(t, g.Neighbors(5), int(action))
			first = append(first, action)
		}

		e.Reset(1)
		for i := 0; i < 10; i++ {
			action, _, err := e.SampleAction(0)
			require.NoError(t, err)
			require.Equal(t, first[i], action, "Same seed should sample the same actions")
		}
	})

	t.Run("collector on an obstacle cannot move", func(t *testing.T) {
		e := newGraphEnv(t, g, cfg)

		action, ok, err := e.SampleAction(1)
		require.NoError(t, err)
		require.False(t, ok)
		require.Equal(t, NoAction, action)
	})
}

func TestRandomRollouts(t *testing.T) {
	g, err := world.NewGridGraph(4, 4, 1.5, []int{5, 10})
	require.NoError(t, err)
	require.NoError(t, g.SetEdge(3, 3, 0.5))

	for seed := uint64(0); seed < 5; seed++ {
		e := newGraphEnv(t, g, Config{
			PointLabels: []int{0, 3, 12, 15},
			AgentLabels: []int{1, 14, 6},
			MaxCollect:  []int{3, 4, 2},
		})
		e.Reset(seed)

		terminatedAt := map[AgentID]int{}
		for step := 0; step < 500 && !e.Terminated(); step++ {
			agent := selected(t, e)
			action, ok, err := e.SampleAction(agent)
			require.NoError(t, err)
			if !ok {
				action = NoAction
			}
			require.NoError(t, e.Step(action))

			for a, reward := range e.Rewards() {
				require.LessOrEqual(t, reward, 0.0, "Rewards are never positive")
				c, err := e.Collector(a)
				require.NoError(t, err)
				require.Equal(t, c.TotalPointsCollected-c.UniquePointsCollected, c.CheatedCount)
				if e.Terminations()[a] {
					if _, ok := terminatedAt[a]; !ok {
						terminatedAt[a] = step
						require.GreaterOrEqual(t, c.TotalPointsCollected, e.MaxCollect(a))
					}
				} else {
					_, was := terminatedAt[a]
					require.False(t, was, "Termination never flips back")
					require.Less(t, c.TotalPointsCollected, e.MaxCollect(a))
				}
			}
		}
	}
}

func TestConfigValidation(t *testing.T) {
	g := lineGraph(t, false)
	tests := []struct {
		name    string
		cfg     Config
		options []Option
	}{
		{name: "no agents", cfg: Config{PointLabels: []int{2}}},
		{name: "budget count mismatch", cfg: Config{AgentLabels: []int{0}, MaxCollect: []int{1, 2}}},
		{name: "agent outside graph", cfg: Config{AgentLabels: []int{3}, MaxCollect: []int{1}}},
		{name: "point outside graph", cfg: Config{PointLabels: []int{-1}, AgentLabels: []int{0}, MaxCollect: []int{1}}},
		{name: "duplicate point", cfg: Config{PointLabels: []int{2, 2}, AgentLabels: []int{0}, MaxCollect: []int{1}}},
		{name: "negative budget", cfg: Config{AgentLabels: []int{0}, MaxCollect: []int{-1}}},
		{name: "probability above one", cfg: Config{AgentLabels: []int{0}, MaxCollect: []int{1}}, options: []Option{WithCaughtProbability(1.5)}},
		{name: "negative cheat cost", cfg: Config{AgentLabels: []int{0}, MaxCollect: []int{1}}, options: []Option{WithCheatCost(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraphEnv(g, tt.cfg, tt.options...)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := NewGraphEnv(nil, Config{AgentLabels: []int{0}, MaxCollect: []int{1}})
	require.ErrorIs(t, err, ErrInvalidConfig)
}
