// Package config loads scenario files and runtime settings.
package config

import (
	"bytes"
	"fmt"
	"os"

	"collector/env"
	"collector/world"

	"gopkg.in/yaml.v3"
)

const (
	KindGraph = "graph"
	KindPlane = "plane"
)

// Scenario describes an environment. Graph scenarios place points and
// agents on node labels, plane scenarios give coordinates.
type Scenario struct {
	Kind              string     `yaml:"kind"`
	Graph             *GraphSpec `yaml:"graph,omitempty"`
	Plane             *PlaneSpec `yaml:"plane,omitempty"`
	Points            []int      `yaml:"points,omitempty"`
	Agents            []int      `yaml:"agents,omitempty"`
	MaxCollect        []int      `yaml:"max_collect"`
	CheatCost         *float64   `yaml:"cheat_cost,omitempty"`
	CaughtProbability *float64   `yaml:"caught_probability,omitempty"`
	StaticGraph       *bool      `yaml:"static_graph,omitempty"`
}

type GraphSpec struct {
	Nodes       int        `yaml:"nodes"`
	Directed    bool       `yaml:"directed"`
	NodesPerRow int        `yaml:"nodes_per_row,omitempty"`
	Edges       []EdgeSpec `yaml:"edges,omitempty"`
	Grid        *GridSpec  `yaml:"grid,omitempty"`
}

type EdgeSpec struct {
	From   int     `yaml:"from"`
	To     int     `yaml:"to"`
	Weight float64 `yaml:"weight"`
}

// GridSpec generates a 4-connected grid. Explicit edges are added on top.
type GridSpec struct {
	Rows      int     `yaml:"rows"`
	Cols      int     `yaml:"cols"`
	Weight    float64 `yaml:"weight"`
	Obstacles []int   `yaml:"obstacles,omitempty"`
}

type PlaneSpec struct {
	Points [][]float64 `yaml:"points"`
	Agents [][]float64 `yaml:"agents"`
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Scenario, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var s Scenario
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	return &s, nil
}

func (s *Scenario) options() []env.Option {
	var options []env.Option
	if s.CheatCost != nil {
		options = append(options, env.WithCheatCost(*s.CheatCost))
	}
	if s.CaughtProbability != nil {
		options = append(options, env.WithCaughtProbability(*s.CaughtProbability))
	}
	if s.StaticGraph != nil {
		options = append(options, env.WithStaticGraph(*s.StaticGraph))
	}
	return options
}

// Build creates the environment described by the scenario.
func (s *Scenario) Build() (*env.Env, error) {
	switch s.Kind {
	case KindGraph:
		g, err := s.buildGraph()
		if err != nil {
			return nil, err
		}
		return env.NewGraphEnv(g, env.Config{
			PointLabels: s.Points,
			AgentLabels: s.Agents,
			MaxCollect:  s.MaxCollect,
		}, s.options()...)
	case KindPlane:
		if s.Plane == nil {
			return nil, fmt.Errorf("%w: plane scenario without plane section", env.ErrInvalidConfig)
		}
		points, err := vectors(s.Plane.Points)
		if err != nil {
			return nil, fmt.Errorf("plane points: %w", err)
		}
		agents, err := vectors(s.Plane.Agents)
		if err != nil {
			return nil, fmt.Errorf("plane agents: %w", err)
		}
		return env.NewPlaneEnv(points, agents, s.MaxCollect, s.options()...)
	default:
		return nil, fmt.Errorf("%w: unknown scenario kind %q", env.ErrInvalidConfig, s.Kind)
	}
}

func (s *Scenario) buildGraph() (*world.Graph, error) {
	layout := s.Graph
	if layout == nil {
		return nil, fmt.Errorf("%w: graph scenario without graph section", env.ErrInvalidConfig)
	}

	var g *world.Graph
	if layout.Grid != nil {
		if layout.Directed {
			return nil, fmt.Errorf("%w: grids are undirected", env.ErrInvalidConfig)
		}
		var err error
		g, err = world.NewGridGraph(layout.Grid.Rows, layout.Grid.Cols, layout.Grid.Weight, layout.Grid.Obstacles)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", env.ErrInvalidConfig, err)
		}
	} else {
		if layout.Nodes <= 0 {
			return nil, fmt.Errorf("%w: graph needs at least one node", env.ErrInvalidConfig)
		}
		g = world.NewGraph(layout.Nodes, layout.Directed)
	}

	for _, edge := range layout.Edges {
		if err := g.SetEdge(edge.From, edge.To, edge.Weight); err != nil {
			return nil, fmt.Errorf("%w: %v", env.ErrInvalidConfig, err)
		}
	}
	g.SetNodesPerRow(layout.NodesPerRow)
	return g, nil
}

func vectors(pairs [][]float64) ([]world.Vec2, error) {
	out := make([]world.Vec2, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: coordinate %d has %d components", env.ErrInvalidConfig, i, len(pair))
		}
		out[i] = world.Vec2{X: pair[0], Y: pair[1]}
	}
	return out, nil
}
