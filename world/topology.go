// Package world describes where collectors can move and what a move costs.
//
// Two topologies are provided. Graph is a weighted, directed or undirected
// graph whose node labels form the range 0..N-1. Plane places points on a
// continuous plane and behaves as the complete graph over them, with the
// Euclidean distance as edge cost.
package world

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// ErrEdgeNotFound is returned when the cost of a missing edge is requested.
var ErrEdgeNotFound = errors.New("edge not found")

// MovePolicy tells how an action naming a node that cannot be reached from
// the current node is treated.
type MovePolicy int

const (
	// StrictMoves rejects unreachable destinations as invalid actions.
	StrictMoves MovePolicy = iota
	// AttemptedMoves turns unreachable destinations into zero reward no-ops.
	AttemptedMoves
)

func (p MovePolicy) String() string {
	switch p {
	case StrictMoves:
		return "strict"
	case AttemptedMoves:
		return "attempted"
	default:
		return "unknown"
	}
}

type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) Distance(other Vec2) float64 {
	return math.Hypot(v.X-other.X, v.Y-other.Y)
}

// Topology is the environment structure collectors move on. Node labels are
// 0..Order()-1 and actions are the node labels 0..Actions()-1.
type Topology interface {
	// Order is the number of nodes.
	Order() int
	// Actions is the size of the raw action space.
	Actions() int
	// Neighbors returns the nodes reachable in one move, in ascending order.
	Neighbors(node int) []int
	HasEdge(from, to int) bool
	// EdgeCost returns the traversal cost or ErrEdgeNotFound.
	EdgeCost(from, to int) (float64, error)
	Position(node int) Vec2
	MovePolicy() MovePolicy
	// SampleLegalAction draws a reachable destination uniformly at random.
	// It reports false when nothing is reachable from node.
	SampleLegalAction(node int, rng *rand.Rand) (int, bool)
}

// Weighted is implemented by topologies that expose an explicit adjacency
// matrix and per-node action masks.
type Weighted interface {
	Topology
	// Adjacency returns a fresh Order() x Order() matrix of edge weights,
	// 0 where there is no edge.
	Adjacency() [][]float64
}

// ActionMask returns an indicator vector over all actions with 1 at the
// destinations reachable from node.
func ActionMask(t Topology, node int) []int8 {
	mask := make([]int8, t.Actions())
	for _, neighbor := range t.Neighbors(node) {
		if neighbor >= 0 && neighbor < len(mask) {
			mask[neighbor] = 1
		}
	}
	return mask
}
