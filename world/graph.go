package world

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// Edge is a weighted connection to another node.
type Edge struct {
	To     int
	Weight float64
}

// Graph is a weighted graph over the nodes 0..N-1. Undirected graphs store
// every edge in both directions. Self loops are allowed.
type Graph struct {
	directed    bool
	adjacent    [][]Edge // per node, sorted by Edge.To
	nodesPerRow int
}

// NewGraph creates a graph with order nodes and no edges.
func NewGraph(order int, directed bool) *Graph {
	if order < 0 {
		order = 0
	}
	return &Graph{
		directed:    directed,
		adjacent:    make([][]Edge, order),
		nodesPerRow: defaultNodesPerRow(order),
	}
}

// NewGridGraph creates an undirected 4-connected grid of rows x cols nodes
// labelled row by row. Obstacle nodes get no edges at all.
func NewGridGraph(rows, cols int, weight float64, obstacles []int) (*Graph, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.Errorf("grid must have positive dimensions, got %dx%d", rows, cols)
	}
	g := NewGraph(rows*cols, false)
	g.nodesPerRow = cols

	blocked := make(map[int]bool, len(obstacles))
	for _, node := range obstacles {
		if !g.contains(node) {
			return nil, errors.Errorf("obstacle %d is outside the grid", node)
		}
		blocked[node] = true
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			node := r*cols + c
			if blocked[node] {
				continue
			}
			if c+1 < cols && !blocked[node+1] {
				if err := g.SetEdge(node, node+1, weight); err != nil {
					return nil, err
				}
			}
			if r+1 < rows && !blocked[node+cols] {
				if err := g.SetEdge(node, node+cols, weight); err != nil {
					return nil, err
				}
			}
		}
	}
	return g, nil
}

func defaultNodesPerRow(order int) int {
	return max(1, int(math.Ceil(math.Sqrt(float64(order)))))
}

func (g *Graph) contains(node int) bool {
	return node >= 0 && node < len(g.adjacent)
}

func (g *Graph) Directed() bool {
	return g.directed
}

func (g *Graph) Order() int {
	return len(g.adjacent)
}

func (g *Graph) Actions() int {
	return len(g.adjacent)
}

func (g *Graph) MovePolicy() MovePolicy {
	return AttemptedMoves
}

// SetNodesPerRow changes the layout used by Position.
func (g *Graph) SetNodesPerRow(n int) {
	if n > 0 {
		g.nodesPerRow = n
	}
}

// SetEdge adds the edge from -> to, or updates its weight when it exists.
func (g *Graph) SetEdge(from, to int, weight float64) error {
	if !g.contains(from) || !g.contains(to) {
		return errors.Errorf("edge %d -> %d is outside the graph of order %d", from, to, g.Order())
	}
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return errors.Errorf("edge %d -> %d has invalid weight %v", from, to, weight)
	}
	g.adjacent[from] = upsert(g.adjacent[from], Edge{To: to, Weight: weight})
	if !g.directed && from != to {
		g.adjacent[to] = upsert(g.adjacent[to], Edge{To: from, Weight: weight})
	}
	return nil
}

// RemoveEdge deletes the edge from -> to and reports whether it existed.
func (g *Graph) RemoveEdge(from, to int) bool {
	if !g.contains(from) || !g.contains(to) {
		return false
	}
	var removed bool
	g.adjacent[from], removed = remove(g.adjacent[from], to)
	if !g.directed && from != to {
		g.adjacent[to], _ = remove(g.adjacent[to], from)
	}
	return removed
}

func upsert(edges []Edge, edge Edge) []Edge {
	i := sort.Search(len(edges), func(i int) bool { return edges[i].To >= edge.To })
	if i < len(edges) && edges[i].To == edge.To {
		edges[i].Weight = edge.Weight
		return edges
	}
	edges = append(edges, Edge{})
	copy(edges[i+1:], edges[i:])
	edges[i] = edge
	return edges
}

func remove(edges []Edge, to int) ([]Edge, bool) {
	i := sort.Search(len(edges), func(i int) bool { return edges[i].To >= to })
	if i == len(edges) || edges[i].To != to {
		return edges, false
	}
	return append(edges[:i], edges[i+1:]...), true
}

func (g *Graph) edge(from, to int) (Edge, bool) {
	if !g.contains(from) {
		return Edge{}, false
	}
	edges := g.adjacent[from]
	i := sort.Search(len(edges), func(i int) bool { return edges[i].To >= to })
	if i < len(edges) && edges[i].To == to {
		return edges[i], true
	}
	return Edge{}, false
}

func (g *Graph) Neighbors(node int) []int {
	if !g.contains(node) {
		return nil
	}
	neighbors := make([]int, len(g.adjacent[node]))
	for i, e := range g.adjacent[node] {
		neighbors[i] = e.To
	}
	return neighbors
}

func (g *Graph) HasEdge(from, to int) bool {
	_, ok := g.edge(from, to)
	return ok
}

func (g *Graph) EdgeCost(from, to int) (float64, error) {
	e, ok := g.edge(from, to)
	if !ok {
		return 0, errors.Wrapf(ErrEdgeNotFound, "no edge between node %d and %d", from, to)
	}
	return e.Weight, nil
}

// Position returns the grid cell of a node, with the origin at the top left.
func (g *Graph) Position(node int) Vec2 {
	return Vec2{
		X: float64(node % g.nodesPerRow),
		Y: float64(node / g.nodesPerRow),
	}
}

func (g *Graph) SampleLegalAction(node int, rng *rand.Rand) (int, bool) {
	if !g.contains(node) || len(g.adjacent[node]) == 0 {
		return 0, false
	}
	return g.adjacent[node][rng.Intn(len(g.adjacent[node]))].To, true
}

func (g *Graph) Adjacency() [][]float64 {
	matrix := make([][]float64, g.Order())
	for from, edges := range g.adjacent {
		matrix[from] = make([]float64, g.Order())
		for _, e := range edges {
			matrix[from][e.To] = e.Weight
		}
	}
	return matrix
}

// Isolated returns the nodes without outgoing edges, i.e. obstacles.
func (g *Graph) Isolated() []int {
	var isolated []int
	for node, edges := range g.adjacent {
		if len(edges) == 0 {
			isolated = append(isolated, node)
		}
	}
	return isolated
}
