package world

import (
	"github.com/dhconnelly/rtreego"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

const pointTolerance = 1e-9

// Plane is the continuous variant. Points are nodes 0..P-1 and the initial
// collector placements are nodes P..P+A-1. Every node is connected to every
// point, including itself, so a move teleports a collector onto any point.
type Plane struct {
	points []Vec2
	starts []Vec2
	index  *rtreego.Rtree
}

type indexedPoint struct {
	point    int
	location rtreego.Point
}

func (p indexedPoint) Bounds() rtreego.Rect {
	return p.location.ToRect(pointTolerance)
}

func NewPlane(points, starts []Vec2) *Plane {
	p := &Plane{
		points: append([]Vec2(nil), points...),
		starts: append([]Vec2(nil), starts...),
		index:  rtreego.NewTree(2, 2, 8),
	}
	for i, pos := range p.points {
		p.index.Insert(indexedPoint{point: i, location: rtreego.Point{pos.X, pos.Y}})
	}
	return p
}

func (p *Plane) Order() int {
	return len(p.points) + len(p.starts)
}

func (p *Plane) Actions() int {
	return len(p.points)
}

func (p *Plane) MovePolicy() MovePolicy {
	return StrictMoves
}

// StartNode returns the node label of the i-th initial placement.
func (p *Plane) StartNode(i int) int {
	return len(p.points) + i
}

func (p *Plane) contains(node int) bool {
	return node >= 0 && node < p.Order()
}

func (p *Plane) Neighbors(node int) []int {
	if !p.contains(node) {
		return nil
	}
	neighbors := make([]int, len(p.points))
	for i := range neighbors {
		neighbors[i] = i
	}
	return neighbors
}

func (p *Plane) HasEdge(from, to int) bool {
	return p.contains(from) && to >= 0 && to < len(p.points)
}

func (p *Plane) EdgeCost(from, to int) (float64, error) {
	if !p.HasEdge(from, to) {
		return 0, errors.Wrapf(ErrEdgeNotFound, "no edge between node %d and point %d", from, to)
	}
	return p.Position(from).Distance(p.points[to]), nil
}

func (p *Plane) Position(node int) Vec2 {
	if node < len(p.points) {
		return p.points[node]
	}
	return p.starts[node-len(p.points)]
}

func (p *Plane) SampleLegalAction(node int, rng *rand.Rand) (int, bool) {
	if !p.contains(node) || len(p.points) == 0 {
		return 0, false
	}
	return rng.Intn(len(p.points)), true
}

// Nearest returns the point closest to from that is accepted by keep.
func (p *Plane) Nearest(from Vec2, keep func(point int) bool) (int, bool) {
	if len(p.points) == 0 {
		return 0, false
	}
	candidates := p.index.NearestNeighbors(len(p.points), rtreego.Point{from.X, from.Y})
	for _, candidate := range candidates {
		ip, ok := candidate.(indexedPoint)
		if !ok {
			continue
		}
		if keep == nil || keep(ip.point) {
			return ip.point, true
		}
	}
	return 0, false
}
