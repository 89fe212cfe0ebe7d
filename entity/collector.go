package entity

import "collector/world"

// Collector is the mobile entity controlled by one agent.
type Collector struct {
	Label                 int          // Current node label
	Position              world.Vec2   // Position of the current node
	Path                  []int        // Visited node labels, starting with the initial placement
	PathPositions         []world.Vec2 // Positions matching Path
	TotalPointsCollected  int
	UniquePointsCollected int
	CheatedCount          int
}

func NewCollector(label int, position world.Vec2) *Collector {
	return &Collector{
		Label:         label,
		Position:      position,
		Path:          []int{label},
		PathPositions: []world.Vec2{position},
	}
}

// Move places the collector on a node. Legality is checked by the caller.
func (c *Collector) Move(label int, position world.Vec2) {
	c.Label = label
	c.Position = position
	c.Path = append(c.Path, label)
	c.PathPositions = append(c.PathPositions, position)
}

// Collect records a collection of point on both the collector and the point.
func (c *Collector) Collect(point *Point) {
	if point.IsCollected() {
		c.CheatedCount++
	} else {
		c.UniquePointsCollected++
	}
	point.collects++
	c.TotalPointsCollected++
}

func (c *Collector) Copy() Collector {
	cp := *c
	cp.Path = append([]int(nil), c.Path...)
	cp.PathPositions = append([]world.Vec2(nil), c.PathPositions...)
	return cp
}
