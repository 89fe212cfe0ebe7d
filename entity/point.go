package entity

import "collector/world"

// Point is a collectable location. Its counter keeps growing on every
// collection, including repeated ones.
type Point struct {
	Label    int        // Node label of the point
	Position world.Vec2 // Position of the node
	collects int
}

func NewPoint(label int, position world.Vec2) *Point {
	return &Point{Label: label, Position: position}
}

func (p *Point) CollectCount() int {
	return p.collects
}

func (p *Point) IsCollected() bool {
	return p.collects > 0
}
