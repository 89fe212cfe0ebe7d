package world

import (
	"container/heap"
	"math"
)

type queueItem struct {
	node int
	cost float64
}

type costQueue []queueItem

func (q costQueue) Len() int { return len(q) }
func (q costQueue) Less(i, j int) bool {
	if q[i].cost == q[j].cost {
		return q[i].node < q[j].node
	}
	return q[i].cost < q[j].cost
}
func (q costQueue) Swap(i, j int)  { q[i], q[j] = q[j], q[i] }
func (q *costQueue) Push(x any)    { *q = append(*q, x.(queueItem)) }
func (q *costQueue) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}

// NextHop runs Dijkstra from node and returns the first move on a cheapest
// path to the closest node accepted by target (node itself excluded), along
// with the total path cost. Ties are broken by the lower node label.
func NextHop(t Topology, from int, target func(node int) bool) (hop int, cost float64, ok bool) {
	order := t.Order()
	if from < 0 || from >= order {
		return 0, 0, false
	}

	dist := make([]float64, order)
	first := make([]int, order)
	done := make([]bool, order)
	for i := range dist {
		dist[i] = math.Inf(1)
		first[i] = -1
	}
	dist[from] = 0

	q := &costQueue{{node: from, cost: 0}}
	for q.Len() > 0 {
		item := heap.Pop(q).(queueItem)
		if done[item.node] {
			continue
		}
		done[item.node] = true

		if item.node != from && target(item.node) {
			return first[item.node], item.cost, true
		}

		for _, neighbor := range t.Neighbors(item.node) {
			if done[neighbor] {
				continue
			}
			weight, err := t.EdgeCost(item.node, neighbor)
			if err != nil {
				continue
			}
			if d := item.cost + weight; d < dist[neighbor] {
				dist[neighbor] = d
				if item.node == from {
					first[neighbor] = neighbor
				} else {
					first[neighbor] = first[item.node]
				}
				heap.Push(q, queueItem{node: neighbor, cost: d})
			}
		}
	}
	return 0, 0, false
}
