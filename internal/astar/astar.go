// Package astar implements the deterministic A* reference search used to
// benchmark the stochastic colony against an exact pathfinder. The search
// walks the same 4-connected, wall-aware adjacency the ants use, with unit
// step cost, and shares no state with the simulation.
package astar

import (
	"container/heap"
	"math"

	"github.com/musaraza08/ant-colony-optimisation/internal/colony"
)

// Graph supplies traversable adjacency for the search. A snapshot of the
// colony environment satisfies it directly.
type Graph interface {
	Neighbours(p colony.Position) []colony.Position
}

// Heuristic returns the Euclidean distance between two positions. On a
// 4-connected unit-cost grid this can overestimate diagonal-looking
// remainders by a small margin; it is kept for parity with the colony's
// own distance metric.
func Heuristic(a, b colony.Position) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}

// FindPath runs A* from start to goal over g. It returns the path including
// both endpoints and true, or nil and false when no wall-free route exists.
// An unreachable goal is a normal result, not an error, and the search
// always terminates: the open set drains once every reachable position has
// been expanded. Repeated calls with identical inputs return the same path.
func FindPath(g Graph, start, goal colony.Position) ([]colony.Position, bool) {
	if start == goal {
		return []colony.Position{start}, true
	}

	open := make(priorityQueue, 0)
	heap.Init(&open)

	seq := 0
	heap.Push(&open, &queueItem{pos: start, g: 0, f: Heuristic(start, goal), seq: seq})

	gScore := map[colony.Position]float64{start: 0}
	cameFrom := make(map[colony.Position]colony.Position)
	closed := make(map[colony.Position]bool)

	for open.Len() > 0 {
		current := heap.Pop(&open).(*queueItem)
		if closed[current.pos] {
			// Stale duplicate left behind by a later relaxation.
			continue
		}
		closed[current.pos] = true

		if current.pos == goal {
			return reconstructPath(cameFrom, goal, start), true
		}

		for _, n := range g.Neighbours(current.pos) {
			if closed[n] {
				continue
			}
			tentative := current.g + 1
			if best, seen := gScore[n]; seen && tentative >= best {
				continue
			}
			gScore[n] = tentative
			cameFrom[n] = current.pos
			seq++
			heap.Push(&open, &queueItem{
				pos: n,
				g:   tentative,
				f:   tentative + Heuristic(n, goal),
				seq: seq,
			})
		}
	}

	return nil, false
}

func reconstructPath(cameFrom map[colony.Position]colony.Position, goal, start colony.Position) []colony.Position {
	path := []colony.Position{goal}
	current := goal
	for current != start {
		current = cameFrom[current]
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
