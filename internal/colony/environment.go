package colony

import (
	"fmt"
	"math"
	"math/rand"
)

// wallPlacementAttempts bounds how long wall generation keeps trying to fit
// one segment before giving up on it.
const wallPlacementAttempts = 30

// Environment owns the discrete grid: cell tags, per-tile food units, the
// nest, and the log of successful forward tours. It is built once per run
// and mutated only through ConsumeFood and RecordPath afterwards.
type Environment struct {
	w, h  int
	cells []Cell
	nest  Position
	tau0  float64

	foodLeft      map[Position]int
	foodPositions []Position
	totalFood     int

	// forward tours grouped by their destination food tile
	pathsByFood map[Position][][]Position
}

// NewEnvironment builds the grid from cfg using rng for food and wall
// placement. cfg must already be validated. Placement guarantees the nest
// and food tiles are never walled over, but does not guarantee a wall-free
// route between them; callers that need reachability check it with A*.
func NewEnvironment(cfg Config, rng *rand.Rand) (*Environment, error) {
	e := &Environment{
		w:           cfg.GridWidth,
		h:           cfg.GridHeight,
		cells:       make([]Cell, cfg.GridWidth*cfg.GridHeight),
		nest:        cfg.Nest,
		tau0:        cfg.Tau0,
		foodLeft:    make(map[Position]int),
		pathsByFood: make(map[Position][][]Position),
	}
	e.cells[e.index(e.nest)] = CellNest

	if len(cfg.FoodPositions) > 0 {
		e.foodPositions = append([]Position(nil), cfg.FoodPositions...)
	} else {
		positions, err := e.randomFoodPositions(cfg.NumFoodSources, rng)
		if err != nil {
			return nil, err
		}
		e.foodPositions = positions
	}

	e.generateWalls(cfg, rng)

	for _, p := range e.foodPositions {
		e.cells[e.index(p)] = CellFood
		e.foodLeft[p] = cfg.FoodCapacity
	}
	e.totalFood = len(e.foodPositions) * cfg.FoodCapacity

	return e, nil
}

func (e *Environment) index(p Position) int {
	return p.Y*e.w + p.X
}

// Width returns the grid width.
func (e *Environment) Width() int { return e.w }

// Height returns the grid height.
func (e *Environment) Height() int { return e.h }

// Nest returns the nest position.
func (e *Environment) Nest() Position { return e.nest }

// At returns the cell tag at p. p must be in bounds.
func (e *Environment) At(p Position) Cell {
	return e.cells[e.index(p)]
}

// InBounds reports whether p lies on the grid.
func (e *Environment) InBounds(p Position) bool {
	return p.X >= 0 && p.X < e.w && p.Y >= 0 && p.Y < e.h
}

// Neighbours returns the 4-connected in-bounds positions around p that are
// not walls. The direction order (+x, -x, +y, -y) is fixed: it feeds the
// ant's probability table, which must be deterministic for a given state.
func (e *Environment) Neighbours(p Position) []Position {
	candidates := [4]Position{
		{X: p.X + 1, Y: p.Y},
		{X: p.X - 1, Y: p.Y},
		{X: p.X, Y: p.Y + 1},
		{X: p.X, Y: p.Y - 1},
	}
	out := make([]Position, 0, 4)
	for _, c := range candidates {
		if e.InBounds(c) && e.At(c) != CellWall {
			out = append(out, c)
		}
	}
	return out
}

// ConsumeFood removes one unit of food from p. It is a no-op returning
// false when p is not a food tile with units left. When the last unit goes,
// the tile turns DEPLETED and its trail value is reset to tau0 on field
// (field may be nil to skip that hook).
func (e *Environment) ConsumeFood(p Position, field *Field) bool {
	left, ok := e.foodLeft[p]
	if !ok || left <= 0 {
		return false
	}

	left--
	if left > 0 {
		e.foodLeft[p] = left
		return true
	}

	// Exhausted: keep the tile, greyed out.
	e.cells[e.index(p)] = CellDepleted
	delete(e.foodLeft, p)
	for i, fp := range e.foodPositions {
		if fp == p {
			e.foodPositions = append(e.foodPositions[:i], e.foodPositions[i+1:]...)
			break
		}
	}
	if field != nil {
		field.Set(p, e.tau0)
	}
	return true
}

// RemainingFood returns how many units are still on the map.
func (e *Environment) RemainingFood() int {
	total := 0
	for _, left := range e.foodLeft {
		total += left
	}
	return total
}

// TotalFood returns the number of units the map started with.
func (e *Environment) TotalFood() int { return e.totalFood }

// FoodLeftAt returns the units remaining at p (0 for non-food tiles).
func (e *Environment) FoodLeftAt(p Position) int { return e.foodLeft[p] }

// FoodPositions returns the tiles that still hold food.
func (e *Environment) FoodPositions() []Position {
	return append([]Position(nil), e.foodPositions...)
}

// NearestFoodDistance returns the Euclidean distance from p to the closest
// tile still holding food. ok is false when no food remains.
func (e *Environment) NearestFoodDistance(p Position) (d float64, ok bool) {
	if len(e.foodPositions) == 0 {
		return 0, false
	}
	min := math.Inf(1)
	for _, fp := range e.foodPositions {
		d := math.Hypot(float64(fp.X-p.X), float64(fp.Y-p.Y))
		if d < min {
			min = d
		}
	}
	return min, true
}

// RecordPath stores one successful forward tour ending at food tile
// foodPos. The path is copied.
func (e *Environment) RecordPath(foodPos Position, path []Position) {
	e.pathsByFood[foodPos] = append(e.pathsByFood[foodPos], append([]Position(nil), path...))
}

// PathsByFood returns a copy of all recorded tours grouped by destination.
func (e *Environment) PathsByFood() map[Position][][]Position {
	out := make(map[Position][][]Position, len(e.pathsByFood))
	for food, paths := range e.pathsByFood {
		copied := make([][]Position, len(paths))
		for i, p := range paths {
			copied[i] = append([]Position(nil), p...)
		}
		out[food] = copied
	}
	return out
}

func (e *Environment) randomFoodPositions(n int, rng *rand.Rand) ([]Position, error) {
	if n >= e.w*e.h {
		return nil, fmt.Errorf("cannot place %d food sources on a %dx%d grid", n, e.w, e.h)
	}
	seen := make(map[Position]struct{})
	out := make([]Position, 0, n)
	for len(out) < n {
		p := Position{X: rng.Intn(e.w), Y: rng.Intn(e.h)}
		if p == e.nest {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

// generateWalls scatters random horizontal and vertical wall segments,
// skipping any candidate that would overlap the nest, a food tile or an
// already placed wall.
func (e *Environment) generateWalls(cfg Config, rng *rand.Rand) {
	food := make(map[Position]struct{}, len(e.foodPositions))
	for _, p := range e.foodPositions {
		food[p] = struct{}{}
	}

	for i := 0; i < cfg.NumWalls; i++ {
		for attempt := 0; attempt < wallPlacementAttempts; attempt++ {
			length := cfg.WallMinLen
			if cfg.WallMaxLen > cfg.WallMinLen {
				length += rng.Intn(cfg.WallMaxLen - cfg.WallMinLen + 1)
			}

			var cells []Position
			if rng.Float64() < 0.5 { // horizontal
				if e.w < length {
					continue
				}
				y := rng.Intn(e.h)
				x0 := rng.Intn(e.w - length + 1)
				for j := 0; j < length; j++ {
					cells = append(cells, Position{X: x0 + j, Y: y})
				}
			} else { // vertical
				if e.h < length {
					continue
				}
				x := rng.Intn(e.w)
				y0 := rng.Intn(e.h - length + 1)
				for j := 0; j < length; j++ {
					cells = append(cells, Position{X: x, Y: y0 + j})
				}
			}

			blocked := false
			for _, c := range cells {
				if c == e.nest {
					blocked = true
					break
				}
				if _, isFood := food[c]; isFood {
					blocked = true
					break
				}
				if e.At(c) != CellEmpty {
					blocked = true
					break
				}
			}
			if blocked {
				continue
			}

			for _, c := range cells {
				e.cells[e.index(c)] = CellWall
			}
			break
		}
	}
}
