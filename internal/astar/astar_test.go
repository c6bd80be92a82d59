package astar

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musaraza08/ant-colony-optimisation/internal/colony"
)

// gridGraph is a minimal 4-connected test grid with a wall set.
type gridGraph struct {
	width, height int
	walls         map[colony.Position]bool
}

func newGridGraph(width, height int, walls ...colony.Position) *gridGraph {
	g := &gridGraph{width: width, height: height, walls: make(map[colony.Position]bool)}
	for _, w := range walls {
		g.walls[w] = true
	}
	return g
}

func (g *gridGraph) Neighbours(p colony.Position) []colony.Position {
	candidates := []colony.Position{
		{X: p.X + 1, Y: p.Y},
		{X: p.X - 1, Y: p.Y},
		{X: p.X, Y: p.Y + 1},
		{X: p.X, Y: p.Y - 1},
	}
	out := make([]colony.Position, 0, 4)
	for _, c := range candidates {
		if c.X < 0 || c.X >= g.width || c.Y < 0 || c.Y >= g.height {
			continue
		}
		if g.walls[c] {
			continue
		}
		out = append(out, c)
	}
	return out
}

func manhattan(a, b colony.Position) int {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// assertValidPath checks endpoint identity and unit-step continuity.
func assertValidPath(t *testing.T, g Graph, path []colony.Position, start, goal colony.Position) {
	t.Helper()
	require.NotEmpty(t, path)
	assert.Equal(t, start, path[0], "path must start at the start position")
	assert.Equal(t, goal, path[len(path)-1], "path must end at the goal")
	for i := 1; i < len(path); i++ {
		assert.Equal(t, 1, manhattan(path[i-1], path[i]),
			"step %d is not a unit move: %v -> %v", i, path[i-1], path[i])
		assert.Contains(t, g.Neighbours(path[i-1]), path[i],
			"step %d leaves the traversable graph", i)
	}
}

func TestFindPath_OpenGrid(t *testing.T) {
	g := newGridGraph(10, 10)
	start := colony.Position{X: 1, Y: 1}
	goal := colony.Position{X: 7, Y: 4}

	path, found := FindPath(g, start, goal)

	require.True(t, found)
	assertValidPath(t, g, path, start, goal)
	// On an open grid the optimal path length is the Manhattan distance.
	assert.Len(t, path, manhattan(start, goal)+1)
}

func TestFindPath_StartEqualsGoal(t *testing.T) {
	g := newGridGraph(5, 5)
	p := colony.Position{X: 2, Y: 2}

	path, found := FindPath(g, p, p)

	require.True(t, found)
	assert.Equal(t, []colony.Position{p}, path)
}

func TestFindPath_DetoursAroundWall(t *testing.T) {
	// A vertical wall at x=2 with a single gap at y=4 forces a detour.
	walls := []colony.Position{
		{X: 2, Y: 0}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 2, Y: 3},
	}
	g := newGridGraph(5, 5, walls...)
	start := colony.Position{X: 0, Y: 0}
	goal := colony.Position{X: 4, Y: 0}

	path, found := FindPath(g, start, goal)

	require.True(t, found)
	assertValidPath(t, g, path, start, goal)
	// Down to the gap at y=4, across, and back up: 4+4+4 moves.
	assert.Len(t, path, 13)
	assert.Contains(t, path, colony.Position{X: 2, Y: 4}, "path must use the only gap")
}

func TestFindPath_NoRoute(t *testing.T) {
	// The goal is sealed in the corner by two walls.
	g := newGridGraph(5, 5, colony.Position{X: 1, Y: 0}, colony.Position{X: 0, Y: 1})

	path, found := FindPath(g, colony.Position{X: 4, Y: 4}, colony.Position{X: 0, Y: 0})

	assert.False(t, found)
	assert.Nil(t, path)
}

func TestFindPath_Deterministic(t *testing.T) {
	g := newGridGraph(12, 12,
		colony.Position{X: 5, Y: 5}, colony.Position{X: 5, Y: 6}, colony.Position{X: 6, Y: 5})
	start := colony.Position{X: 0, Y: 0}
	goal := colony.Position{X: 11, Y: 11}

	first, found := FindPath(g, start, goal)
	require.True(t, found)

	for i := 0; i < 5; i++ {
		again, ok := FindPath(g, start, goal)
		require.True(t, ok)
		assert.Equal(t, first, again, "run %d returned a different path", i)
	}
}

func TestHeuristic(t *testing.T) {
	assert.Equal(t, 0.0, Heuristic(colony.Position{X: 3, Y: 3}, colony.Position{X: 3, Y: 3}))
	assert.Equal(t, 5.0, Heuristic(colony.Position{X: 0, Y: 0}, colony.Position{X: 3, Y: 4}))
	assert.Equal(t, 2.0, Heuristic(colony.Position{X: 4, Y: 1}, colony.Position{X: 2, Y: 1}))
}

func TestFindPath_ColonyEnvironment(t *testing.T) {
	// The live environment satisfies Graph directly, so the benchmark can
	// search the exact grid a run was played on.
	cfg := colony.DefaultConfig()
	cfg.GridWidth = 9
	cfg.GridHeight = 9
	cfg.Nest = colony.Position{X: 4, Y: 4}
	cfg.FoodPositions = []colony.Position{{X: 0, Y: 0}}
	cfg.NumFoodSources = 0
	cfg.NumWalls = 0
	cfg.Seed = 1

	env, err := colony.NewEnvironment(cfg, rand.New(rand.NewSource(cfg.Seed)))
	require.NoError(t, err)

	path, found := FindPath(env, cfg.Nest, colony.Position{X: 0, Y: 0})

	require.True(t, found)
	assert.Equal(t, cfg.Nest, path[0])
	assert.Equal(t, colony.Position{X: 0, Y: 0}, path[len(path)-1])
	assert.Len(t, path, manhattan(cfg.Nest, colony.Position{X: 0, Y: 0})+1)
}
