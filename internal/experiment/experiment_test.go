package experiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musaraza08/ant-colony-optimisation/internal/colony"
)

// experimentBaseConfig is a small scenario with pinned food, sized so a run
// finishes well inside the tick budgets used below.
func experimentBaseConfig() colony.Config {
	cfg := colony.DefaultConfig()
	cfg.GridWidth = 7
	cfg.GridHeight = 7
	cfg.Nest = colony.Position{X: 3, Y: 3}
	cfg.NumAnts = 5
	cfg.FoodPositions = []colony.Position{{X: 0, Y: 0}}
	cfg.NumFoodSources = 0
	cfg.FoodCapacity = 3
	cfg.NumWalls = 0
	cfg.SearchTimeout = 50
	cfg.Seed = 1
	return cfg
}

func TestApplyParams(t *testing.T) {
	base := experimentBaseConfig()

	cfg, err := ApplyParams(base, Params{
		"alpha":            2.0,
		"beta":             3.5,
		"rho":              0.2,
		"epsilon":          0.05,
		"q":                80,
		"tau0":             0.5,
		"num_ants":         12,
		"num_walls":        4,
		"num_food_sources": 2,
		"food_capacity":    40,
		"search_timeout":   300,
		"seed":             99,
	})
	require.NoError(t, err)

	assert.Equal(t, 2.0, cfg.Alpha)
	assert.Equal(t, 3.5, cfg.Beta)
	assert.Equal(t, 0.2, cfg.Rho)
	assert.Equal(t, 0.05, cfg.Epsilon)
	assert.Equal(t, 80.0, cfg.Q)
	assert.Equal(t, 0.5, cfg.Tau0)
	assert.Equal(t, 12, cfg.NumAnts)
	assert.Equal(t, 4, cfg.NumWalls)
	assert.Equal(t, 2, cfg.NumFoodSources)
	assert.Equal(t, 40, cfg.FoodCapacity)
	assert.Equal(t, 300, cfg.SearchTimeout)
	assert.Equal(t, int64(99), cfg.Seed)

	// The base config is never mutated.
	assert.Equal(t, experimentBaseConfig(), base)
}

func TestApplyParams_UnknownKey(t *testing.T) {
	_, err := ApplyParams(experimentBaseConfig(), Params{"evaporation": 0.1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evaporation")
}

func TestParameterGrid(t *testing.T) {
	grid := ParameterGrid(map[string][]float64{
		"alpha": {1, 2},
		"rho":   {0.1, 0.2, 0.3},
	})

	require.Len(t, grid, 6)
	// Keys sorted, values in the order given.
	assert.Equal(t, Params{"alpha": 1, "rho": 0.1}, grid[0])
	assert.Equal(t, Params{"alpha": 1, "rho": 0.2}, grid[1])
	assert.Equal(t, Params{"alpha": 2, "rho": 0.3}, grid[5])

	for _, combo := range grid {
		assert.Len(t, combo, 2)
	}
}

func TestParameterGrid_Empty(t *testing.T) {
	grid := ParameterGrid(nil)
	require.Len(t, grid, 1)
	assert.Empty(t, grid[0])
}

func TestRun(t *testing.T) {
	opts := Options{MaxTicks: 5000, WindowSize: 10}

	points, err := Run(experimentBaseConfig(), Params{"alpha": 1.5}, opts)
	require.NoError(t, err)
	require.NotEmpty(t, points)

	for i, p := range points {
		assert.Equal(t, points[0].RunID, p.RunID, "every point carries the run ID")
		assert.Equal(t, int64(1), p.Seed)
		assert.Equal(t, Params{"alpha": 1.5}, p.Params)
		if i > 0 {
			assert.Greater(t, p.Tick, points[i-1].Tick)
			assert.GreaterOrEqual(t, p.FoodCollected, points[i-1].FoodCollected)
		}
		if i < len(points)-1 {
			assert.Equal(t, 0, p.Tick%opts.WindowSize, "interior points land on window boundaries")
		}
	}

	last := points[len(points)-1]
	assert.Equal(t, 3, last.FoodCollected, "the run collects every unit")
	assert.LessOrEqual(t, last.Tick, opts.MaxTicks)
}

func TestRun_MaxTicksStopsEarly(t *testing.T) {
	// A huge capacity cannot be exhausted in 20 ticks, so MaxTicks binds.
	cfg := experimentBaseConfig()
	cfg.FoodCapacity = 100000

	points, err := Run(cfg, nil, Options{MaxTicks: 20, WindowSize: 7})
	require.NoError(t, err)
	require.NotEmpty(t, points)
	assert.Equal(t, 20, points[len(points)-1].Tick)
}

func TestRun_InvalidOptions(t *testing.T) {
	_, err := Run(experimentBaseConfig(), nil, Options{MaxTicks: 0, WindowSize: 10})
	assert.Error(t, err)

	_, err = Run(experimentBaseConfig(), nil, Options{MaxTicks: 100, WindowSize: 0})
	assert.Error(t, err)

	_, err = Run(experimentBaseConfig(), Params{"bogus": 1}, DefaultOptions())
	assert.Error(t, err)
}

func TestRunBatch(t *testing.T) {
	paramSets := []Params{
		{"alpha": 0.5},
		{"alpha": 1.0},
		{"alpha": 2.0},
		{"rho": -1}, // invalid, must surface as a per-set error
	}
	opts := Options{MaxTicks: 200, WindowSize: 50}

	results := RunBatch(experimentBaseConfig(), paramSets, opts, 8, nil)

	require.Len(t, results, len(paramSets))
	for i, r := range results {
		assert.Equal(t, paramSets[i], r.Params, "results keep the input order")
	}
	for _, r := range results[:3] {
		assert.NoError(t, r.Err)
		assert.NotEmpty(t, r.Points)
	}
	assert.Error(t, results[3].Err)
	assert.Empty(t, results[3].Points)

	points, err := CollectPoints(results)
	assert.Error(t, err, "the failed set's error surfaces")
	assert.NotEmpty(t, points, "successful sets still contribute points")
}
