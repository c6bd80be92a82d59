package experiment

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/musaraza08/ant-colony-optimisation/internal/astar"
	"github.com/musaraza08/ant-colony-optimisation/internal/colony"
)

// ComparisonResult is one trial of A* against the colony on an identical
// scenario: same seed, same walls, one food source.
type ComparisonResult struct {
	NumWalls int
	Trial    int
	Seed     int64
	FoodPos  colony.Position

	AStarFound    bool
	AStarPathLen  int // steps, excluding the start tile
	AStarDuration time.Duration

	AntTicksToFind int // first-pickup tick, 0 when food was never found
	AntBestPathLen int // steps of the shortest recorded tour, 0 when none
}

// RunComparison benchmarks A* against the colony for every wall count,
// running trials independent seeded scenarios each. Both solvers see the
// byte-identical grid: the scenario is regenerated from the trial seed for
// the A* side. Scenarios where A* finds no route are still reported, with
// AStarFound false.
func RunComparison(base colony.Config, wallCounts []int, trials, maxTicks int, logger colony.Logger) ([]ComparisonResult, error) {
	if logger == nil {
		logger = colony.NewNoOpLogger()
	}
	if trials <= 0 || maxTicks <= 0 {
		return nil, fmt.Errorf("trials and max ticks must be positive, got %d and %d", trials, maxTicks)
	}

	var results []ComparisonResult
	for _, walls := range wallCounts {
		logger.Infof("testing with %d walls...", walls)

		for trial := 0; trial < trials; trial++ {
			seed := int64(trial + 2)

			cfg := base
			cfg.NumWalls = walls
			cfg.NumFoodSources = 1
			cfg.FoodPositions = nil
			cfg.Seed = seed
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("comparison config: %w", err)
			}

			// Rebuild the exact scenario the simulation will generate,
			// so A* searches the identical grid.
			env, err := colony.NewEnvironment(cfg, rand.New(rand.NewSource(seed)))
			if err != nil {
				return nil, fmt.Errorf("building comparison environment: %w", err)
			}
			foodPos := env.FoodPositions()[0]

			res := ComparisonResult{
				NumWalls: walls,
				Trial:    trial,
				Seed:     seed,
				FoodPos:  foodPos,
			}

			started := time.Now()
			path, found := astar.FindPath(env, env.Nest(), foodPos)
			res.AStarDuration = time.Since(started)
			res.AStarFound = found
			if found {
				res.AStarPathLen = len(path) - 1
			}

			sim, err := colony.NewSimulation(cfg)
			if err != nil {
				return nil, fmt.Errorf("building comparison simulation: %w", err)
			}
			for tick := 0; tick < maxTicks && !sim.Done(); tick++ {
				sim.Tick()
			}

			res.AntTicksToFind = sim.Metrics().FirstFoodTick
			res.AntBestPathLen = bestTourLen(sim)
			results = append(results, res)

			logger.Infof("  trial %d/%d: astar=%d steps, ants first food at tick %d",
				trial+1, trials, res.AStarPathLen, res.AntTicksToFind)
		}
	}
	return results, nil
}

// bestTourLen returns the step count of the shortest recorded forward tour
// across every food source, or 0 when no tour was recorded.
func bestTourLen(sim *colony.Simulation) int {
	best := 0
	for _, paths := range sim.RecordedPaths() {
		for _, p := range paths {
			if steps := len(p) - 1; best == 0 || steps < best {
				best = steps
			}
		}
	}
	return best
}
