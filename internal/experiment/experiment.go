// Package experiment drives headless simulation runs: single parameterised
// experiments, cross-product parameter sweeps executed in parallel, CSV
// output, chart rendering and the A*-versus-colony comparison.
package experiment

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/musaraza08/ant-colony-optimisation/internal/colony"
)

// Params is a set of named overrides applied on top of a base config.
// Keys are the snake_case parameter names used in CSV column headers.
type Params map[string]float64

// DataPoint is one windowed measurement of a running experiment.
type DataPoint struct {
	RunID         string
	Tick          int
	FoodCollected int
	FoodDelivered int
	// Throughput is food collected per tick over the sampling window.
	Throughput float64
	Seed       int64
	Params     Params
}

// Options bound a single experiment run.
type Options struct {
	// MaxTicks stops the run even if food remains.
	MaxTicks int
	// WindowSize is the sampling interval in ticks.
	WindowSize int
}

// DefaultOptions mirrors the reference experiment setup.
func DefaultOptions() Options {
	return Options{MaxTicks: 10000, WindowSize: 60}
}

// ApplyParams returns base with every override applied. Unknown parameter
// names are an error so a typo in a sweep definition fails loudly instead
// of silently sweeping nothing.
func ApplyParams(base colony.Config, params Params) (colony.Config, error) {
	cfg := base
	for key, v := range params {
		switch key {
		case "alpha":
			cfg.Alpha = v
		case "beta":
			cfg.Beta = v
		case "rho":
			cfg.Rho = v
		case "epsilon":
			cfg.Epsilon = v
		case "q":
			cfg.Q = v
		case "tau0":
			cfg.Tau0 = v
		case "num_ants":
			cfg.NumAnts = int(v)
		case "num_walls":
			cfg.NumWalls = int(v)
		case "num_food_sources":
			cfg.NumFoodSources = int(v)
		case "food_capacity":
			cfg.FoodCapacity = int(v)
		case "search_timeout":
			cfg.SearchTimeout = int(v)
		case "seed":
			cfg.Seed = int64(v)
		default:
			return colony.Config{}, fmt.Errorf("unknown parameter %q", key)
		}
	}
	return cfg, nil
}

// Run executes one headless simulation with params applied to base,
// sampling a data point every window and a final point when the run ends.
// The run stops at the all-food tick or at opts.MaxTicks.
func Run(base colony.Config, params Params, opts Options) ([]DataPoint, error) {
	if opts.MaxTicks <= 0 || opts.WindowSize <= 0 {
		return nil, fmt.Errorf("max ticks and window size must be positive, got %d and %d", opts.MaxTicks, opts.WindowSize)
	}

	cfg, err := ApplyParams(base, params)
	if err != nil {
		return nil, err
	}

	sim, err := colony.NewSimulation(cfg)
	if err != nil {
		return nil, fmt.Errorf("building simulation: %w", err)
	}

	runID := uuid.NewString()
	var points []DataPoint
	lastCollected := 0

	for tick := 1; tick <= opts.MaxTicks; tick++ {
		sim.Tick()

		if tick%opts.WindowSize == 0 {
			m := sim.Metrics()
			inWindow := m.FoodCollected - lastCollected
			points = append(points, DataPoint{
				RunID:         runID,
				Tick:          tick,
				FoodCollected: m.FoodCollected,
				FoodDelivered: m.FoodDelivered,
				Throughput:    float64(inWindow) / float64(opts.WindowSize),
				Seed:          sim.Seed(),
				Params:        params,
			})
			lastCollected = m.FoodCollected
		}

		if sim.Done() {
			break
		}
	}

	// Final point at the actual end tick, unless a window just covered it.
	m := sim.Metrics()
	if len(points) == 0 || points[len(points)-1].Tick < m.Tick {
		points = append(points, DataPoint{
			RunID:         runID,
			Tick:          m.Tick,
			FoodCollected: m.FoodCollected,
			FoodDelivered: m.FoodDelivered,
			Throughput:    windowRate(m.FoodCollected, lastCollected, m.Tick, opts.WindowSize),
			Seed:          sim.Seed(),
			Params:        params,
		})
	}

	return points, nil
}

func windowRate(collected, lastCollected, tick, window int) float64 {
	remainder := tick % window
	if remainder == 0 {
		remainder = window
	}
	return float64(collected-lastCollected) / math.Max(1, float64(remainder))
}
