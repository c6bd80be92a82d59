package colony

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds every parameter of a simulation run. The zero value is not
// usable; start from DefaultConfig and override what you need.
type Config struct {
	GridWidth  int `json:"grid_width" yaml:"grid_width"`
	GridHeight int `json:"grid_height" yaml:"grid_height"`

	NumAnts int      `json:"num_ants" yaml:"num_ants"`
	Nest    Position `json:"nest" yaml:"nest"`

	// Either a preset list of food positions or a count of randomly
	// placed sources. FoodPositions wins when non-empty.
	FoodPositions  []Position `json:"food_positions,omitempty" yaml:"food_positions,omitempty"`
	NumFoodSources int        `json:"num_food_sources" yaml:"num_food_sources"`
	FoodCapacity   int        `json:"food_capacity" yaml:"food_capacity"`

	NumWalls   int `json:"num_walls" yaml:"num_walls"`
	WallMinLen int `json:"wall_min_len" yaml:"wall_min_len"`
	WallMaxLen int `json:"wall_max_len" yaml:"wall_max_len"`

	// ACO parameters.
	Alpha   float64 `json:"alpha" yaml:"alpha"`     // influence of pheromone
	Beta    float64 `json:"beta" yaml:"beta"`       // influence of heuristic
	Rho     float64 `json:"rho" yaml:"rho"`         // evaporation rate
	Q       float64 `json:"q" yaml:"q"`             // pheromone laid per tour
	Tau0    float64 `json:"tau0" yaml:"tau0"`       // initial trail strength
	Epsilon float64 `json:"epsilon" yaml:"epsilon"` // exploration probability

	// Search steps before an ant gives up and heads home.
	SearchTimeout int `json:"search_timeout" yaml:"search_timeout"`

	// Seed for the run's random source. 0 means pick one at construction
	// time; the chosen seed is always reported via Simulation.Seed.
	Seed int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// DefaultConfig returns the reference configuration: a 50x50 grid with the
// nest at the centre, 50 ants, two food sources and twenty wall segments.
func DefaultConfig() Config {
	return Config{
		GridWidth:      50,
		GridHeight:     50,
		NumAnts:        50,
		Nest:           Position{X: 25, Y: 25},
		NumFoodSources: 2,
		FoodCapacity:   200,
		NumWalls:       20,
		WallMinLen:     5,
		WallMaxLen:     15,
		Alpha:          1.0,
		Beta:           3.0,
		Rho:            0.2,
		Q:              100,
		Tau0:           0.1,
		Epsilon:        0.3,
		SearchTimeout:  100,
		Seed:           1,
	}
}

// Validate checks every parameter range from the construction contract.
// It returns a *ValidationError listing all violations, or nil.
func (c Config) Validate() error {
	err := &ValidationError{}

	if c.GridWidth <= 0 || c.GridHeight <= 0 {
		err.Add(fmt.Sprintf("grid dimensions must be positive, got %dx%d", c.GridWidth, c.GridHeight))
	}
	if c.NumAnts <= 0 {
		err.Add(fmt.Sprintf("num_ants must be positive, got %d", c.NumAnts))
	}
	if !c.inBounds(c.Nest) {
		err.Add(fmt.Sprintf("nest %v is out of bounds", c.Nest))
	}
	for _, p := range c.FoodPositions {
		if !c.inBounds(p) {
			err.Add(fmt.Sprintf("food position %v is out of bounds", p))
		}
		if p == c.Nest {
			err.Add(fmt.Sprintf("food position %v overlaps the nest", p))
		}
	}
	if len(c.FoodPositions) == 0 && c.NumFoodSources <= 0 {
		err.Add("either food_positions or a positive num_food_sources is required")
	}
	if c.FoodCapacity <= 0 {
		err.Add(fmt.Sprintf("food_capacity must be positive, got %d", c.FoodCapacity))
	}
	if c.NumWalls < 0 {
		err.Add(fmt.Sprintf("num_walls must be non-negative, got %d", c.NumWalls))
	}
	if c.NumWalls > 0 {
		if c.WallMinLen <= 0 || c.WallMaxLen < c.WallMinLen {
			err.Add(fmt.Sprintf("wall length range [%d,%d] is invalid", c.WallMinLen, c.WallMaxLen))
		}
		if c.WallMaxLen > c.GridWidth && c.WallMaxLen > c.GridHeight {
			err.Add(fmt.Sprintf("wall_max_len %d does not fit the grid", c.WallMaxLen))
		}
	}
	if c.Alpha < 0 {
		err.Add(fmt.Sprintf("alpha must be non-negative, got %g", c.Alpha))
	}
	if c.Beta < 0 {
		err.Add(fmt.Sprintf("beta must be non-negative, got %g", c.Beta))
	}
	if c.Rho < 0 || c.Rho > 1 {
		err.Add(fmt.Sprintf("rho must be in [0,1], got %g", c.Rho))
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		err.Add(fmt.Sprintf("epsilon must be in [0,1], got %g", c.Epsilon))
	}
	if c.Q < 0 {
		err.Add(fmt.Sprintf("q must be non-negative, got %g", c.Q))
	}
	if c.Tau0 < 0 {
		err.Add(fmt.Sprintf("tau0 must be non-negative, got %g", c.Tau0))
	}
	if c.SearchTimeout <= 0 {
		err.Add(fmt.Sprintf("search_timeout must be positive, got %d", c.SearchTimeout))
	}

	if err.HasIssues() {
		return err
	}
	return nil
}

func (c Config) inBounds(p Position) bool {
	return p.X >= 0 && p.X < c.GridWidth && p.Y >= 0 && p.Y < c.GridHeight
}

// LoadConfig reads a scenario file. The format is chosen by extension:
// .json, .yaml or .yml. The result is validated before being returned.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config YAML: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}
