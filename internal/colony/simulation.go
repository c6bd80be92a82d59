package colony

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// AntView is a read-only snapshot of one ant for renderers and exporters.
type AntView struct {
	Pos   Position `json:"pos"`
	State AntState `json:"state"`
}

// Metrics is a copy of the coordinator's running counters. Tick numbers are
// 1-based; FirstFoodTick and AllFoodTick are 0 until the event happens.
type Metrics struct {
	Tick          int     `json:"tick"`
	FoodCollected int     `json:"food_collected"`
	FoodDelivered int     `json:"food_delivered"`
	FirstFoodTick int     `json:"first_food_tick"`
	AllFoodTick   int     `json:"all_food_tick"`
	DeliveryTicks []int   `json:"delivery_ticks,omitempty"`
	Throughput    float64 `json:"throughput"`
}

// Simulation is the per-run coordinator. It exclusively owns one grid
// environment, one pheromone field and a fixed population of ants, and
// advances all of them one tick at a time. A Simulation must not be shared
// across runs; batch drivers create one per worker.
type Simulation struct {
	mu sync.RWMutex

	cfg  Config
	seed int64
	rng  *rand.Rand

	runID RunID
	env   *Environment
	field *Field
	ants  []*Ant

	tickCount     int
	foodCollected int
	foodDelivered int
	firstFoodTick int
	allFoodTick   int
	deliveryTicks []int

	// shortest recorded forward tour per food source, built once when the
	// last unit leaves the map
	bestPaths map[Position][]Position

	logger   Logger
	notifier *NotificationManager

	snapshotDir        string
	snapshotEveryTicks int

	stopCh    chan struct{}
	isRunning bool
}

// NewSimulation validates cfg and builds the run: environment, pheromone
// field and ants, all seeded from one random source so a fixed seed yields
// an identical run.
func NewSimulation(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	env, err := NewEnvironment(cfg, rng)
	if err != nil {
		return nil, fmt.Errorf("building environment: %w", err)
	}
	field := NewField(cfg.GridWidth, cfg.GridHeight, cfg.Tau0)

	ants := make([]*Ant, cfg.NumAnts)
	for i := range ants {
		ants[i] = NewAnt(env, field, cfg, rng)
	}

	return &Simulation{
		cfg:    cfg,
		seed:   seed,
		rng:    rng,
		env:    env,
		field:  field,
		ants:   ants,
		logger: NewNoOpLogger(),
		stopCh: make(chan struct{}),
	}, nil
}

// SetLogger replaces the simulation's logger.
func (s *Simulation) SetLogger(logger Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if logger == nil {
		logger = NewNoOpLogger()
	}
	s.logger = logger
}

// SetRunID tags the simulation's events and snapshots with id.
func (s *Simulation) SetRunID(id RunID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID = id
}

// SetNotificationManager wires an event fan-out for this run. Pass nil to
// detach.
func (s *Simulation) SetNotificationManager(nm *NotificationManager) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = nm
}

// SetSnapshotDir sets where periodic snapshots are written.
func (s *Simulation) SetSnapshotDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshotDir = dir
}

// SetSnapshotEveryNTicks sets the periodic snapshot frequency; 0 disables.
func (s *Simulation) SetSnapshotEveryNTicks(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshotEveryTicks = n
}

// Tick advances the run by one discrete step: evaporate the whole field,
// then step every ant in fixed order, then update the aggregate metrics.
func (s *Simulation) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickCount++
	s.field.Evaporate(s.cfg.Rho)

	foodBefore := s.env.RemainingFood()
	sourcesBefore := s.env.FoodPositions()

	delivered := false
	for _, ant := range s.ants {
		out := ant.Step()
		if !out.Delivered {
			continue
		}
		delivered = true
		s.foodDelivered++
		s.deliveryTicks = append(s.deliveryTicks, s.tickCount)
		s.emit(Event{Type: EventDelivery, Pos: &out.Dest, PathLength: out.TourLen})
	}

	foodAfter := s.env.RemainingFood()
	if delta := foodBefore - foodAfter; delta > 0 {
		s.foodCollected += delta
		if s.firstFoodTick == 0 {
			s.firstFoodTick = s.tickCount
			s.logger.Infof("first food picked up at tick %d", s.tickCount)
			s.emit(Event{Type: EventFirstFood})
		}
	}

	for _, p := range depletedSources(sourcesBefore, s.env) {
		pos := p
		s.logger.Infof("food source %v depleted at tick %d", pos, s.tickCount)
		s.emit(Event{Type: EventFoodDepleted, Pos: &pos})
	}

	if foodAfter == 0 && s.allFoodTick == 0 {
		s.allFoodTick = s.tickCount
		s.buildBestPaths()
		s.logger.Infof("all food collected at tick %d", s.tickCount)
		s.emit(Event{Type: EventAllFoodCollected})
	} else if s.allFoodTick != 0 && delivered {
		// Ants still walking home when the last unit left the map record
		// their tours after the table was first built.
		s.buildBestPaths()
	}

	s.maybeWriteSnapshot()
}

// emit must be called with the lock held.
func (s *Simulation) emit(e Event) {
	if s.notifier == nil {
		return
	}
	e.RunID = s.runID
	e.Tick = s.tickCount
	e.Timestamp = time.Now().Unix()
	s.notifier.Broadcast(e)
}

// depletedSources returns the members of before that no longer hold food.
func depletedSources(before []Position, env *Environment) []Position {
	var out []Position
	for _, p := range before {
		if env.At(p) == CellDepleted {
			out = append(out, p)
		}
	}
	return out
}

func (s *Simulation) buildBestPaths() {
	recorded := s.env.PathsByFood()
	if len(recorded) == 0 {
		return
	}
	s.bestPaths = make(map[Position][]Position, len(recorded))
	for food, paths := range recorded {
		best := paths[0]
		for _, p := range paths[1:] {
			if len(p) < len(best) {
				best = p
			}
		}
		s.bestPaths[food] = best
	}
}

// Run steps the simulation on its own ticker until Stop is called. It can
// be called again after stopping.
func (s *Simulation) Run(interval time.Duration) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.stopCh = make(chan struct{})
	s.isRunning = true
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Tick()
			case <-s.stopCh:
				s.mu.Lock()
				s.isRunning = false
				s.mu.Unlock()
				return
			}
		}
	}()
}

// Stop halts a Run loop. Safe to call when not running.
func (s *Simulation) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	close(s.stopCh)
}

// IsRunning reports whether a Run loop is active.
func (s *Simulation) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Config returns the run's configuration.
func (s *Simulation) Config() Config { return s.cfg }

// Seed returns the seed the run was built from, reported even when the
// config left it to be picked at construction time.
func (s *Simulation) Seed() int64 { return s.seed }

// RunID returns the run's identifier.
func (s *Simulation) RunID() RunID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runID
}

// Metrics returns a copy of the aggregate counters.
func (s *Simulation) Metrics() Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metricsLocked()
}

func (s *Simulation) metricsLocked() Metrics {
	return Metrics{
		Tick:          s.tickCount,
		FoodCollected: s.foodCollected,
		FoodDelivered: s.foodDelivered,
		FirstFoodTick: s.firstFoodTick,
		AllFoodTick:   s.allFoodTick,
		DeliveryTicks: append([]int(nil), s.deliveryTicks...),
		Throughput:    s.throughputLocked(),
	}
}

// Throughput is food delivered per elapsed tick. Derived, never stored.
func (s *Simulation) Throughput() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.throughputLocked()
}

func (s *Simulation) throughputLocked() float64 {
	if s.tickCount == 0 {
		return 0
	}
	return float64(s.foodDelivered) / float64(s.tickCount)
}

// Width returns the grid width.
func (s *Simulation) Width() int { return s.cfg.GridWidth }

// Height returns the grid height.
func (s *Simulation) Height() int { return s.cfg.GridHeight }

// Nest returns the nest position.
func (s *Simulation) Nest() Position { return s.cfg.Nest }

// CellAt returns the cell tag at p.
func (s *Simulation) CellAt(p Position) Cell {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.env.At(p)
}

// Cells returns a row-major copy of every cell tag.
func (s *Simulation) Cells() []Cell {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Cell, len(s.env.cells))
	copy(out, s.env.cells)
	return out
}

// PheromoneAt returns the trail strength at p.
func (s *Simulation) PheromoneAt(p Position) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.field.At(p)
}

// PheromoneValues returns a row-major copy of the whole field.
func (s *Simulation) PheromoneValues() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.field.Values()
}

// Ants returns a snapshot of every ant's position and state, in the fixed
// iteration order used by Tick.
func (s *Simulation) Ants() []AntView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AntView, len(s.ants))
	for i, a := range s.ants {
		out[i] = AntView{Pos: a.Pos(), State: a.State()}
	}
	return out
}

// RecordedPaths returns every successful forward tour grouped by food tile.
func (s *Simulation) RecordedPaths() map[Position][][]Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.env.PathsByFood()
}

// BestPaths returns the shortest recorded tour per food source. Empty until
// all food has been collected.
func (s *Simulation) BestPaths() map[Position][]Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Position][]Position, len(s.bestPaths))
	for food, path := range s.bestPaths {
		out[food] = append([]Position(nil), path...)
	}
	return out
}

// RemainingFood returns the units still on the map.
func (s *Simulation) RemainingFood() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.env.RemainingFood()
}

// TotalFood returns the units the map started with.
func (s *Simulation) TotalFood() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.env.TotalFood()
}

// Done reports the run's terminal condition: every food source depleted.
func (s *Simulation) Done() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allFoodTick != 0
}
