package colony

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// RunID is a unique identifier for a simulation run.
type RunID string

// RunManager holds multiple simulation runs, each fully isolated from the
// others. It exists for hosts (the HTTP server) that drive several runs at
// once; a run is only ever ticked through its own coordinator.
type RunManager struct {
	mu     sync.RWMutex
	runs   map[RunID]*Simulation
	logger Logger
}

// NewRunManager creates an empty run manager with a no-op logger.
func NewRunManager() *RunManager {
	return NewRunManagerWithLogger(NewNoOpLogger())
}

// NewRunManagerWithLogger creates an empty run manager logging through
// logger; created runs inherit it.
func NewRunManagerWithLogger(logger Logger) *RunManager {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	return &RunManager{
		runs:   make(map[RunID]*Simulation),
		logger: logger,
	}
}

// CreateRun builds a new simulation from cfg and registers it under id.
// An empty id gets a generated UUID. The assigned ID is returned.
func (rm *RunManager) CreateRun(id RunID, cfg Config) (RunID, error) {
	if id == "" {
		id = RunID(uuid.NewString())
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if _, exists := rm.runs[id]; exists {
		return "", fmt.Errorf("run with id %s already exists", id)
	}

	sim, err := NewSimulation(cfg)
	if err != nil {
		return "", fmt.Errorf("creating run %s: %w", id, err)
	}
	sim.SetRunID(id)
	sim.SetLogger(rm.logger)

	rm.runs[id] = sim
	return id, nil
}

// GetRun retrieves a run by ID.
func (rm *RunManager) GetRun(id RunID) (*Simulation, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	sim, exists := rm.runs[id]
	return sim, exists
}

// DeleteRun stops and removes a run by ID.
func (rm *RunManager) DeleteRun(id RunID) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	sim, exists := rm.runs[id]
	if !exists {
		return fmt.Errorf("run with id %s does not exist", id)
	}
	sim.Stop()
	delete(rm.runs, id)
	return nil
}

// ListRuns returns the IDs of every registered run.
func (rm *RunManager) ListRuns() []RunID {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	ids := make([]RunID, 0, len(rm.runs))
	for id := range rm.runs {
		ids = append(ids, id)
	}
	return ids
}

// StopAll stops every running simulation. Used at server shutdown.
func (rm *RunManager) StopAll() {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	for _, sim := range rm.runs {
		sim.Stop()
	}
}
