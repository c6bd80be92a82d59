package colony

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FoodState is the remaining capacity of one food tile in a snapshot.
type FoodState struct {
	Pos  Position `json:"pos"`
	Left int      `json:"left"`
}

// Snapshot is a point-in-time export of a run: grid tags, trail values,
// ants, food and metrics. It exists for renderers, CSV writers and the
// server's state endpoint; it is not a resume format.
type Snapshot struct {
	RunID  RunID  `json:"run_id,omitempty"`
	Seed   int64  `json:"seed"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	// Row-major (y*width + x), same indexing for both layers.
	Cells     []Cell    `json:"cells"`
	Pheromone []float64 `json:"pheromone"`

	Nest    Position    `json:"nest"`
	Food    []FoodState `json:"food"`
	Ants    []AntView   `json:"ants"`
	Metrics Metrics     `json:"metrics"`
}

// Snapshot captures the run's current state.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Simulation) snapshotLocked() Snapshot {
	cells := make([]Cell, len(s.env.cells))
	copy(cells, s.env.cells)

	food := make([]FoodState, 0, len(s.env.foodPositions))
	for _, p := range s.env.foodPositions {
		food = append(food, FoodState{Pos: p, Left: s.env.foodLeft[p]})
	}

	ants := make([]AntView, len(s.ants))
	for i, a := range s.ants {
		ants[i] = AntView{Pos: a.Pos(), State: a.State()}
	}

	return Snapshot{
		RunID:     s.runID,
		Seed:      s.seed,
		Width:     s.cfg.GridWidth,
		Height:    s.cfg.GridHeight,
		Cells:     cells,
		Pheromone: s.field.Values(),
		Nest:      s.env.Nest(),
		Food:      food,
		Ants:      ants,
		Metrics:   s.metricsLocked(),
	}
}

// ValidateSnapshot checks a snapshot's internal consistency: layer lengths
// match the dimensions, trail values are non-negative, exactly one nest
// cell exists, and food entries sit on food tiles.
func ValidateSnapshot(snap Snapshot) error {
	if snap.Width <= 0 || snap.Height <= 0 {
		return fmt.Errorf("snapshot has invalid dimensions %dx%d", snap.Width, snap.Height)
	}
	size := snap.Width * snap.Height
	if len(snap.Cells) != size {
		return fmt.Errorf("snapshot has %d cells, want %d", len(snap.Cells), size)
	}
	if len(snap.Pheromone) != size {
		return fmt.Errorf("snapshot has %d pheromone values, want %d", len(snap.Pheromone), size)
	}

	nests := 0
	for i, c := range snap.Cells {
		if c > CellDepleted {
			return fmt.Errorf("snapshot cell %d has unknown tag %d", i, c)
		}
		if c == CellNest {
			nests++
		}
	}
	if nests != 1 {
		return fmt.Errorf("snapshot has %d nest cells, want exactly 1", nests)
	}

	for i, v := range snap.Pheromone {
		if v < 0 {
			return fmt.Errorf("snapshot pheromone value %d is negative: %g", i, v)
		}
	}

	for _, f := range snap.Food {
		idx := f.Pos.Y*snap.Width + f.Pos.X
		if f.Pos.X < 0 || f.Pos.X >= snap.Width || f.Pos.Y < 0 || f.Pos.Y >= snap.Height {
			return fmt.Errorf("snapshot food entry %v is out of bounds", f.Pos)
		}
		if snap.Cells[idx] != CellFood {
			return fmt.Errorf("snapshot food entry %v does not sit on a food cell", f.Pos)
		}
		if f.Left <= 0 {
			return fmt.Errorf("snapshot food entry %v has non-positive units %d", f.Pos, f.Left)
		}
	}

	return nil
}

// EncodeSnapshotJSON encodes a snapshot to JSON.
func EncodeSnapshotJSON(snap Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshotJSON decodes and validates a snapshot from JSON.
func DecodeSnapshotJSON(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if err := ValidateSnapshot(snap); err != nil {
		return Snapshot{}, fmt.Errorf("invalid snapshot: %w", err)
	}
	return snap, nil
}

// WriteSnapshotFile writes a snapshot to dir, named by run ID and tick.
// It returns the file path written.
func WriteSnapshotFile(dir string, snap Snapshot) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating snapshot dir: %w", err)
	}
	name := fmt.Sprintf("%s-tick-%d.json", snap.RunID, snap.Metrics.Tick)
	if snap.RunID == "" {
		name = fmt.Sprintf("tick-%d.json", snap.Metrics.Tick)
	}
	path := filepath.Join(dir, name)

	data, err := EncodeSnapshotJSON(snap)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot file: %w", err)
	}
	return path, nil
}

// ReadSnapshotFile reads and validates a snapshot file.
func ReadSnapshotFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading snapshot file: %w", err)
	}
	return DecodeSnapshotJSON(data)
}

// maybeWriteSnapshot writes a periodic snapshot when one is due. Called
// from Tick with the lock held.
func (s *Simulation) maybeWriteSnapshot() {
	if s.snapshotDir == "" || s.snapshotEveryTicks <= 0 {
		return
	}
	if s.tickCount%s.snapshotEveryTicks != 0 {
		return
	}
	if _, err := WriteSnapshotFile(s.snapshotDir, s.snapshotLocked()); err != nil {
		s.logger.Errorf("periodic snapshot failed at tick %d: %v", s.tickCount, err)
	}
}
