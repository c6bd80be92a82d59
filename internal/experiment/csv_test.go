package experiment

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musaraza08/ant-colony-optimisation/internal/colony"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteCSV(t *testing.T) {
	points := []DataPoint{
		{RunID: "r1", Tick: 60, FoodCollected: 4, FoodDelivered: 3, Throughput: 0.066667, Seed: 7, Params: Params{"alpha": 1, "rho": 0.1}},
		{RunID: "r1", Tick: 120, FoodCollected: 9, FoodDelivered: 8, Throughput: 0.083333, Seed: 7, Params: Params{"alpha": 1, "rho": 0.1}},
		{RunID: "r2", Tick: 60, FoodCollected: 2, FoodDelivered: 2, Throughput: 0.033333, Seed: 8, Params: Params{"beta": 2}},
	}
	path := filepath.Join(t.TempDir(), "sweep.csv")

	require.NoError(t, WriteCSV(points, path))

	rows := readCSV(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t,
		[]string{"run_id", "tick", "food_collected", "food_delivered", "throughput", "seed", "param_alpha", "param_beta", "param_rho"},
		rows[0])

	assert.Equal(t, []string{"r1", "60", "4", "3", "0.066667", "7", "1", "", "0.1"}, rows[1])
	// Points without a given parameter leave its column empty.
	assert.Equal(t, []string{"r2", "60", "2", "2", "0.033333", "8", "", "2", ""}, rows[3])
}

func TestWriteCSV_NoPoints(t *testing.T) {
	err := WriteCSV(nil, filepath.Join(t.TempDir(), "empty.csv"))
	assert.Error(t, err)
}

func TestWriteComparisonCSV(t *testing.T) {
	results := []ComparisonResult{
		{
			NumWalls: 5, Trial: 0, Seed: 2, FoodPos: colony.Position{X: 3, Y: 8},
			AStarFound: true, AStarPathLen: 11, AStarDuration: 250 * time.Microsecond,
			AntTicksToFind: 42, AntBestPathLen: 13,
		},
		{
			NumWalls: 20, Trial: 1, Seed: 3, FoodPos: colony.Position{X: 1, Y: 1},
			AStarFound: false,
		},
	}
	path := filepath.Join(t.TempDir(), "comparison.csv")

	require.NoError(t, WriteComparisonCSV(results, path))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t,
		[]string{"num_walls", "trial", "seed", "food_x", "food_y",
			"astar_found", "astar_path_length", "astar_micros",
			"ant_ticks_to_find", "ant_best_path_length"},
		rows[0])
	assert.Equal(t, []string{"5", "0", "2", "3", "8", "true", "11", "250", "42", "13"}, rows[1])
	assert.Equal(t, []string{"20", "1", "3", "1", "1", "false", "0", "0", "0", "0"}, rows[2])
}

func TestWriteComparisonCSV_NoResults(t *testing.T) {
	err := WriteComparisonCSV(nil, filepath.Join(t.TempDir(), "empty.csv"))
	assert.Error(t, err)
}

func TestParamLabel(t *testing.T) {
	assert.Equal(t, "base", paramLabel(nil))
	assert.Equal(t, "alpha=1.5 rho=0.1", paramLabel(Params{"rho": 0.1, "alpha": 1.5}))
}

func TestThroughputChart(t *testing.T) {
	points := []DataPoint{
		{RunID: "r1", Tick: 60, Throughput: 0.05, Params: Params{"alpha": 1}},
		{RunID: "r1", Tick: 120, Throughput: 0.08, Params: Params{"alpha": 1}},
		{RunID: "r2", Tick: 60, Throughput: 0.02, Params: Params{"alpha": 2}},
		{RunID: "r2", Tick: 120, Throughput: 0.04, Params: Params{"alpha": 2}},
	}
	path := filepath.Join(t.TempDir(), "throughput.png")

	require.NoError(t, ThroughputChart(points, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Error(t, ThroughputChart(nil, path))
}
