package experiment

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
)

// ThroughputChart renders food-per-tick over time as a PNG, one line per
// distinct parameter set.
func ThroughputChart(points []DataPoint, path string) error {
	if len(points) == 0 {
		return fmt.Errorf("no data points to chart")
	}

	grouped := make(map[string][]DataPoint)
	var labels []string
	for _, p := range points {
		label := paramLabel(p.Params)
		if _, seen := grouped[label]; !seen {
			labels = append(labels, label)
		}
		grouped[label] = append(grouped[label], p)
	}
	sort.Strings(labels)

	series := make([]chart.Series, 0, len(labels))
	for _, label := range labels {
		pts := grouped[label]
		xs := make([]float64, len(pts))
		ys := make([]float64, len(pts))
		for i, p := range pts {
			xs[i] = float64(p.Tick)
			ys[i] = p.Throughput
		}
		series = append(series, chart.ContinuousSeries{
			Name:    label,
			XValues: xs,
			YValues: ys,
		})
	}

	graph := chart.Chart{
		Title:  "Throughput over time",
		XAxis:  chart.XAxis{Name: "Tick"},
		YAxis:  chart.YAxis{Name: "Food per tick"},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(path, func(f *os.File) error {
		return graph.Render(chart.PNG, f)
	})
}

// ComparisonCharts renders the A*-versus-colony bar charts (time to find a
// path, and path length) into dir, averaging trials per wall count. Trials
// where A* found no route are excluded from averages.
func ComparisonCharts(results []ComparisonResult, dir string) error {
	if len(results) == 0 {
		return fmt.Errorf("no comparison results to chart")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating chart dir: %w", err)
	}

	type agg struct {
		n            int
		astarMicros  float64
		astarLen     float64
		antTicks     float64
		antLen       float64
	}
	byWalls := make(map[int]*agg)
	var walls []int
	for _, r := range results {
		if !r.AStarFound {
			continue
		}
		a, ok := byWalls[r.NumWalls]
		if !ok {
			a = &agg{}
			byWalls[r.NumWalls] = a
			walls = append(walls, r.NumWalls)
		}
		a.n++
		a.astarMicros += float64(r.AStarDuration.Microseconds())
		a.astarLen += float64(r.AStarPathLen)
		a.antTicks += float64(r.AntTicksToFind)
		a.antLen += float64(r.AntBestPathLen)
	}
	if len(walls) == 0 {
		return fmt.Errorf("every comparison trial was unreachable, nothing to chart")
	}
	sort.Ints(walls)

	timeBars := make([]chart.Value, 0, len(walls)*2)
	lenBars := make([]chart.Value, 0, len(walls)*2)
	for _, w := range walls {
		a := byWalls[w]
		n := float64(a.n)
		timeBars = append(timeBars,
			chart.Value{Value: a.astarMicros / n, Label: fmt.Sprintf("A* %dw", w)},
			chart.Value{Value: a.antTicks / n, Label: fmt.Sprintf("ants %dw", w)},
		)
		lenBars = append(lenBars,
			chart.Value{Value: a.astarLen / n, Label: fmt.Sprintf("A* %dw", w)},
			chart.Value{Value: a.antLen / n, Label: fmt.Sprintf("ants %dw", w)},
		)
	}

	timeChart := chart.BarChart{
		Title:    "Time to find path: A* (us) vs ants (ticks)",
		Height:   512,
		BarWidth: 40,
		Bars:     timeBars,
	}
	if err := renderPNG(filepath.Join(dir, "direct_time_comparison.png"), func(f *os.File) error {
		return timeChart.Render(chart.PNG, f)
	}); err != nil {
		return err
	}

	lenChart := chart.BarChart{
		Title:    "Path length: A* vs ants (grid steps)",
		Height:   512,
		BarWidth: 40,
		Bars:     lenBars,
	}
	return renderPNG(filepath.Join(dir, "direct_path_comparison.png"), func(f *os.File) error {
		return lenChart.Render(chart.PNG, f)
	})
}

// WriteComparisonCSV persists raw comparison trials to path.
func WriteComparisonCSV(results []ComparisonResult, path string) error {
	if len(results) == 0 {
		return fmt.Errorf("no comparison results to write")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"num_walls", "trial", "seed", "food_x", "food_y",
		"astar_found", "astar_path_length", "astar_micros",
		"ant_ticks_to_find", "ant_best_path_length",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, r := range results {
		row := []string{
			strconv.Itoa(r.NumWalls),
			strconv.Itoa(r.Trial),
			strconv.FormatInt(r.Seed, 10),
			strconv.Itoa(r.FoodPos.X),
			strconv.Itoa(r.FoodPos.Y),
			strconv.FormatBool(r.AStarFound),
			strconv.Itoa(r.AStarPathLen),
			strconv.FormatInt(r.AStarDuration.Microseconds(), 10),
			strconv.Itoa(r.AntTicksToFind),
			strconv.Itoa(r.AntBestPathLen),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func renderPNG(path string, render func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	defer f.Close()
	if err := render(f); err != nil {
		return fmt.Errorf("rendering chart %s: %w", filepath.Base(path), err)
	}
	return nil
}

// paramLabel builds a stable "k=v" label for a parameter set.
func paramLabel(params Params) string {
	if len(params) == 0 {
		return "base"
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%g", k, params[k]))
	}
	return strings.Join(parts, " ")
}
