package experiment

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// WriteCSV persists data points to path. Parameter columns are the union
// of every point's parameter names, sorted, prefixed with "param_".
func WriteCSV(points []DataPoint, path string) error {
	if len(points) == 0 {
		return fmt.Errorf("no data points to write")
	}

	paramKeys := map[string]struct{}{}
	for _, p := range points {
		for k := range p.Params {
			paramKeys[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(paramKeys))
	for k := range paramKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"run_id", "tick", "food_collected", "food_delivered", "throughput", "seed"}
	for _, k := range keys {
		header = append(header, "param_"+k)
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, p := range points {
		row := []string{
			p.RunID,
			strconv.Itoa(p.Tick),
			strconv.Itoa(p.FoodCollected),
			strconv.Itoa(p.FoodDelivered),
			strconv.FormatFloat(p.Throughput, 'f', 6, 64),
			strconv.FormatInt(p.Seed, 10),
		}
		for _, k := range keys {
			if v, ok := p.Params[k]; ok {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
