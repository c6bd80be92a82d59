package experiment

import "sort"

// ParameterGrid expands named value ranges into the cross product of every
// combination, in a deterministic order (keys sorted, values in the order
// given). An empty input yields a single empty parameter set.
func ParameterGrid(ranges map[string][]float64) []Params {
	keys := make([]string, 0, len(ranges))
	for k := range ranges {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	grid := []Params{{}}
	for _, key := range keys {
		values := ranges[key]
		next := make([]Params, 0, len(grid)*len(values))
		for _, base := range grid {
			for _, v := range values {
				combo := make(Params, len(base)+1)
				for k, bv := range base {
					combo[k] = bv
				}
				combo[key] = v
				next = append(next, combo)
			}
		}
		grid = next
	}
	return grid
}
