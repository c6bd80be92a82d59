package colony

// Field holds one non-negative trail-strength value per grid tile.
// Storage is a dense flat slice: every tile participates in the
// evaporation pass each tick, so a sparse map would buy nothing.
type Field struct {
	w, h int
	tau  []float64
}

// NewField creates a pheromone field with every tile set to tau0.
func NewField(w, h int, tau0 float64) *Field {
	f := &Field{
		w:   w,
		h:   h,
		tau: make([]float64, w*h),
	}
	for i := range f.tau {
		f.tau[i] = tau0
	}
	return f
}

func (f *Field) index(p Position) int {
	return p.Y*f.w + p.X
}

// At returns the trail strength at p.
func (f *Field) At(p Position) float64 {
	return f.tau[f.index(p)]
}

// Set overwrites the trail strength at p.
func (f *Field) Set(p Position, v float64) {
	f.tau[f.index(p)] = v
}

// Evaporate applies uniform multiplicative decay to every tile.
// rho must be in [0,1], which keeps every value non-negative.
func (f *Field) Evaporate(rho float64) {
	factor := 1.0 - rho
	for i := range f.tau {
		f.tau[i] *= factor
	}
}

// Deposit adds amount to every tile visited by path. Tiles visited
// more than once accumulate once per visit.
func (f *Field) Deposit(path []Position, amount float64) {
	for _, p := range path {
		f.tau[f.index(p)] += amount
	}
}

// Values returns a copy of the whole field, row-major (y*w + x).
func (f *Field) Values() []float64 {
	out := make([]float64, len(f.tau))
	copy(out, f.tau)
	return out
}
