package colony

import (
	"math"
	"math/rand"
)

// AntState is the behaviour state of an ant.
type AntState uint8

const (
	// StateSearching: the ant walks the stochastic decision rule looking
	// for food. Initial state, re-entered after every delivery.
	StateSearching AntState = iota
	// StateReturning: the ant retraces its forward tour back to the nest.
	StateReturning
)

// String returns the string representation of the state.
func (s AntState) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateReturning:
		return "returning"
	default:
		return "unknown"
	}
}

// Ant is a single stochastic forager. It holds non-owning references to the
// coordinator's environment and pheromone field; all of its mutations happen
// inside the coordinator's sequential tick, so it carries no locking.
type Ant struct {
	env   *Environment
	field *Field
	rng   *rand.Rand

	alpha         float64
	beta          float64
	epsilon       float64
	q             float64
	tau0          float64
	searchTimeout int

	pos   Position
	state AntState

	// path is the forward tour since leaving the nest, nest included.
	path []Position
	// returnStack is the remaining way home, walked front to back.
	returnStack []Position
	// depositPath is the frozen copy of the tour that reached food,
	// empty for failed tours (timeout, depleted destination).
	depositPath []Position
	skipDeposit bool

	stepsSinceNest int
}

// NewAnt creates an ant at the nest in the searching state. env and field
// are shared with every other ant of the same run; rng is the run's random
// source.
func NewAnt(env *Environment, field *Field, cfg Config, rng *rand.Rand) *Ant {
	a := &Ant{
		env:           env,
		field:         field,
		rng:           rng,
		alpha:         cfg.Alpha,
		beta:          cfg.Beta,
		epsilon:       cfg.Epsilon,
		q:             cfg.Q,
		tau0:          cfg.Tau0,
		searchTimeout: cfg.SearchTimeout,
	}
	a.reset()
	return a
}

// Pos returns the ant's current position.
func (a *Ant) Pos() Position { return a.pos }

// State returns the ant's current behaviour state.
func (a *Ant) State() AntState { return a.state }

// Path returns a copy of the forward tour walked so far.
func (a *Ant) Path() []Position {
	return append([]Position(nil), a.path...)
}

// StepOutcome reports what a single ant step produced, so the coordinator
// can update its delivery metrics without reaching into the ant.
type StepOutcome struct {
	// Delivered is true when the ant arrived at the nest carrying food.
	Delivered bool
	// TourLen is the forward tour length of the delivered tour.
	TourLen int
	// Dest is the food tile the delivered tour reached.
	Dest Position
}

// Step advances the ant by one action, dispatching on its state.
func (a *Ant) Step() StepOutcome {
	switch a.state {
	case StateSearching:
		a.searchStep()
		return StepOutcome{}
	case StateReturning:
		return a.returnStep()
	default:
		return StepOutcome{}
	}
}

func (a *Ant) searchStep() {
	a.stepsSinceNest++
	if a.stepsSinceNest > a.searchTimeout {
		// Give up and head home without recording or depositing.
		a.startReturn(nil, true)
		return
	}

	neighbours := a.env.Neighbours(a.pos)

	// Exclude the tile we just came from so the ant does not oscillate,
	// unless it is the only way out.
	if len(a.path) > 1 {
		prev := a.path[len(a.path)-2]
		filtered := make([]Position, 0, len(neighbours))
		for _, n := range neighbours {
			if n != prev {
				filtered = append(filtered, n)
			}
		}
		if len(filtered) > 0 {
			neighbours = filtered
		}
	}

	if len(neighbours) == 0 {
		// Walled in completely. Start over from the nest.
		a.reset()
		return
	}

	weights := make([]float64, len(neighbours))
	for i, n := range neighbours {
		weights[i] = math.Pow(a.field.At(n), a.alpha) * math.Pow(a.heuristic(n), a.beta)
	}

	var next Position
	if a.rng.Float64() < a.epsilon {
		// Exploration: ignore pheromone and heuristic entirely.
		next = neighbours[a.rng.Intn(len(neighbours))]
	} else if idx, ok := sampleIndex(a.rng, weights); ok {
		next = neighbours[idx]
	} else {
		// Degenerate all-zero distribution.
		next = neighbours[a.rng.Intn(len(neighbours))]
	}

	a.moveTo(next)

	switch a.env.At(a.pos) {
	case CellFood:
		tour := append([]Position(nil), a.path...)
		a.env.ConsumeFood(a.pos, a.field)
		if a.env.At(a.pos) == CellDepleted {
			// Took the last unit: wipe the trail so followers stop
			// converging on an empty tile, and skip the deposit.
			a.wipeTrail()
			a.startReturn(tour, true)
			return
		}
		a.startReturn(tour, false)
	case CellDepleted:
		// Arrived at an already empty source: failed tour.
		a.wipeTrail()
		a.startReturn(nil, true)
	}
}

// returnStep walks one tile back along the reversed forward tour.
func (a *Ant) returnStep() StepOutcome {
	next := a.env.Nest()
	if len(a.returnStack) > 0 {
		next = a.returnStack[0]
		a.returnStack = a.returnStack[1:]
	}
	a.moveTo(next)

	if a.env.At(a.pos) != CellNest {
		return StepOutcome{}
	}

	var out StepOutcome
	if len(a.depositPath) > 0 {
		dest := a.depositPath[len(a.depositPath)-1]
		a.env.RecordPath(dest, a.depositPath)
		if !a.skipDeposit {
			a.field.Deposit(a.depositPath, a.q/float64(len(a.depositPath)))
		}
		out = StepOutcome{Delivered: true, TourLen: len(a.depositPath), Dest: dest}
	}
	a.reset()
	return out
}

// heuristic estimates the desirability of p as the inverse distance to the
// nearest tile still holding food. The +1 offset keeps it finite on a food
// tile. With no food left it degrades to zero, which pushes the decision
// rule into its uniform fallback.
func (a *Ant) heuristic(p Position) float64 {
	d, ok := a.env.NearestFoodDistance(p)
	if !ok {
		return 0
	}
	return 1.0 / (1.0 + d)
}

func (a *Ant) moveTo(p Position) {
	a.pos = p
	a.path = append(a.path, p)
}

// startReturn flips the ant into the returning state. tour is the forward
// tour to record and reinforce at the nest (nil for failed tours); skip
// suppresses the pheromone deposit while still recording the tour.
func (a *Ant) startReturn(tour []Position, skip bool) {
	a.depositPath = tour
	a.skipDeposit = skip
	a.returnStack = reversedInterior(a.path)
	a.state = StateReturning
}

// wipeTrail resets the trail along the current forward tour to tau0.
func (a *Ant) wipeTrail() {
	for _, p := range a.path {
		a.field.Set(p, a.tau0)
	}
}

func (a *Ant) reset() {
	a.pos = a.env.Nest()
	a.state = StateSearching
	a.path = a.path[:0]
	a.path = append(a.path, a.pos)
	a.returnStack = nil
	a.depositPath = nil
	a.skipDeposit = false
	a.stepsSinceNest = 0
}

// reversedInterior returns path[:len-1] reversed: the way back home,
// excluding the tile the walker stands on.
func reversedInterior(path []Position) []Position {
	if len(path) < 2 {
		return nil
	}
	out := make([]Position, 0, len(path)-1)
	for i := len(path) - 2; i >= 0; i-- {
		out = append(out, path[i])
	}
	return out
}

// sampleIndex draws one index from the distribution proportional to
// weights, using rng as the only source of randomness. ok is false when
// the weights sum to zero (or are empty), in which case the caller must
// fall back to a uniform choice.
func sampleIndex(rng *rand.Rand, weights []float64) (idx int, ok bool) {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0, false
	}
	r := rng.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return i, true
		}
	}
	// Floating point slack: the loop can fall through when r is within an
	// ulp of total.
	return len(weights) - 1, true
}
