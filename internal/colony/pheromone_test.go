package colony

import (
	"math"
	"testing"
)

func TestField_NewFieldInitialisesToTau0(t *testing.T) {
	f := NewField(4, 3, 0.5)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			if got := f.At(Position{X: x, Y: y}); got != 0.5 {
				t.Errorf("Expected tau0 0.5 at (%d,%d), got %g", x, y, got)
			}
		}
	}
}

func TestField_Evaporate(t *testing.T) {
	f := NewField(3, 3, 1.0)
	f.Set(Position{X: 1, Y: 1}, 4.0)

	f.Evaporate(0.25)

	if got := f.At(Position{X: 0, Y: 0}); math.Abs(got-0.75) > 1e-12 {
		t.Errorf("Expected 0.75 after evaporation, got %g", got)
	}
	if got := f.At(Position{X: 1, Y: 1}); math.Abs(got-3.0) > 1e-12 {
		t.Errorf("Expected 3.0 after evaporation, got %g", got)
	}

	// rho=1 clears the field, rho=0 is a no-op. Values never go negative.
	f.Evaporate(1.0)
	for _, v := range f.Values() {
		if v != 0 {
			t.Errorf("Expected 0 after full evaporation, got %g", v)
		}
	}
	f.Evaporate(0.5)
	for _, v := range f.Values() {
		if v < 0 {
			t.Errorf("Evaporation produced a negative value: %g", v)
		}
	}
}

func TestField_DepositAccumulatesPerVisit(t *testing.T) {
	f := NewField(3, 1, 0.0)
	path := []Position{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 0}}

	f.Deposit(path, 2.0)

	// (0,0) is visited twice, so it accumulates twice.
	if got := f.At(Position{X: 0, Y: 0}); got != 4.0 {
		t.Errorf("Expected 4.0 on twice-visited tile, got %g", got)
	}
	if got := f.At(Position{X: 1, Y: 0}); got != 2.0 {
		t.Errorf("Expected 2.0 on once-visited tile, got %g", got)
	}
	if got := f.At(Position{X: 2, Y: 0}); got != 0.0 {
		t.Errorf("Expected 0.0 on unvisited tile, got %g", got)
	}
}

func TestField_ValuesIsACopy(t *testing.T) {
	f := NewField(2, 2, 1.0)
	values := f.Values()
	values[0] = 99

	if got := f.At(Position{X: 0, Y: 0}); got != 1.0 {
		t.Errorf("Mutating the Values copy changed the field: %g", got)
	}
}
