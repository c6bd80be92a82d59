package colony

import "fmt"

// Cell is the semantic tag of a single grid tile.
type Cell uint8

const (
	CellEmpty Cell = iota
	CellWall
	CellNest
	CellFood
	// CellDepleted marks a former food tile whose units ran out.
	// The transition is one-way: depleted tiles are never refilled.
	CellDepleted
)

// String returns the string representation of the cell tag.
func (c Cell) String() string {
	switch c {
	case CellEmpty:
		return "empty"
	case CellWall:
		return "wall"
	case CellNest:
		return "nest"
	case CellFood:
		return "food"
	case CellDepleted:
		return "depleted"
	default:
		return "unknown"
	}
}

// Position is an integer grid coordinate.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}
