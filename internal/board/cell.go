package board

// Cell is the content of a board square.
type Cell uint8

const (
	Empty Cell = iota
	Mine
	Opponent
	Forbidden // never playable, set only by board uploads
)

// IsStone returns true for Mine and Opponent.
func (c Cell) IsStone() bool {
	return c == Mine || c == Opponent
}

// Other returns the opposing stone colour. Non-stones map to themselves.
func (c Cell) Other() Cell {
	switch c {
	case Mine:
		return Opponent
	case Opponent:
		return Mine
	}
	return c
}

// Index returns 0 for Mine and 1 for Opponent, for per-player tables.
func (c Cell) Index() int {
	return int(c) - 1
}

// String returns the single character used in board dumps.
func (c Cell) String() string {
	switch c {
	case Mine:
		return "X"
	case Opponent:
		return "O"
	case Forbidden:
		return "F"
	}
	return "."
}

// CellFromField converts a BOARD upload field value (1 own, 2 opponent, 3 forbidden).
func CellFromField(field int) Cell {
	switch field {
	case 1:
		return Mine
	case 2:
		return Opponent
	case 3:
		return Forbidden
	}
	return Empty
}
