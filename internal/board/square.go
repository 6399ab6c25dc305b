// Package board implements the 20x20 five-in-a-row grid, its cells and position hashing.
package board

import (
	"fmt"
	"strconv"
	"strings"
)

// Board geometry.
const (
	Size     = 20
	NumCells = Size * Size
	Center   = Size / 2
)

// Square is a cell index on the board (0-399), row-major: index = y*Size + x.
type Square uint16

// NoSquare marks the absence of a move.
const NoSquare Square = 0xFFFF

// Directions are the four line orientations a five can be formed along:
// horizontal, vertical, diagonal and anti-diagonal.
var Directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// NewSquare creates a square from x and y coordinates.
// The caller must ensure both are in range.
func NewSquare(x, y int) Square {
	return Square(y*Size + x)
}

// SquareAt returns the square at (x, y) and false if it is off the board.
func SquareAt(x, y int) (Square, bool) {
	if x < 0 || y < 0 || x >= Size || y >= Size {
		return NoSquare, false
	}
	return NewSquare(x, y), true
}

// X returns the column (0-19).
func (sq Square) X() int {
	return int(sq) % Size
}

// Y returns the row (0-19).
func (sq Square) Y() int {
	return int(sq) / Size
}

// Offset returns the square step cells away along direction (dx, dy).
func (sq Square) Offset(dx, dy, step int) (Square, bool) {
	return SquareAt(sq.X()+dx*step, sq.Y()+dy*step)
}

// CenterDistance returns the Manhattan distance to the centre cell.
func (sq Square) CenterDistance() int {
	return abs(sq.X()-Center) + abs(sq.Y()-Center)
}

// String returns the protocol form "x,y".
func (sq Square) String() string {
	if sq == NoSquare {
		return "-"
	}
	return strconv.Itoa(sq.X()) + "," + strconv.Itoa(sq.Y())
}

// ParseSquare parses "x,y", tolerating spaces around either number.
func ParseSquare(s string) (Square, error) {
	parts := strings.Split(strings.ReplaceAll(s, " ", ""), ",")
	if len(parts) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}
	sq, ok := SquareAt(x, y)
	if !ok {
		return NoSquare, fmt.Errorf("square %q: %w", s, ErrOutOfBounds)
	}
	return sq, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
