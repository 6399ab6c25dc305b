package board

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOutOfBounds   = errors.New("coordinates out of bounds")
	ErrCellOccupied  = errors.New("cell already occupied")
	ErrCellForbidden = errors.New("cell is forbidden")
)

// Board is the 20x20 grid plus the Zobrist hash of the stones on it.
// The hash never includes the side to move; see HashWithTurn.
type Board struct {
	cells    [NumCells]Cell
	hash     uint64
	occupied int // non-empty cells, forbidden included
	stones   int
}

// New returns an empty board.
func New() *Board {
	return &Board{}
}

// Get returns the cell at (x, y) and false if out of bounds.
func (b *Board) Get(x, y int) (Cell, bool) {
	sq, ok := SquareAt(x, y)
	if !ok {
		return Empty, false
	}
	return b.cells[sq], true
}

// At returns the cell at sq.
func (b *Board) At(sq Square) Cell {
	return b.cells[sq]
}

// Set writes a cell without touching the hash. It is meant for bulk uploads,
// which must call RecomputeHash once they are complete.
func (b *Board) Set(x, y int, c Cell) error {
	sq, ok := SquareAt(x, y)
	if !ok {
		return fmt.Errorf("set %d,%d: %w", x, y, ErrOutOfBounds)
	}
	b.count(sq, -1)
	b.cells[sq] = c
	b.count(sq, 1)
	return nil
}

// count adds sign to the counters for whatever is on sq.
func (b *Board) count(sq Square, sign int) {
	c := b.cells[sq]
	if c != Empty {
		b.occupied += sign
	}
	if c.IsStone() {
		b.stones += sign
	}
}

// IsEmpty reports whether (x, y) is on the board and empty.
func (b *Board) IsEmpty(x, y int) bool {
	c, ok := b.Get(x, y)
	return ok && c == Empty
}

// Place puts a stone on an empty square and XORs its key into the hash.
func (b *Board) Place(sq Square, c Cell) {
	b.count(sq, -1)
	b.cells[sq] = c
	b.count(sq, 1)
	b.hash ^= keys.StoneKey(sq, c)
}

// Remove takes the stone off sq, XORing the same key back out.
func (b *Board) Remove(sq Square) {
	b.hash ^= keys.StoneKey(sq, b.cells[sq])
	b.count(sq, -1)
	b.cells[sq] = Empty
}

// Clear empties every cell, forbidden ones included.
func (b *Board) Clear() {
	*b = Board{}
}

// Hash returns the fingerprint of the stones on the board.
func (b *Board) Hash() uint64 {
	return b.hash
}

// HashWithTurn returns the hash used for transposition lookups:
// the stone hash, with the turn key added when the opponent is to move.
func (b *Board) HashWithTurn(side Cell) uint64 {
	if side == Opponent {
		return b.hash ^ keys.TurnKey()
	}
	return b.hash
}

// RecomputeHash rebuilds the hash from scratch.
func (b *Board) RecomputeHash() {
	b.hash = ComputeHash(b)
}

// ComputeHash returns the XOR of stone keys of every occupied cell.
func ComputeHash(b *Board) uint64 {
	var h uint64
	for sq := Square(0); sq < NumCells; sq++ {
		h ^= keys.StoneKey(sq, b.cells[sq])
	}
	return h
}

// IsFull reports whether no empty cell remains.
func (b *Board) IsFull() bool {
	return b.occupied == NumCells
}

// StoneCount returns the number of Mine and Opponent stones.
func (b *Board) StoneCount() int {
	return b.stones
}

// CheckFiveInARow reports whether player has at least five in a line.
// Scanning in raster order, every run is met at its first cell, so stepping
// forward only is enough.
func (b *Board) CheckFiveInARow(player Cell) bool {
	for sq := Square(0); sq < NumCells; sq++ {
		if b.cells[sq] != player {
			continue
		}
		for _, d := range Directions {
			count := 1
			for step := 1; step < 5; step++ {
				next, ok := sq.Offset(d[0], d[1], step)
				if !ok || b.cells[next] != player {
					break
				}
				count++
			}
			if count >= 5 {
				return true
			}
		}
	}
	return false
}

// FiveThrough reports whether the stone on sq is part of a line of five or more.
func (b *Board) FiveThrough(sq Square) bool {
	player := b.cells[sq]
	if !player.IsStone() {
		return false
	}
	for _, d := range Directions {
		if b.RunLength(sq, d[0], d[1], player) >= 5 {
			return true
		}
	}
	return false
}

// MakesFive reports whether placing player on the empty square sq would
// complete five or more in a row. The board is not modified.
func (b *Board) MakesFive(sq Square, player Cell) bool {
	for _, d := range Directions {
		if 1+b.follow(sq, d[0], d[1], player)+b.follow(sq, -d[0], -d[1], player) >= 5 {
			return true
		}
	}
	return false
}

// RunLength returns the number of consecutive player stones through sq along
// (dx, dy), counting sq itself as one of them.
func (b *Board) RunLength(sq Square, dx, dy int, player Cell) int {
	return 1 + b.follow(sq, dx, dy, player) + b.follow(sq, -dx, -dy, player)
}

// follow returns how many consecutive player stones follow sq along (dx, dy).
func (b *Board) follow(sq Square, dx, dy int, player Cell) int {
	n := 0
	for step := 1; ; step++ {
		next, ok := sq.Offset(dx, dy, step)
		if !ok || b.cells[next] != player {
			return n
		}
		n++
	}
}

// String returns a text dump of the board with column and row labels.
func (b *Board) String() string {
	var s strings.Builder
	s.WriteString("   ")
	for x := 0; x < Size; x++ {
		fmt.Fprintf(&s, "%2d", x)
	}
	s.WriteString("\n")
	for y := 0; y < Size; y++ {
		fmt.Fprintf(&s, "%2d ", y)
		for x := 0; x < Size; x++ {
			s.WriteString(" " + b.cells[NewSquare(x, y)].String())
		}
		s.WriteString("\n")
	}
	fmt.Fprintf(&s, "Hash: %016x\n", b.hash)
	return s.String()
}
