package engine

import (
	"sort"

	"github.com/samber/lo"

	"github.com/hailam/pbrain/internal/board"
)

// Candidate generation limits.
const (
	MaxCandidates   = 80
	candidateRadius = 2
	earlyGameStones = 2

	opponentWinBonus = 50000
	centerBonusScale = 10
)

// openingSquares are the only candidates on an empty board, in play order.
var openingSquares = [4]board.Square{
	board.NewSquare(board.Center, board.Center),
	board.NewSquare(board.Center-1, board.Center-1),
	board.NewSquare(board.Center-1, board.Center),
	board.NewSquare(board.Center, board.Center-1),
}

// Candidate is a move with its ordering score.
type Candidate struct {
	Square board.Square
	Score  int
	Mine   ThreatInfo
	Theirs ThreatInfo
}

// GenerateCandidates returns the scored, sorted and truncated list of moves
// worth considering for side. Every returned square is empty and playable.
func GenerateCandidates(b *board.Board, side board.Cell) []Candidate {
	stones := b.StoneCount()
	if stones == 0 {
		out := make([]Candidate, 0, len(openingSquares))
		for _, sq := range openingSquares {
			if b.At(sq) == board.Empty {
				out = append(out, Candidate{Square: sq})
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	var mark [board.NumCells]bool
	squares := make([]board.Square, 0, 128)
	add := func(sq board.Square) {
		if !mark[sq] && b.At(sq) == board.Empty {
			mark[sq] = true
			squares = append(squares, sq)
		}
	}

	early := stones <= earlyGameStones
	if early {
		for _, center := range openingSquares {
			addNeighborhood(center, 1, add)
		}
	}
	for sq := board.Square(0); sq < board.NumCells; sq++ {
		if b.At(sq).IsStone() {
			addNeighborhood(sq, candidateRadius, add)
		}
	}
	if len(squares) == 0 {
		for sq := board.Square(0); sq < board.NumCells; sq++ {
			add(sq)
		}
	}

	other := side.Other()
	cands := make([]Candidate, len(squares))
	for i, sq := range squares {
		mine := AnalyzeThreats(b, sq, side)
		theirs := AnalyzeThreats(b, sq, other)
		score := mine.Score()
		if theirs.IsWinning() {
			score += opponentWinBonus
		} else {
			score += theirs.Score() / 2
		}
		if early {
			score += centerBonus(sq)
		}
		cands[i] = Candidate{Square: sq, Score: score, Mine: mine, Theirs: theirs}
	}

	sortCandidates(cands)
	if len(cands) > MaxCandidates {
		cands = cands[:MaxCandidates]
	}
	return cands
}

// addNeighborhood calls add for every on-board square within Chebyshev
// distance radius of center (center included).
func addNeighborhood(center board.Square, radius int, add func(board.Square)) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if sq, ok := board.SquareAt(center.X()+dx, center.Y()+dy); ok {
				add(sq)
			}
		}
	}
}

func centerBonus(sq board.Square) int {
	bonus := (board.Size - sq.CenterDistance()) * centerBonusScale
	if bonus < 0 {
		return 0
	}
	return bonus
}

// sortCandidates orders by score, then closeness to the centre, then y, then x.
// The order is total so results never depend on generation order.
func sortCandidates(cands []Candidate) {
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		da, db := a.Square.CenterDistance(), b.Square.CenterDistance()
		if da != db {
			return da < db
		}
		if a.Square.Y() != b.Square.Y() {
			return a.Square.Y() < b.Square.Y()
		}
		return a.Square.X() < b.Square.X()
	})
}

// Squares extracts the move list from candidates.
func Squares(cands []Candidate) []board.Square {
	return lo.Map(cands, func(c Candidate, _ int) board.Square {
		return c.Square
	})
}
