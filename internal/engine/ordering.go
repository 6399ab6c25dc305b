package engine

import (
	"github.com/hailam/pbrain/internal/board"
)

// Move ordering priorities
const (
	TTMoveScore  = 10000000 // TT move gets highest priority
	KillerScore1 = 900000   // First killer move
	KillerScore2 = 800000   // Second killer move

	historyLimit = 400000
)

// MoveOrderer holds the killer and history tables. Both persist across moves
// of one game and are cleared on start and restart.
type MoveOrderer struct {
	// Killer moves (moves that caused beta cutoffs), indexed by remaining depth
	killers [MaxDepth + 1][2]board.Square

	// History heuristic, indexed by [player][square]
	history [2][board.NumCells]int
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	mo := &MoveOrderer{}
	mo.Clear()
	return mo
}

// Clear resets killers and history.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoSquare
		mo.killers[i][1] = board.NoSquare
	}
	mo.history = [2][board.NumCells]int{}
}

// ScoreMoves assigns ordering scores: TT move, then killers at this depth,
// then history.
func (mo *MoveOrderer) ScoreMoves(moves []board.Square, side board.Cell, depth int, ttMove board.Square) []int {
	scores := make([]int, len(moves))
	for i, m := range moves {
		scores[i] = mo.scoreMove(m, side, depth, ttMove)
	}
	return scores
}

// scoreMove returns the ordering score for a single move.
func (mo *MoveOrderer) scoreMove(m board.Square, side board.Cell, depth int, ttMove board.Square) int {
	if m == ttMove {
		return TTMoveScore
	}
	if depth >= 0 && depth <= MaxDepth {
		if m == mo.killers[depth][0] {
			return KillerScore1
		}
		if m == mo.killers[depth][1] {
			return KillerScore2
		}
	}
	return mo.history[side.Index()][m]
}

// PickMove selects the best remaining move and moves it to position index.
// Earlier moves win ties, so equal scores keep the generator's order.
func PickMove(moves []board.Square, scores []int, index int) {
	best := index
	for j := index + 1; j < len(moves); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		// Shift rather than swap to keep the rest stable.
		m, s := moves[best], scores[best]
		copy(moves[index+1:best+1], moves[index:best])
		copy(scores[index+1:best+1], scores[index:best])
		moves[index], scores[index] = m, s
	}
}

// UpdateKillers records a cutoff move at the given depth, keeping the two most
// recent distinct moves.
func (mo *MoveOrderer) UpdateKillers(m board.Square, depth int) {
	if depth < 0 || depth > MaxDepth {
		return
	}
	// Don't store if it's already the first killer
	if mo.killers[depth][0] == m {
		return
	}
	mo.killers[depth][1] = mo.killers[depth][0]
	mo.killers[depth][0] = m
}

// Killers returns the killer moves stored for depth.
func (mo *MoveOrderer) Killers(depth int) [2]board.Square {
	if depth < 0 || depth > MaxDepth {
		return [2]board.Square{board.NoSquare, board.NoSquare}
	}
	return mo.killers[depth]
}

// UpdateHistory rewards a cutoff move with depth².
func (mo *MoveOrderer) UpdateHistory(m board.Square, side board.Cell, depth int) {
	h := &mo.history[side.Index()]
	h[m] += depth * depth
	// Prevent overflow
	if h[m] > historyLimit {
		for p := range mo.history {
			for sq := range mo.history[p] {
				mo.history[p][sq] /= 2
			}
		}
	}
}

// HistoryScore returns the history score of m for side.
func (mo *MoveOrderer) HistoryScore(m board.Square, side board.Cell) int {
	return mo.history[side.Index()][m]
}
