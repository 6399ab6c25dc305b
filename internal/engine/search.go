package engine

import (
	"sync/atomic"

	"github.com/hailam/pbrain/internal/board"
)

// Search constants
const (
	MaxDepth           = 20
	MaxQuiescenceDepth = 4
	MaxForcingMoves    = 8
	MaxPly             = MaxDepth + MaxQuiescenceDepth + 2

	WinScore = 100_000_000
	Infinity = 1_000_000_000

	// Scores at or above WinThreshold are forced wins found by the search.
	WinThreshold = WinScore - MaxQuiescenceDepth - 1
)

// PVTable stores the principal variation.
type PVTable struct {
	length [MaxPly + 1]int
	moves  [MaxPly + 1][MaxPly + 1]board.Square
}

func (pv *PVTable) update(ply int, m board.Square) {
	pv.moves[ply][ply] = m
	for i := ply + 1; i < pv.length[ply+1]; i++ {
		pv.moves[ply][i] = pv.moves[ply+1][i]
	}
	pv.length[ply] = max(pv.length[ply+1], ply+1)
}

// Searcher runs negamax with alpha-beta over a shared board. Every stone it
// places goes on an undo stack so an interrupted search can be rolled back.
type Searcher struct {
	board   *board.Board
	eval    *Evaluator
	tt      *TranspositionTable
	orderer *MoveOrderer
	tm      *TimeManager

	pv       PVTable
	stack    []board.Square
	nodes    uint64
	stopFlag atomic.Bool
}

// NewSearcher creates a searcher over b. The evaluator must be kept in sync
// with b by the caller between searches.
func NewSearcher(b *board.Board, eval *Evaluator, tt *TranspositionTable, orderer *MoveOrderer, tm *TimeManager) *Searcher {
	return &Searcher{
		board:   b,
		eval:    eval,
		tt:      tt,
		orderer: orderer,
		tm:      tm,
		stack:   make([]board.Square, 0, MaxPly),
	}
}

// Stop aborts the running search at its next node.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Reset prepares for a new search.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes = 0
}

// Nodes returns the number of nodes searched.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// GetPV returns the principal variation of the last completed root search.
func (s *Searcher) GetPV() []board.Square {
	pv := make([]board.Square, s.pv.length[0])
	copy(pv, s.pv.moves[0][:s.pv.length[0]])
	return pv
}

// Unwind removes every stone the search still has on the board. It restores
// the root position after a panic or an abandoned search.
func (s *Searcher) Unwind() {
	for len(s.stack) > 0 {
		s.undo()
	}
}

func (s *Searcher) place(sq board.Square, side board.Cell) {
	s.board.Place(sq, side)
	s.eval.OnStonePlaced(s.board, sq)
	s.stack = append(s.stack, sq)
}

func (s *Searcher) undo() {
	sq := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	s.board.Remove(sq)
	s.eval.OnStoneRemoved(s.board, sq)
}

func (s *Searcher) stopped() bool {
	return s.stopFlag.Load() || s.tm.Expired()
}

// SearchRoot searches every root move to depth with a full window, keeping the
// given order. It returns false if the deadline passed before all moves were
// searched; the partial result is then discarded.
func (s *Searcher) SearchRoot(depth int, moves []board.Square, side board.Cell) (board.Square, int, bool) {
	alpha, beta := -Infinity, Infinity
	best, bestMove := -Infinity, board.NoSquare
	s.pv.length[0] = 0

	for _, m := range moves {
		s.place(m, side)
		score, ok := s.negamax(depth-1, 1, -beta, -alpha, side.Other(), m)
		s.undo()
		if !ok {
			return board.NoSquare, 0, false
		}
		score = -score

		if score > best {
			best, bestMove = score, m
			s.pv.update(0, m)
		}
		if score > alpha {
			alpha = score
		}
	}

	if bestMove != board.NoSquare {
		s.tt.Store(s.board.HashWithTurn(side), depth, best, TTExact, bestMove)
	}
	return bestMove, best, true
}

// negamax returns the score of the position for side, the player to move.
// last is the stone just placed by the other side. ok is false when the search
// ran out of time; the score is meaningless then.
func (s *Searcher) negamax(depth, ply, alpha, beta int, side board.Cell, last board.Square) (int, bool) {
	if s.stopped() {
		return 0, false
	}
	s.nodes++
	s.pv.length[ply] = ply

	// The previous mover just made five.
	if last != board.NoSquare && s.board.FiveThrough(last) {
		return -(WinScore + depth), true
	}
	if s.board.IsFull() {
		return 0, true
	}
	if depth <= 0 || ply >= MaxDepth {
		return s.quiescence(0, ply, alpha, beta, side, last)
	}

	origAlpha, origBeta := alpha, beta
	hash := s.board.HashWithTurn(side)
	ttMove := board.NoSquare
	if entry, found := s.tt.Probe(hash); found {
		ttMove = entry.BestMove
		if int(entry.Depth) >= depth {
			score := int(entry.Score)
			switch entry.Flag {
			case TTExact:
				return score, true
			case TTLowerBound:
				if score > alpha {
					alpha = score
				}
			case TTUpperBound:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score, true
			}
		}
	}

	moves := Squares(GenerateCandidates(s.board, side))
	if len(moves) == 0 {
		return 0, true
	}
	scores := s.orderer.ScoreMoves(moves, side, depth, ttMove)

	best, bestMove := -Infinity, board.NoSquare
	for i := range moves {
		PickMove(moves, scores, i)
		m := moves[i]

		s.place(m, side)
		score, ok := s.negamax(depth-1, ply+1, -beta, -alpha, side.Other(), m)
		s.undo()
		if !ok {
			return 0, false
		}
		score = -score

		if score > best {
			best, bestMove = score, m
		}
		if score > alpha {
			alpha = score
			s.pv.update(ply, m)
		}
		if alpha >= beta {
			s.orderer.UpdateKillers(m, depth)
			s.orderer.UpdateHistory(m, side, depth)
			break
		}
	}

	flag := TTExact
	if best <= origAlpha {
		flag = TTUpperBound
	} else if best >= origBeta {
		flag = TTLowerBound
	}
	s.tt.Store(hash, depth, best, flag, bestMove)
	return best, true
}

// quiescence extends the search along forcing moves only, so the horizon
// never falls in the middle of a four or a double three.
func (s *Searcher) quiescence(qdepth, ply, alpha, beta int, side board.Cell, last board.Square) (int, bool) {
	if s.stopped() {
		return 0, false
	}
	s.nodes++
	if ply <= MaxPly {
		s.pv.length[ply] = ply
	}

	if last != board.NoSquare && s.board.FiveThrough(last) {
		return -(WinScore - qdepth), true
	}
	if s.board.IsFull() {
		return 0, true
	}

	standPat := s.eval.EvaluateFor(side)
	if qdepth >= MaxQuiescenceDepth || ply >= MaxPly {
		return standPat, true
	}

	moves, mustBlock := s.forcingMoves(side)

	// With a five pending for the opponent there is nothing to stand on:
	// the side to move has to block it.
	best := standPat
	if mustBlock {
		best = -Infinity
	} else {
		if standPat >= beta {
			return standPat, true
		}
		if standPat > alpha {
			alpha = standPat
		}
	}

	for _, m := range moves {
		s.place(m, side)
		score, ok := s.quiescence(qdepth+1, ply+1, -beta, -alpha, side.Other(), m)
		s.undo()
		if !ok {
			return 0, false
		}
		score = -score

		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}
	return best, true
}

// forcingMoves returns up to MaxForcingMoves candidates that make or stop a
// four or a double three. If the side to move can complete five, only those
// moves are returned. If the opponent threatens five, only the blocks are
// returned and mustBlock is set.
func (s *Searcher) forcingMoves(side board.Cell) (moves []board.Square, mustBlock bool) {
	cands := GenerateCandidates(s.board, side)

	var wins, blocks []board.Square
	for _, c := range cands {
		if c.Mine.Five {
			wins = append(wins, c.Square)
		} else if c.Theirs.Five {
			blocks = append(blocks, c.Square)
		}
	}
	if len(wins) > 0 {
		return wins[:1], false
	}
	if len(blocks) > 0 {
		return blocks, true
	}

	for _, c := range cands {
		if c.Mine.IsForcing() || c.Theirs.IsForcing() {
			moves = append(moves, c.Square)
			if len(moves) == MaxForcingMoves {
				break
			}
		}
	}
	return moves, false
}
