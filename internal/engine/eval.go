package engine

import "github.com/hailam/pbrain/internal/board"

// Pattern scores, identical for both players.
const (
	OpenFourScore    = 10000
	ClosedFourScore  = 1000
	OpenThreeScore   = 1000
	ClosedThreeScore = 100
	OpenTwoScore     = 100
	ClosedTwoScore   = 10
)

// patternScore maps a run length and its number of open ends to a score.
func patternScore(run, openEnds int) int {
	if openEnds == 0 {
		return 0
	}
	switch {
	case run >= 4:
		if openEnds == 2 {
			return OpenFourScore
		}
		return ClosedFourScore
	case run == 3:
		if openEnds == 2 {
			return OpenThreeScore
		}
		return ClosedThreeScore
	case run == 2:
		if openEnds == 2 {
			return OpenTwoScore
		}
		return ClosedTwoScore
	}
	return 0
}

// scanRun walks from sq in both senses of direction dir over player stones.
// sq itself is counted as a player stone whether or not it is on the board,
// which lets the threat detector reuse it for hypothetical placements.
// An end is open iff the first cell past the run is on the board and empty.
func scanRun(b *board.Board, sq board.Square, dir int, player board.Cell) (run, openEnds int) {
	dx, dy := board.Directions[dir][0], board.Directions[dir][1]
	run = 1
	for _, sign := range [2]int{1, -1} {
		for step := 1; ; step++ {
			next, ok := sq.Offset(dx*sign, dy*sign, step)
			if !ok {
				break
			}
			c := b.At(next)
			if c == player {
				run++
				continue
			}
			if c == board.Empty {
				openEnds++
			}
			break
		}
	}
	return run, openEnds
}

// sequenceScore is the directional pattern score of the stone on sq.
func sequenceScore(b *board.Board, sq board.Square, dir int, player board.Cell) int {
	run, open := scanRun(b, sq, dir, player)
	return patternScore(run, open)
}

// Evaluator keeps per-stone directional pattern scores and per-player totals
// up to date as stones are placed and removed.
type Evaluator struct {
	scores [2][board.NumCells][4]int32
	totals [2]int64
}

// NewEvaluator returns an evaluator for an empty board.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Clear resets to the empty board.
func (e *Evaluator) Clear() {
	*e = Evaluator{}
}

// Evaluate returns the position score from Mine's point of view.
func (e *Evaluator) Evaluate() int {
	return int(e.totals[0] - e.totals[1])
}

// EvaluateFor returns the position score from side's point of view.
func (e *Evaluator) EvaluateFor(side board.Cell) int {
	if side == board.Opponent {
		return -e.Evaluate()
	}
	return e.Evaluate()
}

// Total returns the running total for player.
func (e *Evaluator) Total(player board.Cell) int64 {
	return e.totals[player.Index()]
}

// OnStonePlaced updates scores after b.Place(sq, ...).
func (e *Evaluator) OnStonePlaced(b *board.Board, sq board.Square) {
	e.update(b, sq)
}

// OnStoneRemoved updates scores after b.Remove(sq).
func (e *Evaluator) OnStoneRemoved(b *board.Board, sq board.Square) {
	e.update(b, sq)
}

// update rescores sq and, per direction, the runs of stones adjacent to it.
// Any stone whose score can change either shares a run with sq or has a run
// ending next to sq, so walking the two neighbouring runs covers everything.
func (e *Evaluator) update(b *board.Board, sq board.Square) {
	for dir, d := range board.Directions {
		e.rescore(b, sq, dir)
		for _, sign := range [2]int{1, -1} {
			first, ok := sq.Offset(d[0]*sign, d[1]*sign, 1)
			if !ok {
				continue
			}
			owner := b.At(first)
			if !owner.IsStone() {
				continue
			}
			for step := 1; ; step++ {
				next, ok := sq.Offset(d[0]*sign, d[1]*sign, step)
				if !ok || b.At(next) != owner {
					break
				}
				e.rescore(b, next, dir)
			}
		}
	}
}

// rescore recomputes both players' entries for sq in direction dir.
func (e *Evaluator) rescore(b *board.Board, sq board.Square, dir int) {
	c := b.At(sq)
	for p, player := range [2]board.Cell{board.Mine, board.Opponent} {
		v := int32(0)
		if c == player {
			v = int32(sequenceScore(b, sq, dir, player))
		}
		old := e.scores[p][sq][dir]
		if old != v {
			e.scores[p][sq][dir] = v
			e.totals[p] += int64(v - old)
		}
	}
}

// RebuildFromBoard recomputes every entry from scratch. Used after bulk uploads,
// which set cells without going through OnStonePlaced.
func (e *Evaluator) RebuildFromBoard(b *board.Board) {
	e.Clear()
	for sq := board.Square(0); sq < board.NumCells; sq++ {
		c := b.At(sq)
		if !c.IsStone() {
			continue
		}
		p := c.Index()
		for dir := range board.Directions {
			v := int32(sequenceScore(b, sq, dir, c))
			e.scores[p][sq][dir] = v
			e.totals[p] += int64(v)
		}
	}
}

// EvaluateBoard scores a board by full rescan, from Mine's point of view.
// It is the reference the incremental evaluator must always agree with.
func EvaluateBoard(b *board.Board) int {
	score := 0
	for sq := board.Square(0); sq < board.NumCells; sq++ {
		c := b.At(sq)
		if !c.IsStone() {
			continue
		}
		for dir := range board.Directions {
			v := sequenceScore(b, sq, dir, c)
			if c == board.Mine {
				score += v
			} else {
				score -= v
			}
		}
	}
	return score
}
