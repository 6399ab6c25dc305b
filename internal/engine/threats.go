package engine

import "github.com/hailam/pbrain/internal/board"

// WinningThreatScore is added to a threat score that cannot be answered in one move.
const WinningThreatScore = 50000

// ThreatInfo classifies the patterns a hypothetical stone would create.
type ThreatInfo struct {
	OpenFours   int // includes runs of five or more
	ClosedFours int
	OpenThrees  int

	ClosedThrees int
	OpenTwos     int
	Five         bool
}

// AnalyzeThreats classifies a player stone on the empty square sq across all
// four directions. The board is not modified.
func AnalyzeThreats(b *board.Board, sq board.Square, player board.Cell) ThreatInfo {
	var t ThreatInfo
	for dir := range board.Directions {
		run, open := scanRun(b, sq, dir, player)
		switch {
		case run >= 5:
			t.OpenFours++
			t.Five = true
		case run == 4 && open == 2:
			t.OpenFours++
		case run == 4 && open == 1:
			t.ClosedFours++
		case run == 3 && open == 2:
			t.OpenThrees++
		case run == 3 && open == 1:
			t.ClosedThrees++
		case run == 2 && open == 2:
			t.OpenTwos++
		}
	}
	return t
}

// IsWinning reports a threat the opponent cannot parry with a single move.
func (t ThreatInfo) IsWinning() bool {
	return t.OpenFours >= 1 ||
		t.OpenThrees >= 2 ||
		t.ClosedFours >= 2 ||
		(t.ClosedFours >= 1 && t.OpenThrees >= 1)
}

// IsForcing reports whether the stone makes a four or a double open three,
// i.e. something the opponent must answer.
func (t ThreatInfo) IsForcing() bool {
	return t.OpenFours > 0 || t.ClosedFours > 0 || t.OpenThrees >= 2
}

// Score is a scalar used for move ordering.
func (t ThreatInfo) Score() int {
	s := t.OpenFours*OpenFourScore +
		t.ClosedFours*ClosedFourScore +
		t.OpenThrees*OpenThreeScore +
		t.ClosedThrees*ClosedThreeScore +
		t.OpenTwos*OpenTwoScore
	if t.Five {
		s += 2 * WinningThreatScore
	}
	if t.IsWinning() {
		s += WinningThreatScore
	}
	return s
}
