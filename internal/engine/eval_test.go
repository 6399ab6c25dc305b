package engine

import (
	"math/rand"
	"testing"

	"github.com/matryer/is"

	"github.com/hailam/pbrain/internal/board"
)

func TestPatternScore(t *testing.T) {
	tests := []struct {
		run, open int
		want      int
	}{
		{1, 2, 0},
		{2, 0, 0},
		{2, 1, ClosedTwoScore},
		{2, 2, OpenTwoScore},
		{3, 0, 0},
		{3, 1, ClosedThreeScore},
		{3, 2, OpenThreeScore},
		{4, 0, 0},
		{4, 1, ClosedFourScore},
		{4, 2, OpenFourScore},
		{6, 2, OpenFourScore},
	}
	for _, tt := range tests {
		if got := patternScore(tt.run, tt.open); got != tt.want {
			t.Errorf("patternScore(%d, %d) = %d, want %d", tt.run, tt.open, got, tt.want)
		}
	}
}

func TestScanRunEnds(t *testing.T) {
	is := is.New(t)
	b := board.New()

	// Run touching the left edge: that end is closed.
	for x := 0; x < 3; x++ {
		b.Place(board.NewSquare(x, 5), board.Mine)
	}
	run, open := scanRun(b, board.NewSquare(1, 5), 0, board.Mine)
	is.Equal(run, 3)
	is.Equal(open, 1)

	// A forbidden cell closes an end like a stone does.
	is.NoErr(b.Set(3, 5, board.Forbidden))
	_, open = scanRun(b, board.NewSquare(1, 5), 0, board.Mine)
	is.Equal(open, 0)

	// Hypothetical stone on an empty square counts toward the run.
	b.Place(board.NewSquare(10, 10), board.Opponent)
	b.Place(board.NewSquare(12, 10), board.Opponent)
	run, open = scanRun(b, board.NewSquare(11, 10), 0, board.Opponent)
	is.Equal(run, 3)
	is.Equal(open, 2)
}

func TestEvaluatorSimple(t *testing.T) {
	is := is.New(t)
	b := board.New()
	ev := NewEvaluator()

	play := func(x, y int, c board.Cell) {
		sq := board.NewSquare(x, y)
		b.Place(sq, c)
		ev.OnStonePlaced(b, sq)
	}

	play(10, 10, board.Mine)
	is.Equal(ev.Evaluate(), 0)

	play(11, 10, board.Mine)
	// Two stones, each in an open two horizontally.
	is.Equal(ev.Evaluate(), 2*OpenTwoScore)
	is.Equal(ev.EvaluateFor(board.Opponent), -2*OpenTwoScore)

	// Blocking one end turns it into a closed two.
	play(12, 10, board.Opponent)
	is.Equal(ev.Total(board.Mine), int64(2*ClosedTwoScore))
	is.Equal(ev.Evaluate(), EvaluateBoard(b))
}

// Incremental scores must equal a full rescan after any sequence of place and
// remove operations, including repeated use of the same cell.
func TestIncrementalMatchesFullScan(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b := board.New()
	ev := NewEvaluator()
	var placed []board.Square

	// Keep play in a small area so runs form and break often.
	for i := 0; i < 3000; i++ {
		if len(placed) > 0 && (rng.Intn(3) == 0 || len(placed) > 60) {
			j := rng.Intn(len(placed))
			sq := placed[j]
			placed = append(placed[:j], placed[j+1:]...)
			b.Remove(sq)
			ev.OnStoneRemoved(b, sq)
		} else {
			sq := board.NewSquare(5+rng.Intn(10), 5+rng.Intn(10))
			if b.At(sq) != board.Empty {
				continue
			}
			c := board.Mine
			if rng.Intn(2) == 0 {
				c = board.Opponent
			}
			b.Place(sq, c)
			ev.OnStonePlaced(b, sq)
			placed = append(placed, sq)
		}

		if got, want := ev.Evaluate(), EvaluateBoard(b); got != want {
			t.Fatalf("step %d: incremental %d, full scan %d\n%s", i, got, want, b)
		}
	}

	// The same cell placed and removed repeatedly, alternating owners.
	sq := board.NewSquare(9, 9)
	for i := 0; i < 10; i++ {
		if b.At(sq) != board.Empty {
			b.Remove(sq)
			ev.OnStoneRemoved(b, sq)
		}
		c := board.Mine
		if i%2 == 1 {
			c = board.Opponent
		}
		b.Place(sq, c)
		ev.OnStonePlaced(b, sq)
		if got, want := ev.Evaluate(), EvaluateBoard(b); got != want {
			t.Fatalf("repeat %d: incremental %d, full scan %d", i, got, want)
		}
	}

	rebuilt := NewEvaluator()
	rebuilt.RebuildFromBoard(b)
	if *rebuilt != *ev {
		t.Fatal("RebuildFromBoard disagrees with incremental state")
	}
}

func TestRebuildAfterUpload(t *testing.T) {
	is := is.New(t)
	b := board.New()
	is.NoErr(b.Set(4, 4, board.Mine))
	is.NoErr(b.Set(5, 5, board.Mine))
	is.NoErr(b.Set(6, 6, board.Mine))
	is.NoErr(b.Set(7, 7, board.Opponent))
	is.NoErr(b.Set(3, 3, board.Forbidden))
	b.RecomputeHash()

	ev := NewEvaluator()
	ev.RebuildFromBoard(b)
	is.Equal(ev.Evaluate(), EvaluateBoard(b))
	// Diagonal three closed at both ends scores nothing.
	is.Equal(ev.Total(board.Mine), int64(0))
}
