package engine

import (
	"testing"

	"github.com/matryer/is"

	"github.com/hailam/pbrain/internal/board"
)

func TestKillers(t *testing.T) {
	is := is.New(t)
	mo := NewMoveOrderer()
	a, b, c := board.NewSquare(1, 1), board.NewSquare(2, 2), board.NewSquare(3, 3)

	is.Equal(mo.Killers(3), [2]board.Square{board.NoSquare, board.NoSquare})

	mo.UpdateKillers(a, 3)
	mo.UpdateKillers(a, 3) // duplicate does not push a out of slot 0
	is.Equal(mo.Killers(3), [2]board.Square{a, board.NoSquare})

	mo.UpdateKillers(b, 3)
	mo.UpdateKillers(c, 3)
	is.Equal(mo.Killers(3), [2]board.Square{c, b})

	// Other depths are untouched; out of range is ignored.
	is.Equal(mo.Killers(4), [2]board.Square{board.NoSquare, board.NoSquare})
	mo.UpdateKillers(a, MaxDepth+1)
	is.Equal(mo.Killers(MaxDepth+1), [2]board.Square{board.NoSquare, board.NoSquare})

	mo.Clear()
	is.Equal(mo.Killers(3), [2]board.Square{board.NoSquare, board.NoSquare})
}

func TestHistory(t *testing.T) {
	is := is.New(t)
	mo := NewMoveOrderer()
	sq := board.NewSquare(7, 7)

	mo.UpdateHistory(sq, board.Mine, 3)
	mo.UpdateHistory(sq, board.Mine, 2)
	is.Equal(mo.HistoryScore(sq, board.Mine), 13)
	is.Equal(mo.HistoryScore(sq, board.Opponent), 0)

	// Overflow halves every entry.
	other := board.NewSquare(8, 8)
	mo.UpdateHistory(other, board.Opponent, 10)
	for mo.HistoryScore(sq, board.Mine) <= historyLimit/2 {
		mo.UpdateHistory(sq, board.Mine, MaxDepth)
	}
	for i := 0; i < 1000; i++ {
		mo.UpdateHistory(sq, board.Mine, MaxDepth)
	}
	is.True(mo.HistoryScore(sq, board.Mine) <= historyLimit)
	is.True(mo.HistoryScore(other, board.Opponent) < 100)
}

func TestScoreMovesOrder(t *testing.T) {
	is := is.New(t)
	mo := NewMoveOrderer()

	moves := []board.Square{
		board.NewSquare(0, 0), // history
		board.NewSquare(1, 0), // second killer
		board.NewSquare(2, 0), // plain
		board.NewSquare(3, 0), // first killer
		board.NewSquare(4, 0), // tt move
	}
	mo.UpdateHistory(moves[0], board.Mine, 5)
	mo.UpdateKillers(moves[1], 4)
	mo.UpdateKillers(moves[3], 4)

	scores := mo.ScoreMoves(moves, board.Mine, 4, moves[4])
	for i := range moves {
		PickMove(moves, scores, i)
	}
	is.Equal(moves, []board.Square{
		board.NewSquare(4, 0),
		board.NewSquare(3, 0),
		board.NewSquare(1, 0),
		board.NewSquare(0, 0),
		board.NewSquare(2, 0),
	})
}

func TestPickMoveStable(t *testing.T) {
	is := is.New(t)
	moves := []board.Square{10, 11, 12, 13}
	scores := []int{1, 5, 1, 5}

	for i := range moves {
		PickMove(moves, scores, i)
	}
	is.Equal(moves, []board.Square{11, 13, 10, 12})
	is.Equal(scores, []int{5, 5, 1, 1})
}
