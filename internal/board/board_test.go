package board

import (
	"errors"
	"math/rand"
	"testing"
)

func place(t *testing.T, b *Board, c Cell, coords ...[2]int) {
	t.Helper()
	for _, xy := range coords {
		sq, ok := SquareAt(xy[0], xy[1])
		if !ok {
			t.Fatalf("bad test coordinate %v", xy)
		}
		b.Place(sq, c)
	}
}

func line(x, y, dx, dy, n int) [][2]int {
	out := make([][2]int, n)
	for i := 0; i < n; i++ {
		out[i] = [2]int{x + dx*i, y + dy*i}
	}
	return out
}

func TestSquareIndexing(t *testing.T) {
	tests := []struct {
		x, y int
		want Square
		ok   bool
	}{
		{0, 0, 0, true},
		{19, 0, 19, true},
		{0, 1, 20, true},
		{0, 19, 380, true},
		{19, 19, 399, true},
		{20, 0, NoSquare, false},
		{0, 20, NoSquare, false},
		{-1, 0, NoSquare, false},
	}
	for _, tt := range tests {
		got, ok := SquareAt(tt.x, tt.y)
		if got != tt.want || ok != tt.ok {
			t.Errorf("SquareAt(%d,%d) = %v,%v want %v,%v", tt.x, tt.y, got, ok, tt.want, tt.ok)
		}
		if ok && (got.X() != tt.x || got.Y() != tt.y) {
			t.Errorf("round trip of %d,%d gave %d,%d", tt.x, tt.y, got.X(), got.Y())
		}
	}
}

func TestParseSquare(t *testing.T) {
	sq, err := ParseSquare(" 10 , 11")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sq.X() != 10 || sq.Y() != 11 {
		t.Errorf("got %v", sq)
	}
	if sq.String() != "10,11" {
		t.Errorf("String() = %q", sq.String())
	}
	if _, err := ParseSquare("20,0"); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
	for _, bad := range []string{"", "1", "a,b", "1,2,3"} {
		if _, err := ParseSquare(bad); err == nil {
			t.Errorf("ParseSquare(%q) should fail", bad)
		}
	}
}

func TestCellOperations(t *testing.T) {
	b := New()
	if c, ok := b.Get(10, 10); !ok || c != Empty {
		t.Fatalf("fresh board should be empty at 10,10")
	}
	if err := b.Set(10, 10, Mine); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if c, _ := b.Get(10, 10); c != Mine {
		t.Errorf("expected Mine, got %v", c)
	}
	if b.IsEmpty(10, 10) {
		t.Error("10,10 should not be empty")
	}
	if err := b.Set(20, 20, Mine); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
	if _, ok := b.Get(20, 0); ok {
		t.Error("Get out of bounds should report false")
	}
	if b.IsEmpty(-1, 3) {
		t.Error("off-board cells are never empty")
	}

	corners := [][2]int{{0, 0}, {19, 0}, {0, 19}, {19, 19}}
	for _, xy := range corners {
		if err := b.Set(xy[0], xy[1], Opponent); err != nil {
			t.Errorf("Set corner %v: %v", xy, err)
		}
	}
	if b.StoneCount() != 5 {
		t.Errorf("StoneCount = %d, want 5", b.StoneCount())
	}

	b.Clear()
	if b.StoneCount() != 0 || b.Hash() != 0 {
		t.Error("Clear should empty the board and reset the hash")
	}
}

func TestIsFull(t *testing.T) {
	b := New()
	if b.IsFull() {
		t.Fatal("empty board is not full")
	}
	for sq := Square(0); sq < NumCells; sq++ {
		if sq%3 == 0 {
			b.Place(sq, Mine)
		} else {
			b.Place(sq, Opponent)
		}
	}
	if !b.IsFull() {
		t.Error("board should be full")
	}
	b.Remove(NewSquare(7, 7))
	if b.IsFull() {
		t.Error("board with one hole is not full")
	}
}

func TestCheckFiveInARow(t *testing.T) {
	tests := []struct {
		name   string
		mine   [][2]int
		opp    [][2]int
		player Cell
		want   bool
	}{
		{"horizontal", line(0, 0, 1, 0, 5), nil, Mine, true},
		{"vertical", line(0, 0, 0, 1, 5), nil, Mine, true},
		{"diagonal", line(0, 0, 1, 1, 5), nil, Mine, true},
		{"anti-diagonal", line(0, 4, 1, -1, 5), nil, Mine, true},
		{"edge row 19", line(15, 19, 1, 0, 5), nil, Mine, true},
		{"edge col 19", line(19, 15, 0, 1, 5), nil, Mine, true},
		{"bottom right diagonal", line(15, 15, 1, 1, 5), nil, Mine, true},
		{"anti-diagonal top right", line(15, 4, 1, -1, 5), nil, Mine, true},
		{"overline", line(3, 3, 1, 0, 6), nil, Mine, true},
		{"four only", line(0, 0, 1, 0, 4), nil, Mine, false},
		{"four diagonal", line(0, 0, 1, 1, 4), nil, Mine, false},
		{"wrong player", line(0, 0, 1, 0, 5), nil, Opponent, false},
		{"gap", [][2]int{{0, 0}, {1, 0}, {3, 0}, {4, 0}, {5, 0}}, nil, Mine, false},
		{"interrupted", [][2]int{{0, 0}, {1, 0}, {3, 0}, {4, 0}, {5, 0}}, [][2]int{{2, 0}}, Mine, false},
		{"scattered", [][2]int{{0, 0}, {5, 5}, {10, 10}, {15, 15}, {19, 19}}, nil, Mine, false},
		{"empty", nil, nil, Mine, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			place(t, b, Mine, tt.mine...)
			place(t, b, Opponent, tt.opp...)
			if got := b.CheckFiveInARow(tt.player); got != tt.want {
				t.Errorf("CheckFiveInARow = %v, want %v\n%s", got, tt.want, b)
			}
		})
	}
}

func TestBothPlayersCanHaveFive(t *testing.T) {
	b := New()
	place(t, b, Mine, line(0, 0, 1, 0, 5)...)
	place(t, b, Opponent, line(0, 5, 1, 0, 5)...)
	if !b.CheckFiveInARow(Mine) || !b.CheckFiveInARow(Opponent) {
		t.Error("both players should have five")
	}
}

func TestLocalFiveChecks(t *testing.T) {
	b := New()
	place(t, b, Mine, line(3, 8, 1, 1, 4)...)
	target := NewSquare(7, 12)
	if !b.MakesFive(target, Mine) {
		t.Error("7,12 should complete a diagonal five")
	}
	if b.MakesFive(target, Opponent) {
		t.Error("opponent stone at 7,12 makes nothing")
	}
	gap := NewSquare(2, 7)
	if !b.MakesFive(gap, Mine) {
		t.Error("2,7 extends the diagonal backward to five")
	}

	b.Place(target, Mine)
	if !b.FiveThrough(target) || !b.FiveThrough(NewSquare(3, 8)) {
		t.Error("FiveThrough should see the completed diagonal")
	}
	if b.FiveThrough(NewSquare(0, 0)) {
		t.Error("empty square is never part of a five")
	}
	if got := b.RunLength(NewSquare(5, 10), 1, 1, Mine); got != 5 {
		t.Errorf("RunLength = %d, want 5", got)
	}
}

func TestHashConsistency(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := New()
	var placed []Square

	for i := 0; i < 2000; i++ {
		if len(placed) > 0 && rng.Intn(3) == 0 {
			j := rng.Intn(len(placed))
			b.Remove(placed[j])
			placed = append(placed[:j], placed[j+1:]...)
		} else {
			sq := Square(rng.Intn(NumCells))
			if b.At(sq) != Empty {
				continue
			}
			c := Mine
			if rng.Intn(2) == 0 {
				c = Opponent
			}
			b.Place(sq, c)
			placed = append(placed, sq)
		}
		if b.Hash() != ComputeHash(b) {
			t.Fatalf("hash drifted after %d operations", i)
		}
	}

	for _, sq := range placed {
		b.Remove(sq)
	}
	if b.Hash() != 0 {
		t.Errorf("hash of emptied board = %016x, want 0", b.Hash())
	}
}

func TestHashWithTurn(t *testing.T) {
	b := New()
	b.Place(NewSquare(10, 10), Mine)
	if b.HashWithTurn(Mine) != b.Hash() {
		t.Error("own turn must not add the turn key")
	}
	if b.HashWithTurn(Opponent) != b.Hash()^Keys().TurnKey() {
		t.Error("opponent turn must add the turn key")
	}
}

func TestRecomputeHashAfterUpload(t *testing.T) {
	b := New()
	_ = b.Set(4, 4, Mine)
	_ = b.Set(5, 5, Opponent)
	_ = b.Set(6, 6, Forbidden)
	if b.Hash() != 0 {
		t.Fatal("Set must not touch the hash")
	}
	b.RecomputeHash()

	want := New()
	want.Place(NewSquare(5, 5), Opponent)
	want.Place(NewSquare(4, 4), Mine)
	if b.Hash() != want.Hash() {
		t.Errorf("hash %016x, want %016x", b.Hash(), want.Hash())
	}
}
