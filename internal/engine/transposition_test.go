package engine

import (
	"testing"
	"unsafe"

	"github.com/matryer/is"

	"github.com/hailam/pbrain/internal/board"
)

func TestTTProbeStore(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionTable(minTTBits)

	_, found := tt.Probe(12345)
	is.True(!found)

	move := board.NewSquare(3, 7)
	tt.Store(12345, 4, -250, TTLowerBound, move)
	entry, found := tt.Probe(12345)
	is.True(found)
	is.Equal(entry.Score, int32(-250))
	is.Equal(entry.Depth, uint8(4))
	is.Equal(entry.Flag, TTLowerBound)
	is.Equal(entry.BestMove, move)

	// Same slot, different key: a miss.
	_, found = tt.Probe(12345 + tt.Size())
	is.True(!found)
}

func TestTTZeroHash(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionTable(minTTBits)

	// The empty board hashes to 0 and must not look stored before it is.
	_, found := tt.Probe(0)
	is.True(!found)

	tt.Store(0, 1, 7, TTExact, board.NoSquare)
	entry, found := tt.Probe(0)
	is.True(found)
	is.Equal(entry.Score, int32(7))
}

func TestTTReplacementMonotonic(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionTable(minTTBits)
	slot := uint64(5)
	other := slot + tt.Size() // collides with slot

	tt.Store(slot, 6, 100, TTExact, board.NoSquare)

	// Shallower store never replaces, even for a different position.
	tt.Store(other, 3, 1, TTExact, board.NoSquare)
	entry, found := tt.Probe(slot)
	is.True(found)
	is.Equal(entry.Depth, uint8(6))
	_, found = tt.Probe(other)
	is.True(!found)

	// Equal depth replaces.
	tt.Store(other, 6, 2, TTUpperBound, board.NoSquare)
	entry, found = tt.Probe(other)
	is.True(found)
	is.Equal(entry.Score, int32(2))

	// Deeper replaces.
	tt.Store(slot, 9, 3, TTExact, board.NoSquare)
	entry, found = tt.Probe(slot)
	is.True(found)
	is.Equal(entry.Depth, uint8(9))

	// The stored depth at a slot never decreases.
	last := uint8(0)
	for i := 0; i < 200; i++ {
		depth := (i * 7) % 13
		tt.Store(slot+uint64(i%3)*tt.Size(), depth, i, TTExact, board.NoSquare)
		d := tt.entries[slot&tt.mask].Depth
		is.True(d >= last)
		last = d
	}
}

func TestTTClear(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionTable(minTTBits)

	for i := uint64(0); i < 100; i++ {
		tt.Store(i*7919, 2, int(i), TTExact, board.NoSquare)
	}
	is.True(tt.HashFull() > 0)
	tt.Probe(7919)
	is.True(tt.HitRate() > 0)

	tt.Clear()
	is.Equal(tt.HashFull(), 0)
	is.Equal(tt.HitRate(), 0.0)
	_, found := tt.Probe(7919)
	is.True(!found)
}

func TestClampTTBits(t *testing.T) {
	is := is.New(t)

	is.Equal(clampTTBits(2, 0), minTTBits)
	is.Equal(clampTTBits(40, 0), maxTTBits)
	is.Equal(clampTTBits(22, 0), 22)
	// 2^16 entries fit in 2^16*ttEntrySize bytes, not in one byte less.
	is.Equal(clampTTBits(22, (1<<16)*ttEntrySize), 16)
	is.Equal(clampTTBits(22, (1<<16)*ttEntrySize-1), 15)
	is.Equal(clampTTBits(22, 1), minTTBits)
}

func TestTTEntrySize(t *testing.T) {
	is := is.New(t)
	is.Equal(unsafe.Sizeof(TTEntry{}), uintptr(ttEntrySize))
}
