package engine

import (
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/hailam/pbrain/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
// The zero value marks an unused slot.
type TTFlag uint8

const (
	TTExact      TTFlag = iota + 1 // Exact score
	TTLowerBound                   // Failed high (beta cutoff)
	TTUpperBound                   // Failed low
)

// DefaultTTBits gives 2^22 slots.
const DefaultTTBits = 22

const (
	minTTBits   = 10
	maxTTBits   = 28
	ttEntrySize = 16 // unsafe.Sizeof(TTEntry{})
)

// TTEntry represents an entry in the transposition table.
type TTEntry struct {
	Key      uint64       // Full hash (with turn) for verification
	Score    int32        // Score (bounded by flag)
	BestMove board.Square // Best move found, or NoSquare
	Depth    uint8        // Search depth
	Flag     TTFlag       // Type of bound
}

func (e *TTEntry) valid() bool {
	return e.Flag != 0
}

// TranspositionTable is a fixed-size, single-slot hash table of search results.
// It is owned by one Engine and never shared between goroutines.
type TranspositionTable struct {
	entries []TTEntry
	size    uint64
	mask    uint64

	hits   uint64
	probes uint64
}

// NewTranspositionTable creates a table with 2^bits slots. The size is reduced
// if it would take more than a quarter of system memory.
func NewTranspositionTable(bits int) *TranspositionTable {
	bits = clampTTBits(bits, memory.TotalMemory()/4)
	numEntries := uint64(1) << bits

	log.Debug().
		Uint64("num-entries", numEntries).
		Uint64("estimated-bytes", numEntries*ttEntrySize).
		Uint64("total-system-memory-bytes", memory.TotalMemory()).
		Msg("transposition-table-size")

	return &TranspositionTable{
		entries: make([]TTEntry, numEntries),
		size:    numEntries,
		mask:    numEntries - 1,
	}
}

// clampTTBits keeps bits within the supported range and under maxBytes.
// A maxBytes of 0 means unknown and is ignored.
func clampTTBits(bits int, maxBytes uint64) int {
	if bits < minTTBits {
		bits = minTTBits
	}
	if bits > maxTTBits {
		bits = maxTTBits
	}
	for maxBytes > 0 && bits > minTTBits && (uint64(1)<<bits)*ttEntrySize > maxBytes {
		bits--
	}
	return bits
}

// Probe looks up a position. A slot holding a different key is a miss.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	tt.probes++
	entry := tt.entries[hash&tt.mask]
	if entry.valid() && entry.Key == hash {
		tt.hits++
		return entry, true
	}
	return TTEntry{}, false
}

// Store saves a result. Deeper entries are never replaced by shallower ones,
// whatever position they belong to.
func (tt *TranspositionTable) Store(hash uint64, depth int, score int, flag TTFlag, bestMove board.Square) {
	entry := &tt.entries[hash&tt.mask]
	if entry.valid() && int(entry.Depth) > depth {
		return
	}
	*entry = TTEntry{
		Key:      hash,
		Score:    int32(score),
		BestMove: bestMove,
		Depth:    uint8(depth),
		Flag:     flag,
	}
}

// Clear empties the table. Called on game start and restart only.
func (tt *TranspositionTable) Clear() {
	clear(tt.entries)
	tt.hits = 0
	tt.probes = 0
}

// HashFull returns the permille (parts per thousand) of the table that is used.
func (tt *TranspositionTable) HashFull() int {
	// Sample first 1000 entries
	used := 0
	sampleSize := 1000
	if uint64(sampleSize) > tt.size {
		sampleSize = int(tt.size)
	}
	for i := 0; i < sampleSize; i++ {
		if tt.entries[i].valid() {
			used++
		}
	}
	return (used * 1000) / sampleSize
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// Size returns the number of entries in the table.
func (tt *TranspositionTable) Size() uint64 {
	return tt.size
}
