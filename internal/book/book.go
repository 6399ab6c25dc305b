// Package book maps board hashes to known good replies: hand-made opening
// lines or root results the engine learned in earlier games.
package book

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/hailam/pbrain/internal/board"
)

// EntrySize is the size of one entry in the binary book format:
// 8 bytes hash, 1 byte x, 1 byte y, 2 bytes weight, all big-endian.
const EntrySize = 12

// BookEntry is a single candidate move for a position.
type BookEntry struct {
	Move   board.Square `json:"move"`
	Weight uint16       `json:"weight"`
}

// Book is an in-memory opening book keyed by board.Board.Hash.
type Book struct {
	entries map[uint64][]BookEntry
}

// New creates an empty book.
func New() *Book {
	return &Book{
		entries: make(map[uint64][]BookEntry),
	}
}

// Load reads a binary book from a file.
func Load(filename string) (*Book, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadReader(file)
}

// LoadReader reads a binary book from r until EOF.
func LoadReader(r io.Reader) (*Book, error) {
	book := New()

	var entry [EntrySize]byte
	for n := 0; ; n++ {
		_, err := io.ReadFull(r, entry[:])
		if err == io.EOF {
			break
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("entry %d: truncated", n)
		}
		if err != nil {
			return nil, err
		}

		key := binary.BigEndian.Uint64(entry[0:8])
		sq, ok := board.SquareAt(int(entry[8]), int(entry[9]))
		if !ok {
			return nil, fmt.Errorf("entry %d: move %d,%d: %w", n, entry[8], entry[9], board.ErrOutOfBounds)
		}
		book.Add(key, sq, binary.BigEndian.Uint16(entry[10:12]))
	}

	return book, nil
}

// Add records move for the position hash. Adding a move that is already
// present keeps the larger weight.
func (b *Book) Add(hash uint64, move board.Square, weight uint16) {
	entries := b.entries[hash]
	for i := range entries {
		if entries[i].Move == move {
			entries[i].Weight = max(entries[i].Weight, weight)
			return
		}
	}
	b.entries[hash] = append(entries, BookEntry{Move: move, Weight: weight})
}

// Merge adds every entry of other to b.
func (b *Book) Merge(other *Book) {
	if other == nil {
		return
	}
	for hash, entries := range other.entries {
		for _, e := range entries {
			b.Add(hash, e.Move, e.Weight)
		}
	}
}

// Probe returns the highest weighted move stored for the position. Among equal
// weights the entry added first wins. A move whose cell is no longer empty is
// skipped, which also guards against hash collisions.
func (b *Book) Probe(pos *board.Board) (board.Square, bool) {
	for _, e := range b.ProbeAll(pos.Hash()) {
		if pos.At(e.Move) == board.Empty {
			return e.Move, true
		}
	}
	return board.NoSquare, false
}

// ProbeAll returns all book moves for hash, sorted by weight.
func (b *Book) ProbeAll(hash uint64) []BookEntry {
	if b == nil {
		return nil
	}

	entries, ok := b.entries[hash]
	if !ok {
		return nil
	}

	result := make([]BookEntry, len(entries))
	copy(result, entries)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Weight > result[j].Weight
	})

	return result
}

// WriteTo writes the book in the binary format, hashes ascending.
func (b *Book) WriteTo(w io.Writer) (int64, error) {
	keys := make([]uint64, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var written int64
	var entry [EntrySize]byte
	for _, k := range keys {
		for _, e := range b.entries[k] {
			binary.BigEndian.PutUint64(entry[0:8], k)
			entry[8] = byte(e.Move.X())
			entry[9] = byte(e.Move.Y())
			binary.BigEndian.PutUint16(entry[10:12], e.Weight)
			n, err := w.Write(entry[:])
			written += int64(n)
			if err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// Size returns the number of unique positions in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
