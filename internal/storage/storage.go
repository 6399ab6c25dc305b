package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/pbrain/internal/board"
	"github.com/hailam/pbrain/internal/book"
)

// Storage keys
const (
	keyStats      = "stats"
	keyBookPrefix = "book/"
)

// GameStats stores game statistics
type GameStats struct {
	GamesPlayed    int            `json:"games_played"`
	Wins           int            `json:"wins"`
	Losses         int            `json:"losses"`
	Draws          int            `json:"draws"`
	WinsByOpener   map[string]int `json:"wins_by_opener"`
	TotalMoves     int            `json:"total_moves"`
	TotalPlayTime  time.Duration  `json:"total_play_time"`
	LongestWinStrk int            `json:"longest_win_streak"`
	CurrentStreak  int            `json:"current_streak"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{
		WinsByOpener: make(map[string]int),
	}
}

// GameResult represents the result of a completed game
type GameResult struct {
	Won        bool
	Draw       bool
	MovedFirst bool
	Moves      int
	Duration   time.Duration
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens (or creates) the database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // stdout belongs to the protocol

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *GameStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyStats), data)
	})
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Use empty stats
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})
	if stats.WinsByOpener == nil {
		stats.WinsByOpener = make(map[string]int)
	}

	return stats, err
}

// RecordGame records a completed game and updates statistics
func (s *Storage) RecordGame(result GameResult) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.TotalMoves += result.Moves
	stats.TotalPlayTime += result.Duration

	openerKey := "second"
	if result.MovedFirst {
		openerKey = "first"
	}

	if result.Draw {
		stats.Draws++
		stats.CurrentStreak = 0
	} else if result.Won {
		stats.Wins++
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.LongestWinStrk {
			stats.LongestWinStrk = stats.CurrentStreak
		}
		stats.WinsByOpener[openerKey]++
	} else {
		stats.Losses++
		stats.CurrentStreak = 0
	}

	return s.SaveStats(stats)
}

// GetWinRate returns the win rate as a percentage (0-100)
func (s *GameStats) GetWinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100
}

// AverageMoves returns the mean number of stones placed per game.
func (s *GameStats) AverageMoves() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.TotalMoves) / float64(s.GamesPlayed)
}

func bookKey(hash uint64) []byte {
	key := make([]byte, len(keyBookPrefix)+8)
	copy(key, keyBookPrefix)
	binary.BigEndian.PutUint64(key[len(keyBookPrefix):], hash)
	return key
}

// SaveBookMove stores move as a reply to the position hash. A move already
// stored for the hash keeps the larger of the two weights.
func (s *Storage) SaveBookMove(hash uint64, move board.Square, weight uint16) error {
	key := bookKey(hash)
	return s.db.Update(func(txn *badger.Txn) error {
		var entries []book.BookEntry
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entries)
			})
			if err != nil {
				return err
			}
		}

		found := false
		for i := range entries {
			if entries[i].Move == move {
				entries[i].Weight = max(entries[i].Weight, weight)
				found = true
			}
		}
		if !found {
			entries = append(entries, book.BookEntry{Move: move, Weight: weight})
		}

		data, err := json.Marshal(entries)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// LoadBook builds a book from every stored entry.
func (s *Storage) LoadBook() (*book.Book, error) {
	bk := book.New()

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keyBookPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			hash := binary.BigEndian.Uint64(item.Key()[len(prefix):])

			var entries []book.BookEntry
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entries)
			})
			if err != nil {
				return err
			}
			for _, e := range entries {
				bk.Add(hash, e.Move, e.Weight)
			}
		}
		return nil
	})

	return bk, err
}
