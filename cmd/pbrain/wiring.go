package main

import (
	"errors"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/hailam/pbrain/internal/book"
	"github.com/hailam/pbrain/internal/config"
	"github.com/hailam/pbrain/internal/engine"
	"github.com/hailam/pbrain/internal/storage"
)

// Root results worth remembering.
const (
	learnMinDepth  = 4
	learnMaxStones = 6
)

// attach installs the book and the storage callbacks configured in cfg.
// st may be nil, in which case learning and stats are off.
func attach(eng *engine.Engine, cfg *config.Config, st *storage.Storage) error {
	var errs []error
	bk := book.New()

	if cfg.BookPath != "" {
		fileBook, err := book.Load(cfg.BookPath)
		if err != nil {
			errs = append(errs, err)
		} else {
			bk.Merge(fileBook)
			log.Info().Str("path", cfg.BookPath).Int("positions", fileBook.Size()).Msg("book-loaded")
		}
	}

	if st != nil && cfg.LearnBook {
		learned, err := st.LoadBook()
		if err != nil {
			errs = append(errs, err)
		} else {
			bk.Merge(learned)
			log.Debug().Int("positions", learned.Size()).Msg("learned-book-loaded")
		}
		eng.OnResult = learnHook(st)
	}

	if st != nil && cfg.RecordStats {
		eng.OnGameOver = statsHook(st)
	}

	if bk.Size() > 0 {
		eng.SetBook(bk)
	}
	return errors.Join(errs...)
}

// learnHook saves deep opening search results as book moves.
func learnHook(st *storage.Storage) func(engine.SearchResult) {
	return func(res engine.SearchResult) {
		if res.Source != engine.SourceSearch || res.Depth < learnMinDepth || res.Stones > learnMaxStones {
			return
		}
		if err := st.SaveBookMove(res.Hash, res.Move, uint16(res.Depth)); err != nil {
			log.Warn().Err(err).Msg("book-save-failed")
			return
		}
		log.Debug().Uint64("hash", res.Hash).Str("move", res.Move.String()).Int("depth", res.Depth).Msg("book-move-learned")
	}
}

// statsHook records every finished game.
func statsHook(st *storage.Storage) func(engine.GameResult) {
	return func(gr engine.GameResult) {
		err := st.RecordGame(storage.GameResult{
			Won:        gr.Outcome == engine.Win,
			Draw:       gr.Outcome == engine.Draw,
			MovedFirst: gr.MovedFirst,
			Moves:      gr.Moves,
			Duration:   gr.Duration,
		})
		if err != nil {
			log.Warn().Err(err).Msg("stats-save-failed")
		}
	}
}

// exportBook writes every learned book entry to path and returns the number
// of positions written.
func exportBook(st *storage.Storage, path string) (int, error) {
	bk, err := st.LoadBook()
	if err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	if _, err := bk.WriteTo(f); err != nil {
		f.Close()
		return 0, err
	}
	return bk.Size(), f.Close()
}
