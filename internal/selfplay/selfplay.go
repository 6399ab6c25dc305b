// Package selfplay plays engine-vs-engine matches.
package selfplay

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/pbrain/internal/board"
	"github.com/hailam/pbrain/internal/engine"
)

// Draw is the Winner of a drawn game.
const Draw = -1

// MatchConfig describes a match between two players, 0 and 1. Each game
// gets two fresh engines; player 0 moves first in even-numbered games.
type MatchConfig struct {
	Games   int
	Threads int // concurrent games, defaults to GOMAXPROCS
	Players [2]engine.Options

	// OnGame is called once per finished game, from the game's goroutine.
	OnGame func(GameRecord)
}

// GameRecord is one finished game.
type GameRecord struct {
	Index    int
	First    int            // player who moved first
	Moves    []board.Square // in play order
	Winner   int            // 0, 1 or Draw
	Duration time.Duration
}

// MovedFirst reports whether player moved first in the game.
func (g GameRecord) MovedFirst(player int) bool {
	return g.First == player
}

// Summary tallies a match from player 0's point of view.
type Summary struct {
	Games     int
	Wins      int
	Losses    int
	Draws     int
	FirstWins int // games won by whoever moved first
	AvgMoves  float64
	TotalTime time.Duration
}

func (s Summary) String() string {
	return fmt.Sprintf("games=%d wins=%d losses=%d draws=%d first-player-wins=%d avg-moves=%.1f time=%s",
		s.Games, s.Wins, s.Losses, s.Draws, s.FirstWins, s.AvgMoves, s.TotalTime.Round(time.Millisecond))
}

// Play runs cfg.Games games and returns them ordered by index. Cancelling
// ctx stops the match after the current move of every running game.
func Play(ctx context.Context, cfg MatchConfig) ([]GameRecord, error) {
	if cfg.Games <= 0 {
		return nil, errors.New("selfplay: games must be positive")
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	players := shareMemory(cfg.Players, threads, memory.TotalMemory()/4)

	records := make([]GameRecord, cfg.Games)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)

	for i := 0; i < cfg.Games; i++ {
		i := i // per-iteration copy (go directive is 1.21)
		g.Go(func() error {
			rec, err := PlayGame(ctx, i, players)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			records[i] = rec
			log.Debug().
				Int("game", i).
				Int("winner", rec.Winner).
				Int("moves", len(rec.Moves)).
				Dur("duration", rec.Duration).
				Msg("selfplay-game-finished")
			if cfg.OnGame != nil {
				cfg.OnGame(rec)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// shareMemory caps each player's table so that the 2*threads engines alive at
// once fit in total bytes together. A total of 0 means unknown.
func shareMemory(players [2]engine.Options, threads int, total uint64) [2]engine.Options {
	if total == 0 {
		return players
	}
	perEngine := total / uint64(2*threads)
	for p := range players {
		if players[p].MaxMemory == 0 || players[p].MaxMemory > perEngine {
			players[p].MaxMemory = perEngine
		}
	}
	return players
}

// PlayGame plays game index to the end between two new engines.
func PlayGame(ctx context.Context, index int, players [2]engine.Options) (GameRecord, error) {
	rec := GameRecord{Index: index, First: index % 2, Winner: Draw}
	start := time.Now()

	var engines [2]*engine.Engine
	for p := range engines {
		engines[p] = engine.NewEngine(players[p])
		if err := engines[p].Start(board.Size); err != nil {
			return rec, err
		}
	}

	mover := rec.First
	sq, err := engines[mover].Begin()
	if err != nil {
		return rec, err
	}
	rec.Moves = append(rec.Moves, sq)

	for {
		if err := ctx.Err(); err != nil {
			return rec, err
		}
		mover = 1 - mover
		sq, err = engines[mover].OpponentMove(sq.X(), sq.Y())
		switch {
		case errors.Is(err, engine.ErrGameOver):
			// The move just received completed five.
			rec.Winner = 1 - mover
			rec.Duration = time.Since(start)
			return rec, nil
		case errors.Is(err, engine.ErrNoLegalMove):
			rec.Duration = time.Since(start)
			return rec, nil
		case err != nil:
			return rec, err
		}
		rec.Moves = append(rec.Moves, sq)
	}
}

// Summarize tallies records from player 0's point of view.
func Summarize(records []GameRecord) Summary {
	s := Summary{Games: len(records)}
	s.Wins = lo.CountBy(records, func(r GameRecord) bool { return r.Winner == 0 })
	s.Losses = lo.CountBy(records, func(r GameRecord) bool { return r.Winner == 1 })
	s.Draws = lo.CountBy(records, func(r GameRecord) bool { return r.Winner == Draw })
	s.FirstWins = lo.CountBy(records, func(r GameRecord) bool { return r.Winner == r.First })
	s.TotalTime = lo.SumBy(records, func(r GameRecord) time.Duration { return r.Duration })
	if len(records) > 0 {
		moves := lo.SumBy(records, func(r GameRecord) int { return len(r.Moves) })
		s.AvgMoves = float64(moves) / float64(len(records))
	}
	return s
}
