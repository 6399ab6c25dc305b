package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/pbrain/internal/config"
	"github.com/hailam/pbrain/internal/engine"
	"github.com/hailam/pbrain/internal/selfplay"
	"github.com/hailam/pbrain/internal/storage"
)

var (
	games      = flag.Int("games", 10, "number of games to play")
	threads    = flag.Int("threads", 0, "games played at once (default GOMAXPROCS)")
	depth      = flag.Int("depth", 0, "search depth for both players (default from config)")
	depthB     = flag.Int("depth-b", 0, "search depth for player 1 (default -depth)")
	moveTime   = flag.Duration("movetime", 0, "time per move (default from config)")
	configPath = flag.String("config", "", "config file")
	record     = flag.Bool("record", false, "record player 0's results in the stats database")
)

func main() {
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(*configPath, ".")
	if err != nil {
		log.Fatal().Err(err).Msg("config-load-failed")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	if *depth > 0 {
		cfg.MaxDepth = *depth
	}
	if *moveTime > 0 {
		cfg.MoveTime = *moveTime
	}
	a := cfg.EngineOptions()
	b := a
	if *depthB > 0 {
		b.MaxDepth = *depthB
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	match := selfplay.MatchConfig{
		Games:   *games,
		Threads: *threads,
		Players: [2]engine.Options{a, b},
	}

	var st *storage.Storage
	if *record {
		dir, err := storage.GetDatabaseDir(cfg.DataDir)
		if err != nil {
			log.Fatal().Err(err).Msg("storage-unavailable")
		}
		st, err = storage.Open(dir)
		if err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("storage-unavailable")
		}
		defer st.Close()

		var mu sync.Mutex
		match.OnGame = func(rec selfplay.GameRecord) {
			mu.Lock()
			defer mu.Unlock()
			err := st.RecordGame(storage.GameResult{
				Won:        rec.Winner == 0,
				Draw:       rec.Winner == selfplay.Draw,
				MovedFirst: rec.MovedFirst(0),
				Moves:      len(rec.Moves),
				Duration:   rec.Duration,
			})
			if err != nil {
				log.Warn().Err(err).Int("game", rec.Index).Msg("stats-save-failed")
			}
		}
	}

	log.Info().Int("games", *games).Int("depth-a", a.MaxDepth).Int("depth-b", b.MaxDepth).Dur("move-time", a.MoveTime).Msg("match-starting")
	records, err := selfplay.Play(ctx, match)
	if err != nil {
		log.Fatal().Err(err).Msg("match-failed")
	}
	fmt.Println(selfplay.Summarize(records))

	if st != nil {
		stats, err := st.LoadStats()
		if err != nil {
			log.Fatal().Err(err).Msg("stats-load-failed")
		}
		fmt.Printf("recorded: games=%d win-rate=%.1f%% avg-moves=%.1f\n",
			stats.GamesPlayed, stats.GetWinRate(), stats.AverageMoves())
	}
}
