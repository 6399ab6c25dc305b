package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/pbrain/internal/config"
	"github.com/hailam/pbrain/internal/engine"
	"github.com/hailam/pbrain/internal/protocol"
	"github.com/hailam/pbrain/internal/storage"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	configPath = flag.String("config", "", "config file (default: pbrain.yaml next to the binary or in the working directory)")
	exportPath = flag.String("export-book", "", "write the learned book to this file in binary book format and exit")
)

func main() {
	flag.Parse()

	// stdout belongs to the referee.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(*configPath, ".", executableDir())
	if err != nil {
		log.Fatal().Err(err).Msg("config-load-failed")
	}
	zerolog.SetGlobalLevel(cfg.Level())
	log.Debug().Str("file", cfg.File).Dur("move-time", cfg.MoveTime).Int("max-depth", cfg.MaxDepth).Msg("config-loaded")

	if *exportPath != "" {
		st, err := openStorage(cfg.DataDir)
		if err != nil {
			log.Fatal().Err(err).Msg("storage-unavailable")
		}
		n, err := exportBook(st, *exportPath)
		st.Close()
		if err != nil {
			log.Fatal().Err(err).Str("path", *exportPath).Msg("book-export-failed")
		}
		log.Info().Str("path", *exportPath).Int("positions", n).Msg("book-exported")
		return
	}

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could-not-create-cpu-profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could-not-start-cpu-profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("cpu-profiling-enabled")
	}

	eng := engine.NewEngine(cfg.EngineOptions())

	// Storage failures only disable learning and stats.
	var st *storage.Storage
	if cfg.LearnBook || cfg.RecordStats {
		st, err = openStorage(cfg.DataDir)
		if err != nil {
			log.Warn().Err(err).Msg("storage-unavailable")
		} else {
			defer st.Close()
		}
	}
	if err := attach(eng, cfg, st); err != nil {
		log.Warn().Err(err).Msg("book-not-loaded")
	}

	p := protocol.New(eng, os.Stdout)
	if err := p.Run(os.Stdin); err != nil {
		log.Error().Err(err).Msg("protocol-read-failed")
	}
}

func openStorage(dataDir string) (*storage.Storage, error) {
	dir, err := storage.GetDatabaseDir(dataDir)
	if err != nil {
		return nil, err
	}
	st, err := storage.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dir, err)
	}
	return st, nil
}

func executableDir() string {
	ex, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(ex)
}
