// Package config loads brain settings from defaults, an optional pbrain.yaml
// and GOMOKU_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/hailam/pbrain/internal/engine"
)

const (
	envPrefix  = "GOMOKU"
	configName = "pbrain"
)

// Config keys
const (
	KeyMoveTime    = "move_time"
	KeyMaxDepth    = "max_depth"
	KeyTTBits      = "tt_bits"
	KeyLogLevel    = "log_level"
	KeyDebug       = "debug"
	KeyBookPath    = "book_path"
	KeyLearnBook   = "learn_book"
	KeyRecordStats = "record_stats"
	KeyDataDir     = "data_dir"
)

// Config holds every setting of the brain.
type Config struct {
	MoveTime    time.Duration
	MaxDepth    int
	TTBits      int
	LogLevel    string
	Debug       bool
	BookPath    string
	LearnBook   bool
	RecordStats bool
	DataDir     string

	// File is the config file that was read, empty if none.
	File string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyMoveTime, engine.DefaultMoveTime)
	v.SetDefault(KeyMaxDepth, engine.MaxDepth)
	v.SetDefault(KeyTTBits, engine.DefaultTTBits)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyBookPath, "")
	v.SetDefault(KeyLearnBook, false)
	v.SetDefault(KeyRecordStats, false)
	v.SetDefault(KeyDataDir, "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration. A non-empty path must name a readable file;
// otherwise pbrain.yaml is looked up in each of searchDirs and skipped when
// absent.
func Load(path string, searchDirs ...string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		for _, dir := range searchDirs {
			if dir != "" {
				v.AddConfigPath(dir)
			}
		}
		if len(searchDirs) > 0 {
			err := v.ReadInConfig()
			var notFound viper.ConfigFileNotFoundError
			if err != nil && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{
		MoveTime:    v.GetDuration(KeyMoveTime),
		MaxDepth:    v.GetInt(KeyMaxDepth),
		TTBits:      v.GetInt(KeyTTBits),
		LogLevel:    strings.ToLower(v.GetString(KeyLogLevel)),
		Debug:       v.GetBool(KeyDebug),
		BookPath:    v.GetString(KeyBookPath),
		LearnBook:   v.GetBool(KeyLearnBook),
		RecordStats: v.GetBool(KeyRecordStats),
		DataDir:     v.GetString(KeyDataDir),
		File:        v.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no engine could run with.
func (c *Config) Validate() error {
	if c.MoveTime <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyMoveTime, c.MoveTime)
	}
	if c.MaxDepth < 1 || c.MaxDepth > engine.MaxDepth {
		return fmt.Errorf("%s must be in [1,%d], got %d", KeyMaxDepth, engine.MaxDepth, c.MaxDepth)
	}
	if c.TTBits < 0 {
		return fmt.Errorf("%s must not be negative, got %d", KeyTTBits, c.TTBits)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	return nil
}

// Level is the log level to run with. Debug overrides LogLevel.
func (c *Config) Level() zerolog.Level {
	if c.Debug {
		return zerolog.DebugLevel
	}
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// EngineOptions returns the engine settings of c.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		TTBits:   c.TTBits,
		MaxDepth: c.MaxDepth,
		MoveTime: c.MoveTime,
	}
}
