package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/chess-backend/internal/model"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the server settings. Flags win over environment variables,
// which win over the defaults.
type Config struct {
	Addr         string
	AllowOrigins string
	DBDir        string
	InMemory     bool
	LogLevel     log.Level
	TimeControl  model.TimeControl
}

var levels = map[string]log.Level{
	"trace": log.LevelTrace,
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
	"fatal": log.LevelFatal,
	"panic": log.LevelPanic,
}

// Load reads the configuration from command line args (without the program
// name) and getenv.
func Load(args []string, getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	fs := flag.NewFlagSet("chess-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	addr := fs.String("addr", env("CHESS_ADDR", ":3000"), "listen address")
	origins := fs.String("allow-origins", env("CHESS_ALLOW_ORIGINS", "http://localhost:5173"), "comma separated CORS origins")
	dbDir := fs.String("db", env("CHESS_DB_DIR", "data"), "badger directory for saved games")
	inMemory := fs.String("in-memory", env("CHESS_IN_MEMORY", "false"), "keep saved games in memory only")
	level := fs.String("log-level", env("CHESS_LOG_LEVEL", "info"), "log level")
	tc := fs.String("time-control", env("CHESS_TIME_CONTROL", model.Blitz.Name), "default time control")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg := Config{
		Addr:         *addr,
		AllowOrigins: *origins,
		DBDir:        *dbDir,
	}
	var err error
	if cfg.InMemory, err = strconv.ParseBool(*inMemory); err != nil {
		return Config{}, fmt.Errorf("%w: in-memory: %v", ErrInvalidConfig, err)
	}
	lvl, ok := levels[strings.ToLower(*level)]
	if !ok {
		return Config{}, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, *level)
	}
	cfg.LogLevel = lvl
	if cfg.TimeControl, err = model.ParseTimeControl(*tc); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.Addr == "" {
		return Config{}, fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	}
	if !cfg.InMemory && cfg.DBDir == "" {
		return Config{}, fmt.Errorf("%w: a db directory is required unless running in memory", ErrInvalidConfig)
	}
	return cfg, nil
}
