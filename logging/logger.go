// Package logging builds structured zerolog loggers for the engine,
// following the console/file wrapper pattern used by the pack's
// internal/logger package.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the logger's output and verbosity.
type Config struct {
	Level      string // "debug", "info", "warn", "error"; defaults to "info"
	Console    bool   // pretty-print to stderr instead of newline-JSON
	FilePath   string // when set, also write rotated JSON logs here
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds a zerolog.Logger from cfg. Writers fan out to stderr
// (console or JSON) and, when FilePath is set, to a lumberjack-rotated
// file sink.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		writers = append(writers, os.Stderr)
	}
	if cfg.FilePath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 5),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
		})
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Nop returns a logger that discards everything, for tests and
// callers that don't want output.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
