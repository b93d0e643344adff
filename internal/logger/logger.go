package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/lumberjack.v2"

	"daylog/internal/config"
)

// New builds a JSON slog.Logger writing to stdout and/or a rotated file,
// depending on configuration.
func New(cfg config.LogConfig) *slog.Logger {
	level := parseLevel(cfg.Level)

	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, os.Stdout)
	}
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		})
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	h := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

// Init installs the configured logger as the process default.
func Init(cfg config.LogConfig) *slog.Logger {
	l := New(cfg)
	slog.SetDefault(l)
	return l
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
