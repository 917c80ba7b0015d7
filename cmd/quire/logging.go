package main

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/sagarc03/quire/config"
)

// setupLogging installs the configured handler as the slog default and routes the
// standard logger through it, so library output shares one format.
func setupLogging(cfg config.LogConfig) {
	logger := slog.New(newLogHandler(cfg, os.Stdout, os.Stderr))
	slog.SetDefault(logger)

	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(logger.Handler(), slog.LevelInfo).Writer())
}

// newLogHandler writes json lines to stdout for collectors and colored text to
// stderr for terminals.
func newLogHandler(cfg config.LogConfig, stdout, stderr io.Writer) slog.Handler {
	level := parseLevel(cfg.Level)

	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(stdout, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: utcTimestamp,
		})
	}

	return tint.NewHandler(stderr, &tint.Options{
		Level:      level,
		AddSource:  level <= slog.LevelDebug,
		TimeFormat: time.TimeOnly + ".000",
	})
}

func utcTimestamp(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339Nano))
	}
	return a
}

// parseLevel falls back to info for anything it does not recognise.
func parseLevel(s string) slog.Level {
	var level slog.Level
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		s = "warn"
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
