// Package logging builds the slog loggers used by goapforge.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel maps debug, info, warn and error (any case) to a slog level.
// An empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}

// Resolve picks the effective level and format: flag value first, then the
// configured value, then info/text.
func Resolve(flagLevel, flagFormat, cfgLevel, cfgFormat string) (slog.Level, string, error) {
	levelStr := flagLevel
	if levelStr == "" {
		levelStr = cfgLevel
	}
	level, err := ParseLevel(levelStr)
	if err != nil {
		return level, "", err
	}
	format := flagFormat
	if format == "" {
		format = cfgFormat
	}
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "":
		format = "text"
	case "text", "json":
	default:
		return level, "", fmt.Errorf("invalid log format: %s", format)
	}
	return level, format, nil
}

// New returns a logger writing to w. format is "json" or "text".
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
