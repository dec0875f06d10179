package config

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Custom log levels extending slog.Level
const (
	LevelTrace  slog.Level = -8
	LevelDebug  slog.Level = slog.LevelDebug
	LevelInfo   slog.Level = slog.LevelInfo
	LevelWarn   slog.Level = slog.LevelWarn
	LevelError  slog.Level = slog.LevelError
	LevelFatal  slog.Level = 12
	LevelSilent slog.Level = math.MaxInt32
)

// DefaultLevel is used when no level, or an unrecognised one, is configured.
const DefaultLevel = LevelInfo

// ErrUnknownLevel is returned by ParseLevel for names it does not know.
var ErrUnknownLevel = errors.Base("unknown log level")

// levelNames maps level strings to slog.Level values
var levelNames = map[string]slog.Level{
	"trace":   LevelTrace,
	"verbose": LevelTrace,
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"log":     LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn, // alias for warn
	"error":   LevelError,
	"fatal":   LevelFatal,
	"silent":  LevelSilent,
	"off":     LevelSilent,
}

// reverseLevelNames maps slog.Level values to canonical string names
var reverseLevelNames = map[slog.Level]string{
	LevelTrace:  "TRACE",
	LevelDebug:  "DEBUG",
	LevelInfo:   "INFO",
	LevelWarn:   "WARN",
	LevelError:  "ERROR",
	LevelFatal:  "FATAL",
	LevelSilent: "SILENT",
}

// ParseLevel converts a case-insensitive level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return DefaultLevel, errors.WithDetails(ErrUnknownLevel, "level", name)
	}
	level, ok := levelNames[normalized]
	if !ok {
		return DefaultLevel, errors.WithDetails(ErrUnknownLevel, "level", name, "supported", SupportedLevels())
	}
	return level, nil
}

// LevelOrDefault parses name and silently falls back to DefaultLevel.
func LevelOrDefault(name string) slog.Level {
	level, err := ParseLevel(name)
	if err != nil {
		return DefaultLevel
	}
	return level
}

// LevelName returns the canonical upper-case name of level.
func LevelName(level slog.Level) string {
	if name, ok := reverseLevelNames[level]; ok {
		return name
	}
	return level.String()
}

// SupportedLevels returns the accepted level names, sorted.
func SupportedLevels() []string {
	names := make([]string, 0, len(levelNames))
	for name := range levelNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
