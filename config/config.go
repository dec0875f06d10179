// Package config resolves the immutable logging configuration snapshot
// from detected terminal capabilities and explicit environment overrides.
//
// Precedence, highest first: explicit environment override, CI-derived
// default, interactive default.
package config

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/dianlight/tconsole/capability"
)

// TimestampFormat selects how timestamps are rendered.
type TimestampFormat string

const (
	// TimestampClock renders HH:MM:SS.
	TimestampClock TimestampFormat = "clock"
	// TimestampISO renders a full ISO-8601 timestamp.
	TimestampISO TimestampFormat = "iso"
)

// Source records where a resolved value came from.
type Source string

const (
	SourceEnv     Source = "env"
	SourceCI      Source = "ci"
	SourceDefault Source = "default"
)

// Config is one immutable configuration snapshot.
type Config struct {
	Level           slog.Level
	JSON            bool
	Colors          bool
	ShowTimestamp   bool
	TimestampFormat TimestampFormat
	ShowPrefix      bool
	ShowIcons       bool
	Unicode         bool
	Emoji           bool
	Interactive     bool
	CI              bool
	Redact          bool

	// Sources maps a setting name to where its value came from.
	Sources map[string]Source
}

// Enabled reports whether a record at level passes the configured threshold.
func (c Config) Enabled(level slog.Level) bool {
	return c.Level != LevelSilent && level >= c.Level
}

// Resolve combines a capability profile with the environment overrides
// found under prefix.
func Resolve(profile capability.Profile, lookup capability.LookupFunc, prefix string) Config {
	if lookup == nil {
		lookup = capability.OSLookup
	}
	cfg := Config{
		Level:       DefaultLevel,
		Colors:      profile.Color,
		Unicode:     profile.Unicode,
		Emoji:       profile.Emoji,
		Interactive: profile.Interactive,
		CI:          profile.CI,
		Sources:     map[string]Source{},
	}

	if raw, ok := capability.String(lookup, prefix+"LOG_LEVEL"); ok {
		cfg.Level = LevelOrDefault(raw)
		cfg.Sources["level"] = SourceEnv
	} else {
		cfg.Sources["level"] = SourceDefault
	}

	cfg.JSON = resolveBool(cfg.Sources, "json", lookup, prefix+"JSON", false, false, profile.CI)
	if cfg.JSON {
		// JSON consumers never want escape sequences.
		cfg.Colors = false
	}

	cfg.ShowTimestamp, cfg.TimestampFormat = resolveTimestamp(cfg.Sources, lookup, prefix, profile.CI)
	cfg.ShowPrefix = resolveBool(cfg.Sources, "prefix", lookup, prefix+"SHOW_PREFIX", true, true, profile.CI)
	cfg.ShowIcons = resolveBool(cfg.Sources, "icons", lookup, prefix+"SHOW_ICONS", profile.Unicode, true, profile.CI)
	cfg.Redact = resolveBool(cfg.Sources, "redact", lookup, prefix+"REDACT", false, false, profile.CI)
	return cfg
}

func resolveBool(sources map[string]Source, name string, lookup capability.LookupFunc, key string, ciDefault, interactiveDefault, ci bool) bool {
	if v, ok := capability.Bool(lookup, key); ok {
		sources[name] = SourceEnv
		return v
	}
	if ci {
		sources[name] = SourceCI
		return ciDefault
	}
	sources[name] = SourceDefault
	return interactiveDefault
}

func resolveTimestamp(sources map[string]Source, lookup capability.LookupFunc, prefix string, ci bool) (bool, TimestampFormat) {
	if raw, ok := capability.String(lookup, prefix+"TIMESTAMP"); ok {
		sources["timestamp"] = SourceEnv
		if strings.EqualFold(raw, string(TimestampISO)) {
			return true, TimestampISO
		}
		v, _ := capability.Bool(lookup, prefix+"TIMESTAMP")
		return v, TimestampClock
	}
	if ci {
		sources["timestamp"] = SourceCI
		return true, TimestampISO
	}
	sources["timestamp"] = SourceDefault
	return false, TimestampClock
}

// Resolver lazily resolves a Config once and hands out the same snapshot
// until Reset. It owns the capability Detector it resolves from.
type Resolver struct {
	detector *capability.Detector

	once sync.Once
	mu   sync.RWMutex
	cfg  Config

	overrides []func(*Config)
}

// NewResolver returns a Resolver reading from detector.
func NewResolver(detector *capability.Detector) *Resolver {
	if detector == nil {
		detector = &capability.Detector{}
	}
	return &Resolver{detector: detector}
}

// Detector returns the capability detector backing the resolver.
func (r *Resolver) Detector() *capability.Detector { return r.detector }

// Config returns the current snapshot, resolving it on first use.
func (r *Resolver) Config() Config {
	r.once.Do(r.resolve)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// Override registers a programmatic adjustment applied after environment
// resolution, and re-applies the snapshot.
func (r *Resolver) Override(fn func(*Config)) {
	r.once.Do(r.resolve)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides = append(r.overrides, fn)
	fn(&r.cfg)
}

// Reset drops the cached snapshot and the detector's profile.
// Programmatic overrides are kept.
func (r *Resolver) Reset() {
	r.detector.Reset()
	r.mu.Lock()
	r.once = sync.Once{}
	r.mu.Unlock()
}

func (r *Resolver) resolve() {
	profile := r.detector.Detect()
	cfg := Resolve(profile, r.detector.LookupEnv(), r.detector.EnvPrefix())
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, fn := range r.overrides {
		fn(&cfg)
	}
	r.cfg = cfg
}

// ClearOverrides drops every programmatic override and resets the snapshot.
func (r *Resolver) ClearOverrides() {
	r.mu.Lock()
	r.overrides = nil
	r.mu.Unlock()
	r.Reset()
}
