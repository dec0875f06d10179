package capability

import (
	"os"
	"strings"
)

// LookupFunc reads one environment variable. It has the shape of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// OSLookup reads the real process environment.
func OSLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapLookup returns a LookupFunc backed by a fixed map, mainly for tests.
func MapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// Bool reports the first of keys that is set to a non-empty value.
// Recognised falsy values are 0, false, no and off; any other non-empty
// value counts as true.
func Bool(lookup LookupFunc, keys ...string) (value bool, set bool) {
	for _, key := range keys {
		raw, ok := lookup(key)
		if !ok {
			continue
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		return parseBool(raw), true
	}
	return false, false
}

// String returns the trimmed value of the first non-empty key.
func String(lookup LookupFunc, keys ...string) (string, bool) {
	for _, key := range keys {
		if raw, ok := lookup(key); ok {
			if raw = strings.TrimSpace(raw); raw != "" {
				return raw, true
			}
		}
	}
	return "", false
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "0", "false", "no", "off", "n", "f":
		return false
	}
	return true
}

// enabled is a convenience for "set and truthy".
func enabled(lookup LookupFunc, keys ...string) bool {
	v, ok := Bool(lookup, keys...)
	return ok && v
}
