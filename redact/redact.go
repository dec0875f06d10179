// Package redact masks sensitive data in log messages, arguments and slog
// records.
//
// Masking is key based: a value is hidden when the key it is stored under
// (a map key, a struct field or its json tag, a key=value pair inside a
// string) looks like a credential.
package redact

import (
	"context"
	"log/slog"
	"reflect"
	"regexp"
	"strings"
)

// Mask is the fixed replacement for a sensitive value. Its length does not
// depend on the hidden value.
const Mask = "********"

const circular = "[Circular Reference]"

// SensitiveKeys holds keys considered sensitive for masking.
var SensitiveKeys = map[string]struct{}{
	"password": {}, "pwd": {}, "pass": {}, "passwd": {},
	"token": {}, "jwt": {}, "auth_token": {}, "access_token": {}, "refresh_token": {},
	"api_key": {}, "apikey": {}, "secret": {}, "client_secret": {}, "private_key": {},
	"auth": {}, "credential": {}, "credentials": {}, "bearer": {}, "authorization": {},
	"cookie": {}, "salt": {},
}

var keyValuePattern = regexp.MustCompile(`(?i)(^|[\s,;{\[?&])"?([A-Za-z0-9_.-]+)"?\s*[:=]\s*("([^"]*)"|'([^']*)'|([^\s,\]};&]+))`)
var bearerPattern = regexp.MustCompile(`(?i)\b(bearer|basic)\s+([A-Za-z0-9\-._~+/]+=*)`)

// userinfoPattern matches the password of a URL's user:password@ part.
var userinfoPattern = regexp.MustCompile(`([A-Za-z][A-Za-z0-9+.-]*://[^:/@\s]*:)([^@/\s]+)@`)

// IsSensitiveKey reports whether key names a credential. Matching is
// case-insensitive and also accepts keys that contain a sensitive word
// ("db_password", "X-Auth-Token").
func IsSensitiveKey(key string) bool {
	if key == "" {
		return false
	}
	key = strings.ToLower(strings.ReplaceAll(key, "-", "_"))
	if _, ok := SensitiveKeys[key]; ok {
		return true
	}
	for k := range SensitiveKeys {
		if len(k) > 3 && strings.Contains(key, k) {
			return true
		}
	}
	return false
}

// String masks the values of sensitive key=value and key: value pairs,
// bearer credentials and URL passwords found inside free text.
func String(s string) string {
	if s == "" {
		return s
	}
	s = userinfoPattern.ReplaceAllString(s, "${1}"+Mask+"@")
	s = bearerPattern.ReplaceAllString(s, "${1} "+Mask)
	return maskKeyValuePairs(s)
}

func maskKeyValuePairs(val string) string {
	matches := keyValuePattern.FindAllStringSubmatchIndex(val, -1)
	if len(matches) == 0 {
		return val
	}

	var b strings.Builder
	last := 0
	for _, match := range matches {
		keyStart, keyEnd := match[4], match[5]
		if keyStart < 0 || !IsSensitiveKey(val[keyStart:keyEnd]) {
			continue
		}

		// Quoted values mask the inside of the quotes only.
		valueStart, valueEnd := -1, -1
		for _, group := range []int{8, 10, 12} {
			if match[group] >= 0 {
				valueStart, valueEnd = match[group], match[group+1]
				break
			}
		}
		if valueStart < 0 || valueStart < last {
			continue
		}

		b.WriteString(val[last:valueStart])
		b.WriteString(Mask)
		last = valueEnd
	}
	b.WriteString(val[last:])
	return b.String()
}

// Value walks v and masks every value stored under a sensitive key.
// Strings found anywhere in the tree go through String. Maps, slices and
// structs are returned as map[string]any and []any copies; v itself is
// never modified.
func Value(v any) any {
	return maskValue(v, "", map[uintptr]struct{}{})
}

func maskValue(v any, keyHint string, seen map[uintptr]struct{}) any {
	if v == nil {
		return nil
	}

	if IsSensitiveKey(keyHint) {
		switch v.(type) {
		case string, []byte:
			return Mask
		}
	}

	switch val := v.(type) {
	case string:
		return String(val)
	case map[string]any:
		if !visit(reflect.ValueOf(val).Pointer(), seen) {
			return circular
		}
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[k] = maskValue(vv, k, seen)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, vv := range val {
			if IsSensitiveKey(k) {
				out[k] = Mask
			} else {
				out[k] = String(vv)
			}
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, vv := range val {
			out[i] = maskValue(vv, "", seen)
		}
		return out
	case []slog.Attr:
		out := make([]slog.Attr, 0, len(val))
		for _, attr := range val {
			out = append(out, Attr(attr))
		}
		return out
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return v
		}
		if !visit(rv.Pointer(), seen) {
			return circular
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = maskValue(rv.Index(i).Interface(), "", seen)
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		if !visit(rv.Pointer(), seen) {
			return circular
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			out[k] = maskValue(iter.Value().Interface(), k, seen)
		}
		return out
	case reflect.Struct:
		typeOf := rv.Type()
		out := make(map[string]any, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			field := typeOf.Field(i)
			if field.PkgPath != "" { // unexported
				continue
			}
			key := field.Name
			if tag := field.Tag.Get("json"); tag != "" && tag != "-" {
				if before, _, ok := strings.Cut(tag, ","); ok {
					key = before
				} else {
					key = tag
				}
			}
			out[key] = maskValue(rv.Field(i).Interface(), key, seen)
		}
		return out
	}
	return v
}

// visit records ptr and reports whether it was seen for the first time.
func visit(ptr uintptr, seen map[uintptr]struct{}) bool {
	if ptr == 0 {
		return true
	}
	if _, ok := seen[ptr]; ok {
		return false
	}
	seen[ptr] = struct{}{}
	return true
}

// Attr masks a single slog attribute, descending into groups.
func Attr(attr slog.Attr) slog.Attr {
	switch attr.Value.Kind() {
	case slog.KindGroup:
		group := attr.Value.Group()
		masked := make([]any, 0, len(group))
		for _, a := range group {
			masked = append(masked, Attr(a))
		}
		return slog.Group(attr.Key, masked...)
	case slog.KindString:
		if IsSensitiveKey(attr.Key) {
			return slog.String(attr.Key, Mask)
		}
		return slog.String(attr.Key, String(attr.Value.String()))
	case slog.KindAny:
		return slog.Any(attr.Key, maskValue(attr.Value.Any(), attr.Key, map[uintptr]struct{}{}))
	}
	if IsSensitiveKey(attr.Key) {
		return slog.String(attr.Key, Mask)
	}
	return attr
}

// Handler wraps a slog.Handler and masks sensitive data inside records.
type Handler struct{ Next slog.Handler }

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.Next.Enabled(ctx, level)
}

// Handle masks sensitive attributes then delegates to the wrapped handler.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	nr := slog.NewRecord(r.Time, r.Level, String(r.Message), r.PC)
	r.Attrs(func(attr slog.Attr) bool {
		nr.AddAttrs(Attr(attr))
		return true
	})
	return h.Next.Handle(ctx, nr)
}

// WithAttrs returns a new Handler whose underlying handler has the given attrs.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = Attr(a)
	}
	return &Handler{Next: h.Next.WithAttrs(masked)}
}

// WithGroup returns a new Handler whose underlying handler has the given group.
func (h *Handler) WithGroup(group string) slog.Handler {
	return &Handler{Next: h.Next.WithGroup(group)}
}
