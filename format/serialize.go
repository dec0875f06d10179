package format

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

// CircularMarker replaces every repeated reference in a serialized value.
const CircularMarker = "[Circular Reference]"

const (
	maxDepth       = 32
	maxStackFrames = 32
)

type stackTracer interface {
	StackTrace() []uintptr
}

// Serialize renders v as compact JSON. It never panics: values that cannot
// be encoded become a "[unserializable <type>]" placeholder.
func Serialize(v any) string {
	return marshal(Normalize(v), v)
}

// Normalize converts v into a tree of map[string]any, []any and scalars
// that encoding/json can always encode.
//
// One visited set covers the whole value: the second time a pointer, map
// or slice is reached it is replaced by CircularMarker. Errors become
// {name, message, stack, details, cause}, times become ISO-8601 strings,
// and funcs, channels and complex numbers become type tags.
func Normalize(v any) (out any) {
	defer func() {
		if r := recover(); r != nil {
			out = unserializable(v)
		}
	}()
	n := normalizer{seen: map[visitKey]struct{}{}}
	return n.value(v, 0)
}

type visitKey struct {
	ptr uintptr
	typ reflect.Type
	len int
}

type normalizer struct {
	seen map[visitKey]struct{}
}

// visit reports whether rv is reached for the first time.
func (n *normalizer) visit(rv reflect.Value) bool {
	key := visitKey{ptr: rv.Pointer(), typ: rv.Type()}
	if rv.Kind() == reflect.Slice {
		key.len = rv.Len()
	}
	if key.ptr == 0 {
		return true
	}
	if _, ok := n.seen[key]; ok {
		return false
	}
	n.seen[key] = struct{}{}
	return true
}

func (n *normalizer) value(v any, depth int) any {
	if v == nil {
		return nil
	}
	if depth > maxDepth {
		return "[Max Depth]"
	}

	switch val := v.(type) {
	case string, bool, json.Number:
		return val
	case time.Time:
		return val.Format(isoLayout)
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.Format(isoLayout)
	case time.Duration:
		return val.String()
	case error:
		if rv := reflect.ValueOf(val); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil
		}
		return n.error(val, depth)
	case json.Marshaler, encoding.TextMarshaler:
		if rv := reflect.ValueOf(val); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil
		}
		return val
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return f
	case reflect.String:
		return rv.String()
	case reflect.Complex64, reflect.Complex128:
		return "[complex]"
	case reflect.Func:
		return "[func]"
	case reflect.Chan:
		return "[chan]"
	case reflect.UnsafePointer:
		return "[pointer]"
	case reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return n.value(rv.Elem().Interface(), depth)
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		if !n.visit(rv) {
			return CircularMarker
		}
		elem := rv.Elem()
		if !elem.CanInterface() {
			return typeTag(rv.Type())
		}
		return n.value(elem.Interface(), depth+1)
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		if !n.visit(rv) {
			return CircularMarker
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[mapKey(iter.Key())] = n.value(iter.Value().Interface(), depth+1)
		}
		return out
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return string(rv.Bytes())
		}
		if rv.Len() > 0 && !n.visit(rv) {
			return CircularMarker
		}
		return n.list(rv, depth)
	case reflect.Array:
		return n.list(rv, depth)
	case reflect.Struct:
		return n.structure(rv, depth)
	}
	return typeTag(rv.Type())
}

func (n *normalizer) list(rv reflect.Value, depth int) []any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = n.value(rv.Index(i).Interface(), depth+1)
	}
	return out
}

func (n *normalizer) structure(rv reflect.Value, depth int) map[string]any {
	typeOf := rv.Type()
	out := make(map[string]any, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		field := typeOf.Field(i)
		if !field.IsExported() {
			continue
		}
		key := field.Name
		if tag := field.Tag.Get("json"); tag != "" {
			if tag == "-" {
				continue
			}
			name, opts, _ := strings.Cut(tag, ",")
			if name != "" {
				key = name
			}
			if hasOption(opts, "omitempty") && isEmptyValue(rv.Field(i)) {
				continue
			}
		}
		out[key] = n.value(rv.Field(i).Interface(), depth+1)
	}
	return out
}

func hasOption(opts, name string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == name {
			return true
		}
	}
	return false
}

// isEmptyValue follows encoding/json's definition of an empty field.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}

func (n *normalizer) error(err error, depth int) map[string]any {
	out := map[string]any{
		"name":    reflect.TypeOf(err).String(),
		"message": err.Error(),
	}
	if stack := ErrorStack(err); stack != "" {
		out["stack"] = stack
	}
	if details := errors.AllDetails(err); len(details) > 0 {
		out["details"] = n.value(details, depth+1)
	}
	if cause := errors.Cause(err); cause != nil {
		out["cause"] = cause.Error()
	}
	return out
}

// ErrorStack renders the stack recorded on err, or on the first error in
// its chain that carries one, one "function (file:line)" frame per line.
func ErrorStack(err error) string {
	var tracer stackTracer
	if !errors.As(err, &tracer) {
		return ""
	}
	pcs := tracer.StackTrace()
	if len(pcs) == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs)
	lines := make([]string, 0, len(pcs))
	for len(lines) < maxStackFrames {
		frame, more := frames.Next()
		lines = append(lines, fmt.Sprintf("%s (%s:%d)", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	return strings.Join(lines, "\n")
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	if k.CanInterface() {
		if s, ok := k.Interface().(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprint(k.Interface())
	}
	return typeTag(k.Type())
}

func typeTag(t reflect.Type) string {
	return "[" + t.String() + "]"
}

func unserializable(v any) string {
	return fmt.Sprintf("[unserializable %T]", v)
}

// marshal encodes a normalized value without HTML escaping.
func marshal(v any, orig any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = unserializable(orig)
		}
	}()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return unserializable(orig)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
