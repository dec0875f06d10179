package format

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/dianlight/tconsole/emoji"
	"github.com/dianlight/tconsole/redact"
)

// TaskRecord is the nested "task" object of a task transition record.
type TaskRecord struct {
	Title  string   `json:"title"`
	Status string   `json:"status"`
	Level  int      `json:"level"`
	Output []string `json:"output,omitempty"`
	// Duration is the wall time in milliseconds, set on success only.
	Duration *int64 `json:"duration,omitempty"`
}

// record is a JSON object that keeps keys in insertion order.
type record struct {
	keys   []string
	values map[string]any
}

func newRecord() *record {
	return &record{values: map[string]any{}}
}

func (r *record) has(key string) bool {
	_, ok := r.values[key]
	return ok
}

func (r *record) set(key string, value any) {
	if !r.has(key) {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r *record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.WriteString(marshal(r.values[key], r.values[key]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// JSON renders req as one self-describing JSON object. The leading keys are
// level, message, prefix and timestamp. Object arguments are merged into
// the top level; a key that is already taken is written as "arg<i>.<key>".
// Other arguments are written as "arg<i>". Emoji is always stripped.
func JSON(req Request) string {
	rec := newRecord()
	rec.set("level", string(req.Kind))
	rec.set("message", jsonString(req.Message, req.Flags))
	rec.set("prefix", emoji.Strip(req.Prefix))
	if !req.Time.IsZero() {
		rec.set("timestamp", req.Time.UTC().Format(isoLayout))
	}

	for i, arg := range req.Args {
		v := Normalize(arg)
		if req.Flags.Redact {
			v = redact.Value(v)
		}
		v = stripTree(v)
		argKey := "arg" + strconv.Itoa(i)

		obj, ok := v.(map[string]any)
		if !ok {
			rec.set(argKey, v)
			continue
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if rec.has(k) || k == "task" && req.Task != nil {
				rec.set(argKey+"."+k, obj[k])
				continue
			}
			rec.set(k, obj[k])
		}
	}

	if req.Task != nil {
		task := *req.Task
		task.Title = emoji.Strip(task.Title)
		rec.set("task", task)
	}

	out, err := rec.MarshalJSON()
	if err != nil {
		return `{"level":"error","message":"` + unserializable(req) + `"}`
	}
	return string(out)
}

func jsonString(s string, f Flags) string {
	s = emoji.Strip(s)
	if f.Redact {
		s = redact.String(s)
	}
	return s
}

// stripTree removes emoji from every string in a normalized value.
func stripTree(v any) any {
	switch val := v.(type) {
	case string:
		return emoji.Strip(val)
	case map[string]any:
		for k, vv := range val {
			val[k] = stripTree(vv)
		}
		return val
	case []any:
		for i, vv := range val {
			val[i] = stripTree(vv)
		}
		return val
	}
	return v
}
