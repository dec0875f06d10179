package format

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, line string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &out), line)
	return out
}

func TestJSONScenarioObjectArgument(t *testing.T) {
	line := JSON(Request{Kind: KindInfo, Message: "x", Args: []any{map[string]any{"a": 1}}, Time: time.Now()})

	rec := decode(t, line)
	assert.Equal(t, "info", rec["level"])
	assert.Equal(t, "x", rec["message"])
	assert.Equal(t, float64(1), rec["a"])
	assert.NotContains(t, line, "\n")
}

func TestJSONLeadingKeys(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	line := JSON(Request{Kind: KindWarn, Prefix: "api", Message: "m", Time: at, Args: []any{map[string]any{"z": 1}}})
	assert.True(t, strings.HasPrefix(line, `{"level":"warn","message":"m","prefix":"api","timestamp":"2024-01-02T03:04:05.000Z"`), line)
}

func TestJSONCollisionsAreNamespaced(t *testing.T) {
	line := JSON(Request{
		Kind:    KindInfo,
		Message: "x",
		Args: []any{
			map[string]any{"message": "shadow", "b": 2},
			"loose",
			map[string]any{"b": 3},
			7,
		},
	})

	rec := decode(t, line)
	assert.Equal(t, "x", rec["message"])
	assert.Equal(t, "shadow", rec["arg0.message"])
	assert.Equal(t, float64(2), rec["b"])
	assert.Equal(t, "loose", rec["arg1"])
	assert.Equal(t, float64(3), rec["arg2.b"])
	assert.Equal(t, float64(7), rec["arg3"])
}

func TestJSONAlwaysStripsEmoji(t *testing.T) {
	flags := Flags{Emoji: true, Unicode: true}
	line := JSON(Request{Kind: KindSuccess, Message: "ship 🚀 it", Args: []any{"🔥 hot", map[string]any{"k": "✅ ok"}}, Flags: flags})

	rec := decode(t, line)
	assert.Equal(t, "ship it", rec["message"])
	assert.Equal(t, "hot", rec["arg0"])
	assert.Equal(t, "ok", rec["k"])
}

func TestJSONStructArgumentMerges(t *testing.T) {
	type payload struct {
		Host string `json:"host"`
		Port int    `json:"port"`
	}
	rec := decode(t, JSON(Request{Kind: KindInfo, Message: "listen", Args: []any{payload{Host: "localhost", Port: 80}}}))
	assert.Equal(t, "localhost", rec["host"])
	assert.Equal(t, float64(80), rec["port"])
}

func TestJSONCircularArgument(t *testing.T) {
	m := map[string]any{}
	m["self"] = m
	rec := decode(t, JSON(Request{Kind: KindInfo, Message: "loop", Args: []any{m}}))
	assert.Equal(t, CircularMarker, rec["self"])
}

func TestJSONTaskPayload(t *testing.T) {
	ms := int64(1200)
	line := JSON(Request{
		Kind:    KindSuccess,
		Message: "build",
		Task:    &TaskRecord{Title: "build 🔨", Status: "succeeded", Level: 1, Duration: &ms},
	})

	rec := decode(t, line)
	task, ok := rec["task"].(map[string]any)
	require.True(t, ok, line)
	assert.Equal(t, "build", task["title"])
	assert.Equal(t, "succeeded", task["status"])
	assert.Equal(t, float64(1), task["level"])
	assert.Equal(t, float64(1200), task["duration"])
	assert.NotContains(t, task, "output")
}

func TestJSONTaskKeyCollision(t *testing.T) {
	line := JSON(Request{
		Kind:    KindInfo,
		Message: "t",
		Args:    []any{map[string]any{"task": "mine"}},
		Task:    &TaskRecord{Title: "t", Status: "running"},
	})
	rec := decode(t, line)
	assert.Equal(t, "mine", rec["arg0.task"])
	assert.IsType(t, map[string]any{}, rec["task"])
}

func TestJSONRedaction(t *testing.T) {
	line := JSON(Request{
		Kind:    KindInfo,
		Message: "token=abc",
		Args:    []any{map[string]any{"password": "pw"}},
		Flags:   Flags{Redact: true},
	})
	assert.NotContains(t, line, "abc")
	assert.NotContains(t, line, `"pw"`)
}
