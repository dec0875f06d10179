package tconsole_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/dianlight/tconsole"
)

func TestHandlerWritesAttributesAsObject(t *testing.T) {
	out := &syncBuffer{}
	c := newConsole(out, baseEnv())
	logger := slog.New(c.Handler(""))

	logger.Info("listening", "port", 8080)
	logger.Debug("hidden")

	assert.Equal(t, []string{`ℹ listening {"port":8080}`}, out.Lines())
}

func TestHandlerLevels(t *testing.T) {
	out := &syncBuffer{}
	c := newConsole(out, baseEnv("TCONSOLE_LOG_LEVEL", "trace"))
	logger := slog.New(c.Handler(""))

	logger.Log(context.Background(), tconsole.LevelTrace, "t")
	logger.Debug("d")
	logger.Warn("w")
	logger.Error("e")
	logger.Log(context.Background(), tconsole.LevelFatal, "f")

	assert.Equal(t, []string{"→ t", "• d", "⚠ w", "✖ e", "✖ f"}, out.Lines())
}

func TestHandlerGroupsAndAttrs(t *testing.T) {
	out := &syncBuffer{}
	c := newConsole(out, baseEnv())
	logger := slog.New(c.Handler("")).With("service", "api").WithGroup("http")

	logger.Info("request", "status", 200, slog.Group("client", "agent", "curl"))

	assert.Equal(t, []string{`ℹ request {"http":{"client":{"agent":"curl"},"status":200},"service":"api"}`}, out.Lines())
}

func TestHandlerFanout(t *testing.T) {
	out := &syncBuffer{}
	extra := &syncBuffer{}
	c := newConsole(out, baseEnv(), tconsole.WithSlogHandlers(slog.NewJSONHandler(extra, nil)))
	slog.New(c.Handler("")).Info("shared", "n", 1)

	assert.Equal(t, []string{`ℹ shared {"n":1}`}, out.Lines())

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(extra.String()), &record))
	assert.Equal(t, "shared", record["msg"])
	assert.EqualValues(t, 1, record["n"])
}

func TestHandlerFormatsErrors(t *testing.T) {
	out := &syncBuffer{}
	c := newConsole(out, baseEnv())
	logger := slog.New(c.Handler(""))

	logger.Error("read failed", "error", io.EOF)
	assert.Contains(t, out.String(), `"message":"EOF"`)
	assert.Contains(t, out.String(), `"type":"*errors.errorString"`)
}

func TestHandlerFormatsTozdErrors(t *testing.T) {
	out := &syncBuffer{}
	c := newConsole(out, baseEnv())
	logger := slog.New(c.Handler(""))

	err := errors.WithDetails(errors.New("connect failed"), "host", "db1")
	logger.Error("migration failed", "cause", err)

	line := out.String()
	assert.Contains(t, line, `"message":"connect failed"`)
	assert.Contains(t, line, `"details":{"host":"db1"}`)
	assert.Contains(t, line, `"stacktrace":`)
}

func TestHandlerRedaction(t *testing.T) {
	out := &syncBuffer{}
	c := newConsole(out, baseEnv("TCONSOLE_REDACT", "1"))
	logger := slog.New(c.Handler(""))

	logger.Info("login", "username", "bob", "password", "hunter2", "email", "bob@example.com")

	line := out.String()
	assert.NotContains(t, line, "hunter2")
	assert.Contains(t, line, `"password":"********"`)
	assert.NotContains(t, line, "bob@example.com")
}

func TestHandlerWithoutRedaction(t *testing.T) {
	out := &syncBuffer{}
	c := newConsole(out, baseEnv())
	slog.New(c.Handler("")).Info("login", "password", "hunter2")
	assert.Contains(t, out.String(), "hunter2")
}

func TestHandlerContextKeys(t *testing.T) {
	out := &syncBuffer{}
	c := newConsole(out, baseEnv(), tconsole.WithAddContextKeys("tenant"))
	logger := slog.New(c.Handler(""))

	ctx := context.WithValue(context.Background(), "request_id", "r-1") //nolint:staticcheck
	ctx = context.WithValue(ctx, "tenant", "acme")                      //nolint:staticcheck
	logger.InfoContext(ctx, "handled")

	assert.Equal(t, []string{`ℹ handled {"request_id":"r-1","tenant":"acme"}`}, out.Lines())
}

func TestHandlerNamedLogger(t *testing.T) {
	out := &syncBuffer{}
	c := newConsole(out, baseEnv("TCONSOLE_SHOW_PREFIX", "1"))
	slog.New(c.Handler("db")).Warn("slow query")

	assert.Equal(t, []string{"WARNING [db] ⚠ slow query"}, out.Lines())
}

func TestHandlerUnixTimestamps(t *testing.T) {
	out := &syncBuffer{}
	c := newConsole(out, baseEnv())
	slog.New(c.Handler("")).Info("token issued", "expires_at", int64(1700000000))

	assert.Contains(t, out.String(), `"expires_at":"2023-11-14T22:13:20Z"`)
}
