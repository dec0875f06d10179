package tconsole_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dianlight/tconsole"
	"github.com/dianlight/tconsole/format"
)

type eventLog struct {
	mu     sync.Mutex
	events []tconsole.Event
}

func (l *eventLog) hook(e tconsole.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func (l *eventLog) get(i int) tconsole.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.events[i]
}

func TestHookReceivesEvents(t *testing.T) {
	out := &syncBuffer{}
	c := newConsole(out, baseEnv())
	defer c.Shutdown()

	var got eventLog
	c.RegisterHook(tconsole.LevelError, got.hook)

	c.Logger("db").Error("connection lost", map[string]any{"retry": 3})
	c.Logger("db").Info("not hooked")

	require.Eventually(t, func() bool { return got.len() == 1 }, time.Second, 5*time.Millisecond)
	e := got.get(0)
	assert.Equal(t, format.KindError, e.Kind)
	assert.Equal(t, tconsole.LevelError, e.Level)
	assert.Equal(t, "db", e.Logger)
	assert.Equal(t, "connection lost", e.Message)
	assert.Equal(t, `✖ connection lost {"retry":3}`, e.Line)
	assert.False(t, e.Time.IsZero())
}

func TestHookCountAndUnregister(t *testing.T) {
	c := newConsole(&syncBuffer{}, baseEnv())
	defer c.Shutdown()

	id1 := c.RegisterHook(tconsole.LevelInfo, func(tconsole.Event) {})
	id2 := c.RegisterHook(tconsole.LevelInfo, func(tconsole.Event) {})
	c.RegisterHook(tconsole.LevelWarn, func(tconsole.Event) {})
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, c.HookCount(tconsole.LevelInfo))

	assert.True(t, c.UnregisterHook(tconsole.LevelInfo, id1))
	assert.False(t, c.UnregisterHook(tconsole.LevelInfo, id1))
	assert.False(t, c.UnregisterHook(tconsole.LevelWarn, id2))
	assert.Equal(t, 1, c.HookCount(tconsole.LevelInfo))

	c.ClearHooks(tconsole.LevelInfo)
	assert.Zero(t, c.HookCount(tconsole.LevelInfo))
	assert.Equal(t, 1, c.HookCount(tconsole.LevelWarn))

	c.ClearAllHooks()
	assert.Zero(t, c.HookCount(tconsole.LevelWarn))
}

func TestHookPanicIsRecovered(t *testing.T) {
	diag := &syncBuffer{}
	c := newConsole(&syncBuffer{}, baseEnv("TCONSOLE_DEBUG", "1"), tconsole.WithDiagnostics(diag))

	var got eventLog
	c.RegisterHook(tconsole.LevelWarn, func(tconsole.Event) { panic("boom") })
	c.RegisterHook(tconsole.LevelWarn, got.hook)

	assert.NotPanics(t, func() {
		c.Logger("").Warn("careful")
	})
	c.Shutdown()

	assert.Equal(t, 1, got.len())
	assert.Contains(t, diag.String(), "hook panic recovered")
}

func TestShutdownDeliversQueuedEvents(t *testing.T) {
	c := newConsole(&syncBuffer{}, baseEnv())

	var got eventLog
	c.RegisterHook(tconsole.LevelInfo, got.hook)
	for range 50 {
		c.Logger("").Info("event")
	}
	c.Shutdown()
	assert.Equal(t, 50, got.len())

	// Events after shutdown are not delivered.
	c.Logger("").Info("late")
	assert.Equal(t, 50, got.len())
}

func TestHooksDoNotFireBelowLevel(t *testing.T) {
	c := newConsole(&syncBuffer{}, baseEnv())

	var got eventLog
	c.RegisterHook(tconsole.LevelDebug, got.hook)
	c.Logger("").Debug("filtered")
	c.Shutdown()
	assert.Zero(t, got.len())
}
