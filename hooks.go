package tconsole

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dianlight/tconsole/format"
)

// Event is a log line passed to hooks.
type Event struct {
	Kind    format.Kind
	Level   slog.Level
	Logger  string
	Message string
	Args    []any
	Time    time.Time
	// Line is the text or JSON record that was written.
	Line string
}

// Hook is called asynchronously for every event at its registered level.
type Hook func(event Event)

type hookEntry struct {
	hook Hook
	id   string
}

const hookQueueSize = 1000

// hookProcessor delivers events to hooks off the logging goroutine.
type hookProcessor struct {
	diag *slog.Logger

	mu    sync.RWMutex
	hooks map[slog.Level][]hookEntry
	seq   atomic.Uint64

	startOnce sync.Once
	stopOnce  sync.Once
	events    chan Event
	done      chan struct{}
	stopped   atomic.Bool
	wg        sync.WaitGroup
}

func newHookProcessor(diag *slog.Logger) *hookProcessor {
	return &hookProcessor{
		diag:   diag,
		hooks:  map[slog.Level][]hookEntry{},
		events: make(chan Event, hookQueueSize),
		done:   make(chan struct{}),
	}
}

func (p *hookProcessor) start() {
	p.startOnce.Do(func() {
		p.wg.Add(1)
		go p.run()
	})
}

func (p *hookProcessor) run() {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.events:
			p.dispatch(event)
		case <-p.done:
			// Deliver what is already queued before returning.
			for {
				select {
				case event := <-p.events:
					p.dispatch(event)
				default:
					return
				}
			}
		}
	}
}

func (p *hookProcessor) dispatch(event Event) {
	p.mu.RLock()
	entries := p.hooks[event.Level]
	p.mu.RUnlock()

	for _, entry := range entries {
		p.wg.Add(1)
		go p.safeCall(entry, event)
	}
}

func (p *hookProcessor) safeCall(entry hookEntry, event Event) {
	defer p.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			p.diag.Error("hook panic recovered", "hook", entry.id, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	entry.hook(event)
}

// publish queues event when a hook is registered for its level. It never
// blocks: events are dropped when the queue is full.
func (p *hookProcessor) publish(event Event) {
	if p.stopped.Load() {
		return
	}
	p.mu.RLock()
	has := len(p.hooks[event.Level]) > 0
	p.mu.RUnlock()
	if !has {
		return
	}

	select {
	case p.events <- event:
	default:
		p.diag.Warn("hook queue full, dropping event", "level", event.Level, "message", event.Message)
	}
}

func (p *hookProcessor) register(level slog.Level, hook Hook) string {
	p.start()
	id := fmt.Sprintf("hook_%d_%d", level, p.seq.Add(1))
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hooks[level] = append(p.hooks[level], hookEntry{hook: hook, id: id})
	return id
}

func (p *hookProcessor) unregister(level slog.Level, id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	entries := p.hooks[level]
	for i, entry := range entries {
		if entry.id == id {
			p.hooks[level] = append(entries[:i:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

func (p *hookProcessor) clear(level slog.Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.hooks, level)
}

func (p *hookProcessor) clearAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hooks = map[slog.Level][]hookEntry{}
}

func (p *hookProcessor) count(level slog.Level) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.hooks[level])
}

// shutdown stops accepting events and waits until every queued event has
// been delivered.
func (p *hookProcessor) shutdown() {
	p.stopOnce.Do(func() {
		p.stopped.Store(true)
		close(p.done)
		p.wg.Wait()
	})
}

// RegisterHook calls hook for every event logged at exactly level and
// returns an id for UnregisterHook.
func (c *Console) RegisterHook(level slog.Level, hook Hook) string {
	return c.hooks.register(level, hook)
}

// UnregisterHook removes a hook by id.
func (c *Console) UnregisterHook(level slog.Level, id string) bool {
	return c.hooks.unregister(level, id)
}

// ClearHooks removes every hook registered for level.
func (c *Console) ClearHooks(level slog.Level) {
	c.hooks.clear(level)
}

// ClearAllHooks removes every registered hook.
func (c *Console) ClearAllHooks() {
	c.hooks.clearAll()
}

// HookCount returns the number of hooks registered for level.
func (c *Console) HookCount(level slog.Level) int {
	return c.hooks.count(level)
}
