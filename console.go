package tconsole

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dianlight/tconsole/capability"
	"github.com/dianlight/tconsole/config"
	"github.com/dianlight/tconsole/format"
	"github.com/dianlight/tconsole/task"
)

// defaultContextKeys is the default list of context keys copied into
// records by the slog bridge.
var defaultContextKeys = []string{"X-Trace-Id", "X-Span-Id", "request_id", "user_id", "session_id", "trace_id", "span_id", "event_uuid"}

// Console holds everything loggers, spinners and task runs share: the
// resolved configuration, the prefix width tracker, the output stream and
// the single live renderer slot.
type Console struct {
	raw      io.Writer
	out      *lockedWriter
	detector *capability.Detector
	resolver *config.Resolver
	prefixes format.PrefixTracker
	exit     func(code int)
	now      func() time.Time
	handlers []slog.Handler
	ctxKeys  []string
	diagOut  io.Writer
	diag     *slog.Logger
	hooks    *hookProcessor

	// construction-time settings re-applied by Reset
	lookup    capability.LookupFunc
	terminal  *bool
	overrides []func(*config.Config)

	level    slog.LevelVar
	levelSet atomic.Bool
	announce sync.Once

	liveMu   sync.Mutex
	registry *task.Registry
	live     *task.Renderer
	spins    atomic.Uint64
}

// Option configures a Console.
type Option func(*Console)

// WithWriter sets the output stream. Defaults to os.Stderr. Terminal
// detection probes w when it is an *os.File.
func WithWriter(w io.Writer) Option {
	return func(c *Console) {
		c.raw = w
	}
}

// WithEnv resolves capabilities and overrides from env instead of the
// process environment.
func WithEnv(env map[string]string) Option {
	return func(c *Console) {
		c.lookup = capability.MapLookup(env)
	}
}

// WithLookup sets the environment reader.
func WithLookup(lookup capability.LookupFunc) Option {
	return func(c *Console) {
		c.lookup = lookup
	}
}

// WithTerminal forces whether the output stream counts as interactive.
func WithTerminal(interactive bool) Option {
	return func(c *Console) {
		c.terminal = &interactive
	}
}

// WithDetector replaces the capability detector. WithEnv, WithLookup and
// WithTerminal are ignored when a detector is given.
func WithDetector(d *capability.Detector) Option {
	return func(c *Console) {
		c.detector = d
	}
}

// WithExit sets the function Fatal calls. Defaults to os.Exit.
func WithExit(exit func(code int)) Option {
	return func(c *Console) {
		c.exit = exit
	}
}

// WithClock sets the time source for log timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Console) {
		c.now = now
	}
}

// WithLevel sets the minimum level, overriding the environment.
func WithLevel(level slog.Level) Option {
	return func(c *Console) {
		c.overrides = append(c.overrides, func(cfg *config.Config) { cfg.Level = level })
	}
}

// WithConfig registers an adjustment applied to every resolved snapshot.
func WithConfig(fn func(*config.Config)) Option {
	return func(c *Console) {
		c.overrides = append(c.overrides, fn)
	}
}

// WithSlogHandlers adds handlers that receive every record passing through
// the slog bridge.
func WithSlogHandlers(handlers ...slog.Handler) Option {
	return func(c *Console) {
		c.handlers = append(c.handlers, handlers...)
	}
}

// WithContextKeys sets the context keys the slog bridge copies into records.
func WithContextKeys(keys ...string) Option {
	return func(c *Console) {
		c.ctxKeys = keys
	}
}

// WithAddContextKeys adds context keys to the default set.
func WithAddContextKeys(keys ...string) Option {
	return func(c *Console) {
		c.ctxKeys = append(append([]string{}, defaultContextKeys...), keys...)
	}
}

// WithDiagnostics sets where internal diagnostics go when enabled.
// Defaults to os.Stderr.
func WithDiagnostics(w io.Writer) Option {
	return func(c *Console) {
		c.diagOut = w
	}
}

// New returns a Console. Configuration is resolved lazily on first use.
func New(opts ...Option) *Console {
	c := &Console{
		raw:     os.Stderr,
		exit:    os.Exit,
		now:     time.Now,
		ctxKeys: defaultContextKeys,
		diagOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.detector == nil {
		c.detector = c.newDetector()
	}
	c.out = &lockedWriter{w: c.raw}
	c.resolver = config.NewResolver(c.detector)
	c.applyOverrides()
	c.diag = newDiagnostics(c.detector.LookupEnv(), c.detector.EnvPrefix(), c.diagOut)
	c.hooks = newHookProcessor(c.diag)
	return c
}

func (c *Console) newDetector() *capability.Detector {
	f, _ := c.raw.(*os.File)
	d := capability.NewDetector(f)
	d.Lookup = c.lookup
	switch {
	case c.terminal != nil:
		interactive := *c.terminal
		d.IsTerminal = func() bool { return interactive }
	case f == nil:
		d.IsTerminal = func() bool { return false }
	}
	return d
}

func (c *Console) applyOverrides() {
	if len(c.overrides) == 0 {
		return
	}
	c.resolver.Override(func(cfg *config.Config) {
		for _, fn := range c.overrides {
			fn(cfg)
		}
	})
}

// Config returns the current configuration snapshot.
func (c *Console) Config() config.Config {
	cfg := c.resolver.Config()
	if c.levelSet.Load() {
		cfg.Level = c.level.Level()
	}
	c.announce.Do(func() {
		c.diag.Debug("configuration resolved",
			"level", config.LevelName(cfg.Level),
			"json", cfg.JSON,
			"colors", cfg.Colors,
			"unicode", cfg.Unicode,
			"emoji", cfg.Emoji,
			"ci", cfg.CI,
			"sources", cfg.Sources)
	})
	return cfg
}

// Capabilities returns the detected terminal profile.
func (c *Console) Capabilities() capability.Profile {
	return c.detector.Detect()
}

// SetLevel sets the minimum level, overriding the environment.
func (c *Console) SetLevel(level slog.Level) {
	c.level.Set(level)
	c.levelSet.Store(true)
}

// GetLevel returns the minimum level in effect.
func (c *Console) GetLevel() slog.Level {
	return c.Config().Level
}

// SetLevelFromString parses name and sets the level. Unknown names return
// config.ErrUnknownLevel and leave the level unchanged.
func (c *Console) SetLevelFromString(name string) error {
	level, err := config.ParseLevel(name)
	if err != nil {
		return err
	}
	c.SetLevel(level)
	return nil
}

// Reset drops every cached value: the capability profile, the
// configuration snapshot, programmatic level changes, the prefix widths,
// registered hooks and active spinners. Options given to New are kept.
func (c *Console) Reset() {
	c.liveMu.Lock()
	reg, live := c.registry, c.live
	c.registry, c.live = nil, nil
	c.liveMu.Unlock()
	if reg != nil {
		reg.StopAll()
	}
	if live != nil {
		live.Stop()
	}

	c.resolver.ClearOverrides()
	c.applyOverrides()
	c.levelSet.Store(false)
	c.prefixes.Reset()
	c.hooks.shutdown()
	c.hooks = newHookProcessor(c.diag)
	c.announce = sync.Once{}
	c.diag.Debug("console reset")
}

// Shutdown stops active spinners and delivers queued hook events.
func (c *Console) Shutdown() {
	c.liveMu.Lock()
	reg := c.registry
	c.liveMu.Unlock()
	if reg != nil {
		reg.StopAll()
	}
	c.hooks.shutdown()
}

// writeLine writes one complete line. While a renderer is drawing the line
// goes through it so the animated block is redrawn below the line. Write
// failures never reach the caller.
func (c *Console) writeLine(line string) {
	if r := c.liveRenderer(); r != nil {
		r.Println(line)
		return
	}
	if _, err := io.WriteString(c.out, line+"\n"); err != nil {
		c.diag.Warn("write failed", "error", err)
	}
}

// liveRenderer returns the task or spinner renderer currently drawing.
func (c *Console) liveRenderer() *task.Renderer {
	c.liveMu.Lock()
	live, reg := c.live, c.registry
	c.liveMu.Unlock()
	if live != nil {
		return live
	}
	if reg != nil {
		return reg.Renderer()
	}
	return nil
}

// lockedWriter serializes writes from loggers and renderers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

var (
	defaultOnce    sync.Once
	defaultMu      sync.RWMutex
	defaultConsole *Console
)

// Default returns the process-wide Console, creating it on first use.
func Default() *Console {
	defaultOnce.Do(func() {
		defaultMu.Lock()
		if defaultConsole == nil {
			defaultConsole = New()
		}
		defaultMu.Unlock()
	})
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultConsole
}

// SetDefault replaces the process-wide Console.
func SetDefault(c *Console) {
	defaultOnce.Do(func() {})
	defaultMu.Lock()
	defaultConsole = c
	defaultMu.Unlock()
}

// Reset resets the process-wide Console.
func Reset() {
	Default().Reset()
}
