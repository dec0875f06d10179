package tconsole

import (
	"strings"
	"time"

	"github.com/dianlight/tconsole/config"
	"github.com/dianlight/tconsole/format"
)

// Logger writes themed lines under a name prefix.
type Logger struct {
	console *Console
	name    string
}

// Logger returns a logger named name. The name's display width is
// recorded immediately, so lines from every logger created so far share
// one prefix column.
func (c *Console) Logger(name string) *Logger {
	if name != "" {
		c.prefixes.Observe(name)
	}
	return &Logger{console: c, name: name}
}

func (l *Logger) Name() string { return l.name }

// Console returns the console the logger writes to.
func (l *Logger) Console() *Console { return l.console }

func (l *Logger) Trace(msg string, args ...any)   { l.emit(format.KindTrace, msg, args, time.Time{}) }
func (l *Logger) Debug(msg string, args ...any)   { l.emit(format.KindDebug, msg, args, time.Time{}) }
func (l *Logger) Info(msg string, args ...any)    { l.emit(format.KindInfo, msg, args, time.Time{}) }
func (l *Logger) Success(msg string, args ...any) { l.emit(format.KindSuccess, msg, args, time.Time{}) }
func (l *Logger) Warn(msg string, args ...any)    { l.emit(format.KindWarn, msg, args, time.Time{}) }
func (l *Logger) Error(msg string, args ...any)   { l.emit(format.KindError, msg, args, time.Time{}) }
func (l *Logger) Title(msg string, args ...any)   { l.emit(format.KindTitle, msg, args, time.Time{}) }
func (l *Logger) Task(msg string, args ...any)    { l.emit(format.KindTask, msg, args, time.Time{}) }
func (l *Logger) Plain(msg string, args ...any)   { l.emit(format.KindPlain, msg, args, time.Time{}) }

// Fatal logs at fatal level and calls the console's exit function with 1.
func (l *Logger) Fatal(msg string, args ...any) {
	l.emit(format.KindFatal, msg, args, time.Time{})
	l.console.exit(1)
}

// Log writes msg with the theme of kind. Unknown kinds return
// format.ErrUnknownTheme and write nothing.
func (l *Logger) Log(kind format.Kind, msg string, args ...any) error {
	if _, err := format.LookupTheme(kind); err != nil {
		return err
	}
	l.emit(kind, msg, args, time.Time{})
	return nil
}

// Inspect writes a pretty multi-line dump of v at info level. In JSON mode
// v is written as the argument of a plain record instead.
func (l *Logger) Inspect(v any) {
	c := l.console
	cfg := c.Config()
	if !cfg.Enabled(config.LevelInfo) {
		return
	}
	if cfg.JSON {
		l.emit(format.KindPlain, "", []any{v}, time.Time{})
		return
	}
	dump := strings.TrimRight(format.Pretty(v, cfg.Colors), "\n")
	if l.name != "" && cfg.ShowPrefix {
		dump = format.PadPrefix(l.name, c.prefixes.Max()) + " " + dump
	}
	c.writeLine(dump)
}

// Enabled reports whether lines of kind pass the current level.
func (l *Logger) Enabled(kind format.Kind) bool {
	return l.console.Config().Enabled(kind.Level())
}

func (l *Logger) emit(kind format.Kind, msg string, args []any, at time.Time) {
	c := l.console
	cfg := c.Config()
	level := kind.Level()
	if !cfg.Enabled(level) {
		return
	}
	if at.IsZero() {
		at = c.now()
	}
	req := format.Request{
		Kind:           kind,
		Prefix:         l.name,
		MaxPrefixWidth: c.prefixes.Max(),
		Message:        msg,
		Args:           args,
		Time:           at,
		Flags:          format.FlagsFrom(cfg),
	}

	var line string
	if cfg.JSON {
		line = format.JSON(req)
	} else {
		line = format.Format(req)
	}
	c.writeLine(line)

	c.hooks.publish(Event{
		Kind:    kind,
		Level:   level,
		Logger:  l.name,
		Message: msg,
		Args:    args,
		Time:    at,
		Line:    line,
	})
}
