package tconsole

import (
	"context"
	"log/slog"

	"github.com/dianlight/tconsole/config"
	"github.com/dianlight/tconsole/format"
	"github.com/dianlight/tconsole/task"
)

// Log levels, re-exported for callers that only import this package.
const (
	LevelTrace  = config.LevelTrace
	LevelDebug  = config.LevelDebug
	LevelInfo   = config.LevelInfo
	LevelWarn   = config.LevelWarn
	LevelError  = config.LevelError
	LevelFatal  = config.LevelFatal
	LevelSilent = config.LevelSilent
)

// root is the unnamed logger used by the package-level functions.
func root() *Logger { return &Logger{console: Default()} }

// NewLogger returns a logger named name on the default console.
func NewLogger(name string) *Logger { return Default().Logger(name) }

// Trace logs a message at trace level
func Trace(msg string, args ...any) { root().Trace(msg, args...) }

// Debug logs a message at debug level
func Debug(msg string, args ...any) { root().Debug(msg, args...) }

// Info logs a message at info level
func Info(msg string, args ...any) { root().Info(msg, args...) }

// Success logs a success message at info level
func Success(msg string, args ...any) { root().Success(msg, args...) }

// Warn logs a message at warning level
func Warn(msg string, args ...any) { root().Warn(msg, args...) }

// Error logs a message at error level
func Error(msg string, args ...any) { root().Error(msg, args...) }

// Title logs a section title
func Title(msg string, args ...any) { root().Title(msg, args...) }

// Task logs a task heading
func Task(msg string, args ...any) { root().Task(msg, args...) }

// Plain logs an unlabelled message at info level
func Plain(msg string, args ...any) { root().Plain(msg, args...) }

// Fatal logs a message at fatal level and exits the program
func Fatal(msg string, args ...any) { root().Fatal(msg, args...) }

// Log writes msg with the theme of kind on the default console.
func Log(kind format.Kind, msg string, args ...any) error { return root().Log(kind, msg, args...) }

// Inspect writes a pretty dump of v on the default console.
func Inspect(v any) { root().Inspect(v) }

// SetLevel sets the minimum log level
func SetLevel(level slog.Level) { Default().SetLevel(level) }

// GetLevel returns the current minimum log level
func GetLevel() slog.Level { return Default().GetLevel() }

// SetLevelFromString sets the log level from a string representation.
// The comparison is case-insensitive.
func SetLevelFromString(name string) error { return Default().SetLevelFromString(name) }

// GetLevelString returns the current log level as a string
func GetLevelString() string { return config.LevelName(GetLevel()) }

// IsLevelEnabled checks if logging is enabled for the given level
func IsLevelEnabled(level slog.Level) bool { return Default().Config().Enabled(level) }

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) { return config.ParseLevel(name) }

// RegisterHook registers a hook on the default console.
func RegisterHook(level slog.Level, hook Hook) string { return Default().RegisterHook(level, hook) }

// UnregisterHook removes a hook from the default console.
func UnregisterHook(level slog.Level, id string) bool { return Default().UnregisterHook(level, id) }

// ClearHooks removes the default console's hooks for level.
func ClearHooks(level slog.Level) { Default().ClearHooks(level) }

// ClearAllHooks removes every hook of the default console.
func ClearAllHooks() { Default().ClearAllHooks() }

// Shutdown stops spinners and drains hooks of the default console.
func Shutdown() { Default().Shutdown() }

// Handler returns a slog bridge handler on the default console.
func Handler(name string) slog.Handler { return Default().Handler(name) }

// StartSpinner starts a named spinner on the default console.
func StartSpinner(key, title string) (*Spinner, error) { return Default().Spinner(key, title) }

// Spin runs fn under a one-shot spinner on the default console.
func Spin(ctx context.Context, title string, fn func(ctx context.Context) error) error {
	return Default().Spin(ctx, title, fn)
}

// RunTasks runs a task tree on the default console.
func RunTasks(ctx context.Context, specs []task.Spec, opts task.Options) error {
	return Default().RunTasks(ctx, specs, opts)
}
