package tconsole

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/dianlight/tconsole/capability"
	"github.com/dianlight/tconsole/config"
)

var levelColorNumbers = map[string]uint8{
	"TRACE": 7,
	"DEBUG": 6,
	"INFO":  2,
	"WARN":  3,
	"ERROR": 1,
	"FATAL": 9,
}

// newDiagnostics returns the logger for the console's own events. It is
// silent unless <prefix>DEBUG is truthy.
func newDiagnostics(lookup capability.LookupFunc, prefix string, w io.Writer) *slog.Logger {
	if on, _ := capability.Bool(lookup, prefix+"DEBUG"); !on {
		return slog.New(slog.DiscardHandler)
	}
	handler := tint.NewHandler(w, &tint.Options{
		Level:       config.LevelTrace,
		TimeFormat:  time.TimeOnly,
		NoColor:     !isColorStream(w),
		ReplaceAttr: replaceLogLevel,
	})
	return slog.New(handler).With("component", "tconsole")
}

func isColorStream(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// replaceLogLevel customizes the display names for custom log levels
func replaceLogLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok {
		name := config.LevelName(level)
		a.Value = slog.StringValue(name)
		if color, ok := levelColorNumbers[name]; ok {
			a = tint.Attr(color, a)
		}
	}
	return a
}
