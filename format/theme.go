package format

import (
	"log/slog"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/dianlight/tconsole/config"
	"github.com/dianlight/tconsole/style"
)

// Kind names a kind of log line. Each kind has a theme and a level.
type Kind string

const (
	KindTrace   Kind = "trace"
	KindDebug   Kind = "debug"
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarn    Kind = "warn"
	KindError   Kind = "error"
	KindFatal   Kind = "fatal"
	KindTitle   Kind = "title"
	KindTask    Kind = "task"
	KindPlain   Kind = "plain"
)

// ErrUnknownTheme is returned when a Kind has no theme.
var ErrUnknownTheme = errors.Base("unknown theme")

// LabelWidth is the column width of the level label, len("WARNING").
const LabelWidth = 7

// Theme describes how one Kind is displayed.
type Theme struct {
	Kind   Kind
	Symbol string
	ASCII  string
	Label  string
	Color  string
	Level  slog.Level
}

// Style returns the theme's color as a Style.
func (t Theme) Style(enabled bool) style.Style {
	return style.Named(t.Color, enabled)
}

// Icon returns the symbol, or its ASCII fallback when unicode is false.
func (t Theme) Icon(unicode bool) string {
	if unicode {
		return t.Symbol
	}
	return t.ASCII
}

var themes = map[Kind]Theme{
	KindTrace:   {Kind: KindTrace, Symbol: "→", ASCII: ">", Label: "TRACE", Color: "gray", Level: config.LevelTrace},
	KindDebug:   {Kind: KindDebug, Symbol: "•", ASCII: "-", Label: "DEBUG", Color: "cyan", Level: config.LevelDebug},
	KindInfo:    {Kind: KindInfo, Symbol: "ℹ", ASCII: "i", Label: "INFO", Color: "blue", Level: config.LevelInfo},
	KindSuccess: {Kind: KindSuccess, Symbol: "✔", ASCII: "+", Label: "SUCCESS", Color: "green", Level: config.LevelInfo},
	KindWarn:    {Kind: KindWarn, Symbol: "⚠", ASCII: "!", Label: "WARNING", Color: "yellow", Level: config.LevelWarn},
	KindError:   {Kind: KindError, Symbol: "✖", ASCII: "x", Label: "ERROR", Color: "red", Level: config.LevelError},
	KindFatal:   {Kind: KindFatal, Symbol: "✖", ASCII: "X", Label: "FATAL", Color: "bold+red", Level: config.LevelFatal},
	KindTitle:   {Kind: KindTitle, Symbol: "❯", ASCII: ">", Label: "TITLE", Color: "magenta", Level: config.LevelInfo},
	KindTask:    {Kind: KindTask, Symbol: "◆", ASCII: "*", Label: "TASK", Color: "cyan", Level: config.LevelInfo},
	KindPlain:   {Kind: KindPlain, Symbol: "", ASCII: "", Label: "LOG", Color: "white", Level: config.LevelInfo},
}

// LookupTheme returns the theme for kind.
func LookupTheme(kind Kind) (Theme, error) {
	t, ok := themes[kind]
	if !ok {
		return Theme{}, errors.WithDetails(ErrUnknownTheme, "kind", string(kind))
	}
	return t, nil
}

// ParseKind maps a name ("warn", "WARNING", "log") to a Kind.
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "warning":
		n = string(KindWarn)
	case "log":
		n = string(KindPlain)
	}
	if _, ok := themes[Kind(n)]; !ok {
		return "", errors.WithDetails(ErrUnknownTheme, "kind", name)
	}
	return Kind(n), nil
}

// Level returns the level the kind is filtered at. Unknown kinds map to info.
func (k Kind) Level() slog.Level {
	if t, ok := themes[k]; ok {
		return t.Level
	}
	return config.LevelInfo
}

// KindForLevel returns the plain kind used to display a slog level.
func KindForLevel(level slog.Level) Kind {
	switch {
	case level < config.LevelDebug:
		return KindTrace
	case level < config.LevelInfo:
		return KindDebug
	case level < config.LevelWarn:
		return KindInfo
	case level < config.LevelError:
		return KindWarn
	case level < config.LevelFatal:
		return KindError
	default:
		return KindFatal
	}
}

// Kinds returns every themed kind in display order.
func Kinds() []Kind {
	return []Kind{KindTrace, KindDebug, KindInfo, KindSuccess, KindWarn, KindError, KindFatal, KindTitle, KindTask, KindPlain}
}
