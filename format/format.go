// Package format turns log requests into display lines and JSON records.
//
// Format and JSON are pure: they read only the Request, which carries a
// copy of the configuration flags taken when the log call was made.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/dianlight/tconsole/config"
	"github.com/dianlight/tconsole/emoji"
	"github.com/dianlight/tconsole/redact"
	"github.com/dianlight/tconsole/style"
)

const (
	clockLayout = "15:04:05"
	isoLayout   = "2006-01-02T15:04:05.000Z07:00"
)

// Flags are the configuration values a single line is formatted with.
type Flags struct {
	Colors          bool
	Unicode         bool
	Emoji           bool
	ShowTimestamp   bool
	TimestampFormat config.TimestampFormat
	ShowPrefix      bool
	ShowIcons       bool
	Redact          bool
}

// FlagsFrom copies the formatting flags out of a config snapshot.
func FlagsFrom(cfg config.Config) Flags {
	return Flags{
		Colors:          cfg.Colors,
		Unicode:         cfg.Unicode,
		Emoji:           cfg.Emoji,
		ShowTimestamp:   cfg.ShowTimestamp,
		TimestampFormat: cfg.TimestampFormat,
		ShowPrefix:      cfg.ShowPrefix,
		ShowIcons:       cfg.ShowIcons,
		Redact:          cfg.Redact,
	}
}

// Request is one log line waiting to be formatted.
type Request struct {
	Kind           Kind
	Prefix         string
	MaxPrefixWidth int
	Message        string
	Args           []any
	// Time is the event time. A zero Time omits the timestamp.
	Time  time.Time
	Flags Flags
	// Task is attached to JSON records of task transitions.
	Task *TaskRecord
}

// Format renders req as one display line:
//
//	[timestamp] LABEL [prefix] symbol message args...
//
// Every part is optional; present parts are joined by one space.
// Unknown kinds are formatted with the plain theme.
func Format(req Request) string {
	f := req.Flags
	theme, err := LookupTheme(req.Kind)
	if err != nil {
		theme = themes[KindPlain]
	}

	parts := make([]string, 0, 5+len(req.Args))

	if f.ShowTimestamp && !req.Time.IsZero() {
		parts = append(parts, style.Dim(f.Colors)(Timestamp(req.Time, f.TimestampFormat)))
	}

	if f.ShowPrefix {
		label := fmt.Sprintf("%*s", LabelWidth, theme.Label)
		parts = append(parts, style.Chain(style.Bold(f.Colors), theme.Style(f.Colors))(label))
		if prefix := PadPrefix(req.Prefix, req.MaxPrefixWidth); prefix != "" {
			parts = append(parts, prefix)
		}
	}

	if f.ShowIcons {
		if icon := theme.Icon(f.Unicode); icon != "" {
			parts = append(parts, theme.Style(f.Colors)(icon))
		}
	}

	if msg := cleanString(req.Message, f); msg != "" {
		parts = append(parts, messageStyle(theme, f.Colors)(msg))
	}

	for _, arg := range req.Args {
		var s string
		if str, ok := arg.(string); ok {
			s = cleanString(str, f)
		} else {
			s = serializeArg(arg, f)
		}
		if s != "" {
			parts = append(parts, s)
		}
	}

	return strings.Join(parts, " ")
}

// PadPrefix renders name as "[name]" padded on the right to maxWidth+2
// display columns. An empty name yields blank padding of the same width so
// columns stay aligned; it yields "" when no logger has a name.
func PadPrefix(name string, maxWidth int) string {
	w := runewidth.StringWidth(name)
	if w > maxWidth {
		maxWidth = w
	}
	if name == "" {
		if maxWidth == 0 {
			return ""
		}
		return strings.Repeat(" ", maxWidth+2)
	}
	return "[" + name + "]" + strings.Repeat(" ", maxWidth-w)
}

// Timestamp renders t in the clock or ISO layout.
func Timestamp(t time.Time, layout config.TimestampFormat) string {
	if layout == config.TimestampISO {
		return t.Format(isoLayout)
	}
	return t.Format(clockLayout)
}

func messageStyle(theme Theme, colors bool) style.Style {
	switch theme.Kind {
	case KindError, KindFatal, KindSuccess:
		return style.Bold(colors)
	case KindWarn, KindTitle, KindTask, KindPlain:
		return theme.Style(colors)
	case KindTrace:
		return style.Dim(colors)
	}
	return style.None
}

func cleanString(s string, f Flags) string {
	if !f.Emoji {
		s = emoji.Strip(s)
	}
	if f.Redact {
		s = redact.String(s)
	}
	return s
}

func serializeArg(arg any, f Flags) string {
	v := Normalize(arg)
	if f.Redact {
		v = redact.Value(v)
	}
	if !f.Emoji {
		v = stripTree(v)
	}
	return marshal(v, arg)
}
