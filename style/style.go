// Package style maps color names to text styling functions.
//
// A Style never inspects or strips its input: it only wraps it. When color
// is disabled every constructor returns None.
package style

import (
	"strings"

	"github.com/fatih/color"
)

// Style turns plain text into styled text.
type Style func(text string) string

// None returns text unchanged.
func None(text string) string { return text }

var attributes = map[string][]color.Attribute{
	"black":   {color.FgBlack},
	"red":     {color.FgRed},
	"green":   {color.FgGreen},
	"yellow":  {color.FgYellow},
	"blue":    {color.FgBlue},
	"magenta": {color.FgMagenta},
	"cyan":    {color.FgCyan},
	"white":   {color.FgWhite},
	"gray":    {color.FgHiBlack},
	"grey":    {color.FgHiBlack},

	"redBright":     {color.FgHiRed},
	"greenBright":   {color.FgHiGreen},
	"yellowBright":  {color.FgHiYellow},
	"blueBright":    {color.FgHiBlue},
	"magentaBright": {color.FgHiMagenta},
	"cyanBright":    {color.FgHiCyan},
	"whiteBright":   {color.FgHiWhite},

	"bold":      {color.Bold},
	"dim":       {color.Faint},
	"italic":    {color.Italic},
	"underline": {color.Underline},
}

// Named returns the Style for a color name. Names can be combined with
// '+' ("bold+red"). Unknown names and disabled color yield None.
func Named(name string, enabled bool) Style {
	if !enabled || name == "" {
		return None
	}
	var attrs []color.Attribute
	for _, part := range strings.Split(name, "+") {
		attrs = append(attrs, attributes[strings.TrimSpace(part)]...)
	}
	if len(attrs) == 0 {
		return None
	}
	c := color.New(attrs...)
	// Per-instance override: the package-level color.NoColor follows
	// stdout, while callers decide for their own stream.
	c.EnableColor()
	return func(text string) string {
		if text == "" {
			return text
		}
		return c.Sprint(text)
	}
}

// Known reports whether name resolves to at least one attribute.
func Known(name string) bool {
	for _, part := range strings.Split(name, "+") {
		if _, ok := attributes[strings.TrimSpace(part)]; !ok {
			return false
		}
	}
	return name != ""
}

// Bold is a shortcut for Named("bold", enabled).
func Bold(enabled bool) Style { return Named("bold", enabled) }

// Dim is a shortcut for Named("dim", enabled).
func Dim(enabled bool) Style { return Named("dim", enabled) }

// Chain applies styles left to right.
func Chain(styles ...Style) Style {
	return func(text string) string {
		for _, s := range styles {
			if s != nil {
				text = s(text)
			}
		}
		return text
	}
}
