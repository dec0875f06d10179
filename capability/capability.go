// Package capability detects what the running terminal can display:
// colors, Unicode, emoji, and whether the process runs inside CI or on an
// interactive stream.
//
// Detection is a pure function of the environment and the output stream;
// a Detector memoizes the result until Reset is called.
package capability

import (
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// DefaultPrefix is prepended to the tool-specific environment overrides.
const DefaultPrefix = "TCONSOLE_"

// Profile is an immutable snapshot of terminal capabilities.
type Profile struct {
	Color       bool `json:"color"`
	Unicode     bool `json:"unicode"`
	Emoji       bool `json:"emoji"`
	CI          bool `json:"ci"`
	Interactive bool `json:"interactive"`
}

// Detector derives a Profile from the environment and caches it.
// The zero value inspects the real environment and stderr.
type Detector struct {
	// Lookup reads environment variables. Defaults to os.LookupEnv.
	Lookup LookupFunc
	// IsTerminal reports whether the output stream is a TTY.
	// Defaults to an isatty probe of stderr.
	IsTerminal func() bool
	// GOOS overrides runtime.GOOS.
	GOOS string
	// Prefix namespaces the tool-specific overrides. Defaults to DefaultPrefix.
	Prefix string

	mu      sync.Mutex
	profile *Profile
}

// NewDetector returns a Detector probing the given stream.
func NewDetector(stream *os.File) *Detector {
	d := &Detector{}
	if stream != nil {
		d.IsTerminal = func() bool { return isTerminalFile(stream) }
	}
	return d
}

// Detect returns the memoized Profile, computing it on first use.
func (d *Detector) Detect() Profile {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.profile == nil {
		p := Detect(d.lookup(), d.interactive(), d.goos(), d.prefix())
		d.profile = &p
	}
	return *d.profile
}

// Reset drops the memoized Profile so the next Detect re-reads the environment.
func (d *Detector) Reset() {
	d.mu.Lock()
	d.profile = nil
	d.mu.Unlock()
}

// LookupEnv exposes the detector's environment reader.
func (d *Detector) LookupEnv() LookupFunc { return d.lookup() }

// EnvPrefix exposes the detector's override prefix.
func (d *Detector) EnvPrefix() string { return d.prefix() }

func (d *Detector) lookup() LookupFunc {
	if d.Lookup != nil {
		return d.Lookup
	}
	return OSLookup
}

func (d *Detector) interactive() bool {
	if d.IsTerminal != nil {
		return d.IsTerminal()
	}
	return isTerminalFile(os.Stderr)
}

func (d *Detector) goos() string {
	if d.GOOS != "" {
		return d.GOOS
	}
	return runtime.GOOS
}

func (d *Detector) prefix() string {
	if d.Prefix != "" {
		return d.Prefix
	}
	return DefaultPrefix
}

func isTerminalFile(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Detect computes a Profile without caching.
func Detect(lookup LookupFunc, interactive bool, goos, prefix string) Profile {
	ci := IsCI(lookup, prefix)
	unicode := detectUnicode(lookup, interactive, ci, goos, prefix)
	return Profile{
		Color:       detectColor(lookup, interactive, ci, goos, prefix),
		Unicode:     unicode,
		Emoji:       detectEmoji(lookup, interactive, ci, unicode, goos, prefix),
		CI:          ci,
		Interactive: interactive,
	}
}

// colorTerminals are TERM_PROGRAM values known to render ANSI colors.
var colorTerminals = map[string]struct{}{
	"iTerm.app": {}, "Apple_Terminal": {}, "vscode": {}, "WezTerm": {},
	"ghostty": {}, "Hyper": {}, "Tabby": {}, "rio": {},
}

// emojiTerminals is the allow-list of terminals that render emoji glyphs.
var emojiTerminals = map[string]struct{}{
	"iTerm.app": {}, "Apple_Terminal": {}, "vscode": {}, "WezTerm": {},
	"ghostty": {}, "Hyper": {}, "Tabby": {},
}

var colorTermHints = []string{"color", "xterm", "screen", "tmux", "kitty", "alacritty", "256", "rxvt", "ansi", "cygwin"}

func noColor(lookup LookupFunc, prefix string) bool {
	if v, ok := lookup("NO_COLOR"); ok && v != "" {
		return true
	}
	return enabled(lookup, prefix+"NO_COLOR")
}

func detectColor(lookup LookupFunc, interactive, ci bool, goos, prefix string) bool {
	term, _ := lookup("TERM")
	if noColor(lookup, prefix) || term == "dumb" {
		return false
	}
	if enabled(lookup, "FORCE_COLOR", "CLICOLOR_FORCE", prefix+"FORCE_COLOR") {
		return true
	}
	if ci && ciRendersANSI(lookup) {
		return true
	}
	if !interactive {
		return false
	}
	if _, ok := String(lookup, "COLORTERM", "WT_SESSION"); ok {
		return true
	}
	if prog, ok := lookup("TERM_PROGRAM"); ok {
		if _, known := colorTerminals[prog]; known {
			return true
		}
	}
	for _, hint := range colorTermHints {
		if strings.Contains(term, hint) {
			return true
		}
	}
	// Legacy Windows consoles report a TTY but render raw escapes.
	return goos != "windows"
}

func detectUnicode(lookup LookupFunc, interactive, ci bool, goos, prefix string) bool {
	if enabled(lookup, prefix+"NO_UNICODE") {
		return false
	}
	if enabled(lookup, prefix+"FORCE_UNICODE") {
		return true
	}
	term, _ := lookup("TERM")
	if term == "dumb" || term == "linux" {
		return false
	}
	if ci {
		return true
	}
	if goos == "windows" {
		if _, ok := String(lookup, "WT_SESSION", "ConEmuPID", "PSModulePath", "POWERSHELL_DISTRIBUTION_CHANNEL"); ok {
			return true
		}
		prog, _ := lookup("TERM_PROGRAM")
		return prog == "vscode"
	}
	if locale, ok := String(lookup, "LC_ALL", "LC_CTYPE", "LANG"); ok {
		l := strings.ToLower(locale)
		if strings.Contains(l, "utf-8") || strings.Contains(l, "utf8") {
			return true
		}
	}
	if prog, ok := lookup("TERM_PROGRAM"); ok {
		if _, known := colorTerminals[prog]; known {
			return true
		}
	}
	if _, ok := String(lookup, "WT_SESSION", "KITTY_WINDOW_ID"); ok {
		return true
	}
	return false
}

func detectEmoji(lookup LookupFunc, interactive, ci, unicode bool, goos, prefix string) bool {
	if noColor(lookup, prefix) || enabled(lookup, "NO_EMOJI", prefix+"NO_EMOJI") || enabled(lookup, prefix+"NO_UNICODE") {
		return false
	}
	if enabled(lookup, prefix+"FORCE_EMOJI") {
		return true
	}
	if !unicode {
		return false
	}
	if prog, ok := lookup("TERM_PROGRAM"); ok {
		if _, known := emojiTerminals[prog]; known {
			return true
		}
	}
	if _, ok := String(lookup, "WT_SESSION", "KITTY_WINDOW_ID"); ok {
		return true
	}
	if ci {
		return true
	}
	if !interactive {
		return false
	}
	return goos == "darwin" || goos == "linux"
}
