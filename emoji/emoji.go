// Package emoji detects and strips emoji grapheme clusters from text.
//
// Strip scans by code point. A run starts at a code point from the emoji
// table and extends across skin-tone modifiers, variation selectors, tag
// characters and zero-width-joiner sequences. Regional-indicator pairs
// (flags) and keycap sequences are consumed as single runs. Plain
// Unicode icons used by log themes (✔ ✖ • → ⚠ ...) are never removed.
package emoji

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dianlight/tconsole/capability"
)

// IsEmoji reports whether r can start an emoji run.
func IsEmoji(r rune) bool {
	if _, ok := textSymbols[r]; ok {
		return false
	}
	return unicode.Is(emojiTable, r)
}

// Supported reports whether the terminal described by p renders emoji.
func Supported(p capability.Profile) bool {
	return p.Emoji
}

// Contains reports whether text holds at least one emoji run.
func Contains(text string) bool {
	runes := []rune(text)
	for i := range runes {
		if n := runLength(runes, i); n > 0 {
			return true
		}
	}
	return false
}

// Strip removes every emoji run from text and normalizes the whitespace
// left behind. Stripping is idempotent.
func Strip(text string) string {
	if text == "" {
		return text
	}
	runes := []rune(text)
	var out strings.Builder
	out.Grow(len(text))

	for i := 0; i < len(runes); {
		if n := runLength(runes, i); n > 0 {
			i += n
			if !endsInSpace(out.String()) {
				out.WriteByte(' ')
			}
			continue
		}
		r := runes[i]
		i++
		if r == emojiSelector {
			// A dangling presentation selector would turn a kept icon into emoji.
			continue
		}
		out.WriteRune(r)
	}
	return normalizeSpace(out.String())
}

// runLength returns how many code points starting at i form one emoji run,
// or 0 when runes[i] does not start one.
func runLength(runes []rune, i int) int {
	r := runes[i]
	n := len(runes)

	if isKeycapBase(r) {
		if i+2 < n && runes[i+1] == emojiSelector && runes[i+2] == keycapCombining {
			return 3
		}
		return 0
	}
	if isRegional(r) && i+1 < n && isRegional(runes[i+1]) {
		return 2
	}
	if !IsEmoji(r) {
		return 0
	}

	j := i + 1
	for j < n {
		next := runes[j]
		switch {
		case isSkinTone(next), isSelector(next), isTag(next), next == keycapCombining:
			j++
		case next == zwj && j+1 < n && IsEmoji(runes[j+1]):
			j += 2
		default:
			return j - i
		}
	}
	return j - i
}

func endsInSpace(s string) bool {
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}

// normalizeSpace collapses runs of horizontal whitespace to a single space,
// drops spaces next to line breaks and trims both ends. Line breaks are kept
// so multi-line messages survive.
func normalizeSpace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.FieldsFunc(line, isHorizontalSpace), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func isHorizontalSpace(r rune) bool {
	return r != '\n' && unicode.IsSpace(r)
}
