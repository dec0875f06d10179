package emoji

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/dianlight/tconsole/capability"
)

type EmojiSuite struct {
	suite.Suite
}

func (suite *EmojiSuite) TestStripCases() {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"single emoji between words", "Deploying 🚀 now", "Deploying now"},
		{"emoji glued to words", "a🚀b", "a b"},
		{"leading emoji", "🚀 Launch", "Launch"},
		{"trailing emoji", "Done ✅", "Done"},
		{"skin tone", "wave 👋🏽 hello", "wave hello"},
		{"zwj sequence", "dev 👩‍💻 ready", "dev ready"},
		{"zwj with skin tone", "crew 👩🏽‍🚀 go", "crew go"},
		{"zwj with selector", "love ❤️‍🔥 it", "love it"},
		{"rainbow flag", "pride 🏳️‍🌈 flag", "pride flag"},
		{"regional indicator pair", "from 🇺🇸 to 🇮🇹", "from to"},
		{"keycap", "press 1️⃣ now", "press now"},
		{"hash keycap", "tag #️⃣ here", "tag here"},
		{"adjacent emoji", "x 🚀🔥💯 y", "x y"},
		{"only emoji", "🚀🔥", ""},
		{"subdivision flag", "go 🏴󠁧󠁢󠁳󠁣󠁴󠁿 team", "go team"},
		{"dangling selector on warning sign", "⚠️ careful", "⚠ careful"},
		{"digits are not keycaps", "Build 2 of 10", "Build 2 of 10"},
		{"hash is not a keycap", "issue #42", "issue #42"},
		{"whitespace collapse", "  many   spaces\there ", "many spaces here"},
		{"multi-line kept", "line one 🚀\nline two", "line one\nline two"},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, Strip(tc.input))
		})
	}
}

func (suite *EmojiSuite) TestThemeIconsArePreserved() {
	icons := []string{"✔", "✖", "✓", "✗", "✘", "•", "→", "ℹ", "⚠", "❯", "◆", "●", "☐", "⠋", "⠙", "↓", "…"}
	for _, icon := range icons {
		suite.Run(icon, func() {
			input := icon + " message"
			suite.Equal(input, Strip(input))
			suite.False(Contains(icon))
		})
	}
}

func (suite *EmojiSuite) TestIdempotence() {
	inputs := []string{
		"Deploying 🚀 now",
		"1️️⃣ odd",
		"🇦🚀🇧 mixed",
		"  ✔ done   ✅ ok ",
		"a‍b",
		"👨‍👩‍👧‍👦 family\n\n next",
		"plain text",
	}
	for _, in := range inputs {
		once := Strip(in)
		suite.Equal(once, Strip(once), "input %q", in)
	}
}

func (suite *EmojiSuite) TestNoEmojiRoundTrip() {
	in := "Ünïcödé — text → with • symbols ✔ and 日本語"
	suite.Equal(in, Strip(in))
	suite.False(Contains(in))
}

func (suite *EmojiSuite) TestContains() {
	suite.True(Contains("ship it 🚢"))
	suite.True(Contains("🇮🇹"))
	suite.True(Contains("3️⃣"))
	suite.False(Contains("3 items"))
}

func (suite *EmojiSuite) TestIsEmoji() {
	suite.True(IsEmoji('🚀'))
	suite.True(IsEmoji('❌'))
	suite.False(IsEmoji('✔'))
	suite.False(IsEmoji('⚠'))
	suite.False(IsEmoji('a'))
}

func (suite *EmojiSuite) TestSupported() {
	suite.True(Supported(capability.Profile{Emoji: true}))
	suite.False(Supported(capability.Profile{Unicode: true}))
}

func TestEmojiSuite(t *testing.T) {
	suite.Run(t, new(EmojiSuite))
}
