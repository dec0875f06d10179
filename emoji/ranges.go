package emoji

import "unicode"

// emojiTable lists the code points that can start an emoji run.
var emojiTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x203c, Hi: 0x203c, Stride: 1}, // ‼
		{Lo: 0x2049, Hi: 0x2049, Stride: 1}, // ⁉
		{Lo: 0x231a, Hi: 0x231b, Stride: 1}, // ⌚⌛
		{Lo: 0x2328, Hi: 0x2328, Stride: 1},
		{Lo: 0x23cf, Hi: 0x23cf, Stride: 1},
		{Lo: 0x23e9, Hi: 0x23f3, Stride: 1},
		{Lo: 0x23f8, Hi: 0x23fa, Stride: 1},
		{Lo: 0x24c2, Hi: 0x24c2, Stride: 1}, // Ⓜ
		{Lo: 0x25aa, Hi: 0x25ab, Stride: 1}, // decorative squares
		{Lo: 0x25b6, Hi: 0x25b6, Stride: 1},
		{Lo: 0x25c0, Hi: 0x25c0, Stride: 1},
		{Lo: 0x25fb, Hi: 0x25fe, Stride: 1},
		{Lo: 0x2600, Hi: 0x26ff, Stride: 1}, // miscellaneous symbols
		{Lo: 0x2702, Hi: 0x2702, Stride: 1}, // dingbats with emoji presentation
		{Lo: 0x2705, Hi: 0x2705, Stride: 1},
		{Lo: 0x2708, Hi: 0x270d, Stride: 1},
		{Lo: 0x270f, Hi: 0x270f, Stride: 1},
		{Lo: 0x2712, Hi: 0x2712, Stride: 1},
		{Lo: 0x271d, Hi: 0x271d, Stride: 1},
		{Lo: 0x2721, Hi: 0x2721, Stride: 1},
		{Lo: 0x2728, Hi: 0x2728, Stride: 1},
		{Lo: 0x2733, Hi: 0x2734, Stride: 1},
		{Lo: 0x2744, Hi: 0x2744, Stride: 1},
		{Lo: 0x2747, Hi: 0x2747, Stride: 1},
		{Lo: 0x274c, Hi: 0x274c, Stride: 1},
		{Lo: 0x274e, Hi: 0x274e, Stride: 1},
		{Lo: 0x2753, Hi: 0x2755, Stride: 1},
		{Lo: 0x2757, Hi: 0x2757, Stride: 1},
		{Lo: 0x2763, Hi: 0x2764, Stride: 1},
		{Lo: 0x2795, Hi: 0x2797, Stride: 1},
		{Lo: 0x27a1, Hi: 0x27a1, Stride: 1},
		{Lo: 0x27b0, Hi: 0x27b0, Stride: 1},
		{Lo: 0x27bf, Hi: 0x27bf, Stride: 1},
		{Lo: 0x2934, Hi: 0x2935, Stride: 1},
		{Lo: 0x2b05, Hi: 0x2b07, Stride: 1},
		{Lo: 0x2b1b, Hi: 0x2b1c, Stride: 1},
		{Lo: 0x2b50, Hi: 0x2b50, Stride: 1},
		{Lo: 0x2b55, Hi: 0x2b55, Stride: 1},
		{Lo: 0x3030, Hi: 0x3030, Stride: 1},
		{Lo: 0x303d, Hi: 0x303d, Stride: 1},
		{Lo: 0x3297, Hi: 0x3297, Stride: 1},
		{Lo: 0x3299, Hi: 0x3299, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1f004, Hi: 0x1f004, Stride: 1}, // mahjong
		{Lo: 0x1f0cf, Hi: 0x1f0cf, Stride: 1}, // joker
		{Lo: 0x1f170, Hi: 0x1f251, Stride: 1}, // enclosed alphanumerics and ideographs, regional indicators
		{Lo: 0x1f300, Hi: 0x1f5ff, Stride: 1}, // symbols and pictographs
		{Lo: 0x1f600, Hi: 0x1f64f, Stride: 1}, // emoticons
		{Lo: 0x1f680, Hi: 0x1f6ff, Stride: 1}, // transport and map
		{Lo: 0x1f780, Hi: 0x1f7ff, Stride: 1}, // geometric shapes extended
		{Lo: 0x1f900, Hi: 0x1f9ff, Stride: 1}, // supplemental symbols and pictographs
		{Lo: 0x1fa70, Hi: 0x1faff, Stride: 1}, // symbols and pictographs extended-A
	},
	LatinOffset: 0,
}

// textSymbols are code points inside the emoji ranges that log themes use
// as plain icons. They are always copied through.
var textSymbols = map[rune]struct{}{
	0x2605: {}, // ★
	0x2606: {}, // ☆
	0x2610: {}, // ☐
	0x2611: {}, // ☑
	0x2612: {}, // ☒
	0x2630: {}, // ☰
	0x263a: {}, // ☺ as text
	0x2691: {}, // ⚑
	0x26a0: {}, // ⚠
	0x26ac: {}, // ⚬
}

const (
	zwj             = 0x200d
	textSelector    = 0xfe0e
	emojiSelector   = 0xfe0f
	keycapCombining = 0x20e3
	regionalLo      = 0x1f1e6
	regionalHi      = 0x1f1ff
	skinToneLo      = 0x1f3fb
	skinToneHi      = 0x1f3ff
	tagLo           = 0xe0020
	tagHi           = 0xe007f
)

func isRegional(r rune) bool { return r >= regionalLo && r <= regionalHi }

func isSkinTone(r rune) bool { return r >= skinToneLo && r <= skinToneHi }

func isSelector(r rune) bool { return r == textSelector || r == emojiSelector }

func isTag(r rune) bool { return r >= tagLo && r <= tagHi }

func isKeycapBase(r rune) bool { return (r >= '0' && r <= '9') || r == '#' || r == '*' }
