package aribstr

// tofu is the placeholder glyph emitted for a code point this package has
// no mapping for (JIS kanji rows and additional-symbols rows we do not
// carry a full table for). See DESIGN.md for the coverage gap this
// documents.
const tofu = "□"

// hiraganaTable and katakanaTable are generated from the contiguous runs
// of the Unicode Hiragana/Katakana blocks that JIS X 0208 row 4 and row 5
// map onto one-for-one. ten runs 1..94 (GL byte 0x21..0x7E); index ten-1.
var hiraganaTable = buildKanaTable(0x3041, 86)
var katakanaTable = buildKanaTable(0x30A1, 90)

func buildKanaTable(base rune, count int) [94]rune {
	var t [94]rune
	for i := range t {
		if i < count {
			t[i] = base + rune(i)
		} else {
			t[i] = 0
		}
	}
	return t
}

// jisx0201KatakanaTable is the half-width katakana block, contiguous from
// U+FF61, covering GL bytes 0x21..0x5F (ten 1..63).
var jisx0201KatakanaTable = func() [94]rune {
	var t [94]rune
	for i := range t {
		if i < 63 {
			t[i] = 0xFF61 + rune(i)
		}
	}
	return t
}()

// kanjiSubset maps a handful of two-byte kanji codes, keyed by the raw GL
// wire bytes (b0<<8|b1), to Unicode code points. This is
// not a complete JIS X 0208 table; codes outside it render as tofu. Rows 4
// and 5 (hiragana/katakana embedded in the kanji plane) are handled
// separately in emit and never consult this map.
var kanjiSubset = map[int]rune{
	0x1021: '亜', 0x1022: '唖', 0x1023: '娃', 0x1024: '阿', 0x1025: '哀',
	0x1026: '愛', 0x1027: '挨', 0x1028: '姶', 0x1029: '逢', 0x102A: '葵',
	0x3021: '日', 0x3022: '一', 0x3023: '国', 0x3024: '人', 0x3025: '年',
	0x3026: '大', 0x3027: '十', 0x3028: '二', 0x3029: '本', 0x302A: '中',
	0x3421: '水', 0x3422: '木', 0x3423: '金', 0x3424: '土', 0x3425: '月',
	0x3426: '火', 0x3427: '曜', 0x3428: '時', 0x3429: '分', 0x342A: '秒',
}

// lookupKuten looks up a kanji character by its raw two-byte GL code
// (b0,b1, each 0x21-0x7E), as carried directly on the wire.
func lookupKuten(b0, b1 byte) (rune, bool) {
	r, ok := kanjiSubset[int(b0)<<8|int(b1)]
	return r, ok
}

// alphanumericFullWidth renders a GL alphanumeric byte (0x21-0x7E) as its
// JIS fullwidth form.
func alphanumericFullWidth(b byte) rune {
	return 0xFF00 + rune(b-0x20)
}
