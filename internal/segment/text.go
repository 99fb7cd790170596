package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// sentence enders across Latin, CJK, Arabic, and Indic scripts
var sentenceFinalRunes = map[rune]bool{
	'.': true, '!': true, '?': true, '…': true,
	'。': true, '！': true, '？': true, '．': true,
	'؟': true, '।': true, '॥': true, '։': true,
	'។': true, '။': true,
}

var clauseBreakRunes = map[rune]bool{
	',': true, ';': true, ':': true,
	'，': true, '、': true, '；': true, '：': true, '､': true,
	'،': true, '؛': true,
}

// unambiguous closing quotes and brackets that may trail a sentence
// ender; straight quotes are excluded because they also open
var closingRunes = map[rune]bool{
	')': true, ']': true, '}': true,
	'」': true, '』': true, '”': true, '’': true,
	'）': true, '】': true, '》': true, '〉': true,
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}

// isWide also covers CJK punctuation and fullwidth forms, which join
// without spaces just like the glyphs around them
func isWide(r rune) bool {
	if isCJK(r) {
		return true
	}
	return (r >= 0x3000 && r <= 0x303F) || (r >= 0xFF00 && r <= 0xFF65)
}

func containsCJK(s string) bool {
	for _, r := range s {
		if isCJK(r) {
			return true
		}
	}
	return false
}

// isTrailingPunct reports whether a rune belongs to the end of the
// text before it rather than the start of what follows.
func isTrailingPunct(r rune) bool {
	return sentenceFinalRunes[r] || clauseBreakRunes[r] || closingRunes[r] ||
		r == '~' || r == '～' || r == '·' || r == '—'
}

func endsWithSentenceFinal(text string) bool {
	return lastSignificantRune(text, sentenceFinalRunes)
}

func endsWithClauseBreak(text string) bool {
	return lastSignificantRune(text, clauseBreakRunes)
}

// lastSignificantRune checks the final rune of text against class,
// looking through trailing spaces and closing quotes or brackets.
func lastSignificantRune(text string, class map[rune]bool) bool {
	runes := []rune(strings.TrimRight(text, " "))
	i := len(runes) - 1
	for i >= 0 && closingRunes[runes[i]] {
		i--
	}
	if i < 0 {
		return false
	}
	return class[runes[i]]
}

// splitLeadingPunct peels off the run of punctuation a tokenizer glued
// to the front of a token. Opening quotes and brackets stay put.
func splitLeadingPunct(s string) (run, rest string) {
	idx := 0
	for idx < len(s) {
		r, size := utf8.DecodeRuneInString(s[idx:])
		if !isTrailingPunct(r) {
			break
		}
		idx += size
	}
	return s[:idx], s[idx:]
}

func isPurePunct(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}

// joinWords concatenates two fragments, skipping the space when the
// boundary glyphs on both sides are CJK.
func joinWords(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	ra, _ := utf8.DecodeLastRuneInString(a)
	rb, _ := utf8.DecodeRuneInString(b)
	if isWide(ra) && isWide(rb) {
		return a + b
	}
	return a + " " + b
}

// splitGlyphs breaks unspaced CJK text into per glyph words, keeping
// embedded Latin or digit runs together as single words.
func splitGlyphs(s string) []string {
	var words []string
	var narrow []rune
	flush := func() {
		if len(narrow) > 0 {
			words = append(words, string(narrow))
			narrow = nil
		}
	}
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			flush()
		case isWide(r):
			flush()
			words = append(words, string(r))
		default:
			narrow = append(narrow, r)
		}
	}
	flush()
	return words
}

// collapseSpacing folds runs of spaces to a single space, or to
// nothing when both neighbouring glyphs are CJK, undoing the
// inter-glyph spacing ASR engines insert.
func collapseSpacing(s string) string {
	runes := []rune(s)
	out := make([]rune, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		if runes[i] != ' ' {
			out = append(out, runes[i])
			continue
		}
		j := i
		for j < len(runes) && runes[j] == ' ' {
			j++
		}
		if len(out) == 0 || j >= len(runes) || !isWide(out[len(out)-1]) || !isWide(runes[j]) {
			out = append(out, ' ')
		}
		i = j - 1
	}
	return string(out)
}
