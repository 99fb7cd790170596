package subtitle

import (
	"fmt"
	"regexp"
	"strings"
)

// Placeholder tokens use the ⟦n⟧ bracket pair (U+27E6 / U+27E7), which
// does not occur in natural subtitle text. Numbering restarts at zero
// for every cue, so tokens are only meaningful next to their cue's
// placeholder list.

var (
	// override blocks plus the \N, \n and \h escapes
	assMarkupRe = regexp.MustCompile(`\{[^{}]*\}|\\N|\\n|\\h`)
	// inline tags, entity references and forced line breaks
	tagMarkupRe = regexp.MustCompile(`<[^<>]*>|&(?:[a-zA-Z][a-zA-Z0-9]*|#[0-9]+|#[xX][0-9a-fA-F]+);|\n`)

	tokenRe = regexp.MustCompile(`⟦\d+⟧`)
)

func markupPattern(format Format) *regexp.Regexp {
	switch format {
	case FormatASS:
		return assMarkupRe
	case FormatSRT, FormatVTT:
		return tagMarkupRe
	default:
		return nil
	}
}

// Tokenize replaces every markup span in text with a numbered token,
// scanning left to right, and records the token to span mapping.
// Text without markup passes through with an empty placeholder list.
func Tokenize(text string, format Format) (string, []Placeholder) {
	re := markupPattern(format)
	if re == nil {
		return text, nil
	}
	var placeholders []Placeholder
	skeleton := re.ReplaceAllStringFunc(text, func(span string) string {
		token := fmt.Sprintf("⟦%d⟧", len(placeholders))
		placeholders = append(placeholders, Placeholder{
			Index:    len(placeholders),
			Token:    token,
			Original: span,
		})
		return token
	})
	return skeleton, placeholders
}

// Restore substitutes the original span back for each token. Tokens may
// appear in any order in text. Tokens that never appear are returned in
// missing and stay unresolved; callers surface them as validation
// findings rather than dropping them silently.
func Restore(text string, placeholders []Placeholder) (string, []string) {
	var missing []string
	for _, ph := range placeholders {
		if !strings.Contains(text, ph.Token) {
			missing = append(missing, ph.Token)
			continue
		}
		text = strings.Replace(text, ph.Token, ph.Original, 1)
	}
	return text, missing
}
