package subtitle

import (
	"errors"
	"strings"
)

var (
	// ErrNoFormat reports content whose structure matches no supported format.
	ErrNoFormat = errors.New("no subtitle format detected")
	// ErrNoCues reports a structurally valid document containing zero cues.
	ErrNoCues = errors.New("document contains no cues")
)

// Parse detects the format of content and parses it into a Document.
// Detection never fails but parsing can: undetectable content returns
// ErrNoFormat and an empty cue set returns ErrNoCues.
func Parse(content string) (Document, error) {
	switch Detect(content) {
	case FormatSRT:
		return parseSRT(content)
	case FormatVTT:
		return parseVTT(content)
	case FormatASS:
		return parseASS(content)
	default:
		return nil, ErrNoFormat
	}
}

// normalizeInput strips a UTF-8 BOM and converts CRLF line endings.
func normalizeInput(content string) string {
	content = strings.TrimPrefix(content, "\ufeff")
	return strings.ReplaceAll(content, "\r\n", "\n")
}

// normalizeTrailing reduces any trailing newline run to exactly one.
func normalizeTrailing(s string) string {
	return strings.TrimRight(s, "\n") + "\n"
}

// transformedByID indexes transformed text for reconstruction lookups.
// The first occurrence of a duplicated id wins; duplicates are reported
// by Validate.
func transformedByID(transformed []TransformedCue) map[string]string {
	byID := make(map[string]string, len(transformed))
	for _, t := range transformed {
		if _, ok := byID[t.ID]; ok {
			continue
		}
		byID[t.ID] = t.Text
	}
	return byID
}

// cueOutputText resolves the final text for one cue: the transformed
// text with placeholders restored when the id was returned, the
// original text otherwise. Missing tokens stay unresolved; Validate
// reports them.
func cueOutputText(cue Cue, byID map[string]string) string {
	text, ok := byID[cue.ID]
	if !ok {
		return cue.Text
	}
	restored, _ := Restore(text, cue.Placeholders)
	return restored
}

// dropBlankLines removes empty lines a transform may have introduced
// into cue text. A blank line would terminate the block early when the
// reconstructed document is parsed again.
func dropBlankLines(s string) string {
	if !strings.Contains(s, "\n") {
		return s
	}
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
