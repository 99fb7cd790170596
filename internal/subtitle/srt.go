package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SubRip blocks carry an optional numeric index line, a timing line
// with comma millisecond separators, then text lines until a blank
// line. Dot separators are tolerated on input; reconstruction replays
// the original bytes, so tolerance never rewrites a document.
var srtTimingRe = regexp.MustCompile(
	`^(\d{1,2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{1,2}):(\d{2}):(\d{2})[,.](\d{3})`,
)

// SRTDocument is a parsed SubRip file. Every byte outside the cue text
// spans is kept verbatim in cue prefixes plus one trailing run, so
// reconstruction only swaps the text spans.
type SRTDocument struct {
	cues     []Cue
	trailing string
}

func parseSRT(content string) (*SRTDocument, error) {
	content = normalizeInput(content)
	lines := strings.Split(content, "\n")

	doc := &SRTDocument{}
	var prefix strings.Builder
	var text []string
	var start, end time.Duration
	inText := false

	flush := func() {
		raw := strings.Join(text, "\n")
		skeleton, placeholders := Tokenize(raw, FormatSRT)
		ordinal := len(doc.cues) + 1
		doc.cues = append(doc.cues, Cue{
			ID:           strconv.Itoa(ordinal),
			Index:        ordinal,
			Start:        start,
			End:          end,
			Text:         raw,
			Skeleton:     skeleton,
			Placeholders: placeholders,
			Format:       FormatSRT,
			RawPrefix:    prefix.String(),
		})
		prefix.Reset()
		text = nil
		inText = false
	}

	for i, line := range lines {
		hasNL := i < len(lines)-1
		if inText {
			if strings.TrimSpace(line) == "" {
				flush()
				// the newline that closed the final text line belongs
				// to the next cue's prefix
				prefix.WriteString("\n")
				prefix.WriteString(line)
				if hasNL {
					prefix.WriteString("\n")
				}
				continue
			}
			text = append(text, line)
			continue
		}
		if m := srtTimingRe.FindStringSubmatch(line); m != nil {
			var err error
			start, err = parseClock(m[1], m[2], m[3], m[4], time.Millisecond)
			if err == nil {
				end, err = parseClock(m[5], m[6], m[7], m[8], time.Millisecond)
			}
			if err != nil {
				return nil, fmt.Errorf("srt: bad timing at line %d: %w", i+1, err)
			}
			prefix.WriteString(line)
			if hasNL {
				prefix.WriteString("\n")
			}
			inText = true
			continue
		}
		prefix.WriteString(line)
		if hasNL {
			prefix.WriteString("\n")
		}
	}
	if inText {
		flush()
	} else {
		doc.trailing = prefix.String()
	}

	if len(doc.cues) == 0 {
		return nil, fmt.Errorf("srt: %w", ErrNoCues)
	}
	return doc, nil
}

func (d *SRTDocument) Format() Format { return FormatSRT }

func (d *SRTDocument) Cues() []Cue { return d.cues }

// Reconstruct rebuilds the document with transformed text patched into
// each cue's original block. Cues whose id was not returned keep their
// original text; no cue is ever dropped.
func (d *SRTDocument) Reconstruct(transformed []TransformedCue) string {
	byID := transformedByID(transformed)
	var sb strings.Builder
	for _, cue := range d.cues {
		sb.WriteString(cue.RawPrefix)
		sb.WriteString(dropBlankLines(cueOutputText(cue, byID)))
	}
	sb.WriteString(d.trailing)
	return normalizeTrailing(sb.String())
}
