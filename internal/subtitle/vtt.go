package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// WebVTT timing lines use dot separators and may omit the hour field.
// Anything after the end timestamp (cue settings) stays on the line and
// is preserved verbatim.
var vttTimingRe = regexp.MustCompile(
	`^(?:(\d{1,2}):)?(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(?:(\d{1,2}):)?(\d{2}):(\d{2})\.(\d{3})`,
)

// VTTDocument is a parsed WebVTT file. The header, NOTE, STYLE and
// REGION blocks, cue identifiers and cue settings all live in the
// verbatim prefixes, so reconstruction only swaps the text spans.
type VTTDocument struct {
	cues     []Cue
	trailing string
}

func parseVTT(content string) (*VTTDocument, error) {
	content = normalizeInput(content)
	lines := strings.Split(content, "\n")

	doc := &VTTDocument{}
	var prefix strings.Builder
	var text []string
	var start, end time.Duration
	inText := false
	inBlock := false // NOTE / STYLE / REGION body

	flush := func() {
		raw := strings.Join(text, "\n")
		skeleton, placeholders := Tokenize(raw, FormatVTT)
		ordinal := len(doc.cues) + 1
		doc.cues = append(doc.cues, Cue{
			ID:           strconv.Itoa(ordinal),
			Index:        ordinal,
			Start:        start,
			End:          end,
			Text:         raw,
			Skeleton:     skeleton,
			Placeholders: placeholders,
			Format:       FormatVTT,
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

		trimmed := strings.TrimSpace(line)
		if inBlock {
			prefix.WriteString(line)
			if hasNL {
				prefix.WriteString("\n")
			}
			if trimmed == "" {
				inBlock = false
			}
			continue
		}
		if strings.HasPrefix(trimmed, "NOTE") ||
			strings.HasPrefix(trimmed, "STYLE") ||
			strings.HasPrefix(trimmed, "REGION") {
			inBlock = true
			prefix.WriteString(line)
			if hasNL {
				prefix.WriteString("\n")
			}
			continue
		}
		if m := vttTimingRe.FindStringSubmatch(line); m != nil {
			var err error
			start, err = parseClock(orZero(m[1]), m[2], m[3], m[4], time.Millisecond)
			if err == nil {
				end, err = parseClock(orZero(m[5]), m[6], m[7], m[8], time.Millisecond)
			}
			if err != nil {
				return nil, fmt.Errorf("vtt: bad timing at line %d: %w", i+1, err)
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
		return nil, fmt.Errorf("vtt: %w", ErrNoCues)
	}
	return doc, nil
}

func orZero(field string) string {
	if field == "" {
		return "0"
	}
	return field
}

func (d *VTTDocument) Format() Format { return FormatVTT }

func (d *VTTDocument) Cues() []Cue { return d.cues }

// Reconstruct rebuilds the document with transformed text patched into
// each cue's original block. Cues whose id was not returned keep their
// original text.
func (d *VTTDocument) Reconstruct(transformed []TransformedCue) string {
	byID := transformedByID(transformed)
	var sb strings.Builder
	for _, cue := range d.cues {
		sb.WriteString(cue.RawPrefix)
		sb.WriteString(dropBlankLines(cueOutputText(cue, byID)))
	}
	sb.WriteString(d.trailing)
	return normalizeTrailing(sb.String())
}
