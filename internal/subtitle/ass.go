package subtitle

import (
	"fmt"
	"strconv"
	"strings"
)

// ASSDocument is a parsed Advanced SubStation Alpha file. The whole
// line array is retained; reconstruction patches the text field of each
// dialogue line in place and leaves every other byte alone.
type ASSDocument struct {
	lines   []string
	cues    []Cue
	cueLine []int // cues[i] came from lines[cueLine[i]]
}

// assLayout captures the field order declared by the Format: line of
// the [Events] section. Only the first len(cols)-1 commas of a dialogue
// line are significant splits; the Text field owns the rest of the line
// and may itself contain commas.
type assLayout struct {
	cols     []string
	textCol  int
	startCol int
	endCol   int
	styleCol int
	nameCol  int
}

func parseEventsFormat(line string) (*assLayout, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "Format:"))
	layout := &assLayout{
		textCol:  -1,
		startCol: -1,
		endCol:   -1,
		styleCol: -1,
		nameCol:  -1,
	}
	for i, col := range strings.Split(rest, ",") {
		col = strings.TrimSpace(col)
		layout.cols = append(layout.cols, col)
		switch strings.ToLower(col) {
		case "text":
			layout.textCol = i
		case "start":
			layout.startCol = i
		case "end":
			layout.endCol = i
		case "style":
			layout.styleCol = i
		case "name":
			layout.nameCol = i
		}
	}
	if layout.textCol == -1 {
		return nil, fmt.Errorf("ass: Format line declares no Text field")
	}
	if layout.textCol != len(layout.cols)-1 {
		return nil, fmt.Errorf("ass: Text must be the last Format field")
	}
	return layout, nil
}

func parseASS(content string) (*ASSDocument, error) {
	content = normalizeInput(content)
	doc := &ASSDocument{lines: strings.Split(content, "\n")}

	inEvents := false
	var layout *assLayout

	for i, line := range doc.lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			inEvents = strings.EqualFold(trimmed, "[Events]")
			continue
		}
		if !inEvents {
			continue
		}
		if strings.HasPrefix(trimmed, "Format:") {
			var err error
			layout, err = parseEventsFormat(line)
			if err != nil {
				return nil, err
			}
			continue
		}
		if !strings.HasPrefix(trimmed, "Dialogue:") {
			continue
		}
		if layout == nil {
			return nil, fmt.Errorf("ass: Dialogue at line %d before Format line", i+1)
		}
		cue, ok := parseDialogue(line, layout, len(doc.cues)+1)
		if !ok {
			// malformed dialogue lines pass through untouched
			continue
		}
		doc.cueLine = append(doc.cueLine, i)
		doc.cues = append(doc.cues, cue)
	}

	if len(doc.cues) == 0 {
		return nil, fmt.Errorf("ass: %w", ErrNoCues)
	}
	return doc, nil
}

func parseDialogue(line string, layout *assLayout, ordinal int) (Cue, bool) {
	head := strings.Index(line, "Dialogue:")
	if head == -1 {
		return Cue{}, false
	}
	payload := head + len("Dialogue:")

	// byte offset of the text field: skip one comma per preceding field
	pos := payload
	for c := 0; c < layout.textCol; c++ {
		k := strings.Index(line[pos:], ",")
		if k == -1 {
			return Cue{}, false
		}
		pos += k + 1
	}

	fields := strings.SplitN(line[payload:], ",", len(layout.cols))
	field := func(idx int) string {
		if idx < 0 || idx >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[idx])
	}

	raw := line[pos:]
	skeleton, placeholders := Tokenize(raw, FormatASS)
	return Cue{
		ID:           "d" + strconv.Itoa(ordinal),
		Index:        ordinal,
		Start:        parseASSClock(field(layout.startCol)),
		End:          parseASSClock(field(layout.endCol)),
		Text:         raw,
		Skeleton:     skeleton,
		Placeholders: placeholders,
		Speaker:      field(layout.nameCol),
		Style:        field(layout.styleCol),
		Format:       FormatASS,
		RawPrefix:    line[:pos],
	}, true
}

func (d *ASSDocument) Format() Format { return FormatASS }

func (d *ASSDocument) Cues() []Cue { return d.cues }

// Reconstruct rebuilds the document with transformed text patched into
// each dialogue line. Dialogue text is a single line; any raw newline a
// transform introduced becomes a \N escape.
func (d *ASSDocument) Reconstruct(transformed []TransformedCue) string {
	byID := transformedByID(transformed)
	lines := make([]string, len(d.lines))
	copy(lines, d.lines)
	for i, cue := range d.cues {
		out := cueOutputText(cue, byID)
		out = strings.ReplaceAll(out, "\n", "\\N")
		lines[d.cueLine[i]] = cue.RawPrefix + out
	}
	return normalizeTrailing(strings.Join(lines, "\n"))
}
