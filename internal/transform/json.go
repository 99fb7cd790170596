package transform

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	jsonBlockRegex := regexp.MustCompile("```(?:json)?\\s*")
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")

	s = strings.TrimSpace(s)

	return s
}

// fixes invalid JSON escape sequences like \N (ASS newline).
// It replaces \N with \\N so JSON can parse it, preserving the literal \N in the output.
func fixInvalidEscapes(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	i := 0
	for i < len(s) {
		if i < len(s)-1 && s[i] == '\\' {
			next := s[i+1]
			// Valid JSON escape sequences: ", \, /, b, f, n, r, t, u
			switch next {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				// Valid escape, keep as-is
				result.WriteByte(s[i])
				result.WriteByte(s[i+1])
				i += 2
			default:
				// Invalid escape like \N - escape the backslash
				result.WriteString("\\\\")
				result.WriteByte(next)
				i += 2
			}
		} else {
			result.WriteByte(s[i])
			i++
		}
	}

	return result.String()
}

// wireItem tolerates models echoing numeric-looking ids as JSON
// numbers instead of strings.
type wireItem struct {
	ID   string
	Text string
}

func (w *wireItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID   json.RawMessage `json:"id"`
		Text string          `json:"text"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	w.Text = raw.Text
	if len(raw.ID) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.ID, &s); err == nil {
		w.ID = s
		return nil
	}
	w.ID = strings.Trim(string(raw.ID), `" `)
	return nil
}

// extractItems scans the response text for the first decodable JSON
// value holding the transformed cues, either a bare array or an object
// wrapping one under a conventional key.
func extractItems(text string) ([]ResultItem, error) {
	text = fixInvalidEscapes(text)

	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		if items, ok := tryExtractItems(raw); ok && len(items) > 0 {
			return items, nil
		}
	}
	return nil, fmt.Errorf("no valid cue JSON found in response")
}

func tryExtractItems(raw json.RawMessage) ([]ResultItem, bool) {
	if items, ok := decodeItems(raw); ok {
		return items, true
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	wrapperKeys := []string{"cues", "results", "items", "data", "translations"}
	for _, key := range wrapperKeys {
		if fieldRaw, exists := wrapper[key]; exists {
			if items, ok := decodeItems(fieldRaw); ok {
				return items, true
			}
		}
	}

	for _, fieldRaw := range wrapper {
		if items, ok := decodeItems(fieldRaw); ok {
			return items, true
		}
	}

	return nil, false
}

func decodeItems(raw json.RawMessage) ([]ResultItem, bool) {
	var wire []wireItem
	if err := json.Unmarshal(raw, &wire); err != nil || !validateWireItems(wire) {
		return nil, false
	}
	items := make([]ResultItem, len(wire))
	for i, w := range wire {
		items[i] = ResultItem{ID: w.ID, Text: w.Text}
	}
	return items, true
}

func validateWireItems(items []wireItem) bool {
	for _, it := range items {
		if it.ID != "" && it.Text != "" {
			return true
		}
	}
	return false
}
