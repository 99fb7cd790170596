package subtitle

import (
	"strings"
)

// Detect classifies subtitle content by its leading structure: the
// header line for WebVTT, a section header for ASS, a timing line for
// SubRip. It is total; content matching nothing yields FormatUnknown.
func Detect(content string) Format {
	content = strings.TrimPrefix(content, "\ufeff")

	scanned := 0
	for _, line := range strings.Split(content, "\n") {
		if scanned >= 50 {
			break
		}
		trimmed := strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			continue
		}
		scanned++

		if strings.HasPrefix(trimmed, "WEBVTT") {
			return FormatVTT
		}
		switch strings.ToLower(trimmed) {
		case "[script info]", "[v4+ styles]", "[v4 styles]", "[events]":
			return FormatASS
		}
		if srtTimingRe.MatchString(trimmed) {
			return FormatSRT
		}
	}
	return FormatUnknown
}
