package subtitle

import (
	"time"
)

// represents supported subtitle formats
type Format string

const (
	FormatSRT     Format = "srt"
	FormatVTT     Format = "vtt"
	FormatASS     Format = "ass"
	FormatUnknown Format = ""
)

// Placeholder stands in for one non-text span (override block, inline
// tag, entity reference, line break) removed from a cue's skeleton.
type Placeholder struct {
	Index    int
	Token    string
	Original string
}

// Cue is one subtitle unit. Cues are created once, by a parser or by
// the segmentation engine, and treated as immutable values afterwards.
type Cue struct {
	ID           string
	Index        int
	Start        time.Duration
	End          time.Duration
	Text         string // exact original text span, markup included
	Skeleton     string // Text with markup replaced by placeholder tokens
	Placeholders []Placeholder
	Speaker      string
	Style        string
	Format       Format
	RawPrefix    string // verbatim bytes preceding the text field
	RawSuffix    string // verbatim bytes following the text field
}

// TransformedCue is the text an external transform produced for one cue.
// The ID must reference a cue in the source set.
type TransformedCue struct {
	ID   string
	Text string
}

// Document is a parsed subtitle file that preserves format specific
// byte layout and can rebuild itself with transformed text patched in.
type Document interface {
	Format() Format
	Cues() []Cue
	Reconstruct(transformed []TransformedCue) string
}

// Writer renders engine generated cues to a subtitle file.
type Writer interface {
	Render(cues []Cue) string
	Write(cues []Cue, path string) error
}
