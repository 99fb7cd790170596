package subtitle

import (
	"strings"
	"testing"
	"time"
)

const assFixture = `[Script Info]
Title: Fixture
ScriptType: v4.00+

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1
Style: Italic,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,1,0,0,100,100,0,0,1,2,2,2,10,10,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.00,0:00:04.00,Default,Anna,0,0,0,,{\pos(100,200)}Hello, world!
Dialogue: 0,0:00:05.50,0:00:08.20,Italic,,0,0,0,,Line with\Nbreak, and a comma.
`

func TestParseASS(t *testing.T) {
	doc, err := parseASS(assFixture)
	if err != nil {
		t.Fatalf("parseASS failed: %v", err)
	}

	cues := doc.Cues()
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}

	if cues[0].ID != "d1" || cues[1].ID != "d2" {
		t.Errorf("ids: got %q %q", cues[0].ID, cues[1].ID)
	}
	if cues[0].Start != 1*time.Second {
		t.Errorf("cue 0: expected start 1s, got %v", cues[0].Start)
	}
	if cues[1].Start != 5500*time.Millisecond {
		t.Errorf("cue 1: expected start 5.5s, got %v", cues[1].Start)
	}
	if cues[1].End != 8200*time.Millisecond {
		t.Errorf("cue 1: expected end 8.2s, got %v", cues[1].End)
	}
	if cues[0].Speaker != "Anna" {
		t.Errorf("cue 0 speaker: got %q", cues[0].Speaker)
	}
	if cues[1].Style != "Italic" {
		t.Errorf("cue 1 style: got %q", cues[1].Style)
	}

	// the text field owns every comma after the last metadata field
	if cues[1].Text != `Line with\Nbreak, and a comma.` {
		t.Errorf("cue 1 text: got %q", cues[1].Text)
	}
	if cues[0].Skeleton != "⟦0⟧Hello, world!" {
		t.Errorf("cue 0 skeleton: got %q", cues[0].Skeleton)
	}
	if cues[1].Skeleton != "Line with⟦0⟧break, and a comma." {
		t.Errorf("cue 1 skeleton: got %q", cues[1].Skeleton)
	}
}

func TestASSReconstructPatchesOnlyText(t *testing.T) {
	doc, err := parseASS(assFixture)
	if err != nil {
		t.Fatalf("parseASS failed: %v", err)
	}
	got := doc.Reconstruct([]TransformedCue{
		{ID: "d1", Text: "⟦0⟧こんにちは、世界！"},
		{ID: "d2", Text: "行⟦0⟧改行、そしてコンマ。"},
	})

	if !strings.Contains(got, "Style: Italic,Arial,20") {
		t.Error("styles section not preserved")
	}
	if !strings.Contains(got, `Dialogue: 0,0:00:01.00,0:00:04.00,Default,Anna,0,0,0,,{\pos(100,200)}こんにちは、世界！`) {
		t.Errorf("dialogue 1 not patched in place:\n%s", got)
	}
	if !strings.Contains(got, `Dialogue: 0,0:00:05.50,0:00:08.20,Italic,,0,0,0,,行\N改行、そしてコンマ。`) {
		t.Errorf("dialogue 2 not patched in place:\n%s", got)
	}
}

func TestASSReconstructEscapesRawNewlines(t *testing.T) {
	doc, err := parseASS(assFixture)
	if err != nil {
		t.Fatalf("parseASS failed: %v", err)
	}
	got := doc.Reconstruct([]TransformedCue{
		{ID: "d1", Text: "⟦0⟧first\nsecond"},
	})
	if !strings.Contains(got, `{\pos(100,200)}first\Nsecond`) {
		t.Errorf("raw newline must become \\N:\n%s", got)
	}
}

func TestParseASSNonstandardFieldOrder(t *testing.T) {
	content := `[Events]
Format: Start, End, Text
Dialogue: 0:00:02.00,0:00:03.00,Compact layout
`
	doc, err := parseASS(content)
	if err != nil {
		t.Fatalf("parseASS failed: %v", err)
	}
	cue := doc.Cues()[0]
	if cue.Start != 2*time.Second || cue.End != 3*time.Second {
		t.Errorf("times: got %v %v", cue.Start, cue.End)
	}
	if cue.Text != "Compact layout" {
		t.Errorf("text: got %q", cue.Text)
	}
}

func TestParseASSDialogueBeforeFormat(t *testing.T) {
	content := "[Events]\nDialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,Hi\n"
	if _, err := parseASS(content); err == nil {
		t.Error("expected error for Dialogue before Format line")
	}
}

func TestParseASSTextFieldMustBeLast(t *testing.T) {
	content := "[Events]\nFormat: Start, Text, End\nDialogue: 0:00:01.00,Hi,0:00:02.00\n"
	if _, err := parseASS(content); err == nil {
		t.Error("expected error for Text field not declared last")
	}
}

func TestParseASSMalformedDialoguePreserved(t *testing.T) {
	content := `[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: not enough fields
Dialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,Good line
`
	doc, err := parseASS(content)
	if err != nil {
		t.Fatalf("parseASS failed: %v", err)
	}
	if len(doc.Cues()) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(doc.Cues()))
	}
	out := doc.Reconstruct(identity(doc.Cues()))
	if !strings.Contains(out, "Dialogue: not enough fields") {
		t.Errorf("malformed line must pass through verbatim:\n%s", out)
	}
}
