package subtitle

import (
	"testing"
)

func validateFixture(t *testing.T) []Cue {
	t.Helper()
	content := `1
00:00:01,000 --> 00:00:04,000
Hello, <i>world</i>!

2
00:00:05,000 --> 00:00:06,000
Plain text.
`
	doc, err := parseSRT(content)
	if err != nil {
		t.Fatalf("fixture parse failed: %v", err)
	}
	return doc.Cues()
}

func findKind(findings []Finding, kind FindingKind) *Finding {
	for i := range findings {
		if findings[i].Kind == kind {
			return &findings[i]
		}
	}
	return nil
}

func TestValidateCleanSet(t *testing.T) {
	cues := validateFixture(t)
	findings := Validate(cues, []TransformedCue{
		{ID: "1", Text: "Bonjour, ⟦0⟧le monde⟦1⟧ !"},
		{ID: "2", Text: "Texte brut."},
	})
	if len(findings) != 0 {
		t.Errorf("expected no findings, got %v", findings)
	}
}

func TestValidateFindings(t *testing.T) {
	tests := []struct {
		name        string
		transformed []TransformedCue
		wantKind    FindingKind
		wantCueID   string
	}{
		{
			name: "missing id",
			transformed: []TransformedCue{
				{ID: "1", Text: "ok ⟦0⟧x⟦1⟧"},
			},
			wantKind:  FindingMissingID,
			wantCueID: "2",
		},
		{
			name: "unknown id",
			transformed: []TransformedCue{
				{ID: "1", Text: "ok ⟦0⟧x⟦1⟧"},
				{ID: "2", Text: "ok"},
				{ID: "99", Text: "who is this"},
			},
			wantKind:  FindingUnknownID,
			wantCueID: "99",
		},
		{
			name: "duplicate id",
			transformed: []TransformedCue{
				{ID: "1", Text: "ok ⟦0⟧x⟦1⟧"},
				{ID: "1", Text: "again"},
				{ID: "2", Text: "ok"},
			},
			wantKind:  FindingDuplicateID,
			wantCueID: "1",
		},
		{
			name: "dropped token",
			transformed: []TransformedCue{
				{ID: "1", Text: "tags went missing"},
				{ID: "2", Text: "ok"},
			},
			wantKind:  FindingPlaceholderMismatch,
			wantCueID: "1",
		},
		{
			name: "repeated token",
			transformed: []TransformedCue{
				{ID: "1", Text: "⟦0⟧⟦0⟧twice⟦1⟧"},
				{ID: "2", Text: "ok"},
			},
			wantKind:  FindingPlaceholderMismatch,
			wantCueID: "1",
		},
		{
			name: "alien token",
			transformed: []TransformedCue{
				{ID: "1", Text: "⟦0⟧x⟦1⟧"},
				{ID: "2", Text: "stray ⟦7⟧ token"},
			},
			wantKind:  FindingUnresolvedToken,
			wantCueID: "2",
		},
	}

	cues := validateFixture(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := Validate(cues, tt.transformed)
			f := findKind(findings, tt.wantKind)
			if f == nil {
				t.Fatalf("expected a %s finding, got %v", tt.wantKind, findings)
			}
			if f.CueID != tt.wantCueID {
				t.Errorf("cue id: got %q, want %q", f.CueID, tt.wantCueID)
			}
		})
	}
}

func TestValidateFindingsAreNonFatal(t *testing.T) {
	cues := validateFixture(t)
	transformed := []TransformedCue{
		{ID: "1", Text: "tags went missing"},
	}
	findings := Validate(cues, transformed)
	if len(findings) == 0 {
		t.Fatal("expected findings")
	}
	// reconstruction still succeeds on the same inputs
	doc, err := parseSRT("1\n00:00:01,000 --> 00:00:04,000\nHello, <i>world</i>!\n\n2\n00:00:05,000 --> 00:00:06,000\nPlain text.\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	out := doc.Reconstruct(transformed)
	if out == "" {
		t.Error("reconstruction must proceed despite findings")
	}
}
