package subtitle

import (
	"fmt"
)

// FindingKind labels one class of validation problem.
type FindingKind string

const (
	FindingMissingID           FindingKind = "missing-id"
	FindingUnknownID           FindingKind = "unknown-id"
	FindingDuplicateID         FindingKind = "duplicate-id"
	FindingPlaceholderMismatch FindingKind = "placeholder-mismatch"
	FindingUnresolvedToken     FindingKind = "unresolved-token"
)

// Finding is one validation problem tied to a cue id. Findings are
// warnings, not errors: reconstruction proceeds best effort and cues
// with problems fall back to their original text where needed.
type Finding struct {
	Kind   FindingKind
	CueID  string
	Detail string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s cue %s: %s", f.Kind, f.CueID, f.Detail)
}

// Validate cross checks a transformed cue set against its source set:
// id coverage in both directions, duplicate ids, and per cue placeholder
// token conservation.
func Validate(src []Cue, transformed []TransformedCue) []Finding {
	var findings []Finding

	srcIDs := make(map[string]bool, len(src))
	for _, cue := range src {
		srcIDs[cue.ID] = true
	}

	seen := make(map[string]bool, len(transformed))
	textByID := make(map[string]string, len(transformed))
	for _, t := range transformed {
		if seen[t.ID] {
			findings = append(findings, Finding{
				Kind:   FindingDuplicateID,
				CueID:  t.ID,
				Detail: "id returned more than once",
			})
			continue
		}
		seen[t.ID] = true
		if !srcIDs[t.ID] {
			findings = append(findings, Finding{
				Kind:   FindingUnknownID,
				CueID:  t.ID,
				Detail: "id does not exist in the source cue set",
			})
			continue
		}
		textByID[t.ID] = t.Text
	}

	for _, cue := range src {
		text, ok := textByID[cue.ID]
		if !ok {
			findings = append(findings, Finding{
				Kind:   FindingMissingID,
				CueID:  cue.ID,
				Detail: "no transformed text returned; original text kept",
			})
			continue
		}
		findings = append(findings, placeholderFindings(cue, text)...)
	}

	return findings
}

// placeholderFindings compares the placeholder tokens in text against
// the cue's placeholder set as multisets.
func placeholderFindings(cue Cue, text string) []Finding {
	want := make(map[string]int, len(cue.Placeholders))
	for _, ph := range cue.Placeholders {
		want[ph.Token]++
	}
	got := make(map[string]int)
	for _, token := range tokenRe.FindAllString(text, -1) {
		got[token]++
	}

	var findings []Finding
	reported := make(map[string]bool)
	for _, ph := range cue.Placeholders {
		if reported[ph.Token] {
			continue
		}
		reported[ph.Token] = true
		switch {
		case got[ph.Token] < want[ph.Token]:
			findings = append(findings, Finding{
				Kind:   FindingPlaceholderMismatch,
				CueID:  cue.ID,
				Detail: fmt.Sprintf("token %s missing from transformed text", ph.Token),
			})
		case got[ph.Token] > want[ph.Token]:
			findings = append(findings, Finding{
				Kind:   FindingPlaceholderMismatch,
				CueID:  cue.ID,
				Detail: fmt.Sprintf("token %s appears %d times, expected %d", ph.Token, got[ph.Token], want[ph.Token]),
			})
		}
	}
	for _, token := range tokenRe.FindAllString(text, -1) {
		if want[token] == 0 && !reported[token] {
			reported[token] = true
			findings = append(findings, Finding{
				Kind:   FindingUnresolvedToken,
				CueID:  cue.ID,
				Detail: fmt.Sprintf("token %s does not belong to this cue and will stay unresolved", token),
			})
		}
	}
	return findings
}
