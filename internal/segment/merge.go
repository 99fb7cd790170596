package segment

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cuesmith/cuesmith/internal/subtitle"
)

// mergeFalseSplits repeatedly merges adjacent cues until a fixed
// point. Termination holds because every pass either reduces the cue
// count or changes nothing.
func (e *Engine) mergeFalseSplits(drafts []draft) []draft {
	for {
		merged, changed := e.mergePass(drafts)
		if !changed {
			return merged
		}
		drafts = merged
	}
}

func (e *Engine) mergePass(drafts []draft) ([]draft, bool) {
	if len(drafts) < 2 {
		return drafts, false
	}
	out := make([]draft, 0, len(drafts))
	changed := false
	i := 0
	for i < len(drafts) {
		cur := drafts[i]
		for i+1 < len(drafts) && e.canMerge(cur, drafts[i+1]) {
			cur = mergeDrafts(cur, drafts[i+1])
			i++
			changed = true
		}
		out = append(out, cur)
		i++
	}
	return out, changed
}

// canMerge allows a merge when the gap is near zero, the earlier cue
// does not finish a sentence, and the merged cue still fits the
// display limits. Token sourced cues get a looser gap to recover from
// diarization jitter.
func (e *Engine) canMerge(a, b draft) bool {
	maxGap := e.opts.MergeGapToken
	if a.source == fromUtterance && b.source == fromUtterance {
		maxGap = e.opts.MergeGapUtterance
	}
	if b.start-a.end > maxGap {
		return false
	}
	if endsWithSentenceFinal(a.text) {
		return false
	}
	merged := joinWords(a.text, b.text)
	if utf8.RuneCountInString(merged) > e.charLimit(merged) {
		return false
	}
	return b.end-a.start <= e.opts.MaxDuration
}

func mergeDrafts(a, b draft) draft {
	a.text = joinWords(a.text, b.text)
	a.end = b.end
	if a.speaker == "" {
		a.speaker = b.speaker
	}
	if a.source != b.source {
		a.source = fromTokenStream
	}
	return a
}

// fixLeadingPunct moves a punctuation run that starts a cue onto the
// end of the previous surviving cue. Cues emptied by the move are
// dropped.
func fixLeadingPunct(drafts []draft) []draft {
	last := -1
	for i := range drafts {
		text := strings.TrimSpace(drafts[i].text)
		if last >= 0 {
			if run, rest := splitLeadingPunct(text); run != "" {
				drafts[last].text += run
				text = strings.TrimSpace(rest)
			}
		}
		drafts[i].text = text
		if text != "" {
			last = i
		}
	}

	out := make([]draft, 0, len(drafts))
	for _, d := range drafts {
		if d.text != "" {
			out = append(out, d)
		}
	}
	return out
}

// finishCues tidies each draft's text and assigns sequential ids.
func finishCues(drafts []draft) []subtitle.Cue {
	cues := make([]subtitle.Cue, 0, len(drafts))
	for _, d := range drafts {
		text := strings.TrimSpace(collapseSpacing(d.text))
		if text == "" {
			continue
		}
		idx := len(cues) + 1
		cues = append(cues, subtitle.Cue{
			ID:       strconv.Itoa(idx),
			Index:    idx,
			Start:    d.start,
			End:      d.end,
			Text:     text,
			Skeleton: text,
			Speaker:  d.speaker,
		})
	}
	return cues
}
