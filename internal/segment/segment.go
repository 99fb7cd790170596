// Package segment converts timed transcription output into subtitle
// cues that respect display length, duration, pause, and speaker
// boundaries.
package segment

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cuesmith/cuesmith/internal/asr"
	"github.com/cuesmith/cuesmith/internal/subtitle"
)

// Options controls cue construction. Zero fields fall back to the
// defaults, so a partially filled literal stays usable.
type Options struct {
	MaxChars          int           // rune cap per cue for non CJK text
	MaxCharsCJK       int           // tighter cap once the text contains CJK glyphs
	MaxDuration       time.Duration // hard cue duration ceiling
	PauseGap          time.Duration // silence between tokens that closes a cue
	MergeGapUtterance time.Duration // max gap when merging utterance sourced cues
	MergeGapToken     time.Duration // max gap when merging token sourced cues
}

func DefaultOptions() Options {
	return Options{
		MaxChars:          84,
		MaxCharsCJK:       42,
		MaxDuration:       8 * time.Second,
		PauseGap:          800 * time.Millisecond,
		MergeGapUtterance: 150 * time.Millisecond,
		MergeGapToken:     800 * time.Millisecond,
	}
}

// Engine segments transcriptions into cues. It is a pure computation
// over in-memory data and is safe for concurrent use.
type Engine struct {
	opts Options
}

func New(opts Options) *Engine {
	def := DefaultOptions()
	if opts.MaxChars <= 0 {
		opts.MaxChars = def.MaxChars
	}
	if opts.MaxCharsCJK <= 0 {
		opts.MaxCharsCJK = def.MaxCharsCJK
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = def.MaxDuration
	}
	if opts.PauseGap <= 0 {
		opts.PauseGap = def.PauseGap
	}
	if opts.MergeGapUtterance <= 0 {
		opts.MergeGapUtterance = def.MergeGapUtterance
	}
	if opts.MergeGapToken <= 0 {
		opts.MergeGapToken = def.MergeGapToken
	}
	return &Engine{opts: opts}
}

type draftSource int

const (
	fromTokenStream draftSource = iota
	fromUtterance
)

// draft is a cue under construction, before the merge and cleanup
// passes assign final ids.
type draft struct {
	text    string
	start   time.Duration
	end     time.Duration
	speaker string
	source  draftSource
}

// Cues segments a transcription into subtitle cues. Utterance timing is
// preferred when the provider supplied it; word tokens are the fallback
// for utterances that break the display limits.
func (e *Engine) Cues(res *asr.Result) []subtitle.Cue {
	if res == nil {
		return nil
	}
	var drafts []draft
	if len(res.Utterances) > 0 {
		drafts = e.fromUtterances(res.Utterances)
	} else {
		drafts = e.fromTokens(res.Tokens)
	}
	drafts = e.mergeFalseSplits(drafts)
	drafts = fixLeadingPunct(drafts)
	return finishCues(drafts)
}

func (e *Engine) fromUtterances(utterances []asr.Utterance) []draft {
	var drafts []draft
	for _, utt := range utterances {
		text := strings.TrimSpace(utt.Text)
		if text == "" {
			continue
		}
		if e.fits(text, utt.End-utt.Start) {
			drafts = append(drafts, draft{
				text:    text,
				start:   utt.Start,
				end:     utt.End,
				speaker: utt.Speaker,
				source:  fromUtterance,
			})
			continue
		}
		tokens := utt.Tokens
		if len(tokens) == 0 {
			tokens = estimateTokens(utt)
		}
		drafts = append(drafts, e.fromTokens(tokens)...)
	}
	return drafts
}

// fromTokens accumulates tokens greedily into cues, closing on sentence
// boundaries, pauses, speaker changes, and the display limits. A cue
// forced closed by a limit is split back at the nearest clause break so
// the cut lands on natural phrasing instead of the hard limit.
func (e *Engine) fromTokens(tokens []asr.Token) []draft {
	tokens = normalizeTokens(tokens)

	var drafts []draft
	var cur []asr.Token
	var curText string

	closeCur := func() {
		if len(cur) == 0 {
			return
		}
		drafts = append(drafts, draft{
			text:    curText,
			start:   cur[0].Start,
			end:     cur[len(cur)-1].End,
			speaker: cur[0].Speaker,
			source:  fromTokenStream,
		})
		cur = nil
		curText = ""
	}

	for i, tok := range tokens {
		if len(cur) > 0 && differentSpeaker(cur[0], tok) {
			closeCur()
		}
		for len(cur) > 0 && e.exceeds(curText, cur[0].Start, tok) {
			head, rest := splitAtClauseBreak(cur)
			cur = head
			curText = buildText(head)
			closeCur()
			cur = rest
			curText = buildText(rest)
		}
		cur = append(cur, tok)
		curText = joinWords(curText, tok.Text)

		closeNow := endsWithSentenceFinal(tok.Text)
		if !closeNow && i+1 < len(tokens) {
			next := tokens[i+1]
			if next.Start-tok.End > e.opts.PauseGap || differentSpeaker(tok, next) {
				closeNow = true
			}
		}
		if closeNow {
			closeCur()
		}
	}
	closeCur()
	return drafts
}

// normalizeTokens repairs tokenization artifacts before emission: it
// trims whitespace, drops tokens left empty, attaches purely
// punctuation tokens to the previous token (extending its end time),
// and moves a leading punctuation run back onto the previous token
// without touching timing.
func normalizeTokens(tokens []asr.Token) []asr.Token {
	out := make([]asr.Token, 0, len(tokens))
	for _, tok := range tokens {
		tok.Text = strings.TrimSpace(tok.Text)
		if tok.Text == "" {
			continue
		}
		if len(out) > 0 {
			prev := &out[len(out)-1]
			if isPurePunct(tok.Text) {
				prev.Text += tok.Text
				if tok.End > prev.End {
					prev.End = tok.End
				}
				continue
			}
			if run, rest := splitLeadingPunct(tok.Text); run != "" && rest != "" {
				prev.Text += run
				tok.Text = rest
			}
		}
		out = append(out, tok)
	}
	return out
}

// estimateTokens synthesizes word timing for an utterance delivered
// without tokens, spreading the duration across words in proportion to
// their length. CJK text splits per glyph since it carries no spaces.
func estimateTokens(utt asr.Utterance) []asr.Token {
	text := strings.TrimSpace(utt.Text)
	var words []string
	if containsCJK(text) {
		words = splitGlyphs(text)
	} else {
		words = strings.Fields(text)
	}
	if len(words) == 0 {
		return nil
	}

	totalRunes := 0
	for _, w := range words {
		totalRunes += utf8.RuneCountInString(w)
	}
	total := utt.End - utt.Start

	toks := make([]asr.Token, len(words))
	cur := utt.Start
	for i, w := range words {
		end := cur + time.Duration(float64(total)*float64(utf8.RuneCountInString(w))/float64(totalRunes))
		if i == len(words)-1 {
			end = utt.End
		}
		toks[i] = asr.Token{Text: w, Start: cur, End: end, Speaker: utt.Speaker}
		cur = end
	}
	return toks
}

// splitAtClauseBreak searches backward for the last token ending in a
// clause break and cuts after it. Without one the whole accumulation is
// returned as the head, a blind cutoff at the hard limit.
func splitAtClauseBreak(tokens []asr.Token) (head, rest []asr.Token) {
	for i := len(tokens) - 1; i >= 0; i-- {
		if endsWithClauseBreak(tokens[i].Text) {
			return tokens[:i+1], tokens[i+1:]
		}
	}
	return tokens, nil
}

func (e *Engine) exceeds(curText string, start time.Duration, tok asr.Token) bool {
	candidate := joinWords(curText, tok.Text)
	if utf8.RuneCountInString(candidate) > e.charLimit(candidate) {
		return true
	}
	return tok.End-start > e.opts.MaxDuration
}

func (e *Engine) fits(text string, duration time.Duration) bool {
	if utf8.RuneCountInString(text) > e.charLimit(text) {
		return false
	}
	return duration <= e.opts.MaxDuration
}

// charLimit picks the rune cap for a cue from its dominant script.
func (e *Engine) charLimit(text string) int {
	if containsCJK(text) {
		return e.opts.MaxCharsCJK
	}
	return e.opts.MaxChars
}

func differentSpeaker(a, b asr.Token) bool {
	return a.Speaker != "" && b.Speaker != "" && a.Speaker != b.Speaker
}

func buildText(tokens []asr.Token) string {
	var text string
	for _, tok := range tokens {
		text = joinWords(text, tok.Text)
	}
	return text
}
