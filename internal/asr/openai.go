package asr

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Transcriber interface using the OpenAI Audio API
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

// word from the Whisper verbose_json response
type whisperWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// segment from the Whisper verbose_json response
type whisperSegment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	AvgLogprob float64 `json:"avg_logprob"`
}

// verbose_json response structure from Whisper
type whisperVerboseResponse struct {
	Text     string           `json:"text"`
	Words    []whisperWord    `json:"words"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

func NewOpenAITranscriber(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// transcribes single audio file
func (t *OpenAITranscriber) Transcribe(
	ctx context.Context,
	audioPath string,
) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"word", "segment"},
	}

	if t.options.Language != "" {
		params.Language = openai.String(t.options.Language)
	}

	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	result, err := parseWhisperResponse(resp.RawJSON())
	if err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	if result.Language == "" {
		result.Language = t.options.Language
	}
	return result, nil
}

// parseWhisperResponse converts a verbose_json payload into tokens and
// utterances. Words belong to the segment covering their midpoint, and
// inherit the segment's average log probability as a confidence.
func parseWhisperResponse(rawJSON string) (*Result, error) {
	if rawJSON == "" {
		return nil, fmt.Errorf("empty response")
	}

	var verbose whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &verbose); err != nil {
		return nil, err
	}

	result := &Result{
		Text:     strings.TrimSpace(verbose.Text),
		Language: verbose.Language,
		Duration: secondsToDuration(verbose.Duration),
	}
	if result.Text == "" && len(verbose.Segments) == 0 && len(verbose.Words) == 0 {
		return nil, fmt.Errorf("no text, words or segments in response")
	}

	for _, w := range verbose.Words {
		text := strings.TrimSpace(w.Word)
		if text == "" {
			continue
		}
		result.Tokens = append(result.Tokens, Token{
			Text:  text,
			Start: secondsToDuration(w.Start),
			End:   secondsToDuration(w.End),
		})
	}

	ti := 0
	for _, seg := range verbose.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		utt := Utterance{
			Text:  text,
			Start: secondsToDuration(seg.Start),
			End:   secondsToDuration(seg.End),
		}
		confidence := math.Exp(seg.AvgLogprob)
		if confidence > 1 {
			confidence = 1
		}
		first := ti
		for ti < len(result.Tokens) {
			tok := result.Tokens[ti]
			mid := tok.Start + (tok.End-tok.Start)/2
			if mid >= utt.End {
				break
			}
			result.Tokens[ti].Confidence = confidence
			ti++
		}
		utt.Tokens = result.Tokens[first:ti]
		result.Utterances = append(result.Utterances, utt)
	}

	// a response with text but no segments still yields one utterance
	if len(result.Utterances) == 0 && result.Text != "" {
		result.Utterances = []Utterance{{
			Text:   result.Text,
			Start:  0,
			End:    result.Duration,
			Tokens: result.Tokens,
		}}
	}

	return result, nil
}

// secondsToDuration converts provider float seconds to a duration
// rounded to whole milliseconds.
func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds*1000)) * time.Millisecond
}
