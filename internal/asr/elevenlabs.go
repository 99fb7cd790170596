package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const elevenLabsSTTEndpoint = "https://api.elevenlabs.io/v1/speech-to-text"

// implements Transcriber using the ElevenLabs speech to text API.
// ElevenLabs publishes no Go SDK, so this is a plain HTTP client.
type ElevenLabsTranscriber struct {
	apiKey  string
	model   string
	options Options
	client  *http.Client
}

// word, spacing or audio event entry from the scribe response
type elevenLabsWord struct {
	Text    string  `json:"text"`
	Type    string  `json:"type"` // "word", "spacing" or "audio_event"
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker_id"`
	Logprob float64 `json:"logprob"`
}

type elevenLabsResponse struct {
	LanguageCode        string           `json:"language_code"`
	LanguageProbability float64          `json:"language_probability"`
	Text                string           `json:"text"`
	Words               []elevenLabsWord `json:"words"`
}

func NewElevenLabsTranscriber(apiKey string, opts Options) (*ElevenLabsTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := opts.Model
	if model == "" {
		model = "scribe_v1"
	}

	return &ElevenLabsTranscriber{
		apiKey:  apiKey,
		model:   model,
		options: opts,
		client:  &http.Client{},
	}, nil
}

// transcribes single audio file
func (t *ElevenLabsTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}

	w.WriteField("model_id", t.model)
	if t.options.Language != "" {
		w.WriteField("language_code", t.options.Language)
	}
	w.WriteField("timestamps_granularity", "word")
	if t.options.Diarize {
		w.WriteField("diarize", "true")
	}
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, elevenLabsSTTEndpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("xi-api-key", t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs API error (status %d): %s",
			resp.StatusCode, previewString(string(body), 200))
	}

	var decoded elevenLabsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return convertElevenLabsResponse(&decoded), nil
}

// convertElevenLabsResponse keeps word entries, drops spacing and audio
// events, and carries the per word speaker labels through for the
// segmentation engine.
func convertElevenLabsResponse(resp *elevenLabsResponse) *Result {
	result := &Result{
		Text:     strings.TrimSpace(resp.Text),
		Language: resp.LanguageCode,
	}
	for _, w := range resp.Words {
		if w.Type != "word" {
			continue
		}
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		confidence := math.Exp(w.Logprob)
		if confidence > 1 {
			confidence = 1
		}
		tok := Token{
			Text:       text,
			Start:      secondsToDuration(w.Start),
			End:        secondsToDuration(w.End),
			Confidence: confidence,
			Speaker:    w.Speaker,
		}
		result.Tokens = append(result.Tokens, tok)
		if tok.End > result.Duration {
			result.Duration = tok.End
		}
	}
	return result
}
