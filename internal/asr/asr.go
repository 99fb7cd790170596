package asr

import (
	"context"
	"fmt"
	"time"
)

// Token is one recognized word with timing as a provider delivered it.
// Confidence and Speaker stay zero valued when the provider has no
// notion of them.
type Token struct {
	Text       string
	Start      time.Duration
	End        time.Duration
	Confidence float64
	Speaker    string
}

// Utterance is a provider supplied grouping of tokens, usually a
// sentence or one speaker turn.
type Utterance struct {
	Text    string
	Start   time.Duration
	End     time.Duration
	Speaker string
	Tokens  []Token
}

// full transcription result
type Result struct {
	Text       string
	Language   string
	Duration   time.Duration
	Tokens     []Token
	Utterances []Utterance
}

// interface for audio transcription
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

// transcription service provider
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderGemini     Provider = "gemini"
	ProviderElevenLabs Provider = "elevenlabs"
)

// transcription options
type Options struct {
	Language string // source language of the audio
	Model    string
	Prompt   string
	Diarize  bool // request speaker labels where the provider supports it
}

// creates transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	case ProviderElevenLabs:
		return NewElevenLabsTranscriber(apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
