package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// single cue skeleton sent to the transform provider
type Item struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// transformed cue skeleton returned by the provider
type ResultItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// one batch request: shared instructions plus the cue skeletons
type Request struct {
	Instructions string
	Items        []Item
}

// Usage accumulates provider token accounting across requests.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	Requests     int
}

// Response carries one batch worth of transformed cues.
type Response struct {
	Items []ResultItem
	Usage Usage
}

// Transformer performs a single transform call. Batching and
// concurrency live in the Runner, not in implementations.
type Transformer interface {
	Transform(ctx context.Context, req Request) (*Response, error)
}

// transform service provider
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
)

type Options struct {
	Model string
}

// creates Transformer based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transformer, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAITransformer(ctx, apiKey, opts)
	case ProviderGemini:
		return NewGeminiTransformer(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicTransformer(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported transform provider: %s", provider)
	}
}

// TranslationInstructions builds the instruction block for a
// translation run.
func TranslationInstructions(inputLanguage, targetLanguage, extra string) string {
	var sb strings.Builder

	if inputLanguage != "" {
		fmt.Fprintf(&sb,
			"Translate the following %s subtitle cues to %s.",
			inputLanguage, targetLanguage,
		)
	} else {
		fmt.Fprintf(&sb,
			"Translate the following subtitle cues to %s.",
			targetLanguage,
		)
	}

	if extra != "" {
		sb.WriteString("\n")
		sb.WriteString(extra)
	}

	return sb.String()
}

// CorrectionInstructions builds the instruction block for a
// transcript cleanup run in the given language.
func CorrectionInstructions(language, extra string) string {
	var sb strings.Builder

	sb.WriteString("Correct transcription mistakes, punctuation, and casing in the following subtitle cues. Keep the original wording wherever it is already correct.")
	if language != "" {
		fmt.Fprintf(&sb, " The cues are in %s.", language)
	}

	if extra != "" {
		sb.WriteString("\n")
		sb.WriteString(extra)
	}

	return sb.String()
}

// BuildPrompt creates the transform prompt for LLM providers
func BuildPrompt(instructions string, items []Item) string {
	var sb strings.Builder

	if instructions != "" {
		sb.WriteString(instructions)
		sb.WriteString("\n\n")
	}

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Transform ONLY the text content of each cue.\n")
	sb.WriteString(
		"2. Placeholder tokens like ⟦0⟧ and ⟦1⟧ stand for markup: every placeholder in a cue must appear unchanged in its output text.\n",
	)
	sb.WriteString("3. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("4. Each object must have 'id' and 'text' fields.\n")
	sb.WriteString("5. The 'id' values must match the input ids exactly.\n")
	sb.WriteString("6. Do not add, remove, or reorder cues.\n")
	sb.WriteString("7. Do not add any explanation or markdown formatting.\n\n")

	sb.WriteString("Input JSON:\n")

	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)

	sb.WriteString("\n\nOutput the transformed JSON array only:")

	return sb.String()
}
