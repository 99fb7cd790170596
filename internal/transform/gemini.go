package transform

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// implements Transformer using Google Gemini
type GeminiTransformer struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiTransformer(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiTransformer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiTransformer{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *GeminiTransformer) Transform(
	ctx context.Context,
	req Request,
) (*Response, error) {
	if len(req.Items) == 0 {
		return &Response{}, nil
	}

	prompt := BuildPrompt(req.Instructions, req.Items)

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, t.wrapError(err)
	}

	return t.parseResponse(result)
}

func (t *GeminiTransformer) parseResponse(
	result *genai.GenerateContentResponse,
) (*Response, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, &ContentError{Reason: "empty response from Gemini"}
	}

	if result.Candidates[0].FinishReason == "MAX_TOKENS" {
		return nil, &ContentError{
			Reason: "response truncated at the output token limit",
		}
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				responseText += part.Text
			}
		}
		if responseText != "" {
			break
		}
	}

	if responseText == "" {
		return nil, &ContentError{Reason: "no text in Gemini response"}
	}

	responseText = cleanJSONResponse(responseText)

	items, err := extractItems(responseText)
	if err != nil {
		return nil, &ContentError{
			Reason:  err.Error(),
			Preview: truncateString(responseText, 200),
		}
	}

	resp := &Response{Items: items, Usage: Usage{Requests: 1}}
	if result.UsageMetadata != nil {
		resp.Usage.InputTokens = int64(result.UsageMetadata.PromptTokenCount)
		resp.Usage.OutputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
	}
	return resp, nil
}

func (t *GeminiTransformer) wrapError(err error) error {
	var apierr genai.APIError
	if errors.As(err, &apierr) {
		return &ProviderError{
			Provider:   ProviderGemini,
			Kind:       statusKind(apierr.Code, apierr.Message),
			StatusCode: apierr.Code,
			Err:        err,
		}
	}
	return classifyTransport(ProviderGemini, err)
}
