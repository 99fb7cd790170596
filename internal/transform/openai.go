package transform

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Transformer using OpenAI Chat Completions
type OpenAITransformer struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAITransformer(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITransformer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "gpt-5-mini"
	}

	return &OpenAITransformer{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *OpenAITransformer) Transform(
	ctx context.Context,
	req Request,
) (*Response, error) {
	if len(req.Items) == 0 {
		return &Response{}, nil
	}

	prompt := BuildPrompt(req.Instructions, req.Items)

	completion, err := t.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model: t.model,
		},
	)
	if err != nil {
		return nil, t.wrapError(err)
	}

	return t.parseResponse(completion)
}

func (t *OpenAITransformer) parseResponse(
	completion *openai.ChatCompletion,
) (*Response, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return nil, &ContentError{Reason: "empty response from OpenAI"}
	}

	choice := completion.Choices[0]
	if choice.FinishReason == "length" {
		return nil, &ContentError{
			Reason: "response truncated at the output token limit",
		}
	}

	responseText := choice.Message.Content
	if responseText == "" {
		return nil, &ContentError{Reason: "no text in OpenAI response"}
	}

	responseText = cleanJSONResponse(responseText)

	items, err := extractItems(responseText)
	if err != nil {
		return nil, &ContentError{
			Reason:  err.Error(),
			Preview: truncateString(responseText, 200),
		}
	}

	return &Response{
		Items: items,
		Usage: Usage{
			InputTokens:  completion.Usage.PromptTokens,
			OutputTokens: completion.Usage.CompletionTokens,
			Requests:     1,
		},
	}, nil
}

func (t *OpenAITransformer) wrapError(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return &ProviderError{
			Provider:   ProviderOpenAI,
			Kind:       statusKind(apierr.StatusCode, apierr.Error()),
			StatusCode: apierr.StatusCode,
			RetryAfter: retryAfterHeader(apierr.Response),
			Err:        err,
		}
	}
	return classifyTransport(ProviderOpenAI, err)
}
