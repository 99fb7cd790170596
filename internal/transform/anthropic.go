package transform

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// implements Transformer using Anthropic Claude
type AnthropicTransformer struct {
	client  anthropic.Client
	model   anthropic.Model
	options Options
}

func NewAnthropicTransformer(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*AnthropicTransformer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.ModelClaudeHaiku4_5
	}

	return &AnthropicTransformer{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *AnthropicTransformer) Transform(
	ctx context.Context,
	req Request,
) (*Response, error) {
	if len(req.Items) == 0 {
		return &Response{}, nil
	}

	prompt := BuildPrompt(req.Instructions, req.Items)

	message, err := t.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:     t.model,
			MaxTokens: 4096,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(prompt),
				),
			},
		},
	)
	if err != nil {
		return nil, t.wrapError(err)
	}

	return t.parseResponse(message)
}

func (t *AnthropicTransformer) parseResponse(
	message *anthropic.Message,
) (*Response, error) {
	if message == nil || len(message.Content) == 0 {
		return nil, &ContentError{Reason: "empty response from Anthropic"}
	}

	if message.StopReason == "max_tokens" {
		return nil, &ContentError{
			Reason: "response truncated at the output token limit",
		}
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	if responseText == "" {
		return nil, &ContentError{Reason: "no text in Anthropic response"}
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
			InputTokens:  message.Usage.InputTokens,
			OutputTokens: message.Usage.OutputTokens,
			Requests:     1,
		},
	}, nil
}

func (t *AnthropicTransformer) wrapError(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return &ProviderError{
			Provider:   ProviderAnthropic,
			Kind:       statusKind(apierr.StatusCode, apierr.Error()),
			StatusCode: apierr.StatusCode,
			RetryAfter: retryAfterHeader(apierr.Response),
			Err:        err,
		}
	}
	return classifyTransport(ProviderAnthropic, err)
}
