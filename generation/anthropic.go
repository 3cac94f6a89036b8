package generation

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicOptions configure the Anthropic generation adapter.
type AnthropicOptions struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// AnthropicClient implements Client on the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	opts   AnthropicOptions
}

// NewAnthropicClient creates a client using the official SDK client.
func NewAnthropicClient(optFns ...func(o *AnthropicOptions)) *AnthropicClient {
	opts := AnthropicOptions{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &AnthropicClient{client: &client, opts: opts}
}

// NewAnthropicClientFromClient creates a client from an existing SDK client.
func NewAnthropicClientFromClient(client *anthropic.Client, optFns ...func(o *AnthropicOptions)) *AnthropicClient {
	opts := AnthropicOptions{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &AnthropicClient{client: client, opts: opts}
}

// Generate implements Client with the same outcome decoding as the OpenAI
// adapter.
func (c *AnthropicClient) Generate(ctx context.Context, req Request) Response {
	params := anthropic.MessageNewParams{
		Model:       c.opts.Model,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: anthropic.Float(c.opts.Temperature),
		System:      []anthropic.TextBlockParam{{Text: req.Instruction}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userContent(req))),
		},
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return failure(OutcomeServiceError, apiErr.StatusCode, err)
		}
		return failure(OutcomeTransportFailure, 0, err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.AsText().Text
		}
	}
	if text == "" {
		return failure(OutcomeMalformed, 0, errors.New("message has no text content"))
	}

	return Response{Text: text, Outcome: OutcomeSuccess}
}
