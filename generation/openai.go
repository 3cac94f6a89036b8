package generation

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
)

// OpenAIOptions configure the OpenAI generation adapter. Fields mirror a
// minimal subset of Chat Completion parameters.
type OpenAIOptions struct {
	Model               openai.ChatModel
	Temperature         float64
	MaxCompletionTokens int64
}

// OpenAIClient implements Client on the OpenAI Chat Completions API.
type OpenAIClient struct {
	client *openai.Client
	opts   OpenAIOptions
}

// NewOpenAIClient creates a client using the default OpenAI SDK client
// (API key from the environment).
func NewOpenAIClient(optFns ...func(o *OpenAIOptions)) *OpenAIClient {
	client := openai.NewClient()
	return NewOpenAIClientFromClient(&client, optFns...)
}

// NewOpenAIClientFromClient creates a client from an existing SDK client.
func NewOpenAIClientFromClient(client *openai.Client, optFns ...func(o *OpenAIOptions)) *OpenAIClient {
	opts := OpenAIOptions{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &OpenAIClient{client: client, opts: opts}
}

// Generate implements Client. Errors from the SDK are decoded into the
// tagged outcome: API errors carry the upstream status, anything else is a
// transport failure, and a 2xx body without text is malformed.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) Response {
	params := openai.ChatCompletionNewParams{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.Instruction),
			openai.UserMessage(userContent(req)),
		},
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxCompletionTokens),
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return failure(OutcomeServiceError, apiErr.StatusCode, err)
		}
		return failure(OutcomeTransportFailure, 0, err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return failure(OutcomeMalformed, 0, errors.New("completion has no text content"))
	}

	return Response{Text: completion.Choices[0].Message.Content, Outcome: OutcomeSuccess}
}
