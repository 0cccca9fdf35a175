// Package openai implements the completion.Client interface using the
// OpenAI Chat Completions API. Responses are requested in JSON object mode
// so stage parsers receive a single JSON document.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/triagemesh/triagemesh/completion"
)

// Options configure the OpenAI collaborator adapter. Fields mirror a small
// subset of Chat Completion parameters; extend via functional options
// without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Client wraps the OpenAI Chat Completions API behind completion.Client.
type Client struct {
	client *openai.Client
	opts   Options
}

var _ completion.Client = (*Client)(nil)

// New creates a Client using the official SDK's default configuration
// (API key from the environment).
func New(optFns ...func(o *Options)) *Client {
	client := openai.NewClient()
	return NewFromSDK(&client, optFns...)
}

// NewFromSDK creates a Client from an existing SDK client.
func NewFromSDK(client *openai.Client, optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.3,
		MaxCompletionTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{client: client, opts: opts}
}

// Complete implements completion.Client.
func (c *Client) Complete(ctx context.Context, req completion.Request) (*completion.Result, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemWithHint()),
			openai.UserMessage(req.User),
		},
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxCompletionTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai api error: no choices returned")
	}

	return &completion.Result{
		JSON:  []byte(resp.Choices[0].Message.Content),
		Units: int(resp.Usage.TotalTokens),
	}, nil
}

// Info implements completion.Client.
func (c *Client) Info() completion.Info {
	return completion.Info{Provider: "openai", Model: c.opts.Model}
}
