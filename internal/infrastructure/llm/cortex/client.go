// Package cortex talks to an OpenAI-compatible chat-completions
// endpoint. The processing pipeline uses the non-streaming mode; the
// streaming mode serves the inference HTTP path only.
package cortex

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/linkstash/internal/core/ports"
	"github.com/kirillkom/linkstash/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	Timeout            time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, apiKey, model string) *Client {
	return NewWithOptions(baseURL, apiKey, model, Options{})
}

func NewWithOptions(baseURL, apiKey, model string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
	Temperature         float64       `json:"temperature"`
	Stream              bool          `json:"stream,omitempty"`
}

// Complete blocks for the full round trip and returns the assistant
// message text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, opts ports.CompletionOptions) (string, error) {
	request := c.buildRequest(systemPrompt, userPrompt, opts, false)

	var text string
	call := func(callCtx context.Context) error {
		out, err := c.postCompletion(callCtx, request)
		if err != nil {
			return err
		}
		text = out
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "cortex.complete", call, classifyCortexError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("llm complete", err)
	}
	return strings.TrimSpace(text), nil
}

// CompleteStream delivers delta chunks through onChunk as they arrive.
// Streaming calls are not retried: a partial stream may already have
// reached the consumer.
func (c *Client) CompleteStream(
	ctx context.Context,
	systemPrompt, userPrompt string,
	opts ports.CompletionOptions,
	onChunk func(string) error,
) error {
	request := c.buildRequest(systemPrompt, userPrompt, opts, true)
	if err := c.streamCompletion(ctx, request, onChunk); err != nil {
		return wrapTemporaryIfNeeded("llm complete stream", err)
	}
	return nil
}

func (c *Client) buildRequest(systemPrompt, userPrompt string, opts ports.CompletionOptions, stream bool) chatRequest {
	return chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxCompletionTokens: opts.MaxTokens,
		Temperature:         opts.Temperature,
		Stream:              stream,
	}
}
