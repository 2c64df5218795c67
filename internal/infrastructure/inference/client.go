package inference

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/Muhanzhang10/service-call-recording-analysis/internal/infrastructure/metrics"
)

// completionAPI is the slice of the OpenAI client the wrapper uses.
// Abstracted so tests can inject failure doubles.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client is the structured-answer generator: prompt in, model answer out,
// with retry/backoff applied to transient failures.
type Client struct {
	api         completionAPI
	model       string
	temperature float32
	retry       RetryPolicy
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) { c.retry = p }
}

// WithTemperature overrides the default sampling temperature.
func WithTemperature(t float32) ClientOption {
	return func(c *Client) { c.temperature = t }
}

// withAPI replaces the underlying API, for tests.
func withAPI(api completionAPI) ClientOption {
	return func(c *Client) { c.api = api }
}

// NewClient creates a structured-answer generator for the given model.
func NewClient(apiKey, model string, opts ...ClientOption) *Client {
	c := &Client{
		api:         openai.NewClient(apiKey),
		model:       model,
		temperature: 0.3,
		retry:       DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate returns the raw text answer for a prompt.
func (c *Client) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	var content string
	err := c.retry.Do(ctx, func() error {
		metrics.IncRemoteCalls()
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: c.temperature,
		})
		if err != nil {
			return classifyOpenAIError(err)
		}
		if len(resp.Choices) == 0 {
			return Permanent("completion", fmt.Errorf("no choices returned"))
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// GenerateJSON returns the structured value embedded in the model's answer.
// A parse failure after both decode stages is permanent.
func (c *Client) GenerateJSON(ctx context.Context, systemPrompt, prompt string) (interface{}, error) {
	raw, err := c.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	return ExtractStructured(raw)
}

// classifyOpenAIError maps service errors onto the failure taxonomy: rate
// limits, server errors and network timeouts are transient, everything else
// permanent.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return Transient("completion", err)
		case apiErr.HTTPStatusCode == http.StatusRequestTimeout:
			return Transient("completion", err)
		case apiErr.HTTPStatusCode >= http.StatusInternalServerError:
			return Transient("completion", err)
		default:
			return Permanent("completion", err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Transient("completion", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Transient("completion", err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		// Transport-level failure before a well-formed API response.
		return Transient("completion", err)
	}

	return Permanent("completion", err)
}
