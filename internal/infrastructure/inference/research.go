package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/step"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/infrastructure/metrics"
)

// DefaultResearchURL is the Perplexity chat-completions endpoint.
const DefaultResearchURL = "https://api.perplexity.ai/chat/completions"

const defaultResearchSystemPrompt = "You are a helpful HVAC industry expert specializing in California markets. " +
	"Provide accurate product information, pricing specific to California/Bay Area when available, " +
	"and cite reliable sources."

// ResearchClient is the web-research generator: prompt in, sourced content
// out. The wire format is the Perplexity chat-completions dialect, which
// carries a top-level citations list the OpenAI SDK does not model.
type ResearchClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	url        string
	retry      RetryPolicy
}

// ResearchOption configures a ResearchClient.
type ResearchOption func(*ResearchClient)

// WithResearchURL overrides the endpoint, for tests.
func WithResearchURL(url string) ResearchOption {
	return func(c *ResearchClient) { c.url = url }
}

// WithResearchRetryPolicy overrides the default retry policy.
func WithResearchRetryPolicy(p RetryPolicy) ResearchOption {
	return func(c *ResearchClient) { c.retry = p }
}

// NewResearchClient creates a research generator for the given model.
func NewResearchClient(apiKey, model string, opts ...ResearchOption) *ResearchClient {
	c := &ResearchClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		model:      model,
		url:        DefaultResearchURL,
		retry:      RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type researchRequest struct {
	Model               string            `json:"model"`
	Messages            []researchMessage `json:"messages"`
	Temperature         float32           `json:"temperature"`
	TopP                float32           `json:"top_p"`
	ReturnCitations     bool              `json:"return_citations"`
	SearchRecencyFilter string            `json:"search_recency_filter"`
}

type researchMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type researchResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
}

// Research answers a research prompt with content plus source references.
func (c *ResearchClient) Research(ctx context.Context, systemPrompt, prompt string) (*step.ResearchResult, error) {
	if c.apiKey == "" {
		return nil, Permanent("research", errors.New("research API key not configured"))
	}
	if systemPrompt == "" {
		systemPrompt = defaultResearchSystemPrompt
	}

	payload := researchRequest{
		Model: c.model,
		Messages: []researchMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:         0.2,
		TopP:                0.9,
		ReturnCitations:     true,
		SearchRecencyFilter: "month",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, Permanent("research", err)
	}

	var result *step.ResearchResult
	err = c.retry.Do(ctx, func() error {
		metrics.IncRemoteCalls()
		res, err := c.doRequest(ctx, body)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *ResearchClient) doRequest(ctx context.Context, body []byte) (*step.ResearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, Permanent("research", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts and connection failures alike are worth a retry.
		return nil, Transient("research", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Transient("research", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, Transient("research", fmt.Errorf("rate limited: %s", resp.Status))
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, Transient("research", fmt.Errorf("server error: %s", resp.Status))
	case resp.StatusCode != http.StatusOK:
		return nil, Permanent("research", fmt.Errorf("unexpected status: %s", resp.Status))
	}

	var parsed researchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, Permanent("research", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, Permanent("research", errors.New("no choices returned"))
	}

	return &step.ResearchResult{
		Content:   parsed.Choices[0].Message.Content,
		Citations: parsed.Citations,
	}, nil
}
