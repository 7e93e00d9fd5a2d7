// Copyright 2026 The Sonarstep Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
)

const (
	// DefaultBaseURL is the root of the Perplexity API.
	DefaultBaseURL = "https://api.perplexity.ai"

	// DefaultModel is the reasoning-capable model used when no override is
	// provided.
	DefaultModel = "sonar-reasoning"
)

// HTTPClient is the minimal interface required from an HTTP client. It
// matches the Do method on *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// PerplexityProvider implements Provider against the Perplexity
// chat-completions endpoint. It performs exactly one HTTP call per Complete
// and never retries.
type PerplexityProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient HTTPClient
}

// Compile-time check that PerplexityProvider satisfies the Provider interface.
var _ Provider = (*PerplexityProvider)(nil)

// PerplexityOption configures a PerplexityProvider.
type PerplexityOption func(*perplexityConfig)

type perplexityConfig struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient HTTPClient
}

// WithAPIKey sets the API key. If not provided, the provider reads
// PERPLEXITY_API_KEY from the environment.
func WithAPIKey(key string) PerplexityOption {
	return func(c *perplexityConfig) {
		c.apiKey = key
	}
}

// WithBaseURL points the provider at a different API root, such as a proxy
// or a test server.
func WithBaseURL(url string) PerplexityOption {
	return func(c *perplexityConfig) {
		c.baseURL = url
	}
}

// WithModel overrides the default model for all requests.
func WithModel(model string) PerplexityOption {
	return func(c *perplexityConfig) {
		c.model = model
	}
}

// WithHTTPClient replaces the transport used for outbound calls.
func WithHTTPClient(hc HTTPClient) PerplexityOption {
	return func(c *perplexityConfig) {
		c.httpClient = hc
	}
}

// NewPerplexityProvider creates a new Perplexity provider.
// It returns ErrMissingAPIKey if no API key is available.
func NewPerplexityProvider(opts ...PerplexityOption) (*PerplexityProvider, error) {
	cfg := perplexityConfig{
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
	}
	for _, o := range opts {
		o(&cfg)
	}

	apiKey := cfg.apiKey
	if apiKey == "" {
		apiKey = os.Getenv("PERPLEXITY_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := strings.TrimRight(cfg.baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = http.DefaultClient
	}

	return &PerplexityProvider{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      cfg.model,
		httpClient: hc,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the wire shape of a chat-completions call. Only max_tokens
// is omitted when unset; every other field is always sent.
type chatRequest struct {
	Model                  string        `json:"model"`
	Messages               []chatMessage `json:"messages"`
	MaxTokens              *int          `json:"max_tokens,omitempty"`
	Temperature            float64       `json:"temperature"`
	TopP                   float64       `json:"top_p"`
	ReturnCitations        bool          `json:"return_citations"`
	SearchDomainFilter     []string      `json:"search_domain_filter"`
	ReturnImages           bool          `json:"return_images"`
	ReturnRelatedQuestions bool          `json:"return_related_questions"`
	SearchRecencyFilter    string        `json:"search_recency_filter"`
	TopK                   int           `json:"top_k"`
	Stream                 bool          `json:"stream"`
	PresencePenalty        float64       `json:"presence_penalty"`
	FrequencyPenalty       float64       `json:"frequency_penalty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error json.RawMessage `json:"error"`
}

// errorMessage extracts error.message from the reply. Replies whose error
// field is missing, a bare string, or lacks a message yield "".
func (r *chatResponse) errorMessage() string {
	if len(r.Error) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Error, &body); err != nil {
		return ""
	}
	return body.Message
}

// ChatCompletionsURL returns the endpoint the provider posts to.
func (p *PerplexityProvider) ChatCompletionsURL() string {
	return p.baseURL + "/chat/completions"
}

// Complete sends a chat-completions request and returns the first choice.
// Non-2xx replies and replies without choices are returned as *APIError;
// transport and decode failures are returned as wrapped errors.
func (p *PerplexityProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	body := chatRequest{
		Model:                  model,
		Messages:               make([]chatMessage, 0, len(req.Messages)),
		MaxTokens:              req.MaxTokens,
		Temperature:            req.Temperature,
		TopP:                   req.TopP,
		ReturnCitations:        req.ReturnCitations,
		SearchDomainFilter:     req.SearchDomainFilter,
		ReturnImages:           req.ReturnImages,
		ReturnRelatedQuestions: req.ReturnRelatedQuestions,
		SearchRecencyFilter:    req.SearchRecencyFilter,
		TopK:                   req.TopK,
		Stream:                 req.Stream,
		PresencePenalty:        req.PresencePenalty,
		FrequencyPenalty:       req.FrequencyPenalty,
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	buf, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("perplexity: encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.ChatCompletionsURL(), bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("perplexity: building request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("perplexity: request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("perplexity: decoding response (http status %d): %w", resp.StatusCode, err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok || len(out.Choices) == 0 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: out.errorMessage()}
	}

	return &Response{
		Content: out.Choices[0].Message.Content,
		Model:   out.Model,
		Usage: Usage{
			InputTokens:  out.Usage.PromptTokens,
			OutputTokens: out.Usage.CompletionTokens,
		},
	}, nil
}

// Model returns the default model configured for this provider.
func (p *PerplexityProvider) Model() string {
	return p.model
}
