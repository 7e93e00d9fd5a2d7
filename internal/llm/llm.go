// Package llm provides the chat-completion client used by sonarstep to reach
// the Perplexity API, plus a mock for tests.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Role constants for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrMissingAPIKey is returned by NewPerplexityProvider when no API key is
// available from options or the environment.
var ErrMissingAPIKey = errors.New("llm: PERPLEXITY_API_KEY not set and no API key provided")

// Provider abstracts a chat-completion API behind a single synchronous call.
type Provider interface {
	// Complete sends the request and returns the first choice of the reply.
	// Implementations must respect context cancellation and deadlines.
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Message is a single chat message.
type Message struct {
	Role    string
	Content string
}

// SystemMessage creates a system message with the given content.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message with the given content.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Request describes a single chat-completion request, including the
// Perplexity search controls.
type Request struct {
	// Model overrides the provider's default model. If empty, the provider
	// uses its configured default.
	Model string

	// Messages is the conversation sent to the model.
	Messages []Message

	// MaxTokens limits the response length. If nil, the field is omitted and
	// the provider's own default applies.
	MaxTokens *int

	Temperature float64
	TopP        float64
	TopK        int

	PresencePenalty  float64
	FrequencyPenalty float64

	ReturnCitations        bool
	ReturnImages           bool
	ReturnRelatedQuestions bool

	// SearchDomainFilter restricts web search to these hostnames.
	SearchDomainFilter []string

	// SearchRecencyFilter limits search results by age ("day", "week",
	// "month", "year").
	SearchRecencyFilter string

	Stream bool
}

// Response holds the result of a completion call.
type Response struct {
	// Content is the message content of the first choice. Empty when the
	// provider returned a choice without content.
	Content string

	// Model is the model that actually served the request.
	Model string

	// Usage reports token consumption.
	Usage Usage
}

// Usage tracks input and output token counts for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// APIError is a failure reported by the provider: a non-2xx status or a
// successful status whose body carried no usable choice.
type APIError struct {
	// StatusCode is the HTTP status of the reply.
	StatusCode int

	// Message is the provider's error.message field. Empty when the body had
	// no such field.
	Message string
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message == "" {
		return fmt.Sprintf("perplexity: http status %d: no usable choice in response", e.StatusCode)
	}
	return fmt.Sprintf("perplexity: http status %d: %s", e.StatusCode, e.Message)
}
