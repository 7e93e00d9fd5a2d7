package mcpserver

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/davetashner/sonarstep/internal/output"
	"github.com/davetashner/sonarstep/internal/step"
)

// ToolName is the name of the MCP tool that runs the step.
const ToolName = "ask_carsharing"

// AskInput is the input schema for the ask_carsharing tool. It mirrors the
// step's inputVars. Every field is optional at the protocol level so that
// missing values are reported through the step's own error routing.
type AskInput struct {
	Prompt           string `json:"prompt,omitempty" jsonschema:"The carsharing question to answer"`
	PerplexityAPIKey string `json:"perplexityApiKey,omitempty" jsonschema:"Perplexity API key (defaults to the server's configured key)"`
	MaxTokens        any    `json:"maxTokens,omitempty" jsonschema:"Maximum tokens for the answer; a number or numeric string"`
}

// boolPtr returns a pointer to a bool.
func boolPtr(b bool) *bool { return &b }

type tools struct {
	opts Options
}

// registerTools adds all sonarstep tools to the MCP server.
func registerTools(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name: ToolName,
		Description: "Answer a carsharing question (Turo listings, pricing, insurance, trips) using Perplexity's " +
			"sonar-reasoning model restricted to carsharing sources. Returns outputVars {answer, think, error}, " +
			"the routing path (success or error), and a trace.",
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:    true,
			DestructiveHint: boolPtr(false),
			OpenWorldHint:   boolPtr(true),
		},
	}, t.handleAsk)
}

// handleAsk runs the step. Step failures are not protocol errors: the
// result is returned with next.path set to "error" and IsError unset.
func (t *tools) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, step.Result, error) {
	if t.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.opts.Timeout)
		defer cancel()
	}

	in := step.Input{
		Prompt:           input.Prompt,
		PerplexityAPIKey: input.PerplexityAPIKey,
		MaxTokens:        input.MaxTokens,
	}
	if in.PerplexityAPIKey == "" {
		in.PerplexityAPIKey = t.opts.DefaultAPIKey
	}

	res := t.opts.Runner.Run(ctx, in)
	slog.Debug("mcp tool call", "tool", ToolName, "path", res.Next.Path)

	var buf bytes.Buffer
	f := &output.JSONFormatter{Compact: true}
	if err := f.Format(res, &buf); err != nil {
		return nil, step.Result{}, fmt.Errorf("formatting failed: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: buf.String()},
		},
	}, res, nil
}
