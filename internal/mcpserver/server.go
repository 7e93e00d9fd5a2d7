// Copyright 2026 The Sonarstep Authors
// SPDX-License-Identifier: MIT

package mcpserver

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/davetashner/sonarstep/internal/step"
)

// Options configures the tools exposed by the server.
type Options struct {
	// Runner executes the step. When nil, step.New() is used.
	Runner *step.Runner

	// DefaultAPIKey is used when a tool call omits perplexityApiKey.
	DefaultAPIKey string

	// Timeout bounds each tool call. Zero means no host-level deadline.
	Timeout time.Duration
}

// New creates a new MCP server with sonarstep's tools registered.
func New(version string, opts Options) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "sonarstep",
		Title:   "Sonarstep: carsharing answers from Perplexity",
		Version: version,
	}, nil)

	if opts.Runner == nil {
		opts.Runner = step.New()
	}
	registerTools(server, &tools{opts: opts})
	return server
}

// Run creates an MCP server and runs it on the given transport.
// It blocks until the client disconnects or the context is cancelled.
func Run(ctx context.Context, version string, opts Options, transport mcp.Transport) error {
	server := New(version, opts)
	return server.Run(ctx, transport)
}
