package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/davetashner/sonarstep/internal/config"
	"github.com/davetashner/sonarstep/internal/mcpserver"
)

// mcpCmd is the parent command for MCP-related subcommands.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server commands",
	Long:  "Commands for running sonarstep as an MCP server, exposing the step as a tool to AI agents.",
}

// mcpServeCmd runs the MCP server over stdio.
var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio",
	Long: `Start an MCP server on stdin/stdout exposing one tool:
  - ask_carsharing: answer a carsharing question with Perplexity

The tool takes the same fields as the step's inputVars and returns the step
result as structured content. When a call omits perplexityApiKey, the key
from --api-key or $PERPLEXITY_API_KEY is used.`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings(config.Settings{})
	if err != nil {
		return err
	}
	runner, err := newRunner(s)
	if err != nil {
		return err
	}
	return mcpserver.Run(cmd.Context(), Version, mcpserver.Options{
		Runner:        runner,
		DefaultAPIKey: defaultAPIKey(),
		Timeout:       s.Timeout,
	}, &mcp.StdioTransport{})
}
