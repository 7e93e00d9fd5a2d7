package main

import (
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	sonarlog "github.com/davetashner/sonarstep/internal/log"
)

// Global flag values.
var (
	verbose     bool
	quiet       bool
	noColor     bool
	logFormat   string
	apiKey      string
	baseURL     string
	personaFile string
	timeout     time.Duration
)

// rootCmd is the base command for sonarstep.
var rootCmd = &cobra.Command{
	Use:   "sonarstep",
	Short: "Answer carsharing questions with Perplexity",
	Long: `Sonarstep is a workflow step that answers peer-to-peer carsharing questions
(Turo listings, pricing, insurance, trips) using Perplexity's sonar-reasoning
model restricted to carsharing sources. It returns the answer, the model's
reasoning, and a routing path of success or error.

Run it once from the command line, over JSON Lines in batch, behind an HTTP
endpoint, or as an MCP tool.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		sonarlog.Setup(verbose, quiet, logFormat)
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json (default text)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Perplexity API key (default $PERPLEXITY_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Perplexity API root (default https://api.perplexity.ai)")
	rootCmd.PersistentFlags().StringVar(&personaFile, "persona-file", "", "replace the built-in system prompt with this template file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "deadline for each invocation (0 = none)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
