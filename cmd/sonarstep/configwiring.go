package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/davetashner/sonarstep/internal/config"
	"github.com/davetashner/sonarstep/internal/llm"
	sonarlog "github.com/davetashner/sonarstep/internal/log"
	"github.com/davetashner/sonarstep/internal/persona"
	"github.com/davetashner/sonarstep/internal/step"
)

// Built-in defaults applied after config files and flags.
const (
	defaultOutputFormat = "json"
	defaultListen       = ":8080"
	defaultConcurrency  = 4
)

// resolveSettings layers global config, repo config, and CLI flags (in
// increasing precedence) and fills built-in defaults. cli carries the
// command-specific flags; the global flags are applied here.
func resolveSettings(cli config.Settings) (config.Settings, error) {
	globalCfg, err := config.LoadGlobal()
	if err != nil {
		return config.Settings{}, exitError(ExitInvalidArgs, "loading global config: %v", err)
	}
	repoCfg, err := config.Load(".")
	if err != nil {
		return config.Settings{}, exitError(ExitInvalidArgs, "loading repo config: %v", err)
	}
	fileCfg := config.Overlay(globalCfg, repoCfg)
	if err := config.Validate(fileCfg); err != nil {
		return config.Settings{}, exitError(ExitInvalidArgs, "%v", err)
	}

	if !sonarlog.ValidFormat(logFormat) {
		return config.Settings{}, exitError(ExitInvalidArgs, "invalid --log-format %q (must be text or json)", logFormat)
	}

	cli.BaseURL = baseURL
	cli.PersonaFile = personaFile
	cli.Timeout = timeout
	cli.LogFormat = logFormat
	s := config.Merge(fileCfg, cli)

	if s.OutputFormat == "" {
		s.OutputFormat = defaultOutputFormat
	}
	if s.Listen == "" {
		s.Listen = defaultListen
	}
	if s.Concurrency <= 0 {
		s.Concurrency = defaultConcurrency
	}

	// The log format may come from a config file, which is only read once a
	// command runs.
	if logFormat == "" && s.LogFormat != "" {
		sonarlog.Setup(verbose, quiet, s.LogFormat)
	}

	slog.Debug("settings resolved",
		"base_url", s.BaseURL,
		"persona_file", s.PersonaFile,
		"output_format", s.OutputFormat,
		"timeout", s.Timeout,
	)
	return s, nil
}

// newRunner builds the step runner for the resolved settings.
func newRunner(s config.Settings) (*step.Runner, error) {
	opts := []step.Option{step.WithLogger(slog.Default())}

	if s.PersonaFile != "" {
		p, err := persona.Load(cmdFS, s.PersonaFile)
		if err != nil {
			return nil, exitError(ExitInvalidArgs, "%v", err)
		}
		opts = append(opts, step.WithPersona(p))
	}

	var llmOpts []llm.PerplexityOption
	if s.BaseURL != "" {
		llmOpts = append(llmOpts, llm.WithBaseURL(s.BaseURL))
	}
	opts = append(opts, step.WithProviderFactory(step.PerplexityFactory(llmOpts...)))

	return step.New(opts...), nil
}

// defaultAPIKey returns the --api-key flag value, falling back to the
// PERPLEXITY_API_KEY environment variable.
func defaultAPIKey() string {
	if apiKey != "" {
		return apiKey
	}
	return os.Getenv("PERPLEXITY_API_KEY")
}

// withTimeout applies the configured per-invocation deadline, if any.
func withTimeout(ctx context.Context, s config.Settings) (context.Context, context.CancelFunc) {
	if s.Timeout > 0 {
		return context.WithTimeout(ctx, s.Timeout)
	}
	return context.WithCancel(ctx)
}
