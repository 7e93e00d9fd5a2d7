// Copyright 2026 The Sonarstep Authors
// SPDX-License-Identifier: MIT

// Package step implements the carsharing answer step: it validates the
// workflow's input variables, asks Perplexity with a fixed persona and search
// restrictions, and reshapes the reply into answer, think, and error outputs
// plus a routing path.
//
// Run never returns an error. Every failure, including transport faults, is
// converted into a Result routed to PathError.
package step

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/davetashner/sonarstep/internal/llm"
	"github.com/davetashner/sonarstep/internal/persona"
	"github.com/davetashner/sonarstep/internal/redact"
)

// ProviderFactory creates the completion provider for one invocation using
// the caller's API key.
type ProviderFactory func(apiKey string) (llm.Provider, error)

// PerplexityFactory returns a ProviderFactory for the Perplexity API. The
// given options are applied before the per-call API key.
func PerplexityFactory(opts ...llm.PerplexityOption) ProviderFactory {
	return func(apiKey string) (llm.Provider, error) {
		all := make([]llm.PerplexityOption, 0, len(opts)+1)
		all = append(all, opts...)
		all = append(all, llm.WithAPIKey(apiKey))
		return llm.NewPerplexityProvider(all...)
	}
}

// Runner executes the step. A Runner holds only immutable configuration and
// is safe for concurrent use.
type Runner struct {
	persona     *persona.Persona
	newProvider ProviderFactory
	logger      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithPersona replaces the built-in system prompt.
func WithPersona(p *persona.Persona) Option {
	return func(r *Runner) {
		if p != nil {
			r.persona = p
		}
	}
}

// WithProviderFactory replaces how providers are created. Tests use it to
// inject llm.MockProvider.
func WithProviderFactory(f ProviderFactory) Option {
	return func(r *Runner) {
		if f != nil {
			r.newProvider = f
		}
	}
}

// WithLogger sets the logger. By default slog.Default() is used at call time.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// New creates a Runner that talks to the public Perplexity API with the
// built-in persona unless options say otherwise.
func New(opts ...Option) *Runner {
	r := &Runner{
		persona:     persona.Default(),
		newProvider: PerplexityFactory(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Runner) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// Run executes one invocation. Validation failures return before any
// provider is created. The only blocking point is the provider call, which
// is bounded solely by ctx.
func (r *Runner) Run(ctx context.Context, in Input) (res Result) {
	runID := RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.NewString()
	}
	start := time.Now()
	n := Normalize(in)
	logger := r.log().With("run_id", runID)

	defer func() {
		if p := recover(); p != nil {
			res = fault(fmt.Errorf("step: panic: %v", p))
		}
		logger.Debug("step.run done",
			"path", res.Next.Path,
			"duration", time.Since(start),
		)
		if !res.OK() {
			logger.Debug("step.run error", "error", redact.String(res.OutputVars.Error, n.APIKey))
		}
	}()

	if n.APIKey == "" {
		return failure(MsgMissingAPIKey, traceMissingAPIKey)
	}
	if n.Prompt == "" {
		return failure(MsgMissingPrompt, traceMissingPrompt)
	}

	req := BuildRequest(r.persona, n)
	logger.Debug("step.run request",
		"model", req.Model,
		"prompt_len", len(n.Prompt),
		"max_tokens", persona.TokenBudget(n.MaxTokens),
	)

	provider, err := r.newProvider(n.APIKey)
	if err != nil {
		return fault(err)
	}

	resp, err := provider.Complete(ctx, req)
	if err != nil {
		return resolveError(err)
	}

	think, answer := SplitThink(resp.Content)
	return success(answer, think)
}

type runIDKey struct{}

// ContextWithRunID returns a context carrying a run ID that Run uses in its
// log records instead of generating one. Hosts use it to correlate their own
// responses with step logs.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run ID stored by ContextWithRunID, or "".
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// resolveError maps a provider error to a result. Provider-reported failures
// surface the provider's own message; everything else is a fault.
func resolveError(err error) Result {
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = MsgNoAnswer
		}
		return failure(msg, msg)
	}
	return fault(err)
}

func fault(err error) Result {
	return failure(err.Error(), "Error: "+err.Error())
}
