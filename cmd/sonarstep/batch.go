// Copyright 2026 The Sonarstep Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/davetashner/sonarstep/internal/config"
	"github.com/davetashner/sonarstep/internal/output"
	"github.com/davetashner/sonarstep/internal/step"
)

// maxBatchLine bounds a single JSON Lines record.
const maxBatchLine = 1 << 20

// Batch-specific flag values.
var (
	batchConcurrency int
	batchOutput      string
)

// batchCmd runs the step over a JSON Lines file.
var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Run the step for every line of a JSON Lines file",
	Long: `Run the step once per line of a JSON Lines file (or stdin when the file is
omitted or "-"). Each line holds {"inputVars": {...}} or the bare inputVars
object; blank lines are skipped. Lines without a key use --api-key or
$PERPLEXITY_API_KEY.

Invocations run concurrently, bounded by --concurrency. Results are written
as JSON Lines in input order. Exit status is 2 if any invocation routed to
the error path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 0, "maximum concurrent invocations (default 4)")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "output file path (default: stdout)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if batchConcurrency < 0 {
		return exitError(ExitInvalidArgs, "--concurrency must be non-negative, got %d", batchConcurrency)
	}
	s, err := resolveSettings(config.Settings{Concurrency: batchConcurrency})
	if err != nil {
		return err
	}

	r := cmd.InOrStdin()
	if len(args) > 0 && args[0] != "-" {
		f, err := cmdFS.Open(args[0])
		if err != nil {
			return exitError(ExitInvalidArgs, "cannot read input: %v", err)
		}
		defer f.Close() //nolint:errcheck // read-only
		r = f
	}
	inputs, err := parseBatch(r)
	if err != nil {
		return exitError(ExitInvalidArgs, "%v", err)
	}

	runner, err := newRunner(s)
	if err != nil {
		return err
	}

	key := defaultAPIKey()
	results := make([]step.Result, len(inputs))
	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(s.Concurrency)
	for i, in := range inputs {
		if in.PerplexityAPIKey == "" {
			in.PerplexityAPIKey = key
		}
		g.Go(func() error {
			ctx, cancel := withTimeout(gctx, s)
			defer cancel()
			results[i] = runner.Run(ctx, in)
			return nil
		})
	}
	_ = g.Wait() // Run never returns an error.

	w := cmd.OutOrStdout()
	if batchOutput != "" {
		f, err := cmdFS.Create(batchOutput)
		if err != nil {
			return exitError(ExitInvalidArgs, "cannot create output file: %v", err)
		}
		defer f.Close() //nolint:errcheck // best-effort close; Format reports write errors
		w = f
	}

	jf := &output.JSONFormatter{Compact: true}
	failed := 0
	for _, res := range results {
		if err := jf.Format(res, w); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
		if !res.OK() {
			failed++
		}
	}

	slog.Info("batch done", "runs", len(results), "errors", failed, "concurrency", s.Concurrency)
	if failed > 0 {
		return exitError(ExitStepError, "sonarstep: %d of %d runs routed to error", failed, len(results))
	}
	return nil
}

// parseBatch decodes every non-blank line of r as step input. It fails on the
// first malformed line, before anything is run.
func parseBatch(r io.Reader) ([]step.Input, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxBatchLine)

	var inputs []step.Input
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		in, err := decodeInputVars(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", line, err)
		}
		inputs = append(inputs, in)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return inputs, nil
}
