// Copyright 2026 The Sonarstep Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/davetashner/sonarstep/internal/config"
	"github.com/davetashner/sonarstep/internal/httpstep"
)

// shutdownGrace bounds how long in-flight requests may finish after a signal.
const shutdownGrace = 10 * time.Second

// serveListen is the --listen flag value.
var serveListen string

// serveCmd hosts the step behind an HTTP endpoint.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the step over HTTP",
	Long: `Start an HTTP server exposing the step to workflow engines.

  POST /v1/run   body {"inputVars": {...}}, responds with the step result
  GET  /healthz  liveness probe

Every well-formed request gets 200 with the result; the routing decision is
in next.path. The caller's API key is always taken from the request body.
An X-Run-ID request header is echoed back and tags the step's log records.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default :8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings(config.Settings{Listen: serveListen})
	if err != nil {
		return err
	}
	runner, err := newRunner(s)
	if err != nil {
		return err
	}

	srv := httpstep.New(httpstep.Options{
		Runner:  runner,
		Timeout: s.Timeout,
		Version: Version,
	})

	// Bind before serving so an unusable address fails here, not in the
	// serving goroutine.
	ln, err := net.Listen("tcp", s.Listen)
	if err != nil {
		return fmt.Errorf("http host: %w", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http host: %w", err)
		}
		return nil
	case <-cmd.Context().Done():
	}

	slog.Info("http host shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http host shutdown: %w", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http host: %w", err)
		}
	default:
	}
	return nil
}
