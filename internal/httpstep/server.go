// Copyright 2026 The Sonarstep Authors
// SPDX-License-Identifier: MIT

// Package httpstep hosts the step behind a small HTTP API so that workflow
// engines can invoke it over the network.
//
// Routes:
//
//	POST /v1/run   body {"inputVars": {...}}; responds with the step result
//	GET  /healthz  liveness probe
//
// Step outcomes, including the error path, are always HTTP 200; routing lives
// in next.path. Only undecodable request bodies are rejected with 400.
package httpstep

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/davetashner/sonarstep/internal/step"
)

// HeaderRunID carries the run ID of the invocation that produced a response.
const HeaderRunID = "X-Run-ID"

// RunRequest is the body of POST /v1/run.
type RunRequest struct {
	InputVars step.Input `json:"inputVars"`
}

// ErrorResponse is returned for requests the host itself rejects.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Options configures a Server.
type Options struct {
	// Runner executes the step. When nil, step.New() is used.
	Runner *step.Runner

	// Timeout bounds each invocation. Zero means no host-level deadline.
	Timeout time.Duration

	// Version is reported by /healthz.
	Version string
}

// Server is the HTTP host for the step.
type Server struct {
	app  *fiber.App
	opts Options
}

// New creates a Server with its routes registered.
func New(opts Options) *Server {
	if opts.Runner == nil {
		opts.Runner = step.New()
	}

	app := fiber.New(fiber.Config{
		AppName:               "sonarstep",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	s := &Server{app: app, opts: opts}
	app.Get("/healthz", s.handleHealth)
	app.Post("/v1/run", s.handleRun)
	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Serve serves on an already bound listener until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	slog.Info("http host listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// Shutdown gracefully stops the server, waiting for in-flight invocations
// until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "version": s.opts.Version})
}

func (s *Server) handleRun(c *fiber.Ctx) error {
	var req RunRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	runID := c.Get(HeaderRunID)
	if runID == "" {
		runID = uuid.NewString()
	}
	c.Set(HeaderRunID, runID)

	ctx := step.ContextWithRunID(c.UserContext(), runID)
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	res := s.opts.Runner.Run(ctx, req.InputVars)
	return c.Status(fiber.StatusOK).JSON(res)
}

// errorHandler renders host-level errors as JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(ErrorResponse{Error: err.Error()})
}
