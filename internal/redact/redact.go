// Copyright 2026 The Sonarstep Authors
// SPDX-License-Identifier: MIT

// Package redact strips API keys from strings before they appear in logs,
// stderr, or error messages.
package redact

import (
	"os"
	"strings"
	"sync"
)

// Placeholder replaces every redacted value.
const Placeholder = "[REDACTED]"

// minSecretLen guards against false positives from very short values.
const minSecretLen = 4

// sensitiveEnvVars lists environment variables whose values must never
// appear in output.
var sensitiveEnvVars = []string{
	"PERPLEXITY_API_KEY",
	"PPLX_API_KEY",
}

var (
	cachedSecrets []string
	cacheOnce     sync.Once
)

func loadSecrets() {
	for _, envVar := range sensitiveEnvVars {
		if val := os.Getenv(envVar); len(val) >= minSecretLen {
			cachedSecrets = append(cachedSecrets, val)
		}
	}
}

// ResetForTest drops the cached environment secrets so tests can change env
// vars with t.Setenv between calls.
func ResetForTest() {
	cachedSecrets = nil
	cacheOnce = sync.Once{}
}

// String replaces every occurrence of a known secret with Placeholder.
// Known secrets are the values of sensitiveEnvVars (read once) plus any
// caller-supplied extra values, such as a per-request API key.
func String(s string, extra ...string) string {
	cacheOnce.Do(loadSecrets)
	for _, secret := range cachedSecrets {
		s = strings.ReplaceAll(s, secret, Placeholder)
	}
	for _, secret := range extra {
		secret = strings.TrimSpace(secret)
		if len(secret) < minSecretLen {
			continue
		}
		s = strings.ReplaceAll(s, secret, Placeholder)
	}
	return s
}
