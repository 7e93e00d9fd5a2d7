// Copyright 2026 The Sonarstep Authors
// SPDX-License-Identifier: MIT

package step

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Input is the set of variables a hosting workflow supplies to the step.
type Input struct {
	Prompt           string `json:"prompt"`
	PerplexityAPIKey string `json:"perplexityApiKey"`

	// MaxTokens is number-like: a JSON number, a numeric string, or absent.
	MaxTokens any `json:"maxTokens,omitempty"`
}

// Normalized is an Input after trimming and budget parsing.
type Normalized struct {
	Prompt string
	APIKey string

	// MaxTokens is nil when the caller did not request a budget or the value
	// could not be parsed as a finite number.
	MaxTokens *int
}

// Normalize trims the prompt and key and parses the token budget. It never
// fails: unusable values are coerced to their empty form.
func Normalize(in Input) Normalized {
	return Normalized{
		Prompt:    strings.TrimSpace(in.Prompt),
		APIKey:    strings.TrimSpace(in.PerplexityAPIKey),
		MaxTokens: ParseMaxTokens(in.MaxTokens),
	}
}

// numericPrefix matches the leading decimal literal of a string the way a
// lenient float parser does: "150.4 tokens" yields "150.4".
var numericPrefix = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// ParseMaxTokens converts a number-like value to a rounded token budget.
//
// Empty values (nil, "", 0, false) are unset. Strings are parsed from their
// leading numeric prefix after skipping whitespace. Rounding is half-up.
// Non-finite results and budgets that do not fit in an int are unset.
func ParseMaxTokens(v any) *int {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	r := math.Floor(f + 0.5)
	if r >= math.MaxInt64 || r < math.MinInt64 {
		return nil
	}
	n := int(r)
	return &n
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case bool:
		// true is supplied but not numeric; false is not supplied.
		return 0, false
	case string:
		return parseFloatPrefix(x)
	case json.Number:
		return parseFloatPrefix(x.String())
	case float64:
		return x, x != 0
	case float32:
		return float64(x), x != 0
	case int:
		return float64(x), x != 0
	case int32:
		return float64(x), x != 0
	case int64:
		return float64(x), x != 0
	default:
		return 0, false
	}
}

func parseFloatPrefix(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	m := numericPrefix.FindString(s)
	if m == "" {
		return 0, false
	}
	if strings.HasSuffix(m, "Infinity") {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
