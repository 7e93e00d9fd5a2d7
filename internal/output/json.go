package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/davetashner/sonarstep/internal/step"
)

func init() {
	RegisterFormatter(NewJSONFormatter())
}

// JSONFormatter writes the result exactly as the hosting workflow receives
// it: {"outputVars":…, "next":…, "trace":…}.
type JSONFormatter struct {
	// Compact controls whether output is compact (single line) or pretty-printed.
	// When false (default), output is indented with two spaces on terminals
	// and compact when writing to a pipe or file.
	Compact bool
}

// Compile-time interface check.
var _ Formatter = (*JSONFormatter)(nil)

// NewJSONFormatter returns a new JSONFormatter with default settings.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format writes res as one JSON document followed by a newline.
func (f *JSONFormatter) Format(res step.Result, w io.Writer) error {
	if res.Trace == nil {
		res.Trace = []step.TraceEvent{}
	}

	var data []byte
	var err error
	if f.shouldCompact(w) {
		data, err = json.Marshal(res)
	} else {
		data, err = json.MarshalIndent(res, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write json trailing newline: %w", err)
	}
	return nil
}

// shouldCompact determines whether to use compact mode.
// If Compact is explicitly set, use that value.
// Otherwise, auto-detect: pretty-print for TTYs, compact for pipes.
func (f *JSONFormatter) shouldCompact(w io.Writer) bool {
	if f.Compact {
		return true
	}

	if file, ok := w.(*os.File); ok {
		fi, err := file.Stat()
		if err != nil {
			return false
		}
		return fi.Mode()&os.ModeCharDevice == 0
	}

	// Non-file writers (e.g., bytes.Buffer in tests) get pretty output.
	return false
}
