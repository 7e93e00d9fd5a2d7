// Package output defines the Formatter interface for writing step results
// in various formats.
package output

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/davetashner/sonarstep/internal/step"
)

// Formatter writes a single step result to the given writer in a specific
// format.
type Formatter interface {
	// Name returns the format name (e.g., "json", "text", "markdown").
	Name() string

	// Format writes the result to w.
	Format(res step.Result, w io.Writer) error
}

var (
	fmtMu       sync.RWMutex
	fmtRegistry = make(map[string]Formatter)
)

// RegisterFormatter adds a formatter to the global registry.
func RegisterFormatter(f Formatter) {
	fmtMu.Lock()
	defer fmtMu.Unlock()
	fmtRegistry[f.Name()] = f
}

// GetFormatter returns the formatter with the given name, or an error if not found.
func GetFormatter(name string) (Formatter, error) {
	fmtMu.RLock()
	defer fmtMu.RUnlock()
	f, ok := fmtRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown format: %q (available: %s)", name, formatNames())
	}
	return f, nil
}

// Names returns the sorted names of all registered formatters.
func Names() []string {
	fmtMu.RLock()
	defer fmtMu.RUnlock()
	return slices.Sorted(maps.Keys(fmtRegistry))
}

// resetFmtForTesting clears the formatter registry. Only for use in tests.
func resetFmtForTesting() {
	fmtMu.Lock()
	defer fmtMu.Unlock()
	fmtRegistry = make(map[string]Formatter)
}

// formatNames returns a comma-separated sorted list of registered format names.
// Callers must hold fmtMu.
func formatNames() string {
	return strings.Join(slices.Sorted(maps.Keys(fmtRegistry)), ", ")
}
