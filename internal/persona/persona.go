// Package persona holds the system prompt sent with every completion request.
//
// The prompt text is a content asset: the default is embedded from
// persona.tmpl and may be replaced by a file at runtime. Templates see a
// single field, {{.TokenBudget}}, which renders as the requested token budget
// or the literal "the default" when no budget was requested.
package persona

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

//go:embed persona.tmpl
var defaultText string

// DefaultBudget is substituted for {{.TokenBudget}} when no budget is set.
const DefaultBudget = "the default"

// Persona is a parsed system-prompt template.
type Persona struct {
	raw  string
	tmpl *template.Template
}

type data struct {
	TokenBudget string
}

// Default returns the built-in carsharing persona.
func Default() *Persona {
	p, err := Parse(defaultText)
	if err != nil {
		panic(fmt.Sprintf("persona: embedded template is invalid: %v", err))
	}
	return p
}

// Parse compiles text as a persona template. Trailing newlines are dropped so
// that files edited with a final newline render the same as the embedded
// default.
func Parse(text string) (*Persona, error) {
	text = strings.TrimRight(text, "\r\n")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("persona: template is empty")
	}

	tmpl, err := template.New("persona").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("persona: parsing template: %w", err)
	}
	// Execute once so references to unknown fields fail here rather than on
	// every request.
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data{TokenBudget: DefaultBudget}); err != nil {
		return nil, fmt.Errorf("persona: executing template: %w", err)
	}
	return &Persona{raw: text, tmpl: tmpl}, nil
}

// FileReader reads whole files. testable.FileSystem satisfies it.
type FileReader interface {
	ReadFile(name string) ([]byte, error)
}

// Load reads and parses a persona template file through fsys.
func Load(fsys FileReader, path string) (*Persona, error) {
	b, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persona: reading %s: %w", path, err)
	}
	return Parse(string(b))
}

// Render returns the system prompt for the given token budget.
func (p *Persona) Render(maxTokens *int) string {
	var sb strings.Builder
	if err := p.tmpl.Execute(&sb, data{TokenBudget: TokenBudget(maxTokens)}); err != nil {
		// Unreachable for templates accepted by Parse.
		return p.raw
	}
	return sb.String()
}

// TokenBudget formats a budget for the prompt. A nil or zero budget reads as
// DefaultBudget, matching the upstream prompt's wording.
func TokenBudget(maxTokens *int) string {
	if maxTokens == nil || *maxTokens == 0 {
		return DefaultBudget
	}
	return strconv.Itoa(*maxTokens)
}
