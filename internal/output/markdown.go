package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/davetashner/sonarstep/internal/step"
)

func init() {
	RegisterFormatter(NewMarkdownFormatter())
}

// MarkdownFormatter writes a result as a small Markdown document.
type MarkdownFormatter struct{}

// Compile-time interface check.
var _ Formatter = (*MarkdownFormatter)(nil)

// NewMarkdownFormatter returns a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Name returns the format name.
func (m *MarkdownFormatter) Name() string {
	return "markdown"
}

// Format writes res to w.
//
// The output includes:
//   - An "Answer" section, or an "Error" section on the error path
//   - The reasoning inside a collapsible <details> block, when present
//   - The routing path as a trailing footer line
func (m *MarkdownFormatter) Format(res step.Result, w io.Writer) error {
	var b strings.Builder

	if res.OK() {
		b.WriteString("## Answer\n\n")
		b.WriteString(res.OutputVars.Answer)
		b.WriteString("\n")
		if res.OutputVars.Think != "" {
			b.WriteString("\n<details>\n<summary>Reasoning</summary>\n\n")
			b.WriteString(res.OutputVars.Think)
			b.WriteString("\n\n</details>\n")
		}
	} else {
		b.WriteString("## Error\n\n")
		b.WriteString(quote(res.OutputVars.Error))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n_path: `%s`_\n", res.Next.Path)

	_, err := io.WriteString(w, b.String())
	return err
}

// quote renders s as a Markdown blockquote, one "> " prefix per line.
func quote(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}
