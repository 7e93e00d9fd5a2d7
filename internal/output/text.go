package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/davetashner/sonarstep/internal/step"
)

func init() {
	RegisterFormatter(NewTextFormatter())
}

// TextFormatter writes a result for humans at a terminal. The answer is
// printed plainly, reasoning is dimmed, and errors are red. Colour follows
// color.NoColor, so it is dropped automatically when stdout is not a TTY.
type TextFormatter struct {
	// ShowThink includes the reasoning block above the answer.
	ShowThink bool
}

// Compile-time interface check.
var _ Formatter = (*TextFormatter)(nil)

// NewTextFormatter returns a TextFormatter that shows reasoning.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{ShowThink: true}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format writes res to w.
func (f *TextFormatter) Format(res step.Result, w io.Writer) error {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	red := color.New(color.FgRed, color.Bold)

	if !res.OK() {
		_, err := fmt.Fprintf(w, "%s %s\n", red.Sprint("Error:"), res.OutputVars.Error)
		return err
	}

	if f.ShowThink && res.OutputVars.Think != "" {
		if _, err := fmt.Fprintf(w, "%s\n%s\n\n", bold.Sprint("Thinking"), dim.Sprint(res.OutputVars.Think)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, res.OutputVars.Answer)
	return err
}
