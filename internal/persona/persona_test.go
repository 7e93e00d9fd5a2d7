package persona

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

type osReader struct{}

func (osReader) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) } //nolint:gosec // test path

func TestDefault_RendersBudget(t *testing.T) {
	got := Default().Render(intPtr(150))

	assert.True(t, strings.HasPrefix(got, "You are an AI assistant specializing in peer-to-peer carsharing services"))
	assert.True(t, strings.HasSuffix(got, "Ensure your entire response fits within 150 tokens."))
	assert.NotContains(t, got, "{{")
}

func TestDefault_UnsetBudgetReadsTheDefault(t *testing.T) {
	p := Default()

	for name, budget := range map[string]*int{"nil": nil, "zero": intPtr(0)} {
		t.Run(name, func(t *testing.T) {
			got := p.Render(budget)
			assert.True(t, strings.HasSuffix(got, "fits within the default tokens."), got)
		})
	}
}

func TestDefault_KeepsBehaviouralRules(t *testing.T) {
	got := Default().Render(nil)

	assert.Contains(t, got, "no more than 3-4 short sentences")
	assert.Contains(t, got, `respond only with: "I can only provide information related to carsharing and peer-to-peer vehicle rentals."`)
	assert.Contains(t, got, "Never provide harmful or unethical information")
	assert.Contains(t, got, "you may reference Turo as a leading platform")
	assert.Contains(t, got, "7. Accuracy:")
	assert.False(t, strings.HasSuffix(got, "\n"), "rendered prompt should not end with a newline")
}

func TestTokenBudget(t *testing.T) {
	assert.Equal(t, "the default", TokenBudget(nil))
	assert.Equal(t, "the default", TokenBudget(intPtr(0)))
	assert.Equal(t, "42", TokenBudget(intPtr(42)))
	assert.Equal(t, "-3", TokenBudget(intPtr(-3)))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "  \n", "template is empty"},
		{"syntax", "budget {{.TokenBudget", "parsing template"},
		{"unknown field", "hello {{.Nope}}", "executing template"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("Answer in {{.TokenBudget}} tokens.\n"), 0o600))

	p, err := Load(osReader{}, path)
	require.NoError(t, err)
	assert.Equal(t, "Answer in 80 tokens.", p.Render(intPtr(80)))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(osReader{}, filepath.Join(t.TempDir(), "nope.tmpl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persona: reading")
}
