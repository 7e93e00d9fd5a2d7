package main

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootHelp(t *testing.T) {
	resetFlags()
	cmd, stdout, _ := newTestCmd()
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	out := stdout.String()
	assert.Contains(t, out, "carsharing")
	for _, sub := range []string{"ask", "batch", "serve", "mcp", "config", "version"} {
		assert.Contains(t, out, sub, "root help missing %s subcommand", sub)
	}
}

func TestGlobalFlags(t *testing.T) {
	for _, name := range []string{"verbose", "quiet", "no-color", "log-format", "api-key", "base-url", "persona-file", "timeout"} {
		t.Run(name, func(t *testing.T) {
			assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "global flag --%s not registered", name)
		})
	}

	v := rootCmd.PersistentFlags().ShorthandLookup("v")
	require.NotNil(t, v)
	assert.Equal(t, "verbose", v.Name)
	q := rootCmd.PersistentFlags().ShorthandLookup("q")
	require.NotNil(t, q)
	assert.Equal(t, "quiet", q.Name)
}

func TestNoColorFlag(t *testing.T) {
	orig := color.NoColor
	t.Cleanup(func() { color.NoColor = orig })
	color.NoColor = false

	resetFlags()
	cmd, _, _ := newTestCmd()
	cmd.SetArgs([]string{"--no-color", "version"})
	require.NoError(t, cmd.Execute())

	assert.True(t, color.NoColor)
}

func TestUnknownSubcommand(t *testing.T) {
	resetFlags()
	cmd, _, _ := newTestCmd()
	cmd.SetArgs([]string{"frobnicate"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown command"))
}
