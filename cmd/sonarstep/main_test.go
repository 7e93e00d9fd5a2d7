package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionDefault(t *testing.T) {
	assert.Equal(t, "dev", Version)
}

func TestVersionCmd_InProcess(t *testing.T) {
	orig := Version
	Version = "v0.1.0-test"
	t.Cleanup(func() { Version = orig })

	resetFlags()
	cmd, stdout, _ := newTestCmd()
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "sonarstep v0.1.0-test\n", stdout.String())
}
