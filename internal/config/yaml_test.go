// Copyright 2026 The Sonarstep Authors
// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Empty(t, cfg.OutputFormat)
}

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	content := `
base_url: http://127.0.0.1:5000
output_format: json
timeout: 30s
persona_file: ./persona.txt
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:5000", cfg.BaseURL)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, "30s", cfg.Timeout)
	assert.Equal(t, "./persona.txt", cfg.PersonaFile)
}

func TestLoad_TOMLFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, TOMLFileName),
		[]byte("output_format = \"markdown\"\nlisten = \":7070\"\n"), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "markdown", cfg.OutputFormat)
	assert.Equal(t, ":7070", cfg.Listen)
}

func TestLoad_YAMLPreferredOverTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("output_format: text\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, TOMLFileName), []byte("output_format = \"markdown\"\n"), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.OutputFormat)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{{invalid yaml"), 0o600))

	cfg, err := Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), FileName)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, TOMLFileName), []byte("output_format = "), 0o600))

	cfg, err := Load(dir)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(""), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Empty(t, cfg.OutputFormat)
}

func TestLoad_PermissionError(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("output_format: json"), 0o600))

	require.NoError(t, os.Chmod(path, 0o000))
	t.Cleanup(func() {
		_ = os.Chmod(path, 0o600)
	})

	cfg, err := Load(dir)
	assert.Error(t, err, "should fail when file is unreadable")
	assert.Nil(t, cfg)
}

func TestLoadRaw_MissingFile(t *testing.T) {
	m, err := LoadRaw(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestWriteFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	require.NoError(t, WriteFile(path, map[string]any{"output_format": "text", "concurrency": 3}))

	m, err := LoadRaw(path)
	require.NoError(t, err)
	assert.Equal(t, "text", m["output_format"])
	assert.Equal(t, 3, m["concurrency"])

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Concurrency)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &Config{OutputFormat: "json", Listen: ":8080"}))
	assert.Contains(t, buf.String(), "output_format: json\n")
	assert.NotContains(t, buf.String(), "base_url")

	var decoded Config
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, ":8080", decoded.Listen)
}
