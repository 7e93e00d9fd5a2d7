package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/davetashner/sonarstep/internal/testable"
)

// newTestCmd redirects rootCmd's I/O into fresh buffers and returns it.
func newTestCmd() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(strings.NewReader(""))
	// ExecuteContext leaves its context on rootCmd; a cancelled one would
	// leak into the next test.
	rootCmd.SetContext(context.Background())
	return rootCmd, stdout, stderr
}

// resetFlags restores every flag to its default so tests sharing rootCmd do
// not leak state into each other.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		f.Changed = false
		_ = f.Value.Set(f.DefValue)
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range []*cobra.Command{askCmd, batchCmd, serveCmd, mcpServeCmd} {
		c.Flags().VisitAll(reset)
	}
	resetConfigFlags()
}

// isolate runs the test in an empty directory with an empty global config
// and no API key in the environment.
func isolate(t *testing.T) string {
	t.Helper()
	resetFlags()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PERPLEXITY_API_KEY", "")
	return dir
}

// withMockFS swaps cmdFS with the given mock and restores it on test cleanup.
func withMockFS(t *testing.T, mock *testable.MockFileSystem) {
	t.Helper()
	orig := cmdFS
	cmdFS = mock
	t.Cleanup(func() { cmdFS = orig })
}

// fakeAPI is a stand-in for the Perplexity chat-completions endpoint. Prompts
// containing "fail" get a provider error; every other prompt is answered
// with "<think>reasoning</think>answer: <prompt>".
type fakeAPI struct {
	*httptest.Server

	mu        sync.Mutex
	requests  int
	maxTokens []any
	keys      []string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			MaxTokens any `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		f.requests++
		f.maxTokens = append(f.maxTokens, body.MaxTokens)
		f.keys = append(f.keys, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		f.mu.Unlock()

		prompt := ""
		if len(body.Messages) > 0 {
			prompt = body.Messages[len(body.Messages)-1].Content
		}

		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(prompt, "fail") {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprint(w, `{"error":{"message":"quota exceeded"}}`)
			return
		}
		content, _ := json.Marshal("<think>reasoning</think>answer: " + prompt)
		_, _ = fmt.Fprintf(w, `{"choices":[{"message":{"content":%s}}]}`, content)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAPI) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func disableColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}
