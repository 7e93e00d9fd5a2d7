package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/sonarstep/internal/step"
	"github.com/davetashner/sonarstep/internal/testable"
)

func batchLines(t *testing.T, out string) []step.Result {
	t.Helper()
	var results []step.Result
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		results = append(results, decodeResult(t, sc.Text()))
	}
	require.NoError(t, sc.Err())
	return results
}

func TestBatch_PreservesInputOrder(t *testing.T) {
	isolate(t)
	api := newFakeAPI(t)

	var in strings.Builder
	for i := range 20 {
		fmt.Fprintf(&in, `{"inputVars":{"prompt":"q%d","perplexityApiKey":"sk-test"}}`+"\n", i)
	}

	cmd, stdout, _ := newTestCmd()
	cmd.SetIn(strings.NewReader(in.String()))
	cmd.SetArgs([]string{"batch", "--base-url", api.URL, "--concurrency", "5"})

	require.NoError(t, cmd.Execute())

	results := batchLines(t, stdout.String())
	require.Len(t, results, 20)
	for i, res := range results {
		assert.Equal(t, fmt.Sprintf("answer: q%d", i), res.OutputVars.Answer)
	}
	assert.Equal(t, 20, api.requestCount())
}

func TestBatch_MixedResultsExitTwo(t *testing.T) {
	isolate(t)
	api := newFakeAPI(t)

	input := strings.Join([]string{
		`{"prompt":"ok","perplexityApiKey":"sk-test"}`,
		``,
		`{"prompt":"please fail","perplexityApiKey":"sk-test"}`,
		`{"prompt":"no key"}`,
	}, "\n")

	cmd, stdout, _ := newTestCmd()
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs([]string{"batch", "--base-url", api.URL})

	err := cmd.Execute()
	requireExitCode(t, err, ExitStepError)
	assert.Contains(t, err.Error(), "2 of 3 runs routed to error")

	results := batchLines(t, stdout.String())
	require.Len(t, results, 3)
	assert.Equal(t, step.PathSuccess, results[0].Next.Path)
	assert.Equal(t, "quota exceeded", results[1].OutputVars.Error)
	assert.Equal(t, step.MsgMissingAPIKey, results[2].OutputVars.Error)
	assert.Equal(t, 2, api.requestCount())
}

func TestBatch_DefaultKeyFillsMissing(t *testing.T) {
	isolate(t)
	api := newFakeAPI(t)

	cmd, _, _ := newTestCmd()
	cmd.SetIn(strings.NewReader(`{"prompt":"a"}` + "\n" + `{"prompt":"b","perplexityApiKey":"sk-own"}` + "\n"))
	cmd.SetArgs([]string{"batch", "--base-url", api.URL, "--api-key", "sk-flag", "-c", "1"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, []string{"sk-flag", "sk-own"}, api.keys)
}

func TestBatch_FromFileToFile(t *testing.T) {
	dir := isolate(t)
	api := newFakeAPI(t)
	in := filepath.Join(dir, "in.jsonl")
	out := filepath.Join(dir, "out.jsonl")
	require.NoError(t, os.WriteFile(in, []byte(`{"inputVars":{"prompt":"x","perplexityApiKey":"sk-test"}}`+"\n"), 0o600))

	cmd, stdout, _ := newTestCmd()
	cmd.SetArgs([]string{"batch", "--base-url", api.URL, "-o", out, in})

	require.NoError(t, cmd.Execute())
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	results := batchLines(t, string(data))
	require.Len(t, results, 1)
	assert.Equal(t, "answer: x", results[0].OutputVars.Answer)
}

func TestBatch_MalformedLineRunsNothing(t *testing.T) {
	isolate(t)
	api := newFakeAPI(t)

	cmd, stdout, _ := newTestCmd()
	cmd.SetIn(strings.NewReader(`{"prompt":"a","perplexityApiKey":"sk-test"}` + "\n\n" + `{broken` + "\n"))
	cmd.SetArgs([]string{"batch", "--base-url", api.URL})

	err := cmd.Execute()
	requireExitCode(t, err, ExitInvalidArgs)
	assert.Contains(t, err.Error(), "line 3")
	assert.Empty(t, stdout.String())
	assert.Zero(t, api.requestCount())
}

func TestBatch_EmptyInput(t *testing.T) {
	isolate(t)
	cmd, stdout, _ := newTestCmd()
	cmd.SetIn(strings.NewReader("\n  \n"))
	cmd.SetArgs([]string{"batch"})

	require.NoError(t, cmd.Execute())
	assert.Empty(t, stdout.String())
}

func TestBatch_NegativeConcurrency(t *testing.T) {
	isolate(t)
	cmd, _, _ := newTestCmd()
	cmd.SetArgs([]string{"batch", "--concurrency", "-1"})

	err := cmd.Execute()
	requireExitCode(t, err, ExitInvalidArgs)
}

func TestBatch_OpenError(t *testing.T) {
	isolate(t)
	withMockFS(t, &testable.MockFileSystem{
		OpenFn: func(string) (*os.File, error) {
			return nil, fmt.Errorf("mock open error")
		},
	})

	cmd, _, _ := newTestCmd()
	cmd.SetArgs([]string{"batch", "in.jsonl"})

	err := cmd.Execute()
	requireExitCode(t, err, ExitInvalidArgs)
	assert.Contains(t, err.Error(), "cannot read input")
}

func TestParseBatch_LineTooLong(t *testing.T) {
	long := `{"prompt":"` + strings.Repeat("a", maxBatchLine) + `"}`
	_, err := parseBatch(strings.NewReader(long))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading input")
}
