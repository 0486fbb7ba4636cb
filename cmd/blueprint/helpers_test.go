package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const diamondWorkflow = `name: "Content Processing Workflow"
nodes:
  - id: extract
    type: datasource
  - id: summarize
    type: llm_call
    depends_on: [extract]
    config:
      model: gpt-4-turbo
      prompt: "Summarize this text..."
      max_tokens: 500
  - id: classify
    type: llm_call
    depends_on: [extract]
    config:
      model: claude-3-haiku
      prompt: "Classify sentiment..."
      max_tokens: 200
  - id: publish
    type: output
    depends_on: [summarize, classify]
`

const cyclicWorkflow = `name: cyclic
nodes:
  - id: a
    type: loop
    depends_on: [b]
  - id: b
    type: conditional
    depends_on: [a]
`

type cmdResult struct {
	stdout string
	stderr string
	err    error
}

func executeCmd(t *testing.T, args ...string) cmdResult {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(&bytes.Buffer{})
	root.SetArgs(args)

	err := root.Execute()
	return cmdResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// syncBuffer is written by watcher goroutines and read by assertions.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func jsonUnmarshal(s string, v any) error {
	return json.Unmarshal([]byte(s), v)
}
