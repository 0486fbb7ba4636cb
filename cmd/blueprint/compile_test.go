package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/blueprint/internal/validation"
)

func TestCompileCommand_PrintsPlan(t *testing.T) {
	path := writeFile(t, t.TempDir(), "diamond.yaml", diamondWorkflow)

	res := executeCmd(t, "compile", path)
	require.NoError(t, res.err)

	out := res.stdout
	require.Contains(t, out, "Execution plan: Content Processing Workflow")
	require.Contains(t, out, "Order: extract → classify → summarize → publish")
	require.Contains(t, out, "Level 0: extract")
	require.Contains(t, out, "Level 1: classify, summarize (parallel)")
	require.Contains(t, out, "Level 2: publish")
	require.Contains(t, out, "Nodes: 4 across 3 levels (2 parallelizable)")
	require.Contains(t, out, "Estimated duration: 4250ms")
	require.Contains(t, out, "  summarize (gpt-4-turbo, level 1): $0.0151")
	require.Contains(t, out, "  classify (claude-3-haiku, level 1): $0.0003")
	require.Contains(t, out, "Fingerprint: ")
}

func TestCompileCommand_JSONOutput(t *testing.T) {
	path := writeFile(t, t.TempDir(), "diamond.yaml", diamondWorkflow)

	res := executeCmd(t, "compile", "--json", path)
	require.NoError(t, res.err)

	var report struct {
		Workflow   string `json:"workflow"`
		Validation struct {
			Valid bool `json:"valid"`
		} `json:"validation"`
		Plan struct {
			ExecutionOrder []string `json:"execution_order"`
			ParallelGroups []struct {
				Level    int      `json:"level"`
				Nodes    []string `json:"nodes"`
				Parallel bool     `json:"parallel"`
			} `json:"parallel_groups"`
			EstimatedDurationMS int `json:"estimated_duration_ms"`
		} `json:"plan"`
		CostBreakdown []struct {
			NodeID       string  `json:"node_id"`
			Model        string  `json:"model"`
			OutputTokens float64 `json:"output_tokens"`
			KnownModel   bool    `json:"known_model"`
			Cost         float64 `json:"cost"`
		} `json:"cost_breakdown"`
		Fingerprint string `json:"fingerprint"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))

	require.Equal(t, "Content Processing Workflow", report.Workflow)
	require.True(t, report.Validation.Valid)
	require.Equal(t, []string{"extract", "classify", "summarize", "publish"}, report.Plan.ExecutionOrder)
	require.Len(t, report.Plan.ParallelGroups, 3)
	require.True(t, report.Plan.ParallelGroups[1].Parallel)
	require.Equal(t, 4250, report.Plan.EstimatedDurationMS)
	require.Len(t, report.Fingerprint, 64)

	require.Len(t, report.CostBreakdown, 2)
	require.Equal(t, "summarize", report.CostBreakdown[0].NodeID)
	require.Equal(t, "gpt-4-turbo", report.CostBreakdown[0].Model)
	require.Equal(t, 500.0, report.CostBreakdown[0].OutputTokens)
	require.True(t, report.CostBreakdown[0].KnownModel)
	require.InDelta(t, 0.0150575, report.CostBreakdown[0].Cost, 1e-9)
	require.Equal(t, "classify", report.CostBreakdown[1].NodeID)

	again := executeCmd(t, "compile", "--json", path)
	require.NoError(t, again.err)
	require.JSONEq(t, res.stdout, again.stdout)
}

func TestCompileCommand_InvalidWorkflowAborts(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cyclic.yaml", cyclicWorkflow)

	res := executeCmd(t, "compile", path)
	require.Equal(t, exitFailure, exitCode(res.err))
	require.Contains(t, res.err.Error(), "Validation failed: "+validation.MsgCycle)
	require.Contains(t, res.stderr, validation.MsgCycle)
	require.NotContains(t, res.stdout, "Execution plan")

	empty := writeFile(t, dir, "empty.yaml", "name: empty\nnodes: []\n")
	res = executeCmd(t, "compile", empty)
	require.Equal(t, exitFailure, exitCode(res.err))
	require.Contains(t, res.err.Error(), validation.MsgNoNodes)
}

func TestCompileCommand_DuplicateIDRejected(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dup.yaml", `name: dup
nodes:
  - id: a
    type: datasource
  - id: b
    type: custom_code
    depends_on: [a]
  - id: a
    type: llm_call
`)

	res := executeCmd(t, "compile", path)
	require.Equal(t, exitUsage, exitCode(res.err))
	require.Contains(t, res.err.Error(), "nodes must have unique ids")
	require.NotContains(t, res.stdout, "Execution plan")
}

func TestCompileCommand_FractionalMaxTokens(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fraction.yaml", `name: fraction
nodes:
  - id: draft
    type: llm_call
    config:
      model: gpt-4-turbo
      max_tokens: 0.9
`)

	res := executeCmd(t, "compile", "--json", path)
	require.NoError(t, res.err)

	var report struct {
		CostBreakdown []struct {
			OutputTokens float64 `json:"output_tokens"`
		} `json:"cost_breakdown"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))
	require.Len(t, report.CostBreakdown, 1)
	require.Equal(t, 0.9, report.CostBreakdown[0].OutputTokens)
}

func TestCompileCommand_Budget(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "diamond.yaml", diamondWorkflow)

	res := executeCmd(t, "compile", "--budget", "0.0001", path)
	require.Equal(t, exitFailure, exitCode(res.err))
	require.Contains(t, res.err.Error(), "exceeds budget $0.0001")

	res = executeCmd(t, "compile", "--budget", "10", path)
	require.NoError(t, res.err)

	strict := writeFile(t, dir, "strict.yaml", "budget: 0.0001\n")
	res = executeCmd(t, "compile", "--policy", strict, path)
	require.Equal(t, exitFailure, exitCode(res.err))

	res = executeCmd(t, "compile", "--policy", strict, "--budget", "10", path)
	require.NoError(t, res.err, "flag overrides the policy budget")
}

func TestCompileCommand_ConfigurationErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "diamond.yaml", diamondWorkflow)

	res := executeCmd(t, "compile", writeFile(t, dir, "broken.json", "{"))
	require.Equal(t, exitUsage, exitCode(res.err))

	res = executeCmd(t, "compile", "--policy", writeFile(t, dir, "bad-policy.yaml", "cost_margin: 0.5\n"), path)
	require.Equal(t, exitUsage, exitCode(res.err))

	res = executeCmd(t, "compile", path, "extra")
	require.Equal(t, exitFailure, exitCode(res.err))
}

func TestCompileCommand_InteractiveRequiresTerminal(t *testing.T) {
	original := isTerminal
	t.Cleanup(func() { isTerminal = original })
	isTerminal = func() bool { return false }

	path := writeFile(t, t.TempDir(), "diamond.yaml", diamondWorkflow)

	res := executeCmd(t, "compile", "--interactive", path)
	require.Equal(t, exitUsage, exitCode(res.err))
	require.Contains(t, res.err.Error(), "requires stdout to be a terminal")
}

func TestCompileCommand_PolicyDurations(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "diamond.yaml", diamondWorkflow)
	pol := writeFile(t, dir, "policy.yaml", "durations:\n  by_type:\n    llm_call: 1000\n")

	res := executeCmd(t, "compile", "--policy", pol, path)
	require.NoError(t, res.err)
	// 200 + 1000 + 1000 + 50
	require.Contains(t, res.stdout, "Estimated duration: 2250ms")
}
