package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/blueprint/internal/validation"
)

func TestValidateCommand_ValidWorkflow(t *testing.T) {
	path := writeFile(t, t.TempDir(), "diamond.yaml", diamondWorkflow)

	res := executeCmd(t, "validate", path)
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "✔ "+path)
	require.Contains(t, res.stdout, "Estimated cost: $")
}

func TestValidateCommand_InvalidWorkflowExitsOne(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cyclic.yaml", cyclicWorkflow)

	res := executeCmd(t, "validate", path)
	require.Error(t, res.err)
	require.Equal(t, exitFailure, exitCode(res.err))
	require.Contains(t, res.stdout, "✖ "+path)
	require.Contains(t, res.stdout, validation.MsgCycle)
	require.Contains(t, res.err.Error(), "1 of 1 workflows are invalid")
}

func TestValidateCommand_GlobAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "flows/a/diamond.yaml", diamondWorkflow)
	writeFile(t, dir, "flows/b/cyclic.yml", cyclicWorkflow)

	res := executeCmd(t, "validate", filepath.Join(dir, "flows", "**", "*.y*ml"))
	require.Equal(t, exitFailure, exitCode(res.err))
	require.Contains(t, res.stdout, "diamond.yaml")
	require.Contains(t, res.stdout, "cyclic.yml")
	require.Contains(t, res.err.Error(), "1 of 2 workflows are invalid")
}

func TestValidateCommand_LoadFailuresExitTwo(t *testing.T) {
	dir := t.TempDir()
	broken := writeFile(t, dir, "broken.yaml", "nodes: [")

	res := executeCmd(t, "validate", broken)
	require.Equal(t, exitUsage, exitCode(res.err))
	require.Contains(t, res.stdout, "✖ "+broken)

	res = executeCmd(t, "validate", filepath.Join(dir, "missing-*.yaml"))
	require.Equal(t, exitUsage, exitCode(res.err))

	valid := writeFile(t, dir, "diamond.yaml", diamondWorkflow)
	res = executeCmd(t, "validate", "--policy", filepath.Join(dir, "nope.yaml"), valid)
	require.Equal(t, exitUsage, exitCode(res.err))

	dup := writeFile(t, dir, "dup.yaml", "name: dup\nnodes:\n  - id: a\n    type: datasource\n  - id: a\n    type: output\n")
	res = executeCmd(t, "validate", dup)
	require.Equal(t, exitUsage, exitCode(res.err))
	require.Contains(t, res.stdout, "nodes must have unique ids")
}

func TestValidateCommand_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	valid := writeFile(t, dir, "diamond.yaml", diamondWorkflow)
	cyclic := writeFile(t, dir, "cyclic.yaml", cyclicWorkflow)

	res := executeCmd(t, "validate", "--json", valid, cyclic)
	require.Equal(t, exitFailure, exitCode(res.err))

	var reports []struct {
		File   string `json:"file"`
		Result struct {
			Valid         bool     `json:"valid"`
			Errors        []string `json:"errors"`
			Warnings      []string `json:"warnings"`
			EstimatedCost float64  `json:"estimated_cost"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &reports))
	require.Len(t, reports, 2)
	require.Equal(t, valid, reports[0].File)
	require.True(t, reports[0].Result.Valid)
	require.Greater(t, reports[0].Result.EstimatedCost, 0.0)
	require.False(t, reports[1].Result.Valid)
	require.Contains(t, reports[1].Result.Errors, validation.MsgCycle)
}

func TestValidateCommand_CheckResources(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scripted.yaml", `name: scripted
nodes:
  - id: run
    type: custom_code
    config:
      script: missing.py
`)

	res := executeCmd(t, "validate", path)
	require.NoError(t, res.err)

	res = executeCmd(t, "validate", "--check-resources", path)
	require.Equal(t, exitFailure, exitCode(res.err))
	require.Contains(t, res.stdout, "Node 'run' references invalid script")

	writeFile(t, dir, "missing.py", "print('ok')\n")
	res = executeCmd(t, "validate", "--check-resources", path)
	require.NoError(t, res.err)
}

func TestValidateCommand_WritesMetricsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cyclic.yaml", cyclicWorkflow)
	metricsPath := filepath.Join(dir, "metrics.prom")

	res := executeCmd(t, "--metrics-file", metricsPath, "validate", path)
	require.Equal(t, exitFailure, exitCode(res.err))

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	require.Contains(t, string(data), `blueprint_validations_total{outcome="invalid"} 1`)
}

func TestRootCommand_RejectsUnknownLogFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "diamond.yaml", diamondWorkflow)

	res := executeCmd(t, "--log-format", "xml", "validate", path)
	require.Equal(t, exitUsage, exitCode(res.err))
	require.Contains(t, res.err.Error(), "invalid --log-format")
}

func TestRootCommand_VerboseJSONLogsCarryCorrelationID(t *testing.T) {
	path := writeFile(t, t.TempDir(), "diamond.yaml", diamondWorkflow)

	res := executeCmd(t, "--verbose", "--log-format", "json", "validate", path)
	require.NoError(t, res.err)
	require.Contains(t, res.stderr, `"message":"workflow validated"`)
	require.Contains(t, res.stderr, `"correlation_id":"`)
	require.Contains(t, res.stderr, `"command":"validate"`)
}
