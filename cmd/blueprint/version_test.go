package main

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"
)

func stubBuild(t *testing.T, v, c, d string, bi *debug.BuildInfo) {
	t.Helper()

	originalVersion, originalCommit, originalDate := version, commit, date
	originalRead := readBuildInfo
	t.Cleanup(func() {
		version, commit, date = originalVersion, originalCommit, originalDate
		readBuildInfo = originalRead
	})

	version, commit, date = v, c, d
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return bi, bi != nil
	}
}

func TestVersionCommand_LinkerValues(t *testing.T) {
	stubBuild(t, "1.2.3", "abcdef1", "2026-10-03", nil)

	res := executeCmd(t, "version")
	require.NoError(t, res.err)
	require.Equal(t, "blueprint 1.2.3 (abcdef1, built 2026-10-03)\n"+
		runtime.Version()+" "+runtime.GOOS+"/"+runtime.GOARCH+"\n", res.stdout)

	res = executeCmd(t, "version", "--short")
	require.NoError(t, res.err)
	require.Equal(t, "1.2.3\n", res.stdout)
}

func TestVersionCommand_FallsBackToModuleBuildInfo(t *testing.T) {
	stubBuild(t, "dev", "none", "unknown", &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/alexisbeaulieu97/blueprint", Version: "v0.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-09-30T12:00:00Z"},
		},
	})

	res := executeCmd(t, "version", "--json")
	require.NoError(t, res.err)

	var info buildInfo
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	require.Equal(t, "v0.4.0", info.Version)
	require.Equal(t, "0123456789ab", info.Commit)
	require.Equal(t, "2026-09-30T12:00:00Z", info.Date)
	require.Equal(t, runtime.Version(), info.GoVersion)
}

func TestVersionCommand_DevelBuildKeepsDefaults(t *testing.T) {
	stubBuild(t, "dev", "none", "unknown", &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/alexisbeaulieu97/blueprint", Version: "(devel)"},
	})

	res := executeCmd(t, "version", "--short")
	require.NoError(t, res.err)
	require.Equal(t, "dev\n", res.stdout)
}
