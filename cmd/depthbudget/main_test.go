package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fyrsmithlabs/depthbudget/internal/budget"
	"github.com/fyrsmithlabs/depthbudget/internal/sweep"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with args in an isolated home directory.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func findCommand(root *cobra.Command, name string) *cobra.Command {
	for _, c := range root.Commands() {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()
	assert.Equal(t, "depthbudget", root.Use)
	assert.NotEmpty(t, root.Short)
	assert.NotEmpty(t, root.Long)
	assert.Equal(t, version, root.Version)

	for _, flag := range []string{"config", "log-level", "log-format"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "missing --%s", flag)
	}

	tests := []struct {
		name  string
		flags []string
	}{
		{"run", []string{"policy", "branching", "budget", "node-limit", "json"}},
		{"sweep", []string{"policy", "branching", "from", "to", "parallelism", "node-limit", "format"}},
		{"serve", []string{"host", "port"}},
		{"policies", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := findCommand(root, tt.name)
			require.NotNil(t, cmd, "subcommand %s not registered", tt.name)
			assert.NotEmpty(t, cmd.Short)
			for _, flag := range tt.flags {
				assert.NotNil(t, cmd.Flags().Lookup(flag), "missing --%s", flag)
			}
		})
	}
}

func TestRunCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"legacy", []string{"run", "--budget", "10"}, "90\n"},
		{"severity", []string{"run", "-p", "severity", "-d", "10"}, "60\n"},
		{"alias", []string{"run", "--policy", "current", "--budget", "4"}, "18\n"},
		{"zero budget", []string{"run", "--budget", "0"}, "0\n"},
		{"binary", []string{"run", "--branching", "2", "--budget", "1"}, "2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRunCommand_JSON(t *testing.T) {
	out, err := execute(t, "run", "--policy", "severity", "--budget", "10", "--json")
	require.NoError(t, err)

	var res budget.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, budget.PolicySeverity, res.Policy)
	assert.Equal(t, uint64(3), res.Branching)
	assert.Equal(t, uint64(10), res.InitialBudget)
	assert.Equal(t, uint64(60), res.Nodes)
	assert.Equal(t, uint64(123), res.Overflows)
}

func TestRunCommand_Errors(t *testing.T) {
	_, err := execute(t, "run", "--policy", "bogus", "--budget", "3")
	require.Error(t, err)
	assert.ErrorIs(t, err, budget.ErrUnknownPolicy)

	_, err = execute(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "budget")

	_, err = execute(t, "run", "--budget", "11", "--node-limit", "100")
	require.Error(t, err)
	assert.ErrorIs(t, err, budget.ErrNodeLimitExceeded)
}

func TestSweepCommand_Text(t *testing.T) {
	out, err := execute(t, "sweep", "--to", "4")
	require.NoError(t, err)

	assert.Contains(t, out, "# policy=legacy branching=3")
	assert.Contains(t, out, "# policy=severity branching=3")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// Two headers, four rows each, one blank separator.
	assert.Len(t, lines, 11)
}

func TestSweepCommand_JSON(t *testing.T) {
	out, err := execute(t, "sweep", "--policy", "severity", "--from", "8", "--to", "12", "--format", "json")
	require.NoError(t, err)

	var report sweep.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, uint64(8), report.From)
	assert.Equal(t, uint64(12), report.To)
	require.Len(t, report.Series, 1)

	series := report.Series[0]
	assert.Equal(t, budget.PolicySeverity, series.Policy)
	require.Len(t, series.Rows, 4)
	counts := make([]uint64, 0, len(series.Rows))
	for _, row := range series.Rows {
		counts = append(counts, row.Count)
	}
	assert.Equal(t, []uint64{42, 51, 60, 69}, counts)
}

func TestSweepCommand_Errors(t *testing.T) {
	_, err := execute(t, "sweep", "--format", "xml")
	require.Error(t, err)
	assert.ErrorIs(t, err, sweep.ErrUnknownFormat)

	_, err = execute(t, "sweep", "--from", "5", "--to", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestPoliciesCommand(t *testing.T) {
	out, err := execute(t, "policies")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "legacy"))
	assert.True(t, strings.HasPrefix(lines[1], "severity"))
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "sweep:\n  branching: 2\n  format: json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	out, err := execute(t, "--config", path, "run", "--budget", "1")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	// Flags win over the file.
	out, err = execute(t, "--config", path, "run", "--branching", "3", "--budget", "1")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	out, err = execute(t, "--config", path, "sweep", "--to", "2")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)), "config format should select json output")
}

func TestConfigFile_Missing(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "policies")
	require.Error(t, err)
}

func TestLogLevelFlag_Invalid(t *testing.T) {
	_, err := execute(t, "--log-level", "loud", "policies")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging config")
}
