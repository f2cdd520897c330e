package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// runCommand executes the root command with args and returns its stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// writeConfig writes a project config file and returns its path.
func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	p := filepath.Join(dir, ".coopsweep.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// writeRun writes a result file. Each entry of steps lists the agent
// strategies of one step and clusters holds that step's cluster count.
func writeRun(t *testing.T, dir, name, header string, steps [][]string, clusters []int) string {
	t.Helper()
	var b strings.Builder
	if header != "" {
		b.WriteString(header + "\n")
	}
	b.WriteString("step,agent,strategy,cooperatorClusters\n")
	for step, strategies := range steps {
		for agent, s := range strategies {
			fmt.Fprintf(&b, "%d,%d,%s,%d\n", step, agent, s, clusters[step])
		}
	}
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(b.String()), 0o644))
	return p
}

// sweepDoc mirrors the JSON written by the sweep command.
type sweepDoc struct {
	Sweeps []struct {
		Name   string `json:"name"`
		Points []struct {
			Source              string   `json:"source"`
			Label               string   `json:"label"`
			Parameter           float64  `json:"parameter"`
			FinalCooperationPct float64  `json:"final_cooperation_pct"`
			FinalClusterCount   *float64 `json:"final_cluster_count"`
		} `json:"points"`
		Skipped []struct {
			Source string `json:"source"`
			Stage  string `json:"stage"`
		} `json:"skipped"`
		Summary []map[string]any `json:"summary"`
	} `json:"sweeps"`
}
