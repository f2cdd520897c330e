package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ratioFixture writes two ratio runs and one file whose name carries no
// parameter. It returns the data directory and an empty config file.
func ratioFixture(t *testing.T) (dataDir, cfgPath string) {
	t.Helper()
	dataDir = t.TempDir()
	writeRun(t, dataDir, "ratio80.csv", "", [][]string{{"C", "C"}, {"C", "D"}}, []int{2, 1})
	writeRun(t, dataDir, "ratio20.csv", "", [][]string{{"C", "D"}, {"C", "C"}}, []int{1, 3})
	writeRun(t, dataDir, "ratioX.csv", "", [][]string{{"C"}}, []int{1})
	cfgPath = writeConfig(t, t.TempDir(), "")
	return dataDir, cfgPath
}

func TestSweepCommand_PresetJSON(t *testing.T) {
	dataDir, cfgPath := ratioFixture(t)

	out, err := runCommand(t, "sweep", "ratio", "--config", cfgPath, "--dir", dataDir, "--format", "json")
	require.NoError(t, err)

	var doc sweepDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Sweeps, 1)
	s := doc.Sweeps[0]
	assert.Equal(t, "ratio", s.Name)

	require.Len(t, s.Points, 2)
	assert.Equal(t, 20.0, s.Points[0].Parameter)
	assert.Equal(t, 100.0, s.Points[0].FinalCooperationPct)
	require.NotNil(t, s.Points[0].FinalClusterCount)
	assert.Equal(t, 3.0, *s.Points[0].FinalClusterCount)
	assert.Equal(t, filepath.Join(dataDir, "ratio20.csv"), s.Points[0].Source)
	assert.Equal(t, 80.0, s.Points[1].Parameter)
	assert.Equal(t, 50.0, s.Points[1].FinalCooperationPct)

	require.Len(t, s.Skipped, 1)
	assert.Equal(t, filepath.Join(dataDir, "ratioX.csv"), s.Skipped[0].Source)
	assert.Equal(t, "extract", s.Skipped[0].Stage)
}

func TestSweepCommand_Strict(t *testing.T) {
	dataDir, cfgPath := ratioFixture(t)

	out, err := runCommand(t, "sweep", "ratio", "--config", cfgPath, "--dir", dataDir, "--format", "json", "--strict")
	require.Error(t, err)

	var skippedErr *SkippedFilesError
	require.True(t, errors.As(err, &skippedErr), "expected SkippedFilesError, got %v", err)
	assert.Equal(t, 1, skippedErr.Count)

	var doc sweepDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc), "output is written before the strict check")
	assert.Len(t, doc.Sweeps[0].Points, 2)
}

func TestSweepCommand_Table(t *testing.T) {
	dataDir, cfgPath := ratioFixture(t)

	out, err := runCommand(t, "sweep", "ratio", "--config", cfgPath, "--dir", dataDir, "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "PARAMETER  COOP %  CLUSTERS  FILE\n")
	assert.Contains(t, out, "2 point(s), 1 skipped")
	assert.NotContains(t, out, "== ratio ==", "a single sweep has no section header")
}

func TestSweepCommand_AdhocHeader(t *testing.T) {
	dataDir := t.TempDir()
	writeRun(t, dataDir, "baseline-high.csv", "# coopRatio = 0,7", [][]string{{"C", "C"}}, []int{1})
	writeRun(t, dataDir, "baseline-low.csv", "# coopRatio = 0,35", [][]string{{"C", "D"}}, []int{1})
	cfgPath := writeConfig(t, t.TempDir(), "")

	out, err := runCommand(t, "sweep",
		"--config", cfgPath,
		"--dir", dataDir,
		"--glob", "baseline-*.csv",
		"--header-pattern", `coopRatio\s*=\s*([0-9]+(?:,[0-9]+)?)`,
		"--scale", "100",
		"--format", "json")
	require.NoError(t, err)

	var doc sweepDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Sweeps, 1)
	assert.Equal(t, "adhoc", doc.Sweeps[0].Name)
	require.Len(t, doc.Sweeps[0].Points, 2)
	assert.InDelta(t, 35.0, doc.Sweeps[0].Points[0].Parameter, 1e-9)
	assert.Equal(t, 50.0, doc.Sweeps[0].Points[0].FinalCooperationPct)
	assert.InDelta(t, 70.0, doc.Sweeps[0].Points[1].Parameter, 1e-9)
}

func TestSweepCommand_AllConfigured(t *testing.T) {
	dataDir, cfgPath := ratioFixture(t)

	out, err := runCommand(t, "sweep", "--config", cfgPath, "--dir", dataDir, "--format", "json")
	require.NoError(t, err)

	var doc sweepDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Sweeps, 1, "sweeps without files are left out")
	assert.Equal(t, "ratio", doc.Sweeps[0].Name)
}

func TestSweepCommand_ConfiguredSweep(t *testing.T) {
	dataDir := t.TempDir()
	writeRun(t, dataDir, "noise10.csv", "", [][]string{{"C", "D"}}, []int{1})
	writeRun(t, dataDir, "noise10b.csv", "", [][]string{{"C", "C"}}, []int{1})
	cfgPath := writeConfig(t, t.TempDir(), `
paths:
  output: `+dataDir+`
sweeps:
  - name: noise
    glob: "noise*.csv"
    extractor:
      type: filename
      params:
        pattern: 'noise(\d+)'
        scale: 0.01
`)

	out, err := runCommand(t, "sweep", "noise", "--config", cfgPath, "--format", "json", "--summary")
	require.NoError(t, err)

	var doc sweepDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Sweeps[0].Points, 2)
	assert.InDelta(t, 0.1, doc.Sweeps[0].Points[0].Parameter, 1e-9)

	require.Len(t, doc.Sweeps[0].Summary, 1)
	assert.Equal(t, 2.0, doc.Sweeps[0].Summary[0]["runs"])
	assert.InDelta(t, 75.0, doc.Sweeps[0].Summary[0]["mean_cooperation_pct"], 1e-9)
}

func TestSweepCommand_Errors(t *testing.T) {
	dataDir, cfgPath := ratioFixture(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown sweep", []string{"sweep", "nope"}, `unknown sweep "nope"`},
		{"names with glob", []string{"sweep", "ratio", "--glob", "*.csv", "--filename-pattern", `(\d+)`}, "cannot be combined"},
		{"glob without pattern", []string{"sweep", "--glob", "*.csv"}, "--filename-pattern or --header-pattern is required"},
		{"pattern without glob", []string{"sweep", "--filename-pattern", `(\d+)`}, "--glob is required"},
		{"invalid regex", []string{"sweep", "--glob", "*.csv", "--filename-pattern", "("}, "sweep adhoc"},
		{"no capture group", []string{"sweep", "--glob", "*.csv", "--filename-pattern", "ratio"}, "sweep adhoc"},
		{"bad glob", []string{"sweep", "--glob", "[", "--filename-pattern", `(\d+)`}, "glob pattern"},
		{"even window", []string{"sweep", "ratio", "--smooth", "4"}, "positive odd integer"},
		{"bad scale", []string{"sweep", "ratio", "--scale", "-1"}, "scale must be a positive number"},
		{"bad format", []string{"sweep", "ratio", "--format", "xml"}, "unsupported format"},
		{"both patterns", []string{"sweep", "--glob", "*.csv", "--filename-pattern", "(a)", "--header-pattern", "(b)"}, "none of the others can be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--config", cfgPath, "--dir", dataDir)
			_, err := runCommand(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var skippedErr *SkippedFilesError
			assert.False(t, errors.As(err, &skippedErr), "configuration errors map to exit code 2")
		})
	}
}

func TestSweepCommand_MissingDir(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), "")

	_, err := runCommand(t, "sweep", "ratio", "--config", cfgPath, "--dir", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sweep ratio")
}
