package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `paths:
  output: ../output
defaults:
  smoothing_window: 5
  series_window: 3
  recursive: true
columns:
  clusters: coopClusters
limits:
  max_file_bytes: 1048576
sweeps:
  - name: ratio
    glob: "ratio*.csv"
    extractor:
      type: filename
      params:
        pattern: 'ratio(\d+)'
  - name: baseline
    dir: baselines
    glob: "baseline-*.csv"
    smoothing_window: 1
    extractor:
      type: header
      params:
        pattern: 'coopRatio\s*=\s*([0-9]+(?:,[0-9]+)?)'
        scale: 100
conditions:
  - label: Fast Movers
    file: baseline-fastMovers.csv
`

func TestValidateConfigBytes_Valid(t *testing.T) {
	errs := ValidateConfigBytes([]byte(validConfigYAML))
	require.Empty(t, errs, "valid config should have no errors")
}

func TestValidateConfigBytes_Empty(t *testing.T) {
	assert.Empty(t, ValidateConfigBytes(nil))
	assert.Empty(t, ValidateConfigBytes([]byte("# nothing here\n")))
}

func TestValidateConfigBytes_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantLoc string
	}{
		{
			name:    "unknown extractor type",
			yaml:    "sweeps:\n  - name: x\n    glob: '*.csv'\n    extractor:\n      type: glob\n",
			wantLoc: "/sweeps/0/extractor/type",
		},
		{
			name:    "missing glob",
			yaml:    "sweeps:\n  - name: x\n    extractor:\n      type: filename\n      params:\n        pattern: '(\\d+)'\n",
			wantLoc: "/sweeps/0",
		},
		{
			name:    "zero scale",
			yaml:    "sweeps:\n  - name: x\n    glob: '*.csv'\n    extractor:\n      type: header\n      params:\n        pattern: '(\\d+)'\n        scale: 0\n",
			wantLoc: "/sweeps/0/extractor/params/scale",
		},
		{
			name:    "negative window",
			yaml:    "defaults:\n  smoothing_window: -1\n",
			wantLoc: "/defaults/smoothing_window",
		},
		{
			name:    "unknown top-level key",
			yaml:    "engine: mock\n",
			wantLoc: "/",
		},
		{
			name:    "condition without file",
			yaml:    "conditions:\n  - label: Slow\n",
			wantLoc: "/conditions/0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateConfigBytes([]byte(tt.yaml))
			require.NotEmpty(t, errs)
			found := false
			for _, e := range errs {
				if strings.HasPrefix(e, tt.wantLoc+":") {
					found = true
				}
			}
			assert.True(t, found, "expected an error at %s, got %v", tt.wantLoc, errs)
		})
	}
}

func TestValidateConfigBytes_BadYAML(t *testing.T) {
	errs := ValidateConfigBytes([]byte("sweeps: [unterminated\n"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "YAML parse error")
}

func TestValidateConfigFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".coopsweep.yaml")
	require.NoError(t, os.WriteFile(p, []byte(validConfigYAML), 0o644))

	errs, err := ValidateConfigFile(p)
	require.NoError(t, err)
	assert.Empty(t, errs)

	_, err = ValidateConfigFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Path: "cfg.yaml", Problems: []string{"/a: bad", "/b: worse"}}
	assert.Equal(t, "invalid configuration cfg.yaml:\n  /a: bad\n  /b: worse", err.Error())
}
