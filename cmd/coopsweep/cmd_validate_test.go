package main

import (
	"errors"
	"testing"

	"github.com/spboyer/coopsweep/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_Valid(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), `
sweeps:
  - name: noise
    glob: "noise*.csv"
    extractor:
      type: filename
      params:
        pattern: 'noise(\d+)'
conditions:
  - label: Fast
    file: fast.csv
`)

	out, err := runCommand(t, "validate", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, cfgPath+" is valid (4 sweep(s), 1 condition(s))")

	out, err = runCommand(t, "validate", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
}

func TestValidateCommand_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "schema violation",
			config:  "sweeps:\n  - name: x\n    glob: '*.csv'\n    extractor:\n      type: guess\n",
			wantErr: "/sweeps/0/extractor/type",
		},
		{
			name:    "bad regex",
			config:  "sweeps:\n  - name: broken\n    glob: '*.csv'\n    extractor:\n      type: filename\n      params:\n        pattern: '('\n",
			wantErr: "sweep broken",
		},
		{
			name:    "bad glob",
			config:  "sweeps:\n  - name: globby\n    glob: '['\n    extractor:\n      type: filename\n      params:\n        pattern: '(\\d+)'\n",
			wantErr: "sweep globby: glob pattern",
		},
		{
			name:    "even default window",
			config:  "defaults:\n  smoothing_window: 4\n",
			wantErr: "defaults:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := writeConfig(t, t.TempDir(), tt.config)

			_, err := runCommand(t, "validate", cfgPath)
			require.Error(t, err)
			var verr *validation.Error
			require.True(t, errors.As(err, &verr), "expected *validation.Error, got %v", err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
