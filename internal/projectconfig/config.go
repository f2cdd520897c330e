// Package projectconfig provides the ProjectConfig struct and loader for
// .coopsweep.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/spboyer/coopsweep/internal/dataset"
	"github.com/spboyer/coopsweep/internal/paramextract"
	"github.com/spboyer/coopsweep/internal/runs"
	"github.com/spboyer/coopsweep/internal/sweep"
	"github.com/spboyer/coopsweep/internal/validation"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".coopsweep.yaml"

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "COOPSWEEP_"

// Default values for project configuration. These are the single source of
// truth: New() references them and no other code should duplicate them.
const (
	DefaultOutputDir = "output"

	// DefaultSmoothingWindow of zero leaves sweep cluster counts unsmoothed.
	DefaultSmoothingWindow = 0
	// DefaultSeriesWindow smooths the cluster line of a single-run series.
	DefaultSeriesWindow = 5

	DefaultRatioPattern      = `ratio(\d+)`
	DefaultBaselinePattern   = `coopRatio\s*=\s*([0-9]+(?:,[0-9]+)?)`
	DefaultTemptationPattern = `Temptation(\d+(?:-\d+)*)\.csv`
	DefaultBaselineScale     = 100.0
)

// PathsConfig holds directory paths.
type PathsConfig struct {
	Output string `yaml:"output,omitempty"`
}

// DefaultsConfig holds default pipeline parameters. SeriesWindow is a
// pointer so an explicit 0 (no smoothing) survives the merge onto defaults.
type DefaultsConfig struct {
	SmoothingWindow int   `yaml:"smoothing_window,omitempty"`
	SeriesWindow    *int  `yaml:"series_window,omitempty"`
	Recursive       *bool `yaml:"recursive,omitempty"`
}

// LimitsConfig bounds per-file resource use.
type LimitsConfig struct {
	MaxFileBytes int64 `yaml:"max_file_bytes,omitempty"`
}

// Options returns the dataset read options for these limits.
func (l LimitsConfig) Options() dataset.Options {
	return dataset.Options{MaxBytes: l.MaxFileBytes}
}

// SweepConfig describes one family of result files and how to recover its
// parameter.
type SweepConfig struct {
	Name      string              `yaml:"name"`
	Dir       string              `yaml:"dir,omitempty"`
	Glob      string              `yaml:"glob"`
	Extractor paramextract.Config `yaml:"extractor"`
	// SmoothingWindow overrides Defaults.SmoothingWindow when set.
	SmoothingWindow *int `yaml:"smoothing_window,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .coopsweep.yaml.
type ProjectConfig struct {
	Paths      PathsConfig       `yaml:"paths,omitempty"`
	Defaults   DefaultsConfig    `yaml:"defaults,omitempty"`
	Columns    runs.Columns      `yaml:"columns,omitempty"`
	Limits     LimitsConfig      `yaml:"limits,omitempty"`
	Sweeps     []SweepConfig     `yaml:"sweeps,omitempty"`
	Conditions []sweep.Condition `yaml:"conditions,omitempty"`
}

// envOverrides lists the settings that may come from the environment.
type envOverrides struct {
	OutputDir       string `env:"OUTPUT_DIR"`
	SmoothingWindow int    `env:"SMOOTHING_WINDOW"`
	MaxFileBytes    int64  `env:"MAX_FILE_BYTES"`
}

// New returns a ProjectConfig with all hard-coded defaults populated,
// including the preset sweeps for the simulator's standard output families.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Output: DefaultOutputDir,
		},
		Defaults: DefaultsConfig{
			SmoothingWindow: DefaultSmoothingWindow,
			SeriesWindow:    intPtr(DefaultSeriesWindow),
			Recursive:       boolPtr(false),
		},
		Columns: runs.DefaultColumns(),
		Sweeps: presetSweeps(),
	}
}

func presetSweeps() []SweepConfig {
	return []SweepConfig{
		{
			Name: "ratio",
			Glob: "ratio*.csv",
			Extractor: paramextract.Config{
				Type:   paramextract.TypeFilename,
				Params: map[string]any{"pattern": DefaultRatioPattern},
			},
		},
		{
			Name: "baseline",
			Glob: "baseline-*.csv",
			Extractor: paramextract.Config{
				Type:   paramextract.TypeHeader,
				Params: map[string]any{"pattern": DefaultBaselinePattern, "scale": DefaultBaselineScale},
			},
		},
		{
			Name: "temptation",
			Glob: "Temptation*.csv",
			Extractor: paramextract.Config{
				Type:   paramextract.TypeFilename,
				Params: map[string]any{"pattern": DefaultTemptationPattern},
			},
		},
	}
}

// Sweep returns the sweep with the given name.
func (c *ProjectConfig) Sweep(name string) (SweepConfig, bool) {
	for _, s := range c.Sweeps {
		if s.Name == name {
			return s, true
		}
	}
	return SweepConfig{}, false
}

// SweepNames lists configured sweeps in order.
func (c *ProjectConfig) SweepNames() []string {
	names := make([]string, 0, len(c.Sweeps))
	for _, s := range c.Sweeps {
		names = append(names, s.Name)
	}
	return names
}

// SeriesWindow returns the effective smoothing window of single-run series.
func (c *ProjectConfig) SeriesWindow() int {
	if c.Defaults.SeriesWindow != nil {
		return *c.Defaults.SeriesWindow
	}
	return DefaultSeriesWindow
}

// SmoothingWindowFor returns the effective smoothing window of s.
func (c *ProjectConfig) SmoothingWindowFor(s SweepConfig) int {
	if s.SmoothingWindow != nil {
		return *s.SmoothingWindow
	}
	return c.Defaults.SmoothingWindow
}

// DirFor resolves the directory searched by s. Relative sweep directories
// are taken relative to Paths.Output.
func (c *ProjectConfig) DirFor(s SweepConfig) string {
	switch {
	case s.Dir == "":
		return c.Paths.Output
	case filepath.IsAbs(s.Dir):
		return s.Dir
	default:
		return filepath.Join(c.Paths.Output, s.Dir)
	}
}

// ResolveConditions returns the configured conditions with relative file
// paths taken relative to Paths.Output.
func (c *ProjectConfig) ResolveConditions() []sweep.Condition {
	out := make([]sweep.Condition, 0, len(c.Conditions))
	for _, cond := range c.Conditions {
		if !filepath.IsAbs(cond.File) {
			cond.File = filepath.Join(c.Paths.Output, cond.File)
		}
		out = append(out, cond)
	}
	return out
}

// Load finds .coopsweep.yaml by walking up from startDir (max 10 levels),
// validates and unmarshals it, fills in missing fields with defaults and
// finally applies COOPSWEEP_* environment overrides.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	data, path, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := New()
			if err := applyEnv(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}
	return parse(data, path)
}

// Find returns the path of the nearest .coopsweep.yaml at or above startDir.
// The error wraps os.ErrNotExist when there is none.
func Find(startDir string) (string, error) {
	_, path, err := findConfigFile(startDir)
	return path, err
}

// LoadFile loads an explicit configuration file.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return parse(data, path)
}

// parse validates data against the config schema and merges it onto the
// defaults.
func parse(data []byte, path string) (*ProjectConfig, error) {
	if errs := validation.ValidateConfigBytes(data); len(errs) > 0 {
		return nil, &validation.Error{Path: path, Problems: errs}
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg := New()
	mergeConfig(cfg, &fileCfg)
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *ProjectConfig) error {
	var o envOverrides
	if err := env.ParseWithOptions(&o, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.OutputDir != "" {
		cfg.Paths.Output = o.OutputDir
	}
	if o.SmoothingWindow != 0 {
		cfg.Defaults.SmoothingWindow = o.SmoothingWindow
	}
	if o.MaxFileBytes != 0 {
		cfg.Limits.MaxFileBytes = o.MaxFileBytes
	}
	return nil
}

// findConfigFile walks up from dir looking for .coopsweep.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found. Propagates real I/O
// errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, string, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, p, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, "", os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst. Sweeps are merged
// by name: a file sweep replaces the preset of the same name and new names
// are appended in file order.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Output != "" {
		dst.Paths.Output = src.Paths.Output
	}

	// Defaults
	if src.Defaults.SmoothingWindow != 0 {
		dst.Defaults.SmoothingWindow = src.Defaults.SmoothingWindow
	}
	if src.Defaults.SeriesWindow != nil {
		dst.Defaults.SeriesWindow = src.Defaults.SeriesWindow
	}
	if src.Defaults.Recursive != nil {
		dst.Defaults.Recursive = src.Defaults.Recursive
	}

	// Columns
	if src.Columns.Step != "" {
		dst.Columns.Step = src.Columns.Step
	}
	if src.Columns.Strategy != "" {
		dst.Columns.Strategy = src.Columns.Strategy
	}
	if src.Columns.Clusters != "" {
		dst.Columns.Clusters = src.Columns.Clusters
	}

	// Limits
	if src.Limits.MaxFileBytes != 0 {
		dst.Limits.MaxFileBytes = src.Limits.MaxFileBytes
	}

	// Sweeps
	for _, s := range src.Sweeps {
		replaced := false
		for i := range dst.Sweeps {
			if dst.Sweeps[i].Name == s.Name {
				dst.Sweeps[i] = s
				replaced = true
				break
			}
		}
		if !replaced {
			dst.Sweeps = append(dst.Sweeps, s)
		}
	}

	// Conditions
	if len(src.Conditions) > 0 {
		dst.Conditions = src.Conditions
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(n int) *int {
	return &n
}
