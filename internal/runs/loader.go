// Package runs parses simulator result files into per-agent step records.
package runs

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/spboyer/coopsweep/internal/dataset"
	"github.com/spboyer/coopsweep/internal/models"
)

// Default column names written by the simulator.
const (
	DefaultStepColumn     = "step"
	DefaultStrategyColumn = "strategy"
	DefaultClusterColumn  = "cooperatorClusters"
)

// Reason classifies why a file could not be loaded.
type Reason string

const (
	// ReasonParseError means a row or column was malformed.
	ReasonParseError Reason = "parse error"
	// ReasonEmpty means the file has no data rows.
	ReasonEmpty Reason = "empty"
	// ReasonUnreadable means the file could not be opened or read.
	ReasonUnreadable Reason = "unreadable"
	// ReasonTooLarge means the file exceeded the configured size limit.
	ReasonTooLarge Reason = "too large"
)

// LoadError reports a per-file load failure. No partial run is returned
// alongside it.
type LoadError struct {
	Reason Reason
	Path   string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Columns names the CSV columns the loader reads.
type Columns struct {
	Step     string `yaml:"step,omitempty"`
	Strategy string `yaml:"strategy,omitempty"`
	Clusters string `yaml:"clusters,omitempty"`
}

// DefaultColumns returns the simulator's column names.
func DefaultColumns() Columns {
	return Columns{
		Step:     DefaultStepColumn,
		Strategy: DefaultStrategyColumn,
		Clusters: DefaultClusterColumn,
	}
}

// Loader reads result files.
type Loader struct {
	columns Columns
	opts    dataset.Options
}

// NewLoader returns a Loader. Empty column names fall back to the defaults.
func NewLoader(columns Columns, opts dataset.Options) *Loader {
	def := DefaultColumns()
	if columns.Step == "" {
		columns.Step = def.Step
	}
	if columns.Strategy == "" {
		columns.Strategy = def.Strategy
	}
	if columns.Clusters == "" {
		columns.Clusters = def.Clusters
	}
	return &Loader{columns: columns, opts: opts}
}

// Load parses the file at path into a Run.
func (l *Loader) Load(path string) (*models.Run, error) {
	rows, err := dataset.LoadCSV(path, l.opts)
	if err != nil {
		return nil, &LoadError{Reason: classify(err), Path: path, Err: err}
	}
	if len(rows) == 0 {
		return nil, &LoadError{Reason: ReasonEmpty, Path: path}
	}

	run := &models.Run{
		Source:  path,
		Records: make([]models.StrategyRecord, 0, len(rows)),
	}
	for i, row := range rows {
		rec, err := l.parseRow(row)
		if err != nil {
			// Data rows start after the header; i is zero-based.
			return nil, &LoadError{Reason: ReasonParseError, Path: path, Err: fmt.Errorf("data row %d: %w", i+1, err)}
		}
		run.Records = append(run.Records, rec)
	}
	return run, nil
}

func (l *Loader) parseRow(row dataset.Row) (models.StrategyRecord, error) {
	var rec models.StrategyRecord

	rawStep, ok := row[l.columns.Step]
	if !ok {
		return rec, fmt.Errorf("missing column %q", l.columns.Step)
	}
	step, err := strconv.Atoi(strings.TrimSpace(rawStep))
	if err != nil {
		return rec, fmt.Errorf("step %q is not an integer", rawStep)
	}
	if step < 0 {
		return rec, fmt.Errorf("step %d is negative", step)
	}
	rec.Step = step

	rawStrategy, ok := row[l.columns.Strategy]
	if !ok {
		return rec, fmt.Errorf("missing column %q", l.columns.Strategy)
	}
	if rawStrategy == "" {
		return rec, fmt.Errorf("empty %q value", l.columns.Strategy)
	}
	rec.Strategy = models.ParseStrategy(rawStrategy)

	if rawClusters, ok := row[l.columns.Clusters]; ok {
		rawClusters = strings.TrimSpace(rawClusters)
		if rawClusters != "" {
			n, err := parseCount(rawClusters)
			if err != nil {
				return rec, fmt.Errorf("%s %q: %w", l.columns.Clusters, rawClusters, err)
			}
			rec.ClusterCount = &n
		}
	}
	return rec, nil
}

// parseCount accepts integers, including the "3.0" form some exporters write
// for integer columns that contained blanks.
func parseCount(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative count")
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer")
	}
	if f < 0 {
		return 0, fmt.Errorf("negative count")
	}
	return int(f), nil
}

func classify(err error) Reason {
	switch {
	case errors.Is(err, dataset.ErrNoHeader):
		return ReasonEmpty
	case errors.Is(err, dataset.ErrTooLarge):
		return ReasonTooLarge
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return ReasonUnreadable
	default:
		return ReasonParseError
	}
}
