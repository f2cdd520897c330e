// Package sweep runs the extract, load and aggregate stages over a set of
// result files and assembles the parameter-indexed summary table.
package sweep

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/spboyer/coopsweep/internal/aggregate"
	"github.com/spboyer/coopsweep/internal/models"
)

//go:generate go tool mockgen -source collector.go -destination mock_collector_test.go -package sweep

// Extractor recovers the sweep parameter of a file.
type Extractor interface {
	Extract(path string) (float64, error)
}

// Loader parses a file into a run.
type Loader interface {
	Load(path string) (*models.Run, error)
}

// ErrNoSteps is reported when a loaded run yields no step metrics.
var ErrNoSteps = errors.New("run has no steps")

// Config wires a Collector.
type Config struct {
	Loader Loader
	// SmoothingWindow enables cluster smoothing when positive. It must be odd.
	SmoothingWindow int
	Logger          *slog.Logger
}

// Collector drives a sweep. It keeps no state between calls.
type Collector struct {
	loader Loader
	window int
	logger *slog.Logger
}

// New validates cfg and returns a Collector. Configuration problems are
// reported here, before any file is touched.
func New(cfg Config) (*Collector, error) {
	if cfg.Loader == nil {
		return nil, fmt.Errorf("sweep: loader is required")
	}
	if cfg.SmoothingWindow < 0 {
		return nil, fmt.Errorf("sweep: %w, got %d", aggregate.ErrInvalidWindow, cfg.SmoothingWindow)
	}
	if cfg.SmoothingWindow > 0 {
		if err := aggregate.ValidateWindow(cfg.SmoothingWindow); err != nil {
			return nil, fmt.Errorf("sweep: %w", err)
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		loader: cfg.Loader,
		window: cfg.SmoothingWindow,
		logger: logger,
	}, nil
}

// Collect processes files in the given order, taking each file's parameter
// from ex, and returns the points sorted by parameter. Files that fail at
// any stage are logged, recorded in Skipped and left out; Collect itself
// never fails. An empty file list yields an empty table.
func (c *Collector) Collect(ex Extractor, files []string) *models.SweepTable {
	table := &models.SweepTable{Points: make([]models.SweepPoint, 0, len(files))}
	for _, path := range files {
		param, err := ex.Extract(path)
		if err != nil {
			c.skip(table, path, models.StageExtract, err)
			continue
		}

		point, stage, err := c.summarize(path)
		if err != nil {
			c.skip(table, path, stage, err)
			continue
		}
		point.Parameter = param
		table.Points = append(table.Points, point)
		c.logger.Debug("collected sweep point", "file", path, "parameter", param, "final_coop_pct", point.FinalCooperationPct)
	}

	sort.SliceStable(table.Points, func(i, j int) bool {
		return table.Points[i].Parameter < table.Points[j].Parameter
	})
	return table
}

// Condition is a labeled result file compared without a numeric parameter.
type Condition struct {
	Label string `yaml:"label"`
	File  string `yaml:"file"`
}

// CollectConditions summarizes labeled files. Points keep the order of
// conds and their Parameter is the condition's position in that list.
func (c *Collector) CollectConditions(conds []Condition) *models.SweepTable {
	table := &models.SweepTable{Points: make([]models.SweepPoint, 0, len(conds))}
	for i, cond := range conds {
		point, stage, err := c.summarize(cond.File)
		if err != nil {
			c.skip(table, cond.File, stage, err)
			continue
		}
		point.Label = cond.Label
		point.Parameter = float64(i)
		table.Points = append(table.Points, point)
	}
	return table
}

// Series loads and aggregates a single file.
func (c *Collector) Series(path string) ([]models.StepMetric, error) {
	run, err := c.loader.Load(path)
	if err != nil {
		return nil, err
	}
	return c.metrics(run)
}

func (c *Collector) summarize(path string) (models.SweepPoint, models.Stage, error) {
	run, err := c.loader.Load(path)
	if err != nil {
		return models.SweepPoint{}, models.StageLoad, err
	}

	series, err := c.metrics(run)
	if err != nil {
		return models.SweepPoint{}, models.StageAggregate, err
	}
	final, ok := aggregate.Final(series)
	if !ok {
		return models.SweepPoint{}, models.StageAggregate, ErrNoSteps
	}

	return models.SweepPoint{
		Source:              path,
		FinalCooperationPct: final.CooperationPct,
		FinalClusterCount:   final.ClusterValue(),
		TimeSeries:          series,
	}, "", nil
}

func (c *Collector) metrics(run *models.Run) ([]models.StepMetric, error) {
	series := aggregate.Aggregate(run)
	if len(series) == 0 {
		return nil, ErrNoSteps
	}
	if c.window > 1 {
		return aggregate.Smooth(series, c.window)
	}
	return series, nil
}

func (c *Collector) skip(table *models.SweepTable, path string, stage models.Stage, err error) {
	c.logger.Warn("skipping result file", "file", path, "stage", string(stage), "error", err)
	table.Skipped = append(table.Skipped, models.Skip{Source: path, Stage: stage, Err: err})
}
