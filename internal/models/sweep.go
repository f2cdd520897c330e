package models

import (
	"fmt"
	"math"
)

// StepMetric holds the aggregate values for a single step of a run.
type StepMetric struct {
	Step           int      `json:"step"`
	CooperationPct float64  `json:"cooperation_pct"`
	ClusterCount   *float64 `json:"cluster_count"`
}

// HasClusters reports whether the step carries a cluster count.
func (m StepMetric) HasClusters() bool {
	return m.ClusterCount != nil
}

// ClusterValue returns the cluster count or NaN when absent.
func (m StepMetric) ClusterValue() float64 {
	if m.ClusterCount == nil {
		return math.NaN()
	}
	return *m.ClusterCount
}

// SweepPoint is the summary of one successfully processed result file.
type SweepPoint struct {
	Source              string
	Label               string
	Parameter           float64
	FinalCooperationPct float64
	// FinalClusterCount is NaN when the final step has no cluster count.
	FinalClusterCount float64
	TimeSeries        []StepMetric
}

// Stage names the pipeline step at which a file was rejected.
type Stage string

const (
	StageExtract   Stage = "extract"
	StageLoad      Stage = "load"
	StageAggregate Stage = "aggregate"
)

// Skip records a file that was excluded from a sweep.
type Skip struct {
	Source string
	Stage  Stage
	Err    error
}

func (s Skip) String() string {
	return fmt.Sprintf("%s [%s]: %v", s.Source, s.Stage, s.Err)
}

// SweepTable is the product of a sweep: points sorted by parameter plus the
// files that were skipped along the way.
type SweepTable struct {
	Points  []SweepPoint
	Skipped []Skip
}

// Len returns the number of points in the table.
func (t *SweepTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Points)
}

// Parameters returns the parameter column in table order.
func (t *SweepTable) Parameters() []float64 {
	out := make([]float64, 0, t.Len())
	if t == nil {
		return out
	}
	for _, p := range t.Points {
		out = append(out, p.Parameter)
	}
	return out
}
