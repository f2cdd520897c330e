// Package aggregate reduces a run's per-agent records to per-step metrics.
package aggregate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spboyer/coopsweep/internal/metrics"
	"github.com/spboyer/coopsweep/internal/models"
)

// DefaultWindow is the cluster smoothing window used when none is configured.
const DefaultWindow = 5

// ErrInvalidWindow is returned for smoothing windows that are not odd and positive.
var ErrInvalidWindow = errors.New("smoothing window must be a positive odd integer")

type stepGroup struct {
	total       int
	cooperators int
	clusters    *int
}

// Aggregate groups records by step and returns one metric per distinct step
// in ascending step order. Input order does not matter, except that the
// cluster count of a step is taken from its first record that carries one.
func Aggregate(run *models.Run) []models.StepMetric {
	if run == nil || len(run.Records) == 0 {
		return nil
	}

	groups := make(map[int]*stepGroup)
	for _, rec := range run.Records {
		g, ok := groups[rec.Step]
		if !ok {
			g = &stepGroup{}
			groups[rec.Step] = g
		}
		g.total++
		if rec.Strategy == models.Cooperate {
			g.cooperators++
		}
		if g.clusters == nil && rec.ClusterCount != nil {
			g.clusters = rec.ClusterCount
		}
	}

	steps := make([]int, 0, len(groups))
	for step := range groups {
		steps = append(steps, step)
	}
	sort.Ints(steps)

	out := make([]models.StepMetric, 0, len(steps))
	for _, step := range steps {
		g := groups[step]
		m := models.StepMetric{
			Step:           step,
			CooperationPct: metrics.Percent(g.cooperators, g.total),
		}
		if g.clusters != nil {
			v := float64(*g.clusters)
			m.ClusterCount = &v
		}
		out = append(out, m)
	}
	return out
}

// ValidateWindow checks a smoothing window width.
func ValidateWindow(window int) error {
	if window < 1 || window%2 == 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidWindow, window)
	}
	return nil
}

// Smooth returns a copy of series with each cluster count replaced by the
// centered moving average over window steps. Windows shrink at the edges
// and absent counts are left out of both the sum and the count. A position
// whose window holds no counts stays absent.
func Smooth(series []models.StepMetric, window int) ([]models.StepMetric, error) {
	if err := ValidateWindow(window); err != nil {
		return nil, err
	}

	out := make([]models.StepMetric, len(series))
	copy(out, series)
	if window == 1 {
		return out, nil
	}

	half := window / 2
	n := len(series)
	buf := make([]*float64, 0, window)
	for i := range series {
		lo := max(0, i-half)
		hi := min(n-1, i+half)

		buf = buf[:0]
		for j := lo; j <= hi; j++ {
			buf = append(buf, series[j].ClusterCount)
		}
		avg, used := metrics.MeanPresent(buf)
		if used == 0 {
			out[i].ClusterCount = nil
			continue
		}
		out[i].ClusterCount = &avg
	}
	return out, nil
}

// Final returns the metric with the largest step; ok is false when series
// is empty.
func Final(series []models.StepMetric) (models.StepMetric, bool) {
	if len(series) == 0 {
		return models.StepMetric{}, false
	}
	last := series[0]
	for _, m := range series[1:] {
		if m.Step > last.Step {
			last = m
		}
	}
	return last, true
}
