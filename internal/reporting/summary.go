package reporting

import (
	"io"
	"math"

	"github.com/spboyer/coopsweep/internal/metrics"
	"github.com/spboyer/coopsweep/internal/models"
)

// ParameterSummary aggregates the replicate runs that share a parameter.
type ParameterSummary struct {
	Parameter              float64 `json:"parameter"`
	Runs                   int     `json:"runs"`
	MeanCooperationPct     float64 `json:"mean_cooperation_pct"`
	StdDevCooperationPct   float64 `json:"stddev_cooperation_pct"`
	MeanClusterCount       float64 `json:"-"`
	ClusterCountReplicates int     `json:"cluster_count_runs"`
}

// SummarizeByParameter groups consecutive points with equal parameter, so
// the table is expected in parameter order as Collect returns it. The table
// is not modified. MeanClusterCount is NaN when no replicate has a cluster
// count.
func SummarizeByParameter(table *models.SweepTable) []ParameterSummary {
	var out []ParameterSummary
	if table == nil {
		return out
	}

	points := table.Points
	for start := 0; start < len(points); {
		end := start + 1
		for end < len(points) && points[end].Parameter == points[start].Parameter {
			end++
		}
		out = append(out, summarize(points[start:end]))
		start = end
	}
	return out
}

func summarize(group []models.SweepPoint) ParameterSummary {
	coop := make([]float64, 0, len(group))
	clusters := make([]*float64, 0, len(group))
	for _, p := range group {
		coop = append(coop, p.FinalCooperationPct)
		clusters = append(clusters, nullable(p.FinalClusterCount))
	}

	meanClusters, n := metrics.MeanPresent(clusters)
	if n == 0 {
		meanClusters = math.NaN()
	}
	return ParameterSummary{
		Parameter:              group[0].Parameter,
		Runs:                   len(group),
		MeanCooperationPct:     metrics.Mean(coop),
		StdDevCooperationPct:   metrics.StdDev(coop),
		MeanClusterCount:       meanClusters,
		ClusterCountReplicates: n,
	}
}

// WriteSummary prints replicate summaries as aligned columns.
func WriteSummary(w io.Writer, sums []ParameterSummary) error {
	rows := [][]string{{"PARAMETER", "RUNS", "MEAN COOP %", "STDDEV", "MEAN CLUSTERS"}}
	for _, s := range sums {
		rows = append(rows, []string{
			formatNumber(s.Parameter),
			printer.Sprintf("%d", s.Runs),
			formatPct(s.MeanCooperationPct),
			formatPct(s.StdDevCooperationPct),
			formatPct(s.MeanClusterCount),
		})
	}
	return writeRows(w, rows)
}
