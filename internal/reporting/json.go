package reporting

import (
	"encoding/json"
	"io"
	"math"

	"github.com/spboyer/coopsweep/internal/models"
)

// NamedTable pairs a sweep table with the name of the sweep that produced it.
type NamedTable struct {
	Name  string
	Table *models.SweepTable
}

// jsonDocument is the machine-readable form of a sweep table.
type jsonDocument struct {
	Name    string       `json:"name,omitempty"`
	Points  []jsonPoint  `json:"points"`
	Skipped []jsonSkip   `json:"skipped"`
	Summary []summaryRow `json:"summary,omitempty"`
}

type jsonPoint struct {
	Source              string              `json:"source"`
	Label               string              `json:"label,omitempty"`
	Parameter           float64             `json:"parameter"`
	FinalCooperationPct float64             `json:"final_cooperation_pct"`
	FinalClusterCount   *float64            `json:"final_cluster_count"`
	TimeSeries          []models.StepMetric `json:"time_series,omitempty"`
}

type jsonSkip struct {
	Source string `json:"source"`
	Stage  string `json:"stage"`
	Error  string `json:"error"`
}

// summaryRow is a ParameterSummary with a nullable mean cluster count.
type summaryRow struct {
	ParameterSummary
	MeanClusterCount *float64 `json:"mean_cluster_count"`
}

// WriteJSON encodes the table as an indented JSON document. Absent cluster
// counts are written as null.
func WriteJSON(w io.Writer, table *models.SweepTable, opts Options) error {
	return encode(w, document(table, opts))
}

// WriteSweepsJSON encodes several named tables as one document of the form
// {"sweeps": [...]}.
func WriteSweepsJSON(w io.Writer, tables []NamedTable, opts Options) error {
	out := struct {
		Sweeps []jsonDocument `json:"sweeps"`
	}{Sweeps: make([]jsonDocument, 0, len(tables))}
	for _, nt := range tables {
		doc := document(nt.Table, opts)
		doc.Name = nt.Name
		out.Sweeps = append(out.Sweeps, doc)
	}
	return encode(w, out)
}

// WriteSeriesJSON encodes the per-step metrics of one run.
func WriteSeriesJSON(w io.Writer, series []models.StepMetric) error {
	if series == nil {
		series = []models.StepMetric{}
	}
	return encode(w, series)
}

func document(table *models.SweepTable, opts Options) jsonDocument {
	doc := jsonDocument{Points: []jsonPoint{}, Skipped: []jsonSkip{}}
	if table == nil {
		return doc
	}
	for _, p := range table.Points {
		jp := jsonPoint{
			Source:              p.Source,
			Label:               p.Label,
			Parameter:           p.Parameter,
			FinalCooperationPct: p.FinalCooperationPct,
			FinalClusterCount:   nullable(p.FinalClusterCount),
		}
		if opts.Series {
			jp.TimeSeries = p.TimeSeries
		}
		doc.Points = append(doc.Points, jp)
	}
	for _, s := range table.Skipped {
		doc.Skipped = append(doc.Skipped, jsonSkip{Source: s.Source, Stage: string(s.Stage), Error: s.Err.Error()})
	}
	if opts.Summary {
		doc.Summary = summaryRows(SummarizeByParameter(table))
	}
	return doc
}

func summaryRows(sums []ParameterSummary) []summaryRow {
	rows := make([]summaryRow, 0, len(sums))
	for _, s := range sums {
		rows = append(rows, summaryRow{ParameterSummary: s, MeanClusterCount: nullable(s.MeanClusterCount)})
	}
	return rows
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
