package reporting

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/coopsweep/internal/models"
)

const missing = "-"

// WriteTable prints the sweep as aligned columns followed by the list of
// skipped files. Points with a label show the label instead of the
// parameter.
func WriteTable(w io.Writer, table *models.SweepTable, opts Options) error {
	if table == nil {
		table = &models.SweepTable{}
	}

	keyHeader := "PARAMETER"
	if hasLabels(table) {
		keyHeader = "CONDITION"
	}
	rows := [][]string{{keyHeader, "COOP %", "CLUSTERS", "FILE"}}
	for _, p := range table.Points {
		key := formatNumber(p.Parameter)
		if p.Label != "" {
			key = p.Label
		}
		rows = append(rows, []string{
			key,
			formatPct(p.FinalCooperationPct),
			formatNumber(p.FinalClusterCount),
			filepath.Base(p.Source),
		})
	}
	if err := writeRows(w, rows); err != nil {
		return err
	}

	if opts.Series {
		for _, p := range table.Points {
			title := filepath.Base(p.Source)
			if p.Label != "" {
				title = p.Label + " (" + title + ")"
			}
			if _, err := fmt.Fprintf(w, "\n%s\n", title); err != nil {
				return err
			}
			if err := WriteSeries(w, p.TimeSeries); err != nil {
				return err
			}
		}
	}

	if opts.Summary {
		if _, err := fmt.Fprintf(w, "\nreplicates\n"); err != nil {
			return err
		}
		if err := WriteSummary(w, SummarizeByParameter(table)); err != nil {
			return err
		}
	}

	if _, err := printer.Fprintf(w, "\n%d point(s), %d skipped\n", len(table.Points), len(table.Skipped)); err != nil {
		return err
	}
	for _, s := range table.Skipped {
		if _, err := fmt.Fprintf(w, "  skipped %s\n", s); err != nil {
			return err
		}
	}
	return nil
}

// WriteSeries prints the per-step metrics of one run.
func WriteSeries(w io.Writer, series []models.StepMetric) error {
	rows := make([][]string, 0, len(series)+1)
	rows = append(rows, []string{"STEP", "COOP %", "CLUSTERS"})
	for _, m := range series {
		rows = append(rows, []string{
			strconv.Itoa(m.Step),
			formatPct(m.CooperationPct),
			formatNumber(m.ClusterValue()),
		})
	}
	return writeRows(w, rows)
}

// writeRows pads every column to its widest cell. The last column is not
// padded.
func writeRows(w io.Writer, rows [][]string) error {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				continue
			}
			b.WriteString(padRight(cell, widths[i]))
			b.WriteString("  ")
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func hasLabels(table *models.SweepTable) bool {
	for _, p := range table.Points {
		if p.Label != "" {
			return true
		}
	}
	return false
}

func formatPct(v float64) string {
	if math.IsNaN(v) {
		return missing
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatNumber prints integral values without decimals.
func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return missing
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return strconv.FormatFloat(v, 'f', 0, 64)
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}
