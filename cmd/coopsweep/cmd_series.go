package main

import (
	"fmt"

	"github.com/spboyer/coopsweep/internal/reporting"
	"github.com/spboyer/coopsweep/internal/runs"
	"github.com/spboyer/coopsweep/internal/sweep"
	"github.com/spf13/cobra"
)

func newSeriesCommand(configPath *string) *cobra.Command {
	var (
		smooth int
		format string
	)

	cmd := &cobra.Command{
		Use:   "series <file>",
		Short: "Print the per-step cooperation and cluster count of one run",
		Long: `Print the per-step metrics of a single result file.

The cluster count is smoothed with a centered moving average whose window
defaults to defaults.series_window from the project config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := reporting.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			window := cfg.SeriesWindow()
			if cmd.Flags().Changed("smooth") {
				window = smooth
			}
			collector, err := sweep.New(sweep.Config{
				Loader:          runs.NewLoader(cfg.Columns, cfg.Limits.Options()),
				SmoothingWindow: window,
			})
			if err != nil {
				return err
			}

			series, err := collector.Series(args[0])
			if err != nil {
				return fmt.Errorf("loading %s: %w", args[0], err)
			}

			w := cmd.OutOrStdout()
			if f.Resolve(w) == reporting.FormatJSON {
				return reporting.WriteSeriesJSON(w, series)
			}
			return reporting.WriteSeries(w, series)
		},
	}

	cmd.Flags().IntVar(&smooth, "smooth", 0, "Centered moving-average window for cluster counts (odd; 0 disables)")
	cmd.Flags().StringVarP(&format, "format", "f", string(reporting.FormatAuto), "Output format: table, json or auto")

	return cmd
}
