package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spboyer/coopsweep/internal/projectconfig"
	"github.com/spboyer/coopsweep/internal/reporting"
	"github.com/spboyer/coopsweep/internal/runs"
	"github.com/spboyer/coopsweep/internal/sweep"
	"github.com/spf13/cobra"
)

func newConditionsCommand(configPath *string) *cobra.Command {
	var (
		smooth int
		format string
		series bool
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "conditions [label=file ...]",
		Short: "Compare labeled runs that share no numeric parameter",
		Long: `Compare the final cooperation of labeled result files.

Conditions are given as label=file arguments or, when there are none, read
from the conditions list of the project config. Output keeps the given order.`,
		Example: `  coopsweep conditions "Fast Movers=output/baseline-fastMovers.csv" "Slow Movers=output/baseline-slowMovers.csv"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := reporting.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			conds, err := resolveConditions(cfg, args)
			if err != nil {
				return err
			}

			window := cfg.Defaults.SmoothingWindow
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

			table := collector.CollectConditions(conds)

			w := cmd.OutOrStdout()
			opts := reporting.Options{Series: series}
			if f.Resolve(w) == reporting.FormatJSON {
				err = reporting.WriteJSON(w, table, opts)
			} else {
				err = reporting.WriteTable(w, table, opts)
			}
			if err != nil {
				return err
			}

			if strict && len(table.Skipped) > 0 {
				return &SkippedFilesError{Count: len(table.Skipped)}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&smooth, "smooth", 0, "Centered moving-average window for cluster counts (odd; 0 disables)")
	cmd.Flags().StringVarP(&format, "format", "f", string(reporting.FormatAuto), "Output format: table, json or auto")
	cmd.Flags().BoolVar(&series, "series", false, "Include the per-step metrics of every run")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with code 1 when any file was skipped")

	return cmd
}

func resolveConditions(cfg *projectconfig.ProjectConfig, args []string) ([]sweep.Condition, error) {
	if len(args) == 0 {
		conds := cfg.ResolveConditions()
		if len(conds) == 0 {
			return nil, errors.New("no conditions given: pass label=file arguments or list conditions in " + projectconfig.FileName)
		}
		return conds, nil
	}

	conds := make([]sweep.Condition, 0, len(args))
	for _, arg := range args {
		c, err := parseCondition(arg)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}

// parseCondition splits a label=file argument. The label may not contain
// '=' but the file may.
func parseCondition(arg string) (sweep.Condition, error) {
	label, file, ok := strings.Cut(arg, "=")
	label = strings.TrimSpace(label)
	if !ok || label == "" || file == "" {
		return sweep.Condition{}, fmt.Errorf("invalid condition %q: want label=file", arg)
	}
	return sweep.Condition{Label: label, File: file}, nil
}
