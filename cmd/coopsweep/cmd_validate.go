package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spboyer/coopsweep/internal/discovery"
	"github.com/spboyer/coopsweep/internal/paramextract"
	"github.com/spboyer/coopsweep/internal/projectconfig"
	"github.com/spboyer/coopsweep/internal/runs"
	"github.com/spboyer/coopsweep/internal/sweep"
	"github.com/spboyer/coopsweep/internal/validation"
	"github.com/spf13/cobra"
)

func newValidateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config]",
		Short: "Check a project config file",
		Long: `Check a project config file against its schema, then build every sweep's
extractor and smoothing settings so that bad patterns and windows are
reported without reading any result file.

Without an argument the --config file is checked, or else the nearest ` + projectconfig.FileName + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *configPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				found, err := projectconfig.Find(".")
				if err != nil {
					if errors.Is(err, os.ErrNotExist) {
						return fmt.Errorf("no %s found in this directory or its parents", projectconfig.FileName)
					}
					return err
				}
				path = found
			}
			return validateConfig(cmd, path)
		},
	}
}

func validateConfig(cmd *cobra.Command, path string) error {
	problems, err := validation.ValidateConfigFile(path)
	if err != nil {
		return err
	}
	if len(problems) > 0 {
		return &validation.Error{Path: path, Problems: problems}
	}

	cfg, err := projectconfig.LoadFile(path)
	if err != nil {
		return err
	}

	loader := runs.NewLoader(cfg.Columns, cfg.Limits.Options())
	for _, s := range cfg.Sweeps {
		if err := discovery.ValidatePattern(s.Glob); err != nil {
			problems = append(problems, fmt.Sprintf("sweep %s: %v", s.Name, err))
		}
		if _, err := paramextract.New(s.Extractor, cfg.Limits.Options()); err != nil {
			problems = append(problems, fmt.Sprintf("sweep %s: %v", s.Name, err))
		}
		if _, err := sweep.New(sweep.Config{Loader: loader, SmoothingWindow: cfg.SmoothingWindowFor(s)}); err != nil {
			problems = append(problems, fmt.Sprintf("sweep %s: %v", s.Name, err))
		}
	}
	for _, window := range []int{cfg.Defaults.SmoothingWindow, cfg.SeriesWindow()} {
		if _, err := sweep.New(sweep.Config{Loader: loader, SmoothingWindow: window}); err != nil {
			problems = append(problems, fmt.Sprintf("defaults: %v", err))
		}
	}
	if len(problems) > 0 {
		return &validation.Error{Path: path, Problems: problems}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is valid (%d sweep(s), %d condition(s))\n", path, len(cfg.Sweeps), len(cfg.Conditions)) //nolint:errcheck
	return nil
}
