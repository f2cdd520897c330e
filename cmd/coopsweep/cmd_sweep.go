package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strings"

	"github.com/spboyer/coopsweep/internal/discovery"
	"github.com/spboyer/coopsweep/internal/paramextract"
	"github.com/spboyer/coopsweep/internal/projectconfig"
	"github.com/spboyer/coopsweep/internal/reporting"
	"github.com/spboyer/coopsweep/internal/runs"
	"github.com/spboyer/coopsweep/internal/sweep"
	"github.com/spf13/cobra"
)

// adhocSweepName names the sweep built from --glob and a pattern flag.
const adhocSweepName = "adhoc"

type sweepOptions struct {
	dir             string
	glob            string
	filenamePattern string
	headerPattern   string
	scale           float64
	smooth          int
	format          string
	series          bool
	summary         bool
	strict          bool
	recursive       bool
}

func newSweepCommand(configPath *string) *cobra.Command {
	opts := &sweepOptions{}

	cmd := &cobra.Command{
		Use:   "sweep [name...]",
		Short: "Summarize the final cooperation of every run in a sweep",
		Long: `Summarize a parameter sweep.

Each named sweep comes from the project config; the presets ratio, baseline
and temptation are always available. Without names every configured sweep
that has matching files is reported. An ad-hoc sweep is described with --glob
and one of --filename-pattern or --header-pattern.

Files that cannot be read or parsed are skipped and listed in the output.`,
		Example: `  coopsweep sweep ratio
  coopsweep sweep baseline --dir output --format table --summary
  coopsweep sweep --glob 'noise*.csv' --filename-pattern 'noise(\d+)' --scale 0.01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, *configPath, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.dir, "dir", "", "Directory holding the result files (default: from config)")
	f.StringVar(&opts.glob, "glob", "", "File name glob of an ad-hoc sweep")
	f.StringVar(&opts.filenamePattern, "filename-pattern", "", "Regex whose capture group is the parameter, matched against file names")
	f.StringVar(&opts.headerPattern, "header-pattern", "", "Regex whose capture group is the parameter, matched against the first line")
	f.Float64Var(&opts.scale, "scale", paramextract.DefaultScale, "Multiplier applied to extracted parameters")
	f.IntVar(&opts.smooth, "smooth", 0, "Centered moving-average window for cluster counts (odd; 0 disables)")
	f.StringVarP(&opts.format, "format", "f", string(reporting.FormatAuto), "Output format: table, json or auto")
	f.BoolVar(&opts.series, "series", false, "Include the per-step metrics of every run")
	f.BoolVar(&opts.summary, "summary", false, "Add mean and standard deviation of runs sharing a parameter")
	f.BoolVar(&opts.strict, "strict", false, "Exit with code 1 when any file was skipped")
	f.BoolVarP(&opts.recursive, "recursive", "r", false, "Search subdirectories (default: from config)")
	cmd.MarkFlagsMutuallyExclusive("filename-pattern", "header-pattern")

	return cmd
}

// sweepPlan is a sweep whose extractor and collector are ready to run.
type sweepPlan struct {
	name      string
	dir       string
	glob      string
	extractor paramextract.Extractor
	collector *sweep.Collector
}

func runSweep(cmd *cobra.Command, configPath string, opts *sweepOptions, names []string) error {
	format, err := reporting.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	selected, err := selectSweeps(cfg, opts, names)
	if err != nil {
		return err
	}

	// Every sweep is validated before any file is read.
	plans := make([]sweepPlan, 0, len(selected))
	loader := runs.NewLoader(cfg.Columns, cfg.Limits.Options())
	for _, s := range selected {
		plan, err := planSweep(cmd, cfg, opts, s, loader)
		if err != nil {
			return fmt.Errorf("sweep %s: %w", s.Name, err)
		}
		plans = append(plans, plan)
	}

	recursive := cfg.Defaults.Recursive != nil && *cfg.Defaults.Recursive
	if cmd.Flags().Changed("recursive") {
		recursive = opts.recursive
	}

	reportAll := len(names) == 0 && len(plans) > 1
	tables := make([]reporting.NamedTable, 0, len(plans))
	skipped := 0
	for _, p := range plans {
		files, err := discovery.Discover(p.dir, p.glob, discovery.Options{Recursive: recursive})
		if err != nil {
			return fmt.Errorf("sweep %s: %w", p.name, err)
		}
		if len(files) == 0 && reportAll {
			slog.Info("no result files for sweep", "sweep", p.name, "dir", p.dir, "glob", p.glob)
			continue
		}
		slog.Debug("running sweep", "sweep", p.name, "dir", p.dir, "files", len(files))

		table := p.collector.Collect(p.extractor, files)
		skipped += len(table.Skipped)
		tables = append(tables, reporting.NamedTable{Name: p.name, Table: table})
	}

	ropts := reporting.Options{Series: opts.series, Summary: opts.summary}
	w := cmd.OutOrStdout()
	if err := writeSweeps(w, format.Resolve(w), tables, ropts); err != nil {
		return err
	}

	if opts.strict && skipped > 0 {
		return &SkippedFilesError{Count: skipped}
	}
	return nil
}

// selectSweeps returns the sweeps named on the command line, the ad-hoc
// sweep described by flags, or every configured sweep.
func selectSweeps(cfg *projectconfig.ProjectConfig, opts *sweepOptions, names []string) ([]projectconfig.SweepConfig, error) {
	adhoc := opts.glob != "" || opts.filenamePattern != "" || opts.headerPattern != ""
	if adhoc {
		if len(names) > 0 {
			return nil, errors.New("sweep names cannot be combined with --glob or pattern flags")
		}
		s, err := adhocSweep(opts)
		if err != nil {
			return nil, err
		}
		return []projectconfig.SweepConfig{s}, nil
	}

	if len(names) == 0 {
		if len(cfg.Sweeps) == 0 {
			return nil, errors.New("no sweeps configured")
		}
		return cfg.Sweeps, nil
	}

	out := make([]projectconfig.SweepConfig, 0, len(names))
	for _, name := range names {
		s, ok := cfg.Sweep(name)
		if !ok {
			return nil, fmt.Errorf("unknown sweep %q (configured: %s)", name, strings.Join(cfg.SweepNames(), ", "))
		}
		out = append(out, s)
	}
	return out, nil
}

func adhocSweep(opts *sweepOptions) (projectconfig.SweepConfig, error) {
	if opts.glob == "" {
		return projectconfig.SweepConfig{}, errors.New("--glob is required for an ad-hoc sweep")
	}

	ex := paramextract.Config{Type: paramextract.TypeFilename, Params: map[string]any{"pattern": opts.filenamePattern}}
	switch {
	case opts.headerPattern != "":
		ex = paramextract.Config{Type: paramextract.TypeHeader, Params: map[string]any{"pattern": opts.headerPattern}}
	case opts.filenamePattern == "":
		return projectconfig.SweepConfig{}, errors.New("--filename-pattern or --header-pattern is required with --glob")
	}

	return projectconfig.SweepConfig{Name: adhocSweepName, Glob: opts.glob, Extractor: ex}, nil
}

// planSweep applies flag overrides to s and builds its extractor and
// collector.
func planSweep(cmd *cobra.Command, cfg *projectconfig.ProjectConfig, opts *sweepOptions, s projectconfig.SweepConfig, loader *runs.Loader) (sweepPlan, error) {
	flags := cmd.Flags()

	if flags.Changed("scale") {
		params := maps.Clone(s.Extractor.Params)
		if params == nil {
			params = map[string]any{}
		}
		params["scale"] = opts.scale
		s.Extractor.Params = params
	}
	window := cfg.SmoothingWindowFor(s)
	if flags.Changed("smooth") {
		window = opts.smooth
	}
	dir := cfg.DirFor(s)
	if opts.dir != "" {
		dir = opts.dir
	}

	if err := discovery.ValidatePattern(s.Glob); err != nil {
		return sweepPlan{}, err
	}
	ex, err := paramextract.New(s.Extractor, cfg.Limits.Options())
	if err != nil {
		return sweepPlan{}, err
	}
	collector, err := sweep.New(sweep.Config{Loader: loader, SmoothingWindow: window})
	if err != nil {
		return sweepPlan{}, err
	}

	return sweepPlan{name: s.Name, dir: dir, glob: s.Glob, extractor: ex, collector: collector}, nil
}

func writeSweeps(w io.Writer, format reporting.Format, tables []reporting.NamedTable, opts reporting.Options) error {
	if format == reporting.FormatJSON {
		return reporting.WriteSweepsJSON(w, tables, opts)
	}
	for i, nt := range tables {
		if len(tables) > 1 {
			if i > 0 {
				fmt.Fprintln(w) //nolint:errcheck
			}
			fmt.Fprintf(w, "== %s ==\n", nt.Name) //nolint:errcheck
		}
		if err := reporting.WriteTable(w, nt.Table, opts); err != nil {
			return err
		}
	}
	return nil
}
