package main

import (
	"log/slog"

	"github.com/spboyer/coopsweep/internal/projectconfig"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "coopsweep",
		Short: "coopsweep - summarize cooperation simulation parameter sweeps",
		Long: `coopsweep reads the per-step strategy logs written by cooperation
simulations and summarizes them.

It recovers each run's sweep parameter from the file name or header, computes
the per-step cooperation percentage and cooperator cluster count, and reports
the final values of every run ordered by parameter.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the project config file (default: nearest "+projectconfig.FileName+")")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newSweepCommand(&configPath))
	cmd.AddCommand(newSeriesCommand(&configPath))
	cmd.AddCommand(newConditionsCommand(&configPath))
	cmd.AddCommand(newValidateCommand(&configPath))

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}

// loadConfig reads the explicit config file when one was given and
// otherwise searches upward from the working directory.
func loadConfig(configPath string) (*projectconfig.ProjectConfig, error) {
	if configPath != "" {
		return projectconfig.LoadFile(configPath)
	}
	return projectconfig.Load(".")
}
