package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/eth2030/dassim/pkg/dlog"
)

var (
	cfgFile   string
	verbose   bool
	plainLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "dassim",
	Short: "Discrete-event simulator for 2D Data Availability Sampling dissemination",
	Long: `dassim simulates how a two-dimensional DAS block propagates over a row/column
gossip overlay: a proposer publishes a block under a configurable failure
rate, validators forward segments under per-class bandwidth budgets, and the
simulator reports time-to-availability and traffic statistics per run.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config/shape file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&plainLogs, "plain-logs", false, "disable ANSI color in console log output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(serveCmd)
}

// logger builds the CLI's console logger: colored, human-readable lines for
// an operator watching a run, rather than dlog.New's one-JSON-object-per-line
// output (reserved for long-running/scraped contexts this CLI doesn't run in).
func logger() *dlog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return dlog.NewConsole(level, os.Stderr, !plainLogs)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
