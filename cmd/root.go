// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for dunequery.
// The root command runs a SQL file on the Dune query engine, waits for the
// execution to finish and presents the result; subcommands inspect or cancel
// executions directly. The package handles flag parsing, signal handling and
// mapping failures to process exit codes.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dunequery/cli/internal/config"
	apperrors "dunequery/cli/internal/errors"
	"dunequery/cli/internal/httperrors"
	"dunequery/cli/internal/logging"
	"dunequery/cli/internal/sqlfile"

	"github.com/spf13/cobra"
)

var rootFlags struct {
	sqlPath      string
	output       string
	pollInterval time.Duration
	maxWait      time.Duration
	performance  string
	metricsFile  string
	verbose      bool
	showVersion  bool
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dunequery --sql <file.sql>",
	Short: "Run a SQL file on Dune and show the result",
	Long: `dunequery submits the SQL in a .sql file to the Dune query engine, checks the
execution status once per poll interval until it finishes, downloads the result
and shows it in the browser (default) or on the console.

The API key is read from DUNE_API_KEY, either exported or in a .env file in the
current directory.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if rootFlags.showVersion {
			printVersion(cmd)
			return nil
		}
		if !sqlfile.HasSQLExtension(rootFlags.sqlPath) {
			fmt.Fprintln(cmd.OutOrStdout(), "No SQL file provided. Exiting.")
			return nil
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		a := newApp(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		defer a.writeMetrics()
		return a.runQuery(cmd.Context(), rootFlags.sqlPath)
	},
}

// loadConfig builds the run configuration and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.Format = rootFlags.output
	}
	if flags.Changed("poll-interval") {
		cfg.Poll.Interval = rootFlags.pollInterval
	}
	if flags.Changed("max-wait") {
		cfg.Poll.MaxWait = rootFlags.maxWait
	}
	if flags.Changed("performance") {
		cfg.API.Performance = rootFlags.performance
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = rootFlags.metricsFile
	}
	if rootFlags.verbose {
		cfg.LogLevel = "debug"
	}
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Execute runs the CLI application and exits with a code derived from the
// error kind.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(apperrors.ExitCode(err))
	}
}

// reportError prints a categorised, masked explanation of err.
func reportError(w io.Writer, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindRemote:
		httperrors.FormatNetworkError(w, err, "talking to the Dune API")
	case apperrors.KindFetch:
		httperrors.FormatNetworkError(w, err, "downloading results")
	}
	logging.PresentFailure(w, err)
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&rootFlags.sqlPath, "sql", "", "Path to a .sql file to execute")
	f.StringVarP(&rootFlags.output, "output", "o", "browser", "Result output: browser, table, csv or json")
	f.DurationVar(&rootFlags.pollInterval, "poll-interval", time.Second, "Wait between execution status checks")
	f.DurationVar(&rootFlags.maxWait, "max-wait", 30*time.Minute, "Give up waiting after this long (0 waits forever)")
	f.StringVar(&rootFlags.performance, "performance", "medium", "Engine tier: medium or large")
	f.StringVar(&rootFlags.metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")
	f.BoolVar(&rootFlags.showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Enable debug logging")
}
