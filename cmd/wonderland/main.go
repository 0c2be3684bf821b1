// Package main is the entry point of the wonderland command: the device
// server, the shared sync hub and a few operator subcommands.
// Its sole responsibility is wiring dependencies together. No business
// logic belongs here.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs after the root has run.
type app struct {
	cfg config.Config
	log *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "wonderland",
		Short: "Wonderland Japan tour log",
		Long: `Tour log for the Wonderland Japan operator.

Commands:
  serve     Device HTTP API
  hub       Shared sync endpoint backed by Postgres
  migrate   Apply hub database migrations
  stats     Print the monthly dashboard
  export    Write the records as CSV or XLSX
  sync      Run one push-then-pull round`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = newLogger(cfg.Log.Level)
			slog.SetDefault(a.log)
			return nil
		},
	}

	root.AddCommand(
		newServeCommand(a),
		newHubCommand(a),
		newMigrateCommand(a),
		newStatsCommand(a),
		newExportCommand(a),
		newSyncCommand(a),
	)
	return root
}

// newLogger builds the JSON logger on stdout. Unknown levels fall back to info.
func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
}
