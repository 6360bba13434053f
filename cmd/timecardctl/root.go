package main

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

func newRootCmd(d *Deps) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "timecardctl",
		Short: "Batch tools for the timecard service",
		Long: `timecardctl runs timecard work that has no HTTP caller.

Configuration is read from the environment (and .env when present), the
same way the API server reads it.

Examples:
  timecardctl auto-approve
  timecardctl report --tenant t1 --user u1 --kind compliance --start 2024-04-01 --end 2024-04-30`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(d.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	root.SetOut(d.Stdout)
	root.SetErr(d.Stderr)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")

	root.AddCommand(newAutoApproveCmd(d))
	root.AddCommand(newReportCmd(d))
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
