package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAutoApproveCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "auto-approve",
		Short: "Approve pending entries for every tenant with auto-approval enabled",
		Long: `Run one auto-approval sweep. Every tenant is evaluated at the same
instant; a failing tenant does not stop the others. Results are printed as
JSON even when some tenants fail, and the command then exits non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := d.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			results, sweepErr := backend.Sweeper.Sweep(cmd.Context())
			if results != nil {
				if err := writeJSON(d.Stdout, results); err != nil {
					return err
				}
			}
			if sweepErr != nil {
				return fmt.Errorf("auto-approval sweep: %w", sweepErr)
			}
			return nil
		},
	}
}
