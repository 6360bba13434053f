package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/report"
)

func newReportCmd(d *Deps) *cobra.Command {
	var (
		req     report.ReportRequest
		kind    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build an attendance, overtime or compliance report as JSON",
		Long: `Build a period report for one user.

Kinds: attendance, overtime, compliance. Dates are YYYY-MM-DD and inclusive.
When --timeout elapses the partial report is printed with truncated set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Kind = report.Kind(kind)
			req.Timeout = timeout

			backend, err := d.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			result, err := backend.Reports.BuildReport(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(d.Stdout, result)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.TenantID, "tenant", "", "tenant id (required)")
	flags.StringVar(&req.UserID, "user", "", "user id (required)")
	flags.StringVar(&req.StartDate, "start", "", "first date of the period (required)")
	flags.StringVar(&req.EndDate, "end", "", "last date of the period (required)")
	flags.StringVar(&kind, "kind", string(report.KindAttendance), "report kind")
	flags.StringVar(&req.Locale, "locale", "", "label locale, en or pt-BR")
	flags.DurationVar(&timeout, "timeout", 0, "generation budget, 0 for the configured default")
	for _, name := range []string{"tenant", "user", "start", "end"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
