package report

import "context"

// ReportService defines the interface for report generation
type ReportService interface {
	// BuildReport walks every date of the requested period. Dates without
	// entries produce no row. When the deadline passes midway the rows built so
	// far are returned with Truncated set.
	BuildReport(ctx context.Context, req ReportRequest) (Report, error)
}
