package http

import (
	"net/http"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/timecard-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ReportHandler interface {
	// Get builds the attendance, overtime or compliance report named by {kind}.
	Get(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// Get implements ReportHandler. user_id defaults to the caller and locale to
// the service default.
func (h *reportHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		response.HandleError(w, auth.ErrInvalidToken)
		return
	}

	query := r.URL.Query()
	req := report.ReportRequest{
		TenantID:  actor.TenantID,
		UserID:    query.Get("user_id"),
		StartDate: query.Get("start_date"),
		EndDate:   query.Get("end_date"),
		Kind:      report.Kind(chi.URLParam(r, "kind")),
		Locale:    query.Get("locale"),
	}
	if req.UserID == "" {
		req.UserID = actor.ID
	}

	result, err := h.reportService.BuildReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
