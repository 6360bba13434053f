package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
	"github.com/cmlabs-hris/timecard-backend-go/internal/pkg/validator"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// errorMappings is checked in order with errors.Is. An empty message means
// the error text itself is safe to show.
var errorMappings = []errorMapping{
	// Auth
	{auth.ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token"},
	{auth.ErrTenantRequired, http.StatusForbidden, "FORBIDDEN", "Token is not bound to a tenant"},

	// Punches
	{timecard.ErrNoActiveEntry, http.StatusBadRequest, "NO_ACTIVE_ENTRY", "No open time entry to check out"},
	{timecard.ErrDuplicateOpenEntry, http.StatusConflict, "DUPLICATE_OPEN_ENTRY", "An open time entry already exists, check out first"},
	{timecard.ErrInvalidSequence, http.StatusBadRequest, "INVALID_SEQUENCE", "Check-out must be after check-in"},
	{timecard.ErrInvalidAction, http.StatusBadRequest, "INVALID_ACTION", "Unknown punch action"},
	{timecard.ErrInvalidEntry, http.StatusBadRequest, "INVALID_ENTRY", ""},
	{timecard.ErrConcurrentUpdate, http.StatusConflict, "CONCURRENT_UPDATE", "Time entry was modified concurrently, retry"},

	// Approval
	{timecard.ErrNotPending, http.StatusConflict, "NOT_PENDING", "Time entry is not pending approval"},
	{timecard.ErrUnauthorized, http.StatusForbidden, "FORBIDDEN", "Not allowed to approve this time entry"},
	{timecard.ErrSettingsMissing, http.StatusConflict, "SETTINGS_MISSING", "Approval settings are not configured for this tenant"},
	{timecard.ErrNotAutoApprovable, http.StatusConflict, "NOT_AUTO_APPROVABLE", "Time entry does not qualify for automatic approval"},

	// A foreign entry is reported as missing.
	{timecard.ErrEntryNotFound, http.StatusNotFound, "NOT_FOUND", "Time entry not found"},
	{timecard.ErrTenantMismatch, http.StatusNotFound, "NOT_FOUND", "Time entry not found"},

	// Reports
	{report.ErrInvalidKind, http.StatusNotFound, "NOT_FOUND", "Unknown report kind"},
	{report.ErrInvalidDateRange, http.StatusBadRequest, "INVALID_DATE_RANGE", "end_date must not be before start_date"},
	{report.ErrRangeTooLong, http.StatusBadRequest, "RANGE_TOO_LONG", "Report period must not exceed 366 days"},
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	if errors.Is(err, timecard.ErrMissingReason) {
		ValidationError(w, map[string]string{"reason": "reason is required"})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			message := m.message
			if message == "" {
				message = err.Error()
			}
			Fail(w, m.status, m.code, message, nil)
			return
		}
	}

	slog.Error("Unhandled error", "error", err)
	InternalServerError(w, "An unexpected error occurred")
}
