package validator

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValidationError describes one rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors collects every rejected field of a request so callers
// report them together.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string, len(v))
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsValidUUID accepts the canonical 36 character form of an RFC 4122
// version 7 UUID, the only kind of id the service generates.
func IsValidUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	id, err := uuid.Parse(s)
	return err == nil && id.Version() == 7 && id.Variant() == uuid.RFC4122
}

// IsValidDate parses a YYYY-MM-DD date as midnight UTC.
func IsValidDate(dateStr string) (time.Time, bool) {
	return IsValidDateIn(dateStr, time.UTC)
}

// IsValidDateIn parses a YYYY-MM-DD date as midnight in loc.
func IsValidDateIn(dateStr string, loc *time.Location) (time.Time, bool) {
	date, err := time.ParseInLocation(time.DateOnly, dateStr, loc)
	return date, err == nil
}

func IsInSlice(value string, slice []string) bool {
	return slices.Contains(slice, value)
}

// IsValidDateTime accepts RFC 3339 timestamps with an explicit offset,
// fractional seconds included. Punch times without an offset are rejected.
func IsValidDateTime(dateTimeStr string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, dateTimeStr)
	return t, err == nil
}
