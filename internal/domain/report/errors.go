package report

import "errors"

var (
	ErrInvalidDateRange = errors.New("end date must not be before start date")
	ErrRangeTooLong     = errors.New("report period must not exceed 366 days")
	ErrInvalidKind      = errors.New("report kind must be one of: attendance, overtime, compliance")
)
