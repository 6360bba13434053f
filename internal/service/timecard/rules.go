package timecard

import "time"

// Rules holds the thresholds shared by the normalizer, validator and calculator.
type Rules struct {
	// LongShiftThreshold is the span above which a missing break is inferred.
	LongShiftThreshold time.Duration
	// InferredBreak is the length of an inferred break, centred on the shift midpoint.
	InferredBreak time.Duration

	MandatoryBreakAfter time.Duration
	MaxShift            time.Duration
	MinShift            time.Duration
	MaxBreak            time.Duration

	// StandardDayMinutes is the overtime threshold and expected daily work
	// when no schedule defines one.
	StandardDayMinutes int

	// Location decides calendar dates.
	Location *time.Location
}

func DefaultRules() Rules {
	return Rules{
		LongShiftThreshold:  6 * time.Hour,
		InferredBreak:       time.Hour,
		MandatoryBreakAfter: 6 * time.Hour,
		MaxShift:            16 * time.Hour,
		MinShift:            5 * time.Minute,
		MaxBreak:            4 * time.Hour,
		StandardDayMinutes:  480,
		Location:            time.UTC,
	}
}

// TimeZone is the location calendar dates are taken in.
func (r Rules) TimeZone() *time.Location {
	return r.location()
}

func (r Rules) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

// CalendarDate returns midnight of t's date in the rules' location.
func (r Rules) CalendarDate(t time.Time) time.Time {
	local := t.In(r.location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, r.location())
}
