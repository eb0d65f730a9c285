package model

import (
	"fmt"
	"time"
)

// TemporalRange is a closed UTC time interval. Start and End may coincide,
// in which case the Item carries a single datetime instead of a range.
type TemporalRange struct {
	Start time.Time
	End   time.Time
}

// InvalidTemporalRangeError reports a range whose start falls after its end
type InvalidTemporalRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidTemporalRangeError) Error() string {
	return fmt.Sprintf("temporal range start %s is after end %s", FormatUTC(e.Start), FormatUTC(e.End))
}

// NewTemporalRange normalizes both endpoints to UTC and enforces ordering
func NewTemporalRange(start, end time.Time) (*TemporalRange, error) {
	start = start.UTC()
	end = end.UTC()
	if start.After(end) {
		return nil, &InvalidTemporalRangeError{Start: start, End: end}
	}
	return &TemporalRange{Start: start, End: end}, nil
}

// Instant reports whether the range collapses to a single point in time
func (tr TemporalRange) Instant() bool {
	return tr.Start.Equal(tr.End)
}
