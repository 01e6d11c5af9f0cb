package domain

import (
	"fmt"

	"github.com/m04kA/SMC-DialysisService/pkg/types"
)

// MinutesPerDay minutes in a calendar day
const MinutesPerDay = 24 * 60

// TimeRange half-open range [StartMinute, EndMinute) of elapsed minutes since the
// midnight that starts the appointment date. Values above MinutesPerDay belong to the
// next day, so a range crossing midnight stays strictly ordered.
type TimeRange struct {
	StartMinute int
	EndMinute   int
}

// NewTimeRange validates 0 <= start < end
func NewTimeRange(start, end int) (TimeRange, error) {
	if start < 0 {
		return TimeRange{}, fmt.Errorf("%w: start time must not be negative", ErrValidation)
	}
	if start >= end {
		return TimeRange{}, fmt.Errorf("%w: start time must be before end time", ErrValidation)
	}
	return TimeRange{StartMinute: start, EndMinute: end}, nil
}

// ParseTimeRange parses "HH:MM" bounds; hours 24..47 address the next day ("23:00"-"25:00")
func ParseTimeRange(start, end string) (TimeRange, error) {
	s, err := types.ParseElapsedMinutes(start)
	if err != nil {
		return TimeRange{}, fmt.Errorf("%w: start time: %v", ErrValidation, err)
	}
	e, err := types.ParseElapsedMinutes(end)
	if err != nil {
		return TimeRange{}, fmt.Errorf("%w: end time: %v", ErrValidation, err)
	}
	return NewTimeRange(s, e)
}

// Duration length of the range in minutes
func (r TimeRange) Duration() int {
	return r.EndMinute - r.StartMinute
}

// Overlaps reports whether [s1,e1) and [s2,e2) intersect: s1 < e2 && s2 < e1
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.StartMinute < other.EndMinute && other.StartMinute < r.EndMinute
}

// Within reports whether r lies inside outer
func (r TimeRange) Within(outer TimeRange) bool {
	return r.StartMinute >= outer.StartMinute && r.EndMinute <= outer.EndMinute
}

// ResolveIn places a same-day range into an opening window that crosses midnight.
// A range starting before the opening time is read as next-day time, so "00:00"-"02:00"
// in a 20:00-02:00 window becomes 1440-1560. Other ranges are returned unchanged.
func (r TimeRange) ResolveIn(window TimeRange) TimeRange {
	if window.EndMinute <= MinutesPerDay || r.StartMinute >= window.StartMinute || r.EndMinute > MinutesPerDay {
		return r
	}
	return TimeRange{StartMinute: r.StartMinute + MinutesPerDay, EndMinute: r.EndMinute + MinutesPerDay}
}

// Start display form, normalized modulo 24h
func (r TimeRange) Start() types.TimeString {
	return types.FromMinutes(r.StartMinute)
}

// End display form, normalized modulo 24h
func (r TimeRange) End() types.TimeString {
	return types.FromMinutes(r.EndMinute)
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%s-%s", r.Start(), r.End())
}
