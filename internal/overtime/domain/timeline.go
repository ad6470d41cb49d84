// Package domain is the pure overtime engine: shift deltas, the diurnal and
// nocturnal split, and pricing. Nothing here touches the database.
package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Minute is an offset on a two-day timeline that starts at 00:00 of the
// attendance date. Values in [0, 1440) are the attendance day itself,
// values in [1440, 2880) the following day.
type Minute int

const (
	MinutesPerDay      Minute = 1440
	TimelineMinutes    Minute = 2 * MinutesPerDay
	DiurnalStartMinute Minute = 5 * 60  // 05:00
	DiurnalEndMinute   Minute = 19 * 60 // 19:00
)

// ParseClock converts "HH:MM" or "HH:MM:SS" into minutes past midnight.
// Seconds are truncated.
func ParseClock(s string) (Minute, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}

	limits := []int{23, 59, 59}
	values := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > limits[i] || len(p) > 2 {
			return 0, fmt.Errorf("invalid clock %q", s)
		}
		values[i] = v
	}

	return Minute(values[0]*60 + values[1]), nil
}

// Span is a half-open interval [Start, End) on the timeline
type Span struct {
	Start Minute
	End   Minute
}

// SpanOf places a start and end clock (minutes past midnight) on the
// timeline. An end at or before the start is read as the next day, so the
// result always has a positive length of at most one day.
func SpanOf(start, end Minute) Span {
	if end <= start {
		end += MinutesPerDay
	}
	return Span{Start: start, End: end}
}

// Minutes returns the length of the span
func (s Span) Minutes() int {
	return int(s.End - s.Start)
}

// Empty reports whether the span covers no time
func (s Span) Empty() bool {
	return s.End <= s.Start
}

// Intersect returns the overlap of two spans, empty when they do not meet
func (s Span) Intersect(o Span) Span {
	start, end := s.Start, s.End
	if o.Start > start {
		start = o.Start
	}
	if o.End < end {
		end = o.End
	}
	if end < start {
		end = start
	}
	return Span{Start: start, End: end}
}

// DayOffset is the number of whole days m lies after the attendance date
func DayOffset(m Minute) int {
	return int(m / MinutesPerDay)
}

// ClockOf renders m as a wall clock "HH:MM", dropping the day offset
func ClockOf(m Minute) string {
	mod := m % MinutesPerDay
	if mod < 0 {
		mod += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", mod/60, mod%60)
}

func (s Span) String() string {
	return ClockOf(s.Start) + "-" + ClockOf(s.End)
}
