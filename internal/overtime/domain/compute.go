package domain

import (
	"time"
)

// Fact is one validated attendance day joined with everything pricing needs
type Fact struct {
	AttendanceID string
	EmployeeID   string
	Date         time.Time

	// Wall clock times as stored, HH:MM[:SS]
	ClockIn       string
	ClockOut      string
	ScheduleEntry string
	ScheduleExit  string

	Holiday     bool
	HolidayName string

	Salary  float64
	Cadence string
}

// PricedSegment is a segment ready to be persisted
type PricedSegment struct {
	EmployeeID  string
	Date        time.Time
	Kind        Kind
	Origin      Origin
	Span        Span
	StartTime   string
	EndTime     string
	Minutes     int
	Hours       float64
	HourlyRate  float64
	Multiplier  float64
	Amount      float64
	Holiday     bool
	Description string
}

// SkipReason explains why a fact produced no segments
type SkipReason string

const (
	SkipNone                SkipReason = ""
	SkipInvalidClock        SkipReason = "invalid_clock"
	SkipNoSchedule          SkipReason = "no_schedule"
	SkipNonPositiveDuration SkipReason = "non_positive_duration"
	SkipNoExtra             SkipReason = "no_extra"
	SkipNoRate              SkipReason = "no_rate"
)

// Compute runs delta, split and pricing for one fact. It never fails: a fact
// that cannot be priced returns no segments and the reason.
// Segment hours are round2(minutes/60), except that when those roundings sum
// above the rounded day total the longest segment gives back the difference.
func Compute(f Fact) ([]PricedSegment, SkipReason) {
	if f.ScheduleEntry == "" || f.ScheduleExit == "" {
		return nil, SkipNoSchedule
	}

	clockIn, err1 := ParseClock(f.ClockIn)
	clockOut, err2 := ParseClock(f.ClockOut)
	entry, err3 := ParseClock(f.ScheduleEntry)
	exit, err4 := ParseClock(f.ScheduleExit)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return nil, SkipInvalidClock
	}

	worked := SpanOf(clockIn, clockOut)
	scheduled := SpanOf(entry, exit)
	if worked.Minutes() <= 0 || scheduled.Minutes() <= 0 {
		return nil, SkipNonPositiveDuration
	}

	tramos := ShiftDelta(worked, scheduled)
	if len(tramos) == 0 {
		return nil, SkipNoExtra
	}

	rate := HourlyRate(f.Salary, ParseCadence(f.Cadence))
	if rate <= 0 {
		return nil, SkipNoRate
	}
	multiplier := Multiplier(f.Holiday)

	type piece struct {
		seg    Segment
		origin Origin
		hours  float64
	}
	var pieces []piece
	total := 0
	for _, t := range tramos {
		for _, seg := range Split(t.Span) {
			total += seg.Span.Minutes()
			pieces = append(pieces, piece{seg: seg, origin: t.Origin, hours: Hours(seg.Span.Minutes())})
		}
	}

	// Per-segment rounding may not add up to more than the rounded day total.
	// The excess, at most one cent per segment, comes off the longest segment.
	if len(pieces) > 1 {
		sum, longest := 0.0, 0
		for i, p := range pieces {
			sum += p.hours
			if p.seg.Span.Minutes() > pieces[longest].seg.Span.Minutes() {
				longest = i
			}
		}
		if excess := round(sum-Hours(total), 2); excess > 0 {
			pieces[longest].hours = round(pieces[longest].hours-excess, 2)
		}
	}

	var out []PricedSegment
	for _, p := range pieces {
		if p.hours <= 0 {
			continue
		}
		amount := Amount(rate, multiplier, p.hours)
		if amount <= 0 {
			continue
		}

		out = append(out, PricedSegment{
			EmployeeID:  f.EmployeeID,
			Date:        f.Date.AddDate(0, 0, DayOffset(p.seg.Span.Start)),
			Kind:        p.seg.Kind,
			Origin:      p.origin,
			Span:        p.seg.Span,
			StartTime:   ClockOf(p.seg.Span.Start),
			EndTime:     ClockOf(p.seg.Span.End),
			Minutes:     p.seg.Span.Minutes(),
			Hours:       p.hours,
			HourlyRate:  rate,
			Multiplier:  multiplier,
			Amount:      amount,
			Holiday:     f.Holiday,
			Description: describe(p.seg, f),
		})
	}

	if len(out) == 0 {
		return nil, SkipNoExtra
	}
	return out, SkipNone
}

func describe(seg Segment, f Fact) string {
	d := seg.Kind.Label() + " overtime " + seg.Span.String()
	if f.Holiday {
		name := f.HolidayName
		if name == "" {
			name = "public holiday"
		}
		d += " (holiday: " + name + ")"
	}
	return d
}
