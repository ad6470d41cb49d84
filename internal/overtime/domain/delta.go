package domain

const (
	// DailyWorkCapMinutes bounds the total minutes worked in one day (12h).
	DailyWorkCapMinutes = 720
	// DailyOvertimeCapMinutes bounds the overtime paid for one day (4h).
	DailyOvertimeCapMinutes = 240
)

// Origin tells whether a tramo was worked before or after the scheduled shift
type Origin string

const (
	OriginBefore Origin = "before"
	OriginAfter  Origin = "after"
)

// Tramo is one contiguous stretch of extra time before the day/night split
type Tramo struct {
	Span   Span
	Origin Origin
}

// ShiftDelta derives the capped extra-time tramos for one attendance day.
// worked and scheduled must come from SpanOf.
//
// Both caps are applied independently: excess over the 12h workday is
// removed first, then the remainder is clipped to 4h. The capped total is
// taken from the before-shift stretch first, the rest from after-shift.
func ShiftDelta(worked, scheduled Span) []Tramo {
	if worked.Minutes() <= 0 || scheduled.Minutes() <= 0 {
		return nil
	}

	before := maxInt(0, int(scheduled.Start-worked.Start))
	after := maxInt(0, int(worked.End-scheduled.End))

	raw := before + after
	if raw <= 0 {
		return nil
	}

	if total := worked.Minutes(); total > DailyWorkCapMinutes {
		raw = maxInt(0, raw-(total-DailyWorkCapMinutes))
	}
	raw = minInt(raw, DailyOvertimeCapMinutes)

	before = minInt(before, raw)
	after = minInt(after, raw-before)

	var tramos []Tramo
	if before > 0 {
		tramos = append(tramos, Tramo{
			Span:   Span{Start: worked.Start, End: worked.Start + Minute(before)},
			Origin: OriginBefore,
		})
	}
	if after > 0 {
		tramos = append(tramos, Tramo{
			Span:   Span{Start: scheduled.End, End: scheduled.End + Minute(after)},
			Origin: OriginAfter,
		})
	}
	return tramos
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
