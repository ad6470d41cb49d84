package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var workDate = time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

func fact(in, out, entry, exit string) Fact {
	return Fact{
		AttendanceID:  "att-1",
		EmployeeID:    "emp-1",
		Date:          workDate,
		ClockIn:       in,
		ClockOut:      out,
		ScheduleEntry: entry,
		ScheduleExit:  exit,
		Salary:        2400, // 10/h on a monthly cadence
		Cadence:       "monthly",
	}
}

func TestCompute_DayNightSplit(t *testing.T) {
	segs, reason := Compute(fact("17:00:00", "20:30:00", "08:00:00", "17:00:00"))
	require.Equal(t, SkipNone, reason)
	require.Len(t, segs, 2)

	assert.Equal(t, KindDiurnal, segs[0].Kind)
	assert.Equal(t, "17:00", segs[0].StartTime)
	assert.Equal(t, "19:00", segs[0].EndTime)
	assert.Equal(t, 2.0, segs[0].Hours)
	assert.Equal(t, 30.0, segs[0].Amount)
	assert.Equal(t, "Diurnal overtime 17:00-19:00", segs[0].Description)

	assert.Equal(t, KindNocturnal, segs[1].Kind)
	assert.Equal(t, "19:00", segs[1].StartTime)
	assert.Equal(t, "20:30", segs[1].EndTime)
	assert.Equal(t, 1.5, segs[1].Hours)
	assert.Equal(t, 22.5, segs[1].Amount)

	for _, s := range segs {
		assert.Equal(t, OrdinaryMultiplier, s.Multiplier)
		assert.Equal(t, workDate, s.Date)
		assert.Equal(t, OriginAfter, s.Origin)
	}
}

func TestCompute_HolidayMultiplier(t *testing.T) {
	f := fact("17:00", "20:30", "08:00", "17:00")
	f.Holiday = true
	f.HolidayName = "Labour Day"

	segs, reason := Compute(f)
	require.Equal(t, SkipNone, reason)
	require.Len(t, segs, 2)

	assert.Equal(t, 60.0, segs[0].Amount)
	assert.Equal(t, 45.0, segs[1].Amount)
	assert.Equal(t, HolidayMultiplier, segs[0].Multiplier)
	assert.Equal(t, "Nocturnal overtime 19:00-20:30 (holiday: Labour Day)", segs[1].Description)
}

func TestCompute_HolidayWithoutName(t *testing.T) {
	f := fact("07:00", "16:00", "08:00", "16:00")
	f.Holiday = true

	segs, _ := Compute(f)
	require.Len(t, segs, 1)
	assert.Equal(t, "Diurnal overtime 07:00-08:00 (holiday: public holiday)", segs[0].Description)
}

func TestCompute_MidnightCrossingMergesIntoOneNocturnalSegment(t *testing.T) {
	segs, reason := Compute(fact("16:00", "00:45", "16:00", "23:30"))
	require.Equal(t, SkipNone, reason)
	require.Len(t, segs, 1)

	assert.Equal(t, KindNocturnal, segs[0].Kind)
	assert.Equal(t, "23:30", segs[0].StartTime)
	assert.Equal(t, "00:45", segs[0].EndTime)
	assert.Equal(t, 75, segs[0].Minutes)
	assert.Equal(t, 1.25, segs[0].Hours)
	// starts before midnight, so it belongs to the attendance date
	assert.Equal(t, workDate, segs[0].Date)
}

func TestCompute_AttributesNextDaySegmentToNextDate(t *testing.T) {
	// Night shift 22:00-06:00, stays until 08:00
	segs, reason := Compute(fact("22:00", "08:00", "22:00", "06:00"))
	require.Equal(t, SkipNone, reason)
	require.Len(t, segs, 1)

	assert.Equal(t, KindDiurnal, segs[0].Kind)
	assert.Equal(t, "06:00", segs[0].StartTime)
	assert.Equal(t, "08:00", segs[0].EndTime)
	assert.Equal(t, workDate.AddDate(0, 0, 1), segs[0].Date)
}

func TestCompute_NightShiftLeavingAcrossFiveAM(t *testing.T) {
	// Shift 20:00-04:00, stays until 06:00: 04:00-05:00 nocturnal, 05:00-06:00 diurnal
	segs, reason := Compute(fact("20:00", "06:00", "20:00", "04:00"))
	require.Equal(t, SkipNone, reason)
	require.Len(t, segs, 2)
	assert.Equal(t, KindNocturnal, segs[0].Kind)
	assert.Equal(t, "04:00", segs[0].StartTime)
	assert.Equal(t, "05:00", segs[0].EndTime)
	assert.Equal(t, KindDiurnal, segs[1].Kind)
}

func TestCompute_Skips(t *testing.T) {
	tests := []struct {
		name string
		f    Fact
		want SkipReason
	}{
		{"no schedule", fact("08:00", "17:00", "", ""), SkipNoSchedule},
		{"garbage clock", fact("8 o'clock", "17:00", "08:00", "17:00"), SkipInvalidClock},
		{"no extra", fact("08:00", "17:00", "08:00", "17:00"), SkipNoExtra},
		{"zero salary", func() Fact { f := fact("08:00", "19:00", "08:00", "17:00"); f.Salary = 0; return f }(), SkipNoRate},
		{"negative salary", func() Fact { f := fact("08:00", "19:00", "08:00", "17:00"); f.Salary = -10; return f }(), SkipNoRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs, reason := Compute(tt.f)
			assert.Empty(t, segs)
			assert.Equal(t, tt.want, reason)
		})
	}
}

func TestCompute_RoundingNeverInflatesDayTotal(t *testing.T) {
	// Four one-minute segments: each rounds to 0.02h but the day is only 0.07h
	segs, reason := Compute(fact("18:59", "05:01", "19:01", "04:59"))
	require.Equal(t, SkipNone, reason)
	require.Len(t, segs, 4)

	sum := 0.0
	for _, s := range segs {
		assert.Greater(t, s.Hours, 0.0)
		sum += s.Hours
	}
	assert.InDelta(t, 0.07, sum, 1e-9)
	assert.Equal(t, workDate, segs[0].Date)
	assert.Equal(t, workDate.AddDate(0, 0, 1), segs[3].Date)
}

func TestCompute_PropertiesHoldForAllClockPairs(t *testing.T) {
	schedules := [][2]string{{"08:00", "17:00"}, {"22:00", "06:00"}, {"06:00", "14:00"}, {"14:00", "22:00"}}

	for in := 0; in < 1440; in += 25 {
		for out := 0; out < 1440; out += 35 {
			for _, sch := range schedules {
				for _, holiday := range []bool{false, true} {
					f := fact(ClockOf(Minute(in)), ClockOf(Minute(out)), sch[0], sch[1])
					f.Holiday = holiday

					segs, reason := Compute(f)
					if reason != SkipNone {
						assert.Empty(t, segs)
						continue
					}

					hours := 0.0
					for _, s := range segs {
						assert.Greater(t, s.Hours, 0.0)
						assert.Greater(t, s.Amount, 0.0)
						hours += s.Hours
					}
					assert.LessOrEqual(t, hours, 4.0+1e-9, "fact %+v", f)
				}
			}
		}
	}
}
