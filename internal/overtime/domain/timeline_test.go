package domain

import (
	"testing"

	"github.com/medflow/payroll-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
)

func TestParseClock(t *testing.T) {
	testutil.RunTestCases(t, []testutil.TestCase[string, Minute]{
		{Name: "HH:MM", Input: "08:30", Expected: 510},
		{Name: "HH:MM:SS truncates seconds", Input: "17:00:59", Expected: 1020},
		{Name: "midnight", Input: "00:00", Expected: 0},
		{Name: "last minute", Input: "23:59:00", Expected: 1439},
		{Name: "padded input", Input: " 07:05 ", Expected: 425},
		{Name: "hour out of range", Input: "24:00", WantErr: true},
		{Name: "minute out of range", Input: "10:60", WantErr: true},
		{Name: "garbage", Input: "ten past eight", WantErr: true},
		{Name: "empty", Input: "", WantErr: true},
		{Name: "negative", Input: "-1:00", WantErr: true},
	}, ParseClock)
}

func TestSpanOf(t *testing.T) {
	tests := []struct {
		name       string
		start, end Minute
		want       Span
	}{
		{"same day", 480, 1020, Span{480, 1020}},
		{"crosses midnight", 1320, 360, Span{1320, 1800}},
		{"equal times read as a full day", 600, 600, Span{600, 2040}},
		{"ends exactly at midnight", 1080, 0, Span{1080, 1440}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SpanOf(tt.start, tt.end)
			assert.Equal(t, tt.want, got)
			assert.Greater(t, got.Minutes(), 0)
			assert.LessOrEqual(t, got.End, TimelineMinutes)
		})
	}
}

func TestSpan_Intersect(t *testing.T) {
	a := Span{100, 200}
	assert.Equal(t, Span{150, 200}, a.Intersect(Span{150, 400}))
	assert.True(t, a.Intersect(Span{200, 300}).Empty())
	assert.True(t, a.Intersect(Span{300, 400}).Empty())
}

func TestClockOfAndDayOffset(t *testing.T) {
	assert.Equal(t, "23:30", ClockOf(1410))
	assert.Equal(t, "00:45", ClockOf(1485))
	assert.Equal(t, "00:00", ClockOf(1440))
	assert.Equal(t, 0, DayOffset(1439))
	assert.Equal(t, 1, DayOffset(1440))
	assert.Equal(t, "23:30-00:45", Span{1410, 1485}.String())
}
