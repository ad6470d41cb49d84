package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCadence(t *testing.T) {
	tests := map[string]Cadence{
		"monthly":   CadenceMonthly,
		"MENSUAL":   CadenceMonthly,
		"Biweekly":  CadenceBiweekly,
		"quincenal": CadenceBiweekly,
		"weekly":    CadenceWeekly,
		" semanal ": CadenceWeekly,
		"":          CadenceMonthly,
		"annual":    CadenceMonthly,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseCadence(in), "input %q", in)
	}
}

func TestHourBase(t *testing.T) {
	assert.Equal(t, 240.0, CadenceMonthly.HourBase())
	assert.Equal(t, 120.0, CadenceBiweekly.HourBase())
	assert.Equal(t, 48.0, CadenceWeekly.HourBase())
	assert.Equal(t, 240.0, Cadence("unknown").HourBase())
}

func TestHourlyRate(t *testing.T) {
	assert.Equal(t, 10.0, HourlyRate(2400, CadenceMonthly))
	assert.Equal(t, 10.0, HourlyRate(1200, CadenceBiweekly))
	assert.Equal(t, 10.0, HourlyRate(480, CadenceWeekly))
}

func TestHoursAndAmountRounding(t *testing.T) {
	assert.Equal(t, 0.02, Hours(1))
	assert.Equal(t, 1.67, Hours(100))
	assert.Equal(t, 4.0, Hours(240))

	// 1000/240 = 4.1666..; x1.5 x1.67 = 10.4375 (to five places)
	assert.Equal(t, 10.4375, Amount(HourlyRate(1000, CadenceMonthly), OrdinaryMultiplier, 1.67))
	assert.Equal(t, 0.00001, Amount(0.0000033, 3.0, 1))
}

func TestMultiplier(t *testing.T) {
	assert.Equal(t, 1.5, Multiplier(false))
	assert.Equal(t, 3.0, Multiplier(true))
}
