package domain

import (
	"math"
	"strings"
)

// Cadence is how often an employee's salary is paid
type Cadence string

const (
	CadenceMonthly  Cadence = "monthly"
	CadenceBiweekly Cadence = "biweekly"
	CadenceWeekly   Cadence = "weekly"
)

const (
	OrdinaryMultiplier = 1.5
	HolidayMultiplier  = 3.0
)

// ParseCadence accepts the English names and the labels used in the HR
// catalog. Unknown values fall back to monthly.
func ParseCadence(s string) Cadence {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "biweekly", "quincenal", "semimonthly":
		return CadenceBiweekly
	case "weekly", "semanal":
		return CadenceWeekly
	default:
		return CadenceMonthly
	}
}

// HourBase is the number of paid hours one salary installment covers
func (c Cadence) HourBase() float64 {
	switch c {
	case CadenceBiweekly:
		return 120
	case CadenceWeekly:
		return 48
	default:
		return 240
	}
}

// HourlyRate derives the ordinary hourly rate from salary and cadence
func HourlyRate(salary float64, c Cadence) float64 {
	return salary / c.HourBase()
}

// Multiplier is the legal surcharge factor for the day
func Multiplier(holiday bool) float64 {
	if holiday {
		return HolidayMultiplier
	}
	return OrdinaryMultiplier
}

// Hours converts minutes to hours rounded to two decimals
func Hours(minutes int) float64 {
	return round(float64(minutes)/60, 2)
}

// Amount prices hours, rounded to five decimals
func Amount(rate, multiplier, hours float64) float64 {
	return round(rate*multiplier*hours, 5)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
