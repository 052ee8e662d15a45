package service

import (
	"time"

	"cmms_backend/platform/apperr"
)

// FrequencyUnit is the unit of a preventive plan's recurrence frequency.
type FrequencyUnit string

const (
	FrequencyDays   FrequencyUnit = "days"
	FrequencyWeeks  FrequencyUnit = "weeks"
	FrequencyMonths FrequencyUnit = "months"
	FrequencyHours  FrequencyUnit = "hours"
	FrequencyCycles FrequencyUnit = "cycles"
)

// NextDate computes the next scheduled occurrence after base. Hour-based
// frequencies approximate to one occurrence per ceil(value/24) days; cycle
// counts are treated as months until equipment usage meters are wired in.
// The result preserves the base date's time-of-day and location.
func NextDate(base time.Time, unit FrequencyUnit, value int) (time.Time, error) {
	if value <= 0 {
		return time.Time{}, apperr.Validation("frequency value must be positive")
	}

	switch unit {
	case FrequencyDays:
		return base.AddDate(0, 0, value), nil
	case FrequencyWeeks:
		return base.AddDate(0, 0, value*7), nil
	case FrequencyMonths:
		return addMonthsClamped(base, value), nil
	case FrequencyHours:
		days := (value + 23) / 24
		return base.AddDate(0, 0, days), nil
	case FrequencyCycles:
		return addMonthsClamped(base, value), nil
	default:
		return time.Time{}, apperr.Validation("unknown frequency unit: " + string(unit))
	}
}

// addMonthsClamped advances by whole calendar months, clamping the day of
// month to the last valid day of the target month (Jan 31 + 1 month is
// Feb 28/29, not Mar 2/3 as time.AddDate would normalize it).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	first := time.Date(year, month+time.Month(months), 1, hour, min, sec, t.Nanosecond(), t.Location())
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
