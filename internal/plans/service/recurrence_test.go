package service

import (
	"testing"
	"time"

	"cmms_backend/platform/apperr"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDate(t *testing.T) {
	tests := []struct {
		name  string
		base  time.Time
		unit  FrequencyUnit
		value int
		want  time.Time
	}{
		{"days", date(2026, 3, 10), FrequencyDays, 15, date(2026, 3, 25)},
		{"days across month", date(2026, 3, 25), FrequencyDays, 10, date(2026, 4, 4)},
		{"weeks", date(2026, 3, 10), FrequencyWeeks, 2, date(2026, 3, 24)},
		{"months", date(2026, 3, 10), FrequencyMonths, 1, date(2026, 4, 10)},
		{"months across year", date(2026, 11, 15), FrequencyMonths, 3, date(2027, 2, 15)},
		{"months clamp to feb", date(2024, 1, 31), FrequencyMonths, 1, date(2024, 2, 29)},
		{"months clamp non-leap", date(2026, 1, 31), FrequencyMonths, 1, date(2026, 2, 28)},
		{"months clamp 30-day", date(2026, 3, 31), FrequencyMonths, 1, date(2026, 4, 30)},
		{"hours exact day", date(2026, 3, 10), FrequencyHours, 24, date(2026, 3, 11)},
		{"hours round up", date(2026, 3, 10), FrequencyHours, 25, date(2026, 3, 12)},
		{"hours sub-day", date(2026, 3, 10), FrequencyHours, 8, date(2026, 3, 11)},
		{"hours multi-day", date(2026, 3, 10), FrequencyHours, 168, date(2026, 3, 17)},
		{"cycles as months", date(2026, 3, 10), FrequencyCycles, 2, date(2026, 5, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextDate(tt.base, tt.unit, tt.value)
			if err != nil {
				t.Fatalf("NextDate: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("NextDate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextDateComposition(t *testing.T) {
	// two steps of n days equal one step of 2n days
	base := date(2026, 3, 10)

	step1, _ := NextDate(base, FrequencyDays, 7)
	step2, _ := NextDate(step1, FrequencyDays, 7)
	direct, _ := NextDate(base, FrequencyDays, 14)
	if !step2.Equal(direct) {
		t.Fatalf("two 7-day steps = %v, one 14-day step = %v", step2, direct)
	}

	// a week step equals a 7-day step
	weekly, _ := NextDate(base, FrequencyWeeks, 1)
	daily, _ := NextDate(base, FrequencyDays, 7)
	if !weekly.Equal(daily) {
		t.Fatalf("1 week = %v, 7 days = %v", weekly, daily)
	}
}

func TestNextDateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		unit  FrequencyUnit
		value int
	}{
		{"zero value", FrequencyDays, 0},
		{"negative value", FrequencyMonths, -1},
		{"unknown unit", FrequencyUnit("fortnights"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NextDate(date(2026, 3, 10), tt.unit, tt.value)
			if err == nil {
				t.Fatalf("expected error")
			}
			if apperr.GetKind(err) != apperr.KindValidation {
				t.Fatalf("kind = %v, want KindValidation", apperr.GetKind(err))
			}
		})
	}
}
