package absence_test

import (
	"testing"
	"time"

	"go-workforce/internal/absence"
	"go-workforce/internal/calendar"
	"go-workforce/internal/schedule"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func monFriTemplate() *schedule.WorkScheduleTemplate {
	return &schedule.WorkScheduleTemplate{
		ID:          uuid.New(),
		Status:      schedule.TemplateStatusActive,
		WorkingDays: "MONDAY,TUESDAY,WEDNESDAY,THURSDAY,FRIDAY",
		RestDays:    "SATURDAY,SUNDAY",
	}
}

func mustPeriod(t *testing.T, start, end string) calendar.Period {
	t.Helper()
	p, err := calendar.ParsePeriod(start, end)
	assert.NoError(t, err)
	return p
}

func holidayOn(dates ...time.Time) map[time.Time]schedule.Holiday {
	m := make(map[time.Time]schedule.Holiday, len(dates))
	for _, d := range dates {
		m[d] = schedule.Holiday{ID: uuid.New(), HolidayDate: d, Label: "holiday"}
	}
	return m
}

func TestComputeChargeableDays(t *testing.T) {
	t.Run("full working week no holidays", func(t *testing.T) {
		// Mon 2026-01-19 .. Fri 2026-01-23
		p := mustPeriod(t, "2026-01-19", "2026-01-23")

		b := absence.ComputeChargeableDays(p, monFriTemplate(), nil, absence.KindVacation)

		assert.Len(t, b.ChargeableDates, 5)
		assert.Empty(t, b.RestDates)
		assert.Empty(t, b.HolidayDates)
	})

	t.Run("week with weekend splits rest days", func(t *testing.T) {
		// Mon 2026-01-19 .. Sun 2026-01-25
		p := mustPeriod(t, "2026-01-19", "2026-01-25")

		b := absence.ComputeChargeableDays(p, monFriTemplate(), nil, absence.KindVacation)

		assert.Len(t, b.ChargeableDates, 5)
		assert.Len(t, b.RestDates, 2)
		assert.Empty(t, b.HolidayDates)
	})

	t.Run("vacation excludes holidays from chargeable", func(t *testing.T) {
		p := mustPeriod(t, "2026-01-19", "2026-01-23")
		wed := time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)

		b := absence.ComputeChargeableDays(p, monFriTemplate(), holidayOn(wed), absence.KindVacation)

		assert.Len(t, b.ChargeableDates, 4)
		assert.Equal(t, []time.Time{wed}, b.HolidayDates)
	})

	t.Run("permission charges holidays", func(t *testing.T) {
		p := mustPeriod(t, "2026-01-19", "2026-01-23")
		wed := time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)

		b := absence.ComputeChargeableDays(p, monFriTemplate(), holidayOn(wed), absence.KindPermission)

		assert.Len(t, b.ChargeableDates, 5)
		assert.Empty(t, b.HolidayDates)
	})

	t.Run("holiday on rest day stays rest", func(t *testing.T) {
		// Sat 2026-01-24 is both rest and holiday; rest wins.
		p := mustPeriod(t, "2026-01-23", "2026-01-25")
		sat := time.Date(2026, 1, 24, 0, 0, 0, 0, time.UTC)

		b := absence.ComputeChargeableDays(p, monFriTemplate(), holidayOn(sat), absence.KindVacation)

		assert.Len(t, b.ChargeableDates, 1)
		assert.Len(t, b.RestDates, 2)
		assert.Empty(t, b.HolidayDates)
	})

	t.Run("partition covers range without duplicates", func(t *testing.T) {
		p := mustPeriod(t, "2026-01-01", "2026-01-31")
		holidays := holidayOn(
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC),
		)

		b := absence.ComputeChargeableDays(p, monFriTemplate(), holidays, absence.KindVacation)

		seen := make(map[time.Time]int)
		for _, d := range b.ChargeableDates {
			seen[d]++
		}
		for _, d := range b.RestDates {
			seen[d]++
		}
		for _, d := range b.HolidayDates {
			seen[d]++
		}

		assert.Len(t, seen, p.Days())
		for _, count := range seen {
			assert.Equal(t, 1, count)
		}
	})
}
