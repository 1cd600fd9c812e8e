package absence

import (
	"time"

	"go-workforce/internal/calendar"
	"go-workforce/internal/schedule"
)

// DayBreakdown partitions a requested period: every date lands in
// exactly one of the three sets.
type DayBreakdown struct {
	ChargeableDates []time.Time
	RestDates       []time.Time
	HolidayDates    []time.Time
}

// ChargeableDays is the number of dates that count against the
// entitlement or day total.
func (b DayBreakdown) ChargeableDays() int {
	return len(b.ChargeableDates)
}

// ComputeChargeableDays splits the period per the active schedule and
// holiday calendar. Rest days are classified first; of the working days,
// vacation excludes public holidays from the chargeable set while
// permission charges them. The asymmetry is deliberate policy: vacation
// balances must not be debited for statutory holidays, permission day
// counts reflect actual duty cancelation.
func ComputeChargeableDays(
	period calendar.Period,
	tmpl *schedule.WorkScheduleTemplate,
	holidays map[time.Time]schedule.Holiday,
	kind string,
) DayBreakdown {
	var b DayBreakdown
	for _, date := range period.Dates() {
		if schedule.Classify(date, tmpl) == schedule.DayRest {
			b.RestDates = append(b.RestDates, date)
			continue
		}
		if _, isHoliday := holidays[date]; isHoliday && kind == KindVacation {
			b.HolidayDates = append(b.HolidayDates, date)
			continue
		}
		b.ChargeableDates = append(b.ChargeableDates, date)
	}
	return b
}
