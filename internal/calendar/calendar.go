package calendar

import (
	"net/http"
	"time"

	"go-workforce/internal/shared/apperror"
)

// ErrInvalidRange is returned when an end date precedes its start date
// or either bound is the zero time.
var ErrInvalidRange = apperror.New(
	apperror.CodeInvalidInput,
	"start_date must be before or equal end_date",
	http.StatusBadRequest,
)

// DateFormat is the wire format for calendar dates across the API.
const DateFormat = "2006-01-02"

// Weekday is one of the seven schedule symbols. Stored as text so the
// schedule template working/rest sets stay readable in the database.
type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
	Sunday    Weekday = "SUNDAY"
)

var weekdaySymbols = map[time.Weekday]Weekday{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// WeekdayOf maps a date to its schedule symbol, anchored in UTC.
func WeekdayOf(date time.Time) Weekday {
	return weekdaySymbols[date.UTC().Weekday()]
}

// DateOnly truncates a timestamp to midnight UTC. All period arithmetic
// happens at day granularity on these normalized values.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string to a normalized UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, ErrInvalidRange
	}
	return DateOnly(t), nil
}

// Period is a half-open interval [Start, End) at day granularity.
// Half-open bounds make overlap and adjacency unambiguous: ranges that
// merely touch at a boundary do not overlap, ranges sharing a full
// calendar day do.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod builds the half-open period covering the inclusive date range
// [start, end].
func NewPeriod(start, end time.Time) (Period, error) {
	if start.IsZero() || end.IsZero() {
		return Period{}, ErrInvalidRange
	}
	s := DateOnly(start)
	e := DateOnly(end)
	if e.Before(s) {
		return Period{}, ErrInvalidRange
	}
	return Period{Start: s, End: e.AddDate(0, 0, 1)}, nil
}

// ParsePeriod builds a period from two YYYY-MM-DD strings.
func ParsePeriod(start, end string) (Period, error) {
	s, err := time.Parse(DateFormat, start)
	if err != nil {
		return Period{}, ErrInvalidRange
	}
	e, err := time.Parse(DateFormat, end)
	if err != nil {
		return Period{}, ErrInvalidRange
	}
	return NewPeriod(s, e)
}

// Overlaps reports whether two periods share at least one calendar day.
func (p Period) Overlaps(other Period) bool {
	return p.Start.Before(other.End) && other.Start.Before(p.End)
}

// Contains reports whether the given date falls inside the period.
func (p Period) Contains(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(p.Start) && d.Before(p.End)
}

// Days is the inclusive day count of the period.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start).Hours() / 24)
}

// Dates enumerates every calendar day in the period, in order.
func (p Period) Dates() []time.Time {
	dates := make([]time.Time, 0, p.Days())
	for d := p.Start; d.Before(p.End); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// LastDate is the inclusive end of the period.
func (p Period) LastDate() time.Time {
	return p.End.AddDate(0, 0, -1)
}
