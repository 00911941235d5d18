package domain

import (
	"strings"
	"time"
)

// Periodicity is the window over which an alert's spend is aggregated
type Periodicity string

const (
	PeriodicityWeekly  Periodicity = "WEEKLY"
	PeriodicityMonthly Periodicity = "MONTHLY"
)

// ParsePeriodicity accepts WEEKLY or MONTHLY in any letter case
func ParsePeriodicity(s string) (Periodicity, error) {
	switch Periodicity(strings.ToUpper(strings.TrimSpace(s))) {
	case PeriodicityWeekly:
		return PeriodicityWeekly, nil
	case PeriodicityMonthly:
		return PeriodicityMonthly, nil
	default:
		return "", NewValidationError("periodicity", "must be WEEKLY or MONTHLY")
	}
}

// WeekNumbering defines how weeks of a year are counted for a locale.
// Week 1 is the first week starting on FirstDay that has at least
// MinimalDays days in the new year.
type WeekNumbering struct {
	FirstDay    time.Weekday
	MinimalDays int
}

var (
	// ISOWeeks is ISO-8601 numbering (Monday first, 4 days minimum), used by most of Europe
	ISOWeeks = WeekNumbering{FirstDay: time.Monday, MinimalDays: 4}

	// SundayWeeks is the numbering used in the US and similar locales
	SundayWeeks = WeekNumbering{FirstDay: time.Sunday, MinimalDays: 1}
)

// Week returns the week-based year and the week number containing t
func (w WeekNumbering) Week(t time.Time) (year, week int) {
	day := DateOf(t)
	start := w.weekStart(day)

	year = day.Year()
	if day.Before(w.firstWeekStart(year)) {
		year--
	} else if !day.Before(w.firstWeekStart(year + 1)) {
		year++
	}

	week = daysBetween(w.firstWeekStart(year), start)/7 + 1
	return year, week
}

// SameWeek reports whether both dates fall in the same week of the same week-based year
func (w WeekNumbering) SameWeek(a, b time.Time) bool {
	ya, wa := w.Week(a)
	yb, wb := w.Week(b)
	return ya == yb && wa == wb
}

// weekStart returns the first day of the week containing day
func (w WeekNumbering) weekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) - int(w.FirstDay) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// firstWeekStart returns the first day of week 1 of the given year
func (w WeekNumbering) firstWeekStart(year int) time.Time {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	start := w.weekStart(jan1)
	daysInYear := 7 - daysBetween(start, jan1)
	if daysInYear < w.minimalDays() {
		start = start.AddDate(0, 0, 7)
	}
	return start
}

func (w WeekNumbering) minimalDays() int {
	if w.MinimalDays < 1 {
		return 1
	}
	if w.MinimalDays > 7 {
		return 7
	}
	return w.MinimalDays
}

// SameMonth reports whether both dates share calendar month and year
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// Covers reports whether date belongs to the current period containing today
func (p Periodicity) Covers(date, today time.Time, weeks WeekNumbering) bool {
	switch p {
	case PeriodicityMonthly:
		return SameMonth(date, today)
	case PeriodicityWeekly:
		return weeks.SameWeek(date, today)
	default:
		return false
	}
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
