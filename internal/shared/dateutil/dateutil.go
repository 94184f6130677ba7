// Package dateutil pins every calendar-day computation to a single
// reference timezone. Salary days, attendance days and override keys all
// go through DayStart/DayKey so that a "day" means the same thing no
// matter which timezone a timestamp was recorded in.
package dateutil

import "time"

// Reference timezone for all calendar-day boundaries (company operates in
// India). Loaded once; time.LoadLocation only fails if the tzdata is
// missing, in which case we cannot meaningfully run at all.
var Reference = mustLoadLocation("Asia/Kolkata")

const dayKeyLayout = "2006-01-02"

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("dateutil: load reference timezone: " + err.Error())
	}
	return loc
}

// DayStart normalizes t to midnight of its calendar day in the reference
// timezone.
func DayStart(t time.Time) time.Time {
	local := t.In(Reference)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Reference)
}

// NextDay returns midnight of the calendar day after t.
func NextDay(t time.Time) time.Time {
	return DayStart(t).AddDate(0, 0, 1)
}

// DayKey renders t's calendar day as YYYY-MM-DD in the reference timezone.
// Used as the map key for override lookups.
func DayKey(t time.Time) string {
	return t.In(Reference).Format(dayKeyLayout)
}

// SameDay reports whether a and b fall on the same reference-timezone day.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}

// DaysInclusive counts calendar days from a through b inclusive. Returns 0
// when a is after b. Both ends are normalized first so DST shifts inside
// the range cannot skew the count.
func DaysInclusive(a, b time.Time) int {
	start := DayStart(a)
	end := DayStart(b)
	if start.After(end) {
		return 0
	}
	days := 1
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days
}

// ParseDay parses a YYYY-MM-DD string as midnight in the reference
// timezone.
func ParseDay(v string) (time.Time, error) {
	return time.ParseInLocation(dayKeyLayout, v, Reference)
}
