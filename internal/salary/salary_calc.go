package salary

import (
	"math"
	"time"

	"go-courier/internal/shared/dateutil"
)

// Salary math lives here as pure functions over persisted state plus an
// explicit "today", so the service can pass a fixed clock in tests and the
// same inputs always produce the same breakdown.

// DailyRate derives the default per-day amount from the monthly base
// salary with a fixed 30-day divisor, regardless of month length or shift.
// Zero or negative base is not rejected; it just yields a zero or negative
// rate.
func DailyRate(baseSalary int64) int64 {
	return int64(math.Round(float64(baseSalary) / 30.0))
}

// BreakdownEntry is one calendar day of earned salary.
type BreakdownEntry struct {
	Date       time.Time
	Amount     int64
	Overridden bool
}

// overrideIndex keys override amounts by reference-timezone day.
func overrideIndex(overrides []DailyOverride) map[string]int64 {
	idx := make(map[string]int64, len(overrides))
	for _, o := range overrides {
		idx[dateutil.DayKey(o.Date)] = o.ActualPaid
	}
	return idx
}

// BuildBreakdown produces one entry per calendar day from the joining date
// through today, both inclusive. An override replaces the daily rate for
// its day. The result is ordered by date ascending and is empty when the
// joining date is after today.
func BuildBreakdown(joiningDate time.Time, baseSalary int64, overrides []DailyOverride, today time.Time) []BreakdownEntry {
	return buildRange(dateutil.DayStart(joiningDate), baseSalary, overrides, today)
}

// buildRange walks [start, today] one day at a time. start must already be
// day-normalized.
func buildRange(start time.Time, baseSalary int64, overrides []DailyOverride, today time.Time) []BreakdownEntry {
	end := dateutil.DayStart(today)
	if start.After(end) {
		return []BreakdownEntry{}
	}

	rate := DailyRate(baseSalary)
	idx := overrideIndex(overrides)

	entries := make([]BreakdownEntry, 0, dateutil.DaysInclusive(start, end))
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if amount, ok := idx[dateutil.DayKey(d)]; ok {
			entries = append(entries, BreakdownEntry{Date: d, Amount: amount, Overridden: true})
		} else {
			entries = append(entries, BreakdownEntry{Date: d, Amount: rate, Overridden: false})
		}
	}
	return entries
}

// unpaidStart computes the boundary the unpaid sum begins at: the day
// after the most recent payout, or the joining date when the driver has
// never been paid.
func unpaidStart(joiningDate time.Time, lastPaidAt *time.Time) time.Time {
	if lastPaidAt != nil {
		return dateutil.NextDay(*lastPaidAt)
	}
	return dateutil.DayStart(joiningDate)
}

// UnpaidBreakdown returns the per-day entries that are not yet covered by
// a payout: [boundary, today]. Empty when the boundary is past today
// (settlement already happened today).
func UnpaidBreakdown(joiningDate time.Time, lastPaidAt *time.Time, baseSalary int64, overrides []DailyOverride, today time.Time) []BreakdownEntry {
	return buildRange(unpaidStart(joiningDate, lastPaidAt), baseSalary, overrides, today)
}

// UnpaidTotal sums the unsettled days into the single payable amount.
func UnpaidTotal(joiningDate time.Time, lastPaidAt *time.Time, baseSalary int64, overrides []DailyOverride, today time.Time) int64 {
	var total int64
	for _, e := range UnpaidBreakdown(joiningDate, lastPaidAt, baseSalary, overrides, today) {
		total += e.Amount
	}
	return total
}
