package salary_test

import (
	"testing"
	"time"

	"go-courier/internal/salary"
	"go-courier/internal/shared/dateutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, dateutil.Reference)
}

func override(driverID uuid.UUID, date time.Time, amount int64) salary.DailyOverride {
	return salary.DailyOverride{
		ID:         uuid.New(),
		DriverID:   driverID,
		Date:       date,
		ActualPaid: amount,
	}
}

func TestDailyRate(t *testing.T) {
	assert.Equal(t, int64(300), salary.DailyRate(9000))
	assert.Equal(t, int64(300), salary.DailyRate(9010))  // 300.33 rounds down
	assert.Equal(t, int64(317), salary.DailyRate(9500))  // 316.67 rounds up
	assert.Equal(t, int64(0), salary.DailyRate(0))
	assert.Equal(t, int64(-100), salary.DailyRate(-3000))
}

func TestBuildBreakdown_FiveDaysFlatRate(t *testing.T) {
	// Driver joins 2025-01-01, base 9000 (rate 300), no overrides,
	// today 2025-01-05: five entries of 300 each.
	joining := day(2025, 1, 1)
	today := day(2025, 1, 5)

	entries := salary.BuildBreakdown(joining, 9000, nil, today)

	assert.Len(t, entries, 5)
	for i, e := range entries {
		assert.Equal(t, int64(300), e.Amount)
		assert.False(t, e.Overridden)
		assert.Equal(t, joining.AddDate(0, 0, i), e.Date)
	}
}

func TestBuildBreakdown_OverridePrecedence(t *testing.T) {
	driverID := uuid.New()
	joining := day(2025, 1, 1)
	today := day(2025, 1, 5)
	overrides := []salary.DailyOverride{
		override(driverID, day(2025, 1, 3), 500),
	}

	entries := salary.BuildBreakdown(joining, 9000, overrides, today)

	assert.Len(t, entries, 5)
	assert.Equal(t, int64(500), entries[2].Amount)
	assert.True(t, entries[2].Overridden)
	for _, i := range []int{0, 1, 3, 4} {
		assert.Equal(t, int64(300), entries[i].Amount)
		assert.False(t, entries[i].Overridden)
	}
}

func TestBuildBreakdown_JoiningInFuture(t *testing.T) {
	entries := salary.BuildBreakdown(day(2025, 2, 1), 9000, nil, day(2025, 1, 5))
	assert.Empty(t, entries)
}

func TestBuildBreakdown_AppendsOnlyAsDaysPass(t *testing.T) {
	joining := day(2025, 1, 1)

	jan5 := salary.BuildBreakdown(joining, 9000, nil, day(2025, 1, 5))
	jan6 := salary.BuildBreakdown(joining, 9000, nil, day(2025, 1, 6))

	assert.Len(t, jan6, len(jan5)+1)
	assert.Equal(t, jan5, jan6[:len(jan5)])
}

func TestUnpaidTotal_NoOverridesNoPayouts(t *testing.T) {
	joining := day(2025, 1, 1)
	today := day(2025, 1, 5)

	total := salary.UnpaidTotal(joining, nil, 9000, nil, today)

	days := int64(dateutil.DaysInclusive(joining, today))
	assert.Equal(t, salary.DailyRate(9000)*days, total)
	assert.Equal(t, int64(1500), total)
}

func TestUnpaidTotal_WithOverride(t *testing.T) {
	driverID := uuid.New()
	overrides := []salary.DailyOverride{
		override(driverID, day(2025, 1, 3), 500),
	}

	total := salary.UnpaidTotal(day(2025, 1, 1), nil, 9000, overrides, day(2025, 1, 5))

	// 300+300+500+300+300
	assert.Equal(t, int64(1700), total)
}

func TestUnpaidTotal_BoundaryAfterPayout(t *testing.T) {
	joining := day(2025, 1, 1)
	paidAt := time.Date(2025, 1, 5, 14, 30, 0, 0, dateutil.Reference)

	// Settled today: boundary moves past today, nothing owed.
	assert.Equal(t, int64(0), salary.UnpaidTotal(joining, &paidAt, 9000, nil, day(2025, 1, 5)))

	// One day later only the new day is owed.
	assert.Equal(t, int64(300), salary.UnpaidTotal(joining, &paidAt, 9000, nil, day(2025, 1, 6)))
}

func TestUnpaidTotal_MatchesBreakdownAfterLastPayout(t *testing.T) {
	driverID := uuid.New()
	joining := day(2025, 1, 1)
	today := day(2025, 1, 10)
	paidAt := time.Date(2025, 1, 4, 9, 0, 0, 0, dateutil.Reference)
	overrides := []salary.DailyOverride{
		override(driverID, day(2025, 1, 2), 150),
		override(driverID, day(2025, 1, 7), 450),
	}

	entries := salary.BuildBreakdown(joining, 9000, overrides, today)

	var sumAfterPayout int64
	for _, e := range entries {
		if e.Date.After(dateutil.DayStart(paidAt)) {
			sumAfterPayout += e.Amount
		}
	}

	total := salary.UnpaidTotal(joining, &paidAt, 9000, overrides, today)
	assert.Equal(t, sumAfterPayout, total)
}

func TestUnpaidBreakdown_StartsDayAfterPayout(t *testing.T) {
	joining := day(2025, 1, 1)
	paidAt := time.Date(2025, 1, 3, 18, 0, 0, 0, dateutil.Reference)

	entries := salary.UnpaidBreakdown(joining, &paidAt, 9000, nil, day(2025, 1, 5))

	assert.Len(t, entries, 2)
	assert.Equal(t, day(2025, 1, 4), entries[0].Date)
	assert.Equal(t, day(2025, 1, 5), entries[1].Date)
}

func TestBuildBreakdown_OverrideRecordedInOtherTimezone(t *testing.T) {
	driverID := uuid.New()
	// Override stored as a UTC timestamp that is already the next day in
	// the reference timezone; it must land on the reference-timezone day.
	recorded := time.Date(2025, 1, 2, 20, 0, 0, 0, time.UTC) // 2025-01-03 in IST
	overrides := []salary.DailyOverride{
		override(driverID, recorded, 500),
	}

	entries := salary.BuildBreakdown(day(2025, 1, 1), 9000, overrides, day(2025, 1, 5))

	assert.Equal(t, int64(500), entries[2].Amount)
	assert.True(t, entries[2].Overridden)
}
