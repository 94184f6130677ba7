package dateutil_test

import (
	"testing"
	"time"

	"go-courier/internal/shared/dateutil"

	"github.com/stretchr/testify/assert"
)

func TestDayStart_NormalizesAcrossTimezones(t *testing.T) {
	// 2025-01-03 23:30 UTC is already 2025-01-04 05:00 in the reference
	// timezone, so the day must roll over.
	utc := time.Date(2025, 1, 3, 23, 30, 0, 0, time.UTC)

	start := dateutil.DayStart(utc)

	assert.Equal(t, "2025-01-04", dateutil.DayKey(utc))
	assert.Equal(t, 2025, start.Year())
	assert.Equal(t, time.January, start.Month())
	assert.Equal(t, 4, start.Day())
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 0, start.Minute())
}

func TestDayStart_Idempotent(t *testing.T) {
	now := time.Now()
	once := dateutil.DayStart(now)
	twice := dateutil.DayStart(once)
	assert.True(t, once.Equal(twice))
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2025, 6, 1, 1, 0, 0, 0, dateutil.Reference)
	night := time.Date(2025, 6, 1, 23, 59, 0, 0, dateutil.Reference)
	nextDay := time.Date(2025, 6, 2, 0, 0, 0, 0, dateutil.Reference)

	assert.True(t, dateutil.SameDay(morning, night))
	assert.False(t, dateutil.SameDay(night, nextDay))
}

func TestDaysInclusive(t *testing.T) {
	jan1 := time.Date(2025, 1, 1, 0, 0, 0, 0, dateutil.Reference)
	jan5 := time.Date(2025, 1, 5, 18, 30, 0, 0, dateutil.Reference)

	assert.Equal(t, 5, dateutil.DaysInclusive(jan1, jan5))
	assert.Equal(t, 1, dateutil.DaysInclusive(jan1, jan1))
	assert.Equal(t, 0, dateutil.DaysInclusive(jan5, jan1))
}

func TestParseDay(t *testing.T) {
	day, err := dateutil.ParseDay("2025-01-03")
	assert.NoError(t, err)
	assert.Equal(t, "2025-01-03", dateutil.DayKey(day))
	assert.True(t, day.Equal(dateutil.DayStart(day)))

	_, err = dateutil.ParseDay("03/01/2025")
	assert.Error(t, err)
}
