package services

import (
	"testing"
	"time"

	"remindme/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnchorTime(t *testing.T) {
	hour, minute, err := ParseAnchorTime("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, hour)
	assert.Equal(t, 30, minute)

	for _, bad := range []string{"", "9", "25:00", "09:60", "ab:cd"} {
		_, _, err := ParseAnchorTime(bad)
		assert.Error(t, err, "anchor %q should not parse", bad)
	}
}

func TestNextOccurrenceDaily(t *testing.T) {
	from := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 1, 8, 5, 0, 0, time.UTC)

	next := NextOccurrence(models.RepeatDaily, "08:00", nil, from, now)
	assert.Equal(t, time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), next)
}

func TestNextOccurrenceDailyLateDelivery(t *testing.T) {
	// The anchor sets the wall-clock time even when the previous trigger
	// drifted (e.g. delivered hours late after an outage)
	from := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 1, 23, 45, 0, 0, time.UTC)

	next := NextOccurrence(models.RepeatDaily, "09:00", nil, from, now)
	assert.Equal(t, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), next)
}

func TestNextOccurrenceDailyCatchesUpAfterOutage(t *testing.T) {
	// Delivered three days late: the naive from+1d would land in the
	// past and the item would never fire again. The result must be the
	// first anchor moment strictly after now.
	from := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 4, 8, 5, 0, 0, time.UTC)

	next := NextOccurrence(models.RepeatDaily, "08:00", nil, from, now)
	assert.Equal(t, time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC), next)
	assert.True(t, next.After(now))
}

func TestNextOccurrenceDailyBadAnchorFallsBack(t *testing.T) {
	from := time.Date(2024, 1, 1, 7, 15, 0, 0, time.UTC)
	now := from

	next := NextOccurrence(models.RepeatDaily, "garbage", nil, from, now)
	assert.Equal(t, time.Date(2024, 1, 2, 7, 15, 0, 0, time.UTC), next)
}

func TestNextOccurrenceWeeklyFromSunday(t *testing.T) {
	// 2024-01-07 is a Sunday; {Mon, Wed} at 09:00 must yield Monday the
	// 8th, not Wednesday, because candidates are scanned chronologically
	from := time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC)
	require.Equal(t, time.Sunday, from.Weekday())

	days := models.WeekdaySet{time.Monday, time.Wednesday}
	next := NextOccurrence(models.RepeatWeekly, "09:00", days, from, from)
	assert.Equal(t, time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC), next)
	assert.Equal(t, time.Monday, next.Weekday())
}

func TestNextOccurrenceWeeklySameWeekday(t *testing.T) {
	// Delivered on a Monday with {Mon} only: next is the following Monday
	from := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, from.Weekday())

	days := models.WeekdaySet{time.Monday}
	next := NextOccurrence(models.RepeatWeekly, "09:00", days, from, from)
	assert.Equal(t, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), next)
}

func TestNextOccurrenceWeeklySkipsCandidatesNotAfterNow(t *testing.T) {
	// now is far ahead of the last trigger; candidates before now must
	// be passed over even when their weekday matches
	from := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC) // Monday
	now := time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC)

	days := models.WeekdaySet{time.Monday}
	next := NextOccurrence(models.RepeatWeekly, "09:00", days, from, now)
	assert.Equal(t, time.Date(2024, 1, 22, 9, 0, 0, 0, time.UTC), next)
	assert.True(t, next.After(now))
}

func TestNextOccurrenceWeeklyEmptySetFallsBack(t *testing.T) {
	// Should not happen with validation in place, but corrupted input
	// must not loop forever: fall back to one week out
	from := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)

	next := NextOccurrence(models.RepeatWeekly, "09:00", models.WeekdaySet{}, from, from)
	assert.Equal(t, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), next)
}
