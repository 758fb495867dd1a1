package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdaySetRoundTrip(t *testing.T) {
	set := WeekdaySet{time.Monday, time.Wednesday}

	value, err := set.Value()
	require.NoError(t, err)
	assert.JSONEq(t, "[1,3]", string(value.([]byte)))

	var scanned WeekdaySet
	require.NoError(t, scanned.Scan([]byte("[1,3]")))
	assert.Equal(t, set, scanned)

	var fromString WeekdaySet
	require.NoError(t, fromString.Scan("[0,6]"))
	assert.Equal(t, WeekdaySet{time.Sunday, time.Saturday}, fromString)
}

func TestWeekdaySetScanNil(t *testing.T) {
	var set WeekdaySet
	require.NoError(t, set.Scan(nil))
	assert.Empty(t, set)

	assert.Error(t, set.Scan(42))
}

func TestWeekdaySetContains(t *testing.T) {
	set := WeekdaySet{time.Monday, time.Wednesday}
	assert.True(t, set.Contains(time.Monday))
	assert.False(t, set.Contains(time.Friday))
	assert.False(t, WeekdaySet{}.Contains(time.Monday))
}

func TestReminderMessage(t *testing.T) {
	r := Reminder{Title: "Dentist", Body: "Bring insurance card"}
	assert.Equal(t, "Reminder: Dentist\nBring insurance card", r.Message())

	r.Body = ""
	assert.Equal(t, "Reminder: Dentist", r.Message())

	r.NotificationText = "Hey! Dentist at 4."
	assert.Equal(t, "Hey! Dentist at 4.", r.Message())
}

func TestWeeklyRequiresWeekdays(t *testing.T) {
	r := Reminder{Title: "Gym", Repeat: RepeatWeekly}
	assert.Error(t, r.BeforeSave(nil))

	r.Weekdays = WeekdaySet{time.Tuesday}
	assert.NoError(t, r.BeforeSave(nil))
}
