package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"remindme/internal/models"
)

// ParseAnchorTime parses an "HH:MM" anchor into hour and minute
func ParseAnchorTime(anchor string) (int, int, error) {
	parts := strings.SplitN(anchor, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid anchor time %q", anchor)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid anchor hour %q", anchor)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid anchor minute %q", anchor)
	}
	return hour, minute, nil
}

// NextOccurrence computes the next trigger time for a recurring reminder
// after a delivery at "from". Local calendar-day arithmetic throughout;
// no elapsed-seconds math across DST boundaries.
//
//   - daily: the next calendar day at the anchor time, advanced day by
//     day until the candidate is strictly after now. A delivery that ran
//     days late (e.g. the session was down) must not produce a next
//     trigger already in the past.
//   - weekly: scan forward day by day from the next calendar day, up to
//     14 candidates, and take the first whose weekday is in the set and
//     whose moment is strictly after now. Candidates are checked in
//     chronological order, no soonest-weekday shortcut. If none qualify
//     (corrupt input or clock skew), fall back to from+7 days.
//
// For a "once" policy the item is terminal; callers never invoke this.
func NextOccurrence(policy models.RepeatPolicy, anchor string, weekdays models.WeekdaySet, from time.Time, now time.Time) time.Time {
	hour, minute, err := ParseAnchorTime(anchor)
	if err != nil {
		// Fall back to the previous trigger's time-of-day
		hour, minute = from.Hour(), from.Minute()
	}

	switch policy {
	case models.RepeatDaily:
		candidate := atTime(from.AddDate(0, 0, 1), hour, minute)
		for !candidate.After(now) {
			candidate = atTime(candidate.AddDate(0, 0, 1), hour, minute)
		}
		return candidate

	case models.RepeatWeekly:
		for i := 1; i <= 14; i++ {
			candidate := atTime(from.AddDate(0, 0, i), hour, minute)
			if weekdays.Contains(candidate.Weekday()) && candidate.After(now) {
				return candidate
			}
		}
		return atTime(from.AddDate(0, 0, 7), hour, minute)

	default:
		return from
	}
}

// atTime returns t's calendar day at the given wall-clock time
func atTime(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}
