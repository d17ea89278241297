// Package dates holds calendar-date helpers for weekly timesheets.
//
// All week math is done on UTC calendar dates. Constructing a week boundary
// from a date authored in a local timezone can silently shift Monday into the
// previous Sunday, so every input is normalized through NormalizeUTC first.
package dates

import (
	"fmt"
	"time"

	"github.com/worklog-hq/timesheet_backend/internal/apperrors"
)

// DaysPerWeek is the fixed span of a timesheet week (Monday through Sunday).
const DaysPerWeek = 7

// NormalizeUTC truncates t to its calendar date in UTC.
func NormalizeUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ValidateWeekStart checks that t is a Monday in the UTC calendar and returns
// the normalized week start date.
func ValidateWeekStart(t time.Time) (time.Time, error) {
	start := NormalizeUTC(t)
	if start.Weekday() != time.Monday {
		return time.Time{}, fmt.Errorf("%w: week start %s falls on %s, expected Monday (UTC)",
			apperrors.ErrValidation, start.Format(time.DateOnly), start.Weekday())
	}
	return start, nil
}

// WeekEnd returns the Sunday that closes the week beginning at weekStart.
func WeekEnd(weekStart time.Time) time.Time {
	return NormalizeUTC(weekStart).AddDate(0, 0, DaysPerWeek-1)
}

// ValidateWeekBounds verifies the stored (weekStart, weekEnd) pair is internally
// consistent: weekStart is a UTC Monday and weekEnd is exactly six days later.
// A violation is a data-integrity fault, not a validation error, because it can
// only arise from corrupted stored state.
func ValidateWeekBounds(weekStart, weekEnd time.Time) error {
	start := NormalizeUTC(weekStart)
	end := NormalizeUTC(weekEnd)
	if start.Weekday() != time.Monday {
		return fmt.Errorf("%w: week start %s is not a Monday (UTC)",
			apperrors.ErrIntegrity, start.Format(time.DateOnly))
	}
	if !end.Equal(start.AddDate(0, 0, DaysPerWeek-1)) {
		return fmt.Errorf("%w: week end %s is not week start %s + 6 days",
			apperrors.ErrIntegrity, end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	return nil
}

// WithinWeek reports whether date falls inside [weekStart, weekStart+6d].
func WithinWeek(date, weekStart time.Time) bool {
	d := NormalizeUTC(date)
	start := NormalizeUTC(weekStart)
	return !d.Before(start) && !d.After(WeekEnd(start))
}

// Overlaps reports whether the closed intervals [aStart, aEnd] and
// [bStart, bEnd] share at least one calendar day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !NormalizeUTC(aStart).After(NormalizeUTC(bEnd)) &&
		!NormalizeUTC(bStart).After(NormalizeUTC(aEnd))
}

// ValidatePeriod checks a closed billing interval and returns the normalized
// bounds. The interval may span any number of days; it only has to be ordered.
func ValidatePeriod(start, end time.Time) (time.Time, time.Time, error) {
	s := NormalizeUTC(start)
	e := NormalizeUTC(end)
	if e.Before(s) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: period end %s precedes period start %s",
			apperrors.ErrValidation, e.Format(time.DateOnly), s.Format(time.DateOnly))
	}
	return s, e, nil
}
