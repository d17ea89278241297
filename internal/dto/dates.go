package dto

import (
	"fmt"
	"time"

	"github.com/worklog-hq/timesheet_backend/internal/apperrors"
)

// DateFormat is the wire format for calendar dates. Dates cross the API as
// explicit UTC calendar dates (year, month, day), never as instants, so a
// client's local timezone cannot shift a Monday into the previous Sunday.
const DateFormat = "2006-01-02"

// ParseDate parses a wire date into a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", apperrors.ErrValidation, s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// FormatDate renders a UTC calendar date in the wire format.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateFormat)
}
