package structs

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar date form used by dateCreated and date ranges.
	DateLayout = "2006-01-02"
	// LocalTimeLayout is the canonical scheduledTime form, no offset.
	LocalTimeLayout = "2006-01-02T15:04"
)

var localTimeLayouts = []string{
	LocalTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseLocalTime reads a wall-clock date+time without offset in loc.
func ParseLocalTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range localTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid local time %q", s)
}

// ParseDate reads a calendar date at midnight in loc. Full timestamps are
// accepted and truncated to their date.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	if t, err := ParseLocalTime(s, loc); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// ValidLocalTime reports whether s parses as a scheduled time.
func ValidLocalTime(s string) bool {
	_, err := ParseLocalTime(s, time.UTC)
	return err == nil
}

// ValidDate reports whether s parses as a calendar date.
func ValidDate(s string) bool {
	_, err := ParseDate(s, time.UTC)
	return err == nil
}

// ScheduledAt returns the scheduled time as an instant in loc.
func (t Task) ScheduledAt(loc *time.Location) (time.Time, error) {
	return ParseLocalTime(t.ScheduledTime, loc)
}

// CreatedOn returns the creation date as midnight in loc.
func (t Task) CreatedOn(loc *time.Location) (time.Time, error) {
	return ParseDate(t.DateCreated, loc)
}

// Today formats now as a calendar date.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}
