package model

import (
	"fmt"
	"time"
)

// civilDateLayout is the wire and storage format for calendar dates.
const civilDateLayout = "2006-01-02"

// CivilDate is a timezone-free calendar date in ISO "2006-01-02" form.
// The ISO layout sorts lexicographically, so string comparison is safe and
// every "is this today/future" check in the application goes through this
// type rather than through time.Time comparisons.
type CivilDate string

// NewCivilDate truncates a time.Time to its calendar date in that time's location.
func NewCivilDate(t time.Time) CivilDate {
	return CivilDate(t.Format(civilDateLayout))
}

// Today returns the current calendar date in local time.
func Today() CivilDate {
	return NewCivilDate(time.Now())
}

// ParseCivilDate validates and normalizes a "2006-01-02" string.
func ParseCivilDate(s string) (CivilDate, error) {
	t, err := time.Parse(civilDateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return NewCivilDate(t), nil
}

// IsZero reports whether the date is unset.
func (d CivilDate) IsZero() bool {
	return d == ""
}

func (d CivilDate) String() string {
	return string(d)
}

// After reports whether d falls strictly after other.
func (d CivilDate) After(other CivilDate) bool {
	return string(d) > string(other)
}

// Before reports whether d falls strictly before other.
func (d CivilDate) Before(other CivilDate) bool {
	return string(d) < string(other)
}

// Time converts the date to a time.Time at midnight local time.
func (d CivilDate) Time() (time.Time, error) {
	return time.ParseInLocation(civilDateLayout, string(d), time.Local)
}
