package domain

import "time"

// DateLayout is the wire and report format for calendar dates.
const DateLayout = "2006-01-02"

// FormatDate renders t as a calendar date, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
