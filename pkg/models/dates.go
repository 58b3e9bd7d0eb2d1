package models

import "time"

// DateLayout is the calendar-date format used across the CRM (due dates,
// calendar notes).
const DateLayout = "2006-01-02"

// FutureDate returns the calendar date N days from now as YYYY-MM-DD.
func FutureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format(DateLayout)
}
