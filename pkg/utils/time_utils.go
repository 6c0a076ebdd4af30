package utils

import "time"

const DateLayout = "2006-01-02"

// ParseDate parses a trip date in ISO date form.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// TripDays counts days inclusively: a trip from the 1st to the 3rd is 3 days.
func TripDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

// DayDate returns the calendar date for 1-based day n of a trip.
func DayDate(start time.Time, n int) string {
	return start.AddDate(0, 0, n-1).Format(DateLayout)
}
