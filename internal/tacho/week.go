package tacho

import (
	"math"
	"time"
)

const layoutDay = "2006-01-02"

// WeekOf returns the ISO-8601 week number and week-based year of t evaluated
// in loc. Weeks start on Monday and week 1 is the week containing the year's
// first Thursday, so early January can belong to week 52/53 of the previous
// year and late December to week 1 of the next.
func WeekOf(t time.Time, loc *time.Location) (week int, year int) {
	local := t.In(loc)
	date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	// Shift to the Thursday of the same week; its year is the ISO year.
	shift := 3 - (int(date.Weekday())+6)%7
	thursday := date.AddDate(0, 0, shift)

	week1 := time.Date(thursday.Year(), time.January, 4, 0, 0, 0, 0, loc)
	days := float64(thursday.YearDay() - week1.YearDay())
	week = 1 + int(math.Round((days-3+float64((int(week1.Weekday())+6)%7))/7))
	return week, thursday.Year()
}

// DayOf buckets t into its calendar date in loc, used for the daily
// driving-time accumulator.
func DayOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(layoutDay)
}
