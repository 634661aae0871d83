package tacho

import (
	"testing"
	"time"
)

func TestWeekOfKnownDates(t *testing.T) {
	cases := []struct {
		date     string
		wantWeek int
		wantYear int
	}{
		{"2021-01-04", 1, 2021},
		{"2021-01-01", 53, 2020}, // Friday, belongs to the previous ISO year
		{"2020-12-31", 53, 2020},
		{"2022-01-01", 52, 2021}, // year starting on a Saturday
		{"2016-01-01", 53, 2015},
		{"2026-01-01", 1, 2026}, // Thursday, week 1 of its own year
		{"2024-12-30", 1, 2025}, // Monday, already week 1 of the next year
		{"2026-06-01", 23, 2026},
	}

	for _, tc := range cases {
		d, err := time.ParseInLocation(layoutDay, tc.date, time.UTC)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.date, err)
		}
		week, year := WeekOf(d, time.UTC)
		if week != tc.wantWeek || year != tc.wantYear {
			t.Fatalf("WeekOf(%s) = (%d, %d), want (%d, %d)", tc.date, week, year, tc.wantWeek, tc.wantYear)
		}
	}
}

func TestWeekOfMatchesStdlib(t *testing.T) {
	start := time.Date(2019, time.December, 20, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 800; i++ {
		d := start.AddDate(0, 0, i)
		year, week := d.ISOWeek()
		gotWeek, gotYear := WeekOf(d, time.UTC)
		if gotWeek != week || gotYear != year {
			t.Fatalf("WeekOf(%s) = (%d, %d), stdlib says (%d, %d)",
				d.Format(layoutDay), gotWeek, gotYear, week, year)
		}
	}
}

func TestDayOfUsesLocation(t *testing.T) {
	madrid := time.FixedZone("CET", 3600)
	// 23:30 UTC is already the next day in CET.
	d := time.Date(2026, time.March, 1, 23, 30, 0, 0, time.UTC)
	if got := DayOf(d, madrid); got != "2026-03-02" {
		t.Fatalf("DayOf in CET = %s, want 2026-03-02", got)
	}
	if got := DayOf(d, time.UTC); got != "2026-03-01" {
		t.Fatalf("DayOf in UTC = %s, want 2026-03-01", got)
	}
}
