package tacho

import (
	"math"
	"time"
)

// Break scheme: 45 minutes of break per full 4.5h block of driving.
const (
	breakAfterHours = 4.5
	breakHours      = 0.75
)

// Feasibility is the verdict of the pre-check for a single round-trip task,
// before any driver is chosen. It keeps the intermediate numbers so callers
// can surface them in a quote.
type Feasibility struct {
	DriveHours        float64 `json:"drive_hours"`
	BreakHours        float64 `json:"break_hours"`
	NeededHours       float64 `json:"needed_hours"`
	WindowHours       float64 `json:"window_hours"`
	ExceedsDailyDrive bool    `json:"exceeds_daily_drive"`
	ExceedsWindow     bool    `json:"exceeds_window"`
}

// OK reports whether one driver, starting fresh, can do the round trip within
// the requested window.
func (f Feasibility) OK() bool {
	return !f.ExceedsDailyDrive && !f.ExceedsWindow
}

// RequiredBreakHours returns the mandatory break time for driveHours of
// driving.
func RequiredBreakHours(driveHours float64) float64 {
	return math.Floor(driveHours/breakAfterHours) * breakHours
}

// PreCheck evaluates a round trip of 2×oneWayHours driving against the
// [departure, arrival) window. It is independent of any driver's personal
// trip history. The business always dispatches the driver back to base, hence
// the round-trip doubling.
func PreCheck(oneWayHours float64, departure, arrival time.Time) Feasibility {
	f := Feasibility{
		DriveHours:  oneWayHours * 2,
		WindowHours: math.Max(0, arrival.Sub(departure).Hours()),
	}
	f.BreakHours = RequiredBreakHours(f.DriveHours)
	f.NeededHours = f.DriveHours + f.BreakHours

	f.ExceedsDailyDrive = f.DriveHours > MaxDailyDriving.Hours()
	f.ExceedsWindow = f.NeededHours > f.WindowHours
	return f
}
