package tacho

import (
	"fmt"
	"time"
)

// EU driving-time limits encoded by the evaluator. The limits are inclusive:
// exactly 9h of rest or exactly 9h/56h of accumulated driving is compliant.
const (
	MinRest          = 9 * time.Hour
	MaxDailyDriving  = 9 * time.Hour
	MaxWeeklyDriving = 56 * time.Hour
)

// ViolationKind identifies which rule a candidate trip breaks.
type ViolationKind string

const (
	Overlap                ViolationKind = "overlap"
	InsufficientRestBefore ViolationKind = "insufficient_rest_before"
	InsufficientRestAfter  ViolationKind = "insufficient_rest_after"
	DailyLimitExceeded     ViolationKind = "daily_limit_exceeded"
	WeeklyLimitExceeded    ViolationKind = "weekly_limit_exceeded"
)

// TripWindow is the slice of a trip the evaluator needs: identity plus the
// [departure, arrival) interval.
type TripWindow struct {
	ID        int64
	Departure time.Time
	Arrival   time.Time
}

// Duration returns the driving time of the window.
func (w TripWindow) Duration() time.Duration {
	return w.Arrival.Sub(w.Departure)
}

// Violation is the negative verdict of an evaluation. It is data, not an
// error: an incompliant pairing is the expected outcome of a total function.
type Violation struct {
	Kind   ViolationKind
	TripID int64 // conflicting confirmed trip, zero for accumulator breaches
	Detail string
}

func (v *Violation) String() string {
	if v == nil {
		return "conforme"
	}
	return v.Detail
}

// Evaluate decides whether candidate may be confirmed for a driver whose
// confirmed trips are given in confirmed. Only confirmed trips count; the
// caller excludes the candidate's own id when re-evaluating an existing
// assignment (entries matching it are skipped here as well). A nil return
// means compliant.
//
// The scan is a single pass that short-circuits on the first overlap or rest
// violation; daily and weekly accumulators are seeded with the candidate's
// own duration and checked after the scan. Calendar-day and ISO-week
// bucketing both use loc.
func Evaluate(candidate TripWindow, confirmed []TripWindow, loc *time.Location) *Violation {
	day := DayOf(candidate.Departure, loc)
	week, weekYear := WeekOf(candidate.Departure, loc)

	daily := candidate.Duration()
	weekly := candidate.Duration()

	for _, t := range confirmed {
		if t.ID == candidate.ID {
			continue
		}
		switch {
		case candidate.Departure.Before(t.Arrival) && candidate.Arrival.After(t.Departure):
			return &Violation{
				Kind:   Overlap,
				TripID: t.ID,
				Detail: fmt.Sprintf("Conflicto: solapamiento con viaje #%d", t.ID),
			}
		case !candidate.Departure.Before(t.Arrival) && candidate.Departure.Sub(t.Arrival) < MinRest:
			return &Violation{
				Kind:   InsufficientRestAfter,
				TripID: t.ID,
				Detail: fmt.Sprintf("Descanso insuficiente (<9h) tras viaje #%d", t.ID),
			}
		case !candidate.Arrival.After(t.Departure) && t.Departure.Sub(candidate.Arrival) < MinRest:
			return &Violation{
				Kind:   InsufficientRestBefore,
				TripID: t.ID,
				Detail: fmt.Sprintf("Descanso insuficiente (<9h) antes de viaje #%d", t.ID),
			}
		}

		if DayOf(t.Departure, loc) == day {
			daily += t.Duration()
		} else if w, y := WeekOf(t.Departure, loc); w == week && y == weekYear {
			weekly += t.Duration()
		}
	}

	if daily > MaxDailyDriving {
		return &Violation{
			Kind:   DailyLimitExceeded,
			Detail: fmt.Sprintf("Exceso de conducción diaria: %.1fh (máx 9h)", daily.Hours()),
		}
	}
	if weekly > MaxWeeklyDriving {
		return &Violation{
			Kind:   WeeklyLimitExceeded,
			Detail: fmt.Sprintf("Exceso de conducción semanal: %.1fh (máx 56h)", weekly.Hours()),
		}
	}
	return nil
}
