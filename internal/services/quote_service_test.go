package services

import (
	"testing"
	"time"

	"github.com/Josemaria4581/busconnect/internal/domain"
	"github.com/Josemaria4581/busconnect/internal/domain/models"
)

func quoteReq(oneWayHours float64, windowHours int) QuoteRequest {
	dep := time.Date(2026, time.June, 1, 8, 0, 0, 0, time.UTC)
	return QuoteRequest{
		Km:          oneWayHours * DefaultAvgSpeedKmh,
		OneWayHours: oneWayHours,
		Seats:       40,
		Departure:   dep,
		Arrival:     dep.Add(time.Duration(windowHours) * time.Hour),
	}
}

func TestQuoteFeasibleDayTrip(t *testing.T) {
	svc := QuoteService{}

	// 3h each way, 10h on site: fits in one driver's day.
	q, err := svc.Quote(quoteReq(3, 10))
	if err != nil {
		t.Fatalf("Quote error: %v", err)
	}
	if !q.Feasibility.OK() {
		t.Fatalf("expected feasible, got %+v", q.Feasibility)
	}
	if q.NeedsNegotiation() {
		t.Fatalf("feasible quote must not carry options: %v", q.Options)
	}
	if q.Days != 1 || q.Nights != 0 || q.Drivers != 1 {
		t.Fatalf("unexpected day math: days=%d nights=%d drivers=%d", q.Days, q.Nights, q.Drivers)
	}
	// 210km*2€ + 40*1.2€, no extras.
	if q.Total != 468.0 {
		t.Fatalf("expected total 468.00, got %.2f", q.Total)
	}
	if q.Advance != 93.6 || q.Remaining != 374.4 {
		t.Fatalf("advance split wrong: adelanto=%.2f restante=%.2f", q.Advance, q.Remaining)
	}
}

func TestQuoteInfeasibleOffersBothRemedies(t *testing.T) {
	svc := QuoteService{}

	// 5h each way exceeds the daily driving cap for one driver.
	q, err := svc.Quote(quoteReq(5, 12))
	if err != nil {
		t.Fatalf("Quote error: %v", err)
	}
	if q.Feasibility.OK() {
		t.Fatalf("expected infeasible, got %+v", q.Feasibility)
	}
	if !q.NeedsNegotiation() {
		t.Fatal("expected negotiation options")
	}
	if len(q.Options) != 2 || q.Options[0] != RemedySecondDriver || q.Options[1] != RemedyOvernight {
		t.Fatalf("unexpected options: %v", q.Options)
	}
}

func TestQuoteRemedySkipsNegotiation(t *testing.T) {
	svc := QuoteService{}

	req := quoteReq(5, 12)
	req.SecondDriver = true
	q, err := svc.Quote(req)
	if err != nil {
		t.Fatalf("Quote error: %v", err)
	}
	// The pre-check verdict is still reported, but no options are offered:
	// the requester already picked a remedy.
	if q.NeedsNegotiation() {
		t.Fatalf("remedy request must not re-offer options: %v", q.Options)
	}
	if q.Drivers != 2 {
		t.Fatalf("expected 2 drivers, got %d", q.Drivers)
	}
	if q.SecondDriverCost != SecondDriverDailyCost {
		t.Fatalf("expected %.2f second driver surcharge for a one-day trip, got %.2f",
			SecondDriverDailyCost, q.SecondDriverCost)
	}
}

func TestQuoteOvernightCost(t *testing.T) {
	svc := QuoteService{}

	// Three-day trip: 2 nights, single driver staying over.
	req := quoteReq(5, 60)
	req.Overnight = true
	q, err := svc.Quote(req)
	if err != nil {
		t.Fatalf("Quote error: %v", err)
	}
	if q.Days != 3 || q.Nights != 2 {
		t.Fatalf("expected 3 days / 2 nights, got %d/%d", q.Days, q.Nights)
	}
	if q.OvernightCost != 240.0 {
		t.Fatalf("expected 240.00 overnight cost (1 conductor x 2 noches), got %.2f", q.OvernightCost)
	}
	if q.ExtraDayCost != 100.0 {
		t.Fatalf("expected 100.00 extra-day cost, got %.2f", q.ExtraDayCost)
	}
}

func TestQuoteIdempotentTotals(t *testing.T) {
	svc := QuoteService{}

	req := quoteReq(5, 36)
	req.Overnight = true

	first, err := svc.Quote(req)
	if err != nil {
		t.Fatalf("Quote error: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := svc.Quote(req)
		if err != nil {
			t.Fatalf("Quote error on pass %d: %v", i, err)
		}
		if again.Total != first.Total || again.OvernightCost != first.OvernightCost {
			t.Fatalf("total drifted across resubmissions: %.2f vs %.2f", again.Total, first.Total)
		}
	}
}

func TestQuoteRemediesAreExclusive(t *testing.T) {
	svc := QuoteService{}

	req := quoteReq(5, 12)
	req.SecondDriver = true
	req.Overnight = true
	if _, err := svc.Quote(req); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for combined remedies, got %v", err)
	}
}

func TestQuoteValidatesInput(t *testing.T) {
	svc := QuoteService{}

	bad := quoteReq(3, 10)
	bad.Arrival = bad.Departure
	if _, err := svc.Quote(bad); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for inverted window, got %v", err)
	}

	bad = quoteReq(3, 10)
	bad.Seats = 0
	if _, err := svc.Quote(bad); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for zero seats, got %v", err)
	}
}

func TestQuoteFillsFromRoute(t *testing.T) {
	svc := QuoteService{
		FetchRoute: func(id int64) (models.Route, error) {
			if id != 7 {
				return models.Route{}, domain.NotFoundError{Resource: "ruta"}
			}
			return models.Route{ID: 7, DistanceKm: 140, EstimatedMinutes: 120}, nil
		},
	}

	req := quoteReq(0, 10)
	req.Km = 0
	req.RouteID = 7
	q, err := svc.Quote(req)
	if err != nil {
		t.Fatalf("Quote error: %v", err)
	}
	if q.KmCost != 280.0 {
		t.Fatalf("expected route km to price at 280.00, got %.2f", q.KmCost)
	}
	if !q.Feasibility.OK() {
		t.Fatalf("2h each way in a 10h window should be feasible: %+v", q.Feasibility)
	}
}

func TestRemediesPriceBothOptions(t *testing.T) {
	svc := QuoteService{}

	second, overnight, err := svc.Remedies(quoteReq(5, 36))
	if err != nil {
		t.Fatalf("Remedies error: %v", err)
	}
	if second.Drivers != 2 || second.SecondDriverCost == 0 {
		t.Fatalf("second-driver option not priced: %+v", second)
	}
	if overnight.Drivers != 1 || overnight.OvernightCost == 0 {
		t.Fatalf("overnight option not priced: %+v", overnight)
	}
	if second.NeedsNegotiation() || overnight.NeedsNegotiation() {
		t.Fatal("remedy quotes must not re-offer options")
	}
}
