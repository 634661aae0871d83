package services

import (
	"math"
	"time"

	"github.com/Josemaria4581/busconnect/internal/domain"
	"github.com/Josemaria4581/busconnect/internal/domain/models"
	"github.com/Josemaria4581/busconnect/internal/repositories"
	"github.com/Josemaria4581/busconnect/internal/tacho"
	"github.com/Josemaria4581/busconnect/internal/utils"
)

// Business-configured pricing constants, in euros.
const (
	CostPerKm              = 2.0
	CostPerSeat            = 1.2
	CostPerExtraDay        = 50.0
	SecondDriverDailyCost  = 180.0 // per day, second driver
	OvernightCostPerDriver = 120.0 // per driver per night (hotel + allowances)
	AdvanceRate            = 0.20
	DefaultAvgSpeedKmh     = 70.0
)

// Remedy names offered by the negotiation flow.
const (
	RemedySecondDriver = "segundo_conductor"
	RemedyOvernight    = "pernocta"
)

// QuoteRequest describes a proposed round trip before any driver is chosen.
// Km and OneWayHours may come from a stored route (RouteID) or directly from
// the requester's routing step.
type QuoteRequest struct {
	RouteID      int64     `json:"ruta_id"`
	Km           float64   `json:"kilometros"`
	OneWayHours  float64   `json:"horas_ida"`
	Seats        int       `json:"plazas"`
	Departure    time.Time `json:"fecha_salida"`
	Arrival      time.Time `json:"fecha_llegada"`
	SecondDriver bool      `json:"segundo_conductor"`
	Overnight    bool      `json:"pernocta"`
}

// Quote is a fully recomputed price breakdown plus the feasibility verdict.
// The surcharges derive from the request flags alone, so quoting the same
// request twice always yields the same total.
type Quote struct {
	Days    int `json:"dias"`
	Nights  int `json:"noches"`
	Drivers int `json:"conductores"`

	KmCost           float64 `json:"coste_km"`
	SeatCost         float64 `json:"coste_plazas"`
	ExtraDayCost     float64 `json:"coste_dias_extra"`
	SecondDriverCost float64 `json:"coste_segundo_conductor"`
	OvernightCost    float64 `json:"coste_pernocta"`
	Total            float64 `json:"total"`
	Advance          float64 `json:"adelanto"`
	Remaining        float64 `json:"restante"`

	Feasibility tacho.Feasibility `json:"tacografo"`
	// Options lists the remedies on offer when the request is infeasible and
	// no remedy was chosen yet; empty otherwise.
	Options []string `json:"opciones,omitempty"`
}

// NeedsNegotiation reports whether the requester must pick a remedy (or
// cancel) before the trip can be created.
func (q Quote) NeedsNegotiation() bool {
	return len(q.Options) > 0
}

type QuoteService struct {
	RouteRepo repositories.RouteRepository
	RequestID string

	FetchRoute func(id int64) (models.Route, error)
}

func (s QuoteService) fetchRoute(id int64) (models.Route, error) {
	if s.FetchRoute != nil {
		return s.FetchRoute(id)
	}
	return s.RouteRepo.GetByID(id)
}

// Quote prices the request and runs the Feasibility Pre-Check. An infeasible
// single-driver request gets the two remedies attached; a request already
// carrying a remedy is priced as-is and never re-checked against the
// single-driver assumption.
func (s QuoteService) Quote(req QuoteRequest) (Quote, error) {
	var q Quote

	if !req.Arrival.After(req.Departure) {
		return q, domain.ValidationError{Field: "fecha_llegada", Msg: "debe ser posterior a la salida"}
	}
	if req.Seats <= 0 {
		return q, domain.ValidationError{Field: "plazas", Msg: "debe ser mayor que cero"}
	}
	if req.SecondDriver && req.Overnight {
		return q, domain.ValidationError{Field: "opciones", Msg: "segundo conductor y pernocta son excluyentes"}
	}

	if req.RouteID > 0 && (req.Km == 0 || req.OneWayHours == 0) {
		route, err := s.fetchRoute(req.RouteID)
		if err != nil {
			return q, err
		}
		if req.Km == 0 {
			req.Km = route.DistanceKm
		}
		if req.OneWayHours == 0 {
			req.OneWayHours = route.OneWayHours()
		}
	}
	if req.OneWayHours == 0 && req.Km > 0 {
		req.OneWayHours = req.Km / DefaultAvgSpeedKmh
	}

	window := req.Arrival.Sub(req.Departure)
	q.Days = int(math.Ceil(window.Hours() / 24))
	if q.Days < 1 {
		q.Days = 1
	}
	q.Nights = q.Days - 1
	q.Drivers = 1
	if req.SecondDriver {
		q.Drivers = 2
	}

	q.KmCost = utils.Round2(req.Km * CostPerKm)
	q.SeatCost = utils.Round2(float64(req.Seats) * CostPerSeat)
	q.ExtraDayCost = utils.Round2(float64(q.Nights) * CostPerExtraDay)
	if req.SecondDriver {
		q.SecondDriverCost = utils.Round2(float64(q.Days) * SecondDriverDailyCost)
	}
	if req.Overnight {
		q.OvernightCost = utils.Round2(float64(q.Drivers) * float64(q.Nights) * OvernightCostPerDriver)
	}

	q.Total = utils.Round2(q.KmCost + q.SeatCost + q.ExtraDayCost + q.SecondDriverCost + q.OvernightCost)
	q.Advance = utils.Round2(q.Total * AdvanceRate)
	q.Remaining = utils.Round2(q.Total - q.Advance)

	q.Feasibility = tacho.PreCheck(req.OneWayHours, req.Departure, req.Arrival)
	if !q.Feasibility.OK() && !req.SecondDriver && !req.Overnight {
		q.Options = []string{RemedySecondDriver, RemedyOvernight}
	}
	return q, nil
}

// Remedies prices both negotiation options for an infeasible request, so the
// requester sees the exact cost implication of each choice before picking.
func (s QuoteService) Remedies(req QuoteRequest) (secondDriver Quote, overnight Quote, err error) {
	withSecond := req
	withSecond.SecondDriver = true
	withSecond.Overnight = false
	secondDriver, err = s.Quote(withSecond)
	if err != nil {
		return secondDriver, overnight, err
	}

	withOvernight := req
	withOvernight.SecondDriver = false
	withOvernight.Overnight = true
	overnight, err = s.Quote(withOvernight)
	return secondDriver, overnight, err
}
