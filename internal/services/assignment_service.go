package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Josemaria4581/busconnect/internal/domain"
	"github.com/Josemaria4581/busconnect/internal/domain/models"
	"github.com/Josemaria4581/busconnect/internal/repositories"
	"github.com/Josemaria4581/busconnect/internal/tacho"
	"github.com/Josemaria4581/busconnect/internal/utils"
)

// NoCompliantDriverMsg is the fixed diagnostic returned when the roster is
// exhausted. It names the regulatory limits checked, not per-driver reasons.
const NoCompliantDriverMsg = "No se encontró ningún conductor disponible que cumpla la normativa (9h conducción/día, 9h descanso, 56h/semana)."

// driverLocks serializes assignment decisions per driver within the process;
// the transaction in AssignDriver covers writers in other processes.
var driverLocks = struct {
	mu sync.Mutex
	m  map[int64]*sync.Mutex
}{m: map[int64]*sync.Mutex{}}

func lockDriver(id int64) *sync.Mutex {
	driverLocks.mu.Lock()
	defer driverLocks.mu.Unlock()
	l, ok := driverLocks.m[id]
	if !ok {
		l = &sync.Mutex{}
		driverLocks.m[id] = l
	}
	return l
}

// AssignmentService runs the tachograph-compliant Assignment Search. The
// func fields override the repository reads/writes in tests.
type AssignmentService struct {
	TripRepo   repositories.TripRepository
	DriverRepo repositories.DriverRepository
	BusRepo    repositories.BusRepository
	Loc        *time.Location
	RequestID  string

	FetchTrip           func(id int64) (models.Trip, error)
	FetchConfirmedTrips func(driverID, excludeTripID int64) ([]tacho.TripWindow, error)
	FetchActiveDrivers  func() ([]models.Driver, error)
	FetchPendingTrips   func() ([]models.Trip, error)
	FindAvailableBus    func(seats int, departure, arrival time.Time) (*models.Bus, error)
	PersistAssignment   func(tripID, driverID int64, busID *int64, verify func([]tacho.TripWindow) *tacho.Violation) error
}

func (s AssignmentService) loc() *time.Location {
	if s.Loc != nil {
		return s.Loc
	}
	return time.UTC
}

func (s AssignmentService) fetchTrip(id int64) (models.Trip, error) {
	if s.FetchTrip != nil {
		return s.FetchTrip(id)
	}
	return s.TripRepo.GetByID(id)
}

func (s AssignmentService) fetchConfirmed(driverID, excludeTripID int64) ([]tacho.TripWindow, error) {
	if s.FetchConfirmedTrips != nil {
		return s.FetchConfirmedTrips(driverID, excludeTripID)
	}
	return s.TripRepo.ConfirmedByDriver(driverID, excludeTripID)
}

func (s AssignmentService) fetchRoster() ([]models.Driver, error) {
	if s.FetchActiveDrivers != nil {
		return s.FetchActiveDrivers()
	}
	return s.DriverRepo.ActiveCandidates()
}

func (s AssignmentService) fetchPending() ([]models.Trip, error) {
	if s.FetchPendingTrips != nil {
		return s.FetchPendingTrips()
	}
	return s.TripRepo.PendingByDeparture()
}

func (s AssignmentService) findBus(seats int, departure, arrival time.Time) (*models.Bus, error) {
	if s.FindAvailableBus != nil {
		return s.FindAvailableBus(seats, departure, arrival)
	}
	return s.BusRepo.FindAvailable(seats, departure, arrival)
}

func (s AssignmentService) persist(tripID, driverID int64, busID *int64, verify func([]tacho.TripWindow) *tacho.Violation) error {
	if s.PersistAssignment != nil {
		return s.PersistAssignment(tripID, driverID, busID, verify)
	}
	return s.TripRepo.AssignDriver(tripID, driverID, busID, verify)
}

// AssignTrip picks the first roster driver that may legally cover the trip,
// confirms the trip for that driver and returns both. With no compliant
// driver the trip is left untouched and a ConflictError carries the fixed
// diagnostic.
func (s AssignmentService) AssignTrip(tripID int64) (models.Trip, models.Driver, error) {
	var none models.Driver

	trip, err := s.fetchTrip(tripID)
	if err != nil {
		return trip, none, err
	}
	if !trip.Arrival.After(trip.Departure) {
		return trip, none, domain.ValidationError{Field: "fecha_llegada", Msg: "debe ser posterior a la salida"}
	}
	if trip.Status != models.TripPending {
		return trip, none, domain.ConflictError{Resource: "viaje", Msg: "solo se asignan viajes pendientes"}
	}

	roster, err := s.fetchRoster()
	if err != nil {
		return trip, none, err
	}

	drv, err := s.search(trip, roster)
	if err != nil {
		return trip, none, err
	}

	trip, err = s.fetchTrip(tripID)
	return trip, drv, err
}

// BatchResult summarizes a whole-roster pass over the pending backlog.
type BatchResult struct {
	Processed int `json:"procesados"`
	Assigned  int `json:"asignados"`
	Skipped   int `json:"sin_asignar"`
}

// AssignPending walks all pending trips by departure ascending and applies
// the single-trip search to each one. Earlier departures get priority for
// scarce drivers; assignments land immediately, so later iterations see
// them. Failed trips are skipped, never revisited.
func (s AssignmentService) AssignPending() (BatchResult, error) {
	var res BatchResult

	pending, err := s.fetchPending()
	if err != nil {
		return res, err
	}
	roster, err := s.fetchRoster()
	if err != nil {
		return res, err
	}

	for _, trip := range pending {
		res.Processed++
		if !trip.Arrival.After(trip.Departure) {
			res.Skipped++
			continue
		}
		if _, err := s.search(trip, roster); err != nil {
			if domain.IsConflict(err) {
				res.Skipped++
				continue
			}
			return res, err
		}
		res.Assigned++
	}
	return res, nil
}

// search iterates the roster in order and stops at the first driver the trip
// may legally be confirmed for. Roster order is the only priority; no
// re-sorting, no backtracking.
func (s AssignmentService) search(trip models.Trip, roster []models.Driver) (models.Driver, error) {
	for _, drv := range roster {
		if !drv.IsCandidate() {
			continue
		}
		err := s.tryAssign(trip, drv)
		if err == nil {
			utils.LogEvent(s.RequestID, "asignacion", "confirmado",
				fmt.Sprintf("viaje=%d conductor=%d", trip.ID, drv.ID))
			return drv, nil
		}
		if errors.Is(err, repositories.ErrNotCompliant) {
			continue
		}
		return models.Driver{}, err
	}
	return models.Driver{}, domain.ConflictError{Resource: "asignación", Msg: NoCompliantDriverMsg}
}

// tryAssign runs the full fetch-evaluate-persist sequence for one candidate,
// serialized per driver. A persistence failure is retried once by re-running
// the whole sequence against re-read state.
func (s AssignmentService) tryAssign(trip models.Trip, drv models.Driver) error {
	mu := lockDriver(drv.ID)
	mu.Lock()
	defer mu.Unlock()

	attempt := func() error {
		confirmed, err := s.fetchConfirmed(drv.ID, trip.ID)
		if err != nil {
			return err
		}
		if v := tacho.Evaluate(trip.Window(), confirmed, s.loc()); v != nil {
			return domain.ConflictError{Resource: "tacógrafo", Msg: v.Detail, Err: repositories.ErrNotCompliant}
		}

		var busID *int64
		if bus, err := s.findBus(trip.Seats, trip.Departure, trip.Arrival); err != nil {
			utils.LogEvent(s.RequestID, "asignacion", "bus_lookup_error", err.Error())
		} else if bus != nil {
			busID = &bus.ID
		}

		return s.persist(trip.ID, drv.ID, busID, func(confirmed []tacho.TripWindow) *tacho.Violation {
			return tacho.Evaluate(trip.Window(), confirmed, s.loc())
		})
	}

	err := attempt()
	if err != nil && !domain.IsConflict(err) && !domain.IsNotFound(err) {
		utils.LogEvent(s.RequestID, "asignacion", "retry",
			fmt.Sprintf("viaje=%d conductor=%d err=%v", trip.ID, drv.ID, err))
		err = attempt()
	}
	return err
}

// ValidateAssignment re-runs the Compliance Evaluator for an existing trip
// that is being given driverID or new dates, excluding the trip's own id
// from the driver's history. A nil return means the pairing is legal.
func (s AssignmentService) ValidateAssignment(trip models.Trip, driverID int64) error {
	if !trip.Arrival.After(trip.Departure) {
		return domain.ValidationError{Field: "fecha_llegada", Msg: "debe ser posterior a la salida"}
	}
	confirmed, err := s.fetchConfirmed(driverID, trip.ID)
	if err != nil {
		return err
	}
	if v := tacho.Evaluate(trip.Window(), confirmed, s.loc()); v != nil {
		return domain.ConflictError{Resource: "tacógrafo", Msg: v.Detail, Err: repositories.ErrNotCompliant}
	}
	return nil
}
