package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Josemaria4581/busconnect/internal/domain"
	"github.com/Josemaria4581/busconnect/internal/domain/models"
	"github.com/Josemaria4581/busconnect/internal/repositories"
	"github.com/Josemaria4581/busconnect/internal/tacho"
)

// fakeFleet is an in-memory stand-in for the trip store: confirmed windows
// per driver, mutated by PersistAssignment the way the repository would.
type fakeFleet struct {
	trips     map[int64]models.Trip
	confirmed map[int64][]tacho.TripWindow
	roster    []models.Driver
	persisted []string
}

func newFakeFleet(roster ...models.Driver) *fakeFleet {
	return &fakeFleet{
		trips:     map[int64]models.Trip{},
		confirmed: map[int64][]tacho.TripWindow{},
		roster:    roster,
	}
}

func (f *fakeFleet) addTrip(t models.Trip) {
	f.trips[t.ID] = t
}

func (f *fakeFleet) service() AssignmentService {
	return AssignmentService{
		Loc: time.UTC,
		FetchTrip: func(id int64) (models.Trip, error) {
			t, ok := f.trips[id]
			if !ok {
				return t, domain.NotFoundError{Resource: "viaje"}
			}
			return t, nil
		},
		FetchConfirmedTrips: func(driverID, excludeTripID int64) ([]tacho.TripWindow, error) {
			out := []tacho.TripWindow{}
			for _, w := range f.confirmed[driverID] {
				if w.ID != excludeTripID {
					out = append(out, w)
				}
			}
			return out, nil
		},
		FetchActiveDrivers: func() ([]models.Driver, error) {
			return f.roster, nil
		},
		FetchPendingTrips: func() ([]models.Trip, error) {
			out := []models.Trip{}
			for _, t := range f.trips {
				if t.Status == models.TripPending {
					out = append(out, t)
				}
			}
			// pending trips arrive ordered by departure
			for i := 0; i < len(out); i++ {
				for j := i + 1; j < len(out); j++ {
					if out[j].Departure.Before(out[i].Departure) {
						out[i], out[j] = out[j], out[i]
					}
				}
			}
			return out, nil
		},
		FindAvailableBus: func(seats int, dep, arr time.Time) (*models.Bus, error) {
			return nil, nil
		},
		PersistAssignment: func(tripID, driverID int64, busID *int64, verify func([]tacho.TripWindow) *tacho.Violation) error {
			if v := verify(f.confirmed[driverID]); v != nil {
				return domain.ConflictError{Resource: "tacógrafo", Msg: v.Detail, Err: repositories.ErrNotCompliant}
			}
			t := f.trips[tripID]
			t.Status = models.TripConfirmed
			t.DriverID = &driverID
			f.trips[tripID] = t
			f.confirmed[driverID] = append(f.confirmed[driverID], t.Window())
			f.persisted = append(f.persisted, fmt.Sprintf("viaje=%d conductor=%d", tripID, driverID))
			return nil
		},
	}
}

func driver(id int64, name string) models.Driver {
	return models.Driver{ID: id, Name: name, Role: "conductor", Active: true}
}

func tripAt(id int64, dep time.Time, hours int) models.Trip {
	return models.Trip{
		ID:          id,
		Origin:      "Madrid",
		Destination: "Segovia",
		Departure:   dep,
		Arrival:     dep.Add(time.Duration(hours) * time.Hour),
		Seats:       40,
		Status:      models.TripPending,
	}
}

func TestAssignTripFirstCompliantDriverWins(t *testing.T) {
	dep := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

	fleet := newFakeFleet(driver(1, "Juan"), driver(2, "María"), driver(3, "Luis"))
	fleet.addTrip(tripAt(10, dep, 4))
	// Driver 1 is already on the road at that time.
	fleet.confirmed[1] = []tacho.TripWindow{{ID: 99, Departure: dep.Add(-time.Hour), Arrival: dep.Add(5 * time.Hour)}}

	svc := fleet.service()
	trip, drv, err := svc.AssignTrip(10)
	if err != nil {
		t.Fatalf("AssignTrip error: %v", err)
	}
	if drv.ID != 2 {
		t.Fatalf("expected driver 2, got %d", drv.ID)
	}
	if trip.Status != models.TripConfirmed || trip.DriverID == nil || *trip.DriverID != 2 {
		t.Fatalf("trip not confirmed for driver 2: %+v", trip)
	}
}

func TestAssignTripDeterministic(t *testing.T) {
	dep := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		fleet := newFakeFleet(driver(3, "Luis"), driver(1, "Juan"), driver(2, "María"))
		fleet.addTrip(tripAt(10, dep, 4))

		_, drv, err := fleet.service().AssignTrip(10)
		if err != nil {
			t.Fatalf("AssignTrip error: %v", err)
		}
		// Roster listing order, not id order, decides priority.
		if drv.ID != 3 {
			t.Fatalf("run %d: expected roster head (driver 3), got %d", i, drv.ID)
		}
	}
}

func TestAssignTripSkipsNonCandidates(t *testing.T) {
	dep := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

	mechanic := models.Driver{ID: 1, Name: "Carlos", Role: "mecanico", Active: true}
	inactive := models.Driver{ID: 2, Name: "Ana", Role: "conductor", Active: false}
	fleet := newFakeFleet(mechanic, inactive, driver(3, "Luis"))
	fleet.addTrip(tripAt(10, dep, 4))

	_, drv, err := fleet.service().AssignTrip(10)
	if err != nil {
		t.Fatalf("AssignTrip error: %v", err)
	}
	if drv.ID != 3 {
		t.Fatalf("expected driver 3, got %d", drv.ID)
	}
}

func TestAssignTripNoCompliantDriver(t *testing.T) {
	dep := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

	fleet := newFakeFleet(driver(1, "Juan"))
	fleet.addTrip(tripAt(10, dep, 4))
	fleet.confirmed[1] = []tacho.TripWindow{{ID: 99, Departure: dep, Arrival: dep.Add(2 * time.Hour)}}

	trip, _, err := fleet.service().AssignTrip(10)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	var conflict domain.ConflictError
	if !errors.As(err, &conflict) || conflict.Msg != NoCompliantDriverMsg {
		t.Fatalf("expected the fixed diagnostic, got %q", err.Error())
	}
	if trip.Status != models.TripPending {
		t.Fatalf("failed assignment must leave the trip pending, got %s", trip.Status)
	}
}

func TestAssignTripRejectsInvertedWindow(t *testing.T) {
	dep := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

	fleet := newFakeFleet(driver(1, "Juan"))
	bad := tripAt(10, dep, 4)
	bad.Arrival = bad.Departure
	fleet.addTrip(bad)

	_, _, err := fleet.service().AssignTrip(10)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAssignTripVerifyCatchesRace(t *testing.T) {
	dep := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

	fleet := newFakeFleet(driver(1, "Juan"), driver(2, "María"))
	fleet.addTrip(tripAt(10, dep, 4))

	svc := fleet.service()
	// Driver 1 looks free at evaluation time but a concurrent writer lands
	// an overlapping trip before the persist re-check.
	base := svc.FetchConfirmedTrips
	svc.FetchConfirmedTrips = func(driverID, excludeTripID int64) ([]tacho.TripWindow, error) {
		if driverID == 1 {
			fleet.confirmed[1] = []tacho.TripWindow{{ID: 99, Departure: dep, Arrival: dep.Add(3 * time.Hour)}}
			return nil, nil // stale read
		}
		return base(driverID, excludeTripID)
	}

	_, drv, err := svc.AssignTrip(10)
	if err != nil {
		t.Fatalf("AssignTrip error: %v", err)
	}
	if drv.ID != 2 {
		t.Fatalf("expected the race loser to be skipped, assigned driver %d", drv.ID)
	}
}

func TestAssignTripRetriesPersistOnce(t *testing.T) {
	dep := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

	fleet := newFakeFleet(driver(1, "Juan"))
	fleet.addTrip(tripAt(10, dep, 4))

	svc := fleet.service()
	base := svc.PersistAssignment
	calls := 0
	svc.PersistAssignment = func(tripID, driverID int64, busID *int64, verify func([]tacho.TripWindow) *tacho.Violation) error {
		calls++
		if calls == 1 {
			return errors.New("deadlock")
		}
		return base(tripID, driverID, busID, verify)
	}

	_, drv, err := svc.AssignTrip(10)
	if err != nil {
		t.Fatalf("AssignTrip error after retry: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected exactly one retry, persist called %d times", calls)
	}
	if drv.ID != 1 {
		t.Fatalf("expected driver 1, got %d", drv.ID)
	}
}

func TestAssignPendingEarlierDepartureWins(t *testing.T) {
	dep := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

	fleet := newFakeFleet(driver(1, "Juan"))
	// Overlapping windows, one driver: only the earlier departure can land.
	fleet.addTrip(tripAt(20, dep.Add(time.Hour), 4))
	fleet.addTrip(tripAt(10, dep, 4))

	res, err := fleet.service().AssignPending()
	if err != nil {
		t.Fatalf("AssignPending error: %v", err)
	}
	if res.Processed != 2 || res.Assigned != 1 || res.Skipped != 1 {
		t.Fatalf("unexpected batch result: %+v", res)
	}
	if fleet.trips[10].Status != models.TripConfirmed {
		t.Fatalf("earlier trip should be confirmed, got %s", fleet.trips[10].Status)
	}
	if fleet.trips[20].Status != models.TripPending {
		t.Fatalf("later trip must stay pending, got %s", fleet.trips[20].Status)
	}
}

func TestAssignPendingSeesEarlierAssignments(t *testing.T) {
	dep := time.Date(2026, time.June, 1, 6, 0, 0, 0, time.UTC)

	fleet := newFakeFleet(driver(1, "Juan"), driver(2, "María"))
	fleet.addTrip(tripAt(10, dep, 4))
	// Departs 5h after trip 10 ends: too little rest for the same driver.
	fleet.addTrip(tripAt(20, dep.Add(9*time.Hour), 4))

	res, err := fleet.service().AssignPending()
	if err != nil {
		t.Fatalf("AssignPending error: %v", err)
	}
	if res.Assigned != 2 {
		t.Fatalf("expected both trips assigned, got %+v", res)
	}
	if *fleet.trips[10].DriverID != 1 || *fleet.trips[20].DriverID != 2 {
		t.Fatalf("expected drivers 1 and 2, got %v and %v",
			*fleet.trips[10].DriverID, *fleet.trips[20].DriverID)
	}
}

func TestValidateAssignmentExcludesOwnTrip(t *testing.T) {
	dep := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

	fleet := newFakeFleet(driver(1, "Juan"))
	trip := tripAt(10, dep, 4)
	trip.Status = models.TripConfirmed
	fleet.addTrip(trip)
	fleet.confirmed[1] = []tacho.TripWindow{trip.Window()}

	// Re-validating the same assignment must not conflict with itself.
	if err := fleet.service().ValidateAssignment(trip, 1); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	// A second trip inside the same window must.
	other := tripAt(11, dep.Add(time.Hour), 2)
	if err := fleet.service().ValidateAssignment(other, 1); !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
