package repositories

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	intconfig "github.com/Josemaria4581/busconnect/internal/config"
	intdb "github.com/Josemaria4581/busconnect/internal/db"
	"github.com/Josemaria4581/busconnect/internal/domain"
	"github.com/Josemaria4581/busconnect/internal/domain/models"
	"github.com/Josemaria4581/busconnect/internal/tacho"
)

const tripColumns = `id, cliente_id, origen, destino, fecha_salida, fecha_llegada, plazas,
	precio_total, estado, conductor_id, autobus_id, segundo_conductor, pernocta,
	COALESCE(observaciones, ''), motivo_rechazo`

type TripRepository struct {
	DB *sql.DB
}

func (r TripRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// TripUpdate carries the fields a PUT may change; nil means "leave as is".
type TripUpdate struct {
	Origin       *string
	Destination  *string
	Departure    *time.Time
	Arrival      *time.Time
	Seats        *int
	TotalPrice   *float64
	Status       *string
	DriverID     *int64
	BusID        *int64
	SecondDriver *bool
	Overnight    *bool
	Notes        *string
	RejectReason *string
}

func scanTrip(row interface{ Scan(...any) error }) (models.Trip, error) {
	var (
		t            models.Trip
		driverID     sql.NullInt64
		busID        sql.NullInt64
		rejectReason sql.NullString
	)
	err := row.Scan(
		&t.ID,
		&t.ClientID,
		&t.Origin,
		&t.Destination,
		&t.Departure,
		&t.Arrival,
		&t.Seats,
		&t.TotalPrice,
		&t.Status,
		&driverID,
		&busID,
		&t.SecondDriver,
		&t.Overnight,
		&t.Notes,
		&rejectReason,
	)
	if err != nil {
		return t, err
	}
	if driverID.Valid {
		t.DriverID = &driverID.Int64
	}
	if busID.Valid {
		t.BusID = &busID.Int64
	}
	if rejectReason.Valid {
		t.RejectReason = &rejectReason.String
	}
	return t, nil
}

// List returns trips, newest departure first, optionally filtered by estado
// and/or cliente_id (mirroring the listing filters of the requester UI).
func (r TripRepository) List(status string, clientID int64) ([]models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM viajes_discrecionales`
	clauses := []string{}
	args := []any{}
	if s := strings.TrimSpace(status); s != "" {
		clauses = append(clauses, "estado = ?")
		args = append(args, s)
	}
	if clientID > 0 {
		clauses = append(clauses, "cliente_id = ?")
		args = append(args, clientID)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY fecha_salida DESC, id DESC"

	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r TripRepository) GetByID(id int64) (models.Trip, error) {
	row := r.db().QueryRow(`SELECT `+tripColumns+` FROM viajes_discrecionales WHERE id = ?`, id)
	t, err := scanTrip(row)
	if err == sql.ErrNoRows {
		return t, domain.NotFoundError{Resource: "viaje", Err: err}
	}
	return t, err
}

func (r TripRepository) Create(t models.Trip) (models.Trip, error) {
	res, err := r.db().Exec(`
		INSERT INTO viajes_discrecionales
			(cliente_id, origen, destino, fecha_salida, fecha_llegada, plazas,
			 precio_total, estado, segundo_conductor, pernocta, observaciones)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)
	`,
		t.ClientID, t.Origin, t.Destination, t.Departure, t.Arrival, t.Seats,
		t.TotalPrice, t.Status, t.SecondDriver, t.Overnight, t.Notes,
	)
	if err != nil {
		return t, err
	}
	t.ID, _ = res.LastInsertId()
	return t, nil
}

// Update applies the non-nil fields of upd.
func (r TripRepository) Update(id int64, upd TripUpdate) error {
	sets := []string{}
	args := []any{}
	add := func(column string, v any) {
		sets = append(sets, column+" = ?")
		args = append(args, v)
	}
	if upd.Origin != nil {
		add("origen", *upd.Origin)
	}
	if upd.Destination != nil {
		add("destino", *upd.Destination)
	}
	if upd.Departure != nil {
		add("fecha_salida", *upd.Departure)
	}
	if upd.Arrival != nil {
		add("fecha_llegada", *upd.Arrival)
	}
	if upd.Seats != nil {
		add("plazas", *upd.Seats)
	}
	if upd.TotalPrice != nil {
		add("precio_total", *upd.TotalPrice)
	}
	if upd.Status != nil {
		add("estado", *upd.Status)
	}
	if upd.DriverID != nil {
		add("conductor_id", *upd.DriverID)
	}
	if upd.BusID != nil {
		add("autobus_id", *upd.BusID)
	}
	if upd.SecondDriver != nil {
		add("segundo_conductor", *upd.SecondDriver)
	}
	if upd.Overnight != nil {
		add("pernocta", *upd.Overnight)
	}
	if upd.Notes != nil {
		add("observaciones", *upd.Notes)
	}
	if upd.RejectReason != nil {
		add("motivo_rechazo", *upd.RejectReason)
	}
	if len(sets) == 0 {
		return domain.ValidationError{Msg: "no hay campos para actualizar"}
	}

	args = append(args, id)
	res, err := r.db().Exec(`UPDATE viajes_discrecionales SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either missing or an identical row; distinguish with a lookup.
		if _, err := r.GetByID(id); err != nil {
			return err
		}
	}
	return nil
}

func (r TripRepository) Delete(id int64) error {
	res, err := r.db().Exec(`DELETE FROM viajes_discrecionales WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "viaje"}
	}
	return nil
}

// ConfirmedByDriver returns the [departure, arrival) windows of the driver's
// confirmed trips, excluding excludeTripID (pass 0 to exclude nothing). Only
// confirmed trips count toward compliance.
func (r TripRepository) ConfirmedByDriver(driverID, excludeTripID int64) ([]tacho.TripWindow, error) {
	rows, err := r.db().Query(`
		SELECT id, fecha_salida, fecha_llegada
		FROM viajes_discrecionales
		WHERE conductor_id = ? AND estado = 'confirmado' AND id != ?
	`, driverID, excludeTripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []tacho.TripWindow{}
	for rows.Next() {
		var w tacho.TripWindow
		if err := rows.Scan(&w.ID, &w.Departure, &w.Arrival); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// PendingByDeparture returns pending trips ordered by departure ascending.
// The order is load-bearing for the batch: earlier departures get first pick
// of the roster.
func (r TripRepository) PendingByDeparture() ([]models.Trip, error) {
	rows, err := r.db().Query(`
		SELECT ` + tripColumns + `
		FROM viajes_discrecionales
		WHERE estado = 'pendiente'
		ORDER BY fecha_salida ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Sentinel causes for assignment conflicts, wrapped in ConflictError so
// handlers map them to 409 while the search loop can still tell them apart.
var (
	ErrTripNotPending = errors.New("el viaje ya no está pendiente")
	ErrNotCompliant   = errors.New("el conductor no cumple la normativa")
)

// AssignDriver confirms tripID for driverID (and busID when one was found)
// in a single transaction. Both the trip row and the driver's confirmed
// trips are read under row locks and the verdict is recomputed via verify on
// that authoritative snapshot, so a concurrent assignment for the same
// driver cannot slip an overlap past the check. A stale pre-evaluation is
// never trusted at commit time.
func (r TripRepository) AssignDriver(tripID, driverID int64, busID *int64, verify func([]tacho.TripWindow) *tacho.Violation) error {
	return intdb.WithTx(r.db(), func(tx *sql.Tx) error {
		var estado string
		err := tx.QueryRow(`SELECT estado FROM viajes_discrecionales WHERE id = ? FOR UPDATE`, tripID).Scan(&estado)
		if err == sql.ErrNoRows {
			return domain.NotFoundError{Resource: "viaje", Err: err}
		}
		if err != nil {
			return err
		}
		if estado != models.TripPending {
			return domain.ConflictError{Resource: "viaje", Msg: ErrTripNotPending.Error(), Err: ErrTripNotPending}
		}

		rows, err := tx.Query(`
			SELECT id, fecha_salida, fecha_llegada
			FROM viajes_discrecionales
			WHERE conductor_id = ? AND estado = 'confirmado' AND id != ?
			FOR UPDATE
		`, driverID, tripID)
		if err != nil {
			return err
		}
		confirmed := []tacho.TripWindow{}
		for rows.Next() {
			var w tacho.TripWindow
			if err := rows.Scan(&w.ID, &w.Departure, &w.Arrival); err != nil {
				rows.Close()
				return err
			}
			confirmed = append(confirmed, w)
		}
		if err := rows.Close(); err != nil {
			return err
		}

		if v := verify(confirmed); v != nil {
			return domain.ConflictError{Resource: "tacógrafo", Msg: v.Detail, Err: ErrNotCompliant}
		}

		_, err = tx.Exec(`
			UPDATE viajes_discrecionales
			SET conductor_id = ?, autobus_id = COALESCE(?, autobus_id), estado = 'confirmado'
			WHERE id = ?
		`, driverID, busID, tripID)
		return err
	})
}
