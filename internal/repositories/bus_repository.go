package repositories

import (
	"database/sql"
	"time"

	intconfig "github.com/Josemaria4581/busconnect/internal/config"
	"github.com/Josemaria4581/busconnect/internal/domain"
	"github.com/Josemaria4581/busconnect/internal/domain/models"
)

const busColumns = `id, COALESCE(matricula, ''), COALESCE(modelo, ''), capacidad,
	COALESCE(kilometros_totales, 0), COALESCE(estado, '')`

type BusRepository struct {
	DB *sql.DB
}

func (r BusRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func scanBus(row interface{ Scan(...any) error }) (models.Bus, error) {
	var b models.Bus
	err := row.Scan(&b.ID, &b.Plate, &b.Model, &b.Capacity, &b.TotalKm, &b.Status)
	return b, err
}

func (r BusRepository) List() ([]models.Bus, error) {
	rows, err := r.db().Query(`SELECT ` + busColumns + ` FROM autobuses ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Bus{}
	for rows.Next() {
		b, err := scanBus(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r BusRepository) GetByID(id int64) (models.Bus, error) {
	row := r.db().QueryRow(`SELECT `+busColumns+` FROM autobuses WHERE id = ?`, id)
	b, err := scanBus(row)
	if err == sql.ErrNoRows {
		return b, domain.NotFoundError{Resource: "autobús", Err: err}
	}
	return b, err
}

// FindAvailable picks the smallest operational bus with enough seats that has
// no confirmed trip overlapping [departure, arrival). Returns nil when the
// whole fleet is busy or too small; a trip can still be confirmed without a
// bus pre-selected.
func (r BusRepository) FindAvailable(seats int, departure, arrival time.Time) (*models.Bus, error) {
	row := r.db().QueryRow(`
		SELECT `+busColumns+`
		FROM autobuses b
		WHERE b.capacidad >= ?
		  AND b.estado = 'operativo'
		  AND NOT EXISTS (
			SELECT 1 FROM viajes_discrecionales v
			WHERE v.autobus_id = b.id
			  AND v.estado = 'confirmado'
			  AND v.fecha_salida < ?
			  AND v.fecha_llegada > ?
		  )
		ORDER BY b.capacidad ASC, b.id ASC
		LIMIT 1
	`, seats, arrival, departure)

	b, err := scanBus(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r BusRepository) Create(b models.Bus) (models.Bus, error) {
	res, err := r.db().Exec(`
		INSERT INTO autobuses (matricula, modelo, capacidad, kilometros_totales, estado)
		VALUES (?,?,?,?,?)
	`, b.Plate, b.Model, b.Capacity, b.TotalKm, b.Status)
	if err != nil {
		return b, err
	}
	b.ID, _ = res.LastInsertId()
	return b, nil
}

func (r BusRepository) Update(id int64, b models.Bus) error {
	res, err := r.db().Exec(`
		UPDATE autobuses
		SET matricula = ?, modelo = ?, capacidad = ?, kilometros_totales = ?, estado = ?
		WHERE id = ?
	`, b.Plate, b.Model, b.Capacity, b.TotalKm, b.Status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(id); err != nil {
			return err
		}
	}
	return nil
}

func (r BusRepository) Delete(id int64) error {
	res, err := r.db().Exec(`DELETE FROM autobuses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "autobús"}
	}
	return nil
}
