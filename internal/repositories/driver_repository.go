package repositories

import (
	"database/sql"

	intconfig "github.com/Josemaria4581/busconnect/internal/config"
	"github.com/Josemaria4581/busconnect/internal/domain"
	"github.com/Josemaria4581/busconnect/internal/domain/models"
)

const driverColumns = `id, COALESCE(codigo, ''), COALESCE(nombre, ''), COALESCE(apellidos, ''),
	COALESCE(email, ''), COALESCE(licencia, ''), COALESCE(rol, ''), activo`

type DriverRepository struct {
	DB *sql.DB
}

func (r DriverRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func scanDriver(row interface{ Scan(...any) error }) (models.Driver, error) {
	var d models.Driver
	err := row.Scan(&d.ID, &d.Code, &d.Name, &d.Surname, &d.Email, &d.License, &d.Role, &d.Active)
	return d, err
}

// ActiveCandidates returns the assignment roster: active drivers, in a
// stable listing order. Position in this slice is the candidate priority of
// the Assignment Search.
func (r DriverRepository) ActiveCandidates() ([]models.Driver, error) {
	rows, err := r.db().Query(`
		SELECT ` + driverColumns + `
		FROM conductores
		WHERE (rol = 'conductor' OR rol = 'driver') AND activo = 1
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Driver{}
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r DriverRepository) List() ([]models.Driver, error) {
	rows, err := r.db().Query(`SELECT ` + driverColumns + ` FROM conductores ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Driver{}
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r DriverRepository) GetByID(id int64) (models.Driver, error) {
	row := r.db().QueryRow(`SELECT `+driverColumns+` FROM conductores WHERE id = ?`, id)
	d, err := scanDriver(row)
	if err == sql.ErrNoRows {
		return d, domain.NotFoundError{Resource: "conductor", Err: err}
	}
	return d, err
}

// GetCredentials returns the driver row plus its password hash for login.
func (r DriverRepository) GetCredentials(email string) (models.Driver, string, error) {
	row := r.db().QueryRow(`
		SELECT `+driverColumns+`, COALESCE(password, '')
		FROM conductores
		WHERE email = ?
	`, email)

	var (
		d    models.Driver
		hash string
	)
	err := row.Scan(&d.ID, &d.Code, &d.Name, &d.Surname, &d.Email, &d.License, &d.Role, &d.Active, &hash)
	if err == sql.ErrNoRows {
		return d, "", domain.NotFoundError{Resource: "conductor", Err: err}
	}
	return d, hash, err
}

func (r DriverRepository) Create(d models.Driver, passwordHash string) (models.Driver, error) {
	res, err := r.db().Exec(`
		INSERT INTO conductores (codigo, nombre, apellidos, email, licencia, rol, activo, password, fecha_alta)
		VALUES (?,?,?,?,?,?,?,?,CURDATE())
	`, d.Code, d.Name, d.Surname, d.Email, d.License, d.Role, d.Active, passwordHash)
	if err != nil {
		return d, err
	}
	d.ID, _ = res.LastInsertId()
	return d, nil
}

func (r DriverRepository) Update(id int64, d models.Driver) error {
	res, err := r.db().Exec(`
		UPDATE conductores
		SET codigo = ?, nombre = ?, apellidos = ?, email = ?, licencia = ?, rol = ?, activo = ?
		WHERE id = ?
	`, d.Code, d.Name, d.Surname, d.Email, d.License, d.Role, d.Active, id)
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

func (r DriverRepository) Delete(id int64) error {
	res, err := r.db().Exec(`DELETE FROM conductores WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "conductor"}
	}
	return nil
}
