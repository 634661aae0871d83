package repositories

import (
	"database/sql"

	intconfig "github.com/Josemaria4581/busconnect/internal/config"
	"github.com/Josemaria4581/busconnect/internal/domain"
	"github.com/Josemaria4581/busconnect/internal/domain/models"
)

const routeColumns = `id, COALESCE(codigo, ''), COALESCE(nombre, ''), COALESCE(origen, ''),
	COALESCE(destino, ''), COALESCE(distancia_km, 0), COALESCE(duracion_estimada_min, 0),
	activo, COALESCE(precio, 0)`

type RouteRepository struct {
	DB *sql.DB
}

func (r RouteRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func scanRoute(row interface{ Scan(...any) error }) (models.Route, error) {
	var rt models.Route
	err := row.Scan(&rt.ID, &rt.Code, &rt.Name, &rt.Origin, &rt.Destination,
		&rt.DistanceKm, &rt.EstimatedMinutes, &rt.Active, &rt.Price)
	return rt, err
}

func (r RouteRepository) List() ([]models.Route, error) {
	rows, err := r.db().Query(`SELECT ` + routeColumns + ` FROM rutas ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Route{}
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r RouteRepository) GetByID(id int64) (models.Route, error) {
	row := r.db().QueryRow(`SELECT `+routeColumns+` FROM rutas WHERE id = ?`, id)
	rt, err := scanRoute(row)
	if err == sql.ErrNoRows {
		return rt, domain.NotFoundError{Resource: "ruta", Err: err}
	}
	return rt, err
}

func (r RouteRepository) Create(rt models.Route) (models.Route, error) {
	res, err := r.db().Exec(`
		INSERT INTO rutas (codigo, nombre, origen, destino, distancia_km, duracion_estimada_min, activo, precio)
		VALUES (?,?,?,?,?,?,?,?)
	`, rt.Code, rt.Name, rt.Origin, rt.Destination, rt.DistanceKm, rt.EstimatedMinutes, rt.Active, rt.Price)
	if err != nil {
		return rt, err
	}
	rt.ID, _ = res.LastInsertId()
	return rt, nil
}

func (r RouteRepository) Update(id int64, rt models.Route) error {
	res, err := r.db().Exec(`
		UPDATE rutas
		SET codigo = ?, nombre = ?, origen = ?, destino = ?, distancia_km = ?,
			duracion_estimada_min = ?, activo = ?, precio = ?
		WHERE id = ?
	`, rt.Code, rt.Name, rt.Origin, rt.Destination, rt.DistanceKm, rt.EstimatedMinutes, rt.Active, rt.Price, id)
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

func (r RouteRepository) Delete(id int64) error {
	res, err := r.db().Exec(`DELETE FROM rutas WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "ruta"}
	}
	return nil
}
