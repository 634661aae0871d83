package models

// Route mirrors the rutas schema. Distance and the one-way driving estimate
// feed the quote's feasibility pre-check.
type Route struct {
	ID               int64   `json:"id"`
	Code             string  `json:"codigo"`
	Name             string  `json:"nombre"`
	Origin           string  `json:"origen"`
	Destination      string  `json:"destino"`
	DistanceKm       float64 `json:"distancia_km"`
	EstimatedMinutes int     `json:"duracion_estimada_min"`
	Active           bool    `json:"activo"`
	Price            float64 `json:"precio"`
}

// OneWayHours returns the estimated one-way driving time in hours.
func (r Route) OneWayHours() float64 {
	return float64(r.EstimatedMinutes) / 60
}
