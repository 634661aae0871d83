package models

import (
	"time"

	"github.com/Josemaria4581/busconnect/internal/tacho"
)

// Estado values for viajes_discrecionales. A trip is created as pendiente by
// a requester, confirmed only with a driver attached, and rejected only with
// a reason.
const (
	TripPending   = "pendiente"
	TripConfirmed = "confirmado"
	TripRejected  = "rechazado"
)

// Trip mirrors the viajes_discrecionales schema.
type Trip struct {
	ID           int64     `json:"id"`
	ClientID     int64     `json:"cliente_id"`
	Origin       string    `json:"origen"`
	Destination  string    `json:"destino"`
	Departure    time.Time `json:"fecha_salida"`
	Arrival      time.Time `json:"fecha_llegada"`
	Seats        int       `json:"plazas"`
	TotalPrice   float64   `json:"precio_total"`
	Status       string    `json:"estado"`
	DriverID     *int64    `json:"conductor_id"`
	BusID        *int64    `json:"autobus_id"`
	SecondDriver bool      `json:"segundo_conductor"`
	Overnight    bool      `json:"pernocta"`
	Notes        string    `json:"observaciones"`
	RejectReason *string   `json:"motivo_rechazo"`
}

// Window returns the trip as the evaluator's input shape.
func (t Trip) Window() tacho.TripWindow {
	return tacho.TripWindow{ID: t.ID, Departure: t.Departure, Arrival: t.Arrival}
}

// Drivers returns how many drivers the trip requires (1 or 2).
func (t Trip) Drivers() int {
	if t.SecondDriver {
		return 2
	}
	return 1
}

// Days returns the number of calendar days the window spans, at least 1.
func (t Trip) Days() int {
	d := int((t.Arrival.Sub(t.Departure) + 24*time.Hour - 1) / (24 * time.Hour))
	if d < 1 {
		return 1
	}
	return d
}

// Nights returns the overnight stays implied by the window.
func (t Trip) Nights() int {
	return t.Days() - 1
}
