package models

// Bus mirrors the autobuses schema.
type Bus struct {
	ID       int64  `json:"id"`
	Plate    string `json:"matricula"`
	Model    string `json:"modelo"`
	Capacity int    `json:"capacidad"`
	TotalKm  int64  `json:"kilometros_totales"`
	Status   string `json:"estado"`
}

// Operational is the estado of a bus that may be dispatched.
const BusOperational = "operativo"
