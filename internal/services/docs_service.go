package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/Josemaria4581/busconnect/internal/domain/models"
	"github.com/Josemaria4581/busconnect/internal/repositories"
	"github.com/Josemaria4581/busconnect/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders the summary PDF handed out for a charter request.
type DocsService struct {
	TripRepo  repositories.TripRepository
	Loc       *time.Location
	RequestID string

	Loader func(id int64) (models.Trip, error)
}

func (s DocsService) loadTrip(id int64) (models.Trip, error) {
	if s.Loader != nil {
		return s.Loader(id)
	}
	return s.TripRepo.GetByID(id)
}

func (s DocsService) loc() *time.Location {
	if s.Loc != nil {
		return s.Loc
	}
	return time.UTC
}

// GenerateTripSummary renders the request summary handed to the requester:
// itinerary, seats, extras and the payment split.
func (s DocsService) GenerateTripSummary(tripID int64) ([]byte, string, error) {
	trip, err := s.loadTrip(tripID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_summary", fmt.Sprintf("viaje=%d", tripID))
	return s.buildTripSummaryPDF(trip)
}

func (s DocsService) buildTripSummaryPDF(t models.Trip) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Solicitud de Viaje Discrecional", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Solicitud de Viaje Discrecional")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Empresa: Autobuses ACME, S.L.")
	pdf.Ln(6)
	pdf.Cell(0, 6, "Fecha: "+time.Now().In(s.loc()).Format("02/01/2006 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Detalles de la solicitud")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Origen: "+safe(t.Origin, "-"))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Destino: "+safe(t.Destination, "-"))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Salida: "+utils.FormatDateTime(t.Departure, s.loc()))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Llegada: "+utils.FormatDateTime(t.Arrival, s.loc()))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Plazas: %d", t.Seats))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Días: %d", t.Days()))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Resumen y pago")
	pdf.Ln(8)

	advance := utils.Round2(t.TotalPrice * AdvanceRate)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Total: "+utils.FormatEUR(t.TotalPrice))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Adelanto (20%): "+utils.FormatEUR(advance))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Restante: "+utils.FormatEUR(utils.Round2(t.TotalPrice-advance)))
	pdf.Ln(8)

	extras := "1 conductor"
	if t.SecondDriver {
		extras = "Incluye 2º conductor"
	}
	if t.Overnight {
		extras += " · Incluye pernocta"
	} else {
		extras += " · Sin pernocta"
	}
	pdf.Cell(0, 6, extras)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 5, "Observaciones: precios sujetos a ajustes por paradas/esperas y a la normativa de tiempos de conducción y descanso.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("Solicitud_viaje_%d.pdf", t.ID)
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
