package handlers

import (
	"net/http"
	"strconv"

	"github.com/Josemaria4581/busconnect/internal/domain/models"
	"github.com/Josemaria4581/busconnect/internal/http/middleware"
	"github.com/Josemaria4581/busconnect/internal/repositories"
	"github.com/Josemaria4581/busconnect/internal/services"
	"github.com/Josemaria4581/busconnect/internal/utils"

	"github.com/gin-gonic/gin"
)

func assignmentService(c *gin.Context) services.AssignmentService {
	return services.AssignmentService{
		TripRepo:   repositories.TripRepository{},
		DriverRepo: repositories.DriverRepository{},
		BusRepo:    repositories.BusRepository{},
		Loc:        fleetLoc,
		RequestID:  middleware.GetRequestID(c),
	}
}

// GET /api/viajes?estado=pendiente&cliente_id=5
func GetTrips(c *gin.Context) {
	var clientID int64
	if raw := c.Query("cliente_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			RespondError(c, http.StatusBadRequest, "cliente_id no válido", err)
			return
		}
		clientID = id
	}
	trips, err := repositories.TripRepository{}.List(c.Query("estado"), clientID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}

// GET /api/viajes/:id
func GetTripByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	trip, err := repositories.TripRepository{}.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

type tripRequest struct {
	ClientID     int64   `json:"cliente_id"`
	Origin       string  `json:"origen"`
	Destination  string  `json:"destino"`
	Departure    string  `json:"fecha_salida"`
	Arrival      string  `json:"fecha_llegada"`
	Seats        int     `json:"plazas"`
	TotalPrice   float64 `json:"precio_total"`
	Km           float64 `json:"kilometros"`
	OneWayHours  float64 `json:"horas_ida"`
	RouteID      int64   `json:"ruta_id"`
	SecondDriver bool    `json:"segundo_conductor"`
	Overnight    bool    `json:"pernocta"`
	Notes        string  `json:"observaciones"`
}

// POST /api/viajes creates a request as pendiente. A request without a
// remedy flag must pass the feasibility pre-check; an infeasible one comes
// back as 409 with the priced remedies so the requester can resubmit with
// segundo_conductor or pernocta set. Resubmissions with a remedy skip the
// single-driver check entirely.
func CreateTrip(c *gin.Context) {
	var req tripRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Origin == "" || req.Destination == "" {
		RespondError(c, http.StatusBadRequest, "origen y destino son obligatorios", nil)
		return
	}
	departure, err := utils.ParseTimestamp(req.Departure, fleetLoc)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "fecha_salida no válida", err)
		return
	}
	arrival, err := utils.ParseTimestamp(req.Arrival, fleetLoc)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "fecha_llegada no válida", err)
		return
	}

	quoteSvc := services.QuoteService{
		RouteRepo: repositories.RouteRepository{},
		RequestID: middleware.GetRequestID(c),
	}
	quoteReq := services.QuoteRequest{
		RouteID:      req.RouteID,
		Km:           req.Km,
		OneWayHours:  req.OneWayHours,
		Seats:        req.Seats,
		Departure:    departure,
		Arrival:      arrival,
		SecondDriver: req.SecondDriver,
		Overnight:    req.Overnight,
	}
	quote, err := quoteSvc.Quote(quoteReq)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if quote.NeedsNegotiation() {
		second, overnight, err := quoteSvc.Remedies(quoteReq)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusConflict, gin.H{
			"message":    "el viaje no es viable con un solo conductor",
			"tacografo":  quote.Feasibility,
			"opciones":   quote.Options,
			"request_id": middleware.GetRequestID(c),
			"presupuestos": gin.H{
				services.RemedySecondDriver: second,
				services.RemedyOvernight:    overnight,
			},
		})
		return
	}

	price := req.TotalPrice
	if price == 0 {
		price = quote.Total
	}
	created, err := repositories.TripRepository{}.Create(models.Trip{
		ClientID:     req.ClientID,
		Origin:       req.Origin,
		Destination:  req.Destination,
		Departure:    departure,
		Arrival:      arrival,
		Seats:        req.Seats,
		TotalPrice:   price,
		Status:       models.TripPending,
		SecondDriver: req.SecondDriver,
		Overnight:    req.Overnight,
		Notes:        req.Notes,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "viajes", "creado",
		"viaje="+strconv.FormatInt(created.ID, 10))
	c.JSON(http.StatusCreated, gin.H{
		"viaje":       created,
		"presupuesto": quote,
	})
}

type tripUpdateRequest struct {
	Origin       *string  `json:"origen"`
	Destination  *string  `json:"destino"`
	Departure    *string  `json:"fecha_salida"`
	Arrival      *string  `json:"fecha_llegada"`
	Seats        *int     `json:"plazas"`
	TotalPrice   *float64 `json:"precio_total"`
	Status       *string  `json:"estado"`
	DriverID     *int64   `json:"conductor_id"`
	BusID        *int64   `json:"autobus_id"`
	SecondDriver *bool    `json:"segundo_conductor"`
	Overnight    *bool    `json:"pernocta"`
	Notes        *string  `json:"observaciones"`
	RejectReason *string  `json:"motivo_rechazo"`
}

// PUT /api/viajes/:id applies a partial update. When the update touches the
// driver or the dates of a trip that has (or is being given) a driver, the
// evaluator re-checks the pairing before anything is written; a rejection
// needs a motivo_rechazo.
func UpdateTrip(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req tripUpdateRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	repo := repositories.TripRepository{}
	current, err := repo.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	upd := repositories.TripUpdate{
		Origin:       req.Origin,
		Destination:  req.Destination,
		Seats:        req.Seats,
		TotalPrice:   req.TotalPrice,
		Status:       req.Status,
		DriverID:     req.DriverID,
		BusID:        req.BusID,
		SecondDriver: req.SecondDriver,
		Overnight:    req.Overnight,
		Notes:        req.Notes,
		RejectReason: req.RejectReason,
	}

	next := current
	if req.Departure != nil {
		t, err := utils.ParseTimestamp(*req.Departure, fleetLoc)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "fecha_salida no válida", err)
			return
		}
		upd.Departure = &t
		next.Departure = t
	}
	if req.Arrival != nil {
		t, err := utils.ParseTimestamp(*req.Arrival, fleetLoc)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "fecha_llegada no válida", err)
			return
		}
		upd.Arrival = &t
		next.Arrival = t
	}

	datesChanged := req.Departure != nil || req.Arrival != nil
	if datesChanged && !next.Arrival.After(next.Departure) {
		RespondError(c, http.StatusBadRequest, "fecha_llegada debe ser posterior a la salida", nil)
		return
	}

	if req.Status != nil && *req.Status == models.TripRejected {
		if req.RejectReason == nil || *req.RejectReason == "" {
			RespondError(c, http.StatusBadRequest, "motivo_rechazo es obligatorio al rechazar", nil)
			return
		}
	}

	driverID := current.DriverID
	if req.DriverID != nil {
		driverID = req.DriverID
	}
	if driverID != nil && (req.DriverID != nil || datesChanged) {
		if err := assignmentService(c).ValidateAssignment(next, *driverID); err != nil {
			RespondDomainError(c, err)
			return
		}
	}

	if err := repo.Update(id, upd); err != nil {
		RespondDomainError(c, err)
		return
	}
	updated, err := repo.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DELETE /api/viajes/:id
func DeleteTrip(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := (repositories.TripRepository{}).Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "viaje eliminado"})
}

// POST /api/viajes/:id/auto-assign runs the assignment search for one
// pending trip. 409 when no driver on the roster can legally take it.
func AutoAssignTrip(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	trip, driver, err := assignmentService(c).AssignTrip(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "viaje confirmado",
		"viaje":     trip,
		"conductor": driver,
	})
}

type quoteTripRequest struct {
	RouteID      int64   `json:"ruta_id"`
	Km           float64 `json:"kilometros"`
	OneWayHours  float64 `json:"horas_ida"`
	Seats        int     `json:"plazas"`
	Departure    string  `json:"fecha_salida"`
	Arrival      string  `json:"fecha_llegada"`
	SecondDriver bool    `json:"segundo_conductor"`
	Overnight    bool    `json:"pernocta"`
}

// POST /api/viajes/presupuesto prices a proposed trip and reports the
// feasibility verdict, with both remedies priced when negotiation is needed.
func QuoteTrip(c *gin.Context) {
	var raw quoteTripRequest
	if !BindJSONOrError(c, &raw) {
		return
	}
	departure, err := utils.ParseTimestamp(raw.Departure, fleetLoc)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "fecha_salida no válida", err)
		return
	}
	arrival, err := utils.ParseTimestamp(raw.Arrival, fleetLoc)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "fecha_llegada no válida", err)
		return
	}
	req := services.QuoteRequest{
		RouteID:      raw.RouteID,
		Km:           raw.Km,
		OneWayHours:  raw.OneWayHours,
		Seats:        raw.Seats,
		Departure:    departure,
		Arrival:      arrival,
		SecondDriver: raw.SecondDriver,
		Overnight:    raw.Overnight,
	}

	svc := services.QuoteService{
		RouteRepo: repositories.RouteRepository{},
		RequestID: middleware.GetRequestID(c),
	}
	quote, err := svc.Quote(req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	resp := gin.H{"presupuesto": quote}
	if quote.NeedsNegotiation() {
		second, overnight, err := svc.Remedies(req)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		resp["presupuestos"] = gin.H{
			services.RemedySecondDriver: second,
			services.RemedyOvernight:    overnight,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GET /api/viajes/:id/resumen returns the request summary PDF (inline).
func GetTripSummaryPDF(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	svc := services.DocsService{
		TripRepo:  repositories.TripRepository{},
		Loc:       fleetLoc,
		RequestID: middleware.GetRequestID(c),
	}
	pdfBytes, filename, err := svc.GenerateTripSummary(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
