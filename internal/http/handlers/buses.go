package handlers

import (
	"net/http"
	"strconv"

	"github.com/Josemaria4581/busconnect/internal/domain/models"
	"github.com/Josemaria4581/busconnect/internal/repositories"
	"github.com/Josemaria4581/busconnect/internal/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/autobuses
func GetBuses(c *gin.Context) {
	buses, err := repositories.BusRepository{}.List()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, buses)
}

// GET /api/autobuses/:id
func GetBusByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	bus, err := repositories.BusRepository{}.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, bus)
}

// GET /api/autobuses/disponible?plazas=40&salida=...&llegada=...
// Suggests the smallest free operational bus for the window. 404 when the
// whole fleet is busy; the match is advisory, a trip may still be assigned
// without a bus.
func GetAvailableBus(c *gin.Context) {
	seats, err := strconv.Atoi(c.Query("plazas"))
	if err != nil || seats <= 0 {
		RespondError(c, http.StatusBadRequest, "plazas no válido", err)
		return
	}
	departure, err := utils.ParseTimestamp(c.Query("salida"), fleetLoc)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "salida no válida", err)
		return
	}
	arrival, err := utils.ParseTimestamp(c.Query("llegada"), fleetLoc)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "llegada no válida", err)
		return
	}

	bus, err := repositories.BusRepository{}.FindAvailable(seats, departure, arrival)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if bus == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "no hay autobús disponible para esas fechas"})
		return
	}
	c.JSON(http.StatusOK, bus)
}

// POST /api/autobuses
func CreateBus(c *gin.Context) {
	var req models.Bus
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Plate == "" || req.Capacity <= 0 {
		RespondError(c, http.StatusBadRequest, "matricula y capacidad son obligatorios", nil)
		return
	}
	if req.Status == "" {
		req.Status = models.BusOperational
	}
	created, err := repositories.BusRepository{}.Create(req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// PUT /api/autobuses/:id
func UpdateBus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.Bus
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := (repositories.BusRepository{}).Update(id, req); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "autobús actualizado"})
}

// DELETE /api/autobuses/:id
func DeleteBus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := (repositories.BusRepository{}).Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "autobús eliminado"})
}
