package handlers

import (
	"net/http"

	"github.com/Josemaria4581/busconnect/internal/domain/models"
	"github.com/Josemaria4581/busconnect/internal/repositories"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// GET /api/conductores
func GetDrivers(c *gin.Context) {
	drivers, err := repositories.DriverRepository{}.List()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, drivers)
}

// GET /api/conductores/:id
func GetDriverByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	driver, err := repositories.DriverRepository{}.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, driver)
}

type driverPayload struct {
	models.Driver
	Password string `json:"password"`
}

// POST /api/conductores
func CreateDriver(c *gin.Context) {
	var req driverPayload
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Name == "" {
		RespondError(c, http.StatusBadRequest, "nombre es obligatorio", nil)
		return
	}
	if req.Role == "" {
		req.Role = "conductor"
	}

	var hash string
	if req.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "fallo al cifrar la contraseña"})
			return
		}
		hash = string(h)
	}

	created, err := repositories.DriverRepository{}.Create(req.Driver, hash)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// PUT /api/conductores/:id
func UpdateDriver(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.Driver
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := (repositories.DriverRepository{}).Update(id, req); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "conductor actualizado"})
}

// DELETE /api/conductores/:id
func DeleteDriver(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := (repositories.DriverRepository{}).Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "conductor eliminado"})
}
