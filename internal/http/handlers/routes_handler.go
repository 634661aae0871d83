package handlers

import (
	"net/http"

	"github.com/Josemaria4581/busconnect/internal/domain/models"
	"github.com/Josemaria4581/busconnect/internal/repositories"

	"github.com/gin-gonic/gin"
)

// GET /api/rutas
func GetRoutes(c *gin.Context) {
	routes, err := repositories.RouteRepository{}.List()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, routes)
}

// GET /api/rutas/:id
func GetRouteByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	route, err := repositories.RouteRepository{}.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

// POST /api/rutas
func CreateRoute(c *gin.Context) {
	var req models.Route
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Origin == "" || req.Destination == "" {
		RespondError(c, http.StatusBadRequest, "origen y destino son obligatorios", nil)
		return
	}
	created, err := repositories.RouteRepository{}.Create(req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// PUT /api/rutas/:id
func UpdateRoute(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.Route
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := (repositories.RouteRepository{}).Update(id, req); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ruta actualizada"})
}

// DELETE /api/rutas/:id
func DeleteRoute(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := (repositories.RouteRepository{}).Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ruta eliminada"})
}
