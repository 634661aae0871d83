package api

import (
	"log"
	stdhttp "net/http"

	intconfig "github.com/Josemaria4581/busconnect/internal/config"
	h "github.com/Josemaria4581/busconnect/internal/http/handlers"
	"github.com/Josemaria4581/busconnect/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	h.Configure(env)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "ruta no encontrada",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	auth := middleware.RequireAuth([]byte(env.JWTSecret))
	staff := middleware.RequireRoles("admin", "gestor")

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// Auth
		authGroup := api.Group("/auth")
		authGroup.POST("/login", h.Login)
		authGroup.POST("/register", h.Register)

		// Viajes discrecionales
		trips := api.Group("/viajes")
		trips.GET("", h.GetTrips)
		trips.GET("/:id", h.GetTripByID)
		trips.POST("", h.CreateTrip)
		trips.POST("/presupuesto", h.QuoteTrip)
		trips.GET("/:id/resumen", h.GetTripSummaryPDF)
		trips.PUT("/:id", auth, staff, h.UpdateTrip)
		trips.DELETE("/:id", auth, staff, h.DeleteTrip)
		trips.POST("/:id/auto-assign", auth, staff, h.AutoAssignTrip)

		// Conductores
		drivers := api.Group("/conductores", auth)
		drivers.GET("", h.GetDrivers)
		drivers.GET("/:id", h.GetDriverByID)
		drivers.POST("", staff, h.CreateDriver)
		drivers.PUT("/:id", staff, h.UpdateDriver)
		drivers.DELETE("/:id", staff, h.DeleteDriver)

		// Autobuses
		buses := api.Group("/autobuses", auth)
		buses.GET("", h.GetBuses)
		buses.GET("/disponible", h.GetAvailableBus)
		buses.GET("/:id", h.GetBusByID)
		buses.POST("", staff, h.CreateBus)
		buses.PUT("/:id", staff, h.UpdateBus)
		buses.DELETE("/:id", staff, h.DeleteBus)

		// Rutas
		routes := api.Group("/rutas")
		routes.GET("", h.GetRoutes)
		routes.GET("/:id", h.GetRouteByID)
		routes.POST("", auth, staff, h.CreateRoute)
		routes.PUT("/:id", auth, staff, h.UpdateRoute)
		routes.DELETE("/:id", auth, staff, h.DeleteRoute)
	}

	h.SetRouter(r)
	return r
}
