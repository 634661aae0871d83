package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Josemaria4581/busconnect/internal/config"
	"github.com/Josemaria4581/busconnect/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

var (
	fleetLoc  = time.UTC
	jwtSecret []byte
)

// Configure hands the handlers the pieces of the environment they need:
// the operational timezone for day/week bucketing and the JWT secret.
func Configure(env config.Env) {
	fleetLoc = env.Location()
	jwtSecret = []byte(env.JWTSecret)
}

// RespondError sends the standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	payload := gin.H{
		"message":    message,
		"request_id": middleware.GetRequestID(c),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		RespondError(c, http.StatusBadRequest, "cuerpo de la petición vacío", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "payload no válido", err)
		return false
	}
	return true
}

// pathID parses the :id parameter; a false return means the response was
// already written.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "id no válido", err)
		return 0, false
	}
	return id, true
}
