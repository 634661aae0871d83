package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/Josemaria4581/busconnect/internal/domain"
	"github.com/Josemaria4581/busconnect/internal/domain/models"
	"github.com/Josemaria4581/busconnect/internal/repositories"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	repo := repositories.DriverRepository{}
	user, hash, err := repo.GetCredentials(strings.TrimSpace(req.Email))
	if err != nil {
		if domain.IsNotFound(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "email o contraseña incorrectos"})
			return
		}
		RespondDomainError(c, err)
		return
	}
	if !user.Active {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "cuenta desactivada"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "email o contraseña incorrectos"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fallo al generar el token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": tokenString,
		"user":  user,
	})
}

type registerRequest struct {
	Code     string `json:"codigo"`
	Name     string `json:"nombre"`
	Surname  string `json:"apellidos"`
	Email    string `json:"email"`
	License  string `json:"licencia"`
	Password string `json:"password"`
}

// POST /api/auth/register registers a driver account. New accounts always
// start with the conductor role; roles are escalated by an admin afterwards.
func Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		RespondError(c, http.StatusBadRequest, "email y contraseña son obligatorios", nil)
		return
	}

	repo := repositories.DriverRepository{}
	if _, _, err := repo.GetCredentials(strings.TrimSpace(req.Email)); err == nil {
		RespondError(c, http.StatusBadRequest, "el email ya está registrado", nil)
		return
	} else if !domain.IsNotFound(err) {
		RespondDomainError(c, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fallo al cifrar la contraseña"})
		return
	}

	created, err := repo.Create(models.Driver{
		Code:    req.Code,
		Name:    req.Name,
		Surname: req.Surname,
		Email:   strings.TrimSpace(req.Email),
		License: req.License,
		Role:    "conductor",
		Active:  true,
	}, string(hash))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "registro completado",
		"user":    created,
	})
}
