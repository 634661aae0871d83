package config

import (
	"log"
	"os"
	"strings"
	"time"
)

type Env struct {
	AppAddr   string
	GinMode   string
	DBUser    string
	DBPass    string
	DBHost    string
	DBName    string
	JWTSecret string
	TimeZone  string
}

func LoadEnv() Env {
	return Env{
		AppAddr:   getenv("APP_ADDR", ":8080"),
		GinMode:   getenv("GIN_MODE", ""),
		DBUser:    getenv("DB_USER", "root"),
		DBPass:    getenv("DB_PASS", ""),
		DBHost:    getenv("DB_HOST", "127.0.0.1:3306"),
		DBName:    getenv("DB_NAME", "busconnect"),
		JWTSecret: getenv("JWT_SECRET", "super-secret-key-change-me"),
		TimeZone:  getenv("FLEET_TZ", "Europe/Madrid"),
	}
}

// Location resolves the operational timezone of the fleet. Daily and weekly
// driving-time bucketing always use this zone, regardless of the server's
// local time.
func (e Env) Location() *time.Location {
	loc, err := time.LoadLocation(e.TimeZone)
	if err != nil {
		log.Printf("zona horaria %q no válida, usando UTC: %v", e.TimeZone, err)
		return time.UTC
	}
	return loc
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
