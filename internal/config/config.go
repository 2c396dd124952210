package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string
	// BusinessTZ: zona horaria del negocio. Todos los cortes de día
	// (asignaciones de "hoy", buckets diarios) se calculan aquí, no en UTC.
	BusinessTZ *time.Location
}

func Load() *Config {
	// .env local opcional; en producción las variables vienen del entorno
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=trazzio port=5432 sslmode=disable"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	tzName := getEnv("BUSINESS_TIMEZONE", "America/Lima")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		logrus.WithError(err).Fatalf("BUSINESS_TIMEZONE inválida: %s", tzName)
	}
	cfg.BusinessTZ = loc

	// Controles de seguridad para producción
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET no está definido; es obligatorio")
	}
	if len(cfg.JWTSecret) < 32 {
		logrus.Fatal("JWT_SECRET debe tener al menos 32 caracteres")
	}
	if cfg.DatabaseDSN == "host=localhost user=postgres password=postgres dbname=trazzio port=5432 sslmode=disable" {
		logrus.Warn("DATABASE_DSN usa el valor por defecto; define tu propia conexión Postgres en producción")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
