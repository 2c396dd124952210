// Package testdb abre una base SQLite en memoria con el esquema del dominio,
// para ejercitar los servicios sin Postgres.
package testdb

import (
	"testing"

	"trazzio-backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("no se pudo abrir sqlite en memoria: %v", err)
	}

	// Una sola conexión: cada conexión nueva a :memory: sería otra base vacía.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("no se pudo obtener *sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Product{},
		&models.StockEntry{},
		&models.Worker{},
		&models.Assignment{},
		&models.MermaItem{},
		&models.Settlement{},
		&models.WorkerPayment{},
	)
	if err != nil {
		t.Fatalf("AutoMigrate falló: %v", err)
	}

	return db
}
