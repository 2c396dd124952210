package database

import (
	"trazzio-backend/internal/config"
	"trazzio-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		logrus.WithError(err).Fatal("No se pudo conectar a la base de datos")
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Product{},
		&models.StockEntry{},
		&models.Worker{},
		&models.Assignment{},
		&models.MermaItem{},
		&models.Settlement{},
		&models.WorkerPayment{},
		&models.AuditLog{},
	)
	if err != nil {
		logrus.WithError(err).Fatal("Error en AutoMigrate")
	}

	// El índice único de settlements.assignment_id es la guarda de "una rendición
	// por asignación" bajo concurrencia; si falta, dos settle simultáneos podrían
	// duplicar la rendición. Lo verificamos explícitamente además del tag.
	if !DB.Migrator().HasIndex(&models.Settlement{}, "AssignmentID") {
		if err := DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_settlements_assignment_id ON settlements(assignment_id)").Error; err != nil {
			logrus.WithError(err).Fatal("No se pudo crear el índice único de settlements")
		}
	}

	logrus.Info("Conexión a la base de datos lista. Migración completada.")
}
