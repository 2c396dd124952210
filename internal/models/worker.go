package models

import "time"

type CommissionType string

const (
	CommissionPercentage CommissionType = "PERCENTAGE" // % sobre el monto rendido
	CommissionFixed      CommissionType = "FIXED"      // monto fijo por unidad vendida
)

type Worker struct {
	ID             uint           `gorm:"primaryKey"`
	Name           string         `gorm:"size:100;not null"`
	Phone          string         `gorm:"size:50"`
	CommissionType CommissionType `gorm:"size:20;not null;default:PERCENTAGE"`
	Commission     float64        `gorm:"not null;default:0"`
	UserID         uint           `gorm:"uniqueIndex;not null"`
	User           User
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Assignments []Assignment
	Payments    []WorkerPayment
}
