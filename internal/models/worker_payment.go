package models

import "time"

// WorkerPayment: pago en efectivo al trabajador fuera del flujo de rendición.
// Inmutable; solo resta en el cálculo de saldo pendiente.
type WorkerPayment struct {
	ID        uint `gorm:"primaryKey"`
	WorkerID  uint `gorm:"index;not null"`
	Worker    Worker
	Amount    float64   `gorm:"not null"`
	Notes     string    `gorm:"size:255"`
	PaidAt    time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}
