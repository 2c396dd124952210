package models

import "time"

// MermaItem: unidades dañadas/perdidas reportadas al rendir. El producto puede
// ser distinto al de la asignación (merma cruzada). No devuelve stock.
type MermaItem struct {
	ID           uint `gorm:"primaryKey"`
	AssignmentID uint `gorm:"index;not null"`
	ProductID    uint `gorm:"index;not null"`
	Product      Product
	Quantity     int    `gorm:"not null"`
	Reason       string `gorm:"size:255"`
	CreatedAt    time.Time
}
