package models

import "time"

// Settlement: cierre financiero de exactamente una asignación (1:1).
// Invariante: TotalSold = QuantityAssigned - QuantityReturned - TotalMerma.
// Después de crearse solo AmountPaid/Difference/Notes cambian (corrección admin);
// TotalSold, TotalMerma y AmountDue quedan congelados.
type Settlement struct {
	ID           uint `gorm:"primaryKey"`
	AssignmentID uint `gorm:"uniqueIndex;not null"`
	Assignment   Assignment
	TotalSold    int     `gorm:"not null"`
	TotalMerma   int     `gorm:"not null"`
	AmountDue    float64 `gorm:"not null"`
	AmountPaid   float64 `gorm:"not null"`
	// Difference = AmountDue - AmountPaid. Positivo: el trabajador debe efectivo.
	Difference float64   `gorm:"not null"`
	Notes      string    `gorm:"size:500"`
	SettledAt  time.Time `gorm:"index;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
