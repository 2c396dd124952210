package models

import "time"

type Product struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null"`
	CompanyID uint   `gorm:"index;not null"`
	Company   Company
	CostPrice float64 `gorm:"not null"`
	SalePrice float64 `gorm:"not null"`
	// UnitPerBox: unidades por caja (ej. 48 latas por caja). Solo para presentación,
	// el stock y las asignaciones siempre se guardan en unidades.
	UnitPerBox    int    `gorm:"not null;default:1"`
	Stock         int    `gorm:"not null;default:0"` // unidades, nunca negativo
	LowStockAlert int    `gorm:"not null;default:10"`
	Category      string `gorm:"size:50"`
	IsSpecial     bool   `gorm:"not null;default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
