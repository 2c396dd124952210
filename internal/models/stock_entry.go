package models

import "time"

// StockEntry: ingreso de mercadería. Solo se crea, nunca se edita ni se borra.
type StockEntry struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"index;not null"`
	Product   Product
	Quantity  int       `gorm:"not null"` // unidades recibidas
	Boxes     *int      // informativo: cajas recibidas
	Notes     string    `gorm:"size:255"`
	EntryDate time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}
