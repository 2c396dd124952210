package models

import "time"

type AssignmentStatus string

const (
	AssignmentPending AssignmentStatus = "PENDING"
	AssignmentSettled AssignmentStatus = "SETTLED"
)

// Assignment: mercadería entregada a un trabajador para vender en el día.
// QuantityAssigned es inmutable después de crearse; el stock ya fue descontado
// al crear la asignación y solo se devuelve si se elimina estando PENDING.
type Assignment struct {
	ID               uint `gorm:"primaryKey"`
	WorkerID         uint `gorm:"index;not null"`
	Worker           Worker
	ProductID        uint `gorm:"index;not null"`
	Product          Product
	QuantityAssigned int `gorm:"not null"`
	// CustomSalePrice: precio pactado solo para esta asignación. Si es nil se
	// usa el precio de venta vigente del producto al momento de rendir.
	CustomSalePrice  *float64
	Status           AssignmentStatus `gorm:"size:20;not null;default:PENDING;index"`
	QuantityReturned *int             // nil hasta rendir
	QuantitySold     *int             // nil hasta rendir
	Date             time.Time        `gorm:"index;not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Settlement *Settlement
	MermaItems []MermaItem
}

// EffectiveSalePrice: precio que manda en la rendición.
func (a *Assignment) EffectiveSalePrice() float64 {
	if a.CustomSalePrice != nil {
		return *a.CustomSalePrice
	}
	return a.Product.SalePrice
}
