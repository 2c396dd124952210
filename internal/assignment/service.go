package assignment

import (
	"fmt"
	"time"

	"trazzio-backend/internal/apperr"
	"trazzio-backend/internal/auth"
	"trazzio-backend/internal/models"

	"gorm.io/gorm"
)

// BatchItem: un renglón del pedido de asignación. La cantidad puede venir ya en
// unidades o como cajas + unidades sueltas; siempre se aplana a unidades con el
// UnitPerBox del producto antes de cualquier chequeo (conversión exacta, entera).
type BatchItem struct {
	ProductID        uint
	QuantityAssigned int
	Boxes            int
	LooseUnits       int
	CustomSalePrice  *float64
}

func (i BatchItem) units(unitPerBox int) (int, error) {
	if i.Boxes < 0 || i.LooseUnits < 0 {
		return 0, fmt.Errorf("%w: cajas y unidades sueltas deben ser >= 0", apperr.ErrInvalidQuantities)
	}
	qty := i.QuantityAssigned
	if i.Boxes > 0 || i.LooseUnits > 0 {
		qty = i.Boxes*unitPerBox + i.LooseUnits
	}
	if qty <= 0 {
		return 0, fmt.Errorf("%w: la cantidad asignada debe ser positiva", apperr.ErrInvalidQuantities)
	}
	return qty, nil
}

// CreateBatch crea las asignaciones del día para un trabajador, reservando stock.
// Todo o nada: si a cualquier renglón le falta stock, ningún renglón se crea y
// ningún stock cambia. El descuento es condicional (stock >= cantidad) para que
// dos asignaciones concurrentes no puedan sobrevender el mismo producto.
func CreateBatch(db *gorm.DB, actor auth.Actor, workerID uint, items []BatchItem) ([]models.Assignment, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: solo el administrador asigna mercadería", apperr.ErrUnauthorized)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: el pedido no tiene renglones", apperr.ErrInvalidQuantities)
	}

	var worker models.Worker
	if err := db.First(&worker, workerID).Error; err != nil {
		return nil, fmt.Errorf("%w: trabajador %d", apperr.ErrNotFound, workerID)
	}

	created := make([]models.Assignment, 0, len(items))
	err := db.Transaction(func(tx *gorm.DB) error {
		// Primera pasada: validar todo antes de escribir nada.
		quantities := make([]int, len(items))
		products := make([]models.Product, len(items))
		for idx, item := range items {
			if err := tx.First(&products[idx], item.ProductID).Error; err != nil {
				return fmt.Errorf("%w: producto %d", apperr.ErrNotFound, item.ProductID)
			}
			qty, err := item.units(products[idx].UnitPerBox)
			if err != nil {
				return err
			}
			if item.CustomSalePrice != nil && *item.CustomSalePrice <= 0 {
				return fmt.Errorf("%w: el precio especial debe ser positivo", apperr.ErrInvalidAmount)
			}
			if products[idx].Stock < qty {
				return fmt.Errorf("%w para: %s", apperr.ErrInsufficientStock, products[idx].Name)
			}
			quantities[idx] = qty
		}

		// Segunda pasada: descontar y crear. El WHERE stock >= ? cubre la carrera
		// entre la lectura de arriba y este UPDATE; si pierde, se revierte todo.
		now := time.Now()
		for idx, item := range items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", products[idx].ID, quantities[idx]).
				Update("stock", gorm.Expr("stock - ?", quantities[idx]))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w para: %s", apperr.ErrInsufficientStock, products[idx].Name)
			}

			a := models.Assignment{
				WorkerID:         workerID,
				ProductID:        products[idx].ID,
				QuantityAssigned: quantities[idx],
				CustomSalePrice:  item.CustomSalePrice,
				Status:           models.AssignmentPending,
				Date:             now,
			}
			if err := tx.Create(&a).Error; err != nil {
				return err
			}
			created = append(created, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Delete elimina una asignación PENDING devolviendo las unidades reservadas al
// stock. Una asignación SETTLED es historia inmutable y no se puede eliminar.
func Delete(db *gorm.DB, actor auth.Actor, id uint) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: solo el administrador elimina asignaciones", apperr.ErrUnauthorized)
	}

	var a models.Assignment
	if err := db.First(&a, id).Error; err != nil {
		return fmt.Errorf("%w: asignación %d", apperr.ErrNotFound, id)
	}
	if a.Status == models.AssignmentSettled {
		return fmt.Errorf("%w: no se puede eliminar una asignación ya rendida", apperr.ErrAlreadySettled)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		// El delete condicionado por status cierra la carrera con un settle simultáneo.
		res := tx.Where("id = ? AND status = ?", a.ID, models.AssignmentPending).
			Delete(&models.Assignment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: no se puede eliminar una asignación ya rendida", apperr.ErrAlreadySettled)
		}
		return tx.Model(&models.Product{}).
			Where("id = ?", a.ProductID).
			Update("stock", gorm.Expr("stock + ?", a.QuantityAssigned)).Error
	})
}

// ListRange lista asignaciones en un rango de fechas. El admin ve todas; un
// trabajador solo las suyas.
func ListRange(db *gorm.DB, actor auth.Actor, from, to time.Time) ([]models.Assignment, error) {
	query := db.Preload("Worker").Preload("Product.Company").Preload("Settlement").Preload("MermaItems").
		Where("date >= ? AND date <= ?", from, to)

	if !actor.IsAdmin() {
		if actor.WorkerID == nil {
			return nil, fmt.Errorf("%w: la cuenta no tiene trabajador asociado", apperr.ErrUnauthorized)
		}
		query = query.Where("worker_id = ?", *actor.WorkerID)
	}

	var assignments []models.Assignment
	if err := query.Order("date DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListPending: asignaciones PENDING de un trabajador en un rango (pantalla de rendir).
func ListPending(db *gorm.DB, actor auth.Actor, workerID uint, from, to time.Time) ([]models.Assignment, error) {
	if !actor.OwnsWorker(workerID) {
		return nil, fmt.Errorf("%w: no puedes ver asignaciones de otro trabajador", apperr.ErrUnauthorized)
	}

	var assignments []models.Assignment
	err := db.Preload("Product.Company").
		Where("worker_id = ? AND status = ? AND date >= ? AND date <= ?",
			workerID, models.AssignmentPending, from, to).
		Order("date ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}
