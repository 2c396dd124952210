package settlement

import (
	"fmt"
	"time"

	"trazzio-backend/internal/apperr"
	"trazzio-backend/internal/auth"
	"trazzio-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MermaInput struct {
	ProductID uint
	Quantity  int
	Reason    string
}

type SettleInput struct {
	AssignmentID     uint
	QuantityReturned int
	MermaItems       []MermaInput
	AmountPaid       float64
	Notes            string
}

// Settle cierra una asignación: valida cantidades, calcula el monto a rendir y
// congela la asignación. El precio efectivo es el precio especial pactado al
// asignar o, si no hay, el precio de venta VIGENTE del producto — un cambio de
// precio entre asignar y rendir afecta a todas las asignaciones pendientes.
//
// No toca el stock: las unidades devueltas o en merma se reconcilian físicamente
// fuera del sistema, no vuelven al inventario.
func Settle(db *gorm.DB, actor auth.Actor, in SettleInput) (*models.Settlement, error) {
	var a models.Assignment
	if err := db.Preload("Product").First(&a, in.AssignmentID).Error; err != nil {
		return nil, fmt.Errorf("%w: asignación %d", apperr.ErrNotFound, in.AssignmentID)
	}

	if !actor.OwnsWorker(a.WorkerID) {
		return nil, fmt.Errorf("%w: no puedes rendir la asignación de otro trabajador", apperr.ErrUnauthorized)
	}

	// Toda la validación ocurre antes de escribir nada.
	if a.Status == models.AssignmentSettled {
		return nil, fmt.Errorf("%w: la asignación %d ya fue rendida", apperr.ErrAlreadySettled, a.ID)
	}
	if in.QuantityReturned < 0 {
		return nil, fmt.Errorf("%w: el sobrante no puede ser negativo", apperr.ErrInvalidQuantities)
	}
	if in.AmountPaid < 0 {
		return nil, fmt.Errorf("%w: el monto entregado no puede ser negativo", apperr.ErrInvalidAmount)
	}

	totalMerma := 0
	for _, m := range in.MermaItems {
		if m.Quantity < 0 {
			return nil, fmt.Errorf("%w: la merma no puede ser negativa", apperr.ErrInvalidQuantities)
		}
		var p models.Product
		if err := db.First(&p, m.ProductID).Error; err != nil {
			return nil, fmt.Errorf("%w: producto de merma %d", apperr.ErrNotFound, m.ProductID)
		}
		totalMerma += m.Quantity
	}

	totalSold := a.QuantityAssigned - in.QuantityReturned - totalMerma
	if totalSold < 0 {
		return nil, fmt.Errorf("%w: sobrante + merma supera lo asignado", apperr.ErrInvalidQuantities)
	}

	price := decimal.NewFromFloat(a.EffectiveSalePrice())
	amountDue := price.Mul(decimal.NewFromInt(int64(totalSold))).Round(2)
	difference := amountDue.Sub(decimal.NewFromFloat(in.AmountPaid)).Round(2)

	s := models.Settlement{
		AssignmentID: a.ID,
		TotalSold:    totalSold,
		TotalMerma:   totalMerma,
		AmountDue:    amountDue.InexactFloat64(),
		AmountPaid:   in.AmountPaid,
		Difference:   difference.InexactFloat64(),
		Notes:        in.Notes,
		SettledAt:    time.Now(),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		// La transición PENDING→SETTLED condicionada por status es la guarda de
		// concurrencia: un segundo settle simultáneo afecta cero filas y falla
		// aquí, antes de crear nada. El índice único de assignment_id respalda.
		res := tx.Model(&models.Assignment{}).
			Where("id = ? AND status = ?", a.ID, models.AssignmentPending).
			Updates(map[string]interface{}{
				"status":            models.AssignmentSettled,
				"quantity_returned": in.QuantityReturned,
				"quantity_sold":     totalSold,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: la asignación %d ya fue rendida", apperr.ErrAlreadySettled, a.ID)
		}

		for _, m := range in.MermaItems {
			item := models.MermaItem{
				AssignmentID: a.ID,
				ProductID:    m.ProductID,
				Quantity:     m.Quantity,
				Reason:       m.Reason,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}

		return tx.Create(&s).Error
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Adjust: corrección administrativa del efectivo entregado. Recalcula solo la
// diferencia; AmountDue, TotalSold y la merma nunca cambian después de rendir.
// La nota se agrega con la etiqueta [Admin] conservando las notas previas.
func Adjust(db *gorm.DB, actor auth.Actor, settlementID uint, newAmountPaid float64, adjustmentNote string) (*models.Settlement, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: solo el administrador corrige rendiciones", apperr.ErrUnauthorized)
	}
	if newAmountPaid < 0 {
		return nil, fmt.Errorf("%w: el monto no puede ser negativo", apperr.ErrInvalidAmount)
	}

	var s models.Settlement
	err := db.Transaction(func(tx *gorm.DB) error {
		// Lectura con lock de fila: dos correcciones simultáneas se serializan y
		// ninguna pisa la nota que agregó la otra.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&s, settlementID).Error; err != nil {
			return fmt.Errorf("%w: rendición %d", apperr.ErrNotFound, settlementID)
		}

		difference := decimal.NewFromFloat(s.AmountDue).
			Sub(decimal.NewFromFloat(newAmountPaid)).Round(2)

		notes := s.Notes
		if adjustmentNote != "" {
			if notes != "" {
				notes = notes + " | [Admin] " + adjustmentNote
			} else {
				notes = "[Admin] " + adjustmentNote
			}
		}

		err := tx.Model(&s).Updates(map[string]interface{}{
			"amount_paid": newAmountPaid,
			"difference":  difference.InexactFloat64(),
			"notes":       notes,
		}).Error
		if err != nil {
			return err
		}

		s.AmountPaid = newAmountPaid
		s.Difference = difference.InexactFloat64()
		s.Notes = notes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListRange: historial de rendiciones con sus relaciones, más reciente primero.
// workerID == 0 significa sin filtro.
func ListRange(db *gorm.DB, actor auth.Actor, from, to *time.Time, workerID uint) ([]models.Settlement, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: solo el administrador ve el historial completo", apperr.ErrUnauthorized)
	}

	query := db.Preload("Assignment.Worker").
		Preload("Assignment.Product.Company").
		Preload("Assignment.MermaItems.Product")
	if from != nil {
		query = query.Where("settled_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("settled_at <= ?", *to)
	}

	var settlements []models.Settlement
	if err := query.Order("settled_at DESC").Limit(200).Find(&settlements).Error; err != nil {
		return nil, err
	}

	if workerID == 0 {
		return settlements, nil
	}
	filtered := settlements[:0]
	for _, s := range settlements {
		if s.Assignment.WorkerID == workerID {
			filtered = append(filtered, s)
		}
	}
	return filtered, nil
}
