package balance

import (
	"fmt"
	"time"

	"trazzio-backend/internal/apperr"
	"trazzio-backend/internal/auth"
	"trazzio-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WorkerBalance struct {
	WorkerID       uint                   `json:"worker_id"`
	WorkerName     string                 `json:"worker_name"`
	CommissionType models.CommissionType  `json:"commission_type"`
	Commission     float64                `json:"commission"`
	TotalEarned    float64                `json:"total_earned"`
	TotalPaid      float64                `json:"total_paid"`
	PendingBalance float64                `json:"pending_balance"`
	RecentPayments []models.WorkerPayment `json:"recent_payments"`
}

// ComputeBalance deriva el saldo de un trabajador re-reproduciendo todo su
// historial de rendiciones y pagos. Nunca se persiste: no hay caché que pueda
// desincronizarse de sus transacciones fuente.
//
//	PERCENTAGE: ganado = Σ amountDue × (comisión / 100)
//	FIXED:      ganado = Σ unidades vendidas × comisión (por unidad, no por día)
//	pendiente  = max(0, round2(ganado − pagado))
//
// El saldo se recorta en 0: un trabajador sobre-pagado muestra 0 pendiente, el
// exceso no se le cobra.
func ComputeBalance(db *gorm.DB, workerID uint) (*WorkerBalance, error) {
	var worker models.Worker
	err := db.Preload("Assignments", "status = ?", models.AssignmentSettled).
		Preload("Assignments.Settlement").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("paid_at DESC")
		}).
		First(&worker, workerID).Error
	if err != nil {
		return nil, fmt.Errorf("%w: trabajador %d", apperr.ErrNotFound, workerID)
	}

	commission := decimal.NewFromFloat(worker.Commission)
	earned := decimal.Zero
	for _, a := range worker.Assignments {
		if a.Settlement == nil {
			continue
		}
		if worker.CommissionType == models.CommissionPercentage {
			due := decimal.NewFromFloat(a.Settlement.AmountDue)
			earned = earned.Add(due.Mul(commission).Div(decimal.NewFromInt(100)))
		} else {
			sold := 0
			if a.QuantitySold != nil {
				sold = *a.QuantitySold
			}
			earned = earned.Add(commission.Mul(decimal.NewFromInt(int64(sold))))
		}
	}

	paid := decimal.Zero
	for _, p := range worker.Payments {
		paid = paid.Add(decimal.NewFromFloat(p.Amount))
	}

	pending := earned.Sub(paid).Round(2)
	if pending.IsNegative() {
		pending = decimal.Zero
	}

	recent := worker.Payments
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return &WorkerBalance{
		WorkerID:       worker.ID,
		WorkerName:     worker.Name,
		CommissionType: worker.CommissionType,
		Commission:     worker.Commission,
		TotalEarned:    earned.Round(2).InexactFloat64(),
		TotalPaid:      paid.Round(2).InexactFloat64(),
		PendingBalance: pending.InexactFloat64(),
		RecentPayments: recent,
	}, nil
}

// ComputeAllBalances: saldo de todos los trabajadores, orden alfabético.
func ComputeAllBalances(db *gorm.DB) ([]WorkerBalance, error) {
	var workers []models.Worker
	if err := db.Order("name ASC").Find(&workers).Error; err != nil {
		return nil, err
	}

	result := make([]WorkerBalance, 0, len(workers))
	for _, w := range workers {
		b, err := ComputeBalance(db, w.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	return result, nil
}

// RecordPayment registra un pago en efectivo al trabajador. Solo agrega; no se
// valida contra el saldo pendiente — el admin puede sobre-pagar a propósito.
func RecordPayment(db *gorm.DB, actor auth.Actor, workerID uint, amount float64, notes string) (*models.WorkerPayment, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: solo el administrador registra pagos", apperr.ErrUnauthorized)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: el monto del pago debe ser positivo", apperr.ErrInvalidAmount)
	}

	var worker models.Worker
	if err := db.First(&worker, workerID).Error; err != nil {
		return nil, fmt.Errorf("%w: trabajador %d", apperr.ErrNotFound, workerID)
	}

	payment := models.WorkerPayment{
		WorkerID: workerID,
		Amount:   amount,
		Notes:    notes,
		PaidAt:   time.Now(),
	}
	if err := db.Create(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}
