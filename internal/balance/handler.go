package balance

import (
	"fmt"

	"trazzio-backend/internal/apperr"
	"trazzio-backend/internal/audit"
	"trazzio-backend/internal/auth"
	"trazzio-backend/internal/database"
	"trazzio-backend/internal/models"
	"trazzio-backend/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CreatePaymentRequest struct {
	WorkerID uint    `json:"worker_id" validate:"required"`
	Amount   float64 `json:"amount" validate:"required"`
	Notes    string  `json:"notes"`
}

// GET /api/payments — saldo del trabajador que llama; el admin puede pedir
// ?worker_id= o, sin parámetro, el saldo de todos.
func GetBalancesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		if !actor.IsAdmin() {
			if actor.WorkerID == nil {
				return fiber.NewError(fiber.StatusForbidden, "La cuenta no tiene trabajador asociado")
			}
			b, err := ComputeBalance(database.DB, *actor.WorkerID)
			if err != nil {
				return apperr.ToFiber(err)
			}
			return c.JSON(b)
		}

		if workerID := uint(c.QueryInt("worker_id", 0)); workerID != 0 {
			b, err := ComputeBalance(database.DB, workerID)
			if err != nil {
				return apperr.ToFiber(err)
			}
			return c.JSON(b)
		}

		balances, err := ComputeAllBalances(database.DB)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(balances)
	}
}

// POST /api/payments (solo admin)
func CreatePaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		var body CreatePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if err := validate.Struct(body); err != nil {
			return err
		}

		payment, err := RecordPayment(database.DB, actor, body.WorkerID, body.Amount, body.Notes)
		if err != nil {
			return apperr.ToFiber(err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "worker_payment",
			EntityID:    payment.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Pago a trabajador %d: %.2f", payment.WorkerID, payment.Amount),
			After:       payment,
		})

		return c.Status(fiber.StatusCreated).JSON(payment)
	}
}
