package settlement

import (
	"fmt"
	"time"

	"trazzio-backend/internal/apperr"
	"trazzio-backend/internal/audit"
	"trazzio-backend/internal/auth"
	"trazzio-backend/internal/config"
	"trazzio-backend/internal/database"
	"trazzio-backend/internal/models"
	"trazzio-backend/internal/timeutil"
	"trazzio-backend/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type MermaItemRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=0"`
	Reason    string `json:"reason"`
}

type SettleRequest struct {
	AssignmentID     uint               `json:"assignment_id" validate:"required"`
	QuantityReturned int                `json:"quantity_returned" validate:"min=0"`
	MermaItems       []MermaItemRequest `json:"merma_items" validate:"dive"`
	AmountPaid       float64            `json:"amount_paid" validate:"min=0"`
	Notes            string             `json:"notes"`
}

type AdjustRequest struct {
	AmountPaid     float64 `json:"amount_paid" validate:"min=0"`
	AdjustmentNote string  `json:"adjustment_note"`
}

type MermaItemResponse struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	Reason      string `json:"reason,omitempty"`
}

type SettlementResponse struct {
	ID           uint                `json:"id"`
	AssignmentID uint                `json:"assignment_id"`
	WorkerID     uint                `json:"worker_id,omitempty"`
	WorkerName   string              `json:"worker_name,omitempty"`
	ProductName  string              `json:"product_name,omitempty"`
	CompanyName  string              `json:"company_name,omitempty"`
	TotalSold    int                 `json:"total_sold"`
	TotalMerma   int                 `json:"total_merma"`
	AmountDue    float64             `json:"amount_due"`
	AmountPaid   float64             `json:"amount_paid"`
	Difference   float64             `json:"difference"`
	Notes        string              `json:"notes,omitempty"`
	SettledAt    string              `json:"settled_at"`
	MermaItems   []MermaItemResponse `json:"merma_items,omitempty"`
}

func toResponse(s models.Settlement) SettlementResponse {
	resp := SettlementResponse{
		ID:           s.ID,
		AssignmentID: s.AssignmentID,
		WorkerID:     s.Assignment.WorkerID,
		WorkerName:   s.Assignment.Worker.Name,
		ProductName:  s.Assignment.Product.Name,
		CompanyName:  s.Assignment.Product.Company.Name,
		TotalSold:    s.TotalSold,
		TotalMerma:   s.TotalMerma,
		AmountDue:    s.AmountDue,
		AmountPaid:   s.AmountPaid,
		Difference:   s.Difference,
		Notes:        s.Notes,
		SettledAt:    s.SettledAt.Format("2006-01-02 15:04:05"),
	}
	for _, m := range s.Assignment.MermaItems {
		resp.MermaItems = append(resp.MermaItems, MermaItemResponse{
			ProductID:   m.ProductID,
			ProductName: m.Product.Name,
			Quantity:    m.Quantity,
			Reason:      m.Reason,
		})
	}
	return resp
}

// POST /api/settlements — rendir una asignación. Un trabajador solo puede
// rendir las suyas; el admin cualquiera.
func SettleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		var body SettleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if err := validate.Struct(body); err != nil {
			return err
		}

		merma := make([]MermaInput, 0, len(body.MermaItems))
		for _, m := range body.MermaItems {
			merma = append(merma, MermaInput{ProductID: m.ProductID, Quantity: m.Quantity, Reason: m.Reason})
		}

		s, err := Settle(database.DB, actor, SettleInput{
			AssignmentID:     body.AssignmentID,
			QuantityReturned: body.QuantityReturned,
			MermaItems:       merma,
			AmountPaid:       body.AmountPaid,
			Notes:            body.Notes,
		})
		if err != nil {
			return apperr.ToFiber(err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "settlement",
			EntityID:    s.ID,
			Action:      models.AuditActionSettle,
			Description: fmt.Sprintf("Rendición: asignación %d, vendidas %d, a rendir %.2f, entregado %.2f", s.AssignmentID, s.TotalSold, s.AmountDue, s.AmountPaid),
			After:       s,
		})

		// Recargar con relaciones para la respuesta
		var full models.Settlement
		if err := database.DB.Preload("Assignment.Worker").
			Preload("Assignment.Product.Company").
			Preload("Assignment.MermaItems.Product").
			First(&full, s.ID).Error; err == nil {
			return c.Status(fiber.StatusCreated).JSON(toResponse(full))
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(*s))
	}
}

// PATCH /api/settlements/:id — corrección administrativa del efectivo entregado.
func AdjustHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var body AdjustRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if err := validate.Struct(body); err != nil {
			return err
		}

		var before models.Settlement
		_ = database.DB.First(&before, id).Error

		s, err := Adjust(database.DB, actor, uint(id), body.AmountPaid, body.AdjustmentNote)
		if err != nil {
			return apperr.ToFiber(err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "settlement",
			EntityID:    s.ID,
			Action:      models.AuditActionAdjust,
			Description: fmt.Sprintf("Corrección: rendición %d, entregado %.2f → %.2f", s.ID, before.AmountPaid, s.AmountPaid),
			Before:      before,
			After:       s,
		})

		return c.JSON(toResponse(*s))
	}
}

// GET /api/settlements?from=&to=&worker_id= (solo admin)
func ListHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		var from, to *time.Time
		if fromStr := c.Query("from"); fromStr != "" {
			d, err := timeutil.ParseDate(fromStr, cfg.BusinessTZ)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Fecha 'from' inválida (YYYY-MM-DD)")
			}
			from = &d
		}
		if toStr := c.Query("to"); toStr != "" {
			d, err := timeutil.EndOfDate(toStr, cfg.BusinessTZ)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Fecha 'to' inválida (YYYY-MM-DD)")
			}
			to = &d
		}

		workerID := uint(c.QueryInt("worker_id", 0))

		settlements, err := ListRange(database.DB, actor, from, to, workerID)
		if err != nil {
			return apperr.ToFiber(err)
		}

		resp := make([]SettlementResponse, 0, len(settlements))
		for _, s := range settlements {
			resp = append(resp, toResponse(s))
		}
		return c.JSON(resp)
	}
}
