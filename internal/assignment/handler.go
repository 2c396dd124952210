package assignment

import (
	"fmt"

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

type CreateAssignmentItem struct {
	ProductID        uint     `json:"product_id" validate:"required"`
	QuantityAssigned int      `json:"quantity_assigned" validate:"min=0"`
	Boxes            int      `json:"boxes" validate:"min=0"`
	LooseUnits       int      `json:"loose_units" validate:"min=0"`
	CustomSalePrice  *float64 `json:"custom_sale_price"`
}

type CreateAssignmentsRequest struct {
	WorkerID uint                   `json:"worker_id" validate:"required"`
	Items    []CreateAssignmentItem `json:"items" validate:"required,min=1,dive"`
}

type AssignmentResponse struct {
	ID               uint     `json:"id"`
	WorkerID         uint     `json:"worker_id"`
	WorkerName       string   `json:"worker_name,omitempty"`
	ProductID        uint     `json:"product_id"`
	ProductName      string   `json:"product_name,omitempty"`
	CompanyName      string   `json:"company_name,omitempty"`
	QuantityAssigned int      `json:"quantity_assigned"`
	CustomSalePrice  *float64 `json:"custom_sale_price"`
	Status           string   `json:"status"`
	QuantityReturned *int     `json:"quantity_returned"`
	QuantitySold     *int     `json:"quantity_sold"`
	Date             string   `json:"date"`
	Settled          bool     `json:"settled"`
}

func toResponse(a models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:               a.ID,
		WorkerID:         a.WorkerID,
		WorkerName:       a.Worker.Name,
		ProductID:        a.ProductID,
		ProductName:      a.Product.Name,
		CompanyName:      a.Product.Company.Name,
		QuantityAssigned: a.QuantityAssigned,
		CustomSalePrice:  a.CustomSalePrice,
		Status:           string(a.Status),
		QuantityReturned: a.QuantityReturned,
		QuantitySold:     a.QuantitySold,
		Date:             a.Date.Format("2006-01-02 15:04:05"),
		Settled:          a.Settlement != nil,
	}
}

// POST /api/assignments (solo admin)
func CreateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		var body CreateAssignmentsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if err := validate.Struct(body); err != nil {
			return err
		}

		items := make([]BatchItem, 0, len(body.Items))
		for _, it := range body.Items {
			items = append(items, BatchItem{
				ProductID:        it.ProductID,
				QuantityAssigned: it.QuantityAssigned,
				Boxes:            it.Boxes,
				LooseUnits:       it.LooseUnits,
				CustomSalePrice:  it.CustomSalePrice,
			})
		}

		created, err := CreateBatch(database.DB, actor, body.WorkerID, items)
		if err != nil {
			return apperr.ToFiber(err)
		}

		for _, a := range created {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      actor.UserID,
				EntityType:  "assignment",
				EntityID:    a.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Asignación: trabajador %d, producto %d, %d unidades", a.WorkerID, a.ProductID, a.QuantityAssigned),
				After:       a,
			})
		}

		resp := make([]AssignmentResponse, 0, len(created))
		for _, a := range created {
			resp = append(resp, toResponse(a))
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GET /api/assignments — asignaciones de hoy (día del negocio, no UTC).
// El admin ve todas; un trabajador solo las suyas.
func ListTodayHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		from, to := timeutil.TodayBounds(cfg.BusinessTZ)
		assignments, err := ListRange(database.DB, actor, from, to)
		if err != nil {
			return apperr.ToFiber(err)
		}

		resp := make([]AssignmentResponse, 0, len(assignments))
		for _, a := range assignments {
			resp = append(resp, toResponse(a))
		}
		return c.JSON(resp)
	}
}

// GET /api/assignments/pending — pendientes de hoy del trabajador que llama
// (o ?worker_id= para el admin).
func ListPendingHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		workerID := uint(c.QueryInt("worker_id", 0))
		if workerID == 0 {
			if actor.WorkerID == nil {
				return fiber.NewError(fiber.StatusBadRequest, "worker_id es obligatorio para el admin")
			}
			workerID = *actor.WorkerID
		}

		from, to := timeutil.TodayBounds(cfg.BusinessTZ)
		assignments, err := ListPending(database.DB, actor, workerID, from, to)
		if err != nil {
			return apperr.ToFiber(err)
		}

		resp := make([]AssignmentResponse, 0, len(assignments))
		for _, a := range assignments {
			resp = append(resp, toResponse(a))
		}
		return c.JSON(resp)
	}
}

// DELETE /api/assignments/:id (solo admin, solo PENDING; devuelve el stock)
func DeleteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		if err := Delete(database.DB, actor, uint(id)); err != nil {
			return apperr.ToFiber(err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "assignment",
			EntityID:    uint(id),
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Asignación %d eliminada; stock devuelto", id),
		})

		return c.JSON(fiber.Map{"ok": true})
	}
}
