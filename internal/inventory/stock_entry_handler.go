package inventory

import (
	"fmt"
	"time"

	"trazzio-backend/internal/audit"
	"trazzio-backend/internal/auth"
	"trazzio-backend/internal/database"
	"trazzio-backend/internal/models"
	"trazzio-backend/internal/validate"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateStockEntryRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"` // unidades
	Boxes     *int   `json:"boxes"`                    // informativo
	Notes     string `json:"notes"`
}

type StockEntryResponse struct {
	ID          uint   `json:"id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	Quantity    int    `json:"quantity"`
	Boxes       *int   `json:"boxes"`
	Notes       string `json:"notes,omitempty"`
	EntryDate   string `json:"entry_date"`
}

func toStockEntryResponse(e models.StockEntry) StockEntryResponse {
	return StockEntryResponse{
		ID:          e.ID,
		ProductID:   e.ProductID,
		ProductName: e.Product.Name,
		CompanyName: e.Product.Company.Name,
		Quantity:    e.Quantity,
		Boxes:       e.Boxes,
		Notes:       e.Notes,
		EntryDate:   e.EntryDate.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/stock-entries (solo admin)
// Registro de ingreso + incremento de stock en una sola transacción.
func CreateStockEntryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		var body CreateStockEntryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if err := validate.Struct(body); err != nil {
			return err
		}
		if body.Boxes != nil && *body.Boxes < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Las cajas no pueden ser negativas")
		}

		var product models.Product
		if err := database.DB.Preload("Company").First(&product, body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Producto no encontrado")
		}

		entry := models.StockEntry{
			ProductID: body.ProductID,
			Quantity:  body.Quantity,
			Boxes:     body.Boxes,
			Notes:     body.Notes,
			EntryDate: time.Now(),
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			return tx.Model(&models.Product{}).
				Where("id = ?", body.ProductID).
				Update("stock", gorm.Expr("stock + ?", body.Quantity)).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo registrar el ingreso de stock")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "stock_entry",
			EntityID:    entry.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Ingreso de stock: %s +%d unidades", product.Name, entry.Quantity),
			After:       entry,
		})

		entry.Product = product
		return c.Status(fiber.StatusCreated).JSON(toStockEntryResponse(entry))
	}
}

// GET /api/stock-entries (solo admin) — últimos 50 ingresos.
func ListStockEntriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var entries []models.StockEntry
		err := database.DB.Preload("Product.Company").
			Order("entry_date DESC").
			Limit(50).
			Find(&entries).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los ingresos de stock")
		}

		resp := make([]StockEntryResponse, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, toStockEntryResponse(e))
		}
		return c.JSON(resp)
	}
}
