package inventory

import (
	"strings"

	"trazzio-backend/internal/database"
	"trazzio-backend/internal/models"
	"trazzio-backend/internal/validate"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProductResponse struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	CompanyID     uint    `json:"company_id"`
	CompanyName   string  `json:"company_name,omitempty"`
	CostPrice     float64 `json:"cost_price"`
	SalePrice     float64 `json:"sale_price"`
	UnitPerBox    int     `json:"unit_per_box"`
	Stock         int     `json:"stock"`
	LowStockAlert int     `json:"low_stock_alert"`
	LowStock      bool    `json:"low_stock"`
	Category      string  `json:"category,omitempty"`
	IsSpecial     bool    `json:"is_special"`
}

type CreateProductRequest struct {
	Name          string  `json:"name" validate:"required"`
	CompanyID     uint    `json:"company_id" validate:"required"`
	CostPrice     float64 `json:"cost_price" validate:"gt=0"`
	SalePrice     float64 `json:"sale_price" validate:"gt=0"`
	UnitPerBox    int     `json:"unit_per_box" validate:"gt=0"`
	LowStockAlert int     `json:"low_stock_alert" validate:"min=0"`
	Category      string  `json:"category"`
	IsSpecial     bool    `json:"is_special"`
}

type UpdateProductRequest struct {
	Name          *string  `json:"name"`
	CostPrice     *float64 `json:"cost_price"`
	SalePrice     *float64 `json:"sale_price"`
	UnitPerBox    *int     `json:"unit_per_box"`
	LowStockAlert *int     `json:"low_stock_alert"`
	Category      *string  `json:"category"`
	IsSpecial     *bool    `json:"is_special"`
}

func toProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		CompanyID:     p.CompanyID,
		CompanyName:   p.Company.Name,
		CostPrice:     p.CostPrice,
		SalePrice:     p.SalePrice,
		UnitPerBox:    p.UnitPerBox,
		Stock:         p.Stock,
		LowStockAlert: p.LowStockAlert,
		LowStock:      p.Stock <= p.LowStockAlert,
		Category:      p.Category,
		IsSpecial:     p.IsSpecial,
	}
}

// GET /api/products?low_stock=true (todos los autenticados)
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := database.DB.Preload("Company")

		// El umbral de stock bajo solo señala, nunca bloquea asignaciones
		if c.Query("low_stock") == "true" {
			query = query.Where("stock <= low_stock_alert")
		}

		var products []models.Product
		if err := query.Order("name ASC").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los productos")
		}

		resp := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			resp = append(resp, toProductResponse(p))
		}
		return c.JSON(resp)
	}
}

// POST /api/products (solo admin)
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		body.Name = strings.TrimSpace(body.Name)
		if err := validate.Struct(body); err != nil {
			return err
		}

		var company models.Company
		if err := database.DB.First(&company, body.CompanyID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Empresa no encontrada")
		}

		lowStock := body.LowStockAlert
		if lowStock == 0 {
			lowStock = 10
		}

		p := models.Product{
			Name:          body.Name,
			CompanyID:     body.CompanyID,
			CostPrice:     body.CostPrice,
			SalePrice:     body.SalePrice,
			UnitPerBox:    body.UnitPerBox,
			LowStockAlert: lowStock,
			Category:      body.Category,
			IsSpecial:     body.IsSpecial,
		}
		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear el producto")
		}
		p.Company = company

		return c.Status(fiber.StatusCreated).JSON(toProductResponse(p))
	}
}

// PUT /api/products/:id (solo admin)
// Ojo: cambiar sale_price afecta retroactivamente a las asignaciones PENDING
// sin precio especial — el precio manda al momento de rendir, no al asignar.
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		var p models.Product
		if err := database.DB.Preload("Company").First(&p, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "El nombre no puede quedar vacío")
			}
			p.Name = name
		}
		if body.CostPrice != nil {
			if *body.CostPrice <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "El precio de costo debe ser positivo")
			}
			p.CostPrice = *body.CostPrice
		}
		if body.SalePrice != nil {
			if *body.SalePrice <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "El precio de venta debe ser positivo")
			}
			p.SalePrice = *body.SalePrice
		}
		if body.UnitPerBox != nil {
			if *body.UnitPerBox <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Las unidades por caja deben ser positivas")
			}
			p.UnitPerBox = *body.UnitPerBox
		}
		if body.LowStockAlert != nil {
			if *body.LowStockAlert < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "El umbral de stock bajo no puede ser negativo")
			}
			p.LowStockAlert = *body.LowStockAlert
		}
		if body.Category != nil {
			p.Category = *body.Category
		}
		if body.IsSpecial != nil {
			p.IsSpecial = *body.IsSpecial
		}

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el producto")
		}
		return c.JSON(toProductResponse(p))
	}
}

// DELETE /api/products/:id?force=true (solo admin)
// Bloqueado mientras existan asignaciones o ingresos de stock del producto;
// con force se eliminan los dependientes explícitamente en una transacción.
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var p models.Product
		if err := database.DB.First(&p, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
		}

		var assignmentCount, entryCount int64
		database.DB.Model(&models.Assignment{}).Where("product_id = ?", p.ID).Count(&assignmentCount)
		database.DB.Model(&models.StockEntry{}).Where("product_id = ?", p.ID).Count(&entryCount)

		if (assignmentCount > 0 || entryCount > 0) && c.Query("force") != "true" {
			return fiber.NewError(fiber.StatusConflict,
				"El producto tiene asignaciones o ingresos de stock; usa force=true para eliminar todo")
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var assignmentIDs []uint
			if err := tx.Model(&models.Assignment{}).Where("product_id = ?", p.ID).
				Pluck("id", &assignmentIDs).Error; err != nil {
				return err
			}
			if len(assignmentIDs) > 0 {
				if err := tx.Where("assignment_id IN ?", assignmentIDs).Delete(&models.Settlement{}).Error; err != nil {
					return err
				}
				if err := tx.Where("assignment_id IN ?", assignmentIDs).Delete(&models.MermaItem{}).Error; err != nil {
					return err
				}
				if err := tx.Where("id IN ?", assignmentIDs).Delete(&models.Assignment{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("product_id = ?", p.ID).Delete(&models.StockEntry{}).Error; err != nil {
				return err
			}
			return tx.Delete(&p).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el producto")
		}

		return c.JSON(fiber.Map{"ok": true})
	}
}
