package company

import (
	"strings"

	"trazzio-backend/internal/database"
	"trazzio-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CompanyRequest struct {
	Name string `json:"name"`
}

type CompanyResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	ProductCount int    `json:"product_count"`
}

// GET /api/companies (solo admin)
func ListCompaniesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var companies []models.Company
		if err := database.DB.Preload("Products").Order("name ASC").Find(&companies).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar las empresas")
		}

		resp := make([]CompanyResponse, 0, len(companies))
		for _, co := range companies {
			resp = append(resp, CompanyResponse{ID: co.ID, Name: co.Name, ProductCount: len(co.Products)})
		}
		return c.JSON(resp)
	}
}

// POST /api/companies (solo admin)
func CreateCompanyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CompanyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nombre requerido")
		}

		co := models.Company{Name: body.Name}
		if err := database.DB.Create(&co).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Ya existe una empresa con ese nombre")
		}
		return c.Status(fiber.StatusCreated).JSON(CompanyResponse{ID: co.ID, Name: co.Name})
	}
}

// PUT /api/companies/:id (solo admin)
func UpdateCompanyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var body CompanyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nombre requerido")
		}

		var co models.Company
		if err := database.DB.First(&co, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Empresa no encontrada")
		}

		co.Name = body.Name
		if err := database.DB.Save(&co).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar la empresa")
		}
		return c.JSON(CompanyResponse{ID: co.ID, Name: co.Name})
	}
}

// DELETE /api/companies/:id?force=true (solo admin)
// Bloqueado mientras la empresa tenga productos; con force la eliminación
// arrastra productos y su historial, explícitamente y en una transacción.
func DeleteCompanyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var co models.Company
		if err := database.DB.First(&co, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Empresa no encontrada")
		}

		var productCount int64
		database.DB.Model(&models.Product{}).Where("company_id = ?", co.ID).Count(&productCount)
		if productCount > 0 && c.Query("force") != "true" {
			return fiber.NewError(fiber.StatusConflict,
				"La empresa tiene productos; usa force=true para eliminar todo su historial")
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var productIDs []uint
			if err := tx.Model(&models.Product{}).Where("company_id = ?", co.ID).
				Pluck("id", &productIDs).Error; err != nil {
				return err
			}
			if len(productIDs) > 0 {
				var assignmentIDs []uint
				if err := tx.Model(&models.Assignment{}).Where("product_id IN ?", productIDs).
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
				if err := tx.Where("product_id IN ?", productIDs).Delete(&models.StockEntry{}).Error; err != nil {
					return err
				}
				if err := tx.Where("id IN ?", productIDs).Delete(&models.Product{}).Error; err != nil {
					return err
				}
			}
			return tx.Delete(&co).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar la empresa")
		}

		return c.JSON(fiber.Map{"ok": true})
	}
}
