package worker

import (
	"fmt"
	"strings"

	"trazzio-backend/internal/audit"
	"trazzio-backend/internal/auth"
	"trazzio-backend/internal/database"
	"trazzio-backend/internal/models"
	"trazzio-backend/internal/validate"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateWorkerRequest struct {
	Name           string  `json:"name" validate:"required"`
	Phone          string  `json:"phone"`
	Commission     float64 `json:"commission" validate:"min=0"`
	CommissionType string  `json:"commission_type" validate:"omitempty,oneof=PERCENTAGE FIXED"`
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"required,min=6"`
}

type UpdateWorkerRequest struct {
	Name           *string  `json:"name"`
	Phone          *string  `json:"phone"`
	Commission     *float64 `json:"commission"`
	CommissionType *string  `json:"commission_type"`
	Password       *string  `json:"password"`
}

type WorkerResponse struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	Phone           string  `json:"phone,omitempty"`
	CommissionType  string  `json:"commission_type"`
	Commission      float64 `json:"commission"`
	Email           string  `json:"email,omitempty"`
	AssignmentCount int64   `json:"assignment_count"`
}

// GET /api/workers (solo admin)
func ListWorkersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var workers []models.Worker
		if err := database.DB.Preload("User").Order("name ASC").Find(&workers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los trabajadores")
		}

		resp := make([]WorkerResponse, 0, len(workers))
		for _, w := range workers {
			var count int64
			database.DB.Model(&models.Assignment{}).Where("worker_id = ?", w.ID).Count(&count)
			resp = append(resp, WorkerResponse{
				ID:              w.ID,
				Name:            w.Name,
				Phone:           w.Phone,
				CommissionType:  string(w.CommissionType),
				Commission:      w.Commission,
				Email:           w.User.Email,
				AssignmentCount: count,
			})
		}
		return c.JSON(resp)
	}
}

// POST /api/workers (solo admin)
// Usuario + trabajador se crean en la misma transacción.
func CreateWorkerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateWorkerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		body.Name = strings.TrimSpace(body.Name)
		if err := validate.Struct(body); err != nil {
			return err
		}

		var existing models.User
		if err := database.DB.Where("email = ?", body.Email).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusConflict, "Email ya registrado")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo procesar la contraseña")
		}

		commissionType := models.CommissionPercentage
		if body.CommissionType == string(models.CommissionFixed) {
			commissionType = models.CommissionFixed
		}

		var w models.Worker
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			user := models.User{
				Email:        body.Email,
				PasswordHash: string(hash),
				Role:         models.RoleWorker,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			w = models.Worker{
				Name:           body.Name,
				Phone:          body.Phone,
				Commission:     body.Commission,
				CommissionType: commissionType,
				UserID:         user.ID,
			}
			return tx.Create(&w).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear el trabajador")
		}

		return c.Status(fiber.StatusCreated).JSON(WorkerResponse{
			ID:             w.ID,
			Name:           w.Name,
			Phone:          w.Phone,
			CommissionType: string(w.CommissionType),
			Commission:     w.Commission,
			Email:          body.Email,
		})
	}
}

// PUT /api/workers/:id (solo admin) — la comisión es mutable; puede rotar contraseña.
func UpdateWorkerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var body UpdateWorkerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		var w models.Worker
		if err := database.DB.Preload("User").First(&w, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Trabajador no encontrado")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "El nombre no puede quedar vacío")
			}
			w.Name = name
		}
		if body.Phone != nil {
			w.Phone = *body.Phone
		}
		if body.Commission != nil {
			if *body.Commission < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "La comisión no puede ser negativa")
			}
			w.Commission = *body.Commission
		}
		if body.CommissionType != nil {
			switch *body.CommissionType {
			case string(models.CommissionPercentage), string(models.CommissionFixed):
				w.CommissionType = models.CommissionType(*body.CommissionType)
			default:
				return fiber.NewError(fiber.StatusBadRequest, "commission_type debe ser PERCENTAGE o FIXED")
			}
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&w).Error; err != nil {
				return err
			}
			if body.Password != nil {
				if len(*body.Password) < 6 {
					return fiber.NewError(fiber.StatusBadRequest, "La contraseña debe tener al menos 6 caracteres")
				}
				hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
				if err != nil {
					return err
				}
				return tx.Model(&models.User{}).Where("id = ?", w.UserID).
					Update("password_hash", string(hash)).Error
			}
			return nil
		})
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el trabajador")
		}

		return c.JSON(WorkerResponse{
			ID:             w.ID,
			Name:           w.Name,
			Phone:          w.Phone,
			CommissionType: string(w.CommissionType),
			Commission:     w.Commission,
			Email:          w.User.Email,
		})
	}
}

// DELETE /api/workers/:id?force=true (solo admin)
// Bloqueado mientras existan asignaciones del trabajador: un cascade silencioso
// borraría historial financiero. Con force se eliminan asignaciones,
// rendiciones, merma y pagos explícitamente en una transacción, junto con el
// usuario de acceso.
func DeleteWorkerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromCtx(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var w models.Worker
		if err := database.DB.First(&w, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Trabajador no encontrado")
		}

		var assignmentCount int64
		database.DB.Model(&models.Assignment{}).Where("worker_id = ?", w.ID).Count(&assignmentCount)
		if assignmentCount > 0 && c.Query("force") != "true" {
			return fiber.NewError(fiber.StatusConflict,
				"El trabajador tiene asignaciones; usa force=true para eliminar también su historial")
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var assignmentIDs []uint
			if err := tx.Model(&models.Assignment{}).Where("worker_id = ?", w.ID).
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
			if err := tx.Where("worker_id = ?", w.ID).Delete(&models.WorkerPayment{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&w).Error; err != nil {
				return err
			}
			return tx.Delete(&models.User{}, w.UserID).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el trabajador")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.UserID,
			EntityType:  "worker",
			EntityID:    w.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Trabajador %s eliminado (%d asignaciones en cascada)", w.Name, assignmentCount),
			Before:      w,
		})

		return c.JSON(fiber.Map{"ok": true})
	}
}
