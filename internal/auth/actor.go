package auth

import (
	"trazzio-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Actor: identidad explícita del llamador. Cada operación del dominio la recibe
// como primer argumento y autoriza contra ella antes de tocar datos; nada de
// estado de sesión ambiente.
type Actor struct {
	UserID   uint
	Role     models.UserRole
	WorkerID *uint // solo para rol WORKER
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// OwnsWorker: el actor es admin o es el propio trabajador.
func (a Actor) OwnsWorker(workerID uint) bool {
	if a.IsAdmin() {
		return true
	}
	return a.WorkerID != nil && *a.WorkerID == workerID
}

const ctxActorKey = "actor"

// ActorFromCtx recupera el Actor que dejó el middleware JWT.
func ActorFromCtx(c *fiber.Ctx) (Actor, error) {
	actor, ok := c.Locals(ctxActorKey).(Actor)
	if !ok {
		return Actor{}, fiber.NewError(fiber.StatusForbidden, "No se pudo obtener la identidad del usuario")
	}
	return actor, nil
}
