// Package apperr define los tipos de error del dominio y su traducción a HTTP.
// Toda validación ocurre antes de escribir: una operación rechazada no deja
// ninguna entidad a medio escribir.
package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrInsufficientStock: una asignación dejaría el stock negativo. Rechaza el lote completo.
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrAlreadySettled: intento de rendir o eliminar una asignación ya rendida.
	ErrAlreadySettled = errors.New("ya rendida")
	// ErrInvalidQuantities: sobrante + merma supera lo asignado.
	ErrInvalidQuantities = errors.New("cantidades inválidas")
	// ErrNotFound: la entidad referida no existe.
	ErrNotFound = errors.New("no encontrado")
	// ErrInvalidAmount: monto no positivo donde se exige positivo.
	ErrInvalidAmount = errors.New("monto inválido")
	// ErrUnauthorized: el rol o la identidad del llamador no alcanza.
	ErrUnauthorized = errors.New("no autorizado")
	// ErrHasDependents: eliminación bloqueada mientras existan dependientes (usar force).
	ErrHasDependents = errors.New("tiene registros dependientes")
)

// ToFiber traduce un error del dominio al error HTTP que ve el cliente.
// El mensaje del wrap (fmt.Errorf("%w: ...")) viaja tal cual.
func ToFiber(err error) error {
	if err == nil {
		return nil
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrUnauthorized):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrHasDependents):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrAlreadySettled),
		errors.Is(err, ErrInvalidQuantities),
		errors.Is(err, ErrInvalidAmount):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Error inesperado del servidor")
}
