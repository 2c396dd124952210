// Package validate: validación declarativa de los cuerpos de petición.
package validate

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var v = validator.New()

// Struct aplica los tags `validate` del DTO y devuelve un 400 listo para el cliente.
// Las reglas con mensaje propio se siguen chequeando a mano en cada handler.
func Struct(s any) error {
	if err := v.Struct(s); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos: "+err.Error())
	}
	return nil
}
