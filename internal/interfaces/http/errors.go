package http

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/BancoSangre-api/internal/application/dto"
	"github.com/jhoicas/BancoSangre-api/internal/domain"
)

// errorMapping tipo de error de dominio -> status HTTP y código.
var errorMapping = []struct {
	kind   error
	status int
	code   string
}{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidState, fiber.StatusConflict, "INVALID_STATE"},
	{domain.ErrInvalidArgument, fiber.StatusBadRequest, "INVALID_ARGUMENT"},
	{domain.ErrInsufficientVolume, fiber.StatusUnprocessableEntity, "INSUFFICIENT_VOLUME"},
	{domain.ErrValidation, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
}

// writeError traduce err a la respuesta HTTP. Errores que no son de dominio salen como 500
// sin exponer el detalle interno.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if !errors.Is(err, m.kind) {
			continue
		}
		body := dto.ErrorResponse{Code: m.code, Message: err.Error()}
		if de, ok := domain.AsError(err); ok {
			body.Field = de.Field
			body.ID = de.ID
		}
		return c.Status(m.status).JSON(body)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

// badBody respuesta para cuerpos que no se pueden decodificar. Un tipo sanguíneo inválido
// dentro del JSON llega como error de dominio y se respeta.
func badBody(c *fiber.Ctx, err error) error {
	if _, ok := domain.AsError(err); ok {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// pageFromQuery limit/offset con los límites de dto.PageRequest.
func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	return page
}

// param valor del parámetro de ruta decodificado ("AB%2B" -> "AB+", "S%C3%A3o" -> "São").
// Un "+" literal se conserva: en la ruta no significa espacio.
func param(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
