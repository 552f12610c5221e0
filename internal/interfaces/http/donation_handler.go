package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/BancoSangre-api/internal/application/dto"
)

// donationService lo implementa *usecase.DonationUseCase.
type donationService interface {
	Register(ctx context.Context, in dto.RegisterDonationRequest) (*dto.DonationResponse, error)
	GetByID(ctx context.Context, id string) (*dto.DonationResponse, error)
	List(ctx context.Context, page dto.PageRequest) (*dto.DonationListResponse, error)
	Update(ctx context.Context, id string, in dto.UpdateDonationRequest) (*dto.DonationResponse, error)
	Delete(ctx context.Context, id string) error
	ListByDonorDocument(ctx context.Context, number string) ([]dto.DonationResponse, error)
	ListByStatus(ctx context.Context, raw string) ([]dto.DonationResponse, error)
	Eligibility(ctx context.Context, number string) (*dto.EligibilityResponse, error)
}

// DonationHandler maneja las peticiones HTTP de donaciones.
type DonationHandler struct {
	uc donationService
}

// NewDonationHandler construye el handler.
func NewDonationHandler(uc donationService) *DonationHandler {
	return &DonationHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar donación
// @Description  El tipo sanguíneo se toma del donante. Vence a los 42 días si no se indica expires_on.
// @Tags         donations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterDonationRequest  true  "Documento del donante y volumen"
// @Success      201   {object}  dto.DonationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/donations [post]
func (h *DonationHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterDonationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	out, err := h.uc.Register(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener donación por ID
// @Tags         donations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la donación"
// @Success      200  {object}  dto.DonationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/donations/{id} [get]
func (h *DonationHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), param(c, "id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar donaciones
// @Tags         donations
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.DonationListResponse
// @Router       /api/donations [get]
func (h *DonationHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar donación
// @Description  Cambia el volumen o marca como EXPIRED una donación AVAILABLE.
// @Tags         donations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la donación"
// @Param        body  body  dto.UpdateDonationRequest  true  "volume_ml y/o status"
// @Success      200   {object}  dto.DonationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/donations/{id} [put]
func (h *DonationHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateDonationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), param(c, "id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar donación
// @Tags         donations
// @Security     Bearer
// @Param        id   path  string  true  "ID de la donación"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/donations/{id} [delete]
func (h *DonationHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), param(c, "id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ByDonorDocument godoc
// @Summary      Donaciones de un donante
// @Tags         donations
// @Security     Bearer
// @Produce      json
// @Param        number  path  string  true  "Número de documento del donante"
// @Success      200     {array}   dto.DonationResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/donations/document/{number} [get]
func (h *DonationHandler) ByDonorDocument(c *fiber.Ctx) error {
	out, err := h.uc.ListByDonorDocument(c.UserContext(), param(c, "number"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ByStatus godoc
// @Summary      Donaciones por estado
// @Description  Un estado desconocido devuelve lista vacía.
// @Tags         donations
// @Security     Bearer
// @Produce      json
// @Param        status  path  string  true  "AVAILABLE, USED o EXPIRED"
// @Success      200     {array}  dto.DonationResponse
// @Router       /api/donations/status/{status} [get]
func (h *DonationHandler) ByStatus(c *fiber.Ctx) error {
	out, err := h.uc.ListByStatus(c.UserContext(), param(c, "status"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Eligibility godoc
// @Summary      Elegibilidad del donante
// @Tags         donations
// @Security     Bearer
// @Produce      json
// @Param        number  path  string  true  "Número de documento del donante"
// @Success      200     {object}  dto.EligibilityResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/donations/donor/{number}/eligibility [get]
func (h *DonationHandler) Eligibility(c *fiber.Ctx) error {
	out, err := h.uc.Eligibility(c.UserContext(), param(c, "number"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
