package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/BancoSangre-api/internal/application/dto"
)

// personService lo implementa *usecase.PersonUseCase.
type personService interface {
	Create(ctx context.Context, in dto.PersonRequest) (*dto.PersonResponse, error)
	GetByID(ctx context.Context, id string) (*dto.PersonResponse, error)
	Update(ctx context.Context, id string, in dto.PersonRequest) (*dto.PersonResponse, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page dto.PageRequest) (*dto.PersonListResponse, error)
	SearchByName(ctx context.Context, name string) ([]dto.PersonResponse, error)
	ListByBloodType(ctx context.Context, raw string) ([]dto.PersonResponse, error)
	GetByDocument(ctx context.Context, number string) (*dto.PersonResponse, error)
	ListByCity(ctx context.Context, city string) ([]dto.PersonResponse, error)
	ListByState(ctx context.Context, state string) ([]dto.PersonResponse, error)
	LookupPostalCode(ctx context.Context, cep string) (*dto.AddressDTO, error)
}

// PersonHandler maneja las peticiones HTTP de personas (donantes).
type PersonHandler struct {
	uc personService
}

// NewPersonHandler construye el handler.
func NewPersonHandler(uc personService) *PersonHandler {
	return &PersonHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar persona
// @Description  Los campos de dirección vacíos se completan con la consulta de CEP.
// @Tags         persons
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PersonRequest  true  "Datos de la persona"
// @Success      201   {object}  dto.PersonResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/persons [post]
func (h *PersonHandler) Create(c *fiber.Ctx) error {
	var in dto.PersonRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener persona por ID
// @Tags         persons
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la persona"
// @Success      200  {object}  dto.PersonResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/persons/{id} [get]
func (h *PersonHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), param(c, "id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Reemplazar persona
// @Tags         persons
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la persona"
// @Param        body  body  dto.PersonRequest  true  "Datos de la persona"
// @Success      200   {object}  dto.PersonResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/persons/{id} [put]
func (h *PersonHandler) Update(c *fiber.Ctx) error {
	var in dto.PersonRequest
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
// @Summary      Eliminar persona
// @Description  Falla con 409 si la persona tiene donaciones registradas.
// @Tags         persons
// @Security     Bearer
// @Param        id   path  string  true  "ID de la persona"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/persons/{id} [delete]
func (h *PersonHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), param(c, "id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List godoc
// @Summary      Listar personas
// @Tags         persons
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.PersonListResponse
// @Router       /api/persons [get]
func (h *PersonHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Search godoc
// @Summary      Buscar personas por nombre
// @Description  Sin distinguir mayúsculas ni acentos.
// @Tags         persons
// @Security     Bearer
// @Produce      json
// @Param        name  query  string  true  "Nombre o parte del nombre"
// @Success      200   {array}   dto.PersonResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/persons/search [get]
func (h *PersonHandler) Search(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name es requerido", Field: "name"})
	}
	out, err := h.uc.SearchByName(c.UserContext(), name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ByBloodType godoc
// @Summary      Personas por tipo sanguíneo
// @Description  Un tipo desconocido devuelve lista vacía.
// @Tags         persons
// @Security     Bearer
// @Produce      json
// @Param        type  path  string  true  "Tipo sanguíneo (A+, O-, ...)"
// @Success      200   {array}  dto.PersonResponse
// @Router       /api/persons/blood-type/{type} [get]
func (h *PersonHandler) ByBloodType(c *fiber.Ctx) error {
	out, err := h.uc.ListByBloodType(c.UserContext(), param(c, "type"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ByDocument godoc
// @Summary      Persona por número de documento
// @Tags         persons
// @Security     Bearer
// @Produce      json
// @Param        number  path  string  true  "Número de documento"
// @Success      200     {object}  dto.PersonResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/persons/document/{number} [get]
func (h *PersonHandler) ByDocument(c *fiber.Ctx) error {
	out, err := h.uc.GetByDocument(c.UserContext(), param(c, "number"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ByCity godoc
// @Summary      Personas por ciudad
// @Tags         persons
// @Security     Bearer
// @Produce      json
// @Param        city  path  string  true  "Ciudad"
// @Success      200   {array}  dto.PersonResponse
// @Router       /api/persons/city/{city} [get]
func (h *PersonHandler) ByCity(c *fiber.Ctx) error {
	out, err := h.uc.ListByCity(c.UserContext(), param(c, "city"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ByState godoc
// @Summary      Personas por estado (UF)
// @Tags         persons
// @Security     Bearer
// @Produce      json
// @Param        state  path  string  true  "UF"
// @Success      200    {array}  dto.PersonResponse
// @Router       /api/persons/state/{state} [get]
func (h *PersonHandler) ByState(c *fiber.Ctx) error {
	out, err := h.uc.ListByState(c.UserContext(), param(c, "state"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PostalCode godoc
// @Summary      Consultar dirección por CEP
// @Tags         persons
// @Security     Bearer
// @Produce      json
// @Param        cep  path  string  true  "CEP (00000-000 o 00000000)"
// @Success      200  {object}  dto.AddressDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/persons/postal-code/{cep} [get]
func (h *PersonHandler) PostalCode(c *fiber.Ctx) error {
	out, err := h.uc.LookupPostalCode(c.UserContext(), param(c, "cep"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
