package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas). Son los "tipos" de error;
// los detalles estructurados viajan en *Error, que los envuelve.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidState       = errors.New("estado inválido para la operación")
	ErrInvalidArgument    = errors.New("argumento inválido")
	ErrInsufficientVolume = errors.New("volumen insuficiente para formar una bolsa")
	ErrValidation         = errors.New("error de validación")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
)

// Error lleva el tipo de error (uno de los sentinelas de arriba) y el contexto
// estructurado: entidad, id y campo. errors.Is(err, domain.ErrNotFound) funciona vía Unwrap.
type Error struct {
	Kind   error
	Entity string
	ID     string
	Field  string
	Detail string
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	switch {
	case e.Entity != "" && e.ID != "":
		msg = fmt.Sprintf("%s: %s %s", msg, e.Entity, e.ID)
	case e.Entity != "":
		msg = fmt.Sprintf("%s: %s", msg, e.Entity)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s (campo %s)", msg, e.Field)
	}
	if e.Detail != "" {
		msg = msg + ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }

// NotFound la entidad con el id indicado no existe.
func NotFound(entity, id string) error {
	return &Error{Kind: ErrNotFound, Entity: entity, ID: id}
}

// InvalidState la entidad existe pero su estado no permite la operación.
func InvalidState(entity, id, detail string) error {
	return &Error{Kind: ErrInvalidState, Entity: entity, ID: id, Detail: detail}
}

// InvalidArgument símbolo o valor no reconocido (ej. tipo sanguíneo desconocido).
func InvalidArgument(field, value string) error {
	return &Error{Kind: ErrInvalidArgument, Field: field, Detail: fmt.Sprintf("valor %q no reconocido", value)}
}

// InsufficientVolume la donación no alcanza para una bolsa.
func InsufficientVolume(donationID, volume string) error {
	return &Error{Kind: ErrInsufficientVolume, Entity: "donation", ID: donationID, Field: "volume_ml", Detail: volume + " ml"}
}

// Validation falta un campo obligatorio o tiene un valor fuera de rango.
func Validation(field, detail string) error {
	return &Error{Kind: ErrValidation, Field: field, Detail: detail}
}

// InsufficientStock no hay bolsas suficientes del tipo indicado.
func InsufficientStock(bloodType string, available, requested int) error {
	return &Error{
		Kind:   ErrInsufficientStock,
		Entity: "blood_stock",
		ID:     bloodType,
		Detail: fmt.Sprintf("disponibles %d, solicitadas %d", available, requested),
	}
}

// Duplicate viola una restricción de unicidad (ej. número de documento).
func Duplicate(entity, field string) error {
	return &Error{Kind: ErrDuplicate, Entity: entity, Field: field}
}

// AsError extrae el *Error estructurado si existe.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
