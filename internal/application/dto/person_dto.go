package dto

import (
	"time"

	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
)

// AddressDTO dirección postal.
type AddressDTO struct {
	PostalCode string `json:"postal_code" validate:"required"` // 00000-000
	Street     string `json:"street" validate:"max=200"`
	Number     string `json:"number" validate:"max=10"`
	Complement string `json:"complement" validate:"max=100"`
	District   string `json:"district" validate:"max=100"`
	City       string `json:"city" validate:"max=100"`
	State      string `json:"state" validate:"len=2"`
	Country    string `json:"country" validate:"max=100"`
}

// FiliationDTO nombres de madre y padre.
type FiliationDTO struct {
	MotherName string `json:"mother_name"`
	FatherName string `json:"father_name"`
}

// DocumentDTO documento de identificación.
type DocumentDTO struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

// ContactDTO medio de contacto.
type ContactDTO struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// PersonRequest entrada para crear o reemplazar una persona.
type PersonRequest struct {
	Name      string        `json:"name" validate:"required,min=2,max=100"`
	Address   *AddressDTO   `json:"address" validate:"required"`
	BloodType blood.Type    `json:"blood_type" swaggertype:"string" example:"O-"`
	Documents []DocumentDTO `json:"documents"`
	Filiation *FiliationDTO `json:"filiation" validate:"required"`
	Contacts  []ContactDTO  `json:"contacts"`
}

// PersonResponse salida de una persona.
type PersonResponse struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Address     AddressDTO    `json:"address"`
	FullAddress string        `json:"full_address"`
	Location    string        `json:"location"`
	BloodType   blood.Type    `json:"blood_type,omitempty" swaggertype:"string"`
	Documents   []DocumentDTO `json:"documents"`
	Filiation   FiliationDTO  `json:"filiation"`
	Contacts    []ContactDTO  `json:"contacts"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// PersonListResponse lista paginada de personas.
type PersonListResponse struct {
	Items []PersonResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
