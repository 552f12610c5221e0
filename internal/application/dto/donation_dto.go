package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
)

// RegisterDonationRequest registra una donación a partir del documento del donante.
// El tipo sanguíneo se toma del donante.
type RegisterDonationRequest struct {
	DonorDocument string          `json:"donor_document" validate:"required"`
	VolumeML      decimal.Decimal `json:"volume_ml" swaggertype:"number" example:"450"`
	DonatedAt     *time.Time      `json:"donated_at"`
	ExpiresOn     *time.Time      `json:"expires_on"`
}

// UpdateDonationRequest cambios permitidos: volumen y estado (según la máquina de estados).
type UpdateDonationRequest struct {
	VolumeML *decimal.Decimal `json:"volume_ml" swaggertype:"number"`
	Status   *string          `json:"status" validate:"omitempty,oneof=AVAILABLE USED EXPIRED"`
}

// DonationResponse salida de una donación.
type DonationResponse struct {
	ID        string          `json:"id"`
	DonorID   string          `json:"donor_id"`
	DonorName string          `json:"donor_name,omitempty"`
	BloodType blood.Type      `json:"blood_type" swaggertype:"string"`
	VolumeML  decimal.Decimal `json:"volume_ml" swaggertype:"number"`
	Bags      int             `json:"bags"`
	DonatedAt time.Time       `json:"donated_at"`
	ExpiresOn string          `json:"expires_on"` // YYYY-MM-DD
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DonationListResponse lista paginada de donaciones.
type DonationListResponse struct {
	Items []DonationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// EligibilityResponse elegibilidad de un donante para donar de nuevo.
type EligibilityResponse struct {
	DonorID            string `json:"donor_id"`
	DonorName          string `json:"donor_name"`
	Eligible           bool   `json:"eligible"`
	AvailableDonations int    `json:"available_donations"`
	Message            string `json:"message"`
}
