package dto

import (
	"time"

	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
)

// StockItemDTO stock de un tipo sanguíneo.
type StockItemDTO struct {
	BloodType blood.Type `json:"blood_type" swaggertype:"string"`
	Quantity  int        `json:"quantity"`
	Minimum   int        `json:"minimum"`
	Low       bool       `json:"low"`
}

// StockResponse stock de los 8 tipos, en orden canónico.
type StockResponse struct {
	Items []StockItemDTO `json:"items"`
	Total int            `json:"total"`
}

// AddToStockResponse resultado de pasar una donación a stock.
type AddToStockResponse struct {
	DonationID string     `json:"donation_id"`
	BloodType  blood.Type `json:"blood_type" swaggertype:"string"`
	BagsAdded  int        `json:"bags_added"`
	Quantity   int        `json:"quantity"`
}

// WithdrawRequest retiro de bolsas del stock.
type WithdrawRequest struct {
	Bags int `json:"bags" validate:"required,min=1"`
}

// SetMinimumRequest nuevo umbral de alerta.
type SetMinimumRequest struct {
	Minimum int `json:"minimum" validate:"min=0"`
}

// StatisticsResponse agregados de solo lectura.
type StatisticsResponse struct {
	TotalStock                int                `json:"total_stock"`
	TotalDonations            int                `json:"total_donations"`
	AvailableDonations        int                `json:"available_donations"`
	AvailableDonationsPerType map[blood.Type]int `json:"available_donations_per_type"`
	StockPerType              map[blood.Type]int `json:"stock_per_type"`
	GeneratedAt               time.Time          `json:"generated_at"`
}

// Situaciones de AlertsResponse.
const (
	SituationNormal = "NORMAL"
	SituationAlert  = "ALERT"
)

// AlertsResponse tipos con stock bajo y situación general.
type AlertsResponse struct {
	LowStockTypes []blood.Type `json:"low_stock_types" swaggertype:"array,string"`
	Count         int          `json:"count"`
	TotalStock    int          `json:"total_stock"`
	Situation     string       `json:"situation"`
}

// CompatibilityResponse compatibilidad detallada de un tipo.
type CompatibilityResponse struct {
	BloodType      blood.Type   `json:"blood_type" swaggertype:"string"`
	CanReceiveFrom []blood.Type `json:"can_receive_from" swaggertype:"array,string"`
	CanDonateTo    []blood.Type `json:"can_donate_to" swaggertype:"array,string"`
}

// SweepResponse resultado del barrido de vencimiento.
type SweepResponse struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Expired int    `json:"expired"`
	Skipped bool   `json:"skipped,omitempty"` // otra réplica ya lo ejecutó hoy
}
