package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
)

// Estados de una donación. USED y EXPIRED son terminales.
const (
	DonationAvailable = "AVAILABLE"
	DonationUsed      = "USED"
	DonationExpired   = "EXPIRED"
)

// Donation registro de una donación de sangre.
// BloodType se copia del donante al registrar; nunca lo envía el cliente.
type Donation struct {
	ID        string
	DonorID   string
	BloodType blood.Type
	VolumeML  decimal.Decimal
	DonatedAt time.Time
	ExpiresOn time.Time // fecha (sin hora)
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAvailable indica si la donación puede pasar a stock.
func (d *Donation) IsAvailable() bool {
	return d.Status == DonationAvailable
}

// ValidDonationStatus indica si s es un estado conocido (comparación sin mayúsculas).
func ValidDonationStatus(s string) (string, bool) {
	switch up := strings.ToUpper(strings.TrimSpace(s)); up {
	case DonationAvailable, DonationUsed, DonationExpired:
		return up, true
	}
	return "", false
}

// CanTransition reglas de la máquina de estados: solo AVAILABLE puede cambiar.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	return from == DonationAvailable && (to == DonationUsed || to == DonationExpired)
}
