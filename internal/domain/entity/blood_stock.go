package entity

import (
	"time"

	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
)

// BloodStock stock actual de un tipo sanguíneo, en bolsas. Una fila por tipo, creada bajo demanda.
type BloodStock struct {
	BloodType blood.Type
	Quantity  int
	Minimum   int // umbral de alerta (inclusivo)
	UpdatedAt time.Time
}

// IsLow quantity <= minimum.
func (s *BloodStock) IsLow() bool {
	return blood.IsLowStock(s.Quantity, s.Minimum)
}
