package bloodbank

import (
	"context"
	"time"

	"github.com/jhoicas/BancoSangre-api/internal/application/dto"
	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
	"github.com/jhoicas/BancoSangre-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción de BD con repositorios atados a ella.
// Si fn devuelve error se hace Rollback de todo.
type TxRunner interface {
	RunBloodBank(ctx context.Context, fn func(
		donations repository.DonationRepository,
		stock repository.BloodStockRepository,
	) error) error
}

// SweepLocker lock distribuido para que una sola réplica ejecute el barrido del día.
type SweepLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Unlock libera el lock del día; se usa cuando el barrido falla para que otro intento lo repita.
	Unlock(ctx context.Context, key string) error
}

// DonorFinder busca personas por tipo sanguíneo. Lo implementa *usecase.PersonUseCase.
type DonorFinder interface {
	FindByBloodTypes(ctx context.Context, types []blood.Type) ([]dto.PersonResponse, error)
}

// ReportGenerator genera el PDF del reporte de stock.
type ReportGenerator interface {
	GenerateStockReport(ctx context.Context, report StockReport) ([]byte, error)
}

// StockReport datos del reporte PDF.
type StockReport struct {
	Title       string
	GeneratedAt time.Time
	Stock       dto.StockResponse
	Stats       dto.StatisticsResponse
	Alerts      dto.AlertsResponse
}

// Policy parámetros de negocio configurables.
type Policy struct {
	BagVolumeML    int // ml por bolsa (450)
	ShelfLifeDays  int // validez de una donación (42)
	DefaultMinimum int // umbral de alerta por defecto (10)
}

// DefaultPolicy valores por defecto del banco de sangre.
func DefaultPolicy() Policy {
	return Policy{
		BagVolumeML:    blood.DefaultBagVolumeML,
		ShelfLifeDays:  blood.DefaultShelfLifeDays,
		DefaultMinimum: blood.DefaultMinimumStock,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.BagVolumeML <= 0 {
		p.BagVolumeML = d.BagVolumeML
	}
	if p.ShelfLifeDays <= 0 {
		p.ShelfLifeDays = d.ShelfLifeDays
	}
	if p.DefaultMinimum <= 0 {
		p.DefaultMinimum = d.DefaultMinimum
	}
	return p
}
