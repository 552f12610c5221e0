package repository

import (
	"context"
	"time"

	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
	"github.com/jhoicas/BancoSangre-api/internal/domain/entity"
)

// DonationRepository puerto de persistencia para Donation.
// Usado con pool o dentro de TxRunner (mismos métodos).
type DonationRepository interface {
	Create(ctx context.Context, donation *entity.Donation) error
	GetByID(ctx context.Context, id string) (*entity.Donation, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE); solo tiene efecto dentro de una tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Donation, error)
	// Update solo aplica si la donación sigue AVAILABLE; si no, InvalidState (NotFound si no existe).
	Update(ctx context.Context, donation *entity.Donation) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*entity.Donation, error)
	ListByDonor(ctx context.Context, donorID string) ([]*entity.Donation, error)
	ListByStatus(ctx context.Context, status string) ([]*entity.Donation, error)
	// ListExpiredForUpdate donaciones AVAILABLE con expires_on < today, bloqueadas.
	ListExpiredForUpdate(ctx context.Context, today time.Time) ([]*entity.Donation, error)
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
	// CountAvailableByType conteo de donaciones AVAILABLE agrupado por tipo (solo tipos presentes).
	CountAvailableByType(ctx context.Context) (map[blood.Type]int, error)
}
