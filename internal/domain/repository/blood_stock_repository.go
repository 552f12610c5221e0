package repository

import (
	"context"

	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
	"github.com/jhoicas/BancoSangre-api/internal/domain/entity"
)

// BloodStockRepository puerto para el stock por tipo sanguíneo.
// Las filas se crean bajo demanda; Get devuelve (nil, nil) si el tipo aún no tiene fila.
type BloodStockRepository interface {
	Get(ctx context.Context, bloodType blood.Type) (*entity.BloodStock, error)
	List(ctx context.Context) ([]*entity.BloodStock, error)
	// Increment suma bags de forma atómica (crea la fila con minimum si no existe). Devuelve la nueva cantidad.
	Increment(ctx context.Context, bloodType blood.Type, bags, minimum int) (int, error)
	// Decrement resta bags solo si hay suficientes; ok=false si no alcanzó.
	Decrement(ctx context.Context, bloodType blood.Type, bags int) (quantity int, ok bool, err error)
	SetMinimum(ctx context.Context, bloodType blood.Type, minimum int) error
	SumQuantity(ctx context.Context) (int, error)
}
