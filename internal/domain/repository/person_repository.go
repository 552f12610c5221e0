package repository

import (
	"context"

	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
	"github.com/jhoicas/BancoSangre-api/internal/domain/entity"
)

// PersonRepository puerto de persistencia para Person (DIP).
// Los Get devuelven (nil, nil) cuando no existe el registro.
type PersonRepository interface {
	Create(ctx context.Context, person *entity.Person) error
	GetByID(ctx context.Context, id string) (*entity.Person, error)
	GetByDocument(ctx context.Context, number string) (*entity.Person, error)
	Update(ctx context.Context, person *entity.Person) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*entity.Person, error)
	Count(ctx context.Context) (int, error)
	// SearchByName búsqueda parcial sin tildes ni mayúsculas.
	SearchByName(ctx context.Context, name string) ([]*entity.Person, error)
	ListByBloodTypes(ctx context.Context, types []blood.Type) ([]*entity.Person, error)
	ListByCity(ctx context.Context, city string) ([]*entity.Person, error)
	ListByState(ctx context.Context, state string) ([]*entity.Person, error)
}
