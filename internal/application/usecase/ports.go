package usecase

import (
	"context"

	"github.com/jhoicas/BancoSangre-api/internal/domain/entity"
	"github.com/jhoicas/BancoSangre-api/internal/domain/repository"
)

// PersonTxRunner ejecuta fn en una transacción: una persona se guarda junto con sus documentos y contactos.
type PersonTxRunner interface {
	RunPersons(ctx context.Context, fn func(persons repository.PersonRepository) error) error
}

// PostalCodeLookup consulta de CEP. found=false cuando no hay dirección (incluye fallos del servicio externo).
type PostalCodeLookup interface {
	Lookup(ctx context.Context, cep string) (addr *entity.Address, found bool)
}
