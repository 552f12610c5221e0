package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/BancoSangre-api/internal/application/bloodbank"
	"github.com/jhoicas/BancoSangre-api/internal/application/usecase"
	"github.com/jhoicas/BancoSangre-api/internal/domain/repository"
)

var (
	_ bloodbank.TxRunner     = (*TxRunner)(nil)
	_ usecase.PersonTxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunBloodBank ejecuta fn con repos de donaciones y stock atados a la misma tx
// (paso de donación a stock, barrido de vencimientos).
func (r *TxRunner) RunBloodBank(ctx context.Context, fn func(
	donations repository.DonationRepository,
	stock repository.BloodStockRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewDonationRepository(tx), NewBloodStockRepository(tx))
	})
}

// RunPersons ejecuta fn con un repo de personas atado a la tx (persona + documentos + contactos).
func (r *TxRunner) RunPersons(ctx context.Context, fn func(persons repository.PersonRepository) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewPersonRepository(tx))
	})
}
