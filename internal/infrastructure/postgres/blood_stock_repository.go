package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
	"github.com/jhoicas/BancoSangre-api/internal/domain/entity"
	"github.com/jhoicas/BancoSangre-api/internal/domain/repository"
)

var _ repository.BloodStockRepository = (*BloodStockRepo)(nil)

// BloodStockRepo stock de bolsas por tipo. Las filas se crean en el primer ingreso.
type BloodStockRepo struct {
	db Querier
}

// NewBloodStockRepository construye el repo sobre un pool o una tx.
func NewBloodStockRepository(db Querier) *BloodStockRepo {
	return &BloodStockRepo{db: db}
}

func scanStock(row pgx.Row) (*entity.BloodStock, error) {
	var s entity.BloodStock
	var t string
	if err := row.Scan(&t, &s.Quantity, &s.Minimum, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.BloodType = blood.Type(t)
	return &s, nil
}

// Get fila de un tipo; (nil, nil) si no existe.
func (r *BloodStockRepo) Get(ctx context.Context, bloodType blood.Type) (*entity.BloodStock, error) {
	s, err := scanStock(r.db.QueryRow(ctx,
		`SELECT blood_type, quantity, minimum, updated_at FROM blood_stock WHERE blood_type = $1`, string(bloodType)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get blood stock: %w", err)
	}
	return s, nil
}

// List todas las filas existentes.
func (r *BloodStockRepo) List(ctx context.Context) ([]*entity.BloodStock, error) {
	rows, err := r.db.Query(ctx, `SELECT blood_type, quantity, minimum, updated_at FROM blood_stock ORDER BY blood_type`)
	if err != nil {
		return nil, fmt.Errorf("list blood stock: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.BloodStock, 0, len(blood.All()))
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("list blood stock scan: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Increment upsert atómico: la suma la hace Postgres, sin leer-modificar-escribir.
func (r *BloodStockRepo) Increment(ctx context.Context, bloodType blood.Type, bags, minimum int) (int, error) {
	var quantity int
	err := r.db.QueryRow(ctx, `
		INSERT INTO blood_stock (blood_type, quantity, minimum, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (blood_type) DO UPDATE
		SET quantity = blood_stock.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING quantity`,
		string(bloodType), bags, minimum,
	).Scan(&quantity)
	if err != nil {
		return 0, fmt.Errorf("increment blood stock: %w", err)
	}
	return quantity, nil
}

// Decrement resta solo si alcanza; ok=false si no hay fila o la cantidad es menor que bags.
func (r *BloodStockRepo) Decrement(ctx context.Context, bloodType blood.Type, bags int) (int, bool, error) {
	var quantity int
	err := r.db.QueryRow(ctx, `
		UPDATE blood_stock SET quantity = quantity - $2, updated_at = now()
		WHERE blood_type = $1 AND quantity >= $2
		RETURNING quantity`,
		string(bloodType), bags,
	).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("decrement blood stock: %w", err)
	}
	return quantity, true, nil
}

// SetMinimum cambia el umbral de alerta (crea la fila con cantidad 0 si no existe).
func (r *BloodStockRepo) SetMinimum(ctx context.Context, bloodType blood.Type, minimum int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO blood_stock (blood_type, quantity, minimum, updated_at)
		VALUES ($1, 0, $2, now())
		ON CONFLICT (blood_type) DO UPDATE SET minimum = EXCLUDED.minimum, updated_at = now()`,
		string(bloodType), minimum)
	if err != nil {
		return fmt.Errorf("set blood stock minimum: %w", err)
	}
	return nil
}

// SumQuantity total de bolsas en stock.
func (r *BloodStockRepo) SumQuantity(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM blood_stock`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum blood stock: %w", err)
	}
	return total, nil
}
