package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/BancoSangre-api/internal/domain"
	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
	"github.com/jhoicas/BancoSangre-api/internal/domain/entity"
	"github.com/jhoicas/BancoSangre-api/internal/domain/repository"
)

var _ repository.DonationRepository = (*DonationRepo)(nil)

// DonationRepo implementación de DonationRepository sobre PostgreSQL.
type DonationRepo struct {
	db Querier
}

// NewDonationRepository construye el repo sobre un pool o una tx.
func NewDonationRepository(db Querier) *DonationRepo {
	return &DonationRepo{db: db}
}

const donationColumns = `id, donor_id, blood_type, volume_ml, donated_at, expires_on, status, created_at, updated_at`

func scanDonation(row pgx.Row) (*entity.Donation, error) {
	var d entity.Donation
	var bloodType string
	err := row.Scan(&d.ID, &d.DonorID, &bloodType, &d.VolumeML, &d.DonatedAt, &d.ExpiresOn,
		&d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.BloodType = blood.Type(bloodType)
	return &d, nil
}

func (r *DonationRepo) queryDonations(ctx context.Context, op, query string, args ...any) ([]*entity.Donation, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	list := make([]*entity.Donation, 0)
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

func (r *DonationRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Donation, error) {
	d, err := scanDonation(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if noRow(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

// Create persiste una donación.
func (r *DonationRepo) Create(ctx context.Context, d *entity.Donation) error {
	query := `INSERT INTO donations (` + donationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, query,
		d.ID, d.DonorID, string(d.BloodType), d.VolumeML, d.DonatedAt, d.ExpiresOn, d.Status, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return domain.NotFound("person", d.DonorID)
		case isCheckViolation(err):
			return domain.Validation("donation", err.Error())
		case isNumericOutOfRange(err):
			return domain.Validation("volume_ml", "fuera de rango")
		}
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

// GetByID obtiene una donación.
func (r *DonationRepo) GetByID(ctx context.Context, id string) (*entity.Donation, error) {
	return r.getOne(ctx, "get donation", `SELECT `+donationColumns+` FROM donations WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila hasta el fin de la tx; dos pasos a stock concurrentes se serializan aquí.
func (r *DonationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Donation, error) {
	return r.getOne(ctx, "get donation for update",
		`SELECT `+donationColumns+` FROM donations WHERE id = $1 FOR UPDATE`, id)
}

// Update guarda volumen, estado y vencimiento solo si la fila sigue AVAILABLE.
// Si otra operación ya la pasó a USED o EXPIRED devuelve InvalidState y no toca nada.
func (r *DonationRepo) Update(ctx context.Context, d *entity.Donation) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE donations SET volume_ml = $2, expires_on = $3, status = $4, updated_at = $5
		WHERE id = $1 AND status = $6`,
		d.ID, d.VolumeML, d.ExpiresOn, d.Status, d.UpdatedAt, entity.DonationAvailable)
	if err != nil {
		if isNumericOutOfRange(err) {
			return domain.Validation("volume_ml", "fuera de rango")
		}
		return fmt.Errorf("update donation: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	current, err := r.GetByID(ctx, d.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return domain.NotFound("donation", d.ID)
	}
	return domain.InvalidState("donation", d.ID, "la donación está "+current.Status)
}

// UpdateStatus cambia solo el estado.
func (r *DonationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.db.Exec(ctx, `UPDATE donations SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update donation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("donation", id)
	}
	return nil
}

// Delete elimina una donación.
func (r *DonationRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM donations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete donation: %w", err)
	}
	return nil
}

// List donaciones más recientes primero.
func (r *DonationRepo) List(ctx context.Context, limit, offset int) ([]*entity.Donation, error) {
	return r.queryDonations(ctx, "list donations",
		`SELECT `+donationColumns+` FROM donations ORDER BY donated_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
}

// ListByDonor donaciones de un donante.
func (r *DonationRepo) ListByDonor(ctx context.Context, donorID string) ([]*entity.Donation, error) {
	return r.queryDonations(ctx, "list donations by donor",
		`SELECT `+donationColumns+` FROM donations WHERE donor_id = $1 ORDER BY donated_at DESC`, donorID)
}

// ListByStatus donaciones en un estado.
func (r *DonationRepo) ListByStatus(ctx context.Context, status string) ([]*entity.Donation, error) {
	return r.queryDonations(ctx, "list donations by status",
		`SELECT `+donationColumns+` FROM donations WHERE status = $1 ORDER BY expires_on, donated_at`, status)
}

// ListExpiredForUpdate donaciones AVAILABLE vencidas (expires_on < today), bloqueadas para el barrido.
func (r *DonationRepo) ListExpiredForUpdate(ctx context.Context, today time.Time) ([]*entity.Donation, error) {
	return r.queryDonations(ctx, "list expired donations",
		`SELECT `+donationColumns+` FROM donations
		 WHERE status = 'AVAILABLE' AND expires_on < $1::date
		 ORDER BY expires_on, id FOR UPDATE`, blood.CalendarDate(today))
}

// Count total de donaciones.
func (r *DonationRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM donations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count donations: %w", err)
	}
	return n, nil
}

// CountByStatus total de donaciones en un estado.
func (r *DonationRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM donations WHERE status = $1`, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("count donations by status: %w", err)
	}
	return n, nil
}

// CountAvailableByType donaciones AVAILABLE por tipo sanguíneo.
func (r *DonationRepo) CountAvailableByType(ctx context.Context) (map[blood.Type]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT blood_type, COUNT(*) FROM donations WHERE status = 'AVAILABLE' GROUP BY blood_type`)
	if err != nil {
		return nil, fmt.Errorf("count available by type: %w", err)
	}
	defer rows.Close()
	out := make(map[blood.Type]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("count available by type scan: %w", err)
		}
		out[blood.Type(t)] = n
	}
	return out, rows.Err()
}
