package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/BancoSangre-api/internal/domain"
	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
	"github.com/jhoicas/BancoSangre-api/internal/domain/entity"
	"github.com/jhoicas/BancoSangre-api/internal/domain/repository"
	"github.com/jhoicas/BancoSangre-api/pkg/textnorm"
)

var _ repository.PersonRepository = (*PersonRepo)(nil)

// PersonRepo implementación de PersonRepository. Documentos y contactos viven en tablas
// propias; Create y Update escriben varias tablas y deben correr dentro de RunPersons.
type PersonRepo struct {
	db Querier
}

// NewPersonRepository construye el repo sobre un pool o una tx.
func NewPersonRepository(db Querier) *PersonRepo {
	return &PersonRepo{db: db}
}

const personSelect = `
	SELECT p.id, p.name, p.postal_code, p.street, p.number, p.complement, p.district,
	       p.city, p.state, p.country, COALESCE(p.blood_type, ''), p.mother_name, p.father_name,
	       p.created_at, p.updated_at,
	       COALESCE((SELECT json_agg(json_build_object('type', d.type, 'number', d.number) ORDER BY d.type)
	                 FROM person_documents d WHERE d.person_id = p.id), '[]'::json),
	       COALESCE((SELECT json_agg(json_build_object('type', c.type, 'value', c.value) ORDER BY c.id)
	                 FROM person_contacts c WHERE c.person_id = p.id), '[]'::json)
	FROM persons p`

func scanPerson(row pgx.Row) (*entity.Person, error) {
	var p entity.Person
	var bloodType string
	err := row.Scan(
		&p.ID, &p.Name, &p.Address.PostalCode, &p.Address.Street, &p.Address.Number, &p.Address.Complement,
		&p.Address.District, &p.Address.City, &p.Address.State, &p.Address.Country, &bloodType,
		&p.Filiation.MotherName, &p.Filiation.FatherName, &p.CreatedAt, &p.UpdatedAt,
		&p.Documents, &p.Contacts,
	)
	if err != nil {
		return nil, err
	}
	p.BloodType = blood.Type(bloodType)
	return &p, nil
}

func (r *PersonRepo) queryPersons(ctx context.Context, op, where string, args ...any) ([]*entity.Person, error) {
	rows, err := r.db.Query(ctx, personSelect+" "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	list := make([]*entity.Person, 0)
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

func (r *PersonRepo) getOne(ctx context.Context, op, where string, args ...any) (*entity.Person, error) {
	p, err := scanPerson(r.db.QueryRow(ctx, personSelect+" "+where, args...))
	if err != nil {
		if noRow(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Create inserta la persona con sus documentos y contactos.
func (r *PersonRepo) Create(ctx context.Context, p *entity.Person) error {
	query := `
		INSERT INTO persons (id, name, name_key, postal_code, street, number, complement, district,
			city, city_key, state, state_key, country, blood_type, mother_name, father_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NULLIF($14, ''), $15, $16, $17, $18)`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Name, textnorm.Fold(p.Name), p.Address.PostalCode, p.Address.Street, p.Address.Number,
		p.Address.Complement, p.Address.District, p.Address.City, textnorm.Fold(p.Address.City),
		p.Address.State, textnorm.FoldState(p.Address.State), p.Address.Country, string(p.BloodType),
		p.Filiation.MotherName, p.Filiation.FatherName, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert person: %w", err)
	}
	return r.insertChildren(ctx, p)
}

func (r *PersonRepo) insertChildren(ctx context.Context, p *entity.Person) error {
	for _, d := range p.Documents {
		_, err := r.db.Exec(ctx,
			`INSERT INTO person_documents (person_id, type, number) VALUES ($1, $2, $3)`,
			p.ID, d.Type, d.Number)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.Duplicate("person", "documents")
			}
			return fmt.Errorf("insert person document: %w", err)
		}
	}
	for _, c := range p.Contacts {
		_, err := r.db.Exec(ctx,
			`INSERT INTO person_contacts (person_id, type, value) VALUES ($1, $2, $3)`,
			p.ID, c.Type, c.Value)
		if err != nil {
			return fmt.Errorf("insert person contact: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una persona por ID.
func (r *PersonRepo) GetByID(ctx context.Context, id string) (*entity.Person, error) {
	return r.getOne(ctx, "get person", "WHERE p.id = $1", id)
}

// GetByDocument obtiene la persona dueña del número de documento (cualquier tipo).
func (r *PersonRepo) GetByDocument(ctx context.Context, number string) (*entity.Person, error) {
	return r.getOne(ctx, "get person by document",
		"WHERE p.id = (SELECT person_id FROM person_documents WHERE number = $1)", number)
}

// Update reemplaza la fila y recrea documentos y contactos.
func (r *PersonRepo) Update(ctx context.Context, p *entity.Person) error {
	query := `
		UPDATE persons SET name = $2, name_key = $3, postal_code = $4, street = $5, number = $6,
			complement = $7, district = $8, city = $9, city_key = $10, state = $11, state_key = $12,
			country = $13, blood_type = NULLIF($14, ''), mother_name = $15, father_name = $16, updated_at = $17
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		p.ID, p.Name, textnorm.Fold(p.Name), p.Address.PostalCode, p.Address.Street, p.Address.Number,
		p.Address.Complement, p.Address.District, p.Address.City, textnorm.Fold(p.Address.City),
		p.Address.State, textnorm.FoldState(p.Address.State), p.Address.Country, string(p.BloodType),
		p.Filiation.MotherName, p.Filiation.FatherName, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("person", p.ID)
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM person_documents WHERE person_id = $1`, p.ID); err != nil {
		return fmt.Errorf("delete person documents: %w", err)
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM person_contacts WHERE person_id = $1`, p.ID); err != nil {
		return fmt.Errorf("delete person contacts: %w", err)
	}
	return r.insertChildren(ctx, p)
}

// Delete elimina la persona; InvalidState si tiene donaciones (FK RESTRICT).
func (r *PersonRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM persons WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.InvalidState("person", id, "tiene donaciones registradas")
		}
		return fmt.Errorf("delete person: %w", err)
	}
	return nil
}

// List lista personas ordenadas por nombre.
func (r *PersonRepo) List(ctx context.Context, limit, offset int) ([]*entity.Person, error) {
	return r.queryPersons(ctx, "list persons", "ORDER BY p.name_key, p.id LIMIT $1 OFFSET $2", limit, offset)
}

// Count total de personas.
func (r *PersonRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM persons`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count persons: %w", err)
	}
	return n, nil
}

// SearchByName name ya viene plegado (textnorm.Fold).
func (r *PersonRepo) SearchByName(ctx context.Context, name string) ([]*entity.Person, error) {
	return r.queryPersons(ctx, "search persons", "WHERE p.name_key LIKE $1 ORDER BY p.name_key", likePattern(name))
}

// ListByBloodTypes personas con tipo en types.
func (r *PersonRepo) ListByBloodTypes(ctx context.Context, types []blood.Type) ([]*entity.Person, error) {
	if len(types) == 0 {
		return []*entity.Person{}, nil
	}
	symbols := make([]string, len(types))
	for i, t := range types {
		symbols[i] = string(t)
	}
	return r.queryPersons(ctx, "list persons by blood type",
		"WHERE p.blood_type = ANY($1) ORDER BY p.blood_type, p.name_key", symbols)
}

// ListByCity city ya viene plegado.
func (r *PersonRepo) ListByCity(ctx context.Context, city string) ([]*entity.Person, error) {
	return r.queryPersons(ctx, "list persons by city", "WHERE p.city_key = $1 ORDER BY p.name_key", city)
}

// ListByState state en mayúsculas sin tildes.
func (r *PersonRepo) ListByState(ctx context.Context, state string) ([]*entity.Person, error) {
	return r.queryPersons(ctx, "list persons by state", "WHERE p.state_key = $1 ORDER BY p.name_key", state)
}
