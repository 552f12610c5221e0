package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/BancoSangre-api/internal/application/dto"
	"github.com/jhoicas/BancoSangre-api/internal/domain"
	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
	"github.com/jhoicas/BancoSangre-api/internal/domain/entity"
	"github.com/jhoicas/BancoSangre-api/internal/domain/repository"
	"github.com/jhoicas/BancoSangre-api/pkg/textnorm"
)

// PersonUseCase CRUD y búsquedas de personas (donantes).
type PersonUseCase struct {
	repo     repository.PersonRepository
	txRunner PersonTxRunner
	cep      PostalCodeLookup // opcional
}

// NewPersonUseCase construye el caso de uso. cep puede ser nil (sin autocompletar dirección).
func NewPersonUseCase(repo repository.PersonRepository, txRunner PersonTxRunner, cep PostalCodeLookup) *PersonUseCase {
	return &PersonUseCase{repo: repo, txRunner: txRunner, cep: cep}
}

// Create valida y persiste una persona con sus documentos y contactos.
// Los campos de dirección vacíos se completan con la consulta de CEP cuando está disponible.
func (uc *PersonUseCase) Create(ctx context.Context, in dto.PersonRequest) (*dto.PersonResponse, error) {
	person, err := uc.build(ctx, in)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	person.ID = uuid.New().String()
	person.CreatedAt = now
	person.UpdatedAt = now

	err = uc.txRunner.RunPersons(ctx, func(persons repository.PersonRepository) error {
		return persons.Create(ctx, person)
	})
	if err != nil {
		return nil, err
	}
	return ToPersonResponse(person), nil
}

// GetByID obtiene una persona; NotFound si no existe.
func (uc *PersonUseCase) GetByID(ctx context.Context, id string) (*dto.PersonResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("person", id)
	}
	return ToPersonResponse(p), nil
}

// Update reemplaza los datos de la persona (documentos y contactos incluidos).
func (uc *PersonUseCase) Update(ctx context.Context, id string, in dto.PersonRequest) (*dto.PersonResponse, error) {
	existing, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.NotFound("person", id)
	}
	person, err := uc.build(ctx, in)
	if err != nil {
		return nil, err
	}
	person.ID = existing.ID
	person.CreatedAt = existing.CreatedAt
	person.UpdatedAt = time.Now()

	err = uc.txRunner.RunPersons(ctx, func(persons repository.PersonRepository) error {
		return persons.Update(ctx, person)
	})
	if err != nil {
		return nil, err
	}
	return ToPersonResponse(person), nil
}

// Delete elimina una persona. InvalidState si tiene donaciones registradas.
func (uc *PersonUseCase) Delete(ctx context.Context, id string) error {
	existing, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.NotFound("person", id)
	}
	return uc.repo.Delete(ctx, id)
}

// List lista personas con paginación.
func (uc *PersonUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.PersonListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.PersonListResponse{
		Items: toPersonResponses(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// SearchByName búsqueda parcial, sin tildes ni mayúsculas.
func (uc *PersonUseCase) SearchByName(ctx context.Context, name string) ([]dto.PersonResponse, error) {
	key := textnorm.Fold(name)
	if key == "" {
		return nil, domain.Validation("name", "es requerido")
	}
	list, err := uc.repo.SearchByName(ctx, key)
	if err != nil {
		return nil, err
	}
	return toPersonResponses(list), nil
}

// ListByBloodType personas de un tipo. Un símbolo desconocido devuelve lista vacía.
func (uc *PersonUseCase) ListByBloodType(ctx context.Context, raw string) ([]dto.PersonResponse, error) {
	t, err := blood.Parse(raw)
	if err != nil {
		return []dto.PersonResponse{}, nil
	}
	return uc.FindByBloodTypes(ctx, []blood.Type{t})
}

// FindByBloodTypes personas cuyo tipo está en types.
func (uc *PersonUseCase) FindByBloodTypes(ctx context.Context, types []blood.Type) ([]dto.PersonResponse, error) {
	list, err := uc.repo.ListByBloodTypes(ctx, types)
	if err != nil {
		return nil, err
	}
	return toPersonResponses(list), nil
}

// GetByDocument persona por número de documento; NotFound si no existe.
func (uc *PersonUseCase) GetByDocument(ctx context.Context, number string) (*dto.PersonResponse, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, domain.Validation("document", "es requerido")
	}
	p, err := uc.repo.GetByDocument(ctx, number)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("person", number)
	}
	return ToPersonResponse(p), nil
}

// ListByCity personas de una ciudad (sin tildes ni mayúsculas).
func (uc *PersonUseCase) ListByCity(ctx context.Context, city string) ([]dto.PersonResponse, error) {
	list, err := uc.repo.ListByCity(ctx, textnorm.Fold(city))
	if err != nil {
		return nil, err
	}
	return toPersonResponses(list), nil
}

// ListByState personas de una UF.
func (uc *PersonUseCase) ListByState(ctx context.Context, state string) ([]dto.PersonResponse, error) {
	list, err := uc.repo.ListByState(ctx, textnorm.FoldState(state))
	if err != nil {
		return nil, err
	}
	return toPersonResponses(list), nil
}

// LookupPostalCode dirección de un CEP. Validation si el formato es inválido; NotFound si no hay dirección.
func (uc *PersonUseCase) LookupPostalCode(ctx context.Context, cep string) (*dto.AddressDTO, error) {
	normalized, ok := NormalizePostalCode(cep)
	if !ok {
		return nil, domain.Validation("postal_code", "formato 00000-000")
	}
	if uc.cep == nil {
		return nil, domain.NotFound("postal_code", normalized)
	}
	addr, found := uc.cep.Lookup(ctx, normalized)
	if !found {
		return nil, domain.NotFound("postal_code", normalized)
	}
	out := toAddressDTO(*addr)
	return &out, nil
}

// build valida la entrada y arma la entidad (sin ID ni timestamps).
func (uc *PersonUseCase) build(ctx context.Context, in dto.PersonRequest) (*entity.Person, error) {
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if in.Address == nil {
		return nil, domain.Validation("address", "es requerido")
	}
	if in.Filiation == nil {
		return nil, domain.Validation("filiation", "es requerido")
	}
	if in.BloodType != "" && !in.BloodType.Valid() {
		return nil, domain.InvalidArgument("blood_type", in.BloodType.String())
	}
	cep, ok := NormalizePostalCode(in.Address.PostalCode)
	if !ok {
		return nil, domain.Validation("address.postal_code", "formato 00000-000")
	}

	addr := entity.Address{
		PostalCode: cep,
		Street:     strings.TrimSpace(in.Address.Street),
		Number:     strings.TrimSpace(in.Address.Number),
		Complement: strings.TrimSpace(in.Address.Complement),
		District:   strings.TrimSpace(in.Address.District),
		City:       strings.TrimSpace(in.Address.City),
		State:      strings.ToUpper(strings.TrimSpace(in.Address.State)),
		Country:    strings.TrimSpace(in.Address.Country),
	}
	uc.completeAddress(ctx, &addr)
	if addr.Country == "" {
		addr.Country = entity.DefaultCountry
	}
	if err := validateAddress(addr); err != nil {
		return nil, err
	}

	docs, err := toDocuments(in.Documents)
	if err != nil {
		return nil, err
	}
	contacts, err := toContacts(in.Contacts)
	if err != nil {
		return nil, err
	}
	return &entity.Person{
		Name:      strings.TrimSpace(in.Name),
		Address:   addr,
		BloodType: in.BloodType,
		Documents: docs,
		Filiation: entity.Filiation{
			MotherName: strings.TrimSpace(in.Filiation.MotherName),
			FatherName: strings.TrimSpace(in.Filiation.FatherName),
		},
		Contacts: contacts,
	}, nil
}

// completeAddress rellena solo los campos vacíos; lo que envió el cliente tiene prioridad.
func (uc *PersonUseCase) completeAddress(ctx context.Context, a *entity.Address) {
	if uc.cep == nil || (a.Street != "" && a.District != "" && a.City != "" && a.State != "") {
		return
	}
	found, ok := uc.cep.Lookup(ctx, a.PostalCode)
	if !ok {
		return
	}
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&a.Street, found.Street)
	fill(&a.Complement, found.Complement)
	fill(&a.District, found.District)
	fill(&a.City, found.City)
	fill(&a.State, found.State)
}

// ToPersonResponse convierte la entidad en DTO de salida.
func ToPersonResponse(p *entity.Person) *dto.PersonResponse {
	if p == nil {
		return nil
	}
	out := &dto.PersonResponse{
		ID:          p.ID,
		Name:        p.Name,
		Address:     toAddressDTO(p.Address),
		FullAddress: p.Address.FullAddress(),
		Location:    p.Address.Location(),
		BloodType:   p.BloodType,
		Documents:   make([]dto.DocumentDTO, 0, len(p.Documents)),
		Filiation:   dto.FiliationDTO{MotherName: p.Filiation.MotherName, FatherName: p.Filiation.FatherName},
		Contacts:    make([]dto.ContactDTO, 0, len(p.Contacts)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, d := range p.Documents {
		out.Documents = append(out.Documents, dto.DocumentDTO{Type: d.Type, Number: d.Number})
	}
	for _, c := range p.Contacts {
		out.Contacts = append(out.Contacts, dto.ContactDTO{Type: c.Type, Value: c.Value})
	}
	return out
}

func toPersonResponses(list []*entity.Person) []dto.PersonResponse {
	out := make([]dto.PersonResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *ToPersonResponse(p))
	}
	return out
}

func toAddressDTO(a entity.Address) dto.AddressDTO {
	return dto.AddressDTO{
		PostalCode: a.PostalCode,
		Street:     a.Street,
		Number:     a.Number,
		Complement: a.Complement,
		District:   a.District,
		City:       a.City,
		State:      a.State,
		Country:    a.Country,
	}
}
