package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/jhoicas/BancoSangre-api/internal/application/dto"
	"github.com/jhoicas/BancoSangre-api/internal/application/usecase"
	"github.com/jhoicas/BancoSangre-api/internal/domain"
	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
	"github.com/jhoicas/BancoSangre-api/internal/domain/entity"
)

func personRequest(name string, t blood.Type, cpf string) dto.PersonRequest {
	return dto.PersonRequest{
		Name: name,
		Address: &dto.AddressDTO{
			PostalCode: "01310-100",
			Street:     "Avenida Paulista",
			Number:     "1000",
			District:   "Bela Vista",
			City:       "São Paulo",
			State:      "sp",
		},
		BloodType: t,
		Documents: []dto.DocumentDTO{{Type: "cpf", Number: cpf}},
		Filiation: &dto.FiliationDTO{MotherName: "Maria", FatherName: "José"},
		Contacts:  []dto.ContactDTO{{Type: "telefone", Value: "11 99999-0000"}},
	}
}

type PersonUseCaseSuite struct {
	suite.Suite
	ctx  context.Context
	repo *memPersons
	tx   *memPersonTx
	cep  *fakeCEP
	uc   *usecase.PersonUseCase
}

func TestPersonUseCaseSuite(t *testing.T) {
	suite.Run(t, new(PersonUseCaseSuite))
}

func (s *PersonUseCaseSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = newMemPersons()
	s.tx = &memPersonTx{repo: s.repo}
	s.cep = &fakeCEP{addrs: map[string]entity.Address{
		"20040-020": {
			PostalCode: "20040-020",
			Street:     "Praça Pio X",
			District:   "Centro",
			City:       "Rio de Janeiro",
			State:      "RJ",
		},
	}}
	s.uc = usecase.NewPersonUseCase(s.repo, s.tx, s.cep)
}

func (s *PersonUseCaseSuite) TestCreate_PersisteYNormaliza() {
	out, err := s.uc.Create(s.ctx, personRequest("  Ana Souza ", blood.ONegative, "111"))
	s.Require().NoError(err)

	s.NotEmpty(out.ID)
	s.Equal("Ana Souza", out.Name)
	s.Equal("SP", out.Address.State)
	s.Equal(entity.DefaultCountry, out.Address.Country)
	s.Equal("São Paulo/SP", out.Location)
	s.Equal("CPF", out.Documents[0].Type)
	s.Equal(1, s.tx.calls, "create corre en una transacción")

	stored, err := s.repo.GetByID(s.ctx, out.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stored)
	s.Equal(blood.ONegative, stored.BloodType)
}

func (s *PersonUseCaseSuite) TestCreate_CEPSinGuion() {
	in := personRequest("Ana Souza", blood.APositive, "111")
	in.Address.PostalCode = "01310100"
	out, err := s.uc.Create(s.ctx, in)
	s.Require().NoError(err)
	s.Equal("01310-100", out.Address.PostalCode)
}

func (s *PersonUseCaseSuite) TestCreate_AutocompletaDireccionDesdeCEP() {
	in := personRequest("Bruno Lima", blood.BPositive, "222")
	in.Address = &dto.AddressDTO{PostalCode: "20040-020", Number: "10"}

	out, err := s.uc.Create(s.ctx, in)
	s.Require().NoError(err)
	s.Equal("Praça Pio X", out.Address.Street)
	s.Equal("Centro", out.Address.District)
	s.Equal("Rio de Janeiro", out.Address.City)
	s.Equal("RJ", out.Address.State)
	s.Equal(1, s.cep.calls)
}

func (s *PersonUseCaseSuite) TestCreate_ClienteTienePrioridadSobreCEP() {
	in := personRequest("Bruno Lima", blood.BPositive, "222")
	in.Address = &dto.AddressDTO{PostalCode: "20040-020", Number: "10", City: "Niterói"}

	out, err := s.uc.Create(s.ctx, in)
	s.Require().NoError(err)
	s.Equal("Niterói", out.Address.City)
	s.Equal("Centro", out.Address.District)
}

func (s *PersonUseCaseSuite) TestCreate_CEPDesconocidoYDireccionIncompleta() {
	in := personRequest("Bruno Lima", blood.BPositive, "222")
	in.Address = &dto.AddressDTO{PostalCode: "99999-999", Number: "10"}

	_, err := s.uc.Create(s.ctx, in)
	s.Require().ErrorIs(err, domain.ErrValidation)
	de, ok := domain.AsError(err)
	s.Require().True(ok)
	s.Equal("address.street", de.Field)
	s.Zero(s.tx.calls)
}

func (s *PersonUseCaseSuite) TestCreate_Validaciones() {
	cases := []struct {
		name  string
		edit  func(*dto.PersonRequest)
		field string
	}{
		{"nombre corto", func(r *dto.PersonRequest) { r.Name = "A" }, "name"},
		{"sin dirección", func(r *dto.PersonRequest) { r.Address = nil }, "address"},
		{"sin filiación", func(r *dto.PersonRequest) { r.Filiation = nil }, "filiation"},
		{"cep inválido", func(r *dto.PersonRequest) { r.Address.PostalCode = "1234" }, "address.postal_code"},
		{"uf de 3 letras", func(r *dto.PersonRequest) { r.Address.State = "SPX" }, "address.state"},
		{"sin número", func(r *dto.PersonRequest) { r.Address.Number = "" }, "address.number"},
		{"documento repetido", func(r *dto.PersonRequest) {
			r.Documents = append(r.Documents, dto.DocumentDTO{Type: "CPF", Number: "999"})
		}, "documents"},
		{"contacto vacío", func(r *dto.PersonRequest) { r.Contacts = []dto.ContactDTO{{Type: "email"}} }, "contacts"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			in := personRequest("Carla Dias", blood.ABPositive, "333")
			tc.edit(&in)
			_, err := s.uc.Create(s.ctx, in)
			s.Require().ErrorIs(err, domain.ErrValidation)
			de, _ := domain.AsError(err)
			s.Equal(tc.field, de.Field)
		})
	}
}

func (s *PersonUseCaseSuite) TestCreate_TipoSanguineoInvalido() {
	_, err := s.uc.Create(s.ctx, personRequest("Carla Dias", blood.Type("C+"), "333"))
	s.ErrorIs(err, domain.ErrInvalidArgument)
}

func (s *PersonUseCaseSuite) TestCreate_SinTipoSanguineoPermitido() {
	out, err := s.uc.Create(s.ctx, personRequest("Carla Dias", "", "333"))
	s.Require().NoError(err)
	s.Empty(out.BloodType)
}

func (s *PersonUseCaseSuite) TestCreate_DocumentoDuplicado() {
	_, err := s.uc.Create(s.ctx, personRequest("Ana Souza", blood.ONegative, "111"))
	s.Require().NoError(err)
	_, err = s.uc.Create(s.ctx, personRequest("Otra Ana", blood.ONegative, "111"))
	s.ErrorIs(err, domain.ErrDuplicate)
}

func (s *PersonUseCaseSuite) TestUpdate_ConservaIDyCreatedAt() {
	created, err := s.uc.Create(s.ctx, personRequest("Ana Souza", blood.ONegative, "111"))
	s.Require().NoError(err)

	in := personRequest("Ana Souza Lima", blood.OPositive, "111")
	out, err := s.uc.Update(s.ctx, created.ID, in)
	s.Require().NoError(err)
	s.Equal(created.ID, out.ID)
	s.Equal(created.CreatedAt, out.CreatedAt)
	s.Equal(blood.OPositive, out.BloodType)
	s.False(out.UpdatedAt.Before(created.UpdatedAt))
}

func (s *PersonUseCaseSuite) TestUpdate_NoExiste() {
	_, err := s.uc.Update(s.ctx, "nope", personRequest("Ana Souza", blood.ONegative, "111"))
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *PersonUseCaseSuite) TestGetByID_NoExiste() {
	_, err := s.uc.GetByID(s.ctx, "nope")
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *PersonUseCaseSuite) TestDelete() {
	created, err := s.uc.Create(s.ctx, personRequest("Ana Souza", blood.ONegative, "111"))
	s.Require().NoError(err)

	s.Require().NoError(s.uc.Delete(s.ctx, created.ID))
	_, err = s.uc.GetByID(s.ctx, created.ID)
	s.ErrorIs(err, domain.ErrNotFound)
	s.ErrorIs(s.uc.Delete(s.ctx, created.ID), domain.ErrNotFound)
}

func (s *PersonUseCaseSuite) TestDelete_ConDonacionesFalla() {
	created, err := s.uc.Create(s.ctx, personRequest("Ana Souza", blood.ONegative, "111"))
	s.Require().NoError(err)
	s.repo.donors[created.ID] = true

	s.ErrorIs(s.uc.Delete(s.ctx, created.ID), domain.ErrInvalidState)
}

func (s *PersonUseCaseSuite) TestList_Paginacion() {
	for i, name := range []string{"Ana", "Bruno", "Carla"} {
		_, err := s.uc.Create(s.ctx, personRequest(name+" Silva", blood.APositive, string(rune('1'+i))))
		s.Require().NoError(err)
	}
	out, err := s.uc.List(s.ctx, dto.PageRequest{Limit: 2})
	s.Require().NoError(err)
	s.Len(out.Items, 2)
	s.Equal(3, out.Page.Total)

	out, err = s.uc.List(s.ctx, dto.PageRequest{Limit: 2, Offset: 2})
	s.Require().NoError(err)
	s.Len(out.Items, 1)
	s.Equal("Carla Silva", out.Items[0].Name)
}

func (s *PersonUseCaseSuite) TestSearchByName_SinTildesNiMayusculas() {
	_, err := s.uc.Create(s.ctx, personRequest("João Conceição", blood.APositive, "1"))
	s.Require().NoError(err)
	_, err = s.uc.Create(s.ctx, personRequest("Maria Souza", blood.APositive, "2"))
	s.Require().NoError(err)

	out, err := s.uc.SearchByName(s.ctx, "CONCEICAO")
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal("João Conceição", out[0].Name)

	_, err = s.uc.SearchByName(s.ctx, "   ")
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *PersonUseCaseSuite) TestListByBloodType() {
	_, err := s.uc.Create(s.ctx, personRequest("Ana Souza", blood.ONegative, "1"))
	s.Require().NoError(err)
	_, err = s.uc.Create(s.ctx, personRequest("Bruno Lima", blood.APositive, "2"))
	s.Require().NoError(err)

	out, err := s.uc.ListByBloodType(s.ctx, "o-")
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal("Ana Souza", out[0].Name)

	out, err = s.uc.ListByBloodType(s.ctx, "X+")
	s.Require().NoError(err)
	s.NotNil(out)
	s.Empty(out)
}

func (s *PersonUseCaseSuite) TestGetByDocument() {
	created, err := s.uc.Create(s.ctx, personRequest("Ana Souza", blood.ONegative, "123.456.789-00"))
	s.Require().NoError(err)

	out, err := s.uc.GetByDocument(s.ctx, " 123.456.789-00 ")
	s.Require().NoError(err)
	s.Equal(created.ID, out.ID)

	_, err = s.uc.GetByDocument(s.ctx, "000")
	s.ErrorIs(err, domain.ErrNotFound)
	_, err = s.uc.GetByDocument(s.ctx, "")
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *PersonUseCaseSuite) TestListByCityYState() {
	_, err := s.uc.Create(s.ctx, personRequest("Ana Souza", blood.ONegative, "1"))
	s.Require().NoError(err)

	byCity, err := s.uc.ListByCity(s.ctx, "sao paulo")
	s.Require().NoError(err)
	s.Len(byCity, 1)

	byState, err := s.uc.ListByState(s.ctx, "Sp")
	s.Require().NoError(err)
	s.Len(byState, 1)

	none, err := s.uc.ListByState(s.ctx, "RJ")
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *PersonUseCaseSuite) TestLookupPostalCode() {
	addr, err := s.uc.LookupPostalCode(s.ctx, "20040020")
	s.Require().NoError(err)
	s.Equal("Rio de Janeiro", addr.City)

	_, err = s.uc.LookupPostalCode(s.ctx, "abc")
	s.ErrorIs(err, domain.ErrValidation)

	_, err = s.uc.LookupPostalCode(s.ctx, "99999-999")
	s.ErrorIs(err, domain.ErrNotFound)
}

func TestLookupPostalCode_SinServicio(t *testing.T) {
	uc := usecase.NewPersonUseCase(newMemPersons(), &memPersonTx{}, nil)
	_, err := uc.LookupPostalCode(context.Background(), "01310-100")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestNormalizePostalCode(t *testing.T) {
	cases := map[string]struct {
		want string
		ok   bool
	}{
		"01310-100":  {"01310-100", true},
		"01310100":   {"01310-100", true},
		" 01310100 ": {"01310-100", true},
		"0131-0100":  {"", false},
		"013101000":  {"", false},
		"abcde-fgh":  {"", false},
		"":           {"", false},
	}
	for in, tc := range cases {
		got, ok := usecase.NormalizePostalCode(in)
		require.Equal(t, tc.ok, ok, in)
		assert.Equal(t, tc.want, got, in)
	}
}
