package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/jhoicas/BancoSangre-api/internal/application/dto"
	"github.com/jhoicas/BancoSangre-api/internal/domain"
	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
	"github.com/jhoicas/BancoSangre-api/pkg/jwt"
)

const routesSecret = "routes-test-secret"

// ── Fakes ─────────────────────────────────────────────────────────────────────

type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if in.Password != "correcta" {
		return nil, domain.ErrUnauthorized
	}
	return &dto.LoginResponse{Token: "tok", User: dto.UserResponse{Email: in.Email, Role: "admin"}}, nil
}

func (fakeAuth) CreateUser(_ context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	return &dto.UserResponse{ID: "u1", Email: in.Email, Role: in.Role}, nil
}

type fakePersons struct {
	lastSearch string
}

func (f *fakePersons) Create(_ context.Context, in dto.PersonRequest) (*dto.PersonResponse, error) {
	if in.Name == "" {
		return nil, domain.Validation("name", "requerido")
	}
	return &dto.PersonResponse{ID: "p1", Name: in.Name, BloodType: in.BloodType}, nil
}

func (f *fakePersons) GetByID(_ context.Context, id string) (*dto.PersonResponse, error) {
	if id != "p1" {
		return nil, domain.NotFound("person", id)
	}
	return &dto.PersonResponse{ID: "p1"}, nil
}

func (f *fakePersons) Update(_ context.Context, id string, in dto.PersonRequest) (*dto.PersonResponse, error) {
	return &dto.PersonResponse{ID: id, Name: in.Name}, nil
}

func (f *fakePersons) Delete(_ context.Context, id string) error {
	return domain.InvalidState("person", id, "tiene donaciones registradas")
}

func (f *fakePersons) List(_ context.Context, page dto.PageRequest) (*dto.PersonListResponse, error) {
	return &dto.PersonListResponse{Items: []dto.PersonResponse{}, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

func (f *fakePersons) SearchByName(_ context.Context, name string) ([]dto.PersonResponse, error) {
	f.lastSearch = name
	return []dto.PersonResponse{{ID: "p1", Name: name}}, nil
}

func (f *fakePersons) ListByBloodType(_ context.Context, raw string) ([]dto.PersonResponse, error) {
	if _, err := blood.Parse(raw); err != nil {
		return []dto.PersonResponse{}, nil
	}
	return []dto.PersonResponse{{ID: "p1"}}, nil
}

func (f *fakePersons) GetByDocument(_ context.Context, number string) (*dto.PersonResponse, error) {
	return nil, domain.NotFound("person", number)
}

func (f *fakePersons) ListByCity(context.Context, string) ([]dto.PersonResponse, error) {
	return []dto.PersonResponse{}, nil
}

func (f *fakePersons) ListByState(context.Context, string) ([]dto.PersonResponse, error) {
	return []dto.PersonResponse{}, nil
}

func (f *fakePersons) LookupPostalCode(_ context.Context, cep string) (*dto.AddressDTO, error) {
	return nil, domain.Validation("postal_code", "formato 00000-000")
}

type fakeDonations struct{}

func (fakeDonations) Register(context.Context, dto.RegisterDonationRequest) (*dto.DonationResponse, error) {
	return &dto.DonationResponse{ID: "d1", Status: "AVAILABLE"}, nil
}

func (fakeDonations) GetByID(_ context.Context, id string) (*dto.DonationResponse, error) {
	return &dto.DonationResponse{ID: id}, nil
}

func (fakeDonations) List(context.Context, dto.PageRequest) (*dto.DonationListResponse, error) {
	return &dto.DonationListResponse{Items: []dto.DonationResponse{}}, nil
}

func (fakeDonations) Update(_ context.Context, id string, _ dto.UpdateDonationRequest) (*dto.DonationResponse, error) {
	return &dto.DonationResponse{ID: id, Status: "EXPIRED"}, nil
}

func (fakeDonations) Delete(context.Context, string) error { return nil }

func (fakeDonations) ListByDonorDocument(context.Context, string) ([]dto.DonationResponse, error) {
	return []dto.DonationResponse{}, nil
}

func (fakeDonations) ListByStatus(context.Context, string) ([]dto.DonationResponse, error) {
	return []dto.DonationResponse{}, nil
}

func (fakeDonations) Eligibility(context.Context, string) (*dto.EligibilityResponse, error) {
	return &dto.EligibilityResponse{Eligible: true}, nil
}

type fakeStock struct {
	addErr error
}

func (f *fakeStock) AddDonationToStock(_ context.Context, id string) (*dto.AddToStockResponse, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	return &dto.AddToStockResponse{DonationID: id, BloodType: blood.ONegative, BagsAdded: 1, Quantity: 1}, nil
}

func (f *fakeStock) RemoveFromStock(_ context.Context, t blood.Type, bags int) (*dto.StockItemDTO, error) {
	return nil, domain.InsufficientStock(t.String(), 0, bags)
}

func (f *fakeStock) SetMinimum(_ context.Context, t blood.Type, minimum int) (*dto.StockItemDTO, error) {
	return &dto.StockItemDTO{BloodType: t, Minimum: minimum, Low: true}, nil
}

func (f *fakeStock) StockByType(context.Context) (*dto.StockResponse, error) {
	return &dto.StockResponse{Items: []dto.StockItemDTO{}}, nil
}

func (f *fakeStock) LowStock(context.Context) ([]dto.StockItemDTO, error) {
	return []dto.StockItemDTO{}, nil
}

func (f *fakeStock) Alerts(context.Context) (*dto.AlertsResponse, error) {
	return &dto.AlertsResponse{Situation: dto.SituationNormal}, nil
}

func (f *fakeStock) Statistics(context.Context) (*dto.StatisticsResponse, error) {
	return nil, errors.New("pool cerrado: detalle interno")
}

func (f *fakeStock) Compatibility(t blood.Type) (*dto.CompatibilityResponse, error) {
	donors, _ := blood.DonorsFor(t)
	recipients, _ := blood.RecipientsOf(t)
	return &dto.CompatibilityResponse{BloodType: t, CanReceiveFrom: donors, CanDonateTo: recipients}, nil
}

func (f *fakeStock) CompatibleDonors(context.Context, blood.Type) ([]dto.PersonResponse, error) {
	return []dto.PersonResponse{}, nil
}

type fakeSweep struct {
	today time.Time
}

func (f *fakeSweep) Run(_ context.Context, today time.Time) (*dto.SweepResponse, error) {
	f.today = today
	return &dto.SweepResponse{Date: today.Format("2006-01-02"), Expired: 2}, nil
}

type fakeReport struct{}

func (fakeReport) StockReportPDF(context.Context) ([]byte, error) {
	return []byte("%PDF-1.3 fake"), nil
}

// ── Suite ─────────────────────────────────────────────────────────────────────

type RoutesSuite struct {
	suite.Suite
	app     *fiber.App
	persons *fakePersons
	stock   *fakeStock
	sweep   *fakeSweep
}

func TestRoutesSuite(t *testing.T) {
	suite.Run(t, new(RoutesSuite))
}

func (s *RoutesSuite) SetupTest() {
	s.persons = &fakePersons{}
	s.stock = &fakeStock{}
	s.sweep = &fakeSweep{}

	sp, err := time.LoadLocation("America/Sao_Paulo")
	s.Require().NoError(err)
	bank := NewBloodBankHandler(s.stock, s.sweep, fakeReport{}, sp)
	// 01:00 UTC del 11 de junio es el 10 en São Paulo
	bank.now = func() time.Time { return time.Date(2025, 6, 11, 1, 0, 0, 0, time.UTC) }

	s.app = fiber.New()
	registerRoutes(s.app, handlers{
		auth:      NewAuthHandler(fakeAuth{}),
		persons:   NewPersonHandler(s.persons),
		donations: NewDonationHandler(fakeDonations{}),
		bloodBank: bank,
	}, routesSecret)
}

func (s *RoutesSuite) token(role string) string {
	tok, err := jwt.Generate(routesSecret, "u1", role, "test", 60)
	s.Require().NoError(err)
	return "Bearer " + tok
}

func (s *RoutesSuite) do(method, path, role, body string) (*http.Response, []byte) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", s.token(role))
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

func (s *RoutesSuite) decodeError(body []byte) dto.ErrorResponse {
	var e dto.ErrorResponse
	s.Require().NoError(json.Unmarshal(body, &e))
	return e
}

func (s *RoutesSuite) TestLoginEsPublico() {
	resp, _ := s.do(http.MethodPost, "/api/auth/login", "", `{"email":"a@b.c","password":"correcta"}`)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, body := s.do(http.MethodPost, "/api/auth/login", "", `{"email":"a@b.c","password":"mala"}`)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal("UNAUTHORIZED", s.decodeError(body).Code)
}

func (s *RoutesSuite) TestCrearUsuarioSoloAdmin() {
	body := `{"email":"t@b.c","password":"12345678","name":"T","role":"tecnico"}`
	resp, _ := s.do(http.MethodPost, "/api/auth/users", "tecnico", body)
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, "/api/auth/users", "admin", body)
	s.Equal(http.StatusCreated, resp.StatusCode)
}

func (s *RoutesSuite) TestRutasProtegidasRequierenToken() {
	resp, _ := s.do(http.MethodGet, "/api/persons", "", "")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *RoutesSuite) TestNotFoundIncluyeID() {
	resp, body := s.do(http.MethodGet, "/api/persons/xyz", "recepcion", "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
	e := s.decodeError(body)
	s.Equal("NOT_FOUND", e.Code)
	s.Equal("xyz", e.ID)
}

func (s *RoutesSuite) TestSearchNoCaeEnID() {
	resp, _ := s.do(http.MethodGet, "/api/persons/search?name=Jo%C3%A3o", "recepcion", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("João", s.persons.lastSearch)

	resp, body := s.do(http.MethodGet, "/api/persons/search", "recepcion", "")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("name", s.decodeError(body).Field)
}

func (s *RoutesSuite) TestCrearPersona_TipoSanguineoInvalidoEnBody() {
	resp, body := s.do(http.MethodPost, "/api/persons", "recepcion", `{"name":"Ana","blood_type":"X+"}`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("INVALID_ARGUMENT", s.decodeError(body).Code)

	resp, body = s.do(http.MethodPost, "/api/persons", "recepcion", `{"name":`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("INVALID_BODY", s.decodeError(body).Code)

	resp, body = s.do(http.MethodPost, "/api/persons", "recepcion", `{"name":""}`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	e := s.decodeError(body)
	s.Equal("VALIDATION", e.Code)
	s.Equal("name", e.Field)
}

func (s *RoutesSuite) TestDeletePersona() {
	resp, _ := s.do(http.MethodDelete, "/api/persons/p1", "recepcion", "")
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp, body := s.do(http.MethodDelete, "/api/persons/p1", "admin", "")
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal("INVALID_STATE", s.decodeError(body).Code)
}

func (s *RoutesSuite) TestPersonasPorTipoDesconocidoListaVacia() {
	resp, body := s.do(http.MethodGet, "/api/persons/blood-type/Z", "recepcion", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq(`[]`, string(body))
}

func (s *RoutesSuite) TestActualizarDonacionPorRol() {
	resp, _ := s.do(http.MethodPut, "/api/donations/d1", "recepcion", `{"status":"EXPIRED"}`)
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(http.MethodPut, "/api/donations/d1", "tecnico", `{"status":"EXPIRED"}`)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *RoutesSuite) TestElegibilidad() {
	resp, body := s.do(http.MethodGet, "/api/donations/donor/123/eligibility", "recepcion", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(body), `"eligible":true`)
}

func (s *RoutesSuite) TestAddDonationToStock_Errores() {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.NotFound("donation", "d1"), http.StatusNotFound, "NOT_FOUND"},
		{domain.InvalidState("donation", "d1", "ya fue usada"), http.StatusConflict, "INVALID_STATE"},
		{domain.InsufficientVolume("d1", "200"), http.StatusUnprocessableEntity, "INSUFFICIENT_VOLUME"},
	}
	for _, tc := range cases {
		s.stock.addErr = tc.err
		resp, body := s.do(http.MethodPost, "/api/blood-bank/donations/d1/stock", "tecnico", "")
		s.Equal(tc.status, resp.StatusCode, tc.code)
		s.Equal(tc.code, s.decodeError(body).Code)
	}

	s.stock.addErr = nil
	resp, _ := s.do(http.MethodPost, "/api/blood-bank/donations/d1/stock", "recepcion", "")
	s.Equal(http.StatusForbidden, resp.StatusCode)
	resp, _ = s.do(http.MethodPost, "/api/blood-bank/donations/d1/stock", "tecnico", "")
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *RoutesSuite) TestWithdraw_StockInsuficiente() {
	resp, body := s.do(http.MethodPost, "/api/blood-bank/stock/O-/withdraw", "tecnico", `{"bags":3}`)
	s.Equal(http.StatusConflict, resp.StatusCode)
	e := s.decodeError(body)
	s.Equal("INSUFFICIENT_STOCK", e.Code)
	s.Equal("O-", e.ID)
}

func (s *RoutesSuite) TestTipoEnRuta() {
	resp, body := s.do(http.MethodGet, "/api/blood-bank/compatibility/AB%2B", "recepcion", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	var out dto.CompatibilityResponse
	s.Require().NoError(json.Unmarshal(body, &out))
	s.Equal(blood.ABPositive, out.BloodType)
	s.Len(out.CanReceiveFrom, 8)

	resp, body = s.do(http.MethodGet, "/api/blood-bank/compatibility/C+", "recepcion", "")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	e := s.decodeError(body)
	s.Equal("INVALID_ARGUMENT", e.Code)
	s.Equal("blood_type", e.Field)
}

func (s *RoutesSuite) TestSetMinimumSoloAdmin() {
	resp, _ := s.do(http.MethodPut, "/api/blood-bank/stock/A-/minimum", "tecnico", `{"minimum":5}`)
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp, body := s.do(http.MethodPut, "/api/blood-bank/stock/A-/minimum", "admin", `{"minimum":5}`)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(body), `"minimum":5`)
}

func (s *RoutesSuite) TestErrorInternoNoExponeDetalle() {
	resp, body := s.do(http.MethodGet, "/api/blood-bank/statistics", "recepcion", "")
	s.Equal(http.StatusInternalServerError, resp.StatusCode)
	s.NotContains(string(body), "pool cerrado")
	s.Equal("INTERNAL", s.decodeError(body).Code)
}

func (s *RoutesSuite) TestBarridoManualUsaFechaLocal() {
	resp, _ := s.do(http.MethodPost, "/api/blood-bank/expiry-sweep", "tecnico", "")
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp, body := s.do(http.MethodPost, "/api/blood-bank/expiry-sweep", "admin", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("2025-06-10", s.sweep.today.Format("2006-01-02"))
	s.Contains(string(body), `"expired":2`)
}

func (s *RoutesSuite) TestReportePDF() {
	resp, body := s.do(http.MethodGet, "/api/blood-bank/report.pdf", "recepcion", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/pdf", resp.Header.Get("Content-Type"))
	s.True(strings.HasPrefix(string(body), "%PDF"))
}

func TestWriteError_SinTipoDeDominio(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return writeError(c, domain.ErrForbidden) })
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPageFromQuery_Limites(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return c.JSON(pageFromQuery(c)) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?limit=500&offset=-3", nil), -1)
	require.NoError(t, err)
	var page dto.PageRequest
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Equal(t, 100, page.Limit)
	assert.Equal(t, 0, page.Offset)
}
