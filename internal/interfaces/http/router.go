package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/BancoSangre-api/internal/application/auth"
	"github.com/jhoicas/BancoSangre-api/internal/application/bloodbank"
	"github.com/jhoicas/BancoSangre-api/internal/application/usecase"
	"github.com/jhoicas/BancoSangre-api/internal/domain/entity"
	"github.com/jhoicas/BancoSangre-api/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	PersonUC   *usecase.PersonUseCase
	DonationUC *usecase.DonationUseCase
	StockUC    *bloodbank.StockUseCase
	SweepUC    *bloodbank.ExpirySweepUseCase
	ReportUC   *bloodbank.ReportUseCase
	JWTSecret  string
	Location   *time.Location // zona del banco para el barrido manual
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer // nil: sin /metrics
}

type handlers struct {
	auth      *AuthHandler
	persons   *PersonHandler
	donations *DonationHandler
	bloodBank *BloodBankHandler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(MetricsMiddleware(deps.Metrics))
	}
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	registerRoutes(app, handlers{
		auth:      NewAuthHandler(deps.AuthUC),
		persons:   NewPersonHandler(deps.PersonUC),
		donations: NewDonationHandler(deps.DonationUC),
		bloodBank: NewBloodBankHandler(deps.StockUC, deps.SweepUC, deps.ReportUC, deps.Location),
	}, deps.JWTSecret)
}

func registerRoutes(app *fiber.App, h handlers, jwtSecret string) {
	api := app.Group("/api")

	staff := RequireRole(entity.RoleAdmin, entity.RoleTecnico, entity.RoleRecepcion)
	lab := RequireRole(entity.RoleAdmin, entity.RoleTecnico)
	admin := RequireRole(entity.RoleAdmin)

	// Auth: login público, alta de usuarios solo admin
	authGroup := api.Group("/auth")
	authGroup.Post("/login", h.auth.Login)
	authGroup.Post("/users", AuthMiddleware(jwtSecret), admin, h.auth.CreateUser)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(jwtSecret), staff)

	// Persons: las rutas fijas van antes de /:id
	persons := protected.Group("/persons")
	persons.Get("/search", h.persons.Search)
	persons.Get("/blood-type/:type", h.persons.ByBloodType)
	persons.Get("/document/:number", h.persons.ByDocument)
	persons.Get("/city/:city", h.persons.ByCity)
	persons.Get("/state/:state", h.persons.ByState)
	persons.Get("/postal-code/:cep", h.persons.PostalCode)
	persons.Get("/", h.persons.List)
	persons.Post("/", h.persons.Create)
	persons.Get("/:id", h.persons.GetByID)
	persons.Put("/:id", h.persons.Update)
	persons.Delete("/:id", admin, h.persons.Delete)

	// Donations
	donations := protected.Group("/donations")
	donations.Get("/document/:number", h.donations.ByDonorDocument)
	donations.Get("/status/:status", h.donations.ByStatus)
	donations.Get("/donor/:number/eligibility", h.donations.Eligibility)
	donations.Get("/", h.donations.List)
	donations.Post("/", h.donations.Register)
	donations.Get("/:id", h.donations.GetByID)
	donations.Put("/:id", lab, h.donations.Update)
	donations.Delete("/:id", admin, h.donations.Delete)

	// Blood bank
	bank := protected.Group("/blood-bank")
	bank.Get("/stock", h.bloodBank.Stock)
	bank.Get("/stock/low", h.bloodBank.LowStock)
	bank.Put("/stock/:type/minimum", admin, h.bloodBank.SetMinimum)
	bank.Post("/stock/:type/withdraw", lab, h.bloodBank.Withdraw)
	bank.Get("/statistics", h.bloodBank.Statistics)
	bank.Get("/alerts", h.bloodBank.Alerts)
	bank.Get("/report.pdf", h.bloodBank.Report)
	bank.Post("/donations/:id/stock", lab, h.bloodBank.AddDonation)
	bank.Post("/expiry-sweep", admin, h.bloodBank.RunSweep)
	bank.Get("/donors/compatible/:type", h.bloodBank.CompatibleDonors)
	bank.Get("/compatibility/:type", h.bloodBank.Compatibility)
}
