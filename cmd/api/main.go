package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/swaggo/swag"

	"github.com/jhoicas/BancoSangre-api/docs"
	"github.com/jhoicas/BancoSangre-api/internal/application/auth"
	"github.com/jhoicas/BancoSangre-api/internal/application/bloodbank"
	"github.com/jhoicas/BancoSangre-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/BancoSangre-api/internal/infrastructure/pdf"
	"github.com/jhoicas/BancoSangre-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/BancoSangre-api/internal/infrastructure/redis"
	"github.com/jhoicas/BancoSangre-api/internal/infrastructure/scheduler"
	"github.com/jhoicas/BancoSangre-api/internal/infrastructure/viacep"
	httpRouter "github.com/jhoicas/BancoSangre-api/internal/interfaces/http"
	"github.com/jhoicas/BancoSangre-api/pkg/config"
	"github.com/jhoicas/BancoSangre-api/pkg/logger"
	"github.com/jhoicas/BancoSangre-api/pkg/metrics"
)

// @title        BancoSangre API
// @version      1.0
// @description  API del banco de sangre: personas, donaciones, stock por tipo sanguíneo y alertas.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token>
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("timezone", cfg.App.Timezone).
		Msg("iniciando aplicación")

	loc, err := cfg.App.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Métricas sobre un registro propio, con las de runtime y proceso
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Redis es opcional: sin REDIS_URL el barrido corre sin lock entre réplicas
	var locker bloodbank.SweepLocker
	rdb, err := infraredis.New(ctx, cfg.Redis)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("redis no disponible, barrido sin lock")
	case rdb != nil:
		defer rdb.Close()
		locker = infraredis.NewLocker(rdb.Client)
	}

	userRepo := postgres.NewUserRepository(pool)
	personRepo := postgres.NewPersonRepository(pool)
	donationRepo := postgres.NewDonationRepository(pool)
	stockRepo := postgres.NewBloodStockRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	cepClient := viacep.NewClient(cfg.ViaCEP, m, log)
	personUC := usecase.NewPersonUseCase(personRepo, txRunner, cepClient)
	donationUC := usecase.NewDonationUseCase(donationRepo, personRepo, usecase.DonationConfig{
		ShelfLifeDays: cfg.BloodBank.ShelfLifeDays,
		BagVolumeML:   cfg.BloodBank.BagVolumeML,
	}, m, log)

	policy := bloodbank.Policy{
		BagVolumeML:    cfg.BloodBank.BagVolumeML,
		ShelfLifeDays:  cfg.BloodBank.ShelfLifeDays,
		DefaultMinimum: cfg.BloodBank.MinimumStock,
	}
	stockUC := bloodbank.NewStockUseCase(txRunner, donationRepo, stockRepo, personUC, policy, m, log)
	sweepUC := bloodbank.NewExpirySweepUseCase(txRunner, locker, m, log)
	reportUC := bloodbank.NewReportUseCase(stockUC, infrapdf.NewMarotoPDFGenerator(), cfg.BloodBank.ReportTitle)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if created, err := authUC.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Error().Err(err).Msg("crear admin inicial")
	} else if created {
		log.Info().Str("email", cfg.Admin.Email).Msg("admin inicial creado")
	}

	sweepScheduler := scheduler.NewDaily(sweepUC, cfg.BloodBank.SweepHour, loc, log)
	sweepScheduler.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	// Swagger UI en local: http://localhost:<port>/docs
	docs.SwaggerInfo.Host = cfg.HTTP.Addr()
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "BancoSangre API",
		}))
	}
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc()
		if err != nil {
			return c.SendStatus(fiber.StatusNotFound)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(doc)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{"status": "ok", "service": cfg.App.Name}
		if err := pool.Ping(c.UserContext()); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		if rdb != nil {
			if err := rdb.Health(c.UserContext()); err != nil {
				status["redis"] = err.Error()
			}
		}
		return c.JSON(status)
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		PersonUC:   personUC,
		DonationUC: donationUC,
		StockUC:    stockUC,
		SweepUC:    sweepUC,
		ReportUC:   reportUC,
		JWTSecret:  cfg.JWT.Secret,
		Location:   loc,
		Metrics:    m,
		Gatherer:   registry,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	sweepScheduler.Stop()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
