// seed_donors importa donantes desde el CSV del sistema anterior.
//
// Uso: go run ./cmd/seed_donors [ruta/donantes.csv] [latin1|utf8]
// Por defecto busca donantes.csv en el directorio actual y lo lee como ISO-8859-1.
// Usa la misma configuración que la API (DATABASE_URL, VIACEP_*): las direcciones
// incompletas se completan por CEP y los documentos duplicados se reportan y se omiten.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jhoicas/BancoSangre-api/internal/application/usecase"
	"github.com/jhoicas/BancoSangre-api/internal/domain"
	"github.com/jhoicas/BancoSangre-api/internal/infrastructure/postgres"
	"github.com/jhoicas/BancoSangre-api/internal/infrastructure/viacep"
	"github.com/jhoicas/BancoSangre-api/pkg/config"
	"github.com/jhoicas/BancoSangre-api/pkg/logger"
	"github.com/jhoicas/BancoSangre-api/pkg/metrics"
)

func main() {
	csvPath := "donantes.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	latin1 := true
	if len(os.Args) > 2 {
		latin1 = !strings.EqualFold(os.Args[2], "utf8")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: "seed_donors"})

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, rowErrs, err := parseDonors(f, latin1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}
	for _, e := range rowErrs {
		log.Warn().Err(e).Msg("fila omitida")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	cep := viacep.NewClient(cfg.ViaCEP, metrics.NewNop(), log)
	persons := usecase.NewPersonUseCase(postgres.NewPersonRepository(pool), postgres.NewTxRunner(pool), cep)

	created, skipped := 0, len(rowErrs)
	for _, r := range rows {
		_, err := persons.Create(ctx, r.person)
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidArgument):
			skipped++
			log.Warn().Err(err).Int("line", r.line).Str("name", r.person.Name).Msg("fila omitida")
		default:
			fmt.Fprintf(os.Stderr, "Línea %d: %v\n", r.line, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Importados %d donantes desde %s (%d omitidos)\n", created, csvPath, skipped)
}
