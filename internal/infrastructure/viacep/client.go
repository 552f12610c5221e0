// Package viacep adaptador de consulta de CEP contra la API pública ViaCEP.
// Un fallo del servicio nunca bloquea el registro de personas: se trata como "sin dirección".
package viacep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/jhoicas/BancoSangre-api/internal/application/usecase"
	"github.com/jhoicas/BancoSangre-api/internal/domain/entity"
	"github.com/jhoicas/BancoSangre-api/pkg/config"
	"github.com/jhoicas/BancoSangre-api/pkg/logger"
	"github.com/jhoicas/BancoSangre-api/pkg/metrics"
)

var _ usecase.PostalCodeLookup = (*Client)(nil)

var errNotFound = errors.New("viacep: cep no encontrado")

// Client consulta ViaCEP con cache LRU con TTL, rate limit y circuit breaker.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *expirable.LRU[string, entity.Address]
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	metrics    *metrics.Metrics
	log        *logger.Logger
}

// NewClient construye el adaptador desde la configuración.
func NewClient(cfg config.ViaCEPConfig, m *metrics.Metrics, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 1024
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	failures := uint32(cfg.BreakerFailures)
	if failures == 0 {
		failures = 5
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      expirable.NewLRU[string, entity.Address](cfg.CacheSize, nil, cfg.CacheTTL),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		metrics:    m,
		log:        log.Component("viacep"),
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "viacep",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Un cliente que abandona la petición no es una falla de ViaCEP
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cambio de estado del circuito")
		},
	})
	return c
}

type viaCEPResponse struct {
	CEP         string          `json:"cep"`
	Logradouro  string          `json:"logradouro"`
	Complemento string          `json:"complemento"`
	Bairro      string          `json:"bairro"`
	Localidade  string          `json:"localidade"`
	UF          string          `json:"uf"`
	Erro        json.RawMessage `json:"erro"` // true o "true" según la versión de la API
}

func (r viaCEPResponse) notFound() bool {
	s := strings.Trim(string(r.Erro), `"`)
	return s == "true"
}

// Lookup cep en formato 00000-000. found=false si no existe o el servicio falló.
func (c *Client) Lookup(ctx context.Context, cep string) (*entity.Address, bool) {
	if addr, ok := c.cache.Get(cep); ok {
		c.metrics.CEPLookups.WithLabelValues("cache").Inc()
		return &addr, true
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		addr, err := c.fetch(ctx, cep)
		if errors.Is(err, errNotFound) {
			// un CEP inexistente no es un fallo del servicio
			return nil, nil
		}
		return addr, err
	})
	if err != nil {
		c.metrics.CEPLookups.WithLabelValues("error").Inc()
		c.log.Warn().Err(err).Str("cep", cep).Msg("consulta de CEP fallida")
		return nil, false
	}
	addr, _ := res.(*entity.Address)
	if addr == nil {
		c.metrics.CEPLookups.WithLabelValues("not_found").Inc()
		return nil, false
	}
	c.metrics.CEPLookups.WithLabelValues("found").Inc()
	c.cache.Add(cep, *addr)
	return addr, true
}

func (c *Client) fetch(ctx context.Context, cep string) (*entity.Address, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("viacep: rate limit: %w", err)
	}
	url := fmt.Sprintf("%s/%s/json/", c.baseURL, strings.ReplaceAll(cep, "-", ""))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("viacep: crear request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("viacep: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16*1024))
	if err != nil {
		return nil, fmt.Errorf("viacep: leer respuesta: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		return nil, errNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("viacep: HTTP %d", resp.StatusCode)
	}

	var out viaCEPResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("viacep: deserializar respuesta: %w", err)
	}
	if out.notFound() {
		return nil, errNotFound
	}
	return &entity.Address{
		PostalCode: cep,
		Street:     out.Logradouro,
		Complement: out.Complemento,
		District:   out.Bairro,
		City:       out.Localidade,
		State:      strings.ToUpper(out.UF),
		Country:    entity.DefaultCountry,
	}, nil
}
