package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bancosangre"

// Metrics agrupa las métricas Prometheus de la aplicación.
type Metrics struct {
	DonationsRegistered prometheus.Counter
	DonationsStocked    prometheus.Counter
	DonationsExpired    prometheus.Counter
	BagsAdded           *prometheus.CounterVec
	BagsWithdrawn       *prometheus.CounterVec
	StockLevel          *prometheus.GaugeVec
	SweepRuns           *prometheus.CounterVec
	CEPLookups          *prometheus.CounterVec
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
}

// New crea y registra las métricas en reg. Con reg == nil usa el registro por defecto.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		DonationsRegistered: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "donations_registered_total",
			Help:      "Donaciones registradas.",
		}),
		DonationsStocked: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "donations_stocked_total",
			Help:      "Donaciones convertidas en bolsas de stock.",
		}),
		DonationsExpired: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "donations_expired_total",
			Help:      "Donaciones marcadas como vencidas por el barrido diario.",
		}),
		BagsAdded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_bags_added_total",
			Help:      "Bolsas ingresadas al stock por tipo sanguíneo.",
		}, []string{"blood_type"}),
		BagsWithdrawn: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_bags_withdrawn_total",
			Help:      "Bolsas retiradas del stock por tipo sanguíneo.",
		}, []string{"blood_type"}),
		StockLevel: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stock_bags",
			Help:      "Bolsas en stock tras la última modificación.",
		}, []string{"blood_type"}),
		SweepRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expiry_sweep_runs_total",
			Help:      "Ejecuciones del barrido de vencimiento por resultado.",
		}, []string{"result"}),
		CEPLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cep_lookups_total",
			Help:      "Consultas de CEP por resultado (cache, found, not_found, error).",
		}, []string{"result"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP en segundos.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// NewNop métricas sobre un registro propio, para tests y herramientas CLI.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
