package bloodbank

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/BancoSangre-api/internal/application/dto"
	"github.com/jhoicas/BancoSangre-api/internal/domain"
	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
	"github.com/jhoicas/BancoSangre-api/internal/domain/entity"
	"github.com/jhoicas/BancoSangre-api/internal/domain/repository"
	"github.com/jhoicas/BancoSangre-api/pkg/logger"
	"github.com/jhoicas/BancoSangre-api/pkg/metrics"
)

// StockUseCase motor de stock del banco de sangre: paso de donaciones a bolsas,
// retiros, umbrales, consultas de stock bajo, estadísticas y compatibilidad.
type StockUseCase struct {
	txRunner  TxRunner
	donations repository.DonationRepository
	stock     repository.BloodStockRepository
	donors    DonorFinder
	policy    Policy
	metrics   *metrics.Metrics
	log       *logger.Logger
}

// NewStockUseCase construye el caso de uso. donations y stock son los repos sobre el pool
// (lecturas y operaciones de una sola sentencia); lo transaccional pasa por txRunner.
func NewStockUseCase(
	txRunner TxRunner,
	donations repository.DonationRepository,
	stock repository.BloodStockRepository,
	donors DonorFinder,
	policy Policy,
	m *metrics.Metrics,
	log *logger.Logger,
) *StockUseCase {
	return &StockUseCase{
		txRunner:  txRunner,
		donations: donations,
		stock:     stock,
		donors:    donors,
		policy:    policy.withDefaults(),
		metrics:   m,
		log:       log.Component("stock"),
	}
}

// AddDonationToStock convierte una donación AVAILABLE en bolsas y la marca USED, en una sola transacción.
// Errores: NotFound, InvalidState (no AVAILABLE), InsufficientVolume (0 bolsas). Ninguno deja cambios.
func (uc *StockUseCase) AddDonationToStock(ctx context.Context, donationID string) (*dto.AddToStockResponse, error) {
	if donationID == "" {
		return nil, domain.Validation("donation_id", "es requerido")
	}
	var out dto.AddToStockResponse
	err := uc.txRunner.RunBloodBank(ctx, func(
		donations repository.DonationRepository,
		stock repository.BloodStockRepository,
	) error {
		// Bloquea la donación: dos peticiones sobre la misma donación se serializan aquí
		d, err := donations.GetForUpdate(ctx, donationID)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.NotFound("donation", donationID)
		}
		if !d.IsAvailable() {
			return domain.InvalidState("donation", donationID, "la donación está "+d.Status)
		}
		bags := blood.VolumeToBags(d.VolumeML, uc.policy.BagVolumeML)
		if bags == 0 {
			return domain.InsufficientVolume(donationID, d.VolumeML.String())
		}
		quantity, err := stock.Increment(ctx, d.BloodType, bags, uc.policy.DefaultMinimum)
		if err != nil {
			return err
		}
		if err := donations.UpdateStatus(ctx, donationID, entity.DonationUsed); err != nil {
			return err
		}
		out = dto.AddToStockResponse{
			DonationID: donationID,
			BloodType:  d.BloodType,
			BagsAdded:  bags,
			Quantity:   quantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.DonationsStocked.Inc()
	uc.metrics.BagsAdded.WithLabelValues(out.BloodType.String()).Add(float64(out.BagsAdded))
	uc.metrics.StockLevel.WithLabelValues(out.BloodType.String()).Set(float64(out.Quantity))
	uc.log.Info().
		Str("donation_id", donationID).
		Str("blood_type", out.BloodType.String()).
		Int("bags", out.BagsAdded).
		Int("quantity", out.Quantity).
		Msg("donación agregada al stock")
	return &out, nil
}

// RemoveFromStock retira bolsas de un tipo. InsufficientStock si no alcanzan; el stock nunca queda negativo.
func (uc *StockUseCase) RemoveFromStock(ctx context.Context, bloodType blood.Type, bags int) (*dto.StockItemDTO, error) {
	if !bloodType.Valid() {
		return nil, domain.InvalidArgument("blood_type", bloodType.String())
	}
	if bags <= 0 {
		return nil, domain.Validation("bags", "debe ser mayor que cero")
	}
	quantity, ok, err := uc.stock.Decrement(ctx, bloodType, bags)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := uc.stock.Get(ctx, bloodType)
		if err != nil {
			return nil, err
		}
		available := 0
		if current != nil {
			available = current.Quantity
		}
		return nil, domain.InsufficientStock(bloodType.String(), available, bags)
	}
	uc.metrics.BagsWithdrawn.WithLabelValues(bloodType.String()).Add(float64(bags))
	uc.metrics.StockLevel.WithLabelValues(bloodType.String()).Set(float64(quantity))
	uc.log.Info().Str("blood_type", bloodType.String()).Int("bags", bags).Int("quantity", quantity).Msg("retiro de stock")

	return uc.itemFor(ctx, bloodType)
}

// SetMinimum define el umbral de alerta de un tipo (crea la fila si no existe).
func (uc *StockUseCase) SetMinimum(ctx context.Context, bloodType blood.Type, minimum int) (*dto.StockItemDTO, error) {
	if !bloodType.Valid() {
		return nil, domain.InvalidArgument("blood_type", bloodType.String())
	}
	if minimum < 0 {
		return nil, domain.Validation("minimum", "no puede ser negativo")
	}
	if err := uc.stock.SetMinimum(ctx, bloodType, minimum); err != nil {
		return nil, err
	}
	return uc.itemFor(ctx, bloodType)
}

func (uc *StockUseCase) itemFor(ctx context.Context, bloodType blood.Type) (*dto.StockItemDTO, error) {
	s, err := uc.stock.Get(ctx, bloodType)
	if err != nil {
		return nil, err
	}
	item := uc.toItem(bloodType, s)
	return &item, nil
}

// StockByType stock de los 8 tipos en orden canónico; tipos sin fila salen con cantidad 0.
func (uc *StockUseCase) StockByType(ctx context.Context) (*dto.StockResponse, error) {
	rows, err := uc.stock.List(ctx)
	if err != nil {
		return nil, err
	}
	byType := make(map[blood.Type]*entity.BloodStock, len(rows))
	for _, s := range rows {
		byType[s.BloodType] = s
	}
	out := &dto.StockResponse{Items: make([]dto.StockItemDTO, 0, len(blood.All()))}
	for _, t := range blood.All() {
		item := uc.toItem(t, byType[t])
		out.Items = append(out.Items, item)
		out.Total += item.Quantity
	}
	return out, nil
}

// LowStock tipos con quantity <= minimum (inclusivo). Un tipo sin fila cuenta como 0 bolsas
// con el mínimo por defecto.
func (uc *StockUseCase) LowStock(ctx context.Context) ([]dto.StockItemDTO, error) {
	all, err := uc.StockByType(ctx)
	if err != nil {
		return nil, err
	}
	low := make([]dto.StockItemDTO, 0)
	for _, item := range all.Items {
		if item.Low {
			low = append(low, item)
		}
	}
	return low, nil
}

// Alerts resumen de alertas: tipos bajos, total en stock y situación general.
func (uc *StockUseCase) Alerts(ctx context.Context) (*dto.AlertsResponse, error) {
	var (
		low   []dto.StockItemDTO
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		low, err = uc.LowStock(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = uc.stock.SumQuantity(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dto.AlertsResponse{
		LowStockTypes: make([]blood.Type, 0, len(low)),
		Count:         len(low),
		TotalStock:    total,
		Situation:     dto.SituationNormal,
	}
	for _, item := range low {
		out.LowStockTypes = append(out.LowStockTypes, item.BloodType)
	}
	if out.Count > 0 {
		out.Situation = dto.SituationAlert
	}
	return out, nil
}

// Statistics agregados de solo lectura. Las consultas independientes corren en paralelo.
// TotalStock es la suma de StockPerType.
func (uc *StockUseCase) Statistics(ctx context.Context) (*dto.StatisticsResponse, error) {
	var (
		stock       *dto.StockResponse
		total       int
		available   int
		availByType map[blood.Type]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stock, err = uc.StockByType(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = uc.donations.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		available, err = uc.donations.CountByStatus(gctx, entity.DonationAvailable)
		return err
	})
	g.Go(func() error {
		var err error
		availByType, err = uc.donations.CountAvailableByType(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dto.StatisticsResponse{
		TotalStock:                stock.Total,
		TotalDonations:            total,
		AvailableDonations:        available,
		AvailableDonationsPerType: make(map[blood.Type]int, 8),
		StockPerType:              make(map[blood.Type]int, 8),
		GeneratedAt:               time.Now(),
	}
	for _, item := range stock.Items {
		out.StockPerType[item.BloodType] = item.Quantity
	}
	for _, t := range blood.All() {
		out.AvailableDonationsPerType[t] = availByType[t]
	}
	return out, nil
}

// Compatibility donantes compatibles para el tipo (como receptor) y receptores posibles (como donante).
func (uc *StockUseCase) Compatibility(bloodType blood.Type) (*dto.CompatibilityResponse, error) {
	donors, err := blood.DonorsFor(bloodType)
	if err != nil {
		return nil, err
	}
	recipients, err := blood.RecipientsOf(bloodType)
	if err != nil {
		return nil, err
	}
	return &dto.CompatibilityResponse{
		BloodType:      bloodType,
		CanReceiveFrom: donors,
		CanDonateTo:    recipients,
	}, nil
}

// CompatibleDonors personas registradas cuyo tipo puede donar al receptor indicado.
func (uc *StockUseCase) CompatibleDonors(ctx context.Context, receptor blood.Type) ([]dto.PersonResponse, error) {
	types, err := blood.DonorsFor(receptor)
	if err != nil {
		return nil, err
	}
	return uc.donors.FindByBloodTypes(ctx, types)
}

func (uc *StockUseCase) toItem(t blood.Type, s *entity.BloodStock) dto.StockItemDTO {
	item := dto.StockItemDTO{BloodType: t, Minimum: uc.policy.DefaultMinimum}
	if s != nil {
		item.Quantity = s.Quantity
		item.Minimum = s.Minimum
	}
	item.Low = blood.IsLowStock(item.Quantity, item.Minimum)
	return item
}
