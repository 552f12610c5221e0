package bloodbank

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/BancoSangre-api/internal/application/dto"
	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
	"github.com/jhoicas/BancoSangre-api/internal/domain/entity"
	"github.com/jhoicas/BancoSangre-api/internal/domain/repository"
	"github.com/jhoicas/BancoSangre-api/pkg/logger"
	"github.com/jhoicas/BancoSangre-api/pkg/metrics"
)

const (
	sweepLockPrefix = "bancosangre:expiry-sweep:"
	sweepLockTTL    = 23 * time.Hour
	dateLayout      = "2006-01-02"
)

// ExpirySweepUseCase marca como EXPIRED las donaciones AVAILABLE vencidas.
// No depende de un scheduler: se invoca con la fecha de "hoy".
type ExpirySweepUseCase struct {
	txRunner TxRunner
	locker   SweepLocker // opcional
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// NewExpirySweepUseCase construye el caso de uso. locker puede ser nil (una sola réplica).
func NewExpirySweepUseCase(txRunner TxRunner, locker SweepLocker, m *metrics.Metrics, log *logger.Logger) *ExpirySweepUseCase {
	return &ExpirySweepUseCase{
		txRunner: txRunner,
		locker:   locker,
		metrics:  m,
		log:      log.Component("expiry_sweep"),
	}
}

// Sweep en una transacción: selecciona (con bloqueo) las donaciones AVAILABLE con expires_on < today
// y las pasa a EXPIRED. Devuelve cuántas cambió. Repetirlo el mismo día no cambia nada más.
func (uc *ExpirySweepUseCase) Sweep(ctx context.Context, today time.Time) (int, error) {
	var expired int
	err := uc.txRunner.RunBloodBank(ctx, func(
		donations repository.DonationRepository,
		_ repository.BloodStockRepository,
	) error {
		list, err := donations.ListExpiredForUpdate(ctx, blood.CalendarDate(today))
		if err != nil {
			return err
		}
		for _, d := range list {
			if err := donations.UpdateStatus(ctx, d.ID, entity.DonationExpired); err != nil {
				return fmt.Errorf("expirar donación %s: %w", d.ID, err)
			}
		}
		expired = len(list)
		return nil
	})
	if err != nil {
		uc.metrics.SweepRuns.WithLabelValues("error").Inc()
		return 0, err
	}
	uc.metrics.SweepRuns.WithLabelValues("ok").Inc()
	uc.metrics.DonationsExpired.Add(float64(expired))
	return expired, nil
}

// Run ejecuta el barrido y arma la respuesta (endpoint manual, sin lock).
func (uc *ExpirySweepUseCase) Run(ctx context.Context, today time.Time) (*dto.SweepResponse, error) {
	n, err := uc.Sweep(ctx, today)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("date", today.Format(dateLayout)).Int("expired", n).Msg("barrido de vencimiento manual")
	return &dto.SweepResponse{Date: today.Format(dateLayout), Expired: n}, nil
}

// RunDaily ejecución programada. Con locker, solo la réplica que obtiene el lock del día ejecuta;
// las demás devuelven Skipped. Si el barrido falla, el lock se libera.
// Si el lock falla se ejecuta igual: el filtro por estado evita dobles cambios.
func (uc *ExpirySweepUseCase) RunDaily(ctx context.Context, today time.Time) (*dto.SweepResponse, error) {
	date := today.Format(dateLayout)
	key := sweepLockPrefix + date
	locked := false
	if uc.locker != nil {
		ok, err := uc.locker.TryLock(ctx, key, sweepLockTTL)
		switch {
		case err != nil:
			uc.log.Warn().Err(err).Str("date", date).Msg("lock del barrido no disponible, se ejecuta sin lock")
		case !ok:
			uc.metrics.SweepRuns.WithLabelValues("skipped").Inc()
			uc.log.Info().Str("date", date).Msg("barrido ya ejecutado por otra réplica")
			return &dto.SweepResponse{Date: date, Skipped: true}, nil
		default:
			locked = true
		}
	}
	n, err := uc.Sweep(ctx, today)
	if err != nil {
		uc.log.Error().Err(err).Str("date", date).Msg("barrido de vencimiento")
		if locked {
			if uerr := uc.locker.Unlock(context.WithoutCancel(ctx), key); uerr != nil {
				uc.log.Warn().Err(uerr).Str("date", date).Msg("liberar lock del barrido")
			}
		}
		return nil, err
	}
	uc.log.Info().Str("date", date).Int("expired", n).Msg("barrido de vencimiento diario")
	return &dto.SweepResponse{Date: date, Expired: n}, nil
}
