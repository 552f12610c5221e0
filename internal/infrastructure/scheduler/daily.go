// Package scheduler dispara el barrido de vencimiento una vez al día.
//
// El caso de uso no sabe nada de horarios: recibe la fecha de "hoy". Este paquete solo
// calcula la próxima ejecución (hora fija en la zona del banco) y la invoca.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/BancoSangre-api/internal/application/dto"
	"github.com/jhoicas/BancoSangre-api/pkg/logger"
)

// SweepRunner lo implementa *bloodbank.ExpirySweepUseCase.
type SweepRunner interface {
	RunDaily(ctx context.Context, today time.Time) (*dto.SweepResponse, error)
}

// Daily ejecuta el barrido a la hora configurada en la zona loc.
type Daily struct {
	runner SweepRunner
	hour   int
	loc    *time.Location
	now    func() time.Time
	log    *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDaily construye el scheduler. hour fuera de 0..23 se acota.
func NewDaily(runner SweepRunner, hour int, loc *time.Location, log *logger.Logger) *Daily {
	if hour < 0 {
		hour = 0
	}
	if hour > 23 {
		hour = 23
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Daily{
		runner: runner,
		hour:   hour,
		loc:    loc,
		now:    time.Now,
		log:    log.Component("scheduler"),
	}
}

// Start lanza la goroutine. Llamarlo dos veces no crea una segunda.
func (d *Daily) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})

	go d.run(runCtx)

	d.log.Info().Int("hour", d.hour).Str("timezone", d.loc.String()).
		Time("next_run", d.nextRun(d.now())).Msg("scheduler del barrido iniciado")
}

// Stop detiene la goroutine y espera a que termine la ejecución en curso.
func (d *Daily) Stop() {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.cancel = nil
	d.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	d.log.Info().Msg("scheduler del barrido detenido")
}

func (d *Daily) run(ctx context.Context) {
	defer close(d.done)
	for {
		wait := d.nextRun(d.now()).Sub(d.now())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			d.RunOnce(ctx)
		}
	}
}

// RunOnce ejecuta el barrido con la fecha local actual. Los errores se registran y no detienen el loop.
func (d *Daily) RunOnce(ctx context.Context) {
	today := d.now().In(d.loc)
	res, err := d.runner.RunDaily(ctx, today)
	if err != nil {
		d.log.Error().Err(err).Str("date", today.Format("2006-01-02")).Msg("barrido programado fallido")
		return
	}
	d.log.Debug().Str("date", res.Date).Int("expired", res.Expired).Bool("skipped", res.Skipped).Msg("barrido programado")
}

// nextRun primer instante estrictamente posterior a now con hora == d.hour en d.loc.
func (d *Daily) nextRun(now time.Time) time.Time {
	local := now.In(d.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.hour, 0, 0, 0, d.loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, d.hour, 0, 0, 0, d.loc)
	}
	return next
}
