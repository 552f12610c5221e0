package bloodbank

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// ReportUseCase arma el reporte PDF de stock, estadísticas y alertas.
type ReportUseCase struct {
	stock     *StockUseCase
	generator ReportGenerator
	title     string
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(stock *StockUseCase, generator ReportGenerator, title string) *ReportUseCase {
	if title == "" {
		title = "Banco de Sangre"
	}
	return &ReportUseCase{stock: stock, generator: generator, title: title}
}

// StockReportPDF devuelve los bytes del PDF.
func (uc *ReportUseCase) StockReportPDF(ctx context.Context) ([]byte, error) {
	report := StockReport{Title: uc.title, GeneratedAt: time.Now()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := uc.stock.StockByType(gctx)
		if err == nil {
			report.Stock = *s
		}
		return err
	})
	g.Go(func() error {
		s, err := uc.stock.Statistics(gctx)
		if err == nil {
			report.Stats = *s
		}
		return err
	})
	g.Go(func() error {
		a, err := uc.stock.Alerts(gctx)
		if err == nil {
			report.Alerts = *a
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return uc.generator.GenerateStockReport(ctx, report)
}
