// Package pdf genera el reporte de stock del banco de sangre.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título                   │  Fecha de generación     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SITUACIÓN: NORMAL / ALERTA + tipos con stock bajo          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Tipo | Bolsas | Mínimo | Donaciones disp. | Estado  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: bolsas en stock / donaciones / disponibles        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/BancoSangre-api/internal/application/bloodbank"
	"github.com/jhoicas/BancoSangre-api/internal/application/dto"
	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
)

var _ bloodbank.ReportGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 150, Green: 20, Blue: 30}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 200, Green: 40, Blue: 20}
	colorOK      = &props.Color{Red: 20, Green: 120, Blue: 60}
)

// MarotoPDFGenerator implementa bloodbank.ReportGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateStockReport genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateStockReport(_ context.Context, report bloodbank.StockReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(report.Title+" - Reporte de stock", true).
		WithAuthor(report.Title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(situationRow(report.Alerts))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(report.Stock, report.Stats)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(report.Stats))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(report bloodbank.StockReport) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(report.Title, props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New("Reporte de stock por tipo sanguíneo", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 9, Align: align.Right, Top: 7,
			}),
		),
	)
}

func situationRow(alerts dto.AlertsResponse) core.Row {
	color := colorOK
	detail := "Todos los tipos por encima del mínimo."
	if alerts.Situation == dto.SituationAlert {
		color = colorAlert
		types := make([]string, 0, len(alerts.LowStockTypes))
		for _, t := range alerts.LowStockTypes {
			types = append(types, t.String())
		}
		detail = fmt.Sprintf("%d tipo(s) con stock bajo: %s", alerts.Count, strings.Join(types, ", "))
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("SITUACIÓN: "+alerts.Situation, props.Text{
				Style: fontstyle.Bold, Size: 10, Color: color, Top: 1,
			}),
			text.New(detail, props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Tipo", 2, align.Center),
		h("Bolsas", 2, align.Right),
		h("Mínimo", 2, align.Right),
		h("Donaciones disponibles", 3, align.Right),
		h("Estado", 3, align.Center),
	)
}

// tableRows una fila por tipo, en el orden de StockResponse.
func tableRows(stock dto.StockResponse, stats dto.StatisticsResponse) []core.Row {
	rows := make([]core.Row, 0, len(stock.Items))
	for _, it := range stock.Items {
		status, color := "OK", colorOK
		if it.Low {
			status, color = "BAJO", colorAlert
		}
		rows = append(rows, row.New(7).Add(
			col.New(2).Add(text.New(it.BloodType.String(), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(strconv.Itoa(it.Quantity), props.Text{Size: 9, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(strconv.Itoa(it.Minimum), props.Text{Size: 9, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(strconv.Itoa(available(stats, it.BloodType)), props.Text{Size: 9, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(status, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Center, Color: color, Top: 1})),
		))
	}
	return rows
}

func totalsRow(stats dto.StatisticsResponse) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(n int) core.Component {
		return text.New(strconv.Itoa(n), props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(20).Add(
		col.New(4),
		col.New(5).Add(
			label("Bolsas en stock:"),
			label("Donaciones registradas:"),
			label("Donaciones disponibles:"),
		),
		col.New(3).Add(
			value(stats.TotalStock),
			value(stats.TotalDonations),
			value(stats.AvailableDonations),
		),
	)
}

func available(stats dto.StatisticsResponse, t blood.Type) int {
	if stats.AvailableDonationsPerType == nil {
		return 0
	}
	return stats.AvailableDonationsPerType[t]
}
