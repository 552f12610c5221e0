package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/BancoSangre-api/internal/application/dto"
	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
)

// stockService lo implementa *bloodbank.StockUseCase.
type stockService interface {
	AddDonationToStock(ctx context.Context, donationID string) (*dto.AddToStockResponse, error)
	RemoveFromStock(ctx context.Context, bloodType blood.Type, bags int) (*dto.StockItemDTO, error)
	SetMinimum(ctx context.Context, bloodType blood.Type, minimum int) (*dto.StockItemDTO, error)
	StockByType(ctx context.Context) (*dto.StockResponse, error)
	LowStock(ctx context.Context) ([]dto.StockItemDTO, error)
	Alerts(ctx context.Context) (*dto.AlertsResponse, error)
	Statistics(ctx context.Context) (*dto.StatisticsResponse, error)
	Compatibility(bloodType blood.Type) (*dto.CompatibilityResponse, error)
	CompatibleDonors(ctx context.Context, receptor blood.Type) ([]dto.PersonResponse, error)
}

// sweepService lo implementa *bloodbank.ExpirySweepUseCase.
type sweepService interface {
	Run(ctx context.Context, today time.Time) (*dto.SweepResponse, error)
}

// reportService lo implementa *bloodbank.ReportUseCase.
type reportService interface {
	StockReportPDF(ctx context.Context) ([]byte, error)
}

// BloodBankHandler stock, alertas, estadísticas, compatibilidad y barrido.
type BloodBankHandler struct {
	stock  stockService
	sweep  sweepService
	report reportService
	loc    *time.Location
	now    func() time.Time
}

// NewBloodBankHandler construye el handler. loc es la zona del banco para calcular "hoy".
func NewBloodBankHandler(stock stockService, sweep sweepService, report reportService, loc *time.Location) *BloodBankHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &BloodBankHandler{stock: stock, sweep: sweep, report: report, loc: loc, now: time.Now}
}

// Stock godoc
// @Summary      Stock por tipo sanguíneo
// @Tags         blood-bank
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockResponse
// @Router       /api/blood-bank/stock [get]
func (h *BloodBankHandler) Stock(c *fiber.Ctx) error {
	out, err := h.stock.StockByType(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Tipos con stock bajo
// @Description  Cantidad menor o igual al mínimo (10 por defecto). Incluye tipos sin stock.
// @Tags         blood-bank
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockItemDTO
// @Router       /api/blood-bank/stock/low [get]
func (h *BloodBankHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.stock.LowStock(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetMinimum godoc
// @Summary      Definir stock mínimo de un tipo
// @Tags         blood-bank
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        type  path  string  true  "Tipo sanguíneo"
// @Param        body  body  dto.SetMinimumRequest  true  "Nuevo mínimo"
// @Success      200   {object}  dto.StockItemDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/blood-bank/stock/{type}/minimum [put]
func (h *BloodBankHandler) SetMinimum(c *fiber.Ctx) error {
	bt, err := blood.Parse(param(c, "type"))
	if err != nil {
		return writeError(c, err)
	}
	var in dto.SetMinimumRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	out, err := h.stock.SetMinimum(c.UserContext(), bt, in.Minimum)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Withdraw godoc
// @Summary      Retirar bolsas del stock
// @Tags         blood-bank
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        type  path  string  true  "Tipo sanguíneo"
// @Param        body  body  dto.WithdrawRequest  true  "Bolsas a retirar"
// @Success      200   {object}  dto.StockItemDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/blood-bank/stock/{type}/withdraw [post]
func (h *BloodBankHandler) Withdraw(c *fiber.Ctx) error {
	bt, err := blood.Parse(param(c, "type"))
	if err != nil {
		return writeError(c, err)
	}
	var in dto.WithdrawRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	out, err := h.stock.RemoveFromStock(c.UserContext(), bt, in.Bags)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AddDonation godoc
// @Summary      Pasar donación a stock
// @Description  Convierte el volumen en bolsas (450 ml por bolsa) y marca la donación como USED, todo en una transacción.
// @Tags         blood-bank
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la donación"
// @Success      200  {object}  dto.AddToStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/blood-bank/donations/{id}/stock [post]
func (h *BloodBankHandler) AddDonation(c *fiber.Ctx) error {
	out, err := h.stock.AddDonationToStock(c.UserContext(), param(c, "id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Statistics godoc
// @Summary      Estadísticas
// @Tags         blood-bank
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StatisticsResponse
// @Router       /api/blood-bank/statistics [get]
func (h *BloodBankHandler) Statistics(c *fiber.Ctx) error {
	out, err := h.stock.Statistics(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Alerts godoc
// @Summary      Alertas de stock
// @Tags         blood-bank
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AlertsResponse
// @Router       /api/blood-bank/alerts [get]
func (h *BloodBankHandler) Alerts(c *fiber.Ctx) error {
	out, err := h.stock.Alerts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Compatibility godoc
// @Summary      Compatibilidad de un tipo
// @Tags         blood-bank
// @Security     Bearer
// @Produce      json
// @Param        type  path  string  true  "Tipo sanguíneo"
// @Success      200   {object}  dto.CompatibilityResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/blood-bank/compatibility/{type} [get]
func (h *BloodBankHandler) Compatibility(c *fiber.Ctx) error {
	bt, err := blood.Parse(param(c, "type"))
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.stock.Compatibility(bt)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CompatibleDonors godoc
// @Summary      Donantes compatibles con un receptor
// @Tags         blood-bank
// @Security     Bearer
// @Produce      json
// @Param        type  path  string  true  "Tipo sanguíneo del receptor"
// @Success      200   {array}   dto.PersonResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/blood-bank/donors/compatible/{type} [get]
func (h *BloodBankHandler) CompatibleDonors(c *fiber.Ctx) error {
	bt, err := blood.Parse(param(c, "type"))
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.stock.CompatibleDonors(c.UserContext(), bt)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RunSweep godoc
// @Summary      Ejecutar el barrido de vencimiento
// @Description  Marca como EXPIRED las donaciones AVAILABLE vencidas antes de hoy.
// @Tags         blood-bank
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SweepResponse
// @Router       /api/blood-bank/expiry-sweep [post]
func (h *BloodBankHandler) RunSweep(c *fiber.Ctx) error {
	out, err := h.sweep.Run(c.UserContext(), h.now().In(h.loc))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Report godoc
// @Summary      Reporte de stock en PDF
// @Tags         blood-bank
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/blood-bank/report.pdf [get]
func (h *BloodBankHandler) Report(c *fiber.Ctx) error {
	pdf, err := h.report.StockReportPDF(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="reporte-stock.pdf"`)
	return c.Send(pdf)
}
