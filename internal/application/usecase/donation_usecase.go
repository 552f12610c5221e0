package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/BancoSangre-api/internal/application/dto"
	"github.com/jhoicas/BancoSangre-api/internal/domain"
	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
	"github.com/jhoicas/BancoSangre-api/internal/domain/entity"
	"github.com/jhoicas/BancoSangre-api/internal/domain/repository"
	"github.com/jhoicas/BancoSangre-api/pkg/logger"
	"github.com/jhoicas/BancoSangre-api/pkg/metrics"
)

// maxVolumeML límite de la columna volume_ml (NUMERIC(7, 2)).
var maxVolumeML = decimal.NewFromInt(100000)

func validVolume(v decimal.Decimal) error {
	if !v.IsPositive() {
		return domain.Validation("volume_ml", "debe ser mayor que cero")
	}
	if v.GreaterThanOrEqual(maxVolumeML) {
		return domain.Validation("volume_ml", "debe ser menor que "+maxVolumeML.String())
	}
	return nil
}

// DonationConfig parámetros de registro de donaciones.
type DonationConfig struct {
	ShelfLifeDays int
	BagVolumeML   int
}

// DonationUseCase registro y consulta de donaciones.
type DonationUseCase struct {
	repo    repository.DonationRepository
	persons repository.PersonRepository
	cfg     DonationConfig
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewDonationUseCase construye el caso de uso.
func NewDonationUseCase(
	repo repository.DonationRepository,
	persons repository.PersonRepository,
	cfg DonationConfig,
	m *metrics.Metrics,
	log *logger.Logger,
) *DonationUseCase {
	if cfg.ShelfLifeDays <= 0 {
		cfg.ShelfLifeDays = blood.DefaultShelfLifeDays
	}
	if cfg.BagVolumeML <= 0 {
		cfg.BagVolumeML = blood.DefaultBagVolumeML
	}
	return &DonationUseCase{repo: repo, persons: persons, cfg: cfg, metrics: m, log: log.Component("donations")}
}

// Register registra una donación del donante identificado por documento.
// El tipo sanguíneo se copia del donante; si el donante no lo tiene, falla con Validation.
// Un volumen menor a media bolsa se acepta, pero no podrá pasar a stock.
func (uc *DonationUseCase) Register(ctx context.Context, in dto.RegisterDonationRequest) (*dto.DonationResponse, error) {
	if err := required("donor_document", in.DonorDocument); err != nil {
		return nil, err
	}
	if err := validVolume(in.VolumeML); err != nil {
		return nil, err
	}
	donor, err := uc.persons.GetByDocument(ctx, in.DonorDocument)
	if err != nil {
		return nil, err
	}
	if donor == nil {
		return nil, domain.NotFound("person", in.DonorDocument)
	}
	if donor.BloodType == "" {
		return nil, domain.Validation("blood_type", "el donante no tiene tipo sanguíneo registrado")
	}

	now := time.Now()
	donatedAt := now
	if in.DonatedAt != nil {
		donatedAt = *in.DonatedAt
	}
	expiresOn := blood.ExpiryDate(donatedAt, uc.cfg.ShelfLifeDays)
	if in.ExpiresOn != nil {
		expiresOn = blood.CalendarDate(*in.ExpiresOn)
	}
	if expiresOn.Before(blood.CalendarDate(donatedAt)) {
		return nil, domain.Validation("expires_on", "no puede ser anterior a la fecha de donación")
	}

	d := &entity.Donation{
		ID:        uuid.New().String(),
		DonorID:   donor.ID,
		BloodType: donor.BloodType,
		VolumeML:  in.VolumeML,
		DonatedAt: donatedAt,
		ExpiresOn: expiresOn,
		Status:    entity.DonationAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	uc.metrics.DonationsRegistered.Inc()
	uc.log.Info().
		Str("donation_id", d.ID).
		Str("donor_id", donor.ID).
		Str("blood_type", d.BloodType.String()).
		Str("volume_ml", d.VolumeML.String()).
		Msg("donación registrada")
	return uc.toResponse(d, donor.Name), nil
}

// GetByID obtiene una donación; NotFound si no existe.
func (uc *DonationUseCase) GetByID(ctx context.Context, id string) (*dto.DonationResponse, error) {
	d, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.NotFound("donation", id)
	}
	return uc.toResponse(d, ""), nil
}

// List lista donaciones con paginación.
func (uc *DonationUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.DonationListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.DonationListResponse{
		Items: uc.toResponses(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update cambia volumen y/o estado. Solo una donación AVAILABLE puede modificarse, y el único
// cambio de estado manual es el descarte (EXPIRED); USED solo se alcanza pasando la donación a stock.
func (uc *DonationUseCase) Update(ctx context.Context, id string, in dto.UpdateDonationRequest) (*dto.DonationResponse, error) {
	d, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.NotFound("donation", id)
	}
	if !d.IsAvailable() {
		return nil, domain.InvalidState("donation", id, "la donación está "+d.Status)
	}
	if in.VolumeML != nil {
		if err := validVolume(*in.VolumeML); err != nil {
			return nil, err
		}
		d.VolumeML = *in.VolumeML
	}
	if in.Status != nil {
		status, ok := entity.ValidDonationStatus(*in.Status)
		if !ok {
			return nil, domain.InvalidArgument("status", *in.Status)
		}
		if status == entity.DonationUsed || !entity.CanTransition(d.Status, status) {
			return nil, domain.InvalidState("donation", id, fmt.Sprintf("transición %s → %s no permitida", d.Status, status))
		}
		d.Status = status
	}
	d.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return uc.toResponse(d, ""), nil
}

// Delete elimina una donación; NotFound si no existe.
func (uc *DonationUseCase) Delete(ctx context.Context, id string) error {
	d, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if d == nil {
		return domain.NotFound("donation", id)
	}
	return uc.repo.Delete(ctx, id)
}

// ListByDonorDocument donaciones del donante identificado por documento; NotFound si no existe.
func (uc *DonationUseCase) ListByDonorDocument(ctx context.Context, number string) ([]dto.DonationResponse, error) {
	donor, err := uc.donorByDocument(ctx, number)
	if err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByDonor(ctx, donor.ID)
	if err != nil {
		return nil, err
	}
	out := uc.toResponses(list)
	for i := range out {
		out[i].DonorName = donor.Name
	}
	return out, nil
}

// ListByStatus donaciones en un estado. Un estado desconocido devuelve lista vacía.
func (uc *DonationUseCase) ListByStatus(ctx context.Context, raw string) ([]dto.DonationResponse, error) {
	status, ok := entity.ValidDonationStatus(raw)
	if !ok {
		return []dto.DonationResponse{}, nil
	}
	list, err := uc.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	return uc.toResponses(list), nil
}

// Eligibility un donante es elegible si no tiene donaciones AVAILABLE esperando uso.
func (uc *DonationUseCase) Eligibility(ctx context.Context, number string) (*dto.EligibilityResponse, error) {
	donor, err := uc.donorByDocument(ctx, number)
	if err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByDonor(ctx, donor.ID)
	if err != nil {
		return nil, err
	}
	available := 0
	for _, d := range list {
		if d.IsAvailable() {
			available++
		}
	}
	out := &dto.EligibilityResponse{
		DonorID:            donor.ID,
		DonorName:          donor.Name,
		Eligible:           available == 0,
		AvailableDonations: available,
		Message:            "Donante apto para una nueva donación",
	}
	if !out.Eligible {
		out.Message = fmt.Sprintf("El donante tiene %d donación(es) en stock. Espere a que se utilicen.", available)
	}
	return out, nil
}

func (uc *DonationUseCase) donorByDocument(ctx context.Context, number string) (*entity.Person, error) {
	if err := required("document", number); err != nil {
		return nil, err
	}
	donor, err := uc.persons.GetByDocument(ctx, number)
	if err != nil {
		return nil, err
	}
	if donor == nil {
		return nil, domain.NotFound("person", number)
	}
	return donor, nil
}

func (uc *DonationUseCase) toResponse(d *entity.Donation, donorName string) *dto.DonationResponse {
	return &dto.DonationResponse{
		ID:        d.ID,
		DonorID:   d.DonorID,
		DonorName: donorName,
		BloodType: d.BloodType,
		VolumeML:  d.VolumeML,
		Bags:      blood.VolumeToBags(d.VolumeML, uc.cfg.BagVolumeML),
		DonatedAt: d.DonatedAt,
		ExpiresOn: d.ExpiresOn.Format("2006-01-02"),
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (uc *DonationUseCase) toResponses(list []*entity.Donation) []dto.DonationResponse {
	out := make([]dto.DonationResponse, 0, len(list))
	for _, d := range list {
		out = append(out, *uc.toResponse(d, ""))
	}
	return out
}
