package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/setsco-serial-api/internal/application/dto"
	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// DistributionSettingsUseCase certificados CoC usados en los documentos de entrega.
type DistributionSettingsUseCase struct {
	repo repository.DistributionSettingsRepository
	now  func() time.Time
}

// NewDistributionSettingsUseCase construye el caso de uso.
func NewDistributionSettingsUseCase(repo repository.DistributionSettingsRepository) *DistributionSettingsUseCase {
	return &DistributionSettingsUseCase{repo: repo, now: time.Now}
}

// Create registra una configuración activa.
func (uc *DistributionSettingsUseCase) Create(ctx context.Context, companyID string, in dto.CreateDistributionSettingsRequest) (*dto.DistributionSettingsResponse, error) {
	if in.CocHolderName == "" || in.CertificateNo == "" {
		return nil, fmt.Errorf("%w: coc_holder_name y certificate_no son requeridos", domain.ErrInvalidInput)
	}
	issue, err := parseDate("issue_date", in.IssueDate)
	if err != nil {
		return nil, err
	}
	expiry, err := parseDate("expiry_date", in.ExpiryDate)
	if err != nil {
		return nil, err
	}
	if issue != nil && expiry != nil && expiry.Before(*issue) {
		return nil, fmt.Errorf("%w: expiry_date anterior a issue_date", domain.ErrInvalidInput)
	}
	s := &entity.DistributionSettings{
		CompanyID:               companyID,
		Sequence:                in.Sequence,
		CocHolderName:           in.CocHolderName,
		CocHolderUEN:            in.CocHolderUEN,
		CocReferenceNumber:      in.CocReferenceNumber,
		LocalRepresentativeName: in.LocalRepresentativeName,
		LocalRepresentativeUEN:  in.LocalRepresentativeUEN,
		CertificateNo:           in.CertificateNo,
		IssueDate:               issue,
		ExpiryDate:              expiry,
		Active:                  true,
		Notes:                   in.Notes,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toDistributionResponse(s), nil
}

// GetActive configuración vigente hoy; nil si no hay ninguna.
func (uc *DistributionSettingsUseCase) GetActive(ctx context.Context, companyID string) (*dto.DistributionSettingsResponse, error) {
	s, err := uc.repo.FindActive(ctx, companyID, uc.now())
	if err != nil || s == nil {
		return nil, err
	}
	return toDistributionResponse(s), nil
}

func parseDate(field, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe tener formato YYYY-MM-DD", domain.ErrInvalidInput, field)
	}
	return &t, nil
}

func toDistributionResponse(s *entity.DistributionSettings) *dto.DistributionSettingsResponse {
	return &dto.DistributionSettingsResponse{
		ID:                      s.ID,
		CompanyID:               s.CompanyID,
		Sequence:                s.Sequence,
		CocHolderName:           s.CocHolderName,
		CocHolderUEN:            s.CocHolderUEN,
		CocReferenceNumber:      s.CocReferenceNumber,
		LocalRepresentativeName: s.LocalRepresentativeName,
		LocalRepresentativeUEN:  s.LocalRepresentativeUEN,
		CertificateNo:           s.CertificateNo,
		IssueDate:               s.IssueDate,
		ExpiryDate:              s.ExpiryDate,
		Active:                  s.Active,
		Notes:                   s.Notes,
	}
}
