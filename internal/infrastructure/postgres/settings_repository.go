package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
)

var _ repository.DistributionSettingsRepository = (*DistributionSettingsRepo)(nil)

// DistributionSettingsRepo certificados CoC por empresa.
type DistributionSettingsRepo struct {
	q Querier
}

// NewDistributionSettingsRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDistributionSettingsRepository(q Querier) *DistributionSettingsRepo {
	return &DistributionSettingsRepo{q: q}
}

// Create inserta la configuración.
func (r *DistributionSettingsRepo) Create(ctx context.Context, s *entity.DistributionSettings) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO distribution_settings (id, company_id, sequence, coc_holder_name, coc_holder_uen,
			coc_reference_number, local_representative_name, local_representative_uen, certificate_no,
			issue_date, expiry_date, active, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())
		RETURNING created_at`,
		s.ID, s.CompanyID, s.Sequence, s.CocHolderName, s.CocHolderUEN, s.CocReferenceNumber,
		s.LocalRepresentativeName, s.LocalRepresentativeUEN, s.CertificateNo,
		s.IssueDate, s.ExpiryDate, s.Active, s.Notes,
	).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create distribution settings: %w", err)
	}
	return nil
}

// FindActive primera configuración activa con expiry_date >= day (o sin vencimiento).
func (r *DistributionSettingsRepo) FindActive(ctx context.Context, companyID string, day time.Time) (*entity.DistributionSettings, error) {
	var s entity.DistributionSettings
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, sequence, coc_holder_name, coc_holder_uen, coc_reference_number,
			local_representative_name, local_representative_uen, certificate_no,
			issue_date, expiry_date, active, notes, created_at
		FROM distribution_settings
		WHERE active AND ($1 = '' OR company_id = $1) AND (expiry_date IS NULL OR expiry_date >= $2::date)
		ORDER BY sequence, id
		LIMIT 1`, companyID, day.Format("2006-01-02"),
	).Scan(&s.ID, &s.CompanyID, &s.Sequence, &s.CocHolderName, &s.CocHolderUEN, &s.CocReferenceNumber,
		&s.LocalRepresentativeName, &s.LocalRepresentativeUEN, &s.CertificateNo,
		&s.IssueDate, &s.ExpiryDate, &s.Active, &s.Notes, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active settings: %w", err)
	}
	return &s, nil
}
