package repository

import (
	"context"
	"time"

	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
)

// DistributionSettingsRepository configuraciones CoC por empresa.
type DistributionSettingsRepository interface {
	Create(ctx context.Context, s *entity.DistributionSettings) error
	// FindActive primera activa y vigente en day, ordenando por Sequence e ID.
	FindActive(ctx context.Context, companyID string, day time.Time) (*entity.DistributionSettings, error)
}
