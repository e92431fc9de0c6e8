package repository

import (
	"context"

	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para SerialCategory (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.SerialCategory) error
	GetByID(ctx context.Context, id string) (*entity.SerialCategory, error)
	GetByCompanyAndName(ctx context.Context, companyID, name string) (*entity.SerialCategory, error)
	Update(ctx context.Context, category *entity.SerialCategory) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.SerialCategory, error)
	// ListMonitored categorías activas con nivel de stock de seguridad > 0.
	ListMonitored(ctx context.Context) ([]*entity.SerialCategory, error)
}
