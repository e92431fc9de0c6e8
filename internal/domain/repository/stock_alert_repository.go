package repository

import (
	"context"
	"time"

	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
)

// StockAlertRepository alertas de stock de seguridad (una abierta por categoría).
type StockAlertRepository interface {
	Create(ctx context.Context, alert *entity.StockAlert) error
	GetOpenByCategory(ctx context.Context, categoryID string) (*entity.StockAlert, error)
	Close(ctx context.Context, id string, at time.Time) error
}
