package repository

import (
	"context"

	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
)

// ProductionOrderRepository órdenes de producción reflejadas desde el motor de producción.
type ProductionOrderRepository interface {
	Upsert(ctx context.Context, order *entity.ProductionOrder) error
	GetByID(ctx context.Context, id string) (*entity.ProductionOrder, error)
	GetForUpdate(ctx context.Context, id string) (*entity.ProductionOrder, error)
	Update(ctx context.Context, order *entity.ProductionOrder) error
}
