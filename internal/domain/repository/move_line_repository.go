package repository

import (
	"context"

	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
)

// MoveLineRepository líneas de movimiento preparadas por la conciliación de devoluciones.
type MoveLineRepository interface {
	Create(ctx context.Context, line *entity.MoveLine) error
	GetByID(ctx context.Context, id string) (*entity.MoveLine, error)
	ListByPicking(ctx context.Context, pickingID string) ([]*entity.MoveLine, error)
}
