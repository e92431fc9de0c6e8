package repository

import (
	"context"

	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
)

// HistoryRepository puerto del historial append-only. No hay Update ni Delete.
type HistoryRepository interface {
	// Append devuelve domain.ErrDuplicateEvent si ya existe (serial, línea, evento).
	Append(ctx context.Context, e *entity.HistoryEntry) error
	Exists(ctx context.Context, serialID, moveLineID string, event entity.HistoryEvent) (bool, error)
	// ListBySerial más reciente primero.
	ListBySerial(ctx context.Context, serialID string) ([]*entity.HistoryEntry, error)
	ListByPicking(ctx context.Context, pickingID string, pickingType entity.PickingType, event entity.HistoryEvent) ([]*entity.HistoryEntry, error)
	// LatestOutgoingPickings devuelve, por serial, el documento de la última salida completada.
	LatestOutgoingPickings(ctx context.Context, serialIDs []string) (map[string]string, error)
}
