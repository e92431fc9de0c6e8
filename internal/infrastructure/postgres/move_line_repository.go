package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
)

var _ repository.MoveLineRepository = (*MoveLineRepo)(nil)

// MoveLineRepo líneas de movimiento preparadas por el ledger.
type MoveLineRepo struct {
	q Querier
}

// NewMoveLineRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMoveLineRepository(q Querier) *MoveLineRepo {
	return &MoveLineRepo{q: q}
}

// Create inserta la línea.
func (r *MoveLineRepo) Create(ctx context.Context, l *entity.MoveLine) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO move_line (id, picking_id, picking_type, product_id, lot_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, clock_timestamp())
		RETURNING created_at`,
		l.ID, l.PickingID, string(l.PickingType), l.ProductID, l.LotID, l.Quantity,
	).Scan(&l.CreatedAt)
	if err != nil {
		return fmt.Errorf("create move line: %w", err)
	}
	return nil
}

// GetByID obtiene la línea por ID.
func (r *MoveLineRepo) GetByID(ctx context.Context, id string) (*entity.MoveLine, error) {
	var l entity.MoveLine
	var pickingType string
	err := r.q.QueryRow(ctx, `
		SELECT id, picking_id, picking_type, product_id, lot_id, quantity, created_at
		FROM move_line WHERE id = $1`, id,
	).Scan(&l.ID, &l.PickingID, &pickingType, &l.ProductID, &l.LotID, &l.Quantity, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get move line: %w", err)
	}
	l.PickingType = entity.PickingType(pickingType)
	return &l, nil
}

// ListByPicking líneas del documento en orden de creación.
func (r *MoveLineRepo) ListByPicking(ctx context.Context, pickingID string) ([]*entity.MoveLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, picking_id, picking_type, product_id, lot_id, quantity, created_at
		FROM move_line WHERE picking_id = $1 ORDER BY created_at, lot_id`, pickingID)
	if err != nil {
		return nil, fmt.Errorf("list move lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.MoveLine
	for rows.Next() {
		var l entity.MoveLine
		var pickingType string
		if err := rows.Scan(&l.ID, &l.PickingID, &pickingType, &l.ProductID, &l.LotID, &l.Quantity, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.PickingType = entity.PickingType(pickingType)
		list = append(list, &l)
	}
	return list, rows.Err()
}
