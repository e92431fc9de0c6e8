package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/metrics"
)

var _ repository.ProductionOrderRepository = (*ProductionOrderRepo)(nil)

const orderColumns = `id, company_id, product_id, product_qty, qty_produced, lot_producing_id, location_dest_id, state, created_at, updated_at`

// ProductionOrderRepo reflejo local de las órdenes de producción.
type ProductionOrderRepo struct {
	q Querier
	m *metrics.Metrics
}

// NewProductionOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionOrderRepository(q Querier, m *metrics.Metrics) *ProductionOrderRepo {
	return &ProductionOrderRepo{q: q, m: m}
}

// Upsert inserta o reemplaza la orden por ID.
func (r *ProductionOrderRepo) Upsert(ctx context.Context, o *entity.ProductionOrder) error {
	defer r.m.TrackDBOperation("order_upsert")(time.Now())
	if o.ID == "" {
		return domain.ErrInvalidInput
	}
	query := `
		INSERT INTO production_order (id, company_id, product_id, product_qty, qty_produced,
			lot_producing_id, location_dest_id, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			company_id = EXCLUDED.company_id, product_id = EXCLUDED.product_id,
			product_qty = EXCLUDED.product_qty, qty_produced = EXCLUDED.qty_produced,
			lot_producing_id = EXCLUDED.lot_producing_id, location_dest_id = EXCLUDED.location_dest_id,
			state = EXCLUDED.state, updated_at = now()
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, query, o.ID, o.CompanyID, o.ProductID, o.ProductQty, o.QtyProduced,
		o.LotProducingID, o.LocationDestID, string(o.State)).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert production order: %w", err)
	}
	return nil
}

// GetByID obtiene la orden por ID.
func (r *ProductionOrderRepo) GetByID(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM production_order WHERE id = $1`, id)
}

// GetForUpdate obtiene la orden y bloquea la fila (SELECT FOR UPDATE).
func (r *ProductionOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM production_order WHERE id = $1 FOR UPDATE`, id)
}

// Update persiste cantidades, lote y estado.
func (r *ProductionOrderRepo) Update(ctx context.Context, o *entity.ProductionOrder) error {
	defer r.m.TrackDBOperation("order_update")(time.Now())
	query := `
		UPDATE production_order SET
			product_id = $2, product_qty = $3, qty_produced = $4, lot_producing_id = $5,
			location_dest_id = $6, state = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query, o.ID, o.ProductID, o.ProductQty, o.QtyProduced, o.LotProducingID,
		o.LocationDestID, string(o.State)).Scan(&o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update production order: %w", err)
	}
	return nil
}

func (r *ProductionOrderRepo) getOne(ctx context.Context, query, id string) (*entity.ProductionOrder, error) {
	var o entity.ProductionOrder
	var state string
	err := r.q.QueryRow(ctx, query, id).Scan(&o.ID, &o.CompanyID, &o.ProductID, &o.ProductQty, &o.QtyProduced,
		&o.LotProducingID, &o.LocationDestID, &state, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production order: %w", err)
	}
	o.State = entity.ProductionOrderState(state)
	return &o, nil
}
