package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/metrics"
)

var _ repository.SerialRepository = (*SerialRepo)(nil)

const serialColumns = `
	id, seq, name, serial_type, category_id, company_id, product_id, lot_id, location_id,
	move_line_id, state, production_order_id, produced_order_id, transferred, internal_company_id,
	delivery_picking_id, delivery_move_line_id, linked_unit_id, active,
	prev_state, prev_transferred, prev_internal_company_id, prev_product_id, prev_location_id,
	orig_state, orig_transferred, orig_internal_company_id, orig_product_id, orig_location_id,
	reversed, manufacturing_date, delivery_date, return_date, scrap_date, created_at, updated_at`

var serialUnique = map[string]error{
	"serial_unit_category_name_key":  domain.ErrDuplicateName,
	"serial_unit_active_linked_unit": domain.ErrDuplicate,
	"serial_unit_pkey":               domain.ErrDuplicate,
}

// SerialRepo implementación de SerialRepository sobre PostgreSQL (usable con pool o tx).
type SerialRepo struct {
	q Querier
	m *metrics.Metrics
}

// NewSerialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSerialRepository(q Querier, m *metrics.Metrics) *SerialRepo {
	return &SerialRepo{q: q, m: m}
}

// Create inserta el serial; Seq lo asigna la secuencia de la tabla.
func (r *SerialRepo) Create(ctx context.Context, u *entity.SerialUnit) error {
	defer r.m.TrackDBOperation("serial_create")(time.Now())
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	query := `
		INSERT INTO serial_unit (
			id, name, serial_type, category_id, company_id, product_id, lot_id, location_id,
			move_line_id, state, production_order_id, produced_order_id, transferred, internal_company_id,
			delivery_picking_id, delivery_move_line_id, linked_unit_id, active,
			manufacturing_date, delivery_date, return_date, scrap_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, now(), now())
		RETURNING seq, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		u.ID, u.Name, string(u.SerialType), u.CategoryID, u.CompanyID, u.ProductID, u.LotID, u.LocationID,
		u.MoveLineID, string(u.State), u.ProductionOrderID, u.ProducedOrderID, u.Transferred, u.InternalCompanyID,
		u.DeliveryPickingID, u.DeliveryMoveLineID, u.LinkedUnitID, u.Active,
		u.ManufacturingDate, u.DeliveryDate, u.ReturnDate, u.ScrapDate,
	).Scan(&u.Seq, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create serial %s: %w", u.Name, mapUnique(err, serialUnique))
	}
	return nil
}

// GetByID obtiene un serial por ID.
func (r *SerialRepo) GetByID(ctx context.Context, id string) (*entity.SerialUnit, error) {
	return r.getOne(ctx, "serial_get", `SELECT `+serialColumns+` FROM serial_unit WHERE id = $1`, id)
}

// GetForUpdate obtiene el serial y bloquea la fila (SELECT FOR UPDATE).
func (r *SerialRepo) GetForUpdate(ctx context.Context, id string) (*entity.SerialUnit, error) {
	return r.getOne(ctx, "serial_get_for_update", `SELECT `+serialColumns+` FROM serial_unit WHERE id = $1 FOR UPDATE`, id)
}

// GetByName busca por nombre dentro de la categoría.
func (r *SerialRepo) GetByName(ctx context.Context, categoryID, name string) (*entity.SerialUnit, error) {
	return r.getOne(ctx, "serial_get_by_name",
		`SELECT `+serialColumns+` FROM serial_unit WHERE category_id = $1 AND name = $2`, categoryID, name)
}

func (r *SerialRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.SerialUnit, error) {
	defer r.m.TrackDBOperation(op)(time.Now())
	u, err := scanSerial(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// Find lista por filtro en orden de creación; con ForUpdate bloquea en ese mismo orden.
func (r *SerialRepo) Find(ctx context.Context, f repository.SerialFilter) ([]*entity.SerialUnit, error) {
	defer r.m.TrackDBOperation("serial_find")(time.Now())
	w := serialWhere(f)
	query := `SELECT ` + serialColumns + ` FROM serial_unit` + w.sql() + ` ORDER BY seq`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}
	if f.ForUpdate {
		query += " FOR UPDATE"
	}
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("find serials: %w", err)
	}
	defer rows.Close()
	var list []*entity.SerialUnit
	for rows.Next() {
		u, err := scanSerial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan serial: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Count cuenta seriales por filtro (Limit y ForUpdate se ignoran).
func (r *SerialRepo) Count(ctx context.Context, f repository.SerialFilter) (int, error) {
	defer r.m.TrackDBOperation("serial_count")(time.Now())
	w := serialWhere(f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM serial_unit`+w.sql(), w.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count serials: %w", err)
	}
	return n, nil
}

// Update persiste el estado completo del serial.
func (r *SerialRepo) Update(ctx context.Context, u *entity.SerialUnit) error {
	defer r.m.TrackDBOperation("serial_update")(time.Now())
	query := `
		UPDATE serial_unit SET
			name = $2, serial_type = $3, category_id = $4, company_id = $5, product_id = $6, lot_id = $7,
			location_id = $8, move_line_id = $9, state = $10, production_order_id = $11, produced_order_id = $12,
			transferred = $13, internal_company_id = $14, delivery_picking_id = $15, delivery_move_line_id = $16,
			linked_unit_id = $17, active = $18,
			prev_state = $19, prev_transferred = $20, prev_internal_company_id = $21, prev_product_id = $22, prev_location_id = $23,
			orig_state = $24, orig_transferred = $25, orig_internal_company_id = $26, orig_product_id = $27, orig_location_id = $28,
			reversed = $29, manufacturing_date = $30, delivery_date = $31, return_date = $32, scrap_date = $33,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		u.ID, u.Name, string(u.SerialType), u.CategoryID, u.CompanyID, u.ProductID, u.LotID,
		u.LocationID, u.MoveLineID, string(u.State), u.ProductionOrderID, u.ProducedOrderID,
		u.Transferred, u.InternalCompanyID, u.DeliveryPickingID, u.DeliveryMoveLineID,
		u.LinkedUnitID, u.Active,
		string(u.Previous.State), u.Previous.Transferred, u.Previous.InternalCompanyID, u.Previous.ProductID, u.Previous.LocationID,
		string(u.Original.State), u.Original.Transferred, u.Original.InternalCompanyID, u.Original.ProductID, u.Original.LocationID,
		u.Reversed, u.ManufacturingDate, u.DeliveryDate, u.ReturnDate, u.ScrapDate,
	).Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update serial %s: %w", u.Name, mapUnique(err, serialUnique))
	}
	return nil
}

// ExistsActiveLink indica si otro serial activo ya está asociado a linkedUnitID.
func (r *SerialRepo) ExistsActiveLink(ctx context.Context, linkedUnitID, excludeID string) (bool, error) {
	defer r.m.TrackDBOperation("serial_exists_link")(time.Now())
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM serial_unit
			WHERE linked_unit_id = $1 AND active AND id <> $2
		)`, linkedUnitID, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists active link: %w", err)
	}
	return exists, nil
}

func serialWhere(f repository.SerialFilter) *where {
	w := &where{}
	if len(f.IDs) > 0 {
		w.add("id = ANY($%d)", f.IDs)
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, s := range f.States {
			states[i] = string(s)
		}
		w.add("state = ANY($%d)", states)
	}
	if len(f.ProductionOrderIDs) > 0 {
		w.add("production_order_id = ANY($%d)", f.ProductionOrderIDs)
	}
	w.eq("company_id", f.CompanyID)
	w.eq("category_id", f.CategoryID)
	w.eq("product_id", f.ProductID)
	w.eq("lot_id", f.LotID)
	w.eq("produced_order_id", f.ProducedOrderID)
	w.eq("move_line_id", f.MoveLineID)
	w.eq("delivery_picking_id", f.DeliveryPickingID)
	if f.ActiveOnly {
		w.conds = append(w.conds, "active")
	}
	return w
}

func scanSerial(row pgx.Row) (*entity.SerialUnit, error) {
	var u entity.SerialUnit
	var serialType, state, prevState, origState string
	err := row.Scan(
		&u.ID, &u.Seq, &u.Name, &serialType, &u.CategoryID, &u.CompanyID, &u.ProductID, &u.LotID, &u.LocationID,
		&u.MoveLineID, &state, &u.ProductionOrderID, &u.ProducedOrderID, &u.Transferred, &u.InternalCompanyID,
		&u.DeliveryPickingID, &u.DeliveryMoveLineID, &u.LinkedUnitID, &u.Active,
		&prevState, &u.Previous.Transferred, &u.Previous.InternalCompanyID, &u.Previous.ProductID, &u.Previous.LocationID,
		&origState, &u.Original.Transferred, &u.Original.InternalCompanyID, &u.Original.ProductID, &u.Original.LocationID,
		&u.Reversed, &u.ManufacturingDate, &u.DeliveryDate, &u.ReturnDate, &u.ScrapDate, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.SerialType = entity.SerialType(serialType)
	u.State = entity.SerialState(state)
	u.Previous.State = entity.SerialState(prevState)
	u.Original.State = entity.SerialState(origState)
	return &u, nil
}
