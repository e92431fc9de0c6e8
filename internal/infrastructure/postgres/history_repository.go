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

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

const historyColumns = `id, seq, serial_id, move_line_id, picking_id, picking_type, event, company_id, ts`

// HistoryRepo historial append-only de movimientos por serial.
type HistoryRepo struct {
	q Querier
	m *metrics.Metrics
}

// NewHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewHistoryRepository(q Querier, m *metrics.Metrics) *HistoryRepo {
	return &HistoryRepo{q: q, m: m}
}

// Append inserta la entrada. ON CONFLICT evita abortar la transacción en curso
// cuando la entrada ya existe; en ese caso devuelve ErrDuplicateEvent.
func (r *HistoryRepo) Append(ctx context.Context, e *entity.HistoryEntry) error {
	defer r.m.TrackDBOperation("history_append")(time.Now())
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	query := `
		INSERT INTO history_entry (id, serial_id, move_line_id, picking_id, picking_type, event, company_id, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (serial_id, move_line_id, event) DO NOTHING
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		e.ID, e.SerialID, e.MoveLineID, e.PickingID, string(e.PickingType), string(e.Event), e.CompanyID, e.Timestamp,
	).Scan(&e.Seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrDuplicateEvent
		}
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// Exists indica si ya hay una entrada (serial, línea, evento).
func (r *HistoryRepo) Exists(ctx context.Context, serialID, moveLineID string, event entity.HistoryEvent) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM history_entry WHERE serial_id = $1 AND move_line_id = $2 AND event = $3
		)`, serialID, moveLineID, string(event)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists history: %w", err)
	}
	return exists, nil
}

// ListBySerial historial del serial, más reciente primero.
func (r *HistoryRepo) ListBySerial(ctx context.Context, serialID string) ([]*entity.HistoryEntry, error) {
	defer r.m.TrackDBOperation("history_list_serial")(time.Now())
	return r.list(ctx, `SELECT `+historyColumns+` FROM history_entry
		WHERE serial_id = $1 ORDER BY ts DESC, seq DESC`, serialID)
}

// ListByPicking entradas de un documento filtradas por tipo y evento.
func (r *HistoryRepo) ListByPicking(ctx context.Context, pickingID string, pickingType entity.PickingType, event entity.HistoryEvent) ([]*entity.HistoryEntry, error) {
	defer r.m.TrackDBOperation("history_list_picking")(time.Now())
	return r.list(ctx, `SELECT `+historyColumns+` FROM history_entry
		WHERE picking_id = $1 AND picking_type = $2 AND event = $3 ORDER BY seq`,
		pickingID, string(pickingType), string(event))
}

// LatestOutgoingPickings último documento de salida completada por serial.
func (r *HistoryRepo) LatestOutgoingPickings(ctx context.Context, serialIDs []string) (map[string]string, error) {
	defer r.m.TrackDBOperation("history_latest_outgoing")(time.Now())
	query := `
		SELECT DISTINCT ON (serial_id) serial_id, picking_id
		FROM history_entry
		WHERE picking_type = 'outgoing' AND event = 'done'`
	args := []any{}
	if len(serialIDs) > 0 {
		query += ` AND serial_id = ANY($1)`
		args = append(args, serialIDs)
	}
	query += ` ORDER BY serial_id, ts DESC, seq DESC`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("latest outgoing: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var serialID, pickingID string
		if err := rows.Scan(&serialID, &pickingID); err != nil {
			return nil, err
		}
		out[serialID] = pickingID
	}
	return out, rows.Err()
}

func (r *HistoryRepo) list(ctx context.Context, query string, args ...any) ([]*entity.HistoryEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()
	var list []*entity.HistoryEntry
	for rows.Next() {
		var e entity.HistoryEntry
		var pickingType, event string
		if err := rows.Scan(&e.ID, &e.Seq, &e.SerialID, &e.MoveLineID, &e.PickingID,
			&pickingType, &event, &e.CompanyID, &e.Timestamp); err != nil {
			return nil, err
		}
		e.PickingType = entity.PickingType(pickingType)
		e.Event = entity.HistoryEvent(event)
		list = append(list, &e)
	}
	return list, rows.Err()
}
