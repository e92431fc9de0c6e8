// Package ledger expone el historial append-only de seriales y las consultas
// de trazabilidad (última salida, seriales entregados en un documento).
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/lifecycle"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/metrics"
)

// Ledger opera sobre repositorios del pool o de una transacción en curso.
type Ledger struct {
	history repository.HistoryRepository
	serials repository.SerialRepository
	metrics *metrics.Metrics
}

// New construye el ledger. m puede ser nil.
func New(history repository.HistoryRepository, serials repository.SerialRepository, m *metrics.Metrics) *Ledger {
	return &Ledger{history: history, serials: serials, metrics: m}
}

// Append registra un evento. Un (serial, línea, evento) repetido devuelve ErrDuplicateEvent
// y el historial no cambia. La línea es obligatoria: forma parte de la clave única.
func (l *Ledger) Append(ctx context.Context, e *entity.HistoryEntry) error {
	if e.SerialID == "" || e.MoveLineID == "" || e.Event == "" {
		return fmt.Errorf("%w: serial, línea y evento son obligatorios", domain.ErrInvalidInput)
	}
	exists, err := l.history.Exists(ctx, e.SerialID, e.MoveLineID, e.Event)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicateEvent
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if err := l.history.Append(ctx, e); err != nil {
		return err
	}
	l.metrics.HistoryAppend(string(e.PickingType), string(e.Event))
	return nil
}

// AppendIfAbsent como Append pero trata el duplicado como éxito (reintentos de validación).
func (l *Ledger) AppendIfAbsent(ctx context.Context, e *entity.HistoryEntry) (bool, error) {
	err := l.Append(ctx, e)
	if errors.Is(err, domain.ErrDuplicateEvent) {
		return false, nil
	}
	return err == nil, err
}

// GetHistory historial de un serial, más reciente primero.
func (l *Ledger) GetHistory(ctx context.Context, serialID string) ([]*entity.HistoryEntry, error) {
	return l.history.ListBySerial(ctx, serialID)
}

// LastOutgoingFor documento de la última salida completada de cada serial. Los seriales
// que nunca salieron no aparecen en el mapa.
func (l *Ledger) LastOutgoingFor(ctx context.Context, serialIDs []string) (map[string]string, error) {
	if len(serialIDs) == 0 {
		return map[string]string{}, nil
	}
	return l.history.LatestOutgoingPickings(ctx, serialIDs)
}

// ShippedOn seriales entregados en pickingID para productID, ordenados por nombre.
// Si el historial no tiene salidas para ese documento se usa delivery_picking_id
// (datos previos al historial). Se excluyen seriales cuya última salida fue otro documento.
func (l *Ledger) ShippedOn(ctx context.Context, pickingID, productID string) ([]*entity.SerialUnit, error) {
	entries, err := l.history.ListByPicking(ctx, pickingID, entity.PickingTypeOutgoing, entity.HistoryEventDone)
	if err != nil {
		return nil, err
	}
	var units []*entity.SerialUnit
	if ids := serialIDs(entries); len(ids) > 0 {
		units, err = l.serials.Find(ctx, repository.SerialFilter{
			IDs:       ids,
			ProductID: productID,
			States:    []entity.SerialState{entity.SerialStateDelivered},
		})
		if err != nil {
			return nil, err
		}
	}
	if len(units) == 0 {
		// TODO: retirar cuando Backfill haya cubierto todos los documentos con delivery_picking_id.
		units, err = l.serials.Find(ctx, repository.SerialFilter{
			DeliveryPickingID: pickingID,
			ProductID:         productID,
			States:            []entity.SerialState{entity.SerialStateDelivered},
		})
		if err != nil {
			return nil, err
		}
	}
	if len(units) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(units))
	for _, u := range units {
		ids = append(ids, u.ID)
	}
	latest, err := l.history.LatestOutgoingPickings(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := units[:0]
	for _, u := range units {
		if p, ok := latest[u.ID]; ok && p != pickingID {
			continue
		}
		out = append(out, u)
	}
	lifecycle.SortByName(out)
	return out, nil
}

// Backfill crea entradas de salida para seriales entregados en pickingID que solo
// tienen datos heredados (delivery_*). Devuelve cuántas entradas se crearon.
func (l *Ledger) Backfill(ctx context.Context, pickingID string) (int, error) {
	if pickingID == "" {
		return 0, fmt.Errorf("%w: documento requerido", domain.ErrInvalidInput)
	}
	units, err := l.serials.Find(ctx, repository.SerialFilter{DeliveryPickingID: pickingID})
	if err != nil {
		return 0, err
	}
	created := 0
	for _, u := range units {
		if u.DeliveryMoveLineID == "" {
			continue
		}
		at := u.UpdatedAt
		if u.DeliveryDate != nil {
			at = *u.DeliveryDate
		}
		ok, err := l.AppendIfAbsent(ctx, &entity.HistoryEntry{
			SerialID:    u.ID,
			MoveLineID:  u.DeliveryMoveLineID,
			PickingID:   pickingID,
			PickingType: entity.PickingTypeOutgoing,
			Event:       entity.HistoryEventDone,
			CompanyID:   u.CompanyID,
			Timestamp:   at,
		})
		if err != nil {
			return created, fmt.Errorf("backfill %s: %w", u.Name, err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func serialIDs(entries []*entity.HistoryEntry) []string {
	seen := make(map[string]bool, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if !seen[e.SerialID] {
			seen[e.SerialID] = true
			ids = append(ids, e.SerialID)
		}
	}
	return ids
}
