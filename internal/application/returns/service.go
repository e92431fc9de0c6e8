// Package returns prepara devoluciones de clientes a partir de los seriales
// entregados en el documento original y finaliza su ingreso a bodega.
package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/setsco-serial-api/internal/application/ledger"
	"github.com/jhoicas/setsco-serial-api/internal/application/ports"
	"github.com/jhoicas/setsco-serial-api/internal/application/serial"
	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/lifecycle"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/metrics"
	"github.com/jhoicas/setsco-serial-api/pkg/logger"
)

// Requested evento ReturnRequested.
type Requested struct {
	OriginalPickingID string
	ReturnPickingID   string
	ProductID         string
	Qty               int
	CompanyID         string
}

// Line línea de devolución preparada (una por lote).
type Line struct {
	MoveLineID string
	LotID      string
	Quantity   int
	Serials    []string
}

// Result resultado de la conciliación.
type Result struct {
	ReturnPickingID string
	Requested       int
	Staged          int // incluye seriales ya preparados por un intento anterior
	Lines           []Line
}

// Service conciliación de devoluciones.
type Service struct {
	tx       ports.TxRunner
	registry *serial.Registry
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewService construye el servicio.
func NewService(tx ports.TxRunner, registry *serial.Registry, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{tx: tx, registry: registry, log: log.Component("returns"), metrics: m, now: time.Now}
}

// ReconcileReturn toma los primeros Qty seriales (por nombre) entregados en el documento
// original, crea una línea de devolución por lote y apunta cada serial a su línea.
// El estado del serial no cambia hasta que la devolución se valida.
// Sin candidatos devuelve ErrNoMatchingSerials; con menos de Qty prepara los que hay
// y devuelve el resultado junto con ErrInsufficientShippedSerials.
func (s *Service) ReconcileReturn(ctx context.Context, req Requested) (*Result, error) {
	if req.OriginalPickingID == "" || req.ReturnPickingID == "" || req.ProductID == "" || req.Qty <= 0 {
		return nil, fmt.Errorf("%w: documento original, devolución, producto y cantidad requeridos", domain.ErrInvalidInput)
	}
	res := &Result{ReturnPickingID: req.ReturnPickingID, Requested: req.Qty}
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		res.Lines, res.Staged = nil, 0
		l := ledger.New(r.History, r.Serials, s.metrics)

		candidates, err := l.ShippedOn(ctx, req.OriginalPickingID, req.ProductID)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return fmt.Errorf("%w: %s / %s", domain.ErrNoMatchingSerials, req.OriginalPickingID, req.ProductID)
		}

		existing, err := r.MoveLines.ListByPicking(ctx, req.ReturnPickingID)
		if err != nil {
			return err
		}
		staged := make(map[string]bool, len(existing))
		for _, ml := range existing {
			staged[ml.ID] = true
		}
		var fresh []*entity.SerialUnit
		for _, u := range candidates {
			if staged[u.MoveLineID] {
				res.Staged++
				continue
			}
			fresh = append(fresh, u)
		}
		need := req.Qty - res.Staged
		if need <= 0 {
			return nil
		}
		if len(fresh) > need {
			fresh = fresh[:need]
		}
		if len(fresh) == 0 {
			return nil
		}

		locked, err := lockDelivered(ctx, r.Serials, fresh)
		if err != nil {
			return err
		}
		for _, g := range groupByLot(locked) {
			ml := &entity.MoveLine{
				PickingID:   req.ReturnPickingID,
				PickingType: entity.PickingTypeIncoming,
				ProductID:   req.ProductID,
				LotID:       g.lot,
				Quantity:    len(g.units),
				CreatedAt:   s.now(),
			}
			if err := r.MoveLines.Create(ctx, ml); err != nil {
				return err
			}
			line := Line{MoveLineID: ml.ID, LotID: g.lot, Quantity: ml.Quantity}
			for _, u := range g.units {
				u.MoveLineID = ml.ID
				u.UpdatedAt = s.now()
				if err := r.Serials.Update(ctx, u); err != nil {
					return fmt.Errorf("serial %s: %w", u.Name, err)
				}
				line.Serials = append(line.Serials, u.Name)
			}
			res.Lines = append(res.Lines, line)
			res.Staged += ml.Quantity
		}
		return nil
	})
	if err != nil {
		s.log.Warn().Str("original_picking_id", req.OriginalPickingID).Str("product_id", req.ProductID).Err(err).Msg("devolución no conciliada")
		return nil, err
	}
	s.metrics.Allocation("return_staged", res.Staged)
	s.log.Info().Str("return_picking_id", req.ReturnPickingID).Int("requested", req.Qty).Int("staged", res.Staged).
		Int("lines", len(res.Lines)).Msg("devolución preparada")
	if res.Staged < req.Qty {
		return res, fmt.Errorf("%w: se pidieron %d, hay %d", domain.ErrInsufficientShippedSerials, req.Qty, res.Staged)
	}
	return res, nil
}

// ReceiveInTx finaliza una línea de devolución validada: los seriales entregados apuntados a
// moveLineID (o los indicados, que deben estar apuntados a esa línea) vuelven a bodega y se registra la entrada. Idempotente por línea.
func (s *Service) ReceiveInTx(ctx context.Context, r ports.Repos, pickingID, companyID, moveLineID, locationID string, serialIDs []string) ([]string, error) {
	if moveLineID == "" {
		return nil, fmt.Errorf("%w: línea de movimiento requerida", domain.ErrInvalidInput)
	}
	f := repository.SerialFilter{MoveLineID: moveLineID, ForUpdate: true}
	if len(serialIDs) > 0 {
		f = repository.SerialFilter{IDs: serialIDs, ForUpdate: true}
	}
	units, err := r.Serials.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	// Solo ingresan seriales preparados por ReconcileReturn en esta misma línea.
	var unstaged []string
	for _, u := range units {
		if u.MoveLineID != moveLineID {
			unstaged = append(unstaged, u.Name)
		}
	}
	if len(unstaged) > 0 {
		return nil, domain.NamedError(fmt.Errorf("%w: sin devolución preparada en la línea %s", domain.ErrNotEligible, moveLineID), unstaged)
	}
	l := ledger.New(r.History, r.Serials, s.metrics)
	var received []string
	for _, u := range units {
		done, err := r.History.Exists(ctx, u.ID, moveLineID, entity.HistoryEventDone)
		if err != nil {
			return nil, err
		}
		if done {
			continue
		}
		at := s.now()
		if err := s.registry.ApplyInTx(ctx, r, u, entity.SerialStateWarehouse, lifecycle.Change{
			Cause:      lifecycle.CauseReturn,
			MoveLineID: moveLineID,
			LocationID: locationID,
			At:         at,
		}); err != nil {
			return nil, fmt.Errorf("serial %s: %w", u.Name, err)
		}
		if err := l.Append(ctx, &entity.HistoryEntry{
			SerialID:    u.ID,
			MoveLineID:  moveLineID,
			PickingID:   pickingID,
			PickingType: entity.PickingTypeIncoming,
			Event:       entity.HistoryEventDone,
			CompanyID:   companyID,
			Timestamp:   at,
		}); err != nil {
			return nil, err
		}
		received = append(received, u.Name)
	}
	return received, nil
}

func lockDelivered(ctx context.Context, serials repository.SerialRepository, selection []*entity.SerialUnit) ([]*entity.SerialUnit, error) {
	ids := make([]string, 0, len(selection))
	for _, u := range selection {
		ids = append(ids, u.ID)
	}
	locked, err := serials.Find(ctx, repository.SerialFilter{IDs: ids, ForUpdate: true})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.SerialUnit, len(locked))
	for _, u := range locked {
		byID[u.ID] = u
	}
	out := make([]*entity.SerialUnit, 0, len(selection))
	for _, u := range selection {
		cur, ok := byID[u.ID]
		if !ok || cur.State != entity.SerialStateDelivered {
			return nil, fmt.Errorf("%w: %s cambió de estado", domain.ErrConflict, u.Name)
		}
		out = append(out, cur)
	}
	return out, nil
}

type lotGroup struct {
	lot   string
	units []*entity.SerialUnit
}

// groupByLot conserva el orden de aparición de cada lote.
func groupByLot(units []*entity.SerialUnit) []lotGroup {
	index := map[string]int{}
	var groups []lotGroup
	for _, u := range units {
		i, ok := index[u.LotID]
		if !ok {
			i = len(groups)
			index[u.LotID] = i
			groups = append(groups, lotGroup{lot: u.LotID})
		}
		groups[i].units = append(groups[i].units, u)
	}
	return groups
}
