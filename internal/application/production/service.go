// Package production asigna seriales a órdenes de producción en respuesta a los
// eventos del motor de producción (confirmación, completado y división).
package production

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/setsco-serial-api/internal/application/ports"
	"github.com/jhoicas/setsco-serial-api/internal/application/serial"
	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/lifecycle"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/metrics"
	"github.com/jhoicas/setsco-serial-api/pkg/logger"
)

// StockWatcher revisa el stock de seguridad de categorías tras consumir seriales.
type StockWatcher interface {
	CheckCategories(ctx context.Context, categoryIDs []string) error
}

// Confirmed evento ProductionConfirmed.
type Confirmed struct {
	OrderID        string
	CompanyID      string
	ProductID      string
	ProductQty     int
	LocationDestID string
	LotID          string
}

// Completed evento ProductionCompleted.
type Completed struct {
	OrderID     string
	ProductID   string
	QtyProduced int
	LotID       string
}

// Split evento ProductionSplit. ResultingOrderIDs incluye la orden original.
type Split struct {
	OriginalOrderID   string
	ResultingOrderIDs []string
	CompletedQty      int
}

// Assign asignación manual de seriales a una orden.
type Assign struct {
	OrderID   string
	SerialIDs []string
	ActorID   string
}

// CompletionResult seriales enviados a bodega por un completado.
type CompletionResult struct {
	OrderID string
	LotID   string
	Serials []string // nombres, orden de creación
}

// SplitResult reasignaciones hechas por una división.
type SplitResult struct {
	NoOp       bool
	Reassigned map[string][]string // backorder → nombres
	Unassigned []string            // sobrantes sin backorder con capacidad
}

// Service asignación de producción.
type Service struct {
	tx       ports.TxRunner
	repos    ports.Repos
	registry *serial.Registry
	watcher  StockWatcher
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewService construye el servicio. watcher puede ser nil.
func NewService(tx ports.TxRunner, repos ports.Repos, registry *serial.Registry, watcher StockWatcher, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		tx: tx, repos: repos, registry: registry, watcher: watcher,
		log: log.Component("production"), metrics: m, now: time.Now,
	}
}

// OnProductionConfirmed registra (o actualiza) la orden como destino válido de asignaciones.
func (s *Service) OnProductionConfirmed(ctx context.Context, ev Confirmed) (*entity.ProductionOrder, error) {
	if ev.OrderID == "" || ev.ProductID == "" {
		return nil, fmt.Errorf("%w: orden y producto requeridos", domain.ErrInvalidInput)
	}
	if ev.ProductQty < 0 {
		return nil, fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput)
	}
	var out *entity.ProductionOrder
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		order, err := r.Orders.GetForUpdate(ctx, ev.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			order = &entity.ProductionOrder{ID: ev.OrderID, CompanyID: ev.CompanyID}
		} else if order.State != entity.ProductionOrderConfirmed {
			return fmt.Errorf("%w: orden %s en estado %s", domain.ErrConflict, order.ID, order.State)
		}
		order.ProductID = ev.ProductID
		order.ProductQty = ev.ProductQty
		order.State = entity.ProductionOrderConfirmed
		if ev.LocationDestID != "" {
			order.LocationDestID = ev.LocationDestID
		}
		if ev.LotID != "" {
			order.LotProducingID = ev.LotID
		}
		if err := r.Orders.Upsert(ctx, order); err != nil {
			return err
		}
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("order_id", out.ID).Int("product_qty", out.ProductQty).Msg("orden confirmada")
	return out, nil
}

// AssignToProduction reserva seriales para la orden. La capacidad se valida para el lote
// completo; seriales en estado no asignable se reportan por registro.
func (s *Service) AssignToProduction(ctx context.Context, in Assign) (*domain.BatchResult, error) {
	if in.OrderID == "" || len(in.SerialIDs) == 0 {
		return nil, fmt.Errorf("%w: orden y seriales requeridos", domain.ErrInvalidInput)
	}
	res := &domain.BatchResult{}
	categories := map[string]bool{}
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		*res = domain.BatchResult{}
		order, err := r.Orders.GetForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, in.OrderID)
		}
		if !order.IsOpen() {
			return fmt.Errorf("%w: orden %s en estado %s", domain.ErrInvalidTransition, order.ID, order.State)
		}
		units, err := r.Serials.Find(ctx, repository.SerialFilter{IDs: in.SerialIDs, ForUpdate: true})
		if err != nil {
			return err
		}
		found := map[string]bool{}
		for _, u := range units {
			found[u.ID] = true
		}
		for _, id := range in.SerialIDs {
			if !found[id] {
				res.Fail(id, "", domain.ErrNotFound)
			}
		}
		var assignable []*entity.SerialUnit
		for _, u := range units {
			if u.Transferred || !lifecycle.CanTransition(u.State, entity.SerialStateManufacturing) {
				res.Fail(u.ID, u.Name, fmt.Errorf("%w: %s en estado %s", domain.ErrInvalidTransition, u.Name, u.State))
				continue
			}
			assignable = append(assignable, u)
		}
		if order.ProductQty > 0 {
			held, err := r.Serials.Count(ctx, repository.SerialFilter{
				States:             []entity.SerialState{entity.SerialStateManufacturing},
				ProductionOrderIDs: []string{order.ID},
			})
			if err != nil {
				return err
			}
			if held+len(assignable) > order.ProductQty {
				return fmt.Errorf("%w: orden %s tiene %d de %d seriales, se piden %d",
					domain.ErrCapacityExceeded, order.ID, held, order.ProductQty, len(assignable))
			}
		}
		for _, u := range assignable {
			err := s.registry.ApplyInTx(ctx, r, u, entity.SerialStateManufacturing, lifecycle.Change{
				Cause:             lifecycle.CauseProduction,
				ProductionOrderID: order.ID,
				ProductID:         order.ProductID,
			})
			if err != nil {
				res.Fail(u.ID, u.Name, err)
				continue
			}
			res.Add(u.ID, u.Name)
			categories[u.CategoryID] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Allocation("assign", len(res.Succeeded))
	s.metrics.BatchFailures("assign_production", len(res.Failed))
	s.log.Info().Str("order_id", in.OrderID).Strs("serials", res.Names).Strs("failed", res.FailedNames()).
		Str("actor_id", in.ActorID).Msg("seriales asignados a producción")
	s.checkStock(ctx, categories)
	return res, nil
}

// OnProductionCompleted envía a bodega exactamente QtyProduced seriales de la orden
// (los más antiguos) con el lote resultante. Con menos seriales falla sin cambios.
func (s *Service) OnProductionCompleted(ctx context.Context, ev Completed) (*CompletionResult, error) {
	if ev.OrderID == "" || ev.QtyProduced <= 0 {
		return nil, fmt.Errorf("%w: orden y cantidad producida requeridas", domain.ErrInvalidInput)
	}
	defer s.metrics.TrackDBOperation("production_completed")(time.Now())

	out := &CompletionResult{OrderID: ev.OrderID}
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		out.Serials = nil
		order, err := r.Orders.GetForUpdate(ctx, ev.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, ev.OrderID)
		}
		if ev.ProductID != "" && order.ProductID != "" && ev.ProductID != order.ProductID {
			return fmt.Errorf("%w: producto %s no corresponde a la orden", domain.ErrInvalidInput, ev.ProductID)
		}
		lot := ev.LotID
		if lot == "" {
			lot = order.LotProducingID
		}
		if lot == "" {
			return fmt.Errorf("%w: la orden %s no tiene lote", domain.ErrInvalidInput, order.ID)
		}

		units, err := r.Serials.Find(ctx, repository.SerialFilter{
			States:             []entity.SerialState{entity.SerialStateManufacturing},
			ProductionOrderIDs: []string{order.ID},
			Limit:              ev.QtyProduced,
			ForUpdate:          true,
		})
		if err != nil {
			return err
		}
		if len(units) < ev.QtyProduced {
			return fmt.Errorf("%w: orden %s tiene %d seriales en manufactura, se produjeron %d",
				domain.ErrInsufficientSerials, order.ID, len(units), ev.QtyProduced)
		}

		order.QtyProduced += ev.QtyProduced
		order.LotProducingID = lot
		order.State = entity.ProductionOrderDone
		if err := r.Orders.Update(ctx, order); err != nil {
			return err
		}
		for _, u := range units {
			if err := s.registry.ApplyInTx(ctx, r, u, entity.SerialStateWarehouse, lifecycle.Change{
				Cause:      lifecycle.CauseProduction,
				LotID:      lot,
				LocationID: order.LocationDestID,
			}); err != nil {
				return fmt.Errorf("serial %s: %w", u.Name, err)
			}
			out.Serials = append(out.Serials, u.Name)
		}
		out.LotID = lot
		return nil
	})
	if err != nil {
		s.log.Warn().Str("order_id", ev.OrderID).Int("qty", ev.QtyProduced).Err(err).Msg("completado rechazado")
		return nil, err
	}
	s.metrics.Allocation("completed", len(out.Serials))
	s.log.Info().Str("order_id", out.OrderID).Str("lot_id", out.LotID).Strs("serials", out.Serials).Msg("seriales ingresados a bodega")
	return out, nil
}

// OnProductionSplit mueve los seriales en manufactura de las órdenes hermanas a los
// backorders abiertos, en orden de creación y hasta la cantidad pendiente de cada uno.
func (s *Service) OnProductionSplit(ctx context.Context, ev Split) (*SplitResult, error) {
	if ev.OriginalOrderID == "" {
		return nil, fmt.Errorf("%w: orden original requerida", domain.ErrInvalidInput)
	}
	siblings := uniqueIDs(append([]string{ev.OriginalOrderID}, ev.ResultingOrderIDs...))
	if len(siblings) == 1 {
		return &SplitResult{NoOp: true}, nil
	}
	defer s.metrics.TrackDBOperation("production_split")(time.Now())

	out := &SplitResult{}
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		out.Reassigned, out.Unassigned = map[string][]string{}, nil

		orders := make(map[string]*entity.ProductionOrder, len(siblings))
		locked := append([]string(nil), siblings...)
		sort.Strings(locked)
		for _, id := range locked {
			o, err := r.Orders.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if o == nil {
				return fmt.Errorf("%w: orden %s", domain.ErrNotFound, id)
			}
			orders[id] = o
		}

		completed := pickCompleted(orders, siblings, ev.OriginalOrderID)
		if completed == nil {
			return fmt.Errorf("%w: ninguna orden del grupo está completada", domain.ErrConflict)
		}
		if ev.CompletedQty > 0 && completed.QtyProduced != ev.CompletedQty {
			return fmt.Errorf("%w: orden %s reporta %d producidas, el evento indica %d",
				domain.ErrConflict, completed.ID, completed.QtyProduced, ev.CompletedQty)
		}
		if completed.ProductQty != completed.QtyProduced {
			completed.ProductQty = completed.QtyProduced
			if err := r.Orders.Update(ctx, completed); err != nil {
				return err
			}
		}

		var backorders []*entity.ProductionOrder
		for _, id := range siblings {
			if o := orders[id]; o.IsOpen() {
				backorders = append(backorders, o)
			}
		}
		if len(backorders) == 0 {
			return fmt.Errorf("%w: no hay backorder abierto", domain.ErrConflict)
		}

		held, err := r.Serials.Find(ctx, repository.SerialFilter{
			States:             []entity.SerialState{entity.SerialStateManufacturing},
			ProductionOrderIDs: siblings,
			ForUpdate:          true,
		})
		if err != nil {
			return err
		}
		open := make(map[string]bool, len(backorders))
		for _, b := range backorders {
			open[b.ID] = true
		}
		perOrder := map[string]int{}
		var leftover []*entity.SerialUnit
		for _, u := range held {
			if open[u.ProductionOrderID] {
				perOrder[u.ProductionOrderID]++
				continue
			}
			leftover = append(leftover, u)
		}

		for _, b := range backorders {
			if b.LotProducingID == "" && completed.LotProducingID != "" {
				b.LotProducingID = completed.LotProducingID
				if err := r.Orders.Update(ctx, b); err != nil {
					return err
				}
			}
			need := b.QtyRemaining() - perOrder[b.ID]
			for need > 0 && len(leftover) > 0 {
				u := leftover[0]
				leftover = leftover[1:]
				u.ProductionOrderID = b.ID
				if b.ProductID != "" {
					u.ProductID = b.ProductID
				}
				u.UpdatedAt = s.now()
				if err := r.Serials.Update(ctx, u); err != nil {
					return fmt.Errorf("serial %s: %w", u.Name, err)
				}
				out.Reassigned[b.ID] = append(out.Reassigned[b.ID], u.Name)
				need--
			}
		}
		for _, u := range leftover {
			out.Unassigned = append(out.Unassigned, u.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	moved := 0
	for bo, names := range out.Reassigned {
		moved += len(names)
		s.log.Info().Str("backorder_id", bo).Strs("serials", names).Msg("seriales reasignados al backorder")
	}
	if len(out.Unassigned) > 0 {
		s.log.Warn().Str("order_id", ev.OriginalOrderID).Strs("serials", out.Unassigned).Msg("seriales sin backorder con capacidad")
	}
	s.metrics.Allocation("split", moved)
	return out, nil
}

func (s *Service) checkStock(ctx context.Context, categories map[string]bool) {
	if s.watcher == nil || len(categories) == 0 {
		return
	}
	ids := make([]string, 0, len(categories))
	for id := range categories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if err := s.watcher.CheckCategories(ctx, ids); err != nil {
		s.log.Error().Err(err).Msg("revisión de stock de seguridad")
	}
}

// pickCompleted la original si está completada; si no, la primera hermana completada.
func pickCompleted(orders map[string]*entity.ProductionOrder, siblings []string, original string) *entity.ProductionOrder {
	if o := orders[original]; o.State == entity.ProductionOrderDone {
		return o
	}
	for _, id := range siblings {
		if o := orders[id]; o.State == entity.ProductionOrderDone {
			return o
		}
	}
	return nil
}

func uniqueIDs(ids []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
