// Package serial contiene SerialRegistry: alta de seriales y dueño único de las transiciones de estado.
package serial

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/setsco-serial-api/internal/application/batch"
	"github.com/jhoicas/setsco-serial-api/internal/application/ports"
	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/lifecycle"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/metrics"
	"github.com/jhoicas/setsco-serial-api/pkg/logger"
)

// CreateInput alta de un serial.
type CreateInput struct {
	CompanyID  string
	CategoryID string
	Name       string
	SerialType entity.SerialType
	ProductID  string
	Purchased  bool // registra el serial como comprado (proveedor externo)
}

// RangeInput alta de un rango AS00001..AS00100.
type RangeInput struct {
	CompanyID  string
	CategoryID string
	Start      string
	End        string
	SerialType entity.SerialType
	ProductID  string
	Purchased  bool
}

// RangeResult seriales creados y nombres omitidos por existir ya en la categoría.
type RangeResult struct {
	Created []*entity.SerialUnit
	Skipped []string
}

// TransitionInput datos de una transición manual.
type TransitionInput struct {
	ProductionOrderID string
	LotID             string
	LocationID        string
	MoveLineID        string
	PickingID         string
}

// Registry servicio de seriales.
type Registry struct {
	tx      ports.TxRunner
	repos   ports.Repos
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewRegistry construye el registro. repos se usa para lecturas fuera de transacción.
func NewRegistry(tx ports.TxRunner, repos ports.Repos, log *logger.Logger, m *metrics.Metrics) *Registry {
	return &Registry{tx: tx, repos: repos, log: log.Component("serial_registry"), metrics: m, now: time.Now}
}

// Create registra un serial nuevo (o comprado). Nombre único por categoría.
func (s *Registry) Create(ctx context.Context, in CreateInput) (*entity.SerialUnit, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	serialType, err := s.validateCategory(ctx, in.CompanyID, in.CategoryID, in.SerialType)
	if err != nil {
		return nil, err
	}
	u := s.newUnit(in.CompanyID, in.CategoryID, name, serialType, in.ProductID, in.Purchased)
	err = s.tx.Run(ctx, func(r ports.Repos) error {
		existing, err := r.Serials.GetByName(ctx, in.CategoryID, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateName, name)
		}
		return r.Serials.Create(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("serial", u.Name).Str("category_id", u.CategoryID).Msg("serial creado")
	return u, nil
}

// CreateRange crea todos los nombres del rango en una transacción, omitiendo los existentes.
func (s *Registry) CreateRange(ctx context.Context, in RangeInput) (*RangeResult, error) {
	names, err := lifecycle.ExpandRange(in.Start, in.End)
	if err != nil {
		return nil, err
	}
	serialType, err := s.validateCategory(ctx, in.CompanyID, in.CategoryID, in.SerialType)
	if err != nil {
		return nil, err
	}
	res := &RangeResult{}
	err = s.tx.Run(ctx, func(r ports.Repos) error {
		res.Created, res.Skipped = nil, nil
		for _, name := range names {
			existing, err := r.Serials.GetByName(ctx, in.CategoryID, name)
			if err != nil {
				return err
			}
			if existing != nil {
				res.Skipped = append(res.Skipped, name)
				continue
			}
			u := s.newUnit(in.CompanyID, in.CategoryID, name, serialType, in.ProductID, in.Purchased)
			if err := r.Serials.Create(ctx, u); err != nil {
				return fmt.Errorf("crear %s: %w", name, err)
			}
			res.Created = append(res.Created, u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("start", in.Start).Str("end", in.End).
		Int("created", len(res.Created)).Int("skipped", len(res.Skipped)).Msg("rango de seriales creado")
	return res, nil
}

// Get obtiene un serial por ID.
func (s *Registry) Get(ctx context.Context, id string) (*entity.SerialUnit, error) {
	u, err := s.repos.Serials.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

// List seriales según filtro (sin bloqueo).
func (s *Registry) List(ctx context.Context, f repository.SerialFilter) ([]*entity.SerialUnit, error) {
	f.ForUpdate = false
	return s.repos.Serials.Find(ctx, f)
}

// Transition transición manual de un serial. delivered → warehouse no se admite por esta vía.
func (s *Registry) Transition(ctx context.Context, id string, to entity.SerialState, in TransitionInput) (*entity.SerialUnit, error) {
	var out *entity.SerialUnit
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		u, err := r.Serials.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.ErrNotFound
		}
		if err := s.ApplyInTx(ctx, r, u, to, manualChange(in)); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkPurchased marca seriales new como comprados.
func (s *Registry) MarkPurchased(ctx context.Context, ids []string) (*domain.BatchResult, error) {
	return s.transitionBatch(ctx, "purchase", ids, entity.SerialStatePurchased)
}

// VoidFromProduction devuelve seriales en manufactura a new, liberando la orden.
func (s *Registry) VoidFromProduction(ctx context.Context, ids []string) (*domain.BatchResult, error) {
	return s.transitionBatch(ctx, "void", ids, entity.SerialStateNew)
}

// Scrap da de baja seriales (estado terminal).
func (s *Registry) Scrap(ctx context.Context, ids []string) (*domain.BatchResult, error) {
	return s.transitionBatch(ctx, "scrap", ids, entity.SerialStateScrapped)
}

func (s *Registry) transitionBatch(ctx context.Context, op string, ids []string, to entity.SerialState) (*domain.BatchResult, error) {
	units, res, err := batch.Load(ctx, s.repos.Serials, ids)
	if err != nil {
		return nil, err
	}
	err = batch.Run(ctx, s.tx, units, res, func(ctx context.Context, r ports.Repos, u *entity.SerialUnit) error {
		return s.ApplyInTx(ctx, r, u, to, lifecycle.Change{Cause: lifecycle.CauseManual})
	})
	s.metrics.BatchFailures(op, len(res.Failed))
	if len(res.Failed) > 0 {
		s.log.Warn().Str("operation", op).Strs("failed", res.FailedNames()).Msg("seriales no procesados")
	}
	return res, err
}

// ApplyInTx valida capacidad contra la orden, aplica la transición y persiste u usando r.
// Es el único punto que muta el estado de un serial en la línea principal.
func (s *Registry) ApplyInTx(ctx context.Context, r ports.Repos, u *entity.SerialUnit, to entity.SerialState, ch lifecycle.Change) error {
	from := u.State
	if !u.Transferred {
		if err := s.checkOrderCapacity(ctx, r, u, to, &ch); err != nil {
			return err
		}
	}
	if ch.At.IsZero() {
		ch.At = s.now()
	}
	if err := lifecycle.Transition(u, to, ch); err != nil {
		return err
	}
	if err := r.Serials.Update(ctx, u); err != nil {
		return fmt.Errorf("update serial %s: %w", u.Name, err)
	}
	cause := string(ch.Cause)
	if cause == "" {
		cause = string(lifecycle.CauseManual)
	}
	s.metrics.Transition(string(from), string(to), cause)
	s.log.Debug().Str("serial", u.Name).Str("from", string(from)).Str("to", string(to)).Str("cause", cause).Msg("transición")
	return nil
}

func (s *Registry) checkOrderCapacity(ctx context.Context, r ports.Repos, u *entity.SerialUnit, to entity.SerialState, ch *lifecycle.Change) error {
	switch {
	case to == entity.SerialStateManufacturing:
		if ch.ProductionOrderID == "" {
			return fmt.Errorf("%w: orden de producción requerida", domain.ErrInvalidInput)
		}
		if !lifecycle.CanTransition(u.State, to) {
			return nil // lifecycle reporta la transición inválida
		}
		order, err := r.Orders.GetForUpdate(ctx, ch.ProductionOrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, ch.ProductionOrderID)
		}
		if !order.IsOpen() {
			return fmt.Errorf("%w: orden %s en estado %s", domain.ErrInvalidTransition, order.ID, order.State)
		}
		if order.ProductQty > 0 {
			held, err := r.Serials.Count(ctx, repository.SerialFilter{
				States:             []entity.SerialState{entity.SerialStateManufacturing},
				ProductionOrderIDs: []string{order.ID},
			})
			if err != nil {
				return err
			}
			if held+1 > order.ProductQty {
				return fmt.Errorf("%w: orden %s admite %d seriales", domain.ErrCapacityExceeded, order.ID, order.ProductQty)
			}
		}
		if ch.ProductID == "" {
			ch.ProductID = order.ProductID
		}
	case to == entity.SerialStateWarehouse && u.State == entity.SerialStateManufacturing:
		order, err := r.Orders.GetForUpdate(ctx, u.ProductionOrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, u.ProductionOrderID)
		}
		produced, err := r.Serials.Count(ctx, repository.SerialFilter{ProducedOrderID: order.ID})
		if err != nil {
			return err
		}
		if produced+1 > order.QtyProduced {
			return fmt.Errorf("%w: orden %s produjo %d", domain.ErrCapacityExceeded, order.ID, order.QtyProduced)
		}
		if ch.LotID == "" {
			ch.LotID = order.LotProducingID
		}
		if ch.LocationID == "" {
			ch.LocationID = order.LocationDestID
		}
	}
	return nil
}

// Link asocia el serial a un equipo físico; el equipo no puede estar asociado a otro serial activo.
func (s *Registry) Link(ctx context.Context, id, linkedUnitID string) (*entity.SerialUnit, error) {
	linkedUnitID = strings.TrimSpace(linkedUnitID)
	if linkedUnitID == "" {
		return nil, fmt.Errorf("%w: equipo requerido", domain.ErrInvalidInput)
	}
	var out *entity.SerialUnit
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		u, err := r.Serials.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.ErrNotFound
		}
		if !u.Active {
			return fmt.Errorf("%w: serial archivado", domain.ErrConflict)
		}
		taken, err := r.Serials.ExistsActiveLink(ctx, linkedUnitID, u.ID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: equipo %s ya asociado", domain.ErrDuplicate, linkedUnitID)
		}
		u.LinkedUnitID = linkedUnitID
		u.UpdatedAt = s.now()
		if err := r.Serials.Update(ctx, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	return out, err
}

// Archive desactiva el serial; su historial se conserva.
func (s *Registry) Archive(ctx context.Context, id string) error {
	return s.tx.Run(ctx, func(r ports.Repos) error {
		u, err := r.Serials.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.ErrNotFound
		}
		if u.State == entity.SerialStateManufacturing && !u.Transferred {
			return fmt.Errorf("%w: serial retenido por la orden %s", domain.ErrConflict, u.ProductionOrderID)
		}
		u.Active = false
		u.UpdatedAt = s.now()
		return r.Serials.Update(ctx, u)
	})
}

func (s *Registry) validateCategory(ctx context.Context, companyID, categoryID string, t entity.SerialType) (entity.SerialType, error) {
	if categoryID == "" {
		return "", fmt.Errorf("%w: categoría requerida", domain.ErrInvalidInput)
	}
	switch t {
	case "":
		t = entity.SerialTypeSETSCO
	case entity.SerialTypeSETSCO, entity.SerialTypeTUV:
	default:
		return "", fmt.Errorf("%w: tipo de serial %q", domain.ErrInvalidInput, t)
	}
	cat, err := s.repos.Categories.GetByID(ctx, categoryID)
	if err != nil {
		return "", err
	}
	if cat == nil || (companyID != "" && cat.CompanyID != companyID) {
		return "", fmt.Errorf("%w: categoría %s", domain.ErrNotFound, categoryID)
	}
	if !cat.Active {
		return "", fmt.Errorf("%w: categoría inactiva", domain.ErrConflict)
	}
	return t, nil
}

func (s *Registry) newUnit(companyID, categoryID, name string, t entity.SerialType, productID string, purchased bool) *entity.SerialUnit {
	state := entity.SerialStateNew
	if purchased {
		state = entity.SerialStatePurchased
	}
	return &entity.SerialUnit{
		Name:       name,
		SerialType: t,
		CategoryID: categoryID,
		CompanyID:  companyID,
		ProductID:  productID,
		State:      state,
		Active:     true,
	}
}

func manualChange(in TransitionInput) lifecycle.Change {
	return lifecycle.Change{
		Cause:             lifecycle.CauseManual,
		ProductionOrderID: in.ProductionOrderID,
		LotID:             in.LotID,
		LocationID:        in.LocationID,
		MoveLineID:        in.MoveLineID,
		PickingID:         in.PickingID,
	}
}
