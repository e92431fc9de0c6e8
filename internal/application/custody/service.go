// Package custody transfiere la custodia de seriales entre empresas del grupo.
package custody

import (
	"context"
	"fmt"
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

// AssignInput cesión de seriales a otra empresa.
type AssignInput struct {
	SerialIDs []string
	CompanyID string
	ActorID   string
}

// ReceiveInput recepción de seriales cedidos.
type ReceiveInput struct {
	SerialIDs          []string
	ReceivingCompanyID string
	ProductID          string
	LocationID         string
	ActorID            string
}

// Service transferencias de custodia. Todas las precondiciones se validan antes de
// mutar; luego cada serial se confirma en su propia transacción.
type Service struct {
	tx      ports.TxRunner
	serials repository.SerialRepository
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService construye el servicio.
func NewService(tx ports.TxRunner, serials repository.SerialRepository, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{tx: tx, serials: serials, log: log.Component("custody"), metrics: m, now: time.Now}
}

// AssignToCompany cede los seriales (new o warehouse) a CompanyID.
// Si alguno no es elegible no se muta ninguno y el error nombra a los infractores.
func (s *Service) AssignToCompany(ctx context.Context, in AssignInput) (*domain.BatchResult, error) {
	if in.CompanyID == "" {
		return nil, fmt.Errorf("%w: empresa destino requerida", domain.ErrInvalidInput)
	}
	eligible := func(u *entity.SerialUnit) bool { return lifecycle.CanAssignCustody(u, in.CompanyID) }
	return s.run(ctx, "assign", in.SerialIDs, in.ActorID, eligible, func(u *entity.SerialUnit) error {
		return lifecycle.AssignCustody(u, in.CompanyID, s.now())
	})
}

// ReceiveFromCompany recibe seriales cedidos en la bodega de ReceivingCompanyID.
func (s *Service) ReceiveFromCompany(ctx context.Context, in ReceiveInput) (*domain.BatchResult, error) {
	if in.ReceivingCompanyID == "" || in.LocationID == "" {
		return nil, fmt.Errorf("%w: empresa receptora y ubicación requeridas", domain.ErrInvalidInput)
	}
	eligible := func(u *entity.SerialUnit) bool { return lifecycle.CanReceiveCustody(u, in.ReceivingCompanyID) }
	return s.run(ctx, "receive", in.SerialIDs, in.ActorID, eligible, func(u *entity.SerialUnit) error {
		return lifecycle.ReceiveCustody(u, in.ReceivingCompanyID, in.ProductID, in.LocationID, s.now())
	})
}

// Reverse restaura el snapshot previo de cada serial elegible. Los no elegibles se
// reportan por registro; si ninguno lo es se devuelve ErrNotEligible.
func (s *Service) Reverse(ctx context.Context, serialIDs []string, actorID string) (*domain.BatchResult, error) {
	units, res, err := batch.Load(ctx, s.serials, serialIDs)
	if err != nil {
		return nil, err
	}
	var candidates []*entity.SerialUnit
	for _, u := range units {
		if lifecycle.CanReverse(u) {
			candidates = append(candidates, u)
		} else {
			res.Fail(u.ID, u.Name, domain.ErrNotEligible)
		}
	}
	if len(candidates) == 0 {
		return res, domain.NamedError(domain.ErrNotEligible, res.FailedNames())
	}
	err = batch.Run(ctx, s.tx, candidates, res, func(ctx context.Context, r ports.Repos, u *entity.SerialUnit) error {
		if err := lifecycle.Reverse(u, s.now()); err != nil {
			return err
		}
		return r.Serials.Update(ctx, u)
	})
	s.record("reverse", actorID, res)
	return res, err
}

func (s *Service) run(
	ctx context.Context,
	op string,
	ids []string,
	actorID string,
	eligible func(*entity.SerialUnit) bool,
	mutate func(*entity.SerialUnit) error,
) (*domain.BatchResult, error) {
	units, res, err := batch.Load(ctx, s.serials, ids)
	if err != nil {
		return nil, err
	}
	if len(res.Failed) > 0 {
		return res, domain.NamedError(domain.ErrNotFound, res.FailedNames())
	}
	for _, u := range units {
		if !eligible(u) {
			res.Fail(u.ID, u.Name, domain.ErrIneligibleState)
		}
	}
	if len(res.Failed) > 0 {
		return res, domain.NamedError(domain.ErrIneligibleState, res.FailedNames())
	}

	err = batch.Run(ctx, s.tx, units, res, func(ctx context.Context, r ports.Repos, u *entity.SerialUnit) error {
		// revalidar bajo bloqueo: otro proceso pudo moverlo desde la validación
		if !eligible(u) {
			return domain.ErrIneligibleState
		}
		if err := mutate(u); err != nil {
			return err
		}
		return r.Serials.Update(ctx, u)
	})
	s.record(op, actorID, res)
	return res, err
}

// record deja la nota de auditoría por serial.
func (s *Service) record(op, actorID string, res *domain.BatchResult) {
	for _, name := range res.Names {
		s.metrics.Custody(op, true)
		s.log.Info().Str("operation", op).Str("serial", name).Str("actor_id", actorID).Msg("custodia actualizada")
	}
	for _, f := range res.Failed {
		s.metrics.Custody(op, false)
		s.log.Warn().Str("operation", op).Str("serial", f.Name).Str("serial_id", f.SerialID).Err(f.Err).Msg("custodia no aplicada")
	}
}
