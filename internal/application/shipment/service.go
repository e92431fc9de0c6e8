// Package shipment aplica la validación de documentos de inventario sobre los seriales:
// salidas (entrega), entradas (devoluciones) y traslados internos.
package shipment

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/setsco-serial-api/internal/application/ledger"
	"github.com/jhoicas/setsco-serial-api/internal/application/ports"
	"github.com/jhoicas/setsco-serial-api/internal/application/returns"
	"github.com/jhoicas/setsco-serial-api/internal/application/serial"
	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/lifecycle"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/metrics"
	"github.com/jhoicas/setsco-serial-api/pkg/logger"
)

// Line línea del documento validado.
type Line struct {
	MoveLineID string
	ProductID  string
	LotID      string
	Qty        int
	SerialIDs  []string // opcional: seriales escaneados en la línea
}

// Validated evento ShipmentValidated.
type Validated struct {
	PickingID      string
	PickingType    entity.PickingType
	CompanyID      string
	LocationDestID string
	Lines          []Line
}

// LineResult resultado por línea; Err nil si la línea se aplicó.
type LineResult struct {
	MoveLineID string
	Serials    []string
	Skipped    int // seriales ya procesados en un intento anterior
	Err        error
}

// Result resultado de la validación.
type Result struct {
	PickingID string
	Lines     []LineResult
}

// Failed cantidad de líneas con error.
func (r *Result) Failed() int {
	n := 0
	for _, l := range r.Lines {
		if l.Err != nil {
			n++
		}
	}
	return n
}

// Service validación de documentos.
type Service struct {
	tx       ports.TxRunner
	registry *serial.Registry
	returns  *returns.Service
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewService construye el servicio.
func NewService(tx ports.TxRunner, registry *serial.Registry, ret *returns.Service, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{tx: tx, registry: registry, returns: ret, log: log.Component("shipment"), metrics: m, now: time.Now}
}

// OnShipmentValidated procesa cada línea en su propia transacción. Los errores de una
// línea quedan en su LineResult y no detienen las demás.
func (s *Service) OnShipmentValidated(ctx context.Context, ev Validated) (*Result, error) {
	if ev.PickingID == "" || len(ev.Lines) == 0 {
		return nil, fmt.Errorf("%w: documento y líneas requeridos", domain.ErrInvalidInput)
	}
	switch ev.PickingType {
	case entity.PickingTypeOutgoing, entity.PickingTypeIncoming, entity.PickingTypeInternal:
	default:
		return nil, fmt.Errorf("%w: tipo de documento %q", domain.ErrInvalidInput, ev.PickingType)
	}

	res := &Result{PickingID: ev.PickingID}
	for _, line := range ev.Lines {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		lr := LineResult{MoveLineID: line.MoveLineID}
		if line.MoveLineID == "" {
			lr.Err = fmt.Errorf("%w: línea sin identificador", domain.ErrInvalidInput)
			res.Lines = append(res.Lines, lr)
			continue
		}
		err := s.tx.Run(ctx, func(r ports.Repos) error {
			lr.Serials, lr.Skipped = nil, 0
			switch ev.PickingType {
			case entity.PickingTypeOutgoing:
				return s.deliverLine(ctx, r, ev, line, &lr)
			case entity.PickingTypeIncoming:
				names, err := s.returns.ReceiveInTx(ctx, r, ev.PickingID, ev.CompanyID, line.MoveLineID, ev.LocationDestID, line.SerialIDs)
				lr.Serials = names
				return err
			default:
				return s.moveLine(ctx, r, ev, line, &lr)
			}
		})
		if err != nil {
			lr.Serials = nil
			lr.Err = err
			s.log.Warn().Str("picking_id", ev.PickingID).Str("move_line_id", line.MoveLineID).Err(err).Msg("línea no aplicada")
		}
		res.Lines = append(res.Lines, lr)
	}
	s.metrics.BatchFailures("shipment_"+string(ev.PickingType), res.Failed())
	s.log.Info().Str("picking_id", ev.PickingID).Str("picking_type", string(ev.PickingType)).
		Int("lines", len(res.Lines)).Int("failed", res.Failed()).Msg("documento validado")
	return res, nil
}

func (s *Service) deliverLine(ctx context.Context, r ports.Repos, ev Validated, line Line, lr *LineResult) error {
	if line.Qty <= 0 {
		return fmt.Errorf("%w: cantidad de la línea", domain.ErrInvalidInput)
	}
	done, err := r.Serials.Count(ctx, repository.SerialFilter{
		MoveLineID: line.MoveLineID,
		States:     []entity.SerialState{entity.SerialStateDelivered},
	})
	if err != nil {
		return err
	}
	lr.Skipped = done
	need := line.Qty - done
	if need <= 0 {
		return nil
	}

	units, err := s.pickForDelivery(ctx, r, line, need)
	if err != nil {
		return err
	}
	if len(units) < need {
		return fmt.Errorf("%w: línea %s requiere %d, hay %d en bodega",
			domain.ErrInsufficientSerials, line.MoveLineID, need, len(units))
	}

	l := ledger.New(r.History, r.Serials, s.metrics)
	for _, u := range units {
		at := s.now()
		if err := s.registry.ApplyInTx(ctx, r, u, entity.SerialStateDelivered, lifecycle.Change{
			Cause:      lifecycle.CauseShipment,
			MoveLineID: line.MoveLineID,
			PickingID:  ev.PickingID,
			LocationID: ev.LocationDestID,
			At:         at,
		}); err != nil {
			return fmt.Errorf("serial %s: %w", u.Name, err)
		}
		if err := l.Append(ctx, &entity.HistoryEntry{
			SerialID:    u.ID,
			MoveLineID:  line.MoveLineID,
			PickingID:   ev.PickingID,
			PickingType: entity.PickingTypeOutgoing,
			Event:       entity.HistoryEventDone,
			CompanyID:   ev.CompanyID,
			Timestamp:   at,
		}); err != nil {
			return err
		}
		lr.Serials = append(lr.Serials, u.Name)
	}
	return nil
}

// pickForDelivery seriales escaneados; si no, los apuntados a la línea; si no, los más
// antiguos en bodega del producto y lote.
func (s *Service) pickForDelivery(ctx context.Context, r ports.Repos, line Line, need int) ([]*entity.SerialUnit, error) {
	warehouse := []entity.SerialState{entity.SerialStateWarehouse}
	if len(line.SerialIDs) > 0 {
		units, err := r.Serials.Find(ctx, repository.SerialFilter{IDs: line.SerialIDs, States: warehouse, ForUpdate: true})
		if err != nil {
			return nil, err
		}
		if len(units) > need {
			return nil, fmt.Errorf("%w: línea %s trae %d seriales para %d unidades",
				domain.ErrInvalidInput, line.MoveLineID, len(units), need)
		}
		return units, nil
	}
	units, err := r.Serials.Find(ctx, repository.SerialFilter{
		MoveLineID: line.MoveLineID, States: warehouse, Limit: need, ForUpdate: true,
	})
	if err != nil || len(units) > 0 {
		return units, err
	}
	if line.ProductID == "" {
		return nil, nil
	}
	return r.Serials.Find(ctx, repository.SerialFilter{
		ProductID: line.ProductID, LotID: line.LotID, States: warehouse, Limit: need, ForUpdate: true,
	})
}

func (s *Service) moveLine(ctx context.Context, r ports.Repos, ev Validated, line Line, lr *LineResult) error {
	f := repository.SerialFilter{MoveLineID: line.MoveLineID, ForUpdate: true}
	if len(line.SerialIDs) > 0 {
		f = repository.SerialFilter{IDs: line.SerialIDs, ForUpdate: true}
	}
	units, err := r.Serials.Find(ctx, f)
	if err != nil {
		return err
	}
	l := ledger.New(r.History, r.Serials, s.metrics)
	for _, u := range units {
		at := s.now()
		created, err := l.AppendIfAbsent(ctx, &entity.HistoryEntry{
			SerialID:    u.ID,
			MoveLineID:  line.MoveLineID,
			PickingID:   ev.PickingID,
			PickingType: entity.PickingTypeInternal,
			Event:       entity.HistoryEventDone,
			CompanyID:   ev.CompanyID,
			Timestamp:   at,
		})
		if err != nil {
			return err
		}
		if !created {
			lr.Skipped++
			continue
		}
		if ev.LocationDestID != "" {
			u.LocationID = ev.LocationDestID
			u.UpdatedAt = at
			if err := r.Serials.Update(ctx, u); err != nil {
				return err
			}
		}
		lr.Serials = append(lr.Serials, u.Name)
	}
	return nil
}
