// Package lifecycle contiene la máquina de estados de seriales: funciones puras sin persistencia.
// Las verificaciones que requieren datos de órdenes (capacidad) viven en la capa de aplicación.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
)

// Cause origen de una transición.
type Cause string

const (
	CauseManual     Cause = "manual"
	CauseProduction Cause = "production"
	CauseShipment   Cause = "shipment"
	CauseReturn     Cause = "return"
)

// Change datos que acompañan una transición.
type Change struct {
	Cause             Cause
	ProductionOrderID string
	ProductID         string
	LotID             string
	LocationID        string
	MoveLineID        string
	PickingID         string
	At                time.Time
}

// allowed grafo de transiciones de la línea principal (sin custodia).
var allowed = map[entity.SerialState][]entity.SerialState{
	entity.SerialStateNew:           {entity.SerialStatePurchased, entity.SerialStateManufacturing, entity.SerialStateScrapped},
	entity.SerialStatePurchased:     {entity.SerialStateManufacturing, entity.SerialStateScrapped},
	entity.SerialStateManufacturing: {entity.SerialStateWarehouse, entity.SerialStateNew, entity.SerialStateScrapped},
	entity.SerialStateWarehouse:     {entity.SerialStateDelivered, entity.SerialStateScrapped},
	entity.SerialStateDelivered:     {entity.SerialStateWarehouse, entity.SerialStateScrapped},
}

// CanTransition indica si from → to es una arista del grafo.
func CanTransition(from, to entity.SerialState) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition aplica to sobre u validando el grafo y los datos obligatorios.
// Seriales en custodia (Transferred) solo pueden moverse con ReceiveCustody o Reverse.
func Transition(u *entity.SerialUnit, to entity.SerialState, ch Change) error {
	if u == nil {
		return domain.ErrNotFound
	}
	if !to.Valid() {
		return fmt.Errorf("%w: estado destino %q", domain.ErrInvalidInput, to)
	}
	from := u.State
	if u.Transferred && to != entity.SerialStateScrapped {
		return fmt.Errorf("%w: %s está en custodia de otra empresa", domain.ErrInvalidTransition, u.Name)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, from, to)
	}
	at := ch.At
	if at.IsZero() {
		at = time.Now()
	}
	prev := u.Snapshot()

	switch to {
	case entity.SerialStatePurchased:
		// sin datos adicionales
	case entity.SerialStateManufacturing:
		if ch.ProductionOrderID == "" {
			return fmt.Errorf("%w: orden de producción requerida", domain.ErrInvalidInput)
		}
		u.ProductionOrderID = ch.ProductionOrderID
		u.ProducedOrderID = ""
		if ch.ProductID != "" {
			u.ProductID = ch.ProductID
		}
		u.ManufacturingDate = &at
	case entity.SerialStateWarehouse:
		if from == entity.SerialStateDelivered {
			if ch.Cause != CauseReturn {
				return fmt.Errorf("%w: delivered → warehouse solo por devolución", domain.ErrInvalidTransition)
			}
			u.ReturnDate = &at
			if ch.MoveLineID != "" {
				u.MoveLineID = ch.MoveLineID
			}
			break
		}
		lot := ch.LotID
		if lot == "" {
			lot = u.LotID
		}
		if lot == "" {
			return fmt.Errorf("%w: lote requerido para ingresar a bodega", domain.ErrInvalidInput)
		}
		u.LotID = lot
		u.ProducedOrderID = u.ProductionOrderID
		u.ProductionOrderID = ""
	case entity.SerialStateDelivered:
		if ch.MoveLineID == "" {
			return fmt.Errorf("%w: línea de movimiento requerida para entrega", domain.ErrInvalidInput)
		}
		u.MoveLineID = ch.MoveLineID
		u.DeliveryMoveLineID = ch.MoveLineID
		if ch.PickingID != "" {
			u.DeliveryPickingID = ch.PickingID
		}
		u.DeliveryDate = &at
	case entity.SerialStateNew:
		// anulación desde producción: libera la orden y el producto
		u.ProductionOrderID = ""
		u.ProductID = ""
		u.LotID = ""
		u.ManufacturingDate = nil
	case entity.SerialStateScrapped:
		u.ProductionOrderID = ""
		u.ScrapDate = &at
	}

	if ch.LocationID != "" {
		u.LocationID = ch.LocationID
	}
	u.State = to
	u.UpdatedAt = at
	consumePrevious(u, prev)
	return nil
}
