package entity

import "time"

// PickingType tipo de documento de inventario.
type PickingType string

const (
	PickingTypeIncoming PickingType = "incoming"
	PickingTypeOutgoing PickingType = "outgoing"
	PickingTypeInternal PickingType = "internal"
)

// HistoryEvent evento registrado sobre un serial en una línea de movimiento.
type HistoryEvent string

const (
	HistoryEventAssigned  HistoryEvent = "assigned"
	HistoryEventDone      HistoryEvent = "done"
	HistoryEventCancelled HistoryEvent = "cancelled"
)

// HistoryEntry registro inmutable del historial: único por (SerialID, MoveLineID, Event).
type HistoryEntry struct {
	ID          string
	Seq         int64
	SerialID    string
	MoveLineID  string
	PickingID   string
	PickingType PickingType
	Event       HistoryEvent
	CompanyID   string
	Timestamp   time.Time
}
