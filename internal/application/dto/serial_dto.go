package dto

import "time"

// CreateSerialRequest entrada para registrar una etiqueta.
type CreateSerialRequest struct {
	CategoryID string `json:"category_id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	SerialType string `json:"serial_type"`
	ProductID  string `json:"product_id"`
	Purchased  bool   `json:"purchased"`
}

// CreateRangeRequest entrada para registrar un rango (p.ej. SG000001..SG000100).
type CreateRangeRequest struct {
	CategoryID string `json:"category_id" validate:"required"`
	Start      string `json:"start" validate:"required"`
	End        string `json:"end" validate:"required"`
	SerialType string `json:"serial_type"`
	ProductID  string `json:"product_id"`
	Purchased  bool   `json:"purchased"`
}

// RangeResponse resultado de la creación por rango.
type RangeResponse struct {
	Created []SerialResponse `json:"created"`
	Skipped []string         `json:"skipped"`
}

// TransitionRequest cambio de estado manual.
type TransitionRequest struct {
	To                string `json:"to" validate:"required"`
	ProductionOrderID string `json:"production_order_id"`
	LotID             string `json:"lot_id"`
	LocationID        string `json:"location_id"`
	MoveLineID        string `json:"move_line_id"`
	PickingID         string `json:"picking_id"`
}

// LinkRequest vincula la etiqueta a una unidad terminada.
type LinkRequest struct {
	LinkedUnitID string `json:"linked_unit_id" validate:"required"`
}

// SerialIDsRequest lote de seriales para operaciones masivas.
type SerialIDsRequest struct {
	SerialIDs []string `json:"serial_ids" validate:"required,min=1"`
}

// SerialResponse salida de un serial.
type SerialResponse struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	SerialType        string     `json:"serial_type"`
	CategoryID        string     `json:"category_id"`
	CompanyID         string     `json:"company_id"`
	State             string     `json:"state"`
	ProductID         string     `json:"product_id,omitempty"`
	LotID             string     `json:"lot_id,omitempty"`
	LocationID        string     `json:"location_id,omitempty"`
	ProductionOrderID string     `json:"production_order_id,omitempty"`
	ProducedOrderID   string     `json:"produced_order_id,omitempty"`
	Transferred       bool       `json:"transferred"`
	InternalCompanyID string     `json:"internal_company_id,omitempty"`
	DeliveryPickingID string     `json:"delivery_picking_id,omitempty"`
	LinkedUnitID      string     `json:"linked_unit_id,omitempty"`
	Active            bool       `json:"active"`
	ManufacturingDate *time.Time `json:"manufacturing_date,omitempty"`
	DeliveryDate      *time.Time `json:"delivery_date,omitempty"`
	ReturnDate        *time.Time `json:"return_date,omitempty"`
	ScrapDate         *time.Time `json:"scrap_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// HistoryEntryResponse entrada del historial de movimientos de un serial.
type HistoryEntryResponse struct {
	ID          string    `json:"id"`
	MoveLineID  string    `json:"move_line_id"`
	PickingID   string    `json:"picking_id"`
	PickingType string    `json:"picking_type"`
	Event       string    `json:"event"`
	Timestamp   time.Time `json:"timestamp"`
}

// SerialFailure serial que no pudo procesarse en una operación masiva.
type SerialFailure struct {
	SerialID string `json:"serial_id"`
	Name     string `json:"name,omitempty"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// BatchResponse resultado por serial de una operación masiva.
type BatchResponse struct {
	Succeeded []string        `json:"succeeded"`
	Names     []string        `json:"names"`
	Failed    []SerialFailure `json:"failed"`
}
