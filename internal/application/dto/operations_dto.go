package dto

// AssignCustodyRequest asignación de custodia a otra empresa del grupo.
type AssignCustodyRequest struct {
	SerialIDs []string `json:"serial_ids" validate:"required,min=1"`
	CompanyID string   `json:"company_id" validate:"required"`
}

// ReceiveCustodyRequest recepción de custodia por la empresa receptora.
type ReceiveCustodyRequest struct {
	SerialIDs  []string `json:"serial_ids" validate:"required,min=1"`
	ProductID  string   `json:"product_id"`
	LocationID string   `json:"location_id"`
}

// ProductionConfirmedRequest orden de producción confirmada.
type ProductionConfirmedRequest struct {
	OrderID        string `json:"order_id" validate:"required"`
	ProductID      string `json:"product_id" validate:"required"`
	ProductQty     int    `json:"product_qty" validate:"min=1"`
	LocationDestID string `json:"location_dest_id"`
	LotID          string `json:"lot_id"`
}

// ProductionCompletedRequest orden de producción terminada.
type ProductionCompletedRequest struct {
	OrderID     string `json:"order_id" validate:"required"`
	ProductID   string `json:"product_id"`
	QtyProduced int    `json:"qty_produced" validate:"min=1"`
	LotID       string `json:"lot_id"`
}

// ProductionSplitRequest orden dividida en backorders.
type ProductionSplitRequest struct {
	OriginalOrderID   string   `json:"original_order_id" validate:"required"`
	ResultingOrderIDs []string `json:"resulting_order_ids" validate:"required,min=1"`
	CompletedQty      int      `json:"completed_qty"`
}

// CompletionResponse seriales pasados a bodega al terminar una orden.
type CompletionResponse struct {
	OrderID string   `json:"order_id"`
	LotID   string   `json:"lot_id"`
	Serials []string `json:"serials"`
}

// SplitResponse reubicación de seriales tras dividir una orden.
type SplitResponse struct {
	NoOp       bool                `json:"no_op"`
	Reassigned map[string][]string `json:"reassigned"`
	Unassigned []string            `json:"unassigned"`
}

// ShipmentLineRequest línea de un picking validado.
type ShipmentLineRequest struct {
	MoveLineID string   `json:"move_line_id" validate:"required"`
	ProductID  string   `json:"product_id"`
	LotID      string   `json:"lot_id"`
	Qty        int      `json:"qty"`
	SerialIDs  []string `json:"serial_ids"`
}

// ShipmentValidatedRequest picking validado (salida, entrada o interno).
type ShipmentValidatedRequest struct {
	PickingID      string                `json:"picking_id" validate:"required"`
	PickingType    string                `json:"picking_type" validate:"required,oneof=incoming outgoing internal"`
	LocationDestID string                `json:"location_dest_id"`
	Lines          []ShipmentLineRequest `json:"lines" validate:"required,min=1"`
}

// ShipmentLineResponse resultado por línea.
type ShipmentLineResponse struct {
	MoveLineID string         `json:"move_line_id"`
	Serials    []string       `json:"serials"`
	Skipped    int            `json:"skipped"`
	Error      *ErrorResponse `json:"error,omitempty"`
}

// ShipmentResponse resultado del picking validado.
type ShipmentResponse struct {
	PickingID string                 `json:"picking_id"`
	Lines     []ShipmentLineResponse `json:"lines"`
	Failed    int                    `json:"failed"`
}

// ReturnRequest devolución solicitada sobre una entrega.
type ReturnRequest struct {
	OriginalPickingID string `json:"original_picking_id" validate:"required"`
	ReturnPickingID   string `json:"return_picking_id" validate:"required"`
	ProductID         string `json:"product_id" validate:"required"`
	Qty               int    `json:"qty" validate:"min=1"`
}

// ReturnLineResponse línea de devolución agrupada por lote.
type ReturnLineResponse struct {
	MoveLineID string   `json:"move_line_id"`
	LotID      string   `json:"lot_id"`
	Quantity   int      `json:"quantity"`
	Serials    []string `json:"serials"`
}

// ReturnResponse resultado de la conciliación.
type ReturnResponse struct {
	ReturnPickingID string               `json:"return_picking_id"`
	Requested       int                  `json:"requested"`
	Staged          int                  `json:"staged"`
	Lines           []ReturnLineResponse `json:"lines"`
}

// AlertResponse alerta de stock de seguridad emitida.
type AlertResponse struct {
	ID               string   `json:"id"`
	CategoryID       string   `json:"category_id"`
	CategoryName     string   `json:"category_name"`
	AvailableCount   int      `json:"available_count"`
	SafetyStockLevel string   `json:"safety_stock_level"`
	Recipients       []string `json:"recipients"`
}
