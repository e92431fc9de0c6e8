package entity

import "time"

// ProductionOrderState estado de una orden de producción.
type ProductionOrderState string

const (
	ProductionOrderConfirmed ProductionOrderState = "confirmed"
	ProductionOrderDone      ProductionOrderState = "done"
	ProductionOrderCancelled ProductionOrderState = "cancelled"
)

// ProductionOrder orden de producción conocida por el ledger (reflejo del ERP).
type ProductionOrder struct {
	ID             string
	CompanyID      string
	ProductID      string
	ProductQty     int // cantidad planificada
	QtyProduced    int // acumulado reportado por eventos de completado
	LotProducingID string
	LocationDestID string
	State          ProductionOrderState
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// QtyRemaining cantidad pendiente por producir.
func (o *ProductionOrder) QtyRemaining() int {
	if r := o.ProductQty - o.QtyProduced; r > 0 {
		return r
	}
	return 0
}

// IsOpen indica si la orden aún admite asignaciones.
func (o *ProductionOrder) IsOpen() bool {
	return o.State == ProductionOrderConfirmed
}
