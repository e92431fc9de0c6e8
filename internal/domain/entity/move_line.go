package entity

import "time"

// MoveLine línea de movimiento preparada por el ledger (p.ej. devolución agrupada por lote).
type MoveLine struct {
	ID          string
	PickingID   string
	PickingType PickingType
	ProductID   string
	LotID       string
	Quantity    int
	CreatedAt   time.Time
}
