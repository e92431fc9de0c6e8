package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SerialCategory agrupa seriales del mismo tipo de equipo (p.ej. "Fire-9kg").
// SafetyStockLevel = 0 desactiva el monitoreo de stock de seguridad.
type SerialCategory struct {
	ID               string
	CompanyID        string
	Name             string // único por empresa
	Description      string
	SafetyStockLevel decimal.Decimal
	Recipients       []string // destinatarios de alertas; vacío usa los de configuración
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// MonitorsSafetyStock indica si la categoría participa en el monitoreo.
func (c *SerialCategory) MonitorsSafetyStock() bool {
	return c.Active && c.SafetyStockLevel.IsPositive()
}
