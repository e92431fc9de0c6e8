package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockAlert alerta de stock de seguridad. Hay a lo sumo una abierta por categoría.
type StockAlert struct {
	ID               string
	CategoryID       string
	CategoryName     string
	CompanyID        string
	AvailableCount   int
	SafetyStockLevel decimal.Decimal
	Recipients       []string
	Open             bool
	CreatedAt        time.Time
	ClosedAt         *time.Time
}
