package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCategoryRequest entrada para crear una categoría de seriales.
type CreateCategoryRequest struct {
	Name             string          `json:"name" validate:"required,min=1,max=120"`
	Description      string          `json:"description"`
	SafetyStockLevel decimal.Decimal `json:"safety_stock_level"`
	Recipients       []string        `json:"recipients"`
}

// UpdateCategoryRequest entrada para actualizar una categoría.
type UpdateCategoryRequest struct {
	Description      *string          `json:"description"`
	SafetyStockLevel *decimal.Decimal `json:"safety_stock_level"`
	Recipients       []string         `json:"recipients"`
	Active           *bool            `json:"active"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID               string          `json:"id"`
	CompanyID        string          `json:"company_id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	SafetyStockLevel decimal.Decimal `json:"safety_stock_level"`
	Recipients       []string        `json:"recipients"`
	Active           bool            `json:"active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// CategoryListResponse lista paginada de categorías.
type CategoryListResponse struct {
	Items []CategoryResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// AvailableResponse seriales sin asignar (estado new) de una categoría.
type AvailableResponse struct {
	CategoryID       string          `json:"category_id"`
	Available        int             `json:"available"`
	SafetyStockLevel decimal.Decimal `json:"safety_stock_level"`
	BelowSafetyStock bool            `json:"below_safety_stock"`
}
