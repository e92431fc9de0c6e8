package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
)

var _ repository.StockAlertRepository = (*StockAlertRepo)(nil)

// StockAlertRepo alertas de stock de seguridad.
type StockAlertRepo struct {
	q Querier
}

// NewStockAlertRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAlertRepository(q Querier) *StockAlertRepo {
	return &StockAlertRepo{q: q}
}

// Create inserta la alerta; el índice parcial impide dos abiertas por categoría.
func (r *StockAlertRepo) Create(ctx context.Context, a *entity.StockAlert) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_alert (id, category_id, category_name, company_id, available_count,
			safety_stock_level, recipients, open, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.CategoryID, a.CategoryName, a.CompanyID, a.AvailableCount,
		a.SafetyStockLevel, recipients(a.Recipients), a.Open, a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: alerta abierta para %s", domain.ErrDuplicate, a.CategoryName)
		}
		return fmt.Errorf("create stock alert: %w", err)
	}
	return nil
}

// GetOpenByCategory alerta abierta de la categoría, si existe.
func (r *StockAlertRepo) GetOpenByCategory(ctx context.Context, categoryID string) (*entity.StockAlert, error) {
	var a entity.StockAlert
	err := r.q.QueryRow(ctx, `
		SELECT id, category_id, category_name, company_id, available_count, safety_stock_level,
			recipients, open, created_at, closed_at
		FROM stock_alert WHERE category_id = $1 AND open`, categoryID,
	).Scan(&a.ID, &a.CategoryID, &a.CategoryName, &a.CompanyID, &a.AvailableCount, &a.SafetyStockLevel,
		&a.Recipients, &a.Open, &a.CreatedAt, &a.ClosedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open alert: %w", err)
	}
	return &a, nil
}

// Close marca la alerta como cerrada.
func (r *StockAlertRepo) Close(ctx context.Context, id string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE stock_alert SET open = false, closed_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("close alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
