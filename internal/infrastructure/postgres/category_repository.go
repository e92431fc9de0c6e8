package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

const categoryColumns = `id, company_id, name, description, safety_stock_level, recipients, active, created_at, updated_at`

// CategoryRepo categorías de seriales.
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

// Create inserta la categoría.
func (r *CategoryRepo) Create(ctx context.Context, c *entity.SerialCategory) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query := `
		INSERT INTO serial_category (id, company_id, name, description, safety_stock_level, recipients, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		c.ID, c.CompanyID, c.Name, c.Description, c.SafetyStockLevel, recipients(c.Recipients), c.Active,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: categoría %q", domain.ErrDuplicate, c.Name)
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// GetByID obtiene una categoría por ID.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.SerialCategory, error) {
	return r.getOne(ctx, `SELECT `+categoryColumns+` FROM serial_category WHERE id = $1`, id)
}

// GetByCompanyAndName busca por nombre dentro de la empresa.
func (r *CategoryRepo) GetByCompanyAndName(ctx context.Context, companyID, name string) (*entity.SerialCategory, error) {
	return r.getOne(ctx, `SELECT `+categoryColumns+` FROM serial_category WHERE company_id = $1 AND name = $2`, companyID, name)
}

// Update actualiza descripción, nivel, destinatarios y estado.
func (r *CategoryRepo) Update(ctx context.Context, c *entity.SerialCategory) error {
	query := `
		UPDATE serial_category
		SET description = $2, safety_stock_level = $3, recipients = $4, active = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query, c.ID, c.Description, c.SafetyStockLevel, recipients(c.Recipients), c.Active).
		Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// ListByCompany lista con paginación ordenando por nombre.
func (r *CategoryRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.SerialCategory, error) {
	if limit <= 0 {
		limit = 20
	}
	return r.list(ctx, `SELECT `+categoryColumns+` FROM serial_category
		WHERE ($1 = '' OR company_id = $1) ORDER BY name, id LIMIT $2 OFFSET $3`, companyID, limit, offset)
}

// ListMonitored categorías activas con nivel de stock de seguridad > 0.
func (r *CategoryRepo) ListMonitored(ctx context.Context) ([]*entity.SerialCategory, error) {
	return r.list(ctx, `SELECT `+categoryColumns+` FROM serial_category
		WHERE active AND safety_stock_level > 0 ORDER BY name, id`)
}

func (r *CategoryRepo) getOne(ctx context.Context, query string, args ...any) (*entity.SerialCategory, error) {
	c, err := scanCategory(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepo) list(ctx context.Context, query string, args ...any) ([]*entity.SerialCategory, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var list []*entity.SerialCategory
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanCategory(row pgx.Row) (*entity.SerialCategory, error) {
	var c entity.SerialCategory
	err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Description, &c.SafetyStockLevel,
		&c.Recipients, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// recipients evita escribir NULL en columnas text[] NOT NULL.
func recipients(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
