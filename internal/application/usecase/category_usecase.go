package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/setsco-serial-api/internal/application/dto"
	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
)

// CategoryUseCase casos de uso para categorías de seriales y su nivel de stock de seguridad.
type CategoryUseCase struct {
	repo    repository.CategoryRepository
	serials repository.SerialRepository
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository, serials repository.SerialRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo, serials: serials}
}

// Create crea una categoría. El nombre es único por empresa.
func (uc *CategoryUseCase) Create(ctx context.Context, companyID string, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name es requerido", domain.ErrInvalidInput)
	}
	if in.SafetyStockLevel.IsNegative() {
		return nil, fmt.Errorf("%w: safety_stock_level no puede ser negativo", domain.ErrInvalidInput)
	}
	existing, err := uc.repo.GetByCompanyAndName(ctx, companyID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: categoría %q", domain.ErrDuplicate, name)
	}
	c := &entity.SerialCategory{
		CompanyID:        companyID,
		Name:             name,
		Description:      in.Description,
		SafetyStockLevel: in.SafetyStockLevel,
		Recipients:       cleanRecipients(in.Recipients),
		Active:           true,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// GetByID obtiene una categoría; nil si no existe.
func (uc *CategoryUseCase) GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// Update aplica solo los campos presentes.
func (uc *CategoryUseCase) Update(ctx context.Context, id string, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.SafetyStockLevel != nil {
		if in.SafetyStockLevel.IsNegative() {
			return nil, fmt.Errorf("%w: safety_stock_level no puede ser negativo", domain.ErrInvalidInput)
		}
		c.SafetyStockLevel = *in.SafetyStockLevel
	}
	if in.Recipients != nil {
		c.Recipients = cleanRecipients(in.Recipients)
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// List lista categorías por empresa con paginación.
func (uc *CategoryUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.CategoryListResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toCategoryResponse(c))
	}
	return &dto.CategoryListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Count: len(items)},
	}, nil
}

// GetAvailable cuenta los seriales activos en estado new de la categoría.
func (uc *CategoryUseCase) GetAvailable(ctx context.Context, id string) (*dto.AvailableResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	n, err := uc.serials.Count(ctx, repository.SerialFilter{
		CategoryID: c.ID,
		States:     []entity.SerialState{entity.SerialStateNew},
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}
	return &dto.AvailableResponse{
		CategoryID:       c.ID,
		Available:        n,
		SafetyStockLevel: c.SafetyStockLevel,
		BelowSafetyStock: c.MonitorsSafetyStock() && decimal.NewFromInt(int64(n)).LessThan(c.SafetyStockLevel),
	}, nil
}

func cleanRecipients(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

func toCategoryResponse(c *entity.SerialCategory) *dto.CategoryResponse {
	if c == nil {
		return nil
	}
	return &dto.CategoryResponse{
		ID:               c.ID,
		CompanyID:        c.CompanyID,
		Name:             c.Name,
		Description:      c.Description,
		SafetyStockLevel: c.SafetyStockLevel,
		Recipients:       c.Recipients,
		Active:           c.Active,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}
