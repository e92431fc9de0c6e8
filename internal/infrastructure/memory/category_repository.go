package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*categoryRepo)(nil)

type categoryRepo struct{ a access }

func (r *categoryRepo) Create(_ context.Context, c *entity.SerialCategory) error {
	return r.a.do(func(st *state) error {
		for _, existing := range st.categories {
			if existing.CompanyID == c.CompanyID && existing.Name == c.Name {
				return domain.ErrDuplicate
			}
		}
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		now := time.Now()
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		c.UpdatedAt = now
		st.categories[c.ID] = cloneCategory(c)
		return nil
	})
}

func (r *categoryRepo) GetByID(_ context.Context, id string) (*entity.SerialCategory, error) {
	var out *entity.SerialCategory
	err := r.a.do(func(st *state) error {
		if c, ok := st.categories[id]; ok {
			out = cloneCategory(c)
		}
		return nil
	})
	return out, err
}

func (r *categoryRepo) GetByCompanyAndName(_ context.Context, companyID, name string) (*entity.SerialCategory, error) {
	var out *entity.SerialCategory
	err := r.a.do(func(st *state) error {
		for _, c := range st.categories {
			if c.CompanyID == companyID && c.Name == name {
				out = cloneCategory(c)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *categoryRepo) Update(_ context.Context, c *entity.SerialCategory) error {
	return r.a.do(func(st *state) error {
		if _, ok := st.categories[c.ID]; !ok {
			return domain.ErrNotFound
		}
		c.UpdatedAt = time.Now()
		st.categories[c.ID] = cloneCategory(c)
		return nil
	})
}

func (r *categoryRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.SerialCategory, error) {
	var out []*entity.SerialCategory
	err := r.a.do(func(st *state) error {
		for _, c := range st.categories {
			if companyID == "" || c.CompanyID == companyID {
				out = append(out, cloneCategory(c))
			}
		}
		return nil
	})
	sortCategories(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r *categoryRepo) ListMonitored(_ context.Context) ([]*entity.SerialCategory, error) {
	var out []*entity.SerialCategory
	err := r.a.do(func(st *state) error {
		for _, c := range st.categories {
			if c.MonitorsSafetyStock() {
				out = append(out, cloneCategory(c))
			}
		}
		return nil
	})
	sortCategories(out)
	return out, err
}

func sortCategories(cs []*entity.SerialCategory) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Name != cs[j].Name {
			return cs[i].Name < cs[j].Name
		}
		return cs[i].ID < cs[j].ID
	})
}
