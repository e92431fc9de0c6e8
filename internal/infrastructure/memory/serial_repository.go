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

var _ repository.SerialRepository = (*serialRepo)(nil)

type serialRepo struct{ a access }

func (r *serialRepo) Create(_ context.Context, u *entity.SerialUnit) error {
	return r.a.do(func(st *state) error {
		for _, existing := range st.serials {
			if existing.CategoryID == u.CategoryID && existing.Name == u.Name {
				return domain.ErrDuplicateName
			}
		}
		if u.ID == "" {
			u.ID = uuid.New().String()
		}
		if _, ok := st.serials[u.ID]; ok {
			return domain.ErrDuplicate
		}
		now := time.Now()
		if u.CreatedAt.IsZero() {
			u.CreatedAt = now
		}
		u.UpdatedAt = now
		u.Seq = st.nextSeq()
		st.serials[u.ID] = u.Clone()
		return nil
	})
}

func (r *serialRepo) GetByID(_ context.Context, id string) (*entity.SerialUnit, error) {
	var out *entity.SerialUnit
	err := r.a.do(func(st *state) error {
		if u, ok := st.serials[id]; ok {
			out = u.Clone()
		}
		return nil
	})
	return out, err
}

func (r *serialRepo) GetForUpdate(ctx context.Context, id string) (*entity.SerialUnit, error) {
	return r.GetByID(ctx, id)
}

func (r *serialRepo) GetByName(_ context.Context, categoryID, name string) (*entity.SerialUnit, error) {
	var out *entity.SerialUnit
	err := r.a.do(func(st *state) error {
		for _, u := range st.serials {
			if u.CategoryID == categoryID && u.Name == name {
				out = u.Clone()
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *serialRepo) Find(_ context.Context, f repository.SerialFilter) ([]*entity.SerialUnit, error) {
	var out []*entity.SerialUnit
	err := r.a.do(func(st *state) error {
		out = filterSerials(st, f)
		return nil
	})
	return out, err
}

func (r *serialRepo) Count(_ context.Context, f repository.SerialFilter) (int, error) {
	f.Limit = 0
	var n int
	err := r.a.do(func(st *state) error {
		n = len(filterSerials(st, f))
		return nil
	})
	return n, err
}

func (r *serialRepo) Update(_ context.Context, u *entity.SerialUnit) error {
	return r.a.do(func(st *state) error {
		cur, ok := st.serials[u.ID]
		if !ok {
			return domain.ErrNotFound
		}
		for _, other := range st.serials {
			if other.ID != u.ID && other.CategoryID == u.CategoryID && other.Name == u.Name {
				return domain.ErrDuplicateName
			}
		}
		u.Seq = cur.Seq
		u.CreatedAt = cur.CreatedAt
		if u.UpdatedAt.IsZero() {
			u.UpdatedAt = time.Now()
		}
		st.serials[u.ID] = u.Clone()
		return nil
	})
}

func (r *serialRepo) ExistsActiveLink(_ context.Context, linkedUnitID, excludeID string) (bool, error) {
	var found bool
	err := r.a.do(func(st *state) error {
		for _, u := range st.serials {
			if u.Active && u.LinkedUnitID == linkedUnitID && u.ID != excludeID {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func filterSerials(st *state, f repository.SerialFilter) []*entity.SerialUnit {
	ids := toSet(f.IDs)
	orders := toSet(f.ProductionOrderIDs)
	var out []*entity.SerialUnit
	for _, u := range st.serials {
		if ids != nil && !ids[u.ID] {
			continue
		}
		if orders != nil && !orders[u.ProductionOrderID] {
			continue
		}
		if len(f.States) > 0 && !hasState(f.States, u.State) {
			continue
		}
		if !match(f.CompanyID, u.CompanyID) || !match(f.CategoryID, u.CategoryID) ||
			!match(f.ProductID, u.ProductID) || !match(f.LotID, u.LotID) ||
			!match(f.ProducedOrderID, u.ProducedOrderID) || !match(f.MoveLineID, u.MoveLineID) ||
			!match(f.DeliveryPickingID, u.DeliveryPickingID) {
			continue
		}
		if f.ActiveOnly && !u.Active {
			continue
		}
		out = append(out, u.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func match(want, got string) bool { return want == "" || want == got }

func hasState(states []entity.SerialState, s entity.SerialState) bool {
	for _, x := range states {
		if x == s {
			return true
		}
	}
	return false
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
