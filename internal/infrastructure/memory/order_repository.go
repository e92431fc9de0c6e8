package memory

import (
	"context"
	"time"

	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
)

var _ repository.ProductionOrderRepository = (*orderRepo)(nil)

type orderRepo struct{ a access }

func (r *orderRepo) Upsert(_ context.Context, o *entity.ProductionOrder) error {
	if o.ID == "" {
		return domain.ErrInvalidInput
	}
	return r.a.do(func(st *state) error {
		now := time.Now()
		if cur, ok := st.orders[o.ID]; ok {
			o.CreatedAt = cur.CreatedAt
		} else if o.CreatedAt.IsZero() {
			o.CreatedAt = now
		}
		o.UpdatedAt = now
		cp := *o
		st.orders[o.ID] = &cp
		return nil
	})
}

func (r *orderRepo) GetByID(_ context.Context, id string) (*entity.ProductionOrder, error) {
	var out *entity.ProductionOrder
	err := r.a.do(func(st *state) error {
		if o, ok := st.orders[id]; ok {
			cp := *o
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepo) Update(_ context.Context, o *entity.ProductionOrder) error {
	return r.a.do(func(st *state) error {
		cur, ok := st.orders[o.ID]
		if !ok {
			return domain.ErrNotFound
		}
		o.CreatedAt = cur.CreatedAt
		o.UpdatedAt = time.Now()
		cp := *o
		st.orders[o.ID] = &cp
		return nil
	})
}
