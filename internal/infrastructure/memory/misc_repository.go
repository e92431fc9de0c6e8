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

var (
	_ repository.MoveLineRepository             = (*moveLineRepo)(nil)
	_ repository.StockAlertRepository           = (*alertRepo)(nil)
	_ repository.DistributionSettingsRepository = (*settingsRepo)(nil)
)

type moveLineRepo struct{ a access }

func (r *moveLineRepo) Create(_ context.Context, l *entity.MoveLine) error {
	return r.a.do(func(st *state) error {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		if l.CreatedAt.IsZero() {
			l.CreatedAt = time.Now()
		}
		cp := *l
		st.moveLines[l.ID] = &cp
		return nil
	})
}

func (r *moveLineRepo) GetByID(_ context.Context, id string) (*entity.MoveLine, error) {
	var out *entity.MoveLine
	err := r.a.do(func(st *state) error {
		if l, ok := st.moveLines[id]; ok {
			cp := *l
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *moveLineRepo) ListByPicking(_ context.Context, pickingID string) ([]*entity.MoveLine, error) {
	var out []*entity.MoveLine
	err := r.a.do(func(st *state) error {
		for _, l := range st.moveLines {
			if l.PickingID == pickingID {
				cp := *l
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].LotID < out[j].LotID
	})
	return out, err
}

type alertRepo struct{ a access }

func (r *alertRepo) Create(_ context.Context, al *entity.StockAlert) error {
	return r.a.do(func(st *state) error {
		for _, existing := range st.alerts {
			if existing.Open && existing.CategoryID == al.CategoryID && al.Open {
				return domain.ErrDuplicate
			}
		}
		if al.ID == "" {
			al.ID = uuid.New().String()
		}
		if al.CreatedAt.IsZero() {
			al.CreatedAt = time.Now()
		}
		st.alerts[al.ID] = cloneAlert(al)
		return nil
	})
}

func (r *alertRepo) GetOpenByCategory(_ context.Context, categoryID string) (*entity.StockAlert, error) {
	var out *entity.StockAlert
	err := r.a.do(func(st *state) error {
		for _, al := range st.alerts {
			if al.Open && al.CategoryID == categoryID {
				out = cloneAlert(al)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *alertRepo) Close(_ context.Context, id string, at time.Time) error {
	return r.a.do(func(st *state) error {
		al, ok := st.alerts[id]
		if !ok {
			return domain.ErrNotFound
		}
		al.Open = false
		al.ClosedAt = &at
		return nil
	})
}

type settingsRepo struct{ a access }

func (r *settingsRepo) Create(_ context.Context, s *entity.DistributionSettings) error {
	return r.a.do(func(st *state) error {
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = time.Now()
		}
		cp := *s
		st.settings[s.ID] = &cp
		return nil
	})
}

func (r *settingsRepo) FindActive(_ context.Context, companyID string, day time.Time) (*entity.DistributionSettings, error) {
	var candidates []*entity.DistributionSettings
	err := r.a.do(func(st *state) error {
		for _, s := range st.settings {
			if (companyID == "" || s.CompanyID == companyID) && s.ValidAt(day) {
				cp := *s
				candidates = append(candidates, &cp)
			}
		}
		return nil
	})
	if err != nil || len(candidates) == 0 {
		return nil, err
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Sequence != candidates[j].Sequence {
			return candidates[i].Sequence < candidates[j].Sequence
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates[0], nil
}
