package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
)

var _ repository.HistoryRepository = (*historyRepo)(nil)

type historyRepo struct{ a access }

func (r *historyRepo) Append(_ context.Context, e *entity.HistoryEntry) error {
	return r.a.do(func(st *state) error {
		if exists(st, e.SerialID, e.MoveLineID, e.Event) {
			return domain.ErrDuplicateEvent
		}
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		e.Seq = st.nextSeq()
		cp := *e
		st.history = append(st.history, &cp)
		return nil
	})
}

func (r *historyRepo) Exists(_ context.Context, serialID, moveLineID string, event entity.HistoryEvent) (bool, error) {
	var found bool
	err := r.a.do(func(st *state) error {
		found = exists(st, serialID, moveLineID, event)
		return nil
	})
	return found, err
}

func (r *historyRepo) ListBySerial(_ context.Context, serialID string) ([]*entity.HistoryEntry, error) {
	var out []*entity.HistoryEntry
	err := r.a.do(func(st *state) error {
		for _, e := range st.history {
			if e.SerialID == serialID {
				cp := *e
				out = append(out, &cp)
			}
		}
		return nil
	})
	sortNewestFirst(out)
	return out, err
}

func (r *historyRepo) ListByPicking(_ context.Context, pickingID string, pickingType entity.PickingType, event entity.HistoryEvent) ([]*entity.HistoryEntry, error) {
	var out []*entity.HistoryEntry
	err := r.a.do(func(st *state) error {
		for _, e := range st.history {
			if e.PickingID == pickingID && e.PickingType == pickingType && e.Event == event {
				cp := *e
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

func (r *historyRepo) LatestOutgoingPickings(_ context.Context, serialIDs []string) (map[string]string, error) {
	want := toSet(serialIDs)
	out := make(map[string]string)
	err := r.a.do(func(st *state) error {
		latest := make(map[string]*entity.HistoryEntry)
		for _, e := range st.history {
			if e.PickingType != entity.PickingTypeOutgoing || e.Event != entity.HistoryEventDone {
				continue
			}
			if want != nil && !want[e.SerialID] {
				continue
			}
			if cur, ok := latest[e.SerialID]; !ok || newer(e, cur) {
				latest[e.SerialID] = e
			}
		}
		for id, e := range latest {
			out[id] = e.PickingID
		}
		return nil
	})
	return out, err
}

func exists(st *state, serialID, moveLineID string, event entity.HistoryEvent) bool {
	for _, e := range st.history {
		if e.SerialID == serialID && e.MoveLineID == moveLineID && e.Event == event {
			return true
		}
	}
	return false
}

func newer(a, b *entity.HistoryEntry) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.Seq > b.Seq
}

func sortNewestFirst(entries []*entity.HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool { return newer(entries[i], entries[j]) })
}
