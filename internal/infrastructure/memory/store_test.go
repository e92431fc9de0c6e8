package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/setsco-serial-api/internal/application/ports"
	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/memory"
)

func TestStore_RollbackDescartaCambios(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	boom := errors.New("boom")

	err := store.Run(ctx, func(r ports.Repos) error {
		require.NoError(t, r.Serials.Create(ctx, &entity.SerialUnit{Name: "AS1", CategoryID: "cat", State: entity.SerialStateNew}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := store.Repos().Serials.Count(ctx, repository.SerialFilter{CategoryID: "cat"})
	require.NoError(t, err)
	assert.Zero(t, n, "la transacción fallida no debe dejar seriales")
}

func TestStore_CommitYOrdenPorSeq(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	err := store.Run(ctx, func(r ports.Repos) error {
		for _, name := range []string{"AS3", "AS1", "AS2"} {
			if err := r.Serials.Create(ctx, &entity.SerialUnit{Name: name, CategoryID: "cat", State: entity.SerialStateNew}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	units, err := store.Repos().Serials.Find(ctx, repository.SerialFilter{CategoryID: "cat", Limit: 2})
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "AS3", units[0].Name, "Find ordena por orden de creación")
	assert.Equal(t, "AS1", units[1].Name)
	assert.Less(t, units[0].Seq, units[1].Seq)
}

func TestStore_NombreUnicoPorCategoria(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()

	require.NoError(t, repos.Serials.Create(ctx, &entity.SerialUnit{Name: "AS1", CategoryID: "a"}))
	require.NoError(t, repos.Serials.Create(ctx, &entity.SerialUnit{Name: "AS1", CategoryID: "b"}),
		"el mismo nombre en otra categoría es válido")
	err := repos.Serials.Create(ctx, &entity.SerialUnit{Name: "AS1", CategoryID: "a"})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
}

func TestStore_LecturasDevuelvenCopias(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	u := &entity.SerialUnit{Name: "AS1", CategoryID: "a", State: entity.SerialStateNew}
	require.NoError(t, repos.Serials.Create(ctx, u))

	got, err := repos.Serials.GetByID(ctx, u.ID)
	require.NoError(t, err)
	got.State = entity.SerialStateScrapped

	again, err := repos.Serials.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SerialStateNew, again.State, "mutar la copia no altera el almacenamiento")

	missing, err := repos.Serials.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_HistorialUnicoYUltimaSalida(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	t0 := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, repos.History.Append(ctx, &entity.HistoryEntry{
		SerialID: "s1", MoveLineID: "ml1", PickingID: "out-1", PickingType: entity.PickingTypeOutgoing,
		Event: entity.HistoryEventDone, Timestamp: t0,
	}))
	err := repos.History.Append(ctx, &entity.HistoryEntry{
		SerialID: "s1", MoveLineID: "ml1", PickingID: "out-1", PickingType: entity.PickingTypeOutgoing,
		Event: entity.HistoryEventDone, Timestamp: t0,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateEvent)

	require.NoError(t, repos.History.Append(ctx, &entity.HistoryEntry{
		SerialID: "s1", MoveLineID: "ml2", PickingID: "out-2", PickingType: entity.PickingTypeOutgoing,
		Event: entity.HistoryEventDone, Timestamp: t0.Add(time.Hour),
	}))

	latest, err := repos.History.LatestOutgoingPickings(ctx, []string{"s1"})
	require.NoError(t, err)
	assert.Equal(t, "out-2", latest["s1"])

	entries, err := repos.History.ListBySerial(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ml2", entries[0].MoveLineID, "más reciente primero")
}

func TestStore_ContextoCanceladoNoEjecuta(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := memory.NewStore().Run(ctx, func(ports.Repos) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
