package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/setsco-serial-api/internal/application/ledger"
	"github.com/jhoicas/setsco-serial-api/internal/application/ports"
	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/memory"
)

var t0 = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

func seedDelivered(t *testing.T, repos ports.Repos, name, product string) *entity.SerialUnit {
	t.Helper()
	u := &entity.SerialUnit{
		Name: name, CategoryID: "cat", ProductID: product, LotID: "lot-A",
		State: entity.SerialStateDelivered, Active: true,
	}
	require.NoError(t, repos.Serials.Create(context.Background(), u))
	return u
}

func outgoing(serialID, moveLine, picking string, at time.Time) *entity.HistoryEntry {
	return &entity.HistoryEntry{
		SerialID: serialID, MoveLineID: moveLine, PickingID: picking,
		PickingType: entity.PickingTypeOutgoing, Event: entity.HistoryEventDone, Timestamp: at,
	}
}

func TestAppend_DuplicadoNoAlteraHistorial(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	l := ledger.New(repos.History, repos.Serials, nil)

	require.NoError(t, l.Append(ctx, outgoing("s1", "ml1", "out-1", t0)))
	err := l.Append(ctx, outgoing("s1", "ml1", "out-1", t0.Add(time.Minute)))
	assert.ErrorIs(t, err, domain.ErrDuplicateEvent)

	entries, err := l.GetHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "el segundo Append no debe agregar filas")

	created, err := l.AppendIfAbsent(ctx, outgoing("s1", "ml1", "out-1", t0))
	require.NoError(t, err)
	assert.False(t, created)

	err = l.Append(ctx, &entity.HistoryEntry{SerialID: "s1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAppend_ExigeLineaDeMovimiento(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	l := ledger.New(repos.History, repos.Serials, nil)

	err := l.Append(ctx, outgoing("s1", "", "out-1", t0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "todo evento nace de una línea de movimiento")

	entries, err := l.GetHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestShippedOn_DesdeHistorialOrdenadoPorNombre(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	l := ledger.New(repos.History, repos.Serials, nil)

	b := seedDelivered(t, repos, "AS10", "P1")
	a := seedDelivered(t, repos, "AS9", "P1")
	other := seedDelivered(t, repos, "AS11", "P2")
	for _, u := range []*entity.SerialUnit{b, a, other} {
		require.NoError(t, l.Append(ctx, outgoing(u.ID, "ml-"+u.Name, "out-1", t0)))
	}

	got, err := l.ShippedOn(ctx, "out-1", "P1")
	require.NoError(t, err)
	require.Len(t, got, 2, "solo el producto solicitado")
	assert.Equal(t, "AS9", got[0].Name)
	assert.Equal(t, "AS10", got[1].Name)
}

func TestShippedOn_ExcluyeSerialReenviadoEnOtroDocumento(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	l := ledger.New(repos.History, repos.Serials, nil)

	u := seedDelivered(t, repos, "AS1", "P1")
	require.NoError(t, l.Append(ctx, outgoing(u.ID, "ml-1", "out-1", t0)))
	require.NoError(t, l.Append(ctx, outgoing(u.ID, "ml-2", "out-2", t0.Add(time.Hour))))

	got, err := l.ShippedOn(ctx, "out-1", "P1")
	require.NoError(t, err)
	assert.Empty(t, got, "la última salida fue out-2")

	idle := seedDelivered(t, repos, "AS2", "P1")
	last, err := l.LastOutgoingFor(ctx, []string{u.ID, idle.ID})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{u.ID: "out-2"}, last, "AS2 no tiene salidas en el historial")
}

func TestShippedOn_RespaldoPorDatosHeredadosYBackfill(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	l := ledger.New(repos.History, repos.Serials, nil)

	u := seedDelivered(t, repos, "AS1", "P1")
	u.DeliveryPickingID = "legacy-out"
	u.DeliveryMoveLineID = "legacy-ml"
	require.NoError(t, repos.Serials.Update(ctx, u))

	got, err := l.ShippedOn(ctx, "legacy-out", "P1")
	require.NoError(t, err)
	require.Len(t, got, 1, "sin historial se usa delivery_picking_id")

	created, err := l.Backfill(ctx, "legacy-out")
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	created, err = l.Backfill(ctx, "legacy-out")
	require.NoError(t, err)
	assert.Zero(t, created, "Backfill es idempotente")

	last, err := l.LastOutgoingFor(ctx, []string{u.ID})
	require.NoError(t, err)
	assert.Equal(t, "legacy-out", last[u.ID])
}
