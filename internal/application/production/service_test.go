package production_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/setsco-serial-api/internal/application/production"
	"github.com/jhoicas/setsco-serial-api/internal/application/serial"
	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/memory"
	"github.com/jhoicas/setsco-serial-api/pkg/logger"
)

type watcherSpy struct{ calls [][]string }

func (w *watcherSpy) CheckCategories(_ context.Context, ids []string) error {
	w.calls = append(w.calls, ids)
	return nil
}

type env struct {
	store   *memory.Store
	svc     *production.Service
	watcher *watcherSpy
}

func newEnv() *env {
	store := memory.NewStore()
	registry := serial.NewRegistry(store, store.Repos(), logger.Nop(), nil)
	w := &watcherSpy{}
	return &env{
		store:   store,
		svc:     production.NewService(store, store.Repos(), registry, w, logger.Nop(), nil),
		watcher: w,
	}
}

func (e *env) seedSerials(t *testing.T, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		u := &entity.SerialUnit{Name: fmt.Sprintf("AS%05d", i), CategoryID: "cat-fire", CompanyID: "c1", State: entity.SerialStateNew, Active: true}
		require.NoError(t, e.store.Repos().Serials.Create(context.Background(), u))
		ids = append(ids, u.ID)
	}
	return ids
}

func (e *env) confirm(t *testing.T, id string, qty int, lot string) {
	t.Helper()
	_, err := e.svc.OnProductionConfirmed(context.Background(), production.Confirmed{
		OrderID: id, CompanyID: "c1", ProductID: "p-fire", ProductQty: qty, LocationDestID: "loc-wh", LotID: lot,
	})
	require.NoError(t, err)
}

func (e *env) countOn(t *testing.T, f repository.SerialFilter) int {
	t.Helper()
	n, err := e.store.Repos().Serials.Count(context.Background(), f)
	require.NoError(t, err)
	return n
}

func TestAssignToProduction_CapacidadYAvisoDeStock(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	e.confirm(t, "mo-1", 3, "")
	ids := e.seedSerials(t, 4)

	_, err := e.svc.AssignToProduction(ctx, production.Assign{OrderID: "mo-1", SerialIDs: ids})
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded, "4 seriales para una orden de 3")
	assert.Zero(t, e.countOn(t, repository.SerialFilter{ProductionOrderIDs: []string{"mo-1"}}), "sin asignaciones parciales")

	res, err := e.svc.AssignToProduction(ctx, production.Assign{OrderID: "mo-1", SerialIDs: ids[:3]})
	require.NoError(t, err)
	assert.Len(t, res.Succeeded, 3)
	require.Len(t, e.watcher.calls, 1)
	assert.Equal(t, []string{"cat-fire"}, e.watcher.calls[0])

	_, err = e.svc.AssignToProduction(ctx, production.Assign{OrderID: "mo-x", SerialIDs: ids[3:]})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOnProductionCompleted_ExactamenteNOFalla(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	e.confirm(t, "mo-1", 5, "lot-7")
	ids := e.seedSerials(t, 3)
	_, err := e.svc.AssignToProduction(ctx, production.Assign{OrderID: "mo-1", SerialIDs: ids})
	require.NoError(t, err)

	_, err = e.svc.OnProductionCompleted(ctx, production.Completed{OrderID: "mo-1", QtyProduced: 4})
	require.ErrorIs(t, err, domain.ErrInsufficientSerials)
	assert.Equal(t, 3, e.countOn(t, repository.SerialFilter{States: []entity.SerialState{entity.SerialStateManufacturing}}),
		"ningún serial se mueve si faltan")
	order, err := e.store.Repos().Orders.GetByID(ctx, "mo-1")
	require.NoError(t, err)
	assert.Zero(t, order.QtyProduced, "la orden tampoco cambia")

	res, err := e.svc.OnProductionCompleted(ctx, production.Completed{OrderID: "mo-1", QtyProduced: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"AS00001", "AS00002"}, res.Serials, "los más antiguos primero")
	assert.Equal(t, "lot-7", res.LotID)

	wh, err := e.store.Repos().Serials.Find(ctx, repository.SerialFilter{States: []entity.SerialState{entity.SerialStateWarehouse}})
	require.NoError(t, err)
	require.Len(t, wh, 2)
	for _, u := range wh {
		assert.Equal(t, "lot-7", u.LotID)
		assert.Equal(t, "loc-wh", u.LocationID)
		assert.Empty(t, u.ProductionOrderID)
		assert.Equal(t, "mo-1", u.ProducedOrderID)
	}

	_, err = e.svc.OnProductionCompleted(ctx, production.Completed{OrderID: "mo-404", QtyProduced: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Orden O1 (10) dividida en O1 (4, done) y backorder O2 (6) con 10 seriales en manufactura.
func TestOnProductionSplit_BackorderRecibeSobrantes(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	e.confirm(t, "O1", 10, "lot-O1")
	ids := e.seedSerials(t, 10)
	_, err := e.svc.AssignToProduction(ctx, production.Assign{OrderID: "O1", SerialIDs: ids})
	require.NoError(t, err)

	res, err := e.svc.OnProductionCompleted(ctx, production.Completed{OrderID: "O1", QtyProduced: 4})
	require.NoError(t, err)
	assert.Len(t, res.Serials, 4)

	e.confirm(t, "O2", 6, "")
	split, err := e.svc.OnProductionSplit(ctx, production.Split{OriginalOrderID: "O1", ResultingOrderIDs: []string{"O1", "O2"}, CompletedQty: 4})
	require.NoError(t, err)
	assert.False(t, split.NoOp)
	assert.Len(t, split.Reassigned["O2"], 6)
	assert.Empty(t, split.Unassigned)

	assert.Equal(t, 4, e.countOn(t, repository.SerialFilter{States: []entity.SerialState{entity.SerialStateWarehouse}}))
	assert.Equal(t, 6, e.countOn(t, repository.SerialFilter{ProductionOrderIDs: []string{"O2"}}))
	assert.Zero(t, e.countOn(t, repository.SerialFilter{ProductionOrderIDs: []string{"O1"}}))

	o2, err := e.store.Repos().Orders.GetByID(ctx, "O2")
	require.NoError(t, err)
	assert.Equal(t, "lot-O1", o2.LotProducingID, "el backorder hereda el lote")
	o1, err := e.store.Repos().Orders.GetByID(ctx, "O1")
	require.NoError(t, err)
	assert.Equal(t, 4, o1.ProductQty)

	again, err := e.svc.OnProductionSplit(ctx, production.Split{OriginalOrderID: "O1", ResultingOrderIDs: []string{"O1", "O2"}})
	require.NoError(t, err)
	assert.Empty(t, again.Reassigned, "reintento sin efecto: O2 ya tiene sus 6")

	res, err = e.svc.OnProductionCompleted(ctx, production.Completed{OrderID: "O2", QtyProduced: 6})
	require.NoError(t, err)
	assert.Len(t, res.Serials, 6)
	assert.Equal(t, "lot-O1", res.LotID)
}

func TestOnProductionSplit_SinDivisionEsNoOp(t *testing.T) {
	e := newEnv()
	res, err := e.svc.OnProductionSplit(context.Background(), production.Split{OriginalOrderID: "O1", ResultingOrderIDs: []string{"O1"}})
	require.NoError(t, err)
	assert.True(t, res.NoOp)
}

func TestOnProductionSplit_ConflictoDeCantidad(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	e.confirm(t, "O1", 2, "lot-1")
	ids := e.seedSerials(t, 2)
	_, err := e.svc.AssignToProduction(ctx, production.Assign{OrderID: "O1", SerialIDs: ids})
	require.NoError(t, err)
	_, err = e.svc.OnProductionCompleted(ctx, production.Completed{OrderID: "O1", QtyProduced: 1})
	require.NoError(t, err)
	e.confirm(t, "O2", 1, "")

	_, err = e.svc.OnProductionSplit(ctx, production.Split{OriginalOrderID: "O1", ResultingOrderIDs: []string{"O2"}, CompletedQty: 2})
	assert.ErrorIs(t, err, domain.ErrConflict)
}
