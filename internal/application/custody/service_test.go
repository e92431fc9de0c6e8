package custody_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/setsco-serial-api/internal/application/custody"
	"github.com/jhoicas/setsco-serial-api/internal/application/serial"
	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/memory"
	"github.com/jhoicas/setsco-serial-api/pkg/logger"
)

func seed(t *testing.T, store *memory.Store, name string, state entity.SerialState) *entity.SerialUnit {
	t.Helper()
	u := &entity.SerialUnit{
		Name: name, CategoryID: "cat", CompanyID: "c1", InternalCompanyID: "c1",
		ProductID: "p-fire", LocationID: "loc-c1", LotID: "lot-1", State: state, Active: true,
	}
	require.NoError(t, store.Repos().Serials.Create(context.Background(), u))
	return u
}

func get(t *testing.T, store *memory.Store, id string) *entity.SerialUnit {
	t.Helper()
	u, err := store.Repos().Serials.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func TestAssignReverse_IdaYVueltaExacta(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := custody.NewService(store, store.Repos().Serials, logger.Nop(), nil)
	a := seed(t, store, "AS00001", entity.SerialStateWarehouse)
	b := seed(t, store, "AS00002", entity.SerialStateNew)
	before := map[string]entity.CustodySnapshot{a.ID: a.Snapshot(), b.ID: b.Snapshot()}

	res, err := svc.AssignToCompany(ctx, custody.AssignInput{SerialIDs: []string{a.ID, b.ID}, CompanyID: "c2"})
	require.NoError(t, err)
	assert.Len(t, res.Succeeded, 2)

	moved := get(t, store, a.ID)
	assert.Equal(t, entity.SerialStateManufacturing, moved.State)
	assert.True(t, moved.Transferred)
	assert.Equal(t, "c2", moved.InternalCompanyID)

	res, err = svc.Reverse(ctx, []string{a.ID, b.ID}, "u1")
	require.NoError(t, err)
	assert.Len(t, res.Succeeded, 2, "reversedCount")
	for id, snap := range before {
		assert.Equal(t, snap, get(t, store, id).Snapshot(), "Reverse restaura el estado previo exacto")
	}

	res, err = svc.Reverse(ctx, []string{a.ID, b.ID}, "u1")
	assert.ErrorIs(t, err, domain.ErrNotEligible, "segundo Reverse sin transferencia intermedia")
	assert.Empty(t, res.Succeeded)
	for id, snap := range before {
		assert.Equal(t, snap, get(t, store, id).Snapshot(), "nunca se deshace dos veces")
	}
}

func TestAssign_InelegibleNoMutaNinguno(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := custody.NewService(store, store.Repos().Serials, logger.Nop(), nil)
	ok := seed(t, store, "AS00001", entity.SerialStateNew)
	bad := seed(t, store, "AS00002", entity.SerialStateDelivered)

	res, err := svc.AssignToCompany(ctx, custody.AssignInput{SerialIDs: []string{ok.ID, bad.ID}, CompanyID: "c2"})
	require.ErrorIs(t, err, domain.ErrIneligibleState)
	assert.Contains(t, err.Error(), "AS00002", "el error nombra al serial inelegible")
	assert.Equal(t, []string{"AS00002"}, res.FailedNames())
	assert.Equal(t, entity.SerialStateNew, get(t, store, ok.ID).State, "ningún serial se muta")
}

func TestReceive_CompletaLaExcursion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := custody.NewService(store, store.Repos().Serials, logger.Nop(), nil)
	u := seed(t, store, "AS00001", entity.SerialStateWarehouse)
	original := u.Snapshot()

	_, err := svc.ReceiveFromCompany(ctx, custody.ReceiveInput{
		SerialIDs: []string{u.ID}, ReceivingCompanyID: "c2", ProductID: "p-c2", LocationID: "loc-c2",
	})
	require.ErrorIs(t, err, domain.ErrIneligibleState, "no estaba cedido")

	_, err = svc.AssignToCompany(ctx, custody.AssignInput{SerialIDs: []string{u.ID}, CompanyID: "c2"})
	require.NoError(t, err)
	res, err := svc.ReceiveFromCompany(ctx, custody.ReceiveInput{
		SerialIDs: []string{u.ID}, ReceivingCompanyID: "c3", ProductID: "p-c3", LocationID: "loc-c3",
	})
	require.NoError(t, err)
	assert.Len(t, res.Succeeded, 1)

	got := get(t, store, u.ID)
	assert.Equal(t, entity.SerialStateWarehouse, got.State)
	assert.False(t, got.Transferred)
	assert.Equal(t, "c3", got.InternalCompanyID)
	assert.Equal(t, "loc-c3", got.LocationID)
	assert.Equal(t, "p-c3", got.ProductID)
	assert.Equal(t, original, got.Original, "original_* no cambia en la segunda transferencia")
	assert.Equal(t, entity.SerialStateManufacturing, got.Previous.State)
}

func TestAssign_ValidacionEstructural(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := custody.NewService(store, store.Repos().Serials, logger.Nop(), nil)

	_, err := svc.AssignToCompany(ctx, custody.AssignInput{SerialIDs: []string{"x"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.AssignToCompany(ctx, custody.AssignInput{CompanyID: "c2"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.AssignToCompany(ctx, custody.AssignInput{SerialIDs: []string{"x"}, CompanyID: "c2"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReverse_DespuesDeEntregaNoEsElegible(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := custody.NewService(store, store.Repos().Serials, logger.Nop(), nil)
	registry := serial.NewRegistry(store, store.Repos(), logger.Nop(), nil)
	u := seed(t, store, "AS00020", entity.SerialStateWarehouse)

	_, err := svc.AssignToCompany(ctx, custody.AssignInput{SerialIDs: []string{u.ID}, CompanyID: "c2"})
	require.NoError(t, err)
	_, err = svc.ReceiveFromCompany(ctx, custody.ReceiveInput{SerialIDs: []string{u.ID}, ReceivingCompanyID: "c3", LocationID: "loc-c3"})
	require.NoError(t, err)
	_, err = registry.Transition(ctx, u.ID, entity.SerialStateDelivered, serial.TransitionInput{MoveLineID: "ml-out", PickingID: "P1"})
	require.NoError(t, err)

	res, err := svc.Reverse(ctx, []string{u.ID}, "u1")
	assert.ErrorIs(t, err, domain.ErrNotEligible, "la entrega consume el snapshot de custodia")
	assert.Empty(t, res.Succeeded)

	after := get(t, store, u.ID)
	assert.Equal(t, entity.SerialStateDelivered, after.State, "un serial entregado no vuelve a manufactura")
	assert.False(t, after.Transferred)
	assert.Equal(t, "c3", after.InternalCompanyID)
}
