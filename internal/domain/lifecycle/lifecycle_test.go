package lifecycle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/lifecycle"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newUnit(name string) *entity.SerialUnit {
	return &entity.SerialUnit{
		ID:         "id-" + name,
		Name:       name,
		State:      entity.SerialStateNew,
		CompanyID:  "c1",
		LocationID: "loc-stock",
		ProductID:  "p-fire",
		Active:     true,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Línea principal: new → purchased → manufacturing → warehouse → delivered
// ──────────────────────────────────────────────────────────────────────────────

func TestTransition_LineaPrincipal(t *testing.T) {
	u := newUnit("AS00001")

	require.NoError(t, lifecycle.Transition(u, entity.SerialStatePurchased, lifecycle.Change{At: testNow}))
	require.NoError(t, lifecycle.Transition(u, entity.SerialStateManufacturing, lifecycle.Change{
		ProductionOrderID: "mo-1", At: testNow,
	}))
	assert.Equal(t, "mo-1", u.ProductionOrderID)
	require.NotNil(t, u.ManufacturingDate)

	require.NoError(t, lifecycle.Transition(u, entity.SerialStateWarehouse, lifecycle.Change{
		Cause: lifecycle.CauseProduction, LotID: "lot-1", LocationID: "loc-wh", At: testNow,
	}))
	assert.Equal(t, "lot-1", u.LotID)
	assert.Empty(t, u.ProductionOrderID, "la orden se libera al ingresar a bodega")
	assert.Equal(t, "mo-1", u.ProducedOrderID)
	assert.Equal(t, "loc-wh", u.LocationID)

	require.NoError(t, lifecycle.Transition(u, entity.SerialStateDelivered, lifecycle.Change{
		Cause: lifecycle.CauseShipment, MoveLineID: "ml-1", PickingID: "pk-out", At: testNow,
	}))
	assert.Equal(t, entity.SerialStateDelivered, u.State)
	assert.Equal(t, "ml-1", u.MoveLineID)
	assert.Equal(t, "pk-out", u.DeliveryPickingID)
	require.NotNil(t, u.DeliveryDate)
}

func TestTransition_AristasInvalidas(t *testing.T) {
	cases := []struct {
		from, to entity.SerialState
	}{
		{entity.SerialStateNew, entity.SerialStateWarehouse},
		{entity.SerialStateNew, entity.SerialStateDelivered},
		{entity.SerialStatePurchased, entity.SerialStateNew},
		{entity.SerialStateWarehouse, entity.SerialStateManufacturing},
		{entity.SerialStateDelivered, entity.SerialStateNew},
		{entity.SerialStateScrapped, entity.SerialStateNew},
	}
	for _, tc := range cases {
		u := newUnit("AS00002")
		u.State = tc.from
		u.LotID = "lot-1"
		err := lifecycle.Transition(u, tc.to, lifecycle.Change{ProductionOrderID: "mo-1", MoveLineID: "ml-1"})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, "%s → %s debe rechazarse", tc.from, tc.to)
		assert.Equal(t, tc.from, u.State, "el estado no cambia ante un error")
	}
}

func TestTransition_DevolucionSoloConCausaReturn(t *testing.T) {
	u := newUnit("AS00003")
	u.State = entity.SerialStateDelivered

	err := lifecycle.Transition(u, entity.SerialStateWarehouse, lifecycle.Change{Cause: lifecycle.CauseManual})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, lifecycle.Transition(u, entity.SerialStateWarehouse, lifecycle.Change{
		Cause: lifecycle.CauseReturn, MoveLineID: "ml-ret", At: testNow,
	}))
	assert.Equal(t, entity.SerialStateWarehouse, u.State)
	require.NotNil(t, u.ReturnDate)
}

func TestTransition_DatosObligatorios(t *testing.T) {
	u := newUnit("AS00004")
	err := lifecycle.Transition(u, entity.SerialStateManufacturing, lifecycle.Change{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "manufactura sin orden")

	u.State = entity.SerialStateManufacturing
	u.ProductionOrderID = "mo-1"
	err = lifecycle.Transition(u, entity.SerialStateWarehouse, lifecycle.Change{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "bodega sin lote")
	assert.Equal(t, "mo-1", u.ProductionOrderID)
}

func TestTransition_AnulacionLiberaOrden(t *testing.T) {
	u := newUnit("AS00005")
	require.NoError(t, lifecycle.Transition(u, entity.SerialStateManufacturing, lifecycle.Change{ProductionOrderID: "mo-9"}))
	require.NoError(t, lifecycle.Transition(u, entity.SerialStateNew, lifecycle.Change{Cause: lifecycle.CauseManual}))

	assert.Equal(t, entity.SerialStateNew, u.State)
	assert.Empty(t, u.ProductionOrderID)
	assert.Empty(t, u.ProductID)
	assert.Nil(t, u.ManufacturingDate)
}

func TestTransition_SerialEnCustodiaNoSigueLineaPrincipal(t *testing.T) {
	u := newUnit("AS00006")
	require.NoError(t, lifecycle.AssignCustody(u, "c2", testNow))

	err := lifecycle.Transition(u, entity.SerialStateWarehouse, lifecycle.Change{LotID: "lot-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// ──────────────────────────────────────────────────────────────────────────────
// Custodia entre empresas y snapshots
// ──────────────────────────────────────────────────────────────────────────────

func TestCustody_AsignarYRevertirRestauraExacto(t *testing.T) {
	u := newUnit("AS00010")
	u.State = entity.SerialStateWarehouse
	before := u.Snapshot()

	require.NoError(t, lifecycle.AssignCustody(u, "c2", testNow))
	assert.Equal(t, entity.SerialStateManufacturing, u.State)
	assert.True(t, u.Transferred)
	assert.Equal(t, "c2", u.InternalCompanyID)
	assert.Equal(t, before, u.Previous)
	assert.Equal(t, before, u.Original)

	require.NoError(t, lifecycle.Reverse(u, testNow))
	assert.Equal(t, before, u.Snapshot(), "Reverse debe restaurar estado, empresa, ubicación y producto")

	err := lifecycle.Reverse(u, testNow)
	assert.ErrorIs(t, err, domain.ErrNotEligible, "un segundo Reverse no debe deshacer dos veces")
	assert.Equal(t, before, u.Snapshot())
}

func TestCustody_OriginalSeCongelaPreviousSeSobrescribe(t *testing.T) {
	u := newUnit("AS00011")
	first := u.Snapshot()

	require.NoError(t, lifecycle.AssignCustody(u, "c2", testNow))
	afterAssign := u.Snapshot()
	require.NoError(t, lifecycle.ReceiveCustody(u, "c3", "p-fire-c3", "loc-c3", testNow))

	assert.Equal(t, first, u.Original, "original_* queda congelado en la primera transferencia")
	assert.Equal(t, afterAssign, u.Previous, "previous_* refleja la última transferencia")
	assert.Equal(t, entity.SerialStateWarehouse, u.State)
	assert.False(t, u.Transferred)
	assert.Equal(t, "c3", u.InternalCompanyID)
	assert.Equal(t, "loc-c3", u.LocationID)
	assert.Equal(t, "p-fire-c3", u.ProductID)
}

func TestCustody_TransicionConsumeSnapshot(t *testing.T) {
	u := newUnit("AS00013")
	u.State = entity.SerialStateWarehouse
	require.NoError(t, lifecycle.AssignCustody(u, "c2", testNow))
	require.NoError(t, lifecycle.ReceiveCustody(u, "c3", "", "loc-c3", testNow))
	received := u.Snapshot()

	require.NoError(t, lifecycle.Transition(u, entity.SerialStateDelivered, lifecycle.Change{MoveLineID: "ml-1", At: testNow}))
	assert.Equal(t, received, u.Previous, "previous_* se sobrescribe en cada transición")
	assert.False(t, lifecycle.CanReverse(u))
	assert.ErrorIs(t, lifecycle.Reverse(u, testNow), domain.ErrNotEligible)
	assert.Equal(t, entity.SerialStateDelivered, u.State)
}

func TestCustody_Elegibilidad(t *testing.T) {
	u := newUnit("AS00012")
	u.State = entity.SerialStateDelivered
	assert.ErrorIs(t, lifecycle.AssignCustody(u, "c2", testNow), domain.ErrIneligibleState)

	u.State = entity.SerialStateNew
	u.InternalCompanyID = "c2"
	assert.ErrorIs(t, lifecycle.AssignCustody(u, "c2", testNow), domain.ErrIneligibleState,
		"no se cede a la empresa que ya la custodia")

	v := newUnit("AS00013")
	assert.ErrorIs(t, lifecycle.ReceiveCustody(v, "c2", "", "", testNow), domain.ErrIneligibleState,
		"solo se recibe un serial transferido")
	assert.False(t, lifecycle.CanReverse(v))
}

// ──────────────────────────────────────────────────────────────────────────────
// Nombres y rangos
// ──────────────────────────────────────────────────────────────────────────────

func TestExpandRange(t *testing.T) {
	names, err := lifecycle.ExpandRange("AS00098", "AS00101")
	require.NoError(t, err)
	assert.Equal(t, []string{"AS00098", "AS00099", "AS00100", "AS00101"}, names)

	_, err = lifecycle.ExpandRange("AS00005", "AS00001")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = lifecycle.ExpandRange("AS00001", "BX00003")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = lifecycle.ExpandRange("1234", "AS1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSortByName_OrdenNatural(t *testing.T) {
	units := []*entity.SerialUnit{
		{Name: "AS10", Seq: 1}, {Name: "AS9", Seq: 2}, {Name: "AS100", Seq: 3}, {Name: "AB1", Seq: 4},
	}
	lifecycle.SortByName(units)

	got := make([]string, 0, len(units))
	for _, u := range units {
		got = append(got, u.Name)
	}
	assert.Equal(t, []string{"AB1", "AS9", "AS10", "AS100"}, got)
	assert.Equal(t, 0, lifecycle.CompareNames("AS1", "AS1"))
}
