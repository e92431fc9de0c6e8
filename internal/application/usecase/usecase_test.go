package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/setsco-serial-api/internal/application/dto"
	"github.com/jhoicas/setsco-serial-api/internal/application/usecase"
	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Categorías
// ──────────────────────────────────────────────────────────────────────────────

func TestCategory_CrearYDuplicado(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := usecase.NewCategoryUseCase(store.Repos().Categories, store.Repos().Serials)

	out, err := uc.Create(ctx, "c1", dto.CreateCategoryRequest{
		Name:             " Fire-9kg ",
		SafetyStockLevel: decimal.NewFromInt(5),
		Recipients:       []string{"a@setsco.sg", "", "a@setsco.sg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Fire-9kg", out.Name)
	assert.Equal(t, []string{"a@setsco.sg"}, out.Recipients, "destinatarios sin vacíos ni repetidos")
	assert.True(t, out.Active)

	_, err = uc.Create(ctx, "c1", dto.CreateCategoryRequest{Name: "Fire-9kg"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, "c2", dto.CreateCategoryRequest{Name: "Fire-9kg"})
	assert.NoError(t, err, "el nombre es único por empresa")

	_, err = uc.Create(ctx, "c1", dto.CreateCategoryRequest{Name: "x", SafetyStockLevel: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCategory_DisponiblesYActualizacion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := usecase.NewCategoryUseCase(store.Repos().Categories, store.Repos().Serials)

	cat, err := uc.Create(ctx, "c1", dto.CreateCategoryRequest{Name: "CO2-5kg", SafetyStockLevel: decimal.NewFromInt(3)})
	require.NoError(t, err)
	for i, st := range []entity.SerialState{entity.SerialStateNew, entity.SerialStateNew, entity.SerialStateWarehouse} {
		require.NoError(t, store.Repos().Serials.Create(ctx, &entity.SerialUnit{
			Name: []string{"C1", "C2", "C3"}[i], CategoryID: cat.ID, State: st, Active: true,
		}))
	}

	av, err := uc.GetAvailable(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, av.Available, "solo cuentan los seriales en estado new")
	assert.True(t, av.BelowSafetyStock)

	level := decimal.NewFromInt(2)
	_, err = uc.Update(ctx, cat.ID, dto.UpdateCategoryRequest{SafetyStockLevel: &level})
	require.NoError(t, err)
	av, err = uc.GetAvailable(ctx, cat.ID)
	require.NoError(t, err)
	assert.False(t, av.BelowSafetyStock, "2 disponibles con nivel 2 no está por debajo")

	missing, err := uc.GetAvailable(ctx, "no-existe")
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := uc.List(ctx, "c1", 20, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Configuración de distribución (CoC)
// ──────────────────────────────────────────────────────────────────────────────

func TestDistributionSettings_GetActive(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := usecase.NewDistributionSettingsUseCase(store.Repos().Settings)

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	nextYear := time.Now().AddDate(1, 0, 0).Format("2006-01-02")

	_, err := uc.Create(ctx, "c1", dto.CreateDistributionSettingsRequest{
		Sequence: 1, CocHolderName: "Vencido", CertificateNo: "CoC-0", ExpiryDate: yesterday,
	})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "c1", dto.CreateDistributionSettingsRequest{
		Sequence: 5, CocHolderName: "Secundario", CertificateNo: "CoC-5",
	})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "c1", dto.CreateDistributionSettingsRequest{
		Sequence: 3, CocHolderName: "Vigente", CertificateNo: "CoC-3", ExpiryDate: nextYear,
	})
	require.NoError(t, err)

	active, err := uc.GetActive(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "CoC-3", active.CertificateNo, "menor secuencia entre las vigentes")

	none, err := uc.GetActive(ctx, "otra")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = uc.Create(ctx, "c1", dto.CreateDistributionSettingsRequest{
		CocHolderName: "x", CertificateNo: "y", ExpiryDate: "31/12/2030",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
