package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger-api/internal/application/dto"
	"github.com/jhoicas/inventario-ledger-api/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/repository"
)

func seedMovements(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	f.seedProduct(t, "p1", 10, 0)
	f.seedProduct(t, "p2", 10, 0)
	inputs := []inventory.MovementInput{
		{ProductID: "p1", Type: entity.MovementTypeEntry, Reason: entity.ReasonPurchase, Quantity: 5, Reference: "FAC-001", UserID: "u1"},
		{ProductID: "p1", Type: entity.MovementTypeExit, Reason: entity.ReasonSale, Quantity: 2, Reference: "POS-9"},
		{ProductID: "p2", Type: entity.MovementTypeExit, Reason: entity.ReasonSale, Quantity: 1, Reference: "fac-002"},
		{ProductID: "p1", Type: entity.MovementTypeAdjustment, Reason: entity.ReasonDamaged, Quantity: 1},
	}
	for _, in := range inputs {
		_, err := f.engine.RecordMovement(ctx, in)
		require.NoError(t, err)
	}
}

func TestListMovements_OrdenRecienteYTotal(t *testing.T) {
	f := newFixture(t)
	seedMovements(t, f)

	resp, err := f.ledger.ListMovements(context.Background(), repository.MovementFilter{}, dto.PageRequest{Page: 1, PageSize: 3})

	require.NoError(t, err)
	assert.Equal(t, 4, resp.Total)
	assert.Equal(t, 2, resp.Pages)
	require.Len(t, resp.Items, 3)
	for i := 1; i < len(resp.Items); i++ {
		assert.Greater(t, resp.Items[i-1].ID, resp.Items[i].ID)
	}
	assert.Equal(t, entity.MovementTypeAdjustment, resp.Items[0].MovementType)
	require.NotNil(t, resp.Items[0].Product)
	assert.Equal(t, "SKU-p1", resp.Items[0].Product.SKU)

	second, err := f.ledger.ListMovements(context.Background(), repository.MovementFilter{}, dto.PageRequest{Page: 2, PageSize: 3})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, entity.ReasonPurchase, second.Items[0].Reason)
}

func TestListMovements_Filtros(t *testing.T) {
	f := newFixture(t)
	seedMovements(t, f)
	ctx := context.Background()
	page := dto.PageRequest{}

	resp, err := f.ledger.ListMovements(ctx, repository.MovementFilter{ProductID: "p1"}, page)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)

	resp, err = f.ledger.ListMovements(ctx, repository.MovementFilter{MovementType: entity.MovementTypeExit}, page)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)

	resp, err = f.ledger.ListMovements(ctx, repository.MovementFilter{Reference: "FAC"}, page)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total, "la referencia se busca sin distinguir mayúsculas")

	resp, err = f.ledger.ListMovements(ctx, repository.MovementFilter{UserID: "u1"}, page)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)

	future := time.Now().Add(time.Hour)
	resp, err = f.ledger.ListMovements(ctx, repository.MovementFilter{DateFrom: &future}, page)
	require.NoError(t, err)
	assert.Zero(t, resp.Total)
	assert.NotNil(t, resp.Items)
}

func TestListMovements_FiltrosInvalidos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	from := time.Now()
	to := from.Add(-time.Hour)

	_, err := f.ledger.ListMovements(ctx, repository.MovementFilter{MovementType: "IN"}, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.ledger.ListMovements(ctx, repository.MovementFilter{DateFrom: &from, DateTo: &to}, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListMovements_LecturasIdempotentes(t *testing.T) {
	f := newFixture(t)
	seedMovements(t, f)
	ctx := context.Background()

	first, err := f.ledger.ListMovements(ctx, repository.MovementFilter{}, dto.PageRequest{})
	require.NoError(t, err)
	second, err := f.ledger.ListMovements(ctx, repository.MovementFilter{}, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGetMovement(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", 1, 0)
	mov, err := f.engine.RecordMovement(context.Background(), inventory.MovementInput{
		ProductID: "p1", Type: entity.MovementTypeEntry, Reason: entity.ReasonPurchase, Quantity: 1,
	})
	require.NoError(t, err)

	got, err := f.ledger.GetMovement(context.Background(), mov.ID)
	require.NoError(t, err)
	assert.Equal(t, mov.ID, got.ID)
	assert.Nil(t, got.Reference)

	_, err = f.ledger.GetMovement(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductHistory(t *testing.T) {
	f := newFixture(t)
	seedMovements(t, f)
	ctx := context.Background()

	history, err := f.ledger.ProductHistory(ctx, "p1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.MovementTypeAdjustment, history[0].MovementType)

	all, err := f.ledger.ProductHistory(ctx, "p1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.ledger.ProductHistory(ctx, "nope", 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCountSince(t *testing.T) {
	f := newFixture(t)
	before := time.Now().Add(-time.Second)
	seedMovements(t, f)

	n, err := f.ledger.CountSince(context.Background(), before)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = f.ledger.CountSince(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReconcile(t *testing.T) {
	f := newFixture(t)
	seedMovements(t, f)
	ctx := context.Background()

	rec, err := f.ledger.Reconcile(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	require.NotNil(t, rec.LedgerStock)
	assert.Equal(t, rec.StockCurrent, *rec.LedgerStock)
	assert.Equal(t, 3, rec.MovementCount)

	// Un cambio de stock por fuera del motor rompe la consistencia.
	require.NoError(t, f.products.UpdateStock(ctx, "p1", 99))
	rec, err = f.ledger.Reconcile(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, rec.Consistent)

	f.seedProduct(t, "p9", 0, 0)
	rec, err = f.ledger.Reconcile(ctx, "p9")
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.Nil(t, rec.LedgerStock)

	_, err = f.ledger.Reconcile(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
