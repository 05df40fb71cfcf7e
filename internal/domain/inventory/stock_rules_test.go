package inventory_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/inventory"
)

func TestApplyMovement_EntradaSuma(t *testing.T) {
	after, err := inventory.ApplyMovement(entity.MovementTypeEntry, 10, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(13), after)
}

func TestApplyMovement_EntradaDesborda(t *testing.T) {
	_, err := inventory.ApplyMovement(entity.MovementTypeEntry, 1, math.MaxInt64)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	after, err := inventory.ApplyMovement(entity.MovementTypeEntry, 1, math.MaxInt64-1)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), after)
}

func TestApplyMovement_SalidaYAjusteRestan(t *testing.T) {
	for _, mt := range []string{entity.MovementTypeExit, entity.MovementTypeAdjustment} {
		after, err := inventory.ApplyMovement(mt, 10, 10)
		require.NoError(t, err, mt)
		assert.Equal(t, int64(0), after, mt)
	}
}

func TestApplyMovement_StockInsuficiente(t *testing.T) {
	_, err := inventory.ApplyMovement(entity.MovementTypeExit, 5, 6)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, int64(5), stockErr.Current)
	assert.Equal(t, int64(6), stockErr.Requested)
	assert.Equal(t, "Stock insuficiente. Stock actual: 5, cantidad solicitada: 6", err.Error())
}

func TestApplyMovement_TrasladoSinEfectoNeto(t *testing.T) {
	after, err := inventory.ApplyMovement(entity.MovementTypeTransfer, 7, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(7), after)
}

func TestApplyMovement_CantidadInvalida(t *testing.T) {
	for _, q := range []int64{0, -1} {
		_, err := inventory.ApplyMovement(entity.MovementTypeEntry, 7, q)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}
}

func TestApplyMovement_TipoDesconocido(t *testing.T) {
	_, err := inventory.ApplyMovement("IN", 7, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjustmentFor(t *testing.T) {
	cases := []struct {
		name     string
		before   int64
		target   int64
		wantType string
		wantQty  int64
		wantErr  error
	}{
		{"sube es entrada", 10, 15, entity.MovementTypeEntry, 5, nil},
		{"baja es ajuste", 10, 7, entity.MovementTypeAdjustment, 3, nil},
		{"baja a cero", 4, 0, entity.MovementTypeAdjustment, 4, nil},
		{"igual no registra", 10, 10, "", 0, domain.ErrNoOpAdjustment},
		{"objetivo negativo", 10, -1, "", 0, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mt, qty, err := inventory.AdjustmentFor(tc.before, tc.target)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantType, mt)
			assert.Equal(t, tc.wantQty, qty)
		})
	}
}

func TestLedgerConsistent(t *testing.T) {
	assert.True(t, inventory.LedgerConsistent(3, nil))
	assert.True(t, inventory.LedgerConsistent(3, &entity.InventoryMovement{StockAfter: 3}))
	assert.False(t, inventory.LedgerConsistent(4, &entity.InventoryMovement{StockAfter: 3}))
}
