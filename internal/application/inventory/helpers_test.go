package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger-api/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger-api/pkg/logger"
)

// fixture agrupa el almacén en memoria y los casos de uso construidos sobre él.
type fixture struct {
	store     *memory.Store
	products  *memory.ProductRepository
	movements *memory.MovementRepository
	engine    *inventory.RegisterMovementUseCase
	ledger    *inventory.LedgerUseCase
	reports   *inventory.StockReportUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:     store,
		products:  memory.NewProductRepository(store),
		movements: memory.NewMovementRepository(store),
	}
	f.engine = inventory.NewRegisterMovementUseCase(memory.NewTxRunner(store), logger.Nop(), 1)
	f.ledger = inventory.NewLedgerUseCase(f.movements, f.products)
	f.reports = inventory.NewStockReportUseCase(f.products, f.movements, nil)
	return f
}

// seedProduct crea un producto activo con el stock indicado (fixture, sin pasar por el kardex).
func (f *fixture) seedProduct(t *testing.T, id string, stock, stockMin int64) *entity.Product {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		ID:           id,
		SKU:          "SKU-" + id,
		Name:         "Producto " + id,
		StockCurrent: stock,
		StockMin:     stockMin,
		Cost:         decimal.NewFromInt(10),
		Price:        decimal.NewFromInt(15),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) stockOf(t *testing.T, id string) int64 {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.StockCurrent
}

func (f *fixture) movementCount(t *testing.T, id string) int {
	t.Helper()
	n, err := f.movements.CountByProduct(context.Background(), id)
	require.NoError(t, err)
	return n
}
