//go:build integration

package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/inventario-ledger-api/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger-api/pkg/config"
	"github.com/jhoicas/inventario-ledger-api/pkg/logger"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("inventario"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		panic(err)
	}
	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(err)
	}
	testPool, err = postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 10})
	if err != nil {
		panic(err)
	}
	if err := postgres.Migrate(ctx, testPool, logger.Nop()); err != nil {
		panic(err)
	}

	code := m.Run()
	testPool.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newEngine(t *testing.T) *inventory.RegisterMovementUseCase {
	t.Helper()
	runner := postgres.NewTxRunner(testPool, config.DBConfig{
		StatementTimeout: 5 * time.Second,
		LockTimeout:      2 * time.Second,
	})
	return inventory.NewRegisterMovementUseCase(runner, logger.Nop(), 1)
}

func seedProduct(t *testing.T, stock int64) *entity.Product {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		ID:           uuid.New().String(),
		SKU:          "IT-" + uuid.New().String()[:8],
		Name:         "Producto integración",
		StockCurrent: stock,
		StockMin:     5,
		Cost:         decimal.RequireFromString("10.50"),
		Price:        decimal.RequireFromString("15.00"),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, postgres.NewProductRepository(testPool).Create(context.Background(), p))
	return p
}

func TestMigrate_Idempotente(t *testing.T) {
	require.NoError(t, postgres.Migrate(context.Background(), testPool, logger.Nop()))
}

func TestProductRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewProductRepository(testPool)
	p := seedProduct(t, 3)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Cost.Equal(p.Cost))
	assert.Empty(t, got.CategoryID)

	bySKU, err := repo.GetBySKU(ctx, p.SKU)
	require.NoError(t, err)
	assert.Equal(t, p.ID, bySKU.ID)

	missing, err := repo.GetByID(ctx, "no-es-uuid")
	require.NoError(t, err)
	assert.Nil(t, missing)

	dup := *p
	dup.ID = uuid.New().String()
	assert.ErrorIs(t, repo.Create(ctx, &dup), domain.ErrDuplicate)

	assert.ErrorIs(t, repo.UpdateStock(ctx, uuid.New().String(), 1), domain.ErrNotFound)
	require.NoError(t, repo.SoftDelete(ctx, p.ID))
	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestProductRepo_ListConFiltros(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewProductRepository(testPool)
	p := seedProduct(t, 0)

	list, total, err := repo.List(ctx, repository.ProductFilter{Search: p.SKU[3:], LowStockOnly: true}, 10, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
}

func TestEngine_MovimientoYKardex(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t)
	p := seedProduct(t, 10)

	mov, err := engine.RecordMovement(ctx, inventory.MovementInput{
		ProductID: p.ID, Type: entity.MovementTypeExit, Reason: entity.ReasonSale, Quantity: 4, Reference: "FAC-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), mov.StockBefore)
	assert.Equal(t, int64(6), mov.StockAfter)
	assert.NotZero(t, mov.ID)

	_, err = engine.RecordMovement(ctx, inventory.MovementInput{
		ProductID: p.ID, Type: entity.MovementTypeExit, Reason: entity.ReasonSale, Quantity: 7,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	movRepo := postgres.NewInventoryMovementRepository(testPool)
	last, err := movRepo.LastForProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, mov.ID, last.ID)
	assert.Equal(t, p.SKU, last.ProductSKU)

	list, total, err := movRepo.List(ctx, repository.MovementFilter{ProductID: p.ID, Reference: "fac"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)
}

func TestEngine_SalidasConcurrentesNoSobrevenden(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t)
	p := seedProduct(t, 20)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.RecordMovement(ctx, inventory.MovementInput{
				ProductID: p.ID, Type: entity.MovementTypeExit, Reason: entity.ReasonSale, Quantity: 1,
			})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, err := postgres.NewProductRepository(testPool).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, success)
	assert.Zero(t, got.StockCurrent)
	n, err := postgres.NewInventoryMovementRepository(testPool).CountByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}

func TestCategoryRepo_DeleteConProductos(t *testing.T) {
	ctx := context.Background()
	categories := postgres.NewCategoryRepository(testPool)
	now := time.Now()
	c := &entity.Category{ID: uuid.New().String(), Name: "Cat " + uuid.New().String()[:6], CreatedAt: now, UpdatedAt: now}
	require.NoError(t, categories.Create(ctx, c))

	p := seedProduct(t, 0)
	p.CategoryID = c.ID
	require.NoError(t, postgres.NewProductRepository(testPool).Update(ctx, p))

	assert.ErrorIs(t, categories.Delete(ctx, c.ID), domain.ErrHasDependents)
}

func TestStockSummary(t *testing.T) {
	summary, err := postgres.NewProductRepository(testPool).GetStockSummary(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, summary.TotalProducts, 0)
	assert.False(t, summary.TotalStockValue.IsNegative())
}
