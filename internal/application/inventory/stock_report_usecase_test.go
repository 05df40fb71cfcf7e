package inventory_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger-api/internal/application/dto"
	"github.com/jhoicas/inventario-ledger-api/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
)

func TestLowStockReport_Clasificacion(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "a", 0, 5) // critical
	f.seedProduct(t, "b", 2, 5) // warning
	f.seedProduct(t, "c", 6, 5) // fuera del reporte
	f.seedProduct(t, "d", 1, 9) // warning, mayor déficit que b
	inactive := f.seedProduct(t, "e", 0, 5)
	inactive.IsActive = false
	require.NoError(t, f.products.Update(context.Background(), inactive))

	report, err := f.reports.LowStockReport(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalProducts)
	assert.Equal(t, 1, report.CriticalCount)
	assert.Equal(t, 2, report.WarningCount)
	ids := make([]string, 0, len(report.Products))
	for _, p := range report.Products {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"d", "a", "b"}, ids)
	assert.Equal(t, int64(8), report.Products[0].StockDeficit)
	assert.Equal(t, inventory.SeverityCritical, report.Products[1].Severity)
	assert.Equal(t, inventory.SeverityWarning, report.Products[2].Severity)
}

func TestLowStockReport_LecturasIdempotentes(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "a", 0, 5)
	f.seedProduct(t, "b", 2, 5)

	first, err := f.reports.LowStockReport(context.Background())
	require.NoError(t, err)
	second, err := f.reports.LowStockReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInventoryStats(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "a", 0, 5)  // agotado
	f.seedProduct(t, "b", 2, 5)  // bajo
	f.seedProduct(t, "c", 10, 5) // normal
	ctx := context.Background()
	_, err := f.engine.RecordMovement(ctx, inventory.MovementInput{
		ProductID: "c", Type: entity.MovementTypeEntry, Reason: entity.ReasonPurchase, Quantity: 5,
	})
	require.NoError(t, err)

	stats, err := f.reports.InventoryStats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalProducts)
	// (0 + 2 + 15) unidades × costo 10
	assert.True(t, decimal.NewFromInt(170).Equal(stats.TotalStockValue), stats.TotalStockValue.String())
	assert.Equal(t, 1, stats.LowStockCount)
	assert.Equal(t, 1, stats.OutOfStockCount)
	assert.Equal(t, 1, stats.MovementsToday)
	assert.Equal(t, 1, stats.MovementsThisWeek)
	assert.Equal(t, 1, stats.MovementsThisMonth)
}

func TestStockAvailable(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "a", 5, 0)
	ctx := context.Background()

	ok, err := f.reports.StockAvailable(ctx, "a", 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.reports.StockAvailable(ctx, "a", 6)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.reports.StockAvailable(ctx, "nope", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.reports.StockAvailable(ctx, "a", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

type fakePDF struct {
	report *dto.LowStockAlertResponse
	title  string
	err    error
}

func (g *fakePDF) GenerateLowStockReport(report *dto.LowStockAlertResponse, title string) ([]byte, error) {
	g.report, g.title = report, title
	return []byte("%PDF-fake"), g.err
}

func TestLowStockReportPDF(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "a", 0, 5)
	gen := &fakePDF{}
	reports := inventory.NewStockReportUseCase(f.products, f.movements, gen)

	out, err := reports.LowStockReportPDF(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), out)
	require.NotNil(t, gen.report)
	assert.Equal(t, 1, gen.report.CriticalCount)
	assert.True(t, strings.HasPrefix(gen.title, "Reporte de stock bajo - "))
}

func TestLowStockReportPDF_SinGenerador(t *testing.T) {
	f := newFixture(t)
	_, err := f.reports.LowStockReportPDF(context.Background())
	assert.Error(t, err)

	gen := &fakePDF{err: errors.New("render")}
	_, err = inventory.NewStockReportUseCase(f.products, f.movements, gen).LowStockReportPDF(context.Background())
	assert.Error(t, err)
}
