package pdf_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger-api/internal/application/dto"
	"github.com/jhoicas/inventario-ledger-api/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger-api/internal/infrastructure/pdf"
)

func TestGenerateLowStockReport_GeneraPDF(t *testing.T) {
	report := &dto.LowStockAlertResponse{
		TotalProducts: 2,
		CriticalCount: 1,
		WarningCount:  1,
		Products: []dto.LowStockProductDTO{
			{ID: "p1", SKU: "TOR-001", Name: "Tornillo", StockCurrent: 0, StockMin: 10, StockDeficit: 10, Severity: inventory.SeverityCritical},
			{ID: "p2", SKU: "ARA-001", Name: "Arandela", StockCurrent: 3, StockMin: 5, StockDeficit: 2, CategoryName: "Ferretería", Severity: inventory.SeverityWarning},
		},
	}

	out, err := pdf.NewMarotoPDFGenerator().GenerateLowStockReport(report, "Reporte de stock bajo - Octubre 2026")

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateLowStockReport_SinProductos(t *testing.T) {
	out, err := pdf.NewMarotoPDFGenerator().GenerateLowStockReport(&dto.LowStockAlertResponse{}, "Vacío")

	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestGenerateLowStockReport_ReporteNil(t *testing.T) {
	_, err := pdf.NewMarotoPDFGenerator().GenerateLowStockReport(nil, "x")

	assert.Error(t, err)
}
