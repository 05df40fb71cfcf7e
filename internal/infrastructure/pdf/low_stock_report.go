// Package pdf genera reportes imprimibles del inventario con Maroto v2.
//
// Layout de la página A4 del reporte de stock bajo:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + fecha de emisión │ Totales por severidad  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CRÍTICOS (sin stock)                                       │
//	│  TABLA: SKU | Producto | Categoría | Proveedor | Stock | Mín│
//	│  ─────────────────────────────────────────────────────────  │
//	│  ADVERTENCIA (bajo el mínimo)                               │
//	│  TABLA: SKU | Producto | Categoría | Proveedor | Stock | Mín│
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/inventario-ledger-api/internal/application/dto"
	"github.com/jhoicas/inventario-ledger-api/internal/application/inventory"
)

var _ inventory.LowStockPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary  = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray     = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorCritical = &props.Color{Red: 176, Green: 0, Blue: 32}
	colorWarning  = &props.Color{Red: 191, Green: 120, Blue: 0}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa inventory.LowStockPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	now func() time.Time
}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator {
	return &MarotoPDFGenerator{now: time.Now}
}

// GenerateLowStockReport genera el PDF del reporte y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateLowStockReport(report *dto.LowStockAlertResponse, title string) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("pdf: reporte nil")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(report, title, g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	critical, warning := splitBySeverity(report.Products)
	m.AddRows(sectionRows("CRÍTICOS (sin stock)", colorCritical, critical)...)
	m.AddRows(line.NewRow(3))
	m.AddRows(sectionRows("ADVERTENCIA (bajo el mínimo)", colorWarning, warning)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título y fecha (izq), totales por severidad (der).
func headerRow(report *dto.LowStockAlertResponse, title string, at time.Time) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Emitido: "+at.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Top: 10, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(fmt.Sprintf("Productos: %d", report.TotalProducts), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1,
			}),
			text.New(fmt.Sprintf("Críticos: %d", report.CriticalCount), props.Text{
				Size: 9, Align: align.Right, Top: 7, Color: colorCritical,
			}),
			text.New(fmt.Sprintf("Advertencia: %d", report.WarningCount), props.Text{
				Size: 9, Align: align.Right, Top: 12, Color: colorWarning,
			}),
		),
	)
}

// sectionRows: título de la sección, cabecera y una fila por producto.
func sectionRows(title string, color *props.Color, products []dto.LowStockProductDTO) []core.Row {
	rows := []core.Row{
		row.New(8).Add(col.New(12).Add(text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 10, Color: color, Top: 2,
		}))),
	}
	if len(products) == 0 {
		return append(rows, row.New(6).Add(col.New(12).Add(text.New("Sin productos", props.Text{
			Size: 8, Color: colorGray, Top: 1,
		}))))
	}
	rows = append(rows, tableHeaderRow())
	for _, p := range products {
		rows = append(rows, row.New(6).Add(
			col.New(2).Add(text.New(p.SKU, props.Text{Size: 8, Top: 1})),
			col.New(4).Add(text.New(p.Name, props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(nonEmpty(p.CategoryName, "—"), props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(nonEmpty(p.SupplierName, "—"), props.Text{Size: 8, Top: 1})),
			col.New(1).Add(text.New(strconv.FormatInt(p.StockCurrent, 10), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(1).Add(text.New(strconv.FormatInt(p.StockMin, 10), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 1,
		}))
	}
	return row.New(6).Add(
		h("SKU", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Categoría", 2, align.Left),
		h("Proveedor", 2, align.Left),
		h("Stock", 1, align.Right),
		h("Mín.", 1, align.Right),
	)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func splitBySeverity(products []dto.LowStockProductDTO) (critical, warning []dto.LowStockProductDTO) {
	for _, p := range products {
		if p.Severity == inventory.SeverityCritical {
			critical = append(critical, p)
		} else {
			warning = append(warning, p)
		}
	}
	return critical, warning
}

// nonEmpty devuelve s si no está vacío; de lo contrario, fallback.
func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
