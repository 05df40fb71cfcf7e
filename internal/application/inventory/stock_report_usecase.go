package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/inventario-ledger-api/internal/application/dto"
	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/repository"
)

// Severidad de un producto en el reporte de stock bajo.
const (
	SeverityCritical = "critical" // sin stock
	SeverityWarning  = "warning"  // por debajo del mínimo
)

// StockReportUseCase agregados sobre productos y kardex: stock bajo, estadísticas y disponibilidad.
type StockReportUseCase struct {
	productRepo repository.ProductRepository
	movRepo     repository.InventoryMovementRepository
	pdf         LowStockPDFGenerator
	now         func() time.Time
}

// NewStockReportUseCase construye el caso de uso. pdf puede ser nil si no se exporta el reporte.
func NewStockReportUseCase(
	productRepo repository.ProductRepository,
	movRepo repository.InventoryMovementRepository,
	pdf LowStockPDFGenerator,
) *StockReportUseCase {
	return &StockReportUseCase{
		productRepo: productRepo,
		movRepo:     movRepo,
		pdf:         pdf,
		now:         time.Now,
	}
}

// LowStockReport devuelve los productos activos bajo el mínimo, el más deficitario primero,
// separados en critical (stock 0) y warning.
func (uc *StockReportUseCase) LowStockReport(ctx context.Context) (*dto.LowStockAlertResponse, error) {
	rows, err := uc.productRepo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}

	// Orden estable: mayor déficit relativo primero y SKU como desempate.
	sort.SliceStable(rows, func(i, j int) bool {
		di := rows[i].StockCurrent - rows[i].StockMin
		dj := rows[j].StockCurrent - rows[j].StockMin
		if di != dj {
			return di < dj
		}
		return rows[i].SKU < rows[j].SKU
	})

	report := &dto.LowStockAlertResponse{Products: make([]dto.LowStockProductDTO, 0, len(rows))}
	for _, r := range rows {
		severity := SeverityWarning
		if r.StockCurrent == 0 {
			severity = SeverityCritical
			report.CriticalCount++
		} else {
			report.WarningCount++
		}
		report.Products = append(report.Products, dto.LowStockProductDTO{
			ID:           r.ProductID,
			SKU:          r.SKU,
			Name:         r.Name,
			StockCurrent: r.StockCurrent,
			StockMin:     r.StockMin,
			StockDeficit: r.StockMin - r.StockCurrent,
			CategoryName: r.CategoryName,
			SupplierName: r.SupplierName,
			Severity:     severity,
		})
	}
	report.TotalProducts = len(report.Products)
	return report, nil
}

// InventoryStats agrega valor y conteos de stock sobre productos activos y
// los movimientos de hoy, de la semana (desde el lunes) y del mes.
//
// Cuatro consultas en paralelo: resumen de productos y un CountSince por ventana.
func (uc *StockReportUseCase) InventoryStats(ctx context.Context) (*dto.InventoryStatsResponse, error) {
	w := inventory.WindowsAt(uc.now())

	type summaryResult struct {
		summary repository.StockSummary
		err     error
	}
	type countResult struct {
		n   int
		err error
	}

	summaryCh := make(chan summaryResult, 1)
	todayCh := make(chan countResult, 1)
	weekCh := make(chan countResult, 1)
	monthCh := make(chan countResult, 1)

	go func() {
		s, err := uc.productRepo.GetStockSummary(ctx)
		summaryCh <- summaryResult{s, err}
	}()
	count := func(since time.Time, ch chan<- countResult) {
		n, err := uc.movRepo.CountSince(ctx, since)
		ch <- countResult{n, err}
	}
	go count(w.TodayStart, todayCh)
	go count(w.WeekStart, weekCh)
	go count(w.MonthStart, monthCh)

	summary := <-summaryCh
	today := <-todayCh
	week := <-weekCh
	month := <-monthCh

	if summary.err != nil {
		return nil, fmt.Errorf("stats: resumen de productos: %w", summary.err)
	}
	if today.err != nil {
		return nil, fmt.Errorf("stats: movimientos de hoy: %w", today.err)
	}
	if week.err != nil {
		return nil, fmt.Errorf("stats: movimientos de la semana: %w", week.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("stats: movimientos del mes: %w", month.err)
	}

	return &dto.InventoryStatsResponse{
		TotalProducts:      summary.summary.TotalProducts,
		TotalStockValue:    summary.summary.TotalStockValue.Round(2),
		LowStockCount:      summary.summary.LowStockCount,
		OutOfStockCount:    summary.summary.OutOfStockCount,
		MovementsToday:     today.n,
		MovementsThisWeek:  week.n,
		MovementsThisMonth: month.n,
	}, nil
}

// StockAvailable indica si el producto tiene al menos quantity unidades.
// Un producto inexistente no está disponible (false, sin error).
func (uc *StockReportUseCase) StockAvailable(ctx context.Context, productID string, quantity int64) (bool, error) {
	if quantity <= 0 {
		return false, domain.ErrInvalidQuantity
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return false, err
	}
	if product == nil {
		return false, nil
	}
	return product.StockCurrent >= quantity, nil
}

// LowStockReportPDF genera el reporte de stock bajo en PDF.
func (uc *StockReportUseCase) LowStockReportPDF(ctx context.Context) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("pdf: generador no configurado")
	}
	report, err := uc.LowStockReport(ctx)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateLowStockReport(report, "Reporte de stock bajo - "+monthLabel(uc.now()))
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
