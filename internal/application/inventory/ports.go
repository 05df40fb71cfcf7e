package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger-api/internal/application/dto"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: si fn devuelve error no queda nada escrito.
// Los conflictos de concurrencia del almacenamiento se devuelven como domain.ErrConflictRetryable.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// LowStockPDFGenerator genera el PDF del reporte de stock bajo (adaptador en infrastructure/pdf).
type LowStockPDFGenerator interface {
	GenerateLowStockReport(report *dto.LowStockAlertResponse, title string) ([]byte, error)
}
