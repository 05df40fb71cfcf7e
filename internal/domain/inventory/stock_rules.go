package inventory

import (
	"math"

	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
)

// ApplyMovement calcula el stock resultante de aplicar un movimiento sobre stockBefore.
// entry suma, exit y adjustment restan y transfer no altera el stock neto.
// Devuelve *domain.InsufficientStockError si el resultado sería negativo y
// domain.ErrInvalidQuantity si una entrada desborda int64.
func ApplyMovement(movementType string, stockBefore, quantity int64) (int64, error) {
	if quantity <= 0 {
		return 0, domain.ErrInvalidQuantity
	}
	switch movementType {
	case entity.MovementTypeEntry:
		if quantity > math.MaxInt64-stockBefore {
			return 0, domain.ErrInvalidQuantity
		}
		return stockBefore + quantity, nil
	case entity.MovementTypeExit, entity.MovementTypeAdjustment:
		if stockBefore < quantity {
			return 0, &domain.InsufficientStockError{Current: stockBefore, Requested: quantity}
		}
		return stockBefore - quantity, nil
	case entity.MovementTypeTransfer:
		// TODO: descontar de la bodega origen cuando exista el modelo multi-bodega.
		return stockBefore, nil
	default:
		return 0, domain.ErrInvalidInput
	}
}

// AdjustmentFor clasifica un ajuste a un stock objetivo: subir es una entrada y bajar es un ajuste.
// Devuelve domain.ErrNoOpAdjustment si el objetivo coincide con el stock actual.
func AdjustmentFor(stockBefore, newStock int64) (movementType string, quantity int64, err error) {
	if newStock < 0 {
		return "", 0, domain.ErrInvalidInput
	}
	switch {
	case newStock == stockBefore:
		return "", 0, domain.ErrNoOpAdjustment
	case newStock > stockBefore:
		return entity.MovementTypeEntry, newStock - stockBefore, nil
	default:
		return entity.MovementTypeAdjustment, stockBefore - newStock, nil
	}
}

// LedgerConsistent indica si el stock almacenado coincide con el último movimiento del kardex.
// Sin movimientos, cualquier stock es consistente.
func LedgerConsistent(stockCurrent int64, last *entity.InventoryMovement) bool {
	if last == nil {
		return true
	}
	return last.StockAfter == stockCurrent
}
