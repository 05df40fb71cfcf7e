package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInactiveUser      = errors.New("usuario inactivo")
	ErrHasDependents     = errors.New("el recurso tiene registros asociados")
	ErrInvalidQuantity   = errors.New("la cantidad debe ser mayor a cero")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrNoOpAdjustment    = errors.New("el nuevo stock es igual al actual")
	ErrConflictRetryable = errors.New("conflicto de concurrencia, reintente la operación")
)

// InsufficientStockError detalla el rechazo de una salida o ajuste que dejaría el stock negativo.
type InsufficientStockError struct {
	Current   int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Stock insuficiente. Stock actual: %d, cantidad solicitada: %d", e.Current, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// BatchItemError indica el ítem de un lote que detuvo el procesamiento.
type BatchItemError struct {
	Index     int
	ProductID string
	Err       error
}

func (e *BatchItemError) Error() string {
	return fmt.Sprintf("ítem %d (producto %s): %v", e.Index+1, e.ProductID, e.Err)
}

func (e *BatchItemError) Unwrap() error { return e.Err }
