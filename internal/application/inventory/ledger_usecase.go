package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger-api/internal/application/dto"
	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/repository"
)

// Límites del historial por producto.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// LedgerUseCase consultas de solo lectura sobre el kardex.
type LedgerUseCase struct {
	movRepo     repository.InventoryMovementRepository
	productRepo repository.ProductRepository
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(movRepo repository.InventoryMovementRepository, productRepo repository.ProductRepository) *LedgerUseCase {
	return &LedgerUseCase{movRepo: movRepo, productRepo: productRepo}
}

// GetMovement obtiene un movimiento con producto y usuario resueltos.
func (uc *LedgerUseCase) GetMovement(ctx context.Context, id int64) (*dto.MovementResponse, error) {
	mov, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	resp := dto.ToMovementResponse(mov)
	return &resp, nil
}

// ListMovements lista movimientos filtrados, del más reciente al más antiguo.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter, page dto.PageRequest) (*dto.MovementListResponse, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	page.Normalize()
	movs, total, err := uc.movRepo.List(ctx, filter, page.PageSize, page.Offset())
	if err != nil {
		return nil, err
	}
	return &dto.MovementListResponse{
		Items:        dto.ToMovementResponses(movs),
		PageResponse: dto.NewPageResponse(page, total),
	}, nil
}

// ProductHistory devuelve los últimos limit movimientos del producto (50 por defecto, máximo 200).
func (uc *LedgerUseCase) ProductHistory(ctx context.Context, productID string, limit int) ([]dto.MovementResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	movs, err := uc.movRepo.ListByProduct(ctx, productID, clampHistoryLimit(limit))
	if err != nil {
		return nil, err
	}
	return dto.ToMovementResponses(movs), nil
}

// CountSince cuenta los movimientos con created_at >= since.
func (uc *LedgerUseCase) CountSince(ctx context.Context, since time.Time) (int, error) {
	return uc.movRepo.CountSince(ctx, since)
}

// Reconcile compara el stock almacenado del producto con el stock_after de su último movimiento.
func (uc *LedgerUseCase) Reconcile(ctx context.Context, productID string) (*dto.ReconciliationResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	last, err := uc.movRepo.LastForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	count, err := uc.movRepo.CountByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ReconciliationResponse{
		ProductID:     product.ID,
		StockCurrent:  product.StockCurrent,
		MovementCount: count,
		Consistent:    inventory.LedgerConsistent(product.StockCurrent, last),
	}
	if last != nil {
		ledgerStock := last.StockAfter
		resp.LedgerStock = &ledgerStock
	}
	return resp, nil
}

func clampHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}

func validateFilter(f repository.MovementFilter) error {
	if f.MovementType != "" && !entity.ValidMovementType(f.MovementType) {
		return domain.ErrInvalidInput
	}
	if f.Reason != "" && !entity.ValidReason(f.Reason) {
		return domain.ErrInvalidInput
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return domain.ErrInvalidInput
	}
	return nil
}
