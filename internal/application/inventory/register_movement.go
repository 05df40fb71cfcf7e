package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger-api/internal/application/dto"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso RecordMovement.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, userID string, in dto.RegisterMovementRequest) (*entity.InventoryMovement, error) {
	return uc.RecordMovement(ctx, MovementInput{
		ProductID: in.ProductID,
		Type:      in.MovementType,
		Reason:    in.Reason,
		Quantity:  in.Quantity,
		UserID:    userID,
		Reference: in.Reference,
		Notes:     in.Notes,
	})
}

// AdjustFromRequest adapta POST /api/inventory/adjust a AdjustTo.
func (uc *RegisterMovementUseCase) AdjustFromRequest(ctx context.Context, userID string, in dto.AdjustStockRequest) (*entity.InventoryMovement, error) {
	return uc.AdjustTo(ctx, AdjustInput{
		ProductID: in.ProductID,
		NewStock:  in.NewStock,
		Reason:    in.Reason,
		Notes:     in.Notes,
		UserID:    userID,
	})
}

// BatchEntryFromRequest adapta POST /api/inventory/batch-entry a BatchEntry.
func (uc *RegisterMovementUseCase) BatchEntryFromRequest(ctx context.Context, userID string, in dto.BatchEntryRequest) ([]*entity.InventoryMovement, error) {
	items := make([]BatchItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, BatchItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Reference: it.Reference,
			Notes:     it.Notes,
		})
	}
	return uc.BatchEntry(ctx, BatchEntryInput{
		Items:     items,
		Reference: in.Reference,
		UserID:    userID,
		Atomic:    in.Atomic,
	})
}
