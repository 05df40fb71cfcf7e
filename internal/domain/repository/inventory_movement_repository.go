package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
)

// MovementFilter filtros opcionales del kardex.
type MovementFilter struct {
	ProductID    string
	MovementType string
	Reason       string
	UserID       string
	Reference    string // substring sin distinguir mayúsculas
	DateFrom     *time.Time
	DateTo       *time.Time
}

// InventoryMovementRepository define el puerto de persistencia para movimientos de inventario.
// El kardex es de solo inserción: no hay Update ni Delete.
// Las lecturas ordenan por created_at DESC, id DESC y resuelven SKU, nombre de producto y nombre de usuario.
type InventoryMovementRepository interface {
	// Create asigna ID y CreatedAt.
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	GetByID(ctx context.Context, id int64) (*entity.InventoryMovement, error)
	List(ctx context.Context, filter MovementFilter, limit, offset int) ([]*entity.InventoryMovement, int, error)
	ListByProduct(ctx context.Context, productID string, limit int) ([]*entity.InventoryMovement, error)
	// LastForProduct devuelve el movimiento más reciente del producto o nil.
	LastForProduct(ctx context.Context, productID string) (*entity.InventoryMovement, error)
	CountByProduct(ctx context.Context, productID string) (int, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
}
