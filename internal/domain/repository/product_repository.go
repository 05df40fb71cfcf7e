package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
)

// ProductFilter filtros opcionales del listado de productos. Los punteros nil no filtran.
type ProductFilter struct {
	CategoryID   string
	SupplierID   string
	IsActive     *bool
	LowStockOnly bool
	Search       string // substring en nombre, SKU o descripción
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
}

// LowStockRow producto activo bajo el mínimo, con nombres de categoría y proveedor resueltos.
type LowStockRow struct {
	ProductID    string
	SKU          string
	Name         string
	StockCurrent int64
	StockMin     int64
	CategoryName string
	SupplierName string
}

// StockSummary agregados sobre productos activos.
type StockSummary struct {
	TotalProducts   int
	TotalStockValue decimal.Decimal // Σ stock_current × cost
	LowStockCount   int             // 0 < stock_current < stock_min
	OutOfStockCount int             // stock_current = 0
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID/GetBySKU devuelven nil, nil si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate lee el producto bloqueando la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// Update persiste datos de catálogo; nunca modifica stock_current.
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStock fija stock_current; rechaza valores negativos con domain.ErrInvalidInput.
	UpdateStock(ctx context.Context, id string, stock int64) error
	List(ctx context.Context, filter ProductFilter, limit, offset int) ([]*entity.Product, int, error)
	SoftDelete(ctx context.Context, id string) error
	CountByCategory(ctx context.Context, categoryID string) (int, error)
	CountBySupplier(ctx context.Context, supplierID string) (int, error)

	// ListLowStock productos activos con stock_current < stock_min, del más deficitario al menos.
	ListLowStock(ctx context.Context) ([]LowStockRow, error)
	GetStockSummary(ctx context.Context) (StockSummary, error)
}
