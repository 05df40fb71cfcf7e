package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. StockCurrent inicial queda registrado como movimiento initial_stock.
type CreateProductRequest struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	CategoryID   string          `json:"category_id"`
	SupplierID   string          `json:"supplier_id"`
	StockCurrent int64           `json:"stock_current"`
	StockMin     int64           `json:"stock_min"`
	Cost         decimal.Decimal `json:"cost"`
	Price        decimal.Decimal `json:"price"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Stock).
type UpdateProductRequest struct {
	SKU         *string          `json:"sku"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	CategoryID  *string          `json:"category_id"`
	SupplierID  *string          `json:"supplier_id"`
	StockMin    *int64           `json:"stock_min"`
	Cost        *decimal.Decimal `json:"cost"`
	Price       *decimal.Decimal `json:"price"`
	IsActive    *bool            `json:"is_active"`
}

// ProductFilterRequest query params de GET /api/products.
type ProductFilterRequest struct {
	CategoryID   string           `query:"category_id"`
	SupplierID   string           `query:"supplier_id"`
	IsActive     *bool            `query:"is_active"`
	LowStockOnly bool             `query:"low_stock_only"`
	Search       string           `query:"search"`
	MinPrice     *decimal.Decimal `query:"-"`
	MaxPrice     *decimal.Decimal `query:"-"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	CategoryID   string          `json:"category_id"`
	SupplierID   string          `json:"supplier_id"`
	StockCurrent int64           `json:"stock_current"`
	StockMin     int64           `json:"stock_min"`
	Cost         decimal.Decimal `json:"cost"`
	Price        decimal.Decimal `json:"price"`
	IsActive     bool            `json:"is_active"`
	IsLowStock   bool            `json:"is_low_stock"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	PageResponse
}
