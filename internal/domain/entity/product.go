package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. StockCurrent solo cambia mediante movimientos de inventario.
type Product struct {
	ID           string
	SKU          string // único, en mayúsculas
	Name         string
	Description  string
	CategoryID   string
	SupplierID   string
	StockCurrent int64
	StockMin     int64
	Cost         decimal.Decimal
	Price        decimal.Decimal
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLowStock indica si el stock actual está por debajo del mínimo.
func (p *Product) IsLowStock() bool {
	return p.StockCurrent < p.StockMin
}

// ProfitMargin devuelve (precio - costo) / costo * 100 redondeado a 2 decimales; 0 si el costo es 0.
func (p *Product) ProfitMargin() decimal.Decimal {
	if !p.Cost.IsPositive() {
		return decimal.Zero
	}
	return p.Price.Sub(p.Cost).Div(p.Cost).Mul(decimal.NewFromInt(100)).Round(2)
}

// StockValue es stock actual por costo unitario.
func (p *Product) StockValue() decimal.Decimal {
	return p.Cost.Mul(decimal.NewFromInt(p.StockCurrent))
}
