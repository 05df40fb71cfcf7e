package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	ProductID    string `json:"product_id"`
	MovementType string `json:"movement_type"`
	Reason       string `json:"reason"`
	Quantity     int64  `json:"quantity"`
	Reference    string `json:"reference,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// AdjustStockRequest body para POST /api/inventory/adjust.
type AdjustStockRequest struct {
	ProductID string `json:"product_id"`
	NewStock  int64  `json:"new_stock"`
	Reason    string `json:"reason,omitempty"` // por defecto physical_count
	Notes     string `json:"notes,omitempty"`
}

// BatchEntryItem un producto dentro de una entrada masiva.
type BatchEntryItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Reference string `json:"reference,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// BatchEntryRequest body para POST /api/inventory/batch-entry.
// Atomic=true aplica todo el lote en una sola transacción.
type BatchEntryRequest struct {
	Items     []BatchEntryItem `json:"items"`
	Reference string           `json:"reference,omitempty"`
	Atomic    bool             `json:"atomic,omitempty"`
}

// UpdateStockRequest body para PATCH /api/products/:id/stock. Quantity es un delta con signo.
type UpdateStockRequest struct {
	Quantity int64  `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// ProductRef identidad mínima de producto en un movimiento.
type ProductRef struct {
	ID   string `json:"id"`
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// UserRef identidad mínima de usuario en un movimiento.
type UserRef struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// MovementResponse salida de un movimiento del kardex.
type MovementResponse struct {
	ID           int64       `json:"id"`
	ProductID    string      `json:"product_id"`
	MovementType string      `json:"movement_type"`
	Reason       string      `json:"reason"`
	Quantity     int64       `json:"quantity"`
	StockBefore  int64       `json:"stock_before"`
	StockAfter   int64       `json:"stock_after"`
	UserID       *string     `json:"user_id"`
	Reference    *string     `json:"reference"`
	Notes        *string     `json:"notes"`
	CreatedAt    time.Time   `json:"created_at"`
	Product      *ProductRef `json:"product,omitempty"`
	User         *UserRef    `json:"user,omitempty"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	PageResponse
}

// BatchEntryResponse movimientos creados por una entrada masiva.
type BatchEntryResponse struct {
	Items []MovementResponse `json:"items"`
	Count int                `json:"count"`
}

// BatchEntryErrorResponse error de lote: el ítem que falló y los movimientos que sí quedaron confirmados.
type BatchEntryErrorResponse struct {
	ErrorResponse
	FailedIndex int                `json:"failed_index"`
	Committed   []MovementResponse `json:"committed"`
}

// LowStockProductDTO producto bajo el mínimo.
type LowStockProductDTO struct {
	ID           string `json:"id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	StockCurrent int64  `json:"stock_current"`
	StockMin     int64  `json:"stock_min"`
	StockDeficit int64  `json:"stock_deficit"`
	CategoryName string `json:"category_name"`
	SupplierName string `json:"supplier_name"`
	Severity     string `json:"severity"` // critical | warning
}

// LowStockAlertResponse reporte de stock bajo.
type LowStockAlertResponse struct {
	TotalProducts int                  `json:"total_products"`
	CriticalCount int                  `json:"critical_count"`
	WarningCount  int                  `json:"warning_count"`
	Products      []LowStockProductDTO `json:"products"`
}

// InventoryStatsResponse estadísticas generales del inventario.
type InventoryStatsResponse struct {
	TotalProducts      int             `json:"total_products"`
	TotalStockValue    decimal.Decimal `json:"total_stock_value"`
	LowStockCount      int             `json:"low_stock_count"`
	OutOfStockCount    int             `json:"out_of_stock_count"`
	MovementsToday     int             `json:"movements_today"`
	MovementsThisWeek  int             `json:"movements_this_week"`
	MovementsThisMonth int             `json:"movements_this_month"`
}

// StockCheckResponse salida de GET /api/inventory/check-stock/:product_id.
type StockCheckResponse struct {
	ProductID         string `json:"product_id"`
	RequestedQuantity int64  `json:"requested_quantity"`
	Available         bool   `json:"available"`
}

// ReconciliationResponse compara el stock almacenado con el último movimiento del kardex.
type ReconciliationResponse struct {
	ProductID     string `json:"product_id"`
	StockCurrent  int64  `json:"stock_current"`
	LedgerStock   *int64 `json:"ledger_stock"`
	MovementCount int    `json:"movement_count"`
	Consistent    bool   `json:"consistent"`
}

// ToMovementResponse convierte un movimiento del dominio a su DTO.
func ToMovementResponse(m *entity.InventoryMovement) MovementResponse {
	resp := MovementResponse{
		ID:           m.ID,
		ProductID:    m.ProductID,
		MovementType: m.MovementType,
		Reason:       m.Reason,
		Quantity:     m.Quantity,
		StockBefore:  m.StockBefore,
		StockAfter:   m.StockAfter,
		UserID:       optional(m.UserID),
		Reference:    optional(m.Reference),
		Notes:        optional(m.Notes),
		CreatedAt:    m.CreatedAt,
	}
	if m.ProductSKU != "" || m.ProductName != "" {
		resp.Product = &ProductRef{ID: m.ProductID, SKU: m.ProductSKU, Name: m.ProductName}
	}
	if m.UserID != "" {
		resp.User = &UserRef{ID: m.UserID, FullName: m.UserFullName}
	}
	return resp
}

// ToMovementResponses convierte una lista; nunca devuelve nil.
func ToMovementResponses(movs []*entity.InventoryMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, ToMovementResponse(m))
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
