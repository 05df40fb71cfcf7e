package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeEntry      = "entry"      // entrada
	MovementTypeExit       = "exit"       // salida
	MovementTypeAdjustment = "adjustment" // ajuste (descuenta)
	MovementTypeTransfer   = "transfer"   // traslado, sin efecto neto mientras no haya multi-bodega
)

// Motivos de movimiento.
const (
	ReasonPurchase       = "purchase"
	ReasonCustomerReturn = "customer_return"
	ReasonInitialStock   = "initial_stock"
	ReasonSale           = "sale"
	ReasonSupplierReturn = "supplier_return"
	ReasonDamaged        = "damaged"
	ReasonExpired        = "expired"
	ReasonTheft          = "theft"
	ReasonPhysicalCount  = "physical_count"
	ReasonCorrection     = "correction"
	ReasonOther          = "other"
)

// InventoryMovement es una entrada inmutable del kardex.
// StockBefore/StockAfter son la foto del stock del producto antes y después del movimiento.
type InventoryMovement struct {
	ID           int64
	ProductID    string
	MovementType string
	Reason       string
	Quantity     int64 // siempre > 0, la dirección la da MovementType
	StockBefore  int64
	StockAfter   int64
	UserID       string // vacío si no hay usuario
	Reference    string
	Notes        string
	CreatedAt    time.Time

	// Identidad resuelta en lecturas.
	ProductSKU   string
	ProductName  string
	UserFullName string
}

// ValidMovementType indica si t es un tipo de movimiento soportado.
func ValidMovementType(t string) bool {
	switch t {
	case MovementTypeEntry, MovementTypeExit, MovementTypeAdjustment, MovementTypeTransfer:
		return true
	}
	return false
}

// ValidReason indica si r es un motivo soportado.
func ValidReason(r string) bool {
	switch r {
	case ReasonPurchase, ReasonCustomerReturn, ReasonInitialStock, ReasonSale, ReasonSupplierReturn,
		ReasonDamaged, ReasonExpired, ReasonTheft, ReasonPhysicalCount, ReasonCorrection, ReasonOther:
		return true
	}
	return false
}
