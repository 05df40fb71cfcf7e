package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger-api/pkg/logger"
)

// RegisterMovementUseCase registra movimientos de inventario de forma transaccional
// (entry, exit, adjustment, transfer) con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
// Cada movimiento actualiza products.stock_current y agrega una fila al kardex en la misma transacción.
type RegisterMovementUseCase struct {
	txRunner   TxRunner
	log        *logger.Logger
	maxRetries int
	now        func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso.
// maxRetries es el número de reintentos internos ante domain.ErrConflictRetryable.
func NewRegisterMovementUseCase(txRunner TxRunner, log *logger.Logger, maxRetries int) *RegisterMovementUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RegisterMovementUseCase{
		txRunner:   txRunner,
		log:        log.Component("inventory"),
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

// MovementInput entrada para registrar un movimiento de inventario.
type MovementInput struct {
	ProductID string
	Type      string
	Reason    string
	Quantity  int64
	UserID    string
	Reference string
	Notes     string
}

// AdjustInput entrada para ajustar el stock a un valor objetivo.
type AdjustInput struct {
	ProductID string
	NewStock  int64
	Reason    string // por defecto physical_count
	Notes     string
	UserID    string
}

// BatchItem un producto dentro de una entrada masiva.
type BatchItem struct {
	ProductID string
	Quantity  int64
	Reference string
	Notes     string
}

// BatchEntryInput entrada masiva. Reference se usa en los ítems que no traen la suya.
// Atomic=true aplica todo el lote en una sola transacción; por defecto cada ítem va en la suya
// y el lote se detiene en el primer error dejando confirmados los anteriores.
type BatchEntryInput struct {
	Items     []BatchItem
	Reference string
	UserID    string
	Atomic    bool
}

// RecordMovement inicia una transacción, bloquea la fila del producto (SELECT FOR UPDATE),
// calcula el nuevo stock según el tipo y guarda producto y movimiento. Commit o Rollback.
func (uc *RegisterMovementUseCase) RecordMovement(ctx context.Context, input MovementInput) (*entity.InventoryMovement, error) {
	if err := validateMovement(input); err != nil {
		return nil, err
	}

	var mov *entity.InventoryMovement
	err := uc.withRetry(ctx, "record_movement", input.ProductID, func() error {
		return uc.txRunner.Run(ctx, func(
			movRepo repository.InventoryMovementRepository,
			productRepo repository.ProductRepository,
		) error {
			m, err := uc.RecordInTx(ctx, movRepo, productRepo, input)
			if err != nil {
				return err
			}
			mov = m
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// AddStock registra una entrada; motivo por defecto purchase.
func (uc *RegisterMovementUseCase) AddStock(ctx context.Context, input MovementInput) (*entity.InventoryMovement, error) {
	input.Type = entity.MovementTypeEntry
	if input.Reason == "" {
		input.Reason = entity.ReasonPurchase
	}
	return uc.RecordMovement(ctx, input)
}

// RemoveStock registra una salida; motivo por defecto sale.
func (uc *RegisterMovementUseCase) RemoveStock(ctx context.Context, input MovementInput) (*entity.InventoryMovement, error) {
	input.Type = entity.MovementTypeExit
	if input.Reason == "" {
		input.Reason = entity.ReasonSale
	}
	return uc.RecordMovement(ctx, input)
}

// CorrectStock aplica un delta con signo como corrección: positivo es entrada y negativo salida.
func (uc *RegisterMovementUseCase) CorrectStock(ctx context.Context, productID string, delta int64, userID, notes string) (*entity.InventoryMovement, error) {
	input := MovementInput{
		ProductID: productID,
		Reason:    entity.ReasonCorrection,
		UserID:    userID,
		Notes:     notes,
	}
	switch {
	case delta > 0:
		input.Type = entity.MovementTypeEntry
		input.Quantity = delta
	case delta < 0:
		input.Type = entity.MovementTypeExit
		input.Quantity = -delta
	default:
		return nil, domain.ErrInvalidQuantity
	}
	return uc.RecordMovement(ctx, input)
}

// AdjustTo lleva el stock del producto a input.NewStock. Subir se registra como entry y bajar como adjustment,
// ambos por la diferencia. Falla con domain.ErrNoOpAdjustment si el stock ya es el objetivo.
func (uc *RegisterMovementUseCase) AdjustTo(ctx context.Context, input AdjustInput) (*entity.InventoryMovement, error) {
	if input.ProductID == "" || input.NewStock < 0 {
		return nil, domain.ErrInvalidInput
	}
	if input.Reason == "" {
		input.Reason = entity.ReasonPhysicalCount
	}
	if !entity.ValidReason(input.Reason) {
		return nil, domain.ErrInvalidInput
	}

	var mov *entity.InventoryMovement
	err := uc.withRetry(ctx, "adjust_to", input.ProductID, func() error {
		return uc.txRunner.Run(ctx, func(
			movRepo repository.InventoryMovementRepository,
			productRepo repository.ProductRepository,
		) error {
			product, err := lockProduct(ctx, productRepo, input.ProductID)
			if err != nil {
				return err
			}
			movementType, quantity, err := inventory.AdjustmentFor(product.StockCurrent, input.NewStock)
			if err != nil {
				return err
			}
			notes := input.Notes
			if notes == "" {
				notes = fmt.Sprintf("Ajuste de stock: %d → %d", product.StockCurrent, input.NewStock)
			}
			mov, err = uc.apply(ctx, movRepo, productRepo, product, MovementInput{
				ProductID: input.ProductID,
				Type:      movementType,
				Reason:    input.Reason,
				Quantity:  quantity,
				UserID:    input.UserID,
				Notes:     notes,
			})
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// BatchEntry registra entradas (motivo purchase) para varios productos en orden.
// Ante un error devuelve los movimientos ya confirmados y un *domain.BatchItemError con el ítem que falló;
// los ítems siguientes no se intentan. En modo Atomic no queda confirmado ningún movimiento.
func (uc *RegisterMovementUseCase) BatchEntry(ctx context.Context, input BatchEntryInput) ([]*entity.InventoryMovement, error) {
	if len(input.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if input.Atomic {
		return uc.batchAtomic(ctx, input)
	}

	created := make([]*entity.InventoryMovement, 0, len(input.Items))
	for i, item := range input.Items {
		mov, err := uc.RecordMovement(ctx, batchMovement(input, item))
		if err != nil {
			uc.log.Warn().Err(err).Int("item", i).Int("committed", len(created)).Msg("entrada masiva detenida")
			return created, &domain.BatchItemError{Index: i, ProductID: item.ProductID, Err: err}
		}
		created = append(created, mov)
	}
	return created, nil
}

func (uc *RegisterMovementUseCase) batchAtomic(ctx context.Context, input BatchEntryInput) ([]*entity.InventoryMovement, error) {
	for i, item := range input.Items {
		if err := validateMovement(batchMovement(input, item)); err != nil {
			return nil, &domain.BatchItemError{Index: i, ProductID: item.ProductID, Err: err}
		}
	}

	var created []*entity.InventoryMovement
	err := uc.withRetry(ctx, "batch_entry", "", func() error {
		created = make([]*entity.InventoryMovement, 0, len(input.Items))
		return uc.txRunner.Run(ctx, func(
			movRepo repository.InventoryMovementRepository,
			productRepo repository.ProductRepository,
		) error {
			for i, item := range input.Items {
				mov, err := uc.RecordInTx(ctx, movRepo, productRepo, batchMovement(input, item))
				if err != nil {
					return &domain.BatchItemError{Index: i, ProductID: item.ProductID, Err: err}
				}
				created = append(created, mov)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RecordInTx aplica un movimiento usando los repositorios proporcionados (misma transacción del caller).
// Lo usan RecordMovement y otros casos de uso que ya tienen una transacción abierta.
func (uc *RegisterMovementUseCase) RecordInTx(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	input MovementInput,
) (*entity.InventoryMovement, error) {
	if err := validateMovement(input); err != nil {
		return nil, err
	}
	product, err := lockProduct(ctx, productRepo, input.ProductID)
	if err != nil {
		return nil, err
	}
	return uc.apply(ctx, movRepo, productRepo, product, input)
}

// apply calcula stock_after sobre el producto ya bloqueado, actualiza el stock y agrega el movimiento.
func (uc *RegisterMovementUseCase) apply(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	product *entity.Product,
	input MovementInput,
) (*entity.InventoryMovement, error) {
	stockAfter, err := inventory.ApplyMovement(input.Type, product.StockCurrent, input.Quantity)
	if err != nil {
		return nil, err
	}
	if stockAfter != product.StockCurrent {
		if err := productRepo.UpdateStock(ctx, product.ID, stockAfter); err != nil {
			return nil, err
		}
	}
	mov := &entity.InventoryMovement{
		ProductID:    product.ID,
		MovementType: input.Type,
		Reason:       input.Reason,
		Quantity:     input.Quantity,
		StockBefore:  product.StockCurrent,
		StockAfter:   stockAfter,
		UserID:       input.UserID,
		Reference:    input.Reference,
		Notes:        input.Notes,
		CreatedAt:    uc.now(),
		ProductSKU:   product.SKU,
		ProductName:  product.Name,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	product.StockCurrent = stockAfter
	return mov, nil
}

// withRetry repite fn mientras falle con domain.ErrConflictRetryable, hasta maxRetries veces.
func (uc *RegisterMovementUseCase) withRetry(ctx context.Context, op, productID string, fn func() error) error {
	err := fn()
	for attempt := 1; attempt <= uc.maxRetries && errors.Is(err, domain.ErrConflictRetryable); attempt++ {
		if ctx.Err() != nil {
			return err
		}
		uc.log.Warn().
			Str("op", op).
			Str("product_id", productID).
			Int("attempt", attempt).
			Msg("conflicto de concurrencia, reintentando con lectura fresca")
		err = fn()
	}
	return err
}

func lockProduct(ctx context.Context, productRepo repository.ProductRepository, productID string) (*entity.Product, error) {
	product, err := productRepo.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// maxReferenceLength coincide con inventory_movements.reference VARCHAR(100).
const maxReferenceLength = 100

func validateMovement(input MovementInput) error {
	if input.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if input.ProductID == "" || !entity.ValidMovementType(input.Type) || !entity.ValidReason(input.Reason) {
		return domain.ErrInvalidInput
	}
	if utf8.RuneCountInString(input.Reference) > maxReferenceLength {
		return fmt.Errorf("%w: la referencia admite hasta %d caracteres", domain.ErrInvalidInput, maxReferenceLength)
	}
	return nil
}

func batchMovement(input BatchEntryInput, item BatchItem) MovementInput {
	reference := item.Reference
	if reference == "" {
		reference = input.Reference
	}
	return MovementInput{
		ProductID: item.ProductID,
		Type:      entity.MovementTypeEntry,
		Reason:    entity.ReasonPurchase,
		Quantity:  item.Quantity,
		UserID:    input.UserID,
		Reference: reference,
		Notes:     item.Notes,
	}
}
