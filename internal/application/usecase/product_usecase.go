package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger-api/internal/application/dto"
	"github.com/jhoicas/inventario-ledger-api/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/repository"
)

const lowStockListLimit = 50

var errProductNotFound = fmt.Errorf("%w: producto no encontrado", domain.ErrNotFound)

// ProductUseCase casos de uso CRUD para productos. El stock se maneja solo vía movimientos.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
	txRunner     inventory.TxRunner
	movements    *inventory.RegisterMovementUseCase
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	txRunner inventory.TxRunner,
	movements *inventory.RegisterMovementUseCase,
) *ProductUseCase {
	return &ProductUseCase{
		repo:         repo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		txRunner:     txRunner,
		movements:    movements,
	}
}

// Create crea un producto. Un stock inicial > 0 se registra como movimiento initial_stock en la misma transacción.
func (uc *ProductUseCase) Create(ctx context.Context, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := normalizeSKU(in.SKU)
	name := cleanText(in.Name)
	if !lengthBetween(sku, 1, 100) || !lengthBetween(name, 2, 255) || !lengthBetween(in.Description, 0, 1000) {
		return nil, domain.ErrInvalidInput
	}
	if in.StockCurrent < 0 || in.StockMin < 0 || in.Cost.IsNegative() || in.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: ya existe un producto con el SKU: %s", domain.ErrDuplicate, sku)
	}
	if err := uc.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if err := uc.checkSupplier(ctx, in.SupplierID, true); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         sku,
		Name:        name,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		SupplierID:  in.SupplierID,
		StockMin:    in.StockMin,
		Cost:        in.Cost,
		Price:       in.Price,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		if in.StockCurrent == 0 {
			return nil
		}
		_, err := uc.movements.RecordInTx(ctx, movRepo, productRepo, inventory.MovementInput{
			ProductID: product.ID,
			Type:      entity.MovementTypeEntry,
			Reason:    entity.ReasonInitialStock,
			Quantity:  in.StockCurrent,
			UserID:    userID,
			Notes:     "Stock inicial",
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	product.StockCurrent = in.StockCurrent
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errProductNotFound
	}
	return toProductResponse(product), nil
}

// GetBySKU obtiene un producto por SKU (sin distinguir mayúsculas).
func (uc *ProductUseCase) GetBySKU(ctx context.Context, sku string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetBySKU(ctx, normalizeSKU(sku))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errProductNotFound
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar el stock (se maneja vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errProductNotFound
	}
	if in.SKU != nil {
		sku := normalizeSKU(*in.SKU)
		if !lengthBetween(sku, 1, 100) {
			return nil, domain.ErrInvalidInput
		}
		if sku != product.SKU {
			other, err := uc.repo.GetBySKU(ctx, sku)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, fmt.Errorf("%w: ya existe un producto con el SKU: %s", domain.ErrDuplicate, sku)
			}
		}
		product.SKU = sku
	}
	if in.Name != nil {
		name := cleanText(*in.Name)
		if !lengthBetween(name, 2, 255) {
			return nil, domain.ErrInvalidInput
		}
		product.Name = name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.CategoryID != nil {
		if err := uc.checkCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *in.CategoryID
	}
	if in.SupplierID != nil {
		if err := uc.checkSupplier(ctx, *in.SupplierID, false); err != nil {
			return nil, err
		}
		product.SupplierID = *in.SupplierID
	}
	if in.StockMin != nil {
		if *in.StockMin < 0 {
			return nil, domain.ErrInvalidInput
		}
		product.StockMin = *in.StockMin
	}
	if in.Cost != nil {
		if in.Cost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Cost = *in.Cost
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Price = *in.Price
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con filtros y paginación, ordenados por nombre.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductFilterRequest, page dto.PageRequest) (*dto.ProductListResponse, error) {
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return nil, domain.ErrInvalidInput
	}
	page.Normalize()
	filter := repository.ProductFilter{
		CategoryID:   in.CategoryID,
		SupplierID:   in.SupplierID,
		IsActive:     in.IsActive,
		LowStockOnly: in.LowStockOnly,
		Search:       cleanText(in.Search),
		MinPrice:     in.MinPrice,
		MaxPrice:     in.MaxPrice,
	}
	list, total, err := uc.repo.List(ctx, filter, page.PageSize, page.Offset())
	if err != nil {
		return nil, err
	}
	return &dto.ProductListResponse{
		Items:        toProductResponses(list),
		PageResponse: dto.NewPageResponse(page, total),
	}, nil
}

// LowStock lista productos activos bajo el mínimo (máximo 50).
func (uc *ProductUseCase) LowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	active := true
	list, _, err := uc.repo.List(ctx, repository.ProductFilter{IsActive: &active, LowStockOnly: true}, lowStockListLimit, 0)
	if err != nil {
		return nil, err
	}
	return toProductResponses(list), nil
}

// AdjustStock aplica un delta de stock como movimiento de corrección y devuelve el producto actualizado.
func (uc *ProductUseCase) AdjustStock(ctx context.Context, id, userID string, in dto.UpdateStockRequest) (*dto.ProductResponse, error) {
	if _, err := uc.movements.CorrectStock(ctx, id, in.Quantity, userID, in.Notes); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

// Delete desactiva el producto (soft delete); sus movimientos siguen referenciándolo.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.SoftDelete(ctx, id); err != nil {
		if errorsIsNotFound(err) {
			return errProductNotFound
		}
		return err
	}
	return nil
}

func (uc *ProductUseCase) checkCategory(ctx context.Context, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	category, err := uc.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("%w: la categoría especificada no existe", domain.ErrInvalidInput)
	}
	return nil
}

func (uc *ProductUseCase) checkSupplier(ctx context.Context, supplierID string, mustBeActive bool) error {
	if supplierID == "" {
		return nil
	}
	supplier, err := uc.supplierRepo.GetByID(ctx, supplierID)
	if err != nil {
		return err
	}
	if supplier == nil {
		return fmt.Errorf("%w: el proveedor especificado no existe", domain.ErrInvalidInput)
	}
	if mustBeActive && !supplier.IsActive {
		return fmt.Errorf("%w: el proveedor especificado está inactivo", domain.ErrInvalidInput)
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		CategoryID:   p.CategoryID,
		SupplierID:   p.SupplierID,
		StockCurrent: p.StockCurrent,
		StockMin:     p.StockMin,
		Cost:         p.Cost,
		Price:        p.Price,
		IsActive:     p.IsActive,
		IsLowStock:   p.IsLowStock(),
		ProfitMargin: p.ProfitMargin(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toProductResponses(list []*entity.Product) []dto.ProductResponse {
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return items
}

// ParsePrice interpreta un precio opcional de query string.
func ParsePrice(raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	return &d, nil
}
