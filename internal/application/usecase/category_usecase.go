package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger-api/internal/application/dto"
	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/repository"
)

var errCategoryNotFound = fmt.Errorf("%w: categoría no encontrada", domain.ErrNotFound)

// CategoryUseCase casos de uso de categorías.
type CategoryUseCase struct {
	repo        repository.CategoryRepository
	productRepo repository.ProductRepository
}

func NewCategoryUseCase(repo repository.CategoryRepository, productRepo repository.ProductRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo, productRepo: productRepo}
}

func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	name := cleanText(in.Name)
	if !lengthBetween(name, 2, 100) {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: ya existe una categoría con el nombre: %s", domain.ErrDuplicate, name)
	}
	now := time.Now()
	c := &entity.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c, nil), nil
}

func (uc *CategoryUseCase) GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errCategoryNotFound
	}
	return toCategoryResponse(c, nil), nil
}

// List lista categorías por nombre. withCount agrega la cantidad de productos activos de cada una.
func (uc *CategoryUseCase) List(ctx context.Context, page dto.PageRequest, withCount bool) ([]dto.CategoryResponse, error) {
	page.Normalize()
	list, err := uc.repo.List(ctx, page.PageSize, page.Offset())
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		var count *int
		if withCount {
			n, err := uc.productRepo.CountByCategory(ctx, c.ID)
			if err != nil {
				return nil, err
			}
			count = &n
		}
		out = append(out, *toCategoryResponse(c, count))
	}
	return out, nil
}

func (uc *CategoryUseCase) Update(ctx context.Context, id string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errCategoryNotFound
	}
	name := cleanText(in.Name)
	if !lengthBetween(name, 2, 100) {
		return nil, domain.ErrInvalidInput
	}
	c.Name = name
	c.Description = in.Description
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c, nil), nil
}

// Delete elimina la categoría si ningún producto la referencia.
func (uc *CategoryUseCase) Delete(ctx context.Context, id string) error {
	n, err := uc.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: la categoría tiene %d producto(s) asociado(s)", domain.ErrHasDependents, n)
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		if errorsIsNotFound(err) {
			return errCategoryNotFound
		}
		return err
	}
	return nil
}

func toCategoryResponse(c *entity.Category, count *int) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		ProductCount: count,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
