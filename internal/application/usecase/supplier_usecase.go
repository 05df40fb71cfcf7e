package usecase

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger-api/internal/application/dto"
	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/repository"
)

const supplierSearchLimit = 20

var errSupplierNotFound = fmt.Errorf("%w: proveedor no encontrado", domain.ErrNotFound)

// SupplierUseCase casos de uso de proveedores. El borrado es lógico (is_active=false).
type SupplierUseCase struct {
	repo        repository.SupplierRepository
	productRepo repository.ProductRepository
}

func NewSupplierUseCase(repo repository.SupplierRepository, productRepo repository.ProductRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo, productRepo: productRepo}
}

func (uc *SupplierUseCase) Create(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	name := cleanText(in.Name)
	if !lengthBetween(name, 2, 255) {
		return nil, domain.ErrInvalidInput
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	s := &entity.Supplier{
		ID:            uuid.New().String(),
		Name:          name,
		ContactPerson: cleanText(in.ContactPerson),
		Email:         email,
		Phone:         strings.TrimSpace(in.Phone),
		Address:       strings.TrimSpace(in.Address),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s, nil), nil
}

// GetByID obtiene un proveedor con la cantidad de productos activos asociados.
func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errSupplierNotFound
	}
	n, err := uc.productRepo.CountBySupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSupplierResponse(s, &n), nil
}

// List lista proveedores por nombre. withCount agrega la cantidad de productos de cada uno.
func (uc *SupplierUseCase) List(ctx context.Context, activeOnly, withCount bool, page dto.PageRequest) ([]dto.SupplierResponse, error) {
	page.Normalize()
	list, err := uc.repo.List(ctx, activeOnly, page.PageSize, page.Offset())
	if err != nil {
		return nil, err
	}
	if !withCount {
		return toSupplierResponses(list), nil
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		n, err := uc.productRepo.CountBySupplier(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *toSupplierResponse(s, &n))
	}
	return out, nil
}

// Search busca proveedores por nombre (coincidencia parcial, sin distinguir mayúsculas).
func (uc *SupplierUseCase) Search(ctx context.Context, query string) ([]dto.SupplierResponse, error) {
	query = cleanText(query)
	if query == "" {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.repo.SearchByName(ctx, query, supplierSearchLimit)
	if err != nil {
		return nil, err
	}
	return toSupplierResponses(list), nil
}

func (uc *SupplierUseCase) Update(ctx context.Context, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errSupplierNotFound
	}
	if in.Name != nil {
		name := cleanText(*in.Name)
		if !lengthBetween(name, 2, 255) {
			return nil, domain.ErrInvalidInput
		}
		s.Name = name
	}
	if in.ContactPerson != nil {
		s.ContactPerson = cleanText(*in.ContactPerson)
	}
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		s.Email = email
	}
	if in.Phone != nil {
		s.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		s.Address = strings.TrimSpace(*in.Address)
	}
	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}
	s.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s, nil), nil
}

// Delete desactiva el proveedor; los productos que lo referencian se conservan.
func (uc *SupplierUseCase) Delete(ctx context.Context, id string) error {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s == nil {
		return errSupplierNotFound
	}
	s.IsActive = false
	s.UpdatedAt = time.Now()
	return uc.repo.Update(ctx, s)
}

// normalizeEmail acepta vacío; si viene, debe ser una dirección válida.
func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	return strings.ToLower(addr.Address), nil
}

func toSupplierResponse(s *entity.Supplier, count *int) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
		IsActive:      s.IsActive,
		ProductCount:  count,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func toSupplierResponses(list []*entity.Supplier) []dto.SupplierResponse {
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *toSupplierResponse(s, nil))
	}
	return out
}
