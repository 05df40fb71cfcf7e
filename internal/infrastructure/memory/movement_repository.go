package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/repository"
)

// MovementRepository implementa repository.InventoryMovementRepository en memoria (solo inserción).
type MovementRepository struct {
	store *Store
	tx    *state
}

// NewMovementRepository construye el repositorio fuera de transacción.
func NewMovementRepository(store *Store) *MovementRepository {
	return &MovementRepository{store: store}
}

func (r *MovementRepository) Create(_ context.Context, m *entity.InventoryMovement) error {
	if m.Quantity <= 0 || m.StockBefore < 0 || m.StockAfter < 0 {
		return domain.ErrInvalidInput
	}
	return r.store.view(r.tx, func(st *state) error {
		if _, ok := st.products[m.ProductID]; !ok {
			return domain.ErrNotFound
		}
		m.ID = st.nextMovID
		st.nextMovID++
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}
		stored := *m
		stored.ProductSKU, stored.ProductName, stored.UserFullName = "", "", ""
		st.movements = append(st.movements, stored)
		return nil
	})
}

func (r *MovementRepository) GetByID(_ context.Context, id int64) (*entity.InventoryMovement, error) {
	var out *entity.InventoryMovement
	err := r.store.view(r.tx, func(st *state) error {
		for _, m := range st.movements {
			if m.ID == id {
				out = resolve(st, m)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *MovementRepository) List(_ context.Context, f repository.MovementFilter, limit, offset int) ([]*entity.InventoryMovement, int, error) {
	var (
		out   []*entity.InventoryMovement
		total int
	)
	err := r.store.view(r.tx, func(st *state) error {
		matched := make([]entity.InventoryMovement, 0)
		for _, m := range st.movements {
			if matchMovement(m, f) {
				matched = append(matched, m)
			}
		}
		sortRecentFirst(matched)
		total = len(matched)
		for _, m := range page(matched, limit, offset) {
			out = append(out, resolve(st, m))
		}
		return nil
	})
	return out, total, err
}

func (r *MovementRepository) ListByProduct(_ context.Context, productID string, limit int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	err := r.store.view(r.tx, func(st *state) error {
		matched := make([]entity.InventoryMovement, 0)
		for _, m := range st.movements {
			if m.ProductID == productID {
				matched = append(matched, m)
			}
		}
		sortRecentFirst(matched)
		for _, m := range page(matched, limit, 0) {
			out = append(out, resolve(st, m))
		}
		return nil
	})
	return out, err
}

func (r *MovementRepository) LastForProduct(ctx context.Context, productID string) (*entity.InventoryMovement, error) {
	movs, err := r.ListByProduct(ctx, productID, 1)
	if err != nil || len(movs) == 0 {
		return nil, err
	}
	return movs[0], nil
}

func (r *MovementRepository) CountByProduct(_ context.Context, productID string) (int, error) {
	n := 0
	err := r.store.view(r.tx, func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID == productID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *MovementRepository) CountSince(_ context.Context, since time.Time) (int, error) {
	n := 0
	err := r.store.view(r.tx, func(st *state) error {
		for _, m := range st.movements {
			if !m.CreatedAt.Before(since) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func matchMovement(m entity.InventoryMovement, f repository.MovementFilter) bool {
	switch {
	case f.ProductID != "" && m.ProductID != f.ProductID:
		return false
	case f.MovementType != "" && m.MovementType != f.MovementType:
		return false
	case f.Reason != "" && m.Reason != f.Reason:
		return false
	case f.UserID != "" && m.UserID != f.UserID:
		return false
	case f.Reference != "" && !strings.Contains(strings.ToLower(m.Reference), strings.ToLower(f.Reference)):
		return false
	case f.DateFrom != nil && m.CreatedAt.Before(*f.DateFrom):
		return false
	case f.DateTo != nil && m.CreatedAt.After(*f.DateTo):
		return false
	}
	return true
}

// sortRecentFirst ordena por created_at DESC, id DESC.
func sortRecentFirst(movs []entity.InventoryMovement) {
	sort.Slice(movs, func(i, j int) bool {
		if !movs[i].CreatedAt.Equal(movs[j].CreatedAt) {
			return movs[i].CreatedAt.After(movs[j].CreatedAt)
		}
		return movs[i].ID > movs[j].ID
	})
}

func resolve(st *state, m entity.InventoryMovement) *entity.InventoryMovement {
	if p, ok := st.products[m.ProductID]; ok {
		m.ProductSKU = p.SKU
		m.ProductName = p.Name
	}
	if m.UserID != "" {
		m.UserFullName = st.users[m.UserID].FullName
	}
	return &m
}
