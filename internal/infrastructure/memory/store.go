// Package memory implementa los repositorios y el TxRunner en memoria.
// Se usa en desarrollo (DB_DRIVER=memory) y en las pruebas de los casos de uso.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository           = (*ProductRepository)(nil)
	_ repository.InventoryMovementRepository = (*MovementRepository)(nil)
	_ repository.CategoryRepository          = (*CategoryRepository)(nil)
	_ repository.SupplierRepository          = (*SupplierRepository)(nil)
	_ repository.UserRepository              = (*UserRepository)(nil)
)

// Store guarda todo el estado bajo un único mutex. Las transacciones trabajan sobre una copia
// que reemplaza al estado solo si fn termina sin error, así que un movimiento fallido no deja rastro.
type Store struct {
	mu        sync.Mutex
	data      *state
	conflicts int // transacciones que fallarán con ErrConflictRetryable (pruebas)
}

type state struct {
	users      map[string]entity.User
	categories map[string]entity.Category
	suppliers  map[string]entity.Supplier
	products   map[string]entity.Product
	movements  []entity.InventoryMovement
	nextMovID  int64
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: &state{
		users:      map[string]entity.User{},
		categories: map[string]entity.Category{},
		suppliers:  map[string]entity.Supplier{},
		products:   map[string]entity.Product{},
		nextMovID:  1,
	}}
}

func (s *state) clone() *state {
	c := &state{
		users:      s.users,
		categories: s.categories,
		suppliers:  s.suppliers,
		products:   make(map[string]entity.Product, len(s.products)),
		movements:  s.movements[:len(s.movements):len(s.movements)],
		nextMovID:  s.nextMovID,
	}
	// Solo productos y kardex se escriben dentro de una transacción.
	for k, v := range s.products {
		c.products[k] = v
	}
	return c
}

// InjectConflicts hace que las próximas n transacciones fallen con domain.ErrConflictRetryable sin aplicar cambios.
func (s *Store) InjectConflicts(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts = n
}

// SeedAdmin crea un usuario admin activo si el email no existe.
func (s *Store) SeedAdmin(email, password, fullName string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.data.users {
		if u.Email == email {
			return nil
		}
	}
	now := time.Now()
	id := uuid.New().String()
	s.data.users[id] = entity.User{
		ID:           id,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         entity.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return nil
}

// view ejecuta fn sobre el estado de la transacción o, fuera de ella, sobre el estado confirmado con el mutex tomado.
func (s *Store) view(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// TxRunner ejecuta transacciones en memoria. El mutex del Store serializa todas las
// transacciones, lo que equivale a un bloqueo por producto más estricto.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el TxRunner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con repositorios atados a una copia del estado y la confirma si no hay error.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conflicts > 0 {
		s.conflicts--
		return domain.ErrConflictRetryable
	}

	staged := s.data.clone()
	if err := fn(&MovementRepository{store: s, tx: staged}, &ProductRepository{store: s, tx: staged}); err != nil {
		return err
	}
	s.data = staged
	return nil
}
