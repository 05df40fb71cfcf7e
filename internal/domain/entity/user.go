package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin           = "admin"
	RoleSeller          = "seller"
	RoleWarehouseKeeper = "warehouse_keeper"
)

// User representa un usuario del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	FullName     string
	Role         string // admin, seller, warehouse_keeper
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidRole indica si role es uno de los roles soportados.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSeller, RoleWarehouseKeeper:
		return true
	}
	return false
}
