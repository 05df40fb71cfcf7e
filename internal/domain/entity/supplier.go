package entity

import "time"

// Supplier representa un proveedor. Se desactiva en lugar de eliminarse.
type Supplier struct {
	ID            string
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
