package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleTecnico   = "tecnico"   // laboratorio: pasa donaciones a stock, retira bolsas
	RoleRecepcion = "recepcion" // registro de donantes y donaciones
)

// Estados de la cuenta.
const (
	UserActive   = "active"
	UserInactive = "inactive"
)

// User cuenta del personal del banco de sangre.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidRole indica si role es uno de los roles conocidos.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleTecnico, RoleRecepcion:
		return true
	}
	return false
}
