package repo

import (
	"time"

	"github.com/google/uuid"
)

// Papéis aceitos em citizens.role.
const (
	RoleCitizen  = "citizen"
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// ValidRole indica se role é um dos papéis conhecidos.
func ValidRole(role string) bool {
	switch role {
	case RoleCitizen, RoleOperator, RoleAdmin:
		return true
	}
	return false
}

// Citizen representa a conta de um cidadão ou operador.
type Citizen struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        *string   `json:"phone"`
	Address      *string   `json:"address"`
	City         *string   `json:"city"`
	PostalCode   *string   `json:"postal_code"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateCitizenParams são os campos gravados no cadastro.
type CreateCitizenParams struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        *string
	Address      *string
	City         *string
	PostalCode   *string
	Latitude     *float64
	Longitude    *float64
}

// UpdateCitizenParams segue merge patch: nil mantém o valor atual.
type UpdateCitizenParams struct {
	FirstName  *string
	LastName   *string
	Phone      *string
	Address    *string
	City       *string
	PostalCode *string
	Latitude   *float64
	Longitude  *float64
}

// CitizenFilter restringe a listagem administrativa.
type CitizenFilter struct {
	Role     string
	IsActive *bool
}
