package service

import (
	"errors"

	"github.com/google/uuid"

	"github.com/gestaozabele/coleta/internal/auth"
	"github.com/gestaozabele/coleta/internal/repo"
)

var (
	// ErrForbidden indica ausência de permissão.
	ErrForbidden = errors.New("acesso negado")
)

// StaffRoles podem administrar contas, lixeiras e caminhões.
var StaffRoles = []string{repo.RoleAdmin, repo.RoleOperator}

// ValidateCitizenAccess permite alterar o próprio perfil ou, para equipe, qualquer perfil.
func ValidateCitizenAccess(actor auth.Identity, target uuid.UUID) error {
	if actor.ID == target || actor.HasRole(StaffRoles...) {
		return nil
	}
	return ErrForbidden
}
