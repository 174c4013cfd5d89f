package util

import (
	"strings"

	"github.com/google/uuid"
)

// ParseID converte o parâmetro de rota em UUID.
func ParseID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
