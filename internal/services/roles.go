package services

import (
	"strings"

	"pilotos_api/internal/models"
)

var legacyRoles = map[string]string{
	"admin":    models.RoleAdmin,
	"gestor":   models.RoleFiscal,
	"operador": models.RoleUser,
	"fiscal":   models.RoleFiscal,
	"user":     models.RoleUser,
}

// NormalizeRole folds a role name, including legacy synonyms, into the
// canonical set. ok is false for anything unknown.
func NormalizeRole(role string) (string, bool) {
	r, ok := legacyRoles[strings.ToLower(strings.TrimSpace(role))]
	return r, ok
}
