package models

import "strings"

// Role names accepted at registration.
const (
	RoleMaestro  = "maestro"
	RoleCuidador = "cuidador"
)

// Default profile descriptions shown until the user writes their own.
const (
	DefaultDescriptionCuidador = "Cuéntanos sobre ti y tu pasión por las criaturas mágicas..."
	DefaultDescriptionMaestro  = "Cuéntanos sobre ti y tu experiencia entrenando criaturas mágicas..."
)

// NormalizeRole lower-cases and trims a role name, returning ok=false for unknown roles.
func NormalizeRole(role string) (string, bool) {
	r := strings.ToLower(strings.TrimSpace(role))
	switch r {
	case RoleMaestro, RoleCuidador:
		return r, true
	}
	return "", false
}

// DefaultDescription returns the placeholder description for a role.
func DefaultDescription(role string) string {
	if role == RoleMaestro {
		return DefaultDescriptionMaestro
	}
	return DefaultDescriptionCuidador
}

// HomePath is the landing page for a role.
func HomePath(role string) string {
	switch role {
	case RoleMaestro:
		return "/maestro"
	case RoleCuidador:
		return "/cuidador"
	}
	return "/auth/login"
}
