package dto

import "github.com/hongminglow/santuario-be/internal/models"

// CreatureRequest is the body of create and full-replace update calls.
type CreatureRequest struct {
	UsuarioID   models.ID `json:"usuarioId"`
	Nombre      string    `json:"nombre"`
	Especie     string    `json:"especie"`
	NivelMagico int       `json:"nivel_magico"`
	Entrenada   bool      `json:"entrenada"`
	Habilidades []string  `json:"habilidades"`
}

type CreatureResponse struct {
	OK       bool            `json:"ok"`
	Message  string          `json:"message,omitempty"`
	Creature models.Creature `json:"creature"`
}

type CreatureListResponse struct {
	OK        bool              `json:"ok"`
	Creatures []models.Creature `json:"creatures"`
}

type SpeciesResponse struct {
	OK      bool     `json:"ok"`
	Species []string `json:"species"`
}
