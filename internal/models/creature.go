package models

import "time"

// Species a creature may belong to.
var Species = []string{"Dragón", "Fénix", "Golem", "Grifo", "Vampiro"}

// Magic level bounds.
const (
	MinMagicLevel = 1
	MaxMagicLevel = 100
)

// Creature is a user-owned record managed from the sanctuary pages.
type Creature struct {
	ID         ID        `json:"id"`
	OwnerID    ID        `json:"usuario_id"`
	Name       string    `json:"nombre"`
	Species    string    `json:"especie"`
	MagicLevel int       `json:"nivel_magico"`
	Trained    bool      `json:"entrenada"`
	Skills     []string  `json:"habilidades"`
	CreatedAt  time.Time `json:"fecha_creacion"`
}

// IsKnownSpecies reports whether name is one of Species.
func IsKnownSpecies(name string) bool {
	for _, s := range Species {
		if s == name {
			return true
		}
	}
	return false
}
