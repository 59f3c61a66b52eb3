package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/hongminglow/santuario-be/internal/models"
	"github.com/hongminglow/santuario-be/internal/storage"
)

const creatureColumns = `id, usuario_id, nombre, especie, nivel_magico, entrenada, habilidades, fecha_creacion`

// CreateCreature inserts a creature owned by c.OwnerID.
func (s *Store) CreateCreature(ctx context.Context, c models.Creature) (models.Creature, error) {
	skills, err := encodeSkills(c.Skills)
	if err != nil {
		return models.Creature{}, oops.Code("CREATURE_CREATE_FAILED").With("operation", "marshal skills").Wrap(err)
	}
	const query = `
		INSERT INTO creatures (usuario_id, nombre, especie, nivel_magico, entrenada, habilidades)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + creatureColumns
	row := s.pool.QueryRow(ctx, query, int64(c.OwnerID), c.Name, c.Species, c.MagicLevel, c.Trained, skills)
	created, err := scanCreature(row)
	if err != nil {
		return models.Creature{}, oops.Code("CREATURE_CREATE_FAILED").
			With("usuario_id", c.OwnerID.String()).
			Wrap(err)
	}
	return created, nil
}

// FindCreature fetches a creature by id regardless of owner.
func (s *Store) FindCreature(ctx context.Context, id models.ID) (models.Creature, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+creatureColumns+` FROM creatures WHERE id = $1`, int64(id))
	c, err := scanCreature(row)
	if err != nil {
		return models.Creature{}, lookupError("CREATURE", "id", id.String(), err)
	}
	return c, nil
}

// ListCreaturesByOwner returns the owner's creatures, newest first.
func (s *Store) ListCreaturesByOwner(ctx context.Context, owner models.ID) ([]models.Creature, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+creatureColumns+`
		FROM creatures
		WHERE usuario_id = $1
		ORDER BY fecha_creacion DESC, id DESC`, int64(owner))
	if err != nil {
		return nil, oops.Code("CREATURE_LIST_FAILED").With("usuario_id", owner.String()).Wrap(err)
	}
	defer rows.Close()

	out := make([]models.Creature, 0)
	for rows.Next() {
		c, err := scanCreature(rows)
		if err != nil {
			return nil, oops.Code("CREATURE_LIST_FAILED").With("operation", "scan creature row").Wrap(err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("CREATURE_LIST_FAILED").With("operation", "iterate creatures").Wrap(err)
	}
	return out, nil
}

// UpdateCreature replaces every mutable field. The owner filter keeps a
// concurrent ownership change from touching another user's row.
func (s *Store) UpdateCreature(ctx context.Context, c models.Creature) (models.Creature, error) {
	skills, err := encodeSkills(c.Skills)
	if err != nil {
		return models.Creature{}, oops.Code("CREATURE_UPDATE_FAILED").With("operation", "marshal skills").Wrap(err)
	}
	const query = `
		UPDATE creatures
		SET nombre = $3, especie = $4, nivel_magico = $5, entrenada = $6, habilidades = $7
		WHERE id = $1 AND usuario_id = $2
		RETURNING ` + creatureColumns
	row := s.pool.QueryRow(ctx, query, int64(c.ID), int64(c.OwnerID), c.Name, c.Species, c.MagicLevel, c.Trained, skills)
	updated, err := scanCreature(row)
	if err != nil {
		return models.Creature{}, lookupError("CREATURE", "id", c.ID.String(), err)
	}
	return updated, nil
}

// DeleteCreature removes the row matching id and owner.
func (s *Store) DeleteCreature(ctx context.Context, id, owner models.ID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM creatures WHERE id = $1 AND usuario_id = $2`, int64(id), int64(owner))
	if err != nil {
		return oops.Code("CREATURE_DELETE_FAILED").With("id", id.String()).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("CREATURE_NOT_FOUND").With("id", id.String()).Wrap(storage.ErrNotFound)
	}
	return nil
}

func scanCreature(row pgx.Row) (models.Creature, error) {
	var (
		c          models.Creature
		id, owner  int64
		skillsJSON string
	)
	if err := row.Scan(&id, &owner, &c.Name, &c.Species, &c.MagicLevel, &c.Trained, &skillsJSON, &c.CreatedAt); err != nil {
		return models.Creature{}, err
	}
	c.ID = models.ID(id)
	c.OwnerID = models.ID(owner)
	c.Skills = decodeSkills(skillsJSON)
	return c, nil
}

func encodeSkills(skills []string) (string, error) {
	if skills == nil {
		skills = []string{}
	}
	b, err := json.Marshal(skills)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeSkills tolerates legacy rows holding empty or malformed text.
func decodeSkills(raw string) []string {
	skills := []string{}
	if raw == "" {
		return skills
	}
	if err := json.Unmarshal([]byte(raw), &skills); err != nil || skills == nil {
		return []string{}
	}
	return skills
}
