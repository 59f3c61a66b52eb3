package service

import (
	"context"
	"strings"

	"github.com/hongminglow/santuario-be/internal/models"
	"github.com/hongminglow/santuario-be/internal/storage"
)

// CreatureInput holds the client-editable creature fields.
type CreatureInput struct {
	Name       string
	Species    string
	MagicLevel int
	Trained    bool
	Skills     []string
}

// Creatures manages a user's creatures and enforces ownership.
type Creatures struct {
	store storage.CreatureStore
}

// NewCreatures wires the creature service.
func NewCreatures(store storage.CreatureStore) *Creatures {
	return &Creatures{store: store}
}

// List returns the owner's creatures, newest first.
func (s *Creatures) List(ctx context.Context, owner models.ID) ([]models.Creature, error) {
	return s.store.ListCreaturesByOwner(ctx, owner)
}

// Get returns a creature the actor owns.
func (s *Creatures) Get(ctx context.Context, actor, id models.ID) (models.Creature, error) {
	return s.owned(ctx, actor, id)
}

// Create stores a new creature bound to owner.
func (s *Creatures) Create(ctx context.Context, owner models.ID, in CreatureInput) (models.Creature, error) {
	c, err := buildCreature(in)
	if err != nil {
		return models.Creature{}, err
	}
	c.OwnerID = owner
	return s.store.CreateCreature(ctx, c)
}

// Update replaces every editable field of a creature owned by actor.
func (s *Creatures) Update(ctx context.Context, actor, id models.ID, in CreatureInput) (models.Creature, error) {
	c, err := buildCreature(in)
	if err != nil {
		return models.Creature{}, err
	}
	if _, err := s.owned(ctx, actor, id); err != nil {
		return models.Creature{}, err
	}
	c.ID = id
	c.OwnerID = actor
	return s.store.UpdateCreature(ctx, c)
}

// Delete removes a creature owned by actor.
func (s *Creatures) Delete(ctx context.Context, actor, id models.ID) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	return s.store.DeleteCreature(ctx, id, actor)
}

// owned loads id and checks that actor owns it: missing → not found, foreign → forbidden.
func (s *Creatures) owned(ctx context.Context, actor, id models.ID) (models.Creature, error) {
	if !id.Valid() {
		return models.Creature{}, invalid("creature id is not valid")
	}
	c, err := s.store.FindCreature(ctx, id)
	if err != nil {
		return models.Creature{}, err
	}
	if c.OwnerID != actor {
		return models.Creature{}, ErrForbidden
	}
	return c, nil
}

func buildCreature(in CreatureInput) (models.Creature, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Creature{}, invalid("nombre is required")
	}
	species := strings.TrimSpace(in.Species)
	if !models.IsKnownSpecies(species) {
		return models.Creature{}, invalid("especie must be one of %s", strings.Join(models.Species, ", "))
	}
	level := in.MagicLevel
	if level == 0 {
		level = models.MinMagicLevel
	}
	if level < models.MinMagicLevel || level > models.MaxMagicLevel {
		return models.Creature{}, invalid("nivel_magico must be between %d and %d", models.MinMagicLevel, models.MaxMagicLevel)
	}
	skills := make([]string, 0, len(in.Skills))
	for _, skill := range in.Skills {
		if s := strings.TrimSpace(skill); s != "" {
			skills = append(skills, s)
		}
	}
	return models.Creature{
		Name:       name,
		Species:    species,
		MagicLevel: level,
		Trained:    in.Trained,
		Skills:     skills,
	}, nil
}
