// Package memory is an in-process storage.Store used by tests and local tooling.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hongminglow/santuario-be/internal/models"
	"github.com/hongminglow/santuario-be/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps users and creatures in maps guarded by a mutex.
type Store struct {
	mu        sync.Mutex
	now       func() time.Time
	nextUser  models.ID
	nextBeast models.ID
	users     map[models.ID]models.User
	creatures map[models.ID]models.Creature
}

// New returns an empty store.
func New() *Store {
	return &Store{
		now:       time.Now,
		users:     make(map[models.ID]models.User),
		creatures: make(map[models.ID]models.Creature),
	}
}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	s.nextUser++
	user.ID = s.nextUser
	user.CreatedAt = s.now()
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) FindUserByID(_ context.Context, id models.ID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) UpdateProfile(_ context.Context, id models.ID, name, email, description string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	for otherID, other := range s.users {
		if otherID != id && other.Email == email {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	u.Name, u.Email, u.Description = name, email, description
	s.users[id] = u
	return u, nil
}

func (s *Store) CreateCreature(_ context.Context, c models.Creature) (models.Creature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBeast++
	c.ID = s.nextBeast
	c.CreatedAt = s.now()
	c.Skills = cloneSkills(c.Skills)
	s.creatures[c.ID] = c
	return copyCreature(c), nil
}

func (s *Store) FindCreature(_ context.Context, id models.ID) (models.Creature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.creatures[id]
	if !ok {
		return models.Creature{}, storage.ErrNotFound
	}
	return copyCreature(c), nil
}

func (s *Store) ListCreaturesByOwner(_ context.Context, owner models.ID) ([]models.Creature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Creature, 0)
	for _, c := range s.creatures {
		if c.OwnerID == owner {
			out = append(out, copyCreature(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateCreature(_ context.Context, c models.Creature) (models.Creature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.creatures[c.ID]
	if !ok || stored.OwnerID != c.OwnerID {
		return models.Creature{}, storage.ErrNotFound
	}
	stored.Name = c.Name
	stored.Species = c.Species
	stored.MagicLevel = c.MagicLevel
	stored.Trained = c.Trained
	stored.Skills = cloneSkills(c.Skills)
	s.creatures[c.ID] = stored
	return copyCreature(stored), nil
}

func (s *Store) DeleteCreature(_ context.Context, id, owner models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.creatures[id]
	if !ok || stored.OwnerID != owner {
		return storage.ErrNotFound
	}
	delete(s.creatures, id)
	return nil
}

func copyCreature(c models.Creature) models.Creature {
	c.Skills = cloneSkills(c.Skills)
	return c
}

func cloneSkills(skills []string) []string {
	out := make([]string, len(skills))
	copy(out, skills)
	return out
}
