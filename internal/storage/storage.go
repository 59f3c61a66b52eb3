package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/santuario-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures persistence operations on the credential table.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByID(ctx context.Context, id models.ID) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	// UpdateProfile replaces name, email and description. Role and password are untouched.
	UpdateProfile(ctx context.Context, id models.ID, name, email, description string) (models.User, error)
}

// CreatureStore captures persistence operations on creatures.
type CreatureStore interface {
	CreateCreature(ctx context.Context, c models.Creature) (models.Creature, error)
	FindCreature(ctx context.Context, id models.ID) (models.Creature, error)
	// ListCreaturesByOwner returns newest first.
	ListCreaturesByOwner(ctx context.Context, owner models.ID) ([]models.Creature, error)
	// UpdateCreature replaces every mutable field of the row matching c.ID and c.OwnerID.
	UpdateCreature(ctx context.Context, c models.Creature) (models.Creature, error)
	DeleteCreature(ctx context.Context, id, owner models.ID) error
}

// Store is the full persistence surface used by the server.
type Store interface {
	UserStore
	CreatureStore
}
