package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/samber/oops"

	"github.com/hongminglow/santuario-be/internal/auth"
	"github.com/hongminglow/santuario-be/internal/models"
	"github.com/hongminglow/santuario-be/internal/storage"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer issues session tokens for authenticated users.
type TokenIssuer interface {
	Generate(user models.User) (string, error)
}

// RegisterInput is the raw registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Accounts implements registration, login and profile management.
type Accounts struct {
	users  storage.UserStore
	hasher PasswordHasher
	tokens TokenIssuer
	// dummyHash is compared against when the email is unknown so both
	// failure paths spend the same bcrypt work.
	dummyHash string
}

// NewAccounts wires the account service.
func NewAccounts(users storage.UserStore, hasher PasswordHasher, tokens TokenIssuer) (*Accounts, error) {
	dummy, err := hasher.Hash("santuario-placeholder-password")
	if err != nil {
		return nil, oops.Code("ACCOUNTS_INIT_FAILED").Wrap(err)
	}
	return &Accounts{users: users, hasher: hasher, tokens: tokens, dummyHash: dummy}, nil
}

// Register validates the form, hashes the password and stores the user.
func (a *Accounts) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" || strings.TrimSpace(in.Role) == "" {
		return models.User{}, invalid("name, email, password and role are required")
	}
	if !validEmail(email) {
		return models.User{}, invalid("email is not valid")
	}
	role, ok := models.NormalizeRole(in.Role)
	if !ok {
		return models.User{}, invalid("role must be %q or %q", models.RoleMaestro, models.RoleCuidador)
	}
	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) || errors.Is(err, auth.ErrEmptyPassword) {
			return models.User{}, invalid("%s", err.Error())
		}
		return models.User{}, oops.Code("REGISTER_HASH_FAILED").Wrap(err)
	}

	created, err := a.users.CreateUser(ctx, models.User{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		return models.User{}, err
	}
	return created, nil
}

// Login checks credentials and returns the user with a fresh session token.
// Unknown email and wrong password are indistinguishable to the caller.
func (a *Accounts) Login(ctx context.Context, email, password string) (models.User, string, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return models.User{}, "", invalid("email and password are required")
	}

	user, err := a.users.FindUserByEmail(ctx, email)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		a.hasher.Verify(password, a.dummyHash)
		return models.User{}, "", ErrInvalidCredentials
	case err != nil:
		return models.User{}, "", err
	}
	if !a.hasher.Verify(password, user.PasswordHash) {
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := a.tokens.Generate(user)
	if err != nil {
		return models.User{}, "", oops.Code("LOGIN_TOKEN_FAILED").With("user_id", user.ID.String()).Wrap(err)
	}
	return user, token, nil
}

// Profile returns the stored user record.
func (a *Accounts) Profile(ctx context.Context, id models.ID) (models.User, error) {
	if !id.Valid() {
		return models.User{}, invalid("userId is required")
	}
	return a.users.FindUserByID(ctx, id)
}

// UpdateProfile replaces name, email and description. Role is never changed.
func (a *Accounts) UpdateProfile(ctx context.Context, id models.ID, name, email, description string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if !id.Valid() || name == "" || email == "" {
		return models.User{}, invalid("userId, name and email are required")
	}
	if !validEmail(email) {
		return models.User{}, invalid("email is not valid")
	}
	return a.users.UpdateProfile(ctx, id, name, email, strings.TrimSpace(description))
}

// NormalizeEmail trims and lower-cases an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
