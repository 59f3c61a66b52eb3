package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/hongminglow/santuario-be/internal/models"
	"github.com/hongminglow/santuario-be/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// dbPool is the subset of *pgxpool.Pool the store needs. pgxmock pools satisfy it too.
type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Store provides Postgres-backed persistence for users and creatures.
type Store struct {
	pool dbPool
}

// New opens a connection pool and waits until the database answers a ping,
// retrying with exponential backoff up to retries times.
func New(ctx context.Context, databaseURL string, retries int) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := newStore(pool)
	if err := s.waitReady(ctx, retries); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func newStore(pool dbPool) *Store {
	return &Store{pool: pool}
}

func (s *Store) waitReady(ctx context.Context, retries int) error {
	if retries < 0 {
		retries = 0
	}
	backoff := retry.WithMaxRetries(uint64(retries), retry.NewExponential(250*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const userColumns = `id, name, email, password, role, COALESCE(description, ''), created_at`

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (name, email, password, role, description)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, user.Name, user.Email, user.PasswordHash, user.Role, user.Description)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, oops.Code("USER_EMAIL_TAKEN").With("email", user.Email).Wrap(storage.ErrAlreadyExists)
		}
		return models.User{}, oops.Code("USER_CREATE_FAILED").With("email", user.Email).Wrap(err)
	}
	return created, nil
}

// FindUserByID fetches a user by primary key.
func (s *Store) FindUserByID(ctx context.Context, id models.ID) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, int64(id))
	user, err := scanUser(row)
	if err != nil {
		return models.User{}, lookupError("USER", "id", id.String(), err)
	}
	return user, nil
}

// FindUserByEmail fetches a user by login email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		return models.User{}, lookupError("USER", "email", email, err)
	}
	return user, nil
}

// UpdateProfile replaces the editable profile fields and returns the stored row.
func (s *Store) UpdateProfile(ctx context.Context, id models.ID, name, email, description string) (models.User, error) {
	const query = `
		UPDATE users SET name = $2, email = $3, description = NULLIF($4, '')
		WHERE id = $1
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, int64(id), name, email, description)
	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, oops.Code("USER_EMAIL_TAKEN").With("email", email).Wrap(storage.ErrAlreadyExists)
		}
		return models.User{}, lookupError("USER", "id", id.String(), err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		user models.User
		id   int64
	)
	if err := row.Scan(&id, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.Description, &user.CreatedAt); err != nil {
		return models.User{}, err
	}
	user.ID = models.ID(id)
	return user, nil
}

// lookupError maps pgx.ErrNoRows to storage.ErrNotFound and wraps everything else.
func lookupError(entity, key, value string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return oops.Code(entity+"_NOT_FOUND").With(key, value).Wrap(storage.ErrNotFound)
	}
	return oops.Code(entity+"_QUERY_FAILED").With(key, value).Wrap(err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
