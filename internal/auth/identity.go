package auth

import (
	"context"

	"github.com/hongminglow/santuario-be/internal/models"
)

// Identity is the resolved principal of an authenticated request.
type Identity struct {
	UserID models.ID
	Role   string
	Name   string
	Email  string
}

type ctxKey int

const identityKey ctxKey = 1

// WithIdentity stores id on the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the identity resolved by the gate, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
