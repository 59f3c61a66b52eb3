package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hongminglow/santuario-be/internal/models"
)

// ErrInvalidToken is returned for missing, malformed, tampered, or expired tokens.
var ErrInvalidToken = errors.New("invalid session token")

// Claims is the signed payload of a session token.
type Claims struct {
	UserID models.ID `json:"id"`
	Role   string    `json:"role"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// Identity returns the authenticated principal carried by the claims.
func (c Claims) Identity() Identity {
	return Identity{UserID: c.UserID, Role: c.Role, Name: c.Name, Email: c.Email}
}

// TokenManager issues and verifies signed session tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a manager with the provided secret, issuer, and lifetime.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of the manager that reads time from now.
func (t *TokenManager) WithClock(now func() time.Time) *TokenManager {
	clone := *t
	clone.now = now
	return &clone
}

// TTL is the lifetime given to newly issued tokens.
func (t *TokenManager) TTL() time.Duration {
	return t.ttl
}

// Generate issues a signed token for the provided user.
func (t *TokenManager) Generate(user models.User) (string, error) {
	now := t.now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, issuer, and validity window.
func (t *TokenManager) Verify(raw string) (Claims, error) {
	if raw == "" {
		return Claims{}, ErrInvalidToken
	}
	claims := Claims{}
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || !claims.UserID.Valid() {
		return Claims{}, ErrInvalidToken
	}
	if _, ok := models.NormalizeRole(claims.Role); !ok {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// NeedsRefresh reports whether a still-valid token is older than updateAge.
func (t *TokenManager) NeedsRefresh(c Claims, updateAge time.Duration) bool {
	if updateAge <= 0 || c.IssuedAt == nil {
		return false
	}
	return t.now().Sub(c.IssuedAt.Time) >= updateAge
}
