package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hongminglow/santuario-be/internal/auth"
	"github.com/hongminglow/santuario-be/internal/http/respond"
	"github.com/hongminglow/santuario-be/internal/models"
)

// Gate resolves session tokens into request identities.
type Gate struct {
	tokens       *auth.TokenManager
	updateAge    time.Duration
	secureCookie bool
}

// NewGate builds a gate. Cookie sessions older than updateAge are re-issued; zero disables refresh.
func NewGate(tokens *auth.TokenManager, updateAge time.Duration, secureCookie bool) *Gate {
	return &Gate{tokens: tokens, updateAge: updateAge, secureCookie: secureCookie}
}

// Authenticate attaches the identity of a valid session to the context. Requests
// without a valid session pass through unauthenticated.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, fromCookie := auth.TokenFromRequest(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := g.tokens.Verify(raw)
		if err != nil {
			zerolog.Ctx(r.Context()).Debug().Err(err).Msg("session rejected")
			next.ServeHTTP(w, r)
			return
		}
		if fromCookie && g.tokens.NeedsRefresh(claims, g.updateAge) {
			g.refresh(w, r, claims)
		}

		identity := claims.Identity()
		ctx := auth.WithIdentity(r.Context(), identity)
		logger := zerolog.Ctx(ctx).With().Int64("user_id", int64(identity.UserID)).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx)))
	})
}

func (g *Gate) refresh(w http.ResponseWriter, r *http.Request, c auth.Claims) {
	token, err := g.tokens.Generate(models.User{ID: c.UserID, Name: c.Name, Email: c.Email, Role: c.Role})
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("session refresh failed")
		return
	}
	http.SetCookie(w, auth.SessionCookie(token, g.tokens.TTL(), g.secureCookie))
}

// RequireAuth rejects API requests that carry no valid session.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); !ok {
			respond.Error(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
