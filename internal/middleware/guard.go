package middleware

import (
	"net/http"
	"path"
	"strings"

	"github.com/hongminglow/santuario-be/internal/auth"
	"github.com/hongminglow/santuario-be/internal/models"
)

// LoginPath is where unauthenticated or unauthorized page requests are sent.
const LoginPath = "/auth/login"

var publicPrefixes = []string{"/auth/login", "/auth/register", "/locale/"}

var roleAreas = map[string]string{
	"/maestro":  models.RoleMaestro,
	"/cuidador": models.RoleCuidador,
}

// Guard enforces the page access policy: public pages are open, everything else
// needs a session, and role areas need the matching role. Failures redirect to
// the login page; the guard never answers 403.
func Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if !IsPagePath(p) || isPublic(p) {
			next.ServeHTTP(w, r)
			return
		}

		identity, ok := auth.FromContext(r.Context())
		if !ok {
			http.Redirect(w, r, LoginPath, http.StatusTemporaryRedirect)
			return
		}
		if required, restricted := RequiredRole(p); restricted && identity.Role != required {
			http.Redirect(w, r, LoginPath, http.StatusTemporaryRedirect)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsPagePath reports whether p is a page route rather than an API, operational or asset path.
func IsPagePath(p string) bool {
	switch {
	case strings.HasPrefix(p, "/api/"), p == "/api":
		return false
	case p == "/health", p == "/metrics", strings.HasPrefix(p, "/static/"):
		return false
	case strings.Contains(path.Base(p), "."):
		return false
	}
	return true
}

// RequiredRole returns the role a page path is restricted to, if any.
func RequiredRole(p string) (string, bool) {
	for prefix, role := range roleAreas {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return role, true
		}
	}
	return "", false
}

func isPublic(p string) bool {
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
