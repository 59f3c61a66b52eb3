package middleware

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
)

// LocaleCookieName is the cookie holding the user's language choice.
const LocaleCookieName = "NEXT_LOCALE"

// DefaultLocale is used when no supported locale was chosen.
const DefaultLocale = "es"

var supportedLocales = []language.Tag{language.Spanish, language.English}

var localeMatcher = language.NewMatcher(supportedLocales)

type localeKey struct{}

// Locale resolves the NEXT_LOCALE cookie against the supported locales and stores
// the result on the context. It runs for every request regardless of auth.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := DefaultLocale
		if c, err := r.Cookie(LocaleCookieName); err == nil {
			locale = MatchLocale(c.Value)
		}
		w.Header().Set("Content-Language", locale)
		ctx := context.WithValue(r.Context(), localeKey{}, locale)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MatchLocale maps a raw language tag to a supported base language, defaulting to es.
func MatchLocale(raw string) string {
	if raw == "" {
		return DefaultLocale
	}
	tag, _, confidence := localeMatcher.Match(language.Make(raw))
	if confidence == language.No {
		return DefaultLocale
	}
	base, _ := tag.Base()
	return base.String()
}

// LocaleFromContext returns the locale resolved by Locale.
func LocaleFromContext(ctx context.Context) string {
	if l, ok := ctx.Value(localeKey{}).(string); ok {
		return l
	}
	return DefaultLocale
}
